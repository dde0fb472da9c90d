package main

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"

	insightrpc "pathlight/internal/modules/insight/adapter/out/rpc"

	"github.com/hashicorp/go-plugin"
)

// trendwatch is the reference insight provider: deterministic scores
// derived from the topic text, useful for wiring checks and demos.
type server struct{}

func (s *server) GetMetadata(_ context.Context, _ *insightrpc.Empty) (*insightrpc.Metadata, error) {
	return &insightrpc.Metadata{
		Name:         "trendwatch",
		Version:      "1.0.0",
		Capabilities: []string{"trend", "market"},
	}, nil
}

func (s *server) ListProbes(_ context.Context, _ *insightrpc.Empty) (*insightrpc.ListProbesResponse, error) {
	return &insightrpc.ListProbesResponse{Probes: []insightrpc.ProbeDescriptor{
		{ID: "trending", Title: "Trending", Description: "Scores how actively the topic is discussed", Capability: "trend", TimeoutMS: 2000},
		{ID: "jobs", Title: "Job Market", Description: "Scores demand for the topic in job postings", Capability: "market", TimeoutMS: 2000},
	}}, nil
}

func (s *server) Lookup(_ context.Context, in *insightrpc.LookupRequest) (*insightrpc.LookupResponse, error) {
	topic := strings.TrimSpace(in.Topic)
	if topic == "" {
		return nil, fmt.Errorf("topic is required")
	}
	switch in.ProbeID {
	case "trending":
		return &insightrpc.LookupResponse{Signals: []insightrpc.Signal{
			{
				Label:   "discussion volume",
				Score:   scoreFor(topic, "discussion"),
				Summary: fmt.Sprintf("%s discussion volume over the last quarter", topic),
			},
			{
				Label:   "growth",
				Score:   scoreFor(topic, "growth"),
				Summary: fmt.Sprintf("%s interest growth rate", topic),
			},
		}}, nil
	case "jobs":
		return &insightrpc.LookupResponse{Signals: []insightrpc.Signal{
			{
				Label:   "posting demand",
				Score:   scoreFor(topic, "postings"),
				Summary: fmt.Sprintf("share of postings mentioning %s", topic),
			},
		}}, nil
	default:
		return nil, fmt.Errorf("unknown probe: %s", in.ProbeID)
	}
}

// scoreFor hashes topic+dimension into a stable score in [0, 1).
func scoreFor(topic, dimension string) float64 {
	h := fnv.New32a()
	h.Write([]byte(strings.ToLower(topic)))
	h.Write([]byte(dimension))
	return float64(h.Sum32()%1000) / 1000
}

func main() {
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: insightrpc.HandshakeConfig,
		Plugins:         insightrpc.PluginMap(&server{}),
		GRPCServer:      plugin.DefaultGRPCServer,
	})
}
