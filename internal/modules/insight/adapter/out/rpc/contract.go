// Package rpc defines the host<->provider contract: a go-plugin gRPC
// channel with a JSON codec, so providers can be written without protoc.
package rpc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hashicorp/go-plugin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

const (
	PluginMapKey     = "pathlight"
	serviceName      = "pathlight.insight.v1.InsightProvider"
	jsonCodecName    = "json"
	methodGetMeta    = "/" + serviceName + "/GetMetadata"
	methodListProbes = "/" + serviceName + "/ListProbes"
	methodLookup     = "/" + serviceName + "/Lookup"
)

var HandshakeConfig = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "PATHLIGHT_INSIGHT",
	MagicCookieValue: "pathlight",
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return jsonCodecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type Empty struct{}

type Metadata struct {
	Name         string   `json:"name"`
	Version      string   `json:"version"`
	Capabilities []string `json:"capabilities"`
}

type ProbeDescriptor struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Capability  string `json:"capability"`
	TimeoutMS   int32  `json:"timeout_ms"`
}

type ListProbesResponse struct {
	Probes []ProbeDescriptor `json:"probes"`
}

type LookupRequest struct {
	ProbeID string `json:"probe_id"`
	Topic   string `json:"topic"`
}

type Signal struct {
	Label   string  `json:"label"`
	Score   float64 `json:"score"`
	Summary string  `json:"summary"`
	URL     string  `json:"url"`
}

type LookupResponse struct {
	Signals []Signal `json:"signals"`
}

type InsightProviderServer interface {
	GetMetadata(ctx context.Context, in *Empty) (*Metadata, error)
	ListProbes(ctx context.Context, in *Empty) (*ListProbesResponse, error)
	Lookup(ctx context.Context, in *LookupRequest) (*LookupResponse, error)
}

type InsightProviderClient interface {
	GetMetadata(ctx context.Context) (*Metadata, error)
	ListProbes(ctx context.Context) (*ListProbesResponse, error)
	Lookup(ctx context.Context, in *LookupRequest) (*LookupResponse, error)
}

type insightProviderClient struct {
	conn *grpc.ClientConn
}

func NewInsightProviderClient(conn *grpc.ClientConn) InsightProviderClient {
	return &insightProviderClient{conn: conn}
}

func (c *insightProviderClient) GetMetadata(ctx context.Context) (*Metadata, error) {
	out := &Metadata{}
	if err := c.conn.Invoke(ctx, methodGetMeta, &Empty{}, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *insightProviderClient) ListProbes(ctx context.Context) (*ListProbesResponse, error) {
	out := &ListProbesResponse{}
	if err := c.conn.Invoke(ctx, methodListProbes, &Empty{}, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *insightProviderClient) Lookup(ctx context.Context, in *LookupRequest) (*LookupResponse, error) {
	out := &LookupResponse{}
	if err := c.conn.Invoke(ctx, methodLookup, in, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func RegisterInsightProviderServer(server grpc.ServiceRegistrar, impl InsightProviderServer) {
	server.RegisterService(&grpc.ServiceDesc{
		ServiceName: serviceName,
		HandlerType: (*InsightProviderServer)(nil),
		Methods: []grpc.MethodDesc{
			{
				MethodName: "GetMetadata",
				Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
					in := &Empty{}
					if err := dec(in); err != nil {
						return nil, err
					}
					if interceptor == nil {
						return impl.GetMetadata(ctx, in)
					}
					info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodGetMeta}
					handler := func(ctx context.Context, req any) (any, error) {
						empty, ok := req.(*Empty)
						if !ok {
							return nil, fmt.Errorf("invalid request type")
						}
						return impl.GetMetadata(ctx, empty)
					}
					return interceptor(ctx, in, info, handler)
				},
			},
			{
				MethodName: "ListProbes",
				Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
					in := &Empty{}
					if err := dec(in); err != nil {
						return nil, err
					}
					if interceptor == nil {
						return impl.ListProbes(ctx, in)
					}
					info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodListProbes}
					handler := func(ctx context.Context, req any) (any, error) {
						empty, ok := req.(*Empty)
						if !ok {
							return nil, fmt.Errorf("invalid request type")
						}
						return impl.ListProbes(ctx, empty)
					}
					return interceptor(ctx, in, info, handler)
				},
			},
			{
				MethodName: "Lookup",
				Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
					in := &LookupRequest{}
					if err := dec(in); err != nil {
						return nil, err
					}
					if interceptor == nil {
						return impl.Lookup(ctx, in)
					}
					info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodLookup}
					handler := func(ctx context.Context, req any) (any, error) {
						inReq, ok := req.(*LookupRequest)
						if !ok {
							return nil, fmt.Errorf("invalid request type")
						}
						return impl.Lookup(ctx, inReq)
					}
					return interceptor(ctx, in, info, handler)
				},
			},
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "schemas/insight-rpc-v1.proto",
	}, impl)
}

type GRPCPlugin struct {
	plugin.NetRPCUnsupportedPlugin
	Impl InsightProviderServer
}

func (p *GRPCPlugin) GRPCServer(_ *plugin.GRPCBroker, server *grpc.Server) error {
	RegisterInsightProviderServer(server, p.Impl)
	return nil
}

func (p *GRPCPlugin) GRPCClient(_ context.Context, _ *plugin.GRPCBroker, conn *grpc.ClientConn) (any, error) {
	return NewInsightProviderClient(conn), nil
}

func PluginMap(impl InsightProviderServer) map[string]plugin.Plugin {
	return map[string]plugin.Plugin{
		PluginMapKey: &GRPCPlugin{Impl: impl},
	}
}
