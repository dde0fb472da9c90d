package out

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"time"

	insightrpc "pathlight/internal/modules/insight/adapter/out/rpc"
	"pathlight/internal/modules/insight/domain"
	insightout "pathlight/internal/modules/insight/port/out"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"
)

const (
	defaultStartTimeout = 3 * time.Second
	defaultCallTimeout  = 10 * time.Second
)

type GRPCHost struct{}

func NewGRPCHost() insightout.Host {
	return &GRPCHost{}
}

func (h *GRPCHost) CheckLifecycle(ctx context.Context, manifest domain.Manifest) error {
	client, closeFn, err := h.connect(manifest)
	if err != nil {
		return err
	}
	defer closeFn()

	callCtx, cancel := h.callContext(ctx, defaultCallTimeout)
	defer cancel()
	if _, err := client.GetMetadata(callCtx); err != nil {
		return fmt.Errorf("get metadata: %w", err)
	}
	return nil
}

func (h *GRPCHost) GetMetadata(ctx context.Context, manifest domain.Manifest) (domain.Metadata, error) {
	client, closeFn, err := h.connect(manifest)
	if err != nil {
		return domain.Metadata{}, err
	}
	defer closeFn()

	callCtx, cancel := h.callContext(ctx, defaultCallTimeout)
	defer cancel()

	meta, err := client.GetMetadata(callCtx)
	if err != nil {
		return domain.Metadata{}, fmt.Errorf("get metadata: %w", err)
	}
	capabilities := make([]domain.Capability, 0, len(meta.Capabilities))
	for _, capability := range meta.Capabilities {
		capabilities = append(capabilities, domain.Capability(capability))
	}
	return domain.Metadata{Name: meta.Name, Version: meta.Version, Capabilities: capabilities}, nil
}

func (h *GRPCHost) ListProbes(ctx context.Context, manifest domain.Manifest) ([]domain.ProbeDescriptor, error) {
	client, closeFn, err := h.connect(manifest)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	callCtx, cancel := h.callContext(ctx, defaultCallTimeout)
	defer cancel()

	response, err := client.ListProbes(callCtx)
	if err != nil {
		return nil, fmt.Errorf("list probes: %w", err)
	}
	out := make([]domain.ProbeDescriptor, 0, len(response.Probes))
	for _, probe := range response.Probes {
		out = append(out, domain.ProbeDescriptor{
			ID:          probe.ID,
			Title:       probe.Title,
			Description: probe.Description,
			Capability:  domain.Capability(probe.Capability),
			TimeoutMS:   int(probe.TimeoutMS),
		})
	}
	return out, nil
}

func (h *GRPCHost) Lookup(ctx context.Context, manifest domain.Manifest, req domain.LookupRequest) (domain.LookupResult, error) {
	client, closeFn, err := h.connect(manifest)
	if err != nil {
		return domain.LookupResult{}, err
	}
	defer closeFn()

	callCtx, cancel := h.callContext(ctx, defaultCallTimeout)
	defer cancel()
	response, err := client.Lookup(callCtx, &insightrpc.LookupRequest{ProbeID: req.ProbeID, Topic: req.Topic})
	if err != nil {
		if callCtx.Err() == context.DeadlineExceeded {
			return domain.LookupResult{}, fmt.Errorf("%w: probe %s", domain.ErrProviderTimeout, req.ProbeID)
		}
		return domain.LookupResult{}, fmt.Errorf("lookup: %w", err)
	}
	signals := make([]domain.Signal, 0, len(response.Signals))
	for _, signal := range response.Signals {
		signals = append(signals, domain.Signal{
			Label:   signal.Label,
			Score:   signal.Score,
			Summary: signal.Summary,
			URL:     signal.URL,
		})
	}
	return domain.LookupResult{Signals: signals}, nil
}

func (h *GRPCHost) connect(manifest domain.Manifest) (insightrpc.InsightProviderClient, func(), error) {
	client := plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig:  insightrpc.HandshakeConfig,
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolGRPC},
		Plugins:          insightrpc.PluginMap(nil),
		Cmd:              exec.Command(manifest.Binary),
		Managed:          true,
		StartTimeout:     defaultStartTimeout,
		Logger:           hclog.New(&hclog.LoggerOptions{Output: io.Discard, Level: hclog.NoLevel}),
	})
	closeFn := func() { client.Kill() }

	rpcClient, err := client.Client()
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("start provider: %w", err)
	}
	raw, err := rpcClient.Dispense(insightrpc.PluginMapKey)
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("dispense provider: %w", err)
	}
	typed, ok := raw.(insightrpc.InsightProviderClient)
	if !ok {
		closeFn()
		return nil, nil, fmt.Errorf("provider rpc client type mismatch")
	}
	return typed, closeFn, nil
}

func (h *GRPCHost) callContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := parent.Deadline(); ok {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}
