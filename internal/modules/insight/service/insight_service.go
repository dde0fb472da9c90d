package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"pathlight/internal/modules/insight/domain"
	"pathlight/internal/modules/insight/dto"
	insightout "pathlight/internal/modules/insight/port/out"
)

// InsightService gates every provider launch on a valid manifest, an
// enabled flag, and a binary whose checksum matches the pinned one.
type InsightService struct {
	store insightout.ManifestStore
	host  insightout.Host
}

func NewInsightService(store insightout.ManifestStore, host insightout.Host) *InsightService {
	return &InsightService{store: store, host: host}
}

func (s *InsightService) List(ctx context.Context) ([]dto.ProviderInfo, error) {
	manifests, err := s.loadValidated(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProviderInfo, 0, len(manifests))
	for _, m := range manifests {
		caps := make([]string, 0, len(m.Capabilities))
		for _, c := range m.Capabilities {
			caps = append(caps, string(c))
		}
		out = append(out, dto.ProviderInfo{
			Name:         m.Name,
			Version:      m.Version,
			Enabled:      m.Enabled,
			Binary:       m.Binary,
			Capabilities: caps,
		})
	}
	return out, nil
}

func (s *InsightService) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	manifests, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	results := make([]dto.DoctorResult, 0, len(manifests))
	for _, m := range manifests {
		result := dto.DoctorResult{Name: m.Name}
		if err := m.Validate(); err != nil {
			result.Error = err.Error()
			results = append(results, result)
			continue
		}
		result.BinaryReachable = fileExists(m.Binary)
		if result.BinaryReachable {
			result.ChecksumValid = checksumMatches(m.Binary, m.SHA256) == nil
		}
		if result.BinaryReachable && result.ChecksumValid && m.Enabled && s.host != nil {
			if err := s.host.CheckLifecycle(ctx, m); err != nil {
				result.Error = err.Error()
			} else {
				result.LifecycleOK = true
			}
		}
		if !result.BinaryReachable {
			result.Error = fmt.Sprintf("binary does not exist: %s", m.Binary)
		}
		if result.BinaryReachable && !result.ChecksumValid {
			result.Error = "checksum mismatch"
		}
		results = append(results, result)
	}
	return results, nil
}

func (s *InsightService) ListProbes(ctx context.Context, provider string) ([]dto.ProbeInfo, error) {
	manifest, err := s.getRunnableManifest(ctx, provider, "")
	if err != nil {
		return nil, err
	}
	probes, err := s.host.ListProbes(ctx, manifest)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProbeInfo, 0, len(probes))
	for _, probe := range probes {
		out = append(out, dto.ProbeInfo{
			ID:          probe.ID,
			Title:       probe.Title,
			Description: probe.Description,
			Capability:  string(probe.Capability),
			TimeoutMS:   probe.TimeoutMS,
		})
	}
	return out, nil
}

// Lookup runs one probe against one topic. With no probe named, a
// provider that offers exactly one probe is unambiguous and that probe
// runs; otherwise the caller has to pick.
func (s *InsightService) Lookup(ctx context.Context, input dto.LookupInput) (dto.LookupOutput, error) {
	if strings.TrimSpace(input.Topic) == "" {
		return dto.LookupOutput{}, fmt.Errorf("topic is required")
	}
	manifest, err := s.getRunnableManifest(ctx, input.Provider, "")
	if err != nil {
		return dto.LookupOutput{}, err
	}
	probes, err := s.host.ListProbes(ctx, manifest)
	if err != nil {
		return dto.LookupOutput{}, err
	}
	probe, err := resolveProbe(probes, input.Probe)
	if err != nil {
		return dto.LookupOutput{}, err
	}

	req := domain.LookupRequest{ProbeID: probe.ID, Topic: input.Topic}
	if err := req.Validate(); err != nil {
		return dto.LookupOutput{}, err
	}
	result, err := s.host.Lookup(ctx, manifest, req)
	if err != nil {
		return dto.LookupOutput{}, err
	}

	signals := make([]dto.SignalView, 0, len(result.Signals))
	for _, signal := range result.Signals {
		signals = append(signals, dto.SignalView{
			Label:   signal.Label,
			Score:   signal.Score,
			Summary: signal.Summary,
			URL:     signal.URL,
		})
	}
	return dto.LookupOutput{
		Provider: manifest.Name,
		Probe:    probe.ID,
		Topic:    input.Topic,
		Signals:  signals,
	}, nil
}

func (s *InsightService) loadValidated(ctx context.Context) ([]domain.Manifest, error) {
	manifests, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	seen := map[string]struct{}{}
	for _, manifest := range manifests {
		if err := manifest.Validate(); err != nil {
			return nil, err
		}
		if _, ok := seen[manifest.Name]; ok {
			return nil, fmt.Errorf("duplicate provider name: %s", manifest.Name)
		}
		seen[manifest.Name] = struct{}{}
	}
	return manifests, nil
}

func (s *InsightService) getRunnableManifest(ctx context.Context, provider string, required domain.Capability) (domain.Manifest, error) {
	manifests, err := s.loadValidated(ctx)
	if err != nil {
		return domain.Manifest{}, err
	}
	manifest := domain.Manifest{}
	found := false
	for _, item := range manifests {
		if item.Name == provider {
			manifest = item
			found = true
			break
		}
	}
	if !found {
		return domain.Manifest{}, fmt.Errorf("provider %q not found", provider)
	}
	if !manifest.Enabled {
		return domain.Manifest{}, fmt.Errorf("%w: %s", domain.ErrProviderDisabled, provider)
	}
	if required != "" && !manifest.HasCapability(required) {
		return domain.Manifest{}, fmt.Errorf("%w: %s", domain.ErrCapabilityMissing, required)
	}
	if err := checksumMatches(manifest.Binary, manifest.SHA256); err != nil {
		return domain.Manifest{}, err
	}
	if s.host != nil {
		if err := s.host.CheckLifecycle(ctx, manifest); err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				return domain.Manifest{}, fmt.Errorf("%w: %s", domain.ErrProviderTimeout, provider)
			}
			return domain.Manifest{}, err
		}
	}
	return manifest, nil
}

func resolveProbe(probes []domain.ProbeDescriptor, probeID string) (domain.ProbeDescriptor, error) {
	for _, probe := range probes {
		if err := probe.Validate(); err != nil {
			return domain.ProbeDescriptor{}, err
		}
	}
	if probeID == "" {
		if len(probes) == 1 {
			return probes[0], nil
		}
		return domain.ProbeDescriptor{}, fmt.Errorf("provider offers %d probes, name one", len(probes))
	}
	for _, probe := range probes {
		if probe.ID == probeID {
			return probe, nil
		}
	}
	return domain.ProbeDescriptor{}, fmt.Errorf("%w: %s", domain.ErrProbeNotFound, probeID)
}

func checksumMatches(path string, expected string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read provider binary: %w", err)
	}
	hash := sha256.Sum256(payload)
	if hex.EncodeToString(hash[:]) != expected {
		return fmt.Errorf("%w: %s", domain.ErrChecksumMismatch, filepath.Base(path))
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
