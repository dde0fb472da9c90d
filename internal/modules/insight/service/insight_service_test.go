package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"pathlight/internal/modules/insight/domain"
	"pathlight/internal/modules/insight/dto"
)

type fakeManifestStore struct {
	manifests []domain.Manifest
	err       error
}

func (f *fakeManifestStore) Load(ctx context.Context) ([]domain.Manifest, error) {
	return f.manifests, f.err
}

type fakeHost struct {
	lifecycleErr error
	probes       []domain.ProbeDescriptor
	result       domain.LookupResult
	lookupErr    error

	lookups []domain.LookupRequest
}

func (f *fakeHost) CheckLifecycle(ctx context.Context, manifest domain.Manifest) error {
	return f.lifecycleErr
}

func (f *fakeHost) GetMetadata(ctx context.Context, manifest domain.Manifest) (domain.Metadata, error) {
	return domain.Metadata{Name: manifest.Name, Version: manifest.Version}, nil
}

func (f *fakeHost) ListProbes(ctx context.Context, manifest domain.Manifest) ([]domain.ProbeDescriptor, error) {
	return f.probes, nil
}

func (f *fakeHost) Lookup(ctx context.Context, manifest domain.Manifest, req domain.LookupRequest) (domain.LookupResult, error) {
	f.lookups = append(f.lookups, req)
	return f.result, f.lookupErr
}

// writeBinary creates a provider binary stand-in and returns its path and
// real checksum.
func writeBinary(t *testing.T) (string, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "provider")
	payload := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(path, payload, 0o755); err != nil {
		t.Fatalf("write binary: %v", err)
	}
	hash := sha256.Sum256(payload)
	return path, hex.EncodeToString(hash[:])
}

func manifestFor(t *testing.T, name string, enabled bool) domain.Manifest {
	t.Helper()
	binary, sum := writeBinary(t)
	return domain.Manifest{
		Name:         name,
		Version:      "1.0.0",
		Binary:       binary,
		SHA256:       sum,
		Enabled:      enabled,
		Capabilities: []domain.Capability{domain.CapabilityTrend},
	}
}

func TestLookupResolvesSoleProbe(t *testing.T) {
	t.Parallel()

	host := &fakeHost{
		probes: []domain.ProbeDescriptor{{ID: "trending", Capability: domain.CapabilityTrend}},
		result: domain.LookupResult{Signals: []domain.Signal{{Label: "rising", Score: 0.8}}},
	}
	svc := NewInsightService(&fakeManifestStore{manifests: []domain.Manifest{manifestFor(t, "trendwatch", true)}}, host)

	out, err := svc.Lookup(context.Background(), dto.LookupInput{Provider: "trendwatch", Topic: "Rust"})
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if out.Probe != "trending" || out.Topic != "Rust" {
		t.Fatalf("out = %+v, want the sole probe resolved", out)
	}
	if len(out.Signals) != 1 || out.Signals[0].Label != "rising" {
		t.Fatalf("signals = %+v", out.Signals)
	}
	if len(host.lookups) != 1 || host.lookups[0].ProbeID != "trending" {
		t.Fatalf("host lookups = %+v", host.lookups)
	}
}

func TestLookupRequiresProbeNameWhenAmbiguous(t *testing.T) {
	t.Parallel()

	host := &fakeHost{probes: []domain.ProbeDescriptor{
		{ID: "trending", Capability: domain.CapabilityTrend},
		{ID: "jobs", Capability: domain.CapabilityMarket},
	}}
	svc := NewInsightService(&fakeManifestStore{manifests: []domain.Manifest{manifestFor(t, "trendwatch", true)}}, host)

	if _, err := svc.Lookup(context.Background(), dto.LookupInput{Provider: "trendwatch", Topic: "Rust"}); err == nil {
		t.Fatal("Lookup succeeded without naming one of two probes")
	}

	out, err := svc.Lookup(context.Background(), dto.LookupInput{Provider: "trendwatch", Probe: "jobs", Topic: "Rust"})
	if err != nil {
		t.Fatalf("Lookup with probe name: %v", err)
	}
	if out.Probe != "jobs" {
		t.Fatalf("probe = %q, want jobs", out.Probe)
	}
}

func TestLookupUnknownProbe(t *testing.T) {
	t.Parallel()

	host := &fakeHost{probes: []domain.ProbeDescriptor{{ID: "trending", Capability: domain.CapabilityTrend}}}
	svc := NewInsightService(&fakeManifestStore{manifests: []domain.Manifest{manifestFor(t, "trendwatch", true)}}, host)

	_, err := svc.Lookup(context.Background(), dto.LookupInput{Provider: "trendwatch", Probe: "nope", Topic: "Rust"})
	if !errors.Is(err, domain.ErrProbeNotFound) {
		t.Fatalf("err = %v, want ErrProbeNotFound", err)
	}
}

func TestLookupRejectsDisabledProvider(t *testing.T) {
	t.Parallel()

	svc := NewInsightService(&fakeManifestStore{manifests: []domain.Manifest{manifestFor(t, "trendwatch", false)}}, &fakeHost{})
	_, err := svc.Lookup(context.Background(), dto.LookupInput{Provider: "trendwatch", Topic: "Rust"})
	if !errors.Is(err, domain.ErrProviderDisabled) {
		t.Fatalf("err = %v, want ErrProviderDisabled", err)
	}
}

func TestLookupRejectsTamperedBinary(t *testing.T) {
	t.Parallel()

	manifest := manifestFor(t, "trendwatch", true)
	if err := os.WriteFile(manifest.Binary, []byte("tampered"), 0o755); err != nil {
		t.Fatalf("tamper binary: %v", err)
	}
	svc := NewInsightService(&fakeManifestStore{manifests: []domain.Manifest{manifest}}, &fakeHost{})

	_, err := svc.Lookup(context.Background(), dto.LookupInput{Provider: "trendwatch", Topic: "Rust"})
	if !errors.Is(err, domain.ErrChecksumMismatch) {
		t.Fatalf("err = %v, want ErrChecksumMismatch", err)
	}
}

func TestListRejectsDuplicateProviderNames(t *testing.T) {
	t.Parallel()

	svc := NewInsightService(&fakeManifestStore{manifests: []domain.Manifest{
		manifestFor(t, "trendwatch", true),
		manifestFor(t, "trendwatch", true),
	}}, &fakeHost{})

	if _, err := svc.List(context.Background()); err == nil {
		t.Fatal("List accepted duplicate provider names")
	}
}

func TestDoctorReportsMissingBinary(t *testing.T) {
	t.Parallel()

	manifest := manifestFor(t, "trendwatch", true)
	if err := os.Remove(manifest.Binary); err != nil {
		t.Fatalf("remove binary: %v", err)
	}
	svc := NewInsightService(&fakeManifestStore{manifests: []domain.Manifest{manifest}}, &fakeHost{})

	results, err := svc.Doctor(context.Background())
	if err != nil {
		t.Fatalf("Doctor: %v", err)
	}
	if len(results) != 1 || results[0].BinaryReachable || results[0].Error == "" {
		t.Fatalf("results = %+v, want an unreachable-binary report", results)
	}
}
