package out_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	insightout "pathlight/internal/modules/insight/adapter/out"
	"pathlight/internal/modules/insight/domain"
)

func TestGRPCHostIntegrationTrendwatchProvider(t *testing.T) {
	if testing.Short() {
		t.Skip("builds and launches the provider binary")
	}

	binPath, checksum := buildTrendwatchProvider(t)
	manifest := domain.Manifest{
		Name:         "trendwatch",
		Version:      "1.0.0",
		Binary:       binPath,
		SHA256:       checksum,
		Enabled:      true,
		Capabilities: []domain.Capability{domain.CapabilityTrend, domain.CapabilityMarket},
	}

	host := insightout.NewGRPCHost()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := host.CheckLifecycle(ctx, manifest); err != nil {
		t.Fatalf("check lifecycle: %v", err)
	}
	metadata, err := host.GetMetadata(ctx, manifest)
	if err != nil {
		t.Fatalf("get metadata: %v", err)
	}
	if metadata.Name != "trendwatch" {
		t.Fatalf("unexpected metadata name: %s", metadata.Name)
	}
	probes, err := host.ListProbes(ctx, manifest)
	if err != nil {
		t.Fatalf("list probes: %v", err)
	}
	if len(probes) != 2 {
		t.Fatalf("expected 2 probes, got %d", len(probes))
	}

	result, err := host.Lookup(ctx, manifest, domain.LookupRequest{ProbeID: "trending", Topic: "Rust"})
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if len(result.Signals) == 0 {
		t.Fatal("expected at least one signal")
	}
	for _, signal := range result.Signals {
		if signal.Score < 0 || signal.Score >= 1 {
			t.Fatalf("score %f out of range", signal.Score)
		}
	}
}

func buildTrendwatchProvider(t *testing.T) (string, string) {
	t.Helper()
	tmp := t.TempDir()
	binPath := filepath.Join(tmp, "trendwatch-provider")
	cmd := exec.Command("go", "build", "-o", binPath, "./plugins/trendwatch")
	cmd.Dir = repositoryRoot(t)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("build trendwatch provider: %v\n%s", err, string(out))
	}
	payload, err := os.ReadFile(binPath)
	if err != nil {
		t.Fatalf("read built provider: %v", err)
	}
	hash := sha256.Sum256(payload)
	return binPath, hex.EncodeToString(hash[:])
}

func repositoryRoot(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("runtime caller failed")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "../../../../../"))
}
