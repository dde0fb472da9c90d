package domain

import (
	"strings"
	"testing"
)

func validManifest() Manifest {
	return Manifest{
		Name:         "trendwatch",
		Version:      "1.0.0",
		Binary:       "/opt/pathlight/providers/trendwatch",
		SHA256:       strings.Repeat("ab", 32),
		Enabled:      true,
		Capabilities: []Capability{CapabilityTrend},
	}
}

func TestManifestValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*Manifest)
		wantOK bool
	}{
		{"valid", func(m *Manifest) {}, true},
		{"missing name", func(m *Manifest) { m.Name = "" }, false},
		{"missing version", func(m *Manifest) { m.Version = "" }, false},
		{"missing binary", func(m *Manifest) { m.Binary = "" }, false},
		{"uppercase checksum", func(m *Manifest) { m.SHA256 = strings.Repeat("AB", 32) }, false},
		{"short checksum", func(m *Manifest) { m.SHA256 = "abcd" }, false},
		{"no capabilities", func(m *Manifest) { m.Capabilities = nil }, false},
		{"unknown capability", func(m *Manifest) { m.Capabilities = []Capability{"oracle"} }, false},
		{"duplicate capability", func(m *Manifest) {
			m.Capabilities = []Capability{CapabilityTrend, CapabilityTrend}
		}, false},
		{"both capabilities", func(m *Manifest) {
			m.Capabilities = []Capability{CapabilityTrend, CapabilityMarket}
		}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			manifest := validManifest()
			tc.mutate(&manifest)
			err := manifest.Validate()
			if tc.wantOK && err != nil {
				t.Fatalf("Validate: %v", err)
			}
			if !tc.wantOK && err == nil {
				t.Fatal("Validate accepted an invalid manifest")
			}
		})
	}
}

func TestLookupRequestValidate(t *testing.T) {
	t.Parallel()

	if err := (LookupRequest{ProbeID: "trending", Topic: "Rust"}).Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if err := (LookupRequest{Topic: "Rust"}).Validate(); err == nil {
		t.Fatal("accepted a request without a probe id")
	}
	if err := (LookupRequest{ProbeID: "trending", Topic: "   "}).Validate(); err == nil {
		t.Fatal("accepted a blank topic")
	}
}
