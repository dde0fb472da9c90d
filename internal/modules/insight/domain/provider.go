package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Capability names the kind of signal a provider can produce: technology
// trend data or job-market data for a topic.
type Capability string

const (
	CapabilityTrend  Capability = "trend"
	CapabilityMarket Capability = "market"
)

var (
	ErrProviderDisabled  = errors.New("insight provider is disabled")
	ErrChecksumMismatch  = errors.New("insight provider checksum mismatch")
	ErrCapabilityMissing = errors.New("insight provider capability missing")
	ErrProbeNotFound     = errors.New("insight probe not found")
	ErrProviderTimeout   = errors.New("insight provider timeout")
)

var sha256Pattern = regexp.MustCompile(`^[a-f0-9]{64}$`)

// Manifest registers one out-of-process provider. The binary is verified
// against the pinned checksum before every launch.
type Manifest struct {
	Name         string       `json:"name"`
	Version      string       `json:"version"`
	Binary       string       `json:"binary"`
	SHA256       string       `json:"sha256"`
	Enabled      bool         `json:"enabled"`
	Capabilities []Capability `json:"capabilities"`
}

func (m Manifest) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("provider name is required")
	}
	if m.Version == "" {
		return fmt.Errorf("provider version is required")
	}
	if m.Binary == "" {
		return fmt.Errorf("provider binary path is required")
	}
	if !sha256Pattern.MatchString(m.SHA256) {
		return fmt.Errorf("provider sha256 must be lowercase 64-char hex")
	}
	if len(m.Capabilities) == 0 {
		return fmt.Errorf("provider capabilities are required")
	}
	seen := map[Capability]struct{}{}
	for _, capability := range m.Capabilities {
		if err := capability.Validate(); err != nil {
			return err
		}
		if _, ok := seen[capability]; ok {
			return fmt.Errorf("duplicate capability: %s", capability)
		}
		seen[capability] = struct{}{}
	}
	return nil
}

func (c Capability) Validate() error {
	switch c {
	case CapabilityTrend, CapabilityMarket:
		return nil
	default:
		return fmt.Errorf("unknown capability: %s", c)
	}
}

func (m Manifest) HasCapability(capability Capability) bool {
	for _, c := range m.Capabilities {
		if c == capability {
			return true
		}
	}
	return false
}

// Metadata is what the provider reports about itself at runtime.
type Metadata struct {
	Name         string
	Version      string
	Capabilities []Capability
}

// ProbeDescriptor is one query the provider offers.
type ProbeDescriptor struct {
	ID          string
	Title       string
	Description string
	Capability  Capability
	TimeoutMS   int
}

func (d ProbeDescriptor) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("probe id is required")
	}
	return d.Capability.Validate()
}

// LookupRequest asks one probe about one topic.
type LookupRequest struct {
	ProbeID string
	Topic   string
}

func (r LookupRequest) Validate() error {
	if r.ProbeID == "" {
		return fmt.Errorf("probe id is required")
	}
	if strings.TrimSpace(r.Topic) == "" {
		return fmt.Errorf("topic is required")
	}
	return nil
}

// Signal is one scored finding about a topic. Score is in [0, 1].
type Signal struct {
	Label   string
	Score   float64
	Summary string
	URL     string
}

type LookupResult struct {
	Signals []Signal
}
