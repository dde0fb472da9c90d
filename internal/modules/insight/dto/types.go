package dto

type ProviderInfo struct {
	Name         string
	Version      string
	Enabled      bool
	Binary       string
	Capabilities []string
}

type DoctorResult struct {
	Name            string
	ChecksumValid   bool
	BinaryReachable bool
	LifecycleOK     bool
	Error           string
}

type ProbeInfo struct {
	ID          string
	Title       string
	Description string
	Capability  string
	TimeoutMS   int
}

type LookupInput struct {
	Provider string
	Probe    string
	Topic    string
}

type SignalView struct {
	Label   string
	Score   float64
	Summary string
	URL     string
}

type LookupOutput struct {
	Provider string
	Probe    string
	Topic    string
	Signals  []SignalView
}
