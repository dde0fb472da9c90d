package dto

import "time"

type GenerateInput struct {
	Topic          string
	ExpertiseLevel string
	DurationWeeks  int
	TimeCommitment string
	LearningStyle  string
	Goals          []string
}

// GenerateOutput distinguishes the synchronous-completion case from the
// deferred case the poller has to drive.
type GenerateOutput struct {
	Immediate bool
	TaskID    string
	Status    string
}

// GenerationView is an observable snapshot of the current generation,
// safe to render from any goroutine.
type GenerationView struct {
	Generating bool
	TaskID     string
	Status     string
	Step       int
	StepCount  int
	Error      string
	HasResult  bool
	Topic      string
}

type LoadOutput struct {
	Paths      []PathSummary
	FromRemote bool
	Warning    string
}

type PathSummary struct {
	ID         string
	Topic      string
	Milestones int
	Progress   float64
	SavedAt    time.Time
}

type PathDetail struct {
	ID          string
	Topic       string
	Description string
	Milestones  []MilestoneView
	Progress    float64
	CreatedAt   time.Time
	SavedAt     time.Time
	OwnerID     string
}

type MilestoneView struct {
	Index       int
	Title       string
	Description string
	Estimate    string
	Done        bool
	Resources   []ResourceView
	Skills      []string
}

type ResourceView struct {
	Type  string
	Title string
	URL   string
}

type SaveOutput struct {
	PathID      string
	RemoteSaved bool
	SavedAt     time.Time
}

type ExportOutput struct {
	FilePath string
}
