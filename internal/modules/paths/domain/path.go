package domain

import (
	"fmt"
	"strings"
	"time"
)

// GuestUserID is the reserved storage-partition sentinel for sessions that
// never authenticate. Guest data stays local and never reaches the remote
// service.
const GuestUserID = "guest"

type ResourceType string

const (
	ResourceTypeVideo         ResourceType = "video"
	ResourceTypeArticle       ResourceType = "article"
	ResourceTypeCourse        ResourceType = "course"
	ResourceTypeBook          ResourceType = "book"
	ResourceTypeTutorial      ResourceType = "tutorial"
	ResourceTypeDocumentation ResourceType = "documentation"
	ResourceTypePractice      ResourceType = "practice"
	ResourceTypeGeneric       ResourceType = "generic"
)

// Canonical maps any unrecognized type tag to the generic bucket, so a
// service that invents new tags cannot break rendering or persistence.
func (t ResourceType) Canonical() ResourceType {
	switch t {
	case ResourceTypeVideo, ResourceTypeArticle, ResourceTypeCourse, ResourceTypeBook,
		ResourceTypeTutorial, ResourceTypeDocumentation, ResourceTypePractice:
		return t
	default:
		return ResourceTypeGeneric
	}
}

type Resource struct {
	Type  ResourceType `json:"type"`
	Title string       `json:"title"`
	URL   string       `json:"url,omitempty"`
}

type EstimateUnit string

const (
	EstimateHours EstimateUnit = "hours"
	EstimateWeeks EstimateUnit = "weeks"
)

// Estimate is a milestone duration in whichever unit the service supplied.
// Both units appear upstream and both are preserved as-is.
type Estimate struct {
	Value float64      `json:"value"`
	Unit  EstimateUnit `json:"unit"`
}

func (e Estimate) IsZero() bool {
	return e.Value == 0
}

func (e Estimate) String() string {
	if e.IsZero() {
		return ""
	}
	return fmt.Sprintf("%g %s", e.Value, string(e.Unit))
}

// Milestone has no identity of its own; its position in the path's
// milestone sequence is its identity. Reordering is not a supported
// mutation.
type Milestone struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Estimate    Estimate   `json:"estimate,omitempty"`
	Resources   []Resource `json:"resources,omitempty"`
	Skills      []string   `json:"skills,omitempty"`
}

// LearningPath is the generated artifact: an ordered milestone plan for a
// topic plus per-milestone completion state keyed by milestone index.
type LearningPath struct {
	ID          string       `json:"id"`
	Topic       string       `json:"topic"`
	Description string       `json:"description,omitempty"`
	Milestones  []Milestone  `json:"milestones"`
	Completed   map[int]bool `json:"completed,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	SavedAt     time.Time    `json:"saved_at,omitempty"`
	OwnerID     string       `json:"owner_id,omitempty"`
}

func (p LearningPath) Validate() error {
	if strings.TrimSpace(p.Topic) == "" {
		return fmt.Errorf("topic is required")
	}
	for i, m := range p.Milestones {
		if strings.TrimSpace(m.Title) == "" {
			return fmt.Errorf("milestone %d: title is required", i)
		}
	}
	return nil
}

// MilestoneDone reports completion for a milestone index. Indices outside
// the milestone sequence are inapplicable and read as not done.
func (p LearningPath) MilestoneDone(index int) bool {
	if index < 0 || index >= len(p.Milestones) {
		return false
	}
	return p.Completed[index]
}

// SetMilestoneDone records completion for a milestone index. Writes never
// produce entries outside the milestone sequence.
func (p *LearningPath) SetMilestoneDone(index int, done bool) error {
	if index < 0 || index >= len(p.Milestones) {
		return fmt.Errorf("milestone index %d out of range [0, %d)", index, len(p.Milestones))
	}
	if p.Completed == nil {
		p.Completed = map[int]bool{}
	}
	p.Completed[index] = done
	return nil
}

// SanitizeCompletion drops completion entries that point outside the
// milestone sequence. Both backends run it on decode so stored or
// remotely-served violations never reach in-memory state.
func (p *LearningPath) SanitizeCompletion() {
	for index := range p.Completed {
		if index < 0 || index >= len(p.Milestones) {
			delete(p.Completed, index)
		}
	}
}

// Progress returns completed milestones over total, in [0, 1].
func (p LearningPath) Progress() float64 {
	if len(p.Milestones) == 0 {
		return 0
	}
	done := 0
	for i := range p.Milestones {
		if p.MilestoneDone(i) {
			done++
		}
	}
	return float64(done) / float64(len(p.Milestones))
}

// Clone returns a deep copy, so callers outside the store cannot alias
// the store's in-memory state.
func (p LearningPath) Clone() LearningPath {
	out := p
	if p.Milestones != nil {
		out.Milestones = make([]Milestone, len(p.Milestones))
		copy(out.Milestones, p.Milestones)
		for i, m := range p.Milestones {
			if m.Resources != nil {
				out.Milestones[i].Resources = append([]Resource(nil), m.Resources...)
			}
			if m.Skills != nil {
				out.Milestones[i].Skills = append([]string(nil), m.Skills...)
			}
		}
	}
	if p.Completed != nil {
		out.Completed = make(map[int]bool, len(p.Completed))
		for k, v := range p.Completed {
			out.Completed[k] = v
		}
	}
	return out
}
