package out

import (
	"testing"

	"pathlight/internal/modules/paths/domain"
	"pathlight/internal/platform/api"
)

func TestDecodePathPrefersCanonicalTitle(t *testing.T) {
	t.Parallel()

	path := decodePath(api.PathPayload{
		Topic: "Go",
		Milestones: []api.MilestonePayload{
			{Title: "Canonical", LegacyTitle: "Legacy"},
			{LegacyTitle: "Legacy only"},
		},
	})
	if path.Milestones[0].Title != "Canonical" {
		t.Fatalf("title = %q, want the canonical field to win", path.Milestones[0].Title)
	}
	if path.Milestones[1].Title != "Legacy only" {
		t.Fatalf("title = %q, want the legacy fallback", path.Milestones[1].Title)
	}
}

func TestDecodePathMapsEstimates(t *testing.T) {
	t.Parallel()

	path := decodePath(api.PathPayload{
		Topic: "Go",
		Milestones: []api.MilestonePayload{
			{Title: "A", EstimatedHours: 12},
			{Title: "B", EstimatedWeeks: 2},
			{Title: "C"},
		},
	})
	if got := path.Milestones[0].Estimate; got.Value != 12 || got.Unit != domain.EstimateHours {
		t.Fatalf("estimate = %+v, want 12 hours", got)
	}
	if got := path.Milestones[1].Estimate; got.Value != 2 || got.Unit != domain.EstimateWeeks {
		t.Fatalf("estimate = %+v, want 2 weeks", got)
	}
	if !path.Milestones[2].Estimate.IsZero() {
		t.Fatalf("estimate = %+v, want zero", path.Milestones[2].Estimate)
	}
}

func TestDecodePathSanitizesCompletionKeys(t *testing.T) {
	t.Parallel()

	path := decodePath(api.PathPayload{
		Topic:      "Go",
		Milestones: []api.MilestonePayload{{Title: "Only"}},
		Completed: map[string]bool{
			"0":      true,
			"7":      true, // outside the milestone sequence
			"potato": true, // not an index at all
		},
	})
	if len(path.Completed) != 1 || !path.Completed[0] {
		t.Fatalf("completed = %v, want only index 0", path.Completed)
	}
}

func TestDecodePathBucketsUnknownResourceTypes(t *testing.T) {
	t.Parallel()

	path := decodePath(api.PathPayload{
		Topic: "Go",
		Milestones: []api.MilestonePayload{{
			Title: "A",
			Resources: []api.ResourcePayload{
				{Type: "video", Title: "V"},
				{Type: "hologram", Title: "H"},
			},
		}},
	})
	resources := path.Milestones[0].Resources
	if resources[0].Type != domain.ResourceTypeVideo {
		t.Fatalf("type = %q, want video preserved", resources[0].Type)
	}
	if resources[1].Type != domain.ResourceTypeGeneric {
		t.Fatalf("type = %q, want unknown tags bucketed as generic", resources[1].Type)
	}
}

func TestEncodePathRoundTripsThroughDecode(t *testing.T) {
	t.Parallel()

	original := domain.LearningPath{
		ID:    "p1",
		Topic: "Distributed Systems",
		Milestones: []domain.Milestone{
			{Title: "Consensus", Estimate: domain.Estimate{Value: 3, Unit: domain.EstimateWeeks}},
			{Title: "Replication", Estimate: domain.Estimate{Value: 20, Unit: domain.EstimateHours}},
		},
		Completed: map[int]bool{1: true},
		OwnerID:   "alice",
	}

	decoded := decodePath(encodePath(original))
	if decoded.ID != "p1" || decoded.Topic != original.Topic || decoded.OwnerID != "alice" {
		t.Fatalf("decoded = %+v, want identity fields preserved", decoded)
	}
	if decoded.Milestones[0].Estimate != original.Milestones[0].Estimate {
		t.Fatalf("estimate = %+v, want %+v", decoded.Milestones[0].Estimate, original.Milestones[0].Estimate)
	}
	if !decoded.Completed[1] || decoded.Completed[0] {
		t.Fatalf("completed = %v, want only index 1", decoded.Completed)
	}
}
