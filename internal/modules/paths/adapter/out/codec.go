package out

import (
	"strconv"
	"time"

	"pathlight/internal/modules/paths/domain"
	"pathlight/internal/platform/api"
)

// decodePath folds the wire payload's quirks into a clean domain value:
// the legacy "milestone" title field, the split hour/week estimates, the
// string-keyed completion map, and unrecognized resource type tags.
func decodePath(p api.PathPayload) domain.LearningPath {
	path := domain.LearningPath{
		ID:          p.ID,
		Topic:       p.Topic,
		Description: p.Description,
		OwnerID:     p.UserID,
		Milestones:  make([]domain.Milestone, len(p.Milestones)),
	}
	for i, m := range p.Milestones {
		path.Milestones[i] = decodeMilestone(m)
	}
	if len(p.Completed) > 0 {
		path.Completed = make(map[int]bool, len(p.Completed))
		for key, done := range p.Completed {
			index, err := strconv.Atoi(key)
			if err != nil {
				continue
			}
			path.Completed[index] = done
		}
	}
	if p.CreatedAt != "" {
		if t, err := time.Parse(time.RFC3339, p.CreatedAt); err == nil {
			path.CreatedAt = t
		}
	}
	path.SanitizeCompletion()
	return path
}

func decodeMilestone(m api.MilestonePayload) domain.Milestone {
	title := m.Title
	if title == "" {
		title = m.LegacyTitle
	}
	out := domain.Milestone{
		Title:       title,
		Description: m.Description,
		Skills:      m.Skills,
	}
	switch {
	case m.EstimatedHours > 0:
		out.Estimate = domain.Estimate{Value: m.EstimatedHours, Unit: domain.EstimateHours}
	case m.EstimatedWeeks > 0:
		out.Estimate = domain.Estimate{Value: m.EstimatedWeeks, Unit: domain.EstimateWeeks}
	}
	if len(m.Resources) > 0 {
		out.Resources = make([]domain.Resource, len(m.Resources))
		for i, r := range m.Resources {
			out.Resources[i] = domain.Resource{
				Type:  domain.ResourceType(r.Type).Canonical(),
				Title: r.Title,
				URL:   r.URL,
			}
		}
	}
	return out
}

// encodePath produces the wire shape the service accepts. Only the
// canonical title field is written; the legacy one is read-side only.
func encodePath(p domain.LearningPath) api.PathPayload {
	payload := api.PathPayload{
		ID:          p.ID,
		Topic:       p.Topic,
		Description: p.Description,
		UserID:      p.OwnerID,
		Milestones:  make([]api.MilestonePayload, len(p.Milestones)),
	}
	for i, m := range p.Milestones {
		payload.Milestones[i] = encodeMilestone(m)
	}
	if len(p.Completed) > 0 {
		payload.Completed = make(map[string]bool, len(p.Completed))
		for index, done := range p.Completed {
			payload.Completed[strconv.Itoa(index)] = done
		}
	}
	if !p.CreatedAt.IsZero() {
		payload.CreatedAt = p.CreatedAt.UTC().Format(time.RFC3339)
	}
	return payload
}

func encodeMilestone(m domain.Milestone) api.MilestonePayload {
	payload := api.MilestonePayload{
		Title:       m.Title,
		Description: m.Description,
		Skills:      m.Skills,
	}
	switch m.Estimate.Unit {
	case domain.EstimateWeeks:
		payload.EstimatedWeeks = m.Estimate.Value
	default:
		payload.EstimatedHours = m.Estimate.Value
	}
	if len(m.Resources) > 0 {
		payload.Resources = make([]api.ResourcePayload, len(m.Resources))
		for i, r := range m.Resources {
			payload.Resources[i] = api.ResourcePayload{
				Type:  string(r.Type),
				Title: r.Title,
				URL:   r.URL,
			}
		}
	}
	return payload
}
