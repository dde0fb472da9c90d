package out

import (
	"context"

	"pathlight/internal/modules/paths/domain"
)

// GenerateResult is the discriminated outcome of a generation submission:
// either Path is set (the service completed synchronously) or TaskID names
// a job to poll.
type GenerateResult struct {
	TaskID string
	Status domain.TaskStatus
	Path   *domain.LearningPath
}

// Generator talks to the remote generation pipeline.
type Generator interface {
	Generate(ctx context.Context, form domain.GenerationForm) (GenerateResult, error)
	Status(ctx context.Context, taskID string) (domain.Task, error)
	Result(ctx context.Context, taskID string) (domain.LearningPath, error)
}

// RemoteStore mirrors saved paths to the remote service. Every method may
// fail without consequence for local durability; the store treats remote
// as best-effort.
type RemoteStore interface {
	Save(ctx context.Context, path domain.LearningPath) (string, error)
	List(ctx context.Context) ([]domain.LearningPath, error)
	Get(ctx context.Context, id string) (domain.LearningPath, error)
	Delete(ctx context.Context, id string) error
	UpdateMilestone(ctx context.Context, pathID string, index int, completed bool) error
}

// PartitionStore is the local durability floor: one partition per user,
// holding that user's saved paths.
type PartitionStore interface {
	Load(ctx context.Context, userID string) ([]domain.LearningPath, error)
	Save(ctx context.Context, userID string, paths []domain.LearningPath) error
}

// Exporter renders a path to a document on disk and returns its location.
type Exporter interface {
	Export(ctx context.Context, path domain.LearningPath) (string, error)
}
