package in

import (
	"context"

	"pathlight/internal/modules/paths/dto"
)

// Usecase is the full surface screens and the CLI depend on. The store
// behind it is the single source of truth for the current generation and
// the saved collection.
type Usecase interface {
	// identity plumbing, driven by the account module
	SetCurrentUser(userID string)
	ResetForUserSwitch()

	// saved collection
	LoadSavedPaths(ctx context.Context, userID string) dto.LoadOutput
	ListPaths(ctx context.Context) []dto.PathSummary
	GetPath(ctx context.Context, id string) (dto.PathDetail, error)
	DeletePath(ctx context.Context, id string) error
	SetMilestoneDone(ctx context.Context, pathID string, index int, done bool) error
	ExportPath(ctx context.Context, id string) (dto.ExportOutput, error)

	// generation lifecycle
	Generate(ctx context.Context, input dto.GenerateInput) (dto.GenerateOutput, error)
	GenerationState() dto.GenerationView
	CurrentPath() (dto.PathDetail, bool)
	SaveCurrent(ctx context.Context) (dto.SaveOutput, error)
	CancelGeneration()
	ResetGeneration()
}
