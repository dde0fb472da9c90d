package in

import (
	"context"

	"pathlight/internal/modules/paths/dto"
	pathsin "pathlight/internal/modules/paths/port/in"
)

type CLIHandler struct {
	usecase pathsin.Usecase
}

func NewCLIHandler(usecase pathsin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Generate(ctx context.Context, topic, expertise string, weeks int, commitment, style string, goals []string) (dto.GenerateOutput, error) {
	return h.usecase.Generate(ctx, dto.GenerateInput{
		Topic:          topic,
		ExpertiseLevel: expertise,
		DurationWeeks:  weeks,
		TimeCommitment: commitment,
		LearningStyle:  style,
		Goals:          goals,
	})
}

func (h CLIHandler) GenerationState() dto.GenerationView {
	return h.usecase.GenerationState()
}

func (h CLIHandler) CurrentPath() (dto.PathDetail, bool) {
	return h.usecase.CurrentPath()
}

func (h CLIHandler) SaveCurrent(ctx context.Context) (dto.SaveOutput, error) {
	return h.usecase.SaveCurrent(ctx)
}

func (h CLIHandler) CancelGeneration() {
	h.usecase.CancelGeneration()
}

func (h CLIHandler) LoadSavedPaths(ctx context.Context, userID string) dto.LoadOutput {
	return h.usecase.LoadSavedPaths(ctx, userID)
}

func (h CLIHandler) ListPaths(ctx context.Context) []dto.PathSummary {
	return h.usecase.ListPaths(ctx)
}

func (h CLIHandler) GetPath(ctx context.Context, id string) (dto.PathDetail, error) {
	return h.usecase.GetPath(ctx, id)
}

func (h CLIHandler) DeletePath(ctx context.Context, id string) error {
	return h.usecase.DeletePath(ctx, id)
}

func (h CLIHandler) SetMilestoneDone(ctx context.Context, pathID string, index int, done bool) error {
	return h.usecase.SetMilestoneDone(ctx, pathID, index, done)
}

func (h CLIHandler) ExportPath(ctx context.Context, id string) (dto.ExportOutput, error) {
	return h.usecase.ExportPath(ctx, id)
}
