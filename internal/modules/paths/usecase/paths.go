package usecase

import (
	"context"
	"fmt"

	"pathlight/internal/modules/paths/domain"
	"pathlight/internal/modules/paths/dto"
	pathsin "pathlight/internal/modules/paths/port/in"
	pathsout "pathlight/internal/modules/paths/port/out"
)

// Interactor adapts the store service to the inbound port: it maps domain
// values to DTOs and hands deferred generation tasks to the poller. All
// policy lives in the service layer.
type Interactor struct {
	store    storeService
	exporter pathsout.Exporter
}

// storeService is the slice of the store the interactor needs. Declared
// here so the usecase stays mockable without importing service internals.
type storeService interface {
	SetCurrentUser(userID string)
	ResetForUserSwitch()
	LoadSavedPaths(ctx context.Context, userID string) ([]domain.LearningPath, bool, string)
	ListPaths() []domain.LearningPath
	GetPath(ctx context.Context, pathID string) (domain.LearningPath, error)
	DeletePath(ctx context.Context, pathID string) error
	SetMilestoneDone(ctx context.Context, pathID string, index int, done bool) error
	Generate(ctx context.Context, form domain.GenerationForm) (pathsout.GenerateResult, error)
	StartPolling(taskID string) error
	CancelPolling()
	Snapshot() (domain.Task, bool, string, *domain.LearningPath)
	SaveCurrent(ctx context.Context) (domain.LearningPath, bool, error)
	ResetGeneration()
}

var _ pathsin.Usecase = (*Interactor)(nil)

func NewInteractor(store storeService, exporter pathsout.Exporter) *Interactor {
	return &Interactor{store: store, exporter: exporter}
}

func (uc *Interactor) SetCurrentUser(userID string) {
	uc.store.SetCurrentUser(userID)
}

func (uc *Interactor) ResetForUserSwitch() {
	uc.store.ResetForUserSwitch()
}

func (uc *Interactor) LoadSavedPaths(ctx context.Context, userID string) dto.LoadOutput {
	paths, fromRemote, warning := uc.store.LoadSavedPaths(ctx, userID)
	return dto.LoadOutput{
		Paths:      summaries(paths),
		FromRemote: fromRemote,
		Warning:    warning,
	}
}

func (uc *Interactor) ListPaths(ctx context.Context) []dto.PathSummary {
	return summaries(uc.store.ListPaths())
}

func (uc *Interactor) GetPath(ctx context.Context, id string) (dto.PathDetail, error) {
	path, err := uc.store.GetPath(ctx, id)
	if err != nil {
		return dto.PathDetail{}, err
	}
	return detail(path), nil
}

func (uc *Interactor) DeletePath(ctx context.Context, id string) error {
	return uc.store.DeletePath(ctx, id)
}

func (uc *Interactor) SetMilestoneDone(ctx context.Context, pathID string, index int, done bool) error {
	return uc.store.SetMilestoneDone(ctx, pathID, index, done)
}

func (uc *Interactor) ExportPath(ctx context.Context, id string) (dto.ExportOutput, error) {
	path, err := uc.store.GetPath(ctx, id)
	if err != nil {
		return dto.ExportOutput{}, err
	}
	filePath, err := uc.exporter.Export(ctx, path)
	if err != nil {
		return dto.ExportOutput{}, fmt.Errorf("export path: %w", err)
	}
	return dto.ExportOutput{FilePath: filePath}, nil
}

// Generate submits the form; a deferred outcome also starts the poller so
// callers only have to watch GenerationState.
func (uc *Interactor) Generate(ctx context.Context, input dto.GenerateInput) (dto.GenerateOutput, error) {
	form := domain.GenerationForm{
		Topic:          input.Topic,
		ExpertiseLevel: input.ExpertiseLevel,
		DurationWeeks:  input.DurationWeeks,
		TimeCommitment: input.TimeCommitment,
		LearningStyle:  input.LearningStyle,
		Goals:          input.Goals,
	}
	result, err := uc.store.Generate(ctx, form)
	if err != nil {
		return dto.GenerateOutput{}, err
	}
	if result.Path != nil {
		return dto.GenerateOutput{Immediate: true}, nil
	}
	if err := uc.store.StartPolling(result.TaskID); err != nil {
		return dto.GenerateOutput{}, err
	}
	return dto.GenerateOutput{TaskID: result.TaskID, Status: string(result.Status)}, nil
}

func (uc *Interactor) GenerationState() dto.GenerationView {
	task, generating, lastError, current := uc.store.Snapshot()
	view := dto.GenerationView{
		Generating: generating,
		TaskID:     task.ID,
		Status:     string(task.Status),
		Step:       task.Status.StepIndex(),
		StepCount:  domain.StepCount,
		Error:      lastError,
		HasResult:  current != nil,
	}
	if current != nil {
		view.Topic = current.Topic
	}
	return view
}

func (uc *Interactor) CurrentPath() (dto.PathDetail, bool) {
	_, _, _, current := uc.store.Snapshot()
	if current == nil {
		return dto.PathDetail{}, false
	}
	return detail(*current), true
}

func (uc *Interactor) SaveCurrent(ctx context.Context) (dto.SaveOutput, error) {
	path, remoteSaved, err := uc.store.SaveCurrent(ctx)
	if err != nil {
		return dto.SaveOutput{}, err
	}
	return dto.SaveOutput{
		PathID:      path.ID,
		RemoteSaved: remoteSaved,
		SavedAt:     path.SavedAt,
	}, nil
}

func (uc *Interactor) CancelGeneration() {
	uc.store.CancelPolling()
	uc.store.ResetGeneration()
}

func (uc *Interactor) ResetGeneration() {
	uc.store.ResetGeneration()
}

func summaries(paths []domain.LearningPath) []dto.PathSummary {
	out := make([]dto.PathSummary, len(paths))
	for i, p := range paths {
		out[i] = dto.PathSummary{
			ID:         p.ID,
			Topic:      p.Topic,
			Milestones: len(p.Milestones),
			Progress:   p.Progress(),
			SavedAt:    p.SavedAt,
		}
	}
	return out
}

func detail(p domain.LearningPath) dto.PathDetail {
	milestones := make([]dto.MilestoneView, len(p.Milestones))
	for i, m := range p.Milestones {
		resources := make([]dto.ResourceView, len(m.Resources))
		for j, r := range m.Resources {
			resources[j] = dto.ResourceView{
				Type:  string(r.Type.Canonical()),
				Title: r.Title,
				URL:   r.URL,
			}
		}
		milestones[i] = dto.MilestoneView{
			Index:       i,
			Title:       m.Title,
			Description: m.Description,
			Estimate:    m.Estimate.String(),
			Done:        p.MilestoneDone(i),
			Resources:   resources,
			Skills:      m.Skills,
		}
	}
	return dto.PathDetail{
		ID:          p.ID,
		Topic:       p.Topic,
		Description: p.Description,
		Milestones:  milestones,
		Progress:    p.Progress(),
		CreatedAt:   p.CreatedAt,
		SavedAt:     p.SavedAt,
		OwnerID:     p.OwnerID,
	}
}
