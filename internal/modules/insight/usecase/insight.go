package usecase

import (
	"context"

	"pathlight/internal/modules/insight/dto"
	insightin "pathlight/internal/modules/insight/port/in"
	"pathlight/internal/modules/insight/service"
)

type Interactor struct {
	service *service.InsightService
}

var _ insightin.Usecase = (*Interactor)(nil)

func NewInteractor(svc *service.InsightService) *Interactor {
	return &Interactor{service: svc}
}

func (uc *Interactor) List(ctx context.Context) ([]dto.ProviderInfo, error) {
	return uc.service.List(ctx)
}

func (uc *Interactor) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	return uc.service.Doctor(ctx)
}

func (uc *Interactor) ListProbes(ctx context.Context, provider string) ([]dto.ProbeInfo, error) {
	return uc.service.ListProbes(ctx, provider)
}

func (uc *Interactor) Lookup(ctx context.Context, input dto.LookupInput) (dto.LookupOutput, error) {
	return uc.service.Lookup(ctx, input)
}
