package in

import (
	"context"

	"pathlight/internal/modules/insight/dto"
	insightin "pathlight/internal/modules/insight/port/in"
)

type CLIHandler struct {
	usecase insightin.Usecase
}

func NewCLIHandler(usecase insightin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) List(ctx context.Context) ([]dto.ProviderInfo, error) {
	return h.usecase.List(ctx)
}

func (h CLIHandler) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	return h.usecase.Doctor(ctx)
}

func (h CLIHandler) ListProbes(ctx context.Context, provider string) ([]dto.ProbeInfo, error) {
	return h.usecase.ListProbes(ctx, provider)
}

func (h CLIHandler) Lookup(ctx context.Context, provider, probe, topic string) (dto.LookupOutput, error) {
	return h.usecase.Lookup(ctx, dto.LookupInput{Provider: provider, Probe: probe, Topic: topic})
}
