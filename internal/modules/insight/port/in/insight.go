package in

import (
	"context"

	"pathlight/internal/modules/insight/dto"
)

type Usecase interface {
	List(ctx context.Context) ([]dto.ProviderInfo, error)
	Doctor(ctx context.Context) ([]dto.DoctorResult, error)
	ListProbes(ctx context.Context, provider string) ([]dto.ProbeInfo, error)
	Lookup(ctx context.Context, input dto.LookupInput) (dto.LookupOutput, error)
}
