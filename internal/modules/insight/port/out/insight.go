package out

import (
	"context"

	"pathlight/internal/modules/insight/domain"
)

type ManifestStore interface {
	Load(ctx context.Context) ([]domain.Manifest, error)
}

// Host launches a provider binary and speaks the insight RPC contract
// with it. Every call spans one provider process lifetime.
type Host interface {
	CheckLifecycle(ctx context.Context, manifest domain.Manifest) error
	GetMetadata(ctx context.Context, manifest domain.Manifest) (domain.Metadata, error)
	ListProbes(ctx context.Context, manifest domain.Manifest) ([]domain.ProbeDescriptor, error)
	Lookup(ctx context.Context, manifest domain.Manifest, req domain.LookupRequest) (domain.LookupResult, error)
}
