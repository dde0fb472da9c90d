package out

import (
	"context"

	"pathlight/internal/modules/account/domain"
)

// Authenticator exchanges credentials for an identity with the remote
// service.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (domain.Identity, error)
	Register(ctx context.Context, name, email, password string) (domain.Identity, error)
	Logout(ctx context.Context) error
}

// CredentialStore persists the identity across restarts. Load returns
// ErrNotAuthenticated when nothing is stored.
type CredentialStore interface {
	Save(ctx context.Context, identity domain.Identity) error
	Load(ctx context.Context) (domain.Identity, error)
	Clear(ctx context.Context) error
}
