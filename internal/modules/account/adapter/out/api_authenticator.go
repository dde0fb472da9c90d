package out

import (
	"context"
	"fmt"

	"pathlight/internal/modules/account/domain"
	accountout "pathlight/internal/modules/account/port/out"
	"pathlight/internal/platform/api"
)

// APIAuthenticator exchanges credentials with the remote service.
type APIAuthenticator struct {
	client *api.Client
}

var _ accountout.Authenticator = (*APIAuthenticator)(nil)

func NewAPIAuthenticator(client *api.Client) *APIAuthenticator {
	return &APIAuthenticator{client: client}
}

func (a *APIAuthenticator) Login(ctx context.Context, email, password string) (domain.Identity, error) {
	resp, err := a.client.Login(ctx, email, password)
	if err != nil {
		return domain.Identity{}, err
	}
	return identityFrom(resp, email)
}

func (a *APIAuthenticator) Register(ctx context.Context, name, email, password string) (domain.Identity, error) {
	resp, err := a.client.Register(ctx, name, email, password)
	if err != nil {
		return domain.Identity{}, err
	}
	return identityFrom(resp, email)
}

func (a *APIAuthenticator) Logout(ctx context.Context) error {
	return a.client.Logout(ctx)
}

func identityFrom(resp api.AuthResponse, fallbackEmail string) (domain.Identity, error) {
	if resp.Token == "" || resp.User.ID == "" {
		return domain.Identity{}, fmt.Errorf("auth response missing token or user id")
	}
	identity := domain.Identity{
		UserID: resp.User.ID,
		Name:   resp.User.Name,
		Email:  resp.User.Email,
		Token:  resp.Token,
	}
	if identity.Email == "" {
		identity.Email = fallbackEmail
	}
	return identity, nil
}
