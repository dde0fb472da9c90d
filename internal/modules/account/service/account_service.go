package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"pathlight/internal/modules/account/domain"
	accountout "pathlight/internal/modules/account/port/out"
	apperrors "pathlight/internal/platform/errors"
)

// AccountService owns the current identity. Credential persistence is
// best-effort: a session that cannot be written to disk still works for
// the life of the process.
type AccountService struct {
	auth   accountout.Authenticator
	creds  accountout.CredentialStore
	logger *slog.Logger

	mu      sync.Mutex
	current domain.Identity
}

func NewAccountService(auth accountout.Authenticator, creds accountout.CredentialStore, logger *slog.Logger) *AccountService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AccountService{
		auth:    auth,
		creds:   creds,
		logger:  logger,
		current: domain.Guest(),
	}
}

// Restore loads the persisted identity, falling back to guest when none
// is stored or the stored one is unreadable.
func (s *AccountService) Restore(ctx context.Context) domain.Identity {
	identity, err := s.creds.Load(ctx)
	if err != nil || identity.IsZero() {
		if err != nil && !isNotAuthenticated(err) {
			s.logger.Warn("stored credentials unreadable, starting as guest", "error", err)
		}
		identity = domain.Guest()
	}
	s.mu.Lock()
	s.current = identity
	s.mu.Unlock()
	return identity
}

func (s *AccountService) Login(ctx context.Context, email, password string) (domain.Identity, error) {
	if err := domain.ValidateLogin(email, password); err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %s", apperrors.ErrInvalidInput, err)
	}
	identity, err := s.auth.Login(ctx, email, password)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("login: %w", err)
	}
	s.adopt(ctx, identity)
	return identity, nil
}

func (s *AccountService) Register(ctx context.Context, name, email, password string) (domain.Identity, error) {
	if err := domain.ValidateRegistration(name, email, password); err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %s", apperrors.ErrInvalidInput, err)
	}
	identity, err := s.auth.Register(ctx, name, email, password)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("register: %w", err)
	}
	s.adopt(ctx, identity)
	return identity, nil
}

// ContinueAsGuest switches to the anonymous identity without touching
// stored credentials, so a remembered login survives guest browsing.
func (s *AccountService) ContinueAsGuest() domain.Identity {
	identity := domain.Guest()
	s.mu.Lock()
	s.current = identity
	s.mu.Unlock()
	return identity
}

// Logout revokes the remote session best-effort, clears the stored
// credentials, and drops to guest.
func (s *AccountService) Logout(ctx context.Context) domain.Identity {
	if err := s.auth.Logout(ctx); err != nil {
		s.logger.Warn("remote logout failed, clearing local session anyway", "error", err)
	}
	if err := s.creds.Clear(ctx); err != nil {
		s.logger.Warn("clearing stored credentials failed", "error", err)
	}
	identity := domain.Guest()
	s.mu.Lock()
	s.current = identity
	s.mu.Unlock()
	return identity
}

func (s *AccountService) Current() domain.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Token implements the API client's TokenSource, so authenticated calls
// pick up the live session automatically.
func (s *AccountService) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Token
}

func (s *AccountService) adopt(ctx context.Context, identity domain.Identity) {
	if err := s.creds.Save(ctx, identity); err != nil {
		s.logger.Warn("persisting credentials failed, session is memory-only", "user", identity.UserID, "error", err)
	}
	s.mu.Lock()
	s.current = identity
	s.mu.Unlock()
}

func isNotAuthenticated(err error) bool {
	return errors.Is(err, apperrors.ErrNotAuthenticated)
}
