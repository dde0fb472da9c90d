package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"pathlight/internal/modules/account/domain"
	apperrors "pathlight/internal/platform/errors"
)

type fakeAuthenticator struct {
	identity  domain.Identity
	loginErr  error
	logoutErr error

	logoutCalls int
}

func (f *fakeAuthenticator) Login(ctx context.Context, email, password string) (domain.Identity, error) {
	if f.loginErr != nil {
		return domain.Identity{}, f.loginErr
	}
	return f.identity, nil
}

func (f *fakeAuthenticator) Register(ctx context.Context, name, email, password string) (domain.Identity, error) {
	if f.loginErr != nil {
		return domain.Identity{}, f.loginErr
	}
	return f.identity, nil
}

func (f *fakeAuthenticator) Logout(ctx context.Context) error {
	f.logoutCalls++
	return f.logoutErr
}

type fakeCredentialStore struct {
	stored   domain.Identity
	loadErr  error
	saveErr  error
	clearErr error

	saves  int
	clears int
}

func (f *fakeCredentialStore) Save(ctx context.Context, identity domain.Identity) error {
	f.saves++
	if f.saveErr != nil {
		return f.saveErr
	}
	f.stored = identity
	return nil
}

func (f *fakeCredentialStore) Load(ctx context.Context) (domain.Identity, error) {
	if f.loadErr != nil {
		return domain.Identity{}, f.loadErr
	}
	if f.stored.IsZero() {
		return domain.Identity{}, apperrors.ErrNotAuthenticated
	}
	return f.stored, nil
}

func (f *fakeCredentialStore) Clear(ctx context.Context) error {
	f.clears++
	if f.clearErr != nil {
		return f.clearErr
	}
	f.stored = domain.Identity{}
	return nil
}

func newService(auth *fakeAuthenticator, creds *fakeCredentialStore) *AccountService {
	return NewAccountService(auth, creds, slog.New(slog.DiscardHandler))
}

func TestRestoreFallsBackToGuest(t *testing.T) {
	t.Parallel()

	svc := newService(&fakeAuthenticator{}, &fakeCredentialStore{})
	identity := svc.Restore(context.Background())
	if !identity.IsGuest() {
		t.Fatalf("identity = %+v, want guest when nothing is stored", identity)
	}
	if svc.Token() != "" {
		t.Fatalf("token = %q, want empty for guest", svc.Token())
	}
}

func TestRestoreUsesStoredIdentity(t *testing.T) {
	t.Parallel()

	creds := &fakeCredentialStore{stored: domain.Identity{UserID: "u1", Email: "a@b.c", Token: "tok"}}
	svc := newService(&fakeAuthenticator{}, creds)

	identity := svc.Restore(context.Background())
	if identity.UserID != "u1" {
		t.Fatalf("identity = %+v, want the stored one", identity)
	}
	if svc.Token() != "tok" {
		t.Fatalf("token = %q, want the stored token", svc.Token())
	}
}

func TestLoginPersistsCredentials(t *testing.T) {
	t.Parallel()

	auth := &fakeAuthenticator{identity: domain.Identity{UserID: "u1", Token: "tok"}}
	creds := &fakeCredentialStore{}
	svc := newService(auth, creds)

	identity, err := svc.Login(context.Background(), "a@b.c", "hunter22")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if identity.UserID != "u1" {
		t.Fatalf("identity = %+v", identity)
	}
	if creds.stored.UserID != "u1" {
		t.Fatalf("stored = %+v, want the login persisted", creds.stored)
	}
}

func TestLoginSurvivesCredentialSaveFailure(t *testing.T) {
	t.Parallel()

	auth := &fakeAuthenticator{identity: domain.Identity{UserID: "u1", Token: "tok"}}
	creds := &fakeCredentialStore{saveErr: errors.New("disk full")}
	svc := newService(auth, creds)

	if _, err := svc.Login(context.Background(), "a@b.c", "hunter22"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if svc.Current().UserID != "u1" {
		t.Fatal("session not established despite successful authentication")
	}
	if svc.Token() != "tok" {
		t.Fatalf("token = %q, want the in-memory session token", svc.Token())
	}
}

func TestLoginValidatesInput(t *testing.T) {
	t.Parallel()

	svc := newService(&fakeAuthenticator{}, &fakeCredentialStore{})
	if _, err := svc.Login(context.Background(), "", "pw"); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestLogoutClearsEverythingDespiteRemoteFailure(t *testing.T) {
	t.Parallel()

	auth := &fakeAuthenticator{logoutErr: errors.New("503")}
	creds := &fakeCredentialStore{stored: domain.Identity{UserID: "u1", Token: "tok"}}
	svc := newService(auth, creds)
	svc.Restore(context.Background())

	identity := svc.Logout(context.Background())
	if !identity.IsGuest() {
		t.Fatalf("identity = %+v, want guest after logout", identity)
	}
	if creds.clears != 1 {
		t.Fatalf("credential clears = %d, want 1", creds.clears)
	}
	if auth.logoutCalls != 1 {
		t.Fatalf("remote logout calls = %d, want the best-effort attempt", auth.logoutCalls)
	}
	if svc.Token() != "" {
		t.Fatalf("token = %q, want cleared", svc.Token())
	}
}

func TestContinueAsGuestKeepsStoredCredentials(t *testing.T) {
	t.Parallel()

	creds := &fakeCredentialStore{stored: domain.Identity{UserID: "u1", Token: "tok"}}
	svc := newService(&fakeAuthenticator{}, creds)
	svc.Restore(context.Background())

	identity := svc.ContinueAsGuest()
	if !identity.IsGuest() {
		t.Fatalf("identity = %+v, want guest", identity)
	}
	if creds.clears != 0 || creds.stored.UserID != "u1" {
		t.Fatal("guest browsing must not discard the remembered login")
	}
}
