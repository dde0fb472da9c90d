package out

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"pathlight/internal/modules/account/domain"
	apperrors "pathlight/internal/platform/errors"
)

func TestCredentialStoreRoundTrip(t *testing.T) {
	t.Parallel()

	store := NewFileCredentialStore(filepath.Join(t.TempDir(), "credentials.json"))
	ctx := context.Background()

	identity := domain.Identity{UserID: "u1", Name: "Alice", Email: "a@b.c", Token: "tok"}
	if err := store.Save(ctx, identity); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != identity {
		t.Fatalf("loaded = %+v, want %+v", got, identity)
	}
}

func TestCredentialStoreMissingFileMeansNotAuthenticated(t *testing.T) {
	t.Parallel()

	store := NewFileCredentialStore(filepath.Join(t.TempDir(), "credentials.json"))
	if _, err := store.Load(context.Background()); !errors.Is(err, apperrors.ErrNotAuthenticated) {
		t.Fatalf("err = %v, want ErrNotAuthenticated", err)
	}
}

func TestCredentialStoreRejectsTokenlessIdentity(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "credentials.json")
	if err := os.WriteFile(path, []byte(`{"user_id":"u1"}`), 0o600); err != nil {
		t.Fatalf("seed file: %v", err)
	}
	store := NewFileCredentialStore(path)
	if _, err := store.Load(context.Background()); !errors.Is(err, apperrors.ErrNotAuthenticated) {
		t.Fatalf("err = %v, want ErrNotAuthenticated for a tokenless record", err)
	}
}

func TestCredentialStoreClearIsIdempotent(t *testing.T) {
	t.Parallel()

	store := NewFileCredentialStore(filepath.Join(t.TempDir(), "credentials.json"))
	ctx := context.Background()

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear of missing file: %v", err)
	}
	if err := store.Save(ctx, domain.Identity{UserID: "u1", Token: "tok"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("second Clear: %v", err)
	}
}

func TestCredentialFilePermissions(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" {
		t.Skip("posix permissions only")
	}

	path := filepath.Join(t.TempDir(), "credentials.json")
	store := NewFileCredentialStore(path)
	if err := store.Save(context.Background(), domain.Identity{UserID: "u1", Token: "tok"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("perm = %o, want 0600 for a token-bearing file", perm)
	}
}
