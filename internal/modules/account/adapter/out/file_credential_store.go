package out

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"pathlight/internal/modules/account/domain"
	accountout "pathlight/internal/modules/account/port/out"
	apperrors "pathlight/internal/platform/errors"
)

// FileCredentialStore keeps the identity in a mode-0600 JSON file; the
// token inside it is a live credential.
type FileCredentialStore struct {
	path string
}

var _ accountout.CredentialStore = (*FileCredentialStore)(nil)

func NewFileCredentialStore(path string) *FileCredentialStore {
	return &FileCredentialStore{path: path}
}

func (s *FileCredentialStore) Save(_ context.Context, identity domain.Identity) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create credentials dir: %w", err)
	}
	payload, err := json.MarshalIndent(identity, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}
	if err := os.WriteFile(s.path, payload, 0o600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	return nil
}

func (s *FileCredentialStore) Load(_ context.Context) (domain.Identity, error) {
	payload, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.Identity{}, apperrors.ErrNotAuthenticated
		}
		return domain.Identity{}, fmt.Errorf("read credentials: %w", err)
	}
	identity := domain.Identity{}
	if err := json.Unmarshal(payload, &identity); err != nil {
		return domain.Identity{}, fmt.Errorf("decode credentials: %w", err)
	}
	if identity.IsZero() || identity.Token == "" {
		return domain.Identity{}, apperrors.ErrNotAuthenticated
	}
	return identity, nil
}

func (s *FileCredentialStore) Clear(_ context.Context) error {
	if err := os.Remove(s.path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("clear credentials: %w", err)
	}
	return nil
}
