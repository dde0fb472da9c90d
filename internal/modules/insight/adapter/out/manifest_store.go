package out

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"pathlight/internal/modules/insight/domain"
	insightout "pathlight/internal/modules/insight/port/out"
)

// FileManifestStore reads providers.json from the app home. Relative
// binary paths resolve against the home directory so a manifest can ship
// next to its binary.
type FileManifestStore struct {
	homeDir string
	path    string
}

func NewFileManifestStore(homeDir string) insightout.ManifestStore {
	return &FileManifestStore{homeDir: homeDir, path: filepath.Join(homeDir, "providers.json")}
}

func (s *FileManifestStore) Load(_ context.Context) ([]domain.Manifest, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []domain.Manifest{}, nil
		}
		return nil, fmt.Errorf("read provider manifests: %w", err)
	}
	var manifests []domain.Manifest
	decoder := json.NewDecoder(bytes.NewReader(b))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&manifests); err != nil {
		return nil, fmt.Errorf("decode provider manifests: %w", err)
	}
	for i := range manifests {
		if manifests[i].Binary != "" && !filepath.IsAbs(manifests[i].Binary) {
			manifests[i].Binary = filepath.Clean(filepath.Join(s.homeDir, manifests[i].Binary))
		}
	}
	return manifests, nil
}
