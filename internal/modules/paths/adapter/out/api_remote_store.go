package out

import (
	"context"

	"pathlight/internal/modules/paths/domain"
	pathsout "pathlight/internal/modules/paths/port/out"
	"pathlight/internal/platform/api"
)

// APIRemoteStore mirrors the saved collection to the remote service.
type APIRemoteStore struct {
	client *api.Client
}

var _ pathsout.RemoteStore = (*APIRemoteStore)(nil)

func NewAPIRemoteStore(client *api.Client) *APIRemoteStore {
	return &APIRemoteStore{client: client}
}

func (s *APIRemoteStore) Save(ctx context.Context, path domain.LearningPath) (string, error) {
	resp, err := s.client.SavePath(ctx, encodePath(path))
	if err != nil {
		return "", err
	}
	return resp.PathID, nil
}

func (s *APIRemoteStore) List(ctx context.Context) ([]domain.LearningPath, error) {
	payloads, err := s.client.ListPaths(ctx)
	if err != nil {
		return nil, err
	}
	paths := make([]domain.LearningPath, len(payloads))
	for i, p := range payloads {
		paths[i] = decodePath(p)
	}
	return paths, nil
}

func (s *APIRemoteStore) Get(ctx context.Context, id string) (domain.LearningPath, error) {
	payload, err := s.client.GetPath(ctx, id)
	if err != nil {
		return domain.LearningPath{}, err
	}
	return decodePath(payload), nil
}

func (s *APIRemoteStore) Delete(ctx context.Context, id string) error {
	return s.client.DeletePath(ctx, id)
}

func (s *APIRemoteStore) UpdateMilestone(ctx context.Context, pathID string, index int, completed bool) error {
	return s.client.UpdateMilestone(ctx, pathID, index, completed)
}
