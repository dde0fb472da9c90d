package out

import (
	"context"
	"fmt"

	"pathlight/internal/modules/paths/domain"
	pathsout "pathlight/internal/modules/paths/port/out"
	"pathlight/internal/platform/api"
)

// APIGenerator drives the remote generation pipeline over the shared HTTP
// client.
type APIGenerator struct {
	client *api.Client
}

var _ pathsout.Generator = (*APIGenerator)(nil)

func NewAPIGenerator(client *api.Client) *APIGenerator {
	return &APIGenerator{client: client}
}

func (g *APIGenerator) Generate(ctx context.Context, form domain.GenerationForm) (pathsout.GenerateResult, error) {
	resp, err := g.client.Generate(ctx, api.GenerateRequest{
		Topic:          form.Topic,
		ExpertiseLevel: form.ExpertiseLevel,
		DurationWeeks:  form.DurationWeeks,
		TimeCommitment: form.TimeCommitment,
		LearningStyle:  form.LearningStyle,
		Goals:          form.Goals,
	})
	if err != nil {
		return pathsout.GenerateResult{}, err
	}
	result := pathsout.GenerateResult{
		TaskID: resp.TaskID,
		Status: domain.TaskStatus(resp.Status),
	}
	if resp.Result != nil {
		path := decodePath(*resp.Result)
		result.Path = &path
		return result, nil
	}
	if resp.TaskID == "" {
		return pathsout.GenerateResult{}, fmt.Errorf("generation accepted without a task id or result")
	}
	return result, nil
}

func (g *APIGenerator) Status(ctx context.Context, taskID string) (domain.Task, error) {
	resp, err := g.client.Status(ctx, taskID)
	if err != nil {
		return domain.Task{}, err
	}
	return domain.Task{
		ID:      resp.TaskID,
		Status:  domain.TaskStatus(resp.Status),
		Message: resp.Error,
	}, nil
}

func (g *APIGenerator) Result(ctx context.Context, taskID string) (domain.LearningPath, error) {
	payload, err := g.client.Result(ctx, taskID)
	if err != nil {
		return domain.LearningPath{}, err
	}
	return decodePath(payload), nil
}
