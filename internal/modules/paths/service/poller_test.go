package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"pathlight/internal/modules/paths/domain"
	pathsout "pathlight/internal/modules/paths/port/out"
)

type scriptedGenerator struct {
	mu          sync.Mutex
	statuses    []domain.Task
	statusErr   error
	result      domain.LearningPath
	resultErr   error
	statusCalls int
	resultCalls int
}

func (g *scriptedGenerator) Generate(ctx context.Context, form domain.GenerationForm) (pathsout.GenerateResult, error) {
	return pathsout.GenerateResult{}, errors.New("not scripted")
}

func (g *scriptedGenerator) Status(ctx context.Context, taskID string) (domain.Task, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.statusErr != nil {
		g.statusCalls++
		return domain.Task{}, g.statusErr
	}
	if g.statusCalls >= len(g.statuses) {
		return domain.Task{}, errors.New("status called past end of script")
	}
	task := g.statuses[g.statusCalls]
	g.statusCalls++
	return task, nil
}

func (g *scriptedGenerator) Result(ctx context.Context, taskID string) (domain.LearningPath, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.resultCalls++
	if g.resultErr != nil {
		return domain.LearningPath{}, g.resultErr
	}
	return g.result, nil
}

func (g *scriptedGenerator) calls() (status, result int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.statusCalls, g.resultCalls
}

type recordingSink struct {
	mu       sync.Mutex
	progress []domain.Task
	finished []domain.LearningPath
	failed   []string
}

func (r *recordingSink) taskProgress(task domain.Task) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress = append(r.progress, task)
}

func (r *recordingSink) taskFinished(path domain.LearningPath) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finished = append(r.finished, path)
}

func (r *recordingSink) taskFailed(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = append(r.failed, message)
}

func waitDone(t *testing.T, p *Poller) {
	t.Helper()
	select {
	case <-p.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("poller did not stop in time")
	}
}

func TestPollerFetchesResultExactlyOnceOnFinish(t *testing.T) {
	t.Parallel()

	gen := &scriptedGenerator{
		statuses: []domain.Task{
			{ID: "task-1", Status: domain.StatusQueued},
			{ID: "task-1", Status: domain.StatusStarted},
			{ID: "task-1", Status: domain.StatusAnalyzing},
			{ID: "task-1", Status: domain.StatusFinished},
		},
		result: domain.LearningPath{ID: "p1", Topic: "Rust", Milestones: []domain.Milestone{{Title: "Basics"}}},
	}
	sink := &recordingSink{}
	poller := NewPoller(gen, sink, time.Millisecond)

	if err := poller.Start("task-1"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitDone(t, poller)

	status, result := gen.calls()
	if status != 4 {
		t.Fatalf("status calls = %d, want 4", status)
	}
	if result != 1 {
		t.Fatalf("result calls = %d, want exactly 1", result)
	}
	if len(sink.finished) != 1 || sink.finished[0].ID != "p1" {
		t.Fatalf("finished events = %+v, want one for p1", sink.finished)
	}
	if len(sink.failed) != 0 {
		t.Fatalf("unexpected failures: %v", sink.failed)
	}
	if got := poller.State(); got != PollerStopped {
		t.Fatalf("state = %v, want stopped", got)
	}
}

func TestPollerStopsOnTerminalFailureWithoutResultFetch(t *testing.T) {
	t.Parallel()

	gen := &scriptedGenerator{
		statuses: []domain.Task{
			{ID: "task-2", Status: domain.StatusStarted},
			{ID: "task-2", Status: domain.StatusFailed, Message: "model unavailable"},
		},
	}
	sink := &recordingSink{}
	poller := NewPoller(gen, sink, time.Millisecond)

	if err := poller.Start("task-2"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitDone(t, poller)

	if _, result := gen.calls(); result != 0 {
		t.Fatalf("result calls = %d, want 0 on failure", result)
	}
	if len(sink.failed) != 1 || sink.failed[0] != "model unavailable" {
		t.Fatalf("failed events = %v, want the server message", sink.failed)
	}
}

func TestPollerSurfacesStatusRequestError(t *testing.T) {
	t.Parallel()

	gen := &scriptedGenerator{statusErr: errors.New("connection refused")}
	sink := &recordingSink{}
	poller := NewPoller(gen, sink, time.Millisecond)

	if err := poller.Start("task-3"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitDone(t, poller)

	if len(sink.failed) != 1 {
		t.Fatalf("failed events = %v, want one", sink.failed)
	}
	status, _ := gen.calls()
	if status != 1 {
		t.Fatalf("status calls = %d, want 1 (no retry after request failure)", status)
	}
}

func TestPollerCancelIsIdempotentAndStopsBeforeFirstTick(t *testing.T) {
	t.Parallel()

	gen := &scriptedGenerator{statuses: []domain.Task{{Status: domain.StatusQueued}}}
	sink := &recordingSink{}
	poller := NewPoller(gen, sink, time.Hour)

	if err := poller.Start("task-4"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	poller.Cancel()
	poller.Cancel()
	waitDone(t, poller)

	if status, result := gen.calls(); status != 0 || result != 0 {
		t.Fatalf("calls after cancel = %d/%d, want none", status, result)
	}
	if len(sink.progress)+len(sink.finished)+len(sink.failed) != 0 {
		t.Fatal("sink received events after cancellation")
	}

	// Cancel after completion stays a no-op.
	poller.Cancel()
	if got := poller.State(); got != PollerStopped {
		t.Fatalf("state = %v, want stopped", got)
	}
}

func TestPollerRejectsEmptyTaskAndDoubleStart(t *testing.T) {
	t.Parallel()

	gen := &scriptedGenerator{statuses: []domain.Task{{Status: domain.StatusFinished}}}
	poller := NewPoller(gen, &recordingSink{}, time.Millisecond)

	if err := poller.Start(""); err == nil {
		t.Fatal("Start with empty task id succeeded")
	}
	if err := poller.Start("task-5"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := poller.Start("task-5"); err == nil {
		t.Fatal("second Start succeeded")
	}
	waitDone(t, poller)
}
