package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"pathlight/internal/modules/paths/domain"
	pathsout "pathlight/internal/modules/paths/port/out"
	"pathlight/internal/platform/api"
	apperrors "pathlight/internal/platform/errors"
)

// PollerState is the poller lifecycle: idle until started, polling while
// the loop runs, stopped once it exits for any reason.
type PollerState int32

const (
	PollerIdle PollerState = iota
	PollerPolling
	PollerStopped
)

// pollSink receives the poller's outcomes. The store implements it.
type pollSink interface {
	taskProgress(task domain.Task)
	taskFinished(path domain.LearningPath)
	taskFailed(message string)
}

// Poller watches one generation task. Ticks are request-gated: the next
// status request is not scheduled until the previous one returned, so at
// most one is ever in flight. A finished task triggers exactly one result
// fetch, then the poller stops for good.
type Poller struct {
	generator pathsout.Generator
	sink      pollSink
	interval  time.Duration

	state    atomic.Int32
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

func NewPoller(generator pathsout.Generator, sink pollSink, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = 3 * time.Second
	}
	return &Poller{
		generator: generator,
		sink:      sink,
		interval:  interval,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start launches the polling loop. A poller runs once; starting it twice
// or after cancellation is an error.
func (p *Poller) Start(taskID string) error {
	if taskID == "" {
		return apperrors.ErrInvalidInput
	}
	if !p.state.CompareAndSwap(int32(PollerIdle), int32(PollerPolling)) {
		return apperrors.ErrGenerationInFlight
	}
	go p.run(taskID)
	return nil
}

// Cancel stops the loop. Idempotent, and a no-op on a poller that already
// finished.
func (p *Poller) Cancel() {
	p.stopOnce.Do(func() { close(p.stop) })
}

func (p *Poller) State() PollerState {
	return PollerState(p.state.Load())
}

// Done closes when the loop has fully exited. Only meaningful after Start.
func (p *Poller) Done() <-chan struct{} {
	return p.done
}

func (p *Poller) run(taskID string) {
	defer close(p.done)
	defer p.state.Store(int32(PollerStopped))

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
		}
		if p.cancelled() {
			return
		}

		task, err := p.generator.Status(context.Background(), taskID)
		if p.cancelled() {
			return
		}
		if err != nil {
			p.sink.taskFailed(requestMessage(err, "status check failed"))
			return
		}

		switch {
		case task.Status == domain.StatusFinished:
			path, err := p.generator.Result(context.Background(), taskID)
			if p.cancelled() {
				return
			}
			if err != nil {
				p.sink.taskFailed(requestMessage(err, "could not fetch the generated path"))
				return
			}
			p.sink.taskFinished(path)
			return
		case task.Status.Terminal():
			message := task.Message
			if message == "" {
				message = "path generation failed"
			}
			p.sink.taskFailed(message)
			return
		default:
			p.sink.taskProgress(task)
		}
	}
}

func (p *Poller) cancelled() bool {
	select {
	case <-p.stop:
		return true
	default:
		return false
	}
}

// requestMessage prefers the server-supplied message over a generic one.
func requestMessage(err error, fallback string) string {
	if apiErr, ok := api.AsError(err); ok && apiErr.Message != "" {
		return apiErr.Message
	}
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return fallback
}

// generationMessage describes a failed generate call for display.
func generationMessage(err error) string {
	return requestMessage(err, "path generation failed")
}
