package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"pathlight/internal/modules/paths/domain"
	pathsout "pathlight/internal/modules/paths/port/out"
	"pathlight/internal/platform/clock"
	apperrors "pathlight/internal/platform/errors"
	"pathlight/internal/platform/id"
)

// StoreService is the single source of truth for the current generation and
// the saved collection. Persistence is dual: the local partition is the
// durability floor, the remote service a best-effort mirror for writes and
// the freshness authority for loads.
//
// All in-memory state sits behind one mutex; remote calls never run under
// it, so long requests cannot block snapshot reads.
type StoreService struct {
	clk          clock.Clock
	ids          id.Generator
	generator    pathsout.Generator
	remote       pathsout.RemoteStore
	local        pathsout.PartitionStore
	logger       *slog.Logger
	pollInterval time.Duration

	mu         sync.Mutex
	userID     string
	saved      []domain.LearningPath
	current    *domain.LearningPath
	task       domain.Task
	generating bool
	lastError  string
	poller     *Poller
}

func NewStoreService(
	clk clock.Clock,
	ids id.Generator,
	generator pathsout.Generator,
	remote pathsout.RemoteStore,
	local pathsout.PartitionStore,
	logger *slog.Logger,
	pollInterval time.Duration,
) *StoreService {
	if logger == nil {
		logger = slog.Default()
	}
	if pollInterval <= 0 {
		pollInterval = 3 * time.Second
	}
	return &StoreService{
		clk:          clk,
		ids:          ids,
		generator:    generator,
		remote:       remote,
		local:        local,
		logger:       logger,
		pollInterval: pollInterval,
		userID:       domain.GuestUserID,
	}
}

// SetCurrentUser records which storage partition subsequent local
// reads/writes target. No I/O happens here.
func (s *StoreService) SetCurrentUser(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userID = normalizeUser(userID)
}

// LoadSavedPaths refreshes the saved collection. Non-guest users load from
// the remote service first and mirror the result locally; any remote
// failure falls back to the local partition. Guests read local only. The
// method never fails past its own boundary: a total failure settles to an
// empty collection with a recorded warning.
func (s *StoreService) LoadSavedPaths(ctx context.Context, userID string) (paths []domain.LearningPath, fromRemote bool, warning string) {
	userID = normalizeUser(userID)
	s.mu.Lock()
	s.userID = userID
	s.mu.Unlock()

	if userID != domain.GuestUserID {
		remotePaths, err := s.remote.List(ctx)
		if err == nil {
			for i := range remotePaths {
				remotePaths[i].SanitizeCompletion()
			}
			sortNewestFirst(remotePaths)
			s.mu.Lock()
			s.saved = remotePaths
			snapshot := clonePaths(s.saved)
			s.mu.Unlock()
			// Remote succeeded; mirror locally so the next offline start
			// sees the same list.
			if err := s.local.Save(ctx, userID, snapshot); err != nil {
				s.logger.Warn("local mirror of remote list failed", "user", userID, "error", err)
			}
			return snapshot, true, ""
		}
		s.logger.Warn("remote list failed, falling back to local partition", "user", userID, "error", err)
	}

	localPaths, err := s.local.Load(ctx, userID)
	if err != nil {
		s.logger.Error("local partition read failed", "user", userID, "error", err)
		s.mu.Lock()
		s.saved = nil
		s.lastError = "saved paths are unavailable: " + err.Error()
		warning = s.lastError
		s.mu.Unlock()
		return nil, false, warning
	}
	for i := range localPaths {
		localPaths[i].SanitizeCompletion()
	}
	sortNewestFirst(localPaths)
	s.mu.Lock()
	s.saved = localPaths
	snapshot := clonePaths(s.saved)
	s.mu.Unlock()
	return snapshot, false, ""
}

// Persist writes the in-memory collection to the current user's local
// partition. Idempotent.
func (s *StoreService) Persist(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistLocked(ctx)
}

func (s *StoreService) persistLocked(ctx context.Context) error {
	if err := s.local.Save(ctx, s.userID, clonePaths(s.saved)); err != nil {
		return fmt.Errorf("persist paths: %w", err)
	}
	return nil
}

// Generate submits the form. The outcome is either an immediate result
// (stored as the current path, no task left in flight) or a deferred task
// for the caller to hand to a poller.
func (s *StoreService) Generate(ctx context.Context, form domain.GenerationForm) (pathsout.GenerateResult, error) {
	if err := form.Validate(); err != nil {
		return pathsout.GenerateResult{}, fmt.Errorf("%w: %s", apperrors.ErrInvalidInput, err)
	}

	s.mu.Lock()
	if s.generating {
		s.mu.Unlock()
		return pathsout.GenerateResult{}, apperrors.ErrGenerationInFlight
	}
	s.generating = true
	s.lastError = ""
	s.current = nil
	s.task = domain.Task{Status: domain.StatusNoTask}
	topic := form.Topic
	s.mu.Unlock()

	result, err := s.generator.Generate(ctx, form)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.generating = false
		s.lastError = generationMessage(err)
		return pathsout.GenerateResult{}, fmt.Errorf("generate path: %w", err)
	}

	if result.Path != nil {
		path := result.Path.Clone()
		path.SanitizeCompletion()
		if path.Topic == "" {
			path.Topic = topic
		}
		if path.CreatedAt.IsZero() {
			path.CreatedAt = s.clk.Now()
		}
		s.current = &path
		s.task = domain.Task{Status: domain.StatusFinished}
		s.generating = false
		return result, nil
	}

	s.task = domain.Task{ID: result.TaskID, Status: result.Status}
	return result, nil
}

// StartPolling attaches a fresh poller to the given task. Any prior poller
// is cancelled first.
func (s *StoreService) StartPolling(taskID string) error {
	if taskID == "" {
		return fmt.Errorf("%w: task id is required", apperrors.ErrInvalidInput)
	}
	s.mu.Lock()
	if s.poller != nil {
		s.poller.Cancel()
	}
	poller := NewPoller(s.generator, s, s.pollInterval)
	s.poller = poller
	s.mu.Unlock()
	return poller.Start(taskID)
}

// CancelPolling stops the active poller, if any. Safe to call repeatedly.
func (s *StoreService) CancelPolling() {
	s.mu.Lock()
	poller := s.poller
	s.mu.Unlock()
	if poller != nil {
		poller.Cancel()
	}
}

// taskProgress, taskFinished and taskFailed are the poller's sink. A reset
// that raced the poller drops the update instead of resurrecting state.

func (s *StoreService) taskProgress(task domain.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.generating {
		return
	}
	s.task.Status = task.Status
	s.task.Message = task.Message
}

func (s *StoreService) taskFinished(path domain.LearningPath) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.generating {
		return
	}
	path.SanitizeCompletion()
	if path.CreatedAt.IsZero() {
		path.CreatedAt = s.clk.Now()
	}
	s.current = &path
	s.task.Status = domain.StatusFinished
	s.generating = false
}

func (s *StoreService) taskFailed(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.generating {
		return
	}
	if message == "" {
		message = "path generation failed"
	}
	s.lastError = message
	s.task.Status = domain.StatusError
	s.task.Message = message
	s.generating = false
}

// Snapshot returns the observable generation state.
func (s *StoreService) Snapshot() (task domain.Task, generating bool, lastError string, current *domain.LearningPath) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task = s.task
	generating = s.generating
	lastError = s.lastError
	if s.current != nil {
		clone := s.current.Clone()
		current = &clone
	}
	return task, generating, lastError, current
}

// SaveCurrent persists the current path. The remote save is attempted
// first so a server-assigned identifier can be adopted; its failure is
// logged and swallowed. Local durability decides success.
func (s *StoreService) SaveCurrent(ctx context.Context) (domain.LearningPath, bool, error) {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return domain.LearningPath{}, false, apperrors.ErrNoCurrentPath
	}
	path := s.current.Clone()
	userID := s.userID
	s.mu.Unlock()

	remoteSaved := false
	if userID != domain.GuestUserID {
		serverID, err := s.remote.Save(ctx, path)
		if err != nil {
			// Local durability is the availability floor; keep going.
			s.logger.Warn("remote save failed, keeping local copy", "path", path.ID, "error", err)
		} else {
			if serverID != "" {
				path.ID = serverID
			}
			remoteSaved = true
		}
	}
	if path.ID == "" {
		path.ID = s.ids.New()
	}
	path.SavedAt = s.clk.Now()
	path.OwnerID = userID

	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsertLocked(path)
	if s.current != nil {
		adopted := path.Clone()
		s.current = &adopted
	}
	if err := s.persistLocked(ctx); err != nil {
		return domain.LearningPath{}, remoteSaved, err
	}
	return path, remoteSaved, nil
}

// upsertLocked replaces an existing path by identifier or prepends a new
// one; the saved collection stays newest-first.
func (s *StoreService) upsertLocked(path domain.LearningPath) {
	for i := range s.saved {
		if s.saved[i].ID == path.ID {
			s.saved[i] = path
			return
		}
	}
	s.saved = append([]domain.LearningPath{path}, s.saved...)
}

// DeletePath removes a path. The remote delete is best-effort; the
// in-memory removal and local persist are unconditional.
func (s *StoreService) DeletePath(ctx context.Context, pathID string) error {
	if pathID == "" {
		return fmt.Errorf("%w: path id is required", apperrors.ErrInvalidInput)
	}
	s.mu.Lock()
	userID := s.userID
	s.mu.Unlock()

	if userID != domain.GuestUserID {
		if err := s.remote.Delete(ctx, pathID); err != nil {
			s.logger.Warn("remote delete failed, removing locally anyway", "path", pathID, "error", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.saved[:0]
	for _, p := range s.saved {
		if p.ID != pathID {
			kept = append(kept, p)
		}
	}
	s.saved = kept
	return s.persistLocked(ctx)
}

// SetMilestoneDone updates completion for one milestone. An unknown path
// identifier fails with not-found and no side effects. The remote update
// is best-effort; the in-memory write and local persist are unconditional.
func (s *StoreService) SetMilestoneDone(ctx context.Context, pathID string, index int, done bool) error {
	s.mu.Lock()
	userID := s.userID
	found := false
	for i := range s.saved {
		if s.saved[i].ID == pathID {
			found = true
			if index < 0 || index >= len(s.saved[i].Milestones) {
				s.mu.Unlock()
				return fmt.Errorf("%w: milestone index %d", apperrors.ErrInvalidInput, index)
			}
			break
		}
	}
	s.mu.Unlock()
	if !found {
		return fmt.Errorf("%w: path %s", apperrors.ErrNotFound, pathID)
	}

	if userID != domain.GuestUserID {
		if err := s.remote.UpdateMilestone(ctx, pathID, index, done); err != nil {
			s.logger.Warn("remote milestone update failed, applying locally anyway", "path", pathID, "index", index, "error", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.saved {
		if s.saved[i].ID == pathID {
			if err := s.saved[i].SetMilestoneDone(index, done); err != nil {
				return fmt.Errorf("%w: %s", apperrors.ErrInvalidInput, err)
			}
			return s.persistLocked(ctx)
		}
	}
	// The path vanished between the check and the write (concurrent
	// delete); treat as not found without persisting.
	return fmt.Errorf("%w: path %s", apperrors.ErrNotFound, pathID)
}

// ListPaths snapshots the saved collection.
func (s *StoreService) ListPaths() []domain.LearningPath {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clonePaths(s.saved)
}

// GetPath returns one saved path, falling back to a remote fetch for
// non-guest users when it is not in the collection.
func (s *StoreService) GetPath(ctx context.Context, pathID string) (domain.LearningPath, error) {
	s.mu.Lock()
	userID := s.userID
	for i := range s.saved {
		if s.saved[i].ID == pathID {
			path := s.saved[i].Clone()
			s.mu.Unlock()
			return path, nil
		}
	}
	s.mu.Unlock()

	if userID == domain.GuestUserID {
		return domain.LearningPath{}, fmt.Errorf("%w: path %s", apperrors.ErrNotFound, pathID)
	}
	path, err := s.remote.Get(ctx, pathID)
	if err != nil {
		return domain.LearningPath{}, fmt.Errorf("%w: path %s", apperrors.ErrNotFound, pathID)
	}
	path.SanitizeCompletion()
	return path, nil
}

// ResetGeneration clears the current path and task state. Used after
// save, cancel, or starting over.
func (s *StoreService) ResetGeneration() {
	s.CancelPolling()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
	s.task = domain.Task{Status: domain.StatusNoTask}
	s.generating = false
	s.lastError = ""
}

// ResetForUserSwitch drops all in-memory state without touching durable
// storage. The next user starts clean and must LoadSavedPaths before any
// saved data reappears.
func (s *StoreService) ResetForUserSwitch() {
	s.CancelPolling()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = nil
	s.current = nil
	s.task = domain.Task{Status: domain.StatusNoTask}
	s.generating = false
	s.lastError = ""
	s.userID = domain.GuestUserID
}

func normalizeUser(userID string) string {
	if userID == "" {
		return domain.GuestUserID
	}
	return userID
}

func sortNewestFirst(paths []domain.LearningPath) {
	sort.SliceStable(paths, func(i, j int) bool {
		return paths[i].SavedAt.After(paths[j].SavedAt)
	})
}

func clonePaths(paths []domain.LearningPath) []domain.LearningPath {
	out := make([]domain.LearningPath, len(paths))
	for i, p := range paths {
		out[i] = p.Clone()
	}
	return out
}
