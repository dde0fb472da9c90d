package domain

import (
	"fmt"
	"strings"
)

// TaskStatus is the remote-service label for an asynchronous generation job.
type TaskStatus string

const (
	StatusQueued     TaskStatus = "queued"
	StatusStarted    TaskStatus = "started"
	StatusAnalyzing  TaskStatus = "analyzing"
	StatusGenerating TaskStatus = "generating"
	StatusFinished   TaskStatus = "finished"
	StatusFailed     TaskStatus = "failed"
	StatusError      TaskStatus = "error"
	StatusNoTask     TaskStatus = "no_task"
)

// Terminal reports whether polling must stop on this status.
func (s TaskStatus) Terminal() bool {
	switch s {
	case StatusFinished, StatusFailed, StatusError:
		return true
	default:
		return false
	}
}

// pollSteps orders the intermediate labels for progress display. The step
// index is advisory only; it never drives a terminal transition.
var pollSteps = []TaskStatus{StatusQueued, StatusStarted, StatusAnalyzing, StatusGenerating}

// StepCount is the number of advisory progress steps.
const StepCount = 4

// StepIndex returns the advisory progress step for a status, or -1 for
// labels outside the known intermediate sequence.
func (s TaskStatus) StepIndex() int {
	for i, step := range pollSteps {
		if s == step {
			return i
		}
	}
	return -1
}

// Task tracks one in-flight generation job.
type Task struct {
	ID      string
	Status  TaskStatus
	Message string
}

// GenerationForm is the user's description of the learning goal.
type GenerationForm struct {
	Topic          string
	ExpertiseLevel string
	DurationWeeks  int
	TimeCommitment string
	LearningStyle  string
	Goals          []string
}

func (f GenerationForm) Validate() error {
	if strings.TrimSpace(f.Topic) == "" {
		return fmt.Errorf("topic is required")
	}
	if f.DurationWeeks < 0 {
		return fmt.Errorf("duration weeks must be non-negative")
	}
	return nil
}
