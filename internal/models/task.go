package models

import (
	"fmt"
	"time"
)

// TaskOutcome is the way a task left the scheduler.
type TaskOutcome string

const (
	// TaskOutcomeCompleted - the task reported completion
	TaskOutcomeCompleted TaskOutcome = "completed"
	// TaskOutcomeAbandoned - every future was dropped before completion
	TaskOutcomeAbandoned TaskOutcome = "abandoned"
	// TaskOutcomePanicked - the task panicked and took its worker down
	TaskOutcomePanicked TaskOutcome = "panicked"
)

func (o TaskOutcome) Value() string {
	return string(o)
}

func ParseTaskOutcome(s string) (TaskOutcome, error) {
	switch s {
	case "completed":
		return TaskOutcomeCompleted, nil
	case "abandoned":
		return TaskOutcomeAbandoned, nil
	case "panicked":
		return TaskOutcomePanicked, nil
	default:
		return "", fmt.Errorf("invalid task outcome: %s", s)
	}
}

// TaskRecord is one journal entry: a task that left the scheduler.
type TaskRecord struct {
	ID          string
	Name        string
	Outcome     TaskOutcome
	Worker      int
	Resumes     int64
	ScheduledAt time.Time
	FinishedAt  time.Time
	Error       string
}

func (r TaskRecord) Duration() time.Duration {
	return r.FinishedAt.Sub(r.ScheduledAt)
}
