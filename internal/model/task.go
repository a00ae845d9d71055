package model

import (
	"fmt"
	"time"
)

// TaskType represents the automation flow a task runs.
type TaskType string

const (
	TaskTypeSignup TaskType = "signup"
	TaskTypeLogin  TaskType = "login"
	TaskTypePost   TaskType = "post"
	TaskTypeWarmUp TaskType = "warm_up"
)

// TaskStatus represents the state of a task.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// TaskPayload is the type-specific task input. Fields not relevant to the
// task type are left zero.
type TaskPayload struct {
	VideoPath        string
	Caption          string
	Hashtags         string
	WarmUpIterations int
}

// Task represents one unit of scheduled automation work for an account.
//
// Lifecycle: pending -> processing -> completed|failed. A retryable failure
// moves the task back to pending with Attempts incremented and NotBefore set
// to the earliest time the dispatcher may pick it up again.
type Task struct {
	ID          string
	AccountID   string
	Type        TaskType
	Status      TaskStatus
	Payload     TaskPayload
	Attempts    int
	NotBefore   time.Time
	Reason      string
	CreatedAt   time.Time
	CompletedAt *time.Time
}

// Validate validates the task fields.
func (t *Task) Validate() error {
	if t.AccountID == "" {
		return fmt.Errorf("account id is required: %w", ErrNotValid)
	}

	switch t.Type {
	case TaskTypeSignup, TaskTypeLogin, TaskTypeWarmUp:
	case TaskTypePost:
		if t.Payload.VideoPath == "" {
			return fmt.Errorf("video path is required for post tasks: %w", ErrNotValid)
		}
	default:
		return fmt.Errorf("unknown task type %q: %w", t.Type, ErrNotValid)
	}

	if t.Payload.WarmUpIterations < 0 {
		return fmt.Errorf("warm-up iterations must not be negative: %w", ErrNotValid)
	}

	return nil
}

// Terminal reports whether the task has reached a final status.
func (t *Task) Terminal() bool {
	return t.Status == TaskStatusCompleted || t.Status == TaskStatusFailed
}

// Eligible reports whether the task may be dispatched at the given time.
func (t *Task) Eligible(now time.Time) bool {
	return t.Status == TaskStatusPending && !t.NotBefore.After(now)
}
