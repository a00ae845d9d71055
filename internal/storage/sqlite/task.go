package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sezyil/tiktok-otonom/internal/model"
)

const taskColumns = `
	id, account_id, task_type, status,
	video_path, caption, hashtags, warmup_iterations,
	attempts, not_before, reason, created_at, completed_at
`

// CreateTask creates a new task in the repository.
func (r *Repository) CreateTask(ctx context.Context, t model.Task) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("invalid task: %w", err)
	}

	var completedAt *int64
	if t.CompletedAt != nil {
		u := t.CompletedAt.Unix()
		completedAt = &u
	}

	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		t.ID,
		t.AccountID,
		t.Type,
		t.Status,
		t.Payload.VideoPath,
		t.Payload.Caption,
		t.Payload.Hashtags,
		t.Payload.WarmUpIterations,
		t.Attempts,
		t.NotBefore.Unix(),
		t.Reason,
		t.CreatedAt.Unix(),
		completedAt,
	)
	if err != nil {
		return fmt.Errorf("could not insert task: %w", err)
	}

	r.logger.Debugf("Created task in repository: %s", t.ID)
	return nil
}

// GetTask retrieves a task by ID.
func (r *Repository) GetTask(ctx context.Context, id string) (*model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`

	row := r.db.QueryRowContext(ctx, query, id)
	task, err := r.scanTaskRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("task %s: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query task: %w", err)
	}

	return &task, nil
}

// ListTasks returns all tasks, newest first.
func (r *Repository) ListTasks(ctx context.Context) ([]model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks ORDER BY created_at DESC`

	return r.queryTasks(ctx, query)
}

// ListPendingTasks returns up to limit pending tasks whose not-before time has
// passed, oldest first.
func (r *Repository) ListPendingTasks(ctx context.Context, limit int, now time.Time) ([]model.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE status = ? AND not_before <= ?
		ORDER BY created_at ASC
		LIMIT ?
	`

	return r.queryTasks(ctx, query, model.TaskStatusPending, now.Unix(), limit)
}

// SetTaskStatus transitions a task status.
func (r *Repository) SetTaskStatus(ctx context.Context, id string, status model.TaskStatus, completedAt *time.Time, reason string) error {
	var completed *int64
	if completedAt != nil {
		u := completedAt.Unix()
		completed = &u
	}

	query := `UPDATE tasks SET status = ?, completed_at = ?, reason = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, status, completed, reason, id)
	if err != nil {
		return fmt.Errorf("could not update task status: %w", err)
	}

	if err := requireRowAffected(result, id); err != nil {
		return err
	}

	r.logger.Debugf("Set task %s status to %s", id, status)
	return nil
}

// RequeueTask moves a task back to pending with an incremented attempt
// counter, eligible again no earlier than notBefore.
func (r *Repository) RequeueTask(ctx context.Context, id string, notBefore time.Time) error {
	query := `
		UPDATE tasks
		SET status = ?, attempts = attempts + 1, not_before = ?, completed_at = NULL
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query, model.TaskStatusPending, notBefore.Unix(), id)
	if err != nil {
		return fmt.Errorf("could not requeue task: %w", err)
	}

	if err := requireRowAffected(result, id); err != nil {
		return err
	}

	r.logger.Debugf("Requeued task %s (eligible at %s)", id, notBefore)
	return nil
}

func (r *Repository) queryTasks(ctx context.Context, query string, args ...any) ([]model.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("could not query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		task, err := r.scanTaskRow(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return tasks, nil
}

func (r *Repository) scanTaskRow(s scanner) (model.Task, error) {
	var t model.Task
	var notBefore, createdAt int64
	var completedAt sql.NullInt64

	err := s.Scan(
		&t.ID,
		&t.AccountID,
		&t.Type,
		&t.Status,
		&t.Payload.VideoPath,
		&t.Payload.Caption,
		&t.Payload.Hashtags,
		&t.Payload.WarmUpIterations,
		&t.Attempts,
		&notBefore,
		&t.Reason,
		&createdAt,
		&completedAt,
	)
	if err != nil {
		return model.Task{}, err
	}

	t.NotBefore = timeFromUnix(notBefore)
	t.CreatedAt = timeFromUnix(createdAt)
	if completedAt.Valid {
		c := timeFromUnix(completedAt.Int64)
		t.CompletedAt = &c
	}

	return t, nil
}
