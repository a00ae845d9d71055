package storage

import (
	"context"
	"time"

	"github.com/sezyil/tiktok-otonom/internal/model"
)

// AccountRepository is the interface for account persistence.
type AccountRepository interface {
	CreateAccount(ctx context.Context, a model.Account) error
	GetAccount(ctx context.Context, id string) (*model.Account, error)
	GetAccountByUsername(ctx context.Context, username string) (*model.Account, error)
	ListAccounts(ctx context.Context) ([]model.Account, error)
	UpdateAccount(ctx context.Context, a model.Account) error
	DeleteAccount(ctx context.Context, id string) error

	// UpdateRiskAndActivity atomically applies a risk score delta (clamped at
	// zero) and stamps the last activity time, returning the new score.
	UpdateRiskAndActivity(ctx context.Context, id string, riskDelta int, at time.Time) (int, error)

	// SetAccountStatus transitions the account lifecycle status.
	SetAccountStatus(ctx context.Context, id string, status model.AccountStatus) error
}

// TaskRepository is the interface for automation task persistence.
type TaskRepository interface {
	CreateTask(ctx context.Context, t model.Task) error
	GetTask(ctx context.Context, id string) (*model.Task, error)
	ListTasks(ctx context.Context) ([]model.Task, error)

	// ListPendingTasks returns up to limit pending tasks whose NotBefore has
	// passed, oldest first.
	ListPendingTasks(ctx context.Context, limit int, now time.Time) ([]model.Task, error)

	// SetTaskStatus transitions a task status. completedAt and reason are
	// stored for terminal transitions and may be nil/empty otherwise.
	SetTaskStatus(ctx context.Context, id string, status model.TaskStatus, completedAt *time.Time, reason string) error

	// RequeueTask moves a task back to pending with an incremented attempt
	// counter, eligible again no earlier than notBefore.
	RequeueTask(ctx context.Context, id string, notBefore time.Time) error
}
