package enqueue

import (
	"context"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/sezyil/tiktok-otonom/internal/log"
	"github.com/sezyil/tiktok-otonom/internal/model"
	"github.com/sezyil/tiktok-otonom/internal/storage"
)

// ServiceConfig is the configuration for the enqueue service.
type ServiceConfig struct {
	Tasks    storage.TaskRepository
	Accounts storage.AccountRepository
	Logger   log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Tasks == nil {
		return fmt.Errorf("task repository is required")
	}
	if c.Accounts == nil {
		return fmt.Errorf("account repository is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Enqueue"})
	return nil
}

// Service enqueues automation tasks for accounts.
type Service struct {
	tasks    storage.TaskRepository
	accounts storage.AccountRepository
	logger   log.Logger
}

// NewService creates a new enqueue service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		tasks:    cfg.Tasks,
		accounts: cfg.Accounts,
		logger:   cfg.Logger,
	}, nil
}

// Request represents one task to enqueue.
type Request struct {
	AccountID string
	Type      model.TaskType
	Payload   model.TaskPayload
	// NotBefore optionally defers the task.
	NotBefore time.Time
}

// Run validates the request against the account and stores the task pending.
func (s *Service) Run(ctx context.Context, req Request) (*model.Task, error) {
	account, err := s.accounts.GetAccount(ctx, req.AccountID)
	if err != nil {
		return nil, fmt.Errorf("could not get account: %w", err)
	}

	if account.Status == model.AccountStatusBanned {
		return nil, fmt.Errorf("account %q is banned: %w", account.Username, model.ErrNotValid)
	}
	if account.Status == model.AccountStatusLocked {
		return nil, fmt.Errorf("account %q needs manual intervention: %w", account.Username, model.ErrAccountLocked)
	}

	task := model.Task{
		ID:        ulid.Make().String(),
		AccountID: account.ID,
		Type:      req.Type,
		Status:    model.TaskStatusPending,
		Payload:   req.Payload,
		NotBefore: req.NotBefore,
		CreatedAt: time.Now().UTC(),
	}

	if err := task.Validate(); err != nil {
		return nil, fmt.Errorf("invalid task: %w", err)
	}

	if err := s.tasks.CreateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("could not save task: %w", err)
	}

	s.logger.Infof("Enqueued %s task %s for account %s", task.Type, task.ID, account.Username)

	return &task, nil
}
