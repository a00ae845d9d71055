package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sezyil/tiktok-otonom/internal/log"
	"github.com/sezyil/tiktok-otonom/internal/model"
)

// RepositoryConfig is the configuration for the memory repository.
type RepositoryConfig struct {
	Logger log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.Memory"})
	return nil
}

// Repository is an in-memory implementation of storage.AccountRepository and
// storage.TaskRepository.
type Repository struct {
	accounts map[string]model.Account
	tasks    map[string]model.Task
	mu       sync.RWMutex
	logger   log.Logger
}

// NewRepository creates a new memory repository.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Repository{
		accounts: make(map[string]model.Account),
		tasks:    make(map[string]model.Task),
		logger:   cfg.Logger,
	}, nil
}

// CreateAccount creates a new account in the repository.
func (r *Repository) CreateAccount(ctx context.Context, a model.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[a.ID]; ok {
		return fmt.Errorf("account with id %s: %w", a.ID, model.ErrAlreadyExists)
	}

	for _, existing := range r.accounts {
		if existing.Username == a.Username {
			return fmt.Errorf("account with username %s: %w", a.Username, model.ErrAlreadyExists)
		}
		if existing.Email == a.Email {
			return fmt.Errorf("account with email %s: %w", a.Email, model.ErrAlreadyExists)
		}
	}

	r.accounts[a.ID] = a
	r.logger.Debugf("Created account in repository: %s", a.ID)

	return nil
}

// GetAccount retrieves an account by ID.
func (r *Repository) GetAccount(ctx context.Context, id string) (*model.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, ok := r.accounts[id]
	if !ok {
		return nil, fmt.Errorf("account %s: %w", id, model.ErrNotFound)
	}

	accountCopy := account
	return &accountCopy, nil
}

// GetAccountByUsername retrieves an account by username.
func (r *Repository) GetAccountByUsername(ctx context.Context, username string) (*model.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, account := range r.accounts {
		if account.Username == username {
			accountCopy := account
			return &accountCopy, nil
		}
	}

	return nil, fmt.Errorf("account with username %s: %w", username, model.ErrNotFound)
}

// ListAccounts returns all accounts.
func (r *Repository) ListAccounts(ctx context.Context) ([]model.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	accounts := make([]model.Account, 0, len(r.accounts))
	for _, account := range r.accounts {
		accounts = append(accounts, account)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].CreatedAt.After(accounts[j].CreatedAt) })

	return accounts, nil
}

// UpdateAccount updates an existing account.
func (r *Repository) UpdateAccount(ctx context.Context, a model.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[a.ID]; !ok {
		return fmt.Errorf("account %s: %w", a.ID, model.ErrNotFound)
	}

	r.accounts[a.ID] = a
	r.logger.Debugf("Updated account in repository: %s", a.ID)

	return nil
}

// DeleteAccount deletes an account and its tasks.
func (r *Repository) DeleteAccount(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[id]; !ok {
		return fmt.Errorf("account %s: %w", id, model.ErrNotFound)
	}

	delete(r.accounts, id)
	for taskID, task := range r.tasks {
		if task.AccountID == id {
			delete(r.tasks, taskID)
		}
	}
	r.logger.Debugf("Deleted account from repository: %s", id)

	return nil
}

// UpdateRiskAndActivity applies a risk delta (clamped at zero) and stamps the
// last activity time, returning the new score.
func (r *Repository) UpdateRiskAndActivity(ctx context.Context, id string, riskDelta int, at time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[id]
	if !ok {
		return 0, fmt.Errorf("account %s: %w", id, model.ErrNotFound)
	}

	account.RiskScore += riskDelta
	if account.RiskScore < 0 {
		account.RiskScore = 0
	}
	account.LastActivity = at
	r.accounts[id] = account

	return account.RiskScore, nil
}

// SetAccountStatus transitions the account lifecycle status.
func (r *Repository) SetAccountStatus(ctx context.Context, id string, status model.AccountStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[id]
	if !ok {
		return fmt.Errorf("account %s: %w", id, model.ErrNotFound)
	}

	account.Status = status
	r.accounts[id] = account
	r.logger.Debugf("Set account %s status to %s", id, status)

	return nil
}

// CreateTask creates a new task in the repository.
func (r *Repository) CreateTask(ctx context.Context, t model.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[t.ID]; ok {
		return fmt.Errorf("task with id %s: %w", t.ID, model.ErrAlreadyExists)
	}

	r.tasks[t.ID] = t
	r.logger.Debugf("Created task in repository: %s", t.ID)

	return nil
}

// GetTask retrieves a task by ID.
func (r *Repository) GetTask(ctx context.Context, id string) (*model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	task, ok := r.tasks[id]
	if !ok {
		return nil, fmt.Errorf("task %s: %w", id, model.ErrNotFound)
	}

	taskCopy := task
	return &taskCopy, nil
}

// ListTasks returns all tasks, newest first.
func (r *Repository) ListTasks(ctx context.Context) ([]model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tasks := make([]model.Task, 0, len(r.tasks))
	for _, task := range r.tasks {
		tasks = append(tasks, task)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].CreatedAt.After(tasks[j].CreatedAt) })

	return tasks, nil
}

// ListPendingTasks returns up to limit eligible pending tasks, oldest first.
func (r *Repository) ListPendingTasks(ctx context.Context, limit int, now time.Time) ([]model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var tasks []model.Task
	for _, task := range r.tasks {
		if task.Eligible(now) {
			tasks = append(tasks, task)
		}
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].CreatedAt.Before(tasks[j].CreatedAt) })

	if len(tasks) > limit {
		tasks = tasks[:limit]
	}

	return tasks, nil
}

// SetTaskStatus transitions a task status.
func (r *Repository) SetTaskStatus(ctx context.Context, id string, status model.TaskStatus, completedAt *time.Time, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[id]
	if !ok {
		return fmt.Errorf("task %s: %w", id, model.ErrNotFound)
	}

	task.Status = status
	task.CompletedAt = completedAt
	task.Reason = reason
	r.tasks[id] = task
	r.logger.Debugf("Set task %s status to %s", id, status)

	return nil
}

// RequeueTask moves a task back to pending with an incremented attempt count.
func (r *Repository) RequeueTask(ctx context.Context, id string, notBefore time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[id]
	if !ok {
		return fmt.Errorf("task %s: %w", id, model.ErrNotFound)
	}

	task.Status = model.TaskStatusPending
	task.Attempts++
	task.NotBefore = notBefore
	task.CompletedAt = nil
	r.tasks[id] = task
	r.logger.Debugf("Requeued task %s (eligible at %s)", id, notBefore)

	return nil
}
