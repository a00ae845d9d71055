package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sezyil/tiktok-otonom/internal/browser"
	"github.com/sezyil/tiktok-otonom/internal/log"
	"github.com/sezyil/tiktok-otonom/internal/model"
	"github.com/sezyil/tiktok-otonom/internal/storage"
)

// PagePool is the browser session source the dispatcher leases pages from.
type PagePool interface {
	TryAcquire(ctx context.Context, proxy *model.Proxy) (browser.Page, error)
	Release(page browser.Page)
}

// FlowRunner executes the automation flow matching the task on a leased page.
type FlowRunner interface {
	Run(ctx context.Context, page browser.Page, account model.Account, task model.Task) model.FlowResult
}

// DispatcherConfig is the configuration for the task dispatcher.
type DispatcherConfig struct {
	Tasks    storage.TaskRepository
	Accounts storage.AccountRepository
	Pool     PagePool
	Runner   FlowRunner
	Locks    *AccountLocks
	Policy   RetryPolicy
	Logger   log.Logger

	// Interval is the tick period of the polling loop.
	Interval time.Duration
	// BatchSize caps how many tasks one tick picks up.
	BatchSize int
	// FlowTimeout is the hard wall-clock budget of one session.
	FlowTimeout time.Duration
}

func (c *DispatcherConfig) defaults() error {
	if c.Tasks == nil {
		return fmt.Errorf("task repository is required")
	}
	if c.Accounts == nil {
		return fmt.Errorf("account repository is required")
	}
	if c.Pool == nil {
		return fmt.Errorf("session pool is required")
	}
	if c.Runner == nil {
		return fmt.Errorf("flow runner is required")
	}
	if c.Locks == nil {
		c.Locks = NewAccountLocks()
	}
	if c.Policy == (RetryPolicy{}) {
		c.Policy = DefaultRetryPolicy()
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "scheduler.Dispatcher"})
	if c.Interval <= 0 {
		c.Interval = 30 * time.Minute
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 5
	}
	if c.FlowTimeout <= 0 {
		c.FlowTimeout = 10 * time.Minute
	}
	return nil
}

// Dispatcher polls for eligible tasks and runs each in its own session,
// bounded by the pool capacity and the per-account locks.
type Dispatcher struct {
	tasks       storage.TaskRepository
	accounts    storage.AccountRepository
	pool        PagePool
	runner      FlowRunner
	locks       *AccountLocks
	policy      RetryPolicy
	logger      log.Logger
	interval    time.Duration
	batchSize   int
	flowTimeout time.Duration

	wg sync.WaitGroup
}

// NewDispatcher creates a new task dispatcher.
func NewDispatcher(cfg DispatcherConfig) (*Dispatcher, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Dispatcher{
		tasks:       cfg.Tasks,
		accounts:    cfg.Accounts,
		pool:        cfg.Pool,
		runner:      cfg.Runner,
		locks:       cfg.Locks,
		policy:      cfg.Policy,
		logger:      cfg.Logger,
		interval:    cfg.Interval,
		batchSize:   cfg.BatchSize,
		flowTimeout: cfg.FlowTimeout,
	}, nil
}

// Run ticks until ctx is canceled, then drains the in-flight sessions.
func (d *Dispatcher) Run(ctx context.Context) error {
	d.logger.Infof("Dispatcher started (interval %s, batch %d)", d.interval, d.batchSize)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	// First tick fires immediately so a restart picks up backlog.
	d.Tick(ctx)

	for {
		select {
		case <-ticker.C:
			d.Tick(ctx)
		case <-ctx.Done():
			d.logger.Infof("Dispatcher stopping, draining sessions")
			d.Wait()
			return ctx.Err()
		}
	}
}

// Tick picks up one batch of eligible tasks and starts a session per task.
// Tasks whose account is busy, not schedulable or whose session slot is taken
// are skipped, not consumed: they stay pending for a later tick.
func (d *Dispatcher) Tick(ctx context.Context) {
	now := time.Now()

	tasks, err := d.tasks.ListPendingTasks(ctx, d.batchSize, now)
	if err != nil {
		d.logger.Errorf("Could not list pending tasks: %v", err)
		return
	}

	for _, task := range tasks {
		d.dispatch(ctx, task)
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, task model.Task) {
	logger := d.logger.WithValues(log.Kv{"task": task.ID, "account": task.AccountID})

	account, err := d.accounts.GetAccount(ctx, task.AccountID)
	if err != nil {
		logger.Errorf("Could not get account: %v", err)
		if errors.Is(err, model.ErrNotFound) {
			d.failTask(ctx, task.ID, "account missing")
		}
		return
	}

	// Signup runs on accounts not yet active; everything else requires an
	// active account.
	if task.Type != model.TaskTypeSignup && !account.Schedulable() {
		logger.Debugf("Account not schedulable (%s), skipping", account.Status)
		return
	}

	if !d.locks.TryLock(account.ID) {
		logger.Debugf("Account busy, skipping")
		return
	}

	page, err := d.pool.TryAcquire(ctx, account.Proxy)
	if err != nil {
		d.locks.Unlock(account.ID)
		if errors.Is(err, model.ErrSessionUnavailable) {
			logger.Debugf("Pool saturated, deferring task")
		} else {
			logger.Errorf("Could not acquire session: %v", err)
		}
		return
	}

	// The task is marked processing before the session goroutine exists, so
	// a crash between the two leaves a visible processing task instead of a
	// silently re-dispatched one.
	if err := d.tasks.SetTaskStatus(ctx, task.ID, model.TaskStatusProcessing, nil, ""); err != nil {
		logger.Errorf("Could not mark task processing: %v", err)
		d.pool.Release(page)
		d.locks.Unlock(account.ID)
		return
	}

	d.wg.Add(1)
	go d.runSession(ctx, page, *account, task)
}

// Wait blocks until every in-flight session has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) runSession(ctx context.Context, page browser.Page, account model.Account, task model.Task) {
	logger := d.logger.WithValues(log.Kv{"task": task.ID, "account": account.Username, "type": task.Type})

	// Settlement must survive shutdown: a drained session still has to move
	// its task out of processing, so the bookkeeping writes run on a context
	// detached from both the flow deadline and the dispatcher's cancellation.
	settleCtx := context.WithoutCancel(ctx)

	defer d.wg.Done()
	defer d.locks.Unlock(account.ID)
	defer d.pool.Release(page)
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("Session panicked: %v", r)
			d.failTask(settleCtx, task.ID, "panic")
		}
	}()

	flowCtx, cancel := context.WithTimeout(ctx, d.flowTimeout)
	defer cancel()

	start := time.Now()
	result := d.runner.Run(flowCtx, page, account, task)
	elapsed := time.Since(start)

	if result.Success {
		d.settleSuccess(settleCtx, account, task, result, logger)
	} else {
		d.settleFailure(settleCtx, account, task, result, logger)
	}
	logger.Debugf("Session finished in %s", elapsed)
}

func (d *Dispatcher) settleSuccess(ctx context.Context, account model.Account, task model.Task, result model.FlowResult, logger log.Logger) {
	now := time.Now()
	if err := d.tasks.SetTaskStatus(ctx, task.ID, model.TaskStatusCompleted, &now, ""); err != nil {
		logger.Errorf("Could not mark task completed: %v", err)
		return
	}

	decision := d.policy.OnSuccess(now)
	if _, err := d.accounts.UpdateRiskAndActivity(ctx, account.ID, decision.RiskDelta, now); err != nil {
		logger.Errorf("Could not update account risk: %v", err)
	}

	// Signup success promotes the account into the schedulable set.
	if task.Type == model.TaskTypeSignup && account.Status == model.AccountStatusInactive {
		if err := d.accounts.SetAccountStatus(ctx, account.ID, model.AccountStatusActive); err != nil {
			logger.Errorf("Could not activate account: %v", err)
		}
	}

	if result.Stats != nil {
		logger.Infof("Task completed, profile at %d followers / %d following / %d likes",
			result.Stats.Followers, result.Stats.Following, result.Stats.Likes)
	} else {
		logger.Infof("Task completed")
	}
}

func (d *Dispatcher) settleFailure(ctx context.Context, account model.Account, task model.Task, result model.FlowResult, logger log.Logger) {
	now := time.Now()
	attempts := task.Attempts + 1
	decision := d.policy.OnFailure(result.Reason, attempts, now)

	if decision.Requeue {
		if err := d.tasks.RequeueTask(ctx, task.ID, decision.NotBefore); err != nil {
			logger.Errorf("Could not requeue task: %v", err)
		} else {
			logger.Warningf("Task failed (%s), retry %d/%d after %s", result.Reason, attempts, d.policy.MaxAttempts, decision.NotBefore.Sub(now).Round(time.Second))
		}
	} else {
		d.failTask(ctx, task.ID, string(result.Reason))
		logger.Warningf("Task failed permanently: %s", result.Reason)
	}

	score, err := d.accounts.UpdateRiskAndActivity(ctx, account.ID, decision.RiskDelta, now)
	if err != nil {
		logger.Errorf("Could not update account risk: %v", err)
		return
	}

	needsLock := Classify(result.Reason) == ClassIntervention || score >= d.policy.RiskThreshold
	if needsLock && account.Status == model.AccountStatusActive {
		if err := d.accounts.SetAccountStatus(ctx, account.ID, model.AccountStatusLocked); err != nil {
			logger.Errorf("Could not lock account: %v", err)
			return
		}
		logger.Warningf("Account locked (risk score %d)", score)
	}
}

func (d *Dispatcher) failTask(ctx context.Context, id, reason string) {
	now := time.Now()
	if err := d.tasks.SetTaskStatus(ctx, id, model.TaskStatusFailed, &now, reason); err != nil {
		d.logger.Errorf("Could not mark task %s failed: %v", id, err)
	}
}
