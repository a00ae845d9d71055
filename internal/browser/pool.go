package browser

import (
	"context"
	"fmt"

	"github.com/sezyil/tiktok-otonom/internal/log"
	"github.com/sezyil/tiktok-otonom/internal/model"
)

// MobileUserAgent is the default user agent pages are configured with, so
// sessions render the mobile site the flows are written against.
const MobileUserAgent = "Mozilla/5.0 (iPhone; CPU iPhone OS 14_7_1 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/14.1.2 Mobile/15E148 Safari/604.1"

// PoolConfig is the configuration for the session pool.
type PoolConfig struct {
	Engine    Engine
	Capacity  int
	UserAgent string
	Logger    log.Logger
}

func (c *PoolConfig) defaults() error {
	if c.Engine == nil {
		return fmt.Errorf("engine is required")
	}
	if c.Capacity <= 0 {
		return fmt.Errorf("capacity must be positive")
	}
	if c.UserAgent == "" {
		c.UserAgent = MobileUserAgent
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "browser.Pool"})
	return nil
}

// Pool hands out isolated browser pages bounded by a fixed capacity. Leases
// are scoped to one proxy at a time; retrying a failed lease is the caller's
// responsibility, never the pool's.
type Pool struct {
	engine    Engine
	slots     chan struct{}
	userAgent string
	logger    log.Logger
}

// NewPool creates a new session pool and starts the engine.
func NewPool(ctx context.Context, cfg PoolConfig) (*Pool, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if err := cfg.Engine.Start(ctx); err != nil {
		return nil, fmt.Errorf("could not start browser engine: %w", err)
	}

	slots := make(chan struct{}, cfg.Capacity)
	for i := 0; i < cfg.Capacity; i++ {
		slots <- struct{}{}
	}

	cfg.Logger.Debugf("Session pool started with capacity %d", cfg.Capacity)

	return &Pool{
		engine:    cfg.Engine,
		slots:     slots,
		userAgent: cfg.UserAgent,
		logger:    cfg.Logger,
	}, nil
}

// Acquire blocks until a slot is free or ctx expires, then opens a page scoped
// to the given proxy. The caller supplies its wait budget through ctx.
func (p *Pool) Acquire(ctx context.Context, proxy *model.Proxy) (Page, error) {
	select {
	case <-p.slots:
	case <-ctx.Done():
		return nil, fmt.Errorf("no session slot became free: %w", model.ErrSessionUnavailable)
	}

	return p.openPage(ctx, proxy)
}

// TryAcquire is the non-blocking variant of Acquire, used by the dispatcher
// so a saturated pool defers work to the next tick instead of blocking it.
func (p *Pool) TryAcquire(ctx context.Context, proxy *model.Proxy) (Page, error) {
	select {
	case <-p.slots:
	default:
		return nil, fmt.Errorf("pool saturated: %w", model.ErrSessionUnavailable)
	}

	return p.openPage(ctx, proxy)
}

// Release closes the page and frees its slot. Safe to call with the page in
// any state.
func (p *Pool) Release(page Page) {
	if page != nil {
		if err := page.Close(); err != nil {
			p.logger.Warningf("could not close page: %v", err)
		}
	}
	p.slots <- struct{}{}
}

// Shutdown stops the underlying engine.
func (p *Pool) Shutdown(ctx context.Context) error {
	if err := p.engine.Stop(ctx); err != nil {
		return fmt.Errorf("could not stop browser engine: %w", err)
	}
	p.logger.Debugf("Session pool shut down")
	return nil
}

func (p *Pool) openPage(ctx context.Context, proxy *model.Proxy) (Page, error) {
	page, err := p.engine.NewPage(ctx, PageOptions{Proxy: proxy, UserAgent: p.userAgent})
	if err != nil {
		// The slot goes back; the retry decision belongs to the dispatcher.
		p.slots <- struct{}{}
		return nil, fmt.Errorf("could not open page: %v: %w", err, model.ErrSessionUnavailable)
	}
	return page, nil
}
