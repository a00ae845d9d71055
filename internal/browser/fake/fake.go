// Package fake provides an in-memory browser engine and scriptable pages for
// tests and dry runs. No real browser is involved.
package fake

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sezyil/tiktok-otonom/internal/browser"
	"github.com/sezyil/tiktok-otonom/internal/log"
)

// EngineConfig is the configuration for the fake engine.
type EngineConfig struct {
	// NewPage optionally overrides page creation, e.g. to return a scripted
	// page or to fail. Defaults to returning an empty Page.
	NewPage func(ctx context.Context, opts browser.PageOptions) (browser.Page, error)
	Logger  log.Logger
}

func (c *EngineConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "browser.Fake"})
	return nil
}

// Engine is a fake implementation of browser.Engine.
type Engine struct {
	newPage func(ctx context.Context, opts browser.PageOptions) (browser.Page, error)
	started bool
	opened  int
	mu      sync.Mutex
	logger  log.Logger
}

// NewEngine creates a new fake engine.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	newPage := cfg.NewPage
	if newPage == nil {
		newPage = func(ctx context.Context, opts browser.PageOptions) (browser.Page, error) {
			return NewPage(), nil
		}
	}

	return &Engine{newPage: newPage, logger: cfg.Logger}, nil
}

// Start marks the engine as started.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.started = true
	e.logger.Debugf("Fake engine started")
	return nil
}

// NewPage returns a page from the configured factory.
func (e *Engine) NewPage(ctx context.Context, opts browser.PageOptions) (browser.Page, error) {
	e.mu.Lock()
	started := e.started
	e.mu.Unlock()
	if !started {
		return nil, fmt.Errorf("engine not started")
	}

	page, err := e.newPage(ctx, opts)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.opened++
	e.mu.Unlock()
	return page, nil
}

// Stop marks the engine as stopped.
func (e *Engine) Stop(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.started = false
	e.logger.Debugf("Fake engine stopped")
	return nil
}

// OpenedPages returns the number of pages the engine has handed out.
func (e *Engine) OpenedPages() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.opened
}

// Page is a scriptable fake implementation of browser.Page. Selector behavior
// is configured per selector; unconfigured selectors succeed. All interactions
// are recorded for assertions.
type Page struct {
	mu sync.Mutex

	// Errs maps a selector (or URL for navigations) to the error its
	// interaction returns.
	Errs map[string]error
	// Texts maps a selector to the text content it yields.
	Texts map[string]string

	navigations []string
	clicks      map[string]int
	typed       map[string][]string
	uploads     map[string][]string
	scrolls     int
	currentURL  string
	closed      bool
}

// NewPage creates a scriptable fake page.
func NewPage() *Page {
	return &Page{
		Errs:    map[string]error{},
		Texts:   map[string]string{},
		clicks:  map[string]int{},
		typed:   map[string][]string{},
		uploads: map[string][]string{},
	}
}

func (p *Page) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.Errs[url]; err != nil {
		return err
	}
	p.navigations = append(p.navigations, url)
	p.currentURL = url
	return nil
}

func (p *Page) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Errs[selector]
}

func (p *Page) Type(ctx context.Context, selector, text string, timeout time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.Errs[selector]; err != nil {
		return err
	}
	p.typed[selector] = append(p.typed[selector], text)
	return nil
}

func (p *Page) Click(ctx context.Context, selector string, timeout time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.Errs[selector]; err != nil {
		return err
	}
	p.clicks[selector]++
	return nil
}

func (p *Page) UploadFile(ctx context.Context, selector, path string, timeout time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.Errs[selector]; err != nil {
		return err
	}
	p.uploads[selector] = append(p.uploads[selector], path)
	return nil
}

func (p *Page) TextContent(ctx context.Context, selector string, timeout time.Duration) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.Errs[selector]; err != nil {
		return "", err
	}
	text, ok := p.Texts[selector]
	if !ok {
		return "", fmt.Errorf("text content of %s: %w", selector, browser.ErrElementMissing)
	}
	return text, nil
}

func (p *Page) Scroll(ctx context.Context, offsetY int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scrolls++
	return nil
}

func (p *Page) URL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.currentURL
}

func (p *Page) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// Navigations returns the visited URLs in order.
func (p *Page) Navigations() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.navigations...)
}

// Clicks returns how many times the selector was clicked.
func (p *Page) Clicks(selector string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.clicks[selector]
}

// Typed returns the texts typed into the selector in order.
func (p *Page) Typed(selector string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.typed[selector]...)
}

// Uploads returns the file paths uploaded through the selector.
func (p *Page) Uploads(selector string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.uploads[selector]...)
}

// Scrolls returns the number of scroll actions performed.
func (p *Page) Scrolls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.scrolls
}

// Closed reports whether the page was closed.
func (p *Page) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}
