// Package playwright implements the browser engine on top of
// playwright-community/playwright-go driving headless Chromium.
package playwright

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/sezyil/tiktok-otonom/internal/browser"
	"github.com/sezyil/tiktok-otonom/internal/log"
)

// Chromium launch arguments carried over from the hardened headless setup the
// automation was originally tuned with.
var launchArgs = []string{
	"--no-sandbox",
	"--disable-setuid-sandbox",
	"--disable-dev-shm-usage",
	"--disable-accelerated-2d-canvas",
	"--no-first-run",
	"--no-zygote",
	"--disable-gpu",
}

// EngineConfig is the configuration for the Playwright engine.
type EngineConfig struct {
	Headless bool
	// ExecutablePath optionally points at a system Chromium binary instead of
	// the Playwright-managed one.
	ExecutablePath string
	// Install downloads the Playwright driver and browsers on Start when they
	// are not present yet.
	Install bool
	Logger  log.Logger
}

func (c *EngineConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "browser.Playwright"})
	return nil
}

// Engine is a Playwright implementation of browser.Engine. One Chromium
// process serves all pages; isolation between accounts comes from per-page
// browser contexts.
type Engine struct {
	cfg     EngineConfig
	pw      *playwright.Playwright
	browser playwright.Browser
	logger  log.Logger
}

// NewEngine creates a new Playwright engine.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Engine{cfg: cfg, logger: cfg.Logger}, nil
}

// Start launches the Playwright driver and the Chromium browser.
func (e *Engine) Start(ctx context.Context) error {
	runOpts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}

	if e.cfg.Install {
		if err := playwright.Install(runOpts); err != nil {
			return fmt.Errorf("could not install playwright: %w", err)
		}
	}

	pw, err := playwright.Run(runOpts)
	if err != nil {
		return fmt.Errorf("could not start playwright: %w", err)
	}
	e.pw = pw

	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(e.cfg.Headless),
		Args:     launchArgs,
	}
	if e.cfg.ExecutablePath != "" {
		launchOpts.ExecutablePath = playwright.String(e.cfg.ExecutablePath)
	}

	b, err := e.pw.Chromium.Launch(launchOpts)
	if err != nil {
		stopErr := e.pw.Stop()
		if stopErr != nil {
			e.logger.Warningf("could not stop playwright after launch failure: %v", stopErr)
		}
		return fmt.Errorf("could not launch browser: %w", err)
	}
	e.browser = b

	e.logger.Debugf("Playwright engine started (headless: %t)", e.cfg.Headless)
	return nil
}

// NewPage opens an isolated browser context with the requested proxy and user
// agent and returns its page.
func (e *Engine) NewPage(ctx context.Context, opts browser.PageOptions) (browser.Page, error) {
	if e.browser == nil {
		return nil, fmt.Errorf("engine not started")
	}

	contextOpts := playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{Width: 390, Height: 844},
	}
	if opts.UserAgent != "" {
		contextOpts.UserAgent = playwright.String(opts.UserAgent)
	}
	if opts.Proxy != nil {
		contextOpts.Proxy = &playwright.Proxy{
			Server:   opts.Proxy.Addr(),
			Username: playwright.String(opts.Proxy.Username),
			Password: playwright.String(opts.Proxy.Password),
		}
	}

	browserCtx, err := e.browser.NewContext(contextOpts)
	if err != nil {
		return nil, fmt.Errorf("could not create browser context: %w", err)
	}

	pwPage, err := browserCtx.NewPage()
	if err != nil {
		closeErr := browserCtx.Close()
		if closeErr != nil {
			e.logger.Warningf("could not close browser context: %v", closeErr)
		}
		return nil, fmt.Errorf("could not create page: %w", err)
	}

	return &page{pwPage: pwPage, browserCtx: browserCtx}, nil
}

// Stop tears down the browser and the Playwright driver.
func (e *Engine) Stop(ctx context.Context) error {
	if e.browser != nil {
		if err := e.browser.Close(); err != nil {
			return fmt.Errorf("could not close browser: %w", err)
		}
		e.browser = nil
	}
	if e.pw != nil {
		if err := e.pw.Stop(); err != nil {
			return fmt.Errorf("could not stop playwright: %w", err)
		}
		e.pw = nil
	}

	e.logger.Debugf("Playwright engine stopped")
	return nil
}

type page struct {
	pwPage     playwright.Page
	browserCtx playwright.BrowserContext
}

func (p *page) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	_, err := p.pwPage.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   timeoutMS(timeout),
	})
	if err != nil {
		return fmt.Errorf("goto %s: %v: %w", url, err, browser.ErrNavigation)
	}
	return nil
}

func (p *page) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error {
	_, err := p.pwPage.WaitForSelector(selector, playwright.PageWaitForSelectorOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: timeoutMS(timeout),
	})
	if err != nil {
		// The element never showed up within the budget.
		if isTimeout(err) {
			return fmt.Errorf("wait for %s: %w", selector, browser.ErrElementMissing)
		}
		return fmt.Errorf("wait for %s: %w", selector, mapError(err))
	}
	return nil
}

func (p *page) Type(ctx context.Context, selector, text string, timeout time.Duration) error {
	err := p.pwPage.Fill(selector, text, playwright.PageFillOptions{Timeout: timeoutMS(timeout)})
	if err != nil {
		return fmt.Errorf("type into %s: %w", selector, mapError(err))
	}
	return nil
}

func (p *page) Click(ctx context.Context, selector string, timeout time.Duration) error {
	err := p.pwPage.Click(selector, playwright.PageClickOptions{Timeout: timeoutMS(timeout)})
	if err != nil {
		return fmt.Errorf("click %s: %w", selector, mapError(err))
	}
	return nil
}

func (p *page) UploadFile(ctx context.Context, selector, path string, timeout time.Duration) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read upload file: %w", err)
	}

	err = p.pwPage.SetInputFiles(selector, []playwright.InputFile{{
		Name:   filepath.Base(path),
		Buffer: data,
	}}, playwright.PageSetInputFilesOptions{Timeout: timeoutMS(timeout)})
	if err != nil {
		return fmt.Errorf("upload to %s: %w", selector, mapError(err))
	}
	return nil
}

func (p *page) TextContent(ctx context.Context, selector string, timeout time.Duration) (string, error) {
	text, err := p.pwPage.TextContent(selector, playwright.PageTextContentOptions{Timeout: timeoutMS(timeout)})
	if err != nil {
		return "", fmt.Errorf("text content of %s: %w", selector, mapError(err))
	}
	return text, nil
}

func (p *page) Scroll(ctx context.Context, offsetY int) error {
	_, err := p.pwPage.Evaluate(fmt.Sprintf("window.scrollBy(0, %d)", offsetY))
	if err != nil {
		return fmt.Errorf("scroll: %w", mapError(err))
	}
	return nil
}

func (p *page) URL() string { return p.pwPage.URL() }

func (p *page) Close() error {
	if err := p.pwPage.Close(); err != nil {
		return fmt.Errorf("could not close page: %w", err)
	}
	if err := p.browserCtx.Close(); err != nil {
		return fmt.Errorf("could not close browser context: %w", err)
	}
	return nil
}

func timeoutMS(d time.Duration) *float64 {
	if d <= 0 {
		return nil
	}
	return playwright.Float(float64(d.Milliseconds()))
}

func isTimeout(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "timeout")
}

// mapError folds Playwright errors onto the browser package sentinels so the
// step executor can classify outcomes without knowing the engine.
func mapError(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout"):
		return fmt.Errorf("%v: %w", err, browser.ErrTimeout)
	case strings.Contains(msg, "not found"), strings.Contains(msg, "no node"), strings.Contains(msg, "failed to find"):
		return fmt.Errorf("%v: %w", err, browser.ErrElementMissing)
	default:
		return err
	}
}
