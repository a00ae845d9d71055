package browser

import (
	"context"
	"errors"
	"time"

	"github.com/sezyil/tiktok-otonom/internal/model"
)

var (
	// ErrElementMissing is returned by page operations when the target element
	// is not present in the DOM.
	ErrElementMissing = errors.New("element missing")
	// ErrTimeout is returned by page operations that exceed their deadline.
	ErrTimeout = errors.New("operation timed out")
	// ErrNavigation is returned when page navigation fails.
	ErrNavigation = errors.New("navigation failed")
)

// PageOptions configures a new page lease.
type PageOptions struct {
	// Proxy scopes the page's traffic to the account's proxy endpoint.
	Proxy *model.Proxy
	// UserAgent overrides the browser user agent (defaults to a mobile UA).
	UserAgent string
}

// Engine is the interface for browser engine lifecycle and page creation.
type Engine interface {
	// Start launches the underlying browser engine. Must be called before
	// creating pages.
	Start(ctx context.Context) error

	// NewPage opens an isolated page (own browser context) configured with
	// the given options.
	NewPage(ctx context.Context, opts PageOptions) (Page, error)

	// Stop tears down the engine and all remaining pages.
	Stop(ctx context.Context) error
}

// Page is a leased browser page exposing the interaction primitives the step
// executor is built from. Implementations map engine-specific failures onto
// ErrElementMissing, ErrTimeout and ErrNavigation so callers can classify
// outcomes with errors.Is.
type Page interface {
	Navigate(ctx context.Context, url string, timeout time.Duration) error
	WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error
	Type(ctx context.Context, selector, text string, timeout time.Duration) error
	Click(ctx context.Context, selector string, timeout time.Duration) error
	UploadFile(ctx context.Context, selector, path string, timeout time.Duration) error
	TextContent(ctx context.Context, selector string, timeout time.Duration) (string, error)
	Scroll(ctx context.Context, offsetY int) error
	URL() string
	Close() error
}
