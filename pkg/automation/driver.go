package automation

import (
	"context"
	"time"
)

// Driver abstracts the browser runtime so the engine can be exercised
// without a real browser. The production implementation is backed by
// Playwright; tests supply fakes.
type Driver interface {
	// Start initializes the underlying browser runtime. Called lazily on
	// the first launch; safe to call more than once.
	Start() error

	// NewPage creates the single automated page with the given viewport.
	NewPage(viewport Viewport) (Page, error)

	// Stop tears down the browser runtime and all of its resources.
	Stop() error
}

// Page is the engine's view of the one live automated page.
type Page interface {
	// Navigate loads url, waiting up to timeout for the navigation to
	// settle.
	Navigate(ctx context.Context, url string, timeout time.Duration) error

	// URL returns the page's current address.
	URL() string

	// Title returns the current document title.
	Title() (string, error)

	// ClickSelector clicks the first element matching selector, waiting up
	// to timeout for it to appear.
	ClickSelector(selector string, timeout time.Duration) error

	// ClickAt dispatches a click at page coordinates.
	ClickAt(x, y float64) error

	// TypeText sends keystrokes to the currently focused element with
	// per-character pacing.
	TypeText(text string, perCharDelay time.Duration) error

	// ScrollBy offsets the viewport scroll position.
	ScrollBy(dx, dy int) error

	// SetViewport resizes the page viewport.
	SetViewport(width, height int, deviceScaleFactor float64) error

	// Screenshot captures the current viewport as a PNG.
	Screenshot() ([]byte, error)

	// Evaluate runs script in the page and returns its decoded result.
	// arg, when non-nil, is passed to the script as its single argument.
	Evaluate(script string, arg interface{}) (interface{}, error)

	// Close closes the page. Closing an already closed page is an error
	// the caller may ignore.
	Close() error
}
