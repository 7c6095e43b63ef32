package automation

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
)

// PlaywrightDriver is the production Driver backed by a headless Chromium
// instance managed through Playwright.
type PlaywrightDriver struct {
	mu       sync.Mutex
	pw       *playwright.Playwright
	browser  playwright.Browser
	context  playwright.BrowserContext
	headless bool
	started  bool
}

// NewPlaywrightDriver creates a driver that launches Chromium in the given
// mode. The browser process is not started until Start is called.
func NewPlaywrightDriver(headless bool) *PlaywrightDriver {
	return &PlaywrightDriver{headless: headless}
}

// Start installs (if needed) and boots the Playwright runtime.
func (d *PlaywrightDriver) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.started {
		return nil
	}

	// Discard driver output so it cannot interleave with our own logging.
	opts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}

	if err := playwright.Install(opts); err != nil {
		return fmt.Errorf("failed to install playwright: %w", err)
	}

	pw, err := playwright.Run(opts)
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}

	d.pw = pw
	d.started = true
	return nil
}

// NewPage launches the browser (first call only) and opens the single
// automated page with the requested viewport.
func (d *PlaywrightDriver) NewPage(viewport Viewport) (Page, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.started {
		return nil, fmt.Errorf("driver not started")
	}

	if d.browser == nil {
		browser, err := d.pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
			Headless: playwright.Bool(d.headless),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to launch browser: %w", err)
		}
		d.browser = browser
	}

	if viewport.Width <= 0 || viewport.Height <= 0 {
		viewport = Viewport{Width: DefaultViewportWidth, Height: DefaultViewportHeight}
	}

	ctx, err := d.browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  viewport.Width,
			Height: viewport.Height,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}

	page, err := ctx.NewPage()
	if err != nil {
		ctx.Close()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	d.context = ctx
	return &playwrightPage{page: page}, nil
}

// Stop closes the browser and stops the Playwright runtime.
func (d *PlaywrightDriver) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.context != nil {
		_ = d.context.Close()
		d.context = nil
	}
	if d.browser != nil {
		_ = d.browser.Close()
		d.browser = nil
	}
	if d.started && d.pw != nil {
		if err := d.pw.Stop(); err != nil {
			return fmt.Errorf("failed to stop playwright: %w", err)
		}
		d.started = false
	}
	return nil
}

// playwrightPage adapts a playwright.Page to the Page interface.
type playwrightPage struct {
	page playwright.Page
}

func (p *playwrightPage) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	waitUntil := playwright.WaitUntilStateDomcontentloaded
	_, err := p.page.Goto(url, playwright.PageGotoOptions{
		Timeout:   playwright.Float(float64(timeout.Milliseconds())),
		WaitUntil: waitUntil,
	})
	if err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	return nil
}

func (p *playwrightPage) URL() string {
	return p.page.URL()
}

func (p *playwrightPage) Title() (string, error) {
	return p.page.Title()
}

func (p *playwrightPage) ClickSelector(selector string, timeout time.Duration) error {
	err := p.page.Click(selector, playwright.PageClickOptions{
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	if err != nil {
		return fmt.Errorf("click failed: %w", err)
	}
	return nil
}

func (p *playwrightPage) ClickAt(x, y float64) error {
	if err := p.page.Mouse().Click(x, y); err != nil {
		return fmt.Errorf("coordinate click failed: %w", err)
	}
	return nil
}

func (p *playwrightPage) TypeText(text string, perCharDelay time.Duration) error {
	err := p.page.Keyboard().Type(text, playwright.KeyboardTypeOptions{
		Delay: playwright.Float(float64(perCharDelay.Milliseconds())),
	})
	if err != nil {
		return fmt.Errorf("type failed: %w", err)
	}
	return nil
}

func (p *playwrightPage) ScrollBy(dx, dy int) error {
	if err := p.page.Mouse().Wheel(float64(dx), float64(dy)); err != nil {
		return fmt.Errorf("scroll failed: %w", err)
	}
	return nil
}

func (p *playwrightPage) SetViewport(width, height int, deviceScaleFactor float64) error {
	// Playwright cannot change the device scale factor on a live page;
	// zoom is expressed purely through the effective viewport size.
	if err := p.page.SetViewportSize(width, height); err != nil {
		return fmt.Errorf("viewport resize failed: %w", err)
	}
	return nil
}

func (p *playwrightPage) Screenshot() ([]byte, error) {
	data, err := p.page.Screenshot(playwright.PageScreenshotOptions{
		Type: playwright.ScreenshotTypePng,
	})
	if err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}
	return data, nil
}

func (p *playwrightPage) Evaluate(script string, arg interface{}) (interface{}, error) {
	var (
		result interface{}
		err    error
	)
	if arg != nil {
		result, err = p.page.Evaluate(script, arg)
	} else {
		result, err = p.page.Evaluate(script)
	}
	if err != nil {
		return nil, fmt.Errorf("evaluate failed: %w", err)
	}
	return result, nil
}

func (p *playwrightPage) Close() error {
	return p.page.Close()
}
