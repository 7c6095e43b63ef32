package automation

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/adminGCT4545/browserpilot/pkg/logging"
)

// Options tunes engine behavior. Zero values fall back to the defaults
// below.
type Options struct {
	// LaunchTimeout bounds launch navigation.
	LaunchTimeout time.Duration

	// SelectorTimeout bounds the wait for a click selector to appear.
	SelectorTimeout time.Duration

	// TypeDelay is the per-character pacing for typed text.
	TypeDelay time.Duration

	// SettleDelay is the short wait after mutating actions, letting the
	// page react before the result screenshot is taken. Kept small; this
	// is a capped fallback, not a readiness guarantee.
	SettleDelay time.Duration

	// DefaultScrollAmount is the scroll offset in pixels when the request
	// does not specify one.
	DefaultScrollAmount int

	// Viewport is the initial page viewport.
	Viewport Viewport
}

const (
	defaultLaunchTimeout   = 30 * time.Second
	defaultSelectorTimeout = 5 * time.Second
	defaultTypeDelay       = 50 * time.Millisecond
	defaultSettleDelay     = 300 * time.Millisecond
	defaultScrollAmount    = 300
)

func (o Options) withDefaults() Options {
	if o.LaunchTimeout <= 0 {
		o.LaunchTimeout = defaultLaunchTimeout
	}
	if o.SelectorTimeout <= 0 {
		o.SelectorTimeout = defaultSelectorTimeout
	}
	if o.TypeDelay <= 0 {
		o.TypeDelay = defaultTypeDelay
	}
	if o.SettleDelay <= 0 {
		o.SettleDelay = defaultSettleDelay
	}
	if o.DefaultScrollAmount <= 0 {
		o.DefaultScrollAmount = defaultScrollAmount
	}
	if o.Viewport.Width <= 0 || o.Viewport.Height <= 0 {
		o.Viewport = Viewport{Width: DefaultViewportWidth, Height: DefaultViewportHeight}
	}
	return o
}

// Engine is the single authoritative holder of the live automated page. It
// executes one action per call to completion before returning; concurrent
// callers are linearized on an internal mutex so dispatches never interleave
// at the page level.
type Engine struct {
	driver Driver
	opts   Options
	log    *logging.Logger

	// mu serializes all page access. Everything below it is guarded.
	mu      sync.Mutex
	page    Page
	session *Session
}

// NewEngine creates an engine around the given driver. The browser is not
// started until the first launch action.
func NewEngine(driver Driver, opts Options, logger *logging.Logger) *Engine {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Engine{
		driver: driver,
		opts:   opts.withDefaults(),
		log:    logger,
	}
}

// Active reports whether a launched session currently exists.
func (e *Engine) Active() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session != nil
}

// Info returns a snapshot of the current session.
func (e *Engine) Info() SessionInfo {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.Info()
}

// Execute runs one action to completion and returns its result. Execute
// never panics and never returns an error: every failure, including a
// panicking driver, becomes {success:false, message}, leaving the engine
// able to serve the next request.
func (e *Engine) Execute(ctx context.Context, action Action) (res *Result) {
	e.mu.Lock()
	defer e.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			e.log.Errorf("action %s panicked: %v", action.Type, r)
			res = &Result{Success: false, Message: fmt.Sprintf("internal error: %v", r)}
		}
	}()

	e.log.Debugf("executing action %s", action.Type)

	switch action.Type {
	case ActionLaunch:
		res = e.launch(ctx, action.Params)
	case ActionClick:
		res = e.click(action.Params)
	case ActionType:
		res = e.typeText(action.Params)
	case ActionScroll:
		res = e.scroll(action.Params)
	case ActionScreenshot:
		res = e.screenshot()
	case ActionSetViewport:
		res = e.setViewport(action.Params)
	case ActionDetectForms:
		res = e.detectForms()
	case ActionFillForm:
		res = e.fillForm(action.Params)
	case ActionDetectElements:
		res = e.detectElements()
	case ActionClose:
		res = e.close()
	default:
		res = &Result{Success: false, Message: fmt.Sprintf("unknown action: %s", action.Type)}
	}

	if !res.Success {
		e.log.Warnf("action %s failed: %s", action.Type, res.Message)
	}
	return res
}

// Shutdown closes the page and stops the browser runtime.
func (e *Engine) Shutdown() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.page != nil {
		_ = e.page.Close()
		e.page = nil
	}
	e.session = nil

	if err := e.driver.Stop(); err != nil {
		e.log.Errorf("driver shutdown: %v", err)
	}
}

// requirePage returns a no-active-session failure when no launched page
// exists, nil otherwise.
func (e *Engine) requirePage() *Result {
	if e.page == nil || e.session == nil {
		return &Result{Success: false, Message: "no active session"}
	}
	return nil
}

func (e *Engine) launch(ctx context.Context, params Params) *Result {
	url := EnsureValidURL(stringParam(params, "url"))

	if e.page == nil {
		if err := e.driver.Start(); err != nil {
			return &Result{Success: false, Message: fmt.Sprintf("browser start failed: %v", err)}
		}
		page, err := e.driver.NewPage(e.opts.Viewport)
		if err != nil {
			return &Result{Success: false, Message: fmt.Sprintf("page creation failed: %v", err)}
		}
		e.page = page
	}

	if err := e.page.Navigate(ctx, url, e.opts.LaunchTimeout); err != nil {
		// The page stays around for a retry, but the session is not
		// activated on a failed navigation.
		return &Result{Success: false, Message: err.Error()}
	}

	title, err := e.page.Title()
	if err != nil {
		title = ""
	}

	now := time.Now()
	e.session = &Session{
		SessionID:  uuid.New().String(),
		CurrentURL: e.page.URL(),
		Title:      title,
		CreatedAt:  now,
		LastUsedAt: now,
	}

	e.log.Infof("session %s launched at %s", e.session.SessionID, e.session.CurrentURL)

	return &Result{
		Success:    true,
		Message:    fmt.Sprintf("navigated to %s", e.session.CurrentURL),
		SessionID:  e.session.SessionID,
		URL:        e.session.CurrentURL,
		Title:      title,
		Screenshot: e.captureScreenshot(),
	}
}

func (e *Engine) click(params Params) *Result {
	if fail := e.requirePage(); fail != nil {
		return fail
	}
	e.session.touch()

	selector := stringParam(params, "selector")
	if selector != "" {
		if err := e.page.ClickSelector(selector, e.opts.SelectorTimeout); err != nil {
			return &Result{Success: false, Message: err.Error()}
		}
	} else {
		x, okX := floatParam(params, "x")
		y, okY := floatParam(params, "y")
		if !okX || !okY {
			return &Result{Success: false, Message: "click requires a selector or x,y coordinates"}
		}
		if err := e.page.ClickAt(x, y); err != nil {
			return &Result{Success: false, Message: err.Error()}
		}
	}

	e.settle()
	e.refreshLocation()

	return &Result{
		Success:    true,
		Message:    "click executed",
		URL:        e.session.CurrentURL,
		Title:      e.session.Title,
		Screenshot: e.captureScreenshot(),
	}
}

func (e *Engine) typeText(params Params) *Result {
	if fail := e.requirePage(); fail != nil {
		return fail
	}
	e.session.touch()

	text := stringParam(params, "text")
	if text == "" {
		return &Result{Success: false, Message: "type requires text"}
	}

	if err := e.page.TypeText(text, e.opts.TypeDelay); err != nil {
		return &Result{Success: false, Message: err.Error()}
	}

	return &Result{
		Success:    true,
		Message:    fmt.Sprintf("typed %d characters", len(text)),
		Screenshot: e.captureScreenshot(),
	}
}

func (e *Engine) scroll(params Params) *Result {
	if fail := e.requirePage(); fail != nil {
		return fail
	}
	e.session.touch()

	direction := stringParam(params, "direction")
	if direction == "" {
		direction = "down"
	}
	if direction != "up" && direction != "down" {
		return &Result{Success: false, Message: fmt.Sprintf("invalid scroll direction: %s", direction)}
	}

	amount := intParam(params, "amount", e.opts.DefaultScrollAmount)
	dy := amount
	if direction == "up" {
		dy = -amount
	}

	if err := e.page.ScrollBy(0, dy); err != nil {
		return &Result{Success: false, Message: err.Error()}
	}

	return &Result{
		Success:    true,
		Message:    fmt.Sprintf("scrolled %s by %dpx", direction, amount),
		Screenshot: e.captureScreenshot(),
	}
}

func (e *Engine) screenshot() *Result {
	if fail := e.requirePage(); fail != nil {
		return fail
	}
	e.session.touch()

	data, err := e.page.Screenshot()
	if err != nil {
		return &Result{Success: false, Message: err.Error()}
	}

	return &Result{
		Success:    true,
		Message:    "screenshot captured",
		Screenshot: base64.StdEncoding.EncodeToString(data),
	}
}

func (e *Engine) setViewport(params Params) *Result {
	if fail := e.requirePage(); fail != nil {
		return fail
	}
	e.session.touch()

	width := intParam(params, "width", e.opts.Viewport.Width)
	height := intParam(params, "height", e.opts.Viewport.Height)
	scale, ok := floatParam(params, "deviceScaleFactor")
	if !ok {
		scale = 1.0
	}
	if width <= 0 || height <= 0 {
		return &Result{Success: false, Message: "viewport dimensions must be positive"}
	}

	if err := e.page.SetViewport(width, height, scale); err != nil {
		return &Result{Success: false, Message: err.Error()}
	}

	e.settle()

	return &Result{
		Success:    true,
		Message:    fmt.Sprintf("viewport set to %dx%d", width, height),
		Screenshot: e.captureScreenshot(),
	}
}

func (e *Engine) detectForms() *Result {
	if fail := e.requirePage(); fail != nil {
		return fail
	}
	e.session.touch()

	value, err := e.page.Evaluate(detectFormsScript, nil)
	if err != nil {
		return &Result{Success: false, Message: err.Error()}
	}

	var fields []FormField
	if err := decodeEvaluated(value, &fields); err != nil {
		return &Result{Success: false, Message: err.Error()}
	}

	return &Result{
		Success: true,
		Message: fmt.Sprintf("detected %d form fields", len(fields)),
		Data:    fields,
	}
}

func (e *Engine) fillForm(params Params) *Result {
	if fail := e.requirePage(); fail != nil {
		return fail
	}
	e.session.touch()

	fieldID := stringParam(params, "fieldId")
	if fieldID == "" {
		return &Result{Success: false, Message: "fillForm requires fieldId"}
	}
	value := stringParam(params, "value")

	result, err := e.page.Evaluate(fillFormScript, map[string]interface{}{
		"fieldId": fieldID,
		"value":   value,
	})
	if err != nil {
		return &Result{Success: false, Message: err.Error()}
	}

	filled, _ := result.(bool)
	if !filled {
		return &Result{Success: false, Message: fmt.Sprintf("no field matching %q", fieldID)}
	}

	return &Result{
		Success:    true,
		Message:    fmt.Sprintf("filled field %q", fieldID),
		Screenshot: e.captureScreenshot(),
	}
}

func (e *Engine) detectElements() *Result {
	if fail := e.requirePage(); fail != nil {
		return fail
	}
	e.session.touch()

	value, err := e.page.Evaluate(detectElementsScript, nil)
	if err != nil {
		return &Result{Success: false, Message: err.Error()}
	}

	var elements []PageElement
	if err := decodeEvaluated(value, &elements); err != nil {
		return &Result{Success: false, Message: err.Error()}
	}

	return &Result{
		Success: true,
		Message: fmt.Sprintf("detected %d interactive elements", len(elements)),
		Data:    elements,
	}
}

// close tears down the page and clears the session. Always succeeds, even
// when no session exists.
func (e *Engine) close() *Result {
	if e.page != nil {
		_ = e.page.Close()
		e.page = nil
	}
	if e.session != nil {
		e.log.Infof("session %s closed", e.session.SessionID)
		e.session = nil
	}

	return &Result{Success: true, Message: "session closed"}
}

// settle gives the page a short window to react to a mutation before the
// result screenshot is taken.
func (e *Engine) settle() {
	time.Sleep(e.opts.SettleDelay)
}

// refreshLocation re-reads the page URL and title after an action that may
// have navigated.
func (e *Engine) refreshLocation() {
	e.session.CurrentURL = e.page.URL()
	if title, err := e.page.Title(); err == nil {
		e.session.Title = title
	}
}

// captureScreenshot returns the current page as base64 PNG, or "" when the
// capture fails. Screenshot failures never fail the enclosing action.
func (e *Engine) captureScreenshot() string {
	data, err := e.page.Screenshot()
	if err != nil {
		e.log.Warnf("screenshot capture: %v", err)
		return ""
	}
	return base64.StdEncoding.EncodeToString(data)
}

// Param extraction helpers. Params arrive as decoded JSON, so numeric
// values are float64.

func stringParam(params Params, key string) string {
	if params == nil {
		return ""
	}
	if v, ok := params[key].(string); ok {
		return v
	}
	return ""
}

func floatParam(params Params, key string) (float64, bool) {
	if params == nil {
		return 0, false
	}
	switch v := params[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

func intParam(params Params, key string, fallback int) int {
	if v, ok := floatParam(params, key); ok {
		return int(v)
	}
	return fallback
}
