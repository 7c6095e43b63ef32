// Package gateway is the client-side dispatcher for browser automation
// actions. It is the only component UI code talks to, layering preview
// confirmation, structured logging, action observers, and an offline
// simulation fallback on top of the raw transport.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/adminGCT4545/browserpilot/pkg/automation"
	"github.com/adminGCT4545/browserpilot/pkg/logging"
)

// previewSkip lists the kinds dispatched without preview confirmation even
// when a confirmer is installed.
var previewSkip = map[automation.ActionKind]bool{
	automation.ActionScreenshot: true,
	automation.ActionLaunch:     true,
	automation.ActionClose:      true,
}

// Gateway mediates between UI code and the automation daemon.
//
// Session metadata here is a cached copy; the daemon owns the source of
// truth. The copy is only updated from observed launch/close results, never
// polled, so it is eventually consistent.
type Gateway struct {
	transport Transport
	fallback  *SimulatedTransport
	confirmer Confirmer
	log       *logging.Logger

	mu           sync.Mutex
	observers    map[int]func(automation.Action)
	nextObserver int
	sessionID    string
	active       bool
	inFlight     bool
	history      *history
}

// Config configures a Gateway.
type Config struct {
	// Transport delivers real action requests. Required.
	Transport Transport

	// Confirmer, when set, previews actions before dispatch.
	Confirmer Confirmer

	// HistoryLimit caps the action history log.
	HistoryLimit int

	// Logger receives structured gateway logs.
	Logger *logging.Logger
}

// New creates a gateway around the given transport.
func New(cfg Config) *Gateway {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Gateway{
		transport: cfg.Transport,
		fallback:  NewSimulatedTransport(),
		confirmer: cfg.Confirmer,
		log:       logger,
		observers: make(map[int]func(automation.Action)),
		history:   newHistory(cfg.HistoryLimit),
	}
}

// Subscribe registers an observer notified of every dispatched action,
// real or simulated, exactly once each, before the transport branch runs.
// The returned id unsubscribes.
func (g *Gateway) Subscribe(fn func(automation.Action)) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := g.nextObserver
	g.nextObserver++
	g.observers[id] = fn
	return id
}

// Unsubscribe removes a previously registered observer.
func (g *Gateway) Unsubscribe(id int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.observers, id)
}

// Active reports the cached session state.
func (g *Gateway) Active() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.active
}

// SessionID returns the cached session identifier, or "" when inactive.
func (g *Gateway) SessionID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.sessionID
}

// InFlight reports whether a dispatch is currently awaiting its result.
// UI code disables action controls while this is true to prevent re-entrant
// double-dispatch.
func (g *Gateway) InFlight() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.inFlight
}

// History returns the bounded action log, most recent first.
func (g *Gateway) History() []LogEntry {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.history.snapshot()
}

// ExecuteAction dispatches one action. The only errors returned are
// ErrUserCancelled (preview declined), confirmation failures, and unknown
// action kinds; transport failures are absorbed by the simulation fallback
// and server-side rejections come back as {success:false} results.
func (g *Gateway) ExecuteAction(ctx context.Context, kind automation.ActionKind, params automation.Params) (*automation.Result, error) {
	if !automation.IsKnownKind(kind) {
		return nil, fmt.Errorf("unknown action kind: %s", kind)
	}

	action := automation.Action{Type: kind, Params: params}

	// Preview step: cancel short-circuits with no network call and no
	// state change.
	if g.confirmer != nil && !previewSkip[kind] {
		approved, err := g.confirmer.Confirm(ctx, action)
		if err != nil {
			return nil, fmt.Errorf("confirmation failed: %w", err)
		}
		if !approved {
			g.log.Infof("action %s cancelled by user", kind)
			return nil, ErrUserCancelled
		}
	}

	g.notifyObservers(action)

	g.setInFlight(true)
	defer g.setInFlight(false)

	req := ActionRequest{
		Action:    string(kind),
		Params:    params,
		SessionID: g.requestSessionID(kind),
	}

	result, err := g.transport.Do(ctx, req)
	simulated := false
	if err != nil {
		var te *TransportError
		if !errors.As(err, &te) {
			return nil, err
		}
		g.log.Warnf("transport failure, falling back to simulation: %v", err)
		result, _ = g.fallback.Do(ctx, req)
		simulated = true
	}

	g.applyResult(kind, result, simulated)
	return result, nil
}

// requestSessionID returns the sessionId to attach; launch requests carry
// none.
func (g *Gateway) requestSessionID(kind automation.ActionKind) string {
	if kind == automation.ActionLaunch {
		return ""
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.sessionID
}

// notifyObservers reports the action to every subscriber exactly once.
// Observer panics or failures must not affect the action outcome.
func (g *Gateway) notifyObservers(action automation.Action) {
	g.mu.Lock()
	fns := make([]func(automation.Action), 0, len(g.observers))
	for _, fn := range g.observers {
		fns = append(fns, fn)
	}
	g.mu.Unlock()

	for _, fn := range fns {
		func() {
			defer func() {
				if r := recover(); r != nil {
					g.log.Errorf("action observer panicked: %v", r)
				}
			}()
			fn(action)
		}()
	}
}

func (g *Gateway) setInFlight(v bool) {
	g.mu.Lock()
	g.inFlight = v
	g.mu.Unlock()
}

// applyResult updates cached session state from launch/close outcomes and
// appends the history entry. Logging failures never affect the action.
func (g *Gateway) applyResult(kind automation.ActionKind, result *automation.Result, simulated bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if result.Success {
		switch kind {
		case automation.ActionLaunch:
			g.active = true
			// A simulated launch toggles the active flag only; it never
			// claims a real session identity.
			g.sessionID = result.SessionID
		case automation.ActionClose:
			g.active = false
			g.sessionID = ""
		}
	}

	g.history.add(LogEntry{
		Time:      time.Now(),
		Kind:      kind,
		Success:   result.Success,
		Message:   result.Message,
		Simulated: simulated,
	})
}
