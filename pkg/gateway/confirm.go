package gateway

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/adminGCT4545/browserpilot/pkg/automation"
)

// Confirmer decides whether a previewed action may proceed. Returning
// (false, nil) cancels the action with no network call and no state change.
type Confirmer interface {
	Confirm(ctx context.Context, action automation.Action) (bool, error)
}

// AutoConfirmer approves or rejects every action unconditionally. Used when
// preview mode is off.
type AutoConfirmer struct {
	Approve bool
}

// Confirm returns the fixed decision.
func (c AutoConfirmer) Confirm(_ context.Context, _ automation.Action) (bool, error) {
	return c.Approve, nil
}

// PendingAction is one action awaiting a user decision.
type PendingAction struct {
	ID     string
	Action automation.Action
}

// PromptConfirmer presents pending actions through a presenter callback and
// blocks until the matching decision arrives or the timeout elapses. A
// timed-out or cancelled wait counts as a rejection.
type PromptConfirmer struct {
	timeout time.Duration
	present func(PendingAction)

	mu      sync.Mutex
	pending map[string]chan bool
}

// NewPromptConfirmer creates a confirmer that calls present for each action
// needing a decision. Decisions are delivered via Resolve.
func NewPromptConfirmer(timeout time.Duration, present func(PendingAction)) *PromptConfirmer {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &PromptConfirmer{
		timeout: timeout,
		present: present,
		pending: make(map[string]chan bool),
	}
}

// Confirm presents the action and waits for the user's decision.
func (c *PromptConfirmer) Confirm(ctx context.Context, action automation.Action) (bool, error) {
	id := uuid.New().String()
	decision := make(chan bool, 1)

	c.mu.Lock()
	c.pending[id] = decision
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	c.present(PendingAction{ID: id, Action: action})

	select {
	case approved := <-decision:
		return approved, nil
	case <-time.After(c.timeout):
		return false, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// Resolve delivers the user's decision for a pending action. Unknown ids
// are ignored; a decision is delivered at most once.
func (c *PromptConfirmer) Resolve(id string, approved bool) {
	c.mu.Lock()
	decision, ok := c.pending[id]
	c.mu.Unlock()

	if !ok {
		return
	}

	select {
	case decision <- approved:
	default:
	}
}
