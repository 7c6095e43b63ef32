package gateway

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adminGCT4545/browserpilot/pkg/automation"
)

// fakeTransport lets each test script the server's behavior.
type fakeTransport struct {
	do    func(req ActionRequest) (*automation.Result, error)
	calls []ActionRequest
}

func (t *fakeTransport) Do(_ context.Context, req ActionRequest) (*automation.Result, error) {
	t.calls = append(t.calls, req)
	if t.do != nil {
		return t.do(req)
	}
	return &automation.Result{Success: true, Message: "ok"}, nil
}

func TestGatewayLaunchCloseStateTransitions(t *testing.T) {
	transport := &fakeTransport{do: func(req ActionRequest) (*automation.Result, error) {
		if req.Action == "launch" {
			return &automation.Result{Success: true, SessionID: "sess-1"}, nil
		}
		return &automation.Result{Success: true}, nil
	}}
	gw := New(Config{Transport: transport})
	ctx := context.Background()

	assert.False(t, gw.Active())

	_, err := gw.ExecuteAction(ctx, automation.ActionLaunch, automation.Params{"url": "example.com"})
	require.NoError(t, err)
	assert.True(t, gw.Active())
	assert.Equal(t, "sess-1", gw.SessionID())

	_, err = gw.ExecuteAction(ctx, automation.ActionClose, nil)
	require.NoError(t, err)
	assert.False(t, gw.Active())
	assert.Empty(t, gw.SessionID())
}

func TestGatewaySessionIDPropagation(t *testing.T) {
	transport := &fakeTransport{do: func(req ActionRequest) (*automation.Result, error) {
		if req.Action == "launch" {
			return &automation.Result{Success: true, SessionID: "sess-9"}, nil
		}
		return &automation.Result{Success: true}, nil
	}}
	gw := New(Config{Transport: transport})
	ctx := context.Background()

	_, err := gw.ExecuteAction(ctx, automation.ActionLaunch, nil)
	require.NoError(t, err)
	_, err = gw.ExecuteAction(ctx, automation.ActionClick, automation.Params{"x": 1.0, "y": 2.0})
	require.NoError(t, err)

	require.Len(t, transport.calls, 2)
	assert.Empty(t, transport.calls[0].SessionID, "launch must not carry a sessionId")
	assert.Equal(t, "sess-9", transport.calls[1].SessionID)
}

func TestGatewaySimulationFallback(t *testing.T) {
	transport := &fakeTransport{do: func(_ ActionRequest) (*automation.Result, error) {
		return nil, &TransportError{Err: errors.New("connection refused")}
	}}
	gw := New(Config{Transport: transport})

	result, err := gw.ExecuteAction(context.Background(), automation.ActionLaunch, automation.Params{"url": "example.com"})

	require.NoError(t, err, "transport failure must not surface as an error")
	require.True(t, result.Success)
	assert.Contains(t, result.Message, "simulated")
	assert.NotEmpty(t, result.Screenshot, "simulated launch carries a placeholder screenshot")
	assert.Empty(t, result.SessionID, "simulation never claims a session id")
	assert.True(t, gw.Active(), "simulated launch toggles the local active flag")

	history := gw.History()
	require.Len(t, history, 1)
	assert.True(t, history[0].Simulated)
}

func TestGatewayNonTransportErrorPropagates(t *testing.T) {
	boom := errors.New("encode failure")
	transport := &fakeTransport{do: func(_ ActionRequest) (*automation.Result, error) {
		return nil, boom
	}}
	gw := New(Config{Transport: transport})

	_, err := gw.ExecuteAction(context.Background(), automation.ActionClick, automation.Params{"x": 1.0, "y": 1.0})

	assert.ErrorIs(t, err, boom)
}

func TestGatewayObserverExactlyOnceBeforeDispatch(t *testing.T) {
	var sequence []string
	transport := &fakeTransport{do: func(req ActionRequest) (*automation.Result, error) {
		sequence = append(sequence, "dispatch:"+req.Action)
		return &automation.Result{Success: true}, nil
	}}
	gw := New(Config{Transport: transport})

	gw.Subscribe(func(action automation.Action) {
		sequence = append(sequence, "observe:"+string(action.Type))
	})

	_, err := gw.ExecuteAction(context.Background(), automation.ActionClick, automation.Params{"x": 1.0, "y": 1.0})
	require.NoError(t, err)

	assert.Equal(t, []string{"observe:click", "dispatch:click"}, sequence)
}

func TestGatewayObserverNotifiedOnSimulatedDispatch(t *testing.T) {
	transport := &fakeTransport{do: func(_ ActionRequest) (*automation.Result, error) {
		return nil, &TransportError{Err: errors.New("down")}
	}}
	gw := New(Config{Transport: transport})

	count := 0
	gw.Subscribe(func(automation.Action) { count++ })

	_, err := gw.ExecuteAction(context.Background(), automation.ActionClick, automation.Params{"x": 1.0, "y": 1.0})
	require.NoError(t, err)

	assert.Equal(t, 1, count)
}

func TestGatewayUnsubscribe(t *testing.T) {
	gw := New(Config{Transport: &fakeTransport{}})

	count := 0
	id := gw.Subscribe(func(automation.Action) { count++ })

	_, _ = gw.ExecuteAction(context.Background(), automation.ActionScreenshot, nil)
	gw.Unsubscribe(id)
	_, _ = gw.ExecuteAction(context.Background(), automation.ActionScreenshot, nil)

	assert.Equal(t, 1, count)
}

func TestGatewayObserverPanicDoesNotAffectOutcome(t *testing.T) {
	gw := New(Config{Transport: &fakeTransport{}})
	gw.Subscribe(func(automation.Action) { panic("observer bug") })

	result, err := gw.ExecuteAction(context.Background(), automation.ActionScreenshot, nil)

	require.NoError(t, err)
	assert.True(t, result.Success)
}

func TestGatewayPreviewCancel(t *testing.T) {
	transport := &fakeTransport{}
	gw := New(Config{Transport: transport, Confirmer: AutoConfirmer{Approve: false}})

	observed := 0
	gw.Subscribe(func(automation.Action) { observed++ })

	_, err := gw.ExecuteAction(context.Background(), automation.ActionClick, automation.Params{"x": 1.0, "y": 1.0})

	assert.ErrorIs(t, err, ErrUserCancelled)
	assert.Empty(t, transport.calls, "cancel must short-circuit with no network call")
	assert.Zero(t, observed, "cancelled actions are never dispatched")
	assert.Empty(t, gw.History())
}

func TestGatewayPreviewSkipList(t *testing.T) {
	// A rejecting confirmer must not block the skip-listed kinds.
	for _, kind := range []automation.ActionKind{automation.ActionScreenshot, automation.ActionLaunch, automation.ActionClose} {
		t.Run(string(kind), func(t *testing.T) {
			transport := &fakeTransport{}
			gw := New(Config{Transport: transport, Confirmer: AutoConfirmer{Approve: false}})

			_, err := gw.ExecuteAction(context.Background(), kind, nil)

			require.NoError(t, err)
			assert.Len(t, transport.calls, 1)
		})
	}
}

func TestGatewayUnknownKindRejected(t *testing.T) {
	gw := New(Config{Transport: &fakeTransport{}})

	_, err := gw.ExecuteAction(context.Background(), automation.ActionKind("fly"), nil)

	assert.Error(t, err)
}

func TestGatewayHistoryBoundedMostRecentFirst(t *testing.T) {
	n := 0
	transport := &fakeTransport{do: func(req ActionRequest) (*automation.Result, error) {
		n++
		return &automation.Result{Success: n%2 == 0, Message: fmt.Sprintf("call %d", n)}, nil
	}}
	gw := New(Config{Transport: transport, HistoryLimit: 3})

	for i := 0; i < 5; i++ {
		_, err := gw.ExecuteAction(context.Background(), automation.ActionScreenshot, nil)
		require.NoError(t, err)
	}

	history := gw.History()
	require.Len(t, history, 3)
	assert.Equal(t, "call 5", history[0].Message)
	assert.Equal(t, "call 3", history[2].Message)
	assert.False(t, history[0].Success, "failed actions still get a history entry")
}

func TestPromptConfirmerResolve(t *testing.T) {
	var pending PendingAction
	confirmer := NewPromptConfirmer(time.Second, func(p PendingAction) {
		pending = p
	})

	done := make(chan bool, 1)
	go func() {
		approved, err := confirmer.Confirm(context.Background(), automation.Action{Type: automation.ActionClick})
		assert.NoError(t, err)
		done <- approved
	}()

	// Wait for the presenter to run.
	require.Eventually(t, func() bool { return pending.ID != "" }, time.Second, 5*time.Millisecond)

	confirmer.Resolve(pending.ID, true)
	assert.True(t, <-done)
}

func TestPromptConfirmerTimeoutRejects(t *testing.T) {
	confirmer := NewPromptConfirmer(20*time.Millisecond, func(PendingAction) {})

	approved, err := confirmer.Confirm(context.Background(), automation.Action{Type: automation.ActionClick})

	require.NoError(t, err)
	assert.False(t, approved)
}

func TestIsNoActiveSession(t *testing.T) {
	assert.True(t, IsNoActiveSession(&automation.Result{Success: false, Message: "no active session"}))
	assert.False(t, IsNoActiveSession(&automation.Result{Success: true, Message: "no active session"}))
	assert.False(t, IsNoActiveSession(&automation.Result{Success: false, Message: "element not found"}))
	assert.False(t, IsNoActiveSession(nil))
}

func TestInFlightSpansDispatch(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	transport := &fakeTransport{do: func(ActionRequest) (*automation.Result, error) {
		close(entered)
		<-release
		return &automation.Result{Success: true}, nil
	}}
	gw := New(Config{Transport: transport})

	assert.False(t, gw.InFlight())

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := gw.ExecuteAction(context.Background(), automation.ActionScreenshot, nil)
		assert.NoError(t, err)
	}()

	<-entered
	assert.True(t, gw.InFlight(), "in flight while the transport call is pending")

	close(release)
	<-done
	assert.False(t, gw.InFlight(), "cleared once the result is in")
}
