package recorder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adminGCT4545/browserpilot/pkg/automation"
)

// fakeHook captures the recorder's subscription so tests can emit actions.
type fakeHook struct {
	fn           func(automation.Action)
	unsubscribed bool
}

func (h *fakeHook) Subscribe(fn func(automation.Action)) int {
	h.fn = fn
	return 7
}

func (h *fakeHook) Unsubscribe(id int) {
	if id == 7 {
		h.unsubscribed = true
		h.fn = nil
	}
}

func (h *fakeHook) emit(kind automation.ActionKind, params automation.Params) {
	if h.fn != nil {
		h.fn(automation.Action{Type: kind, Params: params})
	}
}

// steppingClock advances one second per reading.
func steppingClock(start time.Time) func() time.Time {
	t := start
	return func() time.Time {
		current := t
		t = t.Add(time.Second)
		return current
	}
}

func TestRecorderCaptureInvariants(t *testing.T) {
	hook := &fakeHook{}
	rec := New(hook, nil)
	rec.now = steppingClock(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))

	require.NoError(t, rec.StartRecording())

	hook.emit(automation.ActionLaunch, automation.Params{"url": "example.com"})
	hook.emit(automation.ActionClick, automation.Params{"x": 1.0, "y": 2.0})
	hook.emit(automation.ActionType, automation.Params{"text": "hello"})
	hook.emit(automation.ActionScroll, automation.Params{"direction": "down"})

	rec.StopRecording()
	assert.True(t, hook.unsubscribed)

	buffer := rec.Buffer()
	require.Len(t, buffer, 4)

	assert.Equal(t, time.Duration(0), buffer[0].Delay, "first action has zero delay")
	for i := 1; i < len(buffer); i++ {
		assert.Equal(t, buffer[i].Timestamp.Sub(buffer[i-1].Timestamp), buffer[i].Delay)
	}

	kinds := []automation.ActionKind{automation.ActionLaunch, automation.ActionClick, automation.ActionType, automation.ActionScroll}
	for i, kind := range kinds {
		assert.Equal(t, kind, buffer[i].Type)
	}
}

func TestRecorderExcludesScreenshotAndClose(t *testing.T) {
	hook := &fakeHook{}
	rec := New(hook, nil)

	require.NoError(t, rec.StartRecording())

	hook.emit(automation.ActionLaunch, nil)
	hook.emit(automation.ActionScreenshot, nil)
	hook.emit(automation.ActionClick, nil)
	hook.emit(automation.ActionClose, nil)

	rec.StopRecording()

	buffer := rec.Buffer()
	require.Len(t, buffer, 2)
	assert.Equal(t, automation.ActionLaunch, buffer[0].Type)
	assert.Equal(t, automation.ActionClick, buffer[1].Type)
}

func TestRecorderStartClearsBuffer(t *testing.T) {
	hook := &fakeHook{}
	rec := New(hook, nil)

	require.NoError(t, rec.StartRecording())
	hook.emit(automation.ActionClick, nil)
	rec.StopRecording()
	require.Len(t, rec.Buffer(), 1)

	require.NoError(t, rec.StartRecording())
	rec.StopRecording()
	assert.Empty(t, rec.Buffer())
}

func TestRecorderIgnoresActionsAfterStop(t *testing.T) {
	hook := &fakeHook{}
	rec := New(hook, nil)

	require.NoError(t, rec.StartRecording())
	hook.emit(automation.ActionClick, nil)

	// Emit through a stale captured fn after stop; the recorder must drop it.
	captured := hook.fn
	rec.StopRecording()
	captured(automation.Action{Type: automation.ActionType, Params: automation.Params{"text": "late"}})

	assert.Len(t, rec.Buffer(), 1)
}

func TestRecorderRemove(t *testing.T) {
	hook := &fakeHook{}
	rec := New(hook, nil)

	require.NoError(t, rec.StartRecording())
	hook.emit(automation.ActionLaunch, nil)
	hook.emit(automation.ActionClick, nil)
	hook.emit(automation.ActionType, automation.Params{"text": "x"})
	rec.StopRecording()

	require.NoError(t, rec.Remove(1))
	buffer := rec.Buffer()
	require.Len(t, buffer, 2)
	assert.Equal(t, automation.ActionLaunch, buffer[0].Type)
	assert.Equal(t, automation.ActionType, buffer[1].Type)

	assert.Error(t, rec.Remove(5))
	assert.Error(t, rec.Remove(-1))
}

func TestRecorderDoubleStart(t *testing.T) {
	rec := New(&fakeHook{}, nil)

	require.NoError(t, rec.StartRecording())
	assert.Error(t, rec.StartRecording())
}

func TestRecorderSaveRequiresContent(t *testing.T) {
	rec := New(&fakeHook{}, nil)
	store := newTestStore(t)

	_, err := rec.Save(store, "empty")
	assert.Error(t, err)
}
