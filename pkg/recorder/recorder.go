// Package recorder captures sequences of dispatched browser actions and
// replays them with their original timing through the gateway.
package recorder

import (
	"fmt"
	"sync"
	"time"

	"github.com/adminGCT4545/browserpilot/pkg/automation"
	"github.com/adminGCT4545/browserpilot/pkg/logging"
)

// Hook is the gateway-side subscription surface the recorder listens on.
type Hook interface {
	Subscribe(fn func(automation.Action)) int
	Unsubscribe(id int)
}

// Recorder captures dispatched actions into an ordered buffer. Recording
// and playback are mutually exclusive: starting one while the other is
// active fails, mirroring the UI's disabled opposing control.
type Recorder struct {
	hook Hook
	log  *logging.Logger

	// now is the capture clock, injectable for tests.
	now func() time.Time

	mu          sync.Mutex
	recording   bool
	playing     bool
	subID       int
	buffer      []automation.RecordedAction
	lastCapture time.Time
}

// New creates a recorder wired to the given action hook.
func New(hook Hook, logger *logging.Logger) *Recorder {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Recorder{
		hook: hook,
		log:  logger,
		now:  time.Now,
	}
}

// StartRecording clears the buffer and begins capturing dispatched actions.
func (r *Recorder) StartRecording() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.playing {
		return fmt.Errorf("cannot record while playback is active")
	}
	if r.recording {
		return fmt.Errorf("already recording")
	}

	r.buffer = nil
	r.lastCapture = time.Time{}
	r.recording = true
	r.subID = r.hook.Subscribe(r.capture)
	r.log.Infof("recording started")
	return nil
}

// StopRecording unsubscribes from the action hook. The buffer becomes
// replayable if non-empty. Stopping when not recording is a no-op.
func (r *Recorder) StopRecording() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.recording {
		return
	}

	r.hook.Unsubscribe(r.subID)
	r.recording = false
	r.log.Infof("recording stopped with %d actions", len(r.buffer))
}

// capture appends one hooked action to the buffer. Screenshot and close
// actions are excluded; they are not meaningfully replayable.
func (r *Recorder) capture(action automation.Action) {
	if action.Type == automation.ActionScreenshot || action.Type == automation.ActionClose {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.recording {
		return
	}

	now := r.now()
	var delay time.Duration
	if !r.lastCapture.IsZero() {
		delay = now.Sub(r.lastCapture)
	}
	r.lastCapture = now

	r.buffer = append(r.buffer, automation.RecordedAction{
		Type:      action.Type,
		Params:    action.Params,
		Timestamp: now,
		Delay:     delay,
	})
}

// Recording reports whether capture is active.
func (r *Recorder) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recording
}

// Playing reports whether a replay is in progress.
func (r *Recorder) Playing() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.playing
}

// Buffer returns a copy of the captured actions.
func (r *Recorder) Buffer() []automation.RecordedAction {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]automation.RecordedAction, len(r.buffer))
	copy(out, r.buffer)
	return out
}

// Remove deletes one buffered action by index. With an empty buffer the
// playback and save controls are expected to be disabled by the caller.
func (r *Recorder) Remove(index int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if index < 0 || index >= len(r.buffer) {
		return fmt.Errorf("action index %d out of range", index)
	}

	r.buffer = append(r.buffer[:index], r.buffer[index+1:]...)
	return nil
}

// CanReplay reports whether the buffer holds anything worth replaying.
func (r *Recorder) CanReplay() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.recording && len(r.buffer) > 0
}

// Save persists the current buffer to the store under the given name.
func (r *Recorder) Save(store *Store, name string) (*automation.Sequence, error) {
	r.mu.Lock()
	actions := make([]automation.RecordedAction, len(r.buffer))
	copy(actions, r.buffer)
	r.mu.Unlock()

	if len(actions) == 0 {
		return nil, fmt.Errorf("nothing recorded to save")
	}

	return store.Save(name, actions)
}

// beginPlayback transitions to the Playing state, enforcing mutual
// exclusion with recording.
func (r *Recorder) beginPlayback() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.recording {
		return fmt.Errorf("cannot play while recording is active")
	}
	if r.playing {
		return fmt.Errorf("playback already in progress")
	}
	r.playing = true
	return nil
}

func (r *Recorder) endPlayback() {
	r.mu.Lock()
	r.playing = false
	r.mu.Unlock()
}
