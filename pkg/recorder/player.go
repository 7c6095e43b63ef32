package recorder

import (
	"context"
	"fmt"
	"time"

	"github.com/adminGCT4545/browserpilot/pkg/automation"
)

// Executor replays actions. Satisfied by *gateway.Gateway.
type Executor interface {
	ExecuteAction(ctx context.Context, kind automation.ActionKind, params automation.Params) (*automation.Result, error)
}

// Player replays recorded action sequences strictly in order, each action
// fully awaited before the next begins. Timing only affects wait durations,
// never call order.
type Player struct {
	exec Executor

	// pause is the fixed wait after each replayed action; delayCap bounds
	// the honored recorded gap. Both are tunable, not timing contracts.
	pause    time.Duration
	delayCap time.Duration

	// sleep is injectable for tests.
	sleep func(ctx context.Context, d time.Duration) error
}

const (
	defaultPause    = 500 * time.Millisecond
	defaultDelayCap = 3 * time.Second
)

// NewPlayer creates a player dispatching through exec. Non-positive pause
// or delayCap fall back to the defaults.
func NewPlayer(exec Executor, pause, delayCap time.Duration) *Player {
	if pause <= 0 {
		pause = defaultPause
	}
	if delayCap <= 0 {
		delayCap = defaultDelayCap
	}
	return &Player{
		exec:     exec,
		pause:    pause,
		delayCap: delayCap,
		sleep:    sleepCtx,
	}
}

// Play replays actions in order. A single failure aborts the remainder and
// reports the error; already-executed actions are not rolled back.
func (p *Player) Play(ctx context.Context, actions []automation.RecordedAction) error {
	for i, action := range actions {
		delay := action.Delay
		if delay > p.delayCap {
			delay = p.delayCap
		}
		if delay > 0 {
			if err := p.sleep(ctx, delay); err != nil {
				return err
			}
		}

		result, err := p.exec.ExecuteAction(ctx, action.Type, action.Params)
		if err != nil {
			return fmt.Errorf("playback aborted at action %d (%s): %w", i, action.Type, err)
		}
		if !result.Success {
			return fmt.Errorf("playback aborted at action %d (%s): %s", i, action.Type, result.Message)
		}

		if i < len(actions)-1 {
			if err := p.sleep(ctx, p.pause); err != nil {
				return err
			}
		}
	}
	return nil
}

// Play replays the recorder's current buffer through the player, holding
// the Playing state for the duration.
func (r *Recorder) Play(ctx context.Context, player *Player) error {
	if err := r.beginPlayback(); err != nil {
		return err
	}
	defer r.endPlayback()

	return player.Play(ctx, r.Buffer())
}

// PlaySequence replays a stored sequence without mutating it.
func (r *Recorder) PlaySequence(ctx context.Context, player *Player, seq *automation.Sequence) error {
	if err := r.beginPlayback(); err != nil {
		return err
	}
	defer r.endPlayback()

	actions := make([]automation.RecordedAction, len(seq.Actions))
	copy(actions, seq.Actions)
	return player.Play(ctx, actions)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
