package gateway

import (
	"errors"
	"fmt"

	"github.com/adminGCT4545/browserpilot/pkg/automation"
)

// Gateway error taxonomy. Transport failures are recovered internally via
// the simulation fallback and are therefore not surfaced as errors; they
// appear as warning history entries instead. Server-side rejections arrive
// as {success:false} results, not Go errors.
var (
	// ErrUserCancelled is returned when the preview step is declined.
	ErrUserCancelled = errors.New("action cancelled by user")

	// ErrNoActiveSession mirrors the server's rejection of actions issued
	// before launch.
	ErrNoActiveSession = errors.New("no active session")
)

// IsNoActiveSession reports whether a result is the server's rejection of
// an action issued before launch. Callers use it to prompt for a launch
// instead of showing a raw failure.
func IsNoActiveSession(result *automation.Result) bool {
	return result != nil && !result.Success && result.Message == ErrNoActiveSession.Error()
}

// TransportError wraps a failure to reach the automation server. It
// triggers the simulation fallback rather than a user-visible failure.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("automation server unreachable: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
