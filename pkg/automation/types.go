package automation

import (
	"time"
)

// ActionKind identifies a primitive browser automation instruction.
type ActionKind string

const (
	ActionLaunch         ActionKind = "launch"
	ActionClick          ActionKind = "click"
	ActionType           ActionKind = "type"
	ActionScroll         ActionKind = "scroll"
	ActionScreenshot     ActionKind = "screenshot"
	ActionSetViewport    ActionKind = "setViewport"
	ActionDetectForms    ActionKind = "detectForms"
	ActionFillForm       ActionKind = "fillForm"
	ActionDetectElements ActionKind = "detectElements"
	ActionClose          ActionKind = "close"
)

// KnownKinds lists every action the engine can execute.
var KnownKinds = []ActionKind{
	ActionLaunch,
	ActionClick,
	ActionType,
	ActionScroll,
	ActionScreenshot,
	ActionSetViewport,
	ActionDetectForms,
	ActionFillForm,
	ActionDetectElements,
	ActionClose,
}

// IsKnownKind reports whether kind names a supported action.
func IsKnownKind(kind ActionKind) bool {
	for _, k := range KnownKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// Params carries the action-specific parameters. Values arrive as decoded
// JSON, so numbers are float64 and nested values are maps/slices.
type Params map[string]interface{}

// Action is a single automation instruction. Immutable once dispatched.
type Action struct {
	Type   ActionKind `json:"type"`
	Params Params     `json:"params,omitempty"`
}

// Result is the synchronous outcome of one action. An action either fully
// completes against the page or fails without mutating session state
// (launch and close are the two that explicitly set/clear it).
type Result struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message,omitempty"`
	SessionID  string      `json:"sessionId,omitempty"`
	URL        string      `json:"url,omitempty"`
	Title      string      `json:"title,omitempty"`
	Screenshot string      `json:"screenshot,omitempty"` // base64-encoded PNG
	Data       interface{} `json:"data,omitempty"`
}

// RecordedAction is an Action captured during recording, with the capture
// time and the gap since the previous captured action. The delay is clamped
// at playback, not at capture.
type RecordedAction struct {
	Type      ActionKind    `json:"type"`
	Params    Params        `json:"params,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	Delay     time.Duration `json:"delay"`
}

// Sequence is a named, persisted ordered list of recorded actions.
// Sequences are independent of any live session.
type Sequence struct {
	ID      string           `json:"id"`
	Name    string           `json:"name"`
	Actions []RecordedAction `json:"actions"`
	Created time.Time        `json:"created"`
}

// SessionInfo is the externally visible snapshot of the automation session.
type SessionInfo struct {
	SessionID  string `json:"sessionId"`
	Active     bool   `json:"active"`
	CurrentURL string `json:"currentUrl"`
	Title      string `json:"title"`
}

// Viewport represents the logical page viewport dimensions.
type Viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// FormField describes one visible form input discovered by detectForms.
type FormField struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Label       string `json:"label"`
	Name        string `json:"name"`
	Value       string `json:"value"`
	Placeholder string `json:"placeholder"`
	Required    bool   `json:"required"`
}

// PageElement describes one visible interactive element discovered by
// detectElements. X and Y are the element's center coordinates, used for
// coordinate-based click targeting.
type PageElement struct {
	Index  int    `json:"index"`
	Tag    string `json:"tag"`
	Text   string `json:"text"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Default dimensions for the logical viewport. Zoom levels scale the
// effective viewport relative to this base.
const (
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 720
)
