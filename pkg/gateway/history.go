package gateway

import (
	"time"

	"github.com/adminGCT4545/browserpilot/pkg/automation"
)

// LogEntry records one dispatched action's outcome for observability.
// Failed actions get an entry like any other; nothing silently disappears.
type LogEntry struct {
	Time      time.Time             `json:"time"`
	Kind      automation.ActionKind `json:"kind"`
	Success   bool                  `json:"success"`
	Message   string                `json:"message,omitempty"`
	Simulated bool                  `json:"simulated,omitempty"`
}

// history is a bounded, most-recent-first log. Not safe for concurrent use;
// the gateway guards it with its own mutex.
type history struct {
	limit   int
	entries []LogEntry
}

func newHistory(limit int) *history {
	if limit <= 0 {
		limit = 100
	}
	return &history{limit: limit}
}

// add prepends an entry, trimming the oldest past the limit.
func (h *history) add(entry LogEntry) {
	h.entries = append([]LogEntry{entry}, h.entries...)
	if len(h.entries) > h.limit {
		h.entries = h.entries[:h.limit]
	}
}

// snapshot returns a copy of the log, most recent first.
func (h *history) snapshot() []LogEntry {
	out := make([]LogEntry, len(h.entries))
	copy(out, h.entries)
	return out
}
