package automation

import (
	"time"
)

// Session represents the logical lifetime of the one active automated page,
// from a successful launch to close. At most one session exists per engine,
// which is at most one per process.
type Session struct {
	SessionID  string
	CurrentURL string
	Title      string
	CreatedAt  time.Time
	LastUsedAt time.Time
}

// touch updates the last-used timestamp.
func (s *Session) touch() {
	s.LastUsedAt = time.Now()
}

// Info returns the externally visible snapshot of the session.
func (s *Session) Info() SessionInfo {
	if s == nil {
		return SessionInfo{}
	}
	return SessionInfo{
		SessionID:  s.SessionID,
		Active:     true,
		CurrentURL: s.CurrentURL,
		Title:      s.Title,
	}
}
