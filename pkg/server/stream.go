package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/adminGCT4545/browserpilot/pkg/automation"
)

var streamUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 262144,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// streamFrame is one live-preview message.
type streamFrame struct {
	Timestamp  time.Time `json:"timestamp"`
	Active     bool      `json:"active"`
	Screenshot string    `json:"screenshot,omitempty"`
}

// handleStream upgrades to a WebSocket and pushes periodic screenshot
// frames while a session is active. Inactive periods send empty frames so
// the client can render session state without polling.
func (s *Server) handleStream(c *gin.Context) {
	conn, err := streamUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warnf("stream upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	interval := s.cfg.StreamInterval
	if interval <= 0 {
		interval = time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Reader goroutine: detect client disconnect.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		case <-ticker.C:
			frame := streamFrame{Timestamp: time.Now(), Active: s.engine.Active()}
			if frame.Active {
				result := s.engine.Execute(c.Request.Context(), automation.Action{
					Type: automation.ActionScreenshot,
				})
				if result.Success {
					frame.Screenshot = result.Screenshot
				}
			}
			if err := conn.WriteJSON(frame); err != nil {
				return
			}
		}
	}
}
