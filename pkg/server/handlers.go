package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adminGCT4545/browserpilot/pkg/automation"
)

// actionRequest is the /browser/action request body.
type actionRequest struct {
	Action    string            `json:"action" binding:"required"`
	Params    automation.Params `json:"params"`
	SessionID string            `json:"sessionId"`
}

// handleAction dispatches one action against the shared page. The response
// is always a well-formed Result with HTTP 200 for executed actions;
// failures are expressed through {success:false}, never through a dropped
// connection or a panic.
func (s *Server) handleAction(c *gin.Context) {
	var req actionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, automation.Result{
			Success: false,
			Message: "invalid request body: " + err.Error(),
		})
		return
	}

	kind := automation.ActionKind(req.Action)
	if !automation.IsKnownKind(kind) {
		c.JSON(http.StatusBadRequest, automation.Result{
			Success: false,
			Message: "unknown action: " + req.Action,
		})
		return
	}

	// The engine owns the single shared session; a stale sessionId from a
	// caller is tolerated and logged rather than rejected.
	if req.SessionID != "" {
		if info := s.engine.Info(); info.Active && info.SessionID != req.SessionID {
			s.log.Warnf("request carries stale sessionId %s (current %s)", req.SessionID, info.SessionID)
		}
	}

	start := time.Now()
	result := s.engine.Execute(c.Request.Context(), automation.Action{
		Type:   kind,
		Params: req.Params,
	})
	s.metrics.observeAction(kind, result.Success, time.Since(start))

	c.JSON(http.StatusOK, result)
}
