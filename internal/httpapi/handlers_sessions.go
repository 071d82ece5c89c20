package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vaak-ai/voxengine/internal/voxerr"
)

type createSessionRequest struct {
	Language string `json:"language"`
}

type createSessionResponse struct {
	SessionID    string `json:"session_id"`
	WebSocketURL string `json:"websocket_url"`
}

// CreateSession handles POST /api/sessions.
func (s *Server) CreateSession(c *gin.Context) {
	var req createSessionRequest
	_ = c.ShouldBindJSON(&req) // body is optional; language defaults to ""

	sess, err := s.sessions.Create(c.Request.Context(), req.Language)
	if err != nil {
		s.abortErr(c, err)
		return
	}

	c.JSON(http.StatusOK, createSessionResponse{
		SessionID:    sess.ID,
		WebSocketURL: "/ws/" + sess.ID,
	})
}

type sessionInfoResponse struct {
	SessionID string `json:"session_id"`
	Active    bool   `json:"active"`
	Stage     string `json:"stage"`
	TurnCount int    `json:"turn_count"`
}

// GetSession handles GET /api/sessions/{id}.
func (s *Server) GetSession(c *gin.Context) {
	sess, ok := s.sessions.Get(c.Param("id"))
	if !ok {
		s.abortErr(c, voxerr.New(voxerr.NotFound, "httpapi.GetSession", nil))
		return
	}
	c.JSON(http.StatusOK, sessionInfoResponse{
		SessionID: sess.ID,
		Active:    sess.Active(),
		Stage:     string(sess.Stage()),
		TurnCount: sess.TurnCount(),
	})
}

// DeleteSession handles DELETE /api/sessions/{id}.
func (s *Server) DeleteSession(c *gin.Context) {
	if err := s.sessions.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.abortErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
