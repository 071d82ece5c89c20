package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vaak-ai/voxengine/internal/voxerr"
)

type chatRequest struct {
	Message string `json:"message" binding:"required"`
}

type chatResponse struct {
	Response  string `json:"response"`
	Stage     string `json:"stage"`
	TurnCount int    `json:"turn_count"`
}

// Chat handles POST /api/chat/{id}.
func (s *Server) Chat(c *gin.Context) {
	sess, ok := s.sessions.Get(c.Param("id"))
	if !ok {
		s.abortErr(c, voxerr.New(voxerr.NotFound, "httpapi.Chat", nil))
		return
	}

	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	s.sessions.Touch(ctx, sess)

	start := time.Now()
	reply, err := s.engine.ProcessTurn(ctx, sess, req.Message, nil)
	if s.metrics != nil {
		s.metrics.RecordTurn(ctx, time.Since(start).Seconds(), err == nil)
	}
	if err != nil {
		s.abortErr(c, err)
		return
	}

	c.JSON(http.StatusOK, chatResponse{
		Response:  reply,
		Stage:     string(sess.Stage()),
		TurnCount: sess.TurnCount(),
	})
}
