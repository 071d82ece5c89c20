package httpapi

import "github.com/gin-gonic/gin"

// These handlers adapt internal/transport/webrtc.Manager's
// http.ResponseWriter/http.Request-based signaling methods onto gin's
// routing, extracting the session id from the path the same way every
// other session-scoped route does.

func (s *Server) WebRTCOffer(c *gin.Context) {
	s.webrtc.HandleOffer(c.Writer, c.Request, c.Param("id"))
}

func (s *Server) WebRTCICE(c *gin.Context) {
	s.webrtc.HandleICE(c.Writer, c.Request, c.Param("id"))
}

func (s *Server) WebRTCCandidates(c *gin.Context) {
	s.webrtc.HandleCandidates(c.Writer, c.Request, c.Param("id"))
}

func (s *Server) WebRTCStatus(c *gin.Context) {
	s.webrtc.HandleStatus(c.Writer, c.Request, c.Param("id"))
}

func (s *Server) WebRTCRestart(c *gin.Context) {
	s.webrtc.HandleRestart(c.Writer, c.Request, c.Param("id"))
}

// WebSocket handles GET /ws/{session_id}, upgrading the connection and
// blocking for the connection's lifetime.
func (s *Server) WebSocket(c *gin.Context) {
	if err := s.ws.ServeSession(c.Writer, c.Request, c.Param("id")); err != nil {
		s.log.Debug().Err(err).Str("session_id", c.Param("id")).Msg("websocket session ended with error")
	}
}
