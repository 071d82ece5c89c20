package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vaak-ai/voxengine/internal/voxerr"
)

// statusFor maps a voxerr.Kind to the HTTP status its error kind
// propagates as.
func statusFor(kind voxerr.Kind) int {
	switch kind {
	case voxerr.InvalidInput:
		return http.StatusBadRequest
	case voxerr.NotFound:
		return http.StatusNotFound
	case voxerr.Capacity:
		return http.StatusServiceUnavailable
	case voxerr.Timeout:
		return http.StatusGatewayTimeout
	case voxerr.BackendUnavailable:
		return http.StatusBadGateway
	case voxerr.RateLimited:
		return http.StatusTooManyRequests
	case voxerr.IntegrityViolation:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// abortErr writes a JSON error envelope for err, picking the status from
// its voxerr.Kind (Internal if untagged), and logs Internal errors at
// error level.
func (s *Server) abortErr(c *gin.Context, err error) {
	kind, _ := voxerr.KindOf(err)
	if kind == voxerr.Internal {
		s.log.Error().Err(err).Str("path", c.FullPath()).Msg("internal error")
	}
	if s.metrics != nil {
		s.metrics.RecordError(c.Request.Context(), string(kind))
	}
	c.JSON(statusFor(kind), gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}
