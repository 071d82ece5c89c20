package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthCheck reports a named artifact/backend's resolvability for
// GET /health; a non-nil error marks that check failed.
type HealthCheck func(ctx context.Context) error

// ReadinessCheck reports whether the external LLM backend answers within
// its deadline for GET /ready.
type ReadinessCheck func(ctx context.Context) error

const readyTimeout = 2 * time.Second

// Health handles GET /health: 200 when every registered check passes,
// 503 with per-check status otherwise.
func (s *Server) Health(c *gin.Context) {
	ctx := c.Request.Context()
	results := make(map[string]string, len(s.healthChecks))
	allOK := true
	for name, check := range s.healthChecks {
		if err := check(ctx); err != nil {
			results[name] = err.Error()
			allOK = false
		} else {
			results[name] = "ok"
		}
	}

	status := http.StatusOK
	if !allOK {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"status": statusText(allOK), "checks": results})
}

// Ready handles GET /ready: 200 iff the external LLM backend answers
// within readyTimeout.
func (s *Server) Ready(c *gin.Context) {
	if s.readinessCheck == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
	defer cancel()

	if err := s.readinessCheck(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Metrics handles GET /metrics: the Prometheus text-format scrape
// endpoint, served by the default global registerer the
// otel/exporters/prometheus bridge registers against.
func (s *Server) Metrics(c *gin.Context) {
	promhttp.Handler().ServeHTTP(c.Writer, c.Request)
}

// ReloadConfig handles POST /admin/reload-config.
func (s *Server) ReloadConfig(c *gin.Context) {
	if err := s.config.Reload(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "reloaded"})
}

func statusText(ok bool) string {
	if ok {
		return "ok"
	}
	return "degraded"
}
