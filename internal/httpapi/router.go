package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vaak-ai/voxengine/internal/config"
	"github.com/vaak-ai/voxengine/internal/engine"
	"github.com/vaak-ai/voxengine/internal/obs"
	"github.com/vaak-ai/voxengine/internal/tool"
	"github.com/vaak-ai/voxengine/internal/transport/webrtc"
	"github.com/vaak-ai/voxengine/internal/transport/ws"
)

// Server bundles every collaborator the HTTP surface dispatches into.
// Built once in cmd/voxengine/main.go via NewServer; Server.Router
// returns its gin handler.
type Server struct {
	config       *config.Store
	sessions     *Manager
	engine       *engine.Engine
	ws           *ws.Handler
	webrtc       *webrtc.Manager
	toolRegistry *tool.Registry
	toolExecutor *tool.Executor
	transcriber  ws.Transcriber
	synthesizer  ws.Synthesizer
	translator   Translator
	metrics      *obs.Metrics

	healthChecks   map[string]HealthCheck
	readinessCheck ReadinessCheck

	log zerolog.Logger
}

// NewServer builds a Server. transcriber/synthesizer/translator/metrics
// and the health/readiness checks may be nil or empty; every such
// dependency degrades gracefully (see ProcessPTT, Translate, Health,
// Ready).
func NewServer(
	cfg *config.Store,
	sessions *Manager,
	eng *engine.Engine,
	wsHandler *ws.Handler,
	webrtcMgr *webrtc.Manager,
	toolRegistry *tool.Registry,
	toolExecutor *tool.Executor,
	transcriber ws.Transcriber,
	synthesizer ws.Synthesizer,
	translator Translator,
	metrics *obs.Metrics,
	healthChecks map[string]HealthCheck,
	readinessCheck ReadinessCheck,
	log zerolog.Logger,
) *Server {
	return &Server{
		config:         cfg,
		sessions:       sessions,
		engine:         eng,
		ws:             wsHandler,
		webrtc:         webrtcMgr,
		toolRegistry:   toolRegistry,
		toolExecutor:   toolExecutor,
		transcriber:    transcriber,
		synthesizer:    synthesizer,
		translator:     translator,
		metrics:        metrics,
		healthChecks:   healthChecks,
		readinessCheck: readinessCheck,
		log:            log,
	}
}

// Router builds the gin.Engine serving every route this package handles.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())
	r.Use(s.corsMiddleware())

	r.GET("/health", s.Health)
	r.GET("/ready", s.Ready)
	r.GET("/metrics", s.Metrics)
	r.POST("/admin/reload-config", s.ReloadConfig)

	r.GET("/ws/:id", s.WebSocket)

	api := r.Group("/api")
	{
		api.POST("/sessions", s.CreateSession)
		api.GET("/sessions/:id", s.GetSession)
		api.DELETE("/sessions/:id", s.DeleteSession)

		api.POST("/chat/:id", s.Chat)

		api.POST("/ptt/process", s.ProcessPTT)
		api.POST("/ptt/greeting", s.Greeting)
		api.POST("/ptt/translate", s.Translate)

		api.GET("/tools", s.ListTools)
		api.POST("/tools/:name", s.InvokeTool)

		webrtcGroup := api.Group("/webrtc/:id")
		{
			webrtcGroup.POST("/offer", s.WebRTCOffer)
			webrtcGroup.POST("/ice", s.WebRTCICE)
			webrtcGroup.GET("/candidates", s.WebRTCCandidates)
			webrtcGroup.GET("/status", s.WebRTCStatus)
			webrtcGroup.POST("/restart", s.WebRTCRestart)
		}
	}

	return r
}

// requestLogger emits one structured log line per request through the
// server's own zerolog.Logger, replacing gin's default text logger.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		s.log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Msg("http request")
	}
}

// corsMiddleware applies the configured allow-list. CORS.Enabled and
// CORS.AllowOrigins are fixed at process start (config.Store never
// hot-swaps them), so this reads cfg once per request but always sees
// the same value.
func (s *Server) corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		cfg := s.config.Get()
		origin := c.GetHeader("Origin")

		if !cfg.CORS.Enabled {
			c.Header("Access-Control-Allow-Origin", "*")
		} else if origin != "" && originAllowed(origin, cfg.CORS.AllowOrigins) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		}

		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func originAllowed(origin string, allowed []string) bool {
	for _, a := range allowed {
		if a == "*" || strings.EqualFold(a, origin) {
			return true
		}
	}
	return false
}
