package httpapi

import (
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vaak-ai/voxengine/internal/tool"
	"github.com/vaak-ai/voxengine/internal/voxerr"
)

type toolSummary struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ListTools handles GET /api/tools.
func (s *Server) ListTools(c *gin.Context) {
	names := s.toolRegistry.Names()
	sort.Strings(names)

	out := make([]toolSummary, 0, len(names))
	for _, name := range names {
		t, ok := s.toolRegistry.Find(name)
		if !ok {
			continue
		}
		out = append(out, toolSummary{Name: name, Description: t.Definition().Description})
	}
	c.JSON(http.StatusOK, out)
}

type invokeToolRequest struct {
	Arguments map[string]string `json:"arguments"`
}

type contentBlock struct {
	Kind string `json:"kind"`
	Text string `json:"text,omitempty"`
	Ref  string `json:"ref,omitempty"`
}

type invokeToolResponse struct {
	Content []contentBlock `json:"content"`
	IsError bool           `json:"is_error"`
}

// InvokeTool handles POST /api/tools/{name}: a direct, out-of-turn tool
// call bypassing dialog-state dispatch, for UI "try it" surfaces and
// integration testing.
func (s *Server) InvokeTool(c *gin.Context) {
	name := c.Param("name")
	if _, ok := s.toolRegistry.Find(name); !ok {
		s.abortErr(c, voxerr.Newf(voxerr.NotFound, "httpapi.InvokeTool", "tool %q not registered", name))
		return
	}

	var req invokeToolRequest
	_ = c.ShouldBindJSON(&req)

	start := time.Now()
	text, ok := s.toolExecutor.Invoke(c.Request.Context(), name, req.Arguments, nil)
	if s.metrics != nil {
		s.metrics.RecordToolCall(c.Request.Context(), name, time.Since(start).Seconds(), ok)
	}

	var blocks []contentBlock
	if text != "" {
		blocks = append(blocks, contentBlock{Kind: string(tool.ContentText), Text: text})
	}

	c.JSON(http.StatusOK, invokeToolResponse{Content: blocks, IsError: !ok})
}
