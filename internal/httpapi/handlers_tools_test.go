package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vaak-ai/voxengine/internal/tool"
)

func testToolServer() *Server {
	registry := tool.NewRegistry()
	registry.Register(tool.Func{
		Def: tool.Definition{Name: "echo_tool", Description: "echoes its input"},
		Handler: func(_ context.Context, args map[string]string) (tool.Output, error) {
			return tool.Output{Content: []tool.Content{{Kind: tool.ContentText, Text: args["text"]}}}, nil
		},
	})
	executor := tool.NewExecutor(registry, tool.DispatchConfig{})
	return &Server{toolRegistry: registry, toolExecutor: executor, log: zerolog.Nop()}
}

func TestListTools(t *testing.T) {
	s := testToolServer()

	req := httptest.NewRequest(http.MethodGet, "/api/tools", nil)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = req

	s.ListTools(c)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var out []toolSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(out) != 1 || out[0].Name != "echo_tool" {
		t.Errorf("ListTools = %+v, want [echo_tool]", out)
	}
}

func TestInvokeTool_Unknown(t *testing.T) {
	s := testToolServer()

	req := httptest.NewRequest(http.MethodPost, "/api/tools/missing", nil)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = req
	c.Params = gin.Params{{Key: "name", Value: "missing"}}

	s.InvokeTool(c)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestInvokeTool_Success(t *testing.T) {
	s := testToolServer()

	body, _ := json.Marshal(invokeToolRequest{Arguments: map[string]string{"text": "hello"}})
	req := httptest.NewRequest(http.MethodPost, "/api/tools/echo_tool", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = req
	c.Params = gin.Params{{Key: "name", Value: "echo_tool"}}

	s.InvokeTool(c)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp invokeToolResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if resp.IsError || len(resp.Content) != 1 || resp.Content[0].Text != "hello" {
		t.Errorf("InvokeTool response = %+v", resp)
	}
}
