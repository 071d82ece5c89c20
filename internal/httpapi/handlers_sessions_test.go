package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vaak-ai/voxengine/internal/store"
)

func testServer() *Server {
	mgr := NewManager(testFactory(), store.NewMemStore(), "instance-1", 0, zerolog.Nop())
	return &Server{sessions: mgr, log: zerolog.Nop()}
}

func TestCreateGetDeleteSession_Handlers(t *testing.T) {
	s := testServer()

	body, _ := json.Marshal(createSessionRequest{Language: "en"})
	req := httptest.NewRequest(http.MethodPost, "/api/sessions", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = req

	s.CreateSession(c)
	if rec.Code != http.StatusOK {
		t.Fatalf("CreateSession status = %d, want 200", rec.Code)
	}
	var created createSessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if created.SessionID == "" {
		t.Fatal("expected non-empty session_id")
	}

	rec = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/sessions/"+created.SessionID, nil)
	c.Params = gin.Params{{Key: "id", Value: created.SessionID}}

	s.GetSession(c)
	if rec.Code != http.StatusOK {
		t.Fatalf("GetSession status = %d, want 200", rec.Code)
	}
	var info sessionInfoResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !info.Active || info.SessionID != created.SessionID {
		t.Errorf("GetSession response = %+v", info)
	}

	rec = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodDelete, "/api/sessions/"+created.SessionID, nil)
	c.Params = gin.Params{{Key: "id", Value: created.SessionID}}

	s.DeleteSession(c)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("DeleteSession status = %d, want 204", rec.Code)
	}

	rec = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/sessions/"+created.SessionID, nil)
	c.Params = gin.Params{{Key: "id", Value: created.SessionID}}

	s.GetSession(c)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("GetSession after delete status = %d, want 404", rec.Code)
	}
}

func TestGetSession_UnknownID(t *testing.T) {
	s := testServer()

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/sessions/missing", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	s.GetSession(c)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
