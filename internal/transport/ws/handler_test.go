package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/rs/zerolog"

	"github.com/vaak-ai/voxengine/internal/dialog"
	"github.com/vaak-ai/voxengine/internal/engine"
	"github.com/vaak-ai/voxengine/internal/llm"
	"github.com/vaak-ai/voxengine/internal/memory"
)

type fakeModel struct {
	name string
	text string
}

func (m *fakeModel) Complete(ctx context.Context, req llm.Request) (llm.Response, error) {
	return llm.Response{Text: m.text}, nil
}
func (m *fakeModel) StreamCompletion(ctx context.Context, req llm.Request) (<-chan llm.Chunk, error) {
	ch := make(chan llm.Chunk, 1)
	ch <- llm.Chunk{Delta: m.text, Done: true}
	close(ch)
	return ch, nil
}
func (m *fakeModel) CountTokens(text string) int    { return len(text) / 4 }
func (m *fakeModel) Capabilities() llm.Capabilities { return llm.Capabilities{} }
func (m *fakeModel) Name() string                   { return m.name }

func testEngine() *engine.Engine {
	speculative := llm.NewExecutor(
		&fakeModel{name: "slm", text: "a decent sized slm answer here"},
		&fakeModel{name: "llm", text: "llm answer"},
		llm.DefaultConfig(),
	)
	return engine.New(nil, nil, speculative, engine.DefaultPhoneticCorrector(), engine.DefaultConfig(), zerolog.Nop())
}

func testSessionForHandler() *engine.Session {
	classifier := dialog.NewIntentClassifier([]dialog.IntentExample{
		{Name: "new_loan_inquiry", Examples: []string{"I want a gold loan"}},
	})
	goals := dialog.GoalConfig{
		Goals:         map[string]dialog.Goal{"new_loan": {ID: "new_loan"}},
		IntentToGoal:  map[string]string{"new_loan_inquiry": "new_loan"},
		DefaultGoalID: "new_loan",
	}
	tracker := dialog.NewTracker(classifier, dialog.NewSlotExtractor(), goals)
	mem := memory.New(memory.DefaultConfig(), nil)
	return engine.NewSession("agent-1", tracker, mem, "en")
}

type fakeLookup struct {
	sess *engine.Session
}

func (f *fakeLookup) Get(sessionID string) (*engine.Session, bool) {
	if f.sess == nil {
		return nil, false
	}
	return f.sess, true
}

func newTestServer(t *testing.T, lookup *fakeLookup) (*httptest.Server, string) {
	t.Helper()
	h := &Handler{
		Engine:   testEngine(),
		Sessions: lookup,
		Log:      zerolog.Nop(),
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = h.ServeSession(w, r, "sess-1")
	}))
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	return srv, wsURL
}

func TestHandler_UnknownSessionReturns404(t *testing.T) {
	srv, wsURL := newTestServer(t, &fakeLookup{})
	defer srv.Close()

	resp, err := http.Get(strings.Replace(wsURL, "ws", "http", 1))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestHandler_PingPong(t *testing.T) {
	srv, wsURL := newTestServer(t, &fakeLookup{sess: testSessionForHandler()})
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	// First message is always SessionInfo.
	readServerMessage(t, ctx, conn)

	if err := conn.Write(ctx, websocket.MessageText, mustJSON(t, ClientMessage{Type: ClientPing})); err != nil {
		t.Fatalf("write: %v", err)
	}

	msg := readServerMessage(t, ctx, conn)
	if msg.Type != ServerPong {
		t.Errorf("got type %q, want pong", msg.Type)
	}
}

func TestHandler_TextMessageEventuallyProducesResponse(t *testing.T) {
	srv, wsURL := newTestServer(t, &fakeLookup{sess: testSessionForHandler()})
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	readServerMessage(t, ctx, conn) // session_info

	if err := conn.Write(ctx, websocket.MessageText, mustJSON(t, ClientMessage{Type: ClientText, Content: "hello there"})); err != nil {
		t.Fatalf("write: %v", err)
	}

	for i := 0; i < 10; i++ {
		msg := readServerMessage(t, ctx, conn)
		if msg.Type == ServerResponse {
			if msg.Text == "" {
				t.Error("expected non-empty response text")
			}
			return
		}
	}
	t.Fatal("never received a response message")
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return data
}

func readServerMessage(t *testing.T, ctx context.Context, conn *websocket.Conn) ServerMessage {
	t.Helper()
	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var msg ServerMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("unmarshal %s: %v", data, err)
	}
	return msg
}
