package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/rs/zerolog"

	"github.com/vaak-ai/voxengine/internal/engine"
	"github.com/vaak-ai/voxengine/internal/voxerr"
)

// errEndSession is returned internally from the read loop when the
// client sends EndSession; the connection is closed normally rather
// than treated as an error.
var errEndSession = errors.New("ws: client requested end of session")

// Transcriber is the external ASR collaborator boundary: STT model
// binaries are specified only by interface here. No concrete
// implementation ships in this package; Handler degrades to dropping
// audio frames when Transcriber is nil.
type Transcriber interface {
	Transcribe(ctx context.Context, pcm16le []byte, sampleRateHz int) (text string, isFinal bool, err error)
}

// Synthesizer is the external TTS collaborator boundary, symmetric with
// Transcriber. A nil Synthesizer means Handler never emits
// ResponseAudio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (pcm16le []byte, err error)
}

// SessionLookup resolves a path session id to a live engine Session.
// Implemented by whatever owns session lifecycle (the
// POST/GET/DELETE /api/sessions surface).
type SessionLookup interface {
	Get(sessionID string) (*engine.Session, bool)
}

// Analytics is the external turn-event export collaborator boundary. A
// nil Analytics means Handler never exports events; export runs off the
// turn's critical path, so a slow or failing exporter never delays a
// reply.
type Analytics interface {
	Export(ctx context.Context, sessionID string, ev engine.Event) error
}

// Handler terminates the WebSocket transport binding.
type Handler struct {
	Engine      *engine.Engine
	Sessions    SessionLookup
	Limiter     *RateLimiter
	Hub         *Hub
	Transcriber Transcriber
	Synthesizer Synthesizer
	Analytics   Analytics
	Log         zerolog.Logger
}

// ServeSession upgrades r to a WebSocket connection bound to sessionID
// and blocks in a read loop until the connection closes or the client
// sends EndSession. Call from an HTTP handler that has already extracted
// sessionID from the request path.
func (h *Handler) ServeSession(w http.ResponseWriter, r *http.Request, sessionID string) error {
	sess, ok := h.Sessions.Get(sessionID)
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return voxerr.New(voxerr.NotFound, "ws.ServeSession", nil)
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		return voxerr.New(voxerr.Internal, "ws.ServeSession", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	c := &Conn{ws: conn, sessionID: sessionID}
	if h.Hub != nil {
		h.Hub.attach(sessionID, c)
		defer h.Hub.detach(sessionID)
	}

	ctx := r.Context()
	c.sendJSON(ctx, NewSessionInfo(sess.ID, string(sess.Stage()), sess.TurnCount()))

	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			return nil
		}

		if typ == websocket.MessageBinary {
			if h.Limiter != nil {
				if ok, err := h.Limiter.AllowMessage(ctx, sess.ID); err == nil && !ok {
					c.sendJSON(ctx, NewError("message rate limit exceeded"))
					continue
				}
			}
			h.handleAudio(ctx, c, sess, data)
			continue
		}

		if err := h.dispatch(ctx, c, sess, data); err != nil {
			if errors.Is(err, errEndSession) {
				c.sendJSON(ctx, NewStatus("closed", string(sess.Stage())))
				return nil
			}
			h.Log.Warn().Err(err).Str("session_id", sessionID).Msg("ws message handling failed")
		}
	}
}

func (h *Handler) dispatch(ctx context.Context, c *Conn, sess *engine.Session, data []byte) error {
	if h.Limiter != nil {
		ok, err := h.Limiter.AllowMessage(ctx, sess.ID)
		if err != nil {
			h.Log.Warn().Err(err).Msg("rate limiter backend error, allowing message")
		} else if !ok {
			c.sendJSON(ctx, NewError("message rate limit exceeded"))
			return nil
		}
	}

	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.sendJSON(ctx, NewError("malformed message"))
		return nil
	}

	switch msg.Type {
	case ClientPing:
		c.sendJSON(ctx, NewPong())
	case ClientEndSession:
		sess.Close()
		return errEndSession
	case ClientText:
		h.runTurn(ctx, c, sess, msg.Content)
	case ClientAudio:
		pcm, err := msg.AudioBytes()
		if err != nil {
			c.sendJSON(ctx, NewError("invalid base64 audio payload"))
			return nil
		}
		h.handleAudio(ctx, c, sess, pcm)
	default:
		c.sendJSON(ctx, NewError("unknown message type"))
	}
	return nil
}

func (h *Handler) handleAudio(ctx context.Context, c *Conn, sess *engine.Session, pcm16le []byte) {
	if h.Limiter != nil {
		ok, err := h.Limiter.AllowAudioBytes(ctx, sess.ID, len(pcm16le))
		if err != nil {
			h.Log.Warn().Err(err).Msg("rate limiter backend error, allowing audio frame")
		} else if !ok {
			c.sendJSON(ctx, NewError("audio rate limit exceeded"))
			return
		}
	}

	if h.Transcriber == nil {
		h.Log.Debug().Str("session_id", sess.ID).Msg("audio frame dropped: no transcriber configured")
		return
	}

	text, isFinal, err := h.Transcriber.Transcribe(ctx, pcm16le, 16000)
	if err != nil {
		h.Log.Warn().Err(err).Str("session_id", sess.ID).Msg("transcription failed")
		return
	}
	if text == "" {
		return
	}

	c.sendJSON(ctx, NewTranscript(text, isFinal))
	if isFinal {
		h.runTurn(ctx, c, sess, text)
	}
}

func (h *Handler) runTurn(ctx context.Context, c *Conn, sess *engine.Session, text string) {
	sink := func(ev engine.Event) {
		msg, ok := EventToServerMessage(ev, string(sess.Stage()))
		if ok {
			c.sendJSON(ctx, msg)
		}
		if h.Analytics != nil {
			go h.exportEvent(sess.ID, ev)
		}
	}

	reply, err := h.Engine.ProcessTurn(ctx, sess, text, sink)
	if err != nil {
		c.sendJSON(ctx, NewError("failed to generate a response"))
		return
	}

	if h.Synthesizer == nil {
		return
	}
	audio, err := h.Synthesizer.Synthesize(ctx, reply)
	if err != nil {
		h.Log.Warn().Err(err).Str("session_id", sess.ID).Msg("speech synthesis failed")
		return
	}
	c.sendJSON(ctx, NewResponseAudio(audio))
}

// exportEvent publishes ev to h.Analytics with its own timeout,
// detached from the connection's context so a slow exporter doesn't
// block the read loop on disconnect.
func (h *Handler) exportEvent(sessionID string, ev engine.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.Analytics.Export(ctx, sessionID, ev); err != nil {
		h.Log.Warn().Err(err).Str("session_id", sessionID).Msg("analytics export failed")
	}
}

// EventToServerMessage translates one engine.Event into its wire
// ServerMessage, so every transport that drives engine.ProcessTurn (this
// WebSocket handler, and the WebRTC signaling/media path) renders the
// same event stream identically. Returns false for event kinds that
// have no client-facing representation.
func EventToServerMessage(ev engine.Event, stage string) (ServerMessage, bool) {
	switch ev.Kind {
	case engine.EventThinking:
		return NewStatus("thinking", stage), true
	case engine.EventIntentDetected:
		return NewStatus("intent_detected:"+ev.Intent, stage), true
	case engine.EventToolCall:
		return NewStatus("tool_call:"+ev.ToolName, stage), true
	case engine.EventToolResult:
		return NewStatus("tool_result:"+ev.ToolName, stage), true
	case engine.EventResponse:
		return NewResponse(ev.Text), true
	default:
		return ServerMessage{}, false
	}
}

// Conn wraps a *websocket.Conn with a write mutex: the read loop is the
// only reader, but sink-driven writes (status/response events) and
// Hub-forwarded WebRTC pipeline events can both write concurrently.
type Conn struct {
	mu        sync.Mutex
	ws        *websocket.Conn
	sessionID string
}

func (c *Conn) sendJSON(ctx context.Context, msg ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.ws.Write(ctx, websocket.MessageText, data)
}
