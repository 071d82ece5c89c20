// Package ws implements the WebSocket transport binding: a JSON-tagged
// message envelope over /ws/{session_id}, binary frames as raw PCM16 LE
// audio at 16 kHz mono, and a per-connection rate limiter. The
// server-side accept/read-loop terminates github.com/coder/websocket
// server-side rather than dialing it as a client.
package ws

import "encoding/base64"

// ClientMessageType enumerates the client→server envelope kinds.
type ClientMessageType string

const (
	ClientAudio      ClientMessageType = "audio"
	ClientText       ClientMessageType = "text"
	ClientPing       ClientMessageType = "ping"
	ClientEndSession ClientMessageType = "end_session"
)

// ClientMessage is the JSON shape of a client→server text frame. Data
// carries base64-encoded PCM for ClientAudio; Content carries the
// message body for ClientText.
type ClientMessage struct {
	Type    ClientMessageType `json:"type"`
	Data    string            `json:"data,omitempty"`
	Content string            `json:"content,omitempty"`
}

// AudioBytes base64-decodes Data. Returns an error if Data is not valid
// base64; Type is not checked.
func (m ClientMessage) AudioBytes() ([]byte, error) {
	return base64.StdEncoding.DecodeString(m.Data)
}

// ServerMessageType enumerates the server→client envelope kinds.
type ServerMessageType string

const (
	ServerTranscript    ServerMessageType = "transcript"
	ServerResponse      ServerMessageType = "response"
	ServerResponseAudio ServerMessageType = "response_audio"
	ServerStatus        ServerMessageType = "status"
	ServerError         ServerMessageType = "error"
	ServerSessionInfo   ServerMessageType = "session_info"
	ServerPong          ServerMessageType = "pong"
)

// ServerMessage is the JSON shape of every server→client text frame. Not
// every field is populated for every Type; see the New* constructors.
type ServerMessage struct {
	Type      ServerMessageType `json:"type"`
	Text      string            `json:"text,omitempty"`
	IsFinal   bool              `json:"is_final,omitempty"`
	Data      string            `json:"data,omitempty"`
	State     string            `json:"state,omitempty"`
	Stage     string            `json:"stage,omitempty"`
	Message   string            `json:"message,omitempty"`
	SessionID string            `json:"session_id,omitempty"`
	TurnCount int               `json:"turn_count,omitempty"`
}

func NewTranscript(text string, isFinal bool) ServerMessage {
	return ServerMessage{Type: ServerTranscript, Text: text, IsFinal: isFinal}
}

func NewResponse(text string) ServerMessage {
	return ServerMessage{Type: ServerResponse, Text: text}
}

func NewResponseAudio(pcm16le []byte) ServerMessage {
	return ServerMessage{Type: ServerResponseAudio, Data: base64.StdEncoding.EncodeToString(pcm16le)}
}

func NewStatus(state, stage string) ServerMessage {
	return ServerMessage{Type: ServerStatus, State: state, Stage: stage}
}

func NewError(message string) ServerMessage {
	return ServerMessage{Type: ServerError, Message: message}
}

func NewSessionInfo(sessionID, stage string, turnCount int) ServerMessage {
	return ServerMessage{Type: ServerSessionInfo, SessionID: sessionID, Stage: stage, TurnCount: turnCount}
}

func NewPong() ServerMessage {
	return ServerMessage{Type: ServerPong}
}
