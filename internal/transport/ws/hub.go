package ws

import (
	"context"
	"sync"
)

// Hub tracks the live WebSocket connection attached to each session, if
// any, so other transports (WebRTC's signaling/media path) can forward
// pipeline events to it: forwarded to the client over WebSocket if one
// is present, or logged otherwise.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]*Conn
}

// NewHub constructs an empty Hub.
func NewHub() *Hub {
	return &Hub{conns: make(map[string]*Conn)}
}

func (h *Hub) attach(sessionID string, c *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[sessionID] = c
}

func (h *Hub) detach(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, sessionID)
}

// Send forwards msg to sessionID's attached connection, if any. Returns
// false when no WebSocket connection is currently attached, so the
// caller (e.g. the WebRTC transport) can fall back to logging the event
// instead.
func (h *Hub) Send(ctx context.Context, sessionID string, msg ServerMessage) bool {
	h.mu.RLock()
	c, ok := h.conns[sessionID]
	h.mu.RUnlock()
	if !ok {
		return false
	}
	c.sendJSON(ctx, msg)
	return true
}
