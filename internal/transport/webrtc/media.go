package webrtc

import (
	"context"

	"github.com/pion/rtp"
	"github.com/pion/webrtc/v4"

	"github.com/vaak-ai/voxengine/internal/engine"
	"github.com/vaak-ai/voxengine/internal/transport/ws"
)

// readTrack reads RTP packets from an inbound audio track, downsamples
// each packet's payload (raw L16 PCM at inputSampleRate) to
// outputSampleRate, and feeds the result through the same transcription
// boundary the WebSocket transport uses. It returns when the track ends
// or ctx is cancelled.
func (m *Manager) readTrack(ctx context.Context, sess *peerSession, track *webrtc.TrackRemote) {
	for {
		pkt, _, err := track.ReadRTP()
		if err != nil {
			return
		}
		m.handlePacket(ctx, sess, pkt)
	}
}

func (m *Manager) handlePacket(ctx context.Context, sess *peerSession, pkt *rtp.Packet) {
	sess.mu.Lock()
	pcm16le := sess.down.push(pkt.Payload)
	sess.mu.Unlock()

	if len(pcm16le) == 0 || m.transcriber == nil {
		return
	}

	text, isFinal, err := m.transcriber.Transcribe(ctx, pcm16le, outputSampleRate)
	if err != nil {
		m.log.Warn().Err(err).Str("session_id", sess.id).Msg("webrtc transcription failed")
		return
	}
	if text == "" {
		return
	}

	m.deliver(ctx, sess.id, ws.NewTranscript(text, isFinal))
	if isFinal {
		m.runTurn(ctx, sess.id, text)
	}
}

func (m *Manager) runTurn(ctx context.Context, sessionID, text string) {
	sess, ok := m.sessions.Get(sessionID)
	if !ok {
		return
	}

	sink := func(ev engine.Event) {
		if msg, ok := ws.EventToServerMessage(ev, string(sess.Stage())); ok {
			m.deliver(ctx, sessionID, msg)
		}
	}

	reply, err := m.engine.ProcessTurn(ctx, sess, text, sink)
	if err != nil {
		m.deliver(ctx, sessionID, ws.NewError("failed to generate a response"))
		return
	}
	m.deliver(ctx, sessionID, ws.NewResponse(reply))
}

// deliver forwards msg to sessionID's attached WebSocket connection via
// Hub, or logs it when no such connection is attached.
func (m *Manager) deliver(ctx context.Context, sessionID string, msg ws.ServerMessage) {
	if m.hub != nil && m.hub.Send(ctx, sessionID, msg) {
		return
	}
	m.log.Info().Str("session_id", sessionID).Str("type", string(msg.Type)).Msg("webrtc pipeline event (no attached websocket)")
}
