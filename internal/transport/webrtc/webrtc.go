// Package webrtc implements the WebRTC transport binding: HTTP signaling
// for SDP offer/answer exchange and trickle ICE, and a media path that
// attaches to each negotiated peer connection's inbound audio track,
// downsamples it from the 48 kHz WebRTC clock rate to the 16 kHz the
// speech pipeline expects, and feeds the result through the same
// transcription boundary the WebSocket transport uses. Pipeline events
// (transcripts, turn status) are forwarded to the client's WebSocket
// connection when one is attached via Hub, or logged otherwise.
//
// One Manager serves every session; per-negotiation state (the pion
// PeerConnection, gathered-but-undelivered ICE candidates, the
// downsampler's carry buffer) lives on a per-session peerSession.
package webrtc

import (
	"sync"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog"

	"github.com/vaak-ai/voxengine/internal/engine"
	"github.com/vaak-ai/voxengine/internal/transport/ws"
)

// inputSampleRate is the clock rate negotiated for the inbound audio
// track. outputSampleRate is the rate the transcription boundary and the
// rest of the pipeline expect; the two are fixed, not configurable, since
// the downsample ratio (3:1) is derived from them.
const (
	inputSampleRate  = 48000
	outputSampleRate = 16000

	// l16PayloadType is the dynamic RTP payload type this package
	// negotiates for raw 16-bit PCM audio, avoiding an Opus codec
	// dependency: the client and this server agree to exchange
	// uncompressed audio/L16 rather than compressed frames, since the
	// pipeline works directly on PCM samples.
	l16PayloadType = 111
)

// Option configures a Manager.
type Option func(*Manager)

// WithSTUNServers overrides the default STUN server list used for ICE
// gathering on every negotiated peer connection.
func WithSTUNServers(urls ...string) Option {
	return func(m *Manager) { m.iceServers = []webrtc.ICEServer{{URLs: urls}} }
}

// Manager negotiates and runs WebRTC peer connections, one per session,
// and bridges their audio to internal/engine.
type Manager struct {
	api        *webrtc.API
	iceServers []webrtc.ICEServer

	sessions    ws.SessionLookup
	engine      *engine.Engine
	transcriber ws.Transcriber
	hub         *ws.Hub
	log         zerolog.Logger

	mu    sync.RWMutex
	peers map[string]*peerSession
}

// New builds a Manager. transcriber may be nil, in which case the media
// path drops resampled audio without transcribing it. hub may be nil,
// in which case pipeline events are only logged.
func New(sessions ws.SessionLookup, eng *engine.Engine, transcriber ws.Transcriber, hub *ws.Hub, log zerolog.Logger, opts ...Option) (*Manager, error) {
	mediaEngine, err := newMediaEngine()
	if err != nil {
		return nil, err
	}

	m := &Manager{
		api:         webrtc.NewAPI(webrtc.WithMediaEngine(mediaEngine)),
		iceServers:  []webrtc.ICEServer{{URLs: []string{"stun:stun.l.google.com:19302"}}},
		sessions:    sessions,
		engine:      eng,
		transcriber: transcriber,
		hub:         hub,
		log:         log,
		peers:       make(map[string]*peerSession),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// newMediaEngine registers a single audio codec, raw 16-bit PCM at the
// WebRTC-side clock rate, so no decoder is needed before this package's
// own downsampling step runs on the RTP payload directly.
func newMediaEngine() (*webrtc.MediaEngine, error) {
	m := &webrtc.MediaEngine{}
	err := m.RegisterCodec(webrtc.RTPCodecParameters{
		RTPCodecCapability: webrtc.RTPCodecCapability{
			MimeType:  "audio/L16",
			ClockRate: inputSampleRate,
			Channels:  1,
		},
		PayloadType: l16PayloadType,
	}, webrtc.RTPCodecTypeAudio)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// peerSession holds the runtime state for one session's negotiated
// WebRTC connection.
type peerSession struct {
	id string
	pc *webrtc.PeerConnection

	mu         sync.Mutex
	candidates []webrtc.ICECandidateInit // gathered locally, awaiting GET /candidates
	down       downsampler
}

func (m *Manager) getSession(sessionID string) (*peerSession, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.peers[sessionID]
	return s, ok
}

func (m *Manager) setSession(sessionID string, s *peerSession) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.peers[sessionID]; ok {
		_ = old.pc.Close()
	}
	m.peers[sessionID] = s
}

// Close tears down every negotiated peer connection.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.peers {
		_ = s.pc.Close()
		delete(m.peers, id)
	}
	return nil
}
