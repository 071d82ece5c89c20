package webrtc

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pion/webrtc/v4"
)

type offerRequest struct {
	SDP string `json:"sdp"`
}

type offerResponse struct {
	Type      string `json:"type"`
	SDP       string `json:"sdp"`
	SessionID string `json:"session_id"`
}

type iceRequest struct {
	Candidate     string  `json:"candidate"`
	SDPMid        *string `json:"sdpMid,omitempty"`
	SDPMLineIndex *uint16 `json:"sdpMLineIndex,omitempty"`
}

type candidateWire struct {
	Candidate     string  `json:"candidate"`
	SDPMid        *string `json:"sdpMid,omitempty"`
	SDPMLineIndex *uint16 `json:"sdpMLineIndex,omitempty"`
}

type candidatesResponse struct {
	Candidates []candidateWire `json:"candidates"`
}

type statusResponse struct {
	State string `json:"state"`
}

type restartResponse struct {
	Type string `json:"type"`
	SDP  string `json:"sdp"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// HandleOffer negotiates a new peer connection for sessionID from a
// client-supplied SDP offer, returning an SDP answer. Any existing peer
// connection for sessionID is replaced.
func (m *Manager) HandleOffer(w http.ResponseWriter, r *http.Request, sessionID string) {
	if _, ok := m.sessions.Get(sessionID); !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	var req offerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SDP == "" {
		writeError(w, http.StatusBadRequest, "missing or malformed sdp")
		return
	}

	pc, err := m.api.NewPeerConnection(webrtc.Configuration{ICEServers: m.iceServers})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create peer connection")
		return
	}

	sess := &peerSession{id: sessionID, pc: pc}
	m.attachHandlers(sess)

	if err := pc.SetRemoteDescription(webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: req.SDP}); err != nil {
		_ = pc.Close()
		writeError(w, http.StatusBadRequest, "invalid offer")
		return
	}

	answer, err := pc.CreateAnswer(nil)
	if err != nil {
		_ = pc.Close()
		writeError(w, http.StatusInternalServerError, "failed to create answer")
		return
	}
	if err := pc.SetLocalDescription(answer); err != nil {
		_ = pc.Close()
		writeError(w, http.StatusInternalServerError, "failed to set local description")
		return
	}

	m.setSession(sessionID, sess)

	writeJSON(w, http.StatusOK, offerResponse{Type: "answer", SDP: answer.SDP, SessionID: sessionID})
}

// HandleICE adds a trickled remote ICE candidate to sessionID's peer
// connection.
func (m *Manager) HandleICE(w http.ResponseWriter, r *http.Request, sessionID string) {
	sess, ok := m.getSession(sessionID)
	if !ok {
		writeError(w, http.StatusNotFound, "no active peer connection for session")
		return
	}

	var req iceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Candidate == "" {
		writeError(w, http.StatusBadRequest, "missing or malformed candidate")
		return
	}

	init := webrtc.ICECandidateInit{Candidate: req.Candidate, SDPMid: req.SDPMid, SDPMLineIndex: req.SDPMLineIndex}
	if err := sess.pc.AddICECandidate(init); err != nil {
		writeError(w, http.StatusBadRequest, "invalid ice candidate")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleCandidates drains and returns the locally gathered ICE
// candidates not yet delivered to the client.
func (m *Manager) HandleCandidates(w http.ResponseWriter, r *http.Request, sessionID string) {
	sess, ok := m.getSession(sessionID)
	if !ok {
		writeError(w, http.StatusNotFound, "no active peer connection for session")
		return
	}

	sess.mu.Lock()
	pending := sess.candidates
	sess.candidates = nil
	sess.mu.Unlock()

	wire := make([]candidateWire, 0, len(pending))
	for _, c := range pending {
		wire = append(wire, candidateWire{Candidate: c.Candidate, SDPMid: c.SDPMid, SDPMLineIndex: c.SDPMLineIndex})
	}
	writeJSON(w, http.StatusOK, candidatesResponse{Candidates: wire})
}

// HandleStatus reports sessionID's current ICE connection state.
func (m *Manager) HandleStatus(w http.ResponseWriter, r *http.Request, sessionID string) {
	sess, ok := m.getSession(sessionID)
	if !ok {
		writeJSON(w, http.StatusOK, statusResponse{State: "absent"})
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{State: sess.pc.ICEConnectionState().String()})
}

// HandleRestart issues a new ICE-restart offer for sessionID; the client
// must answer it to resume media flow (e.g. after a network change).
func (m *Manager) HandleRestart(w http.ResponseWriter, r *http.Request, sessionID string) {
	sess, ok := m.getSession(sessionID)
	if !ok {
		writeError(w, http.StatusNotFound, "no active peer connection for session")
		return
	}

	offer, err := sess.pc.CreateOffer(&webrtc.OfferOptions{ICERestart: true})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create restart offer")
		return
	}
	if err := sess.pc.SetLocalDescription(offer); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to set local description")
		return
	}

	writeJSON(w, http.StatusOK, restartResponse{Type: "offer", SDP: offer.SDP})
}

// attachHandlers wires ICE candidate gathering and inbound audio track
// handling onto sess.pc. Must be called before SetRemoteDescription so no
// early candidates or tracks are missed.
func (m *Manager) attachHandlers(sess *peerSession) {
	sess.pc.OnICECandidate(func(c *webrtc.ICECandidate) {
		if c == nil {
			return
		}
		init := c.ToJSON()
		sess.mu.Lock()
		sess.candidates = append(sess.candidates, init)
		sess.mu.Unlock()
	})

	sess.pc.OnTrack(func(track *webrtc.TrackRemote, _ *webrtc.RTPReceiver) {
		go m.readTrack(context.Background(), sess, track)
	})

	sess.pc.OnConnectionStateChange(func(state webrtc.PeerConnectionState) {
		if state == webrtc.PeerConnectionStateFailed || state == webrtc.PeerConnectionStateClosed {
			m.log.Info().Str("session_id", sess.id).Str("state", state.String()).Msg("webrtc peer connection ended")
		}
	})
}
