// Package httpapi exposes the HTTP surface: session lifecycle, text chat,
// push-to-talk, tool invocation, WebRTC signaling passthrough, health and
// admin endpoints, all wired onto gin. The WebSocket upgrade itself lives
// in internal/transport/ws; this package only resolves the path session id
// and hands off to it.
package httpapi

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/vaak-ai/voxengine/internal/dialog"
	"github.com/vaak-ai/voxengine/internal/engine"
	"github.com/vaak-ai/voxengine/internal/memory"
	"github.com/vaak-ai/voxengine/internal/store"
	"github.com/vaak-ai/voxengine/internal/voxerr"
)

// SessionFactory builds the shared, effectively-immutable collaborators
// (intent classifier, slot extractor, goal table, memory sizing,
// summarizer) every new Session needs, so the manager itself stays
// ignorant of dialog/memory construction details.
type SessionFactory struct {
	Owner      string
	Classifier *dialog.IntentClassifier
	Extractor  *dialog.SlotExtractor
	Goals      dialog.GoalConfig
	MemoryCfg  memory.Config
	Summarizer memory.Summarizer
}

// New builds a fresh Session in the Greeting stage for language.
func (f *SessionFactory) New(language string) *engine.Session {
	tracker := dialog.NewTracker(f.Classifier, f.Extractor, f.Goals)
	mem := memory.New(f.MemoryCfg, f.Summarizer)
	return engine.NewSession(f.Owner, tracker, mem, language)
}

// SessionTTL is the default inactivity window after which Manager's
// cleanup sweep evicts a session.
const SessionTTL = time.Hour

// CleanupInterval is the default period between cleanup sweeps.
const CleanupInterval = 5 * time.Minute

// Manager owns every live session in this process and persists metadata
// (not full agent state) to store.Store so a distributed deployment can
// observe a session across instances and recover its bookkeeping after a
// restart. A session created on this instance always has a live
// *engine.Session here; a session id recovered from store.Store after a
// restart is metadata-only until its owning instance rejoins or the
// client starts a new session.
type Manager struct {
	factory      *SessionFactory
	store        store.Store
	owningID     string
	maxSessions  int
	instanceName string
	log          zerolog.Logger

	mu       sync.RWMutex
	sessions map[string]*engine.Session
}

// NewManager builds a Manager. maxSessions <= 0 means unbounded.
func NewManager(factory *SessionFactory, st store.Store, instanceName string, maxSessions int, log zerolog.Logger) *Manager {
	return &Manager{
		factory:      factory,
		store:        st,
		instanceName: instanceName,
		maxSessions:  maxSessions,
		log:          log,
		sessions:     make(map[string]*engine.Session),
	}
}

// Create starts a new session in language, persists its initial metadata,
// and returns it. Returns a Capacity error if maxSessions is already
// reached.
func (m *Manager) Create(ctx context.Context, language string) (*engine.Session, error) {
	m.mu.Lock()
	if m.maxSessions > 0 && len(m.sessions) >= m.maxSessions {
		m.mu.Unlock()
		return nil, voxerr.New(voxerr.Capacity, "httpapi.Manager.Create", nil)
	}
	sess := m.factory.New(language)
	m.sessions[sess.ID] = sess
	m.mu.Unlock()

	m.persist(ctx, sess)
	return sess, nil
}

// Get implements ws.SessionLookup: resolves a live session by id.
func (m *Manager) Get(sessionID string) (*engine.Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[sessionID]
	return sess, ok
}

// Delete closes sessionID (if live) and removes its metadata from the
// store.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	sess, ok := m.sessions[sessionID]
	if ok {
		delete(m.sessions, sessionID)
	}
	m.mu.Unlock()

	if ok {
		sess.Close()
	}
	if err := m.store.DeleteMetadata(ctx, sessionID); err != nil && !voxerr.Is(err, voxerr.NotFound) {
		return voxerr.New(voxerr.Internal, "httpapi.Manager.Delete", err)
	}
	return nil
}

// Touch updates sessionID's last-activity instant and re-persists its
// metadata. Called on every inbound frame so a session's idle clock
// reflects real traffic rather than just its creation time.
func (m *Manager) Touch(ctx context.Context, sess *engine.Session) {
	sess.Touch()
	now := time.Now()
	if err := m.store.Touch(ctx, sess.ID, now, now.Add(SessionTTL)); err != nil {
		m.log.Warn().Err(err).Str("session_id", sess.ID).Msg("session touch persist failed")
	}
}

func (m *Manager) persist(ctx context.Context, sess *engine.Session) {
	meta := store.Metadata{
		SessionID:      sess.ID,
		CreatedAt:      sess.CreatedAt,
		UpdatedAt:      sess.LastActivity(),
		ExpiresAt:      sess.CreatedAt.Add(SessionTTL),
		Language:       sess.Language,
		Stage:          sess.Stage(),
		TurnCount:      sess.TurnCount(),
		OwningInstance: m.instanceName,
	}
	if err := m.store.StoreMetadata(ctx, meta); err != nil {
		m.log.Warn().Err(err).Str("session_id", sess.ID).Msg("session metadata persist failed")
	}
}

// RunCleanup runs the periodic eviction sweep every interval until ctx is
// canceled: sessions whose last activity exceeds ttl are closed and
// dropped from the live map (but not removed from the store, so their
// metadata remains lookup-able and ListActiveSessions-visible until
// expires_at lapses).
func (m *Manager) RunCleanup(ctx context.Context, interval, ttl time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.sweep(ttl)
		}
	}
}

func (m *Manager) sweep(ttl time.Duration) {
	cutoff := time.Now().Add(-ttl)

	m.mu.Lock()
	var evicted []string
	for id, sess := range m.sessions {
		if sess.LastActivity().Before(cutoff) {
			sess.Close()
			delete(m.sessions, id)
			evicted = append(evicted, id)
		}
	}
	m.mu.Unlock()

	for _, id := range evicted {
		m.log.Info().Str("session_id", id).Msg("evicted idle session")
	}
}

// Count returns the number of sessions currently live in this instance.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Recover runs the store's startup recovery scan (observability only; see
// store.RecoverSessions) and logs the outcome.
func (m *Manager) Recover(ctx context.Context, limit int) {
	n, err := store.RecoverSessions(ctx, m.store, limit, m.log)
	if err != nil {
		m.log.Warn().Err(err).Msg("session recovery scan failed")
		return
	}
	if n > 0 {
		m.log.Info().Int("count", n).Msg("recovered session metadata from store")
	}
}
