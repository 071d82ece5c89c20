package engine

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/vaak-ai/voxengine/internal/dialog"
	"github.com/vaak-ai/voxengine/internal/memory"
	"github.com/vaak-ai/voxengine/internal/turn"
)

// Session is one conversation's live state: id, creation instant,
// last-activity instant, active flag, owning agent, optional bound
// transport, stage. Generalized from a single-shot chat builder into a
// long-lived, turn-serialized object: a chat session's message slice
// becomes this type's history, and its builder methods become the
// per-turn mutations the engine performs.
type Session struct {
	ID          string
	CreatedAt   time.Time
	OwningAgent string
	Transport   string // bound transport identifier (connection/peer id); empty if none
	Language    string

	Tracker *dialog.Tracker
	Memory  *memory.ConversationMemory

	active       atomic.Bool
	lastActivity atomic.Int64 // unix nanoseconds

	// turnMu is the implicit per-turn lock: held from "add user turn"
	// through "add assistant turn completes or errors". A session
	// processes at most one turn at a time.
	turnMu sync.Mutex

	// mu guards history, independent of turnMu, so read-only accessors
	// (TurnCount, history snapshots for logging) never block behind a
	// turn in flight.
	mu      sync.RWMutex
	history []turn.Turn
}

// NewSession starts a session owned by ownerAgent over tracker and mem,
// active, stamped with the current time, and in the tracker's starting
// stage (Greeting).
func NewSession(ownerAgent string, tracker *dialog.Tracker, mem *memory.ConversationMemory, language string) *Session {
	s := &Session{
		ID:          uuid.NewString(),
		CreatedAt:   time.Now(),
		OwningAgent: ownerAgent,
		Language:    language,
		Tracker:     tracker,
		Memory:      mem,
	}
	s.active.Store(true)
	s.Touch()
	return s
}

// Touch updates the session's last-activity instant. The engine touches
// on every inbound frame.
func (s *Session) Touch() { s.lastActivity.Store(time.Now().UnixNano()) }

// LastActivity returns the last-activity instant.
func (s *Session) LastActivity() time.Time { return time.Unix(0, s.lastActivity.Load()) }

// Active reports whether the session is still open.
func (s *Session) Active() bool { return s.active.Load() }

// Close sets the active flag to false atomically; in-flight tasks
// observe this on their next suspension point and exit.
func (s *Session) Close() { s.active.Store(false) }

// Stage returns the session's current conversation stage.
func (s *Session) Stage() dialog.Stage { return s.Tracker.Stage() }

// TurnCount reports count(Turn where role in {user, assistant}).
func (s *Session) TurnCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return turn.CountByRoles(s.history, turn.RoleUser, turn.RoleAssistant)
}

// History returns a snapshot copy of the session's turn history.
func (s *Session) History() []turn.Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]turn.Turn, len(s.history))
	copy(out, s.history)
	return out
}

func (s *Session) lockTurn()   { s.turnMu.Lock() }
func (s *Session) unlockTurn() { s.turnMu.Unlock() }

func (s *Session) appendTurn(t turn.Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, t)
}
