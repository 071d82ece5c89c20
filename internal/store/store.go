// Package store persists session metadata across restarts. It does not
// persist conversation content or dialog state in full: recovery is for
// observability and session lookup-by-id, not agent-state rehydration.
package store

import (
	"context"
	"time"

	"github.com/vaak-ai/voxengine/internal/dialog"
)

// Metadata is the persistable shape of a session. MemoryJSON is an
// opaque blob the caller produces and consumes; Store never parses it.
type Metadata struct {
	SessionID      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	ExpiresAt      time.Time
	Language       string
	Stage          dialog.Stage
	TurnCount      int
	MemoryJSON     []byte
	OwningInstance string
	Extra          map[string]string
}

// Store is the session-metadata persistence trait: store_metadata,
// get_metadata, delete_metadata, list_ids, touch, list_active_sessions,
// plus an is_distributed capability flag callers use to decide whether
// recovery-on-start is meaningful.
type Store interface {
	StoreMetadata(ctx context.Context, meta Metadata) error
	GetMetadata(ctx context.Context, sessionID string) (Metadata, error)
	DeleteMetadata(ctx context.Context, sessionID string) error
	ListIDs(ctx context.Context) ([]string, error)
	Touch(ctx context.Context, sessionID string, updatedAt, expiresAt time.Time) error
	ListActiveSessions(ctx context.Context, limit int) ([]Metadata, error)
	IsDistributed() bool
}
