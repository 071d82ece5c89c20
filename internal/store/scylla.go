package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gocql/gocql"

	"github.com/vaak-ai/voxengine/internal/dialog"
	"github.com/vaak-ai/voxengine/internal/voxerr"
)

// defaultTable matches the persisted row shape: (session_id PK,
// created_at, updated_at, expires_at, language, conversation_stage,
// turn_count, memory_json, metadata_json).
const (
	defaultTable = "session_metadata"

	// unboundedScanCap bounds ListIDs per the design note that, absent a
	// secondary index on session_id, an unindexed full scan must stay
	// bounded rather than expose true unbounded listing.
	unboundedScanCap = 1000
)

// querier is the subset of *gocql.Session ScyllaStore depends on, so
// tests can substitute a fake without a live cluster.
type querier interface {
	Query(stmt string, values ...any) *gocql.Query
}

var _ Store = (*ScyllaStore)(nil)

// ScyllaStore is the distributed implementation, backed by a ScyllaDB
// (Cassandra wire-compatible) cluster via gocql. session_id is
// the partition key; there is no secondary index, so ListIDs performs a
// bounded scan and ListActiveSessions a bounded, filtered scan rather
// than unbounded table reads.
type ScyllaStore struct {
	session querier
	table   string
}

// NewScyllaStore wraps an already-connected gocql session. table defaults
// to "session_metadata" when empty.
func NewScyllaStore(session *gocql.Session, table string) *ScyllaStore {
	if table == "" {
		table = defaultTable
	}
	return &ScyllaStore{session: session, table: table}
}

func (s *ScyllaStore) StoreMetadata(ctx context.Context, meta Metadata) error {
	metaJSON, err := marshalMetadataJSON(meta)
	if err != nil {
		return voxerr.New(voxerr.Internal, "store.StoreMetadata", err)
	}

	stmt := `INSERT INTO ` + s.table + ` (session_id, created_at, updated_at, expires_at,
		language, conversation_stage, turn_count, memory_json, metadata_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	q := s.session.Query(stmt,
		meta.SessionID, meta.CreatedAt, meta.UpdatedAt, meta.ExpiresAt,
		meta.Language, string(meta.Stage), meta.TurnCount, meta.MemoryJSON, metaJSON,
	).WithContext(ctx)

	if err := q.Exec(); err != nil {
		return voxerr.New(voxerr.BackendUnavailable, "store.StoreMetadata", err)
	}
	return nil
}

func (s *ScyllaStore) GetMetadata(ctx context.Context, sessionID string) (Metadata, error) {
	stmt := `SELECT session_id, created_at, updated_at, expires_at, language,
		conversation_stage, turn_count, memory_json, metadata_json
		FROM ` + s.table + ` WHERE session_id = ?`

	var row scyllaRow
	err := s.session.Query(stmt, sessionID).WithContext(ctx).Scan(
		&row.sessionID, &row.createdAt, &row.updatedAt, &row.expiresAt, &row.language,
		&row.stage, &row.turnCount, &row.memoryJSON, &row.metadataJSON,
	)
	if err == gocql.ErrNotFound {
		return Metadata{}, voxerr.New(voxerr.NotFound, "store.GetMetadata", err)
	}
	if err != nil {
		return Metadata{}, voxerr.New(voxerr.BackendUnavailable, "store.GetMetadata", err)
	}
	return row.toMetadata()
}

func (s *ScyllaStore) DeleteMetadata(ctx context.Context, sessionID string) error {
	stmt := `DELETE FROM ` + s.table + ` WHERE session_id = ?`
	if err := s.session.Query(stmt, sessionID).WithContext(ctx).Exec(); err != nil {
		return voxerr.New(voxerr.BackendUnavailable, "store.DeleteMetadata", err)
	}
	return nil
}

func (s *ScyllaStore) Touch(ctx context.Context, sessionID string, updatedAt, expiresAt time.Time) error {
	stmt := `UPDATE ` + s.table + ` SET updated_at = ?, expires_at = ? WHERE session_id = ?`
	if err := s.session.Query(stmt, updatedAt, expiresAt, sessionID).WithContext(ctx).Exec(); err != nil {
		return voxerr.New(voxerr.BackendUnavailable, "store.Touch", err)
	}
	return nil
}

// ListIDs performs a bounded, unfiltered scan capped at unboundedScanCap.
// session_id carries no secondary index, so this is the best an unindexed
// cluster can offer without ALLOW FILTERING on an unbounded result set.
func (s *ScyllaStore) ListIDs(ctx context.Context) ([]string, error) {
	stmt := `SELECT session_id FROM ` + s.table + ` LIMIT ?`
	iter := s.session.Query(stmt, unboundedScanCap).WithContext(ctx).Iter()

	var ids []string
	var id string
	for iter.Scan(&id) {
		ids = append(ids, id)
	}
	if err := iter.Close(); err != nil {
		return nil, voxerr.New(voxerr.BackendUnavailable, "store.ListIDs", err)
	}
	return ids, nil
}

// ListActiveSessions enumerates up to limit rows with expires_at > now,
// for the startup recovery scan. expires_at is not a partition or
// clustering key, so the query requires ALLOW FILTERING; the bound on
// limit keeps this a safe, admin-path-only scan rather than a hot path.
func (s *ScyllaStore) ListActiveSessions(ctx context.Context, limit int) ([]Metadata, error) {
	if limit <= 0 {
		return nil, nil
	}

	stmt := `SELECT session_id, created_at, updated_at, expires_at, language,
		conversation_stage, turn_count, memory_json, metadata_json
		FROM ` + s.table + ` WHERE expires_at > ? LIMIT ? ALLOW FILTERING`

	iter := s.session.Query(stmt, time.Now(), limit).WithContext(ctx).Iter()

	var results []Metadata
	var row scyllaRow
	for iter.Scan(&row.sessionID, &row.createdAt, &row.updatedAt, &row.expiresAt,
		&row.language, &row.stage, &row.turnCount, &row.memoryJSON, &row.metadataJSON) {
		meta, err := row.toMetadata()
		if err != nil {
			continue
		}
		results = append(results, meta)
	}
	if err := iter.Close(); err != nil {
		return nil, voxerr.New(voxerr.BackendUnavailable, "store.ListActiveSessions", err)
	}
	return results, nil
}

func (s *ScyllaStore) IsDistributed() bool { return true }

// scyllaRow mirrors the wire shape returned by a SELECT over the table,
// kept separate from Metadata so marshaling concerns (the metadata_json
// envelope) don't leak into the public type.
type scyllaRow struct {
	sessionID    string
	createdAt    time.Time
	updatedAt    time.Time
	expiresAt    time.Time
	language     string
	stage        string
	turnCount    int
	memoryJSON   []byte
	metadataJSON []byte
}

func (r scyllaRow) toMetadata() (Metadata, error) {
	owningInstance, extra, err := unmarshalMetadataJSON(r.metadataJSON)
	if err != nil {
		return Metadata{}, voxerr.New(voxerr.Internal, "store.toMetadata", err)
	}
	return Metadata{
		SessionID:      r.sessionID,
		CreatedAt:      r.createdAt,
		UpdatedAt:      r.updatedAt,
		ExpiresAt:      r.expiresAt,
		Language:       r.language,
		Stage:          dialog.Stage(r.stage),
		TurnCount:      r.turnCount,
		MemoryJSON:     r.memoryJSON,
		OwningInstance: owningInstance,
		Extra:          extra,
	}, nil
}

// metadataEnvelope is the free-form metadata_json column shape: it
// must include the owning instance id for affinity.
type metadataEnvelope struct {
	OwningInstance string            `json:"owning_instance_id"`
	Extra          map[string]string `json:"extra,omitempty"`
}

func marshalMetadataJSON(meta Metadata) ([]byte, error) {
	return json.Marshal(metadataEnvelope{
		OwningInstance: meta.OwningInstance,
		Extra:          meta.Extra,
	})
}

func unmarshalMetadataJSON(raw []byte) (string, map[string]string, error) {
	if len(raw) == 0 {
		return "", nil, nil
	}
	var env metadataEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", nil, err
	}
	return env.OwningInstance, env.Extra, nil
}
