package store

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/vaak-ai/voxengine/internal/voxerr"
)

// RecoverSessions runs the startup recovery scan: on a distributed
// store, enumerate up to limit active sessions and log each one for
// observability. It returns the count recovered. On a non-distributed
// store it is a no-op returning 0, since there is nothing to recover
// after a restart.
//
// Full agent-state rehydration is deliberately not performed here: the
// recovered Metadata only makes prior sessions observable and
// look-up-able by id again.
func RecoverSessions(ctx context.Context, s Store, limit int, log zerolog.Logger) (int, error) {
	if !s.IsDistributed() {
		return 0, nil
	}

	sessions, err := s.ListActiveSessions(ctx, limit)
	if err != nil {
		return 0, voxerr.New(voxerr.BackendUnavailable, "store.RecoverSessions", err)
	}

	now := time.Now()
	for _, meta := range sessions {
		log.Info().
			Str("session_id", meta.SessionID).
			Str("stage", string(meta.Stage)).
			Int("turn_count", meta.TurnCount).
			Dur("age", now.Sub(meta.CreatedAt)).
			Str("owning_instance", meta.OwningInstance).
			Msg("recovered session")
	}

	return len(sessions), nil
}
