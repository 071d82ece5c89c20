package config

import (
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Store holds the live *Config behind an atomic pointer swap: treat every
// config read as a snapshot taken through a guard, never a raw reference
// held across an await. Get returns the pointer valid at the instant of
// the call, and callers must re-Get rather than cache it across a
// blocking operation. Reload, triggered by POST /admin/reload-config,
// replaces the pointer atomically; readers already holding an old
// snapshot finish their turn against it, never observing a half-applied
// config.
type Store struct {
	path string
	log  zerolog.Logger
	cur  atomic.Pointer[Config]
}

// NewStore loads path once and returns a Store serving it. CORS.Enabled is
// fixed for the process lifetime from this initial load: CORS is a
// restart-time setting, so Reload never changes it even if a later file
// on disk disagrees.
func NewStore(path string, log zerolog.Logger) (*Store, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	s := &Store{path: path, log: log}
	s.cur.Store(cfg)
	if !cfg.CORS.Enabled {
		log.Warn().Msg("cors disabled: all origins permitted; for development only")
	}
	return s, nil
}

// Get returns the currently active configuration snapshot. Safe for
// concurrent use; the returned *Config must be treated as immutable.
func (s *Store) Get() *Config {
	return s.cur.Load()
}

// Reload re-reads and re-validates the file at s.path and, on success,
// atomically swaps it in as the active snapshot. On failure the
// previously active config is left untouched and the error is returned,
// so a bad edit never takes a running process down.
func (s *Store) Reload() error {
	next, err := Load(s.path)
	if err != nil {
		s.log.Warn().Err(err).Str("path", s.path).Msg("config reload rejected")
		return err
	}

	prev := s.cur.Load()
	next.CORS = prev.CORS // restart-time setting; never hot-swapped

	s.cur.Store(next)
	s.log.Info().Str("path", s.path).Msg("config reloaded")
	return nil
}
