package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func writeTempConfig(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestStore_ReloadSwapsSnapshot(t *testing.T) {
	path := writeTempConfig(t, "dense_top_k: 10\n")
	s, err := NewStore(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if got := s.Get().DenseTopK; got != 10 {
		t.Fatalf("DenseTopK = %d, want 10", got)
	}

	if err := os.WriteFile(path, []byte("dense_top_k: 99\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := s.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if got := s.Get().DenseTopK; got != 99 {
		t.Fatalf("after reload DenseTopK = %d, want 99", got)
	}
}

func TestStore_ReloadRejectsInvalidAndKeepsPrevious(t *testing.T) {
	path := writeTempConfig(t, "dense_top_k: 10\n")
	s, err := NewStore(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	if err := os.WriteFile(path, []byte("dense_weight: 7.0\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := s.Reload(); err == nil {
		t.Fatal("expected Reload to reject an out-of-range dense_weight")
	}
	if got := s.Get().DenseTopK; got != 10 {
		t.Fatalf("DenseTopK after rejected reload = %d, want unchanged 10", got)
	}
}

func TestStore_ReloadNeverChangesCORS(t *testing.T) {
	path := writeTempConfig(t, "cors:\n  enabled: true\n  allow_origins: [\"https://a.example\"]\n")
	s, err := NewStore(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	if err := os.WriteFile(path, []byte("cors:\n  enabled: false\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := s.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if !s.Get().CORS.Enabled {
		t.Error("CORS.Enabled changed on reload; it is restart-time only")
	}
}
