package httpapi

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/vaak-ai/voxengine/internal/dialog"
	"github.com/vaak-ai/voxengine/internal/memory"
	"github.com/vaak-ai/voxengine/internal/store"
)

func testFactory() *SessionFactory {
	return &SessionFactory{
		Owner:      "test-owner",
		Classifier: dialog.NewIntentClassifier(nil),
		Extractor:  dialog.NewSlotExtractor(),
		Goals:      dialog.GoalConfig{},
		MemoryCfg:  memory.DefaultConfig(),
	}
}

func TestManager_CreateGetDelete(t *testing.T) {
	mgr := NewManager(testFactory(), store.NewMemStore(), "instance-1", 0, zerolog.Nop())
	ctx := context.Background()

	sess, err := mgr.Create(ctx, "en")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if sess.Language != "en" {
		t.Errorf("Language = %q, want en", sess.Language)
	}
	if mgr.Count() != 1 {
		t.Errorf("Count = %d, want 1", mgr.Count())
	}

	got, ok := mgr.Get(sess.ID)
	if !ok || got.ID != sess.ID {
		t.Fatalf("Get(%s) = %v, %v", sess.ID, got, ok)
	}

	if err := mgr.Delete(ctx, sess.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := mgr.Get(sess.ID); ok {
		t.Error("session still live after Delete")
	}
	if mgr.Count() != 0 {
		t.Errorf("Count after Delete = %d, want 0", mgr.Count())
	}
}

func TestManager_CreateRespectsCapacity(t *testing.T) {
	mgr := NewManager(testFactory(), store.NewMemStore(), "instance-1", 1, zerolog.Nop())
	ctx := context.Background()

	if _, err := mgr.Create(ctx, "en"); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	if _, err := mgr.Create(ctx, "en"); err == nil {
		t.Fatal("expected second Create to fail at capacity")
	}
}

func TestManager_TouchPersistsMetadata(t *testing.T) {
	st := store.NewMemStore()
	mgr := NewManager(testFactory(), st, "instance-1", 0, zerolog.Nop())
	ctx := context.Background()

	sess, err := mgr.Create(ctx, "en")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	before := sess.LastActivity()
	time.Sleep(time.Millisecond)
	mgr.Touch(ctx, sess)

	if !sess.LastActivity().After(before) {
		t.Error("Touch did not advance LastActivity")
	}

	meta, err := st.GetMetadata(ctx, sess.ID)
	if err != nil {
		t.Fatalf("GetMetadata: %v", err)
	}
	if meta.SessionID != sess.ID {
		t.Errorf("meta.SessionID = %q, want %q", meta.SessionID, sess.ID)
	}
}

func TestManager_SweepEvictsIdleSessions(t *testing.T) {
	mgr := NewManager(testFactory(), store.NewMemStore(), "instance-1", 0, zerolog.Nop())
	ctx := context.Background()

	sess, err := mgr.Create(ctx, "en")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	mgr.sweep(time.Hour)
	if _, ok := mgr.Get(sess.ID); !ok {
		t.Fatal("sweep with a generous ttl evicted a fresh session unexpectedly")
	}

	mgr.sweep(0)
	if _, ok := mgr.Get(sess.ID); ok {
		t.Error("sweep with zero ttl did not evict an already-stale session")
	}
}
