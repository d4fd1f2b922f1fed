package bolt

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/taskhive/backend/domain"
	"github.com/taskhive/backend/internal/infrastructure/boltstore"
)

func newTestStore(t *testing.T) *boltstore.Store {
	t.Helper()
	store, err := boltstore.Open(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSessionSaveGetDelete(t *testing.T) {
	repo := NewSessionRepository(newTestStore(t), time.Hour)
	ctx := context.Background()

	session := &domain.Session{
		ID:        "sess-1",
		UserID:    "user-1",
		Username:  "ann",
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	}

	if err := repo.Save(ctx, session); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := repo.Get(ctx, "sess-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loaded.UserID != "user-1" || loaded.Username != "ann" {
		t.Errorf("loaded session = %+v", loaded)
	}

	if err := repo.Delete(ctx, "sess-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.Get(ctx, "sess-1"); !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		t.Errorf("expected not found after delete, got %v", err)
	}
}

func TestSessionGetEvictsExpired(t *testing.T) {
	repo := NewSessionRepository(newTestStore(t), time.Hour)
	ctx := context.Background()

	// expired, but ExpiresAt is after CreatedAt so Save keeps it as-is
	expired := &domain.Session{
		ID:        "stale",
		UserID:    "user-1",
		CreatedAt: time.Now().Add(-2 * time.Hour),
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	if err := repo.Save(ctx, expired); err != nil {
		t.Fatalf("save: %v", err)
	}

	if _, err := repo.Get(ctx, "stale"); !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		t.Fatalf("expected expired session to be not found, got %v", err)
	}
	// lazy eviction removed the record, a second Get still misses
	if _, err := repo.Get(ctx, "stale"); !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		t.Fatalf("expected evicted session to stay gone, got %v", err)
	}
}

func TestSessionSaveRejectsEmptyID(t *testing.T) {
	repo := NewSessionRepository(newTestStore(t), time.Hour)
	if err := repo.Save(context.Background(), &domain.Session{}); err == nil {
		t.Fatal("expected error for session without id")
	}
}

func TestFlashPushPop(t *testing.T) {
	repo := NewFlashRepository(newTestStore(t))
	ctx := context.Background()

	if err := repo.Push(ctx, "sess-1", "Task added"); err != nil {
		t.Fatalf("push: %v", err)
	}
	if err := repo.Push(ctx, "sess-1", "Task completed"); err != nil {
		t.Fatalf("push: %v", err)
	}
	if err := repo.Push(ctx, "sess-2", "other session"); err != nil {
		t.Fatalf("push: %v", err)
	}

	messages, err := repo.Pop(ctx, "sess-1")
	if err != nil {
		t.Fatalf("pop: %v", err)
	}
	if len(messages) != 2 || messages[0] != "Task added" || messages[1] != "Task completed" {
		t.Errorf("messages = %v", messages)
	}

	// flash is one-shot
	messages, err = repo.Pop(ctx, "sess-1")
	if err != nil {
		t.Fatalf("second pop: %v", err)
	}
	if len(messages) != 0 {
		t.Errorf("expected drained flash, got %v", messages)
	}

	// other sessions unaffected
	messages, err = repo.Pop(ctx, "sess-2")
	if err != nil {
		t.Fatalf("pop other: %v", err)
	}
	if len(messages) != 1 || messages[0] != "other session" {
		t.Errorf("messages = %v", messages)
	}
}
