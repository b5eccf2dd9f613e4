package memory

import (
	"context"
	"errors"
	"testing"

	"matheval-service/internal/domain"
)

func TestSessionStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()

	if _, err := store.Get(ctx, "s1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected not-found for fresh store, got %v", err)
	}

	session := domain.Session{Student: &domain.StudentIdentity{Name: "Alice", Roll: "7", SchoolCode: "S1"}}
	if err := store.Put(ctx, "s1", session); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Student == nil || got.Student.Name != "Alice" {
		t.Fatalf("expected stored student, got %+v", got)
	}

	if err := store.Delete(ctx, "s1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, "s1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected not-found after delete, got %v", err)
	}
}
