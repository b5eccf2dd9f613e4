package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"matheval-service/internal/domain"
)

func TestSessionStoreRoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewSessionStore(client, time.Minute)

	session := domain.Session{
		Student: &domain.StudentIdentity{Name: "Alice", Roll: "7", SchoolCode: "S1"},
		Sample: domain.QuizSample{
			"algebra": {{Domain: "algebra", Text: "Solve for x: x + 3 = 11", Answer: "8"}},
		},
	}
	if err := store.Put(ctx, "s1", session); err != nil {
		t.Fatalf("put: %v", err)
	}
	if !mr.Exists("quiz:session:s1") {
		t.Fatalf("expected redis key to be set")
	}
	if mr.TTL("quiz:session:s1") <= 0 {
		t.Fatalf("expected TTL on session key")
	}

	got, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Student == nil || got.Student.Name != "Alice" {
		t.Fatalf("student lost in round trip: %+v", got)
	}
	if len(got.Sample["algebra"]) != 1 || got.Sample["algebra"][0].Answer != "8" {
		t.Fatalf("sample lost in round trip: %+v", got.Sample)
	}
}

func TestSessionStoreMissAndDelete(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewSessionStore(client, time.Minute)

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}

	if err := store.Put(ctx, "s1", domain.Session{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.Delete(ctx, "s1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if mr.Exists("quiz:session:s1") {
		t.Fatalf("expected key removed")
	}
}

func TestSessionExpiresAfterTTL(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewSessionStore(client, time.Minute)

	if err := store.Put(ctx, "s1", domain.Session{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	mr.FastForward(2 * time.Minute)

	if _, err := store.Get(ctx, "s1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected session to expire, got %v", err)
	}
}
