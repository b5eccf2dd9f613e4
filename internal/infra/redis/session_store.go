package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"matheval-service/internal/domain"
)

// SessionStore keeps sessions as JSON blobs in Redis, one key per visitor,
// expiring after the configured TTL. Put refreshes the TTL so active
// sessions stay alive.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func (s *SessionStore) Get(ctx context.Context, id string) (domain.Session, error) {
	raw, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("get session: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return domain.Session{}, fmt.Errorf("unmarshal session: %w", err)
	}
	return session, nil
}

func (s *SessionStore) Put(ctx context.Context, id string, session domain.Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.client.Set(ctx, s.key(id), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("put session: %w", err)
	}
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *SessionStore) key(id string) string {
	return "quiz:session:" + id
}
