package memory

import (
	"context"
	"sync"

	"matheval-service/internal/domain"
)

// RowStore is an in-memory append-only implementation of app.RowStore.
// Useful when no postgres is configured, and as the unit-test substrate.
type RowStore struct {
	mu   sync.RWMutex
	rows []domain.ResultRow
}

func NewRowStore() *RowStore {
	return &RowStore{}
}

func (s *RowStore) Append(_ context.Context, rows []domain.ResultRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, rows...)
	return nil
}

func (s *RowStore) ReadAll(_ context.Context) ([]domain.ResultRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ResultRow, len(s.rows))
	copy(out, s.rows)
	return out, nil
}
