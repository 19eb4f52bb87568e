// Package store provides the in-memory testimony table adapter.
// The table is loaded once at startup and never mutated, so reads are
// lock-free and safe for concurrent requests.
package store

import (
	"context"

	"github.com/jsamuelsen/witness-archive/internal/domain"
	"github.com/jsamuelsen/witness-archive/internal/ports"
)

// MemStore holds the loaded testimony table.
// Implements ports.TestimonyRepository and ports.HealthChecker.
type MemStore struct {
	rows []domain.Testimony
	byID map[string]int
}

// New creates a store over the loaded rows. The slice is owned by the store
// after this call and must not be modified by the caller.
func New(rows []domain.Testimony) *MemStore {
	byID := make(map[string]int, len(rows))
	for i, row := range rows {
		byID[row.ID] = i
	}

	return &MemStore{rows: rows, byID: byID}
}

// List returns the full table in original load order.
// Callers must treat the returned slice as read-only.
func (s *MemStore) List(_ context.Context) ([]domain.Testimony, error) {
	return s.rows, nil
}

// GetByID retrieves a single testimony by its identifier.
func (s *MemStore) GetByID(_ context.Context, id string) (*domain.Testimony, error) {
	i, ok := s.byID[id]
	if !ok {
		return nil, domain.NewNotFoundError("testimony", id)
	}

	row := s.rows[i]

	return &row, nil
}

// Len returns the number of loaded rows.
func (s *MemStore) Len() int {
	return len(s.rows)
}

// Name implements ports.HealthChecker.
func (s *MemStore) Name() string {
	return "dataset"
}

// Check implements ports.HealthChecker. The store is healthy whenever the
// table is non-empty; an empty table means the load never completed.
func (s *MemStore) Check(_ context.Context) error {
	if len(s.rows) == 0 {
		return domain.NewLoadError("memory", "table is empty", nil)
	}

	return nil
}

var (
	_ ports.TestimonyRepository = (*MemStore)(nil)
	_ ports.HealthChecker       = (*MemStore)(nil)
)
