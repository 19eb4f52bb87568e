// Package ports defines interfaces for external dependencies.
// Ports are contracts that adapters implement, allowing the application layer
// to depend on abstractions rather than concrete implementations.
//
// Port Design Principles:
//   - Context as first parameter (always) for cancellation and deadlines
//   - Return domain types, never external DTOs or infrastructure types
//   - Error returns use domain error types (ErrNotFound, ErrLoad, etc.)
//   - Keep interfaces small and focused (Interface Segregation Principle)
package ports

import (
	"context"

	"github.com/jsamuelsen/witness-archive/internal/domain"
)

// TestimonyRepository provides read access to the loaded testimony table.
// The table is immutable after load, so implementations need no write methods
// and returned slices must not be mutated by callers.
type TestimonyRepository interface {
	// List returns the full table in original load order.
	List(ctx context.Context) ([]domain.Testimony, error)

	// GetByID retrieves a single testimony.
	// Returns domain.ErrNotFound if no row has the given ID.
	GetByID(ctx context.Context, id string) (*domain.Testimony, error)
}

// DatasetFetcher retrieves raw dataset bytes from a remote source.
// Used when the dataset is configured with a URL instead of a local path.
type DatasetFetcher interface {
	// FetchDataset downloads the dataset contents.
	// Returns domain.ErrUnavailable if the source is unreachable.
	FetchDataset(ctx context.Context) ([]byte, error)
}
