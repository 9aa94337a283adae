package driven

import (
	"context"

	"github.com/custodia-labs/adpush/internal/core/domain"
)

// RunStore persists publish run history.
type RunStore interface {
	// Save stores or updates a run.
	Save(ctx context.Context, run domain.PublishRun) error

	// Get retrieves a run by ID.
	Get(ctx context.Context, id string) (*domain.PublishRun, error)

	// List returns the most recent runs first, at most limit (0 = all).
	List(ctx context.Context, limit int) ([]domain.PublishRun, error)
}
