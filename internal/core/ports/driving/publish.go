package driving

import (
	"context"

	"github.com/custodia-labs/adpush/internal/core/domain"
)

// Publisher builds the batch and runs the upload protocol.
type Publisher interface {
	// Publish pushes the users stored by a previous crawl.
	Publish(ctx context.Context) (*PublishResult, error)

	// PublishUsers pushes an in-memory user set.
	PublishUsers(ctx context.Context, users []*domain.User) (*PublishResult, error)
}

// PublishResult is the outcome of a publish.
type PublishResult struct {
	Run domain.PublishRun

	// Excluded is the number of users left out of the batch.
	Excluded int

	// Report holds exclusions and artifact write failures.
	Report *domain.Report
}

// RunHistory lists recorded publish runs.
type RunHistory interface {
	// Runs returns the most recent runs first.
	Runs(ctx context.Context, limit int) ([]domain.PublishRun, error)

	// Run returns one run by ID or by a unique ID prefix.
	Run(ctx context.Context, id string) (*domain.PublishRun, error)
}
