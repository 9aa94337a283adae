package driven

import (
	"context"

	"github.com/custodia-labs/adpush/internal/core/domain"
)

// PushClient speaks the remote push source protocol.
// Every method is a single network call and is never retried.
type PushClient interface {
	// SetStatus announces a source status change.
	SetStatus(ctx context.Context, status domain.SourceStatus) error

	// CreateFileContainer requests a write target for a large file.
	CreateFileContainer(ctx context.Context) (*domain.FileContainer, error)

	// Upload writes the payload to the container. Anything but HTTP 200 fails.
	Upload(ctx context.Context, container *domain.FileContainer, payload []byte) error

	// CommitBatch asks the source to ingest the uploaded file.
	CommitBatch(ctx context.Context, fileID string, orderingID int64) error

	// DeleteOlderThan removes documents whose ordering id is below orderingID.
	DeleteOlderThan(ctx context.Context, orderingID int64) error
}
