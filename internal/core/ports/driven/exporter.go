package driven

import (
	"context"

	"github.com/custodia-labs/adpush/internal/core/domain"
)

// DirectoryExporter invokes the external directory query tool.
// Each method writes one export file and returns its path.
type DirectoryExporter interface {
	// ExportGroups exports the top-level group list.
	ExportGroups(ctx context.Context) (string, error)

	// ExportMembers exports the users of one group.
	// Calls for different groups may run concurrently.
	ExportMembers(ctx context.Context, group domain.Group) (string, error)
}
