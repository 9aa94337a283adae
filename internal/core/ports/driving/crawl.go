package driving

import (
	"context"

	"github.com/custodia-labs/adpush/internal/core/domain"
)

// Crawler exports the directory and builds the enriched user set.
type Crawler interface {
	// Crawl runs export, parse, registration and resolution, and writes the
	// intermediate artifacts. Only a missing group list is fatal.
	Crawl(ctx context.Context, opts CrawlOptions) (*CrawlResult, error)
}

// CrawlOptions tunes a crawl.
type CrawlOptions struct {
	// GroupsFile uses an existing group-list export instead of running one.
	GroupsFile string
}

// CrawlResult is the outcome of a crawl.
type CrawlResult struct {
	// Groups is the number of groups in the group list.
	Groups int

	// Records is the number of records kept after parse filtering.
	Records int

	// Users are the distinct enriched users in identity-key order.
	Users []*domain.User

	// Report holds every non-fatal issue, including artifact write failures.
	Report *domain.Report
}
