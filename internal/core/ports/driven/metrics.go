package driven

import (
	"time"

	"github.com/custodia-labs/adpush/internal/core/domain"
)

// MetricsRecorder records crawl and publish metrics.
type MetricsRecorder interface {
	RecordIssue(kind domain.IssueKind)
	RecordUsers(count int)
	RecordDocuments(count int)
	RecordStep(step domain.PublishStep, duration time.Duration, err error)
	RecordRun(run domain.PublishRun)
}
