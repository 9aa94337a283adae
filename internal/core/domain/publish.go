package domain

import "time"

// DefaultStaleAfter is how old a document's ordering id may be before
// pruning removes it: 2.2 days.
const DefaultStaleAfter = 190080000 * time.Millisecond

// SourceStatus is the status announced to the remote source.
type SourceStatus string

// Source statuses used by the upload protocol.
const (
	// StatusRebuild announces a full rebuild is starting.
	StatusRebuild SourceStatus = "REBUILD"

	// StatusIdle announces the rebuild batch is committed.
	StatusIdle SourceStatus = "IDLE"
)

// String returns the string representation.
func (s SourceStatus) String() string {
	return string(s)
}

// FileContainer is a write target returned by the remote store.
type FileContainer struct {
	UploadURI string `json:"uploadUri"`
	FileID    string `json:"fileId"`
}

// PublishStep is one step of the upload protocol.
type PublishStep int

// Upload protocol steps, in execution order.
const (
	StepNone PublishStep = iota
	StepRebuildAnnounce
	StepContainerAcquire
	StepBlobUpload
	StepBatchCommit
	StepIdleAnnounce
	StepStalePrune
)

// String returns the step name.
func (s PublishStep) String() string {
	switch s {
	case StepNone:
		return "none"
	case StepRebuildAnnounce:
		return "rebuild_announce"
	case StepContainerAcquire:
		return "container_acquire"
	case StepBlobUpload:
		return "blob_upload"
	case StepBatchCommit:
		return "batch_commit"
	case StepIdleAnnounce:
		return "idle_announce"
	case StepStalePrune:
		return "stale_prune"
	default:
		return "unknown"
	}
}

// ParsePublishStep returns the step with the given name, or StepNone.
func ParsePublishStep(name string) PublishStep {
	for s := StepNone; s <= StepStalePrune; s++ {
		if s.String() == name {
			return s
		}
	}
	return StepNone
}

// PublishRun records one execution of the upload protocol.
type PublishRun struct {
	// ID is the unique identifier for the run.
	ID string

	StartedAt time.Time
	EndedAt   time.Time

	// OrderingID is the epoch-millisecond ordering id of the committed batch.
	OrderingID int64

	// StaleThreshold is the ordering id below which documents were pruned.
	StaleThreshold int64

	// Documents is the number of documents in the batch.
	Documents int

	// FileID is the container file identifier, once acquired.
	FileID string

	// LastStep is the last step attempted.
	LastStep PublishStep

	Success bool

	// Error is the failure message when Success is false.
	Error string
}

// OrderingID converts a commit time into an ordering identifier.
func OrderingID(t time.Time) int64 {
	return t.UnixMilli()
}

// StaleThreshold returns the ordering id below which documents are stale.
func StaleThreshold(orderingID int64, staleAfter time.Duration) int64 {
	return orderingID - staleAfter.Milliseconds()
}
