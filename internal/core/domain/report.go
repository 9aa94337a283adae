package domain

import (
	"fmt"
	"sync"
)

// IssueKind classifies a non-fatal problem.
type IssueKind int

const (
	// IssueExportFailure means a group export could not be produced or read.
	IssueExportFailure IssueKind = iota

	// IssueMalformedRecord means a record was dropped during parsing.
	IssueMalformedRecord

	// IssueUnresolvedReference means a manager or report reference was kept raw.
	IssueUnresolvedReference

	// IssueDuplicateIdentity means a registration lost to an earlier one.
	IssueDuplicateIdentity

	// IssueArtifactWrite means an intermediate artifact could not be written.
	IssueArtifactWrite

	// IssueExcluded means a user was left out of the batch.
	IssueExcluded
)

// String returns the issue kind name.
func (k IssueKind) String() string {
	switch k {
	case IssueExportFailure:
		return "export_failure"
	case IssueMalformedRecord:
		return "malformed_record"
	case IssueUnresolvedReference:
		return "unresolved_reference"
	case IssueDuplicateIdentity:
		return "duplicate_identity"
	case IssueArtifactWrite:
		return "artifact_write"
	case IssueExcluded:
		return "excluded"
	default:
		return "unknown"
	}
}

// Issue is one reported, non-fatal problem.
type Issue struct {
	Kind IssueKind

	// Ref identifies the record, user, group or artifact concerned.
	Ref string

	Err error
}

func (i Issue) String() string {
	return fmt.Sprintf("%s %s: %v", i.Kind, i.Ref, i.Err)
}

// Report collects issues. It is safe for concurrent use.
type Report struct {
	mu     sync.Mutex
	issues []Issue
}

// NewReport creates an empty report.
func NewReport() *Report {
	return &Report{}
}

// Add records an issue.
func (r *Report) Add(kind IssueKind, ref string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.issues = append(r.issues, Issue{Kind: kind, Ref: ref, Err: err})
}

// Issues returns a copy of every recorded issue, in order.
func (r *Report) Issues() []Issue {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Issue, len(r.issues))
	copy(out, r.issues)
	return out
}

// Filter returns the issues of one kind.
func (r *Report) Filter(kind IssueKind) []Issue {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Issue
	for _, issue := range r.issues {
		if issue.Kind == kind {
			out = append(out, issue)
		}
	}
	return out
}

// Count returns the number of issues of one kind.
func (r *Report) Count(kind IssueKind) int {
	return len(r.Filter(kind))
}

// Len returns the total number of issues.
func (r *Report) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.issues)
}
