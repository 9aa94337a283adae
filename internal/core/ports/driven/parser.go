package driven

import (
	"iter"

	"github.com/custodia-labs/adpush/internal/core/domain"
)

// RecordParser decodes export files.
type RecordParser interface {
	// Parse returns the records of the file at path as a single-pass sequence.
	// The file is read when iteration starts. An absent, empty, unreadable or
	// malformed file yields an empty sequence; errors never escape.
	Parse(path string) iter.Seq[domain.RawRecord]

	// Load reads every record of the file at path, failing when the file
	// cannot be read or decoded.
	Load(path string) ([]domain.RawRecord, error)
}
