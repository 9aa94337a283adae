package driven

import "github.com/custodia-labs/adpush/internal/core/domain"

// ArtifactStore persists the intermediate artifacts of a run.
// Only the per-user files are read back, by the publish step.
type ArtifactStore interface {
	// ResetUsers removes every stored user. A crawl calls it before writing
	// the new user set, so users gone from the directory are not read back.
	ResetUsers() error

	// WriteUser stores one enriched user, keyed by its primary email.
	WriteUser(user *domain.User) error

	// WriteUserMap stores the identity key map.
	WriteUserMap(entries map[string]domain.UserMapEntry) error

	// WriteBatch stores the constructed batch documents.
	WriteBatch(docs []domain.BatchDocument) error

	// ReadUsers loads every stored user, ordered by file name.
	ReadUsers() ([]*domain.User, error)
}
