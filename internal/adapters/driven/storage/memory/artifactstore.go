package memory

import (
	"maps"
	"slices"
	"sync"

	"github.com/custodia-labs/adpush/internal/core/domain"
	"github.com/custodia-labs/adpush/internal/core/ports/driven"
)

// Ensure ArtifactStore implements the interface.
var _ driven.ArtifactStore = (*ArtifactStore)(nil)

// ArtifactStore is an in-memory implementation of driven.ArtifactStore.
// Users are keyed by file name, as on disk.
type ArtifactStore struct {
	mu      sync.RWMutex
	users   map[string]*domain.User
	userMap map[string]domain.UserMapEntry
	batch   []domain.BatchDocument
}

// NewArtifactStore creates a new in-memory artifact store.
func NewArtifactStore() *ArtifactStore {
	return &ArtifactStore{
		users:   make(map[string]*domain.User),
		userMap: make(map[string]domain.UserMapEntry),
	}
}

// ResetUsers drops every stored user.
func (s *ArtifactStore) ResetUsers() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.users)
	return nil
}

// WriteUser stores one user, replacing any user with the same file name.
func (s *ArtifactStore) WriteUser(user *domain.User) error {
	if user == nil || user.PrimaryEmail == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.FileName()] = user
	return nil
}

// WriteUserMap replaces the stored identity map.
func (s *ArtifactStore) WriteUserMap(entries map[string]domain.UserMapEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userMap = maps.Clone(entries)
	return nil
}

// WriteBatch replaces the stored batch.
func (s *ArtifactStore) WriteBatch(docs []domain.BatchDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batch = slices.Clone(docs)
	return nil
}

// ReadUsers returns the stored users ordered by file name.
func (s *ArtifactStore) ReadUsers() ([]*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := slices.Sorted(maps.Keys(s.users))
	users := make([]*domain.User, 0, len(names))
	for _, name := range names {
		users = append(users, s.users[name])
	}
	return users, nil
}

// UserMap returns the last identity map written.
func (s *ArtifactStore) UserMap() map[string]domain.UserMapEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.userMap)
}

// Batch returns the last batch written.
func (s *ArtifactStore) Batch() []domain.BatchDocument {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.batch)
}
