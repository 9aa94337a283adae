// Package file stores crawl artifacts as JSON files under the work directory.
package file

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/adpush/internal/core/domain"
	"github.com/custodia-labs/adpush/internal/core/ports/driven"
)

// Ensure ArtifactStore implements the interface.
var _ driven.ArtifactStore = (*ArtifactStore)(nil)

// Artifact file names inside the work directory.
const (
	UsersDir    = "users"
	UserMapFile = "user_map.json"
	BatchFile   = "batch.json"
)

// ArtifactStore writes one JSON file per user plus the identity map and
// the batch. Files are written to a temporary name and renamed into place.
type ArtifactStore struct {
	dir string
}

// NewArtifactStore creates a store rooted at dir. Directories are created
// on first write.
func NewArtifactStore(dir string) *ArtifactStore {
	return &ArtifactStore{dir: dir}
}

// Dir returns the work directory.
func (s *ArtifactStore) Dir() string {
	return s.dir
}

// ResetUsers deletes the users directory and recreates it empty.
func (s *ArtifactStore) ResetUsers() error {
	dir := filepath.Join(s.dir, UsersDir)
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("remove %s: %w", dir, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	return nil
}

// WriteUser writes users/<file name>.json.
func (s *ArtifactStore) WriteUser(user *domain.User) error {
	if user == nil || user.PrimaryEmail == "" {
		return fmt.Errorf("%w: user without primary email", domain.ErrInvalidInput)
	}
	return s.writeJSON(filepath.Join(s.dir, UsersDir, user.FileName()), user)
}

// WriteUserMap writes user_map.json.
func (s *ArtifactStore) WriteUserMap(entries map[string]domain.UserMapEntry) error {
	return s.writeJSON(filepath.Join(s.dir, UserMapFile), entries)
}

// WriteBatch writes batch.json.
func (s *ArtifactStore) WriteBatch(docs []domain.BatchDocument) error {
	if docs == nil {
		docs = []domain.BatchDocument{}
	}
	return s.writeJSON(filepath.Join(s.dir, BatchFile), docs)
}

// ReadUsers loads every users/*.json file in file name order.
// It returns ErrNotFound when no crawl has written the users directory.
func (s *ArtifactStore) ReadUsers() ([]*domain.User, error) {
	dir := filepath.Join(s.dir, UsersDir)
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s (run crawl first)", domain.ErrNotFound, dir)
	}
	if err != nil {
		return nil, fmt.Errorf("read users: %w", err)
	}

	users := make([]*domain.User, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", entry.Name(), err)
		}
		var u domain.User
		if err := json.Unmarshal(data, &u); err != nil {
			return nil, fmt.Errorf("decode %s: %w", entry.Name(), err)
		}
		users = append(users, &u)
	}
	return users, nil
}

func (s *ArtifactStore) writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // no-op after rename

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}
	return nil
}
