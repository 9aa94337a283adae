package services

import (
	"errors"
	"fmt"
	"sort"

	"github.com/custodia-labs/adpush/internal/core/domain"
)

// IdentityMap resolves identity keys (emails and distinguished names) to
// one canonical User. It is built per crawl: append-only while loading,
// frozen before hierarchy resolution, and read-only afterwards.
//
// IdentityMap is not safe for concurrent writers; the crawl registers users
// from a single goroutine after the export barrier.
type IdentityMap struct {
	byEmail map[string]*domain.User
	byDN    map[string]*domain.User
	frozen  bool
}

// NewIdentityMap creates an empty identity map.
func NewIdentityMap() *IdentityMap {
	return &IdentityMap{
		byEmail: make(map[string]*domain.User),
		byDN:    make(map[string]*domain.User),
	}
}

// Register inserts the user under its primary email, secondary email,
// distinguished name and alternate distinguished name.
//
// It returns the canonical user for the primary email. When that email is
// already registered the earlier user is returned unchanged together with a
// *domain.DuplicateIdentityError. Secondary keys owned by another user are
// skipped, never overwritten, and reported the same way.
func (m *IdentityMap) Register(u *domain.User) (*domain.User, error) {
	if m.frozen {
		return nil, domain.ErrIdentityMapFrozen
	}
	if u == nil || u.PrimaryEmail == "" || u.DistinguishedName == "" {
		return nil, domain.ErrMissingIdentity
	}

	if existing, ok := m.byEmail[u.PrimaryEmail]; ok && existing != u {
		return existing, &domain.DuplicateIdentityError{
			Key:      u.PrimaryEmail,
			Existing: existing.Ref(),
			Incoming: u.Ref(),
		}
	}

	var errs []error
	claim := func(table map[string]*domain.User, key string) {
		if existing, ok := table[key]; ok && existing != u {
			errs = append(errs, &domain.DuplicateIdentityError{
				Key:      key,
				Existing: existing.Ref(),
				Incoming: u.Ref(),
			})
			return
		}
		table[key] = u
	}

	for _, key := range u.EmailKeys() {
		claim(m.byEmail, key)
	}
	for _, key := range u.StructuralKeys() {
		claim(m.byDN, key)
	}

	return u, errors.Join(errs...)
}

// Lookup finds a user by any identity key. Emails are checked first.
func (m *IdentityMap) Lookup(key string) (*domain.User, bool) {
	if u, ok := m.byEmail[key]; ok {
		return u, true
	}
	u, ok := m.byDN[key]
	return u, ok
}

// Keys returns the email identity keys, sorted lexicographically.
// It is a snapshot; later registrations do not affect it.
func (m *IdentityMap) Keys() []string {
	keys := make([]string, 0, len(m.byEmail))
	for k := range m.byEmail {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Users returns each distinct user once, in Keys order.
func (m *IdentityMap) Users() []*domain.User {
	seen := make(map[*domain.User]bool, len(m.byEmail))
	users := make([]*domain.User, 0, len(m.byEmail))
	for _, key := range m.Keys() {
		u := m.byEmail[key]
		if seen[u] {
			continue
		}
		seen[u] = true
		users = append(users, u)
	}
	return users
}

// Entries returns the identity map artifact, one entry per email key.
func (m *IdentityMap) Entries() map[string]domain.UserMapEntry {
	entries := make(map[string]domain.UserMapEntry, len(m.byEmail))
	for key, u := range m.byEmail {
		entries[key] = domain.UserMapEntry{
			DisplayName: u.DisplayName,
			DN:          u.DistinguishedName,
			Key:         key,
		}
	}
	return entries
}

// ResolveEmail maps a reference to the referenced user's primary email.
// Unknown references are returned unchanged with ErrUnresolvedReference.
func (m *IdentityMap) ResolveEmail(ref string) (string, error) {
	u, ok := m.Lookup(ref)
	if !ok || u.PrimaryEmail == "" {
		return ref, fmt.Errorf("%w: %s", domain.ErrUnresolvedReference, ref)
	}
	return u.PrimaryEmail, nil
}

// Freeze ends the load phase. Later registrations fail.
func (m *IdentityMap) Freeze() {
	m.frozen = true
}

// Frozen reports whether the load phase has ended.
func (m *IdentityMap) Frozen() bool {
	return m.frozen
}

// Len returns the number of distinct users.
func (m *IdentityMap) Len() int {
	return len(m.Users())
}
