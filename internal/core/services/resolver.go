package services

import (
	"fmt"

	"github.com/custodia-labs/adpush/internal/core/domain"
	"github.com/custodia-labs/adpush/internal/logger"
)

// HierarchyResolver enriches registered users in place: it converts manager
// and direct-report references to emails, copies the nearest manager's name,
// derives the ISO creation date and purges volatile attributes.
type HierarchyResolver struct {
	identities    *IdentityMap
	report        *domain.Report
	purgePrefixes []string
}

// NewHierarchyResolver creates a resolver over a loaded identity map.
func NewHierarchyResolver(identities *IdentityMap, report *domain.Report) *HierarchyResolver {
	return &HierarchyResolver{
		identities:    identities,
		report:        report,
		purgePrefixes: domain.VolatileAttributePrefixes,
	}
}

// Resolve freezes the identity map and enriches every distinct user in
// ascending identity-key order. It returns the users in that order.
// A failure on one user is reported and does not stop the others.
func (r *HierarchyResolver) Resolve() []*domain.User {
	r.identities.Freeze()

	users := r.identities.Users()
	for _, u := range users {
		if err := r.resolveUser(u); err != nil {
			logger.Warn("resolve %s: %v", u.Ref(), err)
			r.report.Add(domain.IssueUnresolvedReference, u.Ref(), err)
		}
	}
	return users
}

func (r *HierarchyResolver) resolveUser(u *domain.User) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic while resolving: %v", p)
		}
	}()

	logger.Debug("Resolving %s", u.PrimaryEmail)

	if len(u.Managers) > 0 {
		u.Managers = r.resolveRefs(u, u.Managers)
		if manager, ok := r.identities.Lookup(u.Managers[0]); ok {
			u.Derived.ManagerDisplayName = manager.DisplayName
		}
	}

	if len(u.DirectReports) > 0 {
		u.DirectReports = r.resolveRefs(u, u.DirectReports)
	}

	if iso, ok := domain.ParseCreatedTimestamp(u.CreatedTimestamp); ok {
		u.Derived.CreatedDateISO = iso
	}
	u.Derived.DocumentType = domain.DocumentTypePerson

	if n := u.PurgeAttributes(r.purgePrefixes); n > 0 {
		logger.Debug("Purged %d volatile attributes from %s", n, u.Ref())
	}
	return nil
}

// resolveRefs maps references to emails. Unresolved references pass
// through unchanged.
func (r *HierarchyResolver) resolveRefs(u *domain.User, refs []string) []string {
	resolved := make([]string, len(refs))
	for i, ref := range refs {
		email, err := r.identities.ResolveEmail(ref)
		if err != nil {
			logger.Debug("can not find user email for %s (referenced by %s)", ref, u.Ref())
			r.report.Add(domain.IssueUnresolvedReference, ref, err)
		}
		resolved[i] = email
	}
	return resolved
}
