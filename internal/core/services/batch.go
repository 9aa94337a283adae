package services

import (
	"fmt"

	"github.com/custodia-labs/adpush/internal/core/domain"
	"github.com/custodia-labs/adpush/internal/logger"
)

// BatchBuilder turns enriched users into batch documents.
type BatchBuilder struct {
	host string
}

// NewBatchBuilder creates a builder whose DocumentIds point at host.
func NewBatchBuilder(host string) *BatchBuilder {
	return &BatchBuilder{host: host}
}

// Build filters and transforms users, preserving their order.
// Users without a mailNickname are excluded and reported.
// It must only be called once resolution has finished for every user.
func (b *BatchBuilder) Build(users []*domain.User, report *domain.Report) []domain.BatchDocument {
	docs := make([]domain.BatchDocument, 0, len(users))
	for _, u := range users {
		if u == nil {
			continue
		}
		if u.MailNickname == "" {
			logger.Debug("filter out: %s", u.Ref())
			report.Add(domain.IssueExcluded, u.Ref(), fmt.Errorf("%w: no mailNickname", domain.ErrInvalidInput))
			continue
		}
		docs = append(docs, b.document(u))
	}
	return docs
}

func (b *BatchBuilder) document(u *domain.User) domain.BatchDocument {
	fields := make(map[string]any, len(u.Attributes)+10)
	for name, values := range u.Attributes {
		fields[name] = values
	}

	fields["dn"] = u.DistinguishedName
	fields[domain.AttrUserPrincipalName] = u.PrimaryEmail
	fields[domain.AttrMailNickname] = u.MailNickname
	setIfPresent(fields, domain.AttrDistinguishedName, u.AlternateDistinguishedName)
	setIfPresent(fields, domain.AttrDisplayName, u.DisplayName)
	setIfPresent(fields, domain.AttrWhenCreated, u.CreatedTimestamp)
	setIfPresent(fields, "createdDate", u.Derived.CreatedDateISO)
	setIfPresent(fields, "admanagername", u.Derived.ManagerDisplayName)
	if len(u.Managers) > 0 {
		fields["managers"] = u.Managers
	}
	if len(u.DirectReports) > 0 {
		fields[domain.AttrDirectReports] = u.DirectReports
	}

	fileType := u.Derived.DocumentType
	if fileType == "" {
		fileType = domain.DocumentTypePerson
	}

	return domain.BatchDocument{
		DocumentID: domain.NewDocumentID(b.host, u.DistinguishedName),
		Title:      u.DisplayName,
		Mail:       u.Email(),
		Date:       u.Derived.CreatedDateISO,
		JobTitle:   u.JobTitle,
		FileType:   fileType,
		Fields:     fields,
	}
}

func setIfPresent(fields map[string]any, key, value string) {
	if value != "" {
		fields[key] = value
	}
}
