package services

import (
	"iter"

	"github.com/custodia-labs/adpush/internal/core/domain"
	"github.com/custodia-labs/adpush/internal/logger"
)

// FilterRecords drops records that cannot become users: records that name
// themselves as manager and records without a userPrincipalName.
// Each drop is logged and reported as a malformed record.
func FilterRecords(records iter.Seq[domain.RawRecord], report *domain.Report) iter.Seq[domain.RawRecord] {
	return func(yield func(domain.RawRecord) bool) {
		for record := range records {
			if err := record.Check(); err != nil {
				logger.Debug("SKIP: %s (%v)", record.DN, err)
				report.Add(domain.IssueMalformedRecord, record.DN, err)
				continue
			}
			if !yield(record) {
				return
			}
		}
	}
}
