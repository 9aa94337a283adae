package services

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/adpush/internal/core/domain"
	"github.com/custodia-labs/adpush/internal/core/ports/driven"
	"github.com/custodia-labs/adpush/internal/core/ports/driving"
	"github.com/custodia-labs/adpush/internal/logger"
)

// Ensure CrawlService implements the interface.
var _ driving.Crawler = (*CrawlService)(nil)

// CrawlService exports the directory group by group and builds the
// enriched user set.
type CrawlService struct {
	exporter    driven.DirectoryExporter
	parser      driven.RecordParser
	artifacts   driven.ArtifactStore
	metrics     driven.MetricsRecorder
	maxParallel int
}

// NewCrawlService creates a crawl service. metrics may be nil.
// maxParallel bounds concurrent group exports; values below 1 mean unbounded.
func NewCrawlService(
	exporter driven.DirectoryExporter,
	parser driven.RecordParser,
	artifacts driven.ArtifactStore,
	metrics driven.MetricsRecorder,
	maxParallel int,
) *CrawlService {
	return &CrawlService{
		exporter:    exporter,
		parser:      parser,
		artifacts:   artifacts,
		metrics:     metrics,
		maxParallel: maxParallel,
	}
}

// Crawl runs the full crawl.
//
//nolint:gocyclo // Orchestration function with necessary sequential steps
func (s *CrawlService) Crawl(ctx context.Context, opts driving.CrawlOptions) (*driving.CrawlResult, error) {
	report := domain.NewReport()

	// 1. Group list (fatal when missing)
	logger.Section("Step 1 - loading info from the directory")
	groupsFile := opts.GroupsFile
	if groupsFile == "" {
		var err error
		groupsFile, err = s.exporter.ExportGroups(ctx)
		if err != nil {
			return nil, fmt.Errorf("export groups: %w", err)
		}
	}
	groupRecords, err := s.parser.Load(groupsFile)
	if err != nil {
		return nil, fmt.Errorf("read group list %s: %w", groupsFile, err)
	}
	groups := make([]domain.Group, len(groupRecords))
	for i, record := range groupRecords {
		groups[i] = domain.GroupFromRecord(record)
	}
	domain.NumberExportNames(groups)
	logger.Info("Found %d groups in %s", len(groups), groupsFile)

	// 2. Export and parse every group concurrently
	perGroup := s.exportGroups(ctx, groups, report)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 3. Register users in group-list order
	logger.Section("Step 2 - creating users")
	identities := NewIdentityMap()
	records := 0
	for _, group := range perGroup {
		for _, record := range group {
			records++
			s.register(identities, record, report)
		}
	}

	// 4. Resolve the hierarchy
	logger.Section("Step 3 - processing users")
	users := NewHierarchyResolver(identities, report).Resolve()

	// 5. Intermediate artifacts. The user set is replaced, the writes
	// themselves are best effort.
	if err := s.artifacts.ResetUsers(); err != nil {
		return nil, fmt.Errorf("reset users: %w", err)
	}
	for _, u := range users {
		if err := s.artifacts.WriteUser(u); err != nil {
			logger.Warn("write user %s: %v", u.PrimaryEmail, err)
			report.Add(domain.IssueArtifactWrite, u.FileName(), err)
		}
	}
	if err := s.artifacts.WriteUserMap(identities.Entries()); err != nil {
		logger.Warn("write user map: %v", err)
		report.Add(domain.IssueArtifactWrite, "user_map.json", err)
	}

	if s.metrics != nil {
		s.metrics.RecordUsers(len(users))
		for _, issue := range report.Issues() {
			s.metrics.RecordIssue(issue.Kind)
		}
	}

	logger.Info("Crawl complete: %d groups, %d records, %d users, %d issues",
		len(groups), records, len(users), report.Len())

	return &driving.CrawlResult{
		Groups:  len(groups),
		Records: records,
		Users:   users,
		Report:  report,
	}, nil
}

// exportGroups fans out one export per group and waits for all of them.
// A failed export is reported and its group treated as empty.
func (s *CrawlService) exportGroups(
	ctx context.Context,
	groups []domain.Group,
	report *domain.Report,
) [][]domain.RawRecord {
	perGroup := make([][]domain.RawRecord, len(groups))

	var g errgroup.Group
	if s.maxParallel > 0 {
		g.SetLimit(s.maxParallel)
	}
	for i, group := range groups {
		g.Go(func() error {
			path, err := s.exporter.ExportMembers(ctx, group)
			if err != nil {
				logger.Warn("export %s: %v", group.DN, err)
				report.Add(domain.IssueExportFailure, group.DN, err)
				return nil
			}
			perGroup[i] = slices.Collect(FilterRecords(s.parser.Parse(path), report))
			logger.Debug("Group %s: %d users", group.OU, len(perGroup[i]))
			return nil
		})
	}
	_ = g.Wait() // goroutines report instead of failing

	return perGroup
}

func (s *CrawlService) register(identities *IdentityMap, record domain.RawRecord, report *domain.Report) {
	u := domain.NewUser(record)
	_, err := identities.Register(u)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrDuplicateIdentity):
		logger.Warn("already created: %s %s: %v", record.DN, u.PrimaryEmail, err)
		report.Add(domain.IssueDuplicateIdentity, record.DN, err)
	default:
		logger.Warn("register %s: %v", record.DN, err)
		report.Add(domain.IssueMalformedRecord, record.DN, err)
	}
}
