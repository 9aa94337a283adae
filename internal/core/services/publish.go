package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/adpush/internal/core/domain"
	"github.com/custodia-labs/adpush/internal/core/ports/driven"
	"github.com/custodia-labs/adpush/internal/core/ports/driving"
	"github.com/custodia-labs/adpush/internal/logger"
)

// Ensure PublishService implements the interfaces.
var (
	_ driving.Publisher  = (*PublishService)(nil)
	_ driving.RunHistory = (*PublishService)(nil)
)

// PublishService turns enriched users into a batch and uploads it.
type PublishService struct {
	artifacts driven.ArtifactStore
	runs      driven.RunStore
	metrics   driven.MetricsRecorder
	builder   *BatchBuilder
	uploader  *UploadOrchestrator
}

// NewPublishService creates a publish service. runs and metrics may be nil.
func NewPublishService(
	artifacts driven.ArtifactStore,
	runs driven.RunStore,
	metrics driven.MetricsRecorder,
	builder *BatchBuilder,
	uploader *UploadOrchestrator,
) *PublishService {
	return &PublishService{
		artifacts: artifacts,
		runs:      runs,
		metrics:   metrics,
		builder:   builder,
		uploader:  uploader,
	}
}

// Publish pushes the users written by the last crawl.
func (s *PublishService) Publish(ctx context.Context) (*driving.PublishResult, error) {
	users, err := s.artifacts.ReadUsers()
	if err != nil {
		return nil, fmt.Errorf("read users: %w", err)
	}
	return s.PublishUsers(ctx, users)
}

// PublishUsers builds the batch for users and runs the upload protocol.
// The returned result carries the run even when the upload fails.
func (s *PublishService) PublishUsers(ctx context.Context, users []*domain.User) (*driving.PublishResult, error) {
	report := domain.NewReport()

	logger.Section("Step 4 - push to source")
	docs := s.builder.Build(users, report)
	if err := s.artifacts.WriteBatch(docs); err != nil {
		logger.Warn("write batch: %v", err)
		report.Add(domain.IssueArtifactWrite, "batch.json", err)
	}

	payload, err := domain.Batch{AddOrUpdate: docs}.Encode()
	if err != nil {
		return nil, fmt.Errorf("encode batch: %w", err)
	}

	run := domain.PublishRun{
		ID:        uuid.New().String(),
		StartedAt: time.Now(),
		Documents: len(docs),
	}
	logger.Info("Pushing %d documents (run %s)", len(docs), run.ID)

	uploadErr := s.uploader.Upload(ctx, payload, &run)

	run.EndedAt = time.Now()
	run.Success = uploadErr == nil
	if uploadErr != nil {
		run.Error = uploadErr.Error()
	}
	s.record(ctx, run, report)

	result := &driving.PublishResult{
		Run:      run,
		Excluded: report.Count(domain.IssueExcluded),
		Report:   report,
	}
	if uploadErr != nil {
		return result, uploadErr
	}
	return result, nil
}

// Runs returns recorded runs, most recent first.
func (s *PublishService) Runs(ctx context.Context, limit int) ([]domain.PublishRun, error) {
	if s.runs == nil {
		return nil, nil
	}
	return s.runs.List(ctx, limit)
}

// Run returns the run with the given ID. A shorter value matches the run
// whose ID starts with it, as listed by the runs command.
func (s *PublishService) Run(ctx context.Context, id string) (*domain.PublishRun, error) {
	if s.runs == nil || id == "" {
		return nil, domain.ErrNotFound
	}

	run, err := s.runs.Get(ctx, id)
	if err == nil || !errors.Is(err, domain.ErrNotFound) {
		return run, err
	}

	runs, err := s.runs.List(ctx, 0)
	if err != nil {
		return nil, err
	}
	var match *domain.PublishRun
	for i := range runs {
		if !strings.HasPrefix(runs[i].ID, id) {
			continue
		}
		if match != nil {
			return nil, fmt.Errorf("%w: run prefix %q is ambiguous", domain.ErrInvalidInput, id)
		}
		match = &runs[i]
	}
	if match == nil {
		return nil, fmt.Errorf("%w: run %s", domain.ErrNotFound, id)
	}
	return match, nil
}

func (s *PublishService) record(ctx context.Context, run domain.PublishRun, report *domain.Report) {
	if s.metrics != nil {
		s.metrics.RecordDocuments(run.Documents)
		s.metrics.RecordRun(run)
		for _, issue := range report.Issues() {
			s.metrics.RecordIssue(issue.Kind)
		}
	}
	if s.runs == nil {
		return
	}
	// Use a detached context so a cancelled publish is still recorded.
	if err := s.runs.Save(context.WithoutCancel(ctx), run); err != nil {
		logger.Warn("save run %s: %v", run.ID, err)
	}
}
