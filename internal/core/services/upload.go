package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/adpush/internal/core/domain"
	"github.com/custodia-labs/adpush/internal/core/ports/driven"
	"github.com/custodia-labs/adpush/internal/logger"
)

// UploadOrchestrator runs the upload protocol against a push source:
// REBUILD status, file container, blob upload, batch commit, IDLE status,
// then pruning of stale documents.
//
// Steps are strictly sequential and the run stops at the first failure.
// Nothing is retried or rolled back: a failure between the REBUILD
// announcement and the commit leaves the source in REBUILD.
type UploadOrchestrator struct {
	client     driven.PushClient
	metrics    driven.MetricsRecorder
	staleAfter time.Duration
	now        func() time.Time
}

// NewUploadOrchestrator creates an orchestrator. metrics may be nil.
func NewUploadOrchestrator(
	client driven.PushClient,
	metrics driven.MetricsRecorder,
	staleAfter time.Duration,
) *UploadOrchestrator {
	if staleAfter <= 0 {
		staleAfter = domain.DefaultStaleAfter
	}
	return &UploadOrchestrator{
		client:     client,
		metrics:    metrics,
		staleAfter: staleAfter,
		now:        time.Now,
	}
}

// Upload pushes the encoded batch. Progress is recorded on run, including
// the last step attempted, the ordering id and the prune threshold.
//
//nolint:gocyclo // Protocol with necessary sequential steps
func (o *UploadOrchestrator) Upload(ctx context.Context, payload []byte, run *domain.PublishRun) error {
	// 1. Announce the rebuild
	if err := o.step(ctx, run, domain.StepRebuildAnnounce, func(ctx context.Context) error {
		return o.client.SetStatus(ctx, domain.StatusRebuild)
	}); err != nil {
		return err
	}

	// 2. Get a large file container
	var container *domain.FileContainer
	if err := o.step(ctx, run, domain.StepContainerAcquire, func(ctx context.Context) error {
		var err error
		container, err = o.client.CreateFileContainer(ctx)
		if err == nil && (container == nil || container.UploadURI == "" || container.FileID == "") {
			err = fmt.Errorf("%w: empty file container", domain.ErrInvalidInput)
		}
		return err
	}); err != nil {
		return err
	}
	run.FileID = container.FileID

	// 3. Upload the batch file
	if err := o.step(ctx, run, domain.StepBlobUpload, func(ctx context.Context) error {
		return o.client.Upload(ctx, container, payload)
	}); err != nil {
		return err
	}

	// 4. Commit the batch, ordered by commit time
	now := o.now()
	run.OrderingID = domain.OrderingID(now)
	run.StaleThreshold = domain.StaleThreshold(run.OrderingID, o.staleAfter)
	if err := o.step(ctx, run, domain.StepBatchCommit, func(ctx context.Context) error {
		return o.client.CommitBatch(ctx, container.FileID, run.OrderingID)
	}); err != nil {
		return err
	}

	// 5. Back to idle
	if err := o.step(ctx, run, domain.StepIdleAnnounce, func(ctx context.Context) error {
		return o.client.SetStatus(ctx, domain.StatusIdle)
	}); err != nil {
		return err
	}

	// 6. Remove users that are no longer in the directory
	return o.step(ctx, run, domain.StepStalePrune, func(ctx context.Context) error {
		return o.client.DeleteOlderThan(ctx, run.StaleThreshold)
	})
}

func (o *UploadOrchestrator) step(
	ctx context.Context,
	run *domain.PublishRun,
	step domain.PublishStep,
	call func(context.Context) error,
) error {
	run.LastStep = step
	logger.Section(step.String())

	started := time.Now()
	err := call(ctx)
	if o.metrics != nil {
		o.metrics.RecordStep(step, time.Since(started), err)
	}

	if err != nil {
		logger.WithFields(logger.Fields{"run": run.ID, "step": step.String()}).Errorf("publish aborted: %v", err)
		return fmt.Errorf("%s: %w", step, err)
	}
	logger.WithFields(logger.Fields{"run": run.ID, "step": step.String()}).Debug("step complete")
	return nil
}
