package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/adpush/internal/core/domain"
	"github.com/custodia-labs/adpush/internal/core/ports/driven"
)

// runStore implements driven.RunStore.
type runStore struct {
	store *Store
}

var _ driven.RunStore = (*runStore)(nil)

const runColumns = `id, started_at, ended_at, ordering_id, stale_threshold,
	documents, file_id, last_step, success, error`

// Save stores or updates a run.
func (s *runStore) Save(ctx context.Context, run domain.PublishRun) error {
	if run.ID == "" {
		return fmt.Errorf("%w: run without id", domain.ErrInvalidInput)
	}

	var endedAt sql.NullInt64
	if !run.EndedAt.IsZero() {
		endedAt = sql.NullInt64{Int64: run.EndedAt.UnixMilli(), Valid: true}
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO publish_runs (`+runColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			ended_at = excluded.ended_at,
			ordering_id = excluded.ordering_id,
			stale_threshold = excluded.stale_threshold,
			documents = excluded.documents,
			file_id = excluded.file_id,
			last_step = excluded.last_step,
			success = excluded.success,
			error = excluded.error
	`, run.ID, run.StartedAt.UnixMilli(), endedAt, run.OrderingID, run.StaleThreshold,
		run.Documents, run.FileID, run.LastStep.String(), run.Success, run.Error)
	if err != nil {
		return fmt.Errorf("saving publish run: %w", err)
	}
	return nil
}

// Get retrieves a run by ID.
func (s *runStore) Get(ctx context.Context, id string) (*domain.PublishRun, error) {
	row := s.store.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM publish_runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning publish run: %w", err)
	}
	return run, nil
}

// List returns the most recent runs first.
func (s *runStore) List(ctx context.Context, limit int) ([]domain.PublishRun, error) {
	query := `SELECT ` + runColumns + ` FROM publish_runs ORDER BY started_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing publish runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.PublishRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning publish run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*domain.PublishRun, error) {
	var (
		run       domain.PublishRun
		startedAt int64
		endedAt   sql.NullInt64
		lastStep  string
	)
	err := row.Scan(&run.ID, &startedAt, &endedAt, &run.OrderingID, &run.StaleThreshold,
		&run.Documents, &run.FileID, &lastStep, &run.Success, &run.Error)
	if err != nil {
		return nil, err
	}

	run.StartedAt = time.UnixMilli(startedAt)
	if endedAt.Valid {
		run.EndedAt = time.UnixMilli(endedAt.Int64)
	}
	run.LastStep = domain.ParsePublishStep(lastStep)
	return &run, nil
}
