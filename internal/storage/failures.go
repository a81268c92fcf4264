package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/clearview-uk/clearview/internal/service"
)

// RecordFailure appends one failed item to the failure log. Bulk stages call
// this and keep going; the log is what a re-run inspects afterwards.
func (s *SQLiteStorage) RecordFailure(ctx context.Context, failure service.FailureRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateFailure(&failure); err != nil {
		return err
	}

	occurredAt := failure.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO failures (run_id, stage, company_number, source, error, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		failure.RunID,
		failure.Stage,
		failure.CompanyNumber,
		failure.Source,
		failure.Error,
		occurredAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record failure: %w", err)
	}

	return nil
}

// GetFailures returns all failures recorded during a run, oldest first.
func (s *SQLiteStorage) GetFailures(ctx context.Context, runID string) ([]service.FailureRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(runID, "runID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, stage, company_number, source, error, occurred_at
		FROM failures
		WHERE run_id = ?
		ORDER BY occurred_at, id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query failures: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var failures []service.FailureRecord
	for rows.Next() {
		var f service.FailureRecord
		if err := rows.Scan(&f.RunID, &f.Stage, &f.CompanyNumber, &f.Source, &f.Error, &f.OccurredAt); err != nil {
			return nil, fmt.Errorf("failed to scan failure: %w", err)
		}
		failures = append(failures, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating failures: %w", err)
	}

	return failures, nil
}
