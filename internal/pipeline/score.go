package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/clearview-uk/clearview/internal/common"
	"github.com/clearview-uk/clearview/internal/registry"
	"github.com/clearview-uk/clearview/internal/score"
	"github.com/clearview-uk/clearview/internal/service"
)

// ScoreStage scores every company with stored statements, using the latest
// statement per company. The registry client is optional: without one no SIC
// codes are available, so modelled scoring degrades to the balance-sheet
// fallback on its own.
type ScoreStage struct {
	storage  service.Storage
	assessor *score.Assessor
	client   registry.Client
	logger   *slog.Logger
	progress bool
}

// NewScoreStage creates a score stage. client may be nil.
func NewScoreStage(storage service.Storage, assessor *score.Assessor, client registry.Client, showProgress bool) *ScoreStage {
	return &ScoreStage{
		storage:  storage,
		assessor: assessor,
		client:   client,
		logger:   slog.Default().With("component", "score_stage"),
		progress: showProgress,
	}
}

// Run assesses every stored company and persists the results.
func (s *ScoreStage) Run(ctx context.Context) (service.RunStats, error) {
	runID := uuid.New().String()
	started := time.Now()

	companies, err := s.storage.ListCompanies(ctx)
	if err != nil {
		return service.RunStats{RunID: runID}, err
	}

	s.logger.Info("starting bulk score", "run_id", runID, "companies", len(companies))

	bar := newBar(len(companies), "Scoring companies", s.progress)
	stats := service.RunStats{RunID: runID}

	for _, companyNumber := range companies {
		if err := ctx.Err(); err != nil {
			stats.Duration = time.Since(started)
			return stats, err
		}

		stats.Processed++
		if err := s.scoreCompany(ctx, companyNumber); err != nil {
			stats.Failed++
			s.recordFailure(ctx, runID, companyNumber, err)
		} else {
			stats.Succeeded++
		}
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	stats.Duration = time.Since(started)
	s.logger.Info("bulk score finished",
		"run_id", runID,
		"processed", stats.Processed,
		"failed", stats.Failed,
		"duration", stats.Duration)
	return stats, nil
}

func (s *ScoreStage) scoreCompany(ctx context.Context, companyNumber string) error {
	statements, err := s.storage.GetStatements(ctx, companyNumber)
	if err != nil {
		return err
	}
	if len(statements) == 0 {
		return nil
	}

	result := s.assessor.Assess(&statements[0], s.sicCode(ctx, companyNumber))
	return s.storage.SaveScoreResult(ctx, companyNumber, result)
}

// sicCode fetches the first SIC code from the registry profile. Lookup
// problems only cost the benchmark, never the score.
func (s *ScoreStage) sicCode(ctx context.Context, companyNumber string) string {
	if s.client == nil {
		return ""
	}

	var profile *registry.CompanyProfile
	err := common.WithRetry(ctx, func() error {
		var opErr error
		profile, opErr = s.client.GetProfile(ctx, companyNumber)
		if errors.Is(opErr, common.ErrNotFound) {
			return &common.RetryableError{Err: opErr, Retryable: false}
		}
		return opErr
	}, service.RetryOptions{MaxAttempts: 3, InitialDelay: 250 * time.Millisecond})
	if err != nil {
		s.logger.Debug("no registry profile", "company", companyNumber, "error", err)
		return ""
	}
	if len(profile.SICCodes) == 0 {
		return ""
	}
	return profile.SICCodes[0]
}

func (s *ScoreStage) recordFailure(ctx context.Context, runID, companyNumber string, cause error) {
	s.logger.Warn("scoring failed", "company", companyNumber, "error", cause)

	failure := service.FailureRecord{
		RunID:         runID,
		Stage:         "score",
		CompanyNumber: companyNumber,
		Error:         cause.Error(),
		OccurredAt:    time.Now(),
	}
	if err := s.storage.RecordFailure(ctx, failure); err != nil {
		s.logger.Error("failed to record failure", "company", companyNumber, "error", err)
	}
}
