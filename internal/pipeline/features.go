package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/clearview-uk/clearview/internal/service"
	"github.com/clearview-uk/clearview/internal/trajectory"
)

// FeatureStage builds trajectory feature vectors from stored statements.
// It reads only what the parse stage persisted, so it can run any time
// after a parse without touching the filings again.
type FeatureStage struct {
	storage  service.Storage
	logger   *slog.Logger
	progress bool
}

// NewFeatureStage creates a feature stage.
func NewFeatureStage(storage service.Storage, showProgress bool) *FeatureStage {
	return &FeatureStage{
		storage:  storage,
		logger:   slog.Default().With("component", "feature_stage"),
		progress: showProgress,
	}
}

// Run builds and persists a feature vector for every stored company.
func (f *FeatureStage) Run(ctx context.Context) (service.RunStats, error) {
	runID := uuid.New().String()
	started := time.Now()

	companies, err := f.storage.ListCompanies(ctx)
	if err != nil {
		return service.RunStats{RunID: runID}, err
	}

	f.logger.Info("starting feature build", "run_id", runID, "companies", len(companies))

	bar := newBar(len(companies), "Building features", f.progress)
	stats := service.RunStats{RunID: runID}

	for _, companyNumber := range companies {
		if err := ctx.Err(); err != nil {
			stats.Duration = time.Since(started)
			return stats, err
		}

		stats.Processed++
		if err := f.buildCompany(ctx, companyNumber); err != nil {
			stats.Failed++
			f.recordFailure(ctx, runID, companyNumber, err)
		} else {
			stats.Succeeded++
		}
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	stats.Duration = time.Since(started)
	f.logger.Info("feature build finished",
		"run_id", runID,
		"processed", stats.Processed,
		"failed", stats.Failed,
		"duration", stats.Duration)
	return stats, nil
}

func (f *FeatureStage) buildCompany(ctx context.Context, companyNumber string) error {
	statements, err := f.storage.GetStatements(ctx, companyNumber)
	if err != nil {
		return err
	}

	vector := trajectory.Build(companyNumber, statements)
	return f.storage.SaveFeatureVector(ctx, vector)
}

func (f *FeatureStage) recordFailure(ctx context.Context, runID, companyNumber string, cause error) {
	f.logger.Warn("feature build failed", "company", companyNumber, "error", cause)

	failure := service.FailureRecord{
		RunID:         runID,
		Stage:         "features",
		CompanyNumber: companyNumber,
		Error:         cause.Error(),
		OccurredAt:    time.Now(),
	}
	if err := f.storage.RecordFailure(ctx, failure); err != nil {
		f.logger.Error("failed to record failure", "company", companyNumber, "error", err)
	}
}
