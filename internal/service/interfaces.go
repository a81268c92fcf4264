// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/clearview-uk/clearview/internal/model"
)

// StatementFilter defines filtering options for statement queries.
type StatementFilter struct {
	CompanyNumber string
	FromYear      int
	Limit         int
}

// Storage defines the contract for the persistence layer. The bulk pipeline
// uses it to make each stage independently resumable: parsed statements
// survive across runs so the feature stage never repeats parse work.
type Storage interface {
	// Statement operations
	SaveStatements(ctx context.Context, statements []model.FinancialStatement) error
	GetStatements(ctx context.Context, companyNumber string) ([]model.FinancialStatement, error)
	HasStatement(ctx context.Context, companyNumber string, periodEnd time.Time) (bool, error)
	ListCompanies(ctx context.Context) ([]string, error)

	// Score results
	SaveScoreResult(ctx context.Context, companyNumber string, result model.ScoreResult) error
	GetScoreResult(ctx context.Context, companyNumber string) (*model.ScoreResult, error)

	// Feature vectors
	SaveFeatureVector(ctx context.Context, vector model.FeatureVector) error
	GetFeatureVector(ctx context.Context, companyNumber string) (*model.FeatureVector, error)

	// Bulk failure records
	RecordFailure(ctx context.Context, failure FailureRecord) error
	GetFailures(ctx context.Context, runID string) ([]FailureRecord, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// FailureRecord captures one failed item in a bulk run. Failures never abort
// the batch; they are recorded and the run continues.
type FailureRecord struct {
	RunID         string
	Stage         string
	CompanyNumber string
	Source        string // file path or filing identifier
	Error         string
	OccurredAt    time.Time
}

// RunStats shows the results of a bulk pipeline stage.
type RunStats struct {
	RunID     string
	Processed int
	Succeeded int
	Skipped   int
	Failed    int
	Duration  time.Duration
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
