package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/clearview-uk/clearview/internal/model"
	"github.com/clearview-uk/clearview/internal/service"
)

// Validation errors.
var (
	ErrNilContext       = errors.New("context cannot be nil")
	ErrEmptyString      = errors.New("string parameter cannot be empty")
	ErrNilParameter     = errors.New("parameter cannot be nil")
	ErrEmptySlice       = errors.New("slice cannot be empty")
	ErrInvalidStatement = errors.New("invalid financial statement")
	ErrInvalidScore     = errors.New("invalid score result")
	ErrInvalidVector    = errors.New("invalid feature vector")
	ErrInvalidFailure   = errors.New("invalid failure record")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateStatements validates a slice of financial statements.
func validateStatements(statements []model.FinancialStatement) error {
	if statements == nil {
		return fmt.Errorf("%w: statements", ErrNilParameter)
	}
	if len(statements) == 0 {
		return fmt.Errorf("%w: statements", ErrEmptySlice)
	}

	for i, st := range statements {
		if err := validateStatement(&st); err != nil {
			return fmt.Errorf("statement at index %d: %w", i, err)
		}
	}
	return nil
}

// validateStatement validates a single financial statement.
func validateStatement(st *model.FinancialStatement) error {
	if st == nil {
		return fmt.Errorf("%w: statement", ErrNilParameter)
	}
	if st.CompanyNumber == "" {
		return fmt.Errorf("%w: missing company number", ErrInvalidStatement)
	}
	if st.PeriodEnd.IsZero() {
		return fmt.Errorf("%w: missing period end", ErrInvalidStatement)
	}
	return nil
}

// validateScoreResult validates a score result.
func validateScoreResult(result *model.ScoreResult) error {
	if result == nil {
		return fmt.Errorf("%w: result", ErrNilParameter)
	}

	switch result.Tier {
	case model.TierFull,
		model.TierHybrid,
		model.TierModelled,
		model.TierBalanceSheetOnly,
		model.TierNone:
		// Valid tier
	default:
		return fmt.Errorf("%w: unknown tier %q", ErrInvalidScore, result.Tier)
	}

	if result.Tier != model.TierNone && result.Band.Grade == "" {
		return fmt.Errorf("%w: missing rating band", ErrInvalidScore)
	}
	return nil
}

// validateFeatureVector validates a feature vector.
func validateFeatureVector(vector *model.FeatureVector) error {
	if vector == nil {
		return fmt.Errorf("%w: vector", ErrNilParameter)
	}
	if vector.CompanyNumber == "" {
		return fmt.Errorf("%w: missing company number", ErrInvalidVector)
	}
	if vector.SchemaVersion == "" {
		return fmt.Errorf("%w: missing schema version", ErrInvalidVector)
	}
	return nil
}

// validateFailure validates a failure record.
func validateFailure(record *service.FailureRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record", ErrNilParameter)
	}
	if record.RunID == "" {
		return fmt.Errorf("%w: missing run ID", ErrInvalidFailure)
	}
	if record.Stage == "" {
		return fmt.Errorf("%w: missing stage", ErrInvalidFailure)
	}
	return nil
}
