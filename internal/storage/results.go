package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/clearview-uk/clearview/internal/common"
	"github.com/clearview-uk/clearview/internal/model"
)

// SaveScoreResult stores the latest score for a company, replacing any
// previous one.
func (s *SQLiteStorage) SaveScoreResult(ctx context.Context, companyNumber string, result model.ScoreResult) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(companyNumber, "companyNumber"); err != nil {
		return err
	}
	if err := validateScoreResult(&result); err != nil {
		return err
	}

	signalsJSON := ""
	if len(result.Signals) > 0 {
		b, err := json.Marshal(result.Signals)
		if err != nil {
			return fmt.Errorf("failed to marshal signals: %w", err)
		}
		signalsJSON = string(b)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO score_results (
			company_number, tier, score, band_grade, band_label, band_description, suffix, signals
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		companyNumber,
		string(result.Tier),
		nullFloat(result.Score),
		result.Band.Grade,
		result.Band.Label,
		result.Band.Description,
		result.Suffix,
		signalsJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to save score result for %s: %w", companyNumber, err)
	}

	return nil
}

// GetScoreResult returns the stored score for a company, or ErrNotFound.
func (s *SQLiteStorage) GetScoreResult(ctx context.Context, companyNumber string) (*model.ScoreResult, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(companyNumber, "companyNumber"); err != nil {
		return nil, err
	}

	var (
		tier        string
		score       sql.NullFloat64
		result      model.ScoreResult
		signalsJSON string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT tier, score, band_grade, band_label, band_description, suffix, signals
		FROM score_results
		WHERE company_number = ?
	`, companyNumber).Scan(
		&tier, &score, &result.Band.Grade, &result.Band.Label, &result.Band.Description,
		&result.Suffix, &signalsJSON,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("score result for %s: %w", companyNumber, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get score result: %w", err)
	}

	result.Tier = model.Tier(tier)
	result.Score = floatPtr(score)
	if signalsJSON != "" {
		if err := json.Unmarshal([]byte(signalsJSON), &result.Signals); err != nil {
			return nil, fmt.Errorf("failed to unmarshal signals: %w", err)
		}
	}

	return &result, nil
}
