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

// SaveFeatureVector stores a trajectory feature vector. The full vector is
// kept as a JSON payload; the indexed columns exist so downstream consumers
// can filter by schema version without decoding every row.
func (s *SQLiteStorage) SaveFeatureVector(ctx context.Context, vector model.FeatureVector) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateFeatureVector(&vector); err != nil {
		return err
	}

	payload, err := json.Marshal(vector)
	if err != nil {
		return fmt.Errorf("failed to marshal feature vector: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO feature_vectors (
			company_number, schema_version, years_available, latest_year, payload
		) VALUES (?, ?, ?, ?, ?)
	`,
		vector.CompanyNumber,
		vector.SchemaVersion,
		vector.YearsAvailable,
		vector.LatestYear,
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("failed to save feature vector for %s: %w", vector.CompanyNumber, err)
	}

	return nil
}

// GetFeatureVector returns the stored vector for a company, or ErrNotFound.
func (s *SQLiteStorage) GetFeatureVector(ctx context.Context, companyNumber string) (*model.FeatureVector, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(companyNumber, "companyNumber"); err != nil {
		return nil, err
	}

	var payload string
	err := s.db.QueryRowContext(ctx, `
		SELECT payload FROM feature_vectors WHERE company_number = ?
	`, companyNumber).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("feature vector for %s: %w", companyNumber, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feature vector: %w", err)
	}

	var vector model.FeatureVector
	if err := json.Unmarshal([]byte(payload), &vector); err != nil {
		return nil, fmt.Errorf("failed to unmarshal feature vector: %w", err)
	}

	return &vector, nil
}
