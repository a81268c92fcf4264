package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearview-uk/clearview/internal/model"
	"github.com/clearview-uk/clearview/internal/service"

	"github.com/clearview-uk/clearview/internal/common"
)

// Helper function to create test storage.
func createTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func testStatement(companyNumber string, year int) model.FinancialStatement {
	return model.FinancialStatement{
		CompanyNumber:      companyNumber,
		PeriodStart:        time.Date(year-1, 4, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:          time.Date(year, 3, 31, 0, 0, 0, 0, time.UTC),
		Turnover:           model.Float(1000000),
		CurrentAssets:      model.Float(300000),
		CurrentLiabilities: model.Float(200000),
		TotalAssets:        model.Float(900000),
		TotalLiabilities:   model.Float(500000),
		NetAssets:          model.Float(400000),
		RetainedEarnings:   model.Float(250000),
	}
}

func TestSaveAndGetStatements(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	st := testStatement("00012345", 2024)
	st.Ambiguities = []string{"net_assets"}
	require.NoError(t, store.SaveStatements(ctx, []model.FinancialStatement{st}))

	got, err := store.GetStatements(ctx, "00012345")
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, "00012345", got[0].CompanyNumber)
	assert.True(t, got[0].PeriodEnd.Equal(st.PeriodEnd))
	require.NotNil(t, got[0].Turnover)
	assert.InDelta(t, 1000000, *got[0].Turnover, 0.001)
	assert.Nil(t, got[0].EBIT, "untagged field survives round trip as nil")
	assert.Equal(t, []string{"net_assets"}, got[0].Ambiguities)
}

func TestSaveStatements_ReplaceOnReparse(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	st := testStatement("00012345", 2024)
	require.NoError(t, store.SaveStatements(ctx, []model.FinancialStatement{st}))

	st.Turnover = model.Float(2000000)
	require.NoError(t, store.SaveStatements(ctx, []model.FinancialStatement{st}))

	got, err := store.GetStatements(ctx, "00012345")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.InDelta(t, 2000000, *got[0].Turnover, 0.001)
}

func TestGetStatements_NewestFirst(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	statements := []model.FinancialStatement{
		testStatement("00012345", 2022),
		testStatement("00012345", 2024),
		testStatement("00012345", 2023),
	}
	require.NoError(t, store.SaveStatements(ctx, statements))

	got, err := store.GetStatements(ctx, "00012345")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 2024, got[0].Year())
	assert.Equal(t, 2023, got[1].Year())
	assert.Equal(t, 2022, got[2].Year())
}

func TestHasStatement(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	st := testStatement("00012345", 2024)
	require.NoError(t, store.SaveStatements(ctx, []model.FinancialStatement{st}))

	has, err := store.HasStatement(ctx, "00012345", st.PeriodEnd)
	require.NoError(t, err)
	assert.True(t, has)

	has, err = store.HasStatement(ctx, "00012345", time.Date(2020, 3, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.False(t, has)

	has, err = store.HasStatement(ctx, "99999999", st.PeriodEnd)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestListCompanies(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.SaveStatements(ctx, []model.FinancialStatement{
		testStatement("00012345", 2024),
		testStatement("00054321", 2024),
		testStatement("00012345", 2023),
	}))

	companies, err := store.ListCompanies(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"00012345", "00054321"}, companies)
}

func TestSaveStatements_Validation(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	err := store.SaveStatements(ctx, nil)
	assert.ErrorIs(t, err, ErrNilParameter)

	err = store.SaveStatements(ctx, []model.FinancialStatement{})
	assert.ErrorIs(t, err, ErrEmptySlice)

	err = store.SaveStatements(ctx, []model.FinancialStatement{{PeriodEnd: time.Now()}})
	assert.ErrorIs(t, err, ErrInvalidStatement)
}

func TestScoreResultRoundTrip(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	result := model.ScoreResult{
		Tier:  model.TierHybrid,
		Score: model.Float(2.41),
		Band: model.Band{
			Grade:       "C",
			Label:       "Fair",
			Description: "Some concerns. Monitor closely.",
		},
		Suffix:  model.SuffixApproximate,
		Signals: []string{"current ratio below 1"},
	}
	require.NoError(t, store.SaveScoreResult(ctx, "00012345", result))

	got, err := store.GetScoreResult(ctx, "00012345")
	require.NoError(t, err)

	assert.Equal(t, model.TierHybrid, got.Tier)
	require.NotNil(t, got.Score)
	assert.InDelta(t, 2.41, *got.Score, 0.0001)
	assert.Equal(t, result.Band, got.Band)
	assert.Equal(t, result.Signals, got.Signals)
	assert.Equal(t, "C (approx)", got.Rating())
}

func TestGetScoreResult_NotFound(t *testing.T) {
	store := createTestStorage(t)

	_, err := store.GetScoreResult(context.Background(), "00099999")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSaveScoreResult_RejectsUnknownTier(t *testing.T) {
	store := createTestStorage(t)

	err := store.SaveScoreResult(context.Background(), "00012345", model.ScoreResult{Tier: "BOGUS"})
	assert.ErrorIs(t, err, ErrInvalidScore)
}

func TestFeatureVectorRoundTrip(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	vector := model.FeatureVector{
		SchemaVersion:  model.FeatureSchemaVersion,
		CompanyNumber:  "00012345",
		YearsAvailable: 3,
		LatestYear:     2024,
		NetAssets: model.MetricTrend{
			Latest:         120000,
			PctChange:      -25,
			YearsDeclining: 2,
			SignFlipped:    0,
		},
		CurrentRatio: 1.5,
		Leverage:     0.4,
	}
	require.NoError(t, store.SaveFeatureVector(ctx, vector))

	got, err := store.GetFeatureVector(ctx, "00012345")
	require.NoError(t, err)
	assert.Equal(t, vector, *got)
}

func TestGetFeatureVector_NotFound(t *testing.T) {
	store := createTestStorage(t)

	_, err := store.GetFeatureVector(context.Background(), "00099999")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestFailureLog(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	first := service.FailureRecord{
		RunID:      "run-1",
		Stage:      "parse",
		Source:     "/data/filings/broken.html",
		Error:      "document too short",
		OccurredAt: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
	}
	second := service.FailureRecord{
		RunID:         "run-1",
		Stage:         "parse",
		CompanyNumber: "00012345",
		Source:        "/data/filings/other.html",
		Error:         "no tagged facts found",
		OccurredAt:    time.Date(2024, 6, 1, 10, 5, 0, 0, time.UTC),
	}
	require.NoError(t, store.RecordFailure(ctx, first))
	require.NoError(t, store.RecordFailure(ctx, second))
	require.NoError(t, store.RecordFailure(ctx, service.FailureRecord{
		RunID: "run-2",
		Stage: "features",
		Error: "unrelated run",
	}))

	failures, err := store.GetFailures(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, failures, 2)

	assert.Equal(t, "document too short", failures[0].Error)
	assert.Equal(t, "00012345", failures[1].CompanyNumber)
	assert.Equal(t, "parse", failures[0].Stage)
}

func TestMigrate_Idempotent(t *testing.T) {
	store := createTestStorage(t)
	// A second migration run must be a no-op, not an error.
	require.NoError(t, store.Migrate(context.Background()))
}
