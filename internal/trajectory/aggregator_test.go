package trajectory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearview-uk/clearview/internal/model"
)

func statementFor(year int, mutate func(*model.FinancialStatement)) model.FinancialStatement {
	st := model.FinancialStatement{
		CompanyNumber: "00012345",
		PeriodStart:   time.Date(year-1, 4, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:     time.Date(year, 3, 31, 0, 0, 0, 0, time.UTC),
	}
	if mutate != nil {
		mutate(&st)
	}
	return st
}

func TestBuild_SingleYearUsesSentinels(t *testing.T) {
	statements := []model.FinancialStatement{
		statementFor(2024, func(st *model.FinancialStatement) {
			st.NetAssets = model.Float(100000)
			st.TotalAssets = model.Float(250000)
			st.Cash = model.Float(20000)
		}),
	}

	vector := Build("00012345", statements)

	assert.Equal(t, model.FeatureSchemaVersion, vector.SchemaVersion)
	assert.Equal(t, 1, vector.YearsAvailable)
	assert.Equal(t, 2024, vector.LatestYear)

	// The latest value is real; every trend field takes the sentinel, not
	// zero and not a missing entry.
	assert.Equal(t, 100000.0, vector.NetAssets.Latest)
	assert.Equal(t, float64(model.Sentinel), vector.NetAssets.PctChange)
	assert.Equal(t, float64(model.Sentinel), vector.NetAssets.YearsDeclining)
	assert.Equal(t, float64(model.Sentinel), vector.NetAssets.SignFlipped)

	// Metrics never observed stay fully sentinel.
	assert.Equal(t, float64(model.Sentinel), vector.Turnover.Latest)
	assert.Equal(t, float64(model.Sentinel), vector.Turnover.PctChange)
}

func TestBuild_Empty(t *testing.T) {
	vector := Build("00012345", nil)

	assert.Equal(t, 0, vector.YearsAvailable)
	assert.Equal(t, 0, vector.LatestYear)
	assert.Equal(t, float64(model.Sentinel), vector.NetAssets.Latest)
	assert.Equal(t, float64(model.Sentinel), vector.CurrentRatio)
	assert.Equal(t, float64(model.Sentinel), vector.Leverage)
}

func TestBuild_TrendsAcrossYears(t *testing.T) {
	statements := []model.FinancialStatement{
		statementFor(2022, func(st *model.FinancialStatement) { st.NetAssets = model.Float(200000) }),
		statementFor(2023, func(st *model.FinancialStatement) { st.NetAssets = model.Float(160000) }),
		statementFor(2024, func(st *model.FinancialStatement) { st.NetAssets = model.Float(120000) }),
	}

	vector := Build("00012345", statements)

	assert.Equal(t, 3, vector.YearsAvailable)
	assert.Equal(t, 120000.0, vector.NetAssets.Latest)
	assert.InDelta(t, -25.0, vector.NetAssets.PctChange, 0.0001)
	assert.Equal(t, 2.0, vector.NetAssets.YearsDeclining)
	assert.Equal(t, 0.0, vector.NetAssets.SignFlipped)
}

func TestBuild_UnorderedInputIsSorted(t *testing.T) {
	statements := []model.FinancialStatement{
		statementFor(2024, func(st *model.FinancialStatement) { st.NetAssets = model.Float(120000) }),
		statementFor(2022, func(st *model.FinancialStatement) { st.NetAssets = model.Float(200000) }),
		statementFor(2023, func(st *model.FinancialStatement) { st.NetAssets = model.Float(160000) }),
	}

	vector := Build("00012345", statements)

	assert.Equal(t, 2024, vector.LatestYear)
	assert.Equal(t, 120000.0, vector.NetAssets.Latest)
	assert.InDelta(t, -25.0, vector.NetAssets.PctChange, 0.0001)
}

func TestBuild_SignFlip(t *testing.T) {
	statements := []model.FinancialStatement{
		statementFor(2022, func(st *model.FinancialStatement) { st.NetAssets = model.Float(50000) }),
		statementFor(2023, func(st *model.FinancialStatement) { st.NetAssets = model.Float(10000) }),
		statementFor(2024, func(st *model.FinancialStatement) { st.NetAssets = model.Float(-30000) }),
	}

	vector := Build("00012345", statements)
	assert.Equal(t, 1.0, vector.NetAssets.SignFlipped)
}

func TestBuild_LatestRatios(t *testing.T) {
	statements := []model.FinancialStatement{
		statementFor(2023, func(st *model.FinancialStatement) {
			st.CurrentAssets = model.Float(100000)
			st.CurrentLiabilities = model.Float(50000)
		}),
		statementFor(2024, func(st *model.FinancialStatement) {
			st.CurrentAssets = model.Float(90000)
			st.CurrentLiabilities = model.Float(60000)
			st.TotalAssets = model.Float(300000)
			st.TotalLiabilities = model.Float(120000)
			st.Cash = model.Float(15000)
		}),
	}

	vector := Build("00012345", statements)

	assert.InDelta(t, 1.5, vector.CurrentRatio, 0.0001)
	assert.InDelta(t, 1.5-2.0, vector.CurrentRatioTrend, 0.0001)
	assert.InDelta(t, 0.4, vector.Leverage, 0.0001)
	assert.InDelta(t, 0.25, vector.CashRatio, 0.0001)
}

func TestBuild_ZeroPreviousValue(t *testing.T) {
	statements := []model.FinancialStatement{
		statementFor(2023, func(st *model.FinancialStatement) { st.Cash = model.Float(0) }),
		statementFor(2024, func(st *model.FinancialStatement) { st.Cash = model.Float(5000) }),
	}

	vector := Build("00012345", statements)
	assert.Equal(t, 0.0, vector.Cash.PctChange)
}

func TestDeclineStreak(t *testing.T) {
	tests := []struct {
		name string
		vals []float64
		want int
	}{
		{name: "empty", vals: nil, want: 0},
		{name: "single value", vals: []float64{100}, want: 0},
		{name: "two declining", vals: []float64{100, 90}, want: 1},
		{name: "three declining", vals: []float64{100, 90, 80}, want: 2},
		{name: "recovery resets the streak", vals: []float64{100, 90, 80, 85}, want: 0},
		{name: "decline after recovery", vals: []float64{100, 90, 80, 85, 70}, want: 1},
		{name: "flat is not a decline", vals: []float64{100, 100, 100}, want: 0},
		{name: "all increasing", vals: []float64{50, 60, 70}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeclineStreak(tt.vals))
		})
	}
}

func TestBuild_SentinelDistinctFromZero(t *testing.T) {
	statements := []model.FinancialStatement{
		statementFor(2024, func(st *model.FinancialStatement) { st.Cash = model.Float(0) }),
	}

	vector := Build("00012345", statements)

	// An observed zero is a real value; only absence earns the sentinel.
	require.Equal(t, 0.0, vector.Cash.Latest)
	assert.Equal(t, float64(model.Sentinel), vector.Cash.PctChange)
	assert.Equal(t, float64(model.Sentinel), vector.Turnover.Latest)
}
