package score

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearview-uk/clearview/internal/benchmark"
	"github.com/clearview-uk/clearview/internal/model"
)

func TestZScore(t *testing.T) {
	st := &model.FinancialStatement{
		CurrentAssets:      model.Float(300000),
		CurrentLiabilities: model.Float(200000),
		TotalAssets:        model.Float(1000000),
		TotalLiabilities:   model.Float(400000),
		NetAssets:          model.Float(600000),
		RetainedEarnings:   model.Float(300000),
	}
	ebit := model.Float(100000)
	turnover := model.Float(1200000)

	got := zScore(st, ebit, turnover)
	require.NotNil(t, got)

	// x1=0.1 x2=0.3 x3=0.1 x4=1.5 x5=1.2 under the published weights.
	want := 0.717*0.1 + 0.847*0.3 + 3.107*0.1 + 0.420*1.5 + 0.998*1.2
	assert.InDelta(t, want, *got, 0.0001)
}

func TestZScore_EquityDerivedWhenNetAssetsMissing(t *testing.T) {
	st := &model.FinancialStatement{
		CurrentAssets:      model.Float(300000),
		CurrentLiabilities: model.Float(200000),
		TotalAssets:        model.Float(1000000),
		TotalLiabilities:   model.Float(400000),
		RetainedEarnings:   model.Float(300000),
	}

	got := zScore(st, model.Float(100000), model.Float(1200000))
	require.NotNil(t, got)

	want := 0.717*0.1 + 0.847*0.3 + 3.107*0.1 + 0.420*1.5 + 0.998*1.2
	assert.InDelta(t, want, *got, 0.0001)
}

func TestZScore_IncomputableComponents(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.FinancialStatement)
	}{
		{"no total assets", func(st *model.FinancialStatement) { st.TotalAssets = nil }},
		{"no retained earnings", func(st *model.FinancialStatement) { st.RetainedEarnings = nil }},
		{"no current liabilities", func(st *model.FinancialStatement) { st.CurrentLiabilities = nil }},
		{"zero total liabilities", func(st *model.FinancialStatement) { st.TotalLiabilities = model.Float(0) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := &model.FinancialStatement{
				CurrentAssets:      model.Float(300000),
				CurrentLiabilities: model.Float(200000),
				TotalAssets:        model.Float(1000000),
				TotalLiabilities:   model.Float(400000),
				NetAssets:          model.Float(600000),
				RetainedEarnings:   model.Float(300000),
			}
			tt.mutate(st)
			assert.Nil(t, zScore(st, model.Float(100000), model.Float(1200000)))
		})
	}
}

func testSector() benchmark.Sector {
	return benchmark.Sector{
		Name:                "Retail",
		EBITMargin:          benchmark.Range{Low: 0.02, High: 0.06},
		AssetTurnover:       benchmark.Range{Low: 1.0, High: 2.0},
		TurnoverPerEmployee: 90000,
	}
}

func TestEstimateModelled(t *testing.T) {
	t.Run("tagged turnover used directly", func(t *testing.T) {
		st := &model.FinancialStatement{Turnover: model.Float(500000)}
		ebit, turnover := estimateModelled(st, testSector())
		require.NotNil(t, turnover)
		assert.InDelta(t, 500000, *turnover, 0.001)
		require.NotNil(t, ebit)
		assert.InDelta(t, 500000*0.04, *ebit, 0.001)
	})

	t.Run("employees scaled by sector turnover per head", func(t *testing.T) {
		st := &model.FinancialStatement{Employees: model.Float(10)}
		ebit, turnover := estimateModelled(st, testSector())
		require.NotNil(t, turnover)
		assert.InDelta(t, 900000, *turnover, 0.001)
		require.NotNil(t, ebit)
		assert.InDelta(t, 900000*0.04, *ebit, 0.001)
	})

	t.Run("assets scaled by expected asset turnover", func(t *testing.T) {
		st := &model.FinancialStatement{TotalAssets: model.Float(600000)}
		ebit, turnover := estimateModelled(st, testSector())
		require.NotNil(t, turnover)
		assert.InDelta(t, 900000, *turnover, 0.001) // 600000 * 1.5
		require.NotNil(t, ebit)
	})

	t.Run("no size signal at all", func(t *testing.T) {
		ebit, turnover := estimateModelled(&model.FinancialStatement{}, testSector())
		assert.Nil(t, ebit)
		assert.Nil(t, turnover)
	})
}

func testCalibration() benchmark.Calibration {
	return benchmark.Calibration{
		Intercept:          1.2,
		LeverageWeight:     0.8,
		NetAssetSignWeight: 0.5,
		CurrentRatioWeight: 0.4,
		CurrentRatioCap:    3.0,
	}
}

func TestFallbackScore(t *testing.T) {
	t.Run("all terms", func(t *testing.T) {
		st := &model.FinancialStatement{
			CurrentAssets:      model.Float(300000),
			CurrentLiabilities: model.Float(200000),
			TotalAssets:        model.Float(1000000),
			TotalLiabilities:   model.Float(400000),
			NetAssets:          model.Float(600000),
		}

		got := fallbackScore(st, testCalibration())
		require.NotNil(t, got)

		want := 1.2 + 0.8*(1-0.4) + 0.5*1 + 0.4*(1.5-1)
		assert.InDelta(t, want, *got, 0.0001)
	})

	t.Run("current ratio capped", func(t *testing.T) {
		st := &model.FinancialStatement{
			CurrentAssets:      model.Float(2000000),
			CurrentLiabilities: model.Float(100000),
			NetAssets:          model.Float(1900000),
		}

		got := fallbackScore(st, testCalibration())
		require.NotNil(t, got)

		// Raw current ratio is 20; the cap holds it at 3.
		want := 1.2 + 0.5*1 + 0.4*(3-1)
		assert.InDelta(t, want, *got, 0.0001)
	})

	t.Run("negative net assets term", func(t *testing.T) {
		st := &model.FinancialStatement{NetAssets: model.Float(-500)}

		got := fallbackScore(st, testCalibration())
		require.NotNil(t, got)
		assert.InDelta(t, 1.2+0.5*(-1), *got, 0.0001)
	})

	t.Run("no computable term", func(t *testing.T) {
		assert.Nil(t, fallbackScore(&model.FinancialStatement{}, testCalibration()))
	})
}

func TestNetAssetSign(t *testing.T) {
	pos := netAssetSign(&model.FinancialStatement{NetAssets: model.Float(10)})
	require.NotNil(t, pos)
	assert.Equal(t, 1.0, *pos)

	neg := netAssetSign(&model.FinancialStatement{
		TotalAssets:      model.Float(100),
		TotalLiabilities: model.Float(150),
	})
	require.NotNil(t, neg)
	assert.Equal(t, -1.0, *neg)

	zero := netAssetSign(&model.FinancialStatement{NetAssets: model.Float(0)})
	require.NotNil(t, zero)
	assert.Equal(t, 0.0, *zero)

	assert.Nil(t, netAssetSign(&model.FinancialStatement{}))
}
