// Package trajectory combines a company's per-year canonical statements
// into the trend feature vector consumed by the external training pipeline.
//
// The vector's field set and its -999 sentinel convention are a
// compatibility contract with the trained model. The sentinel means
// "insufficient history" and is deliberately distinct from 0 (a real zero)
// and from a nil statement field (concept never observed).
package trajectory

import (
	"sort"

	"github.com/clearview-uk/clearview/internal/model"
)

type observation struct {
	year  int
	value float64
}

// Build derives the trend feature vector from a company's statements. The
// input is expected chronologically ordered and period-unique; ordering is
// enforced here so callers reading from storage need not care.
func Build(companyNumber string, statements []model.FinancialStatement) model.FeatureVector {
	ordered := append([]model.FinancialStatement(nil), statements...)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].PeriodEnd.Before(ordered[j].PeriodEnd)
	})

	vector := model.FeatureVector{
		SchemaVersion:  model.FeatureSchemaVersion,
		CompanyNumber:  companyNumber,
		YearsAvailable: len(ordered),
		LatestYear:     0,

		NetAssets:        trend(series(ordered, func(s *model.FinancialStatement) *float64 { return s.NetAssets })),
		TotalAssets:      trend(series(ordered, func(s *model.FinancialStatement) *float64 { return s.TotalAssets })),
		Cash:             trend(series(ordered, func(s *model.FinancialStatement) *float64 { return s.Cash })),
		RetainedEarnings: trend(series(ordered, func(s *model.FinancialStatement) *float64 { return s.RetainedEarnings })),
		Turnover:         trend(series(ordered, func(s *model.FinancialStatement) *float64 { return s.Turnover })),
		Employees:        trend(series(ordered, func(s *model.FinancialStatement) *float64 { return s.Employees })),

		CurrentRatio:      model.Sentinel,
		CurrentRatioTrend: model.Sentinel,
		Leverage:          model.Sentinel,
		CashRatio:         model.Sentinel,
	}

	if len(ordered) > 0 {
		latest := ordered[len(ordered)-1]
		vector.LatestYear = latest.Year()
		fillLatestRatios(&vector, &latest)
	}

	ratios := currentRatioSeries(ordered)
	if len(ratios) >= 1 {
		vector.CurrentRatio = ratios[len(ratios)-1]
	}
	if len(ratios) >= 2 {
		vector.CurrentRatioTrend = ratios[len(ratios)-1] - ratios[len(ratios)-2]
	}

	return vector
}

// series extracts the observed values of one metric, skipping years where
// the concept was never tagged.
func series(statements []model.FinancialStatement, get func(*model.FinancialStatement) *float64) []observation {
	obs := make([]observation, 0, len(statements))
	for i := range statements {
		if v := get(&statements[i]); v != nil {
			obs = append(obs, observation{year: statements[i].Year(), value: *v})
		}
	}
	return obs
}

// trend computes the per-metric feature block. With fewer than two
// observations every trend-dependent field takes the sentinel.
func trend(obs []observation) model.MetricTrend {
	t := model.MetricTrend{
		Latest:         model.Sentinel,
		PctChange:      model.Sentinel,
		YearsDeclining: model.Sentinel,
		SignFlipped:    model.Sentinel,
	}
	if len(obs) == 0 {
		return t
	}

	latest := obs[len(obs)-1].value
	t.Latest = latest
	if len(obs) < 2 {
		return t
	}

	prev := obs[len(obs)-2].value
	if prev == 0 {
		t.PctChange = 0
	} else {
		t.PctChange = (latest - prev) / abs(prev) * 100
	}

	t.YearsDeclining = float64(DeclineStreak(values(obs)))

	t.SignFlipped = 0
	if obs[0].value > 0 && latest < 0 {
		t.SignFlipped = 1
	}

	return t
}

// DeclineStreak counts the trailing run of strictly decreasing year-on-year
// changes: how many immediately preceding years the value fell. Any increase
// resets the counter, so [100, 90, 80] yields 2 and appending a recovery
// year yields 0.
func DeclineStreak(vals []float64) int {
	streak := 0
	for i := len(vals) - 1; i > 0; i-- {
		if vals[i] < vals[i-1] {
			streak++
		} else {
			break
		}
	}
	return streak
}

func currentRatioSeries(statements []model.FinancialStatement) []float64 {
	ratios := make([]float64, 0, len(statements))
	for i := range statements {
		st := &statements[i]
		if st.CurrentAssets != nil && st.CurrentLiabilities != nil && *st.CurrentLiabilities != 0 {
			ratios = append(ratios, *st.CurrentAssets/abs(*st.CurrentLiabilities))
		}
	}
	return ratios
}

func fillLatestRatios(vector *model.FeatureVector, latest *model.FinancialStatement) {
	if latest.TotalAssets != nil && latest.TotalLiabilities != nil && *latest.TotalAssets != 0 {
		vector.Leverage = abs(*latest.TotalLiabilities) / abs(*latest.TotalAssets)
	}
	if latest.Cash != nil && latest.CurrentLiabilities != nil && *latest.CurrentLiabilities != 0 {
		vector.CashRatio = *latest.Cash / abs(*latest.CurrentLiabilities)
	}
}

func values(obs []observation) []float64 {
	vals := make([]float64, len(obs))
	for i, o := range obs {
		vals[i] = o.value
	}
	return vals
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
