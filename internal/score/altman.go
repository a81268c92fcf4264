package score

import (
	"github.com/clearview-uk/clearview/internal/benchmark"
	"github.com/clearview-uk/clearview/internal/model"
)

// Z'-Score coefficients for private firms (Altman, 1983). These are a fixed
// published contract: the bulk model was trained against scores produced
// with exactly these weights, so they are never re-derived or tuned here.
const (
	coefWorkingCapital   = 0.717
	coefRetainedEarnings = 0.847
	coefEBIT             = 3.107
	coefEquity           = 0.420
	coefAssetTurnover    = 0.998
)

// zScore computes the Z'-Score from a statement plus the tier's EBIT and
// turnover figures (tagged, approximated or estimated depending on tier).
// Returns nil when any component is incomputable; the caller degrades the
// tier rather than erroring.
func zScore(st *model.FinancialStatement, ebit, turnover *float64) *float64 {
	var workingCapital *float64
	if st.CurrentAssets != nil && st.CurrentLiabilities != nil {
		workingCapital = model.Float(*st.CurrentAssets - *st.CurrentLiabilities)
	}

	equity := st.NetAssets
	if equity == nil && st.TotalAssets != nil && st.TotalLiabilities != nil {
		equity = model.Float(*st.TotalAssets - *st.TotalLiabilities)
	}

	x1 := safeDiv(workingCapital, st.TotalAssets)
	x2 := safeDiv(st.RetainedEarnings, st.TotalAssets)
	x3 := safeDiv(ebit, st.TotalAssets)
	x4 := safeDiv(equity, st.TotalLiabilities)
	x5 := safeDiv(turnover, st.TotalAssets)

	if x1 == nil || x2 == nil || x3 == nil || x4 == nil || x5 == nil {
		return nil
	}

	z := coefWorkingCapital**x1 +
		coefRetainedEarnings**x2 +
		coefEBIT**x3 +
		coefEquity**x4 +
		coefAssetTurnover**x5
	return model.Float(z)
}

// estimateModelled fills the P&L-derived inputs for the MODELLED tier from
// the sector benchmark entry. Turnover comes from the tagged figure when one
// exists, otherwise from headcount scaled by the sector's
// turnover-per-employee, otherwise from asset size scaled by the sector's
// expected asset turnover. EBIT is the sector's expected margin applied to
// that turnover.
func estimateModelled(st *model.FinancialStatement, sector benchmark.Sector) (ebit, turnover *float64) {
	switch {
	case st.Turnover != nil:
		turnover = st.Turnover
	case st.Employees != nil && sector.TurnoverPerEmployee > 0:
		turnover = model.Float(*st.Employees * sector.TurnoverPerEmployee)
	case st.TotalAssets != nil:
		turnover = model.Float(*st.TotalAssets * sector.AssetTurnover.Mid())
	default:
		return nil, nil
	}

	ebit = model.Float(*turnover * sector.EBITMargin.Mid())
	return ebit, turnover
}

// fallbackScore is the balance-sheet-only score: a weighted combination of
// leverage, net-asset sign and the current ratio. The weights and intercept
// come from injected calibration, never from code. Terms whose inputs are
// missing are simply omitted; with no computable term at all the score is
// nil and the statement is unscorable.
func fallbackScore(st *model.FinancialStatement, cal benchmark.Calibration) *float64 {
	ratios := Ratios(st)
	score := cal.Intercept
	anyTerm := false

	if ratios.Leverage != nil {
		score += cal.LeverageWeight * (1 - *ratios.Leverage)
		anyTerm = true
	}

	if sign := netAssetSign(st); sign != nil {
		score += cal.NetAssetSignWeight * *sign
		anyTerm = true
	}

	if ratios.CurrentRatio != nil && cal.CurrentRatioCap > 0 {
		cr := *ratios.CurrentRatio
		if cr > cal.CurrentRatioCap {
			cr = cal.CurrentRatioCap
		}
		score += cal.CurrentRatioWeight * (cr - 1)
		anyTerm = true
	}

	if !anyTerm {
		return nil
	}
	return model.Float(score)
}

func netAssetSign(st *model.FinancialStatement) *float64 {
	equity := st.NetAssets
	if equity == nil && st.TotalAssets != nil && st.TotalLiabilities != nil {
		equity = model.Float(*st.TotalAssets - *st.TotalLiabilities)
	}
	if equity == nil {
		return nil
	}
	switch {
	case *equity > 0:
		return model.Float(1)
	case *equity < 0:
		return model.Float(-1)
	default:
		return model.Float(0)
	}
}
