// Package score implements the tiered credit scoring engine: derived ratio
// calculation, data-availability tier selection, the Z'-Score and
// balance-sheet fallback scorers, and the rating band mapper.
package score

import "github.com/clearview-uk/clearview/internal/model"

// Ratios computes the derived ratios for one statement. Every ratio declares
// its inputs explicitly; a nil input or a zero denominator yields a nil
// ratio, never an error or an infinity.
func Ratios(st *model.FinancialStatement) model.DerivedRatios {
	var workingCapital *float64
	if st.CurrentAssets != nil && st.CurrentLiabilities != nil {
		workingCapital = model.Float(*st.CurrentAssets - *st.CurrentLiabilities)
	}

	return model.DerivedRatios{
		WorkingCapitalRatio:   safeDiv(workingCapital, st.TotalAssets),
		CurrentRatio:          safeDiv(st.CurrentAssets, st.CurrentLiabilities),
		CashRatio:             safeDiv(st.Cash, st.CurrentLiabilities),
		Leverage:              safeDiv(st.TotalLiabilities, st.TotalAssets),
		RetainedEarningsRatio: safeDiv(st.RetainedEarnings, st.TotalAssets),
		EBITMargin:            safeDiv(effectiveEBIT(st), st.Turnover),
	}
}

// safeDiv divides a by b, returning nil when either input is nil or the
// denominator is zero.
func safeDiv(a, b *float64) *float64 {
	if a == nil || b == nil || *b == 0 {
		return nil
	}
	return model.Float(*a / *b)
}

// effectiveEBIT returns tagged operating profit when available, falling back
// to profit before tax. Small-company filings rarely tag interest, so PBT is
// the standard approximation when no operating profit line exists.
func effectiveEBIT(st *model.FinancialStatement) *float64 {
	if st.EBIT != nil {
		return st.EBIT
	}
	return st.ProfitBeforeTax
}
