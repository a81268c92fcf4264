package model

// DerivedRatios holds the financial ratios computed from a single statement.
// Each ratio is independently nullable: it is nil whenever any of its
// required inputs is nil or its denominator is zero. A nil ratio is never an
// error condition.
type DerivedRatios struct {
	WorkingCapitalRatio   *float64 // (current assets - current liabilities) / total assets
	CurrentRatio          *float64 // current assets / current liabilities
	CashRatio             *float64 // cash / current liabilities
	Leverage              *float64 // total liabilities / total assets
	RetainedEarningsRatio *float64 // retained earnings / total assets
	EBITMargin            *float64 // EBIT / turnover
}
