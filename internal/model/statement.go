package model

import "time"

// FinancialStatement holds the canonical line items resolved from one
// reporting period of a filing. Every field is nullable: a nil pointer means
// the concept was never observed in the document, which is expected for the
// majority of small-company filings. Statements are created once by the
// resolver and never mutated afterwards.
type FinancialStatement struct {
	CompanyNumber string
	PeriodStart   time.Time
	PeriodEnd     time.Time

	Turnover              *float64
	CostOfSales           *float64
	GrossProfit           *float64
	EBIT                  *float64
	ProfitBeforeTax       *float64
	NetProfit             *float64
	CurrentAssets         *float64
	FixedAssets           *float64
	TotalAssets           *float64
	CurrentLiabilities    *float64
	NonCurrentLiabilities *float64
	TotalLiabilities      *float64
	NetAssets             *float64
	RetainedEarnings      *float64
	Cash                  *float64
	ShareCapital          *float64
	Employees             *float64

	// Ambiguities lists concepts where multiple equally-ranked facts
	// matched and the first in document order was taken.
	Ambiguities []string
}

// Year returns the calendar year of the period end.
func (s *FinancialStatement) Year() int {
	return s.PeriodEnd.Year()
}

// FieldCount reports how many canonical fields carry a value. Used when
// deduplicating periods: the richest record for a year wins.
func (s *FinancialStatement) FieldCount() int {
	n := 0
	for _, f := range s.fields() {
		if f != nil {
			n++
		}
	}
	return n
}

func (s *FinancialStatement) fields() []*float64 {
	return []*float64{
		s.Turnover, s.CostOfSales, s.GrossProfit, s.EBIT, s.ProfitBeforeTax,
		s.NetProfit, s.CurrentAssets, s.FixedAssets, s.TotalAssets,
		s.CurrentLiabilities, s.NonCurrentLiabilities, s.TotalLiabilities,
		s.NetAssets, s.RetainedEarnings, s.Cash, s.ShareCapital, s.Employees,
	}
}

// HasProfitAndLoss reports whether any income-statement concept was tagged.
func (s *FinancialStatement) HasProfitAndLoss() bool {
	return s.Turnover != nil || s.CostOfSales != nil || s.GrossProfit != nil ||
		s.EBIT != nil || s.ProfitBeforeTax != nil || s.NetProfit != nil
}

// Float returns a pointer to v. Convenience for building statements in
// callers and tests.
func Float(v float64) *float64 {
	return &v
}
