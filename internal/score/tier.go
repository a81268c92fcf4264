package score

import "github.com/clearview-uk/clearview/internal/model"

// tierRule pairs a tier with its explicit requirement predicate. Rules are
// evaluated strictly top-down; the first satisfied rule wins.
type tierRule struct {
	tier     model.Tier
	suffix   string
	requires func(*model.FinancialStatement) bool
}

// Requirements are nested so that a statement qualifying for a stricter
// tier always satisfies every looser tier's inputs. The MODELLED size proxy
// accepts turnover as well as employee count for exactly this reason: a
// FULL statement carries turnover even when no employee figure was filed.
var tierRules = []tierRule{
	{
		tier:   model.TierFull,
		suffix: model.SuffixNone,
		requires: func(st *model.FinancialStatement) bool {
			return st.Turnover != nil && st.CostOfSales != nil &&
				st.ProfitBeforeTax != nil && hasFullBalanceSheet(st)
		},
	},
	{
		tier:   model.TierHybrid,
		suffix: model.SuffixApproximate,
		requires: func(st *model.FinancialStatement) bool {
			return st.Turnover != nil && effectiveEBIT(st) != nil && hasFullBalanceSheet(st)
		},
	},
	{
		tier:   model.TierModelled,
		suffix: model.SuffixApproximate,
		requires: func(st *model.FinancialStatement) bool {
			return (st.Employees != nil || st.Turnover != nil) && hasFullBalanceSheet(st)
		},
	},
	{
		tier:     model.TierBalanceSheetOnly,
		suffix:   model.SuffixLimitedData,
		requires: hasSolvencyData,
	},
}

func hasFullBalanceSheet(st *model.FinancialStatement) bool {
	return st.CurrentAssets != nil && st.CurrentLiabilities != nil &&
		st.TotalAssets != nil && st.TotalLiabilities != nil &&
		st.RetainedEarnings != nil
}

// hasSolvencyData reports whether at least one fallback-score input is
// computable: net asset sign, leverage, or the current ratio.
func hasSolvencyData(st *model.FinancialStatement) bool {
	if st.NetAssets != nil {
		return true
	}
	if st.TotalAssets != nil && st.TotalLiabilities != nil {
		return true
	}
	return st.CurrentAssets != nil && st.CurrentLiabilities != nil
}

// SelectTier returns the strictest tier whose requirements the statement
// satisfies, with its fixed confidence suffix. Statements with no usable
// structured data land on NONE.
func SelectTier(st *model.FinancialStatement) (model.Tier, string) {
	for _, rule := range tierRules {
		if rule.requires(st) {
			return rule.tier, rule.suffix
		}
	}
	return model.TierNone, model.SuffixNone
}

// SuffixFor returns the confidence suffix fixed for a tier.
func SuffixFor(tier model.Tier) string {
	for _, rule := range tierRules {
		if rule.tier == tier {
			return rule.suffix
		}
	}
	return model.SuffixNone
}
