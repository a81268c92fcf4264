package score

import "github.com/clearview-uk/clearview/internal/model"

// Signal flag strings. These appear verbatim in emitted ScoreResults, so
// renaming one is a breaking change for downstream consumers.
const (
	SignalNetAssetsNegative = "net assets negative"
	SignalAccumulatedLosses = "negative retained earnings"
	SignalLowCurrentRatio   = "current ratio below 1"
	SignalNoCashHeadroom    = "no cash headroom"
	SignalNoBenchmark       = "no sector benchmark"
)

// cashHeadroomFloor is the cash ratio below which a company is considered
// to have effectively no cash cover for its short-term creditors.
const cashHeadroomFloor = 0.05

// buildSignals collects the warning flags for one statement: resolver
// ambiguities plus threshold breaches on the derived ratios.
func buildSignals(st *model.FinancialStatement, ratios model.DerivedRatios) []string {
	signals := make([]string, 0, 4)

	for _, concept := range st.Ambiguities {
		signals = append(signals, "ambiguous "+concept)
	}

	if sign := netAssetSign(st); sign != nil && *sign < 0 {
		signals = append(signals, SignalNetAssetsNegative)
	}
	if st.RetainedEarnings != nil && *st.RetainedEarnings < 0 {
		signals = append(signals, SignalAccumulatedLosses)
	}
	if ratios.CurrentRatio != nil && *ratios.CurrentRatio < 1 {
		signals = append(signals, SignalLowCurrentRatio)
	}
	if ratios.CashRatio != nil && *ratios.CashRatio < cashHeadroomFloor {
		signals = append(signals, SignalNoCashHeadroom)
	}

	return signals
}
