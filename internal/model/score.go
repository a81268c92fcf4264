package model

// Tier is the data-availability level a statement qualified for. It fixes
// both the scoring method and the confidence suffix on the final rating.
type Tier string

// Tiers in strict descending order of data quality.
const (
	TierFull             Tier = "FULL"
	TierHybrid           Tier = "HYBRID"
	TierModelled         Tier = "MODELLED"
	TierBalanceSheetOnly Tier = "BALANCE_SHEET_ONLY"
	TierNone             Tier = "NONE"
)

// Confidence suffixes appended to the rating band, fixed per tier.
const (
	SuffixNone        = ""
	SuffixApproximate = "(approx)"
	SuffixLimitedData = "(limited data)"
)

// Band is one rating band on the score axis.
type Band struct {
	Grade       string // single letter, A strongest
	Label       string
	Description string
}

// ScoreResult is the outcome of assessing one statement. It is derived data:
// the core computes it fresh on every call and never persists it itself.
type ScoreResult struct {
	Tier    Tier
	Score   *float64 // nil when Tier is NONE
	Band    Band
	Suffix  string
	Signals []string
}

// Rating renders the displayed rating: band grade plus the tier's suffix.
func (r ScoreResult) Rating() string {
	if r.Tier == TierNone {
		return "unrated"
	}
	if r.Suffix == "" {
		return r.Band.Grade
	}
	return r.Band.Grade + " " + r.Suffix
}
