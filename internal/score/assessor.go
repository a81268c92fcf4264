package score

import (
	"errors"
	"log/slog"

	"github.com/clearview-uk/clearview/internal/benchmark"
	"github.com/clearview-uk/clearview/internal/common"
	"github.com/clearview-uk/clearview/internal/model"
)

// Assessor turns one canonical statement into a ScoreResult. It is pure and
// stateless apart from the injected benchmark table, so one assessor is
// safely shared across a worker pool without locking.
type Assessor struct {
	table  *benchmark.Table
	logger *slog.Logger
}

// NewAssessor creates an assessor over the given benchmark table. The table
// may be nil when no benchmark configuration is available; the MODELLED
// tier then degrades to BALANCE_SHEET_ONLY.
func NewAssessor(table *benchmark.Table) *Assessor {
	return &Assessor{
		table:  table,
		logger: slog.Default().With("component", "score"),
	}
}

// Unscored returns the ScoreResult for a filing that produced no usable
// statement at all (unparseable document or empty resolution).
func Unscored() model.ScoreResult {
	return model.ScoreResult{Tier: model.TierNone}
}

// Assess selects the tier for a statement, computes the tier-appropriate
// score and maps it onto a rating band. The sicCode drives the sector
// benchmark lookup for the MODELLED tier.
func (a *Assessor) Assess(st *model.FinancialStatement, sicCode string) model.ScoreResult {
	if st == nil {
		return Unscored()
	}

	ratios := Ratios(st)
	signals := buildSignals(st, ratios)
	tier, suffix := SelectTier(st)

	var score *float64
	switch tier {
	case model.TierFull, model.TierHybrid:
		score = zScore(st, effectiveEBIT(st), st.Turnover)
	case model.TierModelled:
		var degraded []string
		score, degraded = a.modelledScore(st, sicCode)
		signals = append(signals, degraded...)
	case model.TierBalanceSheetOnly:
		score = a.balanceSheetScore(st)
	case model.TierNone:
		return model.ScoreResult{Tier: model.TierNone, Signals: signals}
	}

	// An incomputable score at a stricter tier falls through to the
	// balance-sheet fallback before giving up entirely.
	if score == nil && tier != model.TierBalanceSheetOnly && tier != model.TierNone {
		tier, suffix = a.degrade(st)
	}
	if score == nil && tier == model.TierBalanceSheetOnly {
		score = a.balanceSheetScore(st)
	}
	if score == nil {
		return model.ScoreResult{Tier: model.TierNone, Signals: signals}
	}

	result := model.ScoreResult{
		Tier:    tier,
		Score:   score,
		Band:    MapRating(*score),
		Suffix:  suffix,
		Signals: signals,
	}

	a.logger.Debug("Assessed statement",
		"company", st.CompanyNumber,
		"period_end", st.PeriodEnd,
		"tier", result.Tier,
		"score", *score,
		"rating", result.Rating())

	return result
}

// modelledScore computes the Z'-Score with benchmark-estimated P&L inputs.
// A benchmark miss is not an error: it returns a nil score plus the degrade
// signal, and the caller falls back to the balance-sheet tier.
func (a *Assessor) modelledScore(st *model.FinancialStatement, sicCode string) (*float64, []string) {
	if a.table == nil {
		return nil, []string{SignalNoBenchmark}
	}

	sector, err := a.table.Lookup(sicCode)
	if err != nil {
		if !errors.Is(err, common.ErrNoBenchmark) {
			a.logger.Warn("Benchmark lookup failed", "sic", sicCode, "error", err)
		}
		return nil, []string{SignalNoBenchmark}
	}

	ebit, turnover := estimateModelled(st, sector)
	if ebit == nil {
		return nil, nil
	}
	return zScore(st, ebit, turnover), nil
}

// balanceSheetScore needs the injected calibration; without a table there
// is nothing defensible to compute and the result degrades to NONE.
func (a *Assessor) balanceSheetScore(st *model.FinancialStatement) *float64 {
	if a.table == nil {
		return nil
	}
	return fallbackScore(st, a.table.Calibration)
}

func (a *Assessor) degrade(st *model.FinancialStatement) (model.Tier, string) {
	if hasSolvencyData(st) {
		return model.TierBalanceSheetOnly, model.SuffixLimitedData
	}
	return model.TierNone, model.SuffixNone
}
