package ixbrl

import (
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/clearview-uk/clearview/internal/model"
)

// maxPeriods caps how many reporting periods one filing contributes. Filings
// restate up to three comparative years; anything beyond that is noise.
const maxPeriods = 4

// Resolver maps taxonomy-specific facts onto canonical financial statements,
// one per distinct reporting period found in the document.
type Resolver struct {
	aliases map[string][]string
	logger  *slog.Logger
}

// NewResolver creates a resolver with the built-in alias table.
func NewResolver() *Resolver {
	aliases := make(map[string][]string, len(defaultAliases))
	for field, names := range defaultAliases {
		aliases[field] = append([]string(nil), names...)
	}
	return &Resolver{
		aliases: aliases,
		logger:  slog.Default().With("component", "ixbrl"),
	}
}

// AddAliases merges extra concept aliases (e.g. loaded from an alias file)
// into the resolver's table.
func (r *Resolver) AddAliases(extra map[string][]string) {
	for field, names := range extra {
		r.aliases[field] = append(r.aliases[field], names...)
	}
}

type periodGroup struct {
	end      string
	start    string
	duration []string // non-dimensional duration context IDs
	instant  []string // non-dimensional instant context IDs
	all      []string // every context ID ending on this date, dimensional included
}

// Resolve builds one canonical statement per reporting period. A concept
// missing from the document leaves its field nil; that is expected, not an
// error. Periods carrying no balance-sheet or turnover data at all are
// dropped, remaining periods are deduplicated per calendar year keeping the
// richest record, ordered newest first, and capped at maxPeriods.
func (r *Resolver) Resolve(doc *Document, companyNumber string) []model.FinancialStatement {
	groups := groupPeriods(doc.Contexts)

	statements := make([]model.FinancialStatement, 0, len(groups))
	for _, group := range groups {
		st := r.resolvePeriod(doc, group)
		st.CompanyNumber = companyNumber

		// Keep only periods with at least some usable data.
		if st.TotalAssets == nil && st.NetAssets == nil && st.CurrentAssets == nil && st.Turnover == nil {
			continue
		}
		statements = append(statements, st)
	}

	statements = dedupeByYear(statements)

	sort.Slice(statements, func(i, j int) bool {
		return statements[i].PeriodEnd.After(statements[j].PeriodEnd)
	})
	if len(statements) > maxPeriods {
		statements = statements[:maxPeriods]
	}

	r.logger.Debug("Resolved filing",
		"company", companyNumber,
		"periods", len(statements),
		"facts", len(doc.Facts))

	return statements
}

func groupPeriods(contexts map[string]model.Context) []periodGroup {
	byEnd := make(map[string]*periodGroup)

	for id, ctx := range contexts {
		if ctx.End == "" {
			continue
		}
		group, ok := byEnd[ctx.End]
		if !ok {
			group = &periodGroup{end: ctx.End}
			byEnd[ctx.End] = group
		}
		group.all = append(group.all, id)
		if ctx.Dimensional {
			continue
		}
		switch ctx.Kind {
		case model.PeriodDuration:
			group.duration = append(group.duration, id)
			if group.start == "" || (ctx.Start != "" && ctx.Start < group.start) {
				group.start = ctx.Start
			}
		case model.PeriodInstant:
			group.instant = append(group.instant, id)
		}
	}

	groups := make([]periodGroup, 0, len(byEnd))
	for _, g := range byEnd {
		// Context IDs in deterministic order so tie-breaks are stable.
		sort.Strings(g.duration)
		sort.Strings(g.instant)
		sort.Strings(g.all)
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].end > groups[j].end })
	return groups
}

func (r *Resolver) resolvePeriod(doc *Document, group periodGroup) model.FinancialStatement {
	st := model.FinancialStatement{
		PeriodStart: parseDate(group.start),
		PeriodEnd:   parseDate(group.end),
	}

	for field := range r.aliases {
		preferred := group.instant
		if durationFields[field] {
			preferred = group.duration
		}

		fact, ambiguous, found := r.selectFact(doc.Facts, field, preferred)
		if !found {
			// Some filers bind balance-sheet items to duration contexts
			// and vice versa; fall back to every context on this date.
			fact, ambiguous, found = r.selectFact(doc.Facts, field, group.all)
		}
		if !found {
			continue
		}

		setField(&st, field, fact.Value)
		if ambiguous {
			st.Ambiguities = append(st.Ambiguities, field)
		}
	}
	sort.Strings(st.Ambiguities)

	completeDerivedFields(&st)
	return st
}

// selectFact applies the conflict policy over every fact matching the field
// in the given contexts: prefer the non-dimensional fact, then the fact with
// more decimal precision, then the first in document order. When equally
// ranked candidates disagree on value, the pick is flagged ambiguous.
func (r *Resolver) selectFact(facts []model.TaggedFact, field string, ctxIDs []string) (model.TaggedFact, bool, bool) {
	inPeriod := make(map[string]bool, len(ctxIDs))
	for _, id := range ctxIDs {
		inPeriod[id] = true
	}

	var candidates []model.TaggedFact
	for _, fact := range facts {
		if inPeriod[fact.ContextRef] && r.matches(field, fact.Concept) {
			candidates = append(candidates, fact)
		}
	}
	if len(candidates) == 0 {
		return model.TaggedFact{}, false, false
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Dimensional != b.Dimensional {
			return !a.Dimensional
		}
		if a.Decimals != b.Decimals {
			return a.Decimals > b.Decimals
		}
		return a.Order < b.Order
	})

	best := candidates[0]
	ambiguous := false
	for _, c := range candidates[1:] {
		if c.Dimensional == best.Dimensional && c.Decimals == best.Decimals && c.Value != best.Value {
			ambiguous = true
			break
		}
	}
	return best, ambiguous, true
}

func (r *Resolver) matches(field, localName string) bool {
	ln := strings.ToLower(localName)
	for _, alias := range r.aliases[field] {
		al := strings.ToLower(alias)
		if ln == al || strings.HasSuffix(ln, al) {
			return true
		}
	}
	return false
}

// completeDerivedFields fills totals that small-company filings rarely tag
// directly but that follow arithmetically from their parts.
func completeDerivedFields(st *model.FinancialStatement) {
	if st.TotalLiabilities == nil {
		switch {
		case st.CurrentLiabilities != nil && st.NonCurrentLiabilities != nil:
			st.TotalLiabilities = model.Float(*st.CurrentLiabilities + *st.NonCurrentLiabilities)
		case st.CurrentLiabilities != nil:
			st.TotalLiabilities = model.Float(*st.CurrentLiabilities)
		case st.TotalAssets != nil && st.NetAssets != nil:
			st.TotalLiabilities = model.Float(*st.TotalAssets - *st.NetAssets)
		}
	}

	if st.TotalAssets == nil && st.FixedAssets != nil && st.CurrentAssets != nil {
		st.TotalAssets = model.Float(*st.FixedAssets + *st.CurrentAssets)
	}

	if st.NetAssets == nil && st.TotalAssets != nil && st.TotalLiabilities != nil {
		st.NetAssets = model.Float(*st.TotalAssets - *st.TotalLiabilities)
	}

	if st.GrossProfit == nil && st.Turnover != nil && st.CostOfSales != nil {
		st.GrossProfit = model.Float(*st.Turnover - abs(*st.CostOfSales))
	}
}

func dedupeByYear(statements []model.FinancialStatement) []model.FinancialStatement {
	byYear := make(map[int]model.FinancialStatement)
	for _, st := range statements {
		existing, ok := byYear[st.Year()]
		if !ok || st.FieldCount() > existing.FieldCount() {
			byYear[st.Year()] = st
		}
	}
	out := make([]model.FinancialStatement, 0, len(byYear))
	for _, st := range byYear {
		out = append(out, st)
	}
	return out
}

func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func setField(st *model.FinancialStatement, field string, value float64) {
	v := model.Float(value)
	switch field {
	case fieldTurnover:
		st.Turnover = v
	case fieldCostOfSales:
		st.CostOfSales = v
	case fieldGrossProfit:
		st.GrossProfit = v
	case fieldEBIT:
		st.EBIT = v
	case fieldProfitBeforeTax:
		st.ProfitBeforeTax = v
	case fieldNetProfit:
		st.NetProfit = v
	case fieldCurrentAssets:
		st.CurrentAssets = v
	case fieldFixedAssets:
		st.FixedAssets = v
	case fieldTotalAssets:
		st.TotalAssets = v
	case fieldCurrentLiabilities:
		st.CurrentLiabilities = v
	case fieldNonCurrentLiabilities:
		st.NonCurrentLiabilities = v
	case fieldTotalLiabilities:
		st.TotalLiabilities = v
	case fieldNetAssets:
		st.NetAssets = v
	case fieldRetainedEarnings:
		st.RetainedEarnings = v
	case fieldCash:
		st.Cash = v
	case fieldShareCapital:
		st.ShareCapital = v
	case fieldEmployees:
		st.Employees = v
	}
}
