package ixbrl

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearview-uk/clearview/internal/model"
)

func durationCtx(id, start, end string) model.Context {
	return model.Context{ID: id, Kind: model.PeriodDuration, Start: start, End: end}
}

func instantCtx(id, end string) model.Context {
	return model.Context{ID: id, Kind: model.PeriodInstant, End: end}
}

func fact(concept, ctxRef string, value float64, decimals, order int) model.TaggedFact {
	return model.TaggedFact{
		Concept:    concept,
		FullName:   "uk-core:" + concept,
		ContextRef: ctxRef,
		Value:      value,
		Decimals:   decimals,
		Order:      order,
	}
}

func TestResolve_SingleYear(t *testing.T) {
	doc := &Document{
		Contexts: map[string]model.Context{
			"d1": durationCtx("d1", "2023-01-01", "2023-12-31"),
			"i1": instantCtx("i1", "2023-12-31"),
		},
		Facts: []model.TaggedFact{
			fact("Turnover", "d1", 500000, 0, 0),
			fact("OperatingProfitLoss", "d1", 40000, 0, 1),
			fact("CurrentAssets", "i1", 120000, 0, 2),
			fact("CreditorsDueWithinOneYear", "i1", -80000, 0, 3),
			fact("NetAssetsLiabilities", "i1", 200000, 0, 4),
		},
	}

	statements := NewResolver().Resolve(doc, "00012345")
	require.Len(t, statements, 1)

	st := statements[0]
	assert.Equal(t, "00012345", st.CompanyNumber)
	assert.Equal(t, time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), st.PeriodEnd)
	assert.Equal(t, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), st.PeriodStart)

	require.NotNil(t, st.Turnover)
	assert.InDelta(t, 500000, *st.Turnover, 0.001)
	require.NotNil(t, st.EBIT)
	assert.InDelta(t, 40000, *st.EBIT, 0.001)
	require.NotNil(t, st.CurrentAssets)
	require.NotNil(t, st.NetAssets)
	assert.Empty(t, st.Ambiguities)
}

func TestResolve_KeepsComparativePeriods(t *testing.T) {
	doc := &Document{
		Contexts: map[string]model.Context{
			"i-cur":  instantCtx("i-cur", "2023-12-31"),
			"i-prev": instantCtx("i-prev", "2022-12-31"),
		},
		Facts: []model.TaggedFact{
			fact("NetAssetsLiabilities", "i-cur", 250000, 0, 0),
			fact("NetAssetsLiabilities", "i-prev", 180000, 0, 1),
		},
	}

	statements := NewResolver().Resolve(doc, "00012345")
	require.Len(t, statements, 2)

	// Newest first.
	assert.Equal(t, 2023, statements[0].Year())
	assert.Equal(t, 2022, statements[1].Year())
	assert.InDelta(t, 250000, *statements[0].NetAssets, 0.001)
	assert.InDelta(t, 180000, *statements[1].NetAssets, 0.001)
}

func TestResolve_PrecisionWinsOverDuplicate(t *testing.T) {
	doc := &Document{
		Contexts: map[string]model.Context{
			"i1": instantCtx("i1", "2023-12-31"),
		},
		Facts: []model.TaggedFact{
			fact("NetAssetsLiabilities", "i1", 123000, -3, 0),
			fact("NetAssetsLiabilities", "i1", 123456, 0, 1),
		},
	}

	statements := NewResolver().Resolve(doc, "00012345")
	require.Len(t, statements, 1)
	require.NotNil(t, statements[0].NetAssets)
	assert.InDelta(t, 123456, *statements[0].NetAssets, 0.001)
	assert.Empty(t, statements[0].Ambiguities)
}

func TestResolve_EqualPrecisionConflictFlagsAmbiguity(t *testing.T) {
	doc := &Document{
		Contexts: map[string]model.Context{
			"i1": instantCtx("i1", "2023-12-31"),
		},
		Facts: []model.TaggedFact{
			fact("NetAssetsLiabilities", "i1", 100000, 0, 0),
			fact("NetAssetsLiabilities", "i1", 110000, 0, 1),
		},
	}

	statements := NewResolver().Resolve(doc, "00012345")
	require.Len(t, statements, 1)

	st := statements[0]
	// First occurrence in document order wins, and the conflict is flagged.
	require.NotNil(t, st.NetAssets)
	assert.InDelta(t, 100000, *st.NetAssets, 0.001)
	assert.Contains(t, st.Ambiguities, "net_assets")
}

func TestResolve_NonDimensionalPreferred(t *testing.T) {
	dimCtx := instantCtx("i-seg", "2023-12-31")
	dimCtx.Dimensional = true

	segFact := fact("NetAssetsLiabilities", "i-seg", 50000, 0, 0)
	segFact.Dimensional = true

	doc := &Document{
		Contexts: map[string]model.Context{
			"i1":    instantCtx("i1", "2023-12-31"),
			"i-seg": dimCtx,
		},
		Facts: []model.TaggedFact{
			segFact,
			fact("NetAssetsLiabilities", "i1", 200000, 0, 1),
		},
	}

	statements := NewResolver().Resolve(doc, "00012345")
	require.Len(t, statements, 1)
	require.NotNil(t, statements[0].NetAssets)
	assert.InDelta(t, 200000, *statements[0].NetAssets, 0.001)
	assert.Empty(t, statements[0].Ambiguities)
}

func TestResolve_DerivedFieldCompletion(t *testing.T) {
	t.Run("totals from parts", func(t *testing.T) {
		doc := &Document{
			Contexts: map[string]model.Context{
				"i1": instantCtx("i1", "2023-12-31"),
			},
			Facts: []model.TaggedFact{
				fact("FixedAssets", "i1", 300000, 0, 0),
				fact("CurrentAssets", "i1", 200000, 0, 1),
				fact("CreditorsDueWithinOneYear", "i1", 150000, 0, 2),
				fact("CreditorsDueAfterOneYear", "i1", 100000, 0, 3),
			},
		}

		statements := NewResolver().Resolve(doc, "00012345")
		require.Len(t, statements, 1)

		st := statements[0]
		require.NotNil(t, st.TotalAssets)
		assert.InDelta(t, 500000, *st.TotalAssets, 0.001)
		require.NotNil(t, st.TotalLiabilities)
		assert.InDelta(t, 250000, *st.TotalLiabilities, 0.001)
		require.NotNil(t, st.NetAssets)
		assert.InDelta(t, 250000, *st.NetAssets, 0.001)
	})

	t.Run("gross profit from negative cost of sales", func(t *testing.T) {
		doc := &Document{
			Contexts: map[string]model.Context{
				"d1": durationCtx("d1", "2023-01-01", "2023-12-31"),
				"i1": instantCtx("i1", "2023-12-31"),
			},
			Facts: []model.TaggedFact{
				fact("Turnover", "d1", 900000, 0, 0),
				fact("CostSales", "d1", -600000, 0, 1),
				fact("NetAssetsLiabilities", "i1", 100000, 0, 2),
			},
		}

		statements := NewResolver().Resolve(doc, "00012345")
		require.Len(t, statements, 1)
		require.NotNil(t, statements[0].GrossProfit)
		assert.InDelta(t, 300000, *statements[0].GrossProfit, 0.001)
	})
}

func TestResolve_DropsEmptyPeriods(t *testing.T) {
	doc := &Document{
		Contexts: map[string]model.Context{
			"d1":    durationCtx("d1", "2023-01-01", "2023-12-31"),
			"i1":    instantCtx("i1", "2023-12-31"),
			"d-old": durationCtx("d-old", "2019-01-01", "2019-12-31"),
		},
		Facts: []model.TaggedFact{
			fact("Turnover", "d1", 100000, 0, 0),
			fact("NetAssetsLiabilities", "i1", 50000, 0, 1),
			// The old period carries only an employee count: not usable.
			fact("AverageNumberEmployeesDuringPeriod", "d-old", 4, 0, 2),
		},
	}

	statements := NewResolver().Resolve(doc, "00012345")
	require.Len(t, statements, 1)
	assert.Equal(t, 2023, statements[0].Year())
}

func TestResolve_CapsPeriods(t *testing.T) {
	contexts := map[string]model.Context{}
	facts := []model.TaggedFact{}
	for i := 0; i < 6; i++ {
		id := string(rune('a' + i))
		end := time.Date(2023-i, 12, 31, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
		contexts[id] = instantCtx(id, end)
		facts = append(facts, fact("NetAssetsLiabilities", id, float64(1000*(i+1)), 0, i))
	}
	doc := &Document{Contexts: contexts, Facts: facts}

	statements := NewResolver().Resolve(doc, "00012345")
	require.Len(t, statements, maxPeriods)
	assert.Equal(t, 2023, statements[0].Year())
	assert.Equal(t, 2020, statements[len(statements)-1].Year())
}

func TestResolve_InstantFallbackForMisboundConcepts(t *testing.T) {
	// Some filers bind balance-sheet concepts to duration contexts.
	doc := &Document{
		Contexts: map[string]model.Context{
			"d1": durationCtx("d1", "2023-01-01", "2023-12-31"),
		},
		Facts: []model.TaggedFact{
			fact("NetAssetsLiabilities", "d1", 75000, 0, 0),
		},
	}

	statements := NewResolver().Resolve(doc, "00012345")
	require.Len(t, statements, 1)
	require.NotNil(t, statements[0].NetAssets)
	assert.InDelta(t, 75000, *statements[0].NetAssets, 0.001)
}

func TestAddAliases(t *testing.T) {
	resolver := NewResolver()
	resolver.AddAliases(map[string][]string{
		"turnover": {"GrossOperatingIncome"},
	})

	doc := &Document{
		Contexts: map[string]model.Context{
			"d1": durationCtx("d1", "2023-01-01", "2023-12-31"),
		},
		Facts: []model.TaggedFact{
			fact("GrossOperatingIncome", "d1", 42000, 0, 0),
		},
	}

	statements := resolver.Resolve(doc, "00012345")
	require.Len(t, statements, 1)
	require.NotNil(t, statements[0].Turnover)
	assert.InDelta(t, 42000, *statements[0].Turnover, 0.001)
}

func TestExtractCompanyNumber(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		content string
		want    string
	}{
		{
			name: "bulk filename",
			path: "Prod224_1234_00012345_20240331.html",
			want: "00012345",
		},
		{
			name: "bare eight digits",
			path: "accounts-09876543.html",
			want: "09876543",
		},
		{
			name:    "content fallback padded",
			path:    "accounts.html",
			content: `<CompanyNumber>123456</CompanyNumber>`,
			want:    "00123456",
		},
		{
			name:    "identifier tag",
			path:    "accounts.html",
			content: `<xbrli:identifier scheme="companies-house">04658739</xbrli:identifier>`,
			want:    "04658739",
		},
		{
			name: "nothing found",
			path: "accounts.html",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractCompanyNumber(tt.path, []byte(tt.content))
			assert.Equal(t, tt.want, got)
		})
	}
}
