// Package ixbrl parses inline-XBRL accounts documents and resolves their
// tagged facts into canonical financial statements.
//
// iXBRL filings are HTML documents with embedded XBRL tags. Financial values
// appear as ix:nonFraction elements carrying a taxonomy concept name and a
// contextRef pointing at a period definition elsewhere in the document.
package ixbrl

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/clearview-uk/clearview/internal/common"
	"github.com/clearview-uk/clearview/internal/model"
)

// Document is the tokenized form of one filing: period contexts plus every
// tagged numeric fact, in document order.
type Document struct {
	Contexts map[string]model.Context
	Facts    []model.TaggedFact
}

// minDocumentSize filters out stub files and empty downloads before any
// parsing is attempted.
const minDocumentSize = 200

var nonNumericChars = regexp.MustCompile(`[^\d.\-]`)

// Parse tokenizes an iXBRL document. It fails with an UnparseableError when
// the stream is not a tagged filing at all; a filing that merely lacks some
// concepts parses fine and resolves to sparse statements.
func Parse(r io.Reader) (*Document, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	if len(raw) < minDocumentSize {
		return nil, common.NewUnparseableError("document too short")
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, common.NewUnparseableError(err.Error())
	}

	contexts := parseContexts(doc)

	facts := make([]model.TaggedFact, 0, 64)
	order := 0
	doc.Find(`ix\:nonfraction, ix\:nonnumeric`).Each(func(_ int, sel *goquery.Selection) {
		name, _ := sel.Attr("name")
		ctxRef, _ := sel.Attr("contextref")
		text := strings.TrimSpace(sel.Text())
		if name == "" || text == "" {
			return
		}

		sign, _ := sel.Attr("sign")
		scale, _ := sel.Attr("scale")
		unit, _ := sel.Attr("unitref")
		decimals, _ := sel.Attr("decimals")

		value, ok := parseValue(text, scale, sign)
		if !ok {
			return
		}

		local := name
		if i := strings.LastIndex(name, ":"); i >= 0 {
			local = name[i+1:]
		}

		facts = append(facts, model.TaggedFact{
			Concept:     local,
			FullName:    name,
			ContextRef:  ctxRef,
			Unit:        unit,
			Value:       value,
			Decimals:    parseDecimals(decimals),
			Order:       order,
			Dimensional: contexts[ctxRef].Dimensional,
		})
		order++
	})

	if len(facts) == 0 {
		return nil, common.NewUnparseableError("no tagged facts found")
	}

	return &Document{Contexts: contexts, Facts: facts}, nil
}

func parseContexts(doc *goquery.Document) map[string]model.Context {
	contexts := make(map[string]model.Context)

	doc.Find(`xbrli\:context, context`).Each(func(_ int, sel *goquery.Selection) {
		id, ok := sel.Attr("id")
		if !ok {
			return
		}

		period := sel.Find(`xbrli\:period, period`).First()
		if period.Length() == 0 {
			return
		}

		ctx := model.Context{ID: id}

		start := strings.TrimSpace(period.Find(`xbrli\:startdate, startdate`).First().Text())
		end := strings.TrimSpace(period.Find(`xbrli\:enddate, enddate`).First().Text())
		instant := strings.TrimSpace(period.Find(`xbrli\:instant, instant`).First().Text())

		switch {
		case start != "" && end != "":
			ctx.Kind = model.PeriodDuration
			ctx.Start = truncateDate(start)
			ctx.End = truncateDate(end)
		case instant != "":
			ctx.Kind = model.PeriodInstant
			ctx.End = truncateDate(instant)
		default:
			return
		}

		// Segment members mark breakdowns by dimension (subsidiary,
		// business line) rather than the consolidated entity total.
		segment := sel.Find(`xbrli\:segment, segment, xbrli\:scenario, scenario`)
		if segment.Length() > 0 {
			members := segment.Find(`xbrldi\:explicitmember, explicitmember, xbrldi\:typedmember, typedmember`)
			if members.Length() > 0 {
				ctx.Dimensional = true
			}
		}

		contexts[id] = ctx
	})

	return contexts
}

// parseValue cleans a presentational number: thousands separators, non-break
// spaces, accounting brackets for negatives, and the iXBRL scale attribute
// (scale="3" means the displayed value is in thousands).
func parseValue(text, scaleAttr, sign string) (float64, bool) {
	hasBrackets := strings.Contains(text, "(") && strings.Contains(text, ")")

	cleaned := strings.NewReplacer(",", "", " ", "", " ", "").Replace(text)
	cleaned = nonNumericChars.ReplaceAllString(cleaned, "")
	if cleaned == "" || cleaned == "-" || cleaned == "." {
		return 0, false
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}

	if scaleAttr != "" {
		if scale, serr := strconv.Atoi(scaleAttr); serr == nil && scale != 0 {
			for i := 0; i < scale; i++ {
				value *= 10
			}
			for i := 0; i > scale; i-- {
				value /= 10
			}
		}
	}

	if sign == "-" || hasBrackets {
		if value > 0 {
			value = -value
		}
	}

	return value, true
}

func parseDecimals(attr string) int {
	if attr == "" {
		return model.DecimalsUnknown
	}
	// decimals="INF" declares the value exact.
	if strings.EqualFold(attr, "INF") {
		return 10
	}
	d, err := strconv.Atoi(attr)
	if err != nil {
		return model.DecimalsUnknown
	}
	return d
}

func truncateDate(s string) string {
	if len(s) > 10 {
		return s[:10]
	}
	return s
}
