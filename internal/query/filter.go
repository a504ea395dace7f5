// Package query answers analytical questions against the ledger: a model
// extracts structured filters, a pure function does the arithmetic, and a
// composer phrases the result. The model never does the math.
package query

import (
	"context"
	"encoding/json"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/expensebot/internal/domain"
	"github.com/dvloznov/expensebot/internal/llm"
	"github.com/dvloznov/expensebot/internal/logger"
	"github.com/dvloznov/expensebot/internal/parse"
	"github.com/dvloznov/expensebot/internal/taxonomy"
)

// FilterExtractor derives a QueryFilter from a free-form question.
type FilterExtractor struct {
	gen llm.Generator
}

// NewFilterExtractor creates a filter extractor over the given backend.
// Like transaction extraction, this path does not retry: any failure
// resolves to the widest filter.
func NewFilterExtractor(gen llm.Generator) *FilterExtractor {
	return &FilterExtractor{gen: gen}
}

// widestFilter is the fallback when extraction fails: no category bound,
// no date bound, summary shape. The aggregator then answers over the whole
// ledger rather than erroring.
func widestFilter() domain.QueryFilter {
	return domain.QueryFilter{Shape: domain.ShapeSummary}
}

// Extract resolves the question into a structured filter. The reference
// date is an explicit input so relative expressions ("this month", "last
// week") are resolved at call time, never against implicit global state.
func (f *FilterExtractor) Extract(ctx context.Context, question string, today civil.Date) domain.QueryFilter {
	log := logger.FromContext(ctx)

	raw, err := f.gen.Generate(ctx, buildFilterPrompt(question, today))
	if err != nil {
		log.Warn().Err(err).Msg("Filter extraction failed, using widest filter")
		return widestFilter()
	}

	var out struct {
		Categories []string `json:"categories"`
		Start      string   `json:"start"`
		End        string   `json:"end"`
		Shape      string   `json:"shape"`
	}
	if err := json.Unmarshal([]byte(parse.CleanModelJSON(raw)), &out); err != nil {
		log.Warn().Err(err).Str("raw", raw).Msg("Filter output undecodable, using widest filter")
		return widestFilter()
	}

	filter := widestFilter()

	// Unknown category names from the model are dropped, not errors.
	for _, name := range out.Categories {
		if c, ok := taxonomy.Canonical(name); ok {
			filter.Categories = append(filter.Categories, c)
		} else {
			log.Warn().Str("category", name).Msg("Dropping unknown category from filter")
		}
	}

	if out.Start != "" {
		if d, err := civil.ParseDate(out.Start); err == nil {
			filter.Start = d
		} else {
			log.Warn().Str("start", out.Start).Msg("Ignoring invalid start date")
		}
	}
	if out.End != "" {
		if d, err := civil.ParseDate(out.End); err == nil {
			filter.End = d
		} else {
			log.Warn().Str("end", out.End).Msg("Ignoring invalid end date")
		}
	}

	if strings.EqualFold(out.Shape, string(domain.ShapeBreakdown)) {
		filter.Shape = domain.ShapeBreakdown
	}

	return filter
}

func buildFilterPrompt(question string, today civil.Date) string {
	var b strings.Builder

	b.WriteString("You are a query planner for a personal expense ledger.\n")
	b.WriteString("Today's date is " + today.String() + ".\n")
	b.WriteString("User Question: \"" + question + "\"\n\n")

	b.WriteString("Task: derive the filters needed to answer the question.\n\n")

	b.WriteString("Output a single JSON object with these fields:\n")
	b.WriteString("- \"categories\": list of category names the question refers to, from: " + taxonomy.PromptList() + ". Empty list means all categories.\n")
	b.WriteString("- \"start\": inclusive start date \"YYYY-MM-DD\", or \"\" for no lower bound.\n")
	b.WriteString("- \"end\": inclusive end date \"YYYY-MM-DD\", or \"\" for no upper bound.\n")
	b.WriteString("- \"shape\": \"summary\" for a total with per-category figures, \"breakdown\" for an itemized chronological listing.\n\n")

	b.WriteString("Resolve relative date language (\"this month\", \"last week\") into absolute dates using today's date.\n")
	b.WriteString("Output ONLY valid raw JSON. No comments, no Markdown, no code fences.\n")

	return b.String()
}
