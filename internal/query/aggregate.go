package query

import (
	"sort"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/expensebot/internal/domain"
)

// Aggregate applies a filter to the record set and computes exact sums and
// group-bys. This is the sole source of truth for any number shown to the
// user; no model output ever feeds back into these figures.
//
// Date bounds are inclusive and compared on the civil date of CreatedAt;
// category membership is case-insensitive. An empty filtered set yields a
// zero total and empty breakdowns, not an error.
func Aggregate(records []domain.Transaction, f domain.QueryFilter) domain.Aggregate {
	agg := domain.Aggregate{PerCategory: make(map[string]float64)}

	categories := make(map[string]bool, len(f.Categories))
	for _, c := range f.Categories {
		categories[strings.ToUpper(strings.TrimSpace(c))] = true
	}

	noStart := f.Start == (civil.Date{})
	noEnd := f.End == (civil.Date{})

	for _, t := range records {
		if len(categories) > 0 && !categories[strings.ToUpper(strings.TrimSpace(t.Category))] {
			continue
		}

		d := civil.DateOf(t.CreatedAt)
		if !noStart && d.Before(f.Start) {
			continue
		}
		if !noEnd && d.After(f.End) {
			continue
		}

		agg.Total += t.Amount
		agg.PerCategory[t.Category] += t.Amount
		if f.Shape == domain.ShapeBreakdown {
			agg.Items = append(agg.Items, t)
		}
	}

	sort.SliceStable(agg.Items, func(i, j int) bool {
		return agg.Items[i].CreatedAt.After(agg.Items[j].CreatedAt)
	})

	return agg
}
