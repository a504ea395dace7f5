package query

import (
	"context"
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/expensebot/internal/domain"
	"github.com/dvloznov/expensebot/internal/ledger"
)

// Pipeline is the analytical path: filter extraction, deterministic
// aggregation over the ledger, then composition.
type Pipeline struct {
	store    ledger.Store
	filters  *FilterExtractor
	composer *Composer
}

// NewPipeline wires the analytical path over a store and its extract and
// compose stages.
func NewPipeline(store ledger.Store, filters *FilterExtractor, composer *Composer) *Pipeline {
	return &Pipeline{store: store, filters: filters, composer: composer}
}

// Answer resolves a free-form question against the ledger. The returned
// aggregate carries the exact figures the answer restates, so callers (the
// dashboard ask box) can surface them alongside the narrative. Only a store
// read failure is an error; inference failures degrade inside the stages.
func (p *Pipeline) Answer(ctx context.Context, question string, today civil.Date) (string, domain.Aggregate, error) {
	filter := p.filters.Extract(ctx, question, today)

	records, err := p.store.All(ctx)
	if err != nil {
		return "", domain.Aggregate{}, fmt.Errorf("Answer: read ledger: %w", err)
	}

	agg := Aggregate(records, filter)
	return p.composer.Compose(ctx, question, agg), agg, nil
}
