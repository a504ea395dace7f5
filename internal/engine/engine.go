// Package engine orchestrates the message pipeline: classify, then either
// apply transactions to the ledger or answer analytically. One engine call
// handles one inbound message; the ledger store is the only shared state.
package engine

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/expensebot/internal/domain"
	"github.com/dvloznov/expensebot/internal/ledger"
	"github.com/dvloznov/expensebot/internal/logger"
	"github.com/dvloznov/expensebot/internal/metrics"
	"github.com/dvloznov/expensebot/internal/parse"
	"github.com/dvloznov/expensebot/internal/query"
)

// Engine routes messages through the parsing and query pipelines.
type Engine struct {
	classifier   *parse.Classifier
	store        ledger.Store
	query        *query.Pipeline
	collector    metrics.Collector
	dashboardURL string
	today        func() civil.Date
}

// New wires an engine. Collector may be nil; metrics are then discarded.
func New(classifier *parse.Classifier, store ledger.Store, q *query.Pipeline, collector metrics.Collector, dashboardURL string) *Engine {
	if collector == nil {
		collector = metrics.NoOp{}
	}
	return &Engine{
		classifier:   classifier,
		store:        store,
		query:        q,
		collector:    collector,
		dashboardURL: dashboardURL,
		today:        func() civil.Date { return civil.DateOf(time.Now()) },
	}
}

// HandleMessage processes one inbound message and returns the reply text.
// It never returns an error: every failure mode resolves to a user-visible
// message per the documented fallbacks.
func (e *Engine) HandleMessage(ctx context.Context, text string) string {
	text = strings.TrimSpace(text)

	if text == "" {
		e.collector.RecordMessage(metrics.PathUnrecognized)
		return msgUnrecognized
	}

	if e.dashboardURL != "" && strings.Contains(strings.ToLower(text), "dashboard") {
		e.collector.RecordMessage(metrics.PathDashboard)
		return dashboardLine(e.dashboardURL)
	}

	cls := e.classifier.Classify(ctx, text)
	if cls.IsQuestion() {
		if cls.Chat {
			e.collector.RecordExtraction(metrics.ExtractionChat)
		}
		e.collector.RecordMessage(metrics.PathQuestion)
		return e.answer(ctx, text)
	}

	if cls.Fallback {
		e.collector.RecordExtraction(metrics.ExtractionFallback)
	} else {
		e.collector.RecordExtraction(metrics.ExtractionOK)
	}
	e.collector.RecordMessage(metrics.PathTransaction)

	// Batch adds are independent sequential inserts: a failing entry does
	// not roll back earlier ones.
	lines := make([]string, 0, len(cls.Intents))
	for _, intent := range cls.Intents {
		switch intent.Action {
		case domain.ActionDelete:
			lines = append(lines, e.applyDelete(ctx, intent))
		default:
			lines = append(lines, e.applyAdd(ctx, intent))
		}
	}

	if len(lines) == 0 {
		return msgUnrecognized
	}
	return savedReply(lines, e.dashboardURL)
}

// applyAdd inserts one record and renders its confirmation line.
func (e *Engine) applyAdd(ctx context.Context, intent domain.ParsedIntent) string {
	log := logger.FromContext(ctx)

	start := time.Now()
	saved, err := e.store.Insert(ctx, domain.Transaction{
		Item:     intent.Item,
		Amount:   intent.Amount,
		Category: intent.Category,
		Note:     intent.Note,
	})
	e.collector.RecordStoreOp("insert", err == nil, time.Since(start))
	if err != nil {
		log.Error().Err(err).Str("item", intent.Item).Msg("Insert failed")
		return notSavedLine(intent.Item)
	}

	return savedLine(saved)
}

// applyDelete resolves a fuzzy delete and renders its line. Exactly one
// record is removed per call, the most recent match; ties have no other
// discriminator, so recency wins.
func (e *Engine) applyDelete(ctx context.Context, intent domain.ParsedIntent) string {
	found, item, _, err := e.resolveDelete(ctx, intent.Item, intent.Amount)
	if err != nil {
		log := logger.FromContext(ctx)
		log.Error().Err(err).Str("item", intent.Item).Msg("Delete failed")
		return notFoundLine(intent.Item)
	}
	if !found {
		return notFoundLine(intent.Item)
	}
	return deletedLine(item)
}

// resolveDelete finds the newest record matching the amount exactly and the
// item fragment case-insensitively, and removes it. No match is a normal
// negative result, not an error.
func (e *Engine) resolveDelete(ctx context.Context, fragment string, amount float64) (found bool, item string, at time.Time, err error) {
	start := time.Now()
	match, err := e.store.FindMatch(ctx, amount, fragment)
	e.collector.RecordStoreOp("find_match", err == nil || errors.Is(err, ledger.ErrNotFound), time.Since(start))
	if errors.Is(err, ledger.ErrNotFound) {
		return false, "", time.Time{}, nil
	}
	if err != nil {
		return false, "", time.Time{}, err
	}

	start = time.Now()
	err = e.store.Delete(ctx, match.ID)
	e.collector.RecordStoreOp("delete", err == nil, time.Since(start))
	if errors.Is(err, ledger.ErrNotFound) {
		// Already gone; treat as not found rather than failing the batch.
		return false, "", time.Time{}, nil
	}
	if err != nil {
		return false, "", time.Time{}, err
	}

	return true, match.Item, match.CreatedAt, nil
}

// answer runs the analytical path.
func (e *Engine) answer(ctx context.Context, question string) string {
	answer, _, err := e.query.Answer(ctx, question, e.today())
	if err != nil {
		log := logger.FromContext(ctx)
		log.Error().Err(err).Msg("Query pipeline failed")
		return query.ApologyMessage
	}
	return answer
}
