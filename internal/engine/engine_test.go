package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dvloznov/expensebot/internal/domain"
	"github.com/dvloznov/expensebot/internal/ledger"
	"github.com/dvloznov/expensebot/internal/ledger/memory"
	"github.com/dvloznov/expensebot/internal/llm"
	"github.com/dvloznov/expensebot/internal/metrics"
	metricsmem "github.com/dvloznov/expensebot/internal/metrics/memory"
	"github.com/dvloznov/expensebot/internal/parse"
	"github.com/dvloznov/expensebot/internal/query"
)

// scriptedGen returns canned responses in order and repeats the last one.
func scriptedGen(responses ...string) llm.Generator {
	i := 0
	return llm.GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		out := responses[i]
		if i < len(responses)-1 {
			i++
		}
		return out, nil
	})
}

func failingGen() llm.Generator {
	return llm.GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		return "", errors.New("service down")
	})
}

func newEngine(store ledger.Store, gen llm.Generator, collector metrics.Collector, dashboardURL string) *Engine {
	classifier := parse.NewClassifier(parse.NewExtractor(gen))
	pipeline := query.NewPipeline(store, query.NewFilterExtractor(gen), query.NewComposer(gen))
	return New(classifier, store, pipeline, collector, dashboardURL)
}

func TestHandleMessage_AddTransaction(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	e := newEngine(store, scriptedGen(`[{"action": "add", "i": "coffee", "a": 50, "c": "Food", "n": ""}]`), nil, "")

	reply := e.HandleMessage(ctx, "coffee 50")

	if !strings.Contains(reply, "✅ Coffee: 50 (Food)") {
		t.Errorf("reply = %q, want saved confirmation", reply)
	}

	all, _ := store.All(ctx)
	if len(all) != 1 || all[0].Item != "Coffee" {
		t.Errorf("ledger = %+v, want one Coffee record", all)
	}
}

func TestHandleMessage_IconConventions(t *testing.T) {
	tests := []struct {
		name     string
		response string
		wantIcon string
	}{
		{
			name:     "debt gets the note icon",
			response: `[{"action": "add", "i": "Rahul", "a": 500, "c": "Debt", "n": ""}]`,
			wantIcon: "📝",
		},
		{
			name:     "income gets the money icon",
			response: `[{"action": "add", "i": "Salary", "a": -50000, "c": "Miscellaneous", "n": ""}]`,
			wantIcon: "🤑",
		},
		{
			name:     "expense gets the check icon",
			response: `[{"action": "add", "i": "Coffee", "a": 50, "c": "Food", "n": ""}]`,
			wantIcon: "✅",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEngine(memory.New(), scriptedGen(tt.response), nil, "")
			reply := e.HandleMessage(context.Background(), "whatever 1")
			if !strings.Contains(reply, tt.wantIcon) {
				t.Errorf("reply = %q, want icon %q", reply, tt.wantIcon)
			}
		})
	}
}

func TestHandleMessage_NoteRenderedWhenPresent(t *testing.T) {
	e := newEngine(memory.New(), scriptedGen(`[{"action": "add", "i": "dinner", "a": 900, "c": "Food", "n": "with team"}]`), nil, "")

	reply := e.HandleMessage(context.Background(), "dinner 900 save c with team")
	if !strings.Contains(reply, "📌 with team") {
		t.Errorf("reply = %q, want note line", reply)
	}
}

func TestHandleMessage_BatchInsertsSequentially(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	response := `[
		{"action": "add", "i": "lunch", "a": 120, "c": "Food", "n": ""},
		{"action": "add", "i": "taxi", "a": 80, "c": "Travel", "n": ""}
	]`
	e := newEngine(store, scriptedGen(response), nil, "")

	reply := e.HandleMessage(ctx, "lunch 120 taxi 80")

	all, _ := store.All(ctx)
	if len(all) != 2 {
		t.Errorf("ledger has %d records, want 2", len(all))
	}
	if !strings.Contains(reply, "Lunch") || !strings.Contains(reply, "Taxi") {
		t.Errorf("reply = %q, want both confirmations", reply)
	}
}

func TestHandleMessage_DeleteRemovesNewestMatchOnly(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2025, 11, 1, 10, 0, 0, 0, time.UTC)
	store := memory.NewWithClock(func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	})
	older, _ := store.Insert(ctx, domain.Transaction{Item: "Coffee", Amount: 50, Category: "Food"})
	newer, _ := store.Insert(ctx, domain.Transaction{Item: "Coffee", Amount: 50, Category: "Food"})

	e := newEngine(store, scriptedGen(`[{"action": "delete", "i": "coffee", "a": 50}]`), nil, "")
	reply := e.HandleMessage(ctx, "delete coffee 50")

	if !strings.Contains(reply, "🗑️ Deleted: Coffee") {
		t.Errorf("reply = %q, want delete confirmation", reply)
	}

	all, _ := store.All(ctx)
	if len(all) != 1 {
		t.Fatalf("ledger has %d records, want exactly 1 left", len(all))
	}
	if all[0].ID != older.ID {
		t.Errorf("surviving record = %s, want the older one (newest %s removed)", all[0].ID, newer.ID)
	}
}

func TestHandleMessage_DeleteNoMatchLeavesLedgerUnchanged(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	store.Insert(ctx, domain.Transaction{Item: "Coffee", Amount: 50, Category: "Food"})

	e := newEngine(store, scriptedGen(`[{"action": "delete", "i": "pizza", "a": 300}]`), nil, "")
	reply := e.HandleMessage(ctx, "delete pizza 300")

	if !strings.Contains(reply, "⚠️ Not found: Pizza") {
		t.Errorf("reply = %q, want not-found line", reply)
	}

	all, _ := store.All(ctx)
	if len(all) != 1 {
		t.Errorf("ledger has %d records, want 1 (unchanged)", len(all))
	}
}

func TestHandleMessage_QuestionPath(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	store.Insert(ctx, domain.Transaction{Item: "Lunch", Amount: 100, Category: "Food"})

	gen := scriptedGen(
		`{"categories": ["Food"], "start": "", "end": "", "shape": "summary"}`,
		"You spent 100 on food 🍔",
	)
	e := newEngine(store, gen, nil, "")

	reply := e.HandleMessage(ctx, "how much did I spend on food?")
	if reply != "You spent 100 on food 🍔" {
		t.Errorf("reply = %q", reply)
	}
}

func TestHandleMessage_DashboardShortcut(t *testing.T) {
	e := newEngine(memory.New(), failingGen(), nil, "https://example.com/board")

	reply := e.HandleMessage(context.Background(), "show me the dashboard")
	if reply != "📊 Dashboard: https://example.com/board" {
		t.Errorf("reply = %q, want dashboard link", reply)
	}
}

func TestHandleMessage_FallbackParserSavesTrailingNumber(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	collector := metricsmem.New()
	e := newEngine(store, failingGen(), collector, "")

	// The extraction call fails, but the trailing-number shape still lands.
	// The compose path also fails, so a pure-question message would get an
	// apology; this one must be captured as a transaction instead.
	reply := e.HandleMessage(ctx, "street food 75")

	if !strings.Contains(reply, "Street Food: 75") {
		t.Errorf("reply = %q, want fallback capture", reply)
	}

	all, _ := store.All(ctx)
	if len(all) != 1 || all[0].Note != parse.FallbackNote {
		t.Errorf("ledger = %+v, want one fallback-flagged record", all)
	}
	if collector.Extractions[metrics.ExtractionFallback] != 1 {
		t.Errorf("fallback extractions = %d, want 1", collector.Extractions[metrics.ExtractionFallback])
	}
}

func TestHandleMessage_UnrecognizedInput(t *testing.T) {
	e := newEngine(memory.New(), scriptedGen(`[]`), nil, "")

	// No transaction data and the compose path works: analytical answer.
	// With an empty response script the composer returns the scripted text,
	// so use an empty message to hit the unrecognized branch directly.
	reply := e.HandleMessage(context.Background(), "   ")
	if reply != "😅 I didn't understand." {
		t.Errorf("reply = %q, want unrecognized message", reply)
	}
}

func TestHandleMessage_StoreFailureDoesNotAbortBatch(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{Store: memory.New(), failFirst: true}
	response := `[
		{"action": "add", "i": "lunch", "a": 120, "c": "Food", "n": ""},
		{"action": "add", "i": "taxi", "a": 80, "c": "Travel", "n": ""}
	]`
	e := newEngine(store, scriptedGen(response), nil, "")

	reply := e.HandleMessage(ctx, "lunch 120 taxi 80")

	if !strings.Contains(reply, "⚠️ Could not save: Lunch") {
		t.Errorf("reply = %q, want failed-save line for Lunch", reply)
	}
	if !strings.Contains(reply, "✅ Taxi: 80 (Travel)") {
		t.Errorf("reply = %q, want Taxi still recorded", reply)
	}
}

// flakyStore fails the first insert and then behaves normally.
type flakyStore struct {
	ledger.Store
	failFirst bool
}

func (s *flakyStore) Insert(ctx context.Context, t domain.Transaction) (domain.Transaction, error) {
	if s.failFirst {
		s.failFirst = false
		return domain.Transaction{}, errors.New("write failed")
	}
	return s.Store.Insert(ctx, t)
}
