package parse

import (
	"context"
	"errors"
	"testing"

	"github.com/dvloznov/expensebot/internal/domain"
	"github.com/dvloznov/expensebot/internal/llm"
)

func scripted(response string, err error) llm.Generator {
	return llm.GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		return response, err
	})
}

func TestExtract_SingleTransaction(t *testing.T) {
	ex := NewExtractor(scripted(`[{"action": "add", "i": "coffee", "a": 50, "c": "food", "n": ""}]`, nil))

	intents, chat, err := ex.Extract(context.Background(), "coffee 50")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if chat {
		t.Fatal("Extract() chat = true, want false")
	}
	if len(intents) != 1 {
		t.Fatalf("len(intents) = %d, want 1", len(intents))
	}

	got := intents[0]
	want := domain.ParsedIntent{Action: domain.ActionAdd, Item: "Coffee", Amount: 50, Category: "Food", Note: ""}
	if got != want {
		t.Errorf("intent = %+v, want %+v", got, want)
	}
}

func TestExtract_FencedOutput(t *testing.T) {
	ex := NewExtractor(scripted("```json\n[{\"action\": \"add\", \"i\": \"pizza\", \"a\": 300, \"c\": \"Food\", \"n\": \"\"}]\n```", nil))

	intents, _, err := ex.Extract(context.Background(), "pizza 300")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(intents) != 1 || intents[0].Item != "Pizza" {
		t.Errorf("intents = %+v, want one Pizza entry", intents)
	}
}

func TestExtract_ChatSignal(t *testing.T) {
	ex := NewExtractor(scripted(`{"action": "chat"}`, nil))

	intents, chat, err := ex.Extract(context.Background(), "thanks!")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !chat {
		t.Error("Extract() chat = false, want true")
	}
	if len(intents) != 0 {
		t.Errorf("intents = %+v, want none", intents)
	}
}

func TestExtract_BatchDropsInvalidEntries(t *testing.T) {
	response := `[
		{"action": "add", "i": "lunch", "a": 120, "c": "Food", "n": ""},
		{"action": "add", "i": "mystery", "a": 0, "c": "Food", "n": ""},
		{"action": "add", "i": "no amount", "c": "Food", "n": ""},
		{"action": "add", "i": "", "a": 40, "c": "Food", "n": ""},
		{"action": "add", "i": "taxi", "a": 80, "c": "Travel", "n": ""}
	]`
	ex := NewExtractor(scripted(response, nil))

	intents, _, err := ex.Extract(context.Background(), "lunch 120 and taxi 80")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(intents) != 2 {
		t.Fatalf("len(intents) = %d, want 2 (invalid entries dropped, batch preserved)", len(intents))
	}
	if intents[0].Item != "Lunch" || intents[1].Item != "Taxi" {
		t.Errorf("intents = %+v, want Lunch then Taxi", intents)
	}
}

func TestExtract_SharedExpenseDivision(t *testing.T) {
	ex := NewExtractor(scripted(`[{"action": "add", "i": "dinner", "a": "1200/3", "c": "Food", "n": ""}]`, nil))

	intents, _, err := ex.Extract(context.Background(), "dinner 1200 split 3 ways")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(intents) != 1 || intents[0].Amount != 400 {
		t.Errorf("intents = %+v, want one entry with amount 400", intents)
	}
}

func TestExtract_SignAndTenseConventions(t *testing.T) {
	tests := []struct {
		name         string
		response     string
		wantCategory string
		wantPositive bool
	}{
		{
			name:         "future obligation is Debt, positive",
			response:     `[{"action": "add", "i": "Rahul", "a": 500, "c": "Debt", "n": ""}]`,
			wantCategory: "Debt",
			wantPositive: true,
		},
		{
			name:         "past lending is Loan Given, positive",
			response:     `[{"action": "add", "i": "Rahul", "a": 500, "c": "Loan Given", "n": ""}]`,
			wantCategory: "Loan Given",
			wantPositive: true,
		},
		{
			name:         "repayment received is negative",
			response:     `[{"action": "add", "i": "Rahul Repaid", "a": -500, "c": "Miscellaneous", "n": ""}]`,
			wantCategory: "Miscellaneous",
			wantPositive: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := NewExtractor(scripted(tt.response, nil))
			intents, _, err := ex.Extract(context.Background(), "irrelevant")
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			if len(intents) != 1 {
				t.Fatalf("len(intents) = %d, want 1", len(intents))
			}
			got := intents[0]
			if got.Category != tt.wantCategory {
				t.Errorf("category = %q, want %q", got.Category, tt.wantCategory)
			}
			if (got.Amount > 0) != tt.wantPositive {
				t.Errorf("amount = %v, want positive=%v", got.Amount, tt.wantPositive)
			}
		})
	}
}

func TestExtract_UnknownCategoryNormalizesToDefault(t *testing.T) {
	ex := NewExtractor(scripted(`[{"action": "add", "i": "thing", "a": 10, "c": "Spacecraft", "n": ""}]`, nil))

	intents, _, err := ex.Extract(context.Background(), "thing 10")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if intents[0].Category != "Miscellaneous" {
		t.Errorf("category = %q, want Miscellaneous", intents[0].Category)
	}
}

func TestExtract_DeleteIntent(t *testing.T) {
	ex := NewExtractor(scripted(`[{"action": "delete", "i": "coffee", "a": 50}]`, nil))

	intents, _, err := ex.Extract(context.Background(), "delete coffee 50")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	got := intents[0]
	if got.Action != domain.ActionDelete || got.Item != "Coffee" || got.Amount != 50 {
		t.Errorf("intent = %+v, want delete Coffee 50", got)
	}
	if got.Category != "" || got.Note != "" {
		t.Errorf("delete intent carries category/note: %+v", got)
	}
}

func TestExtract_BareObjectWrappedAsBatch(t *testing.T) {
	ex := NewExtractor(scripted(`{"action": "add", "i": "soap", "a": 30, "c": "Groceries", "n": ""}`, nil))

	intents, _, err := ex.Extract(context.Background(), "soap 30")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(intents) != 1 || intents[0].Item != "Soap" {
		t.Errorf("intents = %+v, want one Soap entry", intents)
	}
}

func TestExtract_MalformedOutputIsRecoverableError(t *testing.T) {
	ex := NewExtractor(scripted("sorry, I can't help with that", nil))

	intents, chat, err := ex.Extract(context.Background(), "gibberish")
	if err == nil {
		t.Fatal("Extract() error = nil, want decode failure")
	}
	if chat || len(intents) != 0 {
		t.Errorf("got intents=%v chat=%v, want empty result", intents, chat)
	}
}

func TestExtract_ServiceError(t *testing.T) {
	ex := NewExtractor(scripted("", errors.New("service down")))

	_, _, err := ex.Extract(context.Background(), "coffee 50")
	if err == nil {
		t.Fatal("Extract() error = nil, want service error")
	}
}

func TestExtract_NoteOnlyWithContextMarker(t *testing.T) {
	ex := NewExtractor(scripted(`[{"action": "add", "i": "dinner", "a": 900, "c": "Food", "n": "with team"}]`, nil))

	intents, _, err := ex.Extract(context.Background(), "dinner 900 save c with team")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if intents[0].Note != "with team" {
		t.Errorf("note = %q, want %q", intents[0].Note, "with team")
	}
}
