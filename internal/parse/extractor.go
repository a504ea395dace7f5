// Package parse turns free-text messages into structured transaction
// intents. The inference backend is injected as an llm.Generator; everything
// deterministic (sanitation, decoding, validation, normalization) lives here.
package parse

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dvloznov/expensebot/internal/domain"
	"github.com/dvloznov/expensebot/internal/llm"
	"github.com/dvloznov/expensebot/internal/logger"
	"github.com/dvloznov/expensebot/internal/taxonomy"
)

// Extractor converts transaction-bearing text into parsed intents.
type Extractor struct {
	gen llm.Generator
}

// NewExtractor creates an extractor over the given inference backend.
// No retry decorator belongs here: extraction falls back to the manual
// heuristic on first failure.
func NewExtractor(gen llm.Generator) *Extractor {
	return &Extractor{gen: gen}
}

// Extract asks the model to structure the input and decodes the response.
// chat reports the model's explicit "this is conversational" signal. A
// malformed or undecodable response is returned as an error; callers fall
// back per their own policy and the error never reaches the end user.
//
// Per-entry validation is independent: entries with a missing or zero amount
// are dropped without aborting the batch.
func (e *Extractor) Extract(ctx context.Context, text string) (intents []domain.ParsedIntent, chat bool, err error) {
	log := logger.FromContext(ctx)

	raw, err := e.gen.Generate(ctx, buildExtractionPrompt(text))
	if err != nil {
		return nil, false, fmt.Errorf("Extract: generate: %w", err)
	}

	clean := CleanModelJSON(raw)

	var payload interface{}
	if err := json.Unmarshal([]byte(clean), &payload); err != nil {
		log.Warn().Err(err).Str("raw", raw).Msg("Model output is not valid JSON")
		return nil, false, fmt.Errorf("Extract: unmarshal model output: %w", err)
	}

	entries, err := toEntrySlice(payload)
	if err != nil {
		log.Warn().Err(err).Str("raw", raw).Msg("Model output has unexpected shape")
		return nil, false, fmt.Errorf("Extract: %w", err)
	}

	for i, entry := range entries {
		if strings.EqualFold(getStringField(entry, "action"), "chat") {
			return nil, true, nil
		}

		intent, err := transformEntry(entry)
		if err != nil {
			// Invalid entries are dropped, not the whole batch.
			log.Warn().Err(err).Int("entry", i).Msg("Dropping invalid transaction entry")
			continue
		}
		intents = append(intents, intent)
	}

	return intents, false, nil
}

// toEntrySlice accepts both a JSON list of objects and a bare single object,
// which the model emits for one-transaction inputs despite instructions.
func toEntrySlice(payload interface{}) ([]map[string]interface{}, error) {
	switch v := payload.(type) {
	case []interface{}:
		entries := make([]map[string]interface{}, 0, len(v))
		for i, item := range v {
			obj, ok := item.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("element %d is %T, want object", i, item)
			}
			entries = append(entries, obj)
		}
		return entries, nil
	case map[string]interface{}:
		return []map[string]interface{}{v}, nil
	default:
		return nil, fmt.Errorf("payload is %T, want list or object", payload)
	}
}

// transformEntry validates and normalizes one model entry into an intent.
func transformEntry(obj map[string]interface{}) (domain.ParsedIntent, error) {
	item := titleCase(getStringField(obj, "i"))
	if item == "" {
		return domain.ParsedIntent{}, fmt.Errorf("missing item name")
	}

	amount, err := parseAmount(obj["a"])
	if err != nil {
		return domain.ParsedIntent{}, fmt.Errorf("item %q: %w", item, err)
	}
	if amount == 0 {
		return domain.ParsedIntent{}, fmt.Errorf("item %q: zero amount", item)
	}

	if strings.EqualFold(getStringField(obj, "action"), string(domain.ActionDelete)) {
		// Delete intents carry only the name fragment and amount.
		return domain.ParsedIntent{
			Action: domain.ActionDelete,
			Item:   item,
			Amount: amount,
		}, nil
	}

	return domain.ParsedIntent{
		Action:   domain.ActionAdd,
		Item:     item,
		Amount:   amount,
		Category: taxonomy.Normalize(getStringField(obj, "c")),
		Note:     getStringField(obj, "n"),
	}, nil
}
