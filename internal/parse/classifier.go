package parse

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/dvloznov/expensebot/internal/domain"
	"github.com/dvloznov/expensebot/internal/logger"
	"github.com/dvloznov/expensebot/internal/taxonomy"
)

// FallbackNote marks records captured by the deterministic fallback parser
// instead of the model.
const FallbackNote = "captured by fallback parser"

// Classification is the outcome of routing one message. Empty Intents means
// the message goes down the analytical path.
type Classification struct {
	Intents  []domain.ParsedIntent
	Fallback bool // intents came from the trailing-number fallback
	Chat     bool // the model itself signaled a conversational message
}

// IsQuestion reports whether the classification routed to the analytical path.
func (c Classification) IsQuestion() bool {
	return len(c.Intents) == 0
}

// Classifier decides whether a message is a transaction entry or an
// analytical question. The decision has one ordered precedence: keyword
// override, then the model's own chat-or-transactions signal, then the
// deterministic trailing-number fallback.
type Classifier struct {
	ex *Extractor
}

// NewClassifier creates a classifier over the given extractor.
func NewClassifier(ex *Extractor) *Classifier {
	return &Classifier{ex: ex}
}

// Question-word override. "owe" is deliberately not here: "I owe X 500"
// must extract as a Debt transaction, not a question.
var questionWordRE = regexp.MustCompile(`(?i)\b(how|total|calculate|show)\b`)

// "<description> <number>" shape used when extraction fails outright.
var trailingNumberRE = regexp.MustCompile(`^(.*\S)\s+(-?\d+(?:\.\d+)?)$`)

// Classify routes raw text. It never returns an error: every failure mode
// resolves to either a fallback transaction or the analytical path.
func (c *Classifier) Classify(ctx context.Context, text string) Classification {
	log := logger.FromContext(ctx)
	text = strings.TrimSpace(text)

	// 1. Keyword override forces the analytical path without spending an
	// extraction call, as a safety net against misclassification.
	if strings.Contains(text, "?") || questionWordRE.MatchString(text) {
		return Classification{}
	}

	// 2. The extraction contract is two-branch: a transaction list or an
	// explicit chat signal.
	intents, chat, err := c.ex.Extract(ctx, text)
	if err == nil {
		if chat || len(intents) == 0 {
			return Classification{Chat: chat}
		}
		return Classification{Intents: intents}
	}

	// 3. Extraction failed entirely; try the deterministic pattern.
	log.Warn().Err(err).Msg("Extraction failed, trying fallback parser")
	if intent, ok := fallbackIntent(text); ok {
		return Classification{Intents: []domain.ParsedIntent{intent}, Fallback: true}
	}
	return Classification{}
}

// fallbackIntent parses the "<description> <number>" shape into a single
// add with the default category.
func fallbackIntent(text string) (domain.ParsedIntent, bool) {
	m := trailingNumberRE.FindStringSubmatch(text)
	if m == nil {
		return domain.ParsedIntent{}, false
	}

	amount, err := strconv.ParseFloat(m[2], 64)
	if err != nil || amount == 0 {
		return domain.ParsedIntent{}, false
	}

	return domain.ParsedIntent{
		Action:   domain.ActionAdd,
		Item:     titleCase(m[1]),
		Amount:   amount,
		Category: taxonomy.Default,
		Note:     FallbackNote,
	}, true
}
