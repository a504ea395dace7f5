package query

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/expensebot/internal/domain"
	"github.com/dvloznov/expensebot/internal/llm"
	"github.com/dvloznov/expensebot/internal/logger"
	"github.com/dvloznov/expensebot/internal/taxonomy"
)

// ApologyMessage is the user-visible reply when the answer cannot be
// composed even after retries. Never a stack trace.
const ApologyMessage = "😅 Sorry, I couldn't work that out right now. Please try again in a moment."

// maxContextRecords caps how many itemized records are embedded into the
// compose prompt, bounding inference-input size.
const maxContextRecords = 300

// Composer phrases computed figures as a natural-language answer. This is
// the one step allowed to use free-form generation, because it only serves
// presentation: the numbers are computed before the model sees them.
type Composer struct {
	gen llm.Generator
}

// NewComposer creates a composer. The generator should be wrapped in
// llm.Retrying; this is the chat path that absorbs transient failures.
func NewComposer(gen llm.Generator) *Composer {
	return &Composer{gen: gen}
}

// Compose renders the aggregate as an answer to the original question.
// The prompt embeds the exact figures and instructs the model to restate
// them unchanged. On final failure the apology message is returned, never
// an error to the transport.
func (c *Composer) Compose(ctx context.Context, question string, agg domain.Aggregate) string {
	log := logger.FromContext(ctx)

	answer, err := c.gen.Generate(ctx, buildComposePrompt(question, agg))
	if err != nil {
		log.Error().Err(err).Msg("Compose failed after retries")
		return ApologyMessage
	}
	return strings.TrimSpace(answer)
}

func buildComposePrompt(question string, agg domain.Aggregate) string {
	var b strings.Builder

	b.WriteString("You are a personal finance assistant.\n")
	b.WriteString("User Question: \"" + question + "\"\n\n")

	b.WriteString("The figures below were computed exactly from the user's ledger.\n")
	b.WriteString("Total: " + formatAmount(agg.Total) + "\n")

	if len(agg.PerCategory) > 0 {
		b.WriteString("By category:\n")
		for _, cat := range sortedCategories(agg.PerCategory) {
			b.WriteString("- " + taxonomy.Emoji(cat) + " " + cat + ": " + formatAmount(agg.PerCategory[cat]) + "\n")
		}
	}

	if len(agg.Items) > 0 {
		items := agg.Items
		if len(items) > maxContextRecords {
			items = items[:maxContextRecords]
		}
		b.WriteString("Matching records, newest first:\n")
		for _, t := range items {
			b.WriteString("- " + civil.DateOf(t.CreatedAt).String() + " " + t.Item + ": " + formatAmount(t.Amount) + " (" + t.Category + ")")
			if t.Note != "" {
				b.WriteString(" [" + t.Note + "]")
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\nAnswer the question concisely using ONLY the figures above.\n")
	b.WriteString("Restate the numbers exactly as given; never recompute, round, or invent figures.\n")
	b.WriteString("Positive amounts are money spent or owed, negative amounts are money received.\n")
	b.WriteString("Use emojis. Do not use bold markdown (**).\n")

	return b.String()
}

// formatAmount renders an amount without trailing zeros.
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func sortedCategories(m map[string]float64) []string {
	out := make([]string, 0, len(m))
	for c := range m {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
