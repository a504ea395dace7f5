package engine

import (
	"strconv"
	"strings"

	"github.com/dvloznov/expensebot/internal/domain"
)

// User-facing reply fragments. The icon conventions follow the bot's
// established vocabulary: 📝 debt, 🤑 money in, ✅ expense, 🗑️ deleted,
// ⚠️ problem.
const (
	msgUnrecognized = "😅 I didn't understand."
	savedHeader     = "Saved:\n\n"
	replyDivider    = "────────────────"
)

func dashboardLine(url string) string {
	return "📊 Dashboard: " + url
}

func deletedLine(item string) string {
	return "🗑️ Deleted: " + item
}

func notFoundLine(item string) string {
	return "⚠️ Not found: " + item
}

func notSavedLine(item string) string {
	return "⚠️ Could not save: " + item
}

// savedLine renders one recorded transaction, e.g.
// "✅ Coffee: 50 (Food)" with the note appended underneath when present.
func savedLine(t domain.Transaction) string {
	icon := "✅"
	switch {
	case t.Category == "Debt":
		icon = "📝"
	case t.Amount < 0:
		icon = "🤑"
	}

	line := icon + " " + t.Item + ": " + formatAmount(t.Amount) + " (" + t.Category + ")"
	if t.Note != "" {
		line += "\n   └ 📌 " + t.Note
	}
	return line
}

// savedReply assembles the batch confirmation, with the dashboard link
// footer when one is configured.
func savedReply(lines []string, dashboardURL string) string {
	var b strings.Builder
	b.WriteString(savedHeader)
	b.WriteString(strings.Join(lines, "\n"))
	if dashboardURL != "" {
		b.WriteString("\n" + replyDivider + "\n" + dashboardLine(dashboardURL))
	}
	return b.String()
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
