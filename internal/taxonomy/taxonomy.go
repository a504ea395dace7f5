// Package taxonomy holds the fixed set of expense categories. Every stored
// transaction carries exactly one of these values; anything the model invents
// outside the set is normalized to Default.
package taxonomy

import "strings"

// Default is the catch-all category for anything that does not fit.
const Default = "Miscellaneous"

type category struct {
	name  string
	emoji string
}

// Order matters: it is the order categories are listed in prompts and in
// dashboard responses.
var categories = []category{
	{"Food", "🍔"},
	{"Groceries", "🛒"},
	{"Travel", "🚕"},
	{"Medical", "💊"},
	{"Subscriptions", "📺"},
	{"Electronics", "💻"},
	{"Shopping", "🛍️"},
	{"Education", "📚"},
	{"Gifts", "🎁"},
	{"Outings", "🎉"},
	{"Rent & Utilities", "🏠"},
	{"Investments", "📈"},
	{"Entertainment", "🎬"},
	{"Personal Care", "💇"},
	{"Loans/EMI", "🏦"},
	{Default, "📦"},
	{"Debt", "📝"},
	{"Loan Given", "🤝"},
}

var byNormalized = func() map[string]string {
	m := make(map[string]string, len(categories))
	for _, c := range categories {
		m[normalize(c.name)] = c.name
	}
	return m
}()

// normalize converts to uppercase and trims whitespace for case-insensitive
// comparison.
func normalize(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// Categories returns all category names in prompt order.
func Categories() []string {
	out := make([]string, len(categories))
	for i, c := range categories {
		out[i] = c.name
	}
	return out
}

// Canonical resolves a name to its canonical taxonomy spelling.
// The lookup is case-insensitive and whitespace-tolerant.
func Canonical(name string) (string, bool) {
	c, ok := byNormalized[normalize(name)]
	return c, ok
}

// IsValid reports whether name is a taxonomy value.
func IsValid(name string) bool {
	_, ok := Canonical(name)
	return ok
}

// Normalize resolves a name to its canonical spelling, falling back to
// Default for anything outside the taxonomy.
func Normalize(name string) string {
	if c, ok := Canonical(name); ok {
		return c
	}
	return Default
}

// Emoji returns the display emoji for a category, or the Default emoji for
// unknown names.
func Emoji(name string) string {
	norm := normalize(name)
	for _, c := range categories {
		if normalize(c.name) == norm {
			return c.emoji
		}
	}
	return "📦"
}

// PromptList renders the taxonomy as a comma-separated list for embedding
// into model prompts.
func PromptList() string {
	return strings.Join(Categories(), ", ")
}
