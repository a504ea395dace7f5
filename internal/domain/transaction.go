package domain

import (
	"time"

	"cloud.google.com/go/civil"
)

// Transaction is the ledger's unit of storage. Records are immutable once
// inserted; the only lifecycle after insert is a fuzzy delete.
type Transaction struct {
	ID        string    // store-assigned, opaque
	Item      string    // title-cased display name
	Amount    float64   // positive = money leaving the owner, negative = money coming in
	Category  string    // one taxonomy value, title-cased
	Note      string    // optional context, "" when absent
	CreatedAt time.Time // system-assigned at insert time, never user-supplied
}

// Action says what a parsed intent wants done to the ledger.
type Action string

const (
	ActionAdd    Action = "add"
	ActionDelete Action = "delete"
)

// ParsedIntent is one structured transaction extracted from free text.
// It is transient: intents are applied to the ledger and discarded.
// Delete intents carry only Item (a name fragment) and Amount for matching.
type ParsedIntent struct {
	Action   Action
	Item     string
	Amount   float64
	Category string
	Note     string
}

// Shape selects how a query result should be presented.
type Shape string

const (
	// ShapeSummary is an aggregate total plus per-category figures.
	ShapeSummary Shape = "summary"
	// ShapeBreakdown is an itemized chronological listing.
	ShapeBreakdown Shape = "breakdown"
)

// QueryFilter is the structured form of an analytical question.
// Empty Categories means all categories; a zero Start or End date means
// that bound is open. Date bounds are inclusive.
type QueryFilter struct {
	Categories []string
	Start      civil.Date
	End        civil.Date
	Shape      Shape
}

// Aggregate is the exact numeric result of applying a QueryFilter to the
// ledger. Items is populated only for ShapeBreakdown, sorted newest first.
type Aggregate struct {
	Total       float64
	PerCategory map[string]float64
	Items       []Transaction
}
