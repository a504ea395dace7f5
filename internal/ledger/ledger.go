// Package ledger defines the store boundary for transaction records.
// The core needs only the handful of operations below; the concrete
// backends live in the mongo and memory subpackages.
package ledger

import (
	"context"
	"errors"

	"github.com/dvloznov/expensebot/internal/domain"
)

// ErrNotFound is returned when a lookup matches no record.
var ErrNotFound = errors.New("ledger: record not found")

// Store is the append-mostly record store. Insert and Delete are atomic
// single-record operations; there are no multi-record transactions, and
// batch adds are independent sequential inserts by design.
type Store interface {
	// Insert appends one record. The store assigns ID and CreatedAt and
	// returns the stored record.
	Insert(ctx context.Context, t domain.Transaction) (domain.Transaction, error)

	// Recent returns up to limit records, most recent first.
	Recent(ctx context.Context, limit int64) ([]domain.Transaction, error)

	// All returns the full ledger in no guaranteed order.
	All(ctx context.Context) ([]domain.Transaction, error)

	// FindMatch returns the most recently created record with exactly this
	// amount and a case-insensitive substring match on the item name.
	// Returns ErrNotFound when nothing matches.
	FindMatch(ctx context.Context, amount float64, fragment string) (domain.Transaction, error)

	// Delete removes one record by ID. Returns ErrNotFound for unknown IDs.
	Delete(ctx context.Context, id string) error
}
