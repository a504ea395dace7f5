// Package memory is an in-memory ledger.Store used by tests and as a
// bring-up backend (DATA_BACKEND=memory).
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dvloznov/expensebot/internal/domain"
	"github.com/dvloznov/expensebot/internal/ledger"
	"github.com/google/uuid"
)

// Store keeps records in a slice guarded by a RWMutex. IDs are UUIDs,
// CreatedAt comes from the injected clock.
type Store struct {
	mu      sync.RWMutex
	records []domain.Transaction
	now     func() time.Time
}

var _ ledger.Store = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{now: time.Now}
}

// NewWithClock creates a store with a custom clock, for tests that need
// controlled timestamps.
func NewWithClock(now func() time.Time) *Store {
	return &Store{now: now}
}

// Insert assigns an ID and CreatedAt and appends the record.
func (s *Store) Insert(ctx context.Context, t domain.Transaction) (domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t.ID = uuid.New().String()
	t.CreatedAt = s.now()
	s.records = append(s.records, t)
	return t, nil
}

// Recent returns up to limit records, newest first.
func (s *Store) Recent(ctx context.Context, limit int64) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Transaction, len(s.records))
	copy(out, s.records)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

// All returns a copy of every record.
func (s *Store) All(ctx context.Context) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Transaction, len(s.records))
	copy(out, s.records)
	return out, nil
}

// FindMatch returns the newest record with this exact amount and a
// case-insensitive substring match on the item name.
func (s *Store) FindMatch(ctx context.Context, amount float64, fragment string) (domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(strings.TrimSpace(fragment))

	var best domain.Transaction
	found := false
	for _, t := range s.records {
		if t.Amount != amount {
			continue
		}
		if !strings.Contains(strings.ToLower(t.Item), needle) {
			continue
		}
		if !found || t.CreatedAt.After(best.CreatedAt) {
			best = t
			found = true
		}
	}

	if !found {
		return domain.Transaction{}, ledger.ErrNotFound
	}
	return best, nil
}

// Delete removes one record by ID.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, t := range s.records {
		if t.ID == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			return nil
		}
	}
	return ledger.ErrNotFound
}
