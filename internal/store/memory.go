package store

import (
	"cmp"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vyrodovalexey/quotestore/internal/model"
)

// MemoryStore implements Repository with in-memory storage.
//
// The map is guarded by mu. The ID sequence is an atomic counter holding
// the last ID handed out, so generated IDs start at 1 and are never reused
// until DeleteAll.
type MemoryStore struct {
	mu     sync.RWMutex
	quotes map[int64]model.Quote
	seq    atomic.Int64
	now    func() time.Time
}

// Option configures a MemoryStore.
type Option func(*MemoryStore)

// WithClock overrides the time source used for CreatedAt and UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *MemoryStore) {
		s.now = now
	}
}

// NewMemoryStore creates a new MemoryStore instance.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		quotes: make(map[int64]model.Quote),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save inserts or overwrites a quote by ID.
//
// New quotes get CreatedAt set to now unless the caller supplied one.
// Overwrites keep the stored CreatedAt. UpdatedAt is refreshed on every
// save and an empty Status becomes StatusActive.
func (s *MemoryStore) Save(q model.Quote) (model.Quote, error) {
	if q.ID < 0 {
		return model.Quote{}, fmt.Errorf("save quote %d: %w", q.ID, ErrInvalidID)
	}

	generated := q.ID == 0
	if generated {
		q.ID = s.seq.Add(1)
	} else {
		s.advanceSeq(q.ID)
	}

	q = q.Clone()
	if q.Status == "" {
		q.Status = model.StatusActive
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	existing, exists := s.quotes[q.ID]
	switch {
	case exists && generated:
		return model.Quote{}, fmt.Errorf("save quote: id %d already assigned: %w", q.ID, ErrInvariantViolation)
	case exists:
		q.CreatedAt = existing.CreatedAt
	case q.CreatedAt.IsZero():
		q.CreatedAt = now
	}
	q.UpdatedAt = now

	s.quotes[q.ID] = q

	return q.Clone(), nil
}

// advanceSeq moves the sequence past an explicitly chosen ID so that a
// later generated ID cannot collide with it.
func (s *MemoryStore) advanceSeq(id int64) {
	for {
		cur := s.seq.Load()
		if cur >= id || s.seq.CompareAndSwap(cur, id) {
			return
		}
	}
}

// SaveAll saves each quote in order. It fails fast without rolling back
// quotes that were already saved.
func (s *MemoryStore) SaveAll(qs []model.Quote) ([]model.Quote, error) {
	saved := make([]model.Quote, 0, len(qs))
	for i, q := range qs {
		stored, err := s.Save(q)
		if err != nil {
			return saved, fmt.Errorf("save all: element %d: %w", i, err)
		}
		saved = append(saved, stored)
	}
	return saved, nil
}

// FindByID retrieves a quote by its ID.
func (s *MemoryStore) FindByID(id int64) (model.Quote, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q, exists := s.quotes[id]
	if !exists {
		return model.Quote{}, false
	}
	return q.Clone(), true
}

// FindAll returns a copy of every stored quote ordered by ID.
func (s *MemoryStore) FindAll() []model.Quote {
	s.mu.RLock()
	quotes := make([]model.Quote, 0, len(s.quotes))
	for _, q := range s.quotes {
		quotes = append(quotes, q.Clone())
	}
	s.mu.RUnlock()

	slices.SortFunc(quotes, func(a, b model.Quote) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return quotes
}

// DeleteByID removes a quote by its ID. Missing IDs are a no-op.
func (s *MemoryStore) DeleteByID(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.quotes[id]; !exists {
		return false
	}
	delete(s.quotes, id)
	return true
}

// ExistsByID reports whether a quote with the ID is stored.
func (s *MemoryStore) ExistsByID(id int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.quotes[id]
	return exists
}

// Count returns the number of stored quotes.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.quotes)
}

// DeleteAll clears storage and resets the ID sequence.
//
// It is not safe against concurrent Save calls: a save racing with the
// reset may land before or after it, with either the old or new sequence.
// Callers must stop other writers first.
func (s *MemoryStore) DeleteAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	clear(s.quotes)
	s.seq.Store(0)
}
