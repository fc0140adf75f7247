// Package store provides data storage interfaces and implementations.
package store

import (
	"errors"

	"github.com/vyrodovalexey/quotestore/internal/model"
)

// Store errors.
var (
	ErrInvalidID          = errors.New("invalid quote ID")
	ErrInvariantViolation = errors.New("store invariant violated")
)

// Repository defines identity-keyed storage for quotes.
//
// Implementations perform no validation; callers validate before writing.
type Repository interface {
	// Save inserts or overwrites a quote. A quote with ID zero receives the
	// next sequence value. The stored quote is returned.
	Save(q model.Quote) (model.Quote, error)

	// SaveAll saves each quote in order and stops at the first failure.
	// Quotes saved before the failure stay saved.
	SaveAll(qs []model.Quote) ([]model.Quote, error)

	// FindByID returns the quote and true, or false when absent.
	FindByID(id int64) (model.Quote, bool)

	// FindAll returns an independent snapshot of every quote, ordered by ID.
	FindAll() []model.Quote

	// DeleteByID removes the quote if present and reports whether it was.
	DeleteByID(id int64) bool

	// ExistsByID reports whether a quote with the ID is stored.
	ExistsByID(id int64) bool

	// Count returns the number of stored quotes.
	Count() int

	// DeleteAll clears storage and resets the ID sequence to 1.
	DeleteAll()
}
