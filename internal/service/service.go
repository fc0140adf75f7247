// Package service implements quote lifecycle, queries and aggregations on
// top of a store.Repository.
package service

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/vyrodovalexey/quotestore/internal/model"
	"github.com/vyrodovalexey/quotestore/internal/store"
)

// Service errors.
var (
	ErrNotFound     = errors.New("quote not found")
	ErrInvalidLimit = errors.New("limit cannot be negative")
)

// Publisher receives change events after successful writes.
type Publisher interface {
	Publish(event model.Event)
}

// Option configures a QuoteService.
type Option func(*QuoteService)

// WithPublisher sets the receiver of change events.
func WithPublisher(p Publisher) Option {
	return func(s *QuoteService) {
		s.publisher = p
	}
}

// QuoteService validates writes and answers derived queries.
//
// The underlying store performs no validation, so every write that should be
// checked must go through this type.
type QuoteService struct {
	repo      store.Repository
	logger    *zap.Logger
	publisher Publisher
}

// New creates a QuoteService over repo.
func New(repo store.Repository, logger *zap.Logger, opts ...Option) *QuoteService {
	s := &QuoteService{
		repo:   repo,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	storedQuotes.Set(float64(repo.Count()))
	return s
}

// Validate checks q and records the rejection, if any.
func (s *QuoteService) Validate(q *model.Quote) error {
	err := q.Validate()
	if err == nil {
		return nil
	}

	var ve *model.ValidationError
	field := "unknown"
	if errors.As(err, &ve) && ve.Field != "" {
		field = ve.Field
	}
	validationFailures.WithLabelValues(field).Inc()
	s.logger.Debug("quote rejected", zap.String("field", field), zap.Error(err))

	return err
}

// Create validates q and stores it under a new ID. Any ID on q is ignored.
func (s *QuoteService) Create(q model.Quote) (model.Quote, error) {
	if err := s.Validate(&q); err != nil {
		return model.Quote{}, err
	}

	q.ID = 0
	saved, err := s.repo.Save(q)
	if err != nil {
		return model.Quote{}, fmt.Errorf("create quote: %w", err)
	}

	s.afterWrite(model.NewQuoteEvent(model.EventQuoteCreated, saved))
	return saved, nil
}

// Update validates q and overwrites the stored quote with the given ID.
// CreatedAt of the stored quote is kept.
func (s *QuoteService) Update(id int64, q model.Quote) (model.Quote, error) {
	if err := s.Validate(&q); err != nil {
		return model.Quote{}, err
	}

	if !s.repo.ExistsByID(id) {
		return model.Quote{}, fmt.Errorf("update quote %d: %w", id, ErrNotFound)
	}

	q.ID = id
	saved, err := s.repo.Save(q)
	if err != nil {
		return model.Quote{}, fmt.Errorf("update quote %d: %w", id, err)
	}

	s.afterWrite(model.NewQuoteEvent(model.EventQuoteUpdated, saved))
	return saved, nil
}

// SaveAll validates every quote before writing any of them, then saves them
// in order. Quotes without an ID are created, the rest are upserted.
// A store failure part way through leaves earlier quotes saved.
func (s *QuoteService) SaveAll(qs []model.Quote) ([]model.Quote, error) {
	for i := range qs {
		if err := s.Validate(&qs[i]); err != nil {
			return nil, fmt.Errorf("quote %d: %w", i, err)
		}
	}

	saved, err := s.repo.SaveAll(qs)
	for i, q := range saved {
		eventType := model.EventQuoteUpdated
		if qs[i].ID == 0 {
			eventType = model.EventQuoteCreated
		}
		s.afterWrite(model.NewQuoteEvent(eventType, q))
	}
	if err != nil {
		return saved, fmt.Errorf("save quotes: %w", err)
	}

	s.logger.Info("quotes saved", zap.Int("count", len(saved)))
	return saved, nil
}

// Get returns the quote with the given ID, or false when absent.
func (s *QuoteService) Get(id int64) (model.Quote, bool) {
	return s.repo.FindByID(id)
}

// List returns every quote ordered by ID.
func (s *QuoteService) List() []model.Quote {
	return s.repo.FindAll()
}

// Exists reports whether a quote with the given ID is stored.
func (s *QuoteService) Exists(id int64) bool {
	return s.repo.ExistsByID(id)
}

// Count returns the number of stored quotes.
func (s *QuoteService) Count() int {
	return s.repo.Count()
}

// Delete removes the quote with the given ID.
func (s *QuoteService) Delete(id int64) error {
	if !s.repo.DeleteByID(id) {
		return fmt.Errorf("delete quote %d: %w", id, ErrNotFound)
	}

	s.afterWrite(model.NewDeletedEvent(id))
	return nil
}

// Reset removes every quote and restarts ID assignment at 1.
// Callers must make sure no other writes are in flight.
func (s *QuoteService) Reset() {
	removed := s.repo.Count()
	s.repo.DeleteAll()

	s.logger.Info("quote store reset", zap.Int("removed", removed))
	s.afterWrite(model.NewBulkEvent(model.EventQuotesReset, removed))
}

func (s *QuoteService) afterWrite(event model.Event) {
	storedQuotes.Set(float64(s.repo.Count()))
	if s.publisher != nil {
		s.publisher.Publish(event)
	}
}
