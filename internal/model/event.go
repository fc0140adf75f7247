package model

import "time"

// EventType names a change to the quote collection.
type EventType string

// Change event types pushed to subscribers.
const (
	EventQuoteCreated   EventType = "quote.created"
	EventQuoteUpdated   EventType = "quote.updated"
	EventQuoteDeleted   EventType = "quote.deleted"
	EventQuotesArchived EventType = "quotes.archived"
	EventQuotesReset    EventType = "quotes.reset"
)

// Event describes a change to the stored quotes.
type Event struct {
	Type      EventType `json:"type"`
	QuoteID   int64     `json:"quote_id,omitempty"`
	Quote     *Quote    `json:"quote,omitempty"`
	Count     int       `json:"count,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewQuoteEvent creates an event about a single quote.
func NewQuoteEvent(t EventType, q Quote) Event {
	return Event{
		Type:      t,
		QuoteID:   q.ID,
		Quote:     &q,
		Timestamp: time.Now().UTC(),
	}
}

// NewDeletedEvent creates an event for a removed quote.
func NewDeletedEvent(id int64) Event {
	return Event{
		Type:      EventQuoteDeleted,
		QuoteID:   id,
		Timestamp: time.Now().UTC(),
	}
}

// NewBulkEvent creates an event that affected count quotes.
func NewBulkEvent(t EventType, count int) Event {
	return Event{
		Type:      t,
		Count:     count,
		Timestamp: time.Now().UTC(),
	}
}
