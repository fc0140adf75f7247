//go:build functional

package functional

import (
	"net/http"
	"testing"
	"time"

	"github.com/vyrodovalexey/quotestore/internal/model"
)

func TestFunctional_ChangeFeed(t *testing.T) {
	ts := startServer(t)
	conn := ts.dialEvents(t)

	// The hub registers the subscriber after the upgrade completes.
	time.Sleep(50 * time.Millisecond)

	created := ts.create(t, model.Quote{Title: "Watched", Status: model.StatusInactive})
	if event := nextEvent(t, conn); event.Type != model.EventQuoteCreated || event.QuoteID != created.ID {
		t.Fatalf("event = %+v, want created for %d", event, created.ID)
	}

	expect(t, ts.do(t, http.MethodPost, "/api/v1/quotes/archive", nil, true), http.StatusOK, nil)
	if event := nextEvent(t, conn); event.Type != model.EventQuotesArchived || event.Count != 1 {
		t.Fatalf("event = %+v, want archived count 1", event)
	}

	expect(t, ts.do(t, http.MethodDelete, "/api/v1/quotes/1", nil, true), http.StatusNoContent, nil)
	if event := nextEvent(t, conn); event.Type != model.EventQuoteDeleted || event.QuoteID != 1 {
		t.Fatalf("event = %+v, want deleted for 1", event)
	}

	expect(t, ts.do(t, http.MethodDelete, "/api/v1/quotes", nil, true), http.StatusNoContent, nil)
	if event := nextEvent(t, conn); event.Type != model.EventQuotesReset {
		t.Fatalf("event = %+v, want reset", event)
	}
}

func TestFunctional_RejectedWritesEmitNothing(t *testing.T) {
	ts := startServer(t)
	conn := ts.dialEvents(t)
	time.Sleep(50 * time.Millisecond)

	expect(t, ts.do(t, http.MethodPost, "/api/v1/quotes", model.Quote{Title: ""}, true), http.StatusBadRequest, nil)
	expect(t, ts.do(t, http.MethodPost, "/api/v1/quotes", model.Quote{Title: "anon"}, false), http.StatusUnauthorized, nil)
	ts.create(t, model.Quote{Title: "first valid"})

	if event := nextEvent(t, conn); event.Type != model.EventQuoteCreated || event.Quote == nil || event.Quote.Title != "first valid" {
		t.Fatalf("event = %+v, want created for the valid quote", event)
	}
}
