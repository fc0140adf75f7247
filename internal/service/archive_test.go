package service

import (
	"testing"

	"github.com/vyrodovalexey/quotestore/internal/model"
)

func TestQuoteService_ArchiveInactiveItems(t *testing.T) {
	// Arrange
	pub := &recordingPublisher{}
	s, _ := newTestService(t, WithPublisher(pub))
	for i := 0; i < 4; i++ {
		mustCreate(t, s, model.Quote{Title: "old", Status: model.StatusInactive})
	}
	active := mustCreate(t, s, model.Quote{Title: "current"})

	// Act
	n, err := s.ArchiveInactiveItems()

	// Assert
	if err != nil {
		t.Fatalf("ArchiveInactiveItems() unexpected error: %v", err)
	}
	if n != 4 {
		t.Errorf("ArchiveInactiveItems() = %d, want 4", n)
	}
	if left := s.FindByStatus(model.StatusInactive); len(left) != 0 {
		t.Errorf("%d quotes still INACTIVE", len(left))
	}
	if got := len(s.FindByStatus(model.StatusArchived)); got != 4 {
		t.Errorf("ARCHIVED count = %d, want 4", got)
	}
	if got, _ := s.Get(active.ID); got.Status != model.StatusActive {
		t.Errorf("active quote status = %s, want %s", got.Status, model.StatusActive)
	}
	if s.Count() != 5 {
		t.Errorf("Count() = %d, want 5", s.Count())
	}

	last := pub.events[len(pub.events)-1]
	if last.Type != model.EventQuotesArchived || last.Count != 4 {
		t.Errorf("last event = %+v, want %s with count 4", last, model.EventQuotesArchived)
	}
}

func TestQuoteService_ArchiveInactiveItems_NothingToDo(t *testing.T) {
	pub := &recordingPublisher{}
	s, _ := newTestService(t, WithPublisher(pub))
	mustCreate(t, s, model.Quote{Title: "current"})

	n, err := s.ArchiveInactiveItems()

	if err != nil || n != 0 {
		t.Errorf("ArchiveInactiveItems() = %d, %v; want 0, nil", n, err)
	}
	if types := pub.types(); types[len(types)-1] == model.EventQuotesArchived {
		t.Error("no archive event expected when nothing was archived")
	}
}

func TestQuoteService_ArchiveInactiveItems_KeepsCreatedAt(t *testing.T) {
	s, _ := newTestService(t)
	created := mustCreate(t, s, model.Quote{Title: "old", Status: model.StatusInactive, CreatedAt: baseTime})

	if _, err := s.ArchiveInactiveItems(); err != nil {
		t.Fatalf("ArchiveInactiveItems() unexpected error: %v", err)
	}

	got, _ := s.Get(created.ID)
	if !got.CreatedAt.Equal(baseTime) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, baseTime)
	}
}
