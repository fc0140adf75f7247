package service

import (
	"strings"
	"time"

	"github.com/vyrodovalexey/quotestore/internal/model"
)

// All queries scan a fresh snapshot from the store and keep its order.
// Every query returns a non-nil slice.

func filter(quotes []model.Quote, keep func(*model.Quote) bool) []model.Quote {
	out := make([]model.Quote, 0)
	for i := range quotes {
		if keep(&quotes[i]) {
			out = append(out, quotes[i])
		}
	}
	return out
}

func (s *QuoteService) where(keep func(*model.Quote) bool) []model.Quote {
	return filter(s.repo.FindAll(), keep)
}

func isBlank(str string) bool {
	return strings.TrimSpace(str) == ""
}

// FindByStatus returns quotes with exactly the given status.
func (s *QuoteService) FindByStatus(status model.Status) []model.Quote {
	return s.where(func(q *model.Quote) bool {
		return q.Status == status
	})
}

// FindByCategory returns quotes in the category. An empty category matches
// nothing.
func (s *QuoteService) FindByCategory(category string) []model.Quote {
	if category == "" {
		return []model.Quote{}
	}
	return s.where(func(q *model.Quote) bool {
		return q.Category == category
	})
}

// FindByTag returns quotes carrying the tag. A blank tag matches nothing.
func (s *QuoteService) FindByTag(tag string) []model.Quote {
	if isBlank(tag) {
		return []model.Quote{}
	}
	return s.where(func(q *model.Quote) bool {
		return q.HasTag(tag)
	})
}

// FindByTitleContaining returns quotes whose title contains term, ignoring
// case. A blank term matches nothing.
func (s *QuoteService) FindByTitleContaining(term string) []model.Quote {
	if isBlank(term) {
		return []model.Quote{}
	}
	lower := strings.ToLower(term)
	return s.where(func(q *model.Quote) bool {
		return strings.Contains(strings.ToLower(q.Title), lower)
	})
}

// FindByAuthor returns quotes by exactly this author. A blank author matches
// nothing.
func (s *QuoteService) FindByAuthor(author string) []model.Quote {
	if isBlank(author) {
		return []model.Quote{}
	}
	return s.where(func(q *model.Quote) bool {
		return q.Author == author
	})
}

// FindFavorites returns quotes flagged as favorite.
func (s *QuoteService) FindFavorites() []model.Quote {
	return s.where(func(q *model.Quote) bool {
		return q.Favorite
	})
}

// FindByMinRating returns quotes rated at least minRating.
func (s *QuoteService) FindByMinRating(minRating float64) []model.Quote {
	return s.where(func(q *model.Quote) bool {
		return q.Rating >= minRating
	})
}

// FindByDateRange returns quotes created strictly after start and strictly
// before end.
func (s *QuoteService) FindByDateRange(start, end time.Time) []model.Quote {
	return s.where(func(q *model.Quote) bool {
		return q.CreatedAt.After(start) && q.CreatedAt.Before(end)
	})
}

// Search matches query, ignoring case and surrounding whitespace, against
// title, description and category. Author and tags are not searched.
// A blank query matches nothing.
func (s *QuoteService) Search(query string) []model.Quote {
	if isBlank(query) {
		return []model.Quote{}
	}
	lower := strings.ToLower(strings.TrimSpace(query))
	return s.where(func(q *model.Quote) bool {
		return strings.Contains(strings.ToLower(q.Title), lower) ||
			strings.Contains(strings.ToLower(q.Description), lower) ||
			strings.Contains(strings.ToLower(q.Category), lower)
	})
}

// FindByAllTags returns quotes carrying every given tag. No tags matches
// nothing.
func (s *QuoteService) FindByAllTags(tags ...string) []model.Quote {
	if len(tags) == 0 {
		return []model.Quote{}
	}
	want := model.NewTagSet(tags...)
	return s.where(func(q *model.Quote) bool {
		return q.Tags.ContainsAll(want)
	})
}

// FindByAnyTag returns quotes carrying at least one given tag. No tags
// matches nothing.
func (s *QuoteService) FindByAnyTag(tags ...string) []model.Quote {
	if len(tags) == 0 {
		return []model.Quote{}
	}
	want := model.NewTagSet(tags...)
	return s.where(func(q *model.Quote) bool {
		return q.Tags.ContainsAny(want)
	})
}
