package service

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/vyrodovalexey/quotestore/internal/model"
)

// GroupByCategory maps each category to its quotes in ID order. Quotes
// without a category are left out.
func (s *QuoteService) GroupByCategory() map[string][]model.Quote {
	groups := make(map[string][]model.Quote)
	for _, q := range s.repo.FindAll() {
		if q.Category == "" {
			continue
		}
		groups[q.Category] = append(groups[q.Category], q)
	}
	return groups
}

// UniqueTags returns the union of all tag sets, sorted.
func (s *QuoteService) UniqueTags() []string {
	union := make(model.TagSet)
	for _, q := range s.repo.FindAll() {
		for tag := range q.Tags {
			union[tag] = struct{}{}
		}
	}
	return union.Sorted()
}

// UniqueCategories returns every category in use, sorted.
func (s *QuoteService) UniqueCategories() []string {
	seen := make(map[string]struct{})
	for _, q := range s.repo.FindAll() {
		if q.Category != "" {
			seen[q.Category] = struct{}{}
		}
	}

	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	slices.Sort(out)
	return out
}

// CountByStatus counts quotes per status. Statuses with no quotes have no
// entry.
func (s *QuoteService) CountByStatus() map[model.Status]int {
	counts := make(map[model.Status]int)
	for _, q := range s.repo.FindAll() {
		counts[q.Status]++
	}
	return counts
}

// MostPopularTagCounts returns up to limit tags ordered by how many quotes
// carry them, most first. Equal counts are ordered lexically.
func (s *QuoteService) MostPopularTagCounts(limit int) ([]model.TagCount, error) {
	if limit < 0 {
		return nil, fmt.Errorf("popular tags: %w", ErrInvalidLimit)
	}

	counts := make(map[string]int)
	for _, q := range s.repo.FindAll() {
		for tag := range q.Tags {
			counts[tag]++
		}
	}

	ranked := make([]model.TagCount, 0, len(counts))
	for tag, n := range counts {
		ranked = append(ranked, model.TagCount{Tag: tag, Count: n})
	}
	slices.SortFunc(ranked, func(a, b model.TagCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Tag, b.Tag)
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// MostPopularTags is MostPopularTagCounts without the counts.
func (s *QuoteService) MostPopularTags(limit int) ([]string, error) {
	ranked, err := s.MostPopularTagCounts(limit)
	if err != nil {
		return nil, err
	}

	tags := make([]string, len(ranked))
	for i, tc := range ranked {
		tags[i] = tc.Tag
	}
	return tags, nil
}
