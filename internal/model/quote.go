// Package model defines data structures used throughout the application.
package model

import (
	"encoding/json"
	"slices"
	"time"
)

// Status is the lifecycle state of a quote.
type Status string

// Quote statuses.
const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
	StatusArchived Status = "ARCHIVED"
)

// Statuses lists every known status in declaration order.
var Statuses = []Status{StatusActive, StatusInactive, StatusArchived}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	return slices.Contains(Statuses, s)
}

// Quote is a single quote record.
//
// Author and Category are optional; the empty string means absent.
// ID zero means the quote has not been stored yet.
type Quote struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Author      string    `json:"author,omitempty"`
	Category    string    `json:"category,omitempty"`
	Tags        TagSet    `json:"tags"`
	Rating      float64   `json:"rating"`
	Favorite    bool      `json:"favorite"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// HasTag reports whether the quote carries the given tag.
func (q *Quote) HasTag(tag string) bool {
	return q.Tags.Has(tag)
}

// Clone returns a deep copy of the quote. The tag set is not shared.
func (q Quote) Clone() Quote {
	q.Tags = q.Tags.Clone()
	return q
}

// TagSet is an unordered set of tag labels.
type TagSet map[string]struct{}

// NewTagSet builds a set from the given tags, dropping duplicates.
func NewTagSet(tags ...string) TagSet {
	s := make(TagSet, len(tags))
	for _, t := range tags {
		s[t] = struct{}{}
	}
	return s
}

// Has reports whether tag is in the set. A nil set contains nothing.
func (s TagSet) Has(tag string) bool {
	_, ok := s[tag]
	return ok
}

// Len returns the number of tags.
func (s TagSet) Len() int {
	return len(s)
}

// ContainsAll reports whether every given tag is in the set.
func (s TagSet) ContainsAll(tags TagSet) bool {
	for t := range tags {
		if !s.Has(t) {
			return false
		}
	}
	return true
}

// ContainsAny reports whether at least one given tag is in the set.
func (s TagSet) ContainsAny(tags TagSet) bool {
	for t := range tags {
		if s.Has(t) {
			return true
		}
	}
	return false
}

// Clone returns an independent copy. Cloning nil yields nil.
func (s TagSet) Clone() TagSet {
	if s == nil {
		return nil
	}
	out := make(TagSet, len(s))
	for t := range s {
		out[t] = struct{}{}
	}
	return out
}

// Sorted returns the tags in lexical order.
func (s TagSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}

// MarshalJSON encodes the set as a sorted JSON array.
func (s TagSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON decodes a JSON array, collapsing duplicates.
func (s *TagSet) UnmarshalJSON(data []byte) error {
	var tags []string
	if err := json.Unmarshal(data, &tags); err != nil {
		return err
	}
	*s = NewTagSet(tags...)
	return nil
}
