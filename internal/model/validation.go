package model

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

// Validation errors for Quote.
var (
	ErrNilQuote           = errors.New("quote cannot be nil")
	ErrTitleRequired      = errors.New("title is required")
	ErrTitleTooLong       = errors.New("title cannot exceed 100 characters")
	ErrDescriptionTooLong = errors.New("quote text cannot exceed 1000 characters")
	ErrAuthorBlank        = errors.New("author cannot be empty if provided")
	ErrAuthorTooLong      = errors.New("author name cannot exceed 100 characters")
	ErrCategoryBlank      = errors.New("category cannot be empty if provided")
	ErrRatingOutOfRange   = errors.New("rating must be between 0 and 5")
	ErrInvalidStatus      = errors.New("status must be one of: ACTIVE, INACTIVE, ARCHIVED")
)

// Validation constants.
const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 1000
	MaxAuthorLength      = 100
	MinRating            = 0.0
	MaxRating            = 5.0
)

// ValidationError reports which field of a quote broke which rule.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsValidationError reports whether err carries a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}

// Validate checks if the Quote has valid field values. It never modifies q.
// An empty Status is accepted; the service fills in StatusActive.
func (q *Quote) Validate() error {
	if q == nil {
		return invalid("", ErrNilQuote)
	}

	if strings.TrimSpace(q.Title) == "" {
		return invalid("title", ErrTitleRequired)
	}

	if utf8.RuneCountInString(q.Title) > MaxTitleLength {
		return invalid("title", ErrTitleTooLong)
	}

	if utf8.RuneCountInString(q.Description) > MaxDescriptionLength {
		return invalid("description", ErrDescriptionTooLong)
	}

	if q.Author != "" {
		if strings.TrimSpace(q.Author) == "" {
			return invalid("author", ErrAuthorBlank)
		}
		if utf8.RuneCountInString(q.Author) > MaxAuthorLength {
			return invalid("author", ErrAuthorTooLong)
		}
	}

	if q.Category != "" && strings.TrimSpace(q.Category) == "" {
		return invalid("category", ErrCategoryBlank)
	}

	// NaN fails both comparisons, so check it explicitly.
	if math.IsNaN(q.Rating) || q.Rating < MinRating || q.Rating > MaxRating {
		return invalid("rating", ErrRatingOutOfRange)
	}

	if q.Status != "" && !q.Status.Valid() {
		return invalid("status", ErrInvalidStatus)
	}

	return nil
}
