package validation

import (
	"strconv"
	"strings"

	"wikiquiz/internal/domain"
)

const (
	MaxURLLength = 500
	MaxPageLimit = 100
)

// Validator provides request validation functionality
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateGenerateQuizRequest validates the generate quiz request body.
// URL shape (is it a Wikipedia article?) is checked by the service; this
// only guards the request surface.
func (v *Validator) ValidateGenerateQuizRequest(url string) domain.ValidationErrors {
	var errors domain.ValidationErrors

	trimmed := strings.TrimSpace(url)
	if trimmed == "" {
		errors = append(errors, domain.NewMissingFieldError("url"))
		return errors
	}
	if len(trimmed) > MaxURLLength {
		errors = append(errors, domain.NewOutOfRangeError("url", len(trimmed), 1, MaxURLLength))
	}
	return errors
}

// ValidatePagination validates history paging parameters
func (v *Validator) ValidatePagination(skip, limit int) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if skip < 0 {
		errors = append(errors, domain.ValidationError{Field: "skip", Message: "must not be negative"})
	}
	if limit <= 0 || limit > MaxPageLimit {
		errors = append(errors, domain.NewOutOfRangeError("limit", limit, 1, MaxPageLimit))
	}
	return errors
}

// ParseQuizID parses a path parameter into a positive quiz id
func (v *Validator) ParseQuizID(raw string) (int64, domain.ValidationErrors) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ValidationErrors{domain.NewInvalidFormatError("id", raw)}
	}
	return id, nil
}
