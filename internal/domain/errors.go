package domain

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	ErrInternal     ErrorCode = "INTERNAL_ERROR"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"

	// URL and scraping errors
	ErrInvalidURL      ErrorCode = "INVALID_URL"
	ErrDisambiguation  ErrorCode = "DISAMBIGUATION_PAGE"
	ErrContentTooShort ErrorCode = "CONTENT_TOO_SHORT"
	ErrContentTooLarge ErrorCode = "CONTENT_TOO_LARGE"
	ErrNetwork         ErrorCode = "NETWORK_ERROR"
	ErrParse           ErrorCode = "PARSE_ERROR"

	// Generation errors
	ErrSemanticValidation  ErrorCode = "SEMANTIC_VALIDATION_ERROR"
	ErrGenerationExhausted ErrorCode = "GENERATION_EXHAUSTED"

	// Infrastructure errors
	ErrPersistence   ErrorCode = "PERSISTENCE_ERROR"
	ErrConfiguration ErrorCode = "CONFIGURATION_ERROR"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the wrapped cause to errors.Is/As chains
func (e *DomainError) Unwrap() error {
	return e.Err
}

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
	})
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Helper functions for common errors

func NewInternalError(message string, err error) *DomainError {
	return NewError(ErrInternal, message, err)
}

func NewInvalidInputError(message string) *DomainError {
	return NewError(ErrInvalidInput, message, nil)
}

func NewNotFoundError(message string) *DomainError {
	return NewError(ErrNotFound, message, nil)
}

func NewInvalidURLError(url string) *DomainError {
	return NewError(ErrInvalidURL, fmt.Sprintf("Invalid Wikipedia article URL: %s", url), nil)
}

func NewDisambiguationError(url string) *DomainError {
	return NewError(ErrDisambiguation, fmt.Sprintf("URL points to a disambiguation page - please use a specific article URL: %s", url), nil)
}

func NewContentTooShortError(length int) *DomainError {
	return NewError(ErrContentTooShort, fmt.Sprintf("Article content too short for quiz generation (%d characters, minimum %d)", length, MinContentChars), nil)
}

func NewContentTooLargeError(maxBytes int64) *DomainError {
	return NewError(ErrContentTooLarge, fmt.Sprintf("Article content too large (max: %d bytes)", maxBytes), nil)
}

func NewNetworkError(message string, err error) *DomainError {
	return NewError(ErrNetwork, message, err)
}

func NewParseError(message string, err error) *DomainError {
	return NewError(ErrParse, message, err)
}

func NewSemanticValidationError(message string) *DomainError {
	return NewError(ErrSemanticValidation, message, nil)
}

func NewGenerationExhaustedError(attempts int, lastErr error) *DomainError {
	return NewError(ErrGenerationExhausted, fmt.Sprintf("Quiz generation failed after %d attempts", attempts), lastErr)
}

func NewPersistenceError(message string, err error) *DomainError {
	return NewError(ErrPersistence, message, err)
}

func NewConfigurationError(message string) *DomainError {
	return NewError(ErrConfiguration, message, nil)
}

func NewQuizNotFoundError(quizID int64) *DomainError {
	return NewError(ErrNotFound, fmt.Sprintf("Quiz not found with ID: %d", quizID), nil)
}

// ValidationError describes a single invalid request field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors aggregates field-level request validation failures.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	return e[0].Error()
}

func NewMissingFieldError(field string) ValidationError {
	return ValidationError{Field: field, Message: "is required"}
}

func NewOutOfRangeError(field string, value, min, max int) ValidationError {
	return ValidationError{Field: field, Message: fmt.Sprintf("value %d is out of range [%d, %d]", value, min, max)}
}

func NewInvalidFormatError(field, value string) ValidationError {
	return ValidationError{Field: field, Message: fmt.Sprintf("invalid format: %s", value)}
}
