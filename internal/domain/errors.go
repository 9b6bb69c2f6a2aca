package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation          = "VALIDATION_ERROR"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeProviderUnavailable = "PROVIDER_UNAVAILABLE"
	ErrCodeTimeout             = "TIMEOUT"
	ErrCodeInternalError       = "INTERNAL_ERROR"
	ErrCodeInvalidOperation    = "INVALID_OPERATION"
)

// Validation errors
var (
	ErrEmptyText       = NewDomainError(ErrCodeValidation, "text unit has no text after normalization")
	ErrEndBeforeStart  = NewDomainError(ErrCodeValidation, "text unit end time precedes start time")
	ErrInvalidSource   = NewDomainError(ErrCodeValidation, "text unit has an unknown source stream")
	ErrEmptyQuestion   = NewDomainError(ErrCodeValidation, "question text is empty")
	ErrEmptyVideoID    = NewDomainError(ErrCodeValidation, "video ID is required")
	ErrInvalidTimeRange = NewDomainError(ErrCodeValidation, "time range end precedes start")
)

// Not found errors
var (
	ErrVideoNotFound = NewDomainError(ErrCodeNotFound, "video has not been ingested")
)

// Provider errors
var (
	ErrEmbeddingUnavailable  = NewDomainError(ErrCodeProviderUnavailable, "embedding provider unavailable")
	ErrGenerationUnavailable = NewDomainError(ErrCodeProviderUnavailable, "generation provider unavailable")
	ErrGenerationTimeout     = NewDomainError(ErrCodeTimeout, "generation exceeded caller deadline")
)

// Operation errors
var (
	ErrCorpusNotOrdered = NewDomainError(ErrCodeInvalidOperation, "corpus units are not ordered by start time")
)
