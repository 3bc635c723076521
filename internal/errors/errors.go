package errors

import (
	stderrors "errors"
	"fmt"
)

// MemexError is the structured error type for memex.
// It provides rich context for error handling, logging, and user presentation.
type MemexError struct {
	// Code is the unique error code (e.g., "ERR_207_INDEX_EMPTY").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, IO, Validation, Internal).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Retryable indicates if the operation can be retried.
	Retryable bool

	// Suggestion is an actionable suggestion for the user.
	Suggestion string
}

// Sentinels for errors.Is matching. Matching is by code only.
var (
	ErrIndexEmpty          = New(ErrCodeIndexEmpty, "index is empty", nil)
	ErrCorruptIndex        = New(ErrCodeCorruptIndex, "index artifact is corrupt", nil)
	ErrStaleIndex          = New(ErrCodeStaleIndex, "index artifact is stale", nil)
	ErrIndexLocked         = New(ErrCodeIndexLocked, "index artifact is locked", nil)
	ErrQueryEmpty          = New(ErrCodeQueryEmpty, "query is empty", nil)
	ErrInvalidInput        = New(ErrCodeInvalidInput, "invalid input", nil)
	ErrInvalidDate         = New(ErrCodeInvalidDate, "invalid date", nil)
	ErrAnchorUnresolved    = New(ErrCodeAnchorUnresolved, "anchor could not be resolved", nil)
	ErrEntryNotFound       = New(ErrCodeEntryNotFound, "entry not found", nil)
	ErrAnalyzerUnavailable = New(ErrCodeAnalyzerUnavailable, "text analyzer unavailable", nil)
)

// Error implements the error interface.
func (e *MemexError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *MemexError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
// This enables errors.Is() to work with MemexError.
func (e *MemexError) Is(target error) bool {
	if t, ok := target.(*MemexError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *MemexError) WithDetail(key, value string) *MemexError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
func (e *MemexError) WithSuggestion(suggestion string) *MemexError {
	e.Suggestion = suggestion
	return e
}

// New creates a new MemexError with the given code and message.
// Category, severity, and retryable flag are derived from the code.
func New(code string, message string, cause error) *MemexError {
	return &MemexError{
		Code:      code,
		Message:   message,
		Category:  categoryFromCode(code),
		Severity:  severityFromCode(code),
		Cause:     cause,
		Retryable: isRetryableCode(code),
	}
}

// Wrap creates a MemexError from an existing error.
// The error's message becomes the MemexError message.
func Wrap(code string, err error) *MemexError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// as finds the first MemexError in err's tree, including joined errors.
func as(err error) (*MemexError, bool) {
	var me *MemexError
	if stderrors.As(err, &me) {
		return me, true
	}
	return nil, false
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	if me, ok := as(err); ok {
		return me.Retryable
	}
	return false
}

// GetCode extracts the error code from the first MemexError in err's chain.
// Returns empty string if there is none.
func GetCode(err error) string {
	if me, ok := as(err); ok {
		return me.Code
	}
	return ""
}
