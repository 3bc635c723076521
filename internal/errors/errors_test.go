package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Error wrapping preserves original error
func TestMemexError_Unwrap_PreservesOriginalError(t *testing.T) {
	// Given: an original error
	originalErr := errors.New("original error")

	// When: wrapping with MemexError
	memErr := New(ErrCodeFileNotFound, "file not found: MEMORY.md", originalErr)

	// Then: unwrapping returns original error
	require.NotNil(t, memErr)
	assert.Equal(t, originalErr, errors.Unwrap(memErr))
	assert.True(t, errors.Is(memErr, originalErr))
}

func TestMemexError_Error_ReturnsFormattedMessage(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		message  string
		expected string
	}{
		{"config error", ErrCodeConfigInvalid, "logging.level must be one of debug, info, warn, error", "[ERR_102_CONFIG_INVALID] logging.level must be one of debug, info, warn, error"},
		{"empty index", ErrCodeIndexEmpty, "no memories found", "[ERR_207_INDEX_EMPTY] no memories found"},
		{"bad date", ErrCodeInvalidDate, "bad anchor date", "[ERR_406_INVALID_DATE] bad anchor date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, New(tt.code, tt.message, nil).Error())
		})
	}
}

func TestMemexError_Is_MatchesSentinelByCode(t *testing.T) {
	// Given: a specific error with the index-empty code, wrapped once more
	err := fmt.Errorf("search: %w", New(ErrCodeIndexEmpty, "nothing to index under /tmp/ws", nil))

	// Then: it matches the sentinel but not other codes
	assert.True(t, errors.Is(err, ErrIndexEmpty))
	assert.False(t, errors.Is(err, ErrCorruptIndex))
}

func TestMemexError_WithDetailAndSuggestion(t *testing.T) {
	err := New(ErrCodeAnchorUnresolved, "no anchor", nil).
		WithDetail("id", "abc123").
		WithSuggestion("Pass --date instead")

	assert.Equal(t, "abc123", err.Details["id"])
	assert.Equal(t, "Pass --date instead", err.Suggestion)
}

func TestMemexError_CategoryFromCode(t *testing.T) {
	tests := []struct {
		code         string
		wantCategory Category
	}{
		{ErrCodeConfigInvalid, CategoryConfig},
		{ErrCodeCorruptIndex, CategoryIO},
		{ErrCodeIndexEmpty, CategoryIO},
		{ErrCodeQueryEmpty, CategoryValidation},
		{ErrCodeAnchorUnresolved, CategoryValidation},
		{ErrCodeAnalyzerUnavailable, CategoryInternal},
		{"BAD", CategoryInternal},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.wantCategory, New(tt.code, "test message", nil).Category)
		})
	}
}

func TestMemexError_SeverityAndRetryable(t *testing.T) {
	tests := []struct {
		code          string
		wantSeverity  Severity
		wantRetryable bool
	}{
		{ErrCodeAnalyzerUnavailable, SeverityFatal, false},
		{ErrCodeIndexLocked, SeverityWarning, true},
		{ErrCodeCorruptIndex, SeverityError, false},
		{ErrCodeInvalidInput, SeverityError, false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := New(tt.code, "test message", nil)
			assert.Equal(t, tt.wantSeverity, err.Severity)
			assert.Equal(t, tt.wantRetryable, err.Retryable)
		})
	}
}

func TestWrap(t *testing.T) {
	originalErr := errors.New("something went wrong")

	memErr := Wrap(ErrCodeInternal, originalErr)

	require.NotNil(t, memErr)
	assert.Equal(t, ErrCodeInternal, memErr.Code)
	assert.Equal(t, "something went wrong", memErr.Message)
	assert.Equal(t, originalErr, memErr.Cause)
	assert.Nil(t, Wrap(ErrCodeInternal, nil))
}

func TestChainHelpers(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantCode      string
		wantRetryable bool
	}{
		{"retryable", New(ErrCodeIndexLocked, "locked", nil), ErrCodeIndexLocked, true},
		{"wrapped in fmt", fmt.Errorf("save: %w", New(ErrCodeIndexLocked, "locked", nil)), ErrCodeIndexLocked, true},
		{"joined", errors.Join(errors.New("first"), New(ErrCodeIndexLocked, "locked", nil)), ErrCodeIndexLocked, true},
		{"joined then wrapped", fmt.Errorf("build: %w",
			errors.Join(errors.New("first"), fmt.Errorf("save: %w", New(ErrCodeIndexFailed, "failed", nil)))), ErrCodeIndexFailed, false},
		{"fatal", New(ErrCodeAnalyzerUnavailable, "no analyzer", nil), ErrCodeAnalyzerUnavailable, false},
		{"standard error", errors.New("plain"), "", false},
		{"nil", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, GetCode(tt.err))
			assert.Equal(t, tt.wantRetryable, IsRetryable(tt.err))
		})
	}
}
