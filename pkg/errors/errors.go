package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeProviderUnavailable represents a provider that is not configured
	ErrorTypeProviderUnavailable ErrorType = "provider_unavailable"
	// ErrorTypeProviderTimeout represents a provider call that exceeded its deadline
	ErrorTypeProviderTimeout ErrorType = "provider_timeout"
	// ErrorTypeProviderFailure represents a per-call provider failure (HTTP error, empty result, parse failure)
	ErrorTypeProviderFailure ErrorType = "provider_failure"
	// ErrorTypeStoreUnavailable represents an absent or unreachable estimation store
	ErrorTypeStoreUnavailable ErrorType = "store_unavailable"
	// ErrorTypeInvalidInput represents a malformed request (bad URL list, oversized batch)
	ErrorTypeInvalidInput ErrorType = "invalid_input"
)

// ScrapeError represents a scraping pipeline error
type ScrapeError struct {
	Type     ErrorType
	Provider string
	Message  string
	Err      error
	Time     time.Time
}

// Error implements the error interface
func (e *ScrapeError) Error() string {
	if e.Err != nil {
		if e.Provider != "" {
			return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Provider, e.Message, e.Err)
		}
		return fmt.Sprintf("[%s] %s - %v", e.Type, e.Message, e.Err)
	}
	if e.Provider != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Type, e.Provider, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// New creates a new ScrapeError
func New(errType ErrorType, provider, message string, err error) *ScrapeError {
	return &ScrapeError{
		Type:     errType,
		Provider: provider,
		Message:  message,
		Err:      err,
		Time:     time.Now(),
	}
}

// NewProviderUnavailable creates an error for a provider that is not configured
func NewProviderUnavailable(provider string) *ScrapeError {
	return New(ErrorTypeProviderUnavailable, provider, "provider not configured", nil)
}

// NewProviderTimeout creates an error for a provider call that timed out
func NewProviderTimeout(provider string, err error) *ScrapeError {
	return New(ErrorTypeProviderTimeout, provider, "scrape deadline exceeded", err)
}

// NewProviderFailure creates an error for a failed provider call
func NewProviderFailure(provider, message string, err error) *ScrapeError {
	return New(ErrorTypeProviderFailure, provider, message, err)
}

// NewStoreUnavailable creates an error for an unreachable estimation store
func NewStoreUnavailable(message string, err error) *ScrapeError {
	return New(ErrorTypeStoreUnavailable, "", message, err)
}

// NewInvalidInput creates an error for a malformed caller request.
// This is the only error type that propagates to callers.
func NewInvalidInput(message string) *ScrapeError {
	return New(ErrorTypeInvalidInput, "", message, nil)
}

// typeOf extracts the ScrapeError type from an error chain
func typeOf(err error) (ErrorType, bool) {
	var se *ScrapeError
	if stderrors.As(err, &se) {
		return se.Type, true
	}
	return "", false
}

// IsInvalidInput returns true if the error is an invalid input error
func IsInvalidInput(err error) bool {
	t, ok := typeOf(err)
	return ok && t == ErrorTypeInvalidInput
}

// IsTimeout returns true if the error is a provider timeout
func IsTimeout(err error) bool {
	t, ok := typeOf(err)
	return ok && t == ErrorTypeProviderTimeout
}

// IsUnavailable returns true if the error marks a skippable unavailable collaborator
func IsUnavailable(err error) bool {
	t, ok := typeOf(err)
	return ok && (t == ErrorTypeProviderUnavailable || t == ErrorTypeStoreUnavailable)
}
