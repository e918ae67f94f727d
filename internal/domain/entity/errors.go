package entity

import (
	"errors"
	"fmt"
)

// Sentinel errors for the collection pipeline.
var (
	// ErrProvider indicates that an external provider call failed
	// (network error, non-success status, open circuit).
	ErrProvider = errors.New("provider request failed")

	// ErrNormalization indicates that a fetched payload could not be mapped into an entity.
	ErrNormalization = errors.New("payload normalization failed")
)

// ProviderError describes a failed provider call.
// StatusCode is zero when no HTTP response was received.
type ProviderError struct {
	Provider   string
	Op         string
	StatusCode int
	Err        error
}

// Error returns a formatted error message for the provider error.
func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: status %d: %v", e.Provider, e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ProviderError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrProvider) match any ProviderError.
func (e *ProviderError) Is(target error) bool { return target == ErrProvider }

// NormalizationError describes a payload that could not be mapped into Entity.
// Field is empty when the payload as a whole was malformed.
type NormalizationError struct {
	Entity string
	Field  string
	Err    error
}

// Error returns a formatted error message for the normalization error.
func (e *NormalizationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("normalize %s: field '%s': %v", e.Entity, e.Field, e.Err)
	}
	return fmt.Sprintf("normalize %s: %v", e.Entity, e.Err)
}

// Unwrap returns the underlying cause.
func (e *NormalizationError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrNormalization) match any NormalizationError.
func (e *NormalizationError) Is(target error) bool { return target == ErrNormalization }
