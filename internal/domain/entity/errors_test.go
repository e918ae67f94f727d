package entity

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProviderError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *ProviderError
		expected string
	}{
		{
			name:     "with status code",
			err:      &ProviderError{Provider: "openweather", Op: "fetch weather", StatusCode: 503, Err: errors.New("unavailable")},
			expected: "openweather fetch weather: status 503: unavailable",
		},
		{
			name:     "transport error",
			err:      &ProviderError{Provider: "newsapi", Op: "fetch headlines", Err: errors.New("connection refused")},
			expected: "newsapi fetch headlines: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestNormalizationError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *NormalizationError
		expected string
	}{
		{
			name:     "field error",
			err:      &NormalizationError{Entity: "country", Field: "capital", Err: errors.New("required")},
			expected: "normalize country: field 'capital': required",
		},
		{
			name:     "payload error",
			err:      &NormalizationError{Entity: "weather", Err: errors.New("unexpected end of JSON input")},
			expected: "normalize weather: unexpected end of JSON input",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestErrors_IsAndAs(t *testing.T) {
	cause := errors.New("boom")
	provErr := fmt.Errorf("collect: %w", &ProviderError{Provider: "fixer", Op: "fetch rates", Err: cause})
	normErr := fmt.Errorf("collect: %w", &NormalizationError{Entity: "rates", Err: cause})

	assert.True(t, errors.Is(provErr, ErrProvider))
	assert.False(t, errors.Is(provErr, ErrNormalization))
	assert.True(t, errors.Is(provErr, cause))

	assert.True(t, errors.Is(normErr, ErrNormalization))
	assert.False(t, errors.Is(normErr, ErrProvider))

	var pe *ProviderError
	if assert.True(t, errors.As(provErr, &pe)) {
		assert.Equal(t, "fixer", pe.Provider)
	}
}
