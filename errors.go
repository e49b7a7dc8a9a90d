package acestudy

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration marks a provider that cannot run because a required
	// credential or setting is missing
	ErrConfiguration = errors.New("provider not configured")

	// ErrNoProviders is returned when the fallback chain is empty
	ErrNoProviders = fmt.Errorf("%w: no providers available", ErrConfiguration)

	// ErrProvidersExhausted is returned when every provider in the chain failed
	ErrProvidersExhausted = errors.New("all providers failed")

	// ErrNoJSONFound is returned when model output has no {...} span
	ErrNoJSONFound = errors.New("no JSON object found")

	// ErrInvalidContext is returned for a StudyContext that breaks its invariants
	ErrInvalidContext = errors.New("invalid study context")

	// ErrAttemptNotFound is returned by attempt stores for unknown ids
	ErrAttemptNotFound = errors.New("attempt not found")
)

// ConfigurationError reports which provider is missing which setting
type ConfigurationError struct {
	Provider string
	Setting  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s missing", e.Provider, e.Setting)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}

// ProviderError is a transport or HTTP failure from a provider
type ProviderError struct {
	Provider   string
	StatusCode int // 0 when no HTTP response was received
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s error %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s error: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// ParseError is returned when the extracted JSON span does not decode
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse model JSON: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
