package providers

import (
	"errors"
	"fmt"
	"strings"
)

// RateLimitedError indicates a provider signaled quota or throttling.
// The orchestrator reacts by marking the provider unavailable for the
// configured cooldown and moving on.
type RateLimitedError struct {
	Provider string
	Message  string
	Cause    error
}

func (e *RateLimitedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s rate limited: %s: %v", e.Provider, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s rate limited: %s", e.Provider, e.Message)
}

func (e *RateLimitedError) Unwrap() error {
	return e.Cause
}

// InvalidOutputError indicates the provider responded but its output could
// not be turned into even a partial record after salvage.
type InvalidOutputError struct {
	Provider string
	Message  string
	Cause    error
}

func (e *InvalidOutputError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s returned invalid output: %s: %v", e.Provider, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s returned invalid output: %s", e.Provider, e.Message)
}

func (e *InvalidOutputError) Unwrap() error {
	return e.Cause
}

// ProviderError covers any other backend failure: network, auth, timeout.
type ProviderError struct {
	Provider string
	Message  string
	Cause    error
}

func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s failed: %s: %v", e.Provider, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s failed: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// rateLimitIndicators are the substrings backends use to signal throttling.
// Matched case-insensitively against error messages and response bodies.
var rateLimitIndicators = []string{
	"rate limit",
	"quota",
	"429",
	"too many requests",
	"resource exhausted",
	"resource_exhausted",
}

// IsRateLimitMessage reports whether a backend error message looks like a
// throttling signal rather than a hard failure.
func IsRateLimitMessage(msg string) bool {
	lower := strings.ToLower(msg)
	for _, indicator := range rateLimitIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}

// IsRateLimited reports whether err is (or wraps) a RateLimitedError.
func IsRateLimited(err error) bool {
	var rl *RateLimitedError
	return errors.As(err, &rl)
}

// classifyBackendError wraps a raw backend error into the three-way
// taxonomy, promoting throttling signals to RateLimitedError.
func classifyBackendError(provider string, err error) error {
	if err == nil {
		return nil
	}
	if IsRateLimitMessage(err.Error()) {
		return &RateLimitedError{Provider: provider, Message: "backend signaled throttling", Cause: err}
	}
	return &ProviderError{Provider: provider, Message: "backend call failed", Cause: err}
}
