package ai

import (
	"errors"
	"fmt"
)

// AuthError means the provider credential is missing or rejected.
// The operation is disabled, not retried.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return "ai: auth error: " + e.Message
}

// RateLimitError means the upstream provider throttled the call, or an
// internal usage quota was exceeded. Surfaced as "try again later".
type RateLimitError struct {
	Message string
}

func (e *RateLimitError) Error() string {
	return "ai: rate limited: " + e.Message
}

// UpstreamError covers any other non-2xx response or network failure
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("ai: upstream error (%d): %s", e.Status, e.Message)
	}
	return "ai: upstream error: " + e.Message
}

// ValidationError means the model returned malformed or out-of-range output.
// Treated like UpstreamError for summaries and as the fallback trigger for sentiment.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return "ai: invalid model output: " + e.Message
}

func IsAuthError(err error) bool {
	var target *AuthError
	return errors.As(err, &target)
}

func IsRateLimitError(err error) bool {
	var target *RateLimitError
	return errors.As(err, &target)
}
