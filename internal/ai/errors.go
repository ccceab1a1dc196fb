package ai

import (
	"errors"
	"fmt"
)

// Sentinel errors for completion calls.
var (
	ErrNotConfigured = errors.New("ai: no api key configured")
	ErrRateLimited   = errors.New("ai: rate limited by provider")
	ErrServer        = errors.New("ai: provider error")
	ErrBadResponse   = errors.New("ai: malformed response")
)

// APIError carries the provider's status and message for a rejected call.
type APIError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("ai: status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("ai: status %d", e.StatusCode)
}

func (e *APIError) Unwrap() error {
	return e.Err
}
