package push

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// RateLimitError reports a 429 response from the Push API.
type RateLimitError struct {
	RetryAt time.Time
	URL     string
}

func (e *RateLimitError) Error() string {
	if e.RetryAt.IsZero() {
		return fmt.Sprintf("push: rate limited (URL: %s)", e.URL)
	}
	return fmt.Sprintf("push: rate limited until %s (URL: %s)", e.RetryAt.Format(time.RFC3339), e.URL)
}

// APIError represents a non-2xx Push API response.
type APIError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("push: API error %d: %s (URL: %s)", e.StatusCode, e.Message, e.URL)
}

// IsNotFound checks if the error indicates an unknown organization or source.
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

// IsUnauthorized checks if the error indicates a rejected API key.
func IsUnauthorized(err error) bool {
	return hasStatus(err, http.StatusUnauthorized)
}

// IsForbidden checks if the error indicates a key without push privileges.
func IsForbidden(err error) bool {
	return hasStatus(err, http.StatusForbidden)
}

// IsRateLimited checks if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	var rateLimitErr *RateLimitError
	return errors.As(err, &rateLimitErr)
}

func hasStatus(err error, status int) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == status
	}
	return false
}
