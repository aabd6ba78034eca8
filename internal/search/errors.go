package search

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrRateLimited marks a source that refused further queries. Strategies
// abandon the source when they see it.
var ErrRateLimited = errors.New("search source rate limited")

// APIError represents a non-2xx response from a code-host REST API.
type APIError struct {
	StatusCode       int
	Message          string
	DocumentationURL string
}

func (err *APIError) Error() string {
	if err.Message == "" {
		return fmt.Sprintf("code search: HTTP %d", err.StatusCode)
	}
	return fmt.Sprintf("code search: HTTP %d: %s", err.StatusCode, err.Message)
}

// Is makes errors.Is(err, ErrRateLimited) hold for 403 and 429 responses.
func (err *APIError) Is(target error) bool {
	return target == ErrRateLimited && isRateLimitStatus(err.StatusCode)
}

// IsRateLimited reports whether err came from a source refusing queries.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsUnauthorized reports whether the API required credentials.
func IsUnauthorized(err error) bool {
	var apiError *APIError
	return errors.As(err, &apiError) && apiError.StatusCode == http.StatusUnauthorized
}

func isRateLimitStatus(code int) bool {
	return code == http.StatusForbidden || code == http.StatusTooManyRequests
}
