package groq

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

var (
	ErrInvalidAPIKey = errors.New("groq: invalid API key")
	ErrRateLimited   = errors.New("groq: rate limit exceeded")
)

// APIError is a non-2xx answer from Groq.
type APIError struct {
	Status     int
	Message    string
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	return fmt.Sprintf("groq status %d: %s", e.Status, e.Message)
}

// Is maps 401 and 429 onto the package sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrInvalidAPIKey:
		return e.Status == http.StatusUnauthorized
	case ErrRateLimited:
		return e.Status == http.StatusTooManyRequests
	}
	return false
}

func newAPIError(resp *http.Response, body []byte, parsed *chatResponse) *APIError {
	e := &APIError{Status: resp.StatusCode, Message: string(body)}
	if parsed != nil && parsed.Error != nil && parsed.Error.Message != "" {
		e.Message = parsed.Error.Message
	}
	if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs > 0 {
		e.RetryAfter = time.Duration(secs) * time.Second
	}
	return e
}
