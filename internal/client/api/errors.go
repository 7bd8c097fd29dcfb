package api

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when the server reports a missing history record.
var ErrNotFound = errors.New("record not found")

var errMissingText = errors.New("malformed response: missing rewritten_text")

// ServiceError is an application-level failure reported by the server, either
// a non-2xx status with an error body or a 2xx body with success=false.
type ServiceError struct {
	Status  int
	Code    string
	Message string
}

func (e *ServiceError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%s, status %d)", e.Message, e.Code, e.Status)
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

// Is matches ErrNotFound for 404 responses.
func (e *ServiceError) Is(target error) bool {
	return target == ErrNotFound && e.Status == 404
}

// TransportError covers connection failures and bodies that cannot be
// decoded, whatever their status. Status is zero when no response arrived.
type TransportError struct {
	Op     string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
