package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrBadRequest     = errors.New("bad request")
	ErrMissingFields  = errors.New("required fields missing")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrNotAdmin       = errors.New("account lacks admin role")
	ErrUnavailable    = errors.New("document is not available")
	ErrRateLimited    = errors.New("rate limit exceeded")
	ErrInternalServer = errors.New("internal server error")
)

// ThrottledError carries the retry hint for a rate-limited request.
// errors.Is(err, ErrRateLimited) matches it so handlers can switch on the
// sentinel and recover RetryAfter with errors.As.
type ThrottledError struct {
	RetryAfter int // seconds until the caller may retry
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("rate limit exceeded, retry after %ds", e.RetryAfter)
}

func (e *ThrottledError) Is(target error) bool {
	return target == ErrRateLimited
}
