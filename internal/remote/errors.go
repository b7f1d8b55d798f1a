package remote

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a remote failure.
type Kind int

const (
	// KindNetwork covers connection failures (DNS, refused, reset).
	KindNetwork Kind = iota
	// KindTimeout means the per-request deadline elapsed.
	KindTimeout
	// KindHTTP means the server answered with a non-2xx status.
	KindHTTP
	// KindMalformed means the body could not be decoded.
	KindMalformed
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindTimeout:
		return "timeout"
	case KindHTTP:
		return "http"
	case KindMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// Error is the classified failure returned by every Client operation.
type Error struct {
	Op   string // "statuses", "groups", "search"
	Kind Kind

	// Status is set for KindHTTP.
	Status int
	// RetryAfter is the raw Retry-After header, when the server sent one.
	RetryAfter string

	Err error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("remote %s: %s (status %d)", e.Op, e.Kind, e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("remote %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("remote %s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Retriable reports whether err is a classified remote failure worth
// retrying during initialization. Every remote error kind qualifies;
// anything else (configuration errors, nil) does not.
func Retriable(err error) bool {
	var re *Error
	return errors.As(err, &re)
}

// RateLimited reports whether err is a rate-limit/unavailable signal
// (HTTP 429 or 503). The returned string is the raw Retry-After hint,
// possibly empty.
func RateLimited(err error) (retryAfter string, ok bool) {
	var re *Error
	if !errors.As(err, &re) {
		return "", false
	}
	if re.Kind != KindHTTP {
		return "", false
	}
	if re.Status != http.StatusTooManyRequests && re.Status != http.StatusServiceUnavailable {
		return "", false
	}
	return re.RetryAfter, true
}
