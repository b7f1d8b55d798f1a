package engine

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// defaultBackoff is used when a rate-limit response carries no usable
// Retry-After hint.
const defaultBackoff = 60 * time.Second

// backoffDelay converts a raw Retry-After hint into a wait duration.
// The hint is either a number of seconds or an HTTP-date; anything else
// (including absence) falls back to defaultBackoff.
func backoffDelay(retryAfter string, now time.Time) time.Duration {
	s := strings.TrimSpace(retryAfter)
	if s == "" {
		return defaultBackoff
	}
	if secs, err := strconv.Atoi(s); err == nil {
		if secs < 0 {
			return defaultBackoff
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(s); err == nil {
		if d := at.Sub(now); d > 0 {
			return d
		}
		return 0
	}
	return defaultBackoff
}

// nextDelay computes the wait before the next poll after a rate-limited
// cycle: never less than the regular interval.
func nextDelay(interval time.Duration, retryAfter string, now time.Time) time.Duration {
	if d := backoffDelay(retryAfter, now); d > interval {
		return d
	}
	return interval
}
