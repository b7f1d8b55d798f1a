package engine

import (
	"net/http"
	"testing"
	"time"
)

func TestBackoffDelay(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		retryAfter string
		want       time.Duration
	}{
		{name: "seconds", retryAfter: "90", want: 90 * time.Second},
		{name: "zero seconds", retryAfter: "0", want: 0},
		{name: "missing", retryAfter: "", want: defaultBackoff},
		{name: "garbage", retryAfter: "soon", want: defaultBackoff},
		{name: "negative", retryAfter: "-5", want: defaultBackoff},
		{name: "http date", retryAfter: now.Add(2 * time.Minute).UTC().Format(http.TimeFormat), want: 2 * time.Minute},
		{name: "http date in past", retryAfter: now.Add(-time.Minute).UTC().Format(http.TimeFormat), want: 0},
		{name: "date in unsupported layout", retryAfter: now.Add(2 * time.Minute).Format(time.RFC3339), want: defaultBackoff},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got := backoffDelay(tt.retryAfter, now)
			if got != tt.want {
				t.Fatalf("backoffDelay(%q) = %v, want %v", tt.retryAfter, got, tt.want)
			}
		})
	}
}

func TestNextDelayFloorsAtInterval(t *testing.T) {
	t.Parallel()
	now := time.Now()
	interval := 30 * time.Second

	if got := nextDelay(interval, "5", now); got != interval {
		t.Fatalf("short hint: got %v, want interval %v", got, interval)
	}
	if got := nextDelay(interval, "120", now); got != 120*time.Second {
		t.Fatalf("long hint: got %v, want 120s", got)
	}
	if got := nextDelay(interval, "", now); got != defaultBackoff {
		t.Fatalf("no hint: got %v, want %v", got, defaultBackoff)
	}
}
