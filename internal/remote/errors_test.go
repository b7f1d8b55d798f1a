package remote

import (
	"errors"
	"fmt"
	"testing"
)

func TestRateLimited(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want bool
		hint string
	}{
		{name: "429 with hint", err: &Error{Op: "search", Kind: KindHTTP, Status: 429, RetryAfter: "30"}, want: true, hint: "30"},
		{name: "503 without hint", err: &Error{Op: "search", Kind: KindHTTP, Status: 503}, want: true},
		{name: "500", err: &Error{Op: "search", Kind: KindHTTP, Status: 500}, want: false},
		{name: "timeout", err: &Error{Op: "search", Kind: KindTimeout}, want: false},
		{name: "wrapped", err: fmt.Errorf("cycle: %w", &Error{Op: "search", Kind: KindHTTP, Status: 429, RetryAfter: "7"}), want: true, hint: "7"},
		{name: "plain", err: errors.New("nope"), want: false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			hint, ok := RateLimited(tt.err)
			if ok != tt.want || hint != tt.hint {
				t.Fatalf("RateLimited = (%q, %v), want (%q, %v)", hint, ok, tt.hint, tt.want)
			}
		})
	}
}

func TestRetriable(t *testing.T) {
	t.Parallel()
	if !Retriable(&Error{Op: "groups", Kind: KindMalformed}) {
		t.Fatal("malformed responses are retriable")
	}
	if !Retriable(fmt.Errorf("wrap: %w", &Error{Op: "statuses", Kind: KindNetwork})) {
		t.Fatal("wrapped remote errors are retriable")
	}
	if Retriable(errors.New("config broken")) {
		t.Fatal("plain errors are not retriable")
	}
}
