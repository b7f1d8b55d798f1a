package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"ticketwatch/internal/remote"
	"ticketwatch/internal/transport"
	"ticketwatch/pkg/logx"
)

type fakeSurface struct {
	presented []transport.Notification
	fail      bool
}

func (f *fakeSurface) CheckAccess(ctx context.Context) error { return nil }
func (f *fakeSurface) Present(ctx context.Context, n transport.Notification) error {
	if f.fail {
		return errors.New("surface down")
	}
	f.presented = append(f.presented, n)
	return nil
}

func tickets(n int) []remote.Ticket {
	out := make([]remote.Ticket, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, remote.Ticket{ID: int64(100 + i), Subject: fmt.Sprintf("subject %d", i)})
	}
	return out
}

func TestSingleTicketShape(t *testing.T) {
	t.Parallel()
	s := &fakeSurface{}
	d := NewDispatcher(Config{TicketURLBase: "https://example.zendesk.com/agent/tickets/", RatePerSec: 100}, s, logx.Nop())

	d.Dispatch(context.Background(), tickets(1))

	if len(s.presented) != 1 {
		t.Fatalf("presented %d notifications, want 1", len(s.presented))
	}
	n := s.presented[0]
	if n.Title != "New ticket #101" {
		t.Fatalf("Title = %q", n.Title)
	}
	if n.Body != "subject 1" {
		t.Fatalf("Body = %q", n.Body)
	}
	if n.URL != "https://example.zendesk.com/agent/tickets/101" {
		t.Fatalf("URL = %q", n.URL)
	}
}

func TestBatchTruncation(t *testing.T) {
	t.Parallel()
	s := &fakeSurface{}
	d := NewDispatcher(Config{TicketURLBase: "https://x/t/", RatePerSec: 100}, s, logx.Nop())

	d.Dispatch(context.Background(), tickets(7))

	if len(s.presented) != 1 {
		t.Fatalf("presented %d notifications, want 1", len(s.presented))
	}
	n := s.presented[0]
	if n.Title != "7 new tickets" {
		t.Fatalf("Title = %q", n.Title)
	}
	lines := strings.Split(n.Body, "\n")
	if len(lines) != 6 {
		t.Fatalf("body has %d lines, want 6:\n%s", len(lines), n.Body)
	}
	for i, l := range lines[:5] {
		want := fmt.Sprintf("#%d — subject %d", 101+i, i+1)
		if l != want {
			t.Fatalf("line %d = %q, want %q", i, l, want)
		}
	}
	if lines[5] != "…and 2 more" {
		t.Fatalf("last line = %q", lines[5])
	}
	if n.URL != "https://x/t/recent" {
		t.Fatalf("URL = %q", n.URL)
	}
}

func TestBatchOfFiveHasNoMoreLine(t *testing.T) {
	t.Parallel()
	s := &fakeSurface{}
	d := NewDispatcher(Config{TicketURLBase: "https://x/t/", RatePerSec: 100}, s, logx.Nop())

	d.Dispatch(context.Background(), tickets(5))
	if strings.Contains(s.presented[0].Body, "more") {
		t.Fatalf("unexpected truncation line:\n%s", s.presented[0].Body)
	}
}

func TestPresentFailureIsSwallowed(t *testing.T) {
	t.Parallel()
	s := &fakeSurface{fail: true}
	d := NewDispatcher(Config{TicketURLBase: "https://x/t/", RatePerSec: 100}, s, logx.Nop())

	// Must not panic or propagate; nothing to assert but absence of a crash.
	d.Dispatch(context.Background(), tickets(2))

	if len(s.presented) != 0 {
		t.Fatalf("presented %d, want 0", len(s.presented))
	}
}
