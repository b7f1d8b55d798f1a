// Package notify turns newly detected tickets into alerts on the
// notification surface.
package notify

import (
	"context"
	"strings"

	"golang.org/x/time/rate"

	"ticketwatch/internal/remote"
	"ticketwatch/internal/transport"
	"ticketwatch/pkg/logx"
)

type Config struct {
	// TicketURLBase is prepended to a ticket id to form its canonical URL.
	TicketURLBase string
	// RecentURL is opened from batched notifications. Defaults to
	// TicketURLBase without the trailing id segment.
	RecentURL string
	// RatePerSec throttles presents (messenger flood control). Default 1.
	RatePerSec int
}

// Dispatcher batches and presents notifications. Presentation failures are
// logged and swallowed: the poll cycle's bookkeeping must not depend on the
// messenger being up.
type Dispatcher struct {
	cfg      Config
	notifier transport.Notifier
	limiter  *rate.Limiter
	log      logx.Logger
}

func NewDispatcher(cfg Config, notifier transport.Notifier, log logx.Logger) *Dispatcher {
	if log.IsZero() {
		log = logx.Nop()
	}
	rps := cfg.RatePerSec
	if rps <= 0 {
		rps = 1
	}
	if strings.TrimSpace(cfg.RecentURL) == "" && cfg.TicketURLBase != "" {
		cfg.RecentURL = strings.TrimRight(cfg.TicketURLBase, "/") + "/recent"
	}
	return &Dispatcher{
		cfg:      cfg,
		notifier: notifier,
		limiter:  rate.NewLimiter(rate.Limit(rps), rps),
		log:      log,
	}
}

// CheckAccess probes the notification surface once.
func (d *Dispatcher) CheckAccess(ctx context.Context) error {
	return d.notifier.CheckAccess(ctx)
}

// Dispatch presents the cycle's new tickets as one alert. An empty batch
// is a no-op.
func (d *Dispatcher) Dispatch(ctx context.Context, items []remote.Ticket) {
	if len(items) == 0 {
		return
	}

	n := buildNotification(items, d.cfg.TicketURLBase, d.cfg.RecentURL)

	if err := d.limiter.Wait(ctx); err != nil {
		d.log.Warn("notification dropped before send", logx.Err(err), logx.Int("tickets", len(items)))
		return
	}
	if err := d.notifier.Present(ctx, n); err != nil {
		d.log.Warn("notification present failed", logx.Err(err), logx.Int("tickets", len(items)))
		return
	}
	d.log.Info("notified", logx.Int("tickets", len(items)), logx.String("tag", n.Tag))
}
