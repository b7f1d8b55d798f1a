// Package digest sends a once-a-day summary of notification activity.
package digest

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"ticketwatch/internal/ledger"
	"ticketwatch/internal/transport"
	"ticketwatch/pkg/logx"
)

type Config struct {
	// Hour/Minute of the daily send, local time.
	Hour   int
	Minute int
}

// Service schedules the daily digest with a cron entry.
type Service struct {
	cfg      Config
	ledger   *ledger.Ledger
	notifier transport.Notifier
	log      logx.Logger

	c *cron.Cron
}

func New(cfg Config, led *ledger.Ledger, notifier transport.Notifier, log logx.Logger) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Service{cfg: cfg, ledger: led, notifier: notifier, log: log}
}

func (s *Service) Start(ctx context.Context) error {
	if s.c != nil {
		return nil
	}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	s.c = cron.New(cron.WithParser(parser))

	spec := fmt.Sprintf("%d %d * * *", s.cfg.Minute, s.cfg.Hour)
	if _, err := s.c.AddFunc(spec, func() { s.send(ctx) }); err != nil {
		s.c = nil
		return err
	}
	s.c.Start()
	s.log.Info("digest scheduled", logx.String("at", fmt.Sprintf("%02d:%02d", s.cfg.Hour, s.cfg.Minute)))
	return nil
}

func (s *Service) Stop() {
	if s.c == nil {
		return
	}
	<-s.c.Stop().Done()
	s.c = nil
}

func (s *Service) send(ctx context.Context) {
	n := s.ledger.NotifiedSince(time.Now().Add(-24 * time.Hour))

	body := "No new tickets in the last 24 hours."
	if n > 0 {
		body = fmt.Sprintf("%d new tickets notified in the last 24 hours.", n)
	}
	err := s.notifier.Present(ctx, transport.Notification{
		Title: "Daily ticket digest",
		Body:  body,
		Tag:   "digest",
	})
	if err != nil {
		s.log.Warn("digest send failed", logx.Err(err))
		return
	}
	s.log.Info("digest sent", logx.Int("tickets", n))
}
