// Package telegram presents notifications as Telegram messages via telebot.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	"ticketwatch/internal/transport"
	"ticketwatch/pkg/logx"
)

type Config struct {
	Token    string
	ChatID   int64
	ThreadID int // forum topic thread id (0 if none)
}

// Notifier sends alerts to a single chat. It never consumes updates; the
// bot is used purely as a send channel.
type Notifier struct {
	cfg Config
	bot *tele.Bot
	log logx.Logger
}

var _ transport.Notifier = (*Notifier)(nil)

func New(cfg Config, log logx.Logger) (*Notifier, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("telegram token is empty")
	}
	if cfg.ChatID == 0 {
		return nil, errors.New("telegram chat id is empty")
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	b, err := tele.NewBot(tele.Settings{
		Token:  cfg.Token,
		Client: &http.Client{Timeout: 10 * time.Second},
	})
	if err != nil {
		return nil, err
	}
	return &Notifier{cfg: cfg, bot: b, log: log}, nil
}

// CheckAccess verifies the bot can see the target chat. This is the
// "may I notify?" probe run once at engine startup.
func (n *Notifier) CheckAccess(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := n.bot.ChatByID(n.cfg.ChatID); err != nil {
		return fmt.Errorf("telegram chat %d not reachable: %w", n.cfg.ChatID, err)
	}
	return nil
}

// Present sends one HTML-formatted message; a non-empty URL becomes an
// inline button so acting on the alert opens the ticket.
func (n *Notifier) Present(ctx context.Context, note transport.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString("<b>")
	b.WriteString(html.EscapeString(note.Title))
	b.WriteString("</b>")
	if note.Body != "" {
		b.WriteString("\n\n")
		b.WriteString(html.EscapeString(note.Body))
	}

	opt := &tele.SendOptions{
		ParseMode:             tele.ModeHTML,
		DisableWebPagePreview: true,
		ThreadID:              n.cfg.ThreadID,
	}
	if note.URL != "" {
		markup := &tele.ReplyMarkup{}
		markup.Inline(markup.Row(markup.URL("Open", note.URL)))
		opt.ReplyMarkup = markup
	}

	_, err := n.bot.Send(&tele.Chat{ID: n.cfg.ChatID}, b.String(), opt)
	if err != nil {
		return err
	}
	n.log.Debug("notification sent", logx.String("tag", note.Tag))
	return nil
}
