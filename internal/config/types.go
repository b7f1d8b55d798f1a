package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Config is the full on-disk configuration.
//
// Formats: JSON or YAML (by file extension). Unknown fields are rejected so
// typos fail loudly at load time instead of silently disabling features.
//
// All durations are Go duration strings (e.g. "500ms", "30s", "2m").
type Config struct {
	Remote   RemoteConfig    `json:"remote"`
	Watch    WatchConfig     `json:"watch"`
	Telegram TelegramConfig  `json:"telegram"`
	Logging  LoggingConfig   `json:"logging"`
	Ledger   LedgerConfig    `json:"ledger"`
	Digest   *DigestConfig   `json:"digest,omitempty"`
	Netwatch *NetwatchConfig `json:"netwatch,omitempty"`
}

// RemoteConfig points at the ticketing API.
type RemoteConfig struct {
	BaseURL  string `json:"base_url"`
	Email    string `json:"email"`
	APIToken string `json:"api_token"`

	// RequestTimeout bounds every remote call. Default "10s".
	RequestTimeout string `json:"request_timeout,omitempty"`
}

// WatchConfig describes what to poll for and how often.
//
// At least one of base_query, tags, group or statuses must be set; the
// engine refuses to start with nothing to search for.
type WatchConfig struct {
	BaseQuery string   `json:"base_query,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	Group     string   `json:"group,omitempty"`
	Statuses  []string `json:"statuses,omitempty"`

	// Interval between poll cycles. Default "30s".
	Interval string `json:"interval,omitempty"`

	// MaxInitRetries bounds the total number of startup attempts. 0 (or
	// unset) means the default of 5; use 1 to disable retries.
	MaxInitRetries int `json:"max_init_retries,omitempty"`

	// RetryDelay between startup attempts. Default "5s".
	RetryDelay string `json:"retry_delay,omitempty"`

	// TicketURLBase is prepended to a ticket id to form its canonical URL,
	// e.g. "https://example.zendesk.com/agent/tickets/".
	TicketURLBase string `json:"ticket_url_base"`

	// RecentURL is the view opened from a batched notification. Defaults to
	// TicketURLBase with the trailing id segment dropped.
	RecentURL string `json:"recent_url,omitempty"`
}

// TelegramConfig is the notification target.
type TelegramConfig struct {
	Token    string `json:"token"`
	ChatID   int64  `json:"chat_id"`
	ThreadID int    `json:"thread_id,omitempty"`

	// RatePerSec throttles outgoing notifications. Default 1.
	RatePerSec int `json:"rate_per_sec,omitempty"`
}

type LoggingConfig struct {
	Level   string            `json:"level,omitempty"`
	Console bool              `json:"console"`
	File    LoggingFileConfig `json:"file,omitempty"`
}

type LoggingFileConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path,omitempty"`
}

// LedgerConfig selects the notified-ticket persistence backend.
//
// Driver values:
//   - "" or "none": memory only (re-notifies after restart)
//   - "file": JSON snapshot file
//   - "sqlite": SQLite database file (requires the sqlite build tag)
type LedgerConfig struct {
	Driver      string `json:"driver,omitempty"`
	Path        string `json:"path,omitempty"`
	BusyTimeout string `json:"busy_timeout,omitempty"`
}

// DigestConfig enables the daily summary notification.
type DigestConfig struct {
	Enabled bool   `json:"enabled"`
	At      string `json:"at,omitempty"` // HH:MM, default "09:00"
}

// NetwatchConfig enables the connectivity probe that pauses polling while
// offline.
type NetwatchConfig struct {
	Enabled  bool   `json:"enabled"`
	ProbeURL string `json:"probe_url,omitempty"` // default: remote base URL
	Interval string `json:"interval,omitempty"`  // default "15s"
}

// Validate checks cross-field requirements that the strict decoder cannot.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Remote.BaseURL) == "" {
		return errors.New("remote.base_url is required")
	}
	if strings.TrimSpace(c.Telegram.Token) == "" {
		return errors.New("telegram.token is required")
	}
	if c.Telegram.ChatID == 0 {
		return errors.New("telegram.chat_id is required")
	}
	if strings.TrimSpace(c.Watch.TicketURLBase) == "" {
		return errors.New("watch.ticket_url_base is required")
	}
	for _, f := range []struct{ path, raw string }{
		{"remote.request_timeout", c.Remote.RequestTimeout},
		{"watch.interval", c.Watch.Interval},
		{"watch.retry_delay", c.Watch.RetryDelay},
	} {
		if _, err := ParseDurationField(f.path, f.raw); err != nil {
			return err
		}
	}
	if c.Watch.MaxInitRetries < 0 {
		return errors.New("watch.max_init_retries must be >= 0")
	}
	if d := c.Digest; d != nil && d.Enabled && strings.TrimSpace(d.At) != "" {
		if _, _, err := ParseHHMM(d.At); err != nil {
			return fmt.Errorf("digest.at: %w", err)
		}
	}
	if n := c.Netwatch; n != nil {
		if _, err := ParseDurationField("netwatch.interval", n.Interval); err != nil {
			return err
		}
	}
	return nil
}

// ParseHHMM parses a "HH:MM" wall-clock value.
func ParseHHMM(s string) (hour int, minute int, err error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", s)
	}
	return h, m, nil
}

func ParseDurationField(path, raw string) (time.Duration, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", path, raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: duration must be >= 0", path)
	}
	return d, nil
}

func ParseDurationOrDefault(path, raw string, def time.Duration) (time.Duration, error) {
	d, err := ParseDurationField(path, raw)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return def, nil
	}
	return d, nil
}
