package config

import (
	"strings"
	"testing"
	"time"
)

const validYAML = `
remote:
  base_url: https://example.zendesk.com
  email: agent@example.com
  api_token: secret
watch:
  base_query: "status:open"
  tags: [urgent, "needs review"]
  interval: 45s
  ticket_url_base: https://example.zendesk.com/agent/tickets/
telegram:
  token: "123:abc"
  chat_id: -100200300
logging:
  console: true
ledger:
  driver: file
  path: /tmp/ticketwatch/ledger.json
`

func TestDecodeValidYAML(t *testing.T) {
	t.Parallel()
	cfg, err := Decode("config.yaml", []byte(validYAML))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if cfg.Remote.BaseURL != "https://example.zendesk.com" {
		t.Fatalf("BaseURL = %q", cfg.Remote.BaseURL)
	}
	if len(cfg.Watch.Tags) != 2 || cfg.Watch.Tags[1] != "needs review" {
		t.Fatalf("Tags = %v", cfg.Watch.Tags)
	}
	if cfg.Telegram.ChatID != -100200300 {
		t.Fatalf("ChatID = %d", cfg.Telegram.ChatID)
	}
	d, err := ParseDurationOrDefault("watch.interval", cfg.Watch.Interval, 30*time.Second)
	if err != nil || d != 45*time.Second {
		t.Fatalf("interval = %v, %v", d, err)
	}
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	t.Parallel()
	bad := strings.Replace(validYAML, "base_query:", "basequery:", 1)
	if _, err := Decode("config.yaml", []byte(bad)); err == nil {
		t.Fatal("expected unknown-field error")
	}
}

func TestDecodeRejectsMissingRequired(t *testing.T) {
	t.Parallel()
	bad := strings.Replace(validYAML, `  token: "123:abc"`, `  token: ""`, 1)
	if _, err := Decode("config.yaml", []byte(bad)); err == nil {
		t.Fatal("expected validation error for empty telegram token")
	}
}

func TestDecodeJSONPassthrough(t *testing.T) {
	t.Parallel()
	js := `{
		"remote": {"base_url": "https://x", "email": "a@b", "api_token": "t"},
		"watch": {"tags": ["a"], "ticket_url_base": "https://x/t/"},
		"telegram": {"token": "tok", "chat_id": 5},
		"logging": {"console": true},
		"ledger": {}
	}`
	cfg, err := Decode("config.json", []byte(js))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if cfg.Ledger.Driver != "" {
		t.Fatalf("Driver = %q", cfg.Ledger.Driver)
	}
}

func TestDecodeRejectsTrailingData(t *testing.T) {
	t.Parallel()
	js := `{"remote":{"base_url":"https://x"},"watch":{"ticket_url_base":"u"},"telegram":{"token":"t","chat_id":1},"logging":{},"ledger":{}}{}`
	if _, err := Decode("config.json", []byte(js)); err == nil {
		t.Fatal("expected trailing-data error")
	}
}

func TestParseDurationField(t *testing.T) {
	t.Parallel()
	if _, err := ParseDurationField("p", "nope"); err == nil {
		t.Fatal("expected error for invalid duration")
	}
	if _, err := ParseDurationField("p", "-3s"); err == nil {
		t.Fatal("expected error for negative duration")
	}
	d, err := ParseDurationField("p", "")
	if err != nil || d != 0 {
		t.Fatalf("empty duration = %v, %v", d, err)
	}
}

func TestParseHHMM(t *testing.T) {
	t.Parallel()
	h, m, err := ParseHHMM("23:15")
	if err != nil {
		t.Fatalf("ParseHHMM: %v", err)
	}
	if h != 23 || m != 15 {
		t.Fatalf("unexpected result: %d:%d", h, m)
	}
	if _, _, err := ParseHHMM("24:00"); err == nil {
		t.Fatal("expected error for invalid hour")
	}
	if _, _, err := ParseHHMM("12"); err == nil {
		t.Fatal("expected error for missing minutes")
	}
}
