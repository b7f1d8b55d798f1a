package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ticketwatch/pkg/logx"
)

// HTTPConfig configures the ticketing API client.
type HTTPConfig struct {
	BaseURL  string
	Email    string
	APIToken string

	// RequestTimeout bounds every call. Default 10s.
	RequestTimeout time.Duration
}

// HTTPClient talks to a Zendesk-style ticketing API.
type HTTPClient struct {
	base  string
	email string
	token string
	http  *http.Client
	log   logx.Logger
}

var _ Client = (*HTTPClient)(nil)

func NewHTTPClient(cfg HTTPConfig, log logx.Logger) (*HTTPClient, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("remote base URL is empty")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("remote base URL: %w", err)
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &HTTPClient{
		base:  base,
		email: strings.TrimSpace(cfg.Email),
		token: strings.TrimSpace(cfg.APIToken),
		http:  &http.Client{Timeout: timeout},
		log:   log,
	}, nil
}

func (c *HTTPClient) Statuses(ctx context.Context) ([]Status, error) {
	var out struct {
		Statuses []Status `json:"custom_statuses"`
	}
	if err := c.getJSON(ctx, "statuses", "/api/v2/custom_statuses.json", nil, &out); err != nil {
		return nil, err
	}
	return out.Statuses, nil
}

func (c *HTTPClient) Groups(ctx context.Context) ([]Group, error) {
	var out struct {
		Groups []Group `json:"groups"`
	}
	if err := c.getJSON(ctx, "groups", "/api/v2/groups.json", nil, &out); err != nil {
		return nil, err
	}
	return out.Groups, nil
}

func (c *HTTPClient) Search(ctx context.Context, query string) ([]Ticket, error) {
	q := url.Values{}
	q.Set("query", "type:ticket "+query)
	q.Set("sort_by", "created_at")
	q.Set("sort_order", "desc")
	var out struct {
		Results []Ticket `json:"results"`
	}
	if err := c.getJSON(ctx, "search", "/api/v2/search.json", q, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

func (c *HTTPClient) getJSON(ctx context.Context, op, path string, q url.Values, out any) error {
	u := c.base + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return &Error{Op: op, Kind: KindNetwork, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if c.email != "" && c.token != "" {
		// Zendesk API token auth: user is "email/token".
		req.SetBasicAuth(c.email+"/token", c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Op: op, Kind: classifyTransport(err), Err: err}
	}
	defer resp.Body.Close()

	c.log.Trace("remote call", logx.String("op", op), logx.Int("status", resp.StatusCode),
		logx.Duration("took", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{
			Op:         op,
			Kind:       KindHTTP,
			Status:     resp.StatusCode,
			RetryAfter: resp.Header.Get("Retry-After"),
		}
	}

	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "json") {
		return &Error{Op: op, Kind: KindMalformed, Err: fmt.Errorf("unexpected content type %q", ct)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Op: op, Kind: KindMalformed, Err: err}
	}
	return nil
}

func classifyTransport(err error) Kind {
	var ue *url.Error
	if errors.As(err, &ue) && ue.Timeout() {
		return KindTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return KindNetwork
}
