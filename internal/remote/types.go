package remote

import "context"

// Status is a custom ticket status defined on the remote account.
type Status struct {
	ID    int64  `json:"id"`
	Label string `json:"agent_label"`
}

// Group is an agent group.
type Group struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Ticket is a search result. Only the fields the watcher needs are decoded.
type Ticket struct {
	ID      int64  `json:"id"`
	Subject string `json:"subject"`
	Status  string `json:"status,omitempty"`
	Created string `json:"created_at,omitempty"`
}

// Client is the narrow surface of the ticketing API the engine consumes.
//
// Implementations must enforce a per-request timeout and return *Error for
// every failure so callers can classify it (see errors.go).
type Client interface {
	Statuses(ctx context.Context) ([]Status, error)
	Groups(ctx context.Context) ([]Group, error)
	Search(ctx context.Context, query string) ([]Ticket, error)
}
