package ledger

import (
	"context"
	"errors"
	"strings"
	"time"

	"ticketwatch/pkg/logx"
)

var ErrDisabled = errors.New("ledger storage disabled")

// Config selects and configures the persistence backend.
//
// Driver values:
//   - "" or "none": no persistence (memory only)
//   - "file": JSON snapshot file
//   - "sqlite": SQLite database file (requires the sqlite build tag)
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// Store is the persistence API behind the Ledger.
//
// Load must recover from a malformed persisted payload by returning an empty
// mapping (clearing the bad record as a side effect) rather than an error;
// an error from Load means the backend itself is unusable.
type Store interface {
	Load(ctx context.Context) (map[int64]time.Time, error)
	Save(ctx context.Context, seen map[int64]time.Time) error
	Close() error
}

// Open initializes the configured store.
// It returns (nil, nil) if persistence is disabled.
func Open(cfg Config, log logx.Logger) (Store, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" || driver == "none" {
		return nil, nil
	}
	if log.IsZero() {
		log = logx.Nop()
	}

	switch driver {
	case "file":
		return openFile(cfg, log)
	case "sqlite", "sqlite3":
		return openSQLite(cfg, log)
	default:
		return nil, errors.New("unknown ledger driver: " + driver)
	}
}
