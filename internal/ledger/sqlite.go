//go:build sqlite
// +build sqlite

package ledger

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"ticketwatch/pkg/logx"
)

//go:embed migrations.sql
var migrationsFS embed.FS

type sqliteStore struct {
	db  *sql.DB
	log logx.Logger
}

func openSQLite(cfg Config, log logx.Logger) (Store, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("ledger.path is required for sqlite driver")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a small number of concurrent writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if cfg.BusyTimeout > 0 {
		_, _ = db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.BusyTimeout.Milliseconds()))
	}
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	st := &sqliteStore{db: db, log: log}
	if err := st.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return st, nil
}

func (s *sqliteStore) migrate(ctx context.Context) error {
	b, err := migrationsFS.ReadFile("migrations.sql")
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, string(b))
	return err
}

func (s *sqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *sqliteStore) Load(ctx context.Context) (map[int64]time.Time, error) {
	if s == nil || s.db == nil {
		return nil, ErrDisabled
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, notified_ms FROM notified`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[int64]time.Time{}
	for rows.Next() {
		var (
			id int64
			ms int64
		)
		if err := rows.Scan(&id, &ms); err != nil {
			// A row we cannot read means a damaged table; start clean.
			s.log.Warn("ledger table malformed, clearing", logx.Err(err))
			_ = rows.Close()
			_, _ = s.db.ExecContext(ctx, `DELETE FROM notified`)
			return map[int64]time.Time{}, nil
		}
		out[id] = time.UnixMilli(ms)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *sqliteStore) Save(ctx context.Context, seen map[int64]time.Time) error {
	if s == nil || s.db == nil {
		return ErrDisabled
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for id, at := range seen {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO notified(id, notified_ms) VALUES(?,?)
			 ON CONFLICT(id) DO NOTHING`,
			id, at.UnixMilli(),
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}
