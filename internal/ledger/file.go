package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"ticketwatch/pkg/logx"
)

// fileStore persists the ledger as a single JSON snapshot mapping
// ticket id (decimal string key) to unix-millisecond timestamp.
//
// Saves rewrite the snapshot atomically (tmp file + rename). A snapshot
// that fails to decode is removed so the next load starts clean.
type fileStore struct {
	mu   sync.Mutex
	path string
	log  logx.Logger
}

func openFile(cfg Config, log logx.Logger) (Store, error) {
	path := cfg.Path
	if path == "" {
		return nil, errors.New("ledger.path is required for file driver")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return &fileStore{path: path, log: log}, nil
}

func (s *fileStore) Close() error { return nil }

func (s *fileStore) Load(ctx context.Context) (map[int64]time.Time, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[int64]time.Time{}, nil
	}
	if err != nil {
		return nil, err
	}

	var raw map[string]int64
	if err := json.Unmarshal(b, &raw); err != nil {
		// Corrupt snapshot: clear it and start over rather than wedging startup.
		s.log.Warn("ledger snapshot malformed, clearing", logx.String("path", s.path), logx.Err(err))
		_ = os.Remove(s.path)
		return map[int64]time.Time{}, nil
	}

	out := make(map[int64]time.Time, len(raw))
	for k, ms := range raw {
		id, err := strconv.ParseInt(k, 10, 64)
		if err != nil {
			s.log.Warn("ledger snapshot malformed, clearing", logx.String("path", s.path), logx.Err(err))
			_ = os.Remove(s.path)
			return map[int64]time.Time{}, nil
		}
		out[id] = time.UnixMilli(ms)
	}
	return out, nil
}

func (s *fileStore) Save(ctx context.Context, seen map[int64]time.Time) error {
	_ = ctx
	raw := make(map[string]int64, len(seen))
	for id, at := range seen {
		raw[strconv.FormatInt(id, 10)] = at.UnixMilli()
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
