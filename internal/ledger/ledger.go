// Package ledger records which ticket ids have already been notified, so a
// ticket alerts at most once across poll cycles and process restarts.
package ledger

import (
	"context"
	"sync"
	"time"

	"ticketwatch/pkg/logx"
)

// Ledger is the in-memory mapping of ticket id to first-notified time,
// backed by an optional Store.
//
// Persistence is strictly best-effort: a failed save is logged and the
// in-memory state stands, because re-notifying is worse than a missed
// persist. A failed or malformed load starts the ledger empty.
type Ledger struct {
	mu    sync.Mutex
	seen  map[int64]time.Time
	store Store
	log   logx.Logger
}

// New builds a Ledger, recovering prior state from store (which may be nil
// for memory-only operation).
func New(ctx context.Context, store Store, log logx.Logger) *Ledger {
	if log.IsZero() {
		log = logx.Nop()
	}
	l := &Ledger{seen: map[int64]time.Time{}, store: store, log: log}
	if store == nil {
		return l
	}

	seen, err := store.Load(ctx)
	if err != nil {
		log.Warn("ledger load failed, starting empty", logx.Err(err))
		return l
	}
	if seen != nil {
		l.seen = seen
	}
	log.Info("ledger loaded", logx.Int("entries", len(l.seen)))
	return l
}

// Contains reports whether id has already been notified.
func (l *Ledger) Contains(id int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.seen[id]
	return ok
}

// Mark records ids as notified at time at. Ids already present keep their
// original timestamp; re-observing an id never refreshes it.
func (l *Ledger) Mark(ids []int64, at time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, id := range ids {
		if _, ok := l.seen[id]; !ok {
			l.seen[id] = at
		}
	}
}

// Save persists the current mapping. Failures are logged, never returned.
func (l *Ledger) Save(ctx context.Context) {
	if l.store == nil {
		return
	}
	l.mu.Lock()
	snapshot := make(map[int64]time.Time, len(l.seen))
	for id, at := range l.seen {
		snapshot[id] = at
	}
	l.mu.Unlock()

	if err := l.store.Save(ctx, snapshot); err != nil {
		l.log.Warn("ledger save failed", logx.Err(err), logx.Int("entries", len(snapshot)))
	}
}

// Len returns the number of recorded ids.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.seen)
}

// NotifiedSince counts entries first notified at or after t.
func (l *Ledger) NotifiedSince(t time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, at := range l.seen {
		if !at.Before(t) {
			n++
		}
	}
	return n
}
