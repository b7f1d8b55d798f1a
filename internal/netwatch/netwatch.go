// Package netwatch probes remote reachability and reports online/offline
// transitions, so the watcher can pause polling while the network is down
// instead of burning retries.
package netwatch

import (
	"context"
	"net/http"
	"time"

	"ticketwatch/pkg/logx"
)

type Config struct {
	// ProbeURL is requested with HEAD; any HTTP answer counts as online.
	ProbeURL string
	// Interval between probes. Default 15s.
	Interval time.Duration
}

// Watcher emits at most one callback per transition. The first probe result
// always fires a callback so subscribers learn the initial state.
type Watcher struct {
	cfg       Config
	http      *http.Client
	log       logx.Logger
	onOnline  func()
	onOffline func()
}

func New(cfg Config, log logx.Logger, onOnline, onOffline func()) *Watcher {
	if cfg.Interval <= 0 {
		cfg.Interval = 15 * time.Second
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Watcher{
		cfg:       cfg,
		http:      &http.Client{Timeout: 5 * time.Second},
		log:       log,
		onOnline:  onOnline,
		onOffline: onOffline,
	}
}

// Run blocks until ctx is done.
func (w *Watcher) Run(ctx context.Context) {
	var (
		known  bool
		online bool
	)
	t := time.NewTicker(w.cfg.Interval)
	defer t.Stop()

	for {
		now := w.probe(ctx)
		if !known || now != online {
			known, online = true, now
			if online {
				w.log.Info("network online")
				if w.onOnline != nil {
					w.onOnline()
				}
			} else {
				w.log.Warn("network offline, polling paused")
				if w.onOffline != nil {
					w.onOffline()
				}
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}

func (w *Watcher) probe(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, w.cfg.ProbeURL, nil)
	if err != nil {
		return false
	}
	resp, err := w.http.Do(req)
	if err != nil {
		return false
	}
	_ = resp.Body.Close()
	// Any HTTP answer, even an error status, proves the network path works.
	return true
}
