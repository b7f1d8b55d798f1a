// Package app wires configuration, logging, persistence, the remote client
// and the poll engine into one runnable unit.
package app

import (
	"context"
	"sync"

	"ticketwatch/internal/config"
	"ticketwatch/internal/digest"
	"ticketwatch/internal/engine"
	"ticketwatch/internal/ledger"
	"ticketwatch/internal/netwatch"
	"ticketwatch/internal/notify"
	"ticketwatch/internal/remote"
	"ticketwatch/internal/resolve"
	"ticketwatch/internal/transport/telegram"
	"ticketwatch/pkg/logx"
)

type App struct {
	cfgm    *config.Manager
	log     logx.Logger
	baseLog logx.Logger

	store    ledger.Store
	ledger   *ledger.Ledger
	notifier *telegram.Notifier

	mu  sync.Mutex
	eng *engine.Engine

	nw  *netwatch.Watcher
	dig *digest.Service

	wg     sync.WaitGroup
	runCtx context.Context
	cancel context.CancelFunc
}

func New(cfgPath string) (*App, error) {
	bootLog := logx.NewConsole("info")

	cfgm := config.NewManager(cfgPath, bootLog)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, err
	}

	log, err := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})
	if err != nil {
		return nil, err
	}
	cfgm.SetLogger(log.With(logx.String("comp", "config")))

	busyTimeout, err := config.ParseDurationField("ledger.busy_timeout", cfg.Ledger.BusyTimeout)
	if err != nil {
		return nil, err
	}
	store, err := ledger.Open(ledger.Config{
		Driver:      cfg.Ledger.Driver,
		Path:        cfg.Ledger.Path,
		BusyTimeout: busyTimeout,
	}, log.With(logx.String("comp", "ledger")))
	if err != nil {
		return nil, err
	}
	led := ledger.New(context.Background(), store, log.With(logx.String("comp", "ledger")))

	notifier, err := telegram.New(telegram.Config{
		Token:    cfg.Telegram.Token,
		ChatID:   cfg.Telegram.ChatID,
		ThreadID: cfg.Telegram.ThreadID,
	}, log.With(logx.String("comp", "telegram")))
	if err != nil {
		return nil, err
	}

	a := &App{
		cfgm:     cfgm,
		log:      log.With(logx.String("comp", "app")),
		baseLog:  log,
		store:    store,
		ledger:   led,
		notifier: notifier,
	}

	eng, err := a.buildEngine(cfg, log)
	if err != nil {
		return nil, err
	}
	a.eng = eng

	if nwCfg := cfg.Netwatch; nwCfg != nil && nwCfg.Enabled {
		probeURL := nwCfg.ProbeURL
		if probeURL == "" {
			probeURL = cfg.Remote.BaseURL
		}
		interval, err := config.ParseDurationOrDefault("netwatch.interval", nwCfg.Interval, 0)
		if err != nil {
			return nil, err
		}
		a.nw = netwatch.New(netwatch.Config{ProbeURL: probeURL, Interval: interval},
			log.With(logx.String("comp", "netwatch")),
			a.onOnline, a.onOffline)
	}

	if dCfg := cfg.Digest; dCfg != nil && dCfg.Enabled {
		h, m := 9, 0
		if dCfg.At != "" {
			if h, m, err = config.ParseHHMM(dCfg.At); err != nil {
				return nil, err
			}
		}
		a.dig = digest.New(digest.Config{Hour: h, Minute: m}, led, notifier,
			log.With(logx.String("comp", "digest")))
	}

	return a, nil
}

// buildEngine assembles an engine for the given config. Engines are cheap
// and immutable, so a config reload swaps in a fresh one.
func (a *App) buildEngine(cfg *config.Config, log logx.Logger) (*engine.Engine, error) {
	requestTimeout, err := config.ParseDurationOrDefault("remote.request_timeout", cfg.Remote.RequestTimeout, 0)
	if err != nil {
		return nil, err
	}
	client, err := remote.NewHTTPClient(remote.HTTPConfig{
		BaseURL:        cfg.Remote.BaseURL,
		Email:          cfg.Remote.Email,
		APIToken:       cfg.Remote.APIToken,
		RequestTimeout: requestTimeout,
	}, log.With(logx.String("comp", "remote")))
	if err != nil {
		return nil, err
	}

	disp := notify.NewDispatcher(notify.Config{
		TicketURLBase: cfg.Watch.TicketURLBase,
		RecentURL:     cfg.Watch.RecentURL,
		RatePerSec:    cfg.Telegram.RatePerSec,
	}, a.notifier, log.With(logx.String("comp", "notify")))

	interval, err := config.ParseDurationOrDefault("watch.interval", cfg.Watch.Interval, 0)
	if err != nil {
		return nil, err
	}
	retryDelay, err := config.ParseDurationOrDefault("watch.retry_delay", cfg.Watch.RetryDelay, 0)
	if err != nil {
		return nil, err
	}

	spec := resolve.Spec{
		BaseQuery:    cfg.Watch.BaseQuery,
		Tags:         cfg.Watch.Tags,
		GroupName:    cfg.Watch.Group,
		StatusLabels: cfg.Watch.Statuses,
	}
	return engine.New(engine.Config{
		Interval:       interval,
		MaxInitRetries: cfg.Watch.MaxInitRetries,
		RetryDelay:     retryDelay,
	}, spec, client, disp, a.ledger, nil, nil, log.With(logx.String("comp", "engine"))), nil
}

// Start launches the engine and the supporting loops (config watch,
// network probe, digest). It returns once the engine is polling.
func (a *App) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	a.runCtx, a.cancel = ctx, cancel

	if err := a.eng.Start(ctx); err != nil {
		cancel()
		return err
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.cfgm.Watch(ctx); err != nil {
			a.log.Warn("config watch unavailable", logx.Err(err))
		}
	}()

	a.wg.Add(1)
	go a.reloadLoop(ctx)

	if a.nw != nil {
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			a.nw.Run(ctx)
		}()
	}

	if a.dig != nil {
		if err := a.dig.Start(ctx); err != nil {
			a.log.Warn("digest start failed", logx.Err(err))
		}
	}

	a.log.Info("ticketwatch started")
	return nil
}

// Stop halts polling and background loops, then flushes the ledger.
func (a *App) Stop(ctx context.Context) {
	if a.cancel != nil {
		a.cancel()
	}
	a.mu.Lock()
	eng := a.eng
	a.mu.Unlock()
	eng.Stop()
	if a.dig != nil {
		a.dig.Stop()
	}
	a.wg.Wait()

	a.ledger.Save(ctx)
	if a.store != nil {
		_ = a.store.Close()
	}
	_ = a.log.Close()
}

// reloadLoop applies committed config changes by swapping the engine.
func (a *App) reloadLoop(ctx context.Context) {
	defer a.wg.Done()
	sub := a.cfgm.Subscribe(1)
	defer a.cfgm.Unsubscribe(sub)

	for {
		select {
		case <-ctx.Done():
			return
		case cfg, ok := <-sub:
			if !ok {
				return
			}
			a.applyConfig(ctx, cfg)
		}
	}
}

func (a *App) applyConfig(ctx context.Context, cfg *config.Config) {
	eng, err := a.buildEngine(cfg, a.baseLog)
	if err != nil {
		a.log.Warn("config change rejected", logx.Err(err))
		return
	}

	a.mu.Lock()
	old := a.eng
	a.eng = eng
	a.mu.Unlock()

	old.Stop()
	if err := eng.Start(ctx); err != nil {
		a.log.Error("engine restart failed after config change", logx.Err(err))
		return
	}
	a.log.Info("engine restarted with new config")
}

func (a *App) onOnline() {
	a.mu.Lock()
	eng := a.eng
	a.mu.Unlock()
	if err := eng.Start(a.runCtx); err != nil {
		a.log.Warn("engine start on reconnect failed", logx.Err(err))
	}
}

func (a *App) onOffline() {
	a.mu.Lock()
	eng := a.eng
	a.mu.Unlock()
	eng.Stop()
}
