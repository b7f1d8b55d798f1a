package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"ticketwatch/internal/ledger"
	"ticketwatch/internal/remote"
	"ticketwatch/internal/resolve"
	"ticketwatch/pkg/logx"
)

// ConfigError is a fatal, non-retriable startup failure: the watcher is
// misconfigured and retrying cannot help.
type ConfigError struct{ msg string }

func (e *ConfigError) Error() string { return e.msg }

var (
	ErrNoCriteria = &ConfigError{msg: "no search criteria configured (need base_query, tags, group or statuses)"}
	ErrEmptyQuery = &ConfigError{msg: "resolved search query is empty"}
)

// IsConfigError reports whether err is a non-retriable configuration failure.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// Config holds the engine's timing knobs.
type Config struct {
	// Interval between poll cycles. Default 30s.
	Interval time.Duration
	// MaxInitRetries bounds the total number of startup attempts. 0 means
	// the default of 5; 1 means a single attempt with no retries.
	MaxInitRetries int
	// RetryDelay between startup attempts. Default 5s.
	RetryDelay time.Duration
}

func (c Config) withDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = 30 * time.Second
	}
	if c.MaxInitRetries <= 0 {
		c.MaxInitRetries = 5
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = 5 * time.Second
	}
	return c
}

// Dispatcher is the slice of the notification pipeline the engine drives.
type Dispatcher interface {
	CheckAccess(ctx context.Context) error
	Dispatch(ctx context.Context, items []remote.Ticket)
}

// Engine owns the polling lifecycle: resolve criteria with retry, then
// poll, diff against the ledger, notify, and self-reschedule until stopped.
//
// Exactly one poll cycle runs at a time (single-flight); Stop only prevents
// future cycles, it never aborts one in flight.
type Engine struct {
	cfg  Config
	spec resolve.Spec

	client   remote.Client
	resolver *resolve.Resolver
	notify   Dispatcher
	ledger   *ledger.Ledger
	sched    Scheduler
	sleep    SleepFunc
	log      logx.Logger

	mu        sync.Mutex
	started   bool
	stopReq   bool
	isPolling bool
	cancel    func() // pending timer, nil when none
	query     string
}

// New wires an Engine. sched and sleep may be nil to use the real clock.
func New(cfg Config, spec resolve.Spec, client remote.Client, notify Dispatcher,
	led *ledger.Ledger, sched Scheduler, sleep SleepFunc, log logx.Logger) *Engine {
	if sched == nil {
		sched = TimerScheduler{}
	}
	if sleep == nil {
		sleep = Sleep
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Engine{
		cfg:      cfg.withDefaults(),
		spec:     spec,
		client:   client,
		resolver: resolve.New(client, log.With(logx.String("comp", "resolve"))),
		notify:   notify,
		ledger:   led,
		sched:    sched,
		sleep:    sleep,
		log:      log,
	}
}

// Start validates criteria, runs the initialization sequence with bounded
// retries and arms the first poll. It is idempotent: calling it while
// running is a logged no-op.
//
// A ConfigError or exhausted retries is a fatal startup outcome for the
// caller to report; Start never panics and never leaves a timer armed on
// failure.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.started {
		e.mu.Unlock()
		e.log.Info("engine already running, ignoring start")
		return nil
	}
	e.started = true
	e.stopReq = false
	e.mu.Unlock()

	if e.spec.Empty() {
		e.reset()
		return ErrNoCriteria
	}

	if err := e.initWithRetry(ctx); err != nil {
		e.reset()
		return err
	}

	// First cycle runs immediately; subsequent ones self-schedule.
	e.scheduleNext(ctx, 0)
	return nil
}

// Stop requests a graceful stop: the pending timer is cancelled and no new
// cycle is scheduled. An in-flight poll finishes on its own. Idempotent.
func (e *Engine) Stop() {
	e.mu.Lock()
	wasStarted := e.started
	e.started = false
	e.stopReq = true
	cancel := e.cancel
	e.cancel = nil
	e.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if wasStarted {
		e.log.Info("engine stopped")
	}
}

func (e *Engine) reset() {
	e.mu.Lock()
	e.started = false
	e.mu.Unlock()
}

// initWithRetry probes the notification surface once, then runs the
// initialization sequence, retrying classified remote failures with a fixed
// delay up to MaxInitRetries attempts. Configuration errors abort
// immediately.
func (e *Engine) initWithRetry(ctx context.Context) error {
	if err := e.notify.CheckAccess(ctx); err != nil {
		// Alerts may never be seen, but polling and ledger bookkeeping
		// still work; degrade instead of failing startup.
		e.log.Warn("notification surface unavailable, continuing without alerts", logx.Err(err))
	}

	for attempt := 1; ; attempt++ {
		err := e.initOnce(ctx)
		if err == nil {
			return nil
		}
		if IsConfigError(err) {
			e.log.Error("startup failed, not retrying", logx.Err(err))
			return err
		}
		if !remote.Retriable(err) || attempt >= e.cfg.MaxInitRetries {
			e.log.Error("startup failed, retries exhausted",
				logx.Err(err), logx.Int("attempt", attempt))
			return err
		}
		e.log.Warn("startup attempt failed, retrying",
			logx.Err(err), logx.Int("attempt", attempt),
			logx.Duration("delay", e.cfg.RetryDelay))
		if serr := e.sleep(ctx, e.cfg.RetryDelay); serr != nil {
			return serr
		}
	}
}

// initOnce performs one initialization pass: resolve criteria, build and
// validate the query.
func (e *Engine) initOnce(ctx context.Context) error {
	crit, err := e.resolver.Resolve(ctx, e.spec)
	if err != nil {
		return err
	}
	if crit.Query == "" {
		return ErrEmptyQuery
	}

	e.mu.Lock()
	e.query = crit.Query
	e.mu.Unlock()
	e.log.Info("watch initialized", logx.String("query", crit.Query),
		logx.Duration("interval", e.cfg.Interval))
	return nil
}

func (e *Engine) scheduleNext(ctx context.Context, d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopReq {
		return
	}
	e.cancel = e.sched.ScheduleAfter(d, func() { e.pollOnce(ctx) })
}

// pollOnce executes one poll cycle and arms the next. If a cycle is already
// in flight the tick is skipped, never queued.
func (e *Engine) pollOnce(ctx context.Context) {
	e.mu.Lock()
	if e.isPolling {
		e.mu.Unlock()
		e.log.Debug("poll already in flight, skipping cycle")
		return
	}
	e.isPolling = true
	e.cancel = nil
	q := e.query
	e.mu.Unlock()

	delay := e.runCycle(ctx, q)

	e.mu.Lock()
	e.isPolling = false
	stopped := e.stopReq
	e.mu.Unlock()

	if !stopped {
		e.scheduleNext(ctx, delay)
	}
}

// runCycle does the fetch/diff/notify/record work and returns the delay
// before the next cycle.
func (e *Engine) runCycle(ctx context.Context, q string) time.Duration {
	items, err := e.client.Search(ctx, q)
	if err != nil {
		if ra, ok := remote.RateLimited(err); ok {
			d := nextDelay(e.cfg.Interval, ra, time.Now())
			e.log.Warn("rate limited, backing off",
				logx.Err(err), logx.Duration("delay", d))
			return d
		}
		e.log.Warn("poll cycle failed", logx.Err(err))
		return e.cfg.Interval
	}

	fresh := make([]remote.Ticket, 0, len(items))
	ids := make([]int64, 0, len(items))
	for _, t := range items {
		if !e.ledger.Contains(t.ID) {
			fresh = append(fresh, t)
			ids = append(ids, t.ID)
		}
	}

	if len(fresh) > 0 {
		// Dispatch and record belong together: a dispatched id is always
		// marked, even if the subsequent persist fails.
		e.notify.Dispatch(ctx, fresh)
		e.ledger.Mark(ids, time.Now())
		e.ledger.Save(ctx)
	}

	e.log.Debug("poll cycle done",
		logx.Int("results", len(items)), logx.Int("new", len(fresh)))
	return e.cfg.Interval
}
