// Package poller runs the background due-event scan.
//
// Every interval the Poller formats the current local time as "2006-01-02"
// and "15:04:05", asks the store for untriggered events at exactly that date
// and time, and hands each one to a Notifier. Nothing is written back: an
// event stays untriggered, and an event whose second is missed (scan late,
// server down) is never reported.
//
// LIFECYCLE:
//
//	New → Start → (scan, wait)* → Stop
//
// Start and Stop are idempotent. A stopped Poller can be started again.
package poller

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sakif/chronoflow/internal/metrics"
	"github.com/sakif/chronoflow/internal/model"
)

// DefaultInterval is the wait between scans.
const DefaultInterval = 60 * time.Second

// DueEventFinder is the slice of repository.EventRepository the poller needs.
type DueEventFinder interface {
	FindDueEvents(ctx context.Context, date, timeOfDay string) ([]model.Event, error)
}

// Notifier is the side effect run for each due event.
type Notifier interface {
	Notify(ctx context.Context, event model.Event) error
}

// LogNotifier reports due events as log lines. It is the default Notifier.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Notify(ctx context.Context, e model.Event) error {
	n.Logger.LogAttrs(ctx, slog.LevelInfo, "event triggered",
		slog.String("title", e.Title),
		slog.String("email", e.OwnerEmail),
		slog.String("id", e.ID),
		slog.String("date", e.Date),
		slog.String("time", e.Time),
		slog.String("reminder", e.ReminderChannel),
	)
	return nil
}

// Option configures a Poller.
type Option func(*Poller)

// WithClock replaces time.Now. Tests use it to pin the scan instant.
func WithClock(now func() time.Time) Option {
	return func(p *Poller) { p.now = now }
}

// WithNotifier replaces the LogNotifier.
func WithNotifier(n Notifier) Option {
	return func(p *Poller) { p.notifier = n }
}

// Poller owns the scan goroutine.
type Poller struct {
	events   DueEventFinder
	notifier Notifier
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{} // closed when the current loop exits; nil when never started or stopped
}

// New builds a stopped Poller. A non-positive interval means DefaultInterval.
func New(events DueEventFinder, interval time.Duration, logger *slog.Logger, opts ...Option) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	p := &Poller{
		events:   events,
		interval: interval,
		logger:   logger,
		now:      time.Now,
		notifier: LogNotifier{Logger: logger},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start launches the scan loop. It returns immediately; the first scan runs
// right away. Calling Start while the loop is alive does nothing. A loop that
// exited because ctx was cancelled is not alive, so Start spawns a new one.
//
// The loop stops when Stop is called or ctx is cancelled.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.aliveLocked() {
		return
	}
	if p.cancel != nil {
		p.cancel()
	}

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	p.cancel = cancel
	p.done = done

	p.logger.Info("due-event poller started", slog.Duration("interval", p.interval))
	go p.loop(loopCtx, done)
}

// Stop cancels the loop and waits for an in-progress scan to finish.
// Calling Stop on a stopped Poller does nothing.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.done == nil {
		return
	}

	p.cancel()
	<-p.done
	p.done = nil
	p.cancel = nil
	p.logger.Info("due-event poller stopped")
}

// Running reports whether the scan loop goroutine is alive.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.aliveLocked()
}

func (p *Poller) aliveLocked() bool {
	if p.done == nil {
		return false
	}
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

func (p *Poller) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	metrics.PollerRunning.Set(1)
	defer metrics.PollerRunning.Set(0)

	timer := time.NewTimer(0)
	defer timer.Stop()
	<-timer.C

	for {
		if ctx.Err() != nil {
			return
		}

		if _, err := p.Scan(ctx); err != nil && ctx.Err() == nil {
			p.logger.Error("scanning due events failed", slog.String("error", err.Error()))
		}

		timer.Reset(p.interval)
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
	}
}

// Scan runs one cycle and returns how many events were notified. A notifier
// error is logged and does not stop the remaining notifications.
func (p *Poller) Scan(ctx context.Context) (int, error) {
	start := time.Now()
	defer func() { metrics.PollerScanDuration.Observe(time.Since(start).Seconds()) }()

	now := p.now()
	date, tod := now.Format(model.DateLayout), now.Format(model.TimeLayout)

	due, err := p.events.FindDueEvents(ctx, date, tod)
	if err != nil {
		metrics.PollerScansTotal.WithLabelValues("error").Inc()
		return 0, fmt.Errorf("finding events due at %s %s: %w", date, tod, err)
	}
	metrics.PollerScansTotal.WithLabelValues("ok").Inc()

	notified := 0
	for _, e := range due {
		if err := p.notifier.Notify(ctx, e); err != nil {
			p.logger.Warn("notifying due event failed",
				slog.String("id", e.ID),
				slog.String("error", err.Error()),
			)
			continue
		}
		notified++
	}
	metrics.PollerEventsTriggered.Add(float64(notified))

	if len(due) > 0 {
		p.logger.Debug("due-event scan matched",
			slog.String("date", date),
			slog.String("time", tod),
			slog.Int("matched", len(due)),
			slog.Int("notified", notified),
		)
	}
	return notified, nil
}
