// Package refresh drives the fetch-classify-install cycle for one data
// source: once immediately at startup, then daily at a fixed UTC wall-clock
// time. The refresh step and the post-refresh notification are deliberately
// decoupled so a notification failure can never affect the installed
// snapshot.
package refresh

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Engine schedules refresh cycles for one data source. At most one cycle
// runs at a time; if a slow fetch is still in flight when the next daily
// trigger fires, that trigger is skipped rather than overlapped.
type Engine struct {
	name      string
	hourUTC   int
	minuteUTC int

	// run performs fetch+classify+install. It should only fail on context
	// cancellation; transient upstream failures are absorbed by the
	// fetcher's own retry loop.
	run func(ctx context.Context) error

	// onScheduled fires after a successfully installed *scheduled* refresh.
	// The startup refresh never triggers it. May be nil.
	onScheduled func(ctx context.Context)

	log      *zap.Logger
	inFlight atomic.Bool
}

// New builds an engine. hourUTC/minuteUTC give the daily trigger time.
func New(name string, hourUTC, minuteUTC int, run func(ctx context.Context) error, onScheduled func(ctx context.Context), log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		name:        name,
		hourUTC:     hourUTC,
		minuteUTC:   minuteUTC,
		run:         run,
		onScheduled: onScheduled,
		log:         log.With(zap.String("engine", name)),
	}
}

// Start blocks until ctx is cancelled, running the startup cycle first and
// then one cycle per daily trigger.
func (e *Engine) Start(ctx context.Context) error {
	e.log.Info("refresh engine starting",
		zap.Int("hourUTC", e.hourUTC),
		zap.Int("minuteUTC", e.minuteUTC))

	e.cycle(ctx, false)

	for {
		next := nextRun(time.Now().UTC(), e.hourUTC, e.minuteUTC)
		timer := time.NewTimer(time.Until(next))
		e.log.Info("next scheduled refresh", zap.Time("at", next))

		select {
		case <-timer.C:
			e.cycle(ctx, true)
		case <-ctx.Done():
			timer.Stop()
			e.log.Info("refresh engine stopping")
			return ctx.Err()
		}
	}
}

// cycle runs one refresh. scheduled distinguishes daily triggers from the
// startup run, which exists only to have data available right after boot
// and must not produce notifications.
func (e *Engine) cycle(ctx context.Context, scheduled bool) {
	if !e.inFlight.CompareAndSwap(false, true) {
		e.log.Warn("refresh still in flight, skipping trigger")
		return
	}
	defer e.inFlight.Store(false)

	start := time.Now()
	if err := e.run(ctx); err != nil {
		e.log.Error("refresh cycle aborted", zap.Error(err))
		return
	}
	e.log.Info("refresh cycle complete",
		zap.Duration("took", time.Since(start)),
		zap.Bool("scheduled", scheduled))

	if scheduled && e.onScheduled != nil {
		e.onScheduled(ctx)
	}
}

// nextRun returns the next occurrence of hour:minute UTC strictly after now.
func nextRun(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
