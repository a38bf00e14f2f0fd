package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/shiftline/smena-bot/internal/metrics"
)

// Phase is one stage of the scheduler tick.
type Phase interface {
	Run(ctx context.Context, now time.Time) error
}

// Tick composes the three pipeline phases: generate upcoming reminders,
// dispatch due ones, detect missing reports. It carries no logic of its
// own. The external cron is assumed to trigger ticks one at a time with
// no overlap; the ON CONFLICT inserts keep an accidental overlap from
// double-creating rows.
type Tick struct {
	generator  Phase
	dispatcher Phase
	detector   Phase
	log        *slog.Logger
	metrics    *metrics.Metrics
}

// NewTick creates the tick from its three phases.
func NewTick(log *slog.Logger, generator, dispatcher, detector Phase, appMetrics *metrics.Metrics) *Tick {
	return &Tick{
		generator:  generator,
		dispatcher: dispatcher,
		detector:   detector,
		log:        log,
		metrics:    appMetrics,
	}
}

// Run executes the phases sequentially and returns the tick instant.
// A phase-level failure is logged and does not stop the later phases;
// per-item failures are already swallowed inside each phase.
func (t *Tick) Run(ctx context.Context) time.Time {
	now := time.Now()

	t.runPhase(ctx, "generate", t.generator, now)
	t.runPhase(ctx, "dispatch", t.dispatcher, now)
	t.runPhase(ctx, "detect", t.detector, now)

	return now
}

func (t *Tick) runPhase(ctx context.Context, name string, phase Phase, now time.Time) {
	started := time.Now()
	if err := phase.Run(ctx, now); err != nil {
		t.log.ErrorContext(ctx, "Scheduler phase failed", "phase", name, "error", err)
	}
	t.metrics.TickDuration.WithLabelValues(name).Observe(time.Since(started).Seconds())
}
