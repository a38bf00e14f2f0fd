package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shiftline/smena-bot/internal/metrics"
	"github.com/shiftline/smena-bot/internal/models"
	"github.com/shiftline/smena-bot/internal/repository"
)

// Detector records a no_report exception for every done shift past the
// grace period that has no submitted daily report. Exactly one row per
// (employee, date) is created; re-running the detector is a no-op for
// already-flagged shifts. Other exception kinds are recorded by
// administrators, not by this pipeline.
type Detector struct {
	store   repository.ExceptionManager
	log     *slog.Logger
	metrics *metrics.Metrics
	grace   time.Duration
}

// NewDetector creates an exception detector with the given grace period.
func NewDetector(
	log *slog.Logger,
	store repository.ExceptionManager,
	appMetrics *metrics.Metrics,
	grace time.Duration,
) *Detector {
	return &Detector{store: store, log: log, metrics: appMetrics, grace: grace}
}

// Run flags every overdue shift. A failure on one shift is logged and
// does not abort the others.
func (d *Detector) Run(ctx context.Context, now time.Time) error {
	shifts, err := d.store.ListShiftsMissingReport(ctx, now.Add(-d.grace))
	if err != nil {
		return fmt.Errorf("failed to list shifts missing report: %w", err)
	}

	for _, shift := range shifts {
		// The exception is dated to the calendar date of the planned
		// end, matching how the dashboard groups anomalies.
		endUTC := shift.PlannedEndAt.UTC()
		date := time.Date(endUTC.Year(), endUTC.Month(), endUTC.Day(), 0, 0, 0, 0, time.UTC)

		created, errCreate := d.store.CreateNoReportException(ctx, shift.EmployeeID, date, shift.ShiftID)
		if errCreate != nil {
			d.log.ErrorContext(ctx, "Failed to record missing report exception",
				"shift", shift.ShiftID, "employee", shift.EmployeeID, "error", errCreate)
			continue
		}
		if created {
			d.metrics.ExceptionsCreated.WithLabelValues(models.ExceptionNoReport).Inc()
		}
	}

	return nil
}
