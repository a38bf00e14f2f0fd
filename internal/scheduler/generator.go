// Package scheduler implements the periodic reminder pipeline: reminder
// generation, rate-limited dispatch and attendance exception detection,
// composed by the tick triggered from an external cron.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shiftline/smena-bot/internal/metrics"
	"github.com/shiftline/smena-bot/internal/models"
	"github.com/shiftline/smena-bot/internal/repository"
	"github.com/shiftline/smena-bot/internal/schedule"
)

// GeneratorStore is the repository slice the generator reads and writes.
type GeneratorStore interface {
	repository.ScheduleManager
	repository.ReminderManager
}

// Generator walks active schedule assignments and creates the reminder
// rows for every future instant inside the lookahead window. Creation is
// idempotent: rows that already exist are left untouched.
type Generator struct {
	store      GeneratorStore
	log        *slog.Logger
	metrics    *metrics.Metrics
	lookahead  time.Duration
	defaultLoc *time.Location
}

// NewGenerator creates a reminder generator with the given lookahead.
func NewGenerator(
	log *slog.Logger,
	store GeneratorStore,
	appMetrics *metrics.Metrics,
	lookahead time.Duration,
	defaultLoc *time.Location,
) *Generator {
	return &Generator{store: store, log: log, metrics: appMetrics, lookahead: lookahead, defaultLoc: defaultLoc}
}

// Run generates reminders for every assignment valid inside
// [now, now+lookahead]. A failure on one assignment is logged and does
// not abort the others.
func (g *Generator) Run(ctx context.Context, now time.Time) error {
	assignments, err := g.store.ListActiveAssignments(ctx, now, now.Add(g.lookahead))
	if err != nil {
		return fmt.Errorf("failed to list schedule assignments: %w", err)
	}

	for _, assignment := range assignments {
		if err = g.processAssignment(ctx, assignment, now); err != nil {
			g.log.ErrorContext(ctx, "Failed to process schedule assignment",
				"employee", assignment.EmployeeID, "schedule", assignment.ScheduleID, "error", err)
		}
	}

	return nil
}

// processAssignment creates the reminders of one assignment for every
// scheduled day inside the lookahead window.
func (g *Generator) processAssignment(ctx context.Context, assignment models.Assignment, now time.Time) error {
	if assignment.TelegramID == 0 {
		// No delivery channel, nothing to remind.
		return nil
	}
	if assignment.Status != models.EmployeeActive {
		return nil
	}
	if len(assignment.Rules.Days) == 0 || assignment.Rules.Work.Start == "" || assignment.Rules.Work.End == "" {
		return fmt.Errorf("assignment has malformed schedule rules")
	}

	loc := g.defaultLoc
	if assignment.Timezone != "" {
		parsed, err := time.LoadLocation(assignment.Timezone)
		if err != nil {
			return fmt.Errorf("failed to load timezone %q: %w", assignment.Timezone, err)
		}
		loc = parsed
	}

	days := int(g.lookahead / (24 * time.Hour))
	for offset := 0; offset <= days; offset++ {
		date := now.In(loc).AddDate(0, 0, offset)

		instants, scheduled, err := schedule.InstantsFor(assignment.Rules, date, loc)
		if err != nil {
			return fmt.Errorf("failed to resolve instants for %s: %w", date.Format(time.DateOnly), err)
		}
		if !scheduled {
			continue
		}

		for _, planned := range remindersFor(instants) {
			if !planned.at.After(now) {
				continue
			}

			created, errCreate := g.store.CreateReminder(ctx, assignment.EmployeeID, planned.kind, planned.at)
			if errCreate != nil {
				return errCreate
			}
			if created {
				g.metrics.RemindersGenerated.Inc()
			}
		}
	}

	return nil
}

type plannedReminder struct {
	kind string
	at   time.Time
}

// remindersFor maps the instants of one work day to reminder rows:
// pre-start and pre-end plus one pair per break window.
func remindersFor(instants schedule.DayInstants) []plannedReminder {
	reminders := []plannedReminder{
		{kind: models.ReminderPreStart, at: instants.PreStart()},
		{kind: models.ReminderPreEnd, at: instants.PreEnd()},
	}
	for _, window := range instants.Breaks {
		reminders = append(reminders,
			plannedReminder{kind: models.ReminderLunchStart, at: window.Start},
			plannedReminder{kind: models.ReminderLunchEnd, at: window.End},
		)
	}
	return reminders
}
