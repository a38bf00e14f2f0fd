// Package schedule converts weekly schedule template rules into concrete
// instants of one calendar day. It performs no I/O.
package schedule

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shiftline/smena-bot/internal/models"
)

// PreOffset is subtracted from the work window edges to derive the
// pre-start and pre-end reminder instants.
const PreOffset = 10 * time.Minute

// ErrBadWallClock is returned when a rules value is not a valid "HH:MM" wall-clock time.
var ErrBadWallClock = errors.New("invalid wall-clock value, want HH:MM")

// BreakSpan is one break window resolved to absolute instants.
type BreakSpan struct {
	Start time.Time
	End   time.Time
}

// DayInstants holds every instant of one scheduled work day.
type DayInstants struct {
	WorkStart time.Time
	WorkEnd   time.Time
	Breaks    []BreakSpan
}

// PreStart returns the pre-start reminder instant.
func (d DayInstants) PreStart() time.Time { return d.WorkStart.Add(-PreOffset) }

// PreEnd returns the pre-end reminder instant.
func (d DayInstants) PreEnd() time.Time { return d.WorkEnd.Add(-PreOffset) }

// InstantsFor resolves the template rules against the calendar date of
// `date` in the given location. The second return value is false when
// the date's weekday is not in the template's day set (Sunday = 0).
// Wall-clock values are combined with the date via time.Date in the
// location, so DST shifts and non-whole-hour offsets are handled by the
// time package rather than by fixed-offset arithmetic.
func InstantsFor(rules models.ScheduleRules, date time.Time, loc *time.Location) (DayInstants, bool, error) {
	local := date.In(loc)

	if !containsDay(rules.Days, int(local.Weekday())) {
		return DayInstants{}, false, nil
	}

	workStart, err := atWallClock(local, rules.Work.Start, loc)
	if err != nil {
		return DayInstants{}, false, fmt.Errorf("work start: %w", err)
	}
	workEnd, err := atWallClock(local, rules.Work.End, loc)
	if err != nil {
		return DayInstants{}, false, fmt.Errorf("work end: %w", err)
	}

	instants := DayInstants{WorkStart: workStart, WorkEnd: workEnd}
	for _, window := range rules.Breaks {
		start, errBreak := atWallClock(local, window[0], loc)
		if errBreak != nil {
			return DayInstants{}, false, fmt.Errorf("break start: %w", errBreak)
		}
		end, errBreak := atWallClock(local, window[1], loc)
		if errBreak != nil {
			return DayInstants{}, false, fmt.Errorf("break end: %w", errBreak)
		}
		instants.Breaks = append(instants.Breaks, BreakSpan{Start: start, End: end})
	}

	return instants, true, nil
}

// DayBounds returns the [start, end) instants of the calendar day that
// contains `at` in the given location. Used for same-day shift checks.
func DayBounds(at time.Time, loc *time.Location) (time.Time, time.Time) {
	local := at.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

func containsDay(days []int, weekday int) bool {
	for _, day := range days {
		if day == weekday {
			return true
		}
	}
	return false
}

// atWallClock combines the calendar date of `local` with an "HH:MM"
// value in the given location.
func atWallClock(local time.Time, wallClock string, loc *time.Location) (time.Time, error) {
	hoursStr, minutesStr, found := strings.Cut(wallClock, ":")
	if !found {
		return time.Time{}, fmt.Errorf("%w: %q", ErrBadWallClock, wallClock)
	}

	hours, err := strconv.Atoi(hoursStr)
	if err != nil || hours < 0 || hours > 23 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrBadWallClock, wallClock)
	}
	minutes, err := strconv.Atoi(minutesStr)
	if err != nil || minutes < 0 || minutes > 59 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrBadWallClock, wallClock)
	}

	return time.Date(local.Year(), local.Month(), local.Day(), hours, minutes, 0, 0, loc), nil
}
