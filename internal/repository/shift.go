package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shiftline/smena-bot/internal/models"
)

// ErrActiveShiftNotFound is returned when an operation requires an active shift and none exists.
var ErrActiveShiftNotFound = errors.New("active shift not found")

// CreateShift inserts a new shift and returns its identifier.
func (r *Repository) CreateShift(
	ctx context.Context,
	employeeID string,
	start, end time.Time,
	status string,
) (string, error) {
	var shiftID string
	err := r.db.QueryRow(ctx, CreateShiftSQL, employeeID, start, end, status).Scan(&shiftID)
	if err != nil {
		return "", fmt.Errorf("failed to create shift: %w", err)
	}
	return shiftID, nil
}

// HasShiftBetween reports whether the employee already has a shift
// starting inside [from, to). Used for the same-day duplicate check.
func (r *Repository) HasShiftBetween(ctx context.Context, employeeID string, from, to time.Time) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, HasShiftBetweenSQL, employeeID, from, to).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check for existing shift: %w", err)
	}
	return exists, nil
}

// FindActiveShift returns the identifier of the most recently created
// active shift of the employee, or ErrActiveShiftNotFound.
func (r *Repository) FindActiveShift(ctx context.Context, employeeID string) (string, error) {
	var shiftID string
	err := r.db.QueryRow(ctx, FindActiveShiftSQL, employeeID).Scan(&shiftID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrActiveShiftNotFound
		}
		return "", fmt.Errorf("failed to find active shift: %w", err)
	}
	return shiftID, nil
}

// OpenWorkInterval opens a new work interval under the shift.
func (r *Repository) OpenWorkInterval(ctx context.Context, shiftID string, start time.Time, source string) error {
	_, err := r.db.Exec(ctx, OpenWorkIntervalSQL, shiftID, start, source)
	if err != nil {
		return fmt.Errorf("failed to open work interval: %w", err)
	}
	return nil
}

// CloseWorkInterval closes the open work interval of the shift, if any.
func (r *Repository) CloseWorkInterval(ctx context.Context, shiftID string, end time.Time) error {
	_, err := r.db.Exec(ctx, CloseWorkIntervalSQL, shiftID, end)
	if err != nil {
		return fmt.Errorf("failed to close work interval: %w", err)
	}
	return nil
}

// OpenBreakInterval opens a new break interval under the shift.
func (r *Repository) OpenBreakInterval(
	ctx context.Context,
	shiftID string,
	start time.Time,
	breakType, source string,
) error {
	_, err := r.db.Exec(ctx, OpenBreakIntervalSQL, shiftID, start, breakType, source)
	if err != nil {
		return fmt.Errorf("failed to open break interval: %w", err)
	}
	return nil
}

// CloseBreakInterval closes the open break interval of the given type.
func (r *Repository) CloseBreakInterval(ctx context.Context, shiftID string, end time.Time, breakType string) error {
	_, err := r.db.Exec(ctx, CloseBreakIntervalSQL, shiftID, end, breakType)
	if err != nil {
		return fmt.Errorf("failed to close break interval: %w", err)
	}
	return nil
}

// FinishShift transitions an active shift to done and pins its planned
// end to the actual finish instant. Done shifts are left untouched.
func (r *Repository) FinishShift(ctx context.Context, shiftID string, end time.Time) error {
	_, err := r.db.Exec(ctx, FinishShiftSQL, shiftID, end)
	if err != nil {
		return fmt.Errorf("failed to finish shift: %w", err)
	}
	return nil
}

// SeedDailyReport drafts a daily report carrying the planned items. It
// is a no-op when a report row for the shift already exists.
func (r *Repository) SeedDailyReport(ctx context.Context, shiftID string, plannedItems, taskLinks []string) error {
	_, err := r.db.Exec(ctx, SeedDailyReportSQL, shiftID, plannedItems, taskLinks)
	if err != nil {
		return fmt.Errorf("failed to seed daily report: %w", err)
	}
	return nil
}

// SubmitDailyReport upserts the end-of-day report of the shift with the
// given submission instant. Resubmission overwrites the previous report.
func (r *Repository) SubmitDailyReport(
	ctx context.Context,
	shiftID string,
	report models.DailyReport,
	submittedAt time.Time,
) error {
	timeSpent, err := json.Marshal(report.TimeSpent)
	if err != nil {
		return fmt.Errorf("failed to marshal time spent: %w", err)
	}
	attachments, err := json.Marshal(report.Attachments)
	if err != nil {
		return fmt.Errorf("failed to marshal attachments: %w", err)
	}

	_, err = r.db.Exec(
		ctx,
		SubmitDailyReportSQL,
		shiftID,
		report.DoneItems,
		report.Blockers,
		timeSpent,
		attachments,
		submittedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to submit daily report: %w", err)
	}
	return nil
}

// ListShiftSummaries returns per-shift aggregates for the timesheet
// export, ordered by planned start.
func (r *Repository) ListShiftSummaries(
	ctx context.Context,
	employeeID string,
	from, to time.Time,
) ([]models.ShiftSummary, error) {
	rows, err := r.db.Query(ctx, ListShiftSummariesSQL, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query shift summaries: %w", err)
	}
	defer rows.Close()

	var summaries []models.ShiftSummary
	for rows.Next() {
		var summary models.ShiftSummary
		if errScan := rows.Scan(
			&summary.ShiftID,
			&summary.PlannedStartAt,
			&summary.PlannedEndAt,
			&summary.Status,
			&summary.WorkedMinutes,
			&summary.BreakMinutes,
			&summary.ReportDone,
		); errScan != nil {
			return nil, fmt.Errorf("failed to scan shift summary row: %w", errScan)
		}
		summaries = append(summaries, summary)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	return summaries, nil
}
