package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shiftline/smena-bot/internal/models"
)

// ListShiftsMissingReport returns done shifts whose planned end is older
// than the given cutoff and that have no submitted daily report.
func (r *Repository) ListShiftsMissingReport(
	ctx context.Context,
	endedBefore time.Time,
) ([]models.OverdueShift, error) {
	rows, err := r.db.Query(ctx, ListShiftsMissingReportSQL, endedBefore)
	if err != nil {
		return nil, fmt.Errorf("failed to query shifts missing report: %w", err)
	}
	defer rows.Close()

	var shifts []models.OverdueShift
	for rows.Next() {
		var shift models.OverdueShift
		if errScan := rows.Scan(&shift.ShiftID, &shift.EmployeeID, &shift.PlannedEndAt); errScan != nil {
			return nil, fmt.Errorf("failed to scan overdue shift row: %w", errScan)
		}
		shifts = append(shifts, shift)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	return shifts, nil
}

// CreateNoReportException records a no_report anomaly for the employee
// and date, referencing the offending shift. It reports whether a new
// row was created; a second detector run for the same shift is a no-op.
func (r *Repository) CreateNoReportException(
	ctx context.Context,
	employeeID string,
	date time.Time,
	shiftID string,
) (bool, error) {
	details, err := json.Marshal(map[string]any{"shift_id": shiftID})
	if err != nil {
		return false, fmt.Errorf("failed to marshal exception details: %w", err)
	}

	tag, err := r.db.Exec(ctx, CreateNoReportExceptionSQL, employeeID, date, details)
	if err != nil {
		return false, fmt.Errorf("failed to create exception: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
