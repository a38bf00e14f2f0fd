package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shiftline/smena-bot/internal/models"
)

// ListActiveAssignments returns every schedule assignment whose validity
// interval intersects [from, to], together with the employee delivery
// channel and the template rules. Assignments whose rules cannot be
// decoded are returned with zero-valued rules so that the caller can
// skip them without aborting the batch.
func (r *Repository) ListActiveAssignments(
	ctx context.Context,
	from, to time.Time,
) ([]models.Assignment, error) {
	rows, err := r.db.Query(ctx, ListActiveAssignmentsSQL, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedule assignments: %w", err)
	}
	defer rows.Close()

	var assignments []models.Assignment
	for rows.Next() {
		var assignment models.Assignment
		var rawRules []byte
		if errScan := rows.Scan(
			&assignment.EmployeeID,
			&assignment.ScheduleID,
			&assignment.ValidFrom,
			&assignment.ValidTo,
			&assignment.TelegramID,
			&assignment.Status,
			&assignment.Timezone,
			&rawRules,
		); errScan != nil {
			return nil, fmt.Errorf("failed to scan assignment row: %w", errScan)
		}

		// Malformed rules are an assignment-level problem, not a batch
		// failure; the generator logs and skips them.
		_ = json.Unmarshal(rawRules, &assignment.Rules)

		assignments = append(assignments, assignment)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	return assignments, nil
}
