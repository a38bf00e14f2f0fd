package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/shiftline/smena-bot/internal/models"
)

// CreateReminder inserts a reminder for (employee, type, plannedAt) and
// reports whether a new row was created. Re-running the generator for
// instants that already have reminders is a no-op.
func (r *Repository) CreateReminder(
	ctx context.Context,
	employeeID, reminderType string,
	plannedAt time.Time,
) (bool, error) {
	tag, err := r.db.Exec(ctx, CreateReminderSQL, employeeID, reminderType, plannedAt)
	if err != nil {
		return false, fmt.Errorf("failed to create reminder: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListDueReminders returns unsent reminders planned inside [from, to]
// for active employees, ordered by planned instant.
func (r *Repository) ListDueReminders(ctx context.Context, from, to time.Time) ([]models.DueReminder, error) {
	rows, err := r.db.Query(ctx, ListDueRemindersSQL, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query due reminders: %w", err)
	}
	defer rows.Close()

	var reminders []models.DueReminder
	for rows.Next() {
		var reminder models.DueReminder
		if errScan := rows.Scan(
			&reminder.ID,
			&reminder.EmployeeID,
			&reminder.Type,
			&reminder.PlannedAt,
			&reminder.TelegramID,
		); errScan != nil {
			return nil, fmt.Errorf("failed to scan reminder row: %w", errScan)
		}
		reminders = append(reminders, reminder)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	return reminders, nil
}

// MarkRemindersSent stamps sent_at on every given reminder in one bulk
// update. Called after the delivery attempt for the whole selection.
func (r *Repository) MarkRemindersSent(ctx context.Context, ids []string, sentAt time.Time) error {
	if len(ids) == 0 {
		return nil
	}

	_, err := r.db.Exec(ctx, MarkRemindersSentSQL, ids, sentAt)
	if err != nil {
		return fmt.Errorf("failed to mark reminders as sent: %w", err)
	}
	return nil
}
