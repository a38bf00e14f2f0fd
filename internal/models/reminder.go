package models

import "time"

// Reminder types tied to instants of an employee's work day.
const (
	ReminderPreStart   = "pre_start"
	ReminderLunchStart = "lunch_start"
	ReminderLunchEnd   = "lunch_end"
	ReminderPreEnd     = "pre_end"
	ReminderEndReport  = "end_report"
)

// Reminder is a scheduled one-time notification. A nil SentAt means the
// reminder is still pending. (employee, type, planned_at) is unique.
type Reminder struct {
	ID         string     // Unique identifier for the reminder
	EmployeeID string     // Identifier of the employee to notify
	Type       string     // Reminder type, one of the Reminder* constants
	PlannedAt  time.Time  // Instant the reminder is scheduled for
	SentAt     *time.Time // Dispatch attempt instant, nil while pending
}

// DueReminder is a pending reminder joined with the delivery channel,
// as selected by the dispatcher.
type DueReminder struct {
	ID         string    // Unique identifier for the reminder
	EmployeeID string    // Identifier of the employee to notify
	Type       string    // Reminder type, one of the Reminder* constants
	PlannedAt  time.Time // Instant the reminder is scheduled for
	TelegramID int64     // Telegram chat to deliver to, 0 when not linked
}
