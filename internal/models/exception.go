package models

import "time"

// Exception kinds. Only no_report is produced by the automated detector;
// the remaining kinds are recorded by administrators.
const (
	ExceptionLate      = "late"
	ExceptionNoReport  = "no_report"
	ExceptionShortDay  = "short_day"
	ExceptionLongBreak = "long_break"
	ExceptionNoShow    = "no_show"
)

// Exception is a recorded attendance anomaly. (employee, date, kind) is
// unique. A nil ResolvedAt means the anomaly is still open.
type Exception struct {
	ID         string         // Unique identifier for the exception
	EmployeeID string         // Identifier of the employee the anomaly concerns
	Date       time.Time      // Calendar date the anomaly is attributed to
	Kind       string         // Anomaly kind, one of the Exception* constants
	Severity   int            // Severity weight, 1 is the lowest
	Details    map[string]any // Free-form context, e.g. the offending shift ID
	ResolvedAt *time.Time     // Resolution instant, nil while open
}

// OverdueShift is a done shift past the report grace period with no
// submitted daily report, as selected by the exception detector.
type OverdueShift struct {
	ShiftID      string    // Identifier of the overdue shift
	EmployeeID   string    // Identifier of the shift's employee
	PlannedEndAt time.Time // Planned end used to date the exception
}
