package models

import "time"

// Shift statuses. Transitions are monotonic forward only: a done shift
// is never resurrected, and missed is set by administration, not by the
// scheduler pipeline.
const (
	ShiftPlanned = "planned"
	ShiftActive  = "active"
	ShiftDone    = "done"
	ShiftMissed  = "missed"
)

// Interval source tags recording who opened the interval.
const (
	SourceBot   = "bot"
	SourceAuto  = "auto"
	SourceAdmin = "admin"
)

// BreakLunch is the only break type the bot currently opens.
const BreakLunch = "lunch"

// Shift represents one employee's planned or actual work day.
type Shift struct {
	ID             string    // Unique identifier for the shift
	EmployeeID     string    // Identifier of the employee the shift belongs to
	PlannedStartAt time.Time // Planned start instant, timezone-resolved
	PlannedEndAt   time.Time // Planned end instant, timezone-resolved
	Status         string    // Shift status: planned, active, done or missed
	CreatedAt      time.Time // Timestamp of when the shift record was created
}

// WorkInterval is a contiguous segment of active work within a shift.
// A nil EndAt means the interval is currently open.
type WorkInterval struct {
	ID      string     // Unique identifier for the interval
	ShiftID string     // Identifier of the owning shift
	StartAt time.Time  // Start instant of the interval
	EndAt   *time.Time // End instant, nil while the interval is open
	Source  string     // Origin of the interval: bot, auto or admin
}

// BreakInterval is a contiguous segment of break time within a shift.
type BreakInterval struct {
	ID      string     // Unique identifier for the interval
	ShiftID string     // Identifier of the owning shift
	StartAt time.Time  // Start instant of the break
	EndAt   *time.Time // End instant, nil while the break is open
	Type    string     // Break type, currently always lunch
	Source  string     // Origin of the interval: bot, auto or admin
}

// Attachment is a file reference stored with a daily report.
type Attachment struct {
	Name string `json:"name"` // Display name of the attachment
	Path string `json:"path"` // Storage path of the attachment
}

// DailyReport holds the plan and the end-of-day report for one shift.
// A nil SubmittedAt means the report was drafted but not submitted.
type DailyReport struct {
	ID           string         // Unique identifier for the report
	ShiftID      string         // Identifier of the shift the report covers
	PlannedItems []string       // Items the employee planned at shift start
	DoneItems    []string       // Items the employee completed
	Blockers     string         // Free-form description of blockers
	TaskLinks    []string       // Links to external task trackers
	TimeSpent    map[string]int // Minutes spent per task label
	Attachments  []Attachment   // Files attached to the report
	SubmittedAt  *time.Time     // Submission instant, nil while drafted
}

// ShiftSummary is a per-shift aggregate used by the timesheet export.
type ShiftSummary struct {
	ShiftID        string    // Identifier of the shift
	PlannedStartAt time.Time // Planned start of the shift
	PlannedEndAt   time.Time // Planned end of the shift
	Status         string    // Final shift status
	WorkedMinutes  int       // Sum of closed work interval durations
	BreakMinutes   int       // Sum of closed break interval durations
	ReportDone     bool      // Whether a submitted daily report exists
}
