package models

import "time"

// WorkWindow is a daily work window in local wall-clock time.
type WorkWindow struct {
	Start string `json:"start"` // Window start as "HH:MM"
	End   string `json:"end"`   // Window end as "HH:MM"
}

// ScheduleRules is the weekly pattern stored in a schedule template.
// Days use weekday numbers 0-6 with Sunday as 0. Breaks are [start, end]
// wall-clock pairs inside the work window.
type ScheduleRules struct {
	Days   []int       `json:"days"`
	Work   WorkWindow  `json:"work"`
	Breaks [][2]string `json:"breaks"`
}

// ScheduleTemplate is a reusable weekly work pattern owned by a company.
type ScheduleTemplate struct {
	ID        string        // Unique identifier for the template
	CompanyID string        // Identifier of the owning company
	Name      string        // Human-readable template name
	Rules     ScheduleRules // Weekly work and break pattern
	CreatedAt time.Time     // Timestamp of when the template was created
}

// Assignment binds an employee to a schedule template for a validity
// interval. A nil ValidTo means the assignment is open-ended. Employee
// fields are denormalized because the reminder generator needs them for
// every assignment it walks.
type Assignment struct {
	EmployeeID string        // Identifier of the assigned employee
	ScheduleID string        // Identifier of the assigned template
	ValidFrom  time.Time     // First day the assignment applies
	ValidTo    *time.Time    // Last day the assignment applies, nil = open-ended
	TelegramID int64         // Employee's Telegram ID, 0 when not linked
	Status     string        // Employee lifecycle status
	Timezone   string        // Effective IANA timezone for the employee
	Rules      ScheduleRules // Rules of the assigned template
}
