package models

import "time"

// Employee lifecycle statuses.
const (
	EmployeeActive   = "active"
	EmployeeInactive = "inactive"
)

// Employee represents a worker tracked by the system.
// The Telegram ID is the delivery channel for reminders; an employee
// without one is skipped by the reminder pipeline.
type Employee struct {
	ID         string    // Unique identifier for the employee
	CompanyID  string    // Identifier of the owning company
	FullName   string    // Full name of the employee
	Position   string    // Job position of the employee, may be empty
	TelegramID int64     // Telegram user ID, 0 when the employee is not linked
	Status     string    // Lifecycle status: active or inactive
	Timezone   string    // Personal IANA timezone, empty = company timezone
	CreatedAt  time.Time // Timestamp of when the employee record was created
}

// Invite represents a one-time code that links a Telegram account to an
// employee slot in a company.
type Invite struct {
	ID        string     // Unique identifier for the invite
	CompanyID string     // Identifier of the company the invite belongs to
	Code      string     // One-time invite code
	FullName  string     // Suggested full name for the invited employee
	Position  string     // Suggested position for the invited employee
	UsedBy    string     // Employee ID that consumed the invite, empty while unused
	UsedAt    *time.Time // Consumption timestamp, nil while unused
}

// Absence records a day an employee reported they cannot work.
type Absence struct {
	ID         string    // Unique identifier for the absence
	EmployeeID string    // Identifier of the absent employee
	Date       time.Time // Calendar date of the absence
	Reason     string    // Free-form reason given by the employee
	Status     string    // Absence status, currently always "absent"
	CreatedAt  time.Time // Timestamp of when the absence was recorded
}

// Pending action kinds awaiting a free-text reply from the employee.
const (
	PendingAbsenceReason = "absence_reason"
	PendingShiftReport   = "shift_report"
)

// PendingAction correlates a free-text Telegram reply with the prompt
// that requested it. One row per employee, persisted so that any bot
// instance can resolve the reply.
type PendingAction struct {
	EmployeeID string    // Identifier of the employee the prompt was sent to
	Kind       string    // What the reply means: absence_reason or shift_report
	ShiftID    string    // Shift the reply applies to, empty for absence prompts
	ExpiresAt  time.Time // Moment after which the reply is no longer accepted
	CreatedAt  time.Time // Timestamp of when the prompt was issued
}
