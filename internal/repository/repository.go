package repository

import (
	"context"
	"time"

	"github.com/shiftline/smena-bot/internal/models"
)

// Repository provides access to all durable tables of the shift engine.
type Repository struct {
	db Database
}

// NewRepository creates a new instance of Repository with the provided Database.
// It returns a pointer to the newly created Repository.
func NewRepository(db Database) *Repository {
	return &Repository{db: db}
}

// EmployeeManager defines the repository operations around employees,
// invites, absences and pending reply prompts. It is consumed by the
// shift state machine and the bot handlers.
type EmployeeManager interface {
	GetEmployeeByTelegramID(ctx context.Context, telegramID int64) (*models.Employee, error)
	RedeemInvite(ctx context.Context, code string, telegramID int64, fullName string) (*models.Employee, error)
	CreateAbsence(ctx context.Context, employeeID string, date time.Time, reason string) error
	SetPendingAction(ctx context.Context, action models.PendingAction) error
	TakePendingAction(ctx context.Context, employeeID string, now time.Time) (*models.PendingAction, error)
}

// ShiftManager defines the repository operations around shifts,
// intervals and daily reports.
type ShiftManager interface {
	CreateShift(ctx context.Context, employeeID string, start, end time.Time, status string) (string, error)
	HasShiftBetween(ctx context.Context, employeeID string, from, to time.Time) (bool, error)
	FindActiveShift(ctx context.Context, employeeID string) (string, error)
	OpenWorkInterval(ctx context.Context, shiftID string, start time.Time, source string) error
	CloseWorkInterval(ctx context.Context, shiftID string, end time.Time) error
	OpenBreakInterval(ctx context.Context, shiftID string, start time.Time, breakType, source string) error
	CloseBreakInterval(ctx context.Context, shiftID string, end time.Time, breakType string) error
	FinishShift(ctx context.Context, shiftID string, end time.Time) error
	SeedDailyReport(ctx context.Context, shiftID string, plannedItems, taskLinks []string) error
	SubmitDailyReport(ctx context.Context, shiftID string, report models.DailyReport, submittedAt time.Time) error
	ListShiftSummaries(ctx context.Context, employeeID string, from, to time.Time) ([]models.ShiftSummary, error)
}

// ScheduleManager defines the repository operations the reminder
// generator needs to walk schedule assignments.
type ScheduleManager interface {
	ListActiveAssignments(ctx context.Context, from, to time.Time) ([]models.Assignment, error)
}

// ReminderManager defines the repository operations of the reminder
// generator and dispatcher.
type ReminderManager interface {
	CreateReminder(ctx context.Context, employeeID, reminderType string, plannedAt time.Time) (bool, error)
	ListDueReminders(ctx context.Context, from, to time.Time) ([]models.DueReminder, error)
	MarkRemindersSent(ctx context.Context, ids []string, sentAt time.Time) error
}

// ExceptionManager defines the repository operations of the exception
// detector.
type ExceptionManager interface {
	ListShiftsMissingReport(ctx context.Context, endedBefore time.Time) ([]models.OverdueShift, error)
	CreateNoReportException(ctx context.Context, employeeID string, date time.Time, shiftID string) (bool, error)
}

// AuditManager appends entries to the append-only audit log.
type AuditManager interface {
	AppendAudit(ctx context.Context, actor, action, entity string, payload map[string]any) error
}
