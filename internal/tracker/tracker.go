// Package tracker implements the shift/interval state machine: it is the
// single write path for shifts, work/break intervals, daily reports,
// absences and invite redemption, invoked from both the chat-bot
// handlers and the web submission endpoint.
package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shiftline/smena-bot/internal/models"
	"github.com/shiftline/smena-bot/internal/repository"
	"github.com/shiftline/smena-bot/internal/schedule"
)

// DefaultShiftLength is assumed when a plan does not carry an explicit
// planned end.
const DefaultShiftLength = 8 * time.Hour

// Store is the slice of the repository the state machine mutates.
type Store interface {
	repository.EmployeeManager
	repository.ShiftManager
	repository.AuditManager
}

// Service is the shift/interval state machine. All operations resolve
// the employee by their Telegram ID, mutate the store as a sequence of
// calls and append one audit entry per mutation.
type Service struct {
	store      Store
	log        *slog.Logger
	defaultLoc *time.Location
}

// NewService creates a new state machine service. defaultLoc is the
// company-wide timezone used when an employee has no personal override.
func NewService(log *slog.Logger, store Store, defaultLoc *time.Location) *Service {
	return &Service{store: store, log: log, defaultLoc: defaultLoc}
}

// PlanInput carries the optional fields of a submitted plan.
type PlanInput struct {
	PlannedStartAt *time.Time
	PlannedEndAt   *time.Time
	PlannedItems   []string
	TaskLinks      []string
}

// ReportInput carries the end-of-day report fields.
type ReportInput struct {
	DoneItems   []string
	Blockers    string
	TimeSpent   map[string]int
	Attachments []models.Attachment
}

// location resolves the effective timezone of the employee.
func (s *Service) location(emp *models.Employee) *time.Location {
	if emp.Timezone != "" {
		if loc, err := time.LoadLocation(emp.Timezone); err == nil {
			return loc
		}
		s.log.Warn("Invalid employee timezone, falling back to default", "employee", emp.ID, "tz", emp.Timezone)
	}
	return s.defaultLoc
}

func actor(telegramID int64) string {
	return fmt.Sprintf("tg:%d", telegramID)
}

func shiftEntity(shiftID string) string {
	return "shift:" + shiftID
}

// StartShift creates today's shift for the employee behind the Telegram
// ID and opens its first work interval. It is idempotent per calendar
// day: a second press of the button returns ErrShiftExists.
func (s *Service) StartShift(ctx context.Context, telegramID int64) (string, error) {
	emp, err := s.store.GetEmployeeByTelegramID(ctx, telegramID)
	if err != nil {
		return "", err
	}

	now := time.Now()
	dayStart, dayEnd := schedule.DayBounds(now, s.location(emp))
	exists, err := s.store.HasShiftBetween(ctx, emp.ID, dayStart, dayEnd)
	if err != nil {
		return "", err
	}
	if exists {
		return "", ErrShiftExists
	}

	return s.openShift(ctx, emp, now, now.Add(DefaultShiftLength), nil, nil, telegramID, "start_shift")
}

// SubmitPlan creates a shift from a submitted plan, opens its first work
// interval and drafts a daily report when planned items were provided.
// Like StartShift it rejects a duplicate shift on the planned calendar
// day, so both entry points enforce the same uniqueness rule.
func (s *Service) SubmitPlan(ctx context.Context, telegramID int64, plan PlanInput) (string, error) {
	emp, err := s.store.GetEmployeeByTelegramID(ctx, telegramID)
	if err != nil {
		return "", err
	}

	now := time.Now()
	plannedStart := now
	if plan.PlannedStartAt != nil {
		plannedStart = *plan.PlannedStartAt
	}
	plannedEnd := now.Add(DefaultShiftLength)
	if plan.PlannedEndAt != nil {
		plannedEnd = *plan.PlannedEndAt
	}

	// Uniqueness is per the planned calendar day, so planning
	// tomorrow's shift is not blocked by today's.
	dayStart, dayEnd := schedule.DayBounds(plannedStart, s.location(emp))
	exists, err := s.store.HasShiftBetween(ctx, emp.ID, dayStart, dayEnd)
	if err != nil {
		return "", err
	}
	if exists {
		return "", ErrShiftExists
	}

	return s.openShift(ctx, emp, plannedStart, plannedEnd, plan.PlannedItems, plan.TaskLinks, telegramID, "submit_plan")
}

// openShift is the shared tail of StartShift and SubmitPlan: insert the
// shift as active, open the first work interval, optionally draft the
// report and write the audit entry.
func (s *Service) openShift(
	ctx context.Context,
	emp *models.Employee,
	plannedStart, plannedEnd time.Time,
	plannedItems, taskLinks []string,
	telegramID int64,
	action string,
) (string, error) {
	now := time.Now()

	shiftID, err := s.store.CreateShift(ctx, emp.ID, plannedStart, plannedEnd, models.ShiftActive)
	if err != nil {
		return "", err
	}

	if err = s.store.OpenWorkInterval(ctx, shiftID, now, models.SourceBot); err != nil {
		return "", err
	}

	if len(plannedItems) > 0 {
		if err = s.store.SeedDailyReport(ctx, shiftID, plannedItems, taskLinks); err != nil {
			// The shift is already usable; a missing draft only costs
			// the planned items in the evening report.
			s.log.ErrorContext(ctx, "Failed to seed daily report", "shift", shiftID, "error", err)
		}
	}

	payload := map[string]any{"shift_id": shiftID, "planned_items": plannedItems}
	if err = s.store.AppendAudit(ctx, actor(telegramID), action, shiftEntity(shiftID), payload); err != nil {
		s.log.ErrorContext(ctx, "Failed to append audit entry", "action", action, "error", err)
	}

	return shiftID, nil
}

// SubmitReport closes the employee's active shift: the open work
// interval is ended, the shift transitions to done with its planned end
// pinned to now, and the daily report is upserted as submitted.
func (s *Service) SubmitReport(ctx context.Context, telegramID int64, report ReportInput) error {
	emp, err := s.store.GetEmployeeByTelegramID(ctx, telegramID)
	if err != nil {
		return err
	}

	shiftID, err := s.store.FindActiveShift(ctx, emp.ID)
	if err != nil {
		return err
	}

	now := time.Now()
	if err = s.store.CloseWorkInterval(ctx, shiftID, now); err != nil {
		return err
	}
	if err = s.store.FinishShift(ctx, shiftID, now); err != nil {
		return err
	}

	daily := models.DailyReport{
		DoneItems:   report.DoneItems,
		Blockers:    report.Blockers,
		TimeSpent:   report.TimeSpent,
		Attachments: report.Attachments,
	}
	if err = s.store.SubmitDailyReport(ctx, shiftID, daily, now); err != nil {
		return err
	}

	payload := map[string]any{"shift_id": shiftID, "done_items": report.DoneItems}
	if err = s.store.AppendAudit(ctx, actor(telegramID), "submit_report", shiftEntity(shiftID), payload); err != nil {
		s.log.ErrorContext(ctx, "Failed to append audit entry", "action", "submit_report", "error", err)
	}

	return nil
}

// LunchStart closes the open work interval of the active shift and
// opens a lunch break, keeping at most one open interval at a time.
func (s *Service) LunchStart(ctx context.Context, telegramID int64) error {
	emp, err := s.store.GetEmployeeByTelegramID(ctx, telegramID)
	if err != nil {
		return err
	}

	shiftID, err := s.store.FindActiveShift(ctx, emp.ID)
	if err != nil {
		return err
	}

	now := time.Now()
	if err = s.store.CloseWorkInterval(ctx, shiftID, now); err != nil {
		return err
	}
	if err = s.store.OpenBreakInterval(ctx, shiftID, now, models.BreakLunch, models.SourceBot); err != nil {
		return err
	}

	payload := map[string]any{"shift_id": shiftID}
	if err = s.store.AppendAudit(ctx, actor(telegramID), "start_lunch", shiftEntity(shiftID), payload); err != nil {
		s.log.ErrorContext(ctx, "Failed to append audit entry", "action", "start_lunch", "error", err)
	}

	return nil
}

// LunchEnd closes the open lunch break of the active shift and opens a
// new work interval.
func (s *Service) LunchEnd(ctx context.Context, telegramID int64) error {
	emp, err := s.store.GetEmployeeByTelegramID(ctx, telegramID)
	if err != nil {
		return err
	}

	shiftID, err := s.store.FindActiveShift(ctx, emp.ID)
	if err != nil {
		return err
	}

	now := time.Now()
	if err = s.store.CloseBreakInterval(ctx, shiftID, now, models.BreakLunch); err != nil {
		return err
	}
	if err = s.store.OpenWorkInterval(ctx, shiftID, now, models.SourceBot); err != nil {
		return err
	}

	payload := map[string]any{"shift_id": shiftID}
	if err = s.store.AppendAudit(ctx, actor(telegramID), "end_lunch", shiftEntity(shiftID), payload); err != nil {
		s.log.ErrorContext(ctx, "Failed to append audit entry", "action", "end_lunch", "error", err)
	}

	return nil
}

// RecordAbsence stores the absence reason the employee replied with for
// today's date in their local calendar.
func (s *Service) RecordAbsence(ctx context.Context, telegramID int64, reason string) error {
	if reason == "" {
		return fmt.Errorf("%w: empty absence reason", ErrInvalidInput)
	}

	emp, err := s.store.GetEmployeeByTelegramID(ctx, telegramID)
	if err != nil {
		return err
	}

	dayStart, _ := schedule.DayBounds(time.Now(), s.location(emp))
	if err = s.store.CreateAbsence(ctx, emp.ID, dayStart, reason); err != nil {
		return err
	}

	payload := map[string]any{"reason": reason}
	if err = s.store.AppendAudit(ctx, actor(telegramID), "absent_today", "employee:"+emp.ID, payload); err != nil {
		s.log.ErrorContext(ctx, "Failed to append audit entry", "action", "absent_today", "error", err)
	}

	return nil
}

// RedeemInvite consumes an invite code for the Telegram account,
// creating or reactivating the employee.
func (s *Service) RedeemInvite(ctx context.Context, telegramID int64, code, fullName string) (*models.Employee, error) {
	if code == "" {
		return nil, fmt.Errorf("%w: empty invite code", ErrInvalidInput)
	}

	emp, err := s.store.RedeemInvite(ctx, code, telegramID, fullName)
	if err != nil {
		return nil, err
	}

	payload := map[string]any{"code": code}
	if err = s.store.AppendAudit(ctx, actor(telegramID), "redeem_invite", "employee:"+emp.ID, payload); err != nil {
		s.log.ErrorContext(ctx, "Failed to append audit entry", "action", "redeem_invite", "error", err)
	}

	return emp, nil
}
