package tracker_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shiftline/smena-bot/internal/models"
	"github.com/shiftline/smena-bot/internal/repository"
	"github.com/shiftline/smena-bot/internal/tracker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore records every mutation in order so that tests can assert
// the exact call sequence of a state machine operation.
type fakeStore struct {
	employee     *models.Employee
	employeeErr  error
	hasShift     bool
	hasShiftErr  error
	activeShift  string
	activeErr    error
	createErr    error
	redeemedEmp  *models.Employee
	redeemErr    error
	auditErr     error
	calls        []string
	auditActions []string
	auditActors  []string
	lastReport   models.DailyReport
	lastAbsence  string

	shiftCheckFrom time.Time
	shiftCheckUpto time.Time
}

func (f *fakeStore) GetEmployeeByTelegramID(_ context.Context, _ int64) (*models.Employee, error) {
	f.calls = append(f.calls, "GetEmployeeByTelegramID")
	return f.employee, f.employeeErr
}

func (f *fakeStore) RedeemInvite(_ context.Context, _ string, _ int64, _ string) (*models.Employee, error) {
	f.calls = append(f.calls, "RedeemInvite")
	return f.redeemedEmp, f.redeemErr
}

func (f *fakeStore) CreateAbsence(_ context.Context, _ string, _ time.Time, reason string) error {
	f.calls = append(f.calls, "CreateAbsence")
	f.lastAbsence = reason
	return nil
}

func (f *fakeStore) SetPendingAction(_ context.Context, _ models.PendingAction) error {
	f.calls = append(f.calls, "SetPendingAction")
	return nil
}

func (f *fakeStore) TakePendingAction(_ context.Context, _ string, _ time.Time) (*models.PendingAction, error) {
	f.calls = append(f.calls, "TakePendingAction")
	return nil, nil
}

func (f *fakeStore) CreateShift(_ context.Context, _ string, _, _ time.Time, _ string) (string, error) {
	f.calls = append(f.calls, "CreateShift")
	return "shift-1", f.createErr
}

func (f *fakeStore) HasShiftBetween(_ context.Context, _ string, from, upto time.Time) (bool, error) {
	f.calls = append(f.calls, "HasShiftBetween")
	f.shiftCheckFrom, f.shiftCheckUpto = from, upto
	return f.hasShift, f.hasShiftErr
}

func (f *fakeStore) FindActiveShift(_ context.Context, _ string) (string, error) {
	f.calls = append(f.calls, "FindActiveShift")
	return f.activeShift, f.activeErr
}

func (f *fakeStore) OpenWorkInterval(_ context.Context, _ string, _ time.Time, _ string) error {
	f.calls = append(f.calls, "OpenWorkInterval")
	return nil
}

func (f *fakeStore) CloseWorkInterval(_ context.Context, _ string, _ time.Time) error {
	f.calls = append(f.calls, "CloseWorkInterval")
	return nil
}

func (f *fakeStore) OpenBreakInterval(_ context.Context, _ string, _ time.Time, _, _ string) error {
	f.calls = append(f.calls, "OpenBreakInterval")
	return nil
}

func (f *fakeStore) CloseBreakInterval(_ context.Context, _ string, _ time.Time, _ string) error {
	f.calls = append(f.calls, "CloseBreakInterval")
	return nil
}

func (f *fakeStore) FinishShift(_ context.Context, _ string, _ time.Time) error {
	f.calls = append(f.calls, "FinishShift")
	return nil
}

func (f *fakeStore) SeedDailyReport(_ context.Context, _ string, _, _ []string) error {
	f.calls = append(f.calls, "SeedDailyReport")
	return nil
}

func (f *fakeStore) SubmitDailyReport(_ context.Context, _ string, report models.DailyReport, _ time.Time) error {
	f.calls = append(f.calls, "SubmitDailyReport")
	f.lastReport = report
	return nil
}

func (f *fakeStore) ListShiftSummaries(_ context.Context, _ string, _, _ time.Time) ([]models.ShiftSummary, error) {
	f.calls = append(f.calls, "ListShiftSummaries")
	return nil, nil
}

func (f *fakeStore) AppendAudit(_ context.Context, actor, action, _ string, _ map[string]any) error {
	f.calls = append(f.calls, "AppendAudit")
	f.auditActors = append(f.auditActors, actor)
	f.auditActions = append(f.auditActions, action)
	return f.auditErr
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func activeEmployee() *models.Employee {
	return &models.Employee{
		ID:         "emp-1",
		CompanyID:  "comp-1",
		FullName:   "Иван Петров",
		TelegramID: 12345,
		Status:     models.EmployeeActive,
	}
}

func TestStartShift(t *testing.T) {
	t.Parallel()
	ctx := t.Context()

	t.Run("success - opens shift with first work interval", func(t *testing.T) {
		t.Parallel()
		store := &fakeStore{employee: activeEmployee()}
		svc := tracker.NewService(testLogger(), store, time.UTC)

		shiftID, err := svc.StartShift(ctx, 12345)

		require.NoError(t, err)
		assert.Equal(t, "shift-1", shiftID)
		assert.Equal(t, []string{
			"GetEmployeeByTelegramID", "HasShiftBetween",
			"CreateShift", "OpenWorkInterval", "AppendAudit",
		}, store.calls)
		assert.Equal(t, []string{"start_shift"}, store.auditActions)
		assert.Equal(t, []string{"tg:12345"}, store.auditActors)
	})

	t.Run("error - duplicate same-day shift", func(t *testing.T) {
		t.Parallel()
		store := &fakeStore{employee: activeEmployee(), hasShift: true}
		svc := tracker.NewService(testLogger(), store, time.UTC)

		_, err := svc.StartShift(ctx, 12345)

		require.ErrorIs(t, err, tracker.ErrShiftExists)
		assert.NotContains(t, store.calls, "CreateShift")
	})

	t.Run("error - unknown employee makes no writes", func(t *testing.T) {
		t.Parallel()
		store := &fakeStore{employeeErr: repository.ErrEmployeeNotFound}
		svc := tracker.NewService(testLogger(), store, time.UTC)

		_, err := svc.StartShift(ctx, 12345)

		require.ErrorIs(t, err, repository.ErrEmployeeNotFound)
		assert.Equal(t, []string{"GetEmployeeByTelegramID"}, store.calls)
	})

	t.Run("success - audit failure does not fail the operation", func(t *testing.T) {
		t.Parallel()
		store := &fakeStore{employee: activeEmployee(), auditErr: assert.AnError}
		svc := tracker.NewService(testLogger(), store, time.UTC)

		shiftID, err := svc.StartShift(ctx, 12345)

		require.NoError(t, err)
		assert.Equal(t, "shift-1", shiftID)
	})
}

func TestSubmitPlan(t *testing.T) {
	t.Parallel()
	ctx := t.Context()

	t.Run("success - plan with items drafts the report", func(t *testing.T) {
		t.Parallel()
		store := &fakeStore{employee: activeEmployee()}
		svc := tracker.NewService(testLogger(), store, time.UTC)

		start := time.Date(2025, 6, 2, 7, 0, 0, 0, time.UTC)
		end := start.Add(9 * time.Hour)
		shiftID, err := svc.SubmitPlan(ctx, 12345, tracker.PlanInput{
			PlannedStartAt: &start,
			PlannedEndAt:   &end,
			PlannedItems:   []string{"доставить заказы"},
			TaskLinks:      []string{"https://tracker.local/T-1"},
		})

		require.NoError(t, err)
		assert.Equal(t, "shift-1", shiftID)
		assert.Equal(t, []string{
			"GetEmployeeByTelegramID", "HasShiftBetween",
			"CreateShift", "OpenWorkInterval", "SeedDailyReport", "AppendAudit",
		}, store.calls)
		assert.Equal(t, []string{"submit_plan"}, store.auditActions)
	})

	t.Run("success - plan without items skips the draft", func(t *testing.T) {
		t.Parallel()
		store := &fakeStore{employee: activeEmployee()}
		svc := tracker.NewService(testLogger(), store, time.UTC)

		_, err := svc.SubmitPlan(ctx, 12345, tracker.PlanInput{})

		require.NoError(t, err)
		assert.NotContains(t, store.calls, "SeedDailyReport")
	})

	t.Run("success - duplicate check runs against the planned day", func(t *testing.T) {
		t.Parallel()
		store := &fakeStore{employee: activeEmployee()}
		svc := tracker.NewService(testLogger(), store, time.UTC)

		start := time.Now().UTC().AddDate(0, 0, 1)
		end := start.Add(9 * time.Hour)
		_, err := svc.SubmitPlan(ctx, 12345, tracker.PlanInput{
			PlannedStartAt: &start,
			PlannedEndAt:   &end,
		})

		require.NoError(t, err)
		assert.False(t, store.shiftCheckFrom.After(start))
		assert.True(t, store.shiftCheckUpto.After(start))
		assert.True(t, store.shiftCheckFrom.After(time.Now().UTC()),
			"a shift planned for tomorrow must not be checked against today")
	})

	t.Run("error - duplicate same-day shift", func(t *testing.T) {
		t.Parallel()
		store := &fakeStore{employee: activeEmployee(), hasShift: true}
		svc := tracker.NewService(testLogger(), store, time.UTC)

		_, err := svc.SubmitPlan(ctx, 12345, tracker.PlanInput{})

		require.ErrorIs(t, err, tracker.ErrShiftExists)
		assert.NotContains(t, store.calls, "CreateShift")
	})
}

func TestSubmitReport(t *testing.T) {
	t.Parallel()
	ctx := t.Context()

	t.Run("success - closes interval, finishes shift, submits report", func(t *testing.T) {
		t.Parallel()
		store := &fakeStore{employee: activeEmployee(), activeShift: "shift-1"}
		svc := tracker.NewService(testLogger(), store, time.UTC)

		err := svc.SubmitReport(ctx, 12345, tracker.ReportInput{
			DoneItems: []string{"все доставлено"},
			Blockers:  "пробки",
			TimeSpent: map[string]int{"T-1": 120},
		})

		require.NoError(t, err)
		assert.Equal(t, []string{
			"GetEmployeeByTelegramID", "FindActiveShift",
			"CloseWorkInterval", "FinishShift", "SubmitDailyReport", "AppendAudit",
		}, store.calls)
		assert.Equal(t, []string{"submit_report"}, store.auditActions)
		assert.Equal(t, []string{"все доставлено"}, store.lastReport.DoneItems)
		assert.Equal(t, "пробки", store.lastReport.Blockers)
	})

	t.Run("error - no active shift", func(t *testing.T) {
		t.Parallel()
		store := &fakeStore{employee: activeEmployee(), activeErr: repository.ErrActiveShiftNotFound}
		svc := tracker.NewService(testLogger(), store, time.UTC)

		err := svc.SubmitReport(ctx, 12345, tracker.ReportInput{})

		require.ErrorIs(t, err, repository.ErrActiveShiftNotFound)
		assert.NotContains(t, store.calls, "FinishShift")
	})
}

func TestLunchFlow(t *testing.T) {
	t.Parallel()
	ctx := t.Context()

	t.Run("lunch start closes work before opening break", func(t *testing.T) {
		t.Parallel()
		store := &fakeStore{employee: activeEmployee(), activeShift: "shift-1"}
		svc := tracker.NewService(testLogger(), store, time.UTC)

		require.NoError(t, svc.LunchStart(ctx, 12345))

		assert.Equal(t, []string{
			"GetEmployeeByTelegramID", "FindActiveShift",
			"CloseWorkInterval", "OpenBreakInterval", "AppendAudit",
		}, store.calls)
		assert.Equal(t, []string{"start_lunch"}, store.auditActions)
	})

	t.Run("lunch end closes break before opening work", func(t *testing.T) {
		t.Parallel()
		store := &fakeStore{employee: activeEmployee(), activeShift: "shift-1"}
		svc := tracker.NewService(testLogger(), store, time.UTC)

		require.NoError(t, svc.LunchEnd(ctx, 12345))

		assert.Equal(t, []string{
			"GetEmployeeByTelegramID", "FindActiveShift",
			"CloseBreakInterval", "OpenWorkInterval", "AppendAudit",
		}, store.calls)
		assert.Equal(t, []string{"end_lunch"}, store.auditActions)
	})

	t.Run("error - no active shift aborts the toggle", func(t *testing.T) {
		t.Parallel()
		store := &fakeStore{employee: activeEmployee(), activeErr: repository.ErrActiveShiftNotFound}
		svc := tracker.NewService(testLogger(), store, time.UTC)

		err := svc.LunchStart(ctx, 12345)

		require.ErrorIs(t, err, repository.ErrActiveShiftNotFound)
		assert.NotContains(t, store.calls, "OpenBreakInterval")
	})
}

func TestRecordAbsence(t *testing.T) {
	t.Parallel()
	ctx := t.Context()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		store := &fakeStore{employee: activeEmployee()}
		svc := tracker.NewService(testLogger(), store, time.UTC)

		require.NoError(t, svc.RecordAbsence(ctx, 12345, "болею"))

		assert.Equal(t, "болею", store.lastAbsence)
		assert.Equal(t, []string{"absent_today"}, store.auditActions)
	})

	t.Run("error - empty reason", func(t *testing.T) {
		t.Parallel()
		store := &fakeStore{employee: activeEmployee()}
		svc := tracker.NewService(testLogger(), store, time.UTC)

		err := svc.RecordAbsence(ctx, 12345, "")

		require.ErrorIs(t, err, tracker.ErrInvalidInput)
		assert.Empty(t, store.calls)
	})
}

func TestRedeemInvite(t *testing.T) {
	t.Parallel()
	ctx := t.Context()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		store := &fakeStore{redeemedEmp: activeEmployee()}
		svc := tracker.NewService(testLogger(), store, time.UTC)

		emp, err := svc.RedeemInvite(ctx, 12345, "JOIN-123", "Иван Петров")

		require.NoError(t, err)
		assert.Equal(t, "emp-1", emp.ID)
		assert.Equal(t, []string{"redeem_invite"}, store.auditActions)
	})

	t.Run("error - empty code", func(t *testing.T) {
		t.Parallel()
		store := &fakeStore{}
		svc := tracker.NewService(testLogger(), store, time.UTC)

		_, err := svc.RedeemInvite(ctx, 12345, "", "Иван Петров")

		require.ErrorIs(t, err, tracker.ErrInvalidInput)
		assert.Empty(t, store.calls)
	})

	t.Run("error - unknown code", func(t *testing.T) {
		t.Parallel()
		store := &fakeStore{redeemErr: repository.ErrInviteNotFound}
		svc := tracker.NewService(testLogger(), store, time.UTC)

		_, err := svc.RedeemInvite(ctx, 12345, "JOIN-404", "Иван Петров")

		require.ErrorIs(t, err, repository.ErrInviteNotFound)
		assert.NotContains(t, store.calls, "AppendAudit")
	})
}
