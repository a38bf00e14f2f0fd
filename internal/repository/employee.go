package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shiftline/smena-bot/internal/models"
)

var (
	// ErrEmployeeNotFound is returned when no employee is linked to the given Telegram ID.
	ErrEmployeeNotFound = errors.New("employee with this telegram ID not found")
	// ErrInviteNotFound is returned when the invite code is unknown or already consumed.
	ErrInviteNotFound = errors.New("invite code not found or already used")
)

// GetEmployeeByTelegramID returns the employee linked to the given
// Telegram ID, or ErrEmployeeNotFound when no row matches.
func (r *Repository) GetEmployeeByTelegramID(ctx context.Context, telegramID int64) (*models.Employee, error) {
	var emp models.Employee
	err := r.db.QueryRow(ctx, GetEmployeeByTelegramIDSQL, telegramID).Scan(
		&emp.ID,
		&emp.CompanyID,
		&emp.FullName,
		&emp.Position,
		&emp.TelegramID,
		&emp.Status,
		&emp.Timezone,
		&emp.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("failed to query employee by telegram ID: %w", err)
	}

	return &emp, nil
}

// RedeemInvite consumes an unused invite code and links the Telegram
// account to the invited company. An employee already known by their
// Telegram ID is moved to the invite's company and reactivated; otherwise
// a new employee row is created. The whole redemption runs in a single
// transaction so a concurrent attempt with the same code loses on commit.
func (r *Repository) RedeemInvite(
	ctx context.Context,
	code string,
	telegramID int64,
	fullName string,
) (*models.Employee, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // omitted because checking for errors will not affect the function

	var inviteID, companyID string
	err = tx.QueryRow(
		ctx,
		"SELECT id, company_id FROM employee_invite WHERE code = $1 AND used_at IS NULL",
		code,
	).Scan(&inviteID, &companyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInviteNotFound
		}
		return nil, fmt.Errorf("failed to find invite by code: %w", err)
	}

	var employeeID string
	err = tx.QueryRow(ctx, "SELECT id FROM employee WHERE telegram_user_id = $1", telegramID).Scan(&employeeID)
	switch {
	case err == nil:
		_, err = tx.Exec(
			ctx,
			"UPDATE employee SET company_id = $1, status = 'active' WHERE id = $2",
			companyID,
			employeeID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to reactivate employee: %w", err)
		}
	case errors.Is(err, pgx.ErrNoRows):
		err = tx.QueryRow(
			ctx,
			"INSERT INTO employee (company_id, telegram_user_id, full_name, status) VALUES ($1, $2, $3, 'active') RETURNING id",
			companyID,
			telegramID,
			fullName,
		).Scan(&employeeID)
		if err != nil {
			return nil, fmt.Errorf("failed to create employee: %w", err)
		}
	default:
		return nil, fmt.Errorf("failed to find employee by telegram ID: %w", err)
	}

	_, err = tx.Exec(
		ctx,
		"UPDATE employee_invite SET used_by_employee = $1, used_at = now() WHERE id = $2",
		employeeID,
		inviteID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to mark invite as used: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit invite redemption: %w", err)
	}

	return &models.Employee{
		ID:         employeeID,
		CompanyID:  companyID,
		FullName:   fullName,
		TelegramID: telegramID,
		Status:     models.EmployeeActive,
	}, nil
}

// CreateAbsence records an absence reported by the employee for the
// given calendar date.
func (r *Repository) CreateAbsence(ctx context.Context, employeeID string, date time.Time, reason string) error {
	_, err := r.db.Exec(ctx, CreateAbsenceSQL, employeeID, date, reason)
	if err != nil {
		return fmt.Errorf("failed to create absence: %w", err)
	}
	return nil
}

// SetPendingAction stores the pending reply prompt of an employee,
// replacing any previous one.
func (r *Repository) SetPendingAction(ctx context.Context, action models.PendingAction) error {
	var shiftID any
	if action.ShiftID != "" {
		shiftID = action.ShiftID
	}

	_, err := r.db.Exec(ctx, SetPendingActionSQL, action.EmployeeID, action.Kind, shiftID, action.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to set pending action: %w", err)
	}
	return nil
}

// TakePendingAction consumes and returns the unexpired pending prompt of
// an employee. It returns (nil, nil) when there is nothing to consume,
// so a stray text message is simply ignored by the caller.
func (r *Repository) TakePendingAction(
	ctx context.Context,
	employeeID string,
	now time.Time,
) (*models.PendingAction, error) {
	action := models.PendingAction{EmployeeID: employeeID}
	err := r.db.QueryRow(ctx, TakePendingActionSQL, employeeID, now).Scan(
		&action.Kind,
		&action.ShiftID,
		&action.ExpiresAt,
		&action.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to take pending action: %w", err)
	}

	return &action, nil
}
