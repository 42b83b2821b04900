package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/leave"
)

type leaveBalanceRepository struct {
	store *Store
}

func NewLeaveBalanceRepository(store *Store) leave.LeaveBalanceRepository {
	return &leaveBalanceRepository{store: store}
}

func (r *leaveBalanceRepository) Initialize(ctx context.Context, employeeID string, amounts map[leave.LeaveType]int) error {
	q := r.store.conn(ctx)
	ts := now()
	for leaveType, days := range amounts {
		_, err := q.ExecContext(ctx, `
			INSERT INTO leave_balances (employee_id, leave_type, remaining_days, updated_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT (employee_id, leave_type) DO NOTHING
		`, employeeID, leaveType, days, ts)
		if err != nil {
			return fmt.Errorf("failed to initialize leave balance for employee %s: %w", employeeID, err)
		}
	}
	return nil
}

func (r *leaveBalanceRepository) Get(ctx context.Context, employeeID string) (leave.Balance, error) {
	rows, err := r.store.conn(ctx).QueryContext(ctx, `
		SELECT leave_type, remaining_days FROM leave_balances WHERE employee_id = ?
	`, employeeID)
	if err != nil {
		return leave.Balance{}, fmt.Errorf("failed to get leave balance: %w", err)
	}
	defer rows.Close()

	balance := leave.Balance{EmployeeID: employeeID, Remaining: map[leave.LeaveType]int{}}
	for rows.Next() {
		var leaveType leave.LeaveType
		var remaining int
		if err := rows.Scan(&leaveType, &remaining); err != nil {
			return leave.Balance{}, fmt.Errorf("failed to scan leave balance: %w", err)
		}
		balance.Remaining[leaveType] = remaining
	}
	if err := rows.Err(); err != nil {
		return leave.Balance{}, fmt.Errorf("failed to iterate leave balances: %w", err)
	}
	if len(balance.Remaining) == 0 {
		return leave.Balance{}, leave.ErrBalanceNotFound
	}
	return balance, nil
}

func (r *leaveBalanceRepository) GetForUpdate(ctx context.Context, employeeID string, leaveType leave.LeaveType) (int, error) {
	var remaining int
	err := r.store.conn(ctx).QueryRowContext(ctx, `
		SELECT remaining_days FROM leave_balances WHERE employee_id = ? AND leave_type = ?
	`, employeeID, leaveType).Scan(&remaining)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, leave.ErrBalanceNotFound
		}
		return 0, fmt.Errorf("failed to read leave balance: %w", err)
	}
	return remaining, nil
}

func (r *leaveBalanceRepository) Set(ctx context.Context, employeeID string, leaveType leave.LeaveType, remaining int) error {
	res, err := r.store.conn(ctx).ExecContext(ctx, `
		UPDATE leave_balances SET remaining_days = ?, updated_at = ?
		WHERE employee_id = ? AND leave_type = ?
	`, remaining, now(), employeeID, leaveType)
	if err != nil {
		return fmt.Errorf("failed to set leave balance: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return leave.ErrBalanceNotFound
	}
	return nil
}
