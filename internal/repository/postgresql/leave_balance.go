package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type leaveBalanceRepositoryImpl struct {
	db *database.DB
}

func NewLeaveBalanceRepository(db *database.DB) leave.LeaveBalanceRepository {
	return &leaveBalanceRepositoryImpl{db: db}
}

func (r *leaveBalanceRepositoryImpl) Initialize(ctx context.Context, employeeID string, amounts map[leave.LeaveType]int) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_balances (employee_id, leave_type, remaining_days)
		VALUES ($1, $2, $3)
		ON CONFLICT (employee_id, leave_type) DO NOTHING
	`

	batch := &pgx.Batch{}
	for leaveType, days := range amounts {
		batch.Queue(query, employeeID, leaveType, days)
	}

	results := q.SendBatch(ctx, batch)
	defer results.Close()
	for range amounts {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to initialize leave balance for employee %s: %w", employeeID, err)
		}
	}
	return nil
}

func (r *leaveBalanceRepositoryImpl) Get(ctx context.Context, employeeID string) (leave.Balance, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT leave_type, remaining_days
		FROM leave_balances
		WHERE employee_id = $1
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

func (r *leaveBalanceRepositoryImpl) GetForUpdate(ctx context.Context, employeeID string, leaveType leave.LeaveType) (int, error) {
	q := GetQuerier(ctx, r.db)

	var remaining int
	err := q.QueryRow(ctx, `
		SELECT remaining_days
		FROM leave_balances
		WHERE employee_id = $1 AND leave_type = $2
		FOR UPDATE
	`, employeeID, leaveType).Scan(&remaining)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, leave.ErrBalanceNotFound
		}
		return 0, fmt.Errorf("failed to lock leave balance: %w", err)
	}
	return remaining, nil
}

func (r *leaveBalanceRepositoryImpl) Set(ctx context.Context, employeeID string, leaveType leave.LeaveType, remaining int) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE leave_balances
		SET remaining_days = $1, updated_at = NOW()
		WHERE employee_id = $2 AND leave_type = $3
	`, remaining, employeeID, leaveType)
	if err != nil {
		return fmt.Errorf("failed to set leave balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return leave.ErrBalanceNotFound
	}
	return nil
}
