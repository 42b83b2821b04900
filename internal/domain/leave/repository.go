package leave

import (
	"context"
	"time"
)

type LeaveRequestRepository interface {
	Create(ctx context.Context, req LeaveRequest) (LeaveRequest, error)
	GetByID(ctx context.Context, id string) (LeaveRequest, error)

	// GetByIDForUpdate locks the row for the rest of the surrounding transaction.
	GetByIDForUpdate(ctx context.Context, id string) (LeaveRequest, error)
	Update(ctx context.Context, req LeaveRequest) error
	List(ctx context.Context, filter LeaveRequestFilter) ([]LeaveRequest, error)

	// ListOverlapping returns requests of any status with
	// start_date <= to AND end_date >= from.
	ListOverlapping(ctx context.Context, employeeID string, from, to time.Time) ([]LeaveRequest, error)
}

// LeaveBalanceRepository stores the per-employee ledger. Mutations must run
// inside a transaction that first read the row with GetForUpdate.
type LeaveBalanceRepository interface {
	// Initialize inserts missing rows with the given amounts and leaves existing rows alone.
	Initialize(ctx context.Context, employeeID string, amounts map[LeaveType]int) error
	Get(ctx context.Context, employeeID string) (Balance, error)
	GetForUpdate(ctx context.Context, employeeID string, leaveType LeaveType) (int, error)
	Set(ctx context.Context, employeeID string, leaveType LeaveType, remaining int) error
}
