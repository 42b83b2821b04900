package leave

import "context"

type LeaveService interface {
	SubmitRequest(ctx context.Context, req CreateLeaveRequestRequest) (LeaveRequestResponse, error)
	UpdateStatus(ctx context.Context, req UpdateStatusRequest) (LeaveRequestResponse, error)
	UpdatePeriod(ctx context.Context, req UpdatePeriodRequest) (LeaveRequestResponse, error)
	GetRequest(ctx context.Context, id string) (LeaveRequestResponse, error)
	ListRequests(ctx context.Context, filter LeaveRequestFilter) ([]LeaveRequestResponse, error)
	GetBalance(ctx context.Context, employeeID string) (BalanceResponse, error)
}

// Ledger applies balance effects of leave status and period changes.
// Callers run it inside a transaction; it locks the balance row it touches.
type Ledger interface {
	OnStatusChange(ctx context.Context, req LeaveRequest, oldStatus, newStatus LeaveStatus) error
	OnPeriodChange(ctx context.Context, req LeaveRequest, oldTotalDays int) error
}
