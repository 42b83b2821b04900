package leave

import (
	"context"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/leave"
)

type balanceLedger struct {
	balanceRepo leave.LeaveBalanceRepository
}

// NewLedger keeps leave balances in step with request status and period
// changes. Callers run it inside a transaction.
func NewLedger(balanceRepo leave.LeaveBalanceRepository) leave.Ledger {
	return &balanceLedger{balanceRepo: balanceRepo}
}

// OnStatusChange deducts on entry into approved and restores on
// approved to rejected/cancelled. Restoration is not capped.
func (l *balanceLedger) OnStatusChange(ctx context.Context, req leave.LeaveRequest, oldStatus, newStatus leave.LeaveStatus) error {
	if !req.LeaveType.BalanceTracked() || oldStatus == newStatus {
		return nil
	}

	switch {
	case newStatus == leave.LeaveStatusApproved:
		return l.adjust(ctx, req, 0, req.TotalDays)
	case oldStatus == leave.LeaveStatusApproved &&
		(newStatus == leave.LeaveStatusRejected || newStatus == leave.LeaveStatusCancelled):
		return l.adjust(ctx, req, req.TotalDays, 0)
	}
	return nil
}

// OnPeriodChange applies the difference between the old and new day count of an
// approved request as one adjustment.
func (l *balanceLedger) OnPeriodChange(ctx context.Context, req leave.LeaveRequest, oldTotalDays int) error {
	if req.Status != leave.LeaveStatusApproved || !req.LeaveType.BalanceTracked() {
		return nil
	}
	if req.TotalDays == oldTotalDays {
		return nil
	}
	return l.adjust(ctx, req, oldTotalDays, req.TotalDays)
}

// adjust locks the balance row, returns restore days and takes deduct days.
// The balance is left untouched when the result would be negative.
func (l *balanceLedger) adjust(ctx context.Context, req leave.LeaveRequest, restore, deduct int) error {
	remaining, err := l.balanceRepo.GetForUpdate(ctx, req.EmployeeID, req.LeaveType)
	if err != nil {
		return err
	}

	available := remaining + restore
	if available < deduct {
		return &leave.InsufficientBalanceError{
			EmployeeID: req.EmployeeID,
			LeaveType:  req.LeaveType,
			Available:  available,
			Requested:  deduct,
		}
	}

	return l.balanceRepo.Set(ctx, req.EmployeeID, req.LeaveType, available-deduct)
}
