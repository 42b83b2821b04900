package leave

import (
	"fmt"
	"strconv"

	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/apperror"
)

var (
	ErrLeaveRequestNotFound = apperror.New(apperror.KindNotFound, "LEAVE_REQUEST_NOT_FOUND", "leave request not found")
	ErrBalanceNotFound      = apperror.New(apperror.KindNotFound, "LEAVE_BALANCE_NOT_FOUND", "leave balance not found")
	ErrInsufficientBalance  = apperror.New(apperror.KindInsufficientBalance, "INSUFFICIENT_BALANCE", "insufficient leave balance")
	ErrInvalidTransition    = apperror.New(apperror.KindInvalidStateTransition, "INVALID_LEAVE_TRANSITION", "leave request cannot move to the requested status")
	ErrLeaveRequestClosed   = apperror.New(apperror.KindInvalidStateTransition, "LEAVE_REQUEST_CLOSED", "rejected or cancelled leave requests cannot be edited")
	ErrApprovedPeriodChange = apperror.New(apperror.KindForbidden, "APPROVED_PERIOD_CHANGE", "only a manager can change the period of an approved leave request")
)

// InsufficientBalanceError carries the numbers behind a rejected deduction.
type InsufficientBalanceError struct {
	EmployeeID string
	LeaveType  LeaveType
	Available  int
	Requested  int
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient %s leave balance for employee %s: available %d, requested %d",
		e.LeaveType, e.EmployeeID, e.Available, e.Requested)
}

func (e *InsufficientBalanceError) Unwrap() error {
	return ErrInsufficientBalance
}

// Details exposes the numbers to API clients.
func (e *InsufficientBalanceError) Details() map[string]string {
	return map[string]string{
		"leave_type": string(e.LeaveType),
		"available":  strconv.Itoa(e.Available),
		"requested":  strconv.Itoa(e.Requested),
	}
}
