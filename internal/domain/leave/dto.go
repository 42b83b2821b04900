package leave

import (
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
)

type CreateLeaveRequestRequest struct {
	EmployeeID string  `json:"employee_id"`
	LeaveType  string  `json:"leave_type"`
	StartDate  string  `json:"start_date"`
	EndDate    string  `json:"end_date"`
	Reason     *string `json:"reason,omitempty"`
}

func (r *CreateLeaveRequestRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs.Add("employee_id", "is required")
	}
	if !LeaveType(r.LeaveType).IsValid() {
		errs.Add("leave_type", "is not a known leave type")
	}
	validatePeriod(&errs, r.StartDate, r.EndDate)

	return errs.Err()
}

type UpdateStatusRequest struct {
	ID      string `json:"-"`
	ActorID string `json:"-"`
	Status  string `json:"status"`
}

func (r *UpdateStatusRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs.Add("id", "is required")
	}
	if !LeaveStatus(r.Status).IsValid() {
		errs.Add("status", "must be one of pending, approved, rejected, cancelled")
	}

	return errs.Err()
}

type UpdatePeriodRequest struct {
	ID        string `json:"-"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`

	// Set for callers acting on their own requests only.
	OwnerID     string `json:"-"`
	PendingOnly bool   `json:"-"`
}

func (r *UpdatePeriodRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs.Add("id", "is required")
	}
	validatePeriod(&errs, r.StartDate, r.EndDate)

	return errs.Err()
}

func validatePeriod(errs *validator.ValidationErrors, startDate, endDate string) {
	start, okStart := validator.IsValidDate(startDate)
	if !okStart {
		errs.Add("start_date", "must be in YYYY-MM-DD format")
	}
	end, okEnd := validator.IsValidDate(endDate)
	if !okEnd {
		errs.Add("end_date", "must be in YYYY-MM-DD format")
	}
	if okStart && okEnd && end.Before(start) {
		errs.Add("end_date", "must not be before start_date")
	}
}

// ParsePeriod parses dates already checked by Validate.
func ParsePeriod(startDate, endDate string) (time.Time, time.Time) {
	start, _ := validator.IsValidDate(startDate)
	end, _ := validator.IsValidDate(endDate)
	return start, end
}

type LeaveRequestFilter struct {
	EmployeeID *string
	Status     *LeaveStatus
}

type LeaveRequestResponse struct {
	ID         string  `json:"id"`
	EmployeeID string  `json:"employee_id"`
	LeaveType  string  `json:"leave_type"`
	StartDate  string  `json:"start_date"`
	EndDate    string  `json:"end_date"`
	TotalDays  int     `json:"total_days"`
	Reason     *string `json:"reason,omitempty"`
	Status     string  `json:"status"`
	DecidedBy  *string `json:"decided_by,omitempty"`
	DecidedAt  *string `json:"decided_at,omitempty"`
}

type BalanceResponse struct {
	EmployeeID string         `json:"employee_id"`
	Balances   map[string]int `json:"balances"`
}
