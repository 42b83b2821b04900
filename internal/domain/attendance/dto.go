package attendance

import (
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type ClockRequest struct {
	EmployeeID string  `json:"employee_id"`
	Timestamp  *string `json:"timestamp,omitempty"` // RFC3339, defaults to now
}

func (r *ClockRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs.Add("employee_id", "is required")
	}
	if r.Timestamp != nil {
		if _, ok := validator.IsValidDateTime(*r.Timestamp); !ok {
			errs.Add("timestamp", "must be an RFC3339 timestamp")
		}
	}

	return errs.Err()
}

// At returns the requested timestamp or now.
func (r *ClockRequest) At(now time.Time) time.Time {
	if r.Timestamp == nil {
		return now
	}
	t, _ := validator.IsValidDateTime(*r.Timestamp)
	return t
}

type AttendanceFilter struct {
	EmployeeID string
	From       string
	To         string
}

func (f *AttendanceFilter) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(f.EmployeeID) {
		errs.Add("employee_id", "is required")
	}
	from, okFrom := validator.IsValidDate(f.From)
	if !okFrom {
		errs.Add("from", "must be in YYYY-MM-DD format")
	}
	to, okTo := validator.IsValidDate(f.To)
	if !okTo {
		errs.Add("to", "must be in YYYY-MM-DD format")
	}
	if okFrom && okTo && to.Before(from) {
		errs.Add("to", "must not be before from")
	}

	return errs.Err()
}

type SessionResponse struct {
	ClockIn  string  `json:"clock_in"`
	ClockOut *string `json:"clock_out,omitempty"`
}

type AttendanceResponse struct {
	ID         string            `json:"id"`
	EmployeeID string            `json:"employee_id"`
	Date       string            `json:"date"`
	Sessions   []SessionResponse `json:"sessions"`
	TotalHours decimal.Decimal   `json:"total_hours"`
	Status     string            `json:"status"`
}
