package leave

import "time"

type LeaveType string

const (
	LeaveTypeAnnual    LeaveType = "annual"
	LeaveTypeSick      LeaveType = "sick"
	LeaveTypeCasual    LeaveType = "casual"
	LeaveTypeUnpaid    LeaveType = "unpaid"
	LeaveTypeMaternity LeaveType = "maternity"
	LeaveTypePaternity LeaveType = "paternity"
	LeaveTypeOther     LeaveType = "other"
)

var AllLeaveTypes = []LeaveType{
	LeaveTypeAnnual,
	LeaveTypeSick,
	LeaveTypeCasual,
	LeaveTypeUnpaid,
	LeaveTypeMaternity,
	LeaveTypePaternity,
	LeaveTypeOther,
}

func (t LeaveType) IsValid() bool {
	for _, lt := range AllLeaveTypes {
		if t == lt {
			return true
		}
	}
	return false
}

// IsPaid reports whether days on this leave count as attendance in payroll.
// Casual, maternity, paternity and other leave fall in neither the paid nor the
// unpaid bucket.
func (t LeaveType) IsPaid() bool {
	return t == LeaveTypeAnnual || t == LeaveTypeSick
}

func (t LeaveType) IsUnpaid() bool {
	return t == LeaveTypeUnpaid
}

// BalanceTracked reports whether approvals of this type draw from the ledger.
// Unpaid leave has no entitlement to draw from.
func (t LeaveType) BalanceTracked() bool {
	return t != LeaveTypeUnpaid
}

type LeaveStatus string

const (
	LeaveStatusPending   LeaveStatus = "pending"
	LeaveStatusApproved  LeaveStatus = "approved"
	LeaveStatusRejected  LeaveStatus = "rejected"
	LeaveStatusCancelled LeaveStatus = "cancelled"
)

func (s LeaveStatus) IsValid() bool {
	switch s {
	case LeaveStatusPending, LeaveStatusApproved, LeaveStatusRejected, LeaveStatusCancelled:
		return true
	}
	return false
}

type LeaveRequest struct {
	ID         string
	EmployeeID string
	LeaveType  LeaveType
	StartDate  time.Time
	EndDate    time.Time
	TotalDays  int
	Reason     *string
	Status     LeaveStatus
	DecidedBy  *string
	DecidedAt  *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// SetPeriod changes the date range and keeps TotalDays in step with it.
func (r *LeaveRequest) SetPeriod(start, end time.Time) {
	r.StartDate = start
	r.EndDate = end
	r.TotalDays = CountDays(start, end)
}

// OverlapDays counts the days of the request that fall inside [from, to].
func (r LeaveRequest) OverlapDays(from, to time.Time) int {
	start := r.StartDate
	if start.Before(from) {
		start = from
	}
	end := r.EndDate
	if end.After(to) {
		end = to
	}
	return CountDays(start, end)
}

// CountDays is the inclusive number of calendar days between two dates, or 0
// when end is before start.
func CountDays(start, end time.Time) int {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	if e.Before(s) {
		return 0
	}
	return int(e.Sub(s).Hours()/24) + 1
}

// Balance maps each leave type to its remaining whole days for one employee.
type Balance struct {
	EmployeeID string
	Remaining  map[LeaveType]int
}

// DefaultBalances is the entitlement a new employee starts with.
func DefaultBalances() map[LeaveType]int {
	return map[LeaveType]int{
		LeaveTypeAnnual:    20,
		LeaveTypeSick:      10,
		LeaveTypeCasual:    5,
		LeaveTypeUnpaid:    0,
		LeaveTypeMaternity: 0,
		LeaveTypePaternity: 0,
		LeaveTypeOther:     0,
	}
}
