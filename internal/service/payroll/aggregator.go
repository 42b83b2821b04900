package payroll

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

// MonthBounds returns the first and last calendar day of the month in UTC.
func MonthBounds(month, year int) (time.Time, time.Time) {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return first, first.AddDate(0, 1, -1)
}

// WorkingDays counts Monday to Friday in the month. There is no holiday calendar.
func WorkingDays(month, year int) int {
	first, last := MonthBounds(month, year)
	days := 0
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			days++
		}
	}
	return days
}

// Aggregate reduces a month of attendance records and leave requests to the
// counts the calculator needs. Records outside the month and leave that is not
// approved are ignored, so callers may pass wider result sets.
func Aggregate(month, year int, records []attendance.Attendance, leaves []leave.LeaveRequest) payroll.AttendanceAggregate {
	from, to := MonthBounds(month, year)
	agg := payroll.AttendanceAggregate{
		WorkingDays:      WorkingDays(month, year),
		TotalHoursWorked: decimal.Zero,
		OvertimeHours:    decimal.Zero,
	}

	rawAttended := 0
	for _, rec := range records {
		if rec.Date.Before(from) || rec.Date.After(to) {
			continue
		}
		if rec.Status.Counts() {
			rawAttended++
		}
		if rec.Status == attendance.StatusLate {
			agg.LateDays++
		}
		agg.TotalHoursWorked = agg.TotalHoursWorked.Add(rec.TotalHours)
		if extra := rec.TotalHours.Sub(hoursPerDay); extra.IsPositive() {
			agg.OvertimeHours = agg.OvertimeHours.Add(extra)
		}
	}

	for _, lr := range leaves {
		if lr.Status != leave.LeaveStatusApproved {
			continue
		}
		days := lr.OverlapDays(from, to)
		switch {
		case lr.LeaveType.IsPaid():
			agg.PaidLeaveDays += days
		case lr.LeaveType.IsUnpaid():
			agg.UnpaidLeaveDays += days
		}
	}

	agg.AttendedDays = rawAttended + agg.PaidLeaveDays
	agg.AbsentDays = max(0, agg.WorkingDays-rawAttended-agg.PaidLeaveDays)
	return agg
}

type repositoryAggregator struct {
	attendanceRepo attendance.AttendanceRepository
	leaveRepo      leave.LeaveRequestRepository
}

// NewAggregator reads attendance and leave from storage for Aggregate.
func NewAggregator(attendanceRepo attendance.AttendanceRepository, leaveRepo leave.LeaveRequestRepository) payroll.Aggregator {
	return &repositoryAggregator{attendanceRepo: attendanceRepo, leaveRepo: leaveRepo}
}

func (a *repositoryAggregator) Aggregate(ctx context.Context, employeeID string, month, year int) (payroll.AttendanceAggregate, error) {
	from, to := MonthBounds(month, year)

	records, err := a.attendanceRepo.ListByEmployeeAndRange(ctx, employeeID, from, to)
	if err != nil {
		return payroll.AttendanceAggregate{}, fmt.Errorf("failed to load attendance: %w", err)
	}
	leaves, err := a.leaveRepo.ListOverlapping(ctx, employeeID, from, to)
	if err != nil {
		return payroll.AttendanceAggregate{}, fmt.Errorf("failed to load leave requests: %w", err)
	}

	return Aggregate(month, year, records, leaves), nil
}
