package attendance

import (
	"context"
	"time"
)

// AttendanceRepository is the attendance store consumed by the payroll aggregator.
type AttendanceRepository interface {
	Create(ctx context.Context, attendance Attendance) (Attendance, error)
	Update(ctx context.Context, attendance Attendance) error

	// GetByEmployeeAndDate returns ErrAttendanceNotFound when no record exists.
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (Attendance, error)

	// ListByEmployeeAndRange returns records with from <= date <= to, ordered by date.
	ListByEmployeeAndRange(ctx context.Context, employeeID string, from, to time.Time) ([]Attendance, error)
}
