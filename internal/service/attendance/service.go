package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
)

type AttendanceServiceImpl struct {
	transactor     database.Transactor
	attendanceRepo attendance.AttendanceRepository
	employeeRepo   employee.EmployeeRepository
	policy         attendance.Policy
	now            func() time.Time
}

func NewAttendanceService(
	transactor database.Transactor,
	attendanceRepo attendance.AttendanceRepository,
	employeeRepo employee.EmployeeRepository,
	policy attendance.Policy,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		transactor:     transactor,
		attendanceRepo: attendanceRepo,
		employeeRepo:   employeeRepo,
		policy:         policy,
		now:            time.Now,
	}
}

// timePtrToString formats an optional timestamp as RFC3339.
func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	format := t.UTC().Format(time.RFC3339)
	return &format
}

// ClockIn opens a session on the day of the request timestamp, creating the
// day's record on first use.
func (s *AttendanceServiceImpl) ClockIn(ctx context.Context, req attendance.ClockRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}
	at := req.At(s.now()).UTC()
	date := attendance.DateOnly(at, s.policy.Location)

	var record attendance.Attendance
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.employeeRepo.GetByID(ctx, req.EmployeeID); err != nil {
			return err
		}

		existing, err := s.attendanceRepo.GetByEmployeeAndDate(ctx, req.EmployeeID, date)
		switch {
		case errors.Is(err, attendance.ErrAttendanceNotFound):
			record = attendance.Attendance{
				EmployeeID: req.EmployeeID,
				Date:       date,
				Sessions:   []attendance.Session{{ClockIn: at}},
			}
			record.Recompute(s.policy)
			record, err = s.attendanceRepo.Create(ctx, record)
			return err
		case err != nil:
			return fmt.Errorf("failed to get attendance: %w", err)
		}

		if existing.OpenSession() != nil {
			return attendance.ErrAlreadyClockedIn
		}
		if last := existing.Sessions[len(existing.Sessions)-1]; !at.After(*last.ClockOut) {
			return attendance.ErrClockOutBeforeIn
		}
		existing.Sessions = append(existing.Sessions, attendance.Session{ClockIn: at})
		existing.Recompute(s.policy)
		record = existing
		return s.attendanceRepo.Update(ctx, record)
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	slog.Info("clocked in", "employee_id", req.EmployeeID, "date", date.Format("2006-01-02"), "sessions", len(record.Sessions))
	return mapToAttendanceResponse(record), nil
}

// ClockOut closes the open session of the request timestamp's day.
func (s *AttendanceServiceImpl) ClockOut(ctx context.Context, req attendance.ClockRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}
	at := req.At(s.now()).UTC()
	date := attendance.DateOnly(at, s.policy.Location)

	var record attendance.Attendance
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		record, err = s.attendanceRepo.GetByEmployeeAndDate(ctx, req.EmployeeID, date)
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return attendance.ErrNotClockedIn
		}
		if err != nil {
			return fmt.Errorf("failed to get attendance: %w", err)
		}

		open := record.OpenSession()
		if open == nil {
			return attendance.ErrNotClockedIn
		}
		if !at.After(open.ClockIn) {
			return attendance.ErrClockOutBeforeIn
		}
		open.ClockOut = &at
		record.Recompute(s.policy)
		return s.attendanceRepo.Update(ctx, record)
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	slog.Info("clocked out", "employee_id", req.EmployeeID, "date", date.Format("2006-01-02"), "total_hours", record.TotalHours.String(), "status", record.Status)
	return mapToAttendanceResponse(record), nil
}

func (s *AttendanceServiceImpl) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.AttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	from, _ := validator.IsValidDate(filter.From)
	to, _ := validator.IsValidDate(filter.To)

	records, err := s.attendanceRepo.ListByEmployeeAndRange(ctx, filter.EmployeeID, from, to)
	if err != nil {
		return nil, err
	}

	responses := make([]attendance.AttendanceResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, mapToAttendanceResponse(record))
	}
	return responses, nil
}

func mapToAttendanceResponse(a attendance.Attendance) attendance.AttendanceResponse {
	sessions := make([]attendance.SessionResponse, 0, len(a.Sessions))
	for _, s := range a.Sessions {
		sessions = append(sessions, attendance.SessionResponse{
			ClockIn:  s.ClockIn.UTC().Format(time.RFC3339),
			ClockOut: timePtrToString(s.ClockOut),
		})
	}
	return attendance.AttendanceResponse{
		ID:         a.ID,
		EmployeeID: a.EmployeeID,
		Date:       a.Date.Format("2006-01-02"),
		Sessions:   sessions,
		TotalHours: a.TotalHours,
		Status:     string(a.Status),
	}
}
