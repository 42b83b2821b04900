package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
)

type attendanceRepository struct {
	store *Store
}

func NewAttendanceRepository(store *Store) attendance.AttendanceRepository {
	return &attendanceRepository{store: store}
}

const attendanceColumns = `id, employee_id, date, sessions, total_hours, status, created_at, updated_at`

func scanAttendance(row rowScanner) (attendance.Attendance, error) {
	var a attendance.Attendance
	var date, sessions, createdAt, updatedAt string

	if err := row.Scan(&a.ID, &a.EmployeeID, &date, &sessions, &a.TotalHours, &a.Status, &createdAt, &updatedAt); err != nil {
		return attendance.Attendance{}, err
	}

	var err error
	if a.Date, err = parseDate(date); err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to parse attendance date: %w", err)
	}
	if err := json.Unmarshal([]byte(sessions), &a.Sessions); err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to decode sessions: %w", err)
	}
	a.CreatedAt, _ = parseTime(createdAt)
	a.UpdatedAt, _ = parseTime(updatedAt)
	return a, nil
}

func (r *attendanceRepository) Create(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	if a.ID == "" {
		a.ID = newID()
	}
	sessions, err := json.Marshal(a.Sessions)
	if err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to encode sessions: %w", err)
	}

	ts := now()
	_, err = r.store.conn(ctx).ExecContext(ctx, `
		INSERT INTO attendances (id, employee_id, date, sessions, total_hours, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.EmployeeID, formatDate(a.Date), string(sessions), a.TotalHours, a.Status, ts, ts)
	if err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to create attendance: %w", err)
	}

	return r.GetByEmployeeAndDate(ctx, a.EmployeeID, a.Date)
}

func (r *attendanceRepository) Update(ctx context.Context, a attendance.Attendance) error {
	sessions, err := json.Marshal(a.Sessions)
	if err != nil {
		return fmt.Errorf("failed to encode sessions: %w", err)
	}

	res, err := r.store.conn(ctx).ExecContext(ctx, `
		UPDATE attendances SET sessions = ?, total_hours = ?, status = ?, updated_at = ?
		WHERE id = ?
	`, string(sessions), a.TotalHours, a.Status, now(), a.ID)
	if err != nil {
		return fmt.Errorf("failed to update attendance: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return attendance.ErrAttendanceNotFound
	}
	return nil
}

func (r *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (attendance.Attendance, error) {
	row := r.store.conn(ctx).QueryRowContext(ctx,
		`SELECT `+attendanceColumns+` FROM attendances WHERE employee_id = ? AND date = ?`,
		employeeID, formatDate(date))

	a, err := scanAttendance(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get attendance: %w", err)
	}
	return a, nil
}

func (r *attendanceRepository) ListByEmployeeAndRange(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.Attendance, error) {
	rows, err := r.store.conn(ctx).QueryContext(ctx, `
		SELECT `+attendanceColumns+`
		FROM attendances
		WHERE employee_id = ? AND date BETWEEN ? AND ?
		ORDER BY date ASC
	`, employeeID, formatDate(from), formatDate(to))
	if err != nil {
		return nil, fmt.Errorf("failed to list attendances: %w", err)
	}
	defer rows.Close()

	var records []attendance.Attendance
	for rows.Next() {
		a, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		records = append(records, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attendances: %w", err)
	}
	return records, nil
}
