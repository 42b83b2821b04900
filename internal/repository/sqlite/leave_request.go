package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/leave"
)

type leaveRequestRepository struct {
	store *Store
}

func NewLeaveRequestRepository(store *Store) leave.LeaveRequestRepository {
	return &leaveRequestRepository{store: store}
}

const leaveRequestColumns = `
	id, employee_id, leave_type, start_date, end_date, total_days, reason,
	status, decided_by, decided_at, created_at, updated_at`

func scanLeaveRequest(row rowScanner) (leave.LeaveRequest, error) {
	var lr leave.LeaveRequest
	var startDate, endDate, createdAt, updatedAt string
	var decidedAt sql.NullString

	if err := row.Scan(
		&lr.ID, &lr.EmployeeID, &lr.LeaveType, &startDate, &endDate, &lr.TotalDays, &lr.Reason,
		&lr.Status, &lr.DecidedBy, &decidedAt, &createdAt, &updatedAt,
	); err != nil {
		return leave.LeaveRequest{}, err
	}

	var err error
	if lr.StartDate, err = parseDate(startDate); err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to parse start date: %w", err)
	}
	if lr.EndDate, err = parseDate(endDate); err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to parse end date: %w", err)
	}
	if lr.DecidedAt, err = parseNullTime(decidedAt); err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to parse decision time: %w", err)
	}
	lr.CreatedAt, _ = parseTime(createdAt)
	lr.UpdatedAt, _ = parseTime(updatedAt)
	return lr, nil
}

func (r *leaveRequestRepository) collect(ctx context.Context, query string, args ...any) ([]leave.LeaveRequest, error) {
	rows, err := r.store.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave requests: %w", err)
	}
	defer rows.Close()

	var requests []leave.LeaveRequest
	for rows.Next() {
		lr, err := scanLeaveRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave request: %w", err)
		}
		requests = append(requests, lr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leave requests: %w", err)
	}
	return requests, nil
}

func (r *leaveRequestRepository) Create(ctx context.Context, req leave.LeaveRequest) (leave.LeaveRequest, error) {
	if req.ID == "" {
		req.ID = newID()
	}
	if req.Status == "" {
		req.Status = leave.LeaveStatusPending
	}

	ts := now()
	_, err := r.store.conn(ctx).ExecContext(ctx, `
		INSERT INTO leave_requests (
			id, employee_id, leave_type, start_date, end_date, total_days, reason, status, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		req.ID, req.EmployeeID, req.LeaveType, formatDate(req.StartDate), formatDate(req.EndDate),
		req.TotalDays, req.Reason, req.Status, ts, ts,
	)
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to create leave request: %w", err)
	}

	return r.GetByID(ctx, req.ID)
}

func (r *leaveRequestRepository) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	row := r.store.conn(ctx).QueryRowContext(ctx, `SELECT `+leaveRequestColumns+` FROM leave_requests WHERE id = ?`, id)

	lr, err := scanLeaveRequest(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
		}
		return leave.LeaveRequest{}, fmt.Errorf("failed to get leave request %s: %w", id, err)
	}
	return lr, nil
}

// GetByIDForUpdate is a plain read; the single connection already serializes
// transactions.
func (r *leaveRequestRepository) GetByIDForUpdate(ctx context.Context, id string) (leave.LeaveRequest, error) {
	return r.GetByID(ctx, id)
}

func (r *leaveRequestRepository) Update(ctx context.Context, req leave.LeaveRequest) error {
	res, err := r.store.conn(ctx).ExecContext(ctx, `
		UPDATE leave_requests
		SET start_date = ?, end_date = ?, total_days = ?, reason = ?,
			status = ?, decided_by = ?, decided_at = ?, updated_at = ?
		WHERE id = ?
	`,
		formatDate(req.StartDate), formatDate(req.EndDate), req.TotalDays, req.Reason,
		req.Status, req.DecidedBy, nullTime(req.DecidedAt), now(), req.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update leave request %s: %w", req.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return leave.ErrLeaveRequestNotFound
	}
	return nil
}

func (r *leaveRequestRepository) List(ctx context.Context, filter leave.LeaveRequestFilter) ([]leave.LeaveRequest, error) {
	query := `SELECT ` + leaveRequestColumns + ` FROM leave_requests WHERE 1=1`
	args := []any{}

	if filter.EmployeeID != nil {
		query += " AND employee_id = ?"
		args = append(args, *filter.EmployeeID)
	}
	if filter.Status != nil {
		query += " AND status = ?"
		args = append(args, *filter.Status)
	}
	query += " ORDER BY start_date DESC, created_at DESC"

	return r.collect(ctx, query, args...)
}

func (r *leaveRequestRepository) ListOverlapping(ctx context.Context, employeeID string, from, to time.Time) ([]leave.LeaveRequest, error) {
	return r.collect(ctx, `
		SELECT `+leaveRequestColumns+`
		FROM leave_requests
		WHERE employee_id = ? AND start_date <= ? AND end_date >= ?
		ORDER BY start_date ASC
	`, employeeID, formatDate(to), formatDate(from))
}
