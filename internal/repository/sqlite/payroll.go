package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
)

type payrollRepository struct {
	store *Store
}

func NewPayrollRepository(store *Store) payroll.PayrollRepository {
	return &payrollRepository{store: store}
}

const payrollSelect = `
	SELECT p.id, p.employee_id, p.period_month, p.period_year, p.basic_salary, p.basic_pay,
		   p.allowances, p.total_allowances, p.working_days, p.attended_days, p.absent_days,
		   p.late_days, p.paid_leave_days, p.unpaid_leave_days, p.late_deductions, p.bonuses,
		   p.overtime_hours, p.overtime_pay, p.deductions, p.gross_salary, p.total_deductions,
		   p.net_salary, p.status, p.approved_by, p.approval_date, p.payment_date, p.notes,
		   p.created_at, p.updated_at,
		   e.full_name, e.employee_code, e.department
	FROM payrolls p
	JOIN employees e ON p.employee_id = e.id`

func scanPayroll(row rowScanner) (payroll.Payroll, error) {
	var rec payroll.Payroll
	var allowances, bonuses, deductions, createdAt, updatedAt string
	var approvalDate, paymentDate sql.NullString

	if err := row.Scan(
		&rec.ID, &rec.EmployeeID, &rec.PeriodMonth, &rec.PeriodYear, &rec.BasicSalary, &rec.BasicPay,
		&allowances, &rec.TotalAllowances, &rec.WorkingDays, &rec.AttendedDays, &rec.AbsentDays,
		&rec.LateDays, &rec.PaidLeaveDays, &rec.UnpaidLeaveDays, &rec.LateDeductions, &bonuses,
		&rec.OvertimeHours, &rec.OvertimePay, &deductions, &rec.GrossSalary, &rec.TotalDeductions,
		&rec.NetSalary, &rec.Status, &rec.ApprovedBy, &approvalDate, &paymentDate, &rec.Notes,
		&createdAt, &updatedAt,
		&rec.EmployeeName, &rec.EmployeeCode, &rec.Department,
	); err != nil {
		return payroll.Payroll{}, err
	}

	if err := json.Unmarshal([]byte(allowances), &rec.Allowances); err != nil {
		return payroll.Payroll{}, fmt.Errorf("failed to decode allowances: %w", err)
	}
	if err := json.Unmarshal([]byte(bonuses), &rec.Bonuses); err != nil {
		return payroll.Payroll{}, fmt.Errorf("failed to decode bonuses: %w", err)
	}
	if err := json.Unmarshal([]byte(deductions), &rec.Deductions); err != nil {
		return payroll.Payroll{}, fmt.Errorf("failed to decode deductions: %w", err)
	}

	var err error
	if rec.ApprovalDate, err = parseNullTime(approvalDate); err != nil {
		return payroll.Payroll{}, fmt.Errorf("failed to parse approval date: %w", err)
	}
	if rec.PaymentDate, err = parseNullTime(paymentDate); err != nil {
		return payroll.Payroll{}, fmt.Errorf("failed to parse payment date: %w", err)
	}
	rec.CreatedAt, _ = parseTime(createdAt)
	rec.UpdatedAt, _ = parseTime(updatedAt)
	return rec, nil
}

func encodeDocuments(rec payroll.Payroll) (allowances, bonuses, deductions string, err error) {
	a, err := json.Marshal(rec.Allowances)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to encode allowances: %w", err)
	}
	b, err := json.Marshal(rec.Bonuses)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to encode bonuses: %w", err)
	}
	d, err := json.Marshal(rec.Deductions)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to encode deductions: %w", err)
	}
	return string(a), string(b), string(d), nil
}

func (r *payrollRepository) collect(ctx context.Context, query string, args ...any) ([]payroll.Payroll, error) {
	rows, err := r.store.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list payrolls: %w", err)
	}
	defer rows.Close()

	var records []payroll.Payroll
	for rows.Next() {
		rec, err := scanPayroll(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payrolls: %w", err)
	}
	return records, nil
}

func (r *payrollRepository) Create(ctx context.Context, record payroll.Payroll) (payroll.Payroll, error) {
	if record.ID == "" {
		record.ID = newID()
	}
	if record.Status == "" {
		record.Status = payroll.PayrollStatusDraft
	}

	allowances, bonuses, deductions, err := encodeDocuments(record)
	if err != nil {
		return payroll.Payroll{}, err
	}

	ts := now()
	_, err = r.store.conn(ctx).ExecContext(ctx, `
		INSERT INTO payrolls (
			id, employee_id, period_month, period_year, basic_salary, basic_pay,
			allowances, total_allowances, working_days, attended_days, absent_days,
			late_days, paid_leave_days, unpaid_leave_days, late_deductions, bonuses,
			overtime_hours, overtime_pay, deductions, gross_salary, total_deductions,
			net_salary, status, notes, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		record.ID, record.EmployeeID, record.PeriodMonth, record.PeriodYear, record.BasicSalary, record.BasicPay,
		allowances, record.TotalAllowances, record.WorkingDays, record.AttendedDays, record.AbsentDays,
		record.LateDays, record.PaidLeaveDays, record.UnpaidLeaveDays, record.LateDeductions, bonuses,
		record.OvertimeHours, record.OvertimePay, deductions, record.GrossSalary, record.TotalDeductions,
		record.NetSalary, record.Status, record.Notes, ts, ts,
	)
	if err != nil {
		if isUniqueViolation(err, "payrolls") {
			return payroll.Payroll{}, payroll.ErrDuplicatePayroll
		}
		return payroll.Payroll{}, fmt.Errorf("failed to create payroll: %w", err)
	}

	return r.GetByID(ctx, record.ID)
}

func (r *payrollRepository) getOne(ctx context.Context, where string, args ...any) (payroll.Payroll, error) {
	rec, err := scanPayroll(r.store.conn(ctx).QueryRowContext(ctx, payrollSelect+" "+where, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return payroll.Payroll{}, payroll.ErrPayrollNotFound
		}
		return payroll.Payroll{}, fmt.Errorf("failed to get payroll: %w", err)
	}
	return rec, nil
}

func (r *payrollRepository) GetByID(ctx context.Context, id string) (payroll.Payroll, error) {
	return r.getOne(ctx, "WHERE p.id = ?", id)
}

func (r *payrollRepository) GetByIDForUpdate(ctx context.Context, id string) (payroll.Payroll, error) {
	return r.GetByID(ctx, id)
}

func (r *payrollRepository) GetByEmployeePeriod(ctx context.Context, employeeID string, month, year int) (payroll.Payroll, error) {
	return r.getOne(ctx, "WHERE p.employee_id = ? AND p.period_month = ? AND p.period_year = ?", employeeID, month, year)
}

func (r *payrollRepository) List(ctx context.Context, filter payroll.PayrollFilter) ([]payroll.Payroll, int64, error) {
	where := " WHERE 1=1"
	args := []any{}

	if filter.PeriodMonth != nil {
		where += " AND p.period_month = ?"
		args = append(args, *filter.PeriodMonth)
	}
	if filter.PeriodYear != nil {
		where += " AND p.period_year = ?"
		args = append(args, *filter.PeriodYear)
	}
	if filter.Status != nil {
		where += " AND p.status = ?"
		args = append(args, *filter.Status)
	}
	if filter.EmployeeID != nil {
		where += " AND p.employee_id = ?"
		args = append(args, *filter.EmployeeID)
	}
	if filter.Department != nil {
		where += " AND e.department = ?"
		args = append(args, *filter.Department)
	}

	var totalCount int64
	countQuery := "SELECT COUNT(*) FROM payrolls p JOIN employees e ON p.employee_id = e.id" + where
	if err := r.store.conn(ctx).QueryRowContext(ctx, countQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count payrolls: %w", err)
	}

	sortColumn, sortOrder := payrollSort(filter)
	page, limit := payrollPage(filter)

	query := fmt.Sprintf("%s%s ORDER BY %s %s LIMIT ? OFFSET ?", payrollSelect, where, sortColumn, sortOrder)
	args = append(args, limit, (page-1)*limit)

	records, err := r.collect(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return records, totalCount, nil
}

func (r *payrollRepository) ListByPeriod(ctx context.Context, month, year int) ([]payroll.Payroll, error) {
	return r.collect(ctx, payrollSelect+`
		WHERE p.period_month = ? AND p.period_year = ?
		ORDER BY e.department ASC, e.employee_code ASC
	`, month, year)
}

func (r *payrollRepository) Update(ctx context.Context, record payroll.Payroll) error {
	allowances, bonuses, deductions, err := encodeDocuments(record)
	if err != nil {
		return err
	}

	res, err := r.store.conn(ctx).ExecContext(ctx, `
		UPDATE payrolls SET
			basic_pay = ?, allowances = ?, total_allowances = ?, late_deductions = ?,
			bonuses = ?, overtime_hours = ?, overtime_pay = ?, deductions = ?,
			gross_salary = ?, total_deductions = ?, net_salary = ?, status = ?,
			approved_by = ?, approval_date = ?, payment_date = ?, notes = ?,
			updated_at = ?
		WHERE id = ?
	`,
		record.BasicPay, allowances, record.TotalAllowances, record.LateDeductions,
		bonuses, record.OvertimeHours, record.OvertimePay, deductions,
		record.GrossSalary, record.TotalDeductions, record.NetSalary, record.Status,
		record.ApprovedBy, nullTime(record.ApprovalDate), nullTime(record.PaymentDate), record.Notes,
		now(), record.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update payroll %s: %w", record.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return payroll.ErrPayrollNotFound
	}
	return nil
}

func (r *payrollRepository) Delete(ctx context.Context, id string) error {
	res, err := r.store.conn(ctx).ExecContext(ctx, `DELETE FROM payrolls WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete payroll %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return payroll.ErrPayrollNotFound
	}
	return nil
}

func payrollSort(filter payroll.PayrollFilter) (string, string) {
	sortColumn := "p.created_at"
	allowedColumns := map[string]string{
		"created_at":    "p.created_at",
		"period":        "p.period_year DESC, p.period_month",
		"employee_name": "e.full_name",
		"net_salary":    "CAST(p.net_salary AS REAL)",
		"gross_salary":  "CAST(p.gross_salary AS REAL)",
	}
	if col, ok := allowedColumns[filter.SortBy]; ok {
		sortColumn = col
	}
	sortOrder := "DESC"
	if filter.SortOrder == "asc" {
		sortOrder = "ASC"
	}
	return sortColumn, sortOrder
}

func payrollPage(filter payroll.PayrollFilter) (page, limit int) {
	page, limit = filter.Page, filter.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if page <= 0 {
		page = 1
	}
	return page, limit
}
