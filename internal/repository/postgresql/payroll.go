package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type payrollRepository struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepository{db: db}
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

func scanPayroll(row pgx.Row) (payroll.Payroll, error) {
	var rec payroll.Payroll
	var allowancesBytes, bonusesBytes, deductionsBytes []byte

	if err := row.Scan(
		&rec.ID, &rec.EmployeeID, &rec.PeriodMonth, &rec.PeriodYear, &rec.BasicSalary, &rec.BasicPay,
		&allowancesBytes, &rec.TotalAllowances, &rec.WorkingDays, &rec.AttendedDays, &rec.AbsentDays,
		&rec.LateDays, &rec.PaidLeaveDays, &rec.UnpaidLeaveDays, &rec.LateDeductions, &bonusesBytes,
		&rec.OvertimeHours, &rec.OvertimePay, &deductionsBytes, &rec.GrossSalary, &rec.TotalDeductions,
		&rec.NetSalary, &rec.Status, &rec.ApprovedBy, &rec.ApprovalDate, &rec.PaymentDate, &rec.Notes,
		&rec.CreatedAt, &rec.UpdatedAt,
		&rec.EmployeeName, &rec.EmployeeCode, &rec.Department,
	); err != nil {
		return payroll.Payroll{}, err
	}

	if err := json.Unmarshal(allowancesBytes, &rec.Allowances); err != nil {
		return payroll.Payroll{}, fmt.Errorf("failed to decode allowances: %w", err)
	}
	if err := json.Unmarshal(bonusesBytes, &rec.Bonuses); err != nil {
		return payroll.Payroll{}, fmt.Errorf("failed to decode bonuses: %w", err)
	}
	if err := json.Unmarshal(deductionsBytes, &rec.Deductions); err != nil {
		return payroll.Payroll{}, fmt.Errorf("failed to decode deductions: %w", err)
	}
	return rec, nil
}

func collectPayrolls(rows pgx.Rows) ([]payroll.Payroll, error) {
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

// payrollDocuments encodes the JSON columns of a payroll.
func payrollDocuments(rec payroll.Payroll) (allowances, bonuses, deductions []byte, err error) {
	if allowances, err = json.Marshal(rec.Allowances); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to encode allowances: %w", err)
	}
	if bonuses, err = json.Marshal(rec.Bonuses); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to encode bonuses: %w", err)
	}
	if deductions, err = json.Marshal(rec.Deductions); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to encode deductions: %w", err)
	}
	return allowances, bonuses, deductions, nil
}

func (r *payrollRepository) Create(ctx context.Context, record payroll.Payroll) (payroll.Payroll, error) {
	q := GetQuerier(ctx, r.db)

	if record.ID == "" {
		record.ID = newID()
	}
	if record.Status == "" {
		record.Status = payroll.PayrollStatusDraft
	}

	allowancesJSON, bonusesJSON, deductionsJSON, err := payrollDocuments(record)
	if err != nil {
		return payroll.Payroll{}, err
	}

	query := `
		INSERT INTO payrolls (
			id, employee_id, period_month, period_year, basic_salary, basic_pay,
			allowances, total_allowances, working_days, attended_days, absent_days,
			late_days, paid_leave_days, unpaid_leave_days, late_deductions, bonuses,
			overtime_hours, overtime_pay, deductions, gross_salary, total_deductions,
			net_salary, status, notes
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24
		)
	`

	_, err = q.Exec(ctx, query,
		record.ID, record.EmployeeID, record.PeriodMonth, record.PeriodYear, record.BasicSalary, record.BasicPay,
		allowancesJSON, record.TotalAllowances, record.WorkingDays, record.AttendedDays, record.AbsentDays,
		record.LateDays, record.PaidLeaveDays, record.UnpaidLeaveDays, record.LateDeductions, bonusesJSON,
		record.OvertimeHours, record.OvertimePay, deductionsJSON, record.GrossSalary, record.TotalDeductions,
		record.NetSalary, record.Status, record.Notes,
	)
	if err != nil {
		if strings.Contains(err.Error(), "uk_employee_period") {
			return payroll.Payroll{}, payroll.ErrDuplicatePayroll
		}
		return payroll.Payroll{}, fmt.Errorf("failed to create payroll: %w", err)
	}

	return r.GetByID(ctx, record.ID)
}

func (r *payrollRepository) getOne(ctx context.Context, where string, args ...interface{}) (payroll.Payroll, error) {
	q := GetQuerier(ctx, r.db)

	rec, err := scanPayroll(q.QueryRow(ctx, payrollSelect+" "+where, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Payroll{}, payroll.ErrPayrollNotFound
		}
		return payroll.Payroll{}, fmt.Errorf("failed to get payroll: %w", err)
	}
	return rec, nil
}

func (r *payrollRepository) GetByID(ctx context.Context, id string) (payroll.Payroll, error) {
	return r.getOne(ctx, "WHERE p.id = $1", id)
}

func (r *payrollRepository) GetByIDForUpdate(ctx context.Context, id string) (payroll.Payroll, error) {
	return r.getOne(ctx, "WHERE p.id = $1 FOR UPDATE OF p", id)
}

func (r *payrollRepository) GetByEmployeePeriod(ctx context.Context, employeeID string, month, year int) (payroll.Payroll, error) {
	return r.getOne(ctx, "WHERE p.employee_id = $1 AND p.period_month = $2 AND p.period_year = $3", employeeID, month, year)
}

func (r *payrollRepository) List(ctx context.Context, filter payroll.PayrollFilter) ([]payroll.Payroll, int64, error) {
	q := GetQuerier(ctx, r.db)

	where := " WHERE 1=1"
	args := []interface{}{}
	argIdx := 1

	if filter.PeriodMonth != nil {
		where += fmt.Sprintf(" AND p.period_month = $%d", argIdx)
		args = append(args, *filter.PeriodMonth)
		argIdx++
	}
	if filter.PeriodYear != nil {
		where += fmt.Sprintf(" AND p.period_year = $%d", argIdx)
		args = append(args, *filter.PeriodYear)
		argIdx++
	}
	if filter.Status != nil {
		where += fmt.Sprintf(" AND p.status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.EmployeeID != nil {
		where += fmt.Sprintf(" AND p.employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.Department != nil {
		where += fmt.Sprintf(" AND e.department = $%d", argIdx)
		args = append(args, *filter.Department)
		argIdx++
	}

	var totalCount int64
	countQuery := "SELECT COUNT(*) FROM payrolls p JOIN employees e ON p.employee_id = e.id" + where
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count payrolls: %w", err)
	}

	sortColumn, sortOrder := payrollSort(filter)
	filter.Page, filter.Limit = payrollPage(filter)
	offset := (filter.Page - 1) * filter.Limit

	selectQuery := fmt.Sprintf("%s%s ORDER BY %s %s LIMIT $%d OFFSET $%d",
		payrollSelect, where, sortColumn, sortOrder, argIdx, argIdx+1)
	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payrolls: %w", err)
	}
	records, err := collectPayrolls(rows)
	if err != nil {
		return nil, 0, err
	}
	return records, totalCount, nil
}

func (r *payrollRepository) ListByPeriod(ctx context.Context, month, year int) ([]payroll.Payroll, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, payrollSelect+`
		WHERE p.period_month = $1 AND p.period_year = $2
		ORDER BY e.department ASC, e.employee_code ASC
	`, month, year)
	if err != nil {
		return nil, fmt.Errorf("failed to list payrolls for %02d/%d: %w", month, year, err)
	}
	return collectPayrolls(rows)
}

func (r *payrollRepository) Update(ctx context.Context, record payroll.Payroll) error {
	q := GetQuerier(ctx, r.db)

	allowancesJSON, bonusesJSON, deductionsJSON, err := payrollDocuments(record)
	if err != nil {
		return err
	}

	query := `
		UPDATE payrolls SET
			basic_pay = $1, allowances = $2, total_allowances = $3, late_deductions = $4,
			bonuses = $5, overtime_hours = $6, overtime_pay = $7, deductions = $8,
			gross_salary = $9, total_deductions = $10, net_salary = $11, status = $12,
			approved_by = $13, approval_date = $14, payment_date = $15, notes = $16,
			updated_at = NOW()
		WHERE id = $17
	`

	tag, err := q.Exec(ctx, query,
		record.BasicPay, allowancesJSON, record.TotalAllowances, record.LateDeductions,
		bonusesJSON, record.OvertimeHours, record.OvertimePay, deductionsJSON,
		record.GrossSalary, record.TotalDeductions, record.NetSalary, record.Status,
		record.ApprovedBy, record.ApprovalDate, record.PaymentDate, record.Notes,
		record.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update payroll %s: %w", record.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrPayrollNotFound
	}
	return nil
}

func (r *payrollRepository) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM payrolls WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete payroll %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrPayrollNotFound
	}
	return nil
}

func payrollSort(filter payroll.PayrollFilter) (string, string) {
	sortColumn := "p.created_at"
	if filter.SortBy != "" {
		allowedColumns := map[string]string{
			"created_at":    "p.created_at",
			"period":        "p.period_year DESC, p.period_month",
			"employee_name": "e.full_name",
			"net_salary":    "p.net_salary",
			"gross_salary":  "p.gross_salary",
		}
		if col, ok := allowedColumns[filter.SortBy]; ok {
			sortColumn = col
		}
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
