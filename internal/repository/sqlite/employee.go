package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/shopspring/decimal"
)

type employeeRepository struct {
	store *Store
}

func NewEmployeeRepository(store *Store) employee.EmployeeRepository {
	return &employeeRepository{store: store}
}

const employeeColumns = `
	id, employee_code, full_name, department, employment_status, hire_date,
	basic_salary, allowances, tax_rate, social_insurance_rate, health_insurance_rate, overtime_multiplier,
	created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row rowScanner) (employee.Employee, error) {
	var emp employee.Employee
	var hireDate, createdAt, updatedAt string
	var basicSalary, taxRate, socialRate, healthRate, multiplier decimal.NullDecimal
	var allowances sql.NullString

	if err := row.Scan(
		&emp.ID, &emp.EmployeeCode, &emp.FullName, &emp.Department, &emp.EmploymentStatus, &hireDate,
		&basicSalary, &allowances, &taxRate, &socialRate, &healthRate, &multiplier,
		&createdAt, &updatedAt,
	); err != nil {
		return employee.Employee{}, err
	}

	var err error
	if emp.HireDate, err = parseDate(hireDate); err != nil {
		return employee.Employee{}, fmt.Errorf("failed to parse hire date: %w", err)
	}
	emp.CreatedAt, _ = parseTime(createdAt)
	emp.UpdatedAt, _ = parseTime(updatedAt)

	if basicSalary.Valid {
		salary := employee.SalaryConfiguration{
			BasicSalary:         basicSalary.Decimal,
			TaxRate:             taxRate.Decimal,
			SocialInsuranceRate: socialRate.Decimal,
			HealthInsuranceRate: healthRate.Decimal,
			OvertimeMultiplier:  multiplier.Decimal,
		}
		if allowances.Valid {
			if err := json.Unmarshal([]byte(allowances.String), &salary.Allowances); err != nil {
				return employee.Employee{}, fmt.Errorf("failed to decode allowances: %w", err)
			}
		}
		emp.Salary = &salary
	}
	return emp, nil
}

func (r *employeeRepository) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	row := r.store.conn(ctx).QueryRowContext(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = ?`, id)

	emp, err := scanEmployee(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee by id %s: %w", id, err)
	}
	return emp, nil
}

func (r *employeeRepository) Create(ctx context.Context, newEmployee employee.Employee) (employee.Employee, error) {
	if newEmployee.ID == "" {
		newEmployee.ID = newID()
	}
	if newEmployee.EmploymentStatus == "" {
		newEmployee.EmploymentStatus = employee.EmploymentStatusActive
	}

	var basicSalary, taxRate, socialRate, healthRate, multiplier decimal.NullDecimal
	var allowances sql.NullString
	if s := newEmployee.Salary; s != nil {
		basicSalary = decimal.NewNullDecimal(s.BasicSalary)
		taxRate = decimal.NewNullDecimal(s.TaxRate)
		socialRate = decimal.NewNullDecimal(s.SocialInsuranceRate)
		healthRate = decimal.NewNullDecimal(s.HealthInsuranceRate)
		multiplier = decimal.NewNullDecimal(s.OvertimeMultiplier)
		encoded, err := json.Marshal(s.Allowances)
		if err != nil {
			return employee.Employee{}, fmt.Errorf("failed to encode allowances: %w", err)
		}
		allowances = sql.NullString{String: string(encoded), Valid: true}
	}

	ts := now()
	_, err := r.store.conn(ctx).ExecContext(ctx, `
		INSERT INTO employees (
			id, employee_code, full_name, department, employment_status, hire_date,
			basic_salary, allowances, tax_rate, social_insurance_rate, health_insurance_rate, overtime_multiplier,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		newEmployee.ID, newEmployee.EmployeeCode, newEmployee.FullName, newEmployee.Department,
		newEmployee.EmploymentStatus, formatDate(newEmployee.HireDate),
		basicSalary, allowances, taxRate, socialRate, healthRate, multiplier,
		ts, ts,
	)
	if err != nil {
		if isUniqueViolation(err, "employees") {
			return employee.Employee{}, employee.ErrEmployeeCodeExists
		}
		return employee.Employee{}, fmt.Errorf("failed to create employee: %w", err)
	}

	return r.GetByID(ctx, newEmployee.ID)
}

func (r *employeeRepository) List(ctx context.Context, filter employee.EmployeeFilter) ([]employee.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE 1=1`
	args := []any{}

	if filter.Department != nil {
		query += " AND department = ?"
		args = append(args, *filter.Department)
	}
	if filter.Status != nil {
		query += " AND employment_status = ?"
		args = append(args, *filter.Status)
	}
	if len(filter.IDs) > 0 {
		query += " AND id IN (" + strings.TrimSuffix(strings.Repeat("?,", len(filter.IDs)), ",") + ")"
		for _, id := range filter.IDs {
			args = append(args, id)
		}
	}
	query += " ORDER BY employee_code ASC"

	rows, err := r.store.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, emp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate employees: %w", err)
	}
	return employees, nil
}

func (r *employeeRepository) UpdateSalary(ctx context.Context, id string, salary employee.SalaryConfiguration) error {
	allowances, err := json.Marshal(salary.Allowances)
	if err != nil {
		return fmt.Errorf("failed to encode allowances: %w", err)
	}

	res, err := r.store.conn(ctx).ExecContext(ctx, `
		UPDATE employees
		SET basic_salary = ?, allowances = ?, tax_rate = ?, social_insurance_rate = ?,
			health_insurance_rate = ?, overtime_multiplier = ?, updated_at = ?
		WHERE id = ?
	`,
		salary.BasicSalary, string(allowances), salary.TaxRate, salary.SocialInsuranceRate,
		salary.HealthInsuranceRate, salary.OvertimeMultiplier, now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update salary for employee %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}
