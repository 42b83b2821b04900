package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

const employeeColumns = `
	id, employee_code, full_name, department, employment_status, hire_date,
	basic_salary, allowances, tax_rate, social_insurance_rate, health_insurance_rate, overtime_multiplier,
	created_at, updated_at`

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var emp employee.Employee
	var basicSalary, taxRate, socialRate, healthRate, multiplier decimal.NullDecimal
	var allowancesBytes []byte

	err := row.Scan(
		&emp.ID, &emp.EmployeeCode, &emp.FullName, &emp.Department, &emp.EmploymentStatus, &emp.HireDate,
		&basicSalary, &allowancesBytes, &taxRate, &socialRate, &healthRate, &multiplier,
		&emp.CreatedAt, &emp.UpdatedAt,
	)
	if err != nil {
		return employee.Employee{}, err
	}

	if basicSalary.Valid {
		salary := employee.SalaryConfiguration{
			BasicSalary:         basicSalary.Decimal,
			TaxRate:             taxRate.Decimal,
			SocialInsuranceRate: socialRate.Decimal,
			HealthInsuranceRate: healthRate.Decimal,
			OvertimeMultiplier:  multiplier.Decimal,
		}
		if len(allowancesBytes) > 0 {
			if err := json.Unmarshal(allowancesBytes, &salary.Allowances); err != nil {
				return employee.Employee{}, fmt.Errorf("failed to decode allowances: %w", err)
			}
		}
		emp.Salary = &salary
	}

	return emp, nil
}

func (r *employeeRepositoryImpl) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1`

	emp, err := scanEmployee(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee by id %s: %w", id, err)
	}
	return emp, nil
}

func (r *employeeRepositoryImpl) Create(ctx context.Context, newEmployee employee.Employee) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	if newEmployee.ID == "" {
		newEmployee.ID = newID()
	}
	if newEmployee.EmploymentStatus == "" {
		newEmployee.EmploymentStatus = employee.EmploymentStatusActive
	}

	var basicSalary, taxRate, socialRate, healthRate, multiplier decimal.NullDecimal
	var allowancesJSON []byte
	if s := newEmployee.Salary; s != nil {
		basicSalary = decimal.NewNullDecimal(s.BasicSalary)
		taxRate = decimal.NewNullDecimal(s.TaxRate)
		socialRate = decimal.NewNullDecimal(s.SocialInsuranceRate)
		healthRate = decimal.NewNullDecimal(s.HealthInsuranceRate)
		multiplier = decimal.NewNullDecimal(s.OvertimeMultiplier)
		allowancesJSON, _ = json.Marshal(s.Allowances)
	}

	query := `
		INSERT INTO employees (
			id, employee_code, full_name, department, employment_status, hire_date,
			basic_salary, allowances, tax_rate, social_insurance_rate, health_insurance_rate, overtime_multiplier
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + employeeColumns

	created, err := scanEmployee(q.QueryRow(ctx, query,
		newEmployee.ID, newEmployee.EmployeeCode, newEmployee.FullName, newEmployee.Department,
		newEmployee.EmploymentStatus, newEmployee.HireDate,
		basicSalary, allowancesJSON, taxRate, socialRate, healthRate, multiplier,
	))
	if err != nil {
		if strings.Contains(err.Error(), "employees_employee_code_key") {
			return employee.Employee{}, employee.ErrEmployeeCodeExists
		}
		return employee.Employee{}, fmt.Errorf("failed to create employee: %w", err)
	}
	return created, nil
}

func (r *employeeRepositoryImpl) List(ctx context.Context, filter employee.EmployeeFilter) ([]employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE 1=1`
	args := []interface{}{}
	argIdx := 1

	if filter.Department != nil {
		query += fmt.Sprintf(" AND department = $%d", argIdx)
		args = append(args, *filter.Department)
		argIdx++
	}
	if filter.Status != nil {
		query += fmt.Sprintf(" AND employment_status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}
	if len(filter.IDs) > 0 {
		query += fmt.Sprintf(" AND id = ANY($%d)", argIdx)
		args = append(args, filter.IDs)
		argIdx++
	}
	query += " ORDER BY employee_code ASC"

	rows, err := q.Query(ctx, query, args...)
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

func (r *employeeRepositoryImpl) UpdateSalary(ctx context.Context, id string, salary employee.SalaryConfiguration) error {
	q := GetQuerier(ctx, r.db)

	allowancesJSON, _ := json.Marshal(salary.Allowances)

	query := `
		UPDATE employees
		SET basic_salary = $1, allowances = $2, tax_rate = $3, social_insurance_rate = $4,
			health_insurance_rate = $5, overtime_multiplier = $6, updated_at = NOW()
		WHERE id = $7
	`

	tag, err := q.Exec(ctx, query,
		salary.BasicSalary, allowancesJSON, salary.TaxRate, salary.SocialInsuranceRate,
		salary.HealthInsuranceRate, salary.OvertimeMultiplier, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update salary for employee %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}
