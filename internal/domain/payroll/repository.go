package payroll

import "context"

// PayrollRepository persists payroll snapshots. Create must rely on a unique
// constraint over (employee_id, period_month, period_year) and report a
// violation as ErrDuplicatePayroll.
type PayrollRepository interface {
	Create(ctx context.Context, record Payroll) (Payroll, error)
	GetByID(ctx context.Context, id string) (Payroll, error)
	GetByIDForUpdate(ctx context.Context, id string) (Payroll, error)
	GetByEmployeePeriod(ctx context.Context, employeeID string, month, year int) (Payroll, error)
	List(ctx context.Context, filter PayrollFilter) ([]Payroll, int64, error)
	ListByPeriod(ctx context.Context, month, year int) ([]Payroll, error)
	Update(ctx context.Context, record Payroll) error
	Delete(ctx context.Context, id string) error
}
