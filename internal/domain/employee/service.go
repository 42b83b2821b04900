package employee

import "context"

// EmployeeService manages employees and their salary configuration.
type EmployeeService interface {
	CreateEmployee(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error)
	GetEmployee(ctx context.Context, id string) (EmployeeResponse, error)
	ListEmployees(ctx context.Context, filter EmployeeFilter) ([]EmployeeResponse, error)

	// SetSalaryConfiguration replaces the salary configuration. Payrolls already
	// generated keep their snapshot.
	SetSalaryConfiguration(ctx context.Context, req SetSalaryConfigurationRequest) (EmployeeResponse, error)
}
