package employee

import (
	"context"
	"log/slog"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
)

type EmployeeServiceImpl struct {
	transactor   database.Transactor
	employeeRepo employee.EmployeeRepository
	balanceRepo  leave.LeaveBalanceRepository
}

func NewEmployeeService(
	transactor database.Transactor,
	employeeRepo employee.EmployeeRepository,
	balanceRepo leave.LeaveBalanceRepository,
) employee.EmployeeService {
	return &EmployeeServiceImpl{
		transactor:   transactor,
		employeeRepo: employeeRepo,
		balanceRepo:  balanceRepo,
	}
}

// CreateEmployee stores the employee and opens their leave ledger with the
// default entitlements in one transaction.
func (s *EmployeeServiceImpl) CreateEmployee(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	hireDate, _ := validator.IsValidDate(req.HireDate)
	newEmployee := employee.Employee{
		EmployeeCode:     req.EmployeeCode,
		FullName:         req.FullName,
		Department:       req.Department,
		EmploymentStatus: employee.EmploymentStatusActive,
		HireDate:         hireDate,
	}
	if req.Salary != nil {
		salary := req.Salary.ToConfiguration()
		newEmployee.Salary = &salary
	}

	var created employee.Employee
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		created, err = s.employeeRepo.Create(ctx, newEmployee)
		if err != nil {
			return err
		}
		return s.balanceRepo.Initialize(ctx, created.ID, leave.DefaultBalances())
	})
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	slog.Info("employee created", "employee_id", created.ID, "employee_code", created.EmployeeCode)
	return mapToEmployeeResponse(created), nil
}

func (s *EmployeeServiceImpl) GetEmployee(ctx context.Context, id string) (employee.EmployeeResponse, error) {
	emp, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	return mapToEmployeeResponse(emp), nil
}

func (s *EmployeeServiceImpl) ListEmployees(ctx context.Context, filter employee.EmployeeFilter) ([]employee.EmployeeResponse, error) {
	employees, err := s.employeeRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]employee.EmployeeResponse, 0, len(employees))
	for _, emp := range employees {
		responses = append(responses, mapToEmployeeResponse(emp))
	}
	return responses, nil
}

func (s *EmployeeServiceImpl) SetSalaryConfiguration(ctx context.Context, req employee.SetSalaryConfigurationRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	if err := s.employeeRepo.UpdateSalary(ctx, req.EmployeeID, req.ToConfiguration()); err != nil {
		return employee.EmployeeResponse{}, err
	}

	slog.Info("salary configuration updated", "employee_id", req.EmployeeID)
	return s.GetEmployee(ctx, req.EmployeeID)
}

func mapToEmployeeResponse(emp employee.Employee) employee.EmployeeResponse {
	resp := employee.EmployeeResponse{
		ID:               emp.ID,
		EmployeeCode:     emp.EmployeeCode,
		FullName:         emp.FullName,
		Department:       emp.Department,
		EmploymentStatus: string(emp.EmploymentStatus),
		HireDate:         emp.HireDate.Format("2006-01-02"),
	}
	if s := emp.Salary; s != nil {
		resp.Salary = &employee.SalaryConfigurationResponse{
			BasicSalary:         s.BasicSalary,
			Allowances:          s.Allowances,
			TotalAllowances:     s.Allowances.Total(),
			TaxRate:             s.TaxRate,
			SocialInsuranceRate: s.SocialInsuranceRate,
			HealthInsuranceRate: s.HealthInsuranceRate,
			OvertimeMultiplier:  s.OvertimeMultiplier,
		}
	}
	return resp
}
