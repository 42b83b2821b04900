package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/storage"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

type PayrollServiceImpl struct {
	transactor      database.Transactor
	payrollRepo     payroll.PayrollRepository
	employeeRepo    employee.EmployeeRepository
	aggregator      payroll.Aggregator
	archive         storage.FileStorage
	bulkConcurrency int
	now             func() time.Time
}

// NewPayrollService wires the payroll lifecycle. archive may be nil, in which
// case payslips are always rendered on demand.
func NewPayrollService(
	transactor database.Transactor,
	payrollRepo payroll.PayrollRepository,
	employeeRepo employee.EmployeeRepository,
	aggregator payroll.Aggregator,
	archive storage.FileStorage,
	bulkConcurrency int,
) payroll.PayrollService {
	if bulkConcurrency < 1 {
		bulkConcurrency = 1
	}
	return &PayrollServiceImpl{
		transactor:      transactor,
		payrollRepo:     payrollRepo,
		employeeRepo:    employeeRepo,
		aggregator:      aggregator,
		archive:         archive,
		bulkConcurrency: bulkConcurrency,
		now:             time.Now,
	}
}

// ========== GENERATION ==========

func (s *PayrollServiceImpl) GeneratePayroll(ctx context.Context, req payroll.GeneratePayrollRequest) (payroll.PayrollResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollResponse{}, err
	}

	record, err := s.generate(ctx, req.EmployeeID, req.PeriodMonth, req.PeriodYear, req.Bonuses, req.Notes)
	if err != nil {
		return payroll.PayrollResponse{}, err
	}
	return mapToPayrollResponse(record), nil
}

// generate aggregates, calculates and stores one draft payroll. The pre-check
// gives a clean error for the common case; the unique constraint decides races.
func (s *PayrollServiceImpl) generate(ctx context.Context, employeeID string, month, year int, bonuses *payroll.Bonuses, notes *string) (payroll.Payroll, error) {
	emp, err := s.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		return payroll.Payroll{}, err
	}
	if !emp.HasSalary() {
		return payroll.Payroll{}, payroll.ErrMissingSalaryConfig
	}

	_, err = s.payrollRepo.GetByEmployeePeriod(ctx, employeeID, month, year)
	switch {
	case err == nil:
		return payroll.Payroll{}, payroll.ErrDuplicatePayroll
	case !errors.Is(err, payroll.ErrPayrollNotFound):
		return payroll.Payroll{}, err
	}

	agg, err := s.aggregator.Aggregate(ctx, employeeID, month, year)
	if err != nil {
		return payroll.Payroll{}, err
	}

	var b payroll.Bonuses
	if bonuses != nil {
		b = *bonuses
	}
	calc, err := Calculate(*emp.Salary, agg, b)
	if err != nil {
		return payroll.Payroll{}, err
	}

	record, err := s.payrollRepo.Create(ctx, buildPayroll(emp, month, year, agg, calc, b, notes))
	if err != nil {
		return payroll.Payroll{}, err
	}

	slog.Info("payroll generated",
		"payroll_id", record.ID,
		"employee_id", employeeID,
		"period", fmt.Sprintf("%d-%02d", year, month),
		"net_salary", record.NetSalary.String(),
	)
	if record.NetSalary.IsNegative() {
		slog.Warn("payroll has negative net salary", "payroll_id", record.ID, "employee_id", employeeID)
	}
	return record, nil
}

func buildPayroll(
	emp employee.Employee,
	month, year int,
	agg payroll.AttendanceAggregate,
	calc payroll.SalaryCalculation,
	bonuses payroll.Bonuses,
	notes *string,
) payroll.Payroll {
	cfg := emp.Salary
	return payroll.Payroll{
		EmployeeID:      emp.ID,
		PeriodMonth:     month,
		PeriodYear:      year,
		BasicSalary:     cfg.BasicSalary,
		BasicPay:        calc.BasicPay,
		Allowances:      cfg.Allowances,
		TotalAllowances: calc.TotalAllowances,
		WorkingDays:     agg.WorkingDays,
		AttendedDays:    agg.AttendedDays,
		AbsentDays:      agg.AbsentDays,
		LateDays:        agg.LateDays,
		PaidLeaveDays:   agg.PaidLeaveDays,
		UnpaidLeaveDays: agg.UnpaidLeaveDays,
		LateDeductions:  calc.LateDeductions,
		Bonuses:         bonuses,
		OvertimeHours:   agg.OvertimeHours.Round(2),
		OvertimePay:     calc.OvertimePay,
		Deductions: payroll.Deductions{
			Tax:             calc.Tax,
			SocialInsurance: calc.SocialInsurance,
			HealthInsurance: calc.HealthInsurance,
			UnpaidLeave:     calc.UnpaidLeaveDeduction,
		},
		GrossSalary:     calc.GrossSalary,
		TotalDeductions: calc.TotalDeductions,
		NetSalary:       calc.NetSalary,
		Status:          payroll.PayrollStatusDraft,
		Notes:           notes,
	}
}

// ========== QUERIES ==========

func (s *PayrollServiceImpl) GetPayroll(ctx context.Context, id string) (payroll.PayrollResponse, error) {
	record, err := s.payrollRepo.GetByID(ctx, id)
	if err != nil {
		return payroll.PayrollResponse{}, err
	}
	return mapToPayrollResponse(record), nil
}

func (s *PayrollServiceImpl) ListPayrolls(ctx context.Context, filter payroll.PayrollFilter) (payroll.ListPayrollResponse, error) {
	var errs validator.ValidationErrors
	if filter.PeriodMonth != nil && !validator.IsValidMonth(*filter.PeriodMonth) {
		errs.Add("month", "must be between 1 and 12")
	}
	if filter.PeriodYear != nil && !validator.IsValidYear(*filter.PeriodYear) {
		errs.Add("year", "must be between 2000 and 2100")
	}
	if filter.Status != nil && !filter.Status.IsValid() {
		errs.Add("status", "must be one of draft, pending, approved, paid")
	}
	if err := errs.Err(); err != nil {
		return payroll.ListPayrollResponse{}, err
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultPageLimit
	}
	if filter.Limit > maxPageLimit {
		filter.Limit = maxPageLimit
	}

	records, total, err := s.payrollRepo.List(ctx, filter)
	if err != nil {
		return payroll.ListPayrollResponse{}, err
	}

	return payroll.ListPayrollResponse{
		Payrolls:   mapToPayrollResponses(records),
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
	}, nil
}

// ========== LIFECYCLE ==========

func (s *PayrollServiceImpl) UpdatePayroll(ctx context.Context, req payroll.UpdatePayrollRequest) (payroll.PayrollResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollResponse{}, err
	}

	var updated payroll.Payroll
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		record, err := s.payrollRepo.GetByIDForUpdate(ctx, req.ID)
		if err != nil {
			return err
		}
		if err := record.CanUpdate(); err != nil {
			return err
		}

		prev := record
		if req.Bonuses != nil {
			record.Bonuses = req.Bonuses.ApplyTo(record.Bonuses)
		}
		if req.Deductions != nil {
			record.Deductions = req.Deductions.ApplyTo(record.Deductions)
		}
		if req.Notes != nil {
			record.Notes = req.Notes
		}
		if req.LateDeductions != nil {
			record.LateDeductions = *req.LateDeductions
		}
		if req.OvertimeHours != nil {
			record.OvertimeHours = *req.OvertimeHours
		}
		if req.OvertimePay != nil {
			record.OvertimePay = *req.OvertimePay
		}
		if req.ChangesAmounts() {
			record.ApplyAdjustments(prev)
		}

		if err := s.payrollRepo.Update(ctx, record); err != nil {
			return err
		}
		updated = record
		return nil
	})
	if err != nil {
		return payroll.PayrollResponse{}, err
	}

	return mapToPayrollResponse(updated), nil
}

func (s *PayrollServiceImpl) ApprovePayroll(ctx context.Context, req payroll.ApprovePayrollRequest) (payroll.PayrollResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollResponse{}, err
	}

	var approved payroll.Payroll
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		record, err := s.payrollRepo.GetByIDForUpdate(ctx, req.ID)
		if err != nil {
			return err
		}
		if err := record.Approve(req.ApproverID, s.now(), req.Notes); err != nil {
			return err
		}
		if err := s.payrollRepo.Update(ctx, record); err != nil {
			return err
		}
		approved = record
		return nil
	})
	if err != nil {
		return payroll.PayrollResponse{}, err
	}

	slog.Info("payroll approved", "payroll_id", approved.ID, "approved_by", req.ApproverID)
	return mapToPayrollResponse(approved), nil
}

func (s *PayrollServiceImpl) MarkPaid(ctx context.Context, req payroll.MarkPaidRequest) (payroll.PayrollResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollResponse{}, err
	}

	paidAt := s.now()
	if req.PaymentDate != nil {
		if d, ok := validator.IsValidDate(*req.PaymentDate); ok {
			paidAt = d
		} else if t, ok := validator.IsValidDateTime(*req.PaymentDate); ok {
			paidAt = t
		}
	}

	var paid payroll.Payroll
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		record, err := s.payrollRepo.GetByIDForUpdate(ctx, req.ID)
		if err != nil {
			return err
		}
		if err := record.MarkPaid(paidAt); err != nil {
			return err
		}
		if err := s.payrollRepo.Update(ctx, record); err != nil {
			return err
		}
		paid = record
		return nil
	})
	if err != nil {
		return payroll.PayrollResponse{}, err
	}

	slog.Info("payroll marked paid", "payroll_id", paid.ID, "payment_date", paidAt.Format(time.RFC3339))
	if err := s.archivePayslip(ctx, paid); err != nil {
		slog.Warn("failed to archive payslip", "payroll_id", paid.ID, "error", err)
	}
	return mapToPayrollResponse(paid), nil
}

func (s *PayrollServiceImpl) DeletePayroll(ctx context.Context, id string) error {
	return s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		record, err := s.payrollRepo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := record.CanDelete(); err != nil {
			return err
		}
		return s.payrollRepo.Delete(ctx, id)
	})
}

// ========== MAPPING ==========

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func mapToPayrollResponse(r payroll.Payroll) payroll.PayrollResponse {
	return payroll.PayrollResponse{
		ID:              r.ID,
		EmployeeID:      r.EmployeeID,
		EmployeeName:    derefString(r.EmployeeName),
		EmployeeCode:    derefString(r.EmployeeCode),
		Department:      derefString(r.Department),
		PeriodMonth:     r.PeriodMonth,
		PeriodYear:      r.PeriodYear,
		BasicSalary:     r.BasicSalary,
		BasicPay:        r.BasicPay,
		Allowances:      r.Allowances,
		TotalAllowances: r.TotalAllowances,
		WorkingDays:     r.WorkingDays,
		AttendedDays:    r.AttendedDays,
		AbsentDays:      r.AbsentDays,
		LateDays:        r.LateDays,
		PaidLeaveDays:   r.PaidLeaveDays,
		UnpaidLeaveDays: r.UnpaidLeaveDays,
		LateDeductions:  r.LateDeductions,
		Bonuses:         r.Bonuses,
		OvertimeHours:   r.OvertimeHours,
		OvertimePay:     r.OvertimePay,
		Deductions:      r.Deductions,
		GrossSalary:     r.GrossSalary,
		TotalDeductions: r.TotalDeductions,
		NetSalary:       r.NetSalary,
		Status:          string(r.Status),
		ApprovedBy:      r.ApprovedBy,
		ApprovalDate:    formatTimePtr(r.ApprovalDate),
		PaymentDate:     formatTimePtr(r.PaymentDate),
		Notes:           r.Notes,
		CreatedAt:       r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       r.UpdatedAt.Format(time.RFC3339),
	}
}

func mapToPayrollResponses(records []payroll.Payroll) []payroll.PayrollResponse {
	responses := make([]payroll.PayrollResponse, 0, len(records))
	for _, r := range records {
		responses = append(responses, mapToPayrollResponse(r))
	}
	return responses
}
