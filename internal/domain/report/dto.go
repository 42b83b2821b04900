package report

import (
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========================================
// PAYROLL REPORT
// ========================================

type PayrollReportRequest struct {
	Month      int     `json:"month"`
	Year       int     `json:"year"`
	Department *string `json:"department,omitempty"`
}

func (r *PayrollReportRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidMonth(r.Month) {
		errs.Add("month", "month must be between 1 and 12")
	}
	if !validator.IsValidYear(r.Year) {
		errs.Add("year", "year must be between 2000 and 2100")
	}

	return errs.Err()
}

// PayrollTotals sums frozen payroll snapshots.
type PayrollTotals struct {
	EmployeeCount   int             `json:"employee_count"`
	TotalBasic      decimal.Decimal `json:"total_basic_salary"`
	TotalAllowances decimal.Decimal `json:"total_allowances"`
	TotalBonuses    decimal.Decimal `json:"total_bonuses"`
	TotalOvertime   decimal.Decimal `json:"total_overtime_pay"`
	TotalGross      decimal.Decimal `json:"total_gross_salary"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	TotalNet        decimal.Decimal `json:"total_net_salary"`
}

type GroupSummary struct {
	Key string `json:"key"`
	PayrollTotals
}

type PayrollReport struct {
	Month         int             `json:"month"`
	Year          int             `json:"year"`
	Totals        PayrollTotals   `json:"totals"`
	AverageSalary decimal.Decimal `json:"average_salary"`
	ByDepartment  []GroupSummary  `json:"by_department"`
	ByStatus      []GroupSummary  `json:"by_status"`
}
