package payroll

import (
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== GENERATION DTOs ==========

type GeneratePayrollRequest struct {
	EmployeeID  string   `json:"employee_id"`
	PeriodMonth int      `json:"period_month"`
	PeriodYear  int      `json:"period_year"`
	Bonuses     *Bonuses `json:"bonuses,omitempty"`
	Notes       *string  `json:"notes,omitempty"`
}

func (r *GeneratePayrollRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs.Add("employee_id", "is required")
	}
	validatePeriod(&errs, r.PeriodMonth, r.PeriodYear)
	if r.Bonuses != nil {
		validateBonuses(&errs, *r.Bonuses)
	}

	return errs.Err()
}

type BulkGeneratePayrollRequest struct {
	PeriodMonth int      `json:"period_month"`
	PeriodYear  int      `json:"period_year"`
	EmployeeIDs []string `json:"employee_ids,omitempty"` // Empty = all active employees
	Notes       *string  `json:"notes,omitempty"`
}

func (r *BulkGeneratePayrollRequest) Validate() error {
	var errs validator.ValidationErrors

	validatePeriod(&errs, r.PeriodMonth, r.PeriodYear)

	return errs.Err()
}

type BulkFailure struct {
	EmployeeID string `json:"employee_id"`
	Code       string `json:"code"`
	Reason     string `json:"reason"`
}

type BulkGeneratePayrollResponse struct {
	PeriodMonth int               `json:"period_month"`
	PeriodYear  int               `json:"period_year"`
	Success     []PayrollResponse `json:"success"`
	Failed      []BulkFailure     `json:"failed"`
}

// ========== LIFECYCLE DTOs ==========

// UpdatePayrollRequest patches the editable part of a draft or pending payroll.
type UpdatePayrollRequest struct {
	ID             string           `json:"-"`
	Bonuses        *BonusesPatch    `json:"bonuses,omitempty"`
	Deductions     *DeductionsPatch `json:"deductions,omitempty"`
	Notes          *string          `json:"notes,omitempty"`
	LateDeductions *decimal.Decimal `json:"late_deductions,omitempty"`
	OvertimeHours  *decimal.Decimal `json:"overtime_hours,omitempty"`
	OvertimePay    *decimal.Decimal `json:"overtime_pay,omitempty"`
}

func (r *UpdatePayrollRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs.Add("id", "is required")
	}
	if r.Bonuses != nil {
		b := r.Bonuses
		validateOptionalAmounts(&errs, map[string]*decimal.Decimal{
			"bonuses.performance": b.Performance,
			"bonuses.project":     b.Project,
			"bonuses.other":       b.Other,
		})
	}
	if r.Deductions != nil {
		d := r.Deductions
		validateOptionalAmounts(&errs, map[string]*decimal.Decimal{
			"deductions.tax":              d.Tax,
			"deductions.social_insurance": d.SocialInsurance,
			"deductions.health_insurance": d.HealthInsurance,
			"deductions.unpaid_leave":     d.UnpaidLeave,
			"deductions.other":            d.Other,
		})
	}
	if r.LateDeductions != nil && r.LateDeductions.IsNegative() {
		errs.Add("late_deductions", "must be non-negative")
	}
	if r.OvertimeHours != nil && r.OvertimeHours.IsNegative() {
		errs.Add("overtime_hours", "must be non-negative")
	}
	if r.OvertimePay != nil && r.OvertimePay.IsNegative() {
		errs.Add("overtime_pay", "must be non-negative")
	}

	return errs.Err()
}

// BonusesPatch carries only the bonus items a caller sent.
type BonusesPatch struct {
	Performance *decimal.Decimal `json:"performance,omitempty"`
	Project     *decimal.Decimal `json:"project,omitempty"`
	Other       *decimal.Decimal `json:"other,omitempty"`
}

// ApplyTo overwrites the items present in the patch and keeps the rest.
func (p BonusesPatch) ApplyTo(b Bonuses) Bonuses {
	setIfPresent(&b.Performance, p.Performance)
	setIfPresent(&b.Project, p.Project)
	setIfPresent(&b.Other, p.Other)
	return b
}

// DeductionsPatch carries only the deduction items a caller sent.
type DeductionsPatch struct {
	Tax             *decimal.Decimal `json:"tax,omitempty"`
	SocialInsurance *decimal.Decimal `json:"social_insurance,omitempty"`
	HealthInsurance *decimal.Decimal `json:"health_insurance,omitempty"`
	UnpaidLeave     *decimal.Decimal `json:"unpaid_leave,omitempty"`
	Other           *decimal.Decimal `json:"other,omitempty"`
}

func (p DeductionsPatch) ApplyTo(d Deductions) Deductions {
	setIfPresent(&d.Tax, p.Tax)
	setIfPresent(&d.SocialInsurance, p.SocialInsurance)
	setIfPresent(&d.HealthInsurance, p.HealthInsurance)
	setIfPresent(&d.UnpaidLeave, p.UnpaidLeave)
	setIfPresent(&d.Other, p.Other)
	return d
}

func setIfPresent(dst *decimal.Decimal, v *decimal.Decimal) {
	if v != nil {
		*dst = *v
	}
}

// ChangesAmounts reports whether the patch touches a monetary component.
func (r *UpdatePayrollRequest) ChangesAmounts() bool {
	return r.Bonuses != nil || r.Deductions != nil || r.LateDeductions != nil || r.OvertimePay != nil
}

type ApprovePayrollRequest struct {
	ID         string  `json:"-"`
	ApproverID string  `json:"-"`
	Notes      *string `json:"notes,omitempty"`
}

func (r *ApprovePayrollRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs.Add("id", "is required")
	}
	if validator.IsEmpty(r.ApproverID) {
		errs.Add("approver_id", "is required")
	}

	return errs.Err()
}

type MarkPaidRequest struct {
	ID          string  `json:"-"`
	PaymentDate *string `json:"payment_date,omitempty"` // YYYY-MM-DD or RFC3339, defaults to now
}

func (r *MarkPaidRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs.Add("id", "is required")
	}
	if r.PaymentDate != nil {
		_, okDate := validator.IsValidDate(*r.PaymentDate)
		_, okDateTime := validator.IsValidDateTime(*r.PaymentDate)
		if !okDate && !okDateTime {
			errs.Add("payment_date", "must be YYYY-MM-DD or an RFC3339 timestamp")
		}
	}

	return errs.Err()
}

// ========== QUERY DTOs ==========

type PayrollFilter struct {
	PeriodMonth *int
	PeriodYear  *int
	Status      *PayrollStatus
	EmployeeID  *string
	Department  *string
	Page        int
	Limit       int
	SortBy      string
	SortOrder   string
}

type PayrollResponse struct {
	ID              string              `json:"id"`
	EmployeeID      string              `json:"employee_id"`
	EmployeeName    string              `json:"employee_name,omitempty"`
	EmployeeCode    string              `json:"employee_code,omitempty"`
	Department      string              `json:"department,omitempty"`
	PeriodMonth     int                 `json:"period_month"`
	PeriodYear      int                 `json:"period_year"`
	BasicSalary     decimal.Decimal     `json:"basic_salary"`
	BasicPay        decimal.Decimal     `json:"basic_pay"`
	Allowances      employee.Allowances `json:"allowances"`
	TotalAllowances decimal.Decimal     `json:"total_allowances"`
	WorkingDays     int                 `json:"working_days"`
	AttendedDays    int                 `json:"attended_days"`
	AbsentDays      int                 `json:"absent_days"`
	LateDays        int                 `json:"late_days"`
	PaidLeaveDays   int                 `json:"paid_leave_days"`
	UnpaidLeaveDays int                 `json:"unpaid_leave_days"`
	LateDeductions  decimal.Decimal     `json:"late_deductions"`
	Bonuses         Bonuses             `json:"bonuses"`
	OvertimeHours   decimal.Decimal     `json:"overtime_hours"`
	OvertimePay     decimal.Decimal     `json:"overtime_pay"`
	Deductions      Deductions          `json:"deductions"`
	GrossSalary     decimal.Decimal     `json:"gross_salary"`
	TotalDeductions decimal.Decimal     `json:"total_deductions"`
	NetSalary       decimal.Decimal     `json:"net_salary"`
	Status          string              `json:"status"`
	ApprovedBy      *string             `json:"approved_by,omitempty"`
	ApprovalDate    *string             `json:"approval_date,omitempty"`
	PaymentDate     *string             `json:"payment_date,omitempty"`
	Notes           *string             `json:"notes,omitempty"`
	CreatedAt       string              `json:"created_at"`
	UpdatedAt       string              `json:"updated_at"`
}

type ListPayrollResponse struct {
	Payrolls   []PayrollResponse `json:"payrolls"`
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
}

func validatePeriod(errs *validator.ValidationErrors, month, year int) {
	if !validator.IsValidMonth(month) {
		errs.Add("period_month", "must be between 1 and 12")
	}
	if !validator.IsValidYear(year) {
		errs.Add("period_year", "must be between 2000 and 2100")
	}
}

func validateBonuses(errs *validator.ValidationErrors, b Bonuses) {
	if b.Performance.IsNegative() {
		errs.Add("bonuses.performance", "must be non-negative")
	}
	if b.Project.IsNegative() {
		errs.Add("bonuses.project", "must be non-negative")
	}
	if b.Other.IsNegative() {
		errs.Add("bonuses.other", "must be non-negative")
	}
}

func validateOptionalAmounts(errs *validator.ValidationErrors, amounts map[string]*decimal.Decimal) {
	for field, amount := range amounts {
		if amount != nil && amount.IsNegative() {
			errs.Add(field, "must be non-negative")
		}
	}
}
