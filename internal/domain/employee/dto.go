package employee

import (
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type CreateEmployeeRequest struct {
	EmployeeCode string                         `json:"employee_code"`
	FullName     string                         `json:"full_name"`
	Department   string                         `json:"department"`
	HireDate     string                         `json:"hire_date"`
	Salary       *SetSalaryConfigurationRequest `json:"salary,omitempty"`
}

func (r *CreateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeCode) {
		errs.Add("employee_code", "is required")
	}
	if validator.IsEmpty(r.FullName) {
		errs.Add("full_name", "is required")
	}
	if validator.IsEmpty(r.Department) {
		errs.Add("department", "is required")
	}
	if _, ok := validator.IsValidDate(r.HireDate); !ok {
		errs.Add("hire_date", "must be in YYYY-MM-DD format")
	}
	if r.Salary != nil {
		if err := r.Salary.Validate(); err != nil {
			if salaryErrs, ok := err.(validator.ValidationErrors); ok {
				for _, e := range salaryErrs {
					errs.Add("salary."+e.Field, e.Message)
				}
			}
		}
	}

	return errs.Err()
}

type SetSalaryConfigurationRequest struct {
	EmployeeID          string           `json:"-"`
	BasicSalary         decimal.Decimal  `json:"basic_salary"`
	Allowances          Allowances       `json:"allowances"`
	TaxRate             decimal.Decimal  `json:"tax_rate"`
	SocialInsuranceRate decimal.Decimal  `json:"social_insurance_rate"`
	HealthInsuranceRate decimal.Decimal  `json:"health_insurance_rate"`
	OvertimeMultiplier  *decimal.Decimal `json:"overtime_multiplier,omitempty"`
}

func (r *SetSalaryConfigurationRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.BasicSalary.IsNegative() {
		errs.Add("basic_salary", "must be non-negative")
	}

	allowances := map[string]decimal.Decimal{
		"allowances.transportation": r.Allowances.Transportation,
		"allowances.housing":        r.Allowances.Housing,
		"allowances.food":           r.Allowances.Food,
		"allowances.mobile":         r.Allowances.Mobile,
		"allowances.other":          r.Allowances.Other,
	}
	for field, amount := range allowances {
		if amount.IsNegative() {
			errs.Add(field, "must be non-negative")
		}
	}

	if !validator.IsValidPercentage(r.TaxRate) {
		errs.Add("tax_rate", "must be between 0 and 100")
	}
	if !validator.IsValidPercentage(r.SocialInsuranceRate) {
		errs.Add("social_insurance_rate", "must be between 0 and 100")
	}
	if !validator.IsValidPercentage(r.HealthInsuranceRate) {
		errs.Add("health_insurance_rate", "must be between 0 and 100")
	}
	if r.OvertimeMultiplier != nil && !r.OvertimeMultiplier.IsPositive() {
		errs.Add("overtime_multiplier", "must be greater than 0")
	}

	return errs.Err()
}

// ToConfiguration applies defaults and returns the configuration to store.
func (r *SetSalaryConfigurationRequest) ToConfiguration() SalaryConfiguration {
	multiplier := DefaultOvertimeMultiplier
	if r.OvertimeMultiplier != nil {
		multiplier = *r.OvertimeMultiplier
	}
	return SalaryConfiguration{
		BasicSalary:         r.BasicSalary,
		Allowances:          r.Allowances,
		TaxRate:             r.TaxRate,
		SocialInsuranceRate: r.SocialInsuranceRate,
		HealthInsuranceRate: r.HealthInsuranceRate,
		OvertimeMultiplier:  multiplier,
	}
}

type EmployeeFilter struct {
	Department *string
	Status     *EmploymentStatus
	IDs        []string
}

type SalaryConfigurationResponse struct {
	BasicSalary         decimal.Decimal `json:"basic_salary"`
	Allowances          Allowances      `json:"allowances"`
	TotalAllowances     decimal.Decimal `json:"total_allowances"`
	TaxRate             decimal.Decimal `json:"tax_rate"`
	SocialInsuranceRate decimal.Decimal `json:"social_insurance_rate"`
	HealthInsuranceRate decimal.Decimal `json:"health_insurance_rate"`
	OvertimeMultiplier  decimal.Decimal `json:"overtime_multiplier"`
}

type EmployeeResponse struct {
	ID               string                       `json:"id"`
	EmployeeCode     string                       `json:"employee_code"`
	FullName         string                       `json:"full_name"`
	Department       string                       `json:"department"`
	EmploymentStatus string                       `json:"employment_status"`
	HireDate         string                       `json:"hire_date"`
	Salary           *SalaryConfigurationResponse `json:"salary,omitempty"`
}
