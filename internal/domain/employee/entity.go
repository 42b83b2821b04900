package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

type Employee struct {
	ID               string
	EmployeeCode     string
	FullName         string
	Department       string
	EmploymentStatus EmploymentStatus
	HireDate         time.Time
	Salary           *SalaryConfiguration
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type EmploymentStatus string

const (
	EmploymentStatusActive   EmploymentStatus = "active"
	EmploymentStatusInactive EmploymentStatus = "inactive"
)

// DefaultOvertimeMultiplier applies when a salary configuration omits one.
var DefaultOvertimeMultiplier = decimal.RequireFromString("1.5")

// SalaryConfiguration is owned by the employee and copied into every payroll
// generated for them. Rates are percentages.
type SalaryConfiguration struct {
	BasicSalary         decimal.Decimal
	Allowances          Allowances
	TaxRate             decimal.Decimal
	SocialInsuranceRate decimal.Decimal
	HealthInsuranceRate decimal.Decimal
	OvertimeMultiplier  decimal.Decimal
}

type Allowances struct {
	Transportation decimal.Decimal `json:"transportation"`
	Housing        decimal.Decimal `json:"housing"`
	Food           decimal.Decimal `json:"food"`
	Mobile         decimal.Decimal `json:"mobile"`
	Other          decimal.Decimal `json:"other"`
}

// Total sums the five allowance amounts.
func (a Allowances) Total() decimal.Decimal {
	return decimal.Sum(a.Transportation, a.Housing, a.Food, a.Mobile, a.Other)
}

// HasSalary reports whether the employee can be paid.
func (e Employee) HasSalary() bool {
	return e.Salary != nil
}
