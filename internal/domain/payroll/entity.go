package payroll

import (
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/shopspring/decimal"
)

// PayrollStatus enum
type PayrollStatus string

const (
	PayrollStatusDraft    PayrollStatus = "draft"
	PayrollStatusPending  PayrollStatus = "pending"
	PayrollStatusApproved PayrollStatus = "approved"
	PayrollStatusPaid     PayrollStatus = "paid"
)

func (s PayrollStatus) IsValid() bool {
	switch s {
	case PayrollStatusDraft, PayrollStatusPending, PayrollStatusApproved, PayrollStatusPaid:
		return true
	}
	return false
}

// IsFinalized reports whether monetary values are frozen.
func (s PayrollStatus) IsFinalized() bool {
	return s == PayrollStatusApproved || s == PayrollStatusPaid
}

type Bonuses struct {
	Performance decimal.Decimal `json:"performance"`
	Project     decimal.Decimal `json:"project"`
	Other       decimal.Decimal `json:"other"`
}

func (b Bonuses) Total() decimal.Decimal {
	return decimal.Sum(b.Performance, b.Project, b.Other)
}

type Deductions struct {
	Tax             decimal.Decimal `json:"tax"`
	SocialInsurance decimal.Decimal `json:"social_insurance"`
	HealthInsurance decimal.Decimal `json:"health_insurance"`
	UnpaidLeave     decimal.Decimal `json:"unpaid_leave"`
	Other           decimal.Decimal `json:"other"`
}

func (d Deductions) Total() decimal.Decimal {
	return decimal.Sum(d.Tax, d.SocialInsurance, d.HealthInsurance, d.UnpaidLeave, d.Other)
}

// Payroll is the frozen salary record of one employee for one month.
// It is never re-derived from attendance or leave data after generation.
type Payroll struct {
	ID              string
	EmployeeID      string
	PeriodMonth     int
	PeriodYear      int
	BasicSalary     decimal.Decimal
	BasicPay        decimal.Decimal // basic salary less absence deduction
	Allowances      employee.Allowances
	TotalAllowances decimal.Decimal
	WorkingDays     int
	AttendedDays    int
	AbsentDays      int
	LateDays        int
	PaidLeaveDays   int
	UnpaidLeaveDays int
	LateDeductions  decimal.Decimal
	Bonuses         Bonuses
	OvertimeHours   decimal.Decimal
	OvertimePay     decimal.Decimal
	Deductions      Deductions
	GrossSalary     decimal.Decimal
	TotalDeductions decimal.Decimal
	NetSalary       decimal.Decimal
	Status          PayrollStatus
	ApprovedBy      *string
	ApprovalDate    *time.Time
	PaymentDate     *time.Time
	Notes           *string
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// Joined fields
	EmployeeName *string
	EmployeeCode *string
	Department   *string
}

// Recalculate rebuilds gross, total deductions and net from the stored
// components. Tax is not re-derived from the new gross.
func (p *Payroll) Recalculate() {
	p.TotalAllowances = p.Allowances.Total().Round(2)
	p.GrossSalary = decimal.Sum(p.BasicPay, p.TotalAllowances, p.Bonuses.Total(), p.OvertimePay).Round(2)
	p.TotalDeductions = p.Deductions.Total().Add(p.LateDeductions).Round(2)
	p.NetSalary = p.GrossSalary.Sub(p.TotalDeductions)
}

// ApplyAdjustments moves gross, total deductions and net by the change in the
// editable components since prev. Totals stay as generated when nothing
// changed, so rounding done at generation is kept.
func (p *Payroll) ApplyAdjustments(prev Payroll) {
	earnings := decimal.Sum(p.Bonuses.Total(), p.OvertimePay).
		Sub(decimal.Sum(prev.Bonuses.Total(), prev.OvertimePay))
	deductions := p.Deductions.Total().Add(p.LateDeductions).
		Sub(prev.Deductions.Total().Add(prev.LateDeductions))

	p.GrossSalary = prev.GrossSalary.Add(earnings).Round(2)
	p.TotalDeductions = prev.TotalDeductions.Add(deductions).Round(2)
	p.NetSalary = p.GrossSalary.Sub(p.TotalDeductions)
}

func (p *Payroll) CanUpdate() error {
	if p.Status.IsFinalized() {
		return ErrCannotUpdateFinalized
	}
	return nil
}

// Approve moves a draft or pending payroll to approved.
func (p *Payroll) Approve(approverID string, at time.Time, notes *string) error {
	if p.Status.IsFinalized() {
		return ErrAlreadyFinalized
	}
	p.Status = PayrollStatusApproved
	p.ApprovedBy = &approverID
	p.ApprovalDate = &at
	if notes != nil {
		p.Notes = notes
	}
	return nil
}

// MarkPaid moves an approved payroll to paid.
func (p *Payroll) MarkPaid(paidAt time.Time) error {
	if p.Status != PayrollStatusApproved {
		return ErrNotApproved
	}
	p.Status = PayrollStatusPaid
	p.PaymentDate = &paidAt
	return nil
}

func (p *Payroll) CanDelete() error {
	if p.Status != PayrollStatusDraft {
		return ErrCannotDeleteFinalized
	}
	return nil
}

// AttendanceAggregate is the month of attendance and leave reduced to counts.
type AttendanceAggregate struct {
	WorkingDays      int
	AttendedDays     int // raw attended days plus paid leave days
	AbsentDays       int
	PaidLeaveDays    int
	UnpaidLeaveDays  int
	LateDays         int
	TotalHoursWorked decimal.Decimal
	OvertimeHours    decimal.Decimal
}

// SalaryCalculation is the calculator output. Money fields are rounded to cents;
// rates keep full precision.
type SalaryCalculation struct {
	DailyRate            decimal.Decimal
	HourlyRate           decimal.Decimal
	BasicPay             decimal.Decimal
	AbsenceDeduction     decimal.Decimal
	LateDeductions       decimal.Decimal
	OvertimePay          decimal.Decimal
	UnpaidLeaveDeduction decimal.Decimal
	TotalAllowances      decimal.Decimal
	TotalBonuses         decimal.Decimal
	GrossSalary          decimal.Decimal
	Tax                  decimal.Decimal
	SocialInsurance      decimal.Decimal
	HealthInsurance      decimal.Decimal
	TotalDeductions      decimal.Decimal
	NetSalary            decimal.Decimal
}
