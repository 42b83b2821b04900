package payroll

import (
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

const (
	// StandardDailyHours is the length of a regular working day.
	StandardDailyHours = 8

	// LateDaysPerDeduction late arrivals cost LateDeductionFactor of a day's pay.
	LateDaysPerDeduction = 3
)

var (
	hoursPerDay         = decimal.NewFromInt(StandardDailyHours)
	lateDeductionFactor = decimal.RequireFromString("0.5")
	percent             = decimal.NewFromInt(100)
)

// Calculate turns a salary configuration and a month of attendance into pay.
// Arithmetic runs at full precision and money fields are rounded to cents at
// the end. Net salary may be negative.
func Calculate(cfg employee.SalaryConfiguration, agg payroll.AttendanceAggregate, bonuses payroll.Bonuses) (payroll.SalaryCalculation, error) {
	if agg.WorkingDays <= 0 {
		return payroll.SalaryCalculation{}, payroll.ErrNoWorkingDays
	}

	workingDays := decimal.NewFromInt(int64(agg.WorkingDays))
	dailyRate := cfg.BasicSalary.Div(workingDays)
	hourlyRate := cfg.BasicSalary.Div(workingDays.Mul(hoursPerDay))

	absenceDeduction := dailyRate.Mul(decimal.NewFromInt(int64(agg.AbsentDays)))
	basicPay := cfg.BasicSalary.Sub(absenceDeduction)

	lateGroups := decimal.NewFromInt(int64(agg.LateDays / LateDaysPerDeduction))
	lateDeductions := lateGroups.Mul(dailyRate).Mul(lateDeductionFactor)

	overtimePay := agg.OvertimeHours.Mul(hourlyRate).Mul(cfg.OvertimeMultiplier)
	unpaidLeave := dailyRate.Mul(decimal.NewFromInt(int64(agg.UnpaidLeaveDays)))

	totalAllowances := cfg.Allowances.Total()
	totalBonuses := bonuses.Total()
	gross := decimal.Sum(basicPay, totalAllowances, totalBonuses, overtimePay)

	tax := gross.Mul(cfg.TaxRate).Div(percent)
	social := cfg.BasicSalary.Mul(cfg.SocialInsuranceRate).Div(percent)
	health := cfg.BasicSalary.Mul(cfg.HealthInsuranceRate).Div(percent)

	totalDeductions := decimal.Sum(tax, social, health, unpaidLeave, lateDeductions)
	net := gross.Sub(totalDeductions)

	return payroll.SalaryCalculation{
		DailyRate:            dailyRate,
		HourlyRate:           hourlyRate,
		BasicPay:             basicPay.Round(2),
		AbsenceDeduction:     absenceDeduction.Round(2),
		LateDeductions:       lateDeductions.Round(2),
		OvertimePay:          overtimePay.Round(2),
		UnpaidLeaveDeduction: unpaidLeave.Round(2),
		TotalAllowances:      totalAllowances.Round(2),
		TotalBonuses:         totalBonuses.Round(2),
		GrossSalary:          gross.Round(2),
		Tax:                  tax.Round(2),
		SocialInsurance:      social.Round(2),
		HealthInsurance:      health.Round(2),
		TotalDeductions:      totalDeductions.Round(2),
		NetSalary:            net.Round(2),
	}, nil
}
