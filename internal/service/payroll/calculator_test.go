package payroll

import (
	"testing"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func baseConfig() employee.SalaryConfiguration {
	return employee.SalaryConfiguration{
		BasicSalary:        dec("3000"),
		Allowances:         employee.Allowances{Transportation: dec("120"), Food: dec("80")},
		TaxRate:            dec("10"),
		OvertimeMultiplier: employee.DefaultOvertimeMultiplier,
	}
}

func TestCalculate_WorkedExample(t *testing.T) {
	agg := payroll.AttendanceAggregate{
		WorkingDays:   22,
		AttendedDays:  20,
		AbsentDays:    2,
		LateDays:      3,
		OvertimeHours: dec("4"),
	}

	calc, err := Calculate(baseConfig(), agg, payroll.Bonuses{})
	require.NoError(t, err)

	assert.Equal(t, "136.36", calc.DailyRate.StringFixed(2))
	assert.Equal(t, "17.05", calc.HourlyRate.StringFixed(2))
	assert.Equal(t, "272.73", calc.AbsenceDeduction.String())
	assert.Equal(t, "2727.27", calc.BasicPay.String())
	assert.Equal(t, "68.18", calc.LateDeductions.String())
	assert.Equal(t, "102.27", calc.OvertimePay.String())
	assert.Equal(t, "200", calc.TotalAllowances.String())
	assert.Equal(t, "3029.55", calc.GrossSalary.String())
	assert.Equal(t, "302.95", calc.Tax.String())
	assert.Equal(t, "371.14", calc.TotalDeductions.String())
	assert.Equal(t, "2658.41", calc.NetSalary.String())
}

func TestCalculate_Insurance(t *testing.T) {
	cfg := baseConfig()
	cfg.SocialInsuranceRate = dec("2")
	cfg.HealthInsuranceRate = dec("1.5")
	agg := payroll.AttendanceAggregate{WorkingDays: 20, AttendedDays: 20}

	calc, err := Calculate(cfg, agg, payroll.Bonuses{Performance: dec("100")})
	require.NoError(t, err)

	// insurance is a share of basic salary, not gross
	assert.Equal(t, "60", calc.SocialInsurance.String())
	assert.Equal(t, "45", calc.HealthInsurance.String())
	assert.Equal(t, "3300", calc.GrossSalary.String())
	assert.Equal(t, "330", calc.Tax.String())
	assert.Equal(t, "435", calc.TotalDeductions.String())
	assert.Equal(t, "2865", calc.NetSalary.String())
}

func TestCalculate_LateGroups(t *testing.T) {
	cases := []struct {
		lateDays int
		want     string
	}{
		{0, "0"},
		{2, "0"},
		{3, "75"},
		{5, "75"},
		{6, "150"},
	}
	for _, c := range cases {
		agg := payroll.AttendanceAggregate{WorkingDays: 20, AttendedDays: 20, LateDays: c.lateDays}
		calc, err := Calculate(baseConfig(), agg, payroll.Bonuses{})
		require.NoError(t, err)
		assert.Equal(t, c.want, calc.LateDeductions.String(), "late days %d", c.lateDays)
	}
}

func TestCalculate_UnpaidLeave(t *testing.T) {
	agg := payroll.AttendanceAggregate{WorkingDays: 20, AttendedDays: 18, AbsentDays: 2, UnpaidLeaveDays: 2}

	calc, err := Calculate(baseConfig(), agg, payroll.Bonuses{})
	require.NoError(t, err)

	assert.Equal(t, "300", calc.UnpaidLeaveDeduction.String())
	assert.Equal(t, "2700", calc.BasicPay.String())
}

func TestCalculate_NegativeNetIsKept(t *testing.T) {
	cfg := baseConfig()
	cfg.Allowances = employee.Allowances{}
	cfg.TaxRate = decimal.Zero
	agg := payroll.AttendanceAggregate{WorkingDays: 20, AbsentDays: 20, UnpaidLeaveDays: 5}

	calc, err := Calculate(cfg, agg, payroll.Bonuses{})
	require.NoError(t, err)

	assert.True(t, calc.GrossSalary.IsZero())
	assert.Equal(t, "-750", calc.NetSalary.String())
}

func TestCalculate_NoWorkingDays(t *testing.T) {
	_, err := Calculate(baseConfig(), payroll.AttendanceAggregate{}, payroll.Bonuses{})
	assert.ErrorIs(t, err, payroll.ErrNoWorkingDays)
}

func TestCalculate_NetIdentity(t *testing.T) {
	cfg := baseConfig()
	cfg.SocialInsuranceRate = dec("3.3")
	agg := payroll.AttendanceAggregate{WorkingDays: 21, AttendedDays: 17, AbsentDays: 4, LateDays: 4, UnpaidLeaveDays: 1, OvertimeHours: dec("2.5")}

	calc, err := Calculate(cfg, agg, payroll.Bonuses{Project: dec("33.33")})
	require.NoError(t, err)

	items := decimal.Sum(calc.Tax, calc.SocialInsurance, calc.HealthInsurance, calc.UnpaidLeaveDeduction, calc.LateDeductions)
	assert.True(t, calc.TotalDeductions.Sub(items).Abs().LessThanOrEqual(dec("0.02")))
	assert.True(t, calc.NetSalary.Equal(calc.GrossSalary.Sub(calc.TotalDeductions)) ||
		calc.NetSalary.Sub(calc.GrossSalary.Sub(calc.TotalDeductions)).Abs().LessThanOrEqual(dec("0.01")))
}
