package payroll

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/payslip"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/storage"
	"github.com/shopspring/decimal"
)

// Payslip returns the archived PDF of a paid payroll, or renders one from the
// stored snapshot.
func (s *PayrollServiceImpl) Payslip(ctx context.Context, id string) ([]byte, string, error) {
	record, err := s.payrollRepo.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	name := payslipFileName(record)

	if s.archive != nil && record.Status == payroll.PayrollStatusPaid {
		rc, err := s.archive.Open(ctx, payslipKey(record))
		switch {
		case err == nil:
			defer rc.Close()
			data, err := io.ReadAll(rc)
			if err != nil {
				return nil, "", fmt.Errorf("failed to read archived payslip: %w", err)
			}
			return data, name, nil
		case !errors.Is(err, storage.ErrNotFound):
			return nil, "", err
		}
	}

	data, err := payslip.Render(payslipDocument(record, s.now()))
	if err != nil {
		return nil, "", err
	}
	return data, name, nil
}

func (s *PayrollServiceImpl) archivePayslip(ctx context.Context, record payroll.Payroll) error {
	if s.archive == nil {
		return nil
	}
	data, err := payslip.Render(payslipDocument(record, s.now()))
	if err != nil {
		return err
	}
	_, err = s.archive.Put(ctx, payslipKey(record), bytes.NewReader(data), "application/pdf")
	return err
}

func payslipKey(r payroll.Payroll) string {
	return fmt.Sprintf("%d/%02d/%s.pdf", r.PeriodYear, r.PeriodMonth, r.ID)
}

func payslipFileName(r payroll.Payroll) string {
	code := derefString(r.EmployeeCode)
	if code == "" {
		code = r.EmployeeID
	}
	return fmt.Sprintf("payslip-%s-%d-%02d.pdf", code, r.PeriodYear, r.PeriodMonth)
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func payslipDocument(r payroll.Payroll, generatedAt time.Time) payslip.Document {
	period := time.Date(r.PeriodYear, time.Month(r.PeriodMonth), 1, 0, 0, 0, 0, time.UTC)

	details := []payslip.Field{
		{Label: "Employee", Value: fmt.Sprintf("%s (%s)", derefString(r.EmployeeName), derefString(r.EmployeeCode))},
		{Label: "Department", Value: derefString(r.Department)},
		{Label: "Status", Value: string(r.Status)},
		{Label: "Working days", Value: fmt.Sprintf("%d", r.WorkingDays)},
		{Label: "Attended days", Value: fmt.Sprintf("%d (paid leave %d)", r.AttendedDays, r.PaidLeaveDays)},
		{Label: "Absent days", Value: fmt.Sprintf("%d", r.AbsentDays)},
		{Label: "Unpaid leave days", Value: fmt.Sprintf("%d", r.UnpaidLeaveDays)},
		{Label: "Late days", Value: fmt.Sprintf("%d", r.LateDays)},
	}
	if r.PaymentDate != nil {
		details = append(details, payslip.Field{Label: "Paid on", Value: r.PaymentDate.Format("2006-01-02")})
	}

	a := r.Allowances
	earnings := []payslip.Line{
		{Label: "Basic salary", Amount: money(r.BasicSalary)},
		{Label: "Basic pay after absences", Amount: money(r.BasicPay)},
		{Label: "Transportation allowance", Amount: money(a.Transportation)},
		{Label: "Housing allowance", Amount: money(a.Housing)},
		{Label: "Food allowance", Amount: money(a.Food)},
		{Label: "Mobile allowance", Amount: money(a.Mobile)},
		{Label: "Other allowance", Amount: money(a.Other)},
		{Label: "Bonuses", Amount: money(r.Bonuses.Total())},
		{Label: fmt.Sprintf("Overtime (%s h)", r.OvertimeHours.StringFixed(2)), Amount: money(r.OvertimePay)},
	}

	d := r.Deductions
	deductions := []payslip.Line{
		{Label: "Tax", Amount: money(d.Tax)},
		{Label: "Social insurance", Amount: money(d.SocialInsurance)},
		{Label: "Health insurance", Amount: money(d.HealthInsurance)},
		{Label: "Unpaid leave", Amount: money(d.UnpaidLeave)},
		{Label: "Late arrivals", Amount: money(r.LateDeductions)},
		{Label: "Other", Amount: money(d.Other)},
	}

	return payslip.Document{
		Title:      "Payslip",
		Period:     period.Format("January 2006"),
		Details:    details,
		Earnings:   earnings,
		Deductions: deductions,
		Totals: []payslip.Line{
			{Label: "Gross salary", Amount: money(r.GrossSalary)},
			{Label: "Total deductions", Amount: money(r.TotalDeductions)},
			{Label: "Net salary", Amount: money(r.NetSalary)},
		},
		Footer:    fmt.Sprintf("Payroll %s, generated %s.", r.ID, generatedAt.UTC().Format(time.RFC3339)),
		CreatedAt: generatedAt,
	}
}
