package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
)

// PayrollJobs contains payroll-related cron jobs
type PayrollJobs struct {
	payrollService payroll.PayrollService
	now            func() time.Time
}

func NewPayrollJobs(payrollService payroll.PayrollService) *PayrollJobs {
	return &PayrollJobs{
		payrollService: payrollService,
		now:            time.Now,
	}
}

// RegisterJobs registers the monthly draft generation on schedule, e.g. "0 2 1 * *".
func (j *PayrollJobs) RegisterJobs(scheduler *Scheduler, schedule string) error {
	return scheduler.AddJob("generate_monthly_payrolls", schedule, j.GeneratePreviousMonth)
}

// GeneratePreviousMonth drafts payrolls for every active employee for the month
// before now. Employees that already have a payroll show up as duplicates.
func (j *PayrollJobs) GeneratePreviousMonth(ctx context.Context) error {
	month, year := previousMonth(j.now().UTC())
	slog.Info("Cron: Starting monthly payroll generation", "month", month, "year", year)

	resp, err := j.payrollService.BulkGeneratePayroll(ctx, payroll.BulkGeneratePayrollRequest{
		PeriodMonth: month,
		PeriodYear:  year,
	})
	if err != nil {
		return fmt.Errorf("failed to generate payrolls for %d-%02d: %w", year, month, err)
	}

	for _, f := range resp.Failed {
		slog.Warn("Cron: payroll not generated", "employee_id", f.EmployeeID, "code", f.Code, "reason", f.Reason)
	}
	slog.Info("Cron: Monthly payroll generation finished",
		"month", month,
		"year", year,
		"generated", len(resp.Success),
		"failed", len(resp.Failed),
	)
	return nil
}

func previousMonth(t time.Time) (int, int) {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	return int(first.Month()), first.Year()
}
