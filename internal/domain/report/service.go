package report

import "context"

// ReportService defines the interface for report generation
type ReportService interface {
	// GeneratePayrollReport rolls up the period's payrolls by department and status.
	GeneratePayrollReport(ctx context.Context, req PayrollReportRequest) (PayrollReport, error)
}
