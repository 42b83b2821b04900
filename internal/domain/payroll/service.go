package payroll

import "context"

type PayrollService interface {
	GeneratePayroll(ctx context.Context, req GeneratePayrollRequest) (PayrollResponse, error)

	// BulkGeneratePayroll fails only on request validation; per-employee
	// failures are reported in the result.
	BulkGeneratePayroll(ctx context.Context, req BulkGeneratePayrollRequest) (BulkGeneratePayrollResponse, error)

	GetPayroll(ctx context.Context, id string) (PayrollResponse, error)
	ListPayrolls(ctx context.Context, filter PayrollFilter) (ListPayrollResponse, error)
	UpdatePayroll(ctx context.Context, req UpdatePayrollRequest) (PayrollResponse, error)
	ApprovePayroll(ctx context.Context, req ApprovePayrollRequest) (PayrollResponse, error)
	MarkPaid(ctx context.Context, req MarkPaidRequest) (PayrollResponse, error)
	DeletePayroll(ctx context.Context, id string) error

	// Payslip renders the payslip PDF and returns it with a file name.
	Payslip(ctx context.Context, id string) ([]byte, string, error)
}

// Aggregator reduces stored attendance and leave for one employee-month.
type Aggregator interface {
	Aggregate(ctx context.Context, employeeID string, month, year int) (AttendanceAggregate, error)
}
