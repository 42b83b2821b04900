package payroll

import (
	"context"
	"log/slog"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/apperror"
	"golang.org/x/sync/errgroup"
)

type bulkOutcome struct {
	record  payroll.Payroll
	failure *payroll.BulkFailure
}

// BulkGeneratePayroll generates payrolls for the listed employees, or for every
// active employee when none are listed. Employees are processed in parallel and
// a failure for one never aborts the rest. Results keep the input order.
func (s *PayrollServiceImpl) BulkGeneratePayroll(ctx context.Context, req payroll.BulkGeneratePayrollRequest) (payroll.BulkGeneratePayrollResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.BulkGeneratePayrollResponse{}, err
	}

	employeeIDs := req.EmployeeIDs
	if len(employeeIDs) == 0 {
		active := employee.EmploymentStatusActive
		employees, err := s.employeeRepo.List(ctx, employee.EmployeeFilter{Status: &active})
		if err != nil {
			return payroll.BulkGeneratePayrollResponse{}, err
		}
		for _, emp := range employees {
			employeeIDs = append(employeeIDs, emp.ID)
		}
	}

	outcomes := make([]bulkOutcome, len(employeeIDs))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.bulkConcurrency)
	for i, employeeID := range employeeIDs {
		i, employeeID := i, employeeID // per-iteration copies (go < 1.22 loop semantics)
		g.Go(func() error {
			record, err := s.generate(gCtx, employeeID, req.PeriodMonth, req.PeriodYear, nil, req.Notes)
			if err != nil {
				outcomes[i].failure = &payroll.BulkFailure{
					EmployeeID: employeeID,
					Code:       apperror.CodeOf(err),
					Reason:     err.Error(),
				}
				return nil
			}
			outcomes[i].record = record
			return nil
		})
	}
	_ = g.Wait()

	resp := payroll.BulkGeneratePayrollResponse{
		PeriodMonth: req.PeriodMonth,
		PeriodYear:  req.PeriodYear,
		Success:     []payroll.PayrollResponse{},
		Failed:      []payroll.BulkFailure{},
	}
	for _, o := range outcomes {
		if o.failure != nil {
			resp.Failed = append(resp.Failed, *o.failure)
			continue
		}
		resp.Success = append(resp.Success, mapToPayrollResponse(o.record))
	}

	slog.Info("bulk payroll generation finished",
		"month", req.PeriodMonth,
		"year", req.PeriodYear,
		"requested", len(employeeIDs),
		"succeeded", len(resp.Success),
		"failed", len(resp.Failed),
	)
	return resp, nil
}
