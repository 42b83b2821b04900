package report

import (
	"context"
	"fmt"
	"sort"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/report"
	"github.com/shopspring/decimal"
)

const unassignedDepartment = "unassigned"

type ReportServiceImpl struct {
	payrollRepo payroll.PayrollRepository
}

func NewReportService(payrollRepo payroll.PayrollRepository) report.ReportService {
	return &ReportServiceImpl{
		payrollRepo: payrollRepo,
	}
}

// GeneratePayrollReport rolls up the stored payroll snapshots of a month.
func (s *ReportServiceImpl) GeneratePayrollReport(ctx context.Context, req report.PayrollReportRequest) (report.PayrollReport, error) {
	if err := req.Validate(); err != nil {
		return report.PayrollReport{}, err
	}

	payrolls, err := s.payrollRepo.ListByPeriod(ctx, req.Month, req.Year)
	if err != nil {
		return report.PayrollReport{}, fmt.Errorf("failed to get payrolls: %w", err)
	}

	if req.Department != nil {
		filtered := payrolls[:0]
		for _, p := range payrolls {
			if departmentOf(p) == *req.Department {
				filtered = append(filtered, p)
			}
		}
		payrolls = filtered
	}

	return Summarize(req.Month, req.Year, payrolls), nil
}

// Summarize computes totals, the average net salary and the department and
// status groupings. An empty input yields a zero report.
func Summarize(month, year int, payrolls []payroll.Payroll) report.PayrollReport {
	result := report.PayrollReport{
		Month:        month,
		Year:         year,
		ByDepartment: []report.GroupSummary{},
		ByStatus:     []report.GroupSummary{},
	}

	byDepartment := make(map[string]*report.PayrollTotals)
	byStatus := make(map[string]*report.PayrollTotals)
	for _, p := range payrolls {
		addPayroll(&result.Totals, p)
		addPayroll(group(byDepartment, departmentOf(p)), p)
		addPayroll(group(byStatus, string(p.Status)), p)
	}

	if result.Totals.EmployeeCount > 0 {
		result.AverageSalary = result.Totals.TotalNet.
			Div(decimal.NewFromInt(int64(result.Totals.EmployeeCount))).
			Round(2)
	}
	result.ByDepartment = flatten(byDepartment)
	result.ByStatus = flatten(byStatus)
	return result
}

func addPayroll(t *report.PayrollTotals, p payroll.Payroll) {
	t.EmployeeCount++
	t.TotalBasic = t.TotalBasic.Add(p.BasicSalary)
	t.TotalAllowances = t.TotalAllowances.Add(p.TotalAllowances)
	t.TotalBonuses = t.TotalBonuses.Add(p.Bonuses.Total())
	t.TotalOvertime = t.TotalOvertime.Add(p.OvertimePay)
	t.TotalGross = t.TotalGross.Add(p.GrossSalary)
	t.TotalDeductions = t.TotalDeductions.Add(p.TotalDeductions)
	t.TotalNet = t.TotalNet.Add(p.NetSalary)
}

func group(groups map[string]*report.PayrollTotals, key string) *report.PayrollTotals {
	t, ok := groups[key]
	if !ok {
		t = &report.PayrollTotals{}
		groups[key] = t
	}
	return t
}

func flatten(groups map[string]*report.PayrollTotals) []report.GroupSummary {
	summaries := make([]report.GroupSummary, 0, len(groups))
	for key, totals := range groups {
		summaries = append(summaries, report.GroupSummary{Key: key, PayrollTotals: *totals})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Key < summaries[j].Key
	})
	return summaries
}

func departmentOf(p payroll.Payroll) string {
	if p.Department == nil || *p.Department == "" {
		return unassignedDepartment
	}
	return *p.Department
}
