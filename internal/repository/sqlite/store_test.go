package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func seedEmployee(t *testing.T, store *Store, code string) employee.Employee {
	t.Helper()
	emp, err := NewEmployeeRepository(store).Create(context.Background(), employee.Employee{
		EmployeeCode: code,
		FullName:     "Employee " + code,
		Department:   "Finance",
		HireDate:     time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC),
		Salary: &employee.SalaryConfiguration{
			BasicSalary:         decimal.NewFromInt(3000),
			Allowances:          employee.Allowances{Housing: decimal.RequireFromString("150.50")},
			TaxRate:             decimal.NewFromInt(10),
			SocialInsuranceRate: decimal.RequireFromString("2.5"),
			HealthInsuranceRate: decimal.NewFromInt(1),
			OvertimeMultiplier:  employee.DefaultOvertimeMultiplier,
		},
	})
	require.NoError(t, err)
	return emp
}

func TestEmployeeRepository(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	repo := NewEmployeeRepository(store)

	emp := seedEmployee(t, store, "E-1")
	assert.NotEmpty(t, emp.ID)
	assert.Equal(t, employee.EmploymentStatusActive, emp.EmploymentStatus)
	require.NotNil(t, emp.Salary)
	assert.Equal(t, "150.5", emp.Salary.Allowances.Housing.String())
	assert.Equal(t, "2.5", emp.Salary.SocialInsuranceRate.String())

	_, err := repo.Create(ctx, employee.Employee{EmployeeCode: "E-1", FullName: "Dup", Department: "X", HireDate: time.Now()})
	assert.ErrorIs(t, err, employee.ErrEmployeeCodeExists)

	noSalary, err := repo.Create(ctx, employee.Employee{EmployeeCode: "E-2", FullName: "New", Department: "Ops", HireDate: time.Now()})
	require.NoError(t, err)
	assert.Nil(t, noSalary.Salary)

	require.NoError(t, repo.UpdateSalary(ctx, noSalary.ID, employee.SalaryConfiguration{
		BasicSalary:        decimal.NewFromInt(2000),
		OvertimeMultiplier: decimal.NewFromInt(2),
	}))
	updated, err := repo.GetByID(ctx, noSalary.ID)
	require.NoError(t, err)
	require.True(t, updated.HasSalary())
	assert.True(t, updated.Salary.BasicSalary.Equal(decimal.NewFromInt(2000)))

	dept := "Finance"
	list, err := repo.List(ctx, employee.EmployeeFilter{Department: &dept})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, emp.ID, list[0].ID)

	list, err = repo.List(ctx, employee.EmployeeFilter{IDs: []string{emp.ID, noSalary.ID}})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	assert.ErrorIs(t, repo.UpdateSalary(ctx, "missing", employee.SalaryConfiguration{}), employee.ErrEmployeeNotFound)
}

func TestAttendanceRepository(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	repo := NewAttendanceRepository(store)
	emp := seedEmployee(t, store, "E-1")

	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	in := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	out := in.Add(9 * time.Hour)

	created, err := repo.Create(ctx, attendance.Attendance{
		EmployeeID: emp.ID,
		Date:       day,
		Sessions:   []attendance.Session{{ClockIn: in}},
		Status:     attendance.StatusPresent,
	})
	require.NoError(t, err)
	require.Len(t, created.Sessions, 1)
	assert.Nil(t, created.Sessions[0].ClockOut)

	created.Sessions[0].ClockOut = &out
	created.TotalHours = decimal.NewFromInt(9)
	require.NoError(t, repo.Update(ctx, created))

	got, err := repo.GetByEmployeeAndDate(ctx, emp.ID, day)
	require.NoError(t, err)
	require.NotNil(t, got.Sessions[0].ClockOut)
	assert.True(t, got.Sessions[0].ClockOut.Equal(out))
	assert.True(t, got.TotalHours.Equal(decimal.NewFromInt(9)))

	_, err = repo.Create(ctx, attendance.Attendance{EmployeeID: emp.ID, Date: day, Status: attendance.StatusPresent})
	assert.Error(t, err)

	_, err = repo.GetByEmployeeAndDate(ctx, emp.ID, day.AddDate(0, 0, 1))
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)

	list, err := repo.ListByEmployeeAndRange(ctx, emp.ID, day, day)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestLeaveRepositories(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	requests := NewLeaveRequestRepository(store)
	balances := NewLeaveBalanceRepository(store)
	emp := seedEmployee(t, store, "E-1")

	require.NoError(t, balances.Initialize(ctx, emp.ID, leave.DefaultBalances()))
	require.NoError(t, balances.Set(ctx, emp.ID, leave.LeaveTypeAnnual, 12))
	require.NoError(t, balances.Initialize(ctx, emp.ID, leave.DefaultBalances()))

	remaining, err := balances.GetForUpdate(ctx, emp.ID, leave.LeaveTypeAnnual)
	require.NoError(t, err)
	assert.Equal(t, 12, remaining)

	_, err = balances.GetForUpdate(ctx, "nobody", leave.LeaveTypeAnnual)
	assert.ErrorIs(t, err, leave.ErrBalanceNotFound)

	req := leave.LeaveRequest{EmployeeID: emp.ID, LeaveType: leave.LeaveTypeSick}
	req.SetPeriod(time.Date(2024, 3, 30, 0, 0, 0, 0, time.UTC), time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC))
	created, err := requests.Create(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 4, created.TotalDays)

	decidedAt := time.Date(2024, 3, 20, 10, 0, 0, 0, time.UTC)
	actor := "manager-1"
	created.Status = leave.LeaveStatusApproved
	created.DecidedBy = &actor
	created.DecidedAt = &decidedAt
	require.NoError(t, requests.Update(ctx, created))

	got, err := requests.GetByIDForUpdate(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, leave.LeaveStatusApproved, got.Status)
	require.NotNil(t, got.DecidedAt)
	assert.True(t, got.DecidedAt.Equal(decidedAt))

	april, err := requests.ListOverlapping(ctx, emp.ID,
		time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, april, 1)
	assert.Equal(t, 2, april[0].OverlapDays(
		time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC)))

	may, err := requests.ListOverlapping(ctx, emp.ID,
		time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, may)

	status := leave.LeaveStatusApproved
	list, err := requests.List(ctx, leave.LeaveRequestFilter{EmployeeID: &emp.ID, Status: &status})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestPayrollRepository(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	repo := NewPayrollRepository(store)
	emp := seedEmployee(t, store, "E-1")
	other := seedEmployee(t, store, "E-2")

	record := payroll.Payroll{
		EmployeeID:  emp.ID,
		PeriodMonth: 3,
		PeriodYear:  2024,
		BasicSalary: decimal.NewFromInt(3000),
		BasicPay:    decimal.NewFromInt(3000),
		Allowances:  employee.Allowances{Housing: decimal.RequireFromString("150.50")},
		WorkingDays: 21,
		Deductions:  payroll.Deductions{Tax: decimal.RequireFromString("315.05")},
	}
	record.Recalculate()

	created, err := repo.Create(ctx, record)
	require.NoError(t, err)
	assert.Equal(t, payroll.PayrollStatusDraft, created.Status)
	assert.Equal(t, "3150.5", created.GrossSalary.String())
	assert.Equal(t, "2835.45", created.NetSalary.String())
	require.NotNil(t, created.Department)
	assert.Equal(t, "Finance", *created.Department)

	_, err = repo.Create(ctx, record)
	assert.ErrorIs(t, err, payroll.ErrDuplicatePayroll)

	record.EmployeeID = other.ID
	_, err = repo.Create(ctx, record)
	require.NoError(t, err)

	approvedAt := time.Date(2024, 4, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, created.Approve("manager-1", approvedAt, nil))
	require.NoError(t, repo.Update(ctx, created))

	got, err := repo.GetByEmployeePeriod(ctx, emp.ID, 3, 2024)
	require.NoError(t, err)
	assert.Equal(t, payroll.PayrollStatusApproved, got.Status)
	require.NotNil(t, got.ApprovalDate)
	assert.True(t, got.ApprovalDate.Equal(approvedAt))

	status := payroll.PayrollStatusDraft
	list, total, err := repo.List(ctx, payroll.PayrollFilter{Status: &status, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	assert.Equal(t, other.ID, list[0].EmployeeID)

	byPeriod, err := repo.ListByPeriod(ctx, 3, 2024)
	require.NoError(t, err)
	assert.Len(t, byPeriod, 2)

	require.NoError(t, repo.Delete(ctx, list[0].ID))
	assert.ErrorIs(t, repo.Delete(ctx, list[0].ID), payroll.ErrPayrollNotFound)
}

func TestWithinTransaction_RollsBack(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	balances := NewLeaveBalanceRepository(store)
	emp := seedEmployee(t, store, "E-1")
	require.NoError(t, balances.Initialize(ctx, emp.ID, leave.DefaultBalances()))

	errBoom := errors.New("boom")
	err := store.Transactor().WithinTransaction(ctx, func(ctx context.Context) error {
		if err := balances.Set(ctx, emp.ID, leave.LeaveTypeAnnual, 0); err != nil {
			return err
		}
		return errBoom
	})
	assert.ErrorIs(t, err, errBoom)

	remaining, err := balances.GetForUpdate(ctx, emp.ID, leave.LeaveTypeAnnual)
	require.NoError(t, err)
	assert.Equal(t, 20, remaining)
}
