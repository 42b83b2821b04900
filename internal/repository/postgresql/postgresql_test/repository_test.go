package postgresql_test

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/repository/postgresql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmployeeRepository_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := postgresql.NewEmployeeRepository(db)

	emp := createTestEmployee(t, db, "EMP-001")

	got, err := repo.GetByID(ctx, emp.ID)
	require.NoError(t, err)
	assert.Equal(t, "EMP-001", got.EmployeeCode)
	require.True(t, got.HasSalary())
	assert.True(t, got.Salary.BasicSalary.Equal(decimal.NewFromInt(3000)))
	assert.True(t, got.Salary.Allowances.Total().Equal(decimal.NewFromInt(100)))

	_, err = repo.Create(ctx, employee.Employee{
		EmployeeCode: "EMP-001",
		FullName:     "Other",
		Department:   "Sales",
		HireDate:     time.Now(),
	})
	assert.ErrorIs(t, err, employee.ErrEmployeeCodeExists)

	_, err = repo.GetByID(ctx, "0190a8b2-0000-7000-8000-000000000000")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestAttendanceRepository_UniquePerDay(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := postgresql.NewAttendanceRepository(db)
	emp := createTestEmployee(t, db, "EMP-ATT")

	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	in := time.Date(2024, 3, 4, 8, 55, 0, 0, time.UTC)
	rec := attendance.Attendance{
		EmployeeID: emp.ID,
		Date:       day,
		Sessions:   []attendance.Session{{ClockIn: in}},
		Status:     attendance.StatusPresent,
	}

	created, err := repo.Create(ctx, rec)
	require.NoError(t, err)
	require.Len(t, created.Sessions, 1)

	_, err = repo.Create(ctx, rec)
	assert.Error(t, err)

	got, err := repo.GetByEmployeeAndDate(ctx, emp.ID, day)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	list, err := repo.ListByEmployeeAndRange(ctx, emp.ID, day.AddDate(0, 0, -1), day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestLeaveBalanceRepository_LockAndSet(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := postgresql.NewLeaveBalanceRepository(db)
	tx := postgresql.NewTransactor(db)
	emp := createTestEmployee(t, db, "EMP-LV")

	require.NoError(t, repo.Initialize(ctx, emp.ID, leave.DefaultBalances()))
	// Re-initializing must not reset a spent balance.
	require.NoError(t, tx.WithinTransaction(ctx, func(ctx context.Context) error {
		remaining, err := repo.GetForUpdate(ctx, emp.ID, leave.LeaveTypeAnnual)
		if err != nil {
			return err
		}
		return repo.Set(ctx, emp.ID, leave.LeaveTypeAnnual, remaining-5)
	}))
	require.NoError(t, repo.Initialize(ctx, emp.ID, leave.DefaultBalances()))

	balance, err := repo.Get(ctx, emp.ID)
	require.NoError(t, err)
	assert.Equal(t, 15, balance.Remaining[leave.LeaveTypeAnnual])
	assert.Equal(t, 10, balance.Remaining[leave.LeaveTypeSick])

	_, err = repo.Get(ctx, "0190a8b2-0000-7000-8000-000000000000")
	assert.ErrorIs(t, err, leave.ErrBalanceNotFound)
}

func TestLeaveRequestRepository_ListOverlapping(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := postgresql.NewLeaveRequestRepository(db)
	emp := createTestEmployee(t, db, "EMP-LR")

	req := leave.LeaveRequest{EmployeeID: emp.ID, LeaveType: leave.LeaveTypeAnnual}
	req.SetPeriod(time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC))
	created, err := repo.Create(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 4, created.TotalDays)
	assert.Equal(t, leave.LeaveStatusPending, created.Status)

	march, err := repo.ListOverlapping(ctx, emp.ID,
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, march, 1)

	april, err := repo.ListOverlapping(ctx, emp.ID,
		time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, april)
}

func TestPayrollRepository_DuplicatePeriod(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := postgresql.NewPayrollRepository(db)
	emp := createTestEmployee(t, db, "EMP-PAY")

	record := payroll.Payroll{
		EmployeeID:  emp.ID,
		PeriodMonth: 3,
		PeriodYear:  2024,
		BasicSalary: decimal.NewFromInt(3000),
		BasicPay:    decimal.NewFromInt(3000),
		WorkingDays: 21,
		Bonuses:     payroll.Bonuses{Performance: decimal.NewFromInt(50)},
	}
	record.Recalculate()

	created, err := repo.Create(ctx, record)
	require.NoError(t, err)
	assert.Equal(t, payroll.PayrollStatusDraft, created.Status)
	require.NotNil(t, created.EmployeeCode)
	assert.Equal(t, "EMP-PAY", *created.EmployeeCode)
	assert.True(t, created.GrossSalary.Equal(decimal.NewFromInt(3050)))

	_, err = repo.Create(ctx, record)
	assert.ErrorIs(t, err, payroll.ErrDuplicatePayroll)

	month := 3
	list, total, err := repo.List(ctx, payroll.PayrollFilter{PeriodMonth: &month})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, list, 1)

	require.NoError(t, repo.Delete(ctx, created.ID))
	_, err = repo.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, payroll.ErrPayrollNotFound)
}
