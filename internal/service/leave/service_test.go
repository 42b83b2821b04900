package leave

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-payroll-go/internal/repository/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc         leave.LeaveService
	balanceRepo leave.LeaveBalanceRepository
	employeeID  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	employeeRepo := sqlite.NewEmployeeRepository(store)
	balanceRepo := sqlite.NewLeaveBalanceRepository(store)

	emp, err := employeeRepo.Create(ctx, employee.Employee{
		EmployeeCode: "E-1",
		FullName:     "Dana Lee",
		Department:   "Operations",
		HireDate:     time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.NoError(t, balanceRepo.Initialize(ctx, emp.ID, leave.DefaultBalances()))

	return &fixture{
		svc:         NewLeaveService(store.Transactor(), sqlite.NewLeaveRequestRepository(store), balanceRepo, employeeRepo),
		balanceRepo: balanceRepo,
		employeeID:  emp.ID,
	}
}

func (f *fixture) submit(t *testing.T, leaveType leave.LeaveType, start, end string) leave.LeaveRequestResponse {
	t.Helper()
	resp, err := f.svc.SubmitRequest(context.Background(), leave.CreateLeaveRequestRequest{
		EmployeeID: f.employeeID,
		LeaveType:  string(leaveType),
		StartDate:  start,
		EndDate:    end,
	})
	require.NoError(t, err)
	return resp
}

func (f *fixture) setStatus(id string, status leave.LeaveStatus) (leave.LeaveRequestResponse, error) {
	return f.svc.UpdateStatus(context.Background(), leave.UpdateStatusRequest{ID: id, ActorID: "manager-1", Status: string(status)})
}

func (f *fixture) remaining(t *testing.T, leaveType leave.LeaveType) int {
	t.Helper()
	balance, err := f.svc.GetBalance(context.Background(), f.employeeID)
	require.NoError(t, err)
	return balance.Balances[string(leaveType)]
}

func TestSubmitRequest(t *testing.T) {
	f := newFixture(t)

	resp := f.submit(t, leave.LeaveTypeAnnual, "2024-03-04", "2024-03-08")
	assert.Equal(t, 5, resp.TotalDays)
	assert.Equal(t, string(leave.LeaveStatusPending), resp.Status)
	assert.Equal(t, 20, f.remaining(t, leave.LeaveTypeAnnual))

	_, err := f.svc.SubmitRequest(context.Background(), leave.CreateLeaveRequestRequest{
		EmployeeID: f.employeeID,
		LeaveType:  "sabbatical",
		StartDate:  "2024-03-08",
		EndDate:    "2024-03-04",
	})
	assert.Error(t, err)

	_, err = f.svc.SubmitRequest(context.Background(), leave.CreateLeaveRequestRequest{
		EmployeeID: "missing",
		LeaveType:  string(leave.LeaveTypeSick),
		StartDate:  "2024-03-04",
		EndDate:    "2024-03-04",
	})
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestApproveDeductsAndRejectRestores(t *testing.T) {
	f := newFixture(t)
	req := f.submit(t, leave.LeaveTypeAnnual, "2024-03-04", "2024-03-08")

	approved, err := f.setStatus(req.ID, leave.LeaveStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, string(leave.LeaveStatusApproved), approved.Status)
	require.NotNil(t, approved.DecidedBy)
	assert.Equal(t, "manager-1", *approved.DecidedBy)
	assert.Equal(t, 15, f.remaining(t, leave.LeaveTypeAnnual))

	_, err = f.setStatus(req.ID, leave.LeaveStatusRejected)
	require.NoError(t, err)
	assert.Equal(t, 20, f.remaining(t, leave.LeaveTypeAnnual))

	// a rejected request can be approved again
	_, err = f.setStatus(req.ID, leave.LeaveStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, 15, f.remaining(t, leave.LeaveTypeAnnual))

	_, err = f.setStatus(req.ID, leave.LeaveStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, 20, f.remaining(t, leave.LeaveTypeAnnual))
}

func TestApproveInsufficientBalance(t *testing.T) {
	f := newFixture(t)
	req := f.submit(t, leave.LeaveTypeAnnual, "2024-03-01", "2024-03-25")
	require.Equal(t, 25, req.TotalDays)

	_, err := f.setStatus(req.ID, leave.LeaveStatusApproved)
	require.ErrorIs(t, err, leave.ErrInsufficientBalance)

	var balanceErr *leave.InsufficientBalanceError
	require.ErrorAs(t, err, &balanceErr)
	assert.Equal(t, 20, balanceErr.Available)
	assert.Equal(t, 25, balanceErr.Requested)

	assert.Equal(t, 20, f.remaining(t, leave.LeaveTypeAnnual))
	got, err := f.svc.GetRequest(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, string(leave.LeaveStatusPending), got.Status)
}

func TestRejectingPendingLeavesBalance(t *testing.T) {
	f := newFixture(t)
	req := f.submit(t, leave.LeaveTypeSick, "2024-03-04", "2024-03-05")

	_, err := f.setStatus(req.ID, leave.LeaveStatusRejected)
	require.NoError(t, err)
	assert.Equal(t, 10, f.remaining(t, leave.LeaveTypeSick))
}

func TestInvalidTransitions(t *testing.T) {
	f := newFixture(t)
	req := f.submit(t, leave.LeaveTypeCasual, "2024-03-04", "2024-03-04")

	_, err := f.setStatus(req.ID, leave.LeaveStatusPending)
	assert.ErrorIs(t, err, leave.ErrInvalidTransition)

	_, err = f.setStatus(req.ID, leave.LeaveStatusApproved)
	require.NoError(t, err)

	_, err = f.setStatus(req.ID, leave.LeaveStatusApproved)
	assert.ErrorIs(t, err, leave.ErrInvalidTransition)
	assert.Equal(t, 4, f.remaining(t, leave.LeaveTypeCasual))

	_, err = f.setStatus(req.ID, leave.LeaveStatusPending)
	assert.ErrorIs(t, err, leave.ErrInvalidTransition)

	_, err = f.setStatus("missing", leave.LeaveStatusApproved)
	assert.ErrorIs(t, err, leave.ErrLeaveRequestNotFound)
}

func TestUnpaidLeaveIsNotBalanceGated(t *testing.T) {
	f := newFixture(t)
	req := f.submit(t, leave.LeaveTypeUnpaid, "2024-03-04", "2024-03-15")

	_, err := f.setStatus(req.ID, leave.LeaveStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, 0, f.remaining(t, leave.LeaveTypeUnpaid))

	_, err = f.svc.UpdatePeriod(context.Background(), leave.UpdatePeriodRequest{ID: req.ID, StartDate: "2024-03-04", EndDate: "2024-03-29"})
	require.NoError(t, err)
	assert.Equal(t, 0, f.remaining(t, leave.LeaveTypeUnpaid))
}

func TestUpdatePeriod(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := f.submit(t, leave.LeaveTypeAnnual, "2024-03-04", "2024-03-08")

	// pending requests carry no balance effect
	pending, err := f.svc.UpdatePeriod(ctx, leave.UpdatePeriodRequest{ID: req.ID, StartDate: "2024-03-04", EndDate: "2024-03-06"})
	require.NoError(t, err)
	assert.Equal(t, 3, pending.TotalDays)
	assert.Equal(t, 20, f.remaining(t, leave.LeaveTypeAnnual))

	_, err = f.setStatus(req.ID, leave.LeaveStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, 17, f.remaining(t, leave.LeaveTypeAnnual))

	longer, err := f.svc.UpdatePeriod(ctx, leave.UpdatePeriodRequest{ID: req.ID, StartDate: "2024-03-04", EndDate: "2024-03-10"})
	require.NoError(t, err)
	assert.Equal(t, 7, longer.TotalDays)
	assert.Equal(t, 13, f.remaining(t, leave.LeaveTypeAnnual))

	shorter, err := f.svc.UpdatePeriod(ctx, leave.UpdatePeriodRequest{ID: req.ID, StartDate: "2024-03-05", EndDate: "2024-03-05"})
	require.NoError(t, err)
	assert.Equal(t, 1, shorter.TotalDays)
	assert.Equal(t, 19, f.remaining(t, leave.LeaveTypeAnnual))

	_, err = f.svc.UpdatePeriod(ctx, leave.UpdatePeriodRequest{ID: req.ID, StartDate: "2024-03-01", EndDate: "2024-03-31"})
	assert.ErrorIs(t, err, leave.ErrInsufficientBalance)
	assert.Equal(t, 19, f.remaining(t, leave.LeaveTypeAnnual))

	got, err := f.svc.GetRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.TotalDays)
	assert.Equal(t, "2024-03-05", got.StartDate)

	_, err = f.setStatus(req.ID, leave.LeaveStatusCancelled)
	require.NoError(t, err)
	_, err = f.svc.UpdatePeriod(ctx, leave.UpdatePeriodRequest{ID: req.ID, StartDate: "2024-03-05", EndDate: "2024-03-06"})
	assert.ErrorIs(t, err, leave.ErrLeaveRequestClosed)
}

func TestUpdatePeriod_OwnerOnlyEditsOwnPendingRequests(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := f.submit(t, leave.LeaveTypeAnnual, "2024-04-01", "2024-04-03")

	_, err := f.svc.UpdatePeriod(ctx, leave.UpdatePeriodRequest{
		ID: req.ID, StartDate: "2024-04-01", EndDate: "2024-04-02", OwnerID: "someone-else", PendingOnly: true,
	})
	assert.ErrorIs(t, err, leave.ErrLeaveRequestNotFound)

	own, err := f.svc.UpdatePeriod(ctx, leave.UpdatePeriodRequest{
		ID: req.ID, StartDate: "2024-04-01", EndDate: "2024-04-02", OwnerID: f.employeeID, PendingOnly: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, own.TotalDays)

	_, err = f.setStatus(req.ID, leave.LeaveStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, 18, f.remaining(t, leave.LeaveTypeAnnual))

	_, err = f.svc.UpdatePeriod(ctx, leave.UpdatePeriodRequest{
		ID: req.ID, StartDate: "2024-04-01", EndDate: "2024-04-20", OwnerID: f.employeeID, PendingOnly: true,
	})
	assert.ErrorIs(t, err, leave.ErrApprovedPeriodChange)
	assert.Equal(t, 18, f.remaining(t, leave.LeaveTypeAnnual))

	got, err := f.svc.GetRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.TotalDays)
}

func TestConcurrentApprovalsNeverOverdraw(t *testing.T) {
	f := newFixture(t)
	first := f.submit(t, leave.LeaveTypeAnnual, "2024-04-01", "2024-04-12")
	second := f.submit(t, leave.LeaveTypeAnnual, "2024-05-01", "2024-05-12")
	require.Equal(t, 12, first.TotalDays)
	require.Equal(t, 12, second.TotalDays)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []string{first.ID, second.ID} {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, errs[i] = f.setStatus(id, leave.LeaveStatusApproved)
		}(i, id)
	}
	wg.Wait()

	succeeded, insufficient := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, leave.ErrInsufficientBalance):
			insufficient++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, insufficient)
	assert.Equal(t, 8, f.remaining(t, leave.LeaveTypeAnnual))
}

func TestBalanceConservation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.submit(t, leave.LeaveTypeAnnual, "2024-04-01", "2024-04-03")
	b := f.submit(t, leave.LeaveTypeAnnual, "2024-05-06", "2024-05-10")
	c := f.submit(t, leave.LeaveTypeAnnual, "2024-06-03", "2024-06-04")

	for _, id := range []string{a.ID, b.ID, c.ID} {
		_, err := f.setStatus(id, leave.LeaveStatusApproved)
		require.NoError(t, err)
	}
	_, err := f.setStatus(b.ID, leave.LeaveStatusCancelled)
	require.NoError(t, err)

	approved := leave.LeaveStatusApproved
	requests, err := f.svc.ListRequests(ctx, leave.LeaveRequestFilter{EmployeeID: &f.employeeID, Status: &approved})
	require.NoError(t, err)

	used := 0
	for _, r := range requests {
		used += r.TotalDays
	}
	assert.Equal(t, 5, used)
	assert.Equal(t, leave.DefaultBalances()[leave.LeaveTypeAnnual]-used, f.remaining(t, leave.LeaveTypeAnnual))
}

func TestGetBalance(t *testing.T) {
	f := newFixture(t)

	balance, err := f.svc.GetBalance(context.Background(), f.employeeID)
	require.NoError(t, err)
	assert.Len(t, balance.Balances, len(leave.AllLeaveTypes))
	assert.Equal(t, 10, balance.Balances["sick"])

	_, err = f.svc.GetBalance(context.Background(), "missing")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}
