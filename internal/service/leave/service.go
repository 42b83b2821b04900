package leave

import (
	"context"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
)

type LeaveServiceImpl struct {
	transactor   database.Transactor
	requestRepo  leave.LeaveRequestRepository
	balanceRepo  leave.LeaveBalanceRepository
	employeeRepo employee.EmployeeRepository
	ledger       leave.Ledger
	now          func() time.Time
}

func NewLeaveService(
	transactor database.Transactor,
	requestRepo leave.LeaveRequestRepository,
	balanceRepo leave.LeaveBalanceRepository,
	employeeRepo employee.EmployeeRepository,
) leave.LeaveService {
	return &LeaveServiceImpl{
		transactor:   transactor,
		requestRepo:  requestRepo,
		balanceRepo:  balanceRepo,
		employeeRepo: employeeRepo,
		ledger:       NewLedger(balanceRepo),
		now:          time.Now,
	}
}

func (s *LeaveServiceImpl) SubmitRequest(ctx context.Context, req leave.CreateLeaveRequestRequest) (leave.LeaveRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	if _, err := s.employeeRepo.GetByID(ctx, req.EmployeeID); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	start, end := leave.ParsePeriod(req.StartDate, req.EndDate)
	lr := leave.LeaveRequest{
		EmployeeID: req.EmployeeID,
		LeaveType:  leave.LeaveType(req.LeaveType),
		Reason:     req.Reason,
		Status:     leave.LeaveStatusPending,
	}
	lr.SetPeriod(start, end)

	created, err := s.requestRepo.Create(ctx, lr)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	slog.Info("leave request submitted",
		"leave_request_id", created.ID,
		"employee_id", created.EmployeeID,
		"leave_type", created.LeaveType,
		"total_days", created.TotalDays,
	)
	return mapToLeaveRequestResponse(created), nil
}

// canTransition allows any move into approved, rejected or cancelled except a
// no-op. Nothing moves back to pending.
func canTransition(from, to leave.LeaveStatus) bool {
	if from == to || to == leave.LeaveStatusPending {
		return false
	}
	return to.IsValid()
}

func (s *LeaveServiceImpl) UpdateStatus(ctx context.Context, req leave.UpdateStatusRequest) (leave.LeaveRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	newStatus := leave.LeaveStatus(req.Status)

	var updated leave.LeaveRequest
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		lr, err := s.requestRepo.GetByIDForUpdate(ctx, req.ID)
		if err != nil {
			return err
		}
		oldStatus := lr.Status
		if !canTransition(oldStatus, newStatus) {
			return leave.ErrInvalidTransition
		}

		if err := s.ledger.OnStatusChange(ctx, lr, oldStatus, newStatus); err != nil {
			return err
		}

		decidedAt := s.now()
		lr.Status = newStatus
		lr.DecidedAt = &decidedAt
		if req.ActorID != "" {
			actor := req.ActorID
			lr.DecidedBy = &actor
		}
		if err := s.requestRepo.Update(ctx, lr); err != nil {
			return err
		}
		updated = lr
		return nil
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	slog.Info("leave request status changed",
		"leave_request_id", updated.ID,
		"employee_id", updated.EmployeeID,
		"status", updated.Status,
	)
	return mapToLeaveRequestResponse(updated), nil
}

func (s *LeaveServiceImpl) UpdatePeriod(ctx context.Context, req leave.UpdatePeriodRequest) (leave.LeaveRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	start, end := leave.ParsePeriod(req.StartDate, req.EndDate)

	var updated leave.LeaveRequest
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		lr, err := s.requestRepo.GetByIDForUpdate(ctx, req.ID)
		if err != nil {
			return err
		}
		if req.OwnerID != "" && lr.EmployeeID != req.OwnerID {
			return leave.ErrLeaveRequestNotFound
		}
		if lr.Status == leave.LeaveStatusRejected || lr.Status == leave.LeaveStatusCancelled {
			return leave.ErrLeaveRequestClosed
		}
		if req.PendingOnly && lr.Status != leave.LeaveStatusPending {
			return leave.ErrApprovedPeriodChange
		}

		oldTotalDays := lr.TotalDays
		lr.SetPeriod(start, end)
		if err := s.ledger.OnPeriodChange(ctx, lr, oldTotalDays); err != nil {
			return err
		}
		if err := s.requestRepo.Update(ctx, lr); err != nil {
			return err
		}
		updated = lr
		return nil
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	return mapToLeaveRequestResponse(updated), nil
}

func (s *LeaveServiceImpl) GetRequest(ctx context.Context, id string) (leave.LeaveRequestResponse, error) {
	lr, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	return mapToLeaveRequestResponse(lr), nil
}

func (s *LeaveServiceImpl) ListRequests(ctx context.Context, filter leave.LeaveRequestFilter) ([]leave.LeaveRequestResponse, error) {
	requests, err := s.requestRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]leave.LeaveRequestResponse, 0, len(requests))
	for _, lr := range requests {
		responses = append(responses, mapToLeaveRequestResponse(lr))
	}
	return responses, nil
}

func (s *LeaveServiceImpl) GetBalance(ctx context.Context, employeeID string) (leave.BalanceResponse, error) {
	if _, err := s.employeeRepo.GetByID(ctx, employeeID); err != nil {
		return leave.BalanceResponse{}, err
	}

	balance, err := s.balanceRepo.Get(ctx, employeeID)
	if err != nil {
		return leave.BalanceResponse{}, err
	}

	resp := leave.BalanceResponse{EmployeeID: employeeID, Balances: make(map[string]int, len(balance.Remaining))}
	for t, remaining := range balance.Remaining {
		resp.Balances[string(t)] = remaining
	}
	return resp, nil
}

func mapToLeaveRequestResponse(lr leave.LeaveRequest) leave.LeaveRequestResponse {
	resp := leave.LeaveRequestResponse{
		ID:         lr.ID,
		EmployeeID: lr.EmployeeID,
		LeaveType:  string(lr.LeaveType),
		StartDate:  lr.StartDate.Format("2006-01-02"),
		EndDate:    lr.EndDate.Format("2006-01-02"),
		TotalDays:  lr.TotalDays,
		Reason:     lr.Reason,
		Status:     string(lr.Status),
		DecidedBy:  lr.DecidedBy,
	}
	if lr.DecidedAt != nil {
		decidedAt := lr.DecidedAt.Format(time.RFC3339)
		resp.DecidedAt = &decidedAt
	}
	return resp
}
