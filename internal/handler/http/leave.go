package http

import (
	"encoding/json"
	"net/http"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-payroll-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
)

type LeaveHandler interface {
	SubmitRequest(w http.ResponseWriter, r *http.Request)
	GetRequest(w http.ResponseWriter, r *http.Request)
	ListRequests(w http.ResponseWriter, r *http.Request)
	UpdateStatus(w http.ResponseWriter, r *http.Request)
	UpdatePeriod(w http.ResponseWriter, r *http.Request)
	GetBalance(w http.ResponseWriter, r *http.Request)
}

type leaveHandlerImpl struct {
	leaveService leave.LeaveService
}

func NewLeaveHandler(leaveService leave.LeaveService) LeaveHandler {
	return &leaveHandlerImpl{leaveService: leaveService}
}

func (h *leaveHandlerImpl) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	var req leave.CreateLeaveRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	scope, err := scopeFromRequest(r)
	if err != nil {
		response.Unauthorized(w, "Invalid access token")
		return
	}
	employeeID, ok := scope.resolve(req.EmployeeID)
	if !ok {
		response.Forbidden(w, "Cannot submit leave for another employee")
		return
	}
	req.EmployeeID = employeeID

	result, err := h.leaveService.SubmitRequest(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Leave request submitted", result)
}

func (h *leaveHandlerImpl) GetRequest(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Leave request ID is required", nil)
		return
	}

	scope, err := scopeFromRequest(r)
	if err != nil {
		response.Unauthorized(w, "Invalid access token")
		return
	}

	result, err := h.leaveService.GetRequest(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	if !scope.canAccess(result.EmployeeID) {
		response.HandleError(w, leave.ErrLeaveRequestNotFound)
		return
	}

	response.Success(w, result)
}

func (h *leaveHandlerImpl) ListRequests(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFromRequest(r)
	if err != nil {
		response.Unauthorized(w, "Invalid access token")
		return
	}

	var filter leave.LeaveRequestFilter
	if employeeID := r.URL.Query().Get("employee_id"); employeeID != "" || !scope.isManager() {
		scoped, ok := scope.resolve(employeeID)
		if !ok {
			response.Forbidden(w, "Cannot view leave requests of another employee")
			return
		}
		filter.EmployeeID = &scoped
	}
	if status := r.URL.Query().Get("status"); status != "" {
		s := leave.LeaveStatus(status)
		if !s.IsValid() {
			response.BadRequest(w, "Invalid status", map[string]string{"status": "must be one of pending, approved, rejected, cancelled"})
			return
		}
		filter.Status = &s
	}

	result, err := h.leaveService.ListRequests(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *leaveHandlerImpl) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Leave request ID is required", nil)
		return
	}

	var req leave.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ID = id
	if claims, err := jwt.ClaimsFromContext(r.Context()); err == nil {
		req.ActorID = claims.UserID
	}

	result, err := h.leaveService.UpdateStatus(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave request "+result.Status, result)
}

func (h *leaveHandlerImpl) UpdatePeriod(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Leave request ID is required", nil)
		return
	}

	scope, err := scopeFromRequest(r)
	if err != nil {
		response.Unauthorized(w, "Invalid access token")
		return
	}

	var req leave.UpdatePeriodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ID = id
	if !scope.isManager() {
		if scope.ownEmployeeID() == "" {
			response.Forbidden(w, "Cannot edit leave requests of another employee")
			return
		}
		req.OwnerID = scope.ownEmployeeID()
		req.PendingOnly = true
	}

	result, err := h.leaveService.UpdatePeriod(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *leaveHandlerImpl) GetBalance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Employee ID is required", nil)
		return
	}

	scope, err := scopeFromRequest(r)
	if err != nil {
		response.Unauthorized(w, "Invalid access token")
		return
	}
	if !scope.canAccess(id) {
		response.Forbidden(w, "Cannot view the leave balance of another employee")
		return
	}

	result, err := h.leaveService.GetBalance(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
