package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/apperror"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	case errors.Is(err, employee.ErrEmployeeCodeExists):
		Conflict(w, err.Error())
		return
	}

	appErr, ok := apperror.From(err)
	if !ok {
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
		return
	}

	var details map[string]string
	var balanceErr *leave.InsufficientBalanceError
	if errors.As(err, &balanceErr) {
		details = balanceErr.Details()
	}

	AppError(w, statusForKind(appErr.Kind), appErr.Code, appErr.Message, details)
}

func statusForKind(kind apperror.Kind) int {
	switch kind {
	case apperror.KindValidation:
		return http.StatusBadRequest
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindDuplicatePayroll, apperror.KindInvalidStateTransition:
		return http.StatusConflict
	case apperror.KindInsufficientBalance, apperror.KindMissingSalaryConfig:
		return http.StatusUnprocessableEntity
	case apperror.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
