package apperror

import (
	"errors"

	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
)

// Kind groups errors that callers handle the same way.
type Kind string

const (
	KindValidation             Kind = "VALIDATION_ERROR"
	KindNotFound               Kind = "NOT_FOUND"
	KindDuplicatePayroll       Kind = "DUPLICATE_PAYROLL"
	KindInsufficientBalance    Kind = "INSUFFICIENT_BALANCE"
	KindInvalidStateTransition Kind = "INVALID_STATE_TRANSITION"
	KindMissingSalaryConfig    Kind = "MISSING_SALARY_CONFIG"
	KindForbidden              Kind = "FORBIDDEN"
	KindInternal               Kind = "INTERNAL_ERROR"
)

// Error is a sentinel with a stable machine-readable code.
// Compare with errors.Is against the package level variables that hold them.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func (e *Error) Error() string {
	return e.Message
}

// From extracts the first *Error in err's chain.
func From(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf classifies err. Validation failures from the validator package count
// as KindValidation; anything unknown is KindInternal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return KindValidation
	}
	if appErr, ok := From(err); ok {
		return appErr.Kind
	}
	return KindInternal
}

// CodeOf returns the stable code for err, falling back to the kind.
func CodeOf(err error) string {
	if appErr, ok := From(err); ok {
		return appErr.Code
	}
	return string(KindOf(err))
}
