package employee

import "github.com/cmlabs-hris/hris-payroll-go/internal/pkg/apperror"

var (
	ErrEmployeeNotFound   = apperror.New(apperror.KindNotFound, "EMPLOYEE_NOT_FOUND", "employee not found")
	ErrEmployeeCodeExists = apperror.New(apperror.KindValidation, "EMPLOYEE_CODE_EXISTS", "employee code already exists")
)
