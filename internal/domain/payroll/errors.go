package payroll

import "github.com/cmlabs-hris/hris-payroll-go/internal/pkg/apperror"

var (
	ErrPayrollNotFound       = apperror.New(apperror.KindNotFound, "PAYROLL_NOT_FOUND", "payroll not found")
	ErrDuplicatePayroll      = apperror.New(apperror.KindDuplicatePayroll, "DUPLICATE_PAYROLL", "payroll already exists for this employee and period")
	ErrMissingSalaryConfig   = apperror.New(apperror.KindMissingSalaryConfig, "MISSING_SALARY_CONFIG", "employee has no salary configuration")
	ErrNoWorkingDays         = apperror.New(apperror.KindValidation, "NO_WORKING_DAYS", "period has no working days")
	ErrCannotUpdateFinalized = apperror.New(apperror.KindInvalidStateTransition, "CANNOT_UPDATE_FINALIZED", "approved or paid payroll cannot be updated")
	ErrAlreadyFinalized      = apperror.New(apperror.KindInvalidStateTransition, "ALREADY_FINALIZED", "payroll is already approved or paid")
	ErrNotApproved           = apperror.New(apperror.KindInvalidStateTransition, "PAYROLL_NOT_APPROVED", "only approved payroll can be marked paid")
	ErrCannotDeleteFinalized = apperror.New(apperror.KindInvalidStateTransition, "CANNOT_DELETE_FINALIZED", "only draft payroll can be deleted")
)
