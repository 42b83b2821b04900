package attendance

import "github.com/cmlabs-hris/hris-payroll-go/internal/pkg/apperror"

var (
	ErrAttendanceNotFound = apperror.New(apperror.KindNotFound, "ATTENDANCE_NOT_FOUND", "attendance record not found")
	ErrAlreadyClockedIn   = apperror.New(apperror.KindInvalidStateTransition, "ALREADY_CLOCKED_IN", "an open session already exists for this date")
	ErrNotClockedIn       = apperror.New(apperror.KindInvalidStateTransition, "NOT_CLOCKED_IN", "no open session to clock out of")
	ErrClockOutBeforeIn   = apperror.New(apperror.KindValidation, "CLOCK_OUT_BEFORE_CLOCK_IN", "clock-out must be after clock-in")
)
