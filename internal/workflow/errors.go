package workflow

import "errors"

// Failures a caller can act on. The text is what the UI shows, so lookups
// that fail authorization deliberately read the same as missing rows.
var (
	ErrNotFound             = errors.New("The requested resource was not found")
	ErrPreviousWeekNotFound = errors.New("No schedule found for previous week")
	ErrScheduleExists       = errors.New("A schedule already exists for this group and week")
	ErrScheduleNotDraft     = errors.New("Only draft schedules can be published")
	ErrDeadlineExpired      = errors.New("The swap deadline for this shift has passed")
	ErrSwapExists           = errors.New("A swap request already exists for this shift")
	ErrSwapNotPending       = errors.New("This swap request is no longer pending")
	ErrSwapUnavailable      = errors.New("This shift is no longer available")
	ErrSwapNotAccepted      = errors.New("This swap request is not awaiting a manager decision")
	ErrSwapNoAssignee       = errors.New("This swap request has no accepted assignee")
)

// IsUserFacing reports whether err carries a message meant for the caller,
// as opposed to an internal failure that is logged and masked.
func IsUserFacing(err error) bool {
	for _, known := range []error{
		ErrNotFound,
		ErrPreviousWeekNotFound,
		ErrScheduleExists,
		ErrScheduleNotDraft,
		ErrDeadlineExpired,
		ErrSwapExists,
		ErrSwapNotPending,
		ErrSwapUnavailable,
		ErrSwapNotAccepted,
		ErrSwapNoAssignee,
	} {
		if errors.Is(err, known) {
			return true
		}
	}
	return false
}
