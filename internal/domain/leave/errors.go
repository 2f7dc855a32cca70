package leave

import (
	"errors"
	"fmt"
)

// Kind classifies an Error for callers. Kinds are comparable with errors.Is.
type Kind string

const (
	KindValidation          Kind = "VALIDATION"
	KindNotFound            Kind = "NOT_FOUND"
	KindForbidden           Kind = "FORBIDDEN"
	KindInvalidState        Kind = "INVALID_STATE"
	KindInsufficientBalance Kind = "INSUFFICIENT_BALANCE"
	KindConcurrency         Kind = "CONCURRENCY"
	KindConflict            Kind = "CONFLICT"
)

func (k Kind) Error() string {
	return string(k)
}

// Sentinels for errors.Is checks against a kind.
var (
	ErrValidation          error = KindValidation
	ErrNotFound            error = KindNotFound
	ErrForbidden           error = KindForbidden
	ErrInvalidState        error = KindInvalidState
	ErrInsufficientBalance error = KindInsufficientBalance
	ErrConcurrency         error = KindConcurrency
	ErrConflict            error = KindConflict
)

// Error is the machine-readable error returned by the leave services.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Details map[string]string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Is(target error) bool {
	if k, ok := target.(Kind); ok {
		return e.Kind == k
	}
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && (t.Code == "" || e.Code == t.Code)
}

func newError(kind Kind, code, message string, details map[string]string) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Details: details}
}

// AsError unwraps err into an *Error.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

func ErrLeaveTypeNotFound(id string) *Error {
	return newError(KindNotFound, "LEAVE_TYPE_NOT_FOUND", "Leave type not found", map[string]string{"leave_type_id": id})
}

func ErrLeaveTypeCodeNotFound(code string) *Error {
	return newError(KindNotFound, "LEAVE_TYPE_NOT_FOUND", "Leave type not found", map[string]string{"code": code})
}

func ErrLeaveTypeInvalid(id string) *Error {
	return newError(KindValidation, "LEAVE_TYPE_INVALID", "Invalid or inactive leave type", map[string]string{"leave_type_id": id})
}

func ErrLeaveTypeCodeExists(code string) *Error {
	return newError(KindConflict, "LEAVE_TYPE_CODE_EXISTS", "Leave type code already exists", map[string]string{"code": code})
}

func ErrLeaveTypeInUse(id string) *Error {
	return newError(KindValidation, "LEAVE_TYPE_IN_USE", "Leave type is referenced by requests or balances", map[string]string{"leave_type_id": id})
}

func ErrMaxDaysExceeded(requested string, max int) *Error {
	return newError(KindValidation, "MAX_DAYS_EXCEEDED", fmt.Sprintf("Maximum %d days allowed per request", max), map[string]string{
		"total_days":           requested,
		"max_days_per_request": fmt.Sprintf("%d", max),
	})
}

func ErrInvalidDateRange(start, end string) *Error {
	return newError(KindValidation, "INVALID_DATE_RANGE", "End date must not be before start date", map[string]string{
		"start_date": start,
		"end_date":   end,
	})
}

func ErrHalfDayNotAllowed(leaveTypeID string) *Error {
	return newError(KindValidation, "HALF_DAY_NOT_ALLOWED", "Leave type does not allow half days", map[string]string{"leave_type_id": leaveTypeID})
}

func ErrRequestNotFound(id string) *Error {
	return newError(KindNotFound, "REQUEST_NOT_FOUND", "Leave request not found", map[string]string{"request_id": id})
}

func ErrNotRequestOwner(id string) *Error {
	return newError(KindForbidden, "NOT_REQUEST_OWNER", "You can only act on your own requests", map[string]string{"request_id": id})
}

func ErrSelfReview(id string) *Error {
	return newError(KindForbidden, "SELF_REVIEW", "You cannot review your own request", map[string]string{"request_id": id})
}

func ErrCancelNotAllowed(id string) *Error {
	return newError(KindForbidden, "CANCEL_NOT_ALLOWED", "Only the owner or HR can cancel this request", map[string]string{"request_id": id})
}

func ErrInvalidTransition(from LeaveRequestStatus, action Action) *Error {
	return newError(KindInvalidState, "INVALID_TRANSITION", fmt.Sprintf("Cannot %s a request in %s", action, from), map[string]string{
		"status": string(from),
		"action": string(action),
	})
}

func ErrNotDraft(id string, status LeaveRequestStatus) *Error {
	return newError(KindInvalidState, "REQUEST_NOT_DRAFT", "Only draft requests can be changed", map[string]string{
		"request_id": id,
		"status":     string(status),
	})
}

func ErrInsufficientBalanceFor(requested, remaining string) *Error {
	return newError(KindInsufficientBalance, "INSUFFICIENT_BALANCE", "Insufficient leave balance", map[string]string{
		"requested": requested,
		"remaining": remaining,
	})
}

func ErrBalanceNotFound(id string) *Error {
	return newError(KindNotFound, "BALANCE_NOT_FOUND", "Leave balance not found", map[string]string{"balance_id": id})
}

func ErrBalanceExists(employeeID, leaveTypeID string, year int) *Error {
	return newError(KindConflict, "BALANCE_EXISTS", "Leave balance already exists", map[string]string{
		"employee_id":   employeeID,
		"leave_type_id": leaveTypeID,
		"year":          fmt.Sprintf("%d", year),
	})
}

func ErrBalanceInUse(id string) *Error {
	return newError(KindValidation, "BALANCE_IN_USE", "Leave balance holds reservations of existing requests", map[string]string{"balance_id": id})
}

func ErrNegativeAdjustment(id, remaining, delta string) *Error {
	return newError(KindValidation, "ADJUSTMENT_EXCEEDS_REMAINING", "Adjustment would make remaining days negative", map[string]string{
		"balance_id": id,
		"remaining":  remaining,
		"delta":      delta,
	})
}

func ErrInvalidCarryOverYears(fromYear, toYear int) *Error {
	return newError(KindValidation, "INVALID_CARRY_OVER_YEARS", "Destination year must be after source year", map[string]string{
		"from_year": fmt.Sprintf("%d", fromYear),
		"to_year":   fmt.Sprintf("%d", toYear),
	})
}

func ErrConcurrentModification(resource, id string) *Error {
	return newError(KindConcurrency, "CONCURRENT_MODIFICATION", "The record was modified concurrently, please retry", map[string]string{
		"resource": resource,
		"id":       id,
	})
}

func ErrInvalidDate(field, value string) *Error {
	return newError(KindValidation, "INVALID_DATE", fmt.Sprintf("%s must be a date in YYYY-MM-DD format", field), map[string]string{field: value})
}

func ErrHolidayNotFound(id string) *Error {
	return newError(KindNotFound, "HOLIDAY_NOT_FOUND", "Holiday not found", map[string]string{"holiday_id": id})
}

func ErrInvalidCloneYears(fromYear, toYear int) *Error {
	return newError(KindValidation, "INVALID_CLONE_YEARS", "Source and destination years must differ", map[string]string{
		"from_year": fmt.Sprintf("%d", fromYear),
		"to_year":   fmt.Sprintf("%d", toYear),
	})
}
