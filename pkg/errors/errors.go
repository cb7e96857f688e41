package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
)

const (
	CodeNotFound     = "NOT_FOUND"
	CodeValidation   = "VALIDATION_ERROR"
	CodeConflict     = "CONFLICT"
	CodeInternal     = "INTERNAL_ERROR"
	CodeBadRequest   = "BAD_REQUEST"
	CodeTimeout      = "TIMEOUT"
	CodeUnavailable  = "SERVICE_UNAVAILABLE"
	CodeInvalidInput = "INVALID_INPUT"

	// Booking-domain codes.
	CodeRuleConflict            = "RULE_CONFLICT"
	CodeInvalidServiceType      = "INVALID_SERVICE_TYPE"
	CodePastDate                = "PAST_DATE"
	CodeAdvanceWindow           = "ADVANCE_WINDOW"
	CodeDayNotAllowed           = "DAY_NOT_ALLOWED"
	CodeBookingConflict         = "BOOKING_CONFLICT"
	CodeDailyCapExceeded        = "DAILY_CAP_EXCEEDED"
	CodeInvalidStatusTransition = "INVALID_STATUS_TRANSITION"
	CodeCannotCancel            = "CANNOT_CANCEL"
)

type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Err        error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) StatusCode() int {
	return e.HTTPStatus
}

func (e *AppError) ToJSON() []byte {
	response := ErrorResponse{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	}
	data, _ := json.Marshal(response)
	return data
}

type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func New(code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

func Wrap(err error, code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

func (e *AppError) WithDetails(details map[string]any) *AppError {
	e.Details = details
	return e
}

func NotFound(resource string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
	}
}

func NotFoundWithID(resource, id string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details: map[string]any{
			"resource": resource,
			"id":       id,
		},
	}
}

func Validation(message string, details map[string]any) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    details,
	}
}

func InvalidInput(message string) *AppError {
	return &AppError{
		Code:       CodeInvalidInput,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

func Conflict(message string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

func Internal(message string, err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func Timeout(message string) *AppError {
	return &AppError{
		Code:       CodeTimeout,
		Message:    message,
		HTTPStatus: http.StatusGatewayTimeout,
	}
}

func Unavailable(service string) *AppError {
	return &AppError{
		Code:       CodeUnavailable,
		Message:    fmt.Sprintf("%s is temporarily unavailable", service),
		HTTPStatus: http.StatusServiceUnavailable,
	}
}

// RuleConflict reports an availability rule whose time window overlaps an
// existing rule for the same day and service type.
func RuleConflict(existingStart, existingEnd string) *AppError {
	return &AppError{
		Code:       CodeRuleConflict,
		Message:    fmt.Sprintf("rule overlaps existing availability window %s-%s", existingStart, existingEnd),
		HTTPStatus: http.StatusConflict,
		Details: map[string]any{
			"existing_start": existingStart,
			"existing_end":   existingEnd,
		},
	}
}

func InvalidServiceType(id string) *AppError {
	return &AppError{
		Code:       CodeInvalidServiceType,
		Message:    "service type does not exist or is not active",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"service_type_id": id},
	}
}

func PastDate(message string) *AppError {
	return &AppError{
		Code:       CodePastDate,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

func AdvanceWindow(message string, details map[string]any) *AppError {
	return &AppError{
		Code:       CodeAdvanceWindow,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    details,
	}
}

func DayNotAllowed(dayOfWeek int) *AppError {
	return &AppError{
		Code:       CodeDayNotAllowed,
		Message:    "service is not offered on the requested day",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"day_of_week": dayOfWeek},
	}
}

// BookingConflict reports a slot that is no longer free. The optional
// suggestion is best-effort and non-binding.
func BookingConflict(message string, suggestion map[string]any) *AppError {
	e := &AppError{
		Code:       CodeBookingConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
	if suggestion != nil {
		e.Details = map[string]any{"suggestion": suggestion}
	}
	return e
}

func DailyCapExceeded(cap int) *AppError {
	return &AppError{
		Code:       CodeDailyCapExceeded,
		Message:    fmt.Sprintf("daily booking limit of %d reached for this date", cap),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"max_bookings_per_day": cap},
	}
}

func InvalidStatusTransition(message string) *AppError {
	return &AppError{
		Code:       CodeInvalidStatusTransition,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

func CannotCancel(status string) *AppError {
	return &AppError{
		Code:       CodeCannotCancel,
		Message:    fmt.Sprintf("appointment in status %s cannot be cancelled", status),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"status": status},
	}
}

func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

func AsAppError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return Internal("An unexpected error occurred", err)
}

// HasCode reports whether err is an AppError carrying the given code.
func HasCode(err error, code string) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Code == code
}
