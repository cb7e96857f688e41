package errors

import (
	"errors"
	"net/http"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	e := New(CodeBookingConflict, "slot taken", http.StatusConflict)
	if got := e.Error(); got != "BOOKING_CONFLICT: slot taken" {
		t.Errorf("unexpected error string: %s", got)
	}

	wrapped := Wrap(errors.New("write failed"), CodeInternal, "db error", http.StatusInternalServerError)
	if got := wrapped.Error(); got != "INTERNAL_ERROR: db error (caused by: write failed)" {
		t.Errorf("unexpected wrapped error string: %s", got)
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("connection reset")
	e := Internal("repository failure", cause)
	if !errors.Is(e, cause) {
		t.Error("expected errors.Is to find wrapped cause")
	}
}

func TestDomainConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantStatus int
	}{
		{"rule conflict", RuleConflict("09:00", "12:00"), CodeRuleConflict, http.StatusConflict},
		{"invalid service type", InvalidServiceType("abc"), CodeInvalidServiceType, http.StatusUnprocessableEntity},
		{"past date", PastDate("scheduled date must be in the future"), CodePastDate, http.StatusUnprocessableEntity},
		{"advance window", AdvanceWindow("too soon", nil), CodeAdvanceWindow, http.StatusUnprocessableEntity},
		{"day not allowed", DayNotAllowed(2), CodeDayNotAllowed, http.StatusUnprocessableEntity},
		{"booking conflict", BookingConflict("slot no longer available", nil), CodeBookingConflict, http.StatusConflict},
		{"daily cap", DailyCapExceeded(3), CodeDailyCapExceeded, http.StatusConflict},
		{"status transition", InvalidStatusTransition("completed is terminal"), CodeInvalidStatusTransition, http.StatusConflict},
		{"cannot cancel", CannotCancel("COMPLETED"), CodeCannotCancel, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("code = %s, want %s", tt.err.Code, tt.wantCode)
			}
			if tt.err.StatusCode() != tt.wantStatus {
				t.Errorf("status = %d, want %d", tt.err.StatusCode(), tt.wantStatus)
			}
		})
	}
}

func TestHasCode(t *testing.T) {
	err := DailyCapExceeded(2)
	if !HasCode(err, CodeDailyCapExceeded) {
		t.Error("expected HasCode to match")
	}
	if HasCode(err, CodeBookingConflict) {
		t.Error("expected HasCode mismatch for different code")
	}
	if HasCode(errors.New("plain"), CodeInternal) {
		t.Error("plain error should not match any code")
	}
}

func TestBookingConflictSuggestion(t *testing.T) {
	err := BookingConflict("slot no longer available", map[string]any{
		"date": "2026-09-01",
		"time": "10:30",
	})
	suggestion, ok := err.Details["suggestion"].(map[string]any)
	if !ok {
		t.Fatal("expected suggestion details")
	}
	if suggestion["time"] != "10:30" {
		t.Errorf("unexpected suggestion time: %v", suggestion["time"])
	}
}
