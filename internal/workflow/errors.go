package workflow

import (
	"errors"
)

// ValidationError is a local rejection that happens before any network call.
// errors.Is matches on Code, so a field-specific error still matches its sentinel.
type ValidationError struct {
	Code    string
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return e.Field + ": " + e.Message
	}
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	return ok && t.Code == e.Code
}

func (e *ValidationError) withField(field string) *ValidationError {
	return &ValidationError{Code: e.Code, Field: field, Message: e.Message}
}

var (
	ErrInvalidEmail     = &ValidationError{Code: "invalid_email", Message: "please enter a valid email address"}
	ErrMissingField     = &ValidationError{Code: "missing_field", Message: "please fill in all fields"}
	ErrWeakPassword     = &ValidationError{Code: "weak_password", Message: "password must be at least 6 characters"}
	ErrInvalidCode      = &ValidationError{Code: "invalid_code", Message: "please enter the 6-digit verification code"}
	ErrCodeExpired      = &ValidationError{Code: "code_expired", Message: "verification code expired, please request a new one"}
	ErrCodeMismatch     = &ValidationError{Code: "code_mismatch", Message: "invalid verification code"}
	ErrInvalidPhone     = &ValidationError{Code: "invalid_phone", Message: "please enter a valid phone number (at least 10 digits)"}
	ErrInvalidDate      = &ValidationError{Code: "invalid_date", Message: "please select a valid date"}
	ErrInvalidTime      = &ValidationError{Code: "invalid_time", Message: "please select a valid time"}
	ErrWeekendOnly      = &ValidationError{Code: "weekend_only", Message: "Please select Saturday or Sunday only."}
	ErrServicesRequired = &ValidationError{Code: "services_required", Message: "Please select at least one service."}
)

var (
	// ErrDeliveryFailed wraps any relay failure. The session is left as it was.
	ErrDeliveryFailed = errors.New("delivery failed")
	ErrSignupTimeout  = errors.New("timed out waiting for signup")
)
