package apperror

import "fmt"

// AppError is the error currency of the service layer. Handlers never
// inspect Code or HTTPStatus directly; ToHTTP maps them onto the envelope.
// Attendance-specific codes (gate denial, geofence rejection, stale
// heartbeat) live in codes.go.
type AppError struct {
	Code       string // stable machine-readable code, e.g. PAYMENT_REQUIRED
	Message    string // participant-facing message
	HTTPStatus int
	Err        error // wrapped cause, optional
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap implements errors.Unwrap interface for errors.Is/As
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError without wrapping
func New(code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        nil,
	}
}

// Wrap creates an AppError that wraps an existing error
func Wrap(err error, code, message string, httpStatus int) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}
