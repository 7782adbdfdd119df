package errors

import (
	stderrors "errors"
	"fmt"

	"lcgwalk/domain/core"
)

// AppError is the coded error returned across layer boundaries: config
// loading, persistence, report writing and the HTTP surface.
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Predefined error codes
const (
	CodeConfigInvalid   = "CONFIG_INVALID"
	CodeDatabaseError   = "DATABASE_ERROR"
	CodeValidationError = "VALIDATION_ERROR"
	CodeNotFound        = "NOT_FOUND"
	CodeInternalError   = "INTERNAL_ERROR"
	CodeInvalidInput    = "INVALID_INPUT"
	CodeIOError         = "IO_ERROR"
	CodeUnknown         = "UNKNOWN"
)

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap adds context to err. The code of an AppError in the chain is kept;
// anything else is classified with Classify.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &AppError{Code: GetCode(Classify(err)), Message: message, Cause: err}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithCode replaces the code of err, keeping its message and cause.
func WithCode(code string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) && appErr == err {
		return &AppError{Code: code, Message: appErr.Message, Cause: appErr.Cause}
	}
	return &AppError{Code: code, Message: err.Error(), Cause: err}
}

// Classify gives domain sentinels a code. Configuration-level failures of a
// search (bad modulus, too few samples, bad alpha or attempt budget, bad
// threshold or step) are caller input; an exhausted search is a validation
// outcome. Errors that already carry a code are returned unchanged.
func Classify(err error) error {
	if err == nil || IsAppError(err) {
		return err
	}
	switch {
	case core.IsConfigError(err),
		stderrors.Is(err, core.ErrInvalidThreshold),
		stderrors.Is(err, core.ErrInvalidStepDuration):
		return &AppError{Code: CodeInvalidInput, Message: err.Error(), Cause: err}
	case stderrors.Is(err, core.ErrValidationExhausted):
		return &AppError{Code: CodeValidationError, Message: err.Error(), Cause: err}
	default:
		return &AppError{Code: CodeInternalError, Message: err.Error(), Cause: err}
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// GetCode returns the outermost AppError code in the chain, otherwise CodeUnknown
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func ConfigInvalidf(format string, args ...interface{}) *AppError {
	return New(CodeConfigInvalid, fmt.Sprintf(format, args...))
}

func DatabaseError(message string, cause error) *AppError {
	return &AppError{Code: CodeDatabaseError, Message: message, Cause: cause}
}

func ValidationError(message string) *AppError {
	return New(CodeValidationError, message)
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

func IOError(message string, cause error) *AppError {
	return &AppError{Code: CodeIOError, Message: message, Cause: cause}
}
