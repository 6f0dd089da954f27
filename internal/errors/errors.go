package errors

import (
	"fmt"
)

// AppError represents a structured application error
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

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   appErr,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithCode adds an error code to an existing error
func WithCode(code string, err error) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    code,
			Message: appErr.Message,
			Cause:   appErr.Cause,
		}
	}
	return &AppError{
		Code:    code,
		Message: err.Error(),
		Cause:   err,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

// GetCode returns the error code if it's an AppError, otherwise returns "UNKNOWN"
func GetCode(err error) string {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return "UNKNOWN"
}

// Predefined error codes
const (
	CodeConfigInvalid         = "CONFIG_INVALID"
	CodeDataGenerationError   = "DATA_GENERATION_ERROR"
	CodeMissingnessInfeasible = "MISSINGNESS_INFEASIBLE"
	CodeImputationFailure     = "IMPUTATION_FAILURE"
	CodeModelFittingFailure   = "MODEL_FITTING_FAILURE"
	CodeScoringError          = "SCORING_ERROR"
	CodeSinkError             = "SINK_ERROR"
	CodeIOError               = "IO_ERROR"
	CodeValidationError       = "VALIDATION_ERROR"
	CodeNotFound              = "NOT_FOUND"
	CodeInternalError         = "INTERNAL_ERROR"
)

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func DataGenerationError(message string, cause error) *AppError {
	return &AppError{Code: CodeDataGenerationError, Message: message, Cause: cause}
}

func MissingnessInfeasible(message string, cause error) *AppError {
	return &AppError{Code: CodeMissingnessInfeasible, Message: message, Cause: cause}
}

func ImputationFailure(method string, cause error) *AppError {
	return &AppError{
		Code:    CodeImputationFailure,
		Message: fmt.Sprintf("imputation failed for method %s", method),
		Cause:   cause,
	}
}

func ModelFittingFailure(message string, cause error) *AppError {
	return &AppError{Code: CodeModelFittingFailure, Message: message, Cause: cause}
}

func ScoringError(message string, cause error) *AppError {
	return &AppError{Code: CodeScoringError, Message: message, Cause: cause}
}

func SinkError(message string, cause error) *AppError {
	return &AppError{Code: CodeSinkError, Message: message, Cause: cause}
}

func IOError(message string, cause error) *AppError {
	return &AppError{Code: CodeIOError, Message: message, Cause: cause}
}

func ValidationError(message string) *AppError {
	return New(CodeValidationError, message)
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}
