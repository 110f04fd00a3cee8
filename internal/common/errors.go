package common

import (
	"context"
	"errors"
	"fmt"
	"reflect"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Error categories reported as error_type.
const (
	CodeConversion        = "ConversionError"
	CodeUnsupportedFormat = "UnsupportedFormatError"
	CodeEngineUnavailable = "EngineUnavailableError"
	CodeInvalidOutput     = "InvalidOutputError"
	CodeConfig            = "ConfigError"
	CodePanic             = "PanicError"
	CodeTimeout           = "TimeoutError"
)

// Common application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnavailable  = errors.New("unavailable")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// FromPanic turns a recovered panic value into an error.
func FromPanic(v any) error {
	if err, ok := v.(error); ok {
		return NewAppError(CodePanic, "unexpected panic", err)
	}
	return NewAppError(CodePanic, fmt.Sprintf("unexpected panic: %v", v), nil)
}

// generic wrappers from the standard library carry no category of their own
var anonymousErrorTypes = map[string]struct{}{
	"errorString": {},
	"wrapError":   {},
	"wrapErrors":  {},
	"joinError":   {},
}

// ErrorType classifies err into a category name: the AppError code when there is one,
// TimeoutError for deadline errors, otherwise the first named error type found on the
// unwrap chain (e.g. PathError, ExitError).
func ErrorType(err error) string {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return CodeTimeout
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		t := reflect.TypeOf(e)
		for t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		if _, skip := anonymousErrorTypes[t.Name()]; t.Name() != "" && !skip {
			return t.Name()
		}
	}
	return "Error"
}

// ErrorMessage renders err for users: AppErrors lose their code prefix.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if errors.As(err, &appErr) && appErr == err {
		if appErr.Cause != nil {
			return fmt.Sprintf("%s: %v", appErr.Message, appErr.Cause)
		}
		return appErr.Message
	}
	return err.Error()
}
