package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies an error for both the API layer and the dashboard.
type Kind string

const (
	KindValidation Kind = "VALIDATION"
	KindAuth       Kind = "AUTH"
	KindPermission Kind = "PERMISSION"
	KindNetwork    Kind = "NETWORK"
	KindNotFound   Kind = "NOT_FOUND"
	KindState      Kind = "STATE"
	KindInternal   Kind = "INTERNAL"
)

// Error is the application error carried across package boundaries.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) *Error { return newError(KindValidation, format, args...) }
func Auth(format string, args ...any) *Error       { return newError(KindAuth, format, args...) }
func Permission(format string, args ...any) *Error { return newError(KindPermission, format, args...) }
func NotFound(format string, args ...any) *Error   { return newError(KindNotFound, format, args...) }
func State(format string, args ...any) *Error      { return newError(KindState, format, args...) }

// Network wraps a transport failure or a failed server response.
func Network(message string, err error) *Error {
	return &Error{Kind: KindNetwork, Message: message, Err: err}
}

// Internal wraps an unexpected failure.
func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// KindOf returns the kind of err, or KindInternal when err is not an *Error.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// MessageOf returns the user-facing message of err.
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

func Is(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}

func IsNotFound(err error) bool   { return Is(err, KindNotFound) }
func IsValidation(err error) bool { return Is(err, KindValidation) }
func IsPermission(err error) bool { return Is(err, KindPermission) }
func IsState(err error) bool      { return Is(err, KindState) }
func IsAuth(err error) bool       { return Is(err, KindAuth) }
func IsNetwork(err error) bool    { return Is(err, KindNetwork) }
