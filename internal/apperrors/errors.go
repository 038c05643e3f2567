// Package apperrors defines the error taxonomy shared by services and handlers.
package apperrors

import (
	"errors"
	"fmt"
)

// Kind categorizes an error for propagation and HTTP mapping
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuthentication
	KindForbidden
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	}
	return "internal"
}

// Error is a categorized application error
type Error struct {
	Kind    Kind
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Field != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Field, e.Message, e.Err)
	case e.Field != "":
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

var (
	ErrInvalidCredentials = &Error{Kind: KindAuthentication, Message: "invalid credentials"}
	ErrAccountDisabled    = &Error{Kind: KindAuthentication, Message: "account has been deactivated"}
	ErrTooManyAttempts    = &Error{Kind: KindAuthentication, Message: "too many failed login attempts, try again later"}
	ErrUnauthenticated    = &Error{Kind: KindAuthentication, Message: "authentication required"}
	ErrForbidden          = &Error{Kind: KindForbidden, Message: "access denied"}
	ErrSelfDemotion       = &Error{Kind: KindConflict, Field: "newRole", Message: "administrators cannot remove their own administrator role"}
	ErrSelfDeactivation   = &Error{Kind: KindConflict, Field: "userId", Message: "administrators cannot deactivate their own account"}
)

// Validation reports malformed input on a field
func Validation(field, message string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: message}
}

// Validationf reports malformed input with a formatted message
func Validationf(field, format string, args ...interface{}) *Error {
	return Validation(field, fmt.Sprintf(format, args...))
}

// Conflict reports a uniqueness or state conflict on a field
func Conflict(field, message string) *Error {
	return &Error{Kind: KindConflict, Field: field, Message: message}
}

// NotFound reports an unknown resource without revealing more than its type
func NotFound(resource string) *Error {
	return &Error{Kind: KindNotFound, Message: resource + " not found"}
}

// Forbidden reports insufficient capability
func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// Internal wraps an unexpected failure
func Internal(err error, message string) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain, or KindInternal
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// As extracts the first *Error in err's chain
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Is reports whether err carries the given kind
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
