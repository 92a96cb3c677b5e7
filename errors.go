package skywatch

import (
	"errors"
	"fmt"
)

// Application error codes.
//
// EUNAVAILABLE and ETIMEOUT are transient: callers retry them with backoff
// up to a bounded attempt count. Every other code is permanent for the
// document that produced it.
const (
	ECANCELED    = "canceled"
	EINTERNAL    = "internal"
	EINVALID     = "invalid"
	ENOTFOUND    = "not_found"
	ESCHEMA      = "schema"
	ETIMEOUT     = "timeout"
	EUNAVAILABLE = "unavailable"
)

// Error represents an application-specific error. Errors carry a machine
// readable code and a human readable message.
type Error struct {
	// Code is one of the E* constants above.
	Code string

	// Message is a human-readable description of the error.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("skywatch error: code=%s message=%s", e.Code, e.Message)
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors always return EINTERNAL.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors always return "Internal error.".
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error."
}

// Errorf is a helper function to return an Error with a given code and
// formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// IsTransient reports whether err is worth retrying. Transient errors are
// service overload, rate limiting and timeouts; everything else is treated
// as permanent.
func IsTransient(err error) bool {
	switch ErrorCode(err) {
	case EUNAVAILABLE, ETIMEOUT:
		return true
	}
	return false
}
