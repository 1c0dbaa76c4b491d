// Package apperr classifies every failure the console can show to an operator.
//
// Network failures, business failures reported by the backend and local
// validation failures all end up in the same user-visible channel, so they
// share one error type carrying the message to display.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindTransport    Kind = "transport"
	KindBusiness     Kind = "business"
	KindValidation   Kind = "validation"
	KindUnauthorized Kind = "unauthorized"
)

// DefaultMessage is shown when nothing more specific is known.
const DefaultMessage = "Something went wrong. Please try again."

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

func Transport(err error) *Error {
	return &Error{Kind: KindTransport, Err: err}
}

func Business(message string) *Error {
	return &Error{Kind: KindBusiness, Message: message}
}

func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func Validationf(format string, args ...any) *Error {
	return Validation(fmt.Sprintf(format, args...))
}

func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

// KindOf returns the kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func Is(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

// Message returns the message to show for err: the server or validation
// message verbatim when there is one, fallback otherwise.
func Message(err error, fallback string) string {
	if fallback == "" {
		fallback = DefaultMessage
	}
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return fallback
}
