package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	Validation Kind = iota
	NotFound
	Authorization
	Conflict
	ExternalVerification
	State
)

// Error carries a stable machine-readable reason code alongside a human
// message. The reason is what API clients switch on; the message may change.
type Error struct {
	Kind   Kind
	Reason string
	msg    string
	err    error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

func (e *Error) Unwrap() error { return e.err }

func New(kind Kind, reason, msg string) *Error {
	return &Error{Kind: kind, Reason: reason, msg: msg}
}

func Wrap(kind Kind, reason, msg string, err error) *Error {
	return &Error{Kind: kind, Reason: reason, msg: msg, err: err}
}

// As unwraps err into an *Error, or nil when it is not one.
func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}

func IsKind(err error, kind Kind) bool {
	e := As(err)
	return e != nil && e.Kind == kind
}

// HTTPStatus maps an error to the status code the echo error handler writes.
func HTTPStatus(err error) int {
	e := As(err)
	if e == nil {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case Validation:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case Authorization:
		return http.StatusForbidden
	case Conflict:
		return http.StatusConflict
	case ExternalVerification:
		return http.StatusBadRequest
	case State:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
