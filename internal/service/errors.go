package service

import (
	"errors"
	"log/slog"

	"github.com/arbeit/talentportal/internal/security"
)

// Kind classifies a service failure for the transport layer
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindBadRequest
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindTooManyRequests
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindBadRequest:
		return "bad_request"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindTooManyRequests:
		return "too_many_requests"
	default:
		return "internal"
	}
}

// Error is returned by every service operation. Detail is safe to show to
// callers; Err is the underlying cause and is only logged.
type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Kind.String() + ": " + e.Detail + ": " + e.Err.Error()
	}
	return e.Kind.String() + ": " + e.Detail
}

func (e *Error) Unwrap() error { return e.Err }

func validationError(detail string) error { return &Error{Kind: KindValidation, Detail: detail} }
func badRequest(detail string) error      { return &Error{Kind: KindBadRequest, Detail: detail} }
func unauthorized(detail string) error    { return &Error{Kind: KindUnauthorized, Detail: detail} }
func forbidden(detail string) error       { return &Error{Kind: KindForbidden, Detail: detail} }
func notFound(detail string) error        { return &Error{Kind: KindNotFound, Detail: detail} }

// internalError logs err and hides it behind a generic detail
func internalError(logger *slog.Logger, msg string, err error) error {
	logger.Error(msg, slog.String("error", err.Error()))
	return &Error{Kind: KindInternal, Detail: "Internal server error", Err: err}
}

// AsError converts any error into a *Error. Policy denials become
// KindForbidden; anything unknown is internal.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return se
	}
	var denied *security.DeniedError
	if errors.As(err, &denied) {
		return &Error{Kind: KindForbidden, Detail: denied.Detail, Err: err}
	}
	return &Error{Kind: KindInternal, Detail: "Internal server error", Err: err}
}
