// Package errs defines the error taxonomy shared by services and handlers.
// Each kind carries a machine readable code and maps onto one HTTP status.
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindForbidden
	KindConflict
	KindUnauthorized
)

// Error is returned by services for every failure a caller is expected to handle.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	// Details is rendered alongside the code, e.g. per-field validation failures.
	Details interface{}
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) StatusCode() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func Validation(code, message string) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: message}
}

// WithDetails returns a copy of e carrying details.
func (e *Error) WithDetails(details interface{}) *Error {
	cp := *e
	cp.Details = details
	return &cp
}

func NotFound(code, message string) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: message}
}

func Forbidden(code, message string) *Error {
	return &Error{Kind: KindForbidden, Code: code, Message: message}
}

func Conflict(code, message string) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: message}
}

func Unauthorized(code, message string) *Error {
	return &Error{Kind: KindUnauthorized, Code: code, Message: message}
}

// As returns the *Error in err's chain, if any.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

func IsKind(err error, kind Kind) bool {
	e, ok := As(err)
	return ok && e.Kind == kind
}

var (
	ErrMoldNotFound          = NotFound("MOLD_NOT_FOUND", "Mold not found")
	ErrSessionNotFound       = NotFound("SESSION_NOT_FOUND", "Session not found")
	ErrActiveSessionNotFound = NotFound("SESSION_NOT_FOUND", "Active session not found")
	ErrInspectionNotFound    = NotFound("INSPECTION_NOT_FOUND", "Inspection not found")
	ErrSessionForbidden      = Forbidden("FORBIDDEN", "You do not have permission to view this session")
	ErrInspectionForbidden   = Forbidden("FORBIDDEN", "You can only update your own inspections")
	ErrReviewForbidden       = Forbidden("FORBIDDEN", "Only headquarters staff can review inspections")
	ErrActiveSessionExists   = Conflict("ACTIVE_SESSION_EXISTS", "An active scan session already exists for this user")
	ErrAlreadyReviewed       = Conflict("ALREADY_REVIEWED", "Inspection has already been reviewed")
)
