// Package apperr defines the error taxonomy shared by services and handlers.
// Every error that reaches an HTTP response carries a Kind, which fixes the
// status code, and a stable machine-readable Code.
package apperr

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindDuplicateVote
	KindPersistence
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	case KindDuplicateVote:
		return "duplicate_vote"
	case KindPersistence:
		return "persistence"
	default:
		return "internal"
	}
}

// Status returns the HTTP status code for the kind.
func (k Kind) Status() int {
	switch k {
	case KindValidation, KindDuplicateVote:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified application error. Message is safe to show to
// clients; Err holds the underlying cause and is only ever logged.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Code + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Code + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Kind and Code so sentinels compare equal to wrapped copies.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

// Wrap returns a copy of e carrying cause.
func (e *Error) Wrap(cause error) *Error {
	cp := *e
	cp.Err = cause
	return &cp
}

func Validation(code, message string) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: message}
}

func Persistence(message string, cause error) *Error {
	return &Error{Kind: KindPersistence, Code: "PERSISTENCE_ERROR", Message: message, Err: cause}
}

var (
	ErrInvalidCredentials = &Error{Kind: KindAuthentication, Code: "INVALID_CREDENTIALS", Message: "Invalid credentials"}
	ErrMissingToken       = &Error{Kind: KindAuthentication, Code: "MISSING_TOKEN", Message: "No token, authorization denied"}
	ErrInvalidToken       = &Error{Kind: KindAuthentication, Code: "INVALID_TOKEN", Message: "Token is not valid"}
	ErrTokenExpired       = &Error{Kind: KindAuthentication, Code: "TOKEN_EXPIRED", Message: "Token has expired"}
	ErrAccessDenied       = &Error{Kind: KindAuthorization, Code: "ACCESS_DENIED", Message: "Access denied"}
	ErrDuplicateVote      = &Error{Kind: KindDuplicateVote, Code: "DUPLICATE_VOTE", Message: "You have already liked this complaint"}
	ErrComplaintNotFound  = &Error{Kind: KindNotFound, Code: "NOT_FOUND", Message: "Complaint not found"}
	ErrTicketUnavailable  = &Error{Kind: KindPersistence, Code: "TICKET_ID_UNAVAILABLE", Message: "Could not allocate a ticket id, please retry"}
	ErrLikeCountFailed    = &Error{Kind: KindPersistence, Code: "LIKE_COUNT_FAILED", Message: "Like recorded but the count could not be updated"}
)

// KindOf reports the Kind of the first *Error in err's chain, or
// KindInternal if there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
