// Package apperr defines the error kinds shared by the auth layer, the asset
// orchestrator and the HTTP handlers.
package apperr

import (
	"errors"
	"net/http"
)

type Kind string

const (
	Unauthenticated    Kind = "unauthenticated"
	InvalidCredential  Kind = "invalid_credential"
	Forbidden          Kind = "forbidden"
	NoRole             Kind = "no_role"
	Validation         Kind = "validation_error"
	NotFound           Kind = "not_found"
	Conflict           Kind = "conflict"
	InvalidLogin       Kind = "invalid_login"
	StorageUnavailable Kind = "storage_unavailable"
	ObjectStoreError   Kind = "object_store_error"
	OrphanResource     Kind = "orphan_resource"
	TooManyRequests    Kind = "too_many_requests"
	Internal           Kind = "internal"
)

// Error carries a stable kind and a client-safe message. Err is the cause and is never
// shown to clients.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Message returns the client-safe message for err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal server error"
}

// HTTPStatus maps a kind to its response status.
func HTTPStatus(kind Kind) int {
	switch kind {
	case Unauthenticated, InvalidCredential:
		return http.StatusUnauthorized
	case Forbidden, NoRole:
		return http.StatusForbidden
	case Validation, Conflict, InvalidLogin:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case TooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
