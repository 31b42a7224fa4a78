package service

import (
	"errors"
	"fmt"
)

// Error kinds. Match them with errors.Is on any error returned by a service.
var (
	ErrBadRequest         = errors.New("bad request")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPendingApproval    = errors.New("pending approval")
	ErrRejected           = errors.New("rejected")
)

// Error is a client-facing failure. MessageID names a localized message and
// Data fills its template.
type Error struct {
	Kind      error
	MessageID string
	Data      map[string]any
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v: %s", e.Kind, e.MessageID)
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func fail(kind error, messageID string) *Error {
	return &Error{Kind: kind, MessageID: messageID}
}

func failWith(kind error, messageID string, data map[string]any) *Error {
	return &Error{Kind: kind, MessageID: messageID, Data: data}
}
