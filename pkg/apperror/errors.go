// Package apperror is the single error contract shared by the store, ledger, policy and gateway.
// Callers match kinds with Is or KindOf rather than comparing messages.
package apperror

import (
	"errors"
	"fmt"
)

type AppError struct {
	Kind    Kind              `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
	Cause   error             `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Cause }

// Is reports a match when target is an *AppError of the same kind, so
// errors.Is(err, apperror.ErrUnauthorized) works on any unauthorized error.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

func New(kind Kind, message string) error {
	return &AppError{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, cause error) error {
	return &AppError{Kind: kind, Message: message, Cause: cause}
}

func Validation(message string, fields map[string]string) error {
	return &AppError{Kind: KindValidation, Message: message, Fields: fields}
}

// DuplicateUsername names the taken username in the field details; the
// message is the same for every username.
func DuplicateUsername(username string) error {
	return &AppError{
		Kind:    KindDuplicateUsername,
		Message: "Username taken. Please pick another!",
		Fields:  map[string]string{"username": fmt.Sprintf("%q is taken", username)},
	}
}

func UnknownUser(username string) error {
	return New(KindUnknownUser, fmt.Sprintf("unknown user %q", username))
}

func NotFound(message string) error {
	return New(KindNotFound, message)
}

func Unauthorized(message string) error {
	return New(KindUnauthorized, message)
}

func InvalidToken(cause error) error {
	return Wrap(KindInvalidToken, "invalid token", cause)
}

func Internal(message string, cause error) error {
	return Wrap(KindInternal, message, cause)
}

// Sentinels for errors.Is matching.
var (
	ErrValidation         = &AppError{Kind: KindValidation}
	ErrDuplicateUsername  = &AppError{Kind: KindDuplicateUsername}
	ErrInvalidCredentials = &AppError{Kind: KindInvalidCredentials, Message: "Incorrect username/password"}
	ErrUnknownUser        = &AppError{Kind: KindUnknownUser}
	ErrNotFound           = &AppError{Kind: KindNotFound}
	ErrUnauthorized       = &AppError{Kind: KindUnauthorized}
	ErrInvalidToken       = &AppError{Kind: KindInvalidToken}
)

// KindOf returns the kind of the first AppError in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// Status returns the HTTP status code for err.
func Status(err error) int {
	return KindOf(err).Status()
}

// PublicMessage returns a message that is safe to show to a client. Internal
// failures never leak their cause.
func PublicMessage(err error) string {
	var ae *AppError
	if !errors.As(err, &ae) || ae.Kind == KindInternal {
		return "internal server error"
	}
	switch ae.Kind {
	case KindInvalidToken:
		return "invalid token"
	case KindInvalidCredentials:
		return ErrInvalidCredentials.Message
	}
	return ae.Message
}

// FieldsOf returns per-field validation details, if any.
func FieldsOf(err error) map[string]string {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Fields
	}
	return nil
}
