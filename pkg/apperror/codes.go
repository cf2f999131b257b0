package apperror

import "net/http"

// Kind classifies a failure so the HTTP layer can pick a status code and a safe message.
type Kind string

const (
	KindInternal           Kind = "INTERNAL"
	KindValidation         Kind = "VALIDATION"
	KindDuplicateUsername  Kind = "DUPLICATE_USERNAME"
	KindInvalidCredentials Kind = "INVALID_CREDENTIALS"
	KindUnknownUser        Kind = "UNKNOWN_USER"
	KindNotFound           Kind = "NOT_FOUND"
	KindUnauthorized       Kind = "UNAUTHORIZED"
	KindInvalidToken       Kind = "INVALID_TOKEN"
)

// Status maps a kind to its HTTP status code.
func (k Kind) Status() int {
	switch k {
	case KindValidation, KindDuplicateUsername, KindInvalidCredentials:
		return http.StatusBadRequest
	case KindUnknownUser, KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized, KindInvalidToken:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
