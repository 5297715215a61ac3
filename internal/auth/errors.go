package auth

import (
	"errors"
	"net/http"
)

// Stable machine-readable error codes surfaced to API clients. Collaborator
// errors (storage, crypto libraries) are wrapped into these before they leave
// the auth core; raw library errors never cross this boundary.
const (
	CodeValidation       = "AUTH_VALIDATION_FAILED"
	CodeNonceNotFound    = "AUTH_NONCE_NOT_FOUND"
	CodeNonceExpired     = "AUTH_NONCE_EXPIRED"
	CodeSignatureInvalid = "AUTH_SIGNATURE_INVALID"
	CodeUserBlocked      = "AUTH_USER_BLOCKED"
	CodeTokenInvalid     = "AUTH_TOKEN_INVALID"
	CodeTokenWrongKind   = "AUTH_TOKEN_WRONG_KIND"

	CodeNonceInsertFailed   = "DATABASE_NONCE_INSERT_FAILED"
	CodeNonceConsumeFailed  = "DATABASE_NONCE_CONSUME_FAILED"
	CodeUserUpsertFailed    = "DATABASE_USER_UPSERT_FAILED"
	CodeUserLookupFailed    = "DATABASE_USER_LOOKUP_FAILED"
	CodeSessionCreateFailed = "DATABASE_SESSION_CREATE_FAILED"
	CodeSessionLookupFailed = "DATABASE_SESSION_LOOKUP_FAILED"
	CodeTokenSignFailed     = "AUTH_TOKEN_SIGN_FAILED"
)

// Error is the domain error type for the authentication core. Two Errors are
// considered equivalent by errors.Is when their codes match, so wrapped
// instances carrying a cause still compare against the sentinels below.
type Error struct {
	Code    string
	Message string
	cause   error
}

func (e *Error) Error() string { return e.Code + ": " + e.Message }

func (e *Error) Unwrap() error { return e.cause }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

var (
	// ErrNonceNotFound deliberately covers both "never issued" and "already
	// used" so a caller cannot probe replay state.
	ErrNonceNotFound = &Error{Code: CodeNonceNotFound, Message: "Nonce not found or already used. Please request a new nonce."}

	ErrNonceExpired     = &Error{Code: CodeNonceExpired, Message: "Nonce has expired. Please request a new nonce."}
	ErrSignatureInvalid = &Error{Code: CodeSignatureInvalid, Message: "Invalid signature. Verification failed."}
	ErrUserBlocked      = &Error{Code: CodeUserBlocked, Message: "This account has been suspended."}
	ErrTokenInvalid     = &Error{Code: CodeTokenInvalid, Message: "Invalid or expired token."}
	ErrTokenWrongKind   = &Error{Code: CodeTokenWrongKind, Message: "Token kind is not accepted here."}
)

func validationError(message string) *Error {
	return &Error{Code: CodeValidation, Message: message}
}

func infraError(code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// HTTPStatus maps a domain error to the HTTP status the transport layer
// should respond with. Unknown errors are treated as server failures.
func HTTPStatus(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Code {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeNonceNotFound, CodeNonceExpired, CodeSignatureInvalid,
		CodeUserBlocked, CodeTokenInvalid, CodeTokenWrongKind:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
