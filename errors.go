package sso

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes attached to the structured errors below. Callers can map them
// to response payloads without string-matching error messages.
const (
	TextCodeTokenMissing       = "TOKEN_MISSING"
	TextCodeTokenTooShort      = "TOKEN_TOO_SHORT"
	TextCodeTokenTooLong       = "TOKEN_TOO_LONG"
	TextCodeEmptyPassword      = "EMPTY_PASSWORD"
	TextCodeEmptyDigest        = "EMPTY_DIGEST"
	TextCodeNilCredentials     = "NIL_CREDENTIALS"
	TextCodeInvalidCreds       = "INVALID_CREDENTIALS"
	TextCodeAuthServiceDown    = "AUTH_SERVICE_UNAVAILABLE"
	TextCodeAuthRejected       = "AUTH_REJECTED"
	TextCodeEmptyIdentity      = "EMPTY_IDENTITY"
	TextCodeIdentityNotFound   = "IDENTITY_NOT_FOUND"
	TextCodeAdminRequired      = "ADMIN_REQUIRED"
	TextCodeRecordExists       = "RECORD_EXISTS"
	TextCodeBackendUnavailable = "BACKEND_UNAVAILABLE"
	TextCodeMissingSigningKey  = "MISSING_SIGNING_KEY"
	TextCodeSessionInvalid     = "SESSION_INVALID"
)

// ErrTokenMissing is returned when no bearer token was provided.
var ErrTokenMissing = goerrors.New("no authentication token received", goerrors.CategoryValidation).
	WithTextCode(TextCodeTokenMissing)

// ErrTokenTooShort is returned when a sanitized bearer token is under the
// minimum length bound.
var ErrTokenTooShort = goerrors.New("authentication token is too short", goerrors.CategoryValidation).
	WithTextCode(TextCodeTokenTooShort)

// ErrTokenTooLong is returned when a sanitized bearer token is over the
// maximum length bound.
var ErrTokenTooLong = goerrors.New("authentication token is too long", goerrors.CategoryValidation).
	WithTextCode(TextCodeTokenTooLong)

// ErrEmptyPassword is returned when a hash or verify call receives an empty
// plaintext.
var ErrEmptyPassword = goerrors.New("password must not be empty", goerrors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword)

// ErrEmptyDigest is returned when a verify call receives an empty digest.
var ErrEmptyDigest = goerrors.New("password digest must not be empty", goerrors.CategoryValidation).
	WithTextCode(TextCodeEmptyDigest)

// ErrNilCredentials is returned when an operation receives nil credentials.
var ErrNilCredentials = goerrors.New("credentials must not be nil", goerrors.CategoryValidation).
	WithTextCode(TextCodeNilCredentials)

// ErrLoginFailed is the single, deliberately ambiguous answer to both an
// unknown email and a wrong password. Logs distinguish the two; callers
// must not, to avoid account enumeration.
var ErrLoginFailed = goerrors.New("login failed", goerrors.CategoryNotFound).
	WithTextCode(TextCodeInvalidCreds)

// ErrAuthServiceUnavailable is returned when the remote authentication
// service cannot be reached.
var ErrAuthServiceUnavailable = goerrors.New("error connecting to authentication server", goerrors.CategoryAuth).
	WithTextCode(TextCodeAuthServiceDown)

// ErrEmptyIdentity is returned when the remote authentication service
// answers 201 with an empty credentials payload.
var ErrEmptyIdentity = goerrors.New("authentication server returned empty credentials", goerrors.CategoryAuth).
	WithTextCode(TextCodeEmptyIdentity)

// ErrIdentityNotFound is returned when a remote-resolved identity has no
// record in the local store.
var ErrIdentityNotFound = goerrors.New("identity not found", goerrors.CategoryNotFound).
	WithTextCode(TextCodeIdentityNotFound)

// ErrAdminRequired is returned when a privileged mutation is attempted by a
// caller whose current stored admin flag is false.
var ErrAdminRequired = goerrors.New("administrator privileges required", goerrors.CategoryAuthz).
	WithTextCode(TextCodeAdminRequired).
	WithCode(goerrors.CodeForbidden)

// ErrRecordExists is returned when an insert collides with an existing
// unique value.
var ErrRecordExists = goerrors.New("credentials record already exists", goerrors.CategoryConflict).
	WithTextCode(TextCodeRecordExists)

// ErrMissingSigningKey is returned when a SessionTokenizer is constructed
// without a signing key. Keys are operational secrets and must come from
// configuration, never from a source constant.
var ErrMissingSigningKey = goerrors.New("session signing key must not be empty", goerrors.CategoryValidation).
	WithTextCode(TextCodeMissingSigningKey)

// ErrSessionInvalid is returned when a session token fails signature or
// claims validation.
var ErrSessionInvalid = goerrors.New("session token is invalid", goerrors.CategoryAuth).
	WithTextCode(TextCodeSessionInvalid)

// IsValidationError reports whether err is a malformed-input error raised at
// a component boundary.
func IsValidationError(err error) bool {
	return hasCategory(err, goerrors.CategoryValidation)
}

// IsAuthenticationError reports whether err came from resolving a bearer
// token against the remote authentication service.
func IsAuthenticationError(err error) bool {
	return hasCategory(err, goerrors.CategoryAuth)
}

// IsAuthorizationError reports whether err is an admin-gate rejection.
// Kept distinct from IsAuthenticationError so callers can map the two to
// different response codes.
func IsAuthorizationError(err error) bool {
	return hasCategory(err, goerrors.CategoryAuthz)
}

// IsPersistenceError reports whether err means the backing store itself
// failed, as opposed to a record not being found.
func IsPersistenceError(err error) bool {
	return hasCategory(err, goerrors.CategoryOperation)
}

// IsNotFound reports whether err signals an absent record or a failed
// login, without distinguishing the two.
func IsNotFound(err error) bool {
	return hasCategory(err, goerrors.CategoryNotFound)
}

func hasCategory(err error, category goerrors.Category) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.Category == category
	}
	return false
}

// isUniqueViolation checks for a unique-constraint failure across the SQL
// drivers the store runs on.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
