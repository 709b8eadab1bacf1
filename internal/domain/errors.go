package domain

import "errors"

// Sentinel errors for token issuance and dictionary-service calls.
// Use errors.Is() for matching - never compare error strings.
var (
	// Credential and token errors
	ErrUserAborted          = errors.New("credential entry aborted by user")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrSigningKeyMissing    = errors.New("signing key not configured")
	ErrSigningFailure       = errors.New("token signing failed")
	ErrInvalidToken         = errors.New("invalid token")

	// Dictionary service response errors
	ErrNotFound         = errors.New("resource not found")
	ErrConflict         = errors.New("resource already exists")
	ErrUnauthorized     = errors.New("authentication required")
	ErrInvalidInput     = errors.New("invalid input")
	ErrUnexpectedStatus = errors.New("unexpected response status")
	ErrMalformedBody    = errors.New("malformed response body")

	// Smoke run errors
	ErrRunAborted  = errors.New("smoke run aborted")
	ErrCheckFailed = errors.New("check failed")

	// Configuration errors
	ErrConfigRequired = errors.New("required configuration key missing")
)

// authErrors enumerates failures that invalidate the whole session.
var authErrors = []error{
	ErrUserAborted,
	ErrAuthenticationFailed,
	ErrSigningKeyMissing,
	ErrSigningFailure,
}

// IsAuthError returns true if err means no usable token could be produced.
// Callers abort the run on these rather than issuing unauthenticated requests.
func IsAuthError(err error) bool {
	for _, target := range authErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsNotFound returns true if the error represents a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict returns true if the resource already existed on create.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
