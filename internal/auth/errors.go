package auth

import "errors"

var (
	// ErrInvalidCredentials is returned when the password does not match
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNotAdmin is returned when the account exists but is not an active administrator
	ErrNotAdmin = errors.New("account is not an administrator")

	// ErrAccountNotFound is returned by account stores when no user has the public id
	ErrAccountNotFound = errors.New("account not found")

	// ErrMissingToken is returned when a request carries no session token
	ErrMissingToken = errors.New("no token provided")

	// ErrTokenExpired is returned for tokens past their expiry
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid is returned for malformed or tampered tokens
	ErrTokenInvalid = errors.New("invalid token")

	// ErrTokenRevoked is returned for tokens invalidated by logout
	ErrTokenRevoked = errors.New("token revoked")
)
