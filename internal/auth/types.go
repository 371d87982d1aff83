// internal/auth/types.go
package auth

import (
	"errors"
)

// Role is the closed set of roles a user record can carry
type Role string

const (
	// RoleAdmin may administer every resource
	RoleAdmin Role = "admin"

	// RoleReader is the default role for new users
	RoleReader Role = "reader"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleReader:
		return true
	}
	return false
}

// Principal represents an authenticated user for the lifetime of one request
type Principal struct {
	// ID is the hex ObjectID of the user record
	ID string

	// Role is read from the live user record, never from the credential
	Role Role
}

// Identity failures, all reported to the client as 401
var (
	ErrNoToken      = errors.New("no token")
	ErrInvalidToken = errors.New("invalid token")
	ErrUserNotFound = errors.New("user not found")
)

// Message returns the client-facing message for an identity failure.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrNoToken):
		return "Not authorized, no token"
	case errors.Is(err, ErrUserNotFound):
		return "User not found"
	default:
		return "Invalid token"
	}
}
