package staff

import "errors"

var (
	// ErrNotFound is returned when no member with the public id exists for the role
	ErrNotFound = errors.New("staff member not found")

	// ErrEmailTaken is returned when the email already belongs to a user
	ErrEmailTaken = errors.New("a user with this email already exists")

	// ErrRoleNotFound is returned when the role row is missing
	ErrRoleNotFound = errors.New("role not found")

	// ErrPublicIDTaken is returned when an allocated public id collides with an existing row
	ErrPublicIDTaken = errors.New("public id already allocated")
)
