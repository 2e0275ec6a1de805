package auth

import "context"

// RoleAdmin is the only role allowed through the admin session gate.
const RoleAdmin = "Admin"

// Account is the subset of a user the login flow needs.
type Account struct {
	PublicID     string
	Name         string
	Role         string
	PasswordHash string
	IsDeleted    bool
}

// AccountStore looks up accounts by public id. Implementations return
// ErrAccountNotFound when no user matches.
type AccountStore interface {
	FindAccount(ctx context.Context, publicID string) (*Account, error)
}
