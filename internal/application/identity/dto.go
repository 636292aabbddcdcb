package identity

import "github.com/retail/storefront/internal/domain/identity"

// RegisterInput is the customer registration form
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

// LoginResult is the outcome of a sign-in attempt. Failures carry a message
// for the form instead of a Go error.
type LoginResult struct {
	Success bool
	Role    identity.Role
	Error   string
	Session *identity.Session
}

// RegisterResult is the outcome of a registration attempt
type RegisterResult struct {
	Success bool
	Error   string
	Session *identity.Session
}
