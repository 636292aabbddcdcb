package identity

import (
	"strings"

	"github.com/retail/storefront/internal/domain/shared"
)

// Role is the account role returned by the backend at login
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleAdmin    Role = "ADMIN"
)

// IsValid checks if the role is a known role
func (r Role) IsValid() bool {
	return r == RoleCustomer || r == RoleAdmin
}

// String returns the string representation of Role
func (r Role) String() string {
	return string(r)
}

// ParseRole normalizes a backend role string. Unknown values map to CUSTOMER.
func ParseRole(s string) Role {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.IsValid() {
		return RoleCustomer
	}
	return r
}

// User is the authenticated account as held by the storefront session
type User struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	Role      Role   `json:"role"`
}

// IsAdmin reports whether the user holds the ADMIN role
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// DisplayName returns the first name, falling back to the email address
func (u User) DisplayName() string {
	if u.FirstName != "" {
		return u.FirstName
	}
	return u.Email
}

// Portal identifies which login form a user came through
type Portal string

const (
	PortalCustomer Portal = "customer"
	PortalAdmin    Portal = "admin"
)

// Portal mismatch errors. The messages are rendered verbatim on the login forms.
var (
	ErrAdminWrongPortal = shared.NewDomainError("WRONG_PORTAL", "Admin accounts should use the admin login portal")
	ErrAdminRequired    = shared.NewDomainError("FORBIDDEN", "Access denied. Admin credentials required.")
)

// Admit checks whether a role may sign in through this portal
func (p Portal) Admit(role Role) error {
	switch p {
	case PortalAdmin:
		if role != RoleAdmin {
			return ErrAdminRequired
		}
	default:
		if role == RoleAdmin {
			return ErrAdminWrongPortal
		}
	}
	return nil
}

// HomePath returns the dashboard path for the role
func (r Role) HomePath() string {
	if r == RoleAdmin {
		return "/admin"
	}
	return "/dashboard"
}
