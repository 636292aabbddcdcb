package backend

import (
	"context"
	"net/http"

	"github.com/retail/storefront/internal/domain/identity"
)

// AuthResponse is returned by login and registration
type AuthResponse struct {
	Token     string `json:"token"`
	UserID    int64  `json:"userId"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// User converts the response into the session user
func (r AuthResponse) User() identity.User {
	return identity.User{
		ID:        r.UserID,
		Email:     r.Email,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Phone:     r.Phone,
		Role:      identity.ParseRole(r.Role),
	}
}

// RegisterRequest is the registration payload
type RegisterRequest struct {
	Email     string        `json:"email"`
	Password  string        `json:"password"`
	FirstName string        `json:"firstName"`
	LastName  string        `json:"lastName"`
	Phone     string        `json:"phone"`
	Role      identity.Role `json:"role"`
}

// AuthClient wraps /api/auth
type AuthClient struct{ c *Client }

// NewAuthClient creates an auth client
func NewAuthClient(c *Client) *AuthClient { return &AuthClient{c: c} }

// Login exchanges credentials for a token and profile
func (a *AuthClient) Login(ctx context.Context, email, password string) (AuthResponse, error) {
	var out AuthResponse
	body := map[string]string{"email": email, "password": password}
	err := a.c.do(ctx, request{resource: "auth", method: http.MethodPost, path: pathf("auth", "login"), body: body}, &out)
	return out, err
}

// Register creates an account and signs it in
func (a *AuthClient) Register(ctx context.Context, req RegisterRequest) (AuthResponse, error) {
	var out AuthResponse
	err := a.c.do(ctx, request{resource: "auth", method: http.MethodPost, path: pathf("auth", "register"), body: req}, &out)
	return out, err
}
