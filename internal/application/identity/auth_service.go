package identity

import (
	"context"
	"errors"
	"net/http"

	"github.com/retail/storefront/internal/domain/identity"
	"github.com/retail/storefront/internal/infrastructure/backend"
	"github.com/retail/storefront/internal/infrastructure/logger"
	"github.com/retail/storefront/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Fallback messages when the backend gives no usable reason
const (
	msgInvalidCredentials = "Invalid email or password"
	msgLoginFailed        = "Login failed. Please try again."
	msgRegisterFailed     = "Registration failed. Please try again."
)

// Authenticator is the backend auth API
type Authenticator interface {
	Login(ctx context.Context, email, password string) (backend.AuthResponse, error)
	Register(ctx context.Context, req backend.RegisterRequest) (backend.AuthResponse, error)
}

// SessionManager creates and destroys sessions
type SessionManager interface {
	Create(ctx context.Context, user identity.User, token string) (*identity.Session, error)
	Destroy(ctx context.Context, id string) error
}

// AuthService handles sign-in, registration and sign-out
type AuthService struct {
	auth     Authenticator
	sessions SessionManager
}

// NewAuthService creates a new authentication service
func NewAuthService(auth Authenticator, sessions SessionManager) *AuthService {
	return &AuthService{auth: auth, sessions: sessions}
}

// Login authenticates against the backend and opens a session
func (s *AuthService) Login(ctx context.Context, email, password string) LoginResult {
	ctx, span := telemetry.StartServiceSpan(ctx, "auth", "login")
	defer span.End()
	log := logger.L(ctx)

	resp, err := s.auth.Login(ctx, email, password)
	if err != nil {
		telemetry.RecordError(span, err)
		log.Warn("Login rejected", zap.Error(err))
		return LoginResult{Error: authFailureMessage(err, msgLoginFailed)}
	}

	user := resp.User()
	sess, err := s.sessions.Create(ctx, user, resp.Token)
	if err != nil {
		telemetry.RecordError(span, err)
		log.Error("Failed to create session", zap.Error(err))
		return LoginResult{Error: msgLoginFailed}
	}

	telemetry.SetAttributes(span, telemetry.SpanAttrUserID, user.ID)
	log.Info("User logged in", zap.Int64("user_id", user.ID), zap.String("role", user.Role.String()))
	return LoginResult{Success: true, Role: user.Role, Session: sess}
}

// SignIn logs in through a portal. A role the portal does not admit is
// reported as a form error and its fresh session is torn down.
func (s *AuthService) SignIn(ctx context.Context, portal identity.Portal, email, password string) LoginResult {
	result := s.Login(ctx, email, password)
	if !result.Success {
		return result
	}
	if err := portal.Admit(result.Role); err != nil {
		logger.L(ctx).Warn("Login through wrong portal",
			zap.String("portal", string(portal)),
			zap.String("role", result.Role.String()),
		)
		s.Logout(ctx, result.Session.ID)
		return LoginResult{Role: result.Role, Error: backend.Message(err)}
	}
	return result
}

// Register creates a customer account and opens a session for it
func (s *AuthService) Register(ctx context.Context, input RegisterInput) RegisterResult {
	ctx, span := telemetry.StartServiceSpan(ctx, "auth", "register")
	defer span.End()
	log := logger.L(ctx)

	resp, err := s.auth.Register(ctx, backend.RegisterRequest{
		Email:     input.Email,
		Password:  input.Password,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Phone:     input.Phone,
		Role:      identity.RoleCustomer,
	})
	if err != nil {
		telemetry.RecordError(span, err)
		log.Warn("Registration rejected", zap.Error(err))
		return RegisterResult{Error: authFailureMessage(err, msgRegisterFailed)}
	}

	user := resp.User()
	if user.Email == "" {
		user.Email = input.Email
	}
	if user.FirstName == "" {
		user.FirstName = input.FirstName
	}
	sess, err := s.sessions.Create(ctx, user, resp.Token)
	if err != nil {
		telemetry.RecordError(span, err)
		log.Error("Failed to create session", zap.Error(err))
		return RegisterResult{Error: msgRegisterFailed}
	}

	log.Info("User registered", zap.Int64("user_id", user.ID))
	return RegisterResult{Success: true, Session: sess}
}

// Logout tears the session down. Failures are logged only.
func (s *AuthService) Logout(ctx context.Context, sessionID string) {
	if err := s.sessions.Destroy(ctx, sessionID); err != nil {
		logger.L(ctx).Error("Failed to destroy session", zap.Error(err))
	}
}

func authFailureMessage(err error, fallback string) string {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != http.StatusText(apiErr.StatusCode) {
			return apiErr.Message
		}
		if apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden {
			return msgInvalidCredentials
		}
		return fallback
	}
	return backend.Message(err)
}
