package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/retail/storefront/internal/domain/identity"
	"github.com/retail/storefront/internal/infrastructure/backend"
	"github.com/retail/storefront/internal/infrastructure/logger"
	"github.com/retail/storefront/internal/infrastructure/session"
	"go.uber.org/zap"
)

// SessionKey is the gin context key of the loaded session
const SessionKey = "session"

// Login pages a role gate sends anonymous visitors to
const (
	CustomerLoginPath = "/user/auth"
	AdminLoginPath    = "/admin/login"
)

// Session loads the visitor's session from the cookie, if any. The session
// is put on the gin context, the backend token and session fields on the
// request context. An unusable cookie is cleared.
func Session(manager *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, err := c.Cookie(manager.CookieName())
		if err != nil || value == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		sess, err := manager.Load(ctx, value)
		if err != nil {
			if !session.IsMissing(err) {
				logger.GetGinLogger(c).Error("Failed to load session", zap.Error(err))
			}
			http.SetCookie(c.Writer, manager.ExpiredCookie())
			c.Next()
			return
		}

		c.Set(SessionKey, sess)
		ctx = backend.WithToken(ctx, sess.Token)
		ctx = logger.WithSession(ctx, sess.ID, sess.User.ID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// CurrentSession returns the loaded session, or nil for anonymous visitors
func CurrentSession(c *gin.Context) *identity.Session {
	if v, exists := c.Get(SessionKey); exists {
		if sess, ok := v.(*identity.Session); ok {
			return sess
		}
	}
	return nil
}

// RequireRole admits only sessions holding role. Anonymous visitors go to
// the role's login page; signed-in users of another role go home.
func RequireRole(role identity.Role) gin.HandlerFunc {
	loginPath := CustomerLoginPath
	if role == identity.RoleAdmin {
		loginPath = AdminLoginPath
	}

	return func(c *gin.Context) {
		sess := CurrentSession(c)
		if sess == nil {
			c.Redirect(redirectStatus(c), loginPath)
			c.Abort()
			return
		}
		if sess.User.Role != role {
			logger.GetGinLogger(c).Warn("Role gate rejected request",
				zap.String("required", role.String()),
				zap.String("role", sess.User.Role.String()))
			c.Redirect(redirectStatus(c), sess.User.Role.HomePath())
			c.Abort()
			return
		}
		c.Next()
	}
}

func redirectStatus(c *gin.Context) int {
	if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
		return http.StatusFound
	}
	return http.StatusSeeOther
}
