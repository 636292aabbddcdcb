package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	appidentity "github.com/retail/storefront/internal/application/identity"
	"github.com/retail/storefront/internal/domain/identity"
	"github.com/retail/storefront/internal/infrastructure/logger"
	"github.com/retail/storefront/internal/interfaces/http/middleware"
	"github.com/retail/storefront/internal/interfaces/http/view"
	"go.uber.org/zap"
)

const msgSignInUnavailable = "Unable to sign in right now. Please try again."

// SessionCookies issues and clears the session cookie
type SessionCookies interface {
	SessionSaver
	Cookie(sess *identity.Session) (*http.Cookie, error)
	ExpiredCookie() *http.Cookie
}

// AuthPage is the data of both login pages
type AuthPage struct {
	Page
	Register bool
	Form     RegisterForm
}

// AuthHandler serves the customer and admin sign-in pages
type AuthHandler struct {
	BaseHandler
	auth    *appidentity.AuthService
	cookies SessionCookies
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(auth *appidentity.AuthService, cookies SessionCookies) *AuthHandler {
	return &AuthHandler{
		BaseHandler: BaseHandler{sessions: cookies},
		auth:        auth,
		cookies:     cookies,
	}
}

// CustomerPage shows the customer login or, with ?mode=register, sign-up form
func (h *AuthHandler) CustomerPage(c *gin.Context) {
	if h.redirectSignedIn(c) {
		return
	}
	h.renderCustomer(c, http.StatusOK, "", RegisterForm{})
}

// CustomerSubmit handles the customer login and sign-up posts
func (h *AuthHandler) CustomerSubmit(c *gin.Context) {
	if isRegister(c) {
		h.register(c)
		return
	}

	var form LoginForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderCustomer(c, http.StatusUnprocessableEntity, middleware.ValidationMessage(err), RegisterForm{Email: form.Email})
		return
	}

	result := h.auth.SignIn(c.Request.Context(), identity.PortalCustomer, form.Email, form.Password)
	if !result.Success {
		h.renderCustomer(c, http.StatusUnauthorized, result.Error, RegisterForm{Email: form.Email})
		return
	}
	h.startSession(c, result.Session, func(msg string) {
		h.renderCustomer(c, http.StatusInternalServerError, msg, RegisterForm{Email: form.Email})
	})
}

func (h *AuthHandler) register(c *gin.Context) {
	var form RegisterForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderCustomer(c, http.StatusUnprocessableEntity, middleware.ValidationMessage(err), form)
		return
	}

	result := h.auth.Register(c.Request.Context(), appidentity.RegisterInput{
		Email:     form.Email,
		Password:  form.Password,
		FirstName: form.FirstName,
		LastName:  form.LastName,
		Phone:     form.Phone,
	})
	if !result.Success {
		h.renderCustomer(c, http.StatusUnprocessableEntity, result.Error, form)
		return
	}
	h.startSession(c, result.Session, func(msg string) {
		h.renderCustomer(c, http.StatusInternalServerError, msg, form)
	})
}

// AdminPage shows the admin login form
func (h *AuthHandler) AdminPage(c *gin.Context) {
	if h.redirectSignedIn(c) {
		return
	}
	h.renderAdmin(c, http.StatusOK, "", "")
}

// AdminSubmit handles the admin login post
func (h *AuthHandler) AdminSubmit(c *gin.Context) {
	var form LoginForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderAdmin(c, http.StatusUnprocessableEntity, middleware.ValidationMessage(err), form.Email)
		return
	}

	result := h.auth.SignIn(c.Request.Context(), identity.PortalAdmin, form.Email, form.Password)
	if !result.Success {
		h.renderAdmin(c, http.StatusUnauthorized, result.Error, form.Email)
		return
	}
	h.startSession(c, result.Session, func(msg string) {
		h.renderAdmin(c, http.StatusInternalServerError, msg, form.Email)
	})
}

// Logout ends the session and clears the cookie
func (h *AuthHandler) Logout(c *gin.Context) {
	if sess := middleware.CurrentSession(c); sess != nil {
		h.auth.Logout(c.Request.Context(), sess.ID)
	}
	http.SetCookie(c.Writer, h.cookies.ExpiredCookie())
	h.redirect(c, "/")
}

// startSession replaces any previous session with sess and sends the user
// to their dashboard
func (h *AuthHandler) startSession(c *gin.Context, sess *identity.Session, onError func(msg string)) {
	ctx := c.Request.Context()

	cookie, err := h.cookies.Cookie(sess)
	if err != nil {
		logger.GetGinLogger(c).Error("Failed to issue session cookie", zap.Error(err))
		h.auth.Logout(ctx, sess.ID)
		onError(msgSignInUnavailable)
		return
	}
	if previous := middleware.CurrentSession(c); previous != nil && previous.ID != sess.ID {
		h.auth.Logout(ctx, previous.ID)
	}

	http.SetCookie(c.Writer, cookie)
	h.redirect(c, sess.User.Role.HomePath())
}

func (h *AuthHandler) redirectSignedIn(c *gin.Context) bool {
	sess := middleware.CurrentSession(c)
	if sess == nil {
		return false
	}
	c.Redirect(http.StatusFound, sess.User.Role.HomePath())
	return true
}

func (h *AuthHandler) renderCustomer(c *gin.Context, status int, errMsg string, form RegisterForm) {
	register := isRegister(c)
	title := "Customer Login"
	if register {
		title = "Customer Sign Up"
	}
	p := h.page(c, title)
	p.Error = errMsg
	form.Password = ""
	h.render(c, status, view.PageUserAuth, AuthPage{Page: p, Register: register, Form: form})
}

func (h *AuthHandler) renderAdmin(c *gin.Context, status int, errMsg, email string) {
	p := h.page(c, "Admin Login")
	p.Error = errMsg
	h.render(c, status, view.PageAdminLogin, AuthPage{Page: p, Form: RegisterForm{Email: email}})
}

func isRegister(c *gin.Context) bool {
	return c.Query("mode") == "register"
}
