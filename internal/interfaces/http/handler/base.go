// Package handler implements the storefront's server-rendered pages.
package handler

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/retail/storefront/internal/domain/identity"
	"github.com/retail/storefront/internal/infrastructure/logger"
	"github.com/retail/storefront/internal/interfaces/http/middleware"
	"github.com/retail/storefront/internal/interfaces/http/view"
	"go.uber.org/zap"
)

// SessionSaver persists flash changes on a session
type SessionSaver interface {
	Save(ctx context.Context, sess *identity.Session) error
}

// Page carries what every template needs
type Page struct {
	Title   string
	User    *identity.User
	Flashes []identity.Flash
	Error   string
}

// ErrorPage renders a status page
type ErrorPage struct {
	Page
	Status  int
	Message string
}

// BaseHandler provides common handler utilities
type BaseHandler struct {
	sessions SessionSaver
}

// page builds the common page data, consuming any queued flashes
func (h *BaseHandler) page(c *gin.Context, title string) Page {
	p := Page{Title: title}
	sess := middleware.CurrentSession(c)
	if sess == nil {
		return p
	}
	user := sess.User
	p.User = &user
	if flashes := sess.PopFlashes(); len(flashes) > 0 {
		p.Flashes = flashes
		h.save(c, sess)
	}
	return p
}

// flash queues a message for the next page the visitor sees
func (h *BaseHandler) flash(c *gin.Context, kind identity.FlashKind, message string) {
	sess := middleware.CurrentSession(c)
	if sess == nil {
		return
	}
	sess.AddFlash(kind, message)
	h.save(c, sess)
}

func (h *BaseHandler) save(c *gin.Context, sess *identity.Session) {
	if h.sessions == nil {
		return
	}
	if err := h.sessions.Save(c.Request.Context(), sess); err != nil {
		logger.GetGinLogger(c).Warn("Failed to save session", zap.Error(err))
	}
}

// render writes a page template
func (h *BaseHandler) render(c *gin.Context, status int, name string, data any) {
	c.HTML(status, name, data)
}

// redirect answers a form post with 303 See Other
func (h *BaseHandler) redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusSeeOther, location)
}

// NotFound renders the 404 page
func (h *BaseHandler) NotFound(c *gin.Context) {
	h.renderError(c, http.StatusNotFound, "The page you are looking for does not exist.")
}

func (h *BaseHandler) renderError(c *gin.Context, status int, message string) {
	h.render(c, status, view.PageError, ErrorPage{
		Page:    h.page(c, http.StatusText(status)),
		Status:  status,
		Message: message,
	})
}

// currentUserID returns the signed-in user's id. Routes using it sit behind
// a role gate, so a session is always present.
func currentUserID(c *gin.Context) int64 {
	if sess := middleware.CurrentSession(c); sess != nil {
		return sess.User.ID
	}
	return 0
}

// paramID parses a positive integer path parameter
func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// localReturn accepts a form-supplied return location only when it stays
// under prefix on this site
func localReturn(raw, prefix, fallback string) string {
	if raw == "" || strings.HasPrefix(raw, "//") || strings.Contains(raw, `\`) {
		return fallback
	}
	u, err := url.Parse(raw)
	if err != nil || u.IsAbs() || u.Host != "" {
		return fallback
	}
	if u.Path != prefix && !strings.HasPrefix(u.Path, prefix+"/") {
		return fallback
	}
	return u.RequestURI()
}
