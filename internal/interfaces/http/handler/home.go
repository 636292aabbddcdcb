package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/retail/storefront/internal/interfaces/http/view"
)

// HomeHandler serves the landing page
type HomeHandler struct {
	BaseHandler
}

// NewHomeHandler creates a new home handler
func NewHomeHandler(sessions SessionSaver) *HomeHandler {
	return &HomeHandler{BaseHandler: BaseHandler{sessions: sessions}}
}

// Index renders the customer / admin portal choice
func (h *HomeHandler) Index(c *gin.Context) {
	h.render(c, http.StatusOK, view.PageHome, h.page(c, ""))
}
