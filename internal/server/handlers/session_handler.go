package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates the cashier against the backend.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	session, err := h.deps.Session.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}

	if err := h.deps.Catalog.Refresh(c.Request.Context()); err != nil {
		h.logger.Warn("catalog refresh after login failed", zap.Error(err))
	}

	c.JSON(http.StatusOK, session)
}

// Logout forgets the stored token.
func (h *Handler) Logout(c *gin.Context) {
	if err := h.deps.Session.Logout(c.Request.Context()); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SessionStatus reports whether a cashier is logged in.
func (h *Handler) SessionStatus(c *gin.Context) {
	ctx := c.Request.Context()
	loggedIn, err := h.deps.Session.LoggedIn(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}
	name, err := h.deps.Session.UserName(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logged_in": loggedIn, "user_name": name})
}

// ListProducts returns the cached catalog filtered by the optional q parameter.
func (h *Handler) ListProducts(c *gin.Context) {
	products := h.deps.Catalog.Search(c.Query("q"))
	c.JSON(http.StatusOK, gin.H{"data": products, "refreshed_at": h.deps.Catalog.RefreshedAt()})
}

// RefreshProducts reloads the catalog from the backend.
func (h *Handler) RefreshProducts(c *gin.Context) {
	if err := h.deps.Catalog.Refresh(c.Request.Context()); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(h.deps.Catalog.All()), "refreshed_at": h.deps.Catalog.RefreshedAt()})
}

// ListDocumentTypes returns the document kinds offered in the customer form.
func (h *Handler) ListDocumentTypes(c *gin.Context) {
	types, err := h.deps.DocumentTypes.DocumentTypes(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": types})
}
