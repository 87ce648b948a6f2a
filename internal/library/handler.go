package library

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vertice/internal/auth"
	"vertice/internal/session"
)

type Handler struct {
	Library  *Library
	Sessions *session.Registry
}

func NewHandler(lib *Library, sessions *session.Registry) *Handler {
	return &Handler{Library: lib, Sessions: sessions}
}

// RegisterRoutes expects rg to be behind auth.ClientMiddleware.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/favoritos", h.favorites)
	rg.GET("/siguiendo", h.following)
}

func (h *Handler) favorites(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	u := h.Sessions.For(claims.ClientID).CurrentUser(c.Request.Context())
	if u == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "login required"})
		return
	}
	items := h.Library.Favorites(c.Request.Context(), u)
	c.JSON(http.StatusOK, gin.H{"total": len(items), "items": items})
}

func (h *Handler) following(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	u := h.Sessions.For(claims.ClientID).CurrentUser(c.Request.Context())
	if u == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "login required"})
		return
	}
	items := h.Library.Following(c.Request.Context(), u)
	c.JSON(http.StatusOK, gin.H{"total": len(items), "items": items})
}
