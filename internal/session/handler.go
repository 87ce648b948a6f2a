package session

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"vertice/internal/access"
	"vertice/internal/auth"
	"vertice/pkg/logger"
	"vertice/pkg/models"
)

// Catalog checks that toggled ids exist; catalog.Store satisfies it.
type Catalog interface {
	ArtworkDetail(ctx context.Context, id int) *models.ArtworkDetail
	ArtistDetail(ctx context.Context, id int) *models.ArtistDetail
}

type Handler struct {
	Registry *Registry
	Catalog  Catalog
	Log      *zap.Logger
	limiter  *loginLimiter
}

// NewHandler throttles logins to loginRate per second per client with the
// given burst; loginRate <= 0 disables throttling.
func NewHandler(reg *Registry, cat Catalog, log *zap.Logger, loginRate float64, loginBurst int) *Handler {
	log = logger.OrNop(log)
	return &Handler{
		Registry: reg,
		Catalog:  cat,
		Log:      log,
		limiter:  newLoginLimiter(loginRate, loginBurst),
	}
}

// RegisterRoutes expects rg to be behind auth.ClientMiddleware.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.current)
	rg.POST("/login", h.login)
	rg.POST("/register", h.register)
	rg.POST("/logout", h.logout)
	rg.POST("/favoritos/:id", h.toggleFavorite)
	rg.POST("/siguiendo/:id", h.toggleFollow)
	rg.GET("/access", h.access)
}

// Forget drops everything cached for a client; wire it to token revocation.
func (h *Handler) Forget(clientID string) {
	h.Registry.Forget(clientID)
	h.limiter.Forget(clientID)
}

func (h *Handler) store(c *gin.Context) *Store {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil
	}
	return h.Registry.For(claims.ClientID)
}

func (h *Handler) current(c *gin.Context) {
	s := h.store(c)
	if s == nil {
		return
	}
	c.JSON(http.StatusOK, userBody(s.CurrentUser(c.Request.Context())))
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) login(c *gin.Context) {
	s := h.store(c)
	if s == nil {
		return
	}
	if !h.limiter.Allow(s.clientID) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many login attempts"})
		return
	}

	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	u, err := s.Login(c.Request.Context(), req.Email, req.Password)
	if errors.Is(err, ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if err != nil {
		h.Log.Error("login failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}
	c.JSON(http.StatusOK, userBody(&u))
}

func (h *Handler) register(c *gin.Context) {
	s := h.store(c)
	if s == nil {
		return
	}

	var req RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	u, err := s.Register(c.Request.Context(), req)
	var verr *ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": verr.FieldErrors()})
		return
	}
	if err != nil {
		h.Log.Error("register failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "register failed"})
		return
	}
	c.JSON(http.StatusCreated, userBody(&u))
}

func (h *Handler) logout(c *gin.Context) {
	s := h.store(c)
	if s == nil {
		return
	}
	if err := s.Logout(c.Request.Context()); err != nil {
		h.Log.Error("logout failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "logout failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (h *Handler) toggleFavorite(c *gin.Context) {
	h.toggle(c, func(ctx context.Context, id int) bool {
		return h.Catalog.ArtworkDetail(ctx, id) != nil
	}, (*Store).IsFavorite, (*Store).ToggleFavorite)
}

func (h *Handler) toggleFollow(c *gin.Context) {
	h.toggle(c, func(ctx context.Context, id int) bool {
		return h.Catalog.ArtistDetail(ctx, id) != nil
	}, (*Store).IsFollowing, (*Store).ToggleFollow)
}

// toggle only checks the catalog when adding: an id that no longer
// resolves can still be removed.
func (h *Handler) toggle(
	c *gin.Context,
	exists func(context.Context, int) bool,
	isMember func(*Store, context.Context, string) bool,
	flip func(*Store, context.Context, string) (bool, error),
) {
	s := h.store(c)
	if s == nil {
		return
	}
	ctx := c.Request.Context()

	id, err := strconv.Atoi(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if s.CurrentUser(ctx) == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "login required"})
		return
	}
	key := strconv.Itoa(id)
	if h.Catalog != nil && !isMember(s, ctx, key) && !exists(ctx, id) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	active, err := flip(s, ctx, key)
	if err != nil {
		h.Log.Error("toggle failed", zap.Int("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": key, "active": active})
}

func (h *Handler) access(c *gin.Context) {
	s := h.store(c)
	if s == nil {
		return
	}
	path := c.Query("path")
	c.JSON(http.StatusOK, gin.H{
		"path":    path,
		"page":    access.PageID(path),
		"policy":  access.PolicyFor(path),
		"allowed": s.IsAccessAllowed(c.Request.Context(), path),
	})
}

func userBody(u *models.User) gin.H {
	if u == nil {
		return gin.H{"authenticated": false, "user": nil}
	}
	return gin.H{"authenticated": true, "user": u.Public()}
}
