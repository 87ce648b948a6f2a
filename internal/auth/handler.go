package auth

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"vertice/pkg/logger"
)

type Handler struct {
	Repo   *Repo
	Tokens TokenService
	Log    *zap.Logger

	// OnRevoke lets the server drop per-client state.
	OnRevoke func(clientID string)
}

func NewHandler(repo *Repo, tokens TokenService, log *zap.Logger) *Handler {
	log = logger.OrNop(log)
	return &Handler{Repo: repo, Tokens: tokens, Log: log}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/client", h.issue)
	if h.Repo != nil {
		rg.POST("/client/revoke", ClientMiddleware(h.Tokens, h.Repo), h.revoke)
	}
}

func (h *Handler) issue(c *gin.Context) {
	client := Client{
		ID:        uuid.NewString(),
		UserAgent: c.Request.UserAgent(),
	}
	if h.Repo != nil {
		if err := h.Repo.CreateClient(c.Request.Context(), client); err != nil {
			h.Log.Error("create client failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "create client failed"})
			return
		}
	}

	token, exp, err := h.Tokens.Sign(client.ID)
	if err != nil {
		h.Log.Error("sign client token failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"client_id":  client.ID,
		"token":      token,
		"expires_at": exp.UTC().Format(time.RFC3339),
	})
}

func (h *Handler) revoke(c *gin.Context) {
	claims := MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	if _, err := h.Repo.Revoke(c.Request.Context(), claims.ClientID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "revoke failed"})
		return
	}
	if h.OnRevoke != nil {
		h.OnRevoke(claims.ClientID)
	}
	h.Log.Info("client revoked", zap.String("client_id", claims.ClientID))
	c.JSON(http.StatusOK, gin.H{"message": "revoked"})
}
