package library

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"vertice/internal/auth"
	"vertice/internal/catalog/catalogtest"
	"vertice/internal/session"
	"vertice/internal/storage"
	"vertice/pkg/models"
)

func TestFavoritesKeepUserOrder(t *testing.T) {
	lib := New(catalogtest.NewStore(zaptest.NewLogger(t)))
	u := &models.User{Favoritos: []string{"4", "404", "1"}, SiguiendoIDs: []string{"2", "9", "1"}}

	cards := lib.Favorites(context.Background(), u)
	require.Len(t, cards, 2)
	assert.Equal(t, 4, cards[0].ID)
	assert.True(t, cards[0].Artist.Placeholder)
	assert.Equal(t, 1, cards[1].ID)
	assert.Equal(t, "José Pérez", cards[1].Artist.Nombre)

	artists := lib.Following(context.Background(), u)
	require.Len(t, artists, 2)
	assert.Equal(t, 2, artists[0].ID)
	assert.Equal(t, 1, artists[1].ID)
}

func TestEmptyLibrary(t *testing.T) {
	lib := New(catalogtest.NewStore(zaptest.NewLogger(t)))
	assert.NotNil(t, lib.Favorites(context.Background(), nil))
	assert.Empty(t, lib.Favorites(context.Background(), &models.User{}))
	assert.Empty(t, lib.Following(context.Background(), nil))
}

func TestHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log := zaptest.NewLogger(t)
	cat := catalogtest.NewStore(log)
	reg := session.NewRegistry(func(string) session.Repository {
		return session.NewStorageRepo(storage.NewMemory())
	}, cat)
	tokens := auth.TokenService{Secret: []byte("k"), Duration: time.Hour}

	r := gin.New()
	NewHandler(New(cat), reg).RegisterRoutes(r.Group("/session", auth.ClientMiddleware(tokens, nil)))

	tok, _, err := tokens.Sign("c1")
	require.NoError(t, err)
	get := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusUnauthorized, get("/session/favoritos").Code)

	_, err = reg.For("c1").Login(context.Background(), "ana@vertice.art", "secreta")
	require.NoError(t, err)

	w := get("/session/favoritos")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Total)

	w = get("/session/siguiendo")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Ana María Ruiz")
}
