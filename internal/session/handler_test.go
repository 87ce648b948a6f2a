package session

import (
	"bytes"
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
	"vertice/internal/storage"
)

type apiClient struct {
	t     *testing.T
	r     http.Handler
	token string
}

func (a apiClient) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	w := httptest.NewRecorder()
	a.r.ServeHTTP(w, req)
	return w
}

func newAPI(t *testing.T, loginRate float64, loginBurst int) (*gin.Engine, auth.TokenService, *Handler) {
	gin.SetMode(gin.TestMode)
	log := zaptest.NewLogger(t)
	tokens := auth.TokenService{Secret: []byte("k"), Issuer: "test", Duration: time.Hour}
	cat := catalogtest.NewStore(log)
	reg := NewRegistry(func(string) Repository {
		return NewStorageRepo(storage.NewMemory())
	}, cat, WithLogger(log))

	r := gin.New()
	g := r.Group("/session", auth.ClientMiddleware(tokens, nil))
	h := NewHandler(reg, cat, log, loginRate, loginBurst)
	h.RegisterRoutes(g)
	return r, tokens, h
}

func clientFor(t *testing.T, r http.Handler, tokens auth.TokenService, id string) apiClient {
	tok, _, err := tokens.Sign(id)
	require.NoError(t, err)
	return apiClient{t: t, r: r, token: tok}
}

func TestSessionFlow(t *testing.T) {
	r, tokens, _ := newAPI(t, 0, 0)
	c := clientFor(t, r, tokens, "browser-1")

	w := c.do(http.MethodGet, "/session", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"authenticated": false, "user": null}`, w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodPost, "/session/favoritos/1", nil).Code)

	w = c.do(http.MethodPost, "/session/login", loginReq{Email: "ana@vertice.art", Password: "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = c.do(http.MethodPost, "/session/login", loginReq{Email: "ANA@vertice.art", Password: "secreta"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "secreta", "password is not echoed")

	w = c.do(http.MethodPost, "/session/favoritos/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id": "1", "active": false}`, w.Body.String())

	w = c.do(http.MethodPost, "/session/siguiendo/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id": "1", "active": true}`, w.Body.String())

	assert.Equal(t, http.StatusNotFound, c.do(http.MethodPost, "/session/favoritos/999", nil).Code)
	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodPost, "/session/favoritos/abc", nil).Code)

	w = c.do(http.MethodGet, "/session/access?path=/pages/perfil.html", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"path": "/pages/perfil.html", "page": "perfil", "policy": "login_required", "allowed": true}`, w.Body.String())

	other := clientFor(t, r, tokens, "browser-2")
	w = other.do(http.MethodGet, "/session", nil)
	assert.Contains(t, w.Body.String(), `"authenticated":false`, "sessions are per client")

	assert.Equal(t, http.StatusOK, c.do(http.MethodPost, "/session/logout", nil).Code)
	w = c.do(http.MethodGet, "/session/access?path=/pages/obras.html", nil)
	assert.Contains(t, w.Body.String(), `"allowed":false`)
}

func TestRegisterEndpoint(t *testing.T) {
	r, tokens, _ := newAPI(t, 0, 0)
	c := clientFor(t, r, tokens, "browser-1")

	w := c.do(http.MethodPost, "/session/register", RegisterInput{Nombre: "Eva", Email: "eva@x.com", Password: "123"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	var body struct {
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body.Fields, "rol")
	assert.Contains(t, body.Fields, "password")

	w = c.do(http.MethodPost, "/session/register", RegisterInput{Nombre: "Eva Luna", Email: "eva@x.com", Password: "123456", Rol: "Coleccionista"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"handle":"@evaluna"`)

	w = c.do(http.MethodPost, "/session/register", RegisterInput{Nombre: "Eva", Email: "EVA@x.com", Password: "123456", Rol: "Artista"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginThrottled(t *testing.T) {
	r, tokens, h := newAPI(t, 0.001, 1)
	c := clientFor(t, r, tokens, "browser-1")

	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodPost, "/session/login", loginReq{Email: "x@x.com", Password: "x"}).Code)
	assert.Equal(t, http.StatusTooManyRequests, c.do(http.MethodPost, "/session/login", loginReq{Email: "x@x.com", Password: "x"}).Code)

	other := clientFor(t, r, tokens, "browser-2")
	assert.Equal(t, http.StatusUnauthorized, other.do(http.MethodPost, "/session/login", loginReq{Email: "x@x.com", Password: "x"}).Code)

	h.Forget("browser-1")
	assert.Equal(t, 1, h.limiter.Len())
	assert.Equal(t, 1, h.Registry.Len())
}

func TestSessionRequiresClientToken(t *testing.T) {
	r, _, _ := newAPI(t, 0, 0)
	anon := apiClient{t: t, r: r}
	assert.Equal(t, http.StatusUnauthorized, anon.do(http.MethodGet, "/session", nil).Code)
}

func TestToggleRemovesUnknownIDs(t *testing.T) {
	r, tokens, h := newAPI(t, 0, 0)
	c := clientFor(t, r, tokens, "browser-1")
	ctx := context.Background()

	w := c.do(http.MethodPost, "/session/login", loginReq{Email: "ana@vertice.art", Password: "secreta"})
	require.Equal(t, http.StatusOK, w.Code)

	s := h.Registry.For("browser-1")
	active, err := s.ToggleFavorite(ctx, "999")
	require.NoError(t, err)
	require.True(t, active)
	active, err = s.ToggleFollow(ctx, "999")
	require.NoError(t, err)
	require.True(t, active)

	w = c.do(http.MethodPost, "/session/favoritos/999", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id": "999", "active": false}`, w.Body.String())
	assert.False(t, s.IsFavorite(ctx, "999"))

	w = c.do(http.MethodPost, "/session/siguiendo/999", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id": "999", "active": false}`, w.Body.String())
	assert.False(t, s.IsFollowing(ctx, "999"))

	assert.Equal(t, http.StatusNotFound, c.do(http.MethodPost, "/session/favoritos/999", nil).Code, "adding still requires a known id")
	assert.Equal(t, http.StatusNotFound, c.do(http.MethodPost, "/session/siguiendo/999", nil).Code)
}
