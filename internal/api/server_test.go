package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"vertice/internal/api"
	"vertice/internal/catalog/catalogtest"
	synchub "vertice/internal/sync"
	"vertice/pkg/database"
	"vertice/pkg/utils"
)

func newServer(t *testing.T) *api.Server {
	t.Helper()
	log := zaptest.NewLogger(t)

	dbPath := filepath.Join(t.TempDir(), "api.db")
	db, err := database.Open(database.Config{Path: dbPath})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(db))

	conf := &utils.Config{
		Env: "test",
		API: utils.APIConfig{
			GinMode:        "test",
			AllowedOrigins: []string{"http://localhost:9000"},
		},
		Data:     utils.DataConfig{Location: "fixtures"},
		Database: utils.DatabaseConfig{Path: dbPath},
		Auth: utils.AuthConfig{
			JWTSecret:   "test-secret",
			JWTIssuer:   "vertice-test",
			JWTDuration: time.Hour,
		},
	}
	hub := synchub.NewHub(log)
	t.Cleanup(hub.Close)
	return api.NewServer(conf, db, catalogtest.NewStore(log), hub, log)
}

func call(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func newClient(t *testing.T, h http.Handler) string {
	t.Helper()
	w := call(t, h, http.MethodPost, "/client", "", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	token, _ := decode(t, w)["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestHealthAndReady(t *testing.T) {
	s := newServer(t)

	w := call(t, s.Router, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = call(t, s.Router, http.MethodGet, "/ready", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ready", decode(t, w)["status"])
}

func TestCatalogIsPublic(t *testing.T) {
	s := newServer(t)

	w := call(t, s.Router, http.MethodGet, "/obras?sort=precio-asc", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 4, decode(t, w)["total"])

	w = call(t, s.Router, http.MethodGet, "/obras/3", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSessionRequiresClientToken(t *testing.T) {
	s := newServer(t)

	w := call(t, s.Router, http.MethodGet, "/session", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = call(t, s.Router, http.MethodGet, "/session", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSessionFlow(t *testing.T) {
	s := newServer(t)
	token := newClient(t, s.Router)

	w := call(t, s.Router, http.MethodGet, "/session", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode(t, w)["authenticated"])

	w = call(t, s.Router, http.MethodPost, "/session/login", token, map[string]string{
		"email": "ANA@vertice.art", "password": "secreta",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = call(t, s.Router, http.MethodPost, "/session/favoritos/2", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["active"])

	w = call(t, s.Router, http.MethodGet, "/session/favoritos", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, decode(t, w)["total"])

	// another client does not share the session
	other := newClient(t, s.Router)
	w = call(t, s.Router, http.MethodGet, "/session", other, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode(t, w)["authenticated"])

	w = call(t, s.Router, http.MethodPost, "/session/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = call(t, s.Router, http.MethodGet, "/session/favoritos", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRevokedClientIsRejected(t *testing.T) {
	s := newServer(t)
	token := newClient(t, s.Router)

	w := call(t, s.Router, http.MethodPost, "/session/login", token, map[string]string{
		"email": "ana@vertice.art", "password": "secreta",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, s.Sessions.Len())

	w = call(t, s.Router, http.MethodPost, "/client/revoke", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, s.Sessions.Len())

	w = call(t, s.Router, http.MethodGet, "/session", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	s := newServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/obras", nil)
	req.Header.Set("Origin", "http://localhost:9000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:9000", w.Header().Get("Access-Control-Allow-Origin"))
}
