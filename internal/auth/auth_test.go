package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"vertice/pkg/database"
)

func testTokens() TokenService {
	return TokenService{Secret: []byte("test-secret"), Issuer: "vertice-test", Duration: time.Hour}
}

func TestTokenRoundTrip(t *testing.T) {
	ts := testTokens()
	tok, exp, err := ts.Sign("client-1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, time.Minute)

	claims, err := ts.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "client-1", claims.ClientID)
	assert.Equal(t, "client-1", claims.Subject)
}

func TestTokenRejected(t *testing.T) {
	ts := testTokens()
	tok, _, err := ts.Sign("client-1")
	require.NoError(t, err)

	other := ts
	other.Secret = []byte("other")
	_, err = other.Parse(tok)
	assert.Error(t, err, "wrong secret")

	otherIssuer := ts
	otherIssuer.Issuer = "someone-else"
	_, err = otherIssuer.Parse(tok)
	assert.Error(t, err, "wrong issuer")

	expired := ts
	expired.Duration = -time.Minute
	old, _, err := expired.Sign("client-1")
	require.NoError(t, err)
	_, err = ts.Parse(old)
	assert.Error(t, err, "expired")

	_, err = ts.Parse("not-a-token")
	assert.Error(t, err)
}

func newRouter(t *testing.T, repo *Repo) (*gin.Engine, *Handler) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(repo, testTokens(), zaptest.NewLogger(t))
	h.RegisterRoutes(r.Group(""))
	r.GET("/whoami", ClientMiddleware(h.Tokens, repo), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"client_id": MustGetClaims(c).ClientID})
	})
	return r, h
}

func issue(t *testing.T, r http.Handler) (string, string) {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/client", nil))
	require.Equal(t, http.StatusCreated, w.Code)
	var body struct {
		ClientID string `json:"client_id"`
		Token    string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(t, body.Token)
	return body.ClientID, body.Token
}

func TestMiddlewareAcceptsHeaderAndQuery(t *testing.T) {
	r, _ := newRouter(t, nil)
	id, tok := issue(t, r)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), id)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami?token="+tok, nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRevokedClientRejected(t *testing.T) {
	db, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "data.db")})
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, database.Migrate(db))

	repo := NewRepo(db)
	r, h := newRouter(t, repo)
	var revoked string
	h.OnRevoke = func(id string) { revoked = id }

	id, tok := issue(t, r)
	c, err := repo.GetClient(t.Context(), id)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.False(t, c.Revoked)

	req := httptest.NewRequest(http.MethodPost, "/client/revoke", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id, revoked)

	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	clients, err := repo.ListClients(t.Context(), 10)
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.True(t, clients[0].Revoked)

	missing, err := repo.GetClient(t.Context(), "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
