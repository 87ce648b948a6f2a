package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.API.Addr)
	assert.Equal(t, "./data", cfg.Data.Location)
	assert.Equal(t, 5*time.Second, cfg.Data.Timeout)
	assert.Equal(t, "vertice", cfg.Auth.JWTIssuer)
	assert.Equal(t, 30*24*time.Hour, cfg.Auth.JWTDuration)
	assert.Equal(t, ":7070", cfg.Sync.TCPAddr)
	assert.True(t, cfg.Sync.RequireToken)
	assert.False(t, cfg.Sync.AllowAll)
	assert.Equal(t, 5*time.Second, cfg.Database.BusyTimeout)
	assert.Equal(t, 5, cfg.API.LoginBurst)
	assert.Equal(t, []string{"http://localhost:9000"}, cfg.API.AllowedOrigins)
}

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.API.Addr)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
api:
  addr: ":8181"
data:
  location: "http://localhost:9000/data"
  timeout: 2s
`), 0o644))

	t.Setenv("VERTICE_API_ADDR", ":8282")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":8282", cfg.API.Addr)
	assert.Equal(t, "http://localhost:9000/data", cfg.Data.Location)
	assert.Equal(t, 2*time.Second, cfg.Data.Timeout)
}

func TestLoad_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("api: [unclosed"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
