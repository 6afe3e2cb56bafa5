package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := `
server:
  address: ":9090"
jwt:
  secret: "file-secret"
  expiration: "2h"
storage:
  driver: memory
editor:
  idle_timeout: "10m"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "30")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, "env-secret", cfg.JWT.Secret)
	assert.Equal(t, 2*time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, 30, cfg.RateLimit.PerMinute)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, 10*time.Minute, cfg.Editor.IdleTimeout)
	assert.Equal(t, time.Minute, cfg.Editor.SweepInterval)
	assert.Equal(t, 5*time.Minute, cfg.Cache.SlugTTL)
}

func TestLoadConfig_NoFileRequiresSecret(t *testing.T) {
	_, err := LoadConfig(t.TempDir())
	assert.EqualError(t, err, "jwt.secret is required")

	t.Setenv("JWT_SECRET", "s")
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "mongo", cfg.Storage.Driver)
	assert.Equal(t, time.Hour, cfg.JWT.Expiration)
}

func TestConfig_Validate(t *testing.T) {
	cfg := Config{JWT: JWTConfig{Secret: "s"}, Storage: StorageConfig{Driver: "sqlite"}}
	assert.Error(t, cfg.Validate())

	cfg.Storage.Driver = "memory"
	cfg.Email.Provider = "resend"
	assert.Error(t, cfg.Validate())

	cfg.Email.APIKey = "re_123"
	assert.NoError(t, cfg.Validate())
}
