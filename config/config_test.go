package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("CI", "true")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_USER", "indicae")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "indicae_test")
	t.Setenv("REDIS_HOST", "localhost")
	t.Setenv("JWT_SECRET", "test-secret")
}

func TestLoadConfigFromEnv(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("ADMIN_EMAILS", "admin@indicae.com, ops@indicae.com ,")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, "localhost", cfg.DBHost)
	assert.Equal(t, "5432", cfg.DBPort, "port falls back to the default")
	assert.Equal(t, "disable", cfg.DBSSLMode)
	assert.Equal(t, "test-secret", cfg.JWTSecret)
	assert.Equal(t, []string{"admin@indicae.com", "ops@indicae.com"}, cfg.AdminEmails)
}

func TestLoadConfigMissingRequired(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("JWT_SECRET", "")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestSecretOverridesEnv(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CI", "")
	t.Setenv("ENV", "development")

	secretsDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(secretsDir, "jwt_secret"), []byte("from-secret\n"), 0o600))
	t.Setenv("SECRETS_DIR", secretsDir)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "from-secret", cfg.JWTSecret, "docker secrets win over env vars")
}

func TestGetEnvironment(t *testing.T) {
	t.Setenv("CI", "true")
	assert.Equal(t, CI, GetEnvironment())

	t.Setenv("CI", "")
	t.Setenv("ENV", "production")
	assert.Equal(t, Production, GetEnvironment())
	assert.True(t, IsProduction())

	t.Setenv("ENV", "")
	assert.Equal(t, Development, GetEnvironment())
}
