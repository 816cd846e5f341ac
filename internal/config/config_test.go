package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/storeops")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "storeops", cfg.App.Name)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, 10*time.Second, cfg.Database.TxTimeout)
	assert.Equal(t, 3, cfg.Database.TxRetries)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTTL)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.True(t, cfg.GeneratedJWTSecret)
	assert.True(t, cfg.App.APISunset.IsZero())
	assert.Len(t, cfg.JWT.Secret, 64)
}

func TestLoad_PrefixedEnvOverridesPlain(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DATABASE_URL", "postgres://plain")
	t.Setenv("STOREOPS_DATABASE_URL", "postgres://prefixed")
	t.Setenv("STOREOPS_JWT_ACCESS_TTL", "30m")
	t.Setenv("SMTP_HOST", "smtp.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://prefixed", cfg.Database.URL)
	assert.Equal(t, 30*time.Minute, cfg.JWT.AccessTTL)
	assert.Equal(t, "smtp.example.com", cfg.SMTP.Host)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	content := `
[app]
port = "9090"
api_sunset = "2027-01-01"

[database]
url = "postgres://from-file"
tx_retries = 5
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0o600))
	t.Setenv("DATABASE_URL", "")
	t.Setenv("STOREOPS_DATABASE_URL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, "postgres://from-file", cfg.Database.URL)
	assert.Equal(t, 5, cfg.Database.TxRetries)
	assert.Equal(t, "2027-01-01", cfg.App.APISunset.Format("2006-01-02"))
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DATABASE_URL", "postgres://localhost")
	t.Setenv("STOREOPS_APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("STOREOPS_JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DATABASE_URL", "")
	t.Setenv("STOREOPS_DATABASE_URL", "")

	_, err := Load()
	assert.Error(t, err)
}
