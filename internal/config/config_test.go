package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultAPIBaseURL, cfg.API.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.API.Timeout)
	assert.True(t, cfg.API.IncludeCredentials())
	assert.Equal(t, 5*time.Second, cfg.App.AlertTimeout)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "payfisc-admin.db", cfg.Database.DSN())
}

func TestLoadFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("NEXT_PUBLIC_API_URL", "https://api.payfisc.example/api")
	t.Setenv("API_TIMEOUT", "3s")
	t.Setenv("API_CREDENTIALS", "omit")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_HOST", "db")
	t.Setenv("PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.payfisc.example/api", cfg.API.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.API.Timeout)
	assert.False(t, cfg.API.IncludeCredentials())
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Contains(t, cfg.Database.DSN(), "host=db")
}

func TestValidate(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Run("bad base url", func(t *testing.T) {
		t.Setenv("API_BASE_URL", "localhost:8000")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("secret required in production", func(t *testing.T) {
		t.Setenv("APP_DEV", "false")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "APP_SESSION_SECRET")
	})
}
