package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnvFile(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoad(t *testing.T) {
	t.Run("fails without a jwt secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")

		cfg, err := Load(noEnvFile(t))
		assert.Nil(t, cfg)
		assert.ErrorIs(t, err, ErrMissingJWTSecret)
	})

	t.Run("loads defaults", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "test-secret")
		t.Setenv("DB_HOST", "")
		t.Setenv("PORT", "")

		cfg, err := Load(noEnvFile(t))
		require.NoError(t, err)

		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "disable", cfg.Database.SSLMode)
		assert.Equal(t, 24*time.Hour, cfg.JWT.TTL)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.Equal(t, []string{"http://localhost:5173", "http://127.0.0.1:5173"}, cfg.CORS.AllowOrigins)
		assert.Empty(t, cfg.Redis.Addr)
	})

	t.Run("environment overrides defaults", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "s3cret")
		t.Setenv("DB_HOST", "db.internal")
		t.Setenv("DB_PORT", "6543")
		t.Setenv("PORT", "9090")
		t.Setenv("REDIS_ADDR", "redis:6379")
		t.Setenv("LOG_FORMAT", "json")

		cfg, err := Load(noEnvFile(t))
		require.NoError(t, err)

		assert.Equal(t, "db.internal", cfg.Database.Host)
		assert.Equal(t, 6543, cfg.Database.Port)
		assert.Equal(t, "9090", cfg.App.Port)
		assert.Equal(t, "redis:6379", cfg.Redis.Addr)
		assert.Equal(t, "json", cfg.Log.Format)
		assert.Equal(t, "s3cret", cfg.JWT.Secret)
	})

	t.Run("reads an env file", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		os.Unsetenv("JWT_SECRET")
		path := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(path, []byte("JWT_SECRET=from-file\n"), 0o600))
		t.Cleanup(func() { os.Unsetenv("JWT_SECRET") })

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "from-file", cfg.JWT.Secret)
	})
}

func TestDatabaseConfigDSN(t *testing.T) {
	d := DatabaseConfig{Host: "h", Port: 5432, User: "u", Password: "p@ss", Name: "ledger", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p%40ss@h:5432/ledger?sslmode=disable", d.DSN())
}
