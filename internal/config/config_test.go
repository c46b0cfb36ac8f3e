package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pet-medical-log/internal/platform/logger"
)

var envKeys = []string{
	"CONFIG_FILE", "PORT", "STORE_DRIVER", "DB_DSN", "SQLITE_PATH", "PET_ID",
	"LEGACY_TIMEZONE", "LOG_LEVEL", "LOG_FORMAT", "APP_NAME",
	"AUTH_URL", "AUTH_API_KEY", "AUTH_API_KEY_HEADER",
}

// clearEnv deja el entorno limpio para el test; t.Setenv restaura al final.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, DriverMemory, cfg.Store.Driver)
	assert.Equal(t, "melba", cfg.PetID)
	assert.Equal(t, DefaultTimezone, cfg.Timezone)
	assert.Equal(t, logger.Options{Level: logger.Info, Format: logger.FormatJSON, App: "pet-medical-log"}, cfg.LoggerOptions())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "petlog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: "9000"
store:
  driver: sqlite
  sqlitePath: /tmp/from-file.db
log:
  level: debug
petId: luna
`), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "7070")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Addr())
	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, "/tmp/from-file.db", cfg.Store.SQLitePath)
	assert.Equal(t, "luna", cfg.PetID)
	assert.Equal(t, logger.Debug, cfg.LoggerOptions().Level)
}

func TestLoad_BadFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o600))
	t.Setenv("CONFIG_FILE", path)

	_, err := Load()
	require.Error(t, err)

	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err = Load()
	require.Error(t, err)
}

func TestLoad_DSNImpliesPostgres(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_DSN", "postgres://localhost/petlog")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.Store.Driver)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		mut  func(*Config)
		ok   bool
	}{
		{"defaults", func(*Config) {}, true},
		{"postgres without dsn", func(c *Config) { c.Store.Driver = DriverPostgres }, false},
		{"postgres with dsn", func(c *Config) { c.Store.Driver = DriverPostgres; c.Store.DSN = "x" }, true},
		{"sqlite without path", func(c *Config) { c.Store.Driver = DriverSQLite; c.Store.SQLitePath = "" }, false},
		{"unknown driver", func(c *Config) { c.Store.Driver = "mongo" }, false},
		{"empty port", func(c *Config) { c.Server.Port = "" }, false},
		{"auth url without key", func(c *Config) { c.Auth.URL = "http://id.local" }, false},
		{"auth complete", func(c *Config) { c.Auth.URL = "http://id.local"; c.Auth.APIKey = "k" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaults()
			tt.mut(&cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			}
		})
	}
}

func TestLocation(t *testing.T) {
	assert.Equal(t, time.UTC, Config{}.Location())
	assert.Equal(t, time.UTC, Config{Timezone: "Nowhere/Atlantis"}.Location())
	assert.Equal(t, time.UTC, Config{Timezone: "UTC"}.Location())
}
