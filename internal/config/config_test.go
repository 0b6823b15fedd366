package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func clearEnv(t *testing.T) {
	for _, k := range []string{"DATABASE_URL", "OPENROUTER_API_KEY", "OPENAI_API_KEY", "OPENAI_MODEL", "OPENAI_BASE_URL", "YOUR_SITE_URL", "YOUR_SITE_NAME", "PORT", "DEBUG"} {
		t.Setenv(k, "")
	}
}

func TestLoadYAML(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
server:
  port: 9000
database:
  host: db.local
  user: app
  password: secret
  name: threats
ai:
  model: openai/gpt-4o-mini
  structured: true
  timeout: 30s
auth:
  apiKeys:
    dashboard: key-1
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "mysql", cfg.Driver())
	assert.Equal(t, "app:secret@tcp(db.local:3306)/threats?parseTime=true&charset=utf8mb4&loc=UTC", cfg.MySQLDSN())
	assert.Equal(t, "openai/gpt-4o-mini", cfg.AI.Model)
	assert.True(t, cfg.AI.Structured)
	assert.Equal(t, 30*time.Second, cfg.AI.Timeout)
	assert.Equal(t, map[string]string{"dashboard": "key-1"}, cfg.Auth.APIKeys)
	assert.Equal(t, 30, cfg.RateLimit.Capacity)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Driver())
	assert.Equal(t, "threat_database.db", cfg.SQLitePath())
	assert.False(t, cfg.MinioEnabled())
}

func TestLoadInvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "server: [unclosed"))
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/db?sslmode=disable")
	t.Setenv("OPENROUTER_API_KEY", "or-key")
	t.Setenv("OPENAI_MODEL", "deepseek/deepseek-r1")
	t.Setenv("YOUR_SITE_NAME", "Dashboard")
	t.Setenv("PORT", "7000")

	cfg, err := Load(writeConfig(t, "ai:\n  apiKey: file-key\n"))
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Driver())
	assert.Equal(t, "or-key", cfg.AI.APIKey)
	assert.Equal(t, "deepseek/deepseek-r1", cfg.AI.Model)
	assert.Equal(t, "Dashboard", cfg.AI.SiteName)
	assert.Equal(t, 7000, cfg.Server.Port)
}

func TestDriverFromURL(t *testing.T) {
	tests := []struct {
		url    string
		driver string
	}{
		{"postgresql://x", "postgres"},
		{"mysql://u:p@tcp(h:3306)/db", "mysql"},
		{"sqlite:///tmp/t.db", "sqlite"},
		{"file:t.db?cache=shared", "sqlite"},
		{"", "sqlite"},
	}
	for _, tt := range tests {
		var c Config
		c.Database.URL = tt.url
		assert.Equal(t, tt.driver, c.Driver(), tt.url)
	}
}

func TestMySQLDSNFromURL(t *testing.T) {
	var c Config
	c.Database.URL = "mysql://u:p@tcp(h:3306)/db"
	assert.Equal(t, "u:p@tcp(h:3306)/db?parseTime=true&charset=utf8mb4&loc=UTC", c.MySQLDSN())
	c.Database.URL = "mysql://u:p@tcp(h:3306)/db?parseTime=true"
	assert.Equal(t, "u:p@tcp(h:3306)/db?parseTime=true", c.MySQLDSN())
}

func TestSQLitePathFromURL(t *testing.T) {
	var c Config
	c.Database.URL = "sqlite:///tmp/t.db"
	assert.Equal(t, "/tmp/t.db", c.SQLitePath())
}

func TestLoadDotEnv(t *testing.T) {
	// t.Setenv restores the variables afterwards
	t.Setenv("THREATLENS_DOTENV_NEW", "")
	os.Unsetenv("THREATLENS_DOTENV_NEW")
	t.Setenv("THREATLENS_DOTENV_SET", "from-env")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("THREATLENS_DOTENV_NEW=from-file\nTHREATLENS_DOTENV_SET=from-file\n"), 0o600))

	require.NoError(t, LoadDotEnv(path, filepath.Join(t.TempDir(), "absent.env")))
	assert.Equal(t, "from-file", os.Getenv("THREATLENS_DOTENV_NEW"))
	assert.Equal(t, "from-env", os.Getenv("THREATLENS_DOTENV_SET"))
}
