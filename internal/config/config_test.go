package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, ":3000", cfg.Server.Addr)
	require.True(t, cfg.Cache.Enabled)
	require.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	require.Equal(t, 50, cfg.Pagination.DefaultLimit)
	require.False(t, cfg.Auth.Enabled)
}

func TestLoad_OverridesAndEnv(t *testing.T) {
	t.Setenv("BLOG_DSN", "/tmp/blog-test.db")
	path := writeConfig(t, `
server:
  addr: ":8080"
database:
  dsn: ${BLOG_DSN}
cache:
  ttl: 30s
  shards: 4
log:
  level: debug
  format: console
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.Server.Addr)
	require.Equal(t, "/tmp/blog-test.db", cfg.Database.DSN)
	require.Equal(t, 30*time.Second, cfg.Cache.TTL)
	require.Equal(t, 4, cfg.Cache.Shards)
	require.Equal(t, "console", cfg.Log.Format)
	// untouched keys keep their defaults
	require.Equal(t, 15*time.Second, cfg.Server.ShutdownTimeout)
}

func TestLoad_UnknownEnvKeptVerbatim(t *testing.T) {
	path := writeConfig(t, "database:\n  dsn: ${BLOG_API_SURELY_UNSET}\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "${BLOG_API_SURELY_UNSET}", cfg.Database.DSN)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.ErrorContains(t, err, "read config")
}

func TestLoad_BadYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "server: [\n"))
	require.ErrorContains(t, err, "parse config")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"zero ttl", func(c *Config) { c.Cache.TTL = 0 }, "cache.ttl"},
		{"bad limits", func(c *Config) { c.Pagination.MaxLimit = 10 }, "pagination"},
		{"short secret", func(c *Config) {
			c.Auth.Enabled = true
			c.Auth.Secret = "short"
			c.Auth.Users = []UserEntry{{Username: "ed", PasswordHash: "x"}}
		}, "auth.secret"},
		{"no editors", func(c *Config) {
			c.Auth.Enabled = true
			c.Auth.Secret = "0123456789abcdef0123456789abcdef"
		}, "auth.users"},
		{"empty dsn", func(c *Config) { c.Database.DSN = "" }, "database.dsn"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			require.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}

	cfg := Default()
	cfg.Cache.Enabled = false
	cfg.Cache.TTL = 0
	require.NoError(t, cfg.Validate())
}

func TestLoad_SampleConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "blog-api.yaml"))
	require.NoError(t, err)
	require.False(t, cfg.Auth.Enabled)
	require.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	require.Len(t, cfg.Auth.Users, 1)
}
