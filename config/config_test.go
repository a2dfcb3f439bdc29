package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"SCREENPIPE_API_URL", "SCREENPIPE_DB_PATH", "GEMINI_API_KEY",
		"GEMINI_MODEL", "SCREENUSAGE_BIND_ADDR", "SCREENUSAGE_LOG_LEVEL",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ModeHTTP, cfg.Screenpipe.Mode)
	assert.Equal(t, "http://localhost:3030", cfg.Screenpipe.APIURL)
	assert.Equal(t, 3, cfg.VideoOtherMin)
	assert.Equal(t, 5, cfg.DomainOtherMin)
	assert.Equal(t, 30*time.Second, cfg.Gemini.Timeout)
	assert.Empty(t, cfg.Gemini.APIKey)
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "screenusage.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
bind_addr: ":9000"
log_level: debug
screenpipe:
  api_url: http://recorder:3030
gemini:
  model: gemini-2.0-flash
  timeout: 5s
video_other_min: 4
`), 0o644))

	t.Setenv("GEMINI_API_KEY", " secret ")
	t.Setenv("SCREENUSAGE_BIND_ADDR", ":9100")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9100", cfg.BindAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "http://recorder:3030", cfg.Screenpipe.APIURL)
	assert.Equal(t, "gemini-2.0-flash", cfg.Gemini.Model)
	assert.Equal(t, 5*time.Second, cfg.Gemini.Timeout)
	assert.Equal(t, "secret", cfg.Gemini.APIKey)
	assert.Equal(t, 4, cfg.VideoOtherMin)
	assert.Equal(t, 5, cfg.DomainOtherMin, "unset keys keep their default")
}

func TestDBPathEnvSwitchesToSQLite(t *testing.T) {
	clearEnv(t)
	t.Setenv("SCREENPIPE_DB_PATH", "/tmp/db.sqlite")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ModeSQLite, cfg.Screenpipe.Mode)
	assert.Equal(t, "/tmp/db.sqlite", cfg.Screenpipe.DBPath)
}

func TestLoadErrors(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("screenpipe: [nope"), 0o644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()
	cases := map[string]func(*Config){
		"mode":       func(c *Config) { c.Screenpipe.Mode = "ftp" },
		"driver":     func(c *Config) { c.Screenpipe.DBDriver = "postgres" },
		"threshold":  func(c *Config) { c.DomainOtherMin = 0 },
		"timeout":    func(c *Config) { c.Gemini.Timeout = 0 },
		"level":      func(c *Config) { c.LogLevel = "loud" },
		"no url":     func(c *Config) { c.Screenpipe.APIURL = "" },
		"no db path": func(c *Config) { c.Screenpipe.Mode = ModeSQLite; c.Screenpipe.DBPath = "" },
	}
	for name, mutate := range cases {
		cfg := Default()
		mutate(&cfg)
		assert.Error(t, cfg.Validate(), name)
	}
	assert.NoError(t, Default().Validate())
}

func TestParseLevel(t *testing.T) {
	t.Parallel()
	lvl, err := ParseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, lvl)
}
