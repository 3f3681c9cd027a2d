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

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gitnostr.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
database: /var/lib/gitnostr/replica.db
sources:
  - /mnt/mirror-a.db
  - /mnt/mirror-b.db
redis_url: redis://localhost:6379/0
fetch_timeout: 3s
log_level: debug
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/gitnostr/replica.db", cfg.Database)
	assert.Equal(t, []string{"/mnt/mirror-a.db", "/mnt/mirror-b.db"}, cfg.Sources)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Equal(t, 3*time.Second, cfg.FetchTimeout)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "database: from-file.db\nlog_level: warn\n")
	t.Setenv("GITNOSTR_DATABASE", "from-env.db")
	t.Setenv("GITNOSTR_SOURCES", "a.db,b.db")
	t.Setenv("GITNOSTR_FETCH_TIMEOUT", "250ms")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env.db", cfg.Database)
	assert.Equal(t, []string{"a.db", "b.db"}, cfg.Sources)
	assert.Equal(t, 250*time.Millisecond, cfg.FetchTimeout)
	assert.Equal(t, "warn", cfg.LogLevel, "unset env keeps the file value")
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read config")

	_, err = Load(writeConfig(t, "database: [unclosed"))
	assert.ErrorContains(t, err, "parse config")

	t.Setenv("GITNOSTR_FETCH_TIMEOUT", "soon")
	_, err = Load("")
	assert.ErrorContains(t, err, "parse env:")
}

func TestValidate_ReportsEverything(t *testing.T) {
	cfg := Config{Database: " ", Sources: []string{"ok.db", ""}, FetchTimeout: -time.Second, LogLevel: "loud"}

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"database", "sources[1]", "fetch_timeout", "log_level"} {
		assert.ErrorContains(t, err, want)
	}
}

func TestValidate_RejectsRepeatedPaths(t *testing.T) {
	cfg := Default()
	cfg.Database = "gitnostr.db"
	cfg.Sources = []string{"mirror.db", "./gitnostr.db", "mirror.db"}

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorContains(t, err, "sources[1] repeats database")
	assert.ErrorContains(t, err, "sources[2] repeats sources[0]")

	cfg.Sources = []string{"mirror.db"}
	assert.NoError(t, cfg.Validate())
}
