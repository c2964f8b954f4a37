package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracker.toml")
	content := `
[database]
path = "/tmp/test-tracker.db"

[server]
port = 4000
allowed_origins = ["http://localhost:5173"]

[mcp]
url = "http://127.0.0.1:9000/mcp"
timeout_seconds = 30

[importer]
default_limit = 10
searches_per_minute = 6

[scheduler]
timezone = "Europe/Berlin"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/test-tracker.db", cfg.Database.Path)
	assert.Equal(t, 4000, cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "http://127.0.0.1:9000/mcp", cfg.MCP.URL)
	assert.Equal(t, 30, cfg.MCP.TimeoutSeconds)
	assert.Equal(t, 10, cfg.Importer.DefaultLimit)
	assert.Equal(t, 6, cfg.Importer.SearchesPerMinute)
	assert.Equal(t, "Europe/Berlin", cfg.Scheduler.Timezone)
}

func TestLoadFromFileDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracker.toml")
	require.NoError(t, os.WriteFile(path, []byte(""), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "data/tracker.db", cfg.Database.Path)
	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, "http://127.0.0.1:8000/mcp", cfg.MCP.URL)
	assert.Equal(t, DefaultMCPTimeoutSecs, cfg.MCP.TimeoutSeconds)
	assert.Equal(t, DefaultSearchLimit, cfg.Importer.DefaultLimit)
	assert.Zero(t, cfg.Importer.SearchesPerMinute)
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}
