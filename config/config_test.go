package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("QATRACK_TEST_KEY", "value")

	assert.Equal(t, "value", GetEnv("QATRACK_TEST_KEY", "fallback"))
	assert.Equal(t, "fallback", GetEnv("QATRACK_TEST_MISSING", "fallback"))
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 24, cfg.JWTTTLHours)
	assert.True(t, cfg.StatusPolicy.RequireATTester)
	assert.False(t, cfg.StatusPolicy.RequireFTTester)
	assert.True(t, cfg.StatusPolicy.RequireQA)
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "qatrack.yaml")
	content := `
port: "9000"
database_driver: sqlite
database_url: file.db
status_policy:
  require_at_tester: true
  require_ft_tester: true
notification_templates:
  team_added: "Welcome to {{project}}"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	t.Setenv("QATRACK_CONFIG", path)
	t.Setenv("PORT", "9100")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("STATUS_REQUIRE_QA", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.Port, "environment overrides file")
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, "file.db", cfg.DatabaseURL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.True(t, cfg.StatusPolicy.RequireFTTester)
	assert.False(t, cfg.StatusPolicy.RequireQA)
	assert.Equal(t, "Welcome to {{project}}", cfg.Templates["team_added"])
}

func TestLoad_InvalidTTL(t *testing.T) {
	t.Setenv("JWT_TTL_HOURS", "soon")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
