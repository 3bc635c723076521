package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/memex/internal/store"
)

// isolate points user config and home at temp dirs and clears MEMEX_* overrides.
func isolate(t *testing.T) (home string) {
	t.Helper()
	home = t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	for _, key := range []string{
		"MEMEX_WORKSPACE", "MEMEX_DAILY_DIR", "MEMEX_KNOWLEDGE_GRAPH_DIR", "MEMEX_TOOLS_DIR",
		"MEMEX_INDEX_PATH", "MEMEX_LOG_LEVEL", "MEMEX_TELEMETRY", "MEMEX_TELEMETRY_PATH", "MEMEX_MAX_FEATURES",
	} {
		t.Setenv(key, "")
	}
	return home
}

func writeYAMLFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// =============================================================================
// Defaults
// =============================================================================

func TestNewConfig_ReturnsDefaults(t *testing.T) {
	cfg := NewConfig()

	require.NotNil(t, cfg)
	assert.Equal(t, 1, cfg.Version)
	assert.Equal(t, "memory", cfg.Paths.DailyDir)
	assert.Equal(t, []string{"MEMORY.md", "AGENTS.md", "HEARTBEAT.md"}, cfg.Paths.TacitFiles)
	assert.Equal(t, filepath.Join("tools", "index.gob"), cfg.Paths.IndexPath)
	assert.Equal(t, store.DefaultVectorizerConfig(), cfg.VectorizerConfig())
	assert.Equal(t, 10, cfg.Search.DefaultLimit)
	assert.Equal(t, 24, cfg.Timeline.HoursBefore)
	assert.Equal(t, 24, cfg.Timeline.HoursAfter)
	assert.Equal(t, 5, cfg.Timeline.FactsPerFile)
	assert.Equal(t, 500*time.Millisecond, cfg.WatchDebounce())
	assert.True(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.NoError(t, cfg.Validate())
}

// =============================================================================
// Load precedence
// =============================================================================

func TestLoad_DefaultsResolveAgainstWorkspace(t *testing.T) {
	home := isolate(t)
	ws := t.TempDir()

	cfg, err := Load(ws)
	require.NoError(t, err)

	sources := cfg.Sources()
	assert.Equal(t, filepath.Join(ws, "memory"), sources.DailyDir)
	assert.Equal(t, filepath.Join(ws, "MEMORY.md"), sources.TacitFiles[0])
	assert.Equal(t, filepath.Join(home, "life", "areas"), sources.KnowledgeGraphDir)
	assert.Equal(t, filepath.Join(ws, "tools"), sources.ToolsDir)
	assert.Equal(t, filepath.Join(ws, "tools", "index.gob"), cfg.ArtifactPath())
}

func TestLoad_WorkspaceFromEnvironment(t *testing.T) {
	isolate(t)
	ws := t.TempDir()
	t.Setenv("MEMEX_WORKSPACE", ws)

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, ws, cfg.Workspace)
}

func TestLoad_Precedence(t *testing.T) {
	// Given: user config, workspace config, and env each set something
	isolate(t)
	ws := t.TempDir()
	writeYAMLFile(t, GetUserConfigPath(), `
paths:
  daily_dir: journal
  tools_dir: skills
search:
  default_limit: 5
logging:
  level: warn
`)
	writeYAMLFile(t, filepath.Join(ws, ProjectFileName), `
paths:
  daily_dir: notes/daily
index:
  max_features: 1000
timeline:
  hours_before: 0
  hours_after: 72
`)
	t.Setenv("MEMEX_LOG_LEVEL", "debug")
	t.Setenv("MEMEX_INDEX_PATH", "/var/tmp/memex.gob")

	// When
	cfg, err := Load(ws)
	require.NoError(t, err)

	// Then: later layers win, untouched values fall through
	assert.Equal(t, filepath.Join(ws, "notes", "daily"), cfg.Sources().DailyDir)
	assert.Equal(t, filepath.Join(ws, "skills"), cfg.Sources().ToolsDir)
	assert.Equal(t, 5, cfg.Search.DefaultLimit)
	assert.Equal(t, 1000, cfg.Index.MaxFeatures)
	assert.Equal(t, 0, cfg.Timeline.HoursBefore)
	assert.Equal(t, 72, cfg.Timeline.HoursAfter)
	assert.Equal(t, 5, cfg.Timeline.FactsPerFile)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "/var/tmp/memex.gob", cfg.ArtifactPath())
}

func TestLoad_TelemetryToggle(t *testing.T) {
	isolate(t)
	ws := t.TempDir()

	t.Setenv("MEMEX_TELEMETRY", "false")
	cfg, err := Load(ws)
	require.NoError(t, err)
	assert.False(t, cfg.Telemetry.Enabled)

	t.Setenv("MEMEX_TELEMETRY", "not-a-bool")
	cfg, err = Load(ws)
	require.NoError(t, err)
	assert.True(t, cfg.Telemetry.Enabled)
}

func TestLoad_InvalidYAML(t *testing.T) {
	isolate(t)
	ws := t.TempDir()
	writeYAMLFile(t, filepath.Join(ws, ProjectFileName), "index: [unclosed")

	_, err := Load(ws)

	assert.Error(t, err)
}

func TestLoad_InvalidValues(t *testing.T) {
	isolate(t)
	ws := t.TempDir()
	writeYAMLFile(t, filepath.Join(ws, ProjectFileName), "logging:\n  level: verbose\n")

	_, err := Load(ws)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.level")
}

func TestLoad_WorkspaceFileCannotMoveWorkspace(t *testing.T) {
	isolate(t)
	ws := t.TempDir()
	writeYAMLFile(t, filepath.Join(ws, ProjectFileName), "workspace: /elsewhere\n")

	cfg, err := Load(ws)

	require.NoError(t, err)
	assert.Equal(t, ws, cfg.Workspace)
}

// =============================================================================
// Validation
// =============================================================================

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"max features", func(c *Config) { c.Index.MaxFeatures = 0 }, "max_features"},
		{"min df", func(c *Config) { c.Index.MinDF = 0 }, "min_df"},
		{"max df ratio", func(c *Config) { c.Index.MaxDFRatio = 1.5 }, "max_df_ratio"},
		{"ngram", func(c *Config) { c.Index.NgramMax = 0 }, "ngram_max"},
		{"limit", func(c *Config) { c.Search.DefaultLimit = -1 }, "default_limit"},
		{"hours", func(c *Config) { c.Timeline.HoursAfter = -3 }, "timeline hours"},
		{"debounce", func(c *Config) { c.Watch.Debounce = "soon" }, "debounce"},
		{"level", func(c *Config) { c.Logging.Level = "trace" }, "logging.level"},
		{"paths", func(c *Config) { c.Paths.IndexPath = "" }, "index_path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

// =============================================================================
// Paths
// =============================================================================

func TestResolve(t *testing.T) {
	home := isolate(t)
	cfg := &Config{Workspace: "/ws"}

	assert.Equal(t, filepath.Join("/ws", "memory"), cfg.Resolve("memory"))
	assert.Equal(t, "/abs/path", cfg.Resolve("/abs/path/"))
	assert.Equal(t, filepath.Join(home, "life"), cfg.Resolve("~/life"))
	assert.Equal(t, "", cfg.Resolve(""))
}

func TestGetUserConfigPath(t *testing.T) {
	home := isolate(t)
	assert.Equal(t, filepath.Join(home, ".config", "memex", "config.yaml"), GetUserConfigPath())

	t.Setenv("XDG_CONFIG_HOME", "")
	assert.Equal(t, filepath.Join(home, ".config", "memex", "config.yaml"), GetUserConfigPath())
}

func TestWriteYAML_RoundTripsThroughLoad(t *testing.T) {
	isolate(t)
	ws := t.TempDir()
	cfg := NewConfig()
	cfg.Search.DefaultLimit = 3
	cfg.Paths.TacitFiles = []string{"NOTES.md"}

	require.NoError(t, cfg.WriteYAML(filepath.Join(ws, ProjectFileName)))
	loaded, err := Load(ws)

	require.NoError(t, err)
	assert.Equal(t, 3, loaded.Search.DefaultLimit)
	assert.Equal(t, []string{filepath.Join(ws, "NOTES.md")}, loaded.Sources().TacitFiles)
}
