package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/renameio"
	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/memex/internal/collect"
	"github.com/Aman-CERP/memex/internal/index"
	"github.com/Aman-CERP/memex/internal/store"
)

// ProjectFileName is the per-workspace configuration file.
const ProjectFileName = ".memex.yaml"

// Config represents the complete memex configuration.
type Config struct {
	Version   int             `yaml:"version" json:"version"`
	Workspace string          `yaml:"workspace" json:"workspace"`
	Paths     PathsConfig     `yaml:"paths" json:"paths"`
	Index     IndexConfig     `yaml:"index" json:"index"`
	Search    SearchConfig    `yaml:"search" json:"search"`
	Timeline  TimelineConfig  `yaml:"timeline" json:"timeline"`
	Watch     WatchConfig     `yaml:"watch" json:"watch"`
	Telemetry TelemetryConfig `yaml:"telemetry" json:"telemetry"`
	Logging   LoggingConfig   `yaml:"logging" json:"logging"`
}

// PathsConfig locates the memory sources. Relative paths resolve against the workspace.
type PathsConfig struct {
	// DailyDir holds day-named notes (default: memory).
	DailyDir string `yaml:"daily_dir" json:"daily_dir"`
	// TacitFiles are long-lived documents (default: MEMORY.md, AGENTS.md, HEARTBEAT.md).
	TacitFiles []string `yaml:"tacit_files" json:"tacit_files"`
	// KnowledgeGraphDir is the <area>/<entity>/ tree (default: ~/life/areas).
	KnowledgeGraphDir string `yaml:"knowledge_graph_dir" json:"knowledge_graph_dir"`
	// ToolsDir is searched for tool docs (default: tools).
	ToolsDir string `yaml:"tools_dir" json:"tools_dir"`
	// ToolsPattern selects tool docs under ToolsDir.
	ToolsPattern string `yaml:"tools_pattern" json:"tools_pattern"`
	// IndexPath is the index artifact (default: tools/index.gob).
	IndexPath string `yaml:"index_path" json:"index_path"`
}

// IndexConfig tunes the TF-IDF vectorizer.
type IndexConfig struct {
	MaxFeatures int     `yaml:"max_features" json:"max_features"`
	MinDF       int     `yaml:"min_df" json:"min_df"`
	MaxDFRatio  float64 `yaml:"max_df_ratio" json:"max_df_ratio"`
	NgramMax    int     `yaml:"ngram_max" json:"ngram_max"`
}

// SearchConfig configures query defaults.
type SearchConfig struct {
	DefaultLimit int `yaml:"default_limit" json:"default_limit"`
	// CacheSize is the number of query vectors kept in memory.
	CacheSize int `yaml:"cache_size" json:"cache_size"`
}

// TimelineConfig configures timeline defaults.
type TimelineConfig struct {
	HoursBefore  int `yaml:"hours_before" json:"hours_before"`
	HoursAfter   int `yaml:"hours_after" json:"hours_after"`
	FactsPerFile int `yaml:"facts_per_file" json:"facts_per_file"`
}

// WatchConfig configures `memex index --watch`.
type WatchConfig struct {
	Debounce string `yaml:"debounce" json:"debounce"`
	// Polling scans instead of using fsnotify, for network or synced folders.
	Polling bool `yaml:"polling" json:"polling"`
	// Ignore holds extra base-name glob patterns that never trigger a rebuild.
	Ignore []string `yaml:"ignore,omitempty" json:"ignore,omitempty"`
}

// TelemetryConfig configures the local query log.
type TelemetryConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Path    string `yaml:"path" json:"path"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
}

// NewConfig creates a new Config with sensible defaults.
func NewConfig() *Config {
	vec := store.DefaultVectorizerConfig()
	return &Config{
		Version: 1,
		Paths: PathsConfig{
			DailyDir:          "memory",
			TacitFiles:        []string{"MEMORY.md", "AGENTS.md", "HEARTBEAT.md"},
			KnowledgeGraphDir: filepath.Join("~", "life", "areas"),
			ToolsDir:          "tools",
			ToolsPattern:      collect.DefaultToolsPattern,
			IndexPath:         filepath.Join("tools", "index.gob"),
		},
		Index: IndexConfig{
			MaxFeatures: vec.MaxFeatures,
			MinDF:       vec.MinDF,
			MaxDFRatio:  vec.MaxDFRatio,
			NgramMax:    vec.NgramMax,
		},
		Search: SearchConfig{
			DefaultLimit: 10,
			CacheSize:    256,
		},
		Timeline: TimelineConfig{
			HoursBefore:  24,
			HoursAfter:   24,
			FactsPerFile: 5,
		},
		Watch: WatchConfig{
			Debounce: "500ms",
		},
		Telemetry: TelemetryConfig{
			Enabled: true,
			Path:    defaultTelemetryPath(),
		},
		Logging: LoggingConfig{
			Level: "warn",
		},
	}
}

// defaultTelemetryPath returns ~/.memex/telemetry.db.
func defaultTelemetryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".memex", "telemetry.db")
	}
	return filepath.Join(home, ".memex", "telemetry.db")
}

// GetUserConfigPath returns the path to the user/global configuration file.
// It follows XDG Base Directory specification:
//   - $XDG_CONFIG_HOME/memex/config.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/memex/config.yaml (default)
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "memex", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "memex", "config.yaml")
	}
	return filepath.Join(home, ".config", "memex", "config.yaml")
}

// UserConfigExists returns true if the user configuration file exists.
func UserConfigExists() bool {
	return fileExists(GetUserConfigPath())
}

// LoadUserConfig loads the user/global configuration file.
// Returns nil config and nil error if the file doesn't exist.
func LoadUserConfig() (*Config, error) {
	configPath := GetUserConfigPath()
	if !fileExists(configPath) {
		return nil, nil
	}

	var parsed Config
	if err := readYAML(configPath, &parsed); err != nil {
		return nil, fmt.Errorf("failed to load user config from %s: %w", configPath, err)
	}
	return &parsed, nil
}

// Load loads configuration for a workspace.
// It applies configuration in order of increasing precedence:
//  1. Hardcoded defaults
//  2. User/global config (~/.config/memex/config.yaml)
//  3. Workspace config (.memex.yaml in the workspace)
//  4. Environment variables (MEMEX_*)
//
// An empty workspace means $MEMEX_WORKSPACE, falling back to the working directory.
func Load(workspace string) (*Config, error) {
	cfg := NewConfig()

	if userCfg, err := LoadUserConfig(); err != nil {
		return nil, err
	} else if userCfg != nil {
		cfg.mergeWith(userCfg)
	}

	if workspace == "" {
		workspace = os.Getenv("MEMEX_WORKSPACE")
	}
	if workspace == "" {
		workspace = cfg.Workspace
	}
	if workspace == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		workspace = wd
	}
	abs, err := filepath.Abs(ExpandHome(workspace))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace %s: %w", workspace, err)
	}
	cfg.Workspace = abs

	if err := cfg.loadFromFile(abs); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// loadFromFile merges .memex.yaml (or .memex.yml) from dir if present.
func (c *Config) loadFromFile(dir string) error {
	for _, name := range []string{ProjectFileName, ".memex.yml"} {
		path := filepath.Join(dir, name)
		if !fileExists(path) {
			continue
		}
		var parsed Config
		if err := readYAML(path, &parsed); err != nil {
			return err
		}
		// The workspace is fixed by the time its own file is read.
		parsed.Workspace = ""
		c.mergeWith(&parsed)
		return nil
	}
	return nil
}

func readYAML(path string, out *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// mergeWith merges non-zero values from other into c.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}
	if other.Workspace != "" {
		c.Workspace = other.Workspace
	}

	// Paths
	if other.Paths.DailyDir != "" {
		c.Paths.DailyDir = other.Paths.DailyDir
	}
	if len(other.Paths.TacitFiles) > 0 {
		c.Paths.TacitFiles = other.Paths.TacitFiles
	}
	if other.Paths.KnowledgeGraphDir != "" {
		c.Paths.KnowledgeGraphDir = other.Paths.KnowledgeGraphDir
	}
	if other.Paths.ToolsDir != "" {
		c.Paths.ToolsDir = other.Paths.ToolsDir
	}
	if other.Paths.ToolsPattern != "" {
		c.Paths.ToolsPattern = other.Paths.ToolsPattern
	}
	if other.Paths.IndexPath != "" {
		c.Paths.IndexPath = other.Paths.IndexPath
	}

	// Index
	if other.Index.MaxFeatures != 0 {
		c.Index.MaxFeatures = other.Index.MaxFeatures
	}
	if other.Index.MinDF != 0 {
		c.Index.MinDF = other.Index.MinDF
	}
	if other.Index.MaxDFRatio != 0 {
		c.Index.MaxDFRatio = other.Index.MaxDFRatio
	}
	if other.Index.NgramMax != 0 {
		c.Index.NgramMax = other.Index.NgramMax
	}

	// Search
	if other.Search.DefaultLimit != 0 {
		c.Search.DefaultLimit = other.Search.DefaultLimit
	}
	if other.Search.CacheSize != 0 {
		c.Search.CacheSize = other.Search.CacheSize
	}

	// Timeline. Zero hours is a meaningful window, so hours merge whenever a
	// timeline section sets anything.
	if other.Timeline != (TimelineConfig{}) {
		c.Timeline.HoursBefore = other.Timeline.HoursBefore
		c.Timeline.HoursAfter = other.Timeline.HoursAfter
		if other.Timeline.FactsPerFile != 0 {
			c.Timeline.FactsPerFile = other.Timeline.FactsPerFile
		}
	}

	if other.Watch.Debounce != "" {
		c.Watch.Debounce = other.Watch.Debounce
	}
	if other.Watch.Polling {
		c.Watch.Polling = true
	}
	if len(other.Watch.Ignore) > 0 {
		c.Watch.Ignore = other.Watch.Ignore
	}

	// Telemetry: enabled is boolean, so only merge it alongside a path
	if other.Telemetry.Path != "" {
		c.Telemetry.Path = other.Telemetry.Path
		c.Telemetry.Enabled = other.Telemetry.Enabled
	}

	if other.Logging.Level != "" {
		c.Logging.Level = other.Logging.Level
	}
}

// applyEnvOverrides applies MEMEX_* environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("MEMEX_DAILY_DIR"); v != "" {
		c.Paths.DailyDir = v
	}
	if v := os.Getenv("MEMEX_KNOWLEDGE_GRAPH_DIR"); v != "" {
		c.Paths.KnowledgeGraphDir = v
	}
	if v := os.Getenv("MEMEX_TOOLS_DIR"); v != "" {
		c.Paths.ToolsDir = v
	}
	if v := os.Getenv("MEMEX_INDEX_PATH"); v != "" {
		c.Paths.IndexPath = v
	}
	if v := os.Getenv("MEMEX_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("MEMEX_TELEMETRY"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.Telemetry.Enabled = enabled
		}
	}
	if v := os.Getenv("MEMEX_TELEMETRY_PATH"); v != "" {
		c.Telemetry.Path = v
	}
	if v := os.Getenv("MEMEX_MAX_FEATURES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Index.MaxFeatures = n
		}
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if c.Index.MaxFeatures <= 0 {
		return fmt.Errorf("index.max_features must be positive, got %d", c.Index.MaxFeatures)
	}
	if c.Index.MinDF < 1 {
		return fmt.Errorf("index.min_df must be at least 1, got %d", c.Index.MinDF)
	}
	if c.Index.MaxDFRatio <= 0 || c.Index.MaxDFRatio > 1 {
		return fmt.Errorf("index.max_df_ratio must be in (0, 1], got %f", c.Index.MaxDFRatio)
	}
	if c.Index.NgramMax < 1 {
		return fmt.Errorf("index.ngram_max must be at least 1, got %d", c.Index.NgramMax)
	}

	if c.Search.DefaultLimit < 0 {
		return fmt.Errorf("search.default_limit must be non-negative, got %d", c.Search.DefaultLimit)
	}
	if c.Search.CacheSize < 0 {
		return fmt.Errorf("search.cache_size must be non-negative, got %d", c.Search.CacheSize)
	}

	if c.Timeline.HoursBefore < 0 || c.Timeline.HoursAfter < 0 {
		return fmt.Errorf("timeline hours must be non-negative, got before=%d after=%d",
			c.Timeline.HoursBefore, c.Timeline.HoursAfter)
	}
	if c.Timeline.FactsPerFile < 0 {
		return fmt.Errorf("timeline.facts_per_file must be non-negative, got %d", c.Timeline.FactsPerFile)
	}

	if _, err := time.ParseDuration(c.Watch.Debounce); err != nil {
		return fmt.Errorf("watch.debounce must be a duration, got %q", c.Watch.Debounce)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("logging.level must be 'debug', 'info', 'warn', or 'error', got %s", c.Logging.Level)
	}

	if c.Paths.DailyDir == "" || c.Paths.IndexPath == "" {
		return fmt.Errorf("paths.daily_dir and paths.index_path are required")
	}
	return nil
}

// Resolve makes a configured path absolute: "~" expands to the home directory
// and relative paths resolve against the workspace.
func (c *Config) Resolve(path string) string {
	if path == "" {
		return ""
	}
	path = ExpandHome(path)
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(c.Workspace, path)
}

// Sources returns the resolved source locations.
func (c *Config) Sources() index.Sources {
	tacit := make([]string, len(c.Paths.TacitFiles))
	for i, f := range c.Paths.TacitFiles {
		tacit[i] = c.Resolve(f)
	}
	return index.Sources{
		DailyDir:          c.Resolve(c.Paths.DailyDir),
		TacitFiles:        tacit,
		KnowledgeGraphDir: c.Resolve(c.Paths.KnowledgeGraphDir),
		ToolsDir:          c.Resolve(c.Paths.ToolsDir),
		ToolsPattern:      c.Paths.ToolsPattern,
		Location:          time.Local,
	}
}

// ArtifactPath returns the resolved index artifact path.
func (c *Config) ArtifactPath() string {
	return c.Resolve(c.Paths.IndexPath)
}

// TelemetryPath returns the resolved telemetry database path.
func (c *Config) TelemetryPath() string {
	return c.Resolve(c.Telemetry.Path)
}

// VectorizerConfig returns the vectorizer settings.
func (c *Config) VectorizerConfig() store.VectorizerConfig {
	return store.VectorizerConfig{
		MaxFeatures: c.Index.MaxFeatures,
		MinDF:       c.Index.MinDF,
		MaxDFRatio:  c.Index.MaxDFRatio,
		NgramMax:    c.Index.NgramMax,
	}
}

// WatchDebounce returns the parsed debounce interval.
func (c *Config) WatchDebounce() time.Duration {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil {
		return 500 * time.Millisecond
	}
	return d
}

// WriteYAML atomically writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, `~\`) {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
