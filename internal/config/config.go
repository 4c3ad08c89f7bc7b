package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	StagingDir string `toml:"staging_dir"`
	PublishDir string `toml:"publish_dir"`
	LogDir     string `toml:"log_dir"`
	StateDir   string `toml:"state_dir"`
}

// Registry contains configuration for the asset registry integration. An
// empty endpoint disables registration entirely.
type Registry struct {
	Endpoint       string `toml:"endpoint"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Converter contains configuration for the image conversion tool.
type Converter struct {
	Binary         string   `toml:"binary"`
	Args           []string `toml:"args"`
	TimeoutSeconds int      `toml:"timeout_seconds"`
}

// Workflow contains execution timing configuration.
type Workflow struct {
	// PublishTimeout bounds each task's publish call in seconds. Zero
	// disables the bound.
	PublishTimeout int `toml:"publish_timeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// PluginConfig describes one configured pipeline stage.
type PluginConfig struct {
	Name        string         `toml:"name"`
	Kind        string         `toml:"kind"`
	Icon        string         `toml:"icon"`
	ItemFilters []string       `toml:"item_filters"`
	Enabled     *bool          `toml:"enabled"`
	Settings    map[string]any `toml:"settings"`
}

// IsEnabled reports the effective enabled state; unset means enabled.
func (p PluginConfig) IsEnabled() bool {
	return p.Enabled == nil || *p.Enabled
}

// Config encapsulates all configuration values for Kiln.
//
// Configuration sections by subsystem:
//   - Paths: staging, publish, log, and state directories
//   - Registry: asset registry endpoint for publish records
//   - Converter: image conversion tool invocation
//   - Workflow: publish execution timing
//   - Logging: log format and level
//   - Plugins: the ordered pipeline stages
type Config struct {
	Paths     Paths          `toml:"paths"`
	Registry  Registry       `toml:"registry"`
	Converter Converter      `toml:"converter"`
	Workflow  Workflow       `toml:"workflow"`
	Logging   Logging        `toml:"logging"`
	Plugins   []PluginConfig `toml:"plugins"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/kiln/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("kiln.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for a publish run. The
// publish directory is created best-effort so config load still succeeds
// when shared storage is temporarily offline.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StagingDir, c.Paths.LogDir, c.Paths.StateDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.PublishDir) != "" {
		_ = os.MkdirAll(c.Paths.PublishDir, 0o755)
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
