package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
[paths]
staging_dir = "/tmp/kiln-test/staging"
publish_dir = "/tmp/kiln-test/publish"
`)
	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("resolved = %q exists = %v", resolved, exists)
	}
	if cfg.Converter.Binary != "oiiotool" {
		t.Fatalf("converter default missing: %q", cfg.Converter.Binary)
	}
	if cfg.Registry.RequestTimeout != 10 {
		t.Fatalf("registry timeout default missing: %d", cfg.Registry.RequestTimeout)
	}
	if len(cfg.Plugins) != 2 || cfg.Plugins[0].Name != "Publish Textures" {
		t.Fatalf("default pipeline missing: %+v", cfg.Plugins)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("logging defaults missing: %+v", cfg.Logging)
	}
}

func TestLoadExpandsTilde(t *testing.T) {
	path := writeConfig(t, `
[paths]
staging_dir = "~/kiln-staging"
publish_dir = "/tmp/kiln-test/publish"
`)
	cfg, _, _, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}
	if cfg.Paths.StagingDir != filepath.Join(home, "kiln-staging") {
		t.Fatalf("tilde not expanded: %q", cfg.Paths.StagingDir)
	}
}

func TestLoadRejectsDuplicatePluginNames(t *testing.T) {
	path := writeConfig(t, `
[[plugins]]
name = "Publish Textures"
kind = "export"

[[plugins]]
name = "Publish Textures"
kind = "mipmap"
`)
	_, _, _, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "duplicate plugin name") {
		t.Fatalf("expected duplicate name error, got %v", err)
	}
}

func TestLoadRejectsMissingPluginKind(t *testing.T) {
	path := writeConfig(t, `
[[plugins]]
name = "Publish Textures"
`)
	if _, _, _, err := Load(path); err == nil {
		t.Fatal("expected error for plugin without kind")
	}
}

func TestLoadRejectsNegativePublishTimeout(t *testing.T) {
	path := writeConfig(t, `
[workflow]
publish_timeout = -5
`)
	if _, _, _, err := Load(path); err == nil {
		t.Fatal("expected error for negative publish timeout")
	}
}

func TestNormalizePluginsFilters(t *testing.T) {
	path := writeConfig(t, `
[[plugins]]
name = "Publish Textures"
kind = "Export"
item_filters = [" Mari.Texture ", "mari.texture", ""]
`)
	cfg, _, _, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	plugin := cfg.Plugins[0]
	if plugin.Kind != "export" {
		t.Fatalf("kind not normalized: %q", plugin.Kind)
	}
	if len(plugin.ItemFilters) != 1 || plugin.ItemFilters[0] != "mari.texture" {
		t.Fatalf("filters not normalized: %v", plugin.ItemFilters)
	}
}

func TestPluginIsEnabled(t *testing.T) {
	off := false
	if !(PluginConfig{}).IsEnabled() {
		t.Fatal("unset enabled should default to true")
	}
	if (PluginConfig{Enabled: &off}).IsEnabled() {
		t.Fatal("explicit false should disable")
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("sample config should exist")
	}
	if len(cfg.Plugins) != 2 {
		t.Fatalf("sample pipeline wrong: %+v", cfg.Plugins)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.toml")
	cfg, _, exists, err := Load(missing)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("file should not exist")
	}
	if cfg.Paths.StagingDir == "" {
		t.Fatal("defaults not applied")
	}
}
