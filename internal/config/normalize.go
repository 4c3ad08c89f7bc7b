package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeRegistry()
	c.normalizeConverter()
	c.normalizeLogging()
	c.normalizePlugins()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if c.Paths.PublishDir, err = expandPath(c.Paths.PublishDir); err != nil {
		return fmt.Errorf("paths.publish_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeRegistry() {
	c.Registry.Endpoint = strings.TrimSpace(c.Registry.Endpoint)
	if c.Registry.Endpoint == "" {
		if value, ok := os.LookupEnv("KILN_REGISTRY_ENDPOINT"); ok {
			c.Registry.Endpoint = strings.TrimSpace(value)
		}
	}
	if c.Registry.RequestTimeout <= 0 {
		c.Registry.RequestTimeout = defaultRegistryRequestTimeout
	}
}

func (c *Config) normalizeConverter() {
	c.Converter.Binary = strings.TrimSpace(c.Converter.Binary)
	if c.Converter.Binary == "" {
		c.Converter.Binary = defaultConverterBinary
	}
	if c.Converter.TimeoutSeconds <= 0 {
		c.Converter.TimeoutSeconds = defaultConverterTimeoutSeconds
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizePlugins() {
	if len(c.Plugins) == 0 {
		c.Plugins = defaultPlugins()
	}
	for i := range c.Plugins {
		plugin := &c.Plugins[i]
		plugin.Name = strings.TrimSpace(plugin.Name)
		plugin.Kind = strings.ToLower(strings.TrimSpace(plugin.Kind))
		plugin.Icon = strings.TrimSpace(plugin.Icon)

		filters := make([]string, 0, len(plugin.ItemFilters))
		seen := make(map[string]struct{}, len(plugin.ItemFilters))
		for _, filter := range plugin.ItemFilters {
			normalized := strings.ToLower(strings.TrimSpace(filter))
			if normalized == "" {
				continue
			}
			if _, ok := seen[normalized]; ok {
				continue
			}
			seen[normalized] = struct{}{}
			filters = append(filters, normalized)
		}
		plugin.ItemFilters = filters
	}
}
