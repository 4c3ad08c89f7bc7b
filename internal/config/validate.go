package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateTimeouts(); err != nil {
		return err
	}
	return c.validatePlugins()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.StagingDir) == "" {
		return errors.New("paths.staging_dir must be set")
	}
	if strings.TrimSpace(c.Paths.PublishDir) == "" {
		return errors.New("paths.publish_dir must be set")
	}
	return nil
}

func (c *Config) validateTimeouts() error {
	if c.Registry.RequestTimeout <= 0 {
		return errors.New("registry.request_timeout must be positive (seconds)")
	}
	if c.Converter.TimeoutSeconds <= 0 {
		return errors.New("converter.timeout_seconds must be positive")
	}
	if c.Workflow.PublishTimeout < 0 {
		return errors.New("workflow.publish_timeout must be >= 0 (0 disables the bound)")
	}
	return nil
}

func (c *Config) validatePlugins() error {
	if len(c.Plugins) == 0 {
		return errors.New("at least one [[plugins]] stage must be configured")
	}
	seen := make(map[string]struct{}, len(c.Plugins))
	for i, plugin := range c.Plugins {
		if plugin.Name == "" {
			return fmt.Errorf("plugins[%d].name must be set", i)
		}
		if plugin.Kind == "" {
			return fmt.Errorf("plugins[%d] (%s): kind must be set", i, plugin.Name)
		}
		if _, ok := seen[plugin.Name]; ok {
			return fmt.Errorf("duplicate plugin name %q; names key the dependency lookup and must be unique", plugin.Name)
		}
		seen[plugin.Name] = struct{}{}
	}
	return nil
}
