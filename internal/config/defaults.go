package config

const (
	defaultStagingDir              = "~/.local/share/kiln/staging"
	defaultPublishDir              = "~/publish"
	defaultLogDir                  = "~/.local/share/kiln/logs"
	defaultStateDir                = "~/.local/share/kiln"
	defaultRegistryRequestTimeout  = 10
	defaultConverterBinary         = "oiiotool"
	defaultConverterTimeoutSeconds = 300
	defaultLogFormat               = "console"
	defaultLogLevel                = "info"
)

// Default returns a Config populated with repository defaults. Plugins stay
// empty here: TOML array decoding appends to a non-empty slice, so the
// standard pipeline is filled in during normalization instead.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			PublishDir: defaultPublishDir,
			LogDir:     defaultLogDir,
			StateDir:   defaultStateDir,
		},
		Registry: Registry{
			RequestTimeout: defaultRegistryRequestTimeout,
		},
		Converter: Converter{
			Binary:         defaultConverterBinary,
			TimeoutSeconds: defaultConverterTimeoutSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

// defaultPlugins is the standard two-stage texture pipeline used when no
// stages are configured.
func defaultPlugins() []PluginConfig {
	return []PluginConfig{
		{
			Name:        "Publish Textures",
			Kind:        "export",
			Icon:        "texture",
			ItemFilters: []string{"mari.texture"},
		},
		{
			Name:        "Publish Mipmaps",
			Kind:        "mipmap",
			Icon:        "mipmap",
			ItemFilters: []string{"mari.texture"},
			Settings:    map[string]any{"input_plugin": "Publish Textures"},
		},
	}
}
