package plugins

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"kiln/internal/convert"
	"kiln/internal/item"
	"kiln/internal/pipeline"
	"kiln/internal/records"
	"kiln/internal/services"
)

func mipmapDefinition(logger *slog.Logger, conv convert.Client, recs records.Service) pipeline.Definition {
	return pipeline.Definition{
		Schema: pipeline.Schema{
			{
				Name:        "input_plugin",
				Type:        pipeline.TypeString,
				Default:     "Publish Textures",
				Required:    true,
				Description: "Name of the upstream stage whose output is mipmapped.",
			},
			{
				Name:        "target_extension",
				Type:        pipeline.TypeString,
				Default:     ".tx",
				Description: "Extension of the generated mipmap files.",
				Validate: func(value any) error {
					if s, ok := value.(string); ok && !strings.HasPrefix(s, ".") {
						return fmt.Errorf("extension %q must start with a dot", s)
					}
					return nil
				},
			},
		},
		DefaultFilters: []string{"mari.texture"},
		Factory: func(host pipeline.Host, name string, settings pipeline.Settings) (pipeline.Plugin, error) {
			input := settings.String("input_plugin")
			// Resolving here turns a dangling stage name into a load-time
			// configuration error instead of a mid-run failure.
			if _, err := host.Resolve(input); err != nil {
				return nil, err
			}
			return &mipmapPlugin{
				name:   name,
				input:  input,
				logger: logger.With("component", "mipmap"),
				conv:   conv,
				recs:   recs,
				host:   host,
			}, nil
		},
	}
}

// mipmapPlugin converts the files an upstream stage published into mipmapped
// textures, one target per upstream file.
type mipmapPlugin struct {
	name   string
	input  string
	logger *slog.Logger
	conv   convert.Client
	recs   records.Service
	host   pipeline.Host
}

func (p *mipmapPlugin) Accept(ctx context.Context, settings pipeline.Settings, it *item.Item) (pipeline.Acceptance, error) {
	return pipeline.Acceptance{Accepted: true, Checked: true, Visible: true}, nil
}

func (p *mipmapPlugin) Validate(ctx context.Context, settings pipeline.Settings, it *item.Item) error {
	if p.conv == nil {
		return services.Wrap(services.ErrConfiguration, "mipmap", "validate", "no converter configured", nil)
	}
	return nil
}

func (p *mipmapPlugin) Publish(ctx context.Context, settings pipeline.Settings, it *item.Item) error {
	sources, err := p.host.UpstreamPaths(it, p.input)
	if err != nil {
		return err
	}

	extension := settings.String("target_extension")
	produced := make([]string, 0, len(sources))
	for _, source := range sources {
		if err := ctx.Err(); err != nil {
			return err
		}
		target := swapExtension(source, extension)
		if err := p.conv.Convert(ctx, source, target); err != nil {
			p.logger.Warn("mipmap conversion failed, skipping file",
				"item", it.Name, "source", source, "error", err)
			continue
		}
		produced = append(produced, target)
	}
	if len(produced) == 0 {
		return fmt.Errorf("%s: no mipmaps produced from %d input file(s)", it.Name, len(sources))
	}

	it.SetLocalProperty(p.name, pipeline.PropPublishPath, produced)
	p.logger.Info("mipmaps generated", "item", it.Name, "files", len(produced))
	return nil
}

func (p *mipmapPlugin) Finalize(ctx context.Context, settings pipeline.Settings, it *item.Item) error {
	return recordPublish(ctx, p.recs, it, p.name, producedPaths(it, p.name), []string{p.input})
}

func swapExtension(path, extension string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + extension
}
