package plugins

import (
	"context"
	"log/slog"

	"kiln/internal/item"
	"kiln/internal/pipeline"
	"kiln/internal/records"
)

func registerDefinition(logger *slog.Logger, recs records.Service) pipeline.Definition {
	return pipeline.Definition{
		Schema: pipeline.Schema{
			{
				Name:        "input_plugin",
				Type:        pipeline.TypeString,
				Required:    true,
				Description: "Name of the upstream stage whose output is registered.",
			},
		},
		Factory: func(host pipeline.Host, name string, settings pipeline.Settings) (pipeline.Plugin, error) {
			input := settings.String("input_plugin")
			if _, err := host.Resolve(input); err != nil {
				return nil, err
			}
			return &registerPlugin{
				name:   name,
				input:  input,
				logger: logger.With("component", "register"),
				recs:   recs,
				host:   host,
			}, nil
		},
	}
}

// registerPlugin submits a publish record for the output of an upstream stage
// that does not register itself. It produces no files of its own.
type registerPlugin struct {
	name   string
	input  string
	logger *slog.Logger
	recs   records.Service
	host   pipeline.Host
}

func (p *registerPlugin) Accept(ctx context.Context, settings pipeline.Settings, it *item.Item) (pipeline.Acceptance, error) {
	return pipeline.Acceptance{Accepted: true, Checked: true, Visible: true}, nil
}

func (p *registerPlugin) Validate(ctx context.Context, settings pipeline.Settings, it *item.Item) error {
	return nil
}

func (p *registerPlugin) Publish(ctx context.Context, settings pipeline.Settings, it *item.Item) error {
	return nil
}

func (p *registerPlugin) Finalize(ctx context.Context, settings pipeline.Settings, it *item.Item) error {
	paths, err := p.host.UpstreamPaths(it, p.input)
	if err != nil {
		return err
	}
	p.logger.Info("registering upstream publish", "item", it.Name, "stage", p.input, "files", len(paths))
	return recordPublish(ctx, p.recs, it, p.input, paths, nil)
}
