package plugins

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"kiln/internal/convert"
	"kiln/internal/fileutil"
	"kiln/internal/item"
	"kiln/internal/pipeline"
	"kiln/internal/records"
	"kiln/internal/sequence"
	"kiln/internal/textutil"
)

func exportDefinition(logger *slog.Logger, conv convert.Client, recs records.Service, publishDir string) pipeline.Definition {
	return pipeline.Definition{
		Schema: pipeline.Schema{
			{
				Name:        "publish_template",
				Type:        pipeline.TypeString,
				Default:     "",
				Description: "Target path template, resolved under the publish directory. Frame tokens (####, %04d) are substituted per source file.",
			},
			{
				Name:        "source_property",
				Type:        pipeline.TypeString,
				Default:     PropSourcePath,
				Description: "Item property holding the source file path or path list.",
			},
			{
				Name:        "verify",
				Type:        pipeline.TypeBool,
				Default:     true,
				Description: "Verify copied files with a checksum comparison.",
			},
		},
		DefaultFilters: []string{"mari.texture"},
		Factory: func(host pipeline.Host, name string, settings pipeline.Settings) (pipeline.Plugin, error) {
			return &exportPlugin{
				name:       name,
				logger:     logger.With("component", "export"),
				conv:       conv,
				recs:       recs,
				publishDir: publishDir,
			}, nil
		},
	}
}

// exportPlugin copies or converts an item's source files to the publish
// directory and records the produced paths for downstream stages.
type exportPlugin struct {
	name       string
	logger     *slog.Logger
	conv       convert.Client
	recs       records.Service
	publishDir string
}

func (p *exportPlugin) Accept(ctx context.Context, settings pipeline.Settings, it *item.Item) (pipeline.Acceptance, error) {
	if len(sourcePaths(it, settings.String("source_property"))) == 0 {
		return pipeline.Acceptance{}, nil
	}
	return pipeline.Acceptance{Accepted: true, Checked: true, Visible: true}, nil
}

func (p *exportPlugin) Validate(ctx context.Context, settings pipeline.Settings, it *item.Item) error {
	sources := sourcePaths(it, settings.String("source_property"))
	if len(sources) == 0 {
		return fmt.Errorf("%s: no source files to publish", it.Name)
	}
	for _, source := range sources {
		if _, err := os.Stat(source); err != nil {
			return fmt.Errorf("%s: source %s: %w", it.Name, source, err)
		}
	}
	return nil
}

func (p *exportPlugin) Publish(ctx context.Context, settings pipeline.Settings, it *item.Item) error {
	sources := sourcePaths(it, settings.String("source_property"))
	client := &exportClient{conv: p.conv, verify: settings.Bool("verify")}

	var (
		produced []string
		err      error
	)
	template := strings.TrimSpace(settings.String("publish_template"))
	if template == "" {
		produced, err = p.exportFlat(ctx, client, it, sources)
	} else {
		if !filepath.IsAbs(template) {
			template = filepath.Join(p.publishDir, template)
		}
		produced, err = sequence.ExportBatch(ctx, p.logger, client, sources, template)
	}
	if err != nil {
		return err
	}
	if len(produced) == 0 {
		return fmt.Errorf("%s: no files produced", it.Name)
	}

	it.SetLocalProperty(p.name, pipeline.PropPublishPath, produced)
	p.logger.Info("item exported", "item", it.Name, "files", len(produced))
	return nil
}

// exportFlat handles the no-template case: every source lands under a
// per-item directory keeping its base name, so frames never collide.
func (p *exportPlugin) exportFlat(ctx context.Context, client convert.Client, it *item.Item, sources []string) ([]string, error) {
	targetDir := filepath.Join(p.publishDir, textutil.SanitizeFileName(it.Name))
	produced := make([]string, 0, len(sources))
	for _, source := range sources {
		if err := ctx.Err(); err != nil {
			return produced, err
		}
		target := filepath.Join(targetDir, filepath.Base(source))
		if err := client.Convert(ctx, source, target); err != nil {
			return produced, publishError(it.Name, target, err)
		}
		produced = append(produced, target)
	}
	return produced, nil
}

func (p *exportPlugin) Finalize(ctx context.Context, settings pipeline.Settings, it *item.Item) error {
	return recordPublish(ctx, p.recs, it, p.name, producedPaths(it, p.name), nil)
}

// exportClient copies when source and target share an extension and defers to
// the converter when they differ.
type exportClient struct {
	conv   convert.Client
	verify bool
}

func (c *exportClient) Convert(ctx context.Context, source, target string) error {
	if !strings.EqualFold(filepath.Ext(source), filepath.Ext(target)) {
		if c.conv == nil {
			return fmt.Errorf("no converter configured for %s -> %s", filepath.Ext(source), filepath.Ext(target))
		}
		return c.conv.Convert(ctx, source, target)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	if c.verify {
		return fileutil.CopyFileVerified(source, target)
	}
	return fileutil.CopyFile(source, target)
}
