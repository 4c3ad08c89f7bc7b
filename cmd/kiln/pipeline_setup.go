package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"kiln/internal/config"
	"kiln/internal/convert"
	"kiln/internal/manifest"
	"kiln/internal/pipeline"
	"kiln/internal/plugins"
	"kiln/internal/records"
	"kiln/internal/tree"
)

func stagesFromConfig(cfg *config.Config) []pipeline.StageConfig {
	stages := make([]pipeline.StageConfig, 0, len(cfg.Plugins))
	for _, pc := range cfg.Plugins {
		stages = append(stages, pipeline.StageConfig{
			Name:        pc.Name,
			Kind:        pc.Kind,
			Icon:        pc.Icon,
			ItemFilters: pc.ItemFilters,
			Enabled:     pc.IsEnabled(),
			Settings:    pc.Settings,
		})
	}
	return stages
}

// buildPublishPipeline assembles the configured stages over the built-in
// plugin kinds with the converter and registry clients from config.
func buildPublishPipeline(cfg *config.Config, logger *slog.Logger) (*pipeline.Pipeline, error) {
	conv := convert.NewCLI(
		cfg.Converter.Binary,
		convert.WithArgs(cfg.Converter.Args...),
		convert.WithTimeout(time.Duration(cfg.Converter.TimeoutSeconds)*time.Second),
	)
	recs := records.NewService(cfg)
	kinds := plugins.Builtins(logger, conv, recs, cfg.Paths.PublishDir)
	return pipeline.New(stagesFromConfig(cfg), kinds)
}

// loadTree reads the manifest into a fresh tree and attaches tasks for every
// stage whose filters match an item.
func loadTree(p *pipeline.Pipeline, manifestPath string) (*tree.Tree, int, error) {
	manifestPath = strings.TrimSpace(manifestPath)
	if manifestPath == "" {
		return nil, 0, errors.New("a manifest file is required (--manifest)")
	}
	expanded, err := config.ExpandPath(manifestPath)
	if err != nil {
		return nil, 0, fmt.Errorf("resolve manifest path: %w", err)
	}
	entries, err := manifest.Load(expanded)
	if err != nil {
		return nil, 0, fmt.Errorf("load manifest: %w", err)
	}

	tr := tree.New()
	if _, err := manifest.Populate(tr, entries); err != nil {
		return nil, 0, fmt.Errorf("populate item tree: %w", err)
	}
	attached := tr.AttachTasks(p)
	return tr, attached, nil
}
