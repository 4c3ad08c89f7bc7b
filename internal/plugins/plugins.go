package plugins

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"kiln/internal/convert"
	"kiln/internal/item"
	"kiln/internal/logging"
	"kiln/internal/pipeline"
	"kiln/internal/records"
	"kiln/internal/services"
)

// PropSourcePath is the default global property an export stage reads its
// source file(s) from. Manifests populate it per item.
const PropSourcePath = "path"

// Builtins returns the plugin kinds shipped with kiln, keyed by the kind
// string used in stage configuration.
func Builtins(logger *slog.Logger, conv convert.Client, recs records.Service, publishDir string) map[string]pipeline.Definition {
	if logger == nil {
		logger = logging.NewNop()
	}
	return map[string]pipeline.Definition{
		"export":   exportDefinition(logger, conv, recs, publishDir),
		"mipmap":   mipmapDefinition(logger, conv, recs),
		"register": registerDefinition(logger, recs),
	}
}

// sourcePaths reads the item property holding the source file list. A single
// string is treated as a one-frame sequence.
func sourcePaths(it *item.Item, property string) []string {
	value, ok := it.Property(property)
	if !ok {
		return nil
	}
	switch v := value.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return nil
		}
		return []string{v}
	case []string:
		return append([]string(nil), v...)
	case []any:
		paths := make([]string, 0, len(v))
		for _, entry := range v {
			if s, ok := entry.(string); ok && strings.TrimSpace(s) != "" {
				paths = append(paths, s)
			}
		}
		return paths
	default:
		return nil
	}
}

// recordPublish submits a publish record for the given item, tolerating an
// unconfigured registry through the noop service.
func recordPublish(ctx context.Context, recs records.Service, it *item.Item, plugin string, paths, dependencies []string) error {
	if recs == nil || len(paths) == 0 {
		return nil
	}
	runID, _ := services.RunIDFromContext(ctx)
	return recs.RegisterPublish(ctx, records.Record{
		Name:         it.Name,
		Type:         it.Type,
		Paths:        paths,
		RunID:        runID,
		Plugin:       plugin,
		Dependencies: dependencies,
	})
}

// producedPaths reads back the output paths a plugin recorded on the item
// during its publish phase.
func producedPaths(it *item.Item, plugin string) []string {
	value, ok := it.LocalProperty(plugin, pipeline.PropPublishPath)
	if !ok {
		return nil
	}
	switch v := value.(type) {
	case string:
		return []string{v}
	case []string:
		return append([]string(nil), v...)
	case []any:
		paths := make([]string, 0, len(v))
		for _, entry := range v {
			if s, ok := entry.(string); ok {
				paths = append(paths, s)
			}
		}
		return paths
	default:
		return nil
	}
}

func publishError(itemName, target string, err error) error {
	return fmt.Errorf("%s: publish to %s: %w", itemName, target, err)
}
