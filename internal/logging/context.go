package logging

import (
	"context"
	"log/slog"

	"kiln/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldItem is the standardized structured logging key for publish item names.
	FieldItem = "item"
	// FieldPhase is the standardized structured logging key for lifecycle phase names.
	FieldPhase = "phase"
	// FieldPlugin is the standardized structured logging key for configured plugin names.
	FieldPlugin = "plugin"
	// FieldRunID is the standardized structured logging key for publish run identifiers.
	FieldRunID = "run_id"
	// FieldEventType marks machine-filterable lifecycle events.
	FieldEventType = "event_type"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 4)
	if name, ok := services.ItemFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldItem, name))
	}
	if phase, ok := services.PhaseFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldPhase, phase))
	}
	if plugin, ok := services.PluginFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldPlugin, plugin))
	}
	if id, ok := services.RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from
// the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
