package services

import "context"

type contextKey string

const (
	itemKey   contextKey = "item"
	phaseKey  contextKey = "phase"
	pluginKey contextKey = "plugin"
	runIDKey  contextKey = "run_id"
)

// WithItem annotates context with the publish item name.
func WithItem(ctx context.Context, name string) context.Context {
	if name == "" {
		return ctx
	}
	return context.WithValue(ctx, itemKey, name)
}

// ItemFromContext returns the item name if present.
func ItemFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(itemKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithPhase annotates context with the lifecycle phase name.
func WithPhase(ctx context.Context, phase string) context.Context {
	if phase == "" {
		return ctx
	}
	return context.WithValue(ctx, phaseKey, phase)
}

// PhaseFromContext returns the phase name if present.
func PhaseFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(phaseKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithPlugin annotates context with the configured plugin name.
func WithPlugin(ctx context.Context, name string) context.Context {
	if name == "" {
		return ctx
	}
	return context.WithValue(ctx, pluginKey, name)
}

// PluginFromContext returns the plugin name if present.
func PluginFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(pluginKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithRunID annotates context with a publish run correlation identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
