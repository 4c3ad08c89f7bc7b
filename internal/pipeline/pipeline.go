package pipeline

import (
	"fmt"
	"strings"

	"kiln/internal/item"
	"kiln/internal/services"
)

// PropPublishPath is the local-scope key a plugin writes its produced output
// path(s) under. Downstream plugins read it through UpstreamPaths.
const PropPublishPath = "publish_path"

// StageConfig is one ordered entry of the pipeline configuration. Order is a
// contract: producer stages must be listed before their consumers.
type StageConfig struct {
	Name        string
	Kind        string
	Icon        string
	ItemFilters []string
	Enabled     bool
	Settings    map[string]any
}

// Definition ties a plugin kind to its settings schema and constructor.
type Definition struct {
	Schema         Schema
	DefaultFilters []string
	Factory        Factory
}

// Pipeline is the ordered list of configured stages plus the dependency map
// built once at load time, so name lookups never scan at call time and a
// missing dependency surfaces as a load-time configuration error.
type Pipeline struct {
	descriptors []*Descriptor
	byName      map[string]*Descriptor
}

// New assembles a pipeline from ordered stage configuration and the known
// plugin kinds. Stage names must be unique; they key dependency resolution.
func New(stages []StageConfig, kinds map[string]Definition) (*Pipeline, error) {
	p := &Pipeline{byName: make(map[string]*Descriptor, len(stages))}

	for _, stage := range stages {
		name := strings.TrimSpace(stage.Name)
		if name == "" {
			return nil, services.Wrap(services.ErrConfiguration, "pipeline", "load", "stage name must not be empty", nil)
		}
		if _, exists := p.byName[name]; exists {
			return nil, services.Wrap(services.ErrConfiguration, "pipeline", "load", fmt.Sprintf("duplicate stage name %q", name), nil)
		}
		def, ok := kinds[stage.Kind]
		if !ok {
			return nil, services.Wrap(services.ErrConfiguration, "pipeline", "load", fmt.Sprintf("stage %q: unknown plugin kind %q", name, stage.Kind), nil)
		}
		settings, err := def.Schema.Resolve(stage.Settings)
		if err != nil {
			return nil, fmt.Errorf("stage %q: %w", name, err)
		}
		filters := stage.ItemFilters
		if len(filters) == 0 {
			filters = def.DefaultFilters
		}
		desc := &Descriptor{
			name:        name,
			kind:        stage.Kind,
			icon:        stage.Icon,
			itemFilters: append([]string(nil), filters...),
			schema:      def.Schema,
			settings:    settings,
			enabled:     stage.Enabled,
		}
		p.descriptors = append(p.descriptors, desc)
		p.byName[name] = desc
	}

	// Implementations are built after every descriptor is registered so a
	// factory can resolve upstream stages through the Host.
	for _, desc := range p.descriptors {
		def := kinds[desc.kind]
		impl, err := def.Factory(p, desc.name, desc.settings)
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "pipeline", "load", fmt.Sprintf("stage %q", desc.name), err)
		}
		desc.impl = impl
	}

	return p, nil
}

// Descriptors returns the stages in configured order.
func (p *Pipeline) Descriptors() []*Descriptor {
	cp := make([]*Descriptor, len(p.descriptors))
	copy(cp, p.descriptors)
	return cp
}

// Resolve looks up a stage by configured name. An unknown name is a fatal
// configuration error: the environment is misconfigured, not the content.
func (p *Pipeline) Resolve(name string) (*Descriptor, error) {
	if desc, ok := p.byName[name]; ok {
		return desc, nil
	}
	return nil, services.Wrap(services.ErrConfiguration, "pipeline", "resolve dependency", fmt.Sprintf("no stage named %q in pipeline configuration", name), nil)
}

// UpstreamPaths returns the output paths the named upstream stage recorded on
// the item during its publish phase. The result is one-to-many because an
// upstream task may have fanned out over a file sequence.
func (p *Pipeline) UpstreamPaths(it *item.Item, pluginName string) ([]string, error) {
	desc, err := p.Resolve(pluginName)
	if err != nil {
		return nil, err
	}
	value, ok := it.LocalProperty(desc.Name(), PropPublishPath)
	if !ok {
		return nil, services.Wrap(services.ErrNotFound, "pipeline", "resolve dependency",
			fmt.Sprintf("stage %q recorded no output for item %q", pluginName, it.Name), nil)
	}
	switch v := value.(type) {
	case string:
		return []string{v}, nil
	case []string:
		return append([]string(nil), v...), nil
	case []any:
		paths := make([]string, 0, len(v))
		for _, entry := range v {
			if s, ok := entry.(string); ok {
				paths = append(paths, s)
			}
		}
		return paths, nil
	default:
		return nil, services.Wrap(services.ErrNotFound, "pipeline", "resolve dependency",
			fmt.Sprintf("stage %q recorded an unexpected output type %T", pluginName, value), nil)
	}
}

var _ Host = (*Pipeline)(nil)
