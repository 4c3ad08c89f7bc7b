package pipeline

import (
	"context"

	"kiln/internal/item"
)

// Acceptance is the result of a plugin's accept phase for one item.
type Acceptance struct {
	// Accepted controls whether a task is created at all. An unaccepted
	// pairing is dropped from the executable set, not merely unchecked.
	Accepted bool
	// Required marks the task as non-uncheckable in the tree.
	Required bool
	// Checked sets the default check state for the new task.
	Checked bool
	// Visible controls whether the task shows up in tree summaries and UIs.
	Visible bool
}

// Plugin is the four-phase contract every pipeline stage implements.
// Validate returning nil means the item is fit to publish. Faults raised by
// any phase are isolated to the task being executed.
type Plugin interface {
	Accept(ctx context.Context, settings Settings, it *item.Item) (Acceptance, error)
	Validate(ctx context.Context, settings Settings, it *item.Item) error
	Publish(ctx context.Context, settings Settings, it *item.Item) error
	Finalize(ctx context.Context, settings Settings, it *item.Item) error
}

// Host is the view of the pipeline handed to plugin factories. It lets a
// downstream plugin locate the output recorded by a named upstream plugin
// without holding a concrete pipeline reference.
type Host interface {
	Resolve(name string) (*Descriptor, error)
	UpstreamPaths(it *item.Item, pluginName string) ([]string, error)
}

// Factory constructs a plugin implementation for one configured instance.
// The instance name keys the item local scope the plugin writes into.
type Factory func(host Host, name string, settings Settings) (Plugin, error)
