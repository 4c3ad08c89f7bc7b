package pipeline

// Descriptor describes one configured pipeline stage. Descriptors are built
// when the pipeline configuration loads and are immutable afterwards; every
// task instantiated against a stage shares the same descriptor.
type Descriptor struct {
	name        string
	kind        string
	icon        string
	itemFilters []string
	schema      Schema
	settings    Settings
	enabled     bool
	impl        Plugin
}

// Name returns the configured instance name. Names are unique within one
// pipeline and serve as the dependency-resolution key.
func (d *Descriptor) Name() string { return d.name }

// Kind returns the plugin implementation the stage was built from.
func (d *Descriptor) Kind() string { return d.kind }

// Icon returns the display icon identifier.
func (d *Descriptor) Icon() string { return d.icon }

// ItemFilters returns the type tags the stage accepts.
func (d *Descriptor) ItemFilters() []string {
	cp := make([]string, len(d.itemFilters))
	copy(cp, d.itemFilters)
	return cp
}

// Schema returns the ordered settings schema.
func (d *Descriptor) Schema() Schema { return d.schema }

// Settings returns the resolved settings for this instance.
func (d *Descriptor) Settings() Settings { return d.settings }

// Enabled reports whether configuration allows tasks of this stage to run.
// This is a hard floor: a disabled stage's tasks can never be checked.
func (d *Descriptor) Enabled() bool { return d.enabled }

// Plugin returns the implementation bound to this stage.
func (d *Descriptor) Plugin() Plugin { return d.impl }

// Matches reports whether the stage accepts the given item type tag. An
// empty filter list matches nothing.
func (d *Descriptor) Matches(itemType string) bool {
	for _, filter := range d.itemFilters {
		if filter == itemType {
			return true
		}
	}
	return false
}
