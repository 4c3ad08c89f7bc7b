package item

// Item represents one unit of content discovered for publishing, such as a
// texture or a channel. The Type tag is matched against plugin item filters
// when tasks are attached.
type Item struct {
	Type    string
	Name    string
	Active  bool
	Visible bool

	properties map[string]any
	local      map[string]map[string]any
}

// New constructs an item that is active and visible by default.
func New(itemType, name string) *Item {
	return &Item{
		Type:       itemType,
		Name:       name,
		Active:     true,
		Visible:    true,
		properties: make(map[string]any),
		local:      make(map[string]map[string]any),
	}
}

// SetProperty stores a value in the global property mapping shared by every
// plugin operating on this item.
func (i *Item) SetProperty(key string, value any) {
	if i.properties == nil {
		i.properties = make(map[string]any)
	}
	i.properties[key] = value
}

// Property reads a global property.
func (i *Item) Property(key string) (any, bool) {
	value, ok := i.properties[key]
	return value, ok
}

// StringProperty reads a global property as a string, returning "" when the
// property is absent or not a string.
func (i *Item) StringProperty(key string) string {
	if value, ok := i.properties[key]; ok {
		if s, ok := value.(string); ok {
			return s
		}
	}
	return ""
}

// Properties returns a copy of the global property mapping.
func (i *Item) Properties() map[string]any {
	cp := make(map[string]any, len(i.properties))
	for k, v := range i.properties {
		cp[k] = v
	}
	return cp
}

// SetLocalProperty stores a value in the property scope owned by the named
// plugin instance. Each plugin sees only the scope it wrote itself, which
// keeps concurrent plugins from clobbering each other's bookkeeping.
func (i *Item) SetLocalProperty(plugin, key string, value any) {
	if i.local == nil {
		i.local = make(map[string]map[string]any)
	}
	scope := i.local[plugin]
	if scope == nil {
		scope = make(map[string]any)
		i.local[plugin] = scope
	}
	scope[key] = value
}

// LocalProperty reads a value from the named plugin's scope.
func (i *Item) LocalProperty(plugin, key string) (any, bool) {
	scope, ok := i.local[plugin]
	if !ok {
		return nil, false
	}
	value, ok := scope[key]
	return value, ok
}

// LocalScope returns a copy of the named plugin's scope. The result is empty
// (never nil) when the plugin has not written anything.
func (i *Item) LocalScope(plugin string) map[string]any {
	cp := make(map[string]any, len(i.local[plugin]))
	for k, v := range i.local[plugin] {
		cp[k] = v
	}
	return cp
}
