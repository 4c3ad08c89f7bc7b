package manifest

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"kiln/internal/item"
	"kiln/internal/tree"
)

// Entry describes one item in a publish manifest. Children nest arbitrarily.
type Entry struct {
	Name       string         `toml:"name"`
	Type       string         `toml:"type"`
	Active     *bool          `toml:"active"`
	Visible    *bool          `toml:"visible"`
	Properties map[string]any `toml:"properties"`
	Children   []Entry        `toml:"children"`
}

type document struct {
	Items []Entry `toml:"items"`
}

// Load parses a TOML manifest file into its top-level entries.
func Load(path string) ([]Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer file.Close()

	var doc document
	decoder := toml.NewDecoder(file)
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if len(doc.Items) == 0 {
		return nil, fmt.Errorf("manifest %s declares no items", path)
	}
	return doc.Items, nil
}

// Populate adds every manifest entry to the tree under its root, returning
// the number of items created.
func Populate(tr *tree.Tree, entries []Entry) (int, error) {
	return populate(tr, tr.Root(), entries)
}

func populate(tr *tree.Tree, parent tree.NodeID, entries []Entry) (int, error) {
	created := 0
	for _, entry := range entries {
		name := strings.TrimSpace(entry.Name)
		if name == "" {
			return created, fmt.Errorf("manifest item with type %q has no name", entry.Type)
		}
		itemType := strings.ToLower(strings.TrimSpace(entry.Type))
		if itemType == "" {
			return created, fmt.Errorf("manifest item %q has no type", name)
		}

		it := item.New(itemType, name)
		if entry.Active != nil {
			it.Active = *entry.Active
		}
		if entry.Visible != nil {
			it.Visible = *entry.Visible
		}
		for key, value := range entry.Properties {
			it.SetProperty(key, value)
		}

		id := tr.AddItem(parent, it)
		if id == tree.InvalidID {
			return created, fmt.Errorf("manifest item %q could not be added", name)
		}
		created++

		childCount, err := populate(tr, id, entry.Children)
		created += childCount
		if err != nil {
			return created, err
		}
	}
	return created, nil
}
