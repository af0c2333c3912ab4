package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed outpost_modules.yaml
var defaultCatalogYAML []byte

// Catalog is the read-only set of outpost modules grouped by category.
// It is safe for concurrent use because nothing mutates it after construction.
type Catalog struct {
	categories []Category
	index      map[string]Item
	count      int
}

// New validates the categories and builds a Catalog from a deep copy of them.
func New(categories []Category) (*Catalog, error) {
	c := &Catalog{
		categories: make([]Category, 0, len(categories)),
		index:      make(map[string]Item),
	}

	for _, category := range categories {
		for _, item := range category.Items {
			if err := validateItem(category.Name, item); err != nil {
				return nil, err
			}
			if _, exists := c.index[item.ID]; exists {
				return nil, fmt.Errorf("%w: %q", ErrDuplicateID, item.ID)
			}
			c.index[item.ID] = item.Clone()
			c.count++
		}
		c.categories = append(c.categories, category.clone())
	}

	if c.count == 0 {
		return nil, ErrEmptyCatalog
	}
	return c, nil
}

// Parse decodes a catalog document mapping category names to item lists.
// JSON documents are accepted too since they are valid YAML. Category order
// follows the document. A category name may appear only once.
func Parse(data []byte) (*Catalog, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(root.Content) == 0 {
		return nil, ErrEmptyCatalog
	}

	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: top level must map category names to item lists", ErrMalformedCatalog)
	}

	categories := make([]Category, 0, len(doc.Content)/2)
	seen := make(map[string]struct{}, len(doc.Content)/2)
	for i := 0; i+1 < len(doc.Content); i += 2 {
		name := doc.Content[i].Value
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: category %q appears more than once", ErrMalformedCatalog, name)
		}
		seen[name] = struct{}{}
		var items []Item
		if err := doc.Content[i+1].Decode(&items); err != nil {
			return nil, fmt.Errorf("%w: category %q: %v", ErrMalformedCatalog, name, err)
		}
		categories = append(categories, Category{Name: name, Items: items})
	}

	return New(categories)
}

// Default returns the catalog bundled with the binary.
func Default() (*Catalog, error) {
	c, err := Parse(defaultCatalogYAML)
	if err != nil {
		return nil, fmt.Errorf("load bundled catalog: %w", err)
	}
	return c, nil
}

// LoadFile reads and parses a catalog from disk.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// Load returns the catalog stored at path, or the bundled one when path is empty.
func Load(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	return LoadFile(path)
}

// Lookup resolves an item id across every category.
func (c *Catalog) Lookup(id string) (Item, bool) {
	item, ok := c.index[id]
	if !ok {
		return Item{}, false
	}
	return item.Clone(), true
}

// Categories returns a copy of the categories in source order.
func (c *Catalog) Categories() []Category {
	out := make([]Category, len(c.categories))
	for i, category := range c.categories {
		out[i] = category.clone()
	}
	return out
}

// Len reports the number of items across all categories.
func (c *Catalog) Len() int {
	return c.count
}

func validateItem(category string, item Item) error {
	if strings.TrimSpace(item.ID) == "" {
		return fmt.Errorf("%w (category %q, name %q)", ErrMissingID, category, item.Name)
	}
	for _, cost := range item.MaterialCosts {
		if strings.TrimSpace(cost.Material) == "" {
			return fmt.Errorf("%w: item %q has a cost without a material", ErrMalformedCatalog, item.ID)
		}
		if cost.Quantity < 0 {
			return fmt.Errorf("%w: item %q needs a negative quantity of %s", ErrMalformedCatalog, item.ID, cost.Material)
		}
	}
	return nil
}
