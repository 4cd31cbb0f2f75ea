// Package catalog holds the products that can be placed in a tank.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/chazu/aquascape/pkg/item"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

//go:embed products.yaml
var defaultProducts []byte

// Category groups products for display and render ordering.
type Category string

const (
	Hardscape  Category = "hardscape"
	Plants     Category = "plants"
	Livestock  Category = "livestock"
	Decoration Category = "decoration"
)

// renderOrder draws hardscape first, then plants, then livestock. Anything
// else is drawn last.
var renderOrder = map[Category]int{
	Hardscape: 1,
	Plants:    2,
	Livestock: 3,
}

// RenderOrder returns the draw pass for a category.
func RenderOrder(c Category) int {
	if o, ok := renderOrder[c]; ok {
		return o
	}
	return len(renderOrder) + 1
}

// Product is one catalog entry.
type Product struct {
	ID          string   `yaml:"id" json:"id"`
	Name        string   `yaml:"name" json:"name"`
	Category    Category `yaml:"category" json:"category"`
	Price       float64  `yaml:"price" json:"price"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
}

// Spec returns an item spec for placing p. The caller fills in the pose.
func (p Product) Spec() item.Spec {
	return item.Spec{ProductRef: p.ID, Name: p.Name, UnitPrice: p.Price}
}

type file struct {
	Products []Product `yaml:"products"`
}

// Catalog is an immutable, ordered set of products.
type Catalog struct {
	products []Product
	byID     map[string]Product
}

// Parse reads a YAML catalog. Products need a unique, non-empty id.
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("catalog: parse: %w", err)
	}
	c := &Catalog{byID: make(map[string]Product, len(f.Products))}
	for i, p := range f.Products {
		if p.ID == "" {
			return nil, fmt.Errorf("catalog: product %d has no id", i)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate product id %q", p.ID)
		}
		c.byID[p.ID] = p
		c.products = append(c.products, p)
	}
	return c, nil
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := Parse(defaultProducts)
	if err != nil {
		panic(err)
	}
	return c
}

// Load reads a catalog file. An empty path or a missing file yields the
// built-in catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	return Parse(data)
}

// Products returns all products in file order.
func (c *Catalog) Products() []Product {
	return slices.Clone(c.products)
}

// Lookup returns the product with the given id.
func (c *Catalog) Lookup(id string) (Product, bool) {
	p, ok := c.byID[id]
	return p, ok
}

// ByCategory returns the products in category cat.
func (c *Catalog) ByCategory(cat Category) []Product {
	return lo.Filter(c.products, func(p Product, _ int) bool { return p.Category == cat })
}

// Categories returns the categories present, in first-seen order.
func (c *Catalog) Categories() []Category {
	return lo.Uniq(lo.Map(c.products, func(p Product, _ int) Category { return p.Category }))
}

// CategoryOf returns the category of the product an item refers to. Items
// referencing unknown products have no category.
func (c *Catalog) CategoryOf(it item.Item) Category {
	return c.byID[it.ProductRef].Category
}

// SortForRender returns items in draw order: by category pass, keeping
// insertion order within a pass.
func (c *Catalog) SortForRender(items []item.Item) []item.Item {
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b item.Item) int {
		return RenderOrder(c.CategoryOf(a)) - RenderOrder(c.CategoryOf(b))
	})
	return out
}
