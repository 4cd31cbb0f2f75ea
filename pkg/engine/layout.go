package engine

import (
	"fmt"

	"github.com/chazu/aquascape/pkg/catalog"
	"github.com/chazu/aquascape/pkg/document"
	"github.com/chazu/aquascape/pkg/item"
	"github.com/chazu/aquascape/pkg/pricing"
	"github.com/chazu/aquascape/pkg/tank"
)

// layout accumulates the tank and items described by a script.
type layout struct {
	catalog *catalog.Catalog
	bounds  tank.Bounds
	tankSet bool
	items   []item.Item
}

func newLayout(cat *catalog.Catalog) *layout {
	return &layout{catalog: cat, bounds: tank.Default()}
}

// product resolves the positional product id of an item or row call.
// :name and :price override the catalog; a product missing from the
// catalog needs an explicit :price.
func (l *layout) product(fn string, pa kwArgs) (item.Spec, error) {
	id, err := toKeywordString(pa.positional[0])
	if err != nil {
		return item.Spec{}, fmt.Errorf("%s: product: %w", fn, err)
	}
	p, known := l.catalog.Lookup(id)
	spec := p.Spec()
	spec.ProductRef = id

	if v, ok := pa.kw["name"]; ok {
		if spec.Name, err = toString(v); err != nil {
			return item.Spec{}, fmt.Errorf("%s: name: %w", fn, err)
		}
	}
	if v, ok := pa.kw["price"]; ok {
		if spec.UnitPrice, err = toFloat64(v); err != nil {
			return item.Spec{}, fmt.Errorf("%s: price: %w", fn, err)
		}
	} else if !known {
		return item.Spec{}, fmt.Errorf("%s: unknown product %q (give :price to place it anyway)", fn, id)
	}
	return spec, nil
}

// add appends an item and returns its index.
func (l *layout) add(spec item.Spec, pos item.Vec3, p pose) int {
	l.items = append(l.items, item.Item{
		ProductRef: spec.ProductRef,
		Name:       spec.Name,
		UnitPrice:  spec.UnitPrice,
		Position:   pos,
		Rotation:   p.rotation,
		Scale:      p.scale,
	})
	return len(l.items) - 1
}

// document returns the layout as a persistence document. The tank
// configuration is included only when the script set it.
func (l *layout) document() *document.Document {
	d := &document.Document{
		Items:      document.FromItems(l.items),
		TotalPrice: pricing.Price(l.items, l.bounds),
	}
	if l.tankSet {
		b := l.bounds
		d.TankConfig = &b
	}
	return d
}
