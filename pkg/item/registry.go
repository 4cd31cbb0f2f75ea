package item

import (
	"fmt"
	"math"

	"github.com/samber/lo"
)

// Registry is the live, ordered collection of placed items. It is not safe
// for concurrent use; a session has exactly one writer.
type Registry struct {
	items []Item
	newID func() ID
}

// NewRegistry returns an empty registry that assigns ids with NewID.
func NewRegistry() *Registry {
	return &Registry{newID: NewID}
}

// NewRegistryWithIDs returns an empty registry using gen for new ids.
func NewRegistryWithIDs(gen func() ID) *Registry {
	return &Registry{newID: gen}
}

// Add appends a new item built from spec and returns its id. A zero scale
// is replaced by unit scale.
func (r *Registry) Add(spec Spec) ID {
	id := r.newID()
	scale := spec.Scale
	if scale == (Vec3{}) {
		scale = Uniform(1)
	}
	r.items = append(r.items, Item{
		ID:         id,
		ProductRef: spec.ProductRef,
		Name:       spec.Name,
		UnitPrice:  spec.UnitPrice,
		Position:   spec.Position,
		Rotation:   spec.Rotation,
		Scale:      scale,
	})
	return id
}

// Remove deletes the item with the given id.
func (r *Registry) Remove(id ID) error {
	idx := r.index(id)
	if idx < 0 {
		return fmt.Errorf("remove %q: %w", id, ErrNotFound)
	}
	r.items = append(r.items[:idx], r.items[idx+1:]...)
	return nil
}

// Update applies p to the item with the given id.
func (r *Registry) Update(id ID, p Patch) error {
	idx := r.index(id)
	if idx < 0 {
		return fmt.Errorf("update %q: %w", id, ErrNotFound)
	}
	r.items[idx] = r.items[idx].Apply(p)
	return nil
}

// Get returns a copy of the item with the given id.
func (r *Registry) Get(id ID) (Item, bool) {
	return lo.Find(r.items, func(it Item) bool { return it.ID == id })
}

// Has reports whether an item with the given id exists.
func (r *Registry) Has(id ID) bool {
	return r.index(id) >= 0
}

// All returns a copy of the items in insertion order.
func (r *Registry) All() []Item {
	out := make([]Item, len(r.items))
	copy(out, r.items)
	return out
}

// Len returns the number of items.
func (r *Registry) Len() int {
	return len(r.items)
}

// Replace swaps the whole collection for a copy of items. Positions are
// taken as given.
func (r *Registry) Replace(items []Item) {
	r.items = make([]Item, len(items))
	copy(r.items, items)
}

// Clear removes every item.
func (r *Registry) Clear() {
	r.items = nil
}

// Neighbours returns the items other than id whose horizontal footprint
// lies within radius of (x, z) on both axes.
func (r *Registry) Neighbours(id ID, x, z, radius float64) []Item {
	return lo.Filter(r.items, func(it Item, _ int) bool {
		return it.ID != id && math.Abs(it.Position.X-x) < radius && math.Abs(it.Position.Z-z) < radius
	})
}

func (r *Registry) index(id ID) int {
	_, idx, ok := lo.FindIndexOf(r.items, func(it Item) bool { return it.ID == id })
	if !ok {
		return -1
	}
	return idx
}
