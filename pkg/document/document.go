// Package document defines the serializable form of a tank layout that is
// exchanged with the persistence collaborator.
package document

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/chazu/aquascape/pkg/item"
	"github.com/chazu/aquascape/pkg/tank"
)

// Vec3 is a vector whose components may each be absent.
type Vec3 struct {
	X *float64 `json:"x,omitempty"`
	Y *float64 `json:"y,omitempty"`
	Z *float64 `json:"z,omitempty"`
}

// Item is one serialized item. Position, rotation and scale are optional
// on input; see ToItems for the defaults applied.
type Item struct {
	ID        item.ID `json:"id,omitempty"`
	ProductID string  `json:"productId"`
	Name      string  `json:"name,omitempty"`
	Price     float64 `json:"price"`
	Position  *Vec3   `json:"position,omitempty"`
	Rotation  *Vec3   `json:"rotation,omitempty"`
	Scale     *Vec3   `json:"scale,omitempty"`
}

// Document is the exported layout.
type Document struct {
	Items      []Item       `json:"items"`
	TankConfig *tank.Bounds `json:"tankConfig,omitempty"`
	TotalPrice float64      `json:"totalPrice"`
	Timestamp  time.Time    `json:"timestamp"`
}

// FromItems builds the serialized item list from live items.
func FromItems(items []item.Item) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		out = append(out, Item{
			ID:        it.ID,
			ProductID: it.ProductRef,
			Name:      it.Name,
			Price:     it.UnitPrice,
			Position:  vec(it.Position.X, it.Position.Y, it.Position.Z),
			Rotation:  vec(it.Rotation.X, it.Rotation.Y, it.Rotation.Z),
			Scale:     vec(it.Scale.X, it.Scale.Y, it.Scale.Z),
		})
	}
	return out
}

// ToItems converts the document items to live items. Missing position
// components default to (0, 1, 0), missing rotation components to 0, and
// missing or zero scale components to 1. Items without an id get one from
// newID. Positions are not clamped to any bounds.
func (d Document) ToItems(newID func() item.ID) []item.Item {
	out := make([]item.Item, 0, len(d.Items))
	for _, di := range d.Items {
		id := di.ID
		if id == "" {
			id = newID()
		}
		px, py, pz := di.Position.get(0, 1, 0)
		rx, ry, rz := di.Rotation.get(0, 0, 0)
		sx, sy, sz := di.Scale.get(1, 1, 1)
		out = append(out, item.Item{
			ID:         id,
			ProductRef: di.ProductID,
			Name:       di.Name,
			UnitPrice:  di.Price,
			Position:   item.Vec3{X: px, Y: py, Z: pz},
			Rotation:   item.Euler{X: rx, Y: ry, Z: rz},
			Scale:      item.Vec3{X: nonZero(sx), Y: nonZero(sy), Z: nonZero(sz)},
		})
	}
	return out
}

// Marshal encodes d as indented JSON.
func Marshal(d Document) ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("document: encode: %w", err)
	}
	return data, nil
}

// Unmarshal decodes a JSON document.
func Unmarshal(data []byte) (Document, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return Document{}, fmt.Errorf("document: decode: %w", err)
	}
	return d, nil
}

func vec(x, y, z float64) *Vec3 {
	return &Vec3{X: &x, Y: &y, Z: &z}
}

// get returns the components of v, substituting defaults for absent ones.
func (v *Vec3) get(dx, dy, dz float64) (x, y, z float64) {
	x, y, z = dx, dy, dz
	if v == nil {
		return
	}
	if v.X != nil {
		x = *v.X
	}
	if v.Y != nil {
		y = *v.Y
	}
	if v.Z != nil {
		z = *v.Z
	}
	return
}

func nonZero(s float64) float64 {
	if s == 0 {
		return 1
	}
	return s
}
