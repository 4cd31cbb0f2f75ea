// Package item defines the placed objects of a tank layout and the
// registry that owns them during an editing session.
package item

import (
	"github.com/google/uuid"
)

// ID is an opaque item identifier, unique within a session.
type ID string

// NewID returns a fresh random identifier.
func NewID() ID {
	return ID(uuid.NewString())
}

// Vec3 is a plain 3-component vector. It is the only form in which positions
// and scales are stored or serialized.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Uniform returns a vector with all components set to s.
func Uniform(s float64) Vec3 {
	return Vec3{X: s, Y: s, Z: s}
}

// Euler holds rotation angles in radians about X (roll), Y (yaw) and Z.
type Euler struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Item is one placed object.
type Item struct {
	ID         ID      `json:"id"`
	ProductRef string  `json:"productId"`
	Name       string  `json:"name"`
	Position   Vec3    `json:"position"`
	Rotation   Euler   `json:"rotation"`
	Scale      Vec3    `json:"scale"`
	UnitPrice  float64 `json:"price"`
}

// Spec describes an item to be added. The registry assigns the ID.
type Spec struct {
	ProductRef string
	Name       string
	UnitPrice  float64
	Position   Vec3
	Rotation   Euler
	Scale      Vec3
}

// Patch is a partial update to an item. Nil fields are left unchanged.
type Patch struct {
	Position *Vec3  `json:"position,omitempty"`
	Rotation *Euler `json:"rotation,omitempty"`
	Scale    *Vec3  `json:"scale,omitempty"`
}

// Apply returns it with the non-nil fields of p applied.
func (it Item) Apply(p Patch) Item {
	if p.Position != nil {
		it.Position = *p.Position
	}
	if p.Rotation != nil {
		it.Rotation = *p.Rotation
	}
	if p.Scale != nil {
		it.Scale = *p.Scale
	}
	return it
}
