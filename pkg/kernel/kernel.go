// Package kernel defines the abstract geometry kernel used to build preview
// meshes of a tank scene. Implementations provide solid modelling and
// boolean operations behind this interface so the scene builder does not
// depend on a particular backend.
package kernel

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract geometry kernel interface. All primitives are
// centred on the origin; angles are in radians.
type Kernel interface {
	// Primitives
	Box(x, y, z float64) Solid
	Cylinder(height, radius float64) Solid // axis along Y

	// Boolean operations
	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid
	Intersection(a, b Solid) Solid

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler XYZ

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}
