// Package tessellate builds preview meshes for a tank scene using a
// geometry kernel: the cabinet, substrate and glass of the tank, and one
// proxy solid per placed item.
package tessellate

import (
	"fmt"

	"github.com/chazu/aquascape/pkg/catalog"
	"github.com/chazu/aquascape/pkg/item"
	"github.com/chazu/aquascape/pkg/kernel"
	"github.com/chazu/aquascape/pkg/tank"
)

// Tank part sizes in world units.
const (
	GlassThickness  = 0.5
	SubstrateDepth  = 1.0
	CabinetHeight   = 10.0
	CabinetOverhang = 1.0
)

// Catalog supplies product categories and the draw order of items.
type Catalog interface {
	CategoryOf(it item.Item) catalog.Category
	SortForRender(items []item.Item) []item.Item
}

// Scene is the input to Tessellate.
type Scene struct {
	Bounds tank.Bounds
	Items  []item.Item
}

// proxy is the stand-in solid for a category, at unit scale.
type proxy struct {
	cylinder bool
	size     [3]float64 // box dimensions, or height and radius for cylinders
	color    string
}

var proxies = map[catalog.Category]proxy{
	catalog.Hardscape: {size: [3]float64{4, 3, 4}, color: "#7a7a7a"},
	catalog.Plants:    {cylinder: true, size: [3]float64{6, 1}, color: "#2e8b57"},
	catalog.Livestock: {size: [3]float64{2, 1, 0.8}, color: "#ff7f50"},
}

// fallback covers decorations and products missing from the catalog.
var fallback = proxy{size: [3]float64{4, 4, 4}, color: "#d2b48c"}

// Tessellate produces meshes for the scene in draw order: cabinet,
// substrate, items sorted by category, then glass last so it blends over
// everything inside. Item proxies are clipped to the tank interior. The
// tessellator is read-only and never mutates the scene.
func Tessellate(s Scene, cat Catalog, k kernel.Kernel) ([]*kernel.Mesh, error) {
	b := s.Bounds
	if b.Degenerate() {
		return nil, fmt.Errorf("tessellate: tank %gx%gx%g has no volume", b.Width, b.Height, b.Depth)
	}

	var meshes []*kernel.Mesh
	add := func(solid kernel.Solid, name string, kind kernel.Kind, color, itemID string) error {
		mesh, err := k.ToMesh(solid)
		if err != nil {
			return fmt.Errorf("tessellate: ToMesh failed for %s: %w", name, err)
		}
		if mesh.IsEmpty() {
			return nil
		}
		mesh.Name = name
		mesh.Kind = kind
		mesh.Color = color
		mesh.ItemID = itemID
		meshes = append(meshes, mesh)
		return nil
	}

	if err := add(cabinet(k, b), "cabinet", kernel.KindCabinet, b.CabinetColor, ""); err != nil {
		return nil, err
	}
	if err := add(substrate(k, b), "substrate", kernel.KindFloor, "#c2b280", ""); err != nil {
		return nil, err
	}

	interior := k.Translate(k.Box(b.Width, b.Height, b.Depth), 0, b.Height/2, 0)
	for _, it := range cat.SortForRender(s.Items) {
		p, ok := proxies[cat.CategoryOf(it)]
		if !ok {
			p = fallback
		}
		solid := k.Intersection(place(k, p, it), interior)
		name := it.Name
		if name == "" {
			name = it.ProductRef
		}
		if err := add(solid, name, kernel.KindItem, p.color, string(it.ID)); err != nil {
			return nil, err
		}
	}

	if err := add(glass(k, b), "glass", kernel.KindGlass, "#a8d8ea", ""); err != nil {
		return nil, err
	}
	return meshes, nil
}

// place builds the proxy for it: scaled, rotated, then moved to the item's
// position.
func place(k kernel.Kernel, p proxy, it item.Item) kernel.Solid {
	sc := it.Scale
	var solid kernel.Solid
	if p.cylinder {
		solid = k.Cylinder(p.size[0]*sc.Y, p.size[1]*max(sc.X, sc.Z))
	} else {
		solid = k.Box(p.size[0]*sc.X, p.size[1]*sc.Y, p.size[2]*sc.Z)
	}

	r := it.Rotation
	if r != (item.Euler{}) {
		solid = k.Rotate(solid, r.X, r.Y, r.Z)
	}
	pos := it.Position
	return k.Translate(solid, pos.X, pos.Y, pos.Z)
}

func cabinet(k kernel.Kernel, b tank.Bounds) kernel.Solid {
	w := b.Width + 2*(GlassThickness+CabinetOverhang)
	d := b.Depth + 2*(GlassThickness+CabinetOverhang)
	return k.Translate(k.Box(w, CabinetHeight, d), 0, -SubstrateDepth-CabinetHeight/2, 0)
}

func substrate(k kernel.Kernel, b tank.Bounds) kernel.Solid {
	return k.Translate(k.Box(b.Width, SubstrateDepth, b.Depth), 0, -SubstrateDepth/2, 0)
}

// glass is an open-topped shell around the interior.
func glass(k kernel.Kernel, b tank.Bounds) kernel.Solid {
	outer := k.Box(b.Width+2*GlassThickness, b.Height+SubstrateDepth, b.Depth+2*GlassThickness)
	outer = k.Translate(outer, 0, (b.Height-SubstrateDepth)/2, 0)
	inner := k.Box(b.Width, b.Height+2*SubstrateDepth, b.Depth)
	inner = k.Translate(inner, 0, b.Height/2+SubstrateDepth, 0)
	return k.Difference(outer, inner)
}
