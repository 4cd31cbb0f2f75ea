// Package placement finds where a pointer ray meets the inside of the tank.
package placement

import (
	"math"

	"github.com/chazu/aquascape/pkg/camera"
	"github.com/chazu/aquascape/pkg/item"
	"github.com/chazu/aquascape/pkg/tank"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Surface names a candidate plane of the tank interior.
type Surface int

// Surfaces in tie-break order.
const (
	Floor Surface = iota
	BackWall
	FrontWall
	LeftWall
	RightWall
)

var surfaceNames = [...]string{"floor", "back_wall", "front_wall", "left_wall", "right_wall"}

func (s Surface) String() string {
	if int(s) < len(surfaceNames) {
		return surfaceNames[s]
	}
	return "unknown"
}

// Default offsets applied along the surface normal so new items sit on the
// floor or just off a wall instead of inside it.
const (
	DefaultFloorOffset = 0.5
	DefaultWallOffset  = 1.0
)

// epsilon widens the containment box so points computed on a wall plane are
// not lost to rounding.
const epsilon = 1e-6

// Hit is a resolved drop point.
type Hit struct {
	Point    item.Vec3 `json:"point"`
	Surface  Surface   `json:"surface"`
	Distance float64   `json:"distance"`
}

// Resolver turns pointer positions into drop points for a given tank.
type Resolver struct {
	FloorOffset float64
	WallOffset  float64
}

// NewResolver returns a resolver with the default offsets.
func NewResolver() *Resolver {
	return &Resolver{FloorOffset: DefaultFloorOffset, WallOffset: DefaultWallOffset}
}

type plane struct {
	surface Surface
	normal  v3.Vec
	// point on the plane
	point v3.Vec
}

func planes(b tank.Bounds) []plane {
	hw, hd := b.HalfWidth(), b.HalfDepth()
	return []plane{
		{Floor, v3.Vec{Y: 1}, v3.Vec{}},
		{BackWall, v3.Vec{Z: 1}, v3.Vec{Z: -hd}},
		{FrontWall, v3.Vec{Z: -1}, v3.Vec{Z: hd}},
		{LeftWall, v3.Vec{X: 1}, v3.Vec{X: -hw}},
		{RightWall, v3.Vec{X: -1}, v3.Vec{X: hw}},
	}
}

// Resolve casts a ray from cam through p and returns the nearest tank
// surface it hits from the inside, offset along that surface's normal. It
// returns false when no surface is hit inside the tank.
func (r *Resolver) Resolve(p camera.Pointer, vp camera.Viewport, cam camera.Camera, b tank.Bounds) (Hit, bool) {
	return r.ResolveRay(cam.Ray(p, vp), b)
}

// ResolveRay is Resolve for an already constructed ray.
func (r *Resolver) ResolveRay(ray camera.Ray, b tank.Bounds) (Hit, bool) {
	box := sdf.Box3{
		Min: v3.Vec{X: -b.HalfWidth() - epsilon, Y: -epsilon, Z: -b.HalfDepth() - epsilon},
		Max: v3.Vec{X: b.HalfWidth() + epsilon, Y: b.Height + epsilon, Z: b.HalfDepth() + epsilon},
	}

	var (
		best  Hit
		found bool
	)
	for _, pl := range planes(b) {
		denom := ray.Dir.Dot(pl.normal)
		if math.Abs(denom) < 1e-12 {
			continue
		}
		t := pl.point.Sub(ray.Origin).Dot(pl.normal) / denom
		if !(t > 0) {
			continue
		}
		pt := ray.At(t)
		if !box.Contains(pt) {
			continue
		}
		if found && t >= best.Distance {
			continue
		}
		off := r.WallOffset
		if pl.surface == Floor {
			off = r.FloorOffset
		}
		best = Hit{
			Point:    camera.FromVec(pt.Add(pl.normal.MulScalar(off))),
			Surface:  pl.surface,
			Distance: t,
		}
		found = true
	}
	return best, found
}
