// Package camera models the perspective camera used to turn pointer
// positions into world-space rays.
package camera

import (
	"math"

	"github.com/chazu/aquascape/pkg/item"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Default camera placement, looking at the tank from the front and above.
var (
	DefaultPosition = item.Vec3{X: 0, Y: 30, Z: 60}
	DefaultTarget   = item.Vec3{X: 0, Y: 10, Z: 0}
	DefaultUp       = item.Vec3{X: 0, Y: 1, Z: 0}
)

// DefaultFovY is the vertical field of view in degrees.
const DefaultFovY = 50.0

// Camera is a perspective camera. FovY is the vertical field of view in
// degrees.
type Camera struct {
	Position item.Vec3 `json:"position" yaml:"position"`
	Target   item.Vec3 `json:"target" yaml:"target"`
	Up       item.Vec3 `json:"up" yaml:"up"`
	FovY     float64   `json:"fovY" yaml:"fov_y"`
}

// Default returns the standard camera.
func Default() Camera {
	return Camera{
		Position: DefaultPosition,
		Target:   DefaultTarget,
		Up:       DefaultUp,
		FovY:     DefaultFovY,
	}
}

// Pointer is a pointer position in client pixels.
type Pointer struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Viewport is the client rectangle of the canvas in pixels.
type Viewport struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Aspect returns width/height, or 1 for an empty viewport.
func (vp Viewport) Aspect() float64 {
	if vp.Height == 0 {
		return 1
	}
	return vp.Width / vp.Height
}

// NDC converts a pointer position into normalized device coordinates,
// x in [-1, 1] left to right and y in [-1, 1] bottom to top.
func NDC(p Pointer, vp Viewport) (x, y float64) {
	if vp.Width == 0 || vp.Height == 0 {
		return 0, 0
	}
	x = (p.X-vp.Left)/vp.Width*2 - 1
	y = -((p.Y-vp.Top)/vp.Height)*2 + 1
	return x, y
}

// Ray is a half-line from Origin along the unit vector Dir.
type Ray struct {
	Origin v3.Vec
	Dir    v3.Vec
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float64) v3.Vec {
	return r.Origin.Add(r.Dir.MulScalar(t))
}

// Forward returns the unit viewing direction.
func (c Camera) Forward() v3.Vec {
	return Vec(c.Target).Sub(Vec(c.Position)).Normalize()
}

// Ray returns the ray from the camera through the pointer.
func (c Camera) Ray(p Pointer, vp Viewport) Ray {
	nx, ny := NDC(p, vp)
	fwd := c.Forward()
	up := Vec(c.Up)
	if up.Length() == 0 {
		up = Vec(DefaultUp)
	}
	right := fwd.Cross(up).Normalize()
	camUp := right.Cross(fwd)

	fov := c.FovY
	if fov <= 0 {
		fov = DefaultFovY
	}
	tanHalf := math.Tan(fov * math.Pi / 360)

	dir := fwd.
		Add(right.MulScalar(nx * tanHalf * vp.Aspect())).
		Add(camUp.MulScalar(ny * tanHalf)).
		Normalize()
	return Ray{Origin: Vec(c.Position), Dir: dir}
}

// HorizontalBasis returns the camera's forward and right directions
// flattened onto the XZ plane. When the camera looks straight down the up
// vector stands in for forward.
func (c Camera) HorizontalBasis() (forward, right v3.Vec) {
	fwd := c.Forward()
	forward = v3.Vec{X: fwd.X, Z: fwd.Z}
	if forward.Length() < 1e-9 {
		u := Vec(c.Up)
		forward = v3.Vec{X: u.X, Z: u.Z}
		if forward.Length() < 1e-9 {
			forward = v3.Vec{Z: -1}
		}
	}
	forward = forward.Normalize()
	right = forward.Cross(v3.Vec{Y: 1}).Normalize()
	return forward, right
}

// Vec converts a stored vector into a math view.
func Vec(v item.Vec3) v3.Vec {
	return v3.Vec{X: v.X, Y: v.Y, Z: v.Z}
}

// FromVec converts a math view back into the stored representation.
func FromVec(v v3.Vec) item.Vec3 {
	return item.Vec3{X: v.X, Y: v.Y, Z: v.Z}
}
