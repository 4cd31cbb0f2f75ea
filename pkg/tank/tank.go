// Package tank defines the bounded rectangular volume that items are
// arranged in, together with its material options.
package tank

import "math"

// GlassType selects the glass used for the tank walls.
type GlassType string

const (
	GlassStandard GlassType = "standard"
	GlassLowIron  GlassType = "low-iron"
	GlassTempered GlassType = "tempered"
)

// ValidGlassTypes lists the recognised glass options.
var ValidGlassTypes = map[GlassType]bool{
	GlassStandard: true,
	GlassLowIron:  true,
	GlassTempered: true,
}

// Factor returns the price multiplier for the glass type.
// Unrecognised values price like standard glass.
func (g GlassType) Factor() float64 {
	switch g {
	case GlassLowIron:
		return 1.3
	case GlassTempered:
		return 1.5
	default:
		return 1.0
	}
}

// DefaultCabinetColor is the stand color used when none is given.
const DefaultCabinetColor = "#8B4513"

// Bounds is the axis-aligned tank volume. The floor sits at y=0 and the
// volume is centered on the origin in x and z.
type Bounds struct {
	Width        float64   `json:"width" yaml:"width"`
	Height       float64   `json:"height" yaml:"height"`
	Depth        float64   `json:"depth" yaml:"depth"`
	Glass        GlassType `json:"glassType" yaml:"glass_type"`
	CabinetColor string    `json:"cabinetColor" yaml:"cabinet_color"`
}

// Default returns the 60x40x35 standard-glass tank.
func Default() Bounds {
	return Bounds{
		Width:        60,
		Height:       40,
		Depth:        35,
		Glass:        GlassStandard,
		CabinetColor: DefaultCabinetColor,
	}
}

// Patch is a partial update to Bounds. Nil fields are left unchanged.
type Patch struct {
	Width        *float64   `json:"width,omitempty"`
	Height       *float64   `json:"height,omitempty"`
	Depth        *float64   `json:"depth,omitempty"`
	Glass        *GlassType `json:"glassType,omitempty"`
	CabinetColor *string    `json:"cabinetColor,omitempty"`
}

// Apply returns b with the non-nil fields of p applied. Dimensions are not
// validated: degenerate boxes are allowed and only affect derived clamps.
func (b Bounds) Apply(p Patch) Bounds {
	if p.Width != nil {
		b.Width = *p.Width
	}
	if p.Height != nil {
		b.Height = *p.Height
	}
	if p.Depth != nil {
		b.Depth = *p.Depth
	}
	if p.Glass != nil {
		b.Glass = *p.Glass
	}
	if p.CabinetColor != nil {
		b.CabinetColor = *p.CabinetColor
	}
	return b
}

// Volume returns width*height*depth.
func (b Bounds) Volume() float64 {
	return b.Width * b.Height * b.Depth
}

// HalfWidth returns width/2.
func (b Bounds) HalfWidth() float64 { return b.Width / 2 }

// HalfDepth returns depth/2.
func (b Bounds) HalfDepth() float64 { return b.Depth / 2 }

// ClampX pins x into [-(W/2-pad), W/2-pad].
func (b Bounds) ClampX(x, pad float64) float64 {
	return clampSym(x, b.HalfWidth()-pad)
}

// ClampZ pins z into [-(D/2-pad), D/2-pad].
func (b Bounds) ClampZ(z, pad float64) float64 {
	return clampSym(z, b.HalfDepth()-pad)
}

// Contains reports whether (x, y, z) lies inside the closed tank volume.
func (b Bounds) Contains(x, y, z float64) bool {
	return x >= -b.HalfWidth() && x <= b.HalfWidth() &&
		y >= 0 && y <= b.Height &&
		z >= -b.HalfDepth() && z <= b.HalfDepth()
}

// Degenerate reports whether any dimension is zero or negative.
func (b Bounds) Degenerate() bool {
	return b.Width <= 0 || b.Height <= 0 || b.Depth <= 0
}

// clampSym clamps v into [-limit, limit]. When limit is negative (a tank
// narrower than twice the padding) the upper bound wins, which pins every
// value to the same point rather than producing an inverted range.
func clampSym(v, limit float64) float64 {
	return math.Min(limit, math.Max(-limit, v))
}
