// Package interact turns pointer and keyboard input into edits of a tank
// session. Drags are modelled as a small state machine: the mode is chosen
// once from the modifier keys held at pointer-down and stays fixed until
// pointer-up.
package interact

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/chazu/aquascape/pkg/camera"
	"github.com/chazu/aquascape/pkg/item"
	"github.com/chazu/aquascape/pkg/placement"
	"github.com/chazu/aquascape/pkg/tank"
)

// Editor is the subset of a session the controller drives.
type Editor interface {
	Item(id item.ID) (item.Item, bool)
	Bounds() tank.Bounds
	Camera() camera.Camera
	Selected() item.ID
	SetSelected(id item.ID) error
	AddItem(spec item.Spec) item.ID
	RemoveItem(id item.ID) error
	UpdateItem(id item.ID, p item.Patch) error
	Begin()
	CommitChanges()
	Neighbours(id item.ID, x, z, radius float64) []item.Item
	Undo() bool
	Redo() bool
}

// ErrNoItem is returned when an operation names an item that is not present.
var ErrNoItem = errors.New("interact: no such item")

// State is the controller's interaction state.
type State int

const (
	Idle State = iota
	Dragging
)

func (s State) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

// Mode is the kind of drag in progress.
type Mode int

const (
	Translate Mode = iota
	Rotate
	Scale
	Elevate
)

func (m Mode) String() string {
	switch m {
	case Rotate:
		return "rotate"
	case Scale:
		return "scale"
	case Elevate:
		return "elevate"
	default:
		return "translate"
	}
}

// Modifiers are the modifier keys held during a pointer event.
type Modifiers struct {
	Alt   bool `json:"alt"`
	Ctrl  bool `json:"ctrl"`
	Shift bool `json:"shift"`
}

// ModeFor picks the drag mode for the held modifiers. Alt wins over Ctrl,
// which wins over Shift.
func ModeFor(m Modifiers) Mode {
	switch {
	case m.Alt:
		return Rotate
	case m.Ctrl:
		return Scale
	case m.Shift:
		return Elevate
	default:
		return Translate
	}
}

// drag holds what was captured at pointer-down.
type drag struct {
	id     item.ID
	mode   Mode
	origin camera.Pointer
	start  item.Item
}

// Controller maps input events onto an Editor.
type Controller struct {
	ed       Editor
	resolver *placement.Resolver
	settings Settings
	rng      *rand.Rand

	state   State
	drag    drag
	pending *item.Spec
}

// New returns a controller for ed. A nil rng seeds a fresh PCG source.
func New(ed Editor, resolver *placement.Resolver, settings Settings, rng *rand.Rand) *Controller {
	if resolver == nil {
		resolver = placement.NewResolver()
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Controller{
		ed:       ed,
		resolver: resolver,
		settings: settings,
		rng:      rng,
	}
}

// State returns the current interaction state.
func (c *Controller) State() State { return c.state }

// Mode returns the active drag mode. It is meaningful only while dragging.
func (c *Controller) Mode() Mode { return c.drag.mode }

// ---------------------------------------------------------------------------
// Drag
// ---------------------------------------------------------------------------

// PointerDown selects id and starts a drag in the mode chosen by mods.
// Selection is not recorded in history.
func (c *Controller) PointerDown(id item.ID, p camera.Pointer, mods Modifiers) error {
	it, ok := c.ed.Item(id)
	if !ok {
		return fmt.Errorf("pointer down %q: %w", id, ErrNoItem)
	}
	if err := c.ed.SetSelected(id); err != nil {
		return err
	}
	c.ed.Begin()
	c.state = Dragging
	c.drag = drag{id: id, mode: ModeFor(mods), origin: p, start: it}
	return nil
}

// PointerMove updates the dragged item from the pointer's offset to the
// drag origin. It is a no-op when no drag is in progress.
func (c *Controller) PointerMove(p camera.Pointer) error {
	if c.state != Dragging {
		return nil
	}
	dx := p.X - c.drag.origin.X
	dy := p.Y - c.drag.origin.Y

	var patch item.Patch
	switch c.drag.mode {
	case Rotate:
		patch = c.rotate(dx)
	case Scale:
		patch = c.scale(dy)
	case Elevate:
		patch = c.elevate(dy)
	default:
		patch = c.translate(dx, dy)
	}
	return c.ed.UpdateItem(c.drag.id, patch)
}

// PointerUp ends the drag and commits the result as one history entry.
func (c *Controller) PointerUp() {
	if c.state != Dragging {
		return
	}
	c.state = Idle
	c.drag = drag{}
	c.ed.CommitChanges()
}

func (c *Controller) rotate(dx float64) item.Patch {
	r := c.drag.start.Rotation
	r.Y += dx * c.settings.RotateSensitivity
	return item.Patch{Rotation: &r}
}

func (c *Controller) scale(dy float64) item.Patch {
	s := c.drag.start.Scale.X - dy*c.settings.ScaleSensitivity
	s = math.Max(c.settings.MinScale, math.Min(c.settings.MaxScale, s))
	v := item.Uniform(s)
	return item.Patch{Scale: &v}
}

func (c *Controller) elevate(dy float64) item.Patch {
	pos := c.drag.start.Position
	pos.Y = math.Max(c.settings.MinY, pos.Y-dy*c.settings.ElevateSensitivity)
	return item.Patch{Position: &pos}
}

// translate moves the item across the floor plane relative to the camera:
// horizontal pointer motion follows the camera's right vector and vertical
// motion its flattened forward vector.
func (c *Controller) translate(dx, dy float64) item.Patch {
	forward, right := c.ed.Camera().HorizontalBasis()
	delta := right.MulScalar(dx).Add(forward.MulScalar(-dy)).MulScalar(c.settings.TranslateSensitivity)

	b := c.ed.Bounds()
	pos := c.drag.start.Position
	pos.X = b.ClampX(pos.X+delta.X, c.settings.EdgePadding)
	pos.Z = b.ClampZ(pos.Z+delta.Z, c.settings.EdgePadding)
	return item.Patch{Position: &pos}
}

// ---------------------------------------------------------------------------
// Stacking
// ---------------------------------------------------------------------------

// DoubleClick stacks id on top of the highest item sharing its footprint.
// With no neighbours the item is lifted to the stack gap above the floor.
func (c *Controller) DoubleClick(id item.ID) error {
	it, ok := c.ed.Item(id)
	if !ok {
		return fmt.Errorf("stack %q: %w", id, ErrNoItem)
	}
	top := 0.0
	for _, n := range c.ed.Neighbours(id, it.Position.X, it.Position.Z, c.settings.StackRadius) {
		top = math.Max(top, n.Position.Y)
	}
	pos := it.Position
	pos.Y = top + c.settings.StackGap
	c.ed.Begin()
	if err := c.ed.UpdateItem(id, item.Patch{Position: &pos}); err != nil {
		return err
	}
	c.ed.CommitChanges()
	return nil
}

// ---------------------------------------------------------------------------
// Placement
// ---------------------------------------------------------------------------

// SetPending arms the next canvas click to place product. Position,
// rotation and scale in product are ignored.
func (c *Controller) SetPending(product item.Spec) {
	p := product
	c.pending = &p
}

// ClearPending disarms placement.
func (c *Controller) ClearPending() {
	c.pending = nil
}

// Pending returns the armed product, if any.
func (c *Controller) Pending() (item.Spec, bool) {
	if c.pending == nil {
		return item.Spec{}, false
	}
	return *c.pending, true
}

// Click handles a click on empty canvas. With a pending product it places
// it at the resolved drop point and returns the new id; when the pointer
// misses the tank nothing changes and the product stays pending. With no
// pending product the selection is cleared.
func (c *Controller) Click(p camera.Pointer, vp camera.Viewport) (item.ID, bool) {
	if c.pending == nil {
		_ = c.ed.SetSelected("")
		return "", false
	}
	hit, ok := c.resolver.Resolve(p, vp, c.ed.Camera(), c.ed.Bounds())
	if !ok {
		return "", false
	}
	spec := *c.pending
	spec.Position = hit.Point
	spec.Rotation = item.Euler{Y: c.yaw()}
	spec.Scale = item.Uniform(1)
	c.pending = nil
	return c.ed.AddItem(spec), true
}

// AddRandom places product at a random spot near the middle of the tank,
// the way the gallery's add button does.
func (c *Controller) AddRandom(product item.Spec) item.ID {
	spec := product
	spec.Position = item.Vec3{
		X: (c.rng.Float64() - 0.5) * c.settings.RandomSpreadX,
		Y: c.settings.RandomDropY,
		Z: (c.rng.Float64() - 0.5) * c.settings.RandomSpreadZ,
	}
	spec.Rotation = item.Euler{Y: c.yaw()}
	spec.Scale = item.Uniform(1)
	return c.ed.AddItem(spec)
}

func (c *Controller) yaw() float64 {
	if !c.settings.RandomYaw {
		return 0
	}
	return c.rng.Float64() * 2 * math.Pi
}
