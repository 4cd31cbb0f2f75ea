package interact

import (
	"strings"

	"github.com/chazu/aquascape/pkg/item"
)

// Key is a key press as reported by the host. Name follows the DOM
// KeyboardEvent.key values ("ArrowUp", "Delete", "q", ...).
type Key struct {
	Name  string `json:"key"`
	Ctrl  bool   `json:"ctrl"`
	Shift bool   `json:"shift"`
	Alt   bool   `json:"alt"`
}

// KeyDown handles a key press. It reports whether the key was consumed.
// Undo and redo shortcuts work regardless of selection; every other key
// acts on the selected item only.
func (c *Controller) KeyDown(k Key) (bool, error) {
	name := k.Name
	if len(name) == 1 {
		name = strings.ToLower(name)
	}

	if k.Ctrl {
		switch {
		case name == "z" && !k.Shift:
			c.ed.Undo()
			return true, nil
		case name == "y", name == "z" && k.Shift:
			c.ed.Redo()
			return true, nil
		}
		return false, nil
	}

	id := c.ed.Selected()
	if id == "" {
		return false, nil
	}
	it, ok := c.ed.Item(id)
	if !ok {
		return false, nil
	}

	switch name {
	case "Delete", "Backspace":
		return true, c.ed.RemoveItem(id)
	case "Escape":
		return true, c.ed.SetSelected("")
	}

	step := c.settings.NudgeStep
	pos := it.Position
	switch name {
	case "ArrowUp":
		pos.Z -= step
	case "ArrowDown":
		pos.Z += step
	case "ArrowLeft":
		pos.X -= step
	case "ArrowRight":
		pos.X += step
	default:
		return c.rotateKey(id, it, name)
	}
	return true, c.apply(id, item.Patch{Position: &pos})
}

func (c *Controller) rotateKey(id item.ID, it item.Item, name string) (bool, error) {
	step := c.settings.RotateStep
	rot := it.Rotation
	switch name {
	case "q":
		rot.Y += step
	case "e":
		rot.Y -= step
	case "r":
		rot.Z += step
	case "t":
		rot.Z -= step
	case "x":
		rot = item.Euler{}
	default:
		return false, nil
	}
	return true, c.apply(id, item.Patch{Rotation: &rot})
}

// apply makes a one-shot edit and commits it.
func (c *Controller) apply(id item.ID, p item.Patch) error {
	c.ed.Begin()
	if err := c.ed.UpdateItem(id, p); err != nil {
		return err
	}
	c.ed.CommitChanges()
	return nil
}
