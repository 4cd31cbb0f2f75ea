// Package session owns the state of one tank editing session: the placed
// items, the tank bounds, the current selection and the undo history.
//
// A Session has a single writer. Transient edits (UpdateItem) change live
// state without touching history; every other mutating operation is a
// commit. Price is never stored and is recomputed on demand.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/chazu/aquascape/pkg/camera"
	"github.com/chazu/aquascape/pkg/document"
	"github.com/chazu/aquascape/pkg/history"
	"github.com/chazu/aquascape/pkg/item"
	"github.com/chazu/aquascape/pkg/pricing"
	"github.com/chazu/aquascape/pkg/tank"
	"github.com/jinzhu/copier"
)

// ErrItemNotFound is returned when an id does not name a present item.
var ErrItemNotFound = item.ErrNotFound

// Config controls how a session is created. Zero fields take defaults.
type Config struct {
	HistoryCap int
	Bounds     tank.Bounds
	Camera     camera.Camera
	Now        func() time.Time
	NewID      func() item.ID
}

// Snapshot is an immutable copy of the session at one point in history.
type Snapshot struct {
	Items    []item.Item
	Bounds   tank.Bounds
	Selected item.ID
}

// Session is the state of one editing session.
type Session struct {
	items    *item.Registry
	bounds   tank.Bounds
	selected item.ID
	history  *history.Stack[Snapshot]
	camera   camera.Camera

	// dirty is set by transient edits that have not been committed.
	dirty bool

	now   func() time.Time
	newID func() item.ID
}

// New creates a session whose history holds the initial, empty state.
func New(cfg Config) *Session {
	if cfg.Bounds == (tank.Bounds{}) {
		cfg.Bounds = tank.Default()
	}
	if cfg.Camera == (camera.Camera{}) {
		cfg.Camera = camera.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NewID == nil {
		cfg.NewID = item.NewID
	}
	s := &Session{
		items:   item.NewRegistryWithIDs(cfg.NewID),
		bounds:  cfg.Bounds,
		history: history.New[Snapshot](cfg.HistoryCap),
		camera:  cfg.Camera,
		now:     cfg.Now,
		newID:   cfg.NewID,
	}
	s.history.Reset(s.snapshot())
	return s
}

// ---------------------------------------------------------------------------
// Reads
// ---------------------------------------------------------------------------

// Items returns a copy of the placed items in insertion order.
func (s *Session) Items() []item.Item {
	return s.items.All()
}

// Item returns a copy of the item with the given id.
func (s *Session) Item(id item.ID) (item.Item, bool) {
	return s.items.Get(id)
}

// Bounds returns the tank bounds.
func (s *Session) Bounds() tank.Bounds {
	return s.bounds
}

// Selected returns the selected item id, or "" when nothing is selected.
func (s *Session) Selected() item.ID {
	return s.selected
}

// Neighbours returns the items other than id whose footprint is within
// radius of (x, z).
func (s *Session) Neighbours(id item.ID, x, z, radius float64) []item.Item {
	return s.items.Neighbours(id, x, z, radius)
}

// Price returns the total price of the current items and bounds.
func (s *Session) Price() float64 {
	return pricing.Price(s.items.All(), s.bounds)
}

// Breakdown returns the itemised price of the current state.
func (s *Session) Breakdown() pricing.Breakdown {
	return pricing.Calculate(s.items.All(), s.bounds)
}

// Camera returns the camera the renderer is using.
func (s *Session) Camera() camera.Camera {
	return s.camera
}

// SetCamera records the renderer's camera. Camera moves are not edits and
// are not recorded in history.
func (s *Session) SetCamera(c camera.Camera) {
	s.camera = c
}

// View is a read-only copy of everything a renderer or UI needs.
type View struct {
	Items     []item.Item       `json:"items"`
	Bounds    tank.Bounds       `json:"tankConfig"`
	Selected  item.ID           `json:"selectedId"`
	Camera    camera.Camera     `json:"camera"`
	Breakdown pricing.Breakdown `json:"pricing"`
	CanUndo   bool              `json:"canUndo"`
	CanRedo   bool              `json:"canRedo"`
}

// View returns a copy of the current state.
func (s *Session) View() View {
	items := s.items.All()
	return View{
		Items:     items,
		Bounds:    s.bounds,
		Selected:  s.selected,
		Camera:    s.camera,
		Breakdown: pricing.Calculate(items, s.bounds),
		CanUndo:   s.history.CanUndo(),
		CanRedo:   s.history.CanRedo(),
	}
}

// CanUndo reports whether Undo would change state.
func (s *Session) CanUndo() bool {
	return s.history.CanUndo()
}

// CanRedo reports whether Redo would change state.
func (s *Session) CanRedo() bool {
	return s.history.CanRedo()
}

// HistoryLen returns the number of retained snapshots.
func (s *Session) HistoryLen() int {
	return s.history.Len()
}

// Dirty reports whether transient edits are waiting for a commit.
func (s *Session) Dirty() bool {
	return s.dirty
}

// ---------------------------------------------------------------------------
// Committing operations
// ---------------------------------------------------------------------------

// AddItem adds a new item and returns its id.
func (s *Session) AddItem(spec item.Spec) item.ID {
	s.flush()
	id := s.items.Add(spec)
	s.commit()
	return id
}

// RemoveItem removes the item with the given id, clearing the selection if
// it pointed at that item. Unknown ids leave state and history untouched.
func (s *Session) RemoveItem(id item.ID) error {
	if !s.items.Has(id) {
		return fmt.Errorf("session: remove %q: %w", id, ErrItemNotFound)
	}
	s.flush()
	if err := s.items.Remove(id); err != nil {
		return fmt.Errorf("session: %w", err)
	}
	if s.selected == id {
		s.selected = ""
	}
	s.commit()
	return nil
}

// SetBounds applies a partial bounds update.
func (s *Session) SetBounds(p tank.Patch) {
	s.flush()
	s.bounds = s.bounds.Apply(p)
	s.commit()
}

// Clear removes every item and clears the selection.
func (s *Session) Clear() {
	s.flush()
	s.items.Clear()
	s.selected = ""
	s.commit()
}

// Begin records pending transient edits as their own history entry. Call
// it before an edit that will end in CommitChanges so that undoing the
// edit returns to the state just before it.
func (s *Session) Begin() {
	s.flush()
}

// CommitChanges records the current live state, including any transient
// edits, as a new history entry.
func (s *Session) CommitChanges() {
	s.commit()
}

// ---------------------------------------------------------------------------
// Non-committing operations
// ---------------------------------------------------------------------------

// UpdateItem applies a transient edit. It does not write history; a later
// CommitChanges (or any committing operation) records it.
func (s *Session) UpdateItem(id item.ID, p item.Patch) error {
	if err := s.items.Update(id, p); err != nil {
		return fmt.Errorf("session: %w", err)
	}
	s.dirty = true
	return nil
}

// SetSelected selects the item with the given id, or clears the selection
// when id is empty. Selection changes are not recorded in history.
func (s *Session) SetSelected(id item.ID) error {
	if id != "" && !s.items.Has(id) {
		return fmt.Errorf("session: select %q: %w", id, ErrItemNotFound)
	}
	s.selected = id
	return nil
}

// ---------------------------------------------------------------------------
// History
// ---------------------------------------------------------------------------

// Undo restores the previous history entry. It returns false, without
// changing anything, when there is nothing to undo. Uncommitted transient
// edits are discarded.
func (s *Session) Undo() bool {
	snap, ok := s.history.Back()
	if !ok {
		return false
	}
	s.restore(snap)
	return true
}

// Redo restores the next history entry, returning false at the newest.
func (s *Session) Redo() bool {
	snap, ok := s.history.Forward()
	if !ok {
		return false
	}
	s.restore(snap)
	return true
}

// ---------------------------------------------------------------------------
// Persistence
// ---------------------------------------------------------------------------

// ExportState returns the current layout as a document.
func (s *Session) ExportState() document.Document {
	b := s.bounds
	return document.Document{
		Items:      document.FromItems(s.items.All()),
		TankConfig: &b,
		TotalPrice: s.Price(),
		Timestamp:  s.now().UTC(),
	}
}

// LoadState replaces the session state with d and makes it the only
// history entry. Item positions are taken as given. When d has no tank
// configuration the current bounds are kept.
func (s *Session) LoadState(d document.Document) {
	if d.TankConfig != nil {
		s.bounds = *d.TankConfig
	}
	s.items.Replace(d.ToItems(s.newID))
	s.selected = ""
	s.dirty = false
	s.history.Reset(s.snapshot())
}

// ---------------------------------------------------------------------------
// Internals
// ---------------------------------------------------------------------------

// flush records pending transient edits so the entry before a committing
// operation reflects what the user saw.
func (s *Session) flush() {
	if s.dirty {
		s.commit()
	}
}

func (s *Session) commit() {
	s.history.Push(s.snapshot())
	s.dirty = false
}

// snapshot deep-copies the live state.
func (s *Session) snapshot() Snapshot {
	snap := Snapshot{
		Bounds:   s.bounds,
		Selected: s.selected,
	}
	if err := copier.CopyWithOption(&snap.Items, s.items.All(), copier.Option{DeepCopy: true}); err != nil {
		// Items hold only plain values, so a copy failure is a programming
		// error rather than a runtime condition.
		panic(fmt.Sprintf("session: snapshot copy: %v", err))
	}
	return snap
}

func (s *Session) restore(snap Snapshot) {
	s.items.Replace(snap.Items)
	s.bounds = snap.Bounds
	s.selected = snap.Selected
	if s.selected != "" && !s.items.Has(s.selected) {
		s.selected = ""
	}
	s.dirty = false
}

// IsNotFound reports whether err wraps ErrItemNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrItemNotFound)
}
