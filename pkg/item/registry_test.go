package item

import (
	"errors"
	"fmt"
	"testing"
)

// seqIDs returns a generator producing "item-1", "item-2", ...
func seqIDs() func() ID {
	n := 0
	return func() ID {
		n++
		return ID(fmt.Sprintf("item-%d", n))
	}
}

func TestAddAssignsUniqueIDs(t *testing.T) {
	r := NewRegistry()
	a := r.Add(Spec{ProductRef: "dragon-stone"})
	b := r.Add(Spec{ProductRef: "dragon-stone"})
	if a == "" || b == "" {
		t.Fatal("expected non-empty ids")
	}
	if a == b {
		t.Fatalf("ids should differ, both %q", a)
	}
	if r.Len() != 2 {
		t.Errorf("len = %d, want 2", r.Len())
	}
}

func TestAddDefaultsScale(t *testing.T) {
	r := NewRegistryWithIDs(seqIDs())
	id := r.Add(Spec{ProductRef: "java-fern"})
	it, ok := r.Get(id)
	if !ok {
		t.Fatal("added item not found")
	}
	if it.Scale != Uniform(1) {
		t.Errorf("scale = %+v, want unit", it.Scale)
	}

	id = r.Add(Spec{ProductRef: "java-fern", Scale: Uniform(2)})
	it, _ = r.Get(id)
	if it.Scale != Uniform(2) {
		t.Errorf("explicit scale = %+v, want 2", it.Scale)
	}
}

func TestRemove(t *testing.T) {
	r := NewRegistryWithIDs(seqIDs())
	a := r.Add(Spec{ProductRef: "a"})
	b := r.Add(Spec{ProductRef: "b"})

	if err := r.Remove(a); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if r.Has(a) {
		t.Error("removed item still present")
	}
	if !r.Has(b) {
		t.Error("other item lost")
	}

	err := r.Remove(a)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("second Remove error = %v, want ErrNotFound", err)
	}
}

func TestUpdate(t *testing.T) {
	r := NewRegistryWithIDs(seqIDs())
	id := r.Add(Spec{ProductRef: "a", Position: Vec3{1, 2, 3}})

	pos := Vec3{4, 5, 6}
	if err := r.Update(id, Patch{Position: &pos}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	it, _ := r.Get(id)
	if it.Position != pos {
		t.Errorf("position = %+v, want %+v", it.Position, pos)
	}
	if it.Scale != Uniform(1) {
		t.Errorf("scale changed by position patch: %+v", it.Scale)
	}

	if err := r.Update("missing", Patch{Position: &pos}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update(missing) error = %v, want ErrNotFound", err)
	}
}

func TestAllReturnsCopy(t *testing.T) {
	r := NewRegistryWithIDs(seqIDs())
	r.Add(Spec{ProductRef: "a"})
	all := r.All()
	all[0].Position.X = 99
	it := r.All()[0]
	if it.Position.X != 0 {
		t.Error("mutating All() result leaked into registry")
	}
}

func TestReplaceAndClear(t *testing.T) {
	r := NewRegistryWithIDs(seqIDs())
	r.Add(Spec{ProductRef: "a"})
	r.Replace([]Item{{ID: "x", Position: Vec3{100, 100, 100}}, {ID: "y"}})
	if r.Len() != 2 || !r.Has("x") || !r.Has("y") {
		t.Fatalf("replace failed: %+v", r.All())
	}
	it, _ := r.Get("x")
	if it.Position.X != 100 {
		t.Errorf("replace should not clamp, x = %v", it.Position.X)
	}
	r.Clear()
	if r.Len() != 0 {
		t.Errorf("len after clear = %d", r.Len())
	}
}

func TestNeighbours(t *testing.T) {
	r := NewRegistryWithIDs(seqIDs())
	self := r.Add(Spec{ProductRef: "self", Position: Vec3{0, 0.5, 0}})
	near := r.Add(Spec{ProductRef: "near", Position: Vec3{1.5, 3, -1.9}})
	r.Add(Spec{ProductRef: "edge", Position: Vec3{2, 1, 0}})
	r.Add(Spec{ProductRef: "far", Position: Vec3{10, 1, 10}})

	got := r.Neighbours(self, 0, 0, 2)
	if len(got) != 1 {
		t.Fatalf("neighbours = %d, want 1: %+v", len(got), got)
	}
	if got[0].ID != near {
		t.Errorf("neighbour = %q, want %q", got[0].ID, near)
	}
}
