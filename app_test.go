package main

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/aquascape/pkg/camera"
	"github.com/chazu/aquascape/pkg/catalog"
	"github.com/chazu/aquascape/pkg/config"
	"github.com/chazu/aquascape/pkg/document"
	"github.com/chazu/aquascape/pkg/interact"
	"github.com/chazu/aquascape/pkg/item"
	"github.com/chazu/aquascape/pkg/kernel"
	"github.com/chazu/aquascape/pkg/tank"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	cfg := config.Default()
	cfg.Mesh.Cells = 16
	return NewApp(cfg, catalog.Default(), nil)
}

func TestNewAppDefaults(t *testing.T) {
	app := newTestApp(t)
	v := app.GetView()

	if v.Bounds != tank.Default() {
		t.Errorf("bounds = %+v, want default", v.Bounds)
	}
	if len(v.Items) != 0 || v.CanUndo || v.CanRedo {
		t.Errorf("unexpected initial view %+v", v)
	}
	if len(app.GetCatalog()) == 0 {
		t.Error("catalog should not be empty")
	}
}

func TestAddProduct(t *testing.T) {
	app := newTestApp(t)

	id, err := app.AddProduct("dragon-stone")
	if err != nil {
		t.Fatalf("AddProduct failed: %v", err)
	}
	v := app.GetView()
	if len(v.Items) != 1 || v.Items[0].ID != id {
		t.Fatalf("items = %+v", v.Items)
	}
	it := v.Items[0]
	if it.Name != "Dragon Stone" || it.UnitPrice != 25.99 {
		t.Errorf("item = %+v", it)
	}
	if !v.Bounds.Contains(it.Position.X, it.Position.Y, it.Position.Z) {
		t.Errorf("random position %+v outside tank", it.Position)
	}
	if !v.CanUndo {
		t.Error("adding should be undoable")
	}
}

func TestAddUnknownProduct(t *testing.T) {
	app := newTestApp(t)

	_, err := app.AddProduct("unobtainium")
	if !errors.Is(err, ErrUnknownProduct) {
		t.Fatalf("err = %v, want ErrUnknownProduct", err)
	}
	if err := app.SetPending("unobtainium"); !errors.Is(err, ErrUnknownProduct) {
		t.Fatalf("SetPending err = %v, want ErrUnknownProduct", err)
	}
	if len(app.GetView().Items) != 0 {
		t.Error("failed add should not create items")
	}
}

func TestPendingClickPlaces(t *testing.T) {
	app := newTestApp(t)
	app.SetCamera(camera.Camera{
		Position: item.Vec3{Y: 30},
		Up:       item.Vec3{Z: -1},
		FovY:     50,
	})
	if err := app.SetPending("java-fern"); err != nil {
		t.Fatalf("SetPending failed: %v", err)
	}

	res := app.Click(camera.Pointer{X: 400, Y: 300}, camera.Viewport{Width: 800, Height: 600})
	if !res.Placed {
		t.Fatal("expected placement")
	}
	v := app.GetView()
	if len(v.Items) != 1 || v.Items[0].ID != res.ID {
		t.Fatalf("items = %+v", v.Items)
	}
	if y := v.Items[0].Position.Y; math.Abs(y-0.5) > 1e-9 {
		t.Errorf("y = %v, want 0.5", y)
	}

	// Pending cleared: a second click only deselects.
	if res := app.Click(camera.Pointer{X: 400, Y: 300}, camera.Viewport{Width: 800, Height: 600}); res.Placed {
		t.Error("second click should not place")
	}
}

func TestDragAndUndo(t *testing.T) {
	app := newTestApp(t)
	id, _ := app.AddProduct("dragon-stone")
	before := app.GetView().Items[0]

	if err := app.PointerDown(id, camera.Pointer{X: 100, Y: 100}, interact.Modifiers{Ctrl: true}); err != nil {
		t.Fatalf("PointerDown failed: %v", err)
	}
	if err := app.PointerMove(camera.Pointer{X: 100, Y: 50}); err != nil {
		t.Fatalf("PointerMove failed: %v", err)
	}
	app.PointerUp()

	after := app.GetView().Items[0]
	if after.Scale == before.Scale {
		t.Fatal("ctrl-drag should scale the item")
	}

	if !app.Undo() {
		t.Fatal("undo should succeed")
	}
	if got := app.GetView().Items[0]; got.Scale != before.Scale {
		t.Errorf("scale after undo = %+v, want %+v", got.Scale, before.Scale)
	}
	if !app.Redo() {
		t.Fatal("redo should succeed")
	}
	if got := app.GetView().Items[0]; got.Scale != after.Scale {
		t.Errorf("scale after redo = %+v, want %+v", got.Scale, after.Scale)
	}
}

func TestUpdateAndCommit(t *testing.T) {
	app := newTestApp(t)
	id, _ := app.AddProduct("dragon-stone")

	pos := item.Vec3{X: 1, Y: 2, Z: 3}
	if err := app.UpdateItem(id, item.Patch{Position: &pos}); err != nil {
		t.Fatalf("UpdateItem failed: %v", err)
	}
	app.Commit()
	app.Undo()

	if got := app.GetView().Items[0].Position; got == pos {
		t.Error("undo should revert the committed edit")
	}
	if err := app.UpdateItem("missing", item.Patch{Position: &pos}); err == nil {
		t.Error("expected error for unknown item")
	}
}

func TestKeyDown(t *testing.T) {
	app := newTestApp(t)
	id, _ := app.AddProduct("dragon-stone")
	if err := app.SetSelected(id); err != nil {
		t.Fatalf("SetSelected failed: %v", err)
	}

	used, err := app.KeyDown(interact.Key{Name: "Delete"})
	if err != nil || !used {
		t.Fatalf("KeyDown(Delete) = %v, %v", used, err)
	}
	v := app.GetView()
	if len(v.Items) != 0 || v.Selected != "" {
		t.Errorf("view after delete = %+v", v)
	}

	used, err = app.KeyDown(interact.Key{Name: "z", Ctrl: true})
	if err != nil || !used {
		t.Fatalf("KeyDown(ctrl+z) = %v, %v", used, err)
	}
	if len(app.GetView().Items) != 1 {
		t.Error("ctrl+z should restore the deleted item")
	}
}

func TestSetBoundsAndClear(t *testing.T) {
	app := newTestApp(t)
	app.AddProduct("dragon-stone")

	w := 90.0
	v := app.SetBounds(tank.Patch{Width: &w})
	if v.Bounds.Width != 90 {
		t.Errorf("width = %v, want 90", v.Bounds.Width)
	}

	app.Clear()
	if len(app.GetView().Items) != 0 {
		t.Error("clear should remove every item")
	}
	app.Undo()
	if len(app.GetView().Items) != 1 {
		t.Error("undo should restore cleared items")
	}
}

func TestSaveAndOpen(t *testing.T) {
	app := newTestApp(t)
	app.AddProduct("dragon-stone")
	app.AddProduct("java-fern")
	want := app.GetView()

	path := filepath.Join(t.TempDir(), "design.json")
	if err := app.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading saved file: %v", err)
	}
	if !strings.Contains(string(data), `"totalPrice"`) {
		t.Errorf("saved document missing totalPrice: %s", data)
	}

	other := newTestApp(t)
	findings, err := other.OpenFrom(path)
	if err != nil {
		t.Fatalf("OpenFrom failed: %v", err)
	}
	if len(findings) != 0 {
		t.Errorf("unexpected findings %+v", findings)
	}
	got := other.GetView()
	if len(got.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(got.Items))
	}
	for i := range want.Items {
		if got.Items[i] != want.Items[i] {
			t.Errorf("item %d = %+v, want %+v", i, got.Items[i], want.Items[i])
		}
	}
	if got.CanUndo {
		t.Error("loading should reset history")
	}
}

func TestLoadStateRefusesDuplicateIDs(t *testing.T) {
	app := newTestApp(t)
	keep, _ := app.AddProduct("java-fern")

	d := document.Document{Items: []document.Item{
		{ID: "dup", ProductID: "dragon-stone", Price: 25.99},
		{ID: "dup", ProductID: "seiryu-stone", Price: 35.99},
	}}
	findings, err := app.LoadState(d)
	if !errors.Is(err, ErrInvalidDocument) {
		t.Fatalf("err = %v, want ErrInvalidDocument", err)
	}
	if len(findings) != 1 || findings[0].Severity != "error" || findings[0].Index != 1 {
		t.Errorf("findings = %+v", findings)
	}

	v := app.GetView()
	if len(v.Items) != 1 || v.Items[0].ID != keep {
		t.Fatalf("design should be unchanged, got %+v", v.Items)
	}
	if !v.CanUndo {
		t.Error("refused load should keep history")
	}
}

func TestOpenRefusesMissingProduct(t *testing.T) {
	app := newTestApp(t)
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`{"items":[{"id":"a","position":{"x":0}}]}`), 0o644); err != nil {
		t.Fatal(err)
	}

	findings, err := app.OpenFrom(path)
	if !errors.Is(err, ErrInvalidDocument) {
		t.Fatalf("err = %v, want ErrInvalidDocument", err)
	}
	if !strings.Contains(err.Error(), path) {
		t.Errorf("error should name the file: %v", err)
	}
	if len(findings) == 0 {
		t.Error("expected findings for the missing productId")
	}
	if len(app.GetView().Items) != 0 {
		t.Error("refused document should not load")
	}
}

func TestOpenMissingFile(t *testing.T) {
	app := newTestApp(t)
	if _, err := app.OpenFrom(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestDialogsNeedWindow(t *testing.T) {
	app := newTestApp(t)
	if _, err := app.SaveDesign(); err == nil {
		t.Error("SaveDesign without a window should fail")
	}
	if _, err := app.OpenDesign(); err == nil {
		t.Error("OpenDesign without a window should fail")
	}
}

func TestEvaluateScriptLoads(t *testing.T) {
	app := newTestApp(t)
	app.AddProduct("neon-tetra")

	res := app.EvaluateScript(`
(tank :width 90)
(item "dragon-stone" :at (vec3 -10 0.5 0))
(item "java-fern" :at (vec3 10 0.5 0))`)

	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors %+v", res.Errors)
	}
	if !res.Loaded {
		t.Fatal("clean script should load")
	}
	if len(res.View.Items) != 2 || res.View.Bounds.Width != 90 {
		t.Errorf("view = %+v", res.View)
	}
	if res.View.CanUndo {
		t.Error("loading a script should reset history")
	}
}

func TestEvaluateScriptErrorKeepsDesign(t *testing.T) {
	app := newTestApp(t)
	app.AddProduct("neon-tetra")

	res := app.EvaluateScript(`(item "dragon-stone"`)
	if len(res.Errors) == 0 {
		t.Fatal("expected an error for unbalanced parens")
	}
	if res.Loaded {
		t.Error("failed script should not load")
	}
	if len(res.View.Items) != 1 {
		t.Errorf("design should be unchanged, got %d items", len(res.View.Items))
	}
	if res.Findings == nil {
		t.Error("Findings should be non-nil")
	}
}

func TestEvaluateScriptWarnings(t *testing.T) {
	app := newTestApp(t)

	res := app.EvaluateScript(`(item "dragon-stone" :at (vec3 500 0.5 0))`)
	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors %+v", res.Errors)
	}
	if !res.Loaded {
		t.Fatal("warnings should not block loading")
	}
	if len(res.Findings) != 1 || res.Findings[0].Severity != "warning" {
		t.Errorf("findings = %+v", res.Findings)
	}
}

func TestGetMeshes(t *testing.T) {
	app := newTestApp(t)
	id, _ := app.AddProduct("dragon-stone")

	meshes, err := app.GetMeshes()
	if err != nil {
		t.Fatalf("GetMeshes failed: %v", err)
	}
	if len(meshes) == 0 || meshes[0].Kind != kernel.KindCabinet {
		t.Fatalf("expected the cabinet first, got %d meshes", len(meshes))
	}

	var found bool
	for _, m := range meshes {
		if m.ItemID == string(id) {
			found = true
		}
	}
	if !found {
		t.Error("missing mesh for the placed item")
	}
}

// TestE2EPlantedExample runs the bundled example script through the same
// path the editor binding takes.
func TestE2EPlantedExample(t *testing.T) {
	app := newTestApp(t)

	source, err := os.ReadFile("examples/planted.lisp")
	if err != nil {
		t.Fatalf("failed to read planted.lisp: %v", err)
	}

	res := app.EvaluateScript(string(source))
	for _, e := range res.Errors {
		t.Errorf("eval error (line %d): %s", e.Line, e.Message)
	}
	if len(res.Errors) > 0 {
		t.FailNow()
	}
	if len(res.Findings) != 0 {
		t.Errorf("unexpected findings %+v", res.Findings)
	}
	if !res.Loaded {
		t.Fatal("example should load")
	}

	v := res.View
	if len(v.Items) != 19 {
		t.Fatalf("expected 19 items, got %d", len(v.Items))
	}
	if v.Bounds.Glass != tank.GlassLowIron || v.Bounds.Width != 90 {
		t.Errorf("bounds = %+v", v.Bounds)
	}
	if v.Breakdown.ItemCount != 19 {
		t.Errorf("breakdown = %+v", v.Breakdown)
	}
}
