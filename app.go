package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/wailsapp/wails/v2/pkg/logger"
	"github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/chazu/aquascape/pkg/camera"
	"github.com/chazu/aquascape/pkg/catalog"
	"github.com/chazu/aquascape/pkg/config"
	"github.com/chazu/aquascape/pkg/document"
	"github.com/chazu/aquascape/pkg/engine"
	"github.com/chazu/aquascape/pkg/interact"
	"github.com/chazu/aquascape/pkg/item"
	"github.com/chazu/aquascape/pkg/kernel"
	"github.com/chazu/aquascape/pkg/kernel/sdfx"
	"github.com/chazu/aquascape/pkg/session"
	"github.com/chazu/aquascape/pkg/tank"
	"github.com/chazu/aquascape/pkg/tessellate"
)

// EventStateChanged is emitted with the new View after every mutation.
const EventStateChanged = "state:changed"

// ErrUnknownProduct is returned when a product id is not in the catalog.
var ErrUnknownProduct = errors.New("unknown product")

// ErrInvalidDocument is returned when a design has error findings, such as
// a missing productId or a duplicate id.
var ErrInvalidDocument = errors.New("invalid design document")

var designFilters = []runtime.FileFilter{
	{DisplayName: "Aquascape design (*.json)", Pattern: "*.json"},
}

// App is the Wails backend. It exposes methods to the frontend via bindings.
// Bound calls may arrive on several goroutines, so every method holds mu.
type App struct {
	ctx context.Context
	mu  sync.Mutex
	log logger.Logger

	cfg        config.Config
	catalog    *catalog.Catalog
	session    *session.Session
	controller *interact.Controller
	engine     *engine.Engine
	kernel     kernel.Kernel
}

// EvalErrorData is a JSON-serializable eval error for the frontend.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// FindingData is a JSON-serializable document finding.
type FindingData struct {
	Index    int    `json:"index"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// ScriptResult is returned by EvaluateScript.
type ScriptResult struct {
	Errors   []EvalErrorData `json:"errors"`
	Findings []FindingData   `json:"findings"`
	Loaded   bool            `json:"loaded"`
	View     session.View    `json:"view"`
}

// ClickResult reports whether a click placed the pending product.
type ClickResult struct {
	ID     item.ID `json:"id"`
	Placed bool    `json:"placed"`
}

// NewApp wires a session, controller, script engine and mesh kernel from cfg.
func NewApp(cfg config.Config, cat *catalog.Catalog, log logger.Logger) *App {
	if cat == nil {
		cat = catalog.Default()
	}
	if log == nil {
		log = logger.NewDefaultLogger()
	}
	s := session.New(session.Config{
		HistoryCap: cfg.HistoryCap,
		Bounds:     cfg.Tank,
		Camera:     cfg.Camera,
	})
	return &App{
		log:        log,
		cfg:        cfg,
		catalog:    cat,
		session:    s,
		controller: interact.New(s, cfg.Interaction.Resolver(), cfg.Interaction, nil),
		engine:     engine.NewEngine(cat, cfg.Script.Timeout),
		kernel:     sdfx.New(cfg.Mesh.Cells),
	}
}

// startup is called by Wails on app startup. The context is saved
// so we can call Wails runtime methods later.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
	a.log.Info(fmt.Sprintf("aquascape: %d products, tank %gx%gx%g",
		len(a.catalog.Products()), a.cfg.Tank.Width, a.cfg.Tank.Height, a.cfg.Tank.Depth))
}

// changed publishes the current view. Without a Wails context (tests, CLI)
// it is a no-op.
func (a *App) changed() session.View {
	v := a.session.View()
	if a.ctx != nil {
		runtime.EventsEmit(a.ctx, EventStateChanged, v)
	}
	return v
}

// ---------------------------------------------------------------------------
// Reads
// ---------------------------------------------------------------------------

// GetView returns the current state of the session.
func (a *App) GetView() session.View {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session.View()
}

// GetCatalog returns every product, in file order.
func (a *App) GetCatalog() []catalog.Product {
	return a.catalog.Products()
}

// GetMeshes tessellates the tank and its items for the preview.
func (a *App) GetMeshes() ([]*kernel.Mesh, error) {
	a.mu.Lock()
	scene := tessellate.Scene{Bounds: a.session.Bounds(), Items: a.session.Items()}
	a.mu.Unlock()

	meshes, err := tessellate.Tessellate(scene, a.catalog, a.kernel)
	if err != nil {
		a.log.Error(err.Error())
		return nil, err
	}
	return meshes, nil
}

// ---------------------------------------------------------------------------
// Placement
// ---------------------------------------------------------------------------

func (a *App) product(id string) (item.Spec, error) {
	p, ok := a.catalog.Lookup(id)
	if !ok {
		return item.Spec{}, fmt.Errorf("%w: %q", ErrUnknownProduct, id)
	}
	return p.Spec(), nil
}

// AddProduct drops a product at a random spot in the tank.
func (a *App) AddProduct(productID string) (item.ID, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	spec, err := a.product(productID)
	if err != nil {
		return "", err
	}
	id := a.controller.AddRandom(spec)
	a.changed()
	return id, nil
}

// SetPending arms a product for click placement. An empty id disarms.
func (a *App) SetPending(productID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if productID == "" {
		a.controller.ClearPending()
		return nil
	}
	spec, err := a.product(productID)
	if err != nil {
		return err
	}
	a.controller.SetPending(spec)
	return nil
}

// Click places the pending product where the pointer hits the tank, or
// clears the selection when nothing is pending.
func (a *App) Click(p camera.Pointer, vp camera.Viewport) ClickResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	id, placed := a.controller.Click(p, vp)
	a.changed()
	return ClickResult{ID: id, Placed: placed}
}

// ---------------------------------------------------------------------------
// Interaction
// ---------------------------------------------------------------------------

// PointerDown starts a drag on id.
func (a *App) PointerDown(id item.ID, p camera.Pointer, mods interact.Modifiers) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.controller.PointerDown(id, p, mods); err != nil {
		return err
	}
	a.changed()
	return nil
}

// PointerMove updates the dragged item.
func (a *App) PointerMove(p camera.Pointer) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.controller.PointerMove(p); err != nil {
		return err
	}
	a.changed()
	return nil
}

// PointerUp ends the drag and records it in history.
func (a *App) PointerUp() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.controller.PointerUp()
	a.changed()
}

// DoubleClick stacks id on top of its neighbours.
func (a *App) DoubleClick(id item.ID) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.controller.DoubleClick(id); err != nil {
		return err
	}
	a.changed()
	return nil
}

// KeyDown handles a keyboard shortcut. It reports whether the key was used.
func (a *App) KeyDown(k interact.Key) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	used, err := a.controller.KeyDown(k)
	if err != nil {
		return false, err
	}
	if used {
		a.changed()
	}
	return used, nil
}

// ---------------------------------------------------------------------------
// Editing
// ---------------------------------------------------------------------------

// RemoveItem deletes id.
func (a *App) RemoveItem(id item.ID) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.session.RemoveItem(id); err != nil {
		return err
	}
	a.changed()
	return nil
}

// UpdateItem edits id without recording history. Call Commit to record.
func (a *App) UpdateItem(id item.ID, p item.Patch) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.session.UpdateItem(id, p); err != nil {
		return err
	}
	a.changed()
	return nil
}

// Commit records the current state in history.
func (a *App) Commit() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.session.CommitChanges()
	a.changed()
}

// SetBounds resizes the tank or changes its glass or cabinet.
func (a *App) SetBounds(p tank.Patch) session.View {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.session.SetBounds(p)
	return a.changed()
}

// SetSelected selects id. An empty id clears the selection.
func (a *App) SetSelected(id item.ID) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.session.SetSelected(id); err != nil {
		return err
	}
	a.changed()
	return nil
}

// SetCamera stores the renderer's camera for later ray casts.
func (a *App) SetCamera(c camera.Camera) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.session.SetCamera(c)
}

// Undo steps back one history entry.
func (a *App) Undo() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	ok := a.session.Undo()
	if ok {
		a.changed()
	}
	return ok
}

// Redo steps forward one history entry.
func (a *App) Redo() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	ok := a.session.Redo()
	if ok {
		a.changed()
	}
	return ok
}

// Clear removes every item.
func (a *App) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.session.Clear()
	a.changed()
}

// ---------------------------------------------------------------------------
// Persistence
// ---------------------------------------------------------------------------

// ExportState returns the persistence document for the current design.
func (a *App) ExportState() document.Document {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session.ExportState()
}

// LoadState replaces the design with d. Warnings are returned and the
// document is loaded as given; error findings leave the design untouched.
func (a *App) LoadState(d document.Document) ([]FindingData, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.load(d)
}

func (a *App) load(d document.Document) ([]FindingData, error) {
	findings := document.Validate(d, a.session.Bounds())
	if document.HasErrors(findings) {
		return findingData(findings), ErrInvalidDocument
	}
	a.session.LoadState(d)
	a.controller.ClearPending()
	a.changed()
	return findingData(findings), nil
}

// SaveDesign asks for a file and writes the current design to it. It
// returns the chosen path, or "" if the dialog was cancelled.
func (a *App) SaveDesign() (string, error) {
	if a.ctx == nil {
		return "", errors.New("save design: no window")
	}
	path, err := runtime.SaveFileDialog(a.ctx, runtime.SaveDialogOptions{
		Title:           "Save design",
		DefaultFilename: "aquascape.json",
		Filters:         designFilters,
	})
	if err != nil || path == "" {
		return "", err
	}
	return path, a.SaveTo(path)
}

// SaveTo writes the current design to path.
func (a *App) SaveTo(path string) error {
	a.mu.Lock()
	d := a.session.ExportState()
	a.mu.Unlock()

	data, err := document.Marshal(d)
	if err != nil {
		return fmt.Errorf("save design: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("save design: %w", err)
	}
	a.log.Info(fmt.Sprintf("saved %d items to %s", len(d.Items), path))
	return nil
}

// OpenDesign asks for a design file and loads it.
func (a *App) OpenDesign() ([]FindingData, error) {
	if a.ctx == nil {
		return nil, errors.New("open design: no window")
	}
	path, err := runtime.OpenFileDialog(a.ctx, runtime.OpenDialogOptions{
		Title:   "Open design",
		Filters: designFilters,
	})
	if err != nil || path == "" {
		return nil, err
	}
	return a.OpenFrom(path)
}

// OpenFrom loads the design stored at path.
func (a *App) OpenFrom(path string) ([]FindingData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open design: %w", err)
	}
	d, err := document.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("open design %s: %w", path, err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.log.Info(fmt.Sprintf("loading %d items from %s", len(d.Items), path))
	findings, err := a.load(d)
	if err != nil {
		return findings, fmt.Errorf("open design %s: %w", path, err)
	}
	return findings, nil
}

// ---------------------------------------------------------------------------
// Scripting
// ---------------------------------------------------------------------------

// EvaluateScript runs a layout script. A script that evaluates cleanly and
// has no error findings replaces the current design.
func (a *App) EvaluateScript(source string) ScriptResult {
	result := ScriptResult{
		Errors:   []EvalErrorData{},
		Findings: []FindingData{},
	}

	doc, evalErrs, err := a.engine.Evaluate(source)

	a.mu.Lock()
	defer a.mu.Unlock()
	result.View = a.session.View()

	if err != nil {
		// Fatal error (panic, timeout, etc.)
		a.log.Error(fmt.Sprintf("evaluate: %v", err))
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	for _, e := range evalErrs {
		result.Errors = append(result.Errors, EvalErrorData{
			Line:    e.Line,
			Col:     e.Col,
			Message: e.Message,
		})
	}
	if len(result.Errors) > 0 {
		return result
	}

	findings := document.Validate(*doc, a.session.Bounds())
	result.Findings = findingData(findings)
	if document.HasErrors(findings) {
		return result
	}

	a.session.LoadState(*doc)
	a.controller.ClearPending()
	result.Loaded = true
	result.View = a.changed()
	a.log.Debug(fmt.Sprintf("script loaded %d items", len(doc.Items)))
	return result
}

func findingData(findings []document.Finding) []FindingData {
	out := make([]FindingData, 0, len(findings))
	for _, f := range findings {
		out = append(out, FindingData{
			Index:    f.Index,
			Severity: f.Severity.String(),
			Message:  f.Message,
		})
	}
	return out
}
