package main

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/taigrr/shelf/internal/config"
	"github.com/taigrr/shelf/pkg/lighting"
	"github.com/taigrr/shelf/pkg/math3d"
	"github.com/taigrr/shelf/pkg/models"
	"github.com/taigrr/shelf/pkg/render"
	"github.com/taigrr/shelf/pkg/scene"
)

var wireColor = render.RGB(0, 255, 128)

// orbitSpeed is the impulse per terminal cell of pointer travel.
const orbitSpeed = 0.03

// app is the viewer state. Everything here is touched only from the frame
// loop; input and file watching reach it through channels.
type app struct {
	cfg    config.Config
	logger *log.Logger

	assets     []models.Asset
	module     *scene.Module
	room       *scene.Room
	texture    *render.Texture
	reflectors []render.Reflector

	rig   *lighting.Rig
	fade  *scene.Transition
	orbit *Orbit
	view  *ViewState
	hud   *HUD

	camera *render.Camera
	fb     *render.Framebuffer
	raster *render.Rasterizer
	cols   int
	rows   int

	orbiting     bool
	lastX, lastY int

	// aiming is the light positioning mode; pending is the direction under
	// the pointer until a click commits it.
	aiming  bool
	pending math3d.Vec3
}

// keyMatcher is the part of a key event the app looks at.
type keyMatcher interface {
	MatchString(s ...string) bool
}

// reload is the result of reloading the model files.
type reload struct {
	lib *models.Library
	err error
}

// assetsFor lists the model files named in cfg, each with its procedural
// stand-in.
func assetsFor(cfg config.Config) []models.Asset {
	m := cfg.Models
	return []models.Asset{
		{Name: scene.AssetBody, Path: m.Body, Node: m.BodyNode, Fallback: scene.FallbackBody},
		{Name: scene.AssetBack, Path: m.Back, Node: m.BackNode, Fallback: scene.FallbackBack},
		{Name: scene.AssetHole, Path: m.Hole, Node: m.HoleNode, Fallback: scene.FallbackHole},
		{Name: scene.AssetRoom, Path: m.Room, Texture: true, Fallback: scene.FallbackRoom},
	}
}

// newApp loads the models and builds both scenes for a cols×rows terminal.
func newApp(ctx context.Context, cfg config.Config, cols, rows int, logger *log.Logger) (*app, error) {
	v, err := scene.ParseView(cfg.Render.View)
	if err != nil {
		return nil, err
	}
	reflectors, err := cfg.RenderReflectors()
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:        cfg,
		logger:     logger,
		assets:     assetsFor(cfg),
		reflectors: reflectors,
		rig:        lighting.NewRig(cfg.Render.FPS, cfg.Lighting.Night),
		fade:       scene.NewTransition(cfg.Render.FPS, v),
		orbit:      NewOrbit(cfg.Render.FPS),
		view:       NewViewState(cfg.Render.Reflections),
		hud:        NewHUD(time.Now()),
		camera:     render.NewCamera(),
	}

	if cfg.Render.Texture != "" {
		a.texture, err = render.LoadTexture(cfg.Render.Texture)
		if err != nil {
			logger.Warn("could not load texture", "path", cfg.Render.Texture, "err", err)
		}
	}

	lib, err := models.LoadLibrary(ctx, a.assets, logger)
	if err != nil {
		return nil, fmt.Errorf("load models: %w", err)
	}
	if fb := lib.Fallbacks(); len(fb) > 0 {
		logger.Info("using procedural models", "assets", fb)
	}
	a.module, err = scene.NewModule(lib, cfg.Constraints(), cfg.Models.Scale, logger)
	if err != nil {
		return nil, err
	}
	a.room, err = scene.NewRoom(lib, a.texture)
	if err != nil {
		return nil, err
	}
	a.module.OnDragChange(func(dragging bool) {
		if dragging {
			a.orbit.Stop()
			a.orbiting = false
		}
	})

	a.resize(cols, rows)
	a.home(a.current()).Apply(a.camera)
	return a, nil
}

// current returns the scene on screen.
func (a *app) current() scene.Scene {
	if a.fade.View() == scene.ViewRoom {
		return a.room
	}
	return a.module
}

// home returns the reset pose of sc. The configured projection applies to
// the module editor; the room keeps its own.
func (a *app) home(sc scene.Scene) scene.Home {
	h := sc.Home()
	if sc.View() == scene.ViewModule {
		h.Projection = a.cfg.Projection()
	}
	return h
}

// resize rebuilds the framebuffer for a cols×rows terminal, two pixels
// per cell vertically.
func (a *app) resize(cols, rows int) {
	cols, rows = max(cols, 1), max(rows, 1)
	a.cols, a.rows = cols, rows
	w, h := cols, rows*2
	a.fb = render.NewFramebuffer(w, h)
	a.raster = render.NewRasterizer(a.camera, a.fb)
	a.camera.SetAspectRatio(float64(w) / float64(h))
	a.module.SetViewport(a.camera, w, h)

	bp := scene.BreakpointFor(cols)
	a.module.SetBreakpoint(bp)
	a.room.SetBreakpoint(bp)
	a.logger.Debug("resized", "cols", cols, "rows", rows, "breakpoint", bp.Name)
}

// cellToPixel returns the framebuffer point in the middle of a cell.
func cellToPixel(col, row int) (float64, float64) {
	return float64(col) + 0.5, float64(row*2) + 1
}

// editing reports whether pointer input goes to the module editor.
func (a *app) editing() bool {
	return a.fade.View() == scene.ViewModule && !a.fade.Active()
}

func (a *app) press(col, row int) {
	a.lastX, a.lastY = col, row
	if a.aiming {
		a.commitAim()
		return
	}
	if a.editing() {
		if a.module.HandlePress(cellToPixel(col, row)) {
			return
		}
		a.module.HandleMiss()
	}
	a.orbiting = a.module.RotationEnabled()
}

func (a *app) motion(col, row int) {
	dx, dy := col-a.lastX, row-a.lastY
	a.lastX, a.lastY = col, row
	if a.aiming {
		a.pending = lighting.Aim(col, row, a.cols, a.rows)
		return
	}
	if a.module.Dragging() {
		a.module.HandleMotion(cellToPixel(col, row))
		return
	}
	if a.orbiting {
		a.rotate(-float64(dx)*orbitSpeed, float64(dy)*orbitSpeed)
	}
}

// rotate nudges the camera. It does nothing while a slot is dragged, since
// the drag maps the pointer through the current camera.
func (a *app) rotate(yaw, pitch float64) {
	if !a.module.RotationEnabled() {
		return
	}
	a.orbit.ApplyImpulse(yaw, pitch)
}

func (a *app) release(col, row int) {
	a.orbiting = false
	a.module.HandleRelease(cellToPixel(col, row))
}

func (a *app) addSlot(now time.Time) {
	if s, ok := a.module.AddSlot(); ok {
		a.logger.Info("slot added", "id", s.ID, "x", s.X)
		return
	}
	a.hud.Warn("no space available", now)
}

func (a *app) removeSlot(now time.Time) {
	if s, ok := a.module.RemoveSlot(); ok {
		a.logger.Info("slot removed", "id", s.ID)
		return
	}
	a.hud.Warn("the last slot stays", now)
}

// startAim enters light positioning mode from the current light.
func (a *app) startAim() {
	if a.module.Dragging() {
		a.module.HandleMiss()
	}
	a.orbiting = false
	a.aiming = true
	a.pending = a.rig.Current().Direction.Normalize()
}

func (a *app) commitAim() {
	a.aiming = false
	a.rig.SetDirection(a.pending)
	a.logger.Debug("light placed", "dir", a.pending)
}

// reset returns the camera to the home pose of the current scene.
func (a *app) reset() {
	a.orbit.Reset()
	a.home(a.current()).Apply(a.camera)
}

// handleKey applies one key press. It reports whether the app should quit.
func (a *app) handleKey(k keyMatcher, now time.Time) bool {
	switch {
	case k.MatchString("ctrl+c"):
		return true
	case k.MatchString("esc", "escape"):
		switch {
		case a.module.Dragging():
			a.module.HandleMiss()
		case a.aiming:
			a.aiming = false
		default:
			return true
		}
	case k.MatchString("a"):
		if a.fade.View() == scene.ViewModule {
			a.addSlot(now)
		}
	case k.MatchString("r"):
		if a.fade.View() == scene.ViewModule {
			a.removeSlot(now)
		}
	case k.MatchString("l"):
		a.startAim()
	case k.MatchString("L", "shift+l"):
		a.aiming = false
		a.rig.ClearDirection()
	case k.MatchString("n"):
		a.rig.Toggle()
		a.logger.Debug("lighting", "night", a.rig.Night())
	case k.MatchString("p"):
		a.camera.ToggleProjection()
	case k.MatchString("m"):
		a.view.Reflections = !a.view.Reflections
	case k.MatchString("v"):
		a.fade.Toggle()
	case k.MatchString("x"):
		a.view.Wireframe = !a.view.Wireframe
	case k.MatchString("t"):
		a.view.Textured = !a.view.Textured
	case k.MatchString("0"):
		a.reset()
	case k.MatchString("?", "shift+/"):
		a.view.ShowHUD = !a.view.ShowHUD
	case k.MatchString("+", "="):
		a.orbit.ZoomBy(0.9)
	case k.MatchString("-", "_"):
		a.orbit.ZoomBy(1 / 0.9)
	case k.MatchString("left"):
		a.rotate(0.05, 0)
	case k.MatchString("right"):
		a.rotate(-0.05, 0)
	case k.MatchString("up"):
		a.rotate(0, 0.05)
	case k.MatchString("down"):
		a.rotate(0, -0.05)
	}
	return false
}

// handleEvent applies one terminal event. It reports whether the app
// should quit.
func (a *app) handleEvent(ev uv.Event, now time.Time) bool {
	switch ev := ev.(type) {
	case uv.KeyPressEvent:
		return a.handleKey(ev, now)
	case uv.MouseClickEvent:
		a.press(ev.X, ev.Y)
	case uv.MouseMotionEvent:
		a.motion(ev.X, ev.Y)
	case uv.MouseReleaseEvent:
		a.release(ev.X, ev.Y)
	case uv.MouseWheelEvent:
		switch ev.Button {
		case uv.MouseWheelUp:
			a.orbit.ZoomBy(0.9)
		case uv.MouseWheelDown:
			a.orbit.ZoomBy(1 / 0.9)
		}
	}
	return false
}

// applyReload swaps in reloaded models. A failed reload keeps the models
// on screen.
func (a *app) applyReload(r reload) {
	if r.err != nil {
		a.logger.Error("reload failed", "err", r.err)
		return
	}
	if err := a.module.SetLibrary(r.lib); err != nil {
		a.logger.Error("reload failed", "err", err)
		return
	}
	if err := a.room.SetLibrary(r.lib, a.texture); err != nil {
		a.logger.Error("reload failed", "err", err)
		return
	}
	a.logger.Info("models reloaded")
}

// update advances every animation by one frame.
func (a *app) update() {
	a.rig.Update()
	if a.fade.Update() {
		if a.module.Dragging() {
			a.module.HandleMiss()
		}
		a.reset()
		a.logger.Debug("view", "current", a.fade.View())
	}
	a.orbit.Update()
	a.orbit.Apply(a.camera, a.home(a.current()))
}

func (a *app) background() render.Color {
	if c, ok := a.cfg.BackgroundColor(); ok {
		return c
	}
	return a.rig.Current().Background
}

// light returns the preset to draw with, aimed at the pending direction
// while positioning.
func (a *app) light() lighting.Preset {
	p := a.rig.Current()
	if a.aiming {
		p.Direction = a.pending
	}
	return p
}

// draw renders the current scene into the framebuffer.
func (a *app) draw() {
	preset := a.light()
	bg := a.background()

	a.fb.Clear(bg)
	a.raster.ClearDepth()
	a.current().Draw(a.raster, preset.Light(), scene.DrawOptions{
		Wireframe:   a.view.Wireframe,
		Textured:    a.view.Textured,
		Reflections: a.view.Reflections,
		Reflectors:  a.reflectors,
		WireColor:   wireColor,
	})
	a.fb.Fade(bg, a.fade.Opacity())
}

func (a *app) status() Status {
	return Status{
		View:        a.fade.View(),
		Count:       a.module.Count(),
		MaxSlots:    a.module.MaxSlots(),
		CanAdd:      a.module.CanAdd(),
		CanRemove:   a.module.CanRemove(),
		Dragging:    a.module.Dragging(),
		Aiming:      a.aiming,
		Night:       a.rig.Night(),
		Projection:  a.camera.Projection,
		Reflections: a.view.Reflections,
		Wireframe:   a.view.Wireframe,
		Textured:    a.view.Textured,
	}
}

// snapshot renders a single frame to a PNG file.
func (a *app) snapshot(path string) error {
	a.update()
	a.draw()
	if err := a.fb.SavePNG(path); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	a.logger.Info("snapshot saved", "path", path, "width", a.fb.Width, "height", a.fb.Height)
	return nil
}

// watch reloads the models whenever one of their files changes. Loads run
// off the frame loop; results arrive on the returned channel.
func (a *app) watch(ctx context.Context) (<-chan reload, func() error, error) {
	w, err := models.NewWatcher(200*time.Millisecond, a.logger)
	if err != nil {
		return nil, nil, err
	}
	var files []string
	for _, as := range a.assets {
		files = append(files, as.Path)
	}
	if err := w.Add(files...); err != nil {
		w.Close()
		return nil, nil, err
	}

	changed := make(chan string, 1)
	out := make(chan reload, 1)
	w.Start(func(path string) {
		select {
		case changed <- path:
		default:
		}
	})
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case path := <-changed:
				a.logger.Debug("reloading models", "changed", path)
				lib, err := models.LoadLibrary(ctx, a.assets, a.logger)
				select {
				case out <- reload{lib: lib, err: err}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, w.Close, nil
}

// run drives the viewer on term until ctx is cancelled or the user quits.
func (a *app) run(ctx context.Context, term *uv.Terminal, reloads <-chan reload) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	tr := render.NewTerminalRenderer(term, a.cols, a.rows)

	events := make(chan uv.Event, 64)
	go func() {
		for ev := range term.Events() {
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	targetDuration := time.Second / time.Duration(a.cfg.Render.FPS)
	for {
		now := time.Now()

	drain:
		for {
			select {
			case <-ctx.Done():
				return nil
			case ev := <-events:
				if sz, ok := ev.(uv.WindowSizeEvent); ok {
					term.Erase()
					term.Resize(sz.Width, sz.Height)
					a.resize(sz.Width, sz.Height)
					tr = render.NewTerminalRenderer(term, a.cols, a.rows)
					continue
				}
				if a.handleEvent(ev, now) {
					return nil
				}
			case r := <-reloads:
				a.applyReload(r)
			default:
				break drain
			}
		}

		a.update()
		a.draw()
		tr.Render(a.fb)
		a.hud.UpdateFPS(now)
		a.hud.Render(tr, a.rows, a.status(), a.view.ShowHUD, now)
		if err := tr.Flush(); err != nil {
			return fmt.Errorf("flush: %w", err)
		}

		if elapsed := time.Since(now); elapsed < targetDuration {
			time.Sleep(targetDuration - elapsed)
		}
	}
}
