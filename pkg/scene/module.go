package scene

import (
	"fmt"
	"math"

	"github.com/charmbracelet/log"
	"github.com/taigrr/shelf/pkg/drag"
	"github.com/taigrr/shelf/pkg/layout"
	"github.com/taigrr/shelf/pkg/math3d"
	"github.com/taigrr/shelf/pkg/models"
	"github.com/taigrr/shelf/pkg/render"
)

var (
	holeColor   = render.RGB(0x33, 0x33, 0x33)
	activeColor = render.RGB(0xe0, 0x7a, 0x5f)
)

// Module is the configurator: the cabinet body with one hole mesh per
// layout slot. Slots are dragged along X with the pointer.
//
// Layout space is the scene before the breakpoint transform. Slot X values
// and the model scale live there; pointer rays are mapped into it before
// hit testing.
type Module struct {
	engine *layout.Engine
	ctrl   *drag.Controller
	bus    *drag.Bus
	logger *log.Logger

	body, back, hole *models.Mesh
	modelScale       float64
	holeTop          float64

	// AxisY is the height of the plane pointer positions are projected on.
	AxisY float64

	group    math3d.Mat4
	inverse  math3d.Mat4
	camera   *render.Camera
	viewW    int
	viewH    int
	onChange []func(dragging bool)
}

// NewModule builds the module scene from lib. c seeds the layout.
func NewModule(lib *models.Library, c layout.Constraints, modelScale float64, logger *log.Logger) (*Module, error) {
	if logger == nil {
		logger = log.Default()
	}
	engine, err := layout.New(c, logger)
	if err != nil {
		return nil, err
	}

	m := &Module{
		engine:     engine,
		bus:        drag.NewBus(),
		logger:     logger,
		modelScale: modelScale,
	}
	if err := m.SetLibrary(lib); err != nil {
		return nil, err
	}
	m.ctrl = drag.NewController(engine, m.bus)
	m.ctrl.OnChange(func(dragging bool) {
		if s, ok := m.ctrl.Session(); ok {
			logger.Debug("drag started", "slot", s.SlotID, "x", s.SlotStartX)
		} else if !dragging {
			logger.Debug("drag ended")
		}
		for _, fn := range m.onChange {
			fn(dragging)
		}
	})
	m.SetBreakpoint(Breakpoints[len(Breakpoints)-1])
	return m, nil
}

// SetLibrary swaps in freshly loaded meshes. The layout and any drag in
// progress are kept.
func (m *Module) SetLibrary(lib *models.Library) error {
	var missing []string
	get := func(name string) *models.Mesh {
		mesh, ok := lib.Get(name)
		if !ok {
			missing = append(missing, name)
		}
		return mesh
	}
	body, back, hole := get(AssetBody), get(AssetBack), get(AssetHole)
	if len(missing) > 0 {
		return fmt.Errorf("module scene: missing assets %v", missing)
	}

	m.body, m.back, m.hole = body, back, hole
	m.holeTop = math.Max(hole.BoundsMax.Y*m.modelScale, m.engine.Constraints().CollisionDistance/4)
	return nil
}

// View implements Scene.
func (m *Module) View() View { return ViewModule }

// Home looks down from the front right corner, orthographic.
func (m *Module) Home() Home {
	yaw, pitch, dist := homeFrom(math3d.V3(1, 3, 1))
	return Home{
		Target:      math3d.V3(-0.4, 0, 0),
		Yaw:         yaw,
		Pitch:       pitch,
		Distance:    dist,
		Projection:  render.Orthographic,
		OrthoHeight: 2.4,
		FOV:         math.Pi / 4,
	}
}

// SetBreakpoint implements Scene.
func (m *Module) SetBreakpoint(b Breakpoint) {
	m.group = group(b.ModuleScale, b.ModuleLift)
	m.inverse = m.group.Inverse()
}

// SetViewport sets the camera and framebuffer size pointer coordinates
// refer to.
func (m *Module) SetViewport(cam *render.Camera, width, height int) {
	m.camera = cam
	m.viewW, m.viewH = width, height
}

// OnDragChange registers fn to be called when a drag starts or ends.
func (m *Module) OnDragChange(fn func(dragging bool)) {
	m.onChange = append(m.onChange, fn)
}

// Layout passthroughs.

func (m *Module) Snapshot() []layout.Slot { return m.engine.Snapshot() }
func (m *Module) Count() int { return m.engine.Count() }
func (m *Module) MaxSlots() int { return m.engine.Constraints().MaxSlots }
func (m *Module) HasAvailableSpace() bool { return m.engine.HasAvailableSpace() }
func (m *Module) CanAdd() bool { return m.engine.CanAdd() }
func (m *Module) CanRemove() bool { return m.engine.CanRemove() }
func (m *Module) AddSlot() (layout.Slot, bool) { return m.engine.AddSlot() }

// RemoveSlot removes the newest slot. A drag on that slot is cancelled
// first.
func (m *Module) RemoveSlot() (layout.Slot, bool) {
	if !m.engine.CanRemove() {
		return layout.Slot{}, false
	}
	snap := m.engine.Snapshot()
	if s, ok := m.ctrl.Session(); ok && s.SlotID == snap[len(snap)-1].ID {
		m.ctrl.Cancel()
	}
	return m.engine.RemoveSlot()
}

// Dragging reports whether a slot is being dragged.
func (m *Module) Dragging() bool { return m.ctrl.Dragging() }

// RotationEnabled reports whether the camera may orbit.
func (m *Module) RotationEnabled() bool { return !m.ctrl.Dragging() }

// ActiveSlot returns the ID of the dragged slot.
func (m *Module) ActiveSlot() (int, bool) {
	s, ok := m.ctrl.Session()
	return s.SlotID, ok
}

// localRay maps the screen point into layout space.
func (m *Module) localRay(sx, sy float64) (math3d.Ray, bool) {
	if m.camera == nil || m.viewW <= 0 || m.viewH <= 0 {
		return math3d.Ray{}, false
	}
	r := m.camera.ScreenRay(sx, sy, m.viewW, m.viewH)
	return math3d.Ray{
		Origin: m.inverse.MulVec3(r.Origin),
		Dir:    m.inverse.MulVec3Dir(r.Dir),
	}, true
}

// slotBounds returns the pickable box of a slot in layout space.
func (m *Module) slotBounds(x float64) render.AABB {
	r := m.engine.Constraints().CollisionDistance / 2
	return render.AABB{
		Min: math3d.V3(x-r, 0, -r),
		Max: math3d.V3(x+r, m.holeTop, r),
	}
}

// Pick returns the slot under the screen point, nearest to the camera.
func (m *Module) Pick(sx, sy float64) (int, bool) {
	ray, ok := m.localRay(sx, sy)
	if !ok {
		return 0, false
	}
	best, bestT, hit := 0, math.Inf(1), false
	for _, s := range m.engine.Snapshot() {
		if t, ok := m.slotBounds(s.X).IntersectRay(ray); ok && t < bestT {
			best, bestT, hit = s.ID, t, true
		}
	}
	return best, hit
}

// AxisX projects the screen point onto the horizontal plane through the
// layout axis and returns its X. It is NaN when the ray runs parallel to
// the plane or the hit overflows.
func (m *Module) AxisX(sx, sy float64) float64 {
	ray, ok := m.localRay(sx, sy)
	if !ok {
		return math.NaN()
	}
	ray.Dir = ray.Dir.Normalize()
	p, _, ok := ray.IntersectPlane(math3d.V3(0, m.AxisY, 0), math3d.Up())
	if !ok || !p.IsFinite() {
		return math.NaN()
	}
	return p.X
}

// HandlePress starts a drag when the point is over a slot. It reports
// whether the press was consumed.
func (m *Module) HandlePress(sx, sy float64) bool {
	if m.ctrl.Dragging() {
		return false
	}
	id, ok := m.Pick(sx, sy)
	if !ok {
		return false
	}
	return m.ctrl.Handle(drag.PointerDown{SlotID: id, X: m.AxisX(sx, sy)})
}

// HandleMotion moves the dragged slot.
func (m *Module) HandleMotion(sx, sy float64) bool {
	if !m.ctrl.Dragging() {
		return false
	}
	return m.ctrl.Handle(drag.PointerMove{X: m.AxisX(sx, sy)})
}

// HandleRelease ends the drag. A release over the dragged slot is a
// PointerUp; a release anywhere reaches the controller through the bus.
func (m *Module) HandleRelease(sx, sy float64) bool {
	if !m.ctrl.Dragging() {
		return false
	}
	if id, ok := m.Pick(sx, sy); ok {
		if active, _ := m.ActiveSlot(); id == active {
			m.ctrl.Handle(drag.PointerUp{})
		}
	}
	m.bus.Publish()
	return true
}

// HandleMiss reports a press that hit nothing in the scene.
func (m *Module) HandleMiss() bool {
	return m.ctrl.Handle(drag.PointerMissed{})
}

// Draw implements Scene.
func (m *Module) Draw(r *render.Rasterizer, light render.Light, opts DrawOptions) {
	drawReflections(r, light, opts, func(mirror math3d.Mat4, l render.Light) {
		m.drawModels(r, mirror.Mul(m.group), l, opts)
	})
	m.drawModels(r, m.group, light, opts)
}

func (m *Module) drawModels(r *render.Rasterizer, base math3d.Mat4, light render.Light, opts DrawOptions) {
	scale := math3d.ScaleUniform(m.modelScale)
	draw := func(mesh *models.Mesh, transform math3d.Mat4, c render.Color) {
		if opts.Wireframe {
			r.DrawMeshWireframe(mesh, transform, opts.WireColor)
			return
		}
		r.DrawMeshGouraud(mesh, transform, c, light)
	}

	bodyTransform := base.Mul(scale)
	draw(m.body, bodyTransform, m.body.BaseColor())
	draw(m.back, bodyTransform, m.back.BaseColor())

	active, dragging := m.ActiveSlot()
	for _, s := range m.engine.Snapshot() {
		c := holeColor
		if dragging && s.ID == active {
			c = activeColor
		}
		draw(m.hole, base.Mul(math3d.Translate(math3d.V3(s.X, 0, 0))).Mul(scale), c)
	}
}
