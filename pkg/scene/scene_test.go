package scene

import (
	"context"
	"io"
	"math"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/taigrr/shelf/pkg/layout"
	"github.com/taigrr/shelf/pkg/math3d"
	"github.com/taigrr/shelf/pkg/models"
	"github.com/taigrr/shelf/pkg/render"
)

const (
	testW = 160
	testH = 90
)

func fallbackLibrary(t *testing.T) *models.Library {
	t.Helper()
	lib, err := models.LoadLibrary(context.Background(), []models.Asset{
		{Name: AssetBody, Fallback: FallbackBody},
		{Name: AssetBack, Fallback: FallbackBack},
		{Name: AssetHole, Fallback: FallbackHole},
		{Name: AssetRoom, Fallback: FallbackRoom},
	}, log.New(io.Discard))
	if err != nil {
		t.Fatal(err)
	}
	return lib
}

// newTestModule returns a module scene viewed from its home camera.
func newTestModule(t *testing.T) (*Module, *render.Camera) {
	t.Helper()
	m, err := NewModule(fallbackLibrary(t), layout.DefaultConstraints(), 10, log.New(io.Discard))
	if err != nil {
		t.Fatal(err)
	}
	cam := render.NewCamera()
	m.Home().Apply(cam)
	m.SetViewport(cam, testW, testH)
	return m, cam
}

// screenOf returns the screen position of the middle of the slot box at
// layout position x.
func screenOf(t *testing.T, m *Module, cam *render.Camera, x float64) (float64, float64) {
	t.Helper()
	p := m.group.MulVec3(math3d.V3(x, m.holeTop/2, 0))
	sx, sy, _, ok := cam.WorldToScreen(p, testW, testH)
	if !ok {
		t.Fatalf("slot at %v is off screen", x)
	}
	return sx, sy
}

func position(t *testing.T, m *Module, id int) float64 {
	t.Helper()
	x, ok := m.engine.Position(id)
	if !ok {
		t.Fatalf("slot %d missing", id)
	}
	return x
}

func TestModuleDragThroughScreen(t *testing.T) {
	m, cam := newTestModule(t)

	var events []bool
	m.OnDragChange(func(d bool) { events = append(events, d) })

	sx, sy := screenOf(t, m, cam, -0.4)
	if id, ok := m.Pick(sx, sy); !ok || id != 0 {
		t.Fatalf("Pick() = %d, %v, want slot 0", id, ok)
	}
	if !m.HandlePress(sx, sy) {
		t.Fatal("press on slot should start a drag")
	}
	if !m.Dragging() || m.RotationEnabled() {
		t.Fatal("camera rotation must be off while dragging")
	}

	tx, ty := screenOf(t, m, cam, -0.6)
	m.HandleMotion(tx, ty)
	if x := position(t, m, 0); math.Abs(x-(-0.6)) > 1e-6 {
		t.Errorf("slot at %v after drag, want -0.6", x)
	}

	if !m.HandleRelease(tx, ty) {
		t.Fatal("release should end the drag")
	}
	if m.Dragging() || !m.RotationEnabled() {
		t.Error("drag should be over")
	}
	if m.bus.Len() != 0 {
		t.Errorf("bus.Len() = %d after release, want 0", m.bus.Len())
	}
	if len(events) != 2 || !events[0] || events[1] {
		t.Errorf("drag events = %v, want [true false]", events)
	}
}

func TestModuleDragUnderBreakpoint(t *testing.T) {
	m, cam := newTestModule(t)
	m.SetBreakpoint(BreakpointFor(60))

	sx, sy := screenOf(t, m, cam, -0.4)
	if !m.HandlePress(sx, sy) {
		t.Fatal("press on scaled slot should start a drag")
	}
	tx, ty := screenOf(t, m, cam, -0.9)
	m.HandleMotion(tx, ty)
	if x := position(t, m, 0); math.Abs(x-(-0.9)) > 1e-6 {
		t.Errorf("slot at %v, want -0.9 in layout units", x)
	}
}

func TestModuleReleaseAnywhere(t *testing.T) {
	tests := []struct {
		name    string
		release func(m *Module)
	}{
		{"release off the slot", func(m *Module) { m.HandleRelease(0, 0) }},
		{"missed press", func(m *Module) { m.HandleMiss() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, cam := newTestModule(t)
			sx, sy := screenOf(t, m, cam, -0.4)
			m.HandlePress(sx, sy)

			tt.release(m)
			if m.Dragging() || m.bus.Len() != 0 {
				t.Errorf("Dragging() = %v, bus.Len() = %d", m.Dragging(), m.bus.Len())
			}
		})
	}
}

func TestModulePressMisses(t *testing.T) {
	m, _ := newTestModule(t)
	if m.HandlePress(0, 0) {
		t.Error("press on empty space should not start a drag")
	}
	if m.HandleMotion(10, 10) || m.HandleRelease(10, 10) || m.HandleMiss() {
		t.Error("pointer input while idle should be ignored")
	}
}

func TestModuleParallelRayIsRejected(t *testing.T) {
	m, cam := newTestModule(t)
	sx, sy := screenOf(t, m, cam, -0.4)
	m.HandlePress(sx, sy)

	// A level camera casts rays parallel to the axis plane.
	h := m.Home()
	cam.Orbit(h.Target, h.Distance, h.Yaw, 0)
	if x := m.AxisX(testW/2, testH/2); !math.IsNaN(x) {
		t.Fatalf("AxisX() = %v, want NaN", x)
	}
	if m.HandleMotion(testW/2, testH/2) {
		t.Error("motion with no axis intersection should be rejected")
	}
	if x := position(t, m, 0); x != -0.4 {
		t.Errorf("slot moved to %v", x)
	}
}

func TestModulePicksNearestSlot(t *testing.T) {
	m, cam := newTestModule(t)
	if _, ok := m.AddSlot(); !ok {
		t.Fatal("AddSlot() failed")
	}
	sx, sy := screenOf(t, m, cam, -0.7)
	if id, ok := m.Pick(sx, sy); !ok || id != 1 {
		t.Errorf("Pick() = %d, %v, want slot 1", id, ok)
	}
}

func TestModuleRemoveCancelsDrag(t *testing.T) {
	m, cam := newTestModule(t)
	m.AddSlot()
	sx, sy := screenOf(t, m, cam, -0.7)
	if !m.HandlePress(sx, sy) {
		t.Fatal("press should start a drag on slot 1")
	}
	if _, ok := m.RemoveSlot(); !ok {
		t.Fatal("RemoveSlot() failed")
	}
	if m.Dragging() {
		t.Error("removing the dragged slot should end the drag")
	}
	if m.Count() != 1 || m.CanRemove() {
		t.Errorf("Count() = %d", m.Count())
	}
}

func TestModuleCapacity(t *testing.T) {
	m, _ := newTestModule(t)
	for m.CanAdd() {
		if _, ok := m.AddSlot(); !ok {
			t.Fatal("AddSlot() failed while CanAdd() was true")
		}
	}
	if m.Count() != m.MaxSlots() {
		t.Errorf("Count() = %d, want %d", m.Count(), m.MaxSlots())
	}
	if _, ok := m.AddSlot(); ok {
		t.Error("AddSlot() at capacity should fail")
	}
	if len(m.Snapshot()) != m.MaxSlots() {
		t.Errorf("Snapshot() has %d slots", len(m.Snapshot()))
	}
}

func TestModuleMissingAssets(t *testing.T) {
	lib, err := models.LoadLibrary(context.Background(), []models.Asset{
		{Name: AssetBody, Fallback: FallbackBody},
	}, log.New(io.Discard))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewModule(lib, layout.DefaultConstraints(), 10, nil); err == nil {
		t.Error("expected error for missing hole and back meshes")
	}
	if _, err := NewRoom(lib, nil); err == nil {
		t.Error("expected error for missing room mesh")
	}
}

func countDiffering(fb *render.Framebuffer, bg render.Color) int {
	n := 0
	for _, p := range fb.Pixels {
		if p != bg {
			n++
		}
	}
	return n
}

func TestScenesDraw(t *testing.T) {
	lib := fallbackLibrary(t)
	module, err := NewModule(lib, layout.DefaultConstraints(), 10, nil)
	if err != nil {
		t.Fatal(err)
	}
	room, err := NewRoom(lib, nil)
	if err != nil {
		t.Fatal(err)
	}

	bg := render.RGB(0xee, 0xee, 0xee)
	opts := []DrawOptions{
		{},
		{Wireframe: true, WireColor: render.RGB(0, 255, 0)},
		{Textured: true},
		{Reflections: true, Reflectors: render.DefaultReflectors()},
	}
	for _, s := range []Scene{module, room} {
		for _, o := range opts {
			fb := render.NewFramebuffer(testW, testH)
			cam := render.NewCamera()
			s.Home().Apply(cam)
			r := render.NewRasterizer(cam, fb)
			fb.Clear(bg)
			r.ClearDepth()

			s.Draw(r, render.DefaultLight(), o)
			if n := countDiffering(fb, bg); n < 50 {
				t.Errorf("%v with %+v drew %d pixels", s.View(), o, n)
			}
		}
	}
}

func TestRoomNormalizesModel(t *testing.T) {
	room, err := NewRoom(fallbackLibrary(t), nil)
	if err != nil {
		t.Fatal(err)
	}
	m := room.Mesh()
	s := m.Size()
	if got := math.Max(s.X, math.Max(s.Y, s.Z)); math.Abs(got-roomSize) > 1e-9 {
		t.Errorf("largest dimension = %v, want %v", got, roomSize)
	}
	if math.Abs(m.BoundsMin.Y) > 1e-9 {
		t.Errorf("BoundsMin.Y = %v, want 0", m.BoundsMin.Y)
	}
	if room.texture == nil {
		t.Error("room should fall back to a checker texture")
	}
}

func BenchmarkModuleDraw(b *testing.B) {
	lib, err := models.LoadLibrary(context.Background(), []models.Asset{
		{Name: AssetBody, Fallback: FallbackBody},
		{Name: AssetBack, Fallback: FallbackBack},
		{Name: AssetHole, Fallback: FallbackHole},
	}, log.New(io.Discard))
	if err != nil {
		b.Fatal(err)
	}
	m, err := NewModule(lib, layout.DefaultConstraints(), 10, log.New(io.Discard))
	if err != nil {
		b.Fatal(err)
	}
	fb := render.NewFramebuffer(testW, testH)
	cam := render.NewCamera()
	m.Home().Apply(cam)
	r := render.NewRasterizer(cam, fb)
	opts := DrawOptions{Reflections: true, Reflectors: render.DefaultReflectors()}

	for b.Loop() {
		fb.Clear(render.ColorBlack)
		r.ClearDepth()
		m.Draw(r, render.DefaultLight(), opts)
	}
}
