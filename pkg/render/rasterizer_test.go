package render

import (
	"math"
	"testing"

	"github.com/taigrr/shelf/pkg/math3d"
)

// mockMesh implements MeshRenderer for testing.
type mockMesh struct {
	vertices []mockVertex
	faces    [][3]int
}

type mockVertex struct {
	pos    math3d.Vec3
	normal math3d.Vec3
	uv     math3d.Vec2
}

func (m *mockMesh) VertexCount() int     { return len(m.vertices) }
func (m *mockMesh) TriangleCount() int   { return len(m.faces) }
func (m *mockMesh) GetFace(i int) [3]int { return m.faces[i] }
func (m *mockMesh) GetVertex(i int) (pos, normal math3d.Vec3, uv math3d.Vec2) {
	v := m.vertices[i]
	return v.pos, v.normal, v.uv
}

// boundedMesh adds bounds so the rasterizer can cull it.
type boundedMesh struct {
	*mockMesh
	min, max math3d.Vec3
}

func (m boundedMesh) GetBounds() (min, max math3d.Vec3) { return m.min, m.max }

// quadMesh is a 10×10 quad at z=0 facing the test camera.
func quadMesh() *mockMesh {
	n := math3d.V3(0, 0, 1)
	return &mockMesh{
		vertices: []mockVertex{
			{math3d.V3(-5, -5, 0), n, math3d.V2(0, 0)},
			{math3d.V3(5, -5, 0), n, math3d.V2(1, 0)},
			{math3d.V3(5, 5, 0), n, math3d.V2(1, 1)},
			{math3d.V3(-5, 5, 0), n, math3d.V2(0, 1)},
		},
		faces: [][3]int{{0, 3, 2}, {0, 2, 1}},
	}
}

// frontTriangle is wound so it faces a camera on +Z.
func frontTriangle(c Color) Triangle {
	n := math3d.V3(0, 0, 1)
	return Triangle{V: [3]Vertex{
		{Position: math3d.V3(-5, -5, 0), Normal: n, UV: math3d.V2(0, 0), Color: c},
		{Position: math3d.V3(0, 5, 0), Normal: n, UV: math3d.V2(0.5, 1), Color: c},
		{Position: math3d.V3(5, -5, 0), Normal: n, UV: math3d.V2(1, 0), Color: c},
	}}
}

// createTestRasterizer returns a rasterizer whose camera sits at z=10
// looking at the origin.
func createTestRasterizer(width, height int) (*Rasterizer, *Framebuffer) {
	fb := NewFramebuffer(width, height)
	camera := NewCamera()
	camera.SetPosition(math3d.V3(0, 0, 10))
	camera.LookAt(math3d.Zero3())
	camera.SetAspectRatio(float64(width) / float64(height))
	r := NewRasterizer(camera, fb)
	r.ClearDepth()
	fb.Clear(ColorBlack)
	return r, fb
}

func frontLight() Light {
	return Light{Dir: math3d.V3(0, 0, 1), Ambient: 0.3, Diffuse: 0.7, Tint: ColorWhite}
}

func countLit(fb *Framebuffer) int {
	n := 0
	for _, c := range fb.Pixels {
		if c.R > 0 || c.G > 0 || c.B > 0 {
			n++
		}
	}
	return n
}

func TestBarycentric(t *testing.T) {
	tests := []struct {
		name     string
		px, py   float64
		expected math3d.Vec3
	}{
		{"vertex 0", 0, 0, math3d.V3(1, 0, 0)},
		{"vertex 1", 1, 0, math3d.V3(0, 1, 0)},
		{"vertex 2", 0, 1, math3d.V3(0, 0, 1)},
		{"centroid", 1.0 / 3, 1.0 / 3, math3d.V3(1.0/3, 1.0/3, 1.0/3)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			bc := barycentric(0, 0, 1, 0, 0, 1, tc.px, tc.py)
			if math.Abs(bc.X-tc.expected.X) > 0.001 ||
				math.Abs(bc.Y-tc.expected.Y) > 0.001 ||
				math.Abs(bc.Z-tc.expected.Z) > 0.001 {
				t.Errorf("barycentric(%v, %v) = %v, want %v", tc.px, tc.py, bc, tc.expected)
			}
		})
	}

	t.Run("outside triangle", func(t *testing.T) {
		bc := barycentric(0, 0, 1, 0, 0, 1, -1, -1)
		if bc.X >= 0 && bc.Y >= 0 && bc.Z >= 0 {
			t.Error("point outside triangle should have negative barycentric coordinate")
		}
	})
}

func TestDrawTriangleGouraud(t *testing.T) {
	r, fb := createTestRasterizer(100, 100)
	r.DrawTriangleGouraud(frontTriangle(RGB(200, 200, 200)), frontLight())

	if countLit(fb) == 0 {
		t.Fatal("DrawTriangleGouraud should draw visible pixels")
	}
	// Light straight on: ambient + diffuse reproduces the vertex color.
	if c := fb.GetPixel(50, 50); c.R < 198 || c.R > 200 {
		t.Errorf("center pixel = %v, want R=200", c)
	}
}

func TestDrawTriangleGouraudTint(t *testing.T) {
	r, fb := createTestRasterizer(100, 100)
	light := frontLight()
	light.Tint = RGB(255, 0, 0)
	r.DrawTriangleGouraud(frontTriangle(ColorWhite), light)

	c := fb.GetPixel(50, 50)
	if c.R == 0 || c.G != 0 || c.B != 0 {
		t.Errorf("tinted pixel = %v, want pure red", c)
	}
}

func TestBackfaceCulling(t *testing.T) {
	tri := frontTriangle(ColorWhite)
	tri.V[1], tri.V[2] = tri.V[2], tri.V[1]

	r, fb := createTestRasterizer(100, 100)
	r.DrawTriangleGouraud(tri, frontLight())
	if n := countLit(fb); n > 0 {
		t.Errorf("back-facing triangle should be culled, got %d pixels", n)
	}

	r.DisableBackfaceCulling = true
	r.DrawTriangleGouraud(tri, frontLight())
	if countLit(fb) == 0 {
		t.Error("back-facing triangle should draw with culling disabled")
	}
}

func TestDepthTest(t *testing.T) {
	r, fb := createTestRasterizer(100, 100)

	near := frontTriangle(RGB(255, 0, 0))
	far := frontTriangle(RGB(0, 0, 255))
	for i := range far.V {
		far.V[i].Position.Z = -2
	}

	r.DrawTriangleGouraud(near, frontLight())
	r.DrawTriangleGouraud(far, frontLight())
	if c := fb.GetPixel(50, 50); c.B != 0 {
		t.Errorf("far triangle drew over near one: %v", c)
	}
}

func TestDepthWriteDisabled(t *testing.T) {
	r, fb := createTestRasterizer(100, 100)

	near := frontTriangle(RGB(255, 0, 0))
	far := frontTriangle(RGB(0, 0, 255))
	for i := range far.V {
		far.V[i].Position.Z = -2
	}

	r.DepthWrite = false
	r.DrawTriangleGouraud(near, frontLight())
	r.DepthWrite = true
	r.DrawTriangleGouraud(far, frontLight())
	if c := fb.GetPixel(50, 50); c.B == 0 {
		t.Errorf("triangle drawn without depth write should not occlude: %v", c)
	}
}

func TestBlend(t *testing.T) {
	r, fb := createTestRasterizer(100, 100)
	fb.Clear(RGB(0, 0, 200))

	r.Blend = 0.5
	r.DrawTriangleGouraud(frontTriangle(RGB(200, 0, 0)), frontLight())

	c := fb.GetPixel(50, 50)
	if c.R < 95 || c.R > 105 || c.B < 95 || c.B > 105 {
		t.Errorf("blended pixel = %v, want about (100, 0, 100)", c)
	}
}

func TestStencil(t *testing.T) {
	r, fb := createTestRasterizer(100, 100)

	// Mark only the left half.
	r.Stencil = StencilWrite
	r.DepthWrite = false
	r.DrawQuad(math3d.V3(-5, -5, 0), math3d.V3(-5, 5, 0), math3d.V3(0, 5, 0), math3d.V3(0, -5, 0), ColorBlack, frontLight())
	r.DepthWrite = true

	r.Stencil = StencilTest
	r.DrawMeshGouraud(quadMesh(), math3d.Identity(), ColorWhite, frontLight())

	if c := fb.GetPixel(40, 50); c.R == 0 {
		t.Error("marked pixel should be drawn")
	}
	if c := fb.GetPixel(60, 50); c.R != 0 {
		t.Errorf("unmarked pixel should be masked, got %v", c)
	}

	r.ClearStencil()
	fb.Clear(ColorBlack)
	r.ClearDepth()
	r.DrawMeshGouraud(quadMesh(), math3d.Identity(), ColorWhite, frontLight())
	if n := countLit(fb); n != 0 {
		t.Errorf("cleared stencil should mask everything, got %d pixels", n)
	}
}

func TestDrawMeshGouraud(t *testing.T) {
	r, fb := createTestRasterizer(100, 100)
	r.DrawMeshGouraud(quadMesh(), math3d.Identity(), RGB(255, 100, 50), frontLight())
	if countLit(fb) == 0 {
		t.Error("DrawMeshGouraud should render visible pixels")
	}
}

func TestDrawMeshTexturedGouraud(t *testing.T) {
	r, fb := createTestRasterizer(100, 100)
	tex := NewCheckerTexture(4, 4, 1, ColorWhite, RGB(100, 100, 100))
	r.DrawMeshTexturedGouraud(quadMesh(), math3d.Identity(), tex, frontLight())
	if countLit(fb) == 0 {
		t.Error("DrawMeshTexturedGouraud should render visible pixels")
	}
}

func TestDrawMeshWireframe(t *testing.T) {
	r, fb := createTestRasterizer(100, 100)
	r.DrawMeshWireframe(quadMesh(), math3d.Identity(), RGB(0, 255, 128))

	n := countLit(fb)
	if n == 0 {
		t.Fatal("wireframe should draw edges")
	}
	if c := fb.GetPixel(30, 40); c.G != 0 {
		t.Error("wireframe should not fill faces")
	}
}

func TestFrustumCulling(t *testing.T) {
	r, _ := createTestRasterizer(100, 100)
	mesh := boundedMesh{quadMesh(), math3d.V3(-5, -5, 0), math3d.V3(5, 5, 0)}

	r.DrawMeshGouraud(mesh, math3d.Identity(), ColorWhite, frontLight())
	r.DrawMeshGouraud(mesh, math3d.Translate(math3d.V3(100, 0, 0)), ColorWhite, frontLight())

	want := CullingStats{MeshesTested: 2, MeshesCulled: 1, MeshesDrawn: 1}
	if r.CullingStats != want {
		t.Errorf("CullingStats = %+v, want %+v", r.CullingStats, want)
	}
	r.ResetCullingStats()
	if r.CullingStats != (CullingStats{}) {
		t.Error("ResetCullingStats should zero counters")
	}
}

func TestOrthographicDraw(t *testing.T) {
	r, fb := createTestRasterizer(100, 100)
	r.camera.SetProjection(Orthographic)
	r.camera.SetOrthoHeight(20)
	r.InvalidateFrustum()

	r.DrawMeshGouraud(quadMesh(), math3d.Identity(), ColorWhite, frontLight())
	// The 10-unit quad covers a quarter of a 20-unit square view.
	n := countLit(fb)
	if n < 2000 || n > 3000 {
		t.Errorf("lit pixels = %d, want about 2500", n)
	}
}

func TestRasterizerClearDepth(t *testing.T) {
	r, _ := createTestRasterizer(10, 10)
	r.plot(5, 5, 1.0, ColorWhite)
	if r.getDepth(5, 5) != 1.0 {
		t.Fatal("plot should write depth")
	}
	r.ClearDepth()
	if r.getDepth(5, 5) != math.MaxFloat64 {
		t.Error("ClearDepth should reset to MaxFloat64")
	}
	if r.getDepth(-1, 0) != math.MaxFloat64 || r.getDepth(100, 0) != math.MaxFloat64 {
		t.Error("out of bounds getDepth should return MaxFloat64")
	}
	r.plot(-1, 0, 0, ColorWhite)
}

func BenchmarkDrawTriangleGouraud(b *testing.B) {
	r, _ := createTestRasterizer(200, 100)
	tri := frontTriangle(RGB(200, 200, 200))
	light := frontLight()

	for b.Loop() {
		r.ClearDepth()
		r.DrawTriangleGouraud(tri, light)
	}
}

func BenchmarkDrawMeshGouraud(b *testing.B) {
	r, _ := createTestRasterizer(200, 100)
	mesh := quadMesh()
	light := frontLight()

	for b.Loop() {
		r.ClearDepth()
		r.DrawMeshGouraud(mesh, math3d.Identity(), ColorWhite, light)
	}
}
