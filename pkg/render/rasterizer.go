// Package render is a software rasterizer that draws into a half-block
// terminal framebuffer.
package render

import (
	"math"

	"github.com/taigrr/shelf/pkg/math3d"
)

// Vertex represents a vertex with all attributes needed for rasterization.
type Vertex struct {
	Position math3d.Vec3 // World position
	Normal   math3d.Vec3 // World normal
	UV       math3d.Vec2
	Color    Color
}

// Triangle represents a triangle to be rasterized.
type Triangle struct {
	V [3]Vertex
}

// Light is a single directional light plus an ambient term. Dir points from
// the surface toward the light.
type Light struct {
	Dir     math3d.Vec3
	Ambient float64
	Diffuse float64
	Tint    Color
}

// DefaultLight is a white key light from the upper front right.
func DefaultLight() Light {
	return Light{
		Dir:     math3d.V3(0.5, 1, 0.3),
		Ambient: 0.3,
		Diffuse: 0.7,
		Tint:    ColorWhite,
	}
}

// intensity returns the lit fraction for a surface with normal n.
// l must be normalized.
func (lt Light) intensity(n, l math3d.Vec3) float64 {
	return lt.Ambient + lt.Diffuse*math.Max(0, n.Dot(l))
}

// Rasterizer handles software triangle rasterization.
type Rasterizer struct {
	camera       *Camera
	fb           *Framebuffer
	zbuffer      []float64
	frustum      Frustum
	frustumDirty bool
	CullingStats CullingStats

	// DisableBackfaceCulling draws both windings. Mirrored geometry needs it
	// because a reflection flips triangle order.
	DisableBackfaceCulling bool

	// DepthWrite controls whether drawn pixels update the Z-buffer. The depth
	// test is always applied.
	DepthWrite bool

	// Blend is the source weight used when drawing. Values in (0, 1) mix the
	// new color over the framebuffer; anything else draws opaque.
	Blend float64

	// Stencil selects whether fragments mark or are masked by the stencil
	// buffer.
	Stencil StencilMode
	stencil []bool
}

// StencilMode controls the stencil buffer.
type StencilMode int

const (
	StencilOff   StencilMode = iota
	StencilWrite             // mark every drawn pixel
	StencilTest              // draw only on marked pixels
)

// CullingStats tracks frustum culling performance.
type CullingStats struct {
	MeshesTested int
	MeshesCulled int
	MeshesDrawn  int
}

// NewRasterizer creates a rasterizer that writes depth and draws opaque.
func NewRasterizer(camera *Camera, fb *Framebuffer) *Rasterizer {
	r := &Rasterizer{
		camera:       camera,
		fb:           fb,
		frustumDirty: true,
		DepthWrite:   true,
	}
	r.Resize()
	return r
}

// Resize resizes the Z-buffer to match the framebuffer.
func (r *Rasterizer) Resize() {
	if r.fb == nil {
		r.zbuffer = nil
		r.stencil = nil
		return
	}
	r.zbuffer = make([]float64, r.fb.Width*r.fb.Height)
	r.stencil = make([]bool, r.fb.Width*r.fb.Height)
}

// ClearStencil unmarks every pixel.
func (r *Rasterizer) ClearStencil() {
	clear(r.stencil)
}

// Width returns the framebuffer width.
func (r *Rasterizer) Width() int {
	if r.fb == nil {
		return 0
	}
	return r.fb.Width
}

// Height returns the framebuffer height.
func (r *Rasterizer) Height() int {
	if r.fb == nil {
		return 0
	}
	return r.fb.Height
}

// ClearDepth resets the Z-buffer.
func (r *Rasterizer) ClearDepth() {
	n := len(r.zbuffer)
	if n == 0 {
		return
	}
	r.zbuffer[0] = math.MaxFloat64
	for i := 1; i < n; i *= 2 {
		copy(r.zbuffer[i:], r.zbuffer[:i])
	}
}

// InvalidateFrustum marks the frustum stale. Call it when the camera moves.
func (r *Rasterizer) InvalidateFrustum() {
	r.frustumDirty = true
}

// Frustum returns the current frustum, recomputing it if stale.
func (r *Rasterizer) Frustum() Frustum {
	if r.frustumDirty {
		r.frustum = NewFrustumFromMatrix(r.camera.ViewProjectionMatrix())
		r.frustumDirty = false
	}
	return r.frustum
}

// ResetCullingStats zeroes the culling counters.
func (r *Rasterizer) ResetCullingStats() {
	r.CullingStats = CullingStats{}
}

// IsVisible tests a world-space box against the frustum.
func (r *Rasterizer) IsVisible(worldBounds AABB) bool {
	return r.Frustum().IntersectAABB(worldBounds)
}

// IsVisibleTransformed tests a local-space box after transform.
func (r *Rasterizer) IsVisibleTransformed(localBounds AABB, transform math3d.Mat4) bool {
	return r.IsVisible(localBounds.Transform(transform))
}

func (r *Rasterizer) getDepth(x, y int) float64 {
	if x < 0 || x >= r.Width() || y < 0 || y >= r.Height() {
		return math.MaxFloat64
	}
	return r.zbuffer[y*r.Width()+x]
}

// plot applies the depth and stencil tests, then writes one fragment.
func (r *Rasterizer) plot(x, y int, z float64, c Color) {
	if x < 0 || x >= r.Width() || y < 0 || y >= r.Height() {
		return
	}
	i := y*r.Width() + x
	if z >= r.zbuffer[i] {
		return
	}
	switch r.Stencil {
	case StencilTest:
		if !r.stencil[i] {
			return
		}
	case StencilWrite:
		r.stencil[i] = true
	}
	if r.DepthWrite {
		r.zbuffer[i] = z
	}
	if r.Blend > 0 && r.Blend < 1 {
		c = lerpColor(r.fb.GetPixel(x, y), c, r.Blend)
		c.A = 255
	}
	r.fb.SetPixel(x, y, c)
}

// screenVertex holds a vertex transformed to screen space.
type screenVertex struct {
	X, Y float64
	Z    float64
	W    float64
	UV   math3d.Vec2
}

// project transforms the triangle to screen space. ok is false when the
// triangle is behind the camera, degenerate, or culled as back-facing.
func (r *Rasterizer) project(tri Triangle) (sv [3]screenVertex, ok bool) {
	viewProj := r.camera.ViewProjectionMatrix()
	allBehind := true

	for i := range 3 {
		clip := viewProj.MulVec4(math3d.V4FromV3(tri.V[i].Position, 1))
		if clip.W > 0 {
			allBehind = false
		}
		if clip.W != 0 {
			sv[i].X = clip.X / clip.W
			sv[i].Y = clip.Y / clip.W
			sv[i].Z = clip.Z / clip.W
		}
		sv[i].W = clip.W
		sv[i].X = (sv[i].X + 1) * 0.5 * float64(r.Width())
		sv[i].Y = (1 - sv[i].Y) * 0.5 * float64(r.Height())
		sv[i].UV = tri.V[i].UV
	}
	if allBehind {
		return sv, false
	}

	edge1 := math3d.V2(sv[1].X-sv[0].X, sv[1].Y-sv[0].Y)
	edge2 := math3d.V2(sv[2].X-sv[0].X, sv[2].Y-sv[0].Y)
	area := edge1.Cross(edge2)
	if area == 0 || (!r.DisableBackfaceCulling && area < 0) {
		return sv, false
	}
	return sv, true
}

// bounds returns the clamped pixel bounding box of a projected triangle.
func (r *Rasterizer) bounds(sv [3]screenVertex) (minX, minY, maxX, maxY int) {
	minX = int(math.Max(0, math.Floor(min3(sv[0].X, sv[1].X, sv[2].X))))
	maxX = int(math.Min(float64(r.Width()-1), math.Ceil(max3(sv[0].X, sv[1].X, sv[2].X))))
	minY = int(math.Max(0, math.Floor(min3(sv[0].Y, sv[1].Y, sv[2].Y))))
	maxY = int(math.Min(float64(r.Height()-1), math.Ceil(max3(sv[0].Y, sv[1].Y, sv[2].Y))))
	return minX, minY, maxX, maxY
}

// DrawTriangleGouraud rasterizes a triangle with per-vertex lighting
// interpolated across the face.
func (r *Rasterizer) DrawTriangleGouraud(tri Triangle, light Light) {
	sv, ok := r.project(tri)
	if !ok {
		return
	}

	l := light.Dir.Normalize()
	var lit [3]Color
	for i := range 3 {
		c := ModulateColor(tri.V[i].Color, light.Tint)
		lit[i] = MultiplyColor(c, light.intensity(tri.V[i].Normal, l))
	}

	minX, minY, maxX, maxY := r.bounds(sv)
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			bc := barycentric(
				sv[0].X, sv[0].Y,
				sv[1].X, sv[1].Y,
				sv[2].X, sv[2].Y,
				float64(x)+0.5, float64(y)+0.5,
			)
			if bc.X < 0 || bc.Y < 0 || bc.Z < 0 {
				continue
			}
			z := bc.X*sv[0].Z + bc.Y*sv[1].Z + bc.Z*sv[2].Z
			if z >= r.getDepth(x, y) {
				continue
			}
			r.plot(x, y, z, interpolateColor3(lit[0], lit[1], lit[2], bc))
		}
	}
}

// DrawTriangleTexturedGouraud rasterizes a textured triangle with
// perspective-correct UVs and interpolated lighting.
func (r *Rasterizer) DrawTriangleTexturedGouraud(tri Triangle, tex *Texture, light Light) {
	sv, ok := r.project(tri)
	if !ok {
		return
	}

	l := light.Dir.Normalize()
	var vertexIntensity, invW [3]float64
	for i := range 3 {
		vertexIntensity[i] = light.intensity(tri.V[i].Normal, l)
		if sv[i].W != 0 {
			invW[i] = 1.0 / sv[i].W
		}
	}

	minX, minY, maxX, maxY := r.bounds(sv)
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			bc := barycentric(
				sv[0].X, sv[0].Y,
				sv[1].X, sv[1].Y,
				sv[2].X, sv[2].Y,
				float64(x)+0.5, float64(y)+0.5,
			)
			if bc.X < 0 || bc.Y < 0 || bc.Z < 0 {
				continue
			}
			z := bc.X*sv[0].Z + bc.Y*sv[1].Z + bc.Z*sv[2].Z
			if z >= r.getDepth(x, y) {
				continue
			}

			w0, w1, w2 := bc.X*invW[0], bc.Y*invW[1], bc.Z*invW[2]
			oneOverW := w0 + w1 + w2
			if oneOverW == 0 {
				continue
			}
			u := (w0*sv[0].UV.X + w1*sv[1].UV.X + w2*sv[2].UV.X) / oneOverW
			v := (w0*sv[0].UV.Y + w1*sv[1].UV.Y + w2*sv[2].UV.Y) / oneOverW
			intensity := (w0*vertexIntensity[0] + w1*vertexIntensity[1] + w2*vertexIntensity[2]) / oneOverW

			c := ModulateColor(tex.Sample(u, v), light.Tint)
			r.plot(x, y, z, MultiplyColor(c, intensity))
		}
	}
}

// DrawQuad draws the quad v0 v1 v2 v3 (counter-clockwise) with a flat normal.
func (r *Rasterizer) DrawQuad(v0, v1, v2, v3 math3d.Vec3, color Color, light Light) {
	n := v1.Sub(v0).Cross(v2.Sub(v0)).Normalize()
	vert := func(p math3d.Vec3) Vertex {
		return Vertex{Position: p, Normal: n, Color: color}
	}
	r.DrawTriangleGouraud(Triangle{V: [3]Vertex{vert(v0), vert(v1), vert(v2)}}, light)
	r.DrawTriangleGouraud(Triangle{V: [3]Vertex{vert(v0), vert(v2), vert(v3)}}, light)
}

// barycentric calculates barycentric coordinates for point (px, py) in triangle.
func barycentric(x0, y0, x1, y1, x2, y2, px, py float64) math3d.Vec3 {
	v0x, v0y := x2-x0, y2-y0
	v1x, v1y := x1-x0, y1-y0
	v2x, v2y := px-x0, py-y0

	dot00 := v0x*v0x + v0y*v0y
	dot01 := v0x*v1x + v0y*v1y
	dot02 := v0x*v2x + v0y*v2y
	dot11 := v1x*v1x + v1y*v1y
	dot12 := v1x*v2x + v1y*v2y

	invDenom := 1.0 / (dot00*dot11 - dot01*dot01)
	u := (dot11*dot02 - dot01*dot12) * invDenom
	v := (dot00*dot12 - dot01*dot02) * invDenom

	return math3d.V3(1-u-v, v, u)
}

// interpolateColor3 interpolates between 3 colors using barycentric coords.
func interpolateColor3(c0, c1, c2 Color, bc math3d.Vec3) Color {
	return RGB(
		uint8(float64(c0.R)*bc.X+float64(c1.R)*bc.Y+float64(c2.R)*bc.Z),
		uint8(float64(c0.G)*bc.X+float64(c1.G)*bc.Y+float64(c2.G)*bc.Z),
		uint8(float64(c0.B)*bc.X+float64(c1.B)*bc.Y+float64(c2.B)*bc.Z),
	)
}

func min3(a, b, c float64) float64 {
	return math.Min(a, math.Min(b, c))
}

func max3(a, b, c float64) float64 {
	return math.Max(a, math.Max(b, c))
}

// MeshRenderer is the mesh view the rasterizer needs. It is declared here so
// render does not import models.
type MeshRenderer interface {
	VertexCount() int
	TriangleCount() int
	GetVertex(i int) (pos, normal math3d.Vec3, uv math3d.Vec2)
	GetFace(i int) [3]int
}

// BoundedMeshRenderer is a mesh that can be frustum culled.
type BoundedMeshRenderer interface {
	MeshRenderer
	GetBounds() (min, max math3d.Vec3)
}

// culled reports whether a bounded mesh lies outside the frustum.
func (r *Rasterizer) culled(mesh MeshRenderer, transform math3d.Mat4) bool {
	bounded, ok := mesh.(BoundedMeshRenderer)
	if !ok {
		return false
	}

	r.CullingStats.MeshesTested++
	lo, hi := bounded.GetBounds()
	if !r.IsVisibleTransformed(AABB{Min: lo, Max: hi}, transform) {
		r.CullingStats.MeshesCulled++
		return true
	}
	r.CullingStats.MeshesDrawn++
	return false
}

// worldTriangle transforms face i of mesh into world space.
func worldTriangle(mesh MeshRenderer, i int, transform math3d.Mat4, color Color) Triangle {
	var tri Triangle
	face := mesh.GetFace(i)
	for k := range 3 {
		p, n, uv := mesh.GetVertex(face[k])
		tri.V[k] = Vertex{
			Position: transform.MulVec3(p),
			Normal:   transform.MulVec3Dir(n).Normalize(),
			UV:       uv,
			Color:    color,
		}
	}
	return tri
}

// DrawMeshGouraud renders a mesh with per-vertex lighting.
func (r *Rasterizer) DrawMeshGouraud(mesh MeshRenderer, transform math3d.Mat4, color Color, light Light) {
	if r.culled(mesh, transform) {
		return
	}
	for i := 0; i < mesh.TriangleCount(); i++ {
		r.DrawTriangleGouraud(worldTriangle(mesh, i, transform, color), light)
	}
}

// DrawMeshTexturedGouraud renders a textured mesh with per-vertex lighting.
func (r *Rasterizer) DrawMeshTexturedGouraud(mesh MeshRenderer, transform math3d.Mat4, tex *Texture, light Light) {
	if r.culled(mesh, transform) {
		return
	}
	for i := 0; i < mesh.TriangleCount(); i++ {
		r.DrawTriangleTexturedGouraud(worldTriangle(mesh, i, transform, ColorWhite), tex, light)
	}
}

// DrawMeshWireframe renders the edges of every triangle.
func (r *Rasterizer) DrawMeshWireframe(mesh MeshRenderer, transform math3d.Mat4, color Color) {
	if r.culled(mesh, transform) {
		return
	}
	for i := 0; i < mesh.TriangleCount(); i++ {
		tri := worldTriangle(mesh, i, transform, color)
		r.drawLine3D(tri.V[0].Position, tri.V[1].Position, color)
		r.drawLine3D(tri.V[1].Position, tri.V[2].Position, color)
		r.drawLine3D(tri.V[2].Position, tri.V[0].Position, color)
	}
}

// drawLine3D projects a segment and draws it without depth testing.
func (r *Rasterizer) drawLine3D(a, b math3d.Vec3, color Color) {
	viewProj := r.camera.ViewProjectionMatrix()

	clipA := viewProj.MulVec4(math3d.V4FromV3(a, 1))
	clipB := viewProj.MulVec4(math3d.V4FromV3(b, 1))
	if clipA.W <= 0 && clipB.W <= 0 {
		return
	}
	if clipA.W > 0 {
		clipA.X /= clipA.W
		clipA.Y /= clipA.W
	}
	if clipB.W > 0 {
		clipB.X /= clipB.W
		clipB.Y /= clipB.W
	}

	x0 := int((clipA.X + 1) * 0.5 * float64(r.Width()))
	y0 := int((1 - clipA.Y) * 0.5 * float64(r.Height()))
	x1 := int((clipB.X + 1) * 0.5 * float64(r.Width()))
	y1 := int((1 - clipB.Y) * 0.5 * float64(r.Height()))

	r.fb.DrawLine(x0, y0, x1, y1, color)
}
