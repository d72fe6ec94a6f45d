package render

import (
	"math"

	"github.com/taigrr/shelf/pkg/math3d"
)

// Reflector is a rectangular planar mirror.
type Reflector struct {
	Name      string
	Center    math3d.Vec3
	Normal    math3d.Vec3 // Faces the viewer side of the mirror
	Width     float64
	Height    float64
	Intensity float64 // Weight of the reflected image over the surface
	Opacity   float64 // Weight of the surface over what is behind it
	Color     Color
}

// DefaultReflectors returns the floor plus the two wall panels of the room.
func DefaultReflectors() []Reflector {
	glass := RGB(0x22, 0x22, 0x22)
	tilt := -math.Pi / 1.025
	return []Reflector{
		{
			Name:      "floor",
			Center:    math3d.Zero3(),
			Normal:    math3d.Up(),
			Width:     4,
			Height:    4,
			Intensity: 0.5,
			Opacity:   0.05,
			Color:     glass,
		},
		{
			Name:      "wall",
			Center:    math3d.V3(0, 1, 1.75),
			Normal:    math3d.V3(0, 0, -1),
			Width:     1.74,
			Height:    1.96,
			Intensity: 0.1,
			Opacity:   1,
			Color:     glass,
		},
		{
			Name:      "panel",
			Center:    math3d.V3(-1.16, 0.6, 1.64),
			Normal:    math3d.V3(0, -math.Sin(tilt), math.Cos(tilt)),
			Width:     0.25,
			Height:    1.11,
			Intensity: 0.5,
			Opacity:   1,
			Color:     glass,
		},
	}
}

func (rf Reflector) unitNormal() math3d.Vec3 {
	return rf.Normal.Normalize()
}

// Plane returns the mirror plane.
func (rf Reflector) Plane() Plane {
	n := rf.unitNormal()
	return Plane{Normal: n, D: -n.Dot(rf.Center)}
}

// Matrix returns the transform that mirrors world points across the plane.
func (rf Reflector) Matrix() math3d.Mat4 {
	p := rf.Plane()
	return math3d.Reflection(p.Normal, p.D)
}

// Corners returns the mirror's corners counter-clockwise as seen from the
// side the normal faces.
func (rf Reflector) Corners() [4]math3d.Vec3 {
	n := rf.unitNormal()
	hint := math3d.Up()
	if math.Abs(n.Dot(hint)) > 0.99 {
		hint = math3d.V3(0, 0, -1)
	}
	right := hint.Cross(n).Normalize().Scale(rf.Width / 2)
	up := n.Cross(right).Normalize().Scale(rf.Height / 2)
	c := rf.Center
	return [4]math3d.Vec3{
		c.Sub(right).Sub(up),
		c.Add(right).Sub(up),
		c.Add(right).Add(up),
		c.Sub(right).Add(up),
	}
}

// Faces reports whether eye is on the reflecting side of the mirror.
func (rf Reflector) Faces(eye math3d.Vec3) bool {
	return rf.Plane().DistanceToPoint(eye) > 0
}

// DrawSurface draws the mirror quad blended by its opacity and marks the
// covered pixels in the stencil buffer. It does not write depth.
func (r *Rasterizer) DrawSurface(rf Reflector, light Light) {
	saved := r.state()
	defer r.restore(saved)

	r.DepthWrite = false
	r.DisableBackfaceCulling = true
	r.Blend = rf.Opacity
	r.Stencil = StencilWrite

	c := rf.Corners()
	r.DrawQuad(c[0], c[1], c[2], c[3], rf.Color, light)
}

// DrawReflection renders the mirror image of a scene into rf. draw is called
// once with the mirror matrix, which it must premultiply onto every model
// transform, and the light mirrored to match. Nothing is drawn when the
// camera is behind the mirror.
func (r *Rasterizer) DrawReflection(rf Reflector, light Light, draw func(mirror math3d.Mat4, light Light)) {
	if !rf.Faces(r.camera.Position) {
		return
	}

	r.ClearStencil()
	r.DrawSurface(rf, light)

	saved := r.state()
	defer r.restore(saved)

	r.ClearDepth()
	r.DisableBackfaceCulling = true
	r.Blend = rf.Intensity
	r.Stencil = StencilTest

	mirror := rf.Matrix()
	mirrored := light
	mirrored.Dir = mirror.MulVec3Dir(light.Dir)
	draw(mirror, mirrored)

	r.ClearDepth()
}

type rasterState struct {
	cull       bool
	depthWrite bool
	blend      float64
	stencil    StencilMode
}

func (r *Rasterizer) state() rasterState {
	return rasterState{r.DisableBackfaceCulling, r.DepthWrite, r.Blend, r.Stencil}
}

func (r *Rasterizer) restore(s rasterState) {
	r.DisableBackfaceCulling = s.cull
	r.DepthWrite = s.depthWrite
	r.Blend = s.blend
	r.Stencil = s.stencil
}
