package render

import (
	"math"

	"github.com/taigrr/shelf/pkg/math3d"
)

// Projection selects how the camera maps view space to clip space.
type Projection int

const (
	Perspective Projection = iota
	Orthographic
)

func (p Projection) String() string {
	if p == Orthographic {
		return "ortho"
	}
	return "perspective"
}

// Camera looks from Position at Target.
type Camera struct {
	Position math3d.Vec3
	Target   math3d.Vec3
	Up       math3d.Vec3

	Projection  Projection
	FOV         float64 // Vertical field of view in radians (perspective)
	OrthoHeight float64 // Visible world height (orthographic)
	AspectRatio float64 // Width / Height
	Near        float64
	Far         float64

	viewMatrix     math3d.Mat4
	projMatrix     math3d.Mat4
	viewProjMatrix math3d.Mat4
	viewDirty      bool
	projDirty      bool
	vpDirty        bool
}

// NewCamera creates a perspective camera looking at the origin.
func NewCamera() *Camera {
	return &Camera{
		Position:    math3d.V3(0, 0, 5),
		Up:          math3d.Up(),
		FOV:         math.Pi / 3,
		OrthoHeight: 3,
		AspectRatio: 16.0 / 9.0,
		Near:        0.1,
		Far:         100,
		viewDirty:   true,
		projDirty:   true,
	}
}

// SetPosition moves the eye without changing the target.
func (c *Camera) SetPosition(pos math3d.Vec3) {
	c.Position = pos
	c.viewDirty = true
}

// LookAt points the camera at target.
func (c *Camera) LookAt(target math3d.Vec3) {
	c.Target = target
	c.viewDirty = true
}

// Orbit places the eye on a sphere of radius distance around target.
// yaw rotates about the world Y axis, pitch lifts the eye above the
// horizon. Pitch is clamped short of the poles.
func (c *Camera) Orbit(target math3d.Vec3, distance, yaw, pitch float64) {
	const maxPitch = math.Pi/2 - 0.01
	pitch = math.Max(-maxPitch, math.Min(maxPitch, pitch))

	offset := math3d.V3(
		math.Sin(yaw)*math.Cos(pitch),
		math.Sin(pitch),
		math.Cos(yaw)*math.Cos(pitch),
	).Scale(distance)

	c.Target = target
	c.Position = target.Add(offset)
	c.viewDirty = true
}

// SetAspectRatio sets width / height.
func (c *Camera) SetAspectRatio(aspect float64) {
	c.AspectRatio = aspect
	c.projDirty = true
}

// SetProjection switches between perspective and orthographic.
func (c *Camera) SetProjection(p Projection) {
	c.Projection = p
	c.projDirty = true
}

// ToggleProjection flips between perspective and orthographic.
func (c *Camera) ToggleProjection() {
	if c.Projection == Perspective {
		c.SetProjection(Orthographic)
	} else {
		c.SetProjection(Perspective)
	}
}

// SetOrthoHeight sets the visible world height in orthographic mode.
func (c *Camera) SetOrthoHeight(h float64) {
	c.OrthoHeight = h
	c.projDirty = true
}

// Forward returns the unit view direction.
func (c *Camera) Forward() math3d.Vec3 {
	return c.Target.Sub(c.Position).Normalize()
}

// ViewMatrix returns the view matrix.
func (c *Camera) ViewMatrix() math3d.Mat4 {
	if c.viewDirty {
		c.viewMatrix = math3d.LookAt(c.Position, c.Target, c.Up)
		c.viewDirty = false
		c.vpDirty = true
	}
	return c.viewMatrix
}

// ProjectionMatrix returns the projection matrix.
func (c *Camera) ProjectionMatrix() math3d.Mat4 {
	if c.projDirty {
		switch c.Projection {
		case Orthographic:
			h := c.OrthoHeight / 2
			w := h * c.AspectRatio
			c.projMatrix = math3d.Orthographic(-w, w, -h, h, c.Near, c.Far)
		default:
			c.projMatrix = math3d.Perspective(c.FOV, c.AspectRatio, c.Near, c.Far)
		}
		c.projDirty = false
		c.vpDirty = true
	}
	return c.projMatrix
}

// ViewProjectionMatrix returns projection * view.
func (c *Camera) ViewProjectionMatrix() math3d.Mat4 {
	view, proj := c.ViewMatrix(), c.ProjectionMatrix()
	if c.vpDirty {
		c.viewProjMatrix = proj.Mul(view)
		c.vpDirty = false
	}
	return c.viewProjMatrix
}

// WorldToScreen projects a world point to screen coordinates.
func (c *Camera) WorldToScreen(worldPos math3d.Vec3, screenWidth, screenHeight int) (x, y, depth float64, visible bool) {
	clipPos := c.ViewProjectionMatrix().MulVec4(math3d.V4FromV3(worldPos, 1))
	if clipPos.W <= 0 {
		return 0, 0, 0, false
	}

	ndc := clipPos.PerspectiveDivide()
	if ndc.X < -1 || ndc.X > 1 || ndc.Y < -1 || ndc.Y > 1 || ndc.Z < -1 || ndc.Z > 1 {
		return 0, 0, 0, false
	}

	x = (ndc.X + 1) * 0.5 * float64(screenWidth)
	y = (1 - ndc.Y) * 0.5 * float64(screenHeight)
	return x, y, ndc.Z, true
}

// ScreenRay returns the world-space ray through screen point (sx, sy) of a
// w×h viewport. The ray starts on the near plane and its direction spans to
// the far plane.
func (c *Camera) ScreenRay(sx, sy float64, w, h int) math3d.Ray {
	nx := 2*sx/float64(w) - 1
	ny := 1 - 2*sy/float64(h)

	inv := c.ViewProjectionMatrix().Inverse()
	near := inv.MulVec4(math3d.Vec4{X: nx, Y: ny, Z: -1, W: 1}).PerspectiveDivide()
	far := inv.MulVec4(math3d.Vec4{X: nx, Y: ny, Z: 1, W: 1}).PerspectiveDivide()

	return math3d.Ray{Origin: near, Dir: far.Sub(near)}
}
