package render

import (
	"math"

	"github.com/taigrr/shelf/pkg/math3d"
)

// Plane is the plane Normal·p + D = 0.
type Plane struct {
	Normal math3d.Vec3
	D      float64
}

// Normalize rescales the plane so the normal has unit length.
func (p *Plane) Normalize() {
	l := p.Normal.Len()
	if l == 0 {
		return
	}
	p.Normal = p.Normal.Scale(1.0 / l)
	p.D /= l
}

// DistanceToPoint returns the signed distance from the plane to a point.
// Positive is on the side the normal points to.
func (p Plane) DistanceToPoint(point math3d.Vec3) float64 {
	return p.Normal.Dot(point) + p.D
}

// Frustum holds the six inward-facing planes of a view volume, ordered
// Left, Right, Bottom, Top, Near, Far.
type Frustum struct {
	Planes [6]Plane
}

const (
	FrustumLeft = iota
	FrustumRight
	FrustumBottom
	FrustumTop
	FrustumNear
	FrustumFar
)

// NewFrustumFromMatrix extracts the frustum planes of a view-projection
// matrix (Gribb/Hartmann). Works for both perspective and orthographic
// projections.
func NewFrustumFromMatrix(m math3d.Mat4) Frustum {
	var f Frustum

	// Row i, column j of the column-major matrix is m[i+j*4].
	row := func(i int) (float64, float64, float64, float64) {
		return m[i], m[i+4], m[i+8], m[i+12]
	}
	wx, wy, wz, ww := row(3)
	for i := range 3 {
		x, y, z, w := row(i)
		f.Planes[2*i] = Plane{Normal: math3d.V3(wx+x, wy+y, wz+z), D: ww + w}
		f.Planes[2*i+1] = Plane{Normal: math3d.V3(wx-x, wy-y, wz-z), D: ww - w}
	}

	for i := range f.Planes {
		f.Planes[i].Normalize()
	}
	return f
}

// IntersectAABB reports whether any part of box is inside the frustum.
func (f Frustum) IntersectAABB(box AABB) bool {
	for _, plane := range f.Planes {
		// The corner furthest along the normal is the last to leave the plane.
		p := math3d.V3(
			pick(plane.Normal.X >= 0, box.Max.X, box.Min.X),
			pick(plane.Normal.Y >= 0, box.Max.Y, box.Min.Y),
			pick(plane.Normal.Z >= 0, box.Max.Z, box.Min.Z),
		)
		if plane.DistanceToPoint(p) < 0 {
			return false
		}
	}
	return true
}

// ContainsPoint reports whether p is inside the frustum.
func (f Frustum) ContainsPoint(p math3d.Vec3) bool {
	for i := range f.Planes {
		if f.Planes[i].DistanceToPoint(p) < 0 {
			return false
		}
	}
	return true
}

func pick(cond bool, a, b float64) float64 {
	if cond {
		return a
	}
	return b
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min math3d.Vec3
	Max math3d.Vec3
}

// NewAABB creates an AABB from min and max corners.
func NewAABB(min, max math3d.Vec3) AABB {
	return AABB{Min: min, Max: max}
}

// Center returns the center of the box.
func (b AABB) Center() math3d.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the edge lengths of the box.
func (b AABB) Size() math3d.Vec3 {
	return b.Max.Sub(b.Min)
}

// Transform returns the box bounding all eight corners of b after m.
func (b AABB) Transform(m math3d.Mat4) AABB {
	out := AABB{Min: m.MulVec3(b.Min), Max: m.MulVec3(b.Min)}
	for i := 1; i < 8; i++ {
		c := math3d.V3(
			pick(i&1 != 0, b.Max.X, b.Min.X),
			pick(i&2 != 0, b.Max.Y, b.Min.Y),
			pick(i&4 != 0, b.Max.Z, b.Min.Z),
		)
		p := m.MulVec3(c)
		out.Min = out.Min.Min(p)
		out.Max = out.Max.Max(p)
	}
	return out
}

// ContainsPoint reports whether p lies inside or on the box.
func (b AABB) ContainsPoint(p math3d.Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// IntersectRay returns the ray parameter of the first point where r enters
// the box, using the slab method. A ray starting inside the box hits at t=0.
// ok is false when the ray misses or the box is entirely behind the origin.
func (b AABB) IntersectRay(r math3d.Ray) (t float64, ok bool) {
	tmin, tmax := math.Inf(-1), math.Inf(1)

	origin := [3]float64{r.Origin.X, r.Origin.Y, r.Origin.Z}
	dir := [3]float64{r.Dir.X, r.Dir.Y, r.Dir.Z}
	lo := [3]float64{b.Min.X, b.Min.Y, b.Min.Z}
	hi := [3]float64{b.Max.X, b.Max.Y, b.Max.Z}

	for i := range 3 {
		if dir[i] == 0 {
			if origin[i] < lo[i] || origin[i] > hi[i] {
				return 0, false
			}
			continue
		}
		t1 := (lo[i] - origin[i]) / dir[i]
		t2 := (hi[i] - origin[i]) / dir[i]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}

	if tmax < 0 {
		return 0, false
	}
	return math.Max(tmin, 0), true
}

// Frustum returns the camera's current view frustum.
func (c *Camera) Frustum() Frustum {
	return NewFrustumFromMatrix(c.ViewProjectionMatrix())
}
