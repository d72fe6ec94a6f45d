// Package math3d provides the vector and matrix types used by the renderer
// and the scene picking code.
package math3d

import "math"

// Vec2 is a texture coordinate or a screen-space edge.
type Vec2 struct {
	X, Y float64
}

func V2(x, y float64) Vec2 { return Vec2{x, y} }

// Cross returns the z component of the 3D cross product of a and b.
func (a Vec2) Cross(b Vec2) float64 {
	return a.X*b.Y - a.Y*b.X
}

// Vec3 is a point or direction in model, world or view space.
type Vec3 struct {
	X, Y, Z float64
}

func V3(x, y, z float64) Vec3 { return Vec3{x, y, z} }

// Zero3 is the origin.
func Zero3() Vec3 { return Vec3{} }

// Up is +Y, the world's vertical and the normal of the floor and the
// layout plane.
func Up() Vec3 { return Vec3{Y: 1} }

func (a Vec3) Add(b Vec3) Vec3      { return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }
func (a Vec3) Sub(b Vec3) Vec3      { return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }
func (a Vec3) Scale(s float64) Vec3 { return Vec3{a.X * s, a.Y * s, a.Z * s} }
func (a Vec3) Negate() Vec3         { return Vec3{-a.X, -a.Y, -a.Z} }
func (a Vec3) Dot(b Vec3) float64   { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }

// Cross follows the right-hand rule: X.Cross(Y) is Z.
func (a Vec3) Cross(b Vec3) Vec3 {
	return Vec3{
		X: a.Y*b.Z - a.Z*b.Y,
		Y: a.Z*b.X - a.X*b.Z,
		Z: a.X*b.Y - a.Y*b.X,
	}
}

func (a Vec3) Len() float64 { return math.Sqrt(a.Dot(a)) }

// Normalize returns a unit vector along a, or the zero vector for zero.
func (a Vec3) Normalize() Vec3 {
	if l := a.Len(); l != 0 {
		return a.Scale(1 / l)
	}
	return Vec3{}
}

// Lerp moves from a toward b; t=0 is a and t=1 is b.
func (a Vec3) Lerp(b Vec3, t float64) Vec3 {
	return a.Add(b.Sub(a).Scale(t))
}

func (a Vec3) Distance(b Vec3) float64 { return a.Sub(b).Len() }

// Min and Max are component-wise; frustum bounds grow with them.
func (a Vec3) Min(b Vec3) Vec3 {
	return Vec3{math.Min(a.X, b.X), math.Min(a.Y, b.Y), math.Min(a.Z, b.Z)}
}

func (a Vec3) Max(b Vec3) Vec3 {
	return Vec3{math.Max(a.X, b.X), math.Max(a.Y, b.Y), math.Max(a.Z, b.Z)}
}

// IsFinite reports whether no component is NaN or infinite.
func (a Vec3) IsFinite() bool {
	for _, c := range [3]float64{a.X, a.Y, a.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Vec4 is a homogeneous point in clip space.
type Vec4 struct {
	X, Y, Z, W float64
}

// V4FromV3 lifts v to homogeneous coordinates: w=1 for points, 0 for
// directions.
func V4FromV3(v Vec3, w float64) Vec4 { return Vec4{v.X, v.Y, v.Z, w} }

func (v Vec4) Vec3() Vec3 { return Vec3{v.X, v.Y, v.Z} }

// PerspectiveDivide maps clip space to normalized device coordinates.
// A zero W leaves the xyz part as is.
func (v Vec4) PerspectiveDivide() Vec3 {
	if v.W == 0 {
		return v.Vec3()
	}
	return v.Vec3().Scale(1 / v.W)
}

// Ray is a half-line from Origin along Dir. Dir is not required to be unit
// length; parameters returned by the intersection helpers are in units of Dir.
type Ray struct {
	Origin Vec3
	Dir    Vec3
}

// At returns the point Origin + Dir*t.
func (r Ray) At(t float64) Vec3 {
	return r.Origin.Add(r.Dir.Scale(t))
}

// IntersectPlane returns the point where the ray's line meets the plane
// through point with the given normal. ok is false when the ray is parallel
// to the plane.
func (r Ray) IntersectPlane(point, normal Vec3) (hit Vec3, t float64, ok bool) {
	denom := normal.Dot(r.Dir)
	if math.Abs(denom) < 1e-12 {
		return Vec3{}, 0, false
	}
	t = normal.Dot(point.Sub(r.Origin)) / denom
	return r.At(t), t, true
}
