package models

import (
	"math"

	"github.com/taigrr/shelf/pkg/math3d"
)

// NewBox builds an axis-aligned box between min and max with one flat
// quad per side.
func NewBox(name string, min, max math3d.Vec3) *Mesh {
	m := NewMesh(name)
	c := min.Add(max).Scale(0.5)
	h := max.Sub(min).Scale(0.5)

	sides := []struct{ n, u, v math3d.Vec3 }{
		{math3d.V3(1, 0, 0), math3d.V3(0, h.Y, 0), math3d.V3(0, 0, h.Z)},
		{math3d.V3(-1, 0, 0), math3d.V3(0, 0, h.Z), math3d.V3(0, h.Y, 0)},
		{math3d.V3(0, 1, 0), math3d.V3(0, 0, h.Z), math3d.V3(h.X, 0, 0)},
		{math3d.V3(0, -1, 0), math3d.V3(h.X, 0, 0), math3d.V3(0, 0, h.Z)},
		{math3d.V3(0, 0, 1), math3d.V3(h.X, 0, 0), math3d.V3(0, h.Y, 0)},
		{math3d.V3(0, 0, -1), math3d.V3(0, h.Y, 0), math3d.V3(h.X, 0, 0)},
	}
	for _, s := range sides {
		center := c.Add(math3d.V3(s.n.X*h.X, s.n.Y*h.Y, s.n.Z*h.Z))
		m.addQuad(
			center.Sub(s.u).Sub(s.v),
			center.Add(s.u).Sub(s.v),
			center.Add(s.u).Add(s.v),
			center.Sub(s.u).Add(s.v),
			s.n,
		)
	}
	m.CalculateBounds()
	return m
}

// NewCylinder builds a capped cylinder standing on the XZ plane at the
// origin, with its axis along +Y.
func NewCylinder(name string, radius, height float64, segments int) *Mesh {
	segments = max(segments, 3)
	m := NewMesh(name)

	ring := func(i int, y float64) (math3d.Vec3, math3d.Vec3) {
		a := 2 * math.Pi * float64(i%segments) / float64(segments)
		n := math3d.V3(math.Sin(a), 0, math.Cos(a))
		return n.Scale(radius).Add(math3d.V3(0, y, 0)), n
	}

	top := m.addVertex(math3d.V3(0, height, 0), math3d.Up(), math3d.V2(0.5, 0.5))
	bottom := m.addVertex(math3d.Zero3(), math3d.Up().Negate(), math3d.V2(0.5, 0.5))

	for i := range segments {
		p0, n0 := ring(i, 0)
		p1, n1 := ring(i+1, 0)
		p2, n2 := ring(i+1, height)
		p3, n3 := ring(i, height)

		u0 := float64(i) / float64(segments)
		u1 := float64(i+1) / float64(segments)
		a := m.addVertex(p0, n0, math3d.V2(u0, 0))
		b := m.addVertex(p1, n1, math3d.V2(u1, 0))
		c := m.addVertex(p2, n2, math3d.V2(u1, 1))
		d := m.addVertex(p3, n3, math3d.V2(u0, 1))
		m.addTriangle(a, c, b, n0)
		m.addTriangle(a, d, c, n0)

		tc := m.addVertex(p3, math3d.Up(), math3d.V2(0.5+n3.X/2, 0.5+n3.Z/2))
		tn := m.addVertex(p2, math3d.Up(), math3d.V2(0.5+n2.X/2, 0.5+n2.Z/2))
		m.addTriangle(top, tc, tn, math3d.Up())

		bc := m.addVertex(p0, math3d.Up().Negate(), math3d.V2(0.5+n0.X/2, 0.5+n0.Z/2))
		bn := m.addVertex(p1, math3d.Up().Negate(), math3d.V2(0.5+n1.X/2, 0.5+n1.Z/2))
		m.addTriangle(bottom, bc, bn, math3d.Up().Negate())
	}
	m.CalculateBounds()
	return m
}

func (m *Mesh) addVertex(p, n math3d.Vec3, uv math3d.Vec2) int {
	m.Vertices = append(m.Vertices, MeshVertex{Position: p, Normal: n, UV: uv})
	return len(m.Vertices) - 1
}

// addTriangle appends a face, flipping its winding when needed so that
// it faces along n.
func (m *Mesh) addTriangle(a, b, c int, n math3d.Vec3) {
	fn := faceNormal(m.Vertices[a].Position, m.Vertices[b].Position, m.Vertices[c].Position)
	if fn.Dot(n) < 0 {
		b, c = c, b
	}
	m.Faces = append(m.Faces, Face{V: [3]int{a, b, c}, Material: -1})
}

// addQuad appends four corners given counter-clockwise as seen from the
// side n points to.
func (m *Mesh) addQuad(p0, p1, p2, p3, n math3d.Vec3) {
	a := m.addVertex(p0, n, math3d.V2(0, 0))
	b := m.addVertex(p1, n, math3d.V2(1, 0))
	c := m.addVertex(p2, n, math3d.V2(1, 1))
	d := m.addVertex(p3, n, math3d.V2(0, 1))
	m.addTriangle(a, c, b, n)
	m.addTriangle(a, d, c, n)
}
