package models

import (
	"math"
	"testing"

	"github.com/taigrr/shelf/pkg/math3d"
)

// checkOutward verifies that every face winds clockwise around a normal
// pointing away from the mesh center.
func checkOutward(t *testing.T, m *Mesh) {
	t.Helper()
	center := m.Center()
	for i, f := range m.Faces {
		v0 := m.Vertices[f.V[0]].Position
		v1 := m.Vertices[f.V[1]].Position
		v2 := m.Vertices[f.V[2]].Position
		n := faceNormal(v0, v1, v2)
		mid := v0.Add(v1).Add(v2).Scale(1.0 / 3)
		if n.Dot(mid.Sub(center)) <= 0 {
			t.Fatalf("face %d of %s faces inward", i, m.Name)
		}
	}
}

func TestNewBox(t *testing.T) {
	m := NewBox("body", math3d.V3(-1, 0, -0.5), math3d.V3(1, 0.5, 0.5))

	if m.TriangleCount() != 12 || m.VertexCount() != 24 {
		t.Errorf("got %d triangles %d vertices, want 12 24", m.TriangleCount(), m.VertexCount())
	}
	if m.BoundsMin != math3d.V3(-1, 0, -0.5) || m.BoundsMax != math3d.V3(1, 0.5, 0.5) {
		t.Errorf("bounds = %+v %+v", m.BoundsMin, m.BoundsMax)
	}
	checkOutward(t, m)

	for _, v := range m.Vertices {
		if math.Abs(v.Normal.Len()-1) > 1e-9 {
			t.Fatalf("normal %+v is not unit length", v.Normal)
		}
	}
}

func TestNewCylinder(t *testing.T) {
	tests := []struct {
		segments int
		wantTris int
	}{
		{16, 64},
		{1, 12}, // raised to three segments
	}
	for _, tt := range tests {
		m := NewCylinder("hole", 0.5, 2, tt.segments)
		if m.TriangleCount() != tt.wantTris {
			t.Errorf("segments=%d: TriangleCount() = %d, want %d", tt.segments, m.TriangleCount(), tt.wantTris)
		}
		if m.BoundsMin.Y != 0 || m.BoundsMax.Y != 2 {
			t.Errorf("segments=%d: y bounds = [%v, %v], want [0, 2]", tt.segments, m.BoundsMin.Y, m.BoundsMax.Y)
		}
		checkOutward(t, m)
	}
}

func TestMeshNormalize(t *testing.T) {
	m := NewBox("room", math3d.V3(2, 2, 2), math3d.V3(6, 4, 3))
	m.Normalize(2)

	if c := m.Center(); c.Len() > 1e-9 {
		t.Errorf("Center() = %+v, want origin", c)
	}
	if s := m.Size(); math.Abs(s.X-2) > 1e-9 || math.Abs(s.Y-1) > 1e-9 {
		t.Errorf("Size() = %+v, want x=2 y=1", s)
	}
}

func BenchmarkNewCylinder(b *testing.B) {
	for b.Loop() {
		NewCylinder("hole", 0.12, 0.5, 24)
	}
}
