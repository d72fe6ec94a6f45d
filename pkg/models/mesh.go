// Package models loads furniture meshes from GLTF files and builds
// procedural stand-ins when an asset is missing.
package models

import (
	"image"
	"image/color"
	"math"

	"github.com/taigrr/shelf/pkg/math3d"
)

// Mesh represents a 3D mesh with vertices, faces, and materials.
type Mesh struct {
	Name      string
	Vertices  []MeshVertex
	Faces     []Face
	Materials []Material

	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3

	// Fallback is set on procedural meshes built in place of a missing file.
	Fallback bool
}

// MeshVertex holds all vertex attributes.
type MeshVertex struct {
	Position math3d.Vec3
	Normal   math3d.Vec3
	UV       math3d.Vec2
}

// Face represents a triangle face with vertex indices and material reference.
type Face struct {
	V        [3]int // Indices into Mesh.Vertices
	Material int    // Index into Mesh.Materials (-1 for no material)
}

// Material is the PBR metallic-roughness subset the rasterizer uses.
type Material struct {
	Name      string
	BaseColor [4]float64 // RGBA in 0-1 range
	Metallic  float64
	Roughness float64
	BaseMap   image.Image
}

// HasTexture reports whether the material carries a base color image.
func (m Material) HasTexture() bool {
	return m.BaseMap != nil
}

// RGBA returns the base color as 8-bit components.
func (m Material) RGBA() color.RGBA {
	c := func(f float64) uint8 {
		return uint8(math.Round(math.Max(0, math.Min(1, f)) * 255))
	}
	return color.RGBA{c(m.BaseColor[0]), c(m.BaseColor[1]), c(m.BaseColor[2]), c(m.BaseColor[3])}
}

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{
		Name:      name,
		Vertices:  make([]MeshVertex, 0),
		Faces:     make([]Face, 0),
		BoundsMin: math3d.V3(0, 0, 0),
		BoundsMax: math3d.V3(0, 0, 0),
	}
}

// CalculateBounds computes the axis-aligned bounding box.
func (m *Mesh) CalculateBounds() {
	if len(m.Vertices) == 0 {
		return
	}

	m.BoundsMin = m.Vertices[0].Position
	m.BoundsMax = m.Vertices[0].Position

	for _, v := range m.Vertices[1:] {
		m.BoundsMin = m.BoundsMin.Min(v.Position)
		m.BoundsMax = m.BoundsMax.Max(v.Position)
	}
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	return m.BoundsMin.Add(m.BoundsMax).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	return m.BoundsMax.Sub(m.BoundsMin)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Faces)
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// CalculateNormals assigns each face normal to its vertices. Vertices
// shared between faces end up with the last face's normal.
func (m *Mesh) CalculateNormals() {
	for i := range m.Faces {
		f := &m.Faces[i]
		v0 := m.Vertices[f.V[0]].Position
		v1 := m.Vertices[f.V[1]].Position
		v2 := m.Vertices[f.V[2]].Position

		normal := faceNormal(v0, v1, v2).Normalize()

		m.Vertices[f.V[0]].Normal = normal
		m.Vertices[f.V[1]].Normal = normal
		m.Vertices[f.V[2]].Normal = normal
	}
}

// CalculateSmoothNormals computes averaged normals for smooth shading.
func (m *Mesh) CalculateSmoothNormals() {
	for i := range m.Vertices {
		m.Vertices[i].Normal = math3d.Zero3()
	}

	for _, f := range m.Faces {
		v0 := m.Vertices[f.V[0]].Position
		v1 := m.Vertices[f.V[1]].Position
		v2 := m.Vertices[f.V[2]].Position

		// Unnormalized, so larger faces weigh more.
		normal := faceNormal(v0, v1, v2)

		m.Vertices[f.V[0]].Normal = m.Vertices[f.V[0]].Normal.Add(normal)
		m.Vertices[f.V[1]].Normal = m.Vertices[f.V[1]].Normal.Add(normal)
		m.Vertices[f.V[2]].Normal = m.Vertices[f.V[2]].Normal.Add(normal)
	}

	for i := range m.Vertices {
		m.Vertices[i].Normal = m.Vertices[i].Normal.Normalize()
	}
}

// faceNormal returns the front-face normal of a clockwise triangle.
func faceNormal(v0, v1, v2 math3d.Vec3) math3d.Vec3 {
	return v2.Sub(v0).Cross(v1.Sub(v0))
}

// Transform applies a transformation matrix to all vertices. Normals are
// transformed by the rotation part only, so non-uniform scales skew them.
func (m *Mesh) Transform(mat math3d.Mat4) {
	for i := range m.Vertices {
		m.Vertices[i].Position = mat.MulVec3(m.Vertices[i].Position)
		m.Vertices[i].Normal = mat.MulVec3Dir(m.Vertices[i].Normal).Normalize()
	}
	m.CalculateBounds()
}

// Normalize centers the mesh on the origin and scales its largest
// dimension to size.
func (m *Mesh) Normalize(size float64) {
	m.CalculateBounds()
	dims := m.Size()
	maxDim := math.Max(dims.X, math.Max(dims.Y, dims.Z))
	if maxDim == 0 {
		return
	}
	center := m.Center()
	m.Transform(math3d.ScaleUniform(size / maxDim).Mul(math3d.Translate(center.Negate())))
}

// Clone creates a deep copy of the mesh.
func (m *Mesh) Clone() *Mesh {
	clone := &Mesh{
		Name:      m.Name,
		Vertices:  make([]MeshVertex, len(m.Vertices)),
		Faces:     make([]Face, len(m.Faces)),
		Materials: make([]Material, len(m.Materials)),
		BoundsMin: m.BoundsMin,
		BoundsMax: m.BoundsMax,
		Fallback:  m.Fallback,
	}
	copy(clone.Vertices, m.Vertices)
	copy(clone.Faces, m.Faces)
	copy(clone.Materials, m.Materials)
	return clone
}

// GetVertex returns the position, normal, and UV for vertex i.
func (m *Mesh) GetVertex(i int) (pos, normal math3d.Vec3, uv math3d.Vec2) {
	v := m.Vertices[i]
	return v.Position, v.Normal, v.UV
}

// GetFace returns the vertex indices for face i.
func (m *Mesh) GetFace(i int) [3]int {
	return m.Faces[i].V
}

// GetFaceMaterial returns the material index for face i.
// Returns -1 if no material assigned.
func (m *Mesh) GetFaceMaterial(i int) int {
	return m.Faces[i].Material
}

// GetMaterial returns the material at index i.
// Returns nil if index is out of bounds or -1.
func (m *Mesh) GetMaterial(i int) *Material {
	if i < 0 || i >= len(m.Materials) {
		return nil
	}
	return &m.Materials[i]
}

// BaseColor returns the color of the first material, or mid gray.
func (m *Mesh) BaseColor() color.RGBA {
	if len(m.Materials) == 0 {
		return color.RGBA{180, 180, 180, 255}
	}
	return m.Materials[0].RGBA()
}

// MaterialCount returns the number of materials.
func (m *Mesh) MaterialCount() int {
	return len(m.Materials)
}

// GetBounds returns the axis-aligned bounding box.
func (m *Mesh) GetBounds() (min, max math3d.Vec3) {
	return m.BoundsMin, m.BoundsMax
}
