package models

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/taigrr/shelf/pkg/math3d"
)

// ErrNodeNotFound is returned by LoadNode when no node has the given name.
var ErrNodeNotFound = errors.New("node not found")

// GLTFLoader loads GLTF/GLB files into Mesh format.
type GLTFLoader struct {
	CalculateNormals bool
	SmoothNormals    bool
}

// NewGLTFLoader creates a new GLTF loader with default options.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{
		CalculateNormals: true,
		SmoothNormals:    true,
	}
}

// LoadGLB loads a binary or JSON GLTF file with default options.
func LoadGLB(path string) (*Mesh, error) {
	return NewGLTFLoader().Load(path)
}

// Load merges every mesh in the document into one Mesh.
func (l *GLTFLoader) Load(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}

	return l.fromDocument(doc, filepath.Base(path))
}

func (l *GLTFLoader) fromDocument(doc *gltf.Document, name string) (*Mesh, error) {
	mesh := NewMesh(name)
	mesh.Materials = readMaterials(doc)
	for _, m := range doc.Meshes {
		if err := l.processMesh(doc, m, mesh); err != nil {
			return nil, fmt.Errorf("process mesh %q: %w", m.Name, err)
		}
	}
	l.finish(mesh)
	return mesh, nil
}

// LoadNode loads only the mesh attached to the node called name. The node
// transform is ignored; scenes place the geometry themselves.
func (l *GLTFLoader) LoadNode(path, name string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}

	var node *gltf.Node
	for _, n := range doc.Nodes {
		if n.Name == name && n.Mesh != nil {
			node = n
			break
		}
	}
	if node == nil {
		return nil, fmt.Errorf("load %s: %q: %w", filepath.Base(path), name, ErrNodeNotFound)
	}

	mesh := NewMesh(name)
	mesh.Materials = readMaterials(doc)
	m := doc.Meshes[*node.Mesh]
	if err := l.processMesh(doc, m, mesh); err != nil {
		return nil, fmt.Errorf("process mesh %q: %w", m.Name, err)
	}
	l.finish(mesh)
	return mesh, nil
}

func (l *GLTFLoader) finish(mesh *Mesh) {
	hasNormals := false
	for _, v := range mesh.Vertices {
		if v.Normal.Len() > 0.001 {
			hasNormals = true
			break
		}
	}

	if l.CalculateNormals && !hasNormals {
		if l.SmoothNormals {
			mesh.CalculateSmoothNormals()
		} else {
			mesh.CalculateNormals()
		}
	}
	mesh.CalculateBounds()
}

// readMaterials converts the document's PBR factors. Textures are left to
// LoadGLBWithTexture.
func readMaterials(doc *gltf.Document) []Material {
	out := make([]Material, 0, len(doc.Materials))
	for _, m := range doc.Materials {
		mat := Material{Name: m.Name, BaseColor: [4]float64{1, 1, 1, 1}, Roughness: 1, Metallic: 1}
		if pbr := m.PBRMetallicRoughness; pbr != nil {
			mat.BaseColor = pbr.BaseColorFactorOrDefault()
			mat.Metallic = pbr.MetallicFactorOrDefault()
			mat.Roughness = pbr.RoughnessFactorOrDefault()
		}
		out = append(out, mat)
	}
	return out
}

// processMesh appends the triangle primitives of m to mesh.
func (l *GLTFLoader) processMesh(doc *gltf.Document, m *gltf.Mesh, mesh *Mesh) error {
	for _, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			continue
		}

		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}
		positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
		if err != nil {
			return fmt.Errorf("read positions: %w", err)
		}

		var normals [][3]float32
		if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
			normals, err = modeler.ReadNormal(doc, doc.Accessors[idx], nil)
			if err != nil {
				return fmt.Errorf("read normals: %w", err)
			}
		}

		var uvs [][2]float32
		if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
			uvs, err = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil)
			if err != nil {
				return fmt.Errorf("read uvs: %w", err)
			}
		}

		material := -1
		if prim.Material != nil && *prim.Material < len(mesh.Materials) {
			material = *prim.Material
		}

		base := len(mesh.Vertices)
		for i, p := range positions {
			v := MeshVertex{Position: vec3(p)}
			if i < len(normals) {
				v.Normal = vec3(normals[i])
			}
			if i < len(uvs) {
				// GLTF puts V=0 at the top of the image.
				v.UV = math3d.V2(float64(uvs[i][0]), 1-float64(uvs[i][1]))
			}
			mesh.Vertices = append(mesh.Vertices, v)
		}

		var indices []uint32
		if prim.Indices != nil {
			indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
			if err != nil {
				return fmt.Errorf("read indices: %w", err)
			}
		} else {
			indices = make([]uint32, len(positions))
			for i := range indices {
				indices[i] = uint32(i)
			}
		}

		// GLTF front faces are counter-clockwise; the rasterizer wants
		// clockwise, so the last two corners swap.
		for i := 0; i+2 < len(indices); i += 3 {
			face := [3]int{base + int(indices[i]), base + int(indices[i+2]), base + int(indices[i+1])}
			if face[0] >= len(mesh.Vertices) || face[1] >= len(mesh.Vertices) || face[2] >= len(mesh.Vertices) {
				return fmt.Errorf("face %d: index out of range", i/3)
			}
			mesh.Faces = append(mesh.Faces, Face{V: face, Material: material})
		}
	}
	return nil
}

func vec3(p [3]float32) math3d.Vec3 {
	return math3d.V3(float64(p[0]), float64(p[1]), float64(p[2]))
}

// readImages returns the encoded bytes of every image in the document,
// keyed by image index. Images that cannot be read are skipped.
func readImages(doc *gltf.Document, dir string) map[int][]byte {
	images := make(map[int][]byte)
	for i, img := range doc.Images {
		switch {
		case img.BufferView != nil:
			data, err := modeler.ReadBufferView(doc, doc.BufferViews[*img.BufferView])
			if err == nil {
				images[i] = data
			}
		case img.IsEmbeddedResource():
			data, err := img.MarshalData()
			if err == nil {
				images[i] = data
			}
		case img.URI != "":
			data, err := os.ReadFile(filepath.Join(dir, img.URI))
			if err == nil {
				images[i] = data
			}
		}
	}
	return images
}

// LoadGLBWithTexture loads the whole document and decodes its first
// readable image. The image is nil when the file has none.
func LoadGLBWithTexture(path string) (*Mesh, image.Image, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open gltf: %w", err)
	}

	mesh, err := NewGLTFLoader().fromDocument(doc, filepath.Base(path))
	if err != nil {
		return nil, nil, err
	}

	images := readImages(doc, filepath.Dir(path))
	for i := range len(doc.Images) {
		data, ok := images[i]
		if !ok || len(data) == 0 {
			continue
		}
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			continue
		}
		for j := range mesh.Materials {
			mesh.Materials[j].BaseMap = img
		}
		return mesh, img, nil
	}
	return mesh, nil, nil
}
