package models

import (
	"image"
	"image/color"
	"testing"
)

func TestMaterialRGBA(t *testing.T) {
	tests := []struct {
		name string
		base [4]float64
		want color.RGBA
	}{
		{"white", [4]float64{1, 1, 1, 1}, color.RGBA{255, 255, 255, 255}},
		{"oak", [4]float64{0.8, 0.6, 0.4, 1}, color.RGBA{204, 153, 102, 255}},
		{"clamped", [4]float64{-1, 0.5, 2, 1}, color.RGBA{0, 128, 255, 255}},
		{"translucent", [4]float64{0, 0, 0, 0.5}, color.RGBA{0, 0, 0, 128}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Material{Name: tt.name, BaseColor: tt.base}
			if got := m.RGBA(); got != tt.want {
				t.Errorf("RGBA() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMaterialHasTexture(t *testing.T) {
	m := Material{Name: "room"}
	if m.HasTexture() {
		t.Error("HasTexture() without a base map should be false")
	}
	m.BaseMap = image.NewRGBA(image.Rect(0, 0, 2, 2))
	if !m.HasTexture() {
		t.Error("HasTexture() with a base map should be true")
	}
}

func TestMeshBaseColor(t *testing.T) {
	mesh := NewMesh("hole")
	if got := mesh.BaseColor(); got != (color.RGBA{180, 180, 180, 255}) {
		t.Errorf("BaseColor() without materials = %v, want gray", got)
	}

	mesh.Materials = []Material{
		{Name: "lacquer", BaseColor: [4]float64{0.2, 0.2, 0.2, 1}},
		{Name: "edge", BaseColor: [4]float64{1, 1, 1, 1}},
	}
	if got := mesh.BaseColor(); got != (color.RGBA{51, 51, 51, 255}) {
		t.Errorf("BaseColor() = %v, want the first material", got)
	}
}

func TestFaceMaterialIndex(t *testing.T) {
	mesh := NewMesh("S")
	mesh.Materials = []Material{
		{Name: "carcass", BaseColor: [4]float64{1, 1, 1, 1}},
		{Name: "back", BaseColor: [4]float64{0.5, 0.5, 0.5, 1}},
	}
	mesh.Faces = []Face{
		{V: [3]int{0, 1, 2}, Material: 0},
		{V: [3]int{3, 4, 5}, Material: 1},
		{V: [3]int{6, 7, 8}, Material: -1},
	}

	tests := []struct {
		face     int
		material int
		name     string
	}{
		{0, 0, "carcass"},
		{1, 1, "back"},
		{2, -1, ""},
	}
	for _, tt := range tests {
		if got := mesh.GetFaceMaterial(tt.face); got != tt.material {
			t.Errorf("GetFaceMaterial(%d) = %d, want %d", tt.face, got, tt.material)
		}
		mat := mesh.GetMaterial(tt.material)
		switch {
		case tt.name == "" && mat != nil:
			t.Errorf("GetMaterial(%d) = %v, want nil", tt.material, mat.Name)
		case tt.name != "" && (mat == nil || mat.Name != tt.name):
			t.Errorf("GetMaterial(%d) should be %q", tt.material, tt.name)
		}
	}
	if mesh.GetMaterial(99) != nil {
		t.Error("GetMaterial(99) should be nil")
	}
}

func TestMeshCloneIsIndependent(t *testing.T) {
	mesh := NewMesh("S")
	mesh.Materials = []Material{{Name: "carcass"}}
	mesh.Faces = []Face{{V: [3]int{0, 1, 2}, Material: 0}}
	mesh.Fallback = true

	clone := mesh.Clone()
	clone.Materials[0].Name = "modified"
	clone.Faces[0].Material = -1

	if mesh.Materials[0].Name != "carcass" {
		t.Error("Clone should copy materials")
	}
	if mesh.Faces[0].Material != 0 {
		t.Error("Clone should copy faces")
	}
	if !clone.Fallback {
		t.Error("Clone should keep the fallback marker")
	}
	if clone.MaterialCount() != 1 {
		t.Errorf("MaterialCount() = %d, want 1", clone.MaterialCount())
	}
}
