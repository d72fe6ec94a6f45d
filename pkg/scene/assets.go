package scene

import (
	"github.com/taigrr/shelf/pkg/math3d"
	"github.com/taigrr/shelf/pkg/models"
)

// Library asset names.
const (
	AssetBody = "S"
	AssetBack = "L"
	AssetHole = "Hole"
	AssetRoom = "Room"
)

// Stand-in geometry in model units, before the module scale is applied.
// The body spans the slot range with a little margin on both ends.

// FallbackBody is a low box for the cabinet body.
func FallbackBody() *models.Mesh {
	m := models.NewBox(AssetBody, math3d.V3(-0.16, 0, -0.035), math3d.V3(0.02, 0.05, 0.035))
	m.Materials = []models.Material{{Name: "body", BaseColor: [4]float64{0.78, 0.70, 0.60, 1}, Roughness: 1}}
	return m
}

// FallbackBack is the upright back panel.
func FallbackBack() *models.Mesh {
	m := models.NewBox(AssetBack, math3d.V3(-0.16, 0.05, -0.035), math3d.V3(0.02, 0.11, -0.025))
	m.Materials = []models.Material{{Name: "back", BaseColor: [4]float64{0.70, 0.62, 0.52, 1}, Roughness: 1}}
	return m
}

// FallbackHole is a short cylinder that pokes through the body's top.
func FallbackHole() *models.Mesh {
	m := models.NewCylinder(AssetHole, 0.012, 0.052, 24)
	m.Materials = []models.Material{{Name: "hole", BaseColor: [4]float64{0.2, 0.2, 0.2, 1}, Roughness: 1}}
	return m
}

// FallbackRoom is a plain block standing in for the room model.
func FallbackRoom() *models.Mesh {
	m := models.NewBox(AssetRoom, math3d.V3(-1, 0, -1), math3d.V3(1, 1.2, 1))
	m.Materials = []models.Material{{Name: "room", BaseColor: [4]float64{0.85, 0.85, 0.85, 1}, Roughness: 1}}
	return m
}
