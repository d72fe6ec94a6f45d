package scene

import (
	"fmt"
	"math"

	"github.com/taigrr/shelf/pkg/math3d"
	"github.com/taigrr/shelf/pkg/models"
	"github.com/taigrr/shelf/pkg/render"
)

// roomSize is the largest dimension the room model is normalized to.
const roomSize = 2.0

// Room shows a single model, optionally textured.
type Room struct {
	mesh    *models.Mesh
	texture *render.Texture
	group   math3d.Mat4
}

// NewRoom builds the room scene from lib. A texture passed in overrides
// the one embedded in the model; when neither exists a checker pattern is
// used for textured drawing.
func NewRoom(lib *models.Library, texture *render.Texture) (*Room, error) {
	r := &Room{}
	if err := r.SetLibrary(lib, texture); err != nil {
		return nil, err
	}
	r.SetBreakpoint(Breakpoints[len(Breakpoints)-1])
	return r, nil
}

// SetLibrary swaps in a freshly loaded room model.
func (r *Room) SetLibrary(lib *models.Library, texture *render.Texture) error {
	mesh, ok := lib.Get(AssetRoom)
	if !ok {
		return fmt.Errorf("room scene: missing asset %s", AssetRoom)
	}
	mesh = mesh.Clone()
	mesh.Normalize(roomSize)
	// Stand the model on the floor.
	mesh.Transform(math3d.Translate(math3d.V3(0, -mesh.BoundsMin.Y, 0)))

	if texture == nil {
		if img, ok := lib.Texture(AssetRoom); ok {
			texture = render.TextureFromImage(img)
		} else {
			texture = render.NewCheckerTexture(64, 64, 8, render.RGB(200, 200, 200), render.RGB(100, 100, 100))
		}
	}
	r.mesh, r.texture = mesh, texture
	return nil
}

// Mesh returns the normalized room mesh.
func (r *Room) Mesh() *models.Mesh { return r.mesh }

// View implements Scene.
func (r *Room) View() View { return ViewRoom }

// Home is a narrow perspective from the front right, high up.
func (r *Room) Home() Home {
	yaw, pitch, _ := homeFrom(math3d.V3(20, 20, 20))
	return Home{
		Target:      math3d.V3(0, roomSize/4, 0),
		Yaw:         yaw,
		Pitch:       pitch,
		Distance:    5,
		Projection:  render.Perspective,
		OrthoHeight: 3,
		FOV:         math.Pi / 4,
	}
}

// SetBreakpoint implements Scene.
func (r *Room) SetBreakpoint(b Breakpoint) {
	r.group = group(b.RoomScale, b.RoomLift)
}

// Draw implements Scene.
func (r *Room) Draw(rs *render.Rasterizer, light render.Light, opts DrawOptions) {
	drawReflections(rs, light, opts, func(mirror math3d.Mat4, l render.Light) {
		r.drawModel(rs, mirror.Mul(r.group), l, opts)
	})
	r.drawModel(rs, r.group, light, opts)
}

func (r *Room) drawModel(rs *render.Rasterizer, transform math3d.Mat4, light render.Light, opts DrawOptions) {
	switch {
	case opts.Wireframe:
		rs.DrawMeshWireframe(r.mesh, transform, opts.WireColor)
	case opts.Textured:
		rs.DrawMeshTexturedGouraud(r.mesh, transform, r.texture, light)
	default:
		rs.DrawMeshGouraud(r.mesh, transform, r.mesh.BaseColor(), light)
	}
}
