// Package scene assembles meshes, layout and input into the two views of
// the configurator: the room viewer and the module editor.
package scene

import (
	"fmt"
	"math"

	"github.com/taigrr/shelf/pkg/math3d"
	"github.com/taigrr/shelf/pkg/render"
)

// View identifies a scene.
type View int

const (
	ViewRoom View = iota
	ViewModule
)

func (v View) String() string {
	switch v {
	case ViewRoom:
		return "room"
	case ViewModule:
		return "module"
	default:
		return "unknown"
	}
}

// Other returns the view a toggle switches to.
func (v View) Other() View {
	if v == ViewRoom {
		return ViewModule
	}
	return ViewRoom
}

// ParseView parses "room" or "module".
func ParseView(s string) (View, error) {
	switch s {
	case "room":
		return ViewRoom, nil
	case "module":
		return ViewModule, nil
	}
	return 0, fmt.Errorf("unknown view %q", s)
}

// Home is the camera pose a scene starts from and resets to.
type Home struct {
	Target      math3d.Vec3
	Yaw         float64
	Pitch       float64
	Distance    float64
	Projection  render.Projection
	OrthoHeight float64
	FOV         float64
}

// homeFrom returns the orbit angles that place the eye at pos around the
// origin.
func homeFrom(pos math3d.Vec3) (yaw, pitch, distance float64) {
	distance = pos.Len()
	yaw = math.Atan2(pos.X, pos.Z)
	pitch = math.Asin(pos.Y / distance)
	return yaw, pitch, distance
}

// Apply moves cam to h.
func (h Home) Apply(cam *render.Camera) {
	cam.SetProjection(h.Projection)
	cam.SetOrthoHeight(h.OrthoHeight)
	cam.FOV = h.FOV
	cam.Orbit(h.Target, h.Distance, h.Yaw, h.Pitch)
}

// DrawOptions carries the render toggles shared by both scenes.
type DrawOptions struct {
	Wireframe   bool
	Textured    bool
	Reflections bool
	Reflectors  []render.Reflector
	WireColor   render.Color
}

// Scene is one drawable view.
type Scene interface {
	View() View
	Home() Home
	SetBreakpoint(b Breakpoint)
	Draw(r *render.Rasterizer, light render.Light, opts DrawOptions)
}

// drawReflections renders draw once per reflector through its mirror.
func drawReflections(r *render.Rasterizer, light render.Light, opts DrawOptions, draw func(mirror math3d.Mat4, light render.Light)) {
	if !opts.Reflections {
		return
	}
	for _, rf := range opts.Reflectors {
		r.DrawReflection(rf, light, draw)
	}
}
