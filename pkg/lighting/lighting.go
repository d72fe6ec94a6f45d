// Package lighting holds the day and night light presets and animates the
// switch between them.
package lighting

import (
	"math"

	"github.com/charmbracelet/harmonica"
	"github.com/taigrr/shelf/pkg/math3d"
	"github.com/taigrr/shelf/pkg/render"
)

// Preset is one complete lighting setup.
type Preset struct {
	Name       string
	Background render.Color
	Direction  math3d.Vec3 // towards the light
	Ambient    float64
	Diffuse    float64
	Tint       render.Color
}

// Light returns the rasterizer light for p.
func (p Preset) Light() render.Light {
	return render.Light{
		Dir:     p.Direction.Normalize(),
		Ambient: p.Ambient,
		Diffuse: p.Diffuse,
		Tint:    p.Tint,
	}
}

// Day is a bright studio setup on a light gray backdrop.
var Day = Preset{
	Name:       "day",
	Background: render.RGB(0xee, 0xee, 0xee),
	Direction:  math3d.V3(0.5, 1, 0.3),
	Ambient:    0.45,
	Diffuse:    0.65,
	Tint:       render.RGB(0xff, 0xf8, 0xee),
}

// Night is a dim, cool key light from the front corner on near black.
var Night = Preset{
	Name:       "night",
	Background: render.RGB(0x11, 0x11, 0x11),
	Direction:  math3d.V3(5, 5, 5),
	Ambient:    0.15,
	Diffuse:    0.55,
	Tint:       render.RGB(0xa8, 0xb8, 0xff),
}

// Blend interpolates between two presets. t=0 is a, t=1 is b.
func Blend(a, b Preset, t float64) Preset {
	t = math.Max(0, math.Min(1, t))
	out := Preset{
		Name:       a.Name,
		Background: render.Mix(a.Background, b.Background, t),
		Direction:  a.Direction.Normalize().Lerp(b.Direction.Normalize(), t),
		Ambient:    a.Ambient + (b.Ambient-a.Ambient)*t,
		Diffuse:    a.Diffuse + (b.Diffuse-a.Diffuse)*t,
		Tint:       render.Mix(a.Tint, b.Tint, t),
	}
	if t >= 0.5 {
		out.Name = b.Name
	}
	if out.Direction.Len() < 1e-9 {
		out.Direction = b.Direction
	}
	return out
}

// Rig animates between Day and Night. The blend factor runs from 0 (day)
// to 1 (night) on a critically damped spring.
type Rig struct {
	spring harmonica.Spring
	pos    float64
	vel    float64
	target float64

	pinned bool
	dir    math3d.Vec3
}

// NewRig creates a rig that starts settled on day or night.
func NewRig(fps int, night bool) *Rig {
	r := &Rig{spring: harmonica.NewSpring(harmonica.FPS(fps), 6.0, 1.0)}
	if night {
		r.pos, r.target = 1, 1
	}
	return r
}

// Toggle starts the transition to the other preset.
func (r *Rig) Toggle() {
	r.target = 1 - r.target
}

// Night reports whether the rig is heading to (or at) night.
func (r *Rig) Night() bool {
	return r.target == 1
}

// Update advances the spring by one frame.
func (r *Rig) Update() {
	if r.Settled() {
		return
	}
	r.pos, r.vel = r.spring.Update(r.pos, r.vel, r.target)
	if math.Abs(r.pos-r.target) < 1e-3 && math.Abs(r.vel) < 1e-3 {
		r.pos, r.vel = r.target, 0
	}
}

// Settled reports whether the transition has finished.
func (r *Rig) Settled() bool {
	return r.pos == r.target && r.vel == 0
}

// SetDirection pins the light direction. Toggling day and night still
// blends everything else.
func (r *Rig) SetDirection(d math3d.Vec3) {
	r.pinned, r.dir = true, d.Normalize()
}

// ClearDirection returns the light direction to the presets.
func (r *Rig) ClearDirection() {
	r.pinned, r.dir = false, math3d.Vec3{}
}

// Direction returns the pinned direction, if any.
func (r *Rig) Direction() (math3d.Vec3, bool) {
	return r.dir, r.pinned
}

// Current returns the preset for the current blend factor.
func (r *Rig) Current() Preset {
	p := Blend(Day, Night, r.pos)
	if r.pinned {
		p.Direction = r.dir
	}
	return p
}

// Aim maps a pointer at (x, y) on a w×h screen to a light direction on the
// hemisphere facing the viewer. The screen center points straight out of
// the screen; the edges graze the horizon.
func Aim(x, y, w, h int) math3d.Vec3 {
	nx := (float64(x)+0.5)/float64(max(w, 1))*2 - 1
	ny := (float64(y)+0.5)/float64(max(h, 1))*2 - 1

	lenSq := nx*nx + ny*ny
	if lenSq > 1 {
		l := math.Sqrt(lenSq)
		nx /= l
		ny /= l
		lenSq = 1
	}
	return math3d.V3(nx, -ny, math.Sqrt(1-lenSq)).Normalize()
}
