package main

import (
	"math"

	"github.com/charmbracelet/harmonica"
	"github.com/taigrr/shelf/pkg/render"
	"github.com/taigrr/shelf/pkg/scene"
)

// OrbitAxis tracks an offset from the home pose and a velocity that
// decays on a spring.
type OrbitAxis struct {
	Position  float64
	Velocity  float64
	velSpring harmonica.Spring
	velAccel  float64 // spring velocity of Velocity itself
}

// NewOrbitAxis creates an axis with a critically damped velocity decay.
func NewOrbitAxis(fps int) OrbitAxis {
	return OrbitAxis{
		velSpring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0),
	}
}

// Update applies velocity to position and springs velocity toward 0.
func (a *OrbitAxis) Update() {
	a.Position += a.Velocity
	a.Velocity, a.velAccel = a.velSpring.Update(a.Velocity, a.velAccel, 0)
}

// Stop kills any remaining momentum.
func (a *OrbitAxis) Stop() {
	a.Velocity, a.velAccel = 0, 0
}

// maxPitch keeps the camera off the poles, where the orbit flips.
const maxPitch = math.Pi/2 - 0.05

// Orbit is the camera's offset from the scene's home pose.
type Orbit struct {
	Yaw, Pitch OrbitAxis
	Zoom       float64
	fps        int
}

// NewOrbit creates an orbit sitting on the home pose.
func NewOrbit(fps int) *Orbit {
	return &Orbit{
		Yaw:   NewOrbitAxis(fps),
		Pitch: NewOrbitAxis(fps),
		Zoom:  1,
		fps:   fps,
	}
}

func (o *Orbit) Update() {
	o.Yaw.Update()
	o.Pitch.Update()
}

func (o *Orbit) ApplyImpulse(yaw, pitch float64) {
	o.Yaw.Velocity += yaw
	o.Pitch.Velocity += pitch
}

// Stop freezes the camera where it is.
func (o *Orbit) Stop() {
	o.Yaw.Stop()
	o.Pitch.Stop()
}

// Reset returns to the home pose.
func (o *Orbit) Reset() {
	*o = *NewOrbit(o.fps)
}

// ZoomBy scales the view distance, clamped to a sensible range.
func (o *Orbit) ZoomBy(f float64) {
	o.Zoom = math.Max(0.25, math.Min(4, o.Zoom*f))
}

// Apply places cam at home offset by the orbit. Perspective cameras move
// in and out to zoom; orthographic ones change their visible height.
func (o *Orbit) Apply(cam *render.Camera, home scene.Home) {
	pitch := home.Pitch + o.Pitch.Position
	if pitch > maxPitch || pitch < -maxPitch {
		pitch = math.Max(-maxPitch, math.Min(maxPitch, pitch))
		o.Pitch.Position = pitch - home.Pitch
		o.Pitch.Stop()
	}
	cam.SetOrthoHeight(home.OrthoHeight * o.Zoom)
	cam.Orbit(home.Target, home.Distance*o.Zoom, home.Yaw+o.Yaw.Position, pitch)
}

// ViewState holds the render toggles.
type ViewState struct {
	Wireframe   bool
	Textured    bool
	Reflections bool
	ShowHUD     bool
}

// NewViewState creates the default toggles.
func NewViewState(reflections bool) *ViewState {
	return &ViewState{
		Textured:    true,
		Reflections: reflections,
		ShowHUD:     true,
	}
}
