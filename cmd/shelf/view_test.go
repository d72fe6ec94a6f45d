package main

import (
	"math"
	"testing"

	"github.com/taigrr/shelf/pkg/math3d"
	"github.com/taigrr/shelf/pkg/render"
	"github.com/taigrr/shelf/pkg/scene"
)

func TestOrbitAxisDecays(t *testing.T) {
	a := NewOrbitAxis(30)
	a.Velocity = 0.5

	for range 120 {
		a.Update()
	}
	if math.Abs(a.Velocity) > 1e-3 {
		t.Errorf("Velocity = %v after 4s, want ~0", a.Velocity)
	}
	if a.Position <= 0 {
		t.Errorf("Position = %v, want > 0", a.Position)
	}
}

func TestOrbitStopAndReset(t *testing.T) {
	o := NewOrbit(30)
	o.ApplyImpulse(0.2, -0.1)
	o.ZoomBy(2)
	o.Update()

	o.Stop()
	pos := o.Yaw.Position
	o.Update()
	if o.Yaw.Position != pos {
		t.Error("stopped orbit should not move")
	}

	o.Reset()
	if o.Yaw.Position != 0 || o.Pitch.Position != 0 || o.Zoom != 1 {
		t.Errorf("Reset() left yaw %v pitch %v zoom %v", o.Yaw.Position, o.Pitch.Position, o.Zoom)
	}
}

func TestOrbitApply(t *testing.T) {
	home := scene.Home{
		Target:      math3d.V3(0, 0, 0),
		Distance:    4,
		Projection:  render.Orthographic,
		OrthoHeight: 2,
	}

	tests := []struct {
		name      string
		pitch     float64
		zoom      float64
		wantDist  float64
		wantOrtho float64
	}{
		{"home", 0, 1, 4, 2},
		{"zoomed in", 0, 0.5, 2, 1},
		{"pitch clamped", 10, 1, 4, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := NewOrbit(30)
			o.Pitch.Position = tt.pitch
			o.Zoom = tt.zoom
			cam := render.NewCamera()
			o.Apply(cam, home)

			if d := cam.Position.Sub(home.Target).Len(); math.Abs(d-tt.wantDist) > 1e-9 {
				t.Errorf("distance = %v, want %v", d, tt.wantDist)
			}
			if cam.OrthoHeight != tt.wantOrtho {
				t.Errorf("OrthoHeight = %v, want %v", cam.OrthoHeight, tt.wantOrtho)
			}
			if p := home.Pitch + o.Pitch.Position; p > maxPitch+1e-12 {
				t.Errorf("pitch = %v, want <= %v", p, maxPitch)
			}
		})
	}
}

func TestViewStateDefaults(t *testing.T) {
	v := NewViewState(true)
	if !v.Textured || !v.Reflections || !v.ShowHUD || v.Wireframe {
		t.Errorf("NewViewState(true) = %+v", v)
	}
	if NewViewState(false).Reflections {
		t.Error("reflections should follow the argument")
	}
}
