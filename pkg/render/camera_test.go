package render

import (
	"math"
	"testing"

	"github.com/taigrr/shelf/pkg/math3d"
)

func TestScreenRayThroughCenterHitsTarget(t *testing.T) {
	for _, p := range []Projection{Perspective, Orthographic} {
		t.Run(p.String(), func(t *testing.T) {
			c := NewCamera()
			c.Orbit(math3d.V3(-0.7, 0, 0), 4, math.Pi/4, 0.9)
			c.SetProjection(p)

			ray := c.ScreenRay(50, 25, 100, 50)
			hit, _, ok := ray.IntersectPlane(math3d.Zero3(), math3d.Up())
			if !ok {
				t.Fatal("center ray should hit the floor")
			}
			if hit.Distance(math3d.V3(-0.7, 0, 0)) > 1e-6 {
				t.Errorf("center ray hits %v, want the orbit target", hit)
			}
		})
	}
}

func TestScreenRayOrthographicIsParallel(t *testing.T) {
	c := testCamera(Orthographic)

	a := c.ScreenRay(10, 10, 100, 100).Dir.Normalize()
	b := c.ScreenRay(90, 70, 100, 100).Dir.Normalize()
	if a.Distance(b) > 1e-9 {
		t.Errorf("orthographic ray directions differ: %v vs %v", a, b)
	}
	if a.Distance(math3d.V3(0, 0, -1)) > 1e-9 {
		t.Errorf("ray direction = %v, want -Z", a)
	}
}

func TestScreenRayMatchesWorldToScreen(t *testing.T) {
	c := testCamera(Perspective)
	c.SetAspectRatio(120.0 / 80.0)
	p := math3d.V3(1.5, -0.75, 0)

	sx, sy, _, ok := c.WorldToScreen(p, 120, 80)
	if !ok {
		t.Fatal("point should be visible")
	}

	ray := c.ScreenRay(sx, sy, 120, 80)
	hit, _, _ := ray.IntersectPlane(math3d.Zero3(), math3d.V3(0, 0, 1))
	if hit.Distance(p) > 1e-6 {
		t.Errorf("unprojected %v, want %v", hit, p)
	}
}

func TestOrbit(t *testing.T) {
	c := NewCamera()
	target := math3d.V3(1, 0, 0)
	c.Orbit(target, 5, 0.3, 0.4)

	if d := c.Position.Distance(target); math.Abs(d-5) > 1e-9 {
		t.Errorf("distance = %v, want 5", d)
	}
	if c.Position.Y <= 0 {
		t.Error("positive pitch should lift the eye")
	}

	// Pitch past the pole is clamped so the view stays defined.
	c.Orbit(target, 5, 0, math.Pi)
	if f := c.Forward(); math.IsNaN(f.X) || f.Y > -0.99 {
		t.Errorf("Forward() = %v at clamped pitch", f)
	}
}

func TestToggleProjection(t *testing.T) {
	c := NewCamera()
	before := c.ProjectionMatrix()

	c.ToggleProjection()
	if c.Projection != Orthographic {
		t.Fatalf("Projection = %v, want ortho", c.Projection)
	}
	if c.ProjectionMatrix() == before {
		t.Error("projection matrix should change")
	}

	c.ToggleProjection()
	if c.Projection != Perspective || c.ProjectionMatrix() != before {
		t.Error("toggling twice should restore perspective")
	}
}
