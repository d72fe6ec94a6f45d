package lighting

import (
	"math"
	"testing"

	"github.com/taigrr/shelf/pkg/math3d"
)

func TestBlendEndpoints(t *testing.T) {
	tests := []struct {
		name string
		t    float64
		want Preset
	}{
		{"start", 0, Day},
		{"end", 1, Night},
		{"below range", -3, Day},
		{"above range", 7, Night},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Blend(Day, Night, tt.t)
			if got.Name != tt.want.Name || got.Background != tt.want.Background || got.Tint != tt.want.Tint {
				t.Errorf("Blend(%v) = %+v, want %+v", tt.t, got, tt.want)
			}
			if math.Abs(got.Ambient-tt.want.Ambient) > 1e-9 {
				t.Errorf("Ambient = %v, want %v", got.Ambient, tt.want.Ambient)
			}
		})
	}
}

func TestBlendMidpoint(t *testing.T) {
	mid := Blend(Day, Night, 0.5)
	if mid.Background.R >= Day.Background.R || mid.Background.R <= Night.Background.R {
		t.Errorf("midpoint background %v is not between presets", mid.Background)
	}
	if math.Abs(mid.Ambient-0.3) > 1e-9 {
		t.Errorf("Ambient = %v, want 0.3", mid.Ambient)
	}
	if l := mid.Light(); math.Abs(l.Dir.Len()-1) > 1e-9 {
		t.Errorf("light direction %+v is not unit length", l.Dir)
	}
}

func TestRigToggle(t *testing.T) {
	r := NewRig(60, false)
	if r.Night() || !r.Settled() || r.Current().Name != "day" {
		t.Fatal("new rig should be settled on day")
	}

	r.Toggle()
	if !r.Night() || r.Settled() {
		t.Fatal("toggle should start moving to night")
	}

	for range 15 {
		r.Update()
	}
	part := r.Current().Background
	if part == Day.Background || part == Night.Background {
		t.Errorf("mid-transition background = %v, want an intermediate color", part)
	}

	for i := 0; i < 600 && !r.Settled(); i++ {
		r.Update()
	}
	if !r.Settled() {
		t.Fatal("rig did not settle")
	}
	if got := r.Current(); got.Background != Night.Background || got.Name != "night" {
		t.Errorf("settled preset = %+v, want night", got)
	}

	r.Toggle()
	if r.Night() {
		t.Error("second toggle should head back to day")
	}
}

func TestRigStartsAtNight(t *testing.T) {
	r := NewRig(30, true)
	if !r.Night() || r.Current().Background != Night.Background {
		t.Error("rig should start on night")
	}
	r.Update()
	if !r.Settled() {
		t.Error("Update on a settled rig should be a no-op")
	}
}

func TestRigPinnedDirection(t *testing.T) {
	r := NewRig(60, false)
	if _, ok := r.Direction(); ok {
		t.Fatal("new rig should follow the presets")
	}

	r.SetDirection(math3d.V3(0, 0, 2))
	if got := r.Current().Direction; got != math3d.V3(0, 0, 1) {
		t.Errorf("pinned direction = %+v, want (0, 0, 1)", got)
	}

	r.Toggle()
	for i := 0; i < 600 && !r.Settled(); i++ {
		r.Update()
	}
	got := r.Current()
	if got.Direction != math3d.V3(0, 0, 1) {
		t.Errorf("direction after toggle = %+v, want it pinned", got.Direction)
	}
	if got.Background != Night.Background {
		t.Errorf("background = %v, want night", got.Background)
	}

	r.ClearDirection()
	want := Night.Direction.Normalize()
	if got := r.Current().Direction; math.Abs(got.Dot(want)-1) > 1e-9 {
		t.Errorf("cleared direction = %+v, want %+v", got, want)
	}
}

func TestAim(t *testing.T) {
	tests := []struct {
		name string
		x, y int
		want math3d.Vec3
	}{
		{"center", 49, 24, math3d.V3(-0.01, 0.02, 1)},
		{"top", 49, 0, math3d.V3(0, 0.98, 0.2)},
		{"left", 0, 24, math3d.V3(-0.99, 0.02, 0.14)},
		{"far corner", 99, 49, math3d.V3(1, -1, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Aim(tt.x, tt.y, 100, 50)
			if math.Abs(got.Len()-1) > 1e-9 {
				t.Fatalf("Aim() = %+v, not unit length", got)
			}
			if got.Z < 0 {
				t.Errorf("Aim() = %+v, want the front hemisphere", got)
			}
			want := tt.want.Normalize()
			if got.Dot(want) < 0.99 {
				t.Errorf("Aim(%d, %d) = %+v, want about %+v", tt.x, tt.y, got, want)
			}
		})
	}
}
