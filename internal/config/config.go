// Package config loads the shelf TOML configuration.
//
// Load overlays a file onto Default, so a config file only needs the keys
// it changes. Command-line flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/taigrr/shelf/pkg/layout"
	"github.com/taigrr/shelf/pkg/math3d"
	"github.com/taigrr/shelf/pkg/render"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Views and projections accepted in the config and on the command line.
const (
	ViewRoom   = "room"
	ViewModule = "module"

	ProjectionPerspective = "perspective"
	ProjectionOrtho       = "ortho"
)

// Config is the full application configuration.
type Config struct {
	Layout     Layout      `toml:"layout"`
	Models     Models      `toml:"models"`
	Render     Render      `toml:"render"`
	Lighting   Lighting    `toml:"lighting"`
	Reflectors []Reflector `toml:"reflector"`
}

// Layout mirrors layout.Constraints.
type Layout struct {
	XMin              float64   `toml:"x_min"`
	XMax              float64   `toml:"x_max"`
	CollisionDistance float64   `toml:"collision_distance"`
	MaxSlots          int       `toml:"max_slots"`
	Initial           float64   `toml:"initial"`
	Candidates        []float64 `toml:"candidates"`
}

// Models locates the GLTF assets. Node names select one mesh out of a
// file; an empty node loads the whole file.
type Models struct {
	Body     string  `toml:"body"`
	BodyNode string  `toml:"body_node"`
	Back     string  `toml:"back"`
	BackNode string  `toml:"back_node"`
	Hole     string  `toml:"hole"`
	HoleNode string  `toml:"hole_node"`
	Room     string  `toml:"room"`
	Scale    float64 `toml:"scale"`
}

// Render holds frame and camera settings.
type Render struct {
	FPS         int    `toml:"fps"`
	Background  string `toml:"background"` // overrides the lighting backdrop when set
	Projection  string `toml:"projection"`
	View        string `toml:"view"`
	Texture     string `toml:"texture"`
	Reflections bool   `toml:"reflections"`
}

// Lighting selects the starting preset.
type Lighting struct {
	Night bool `toml:"night"`
}

// Reflector is one mirror plane.
type Reflector struct {
	Name      string     `toml:"name"`
	Center    [3]float64 `toml:"center"`
	Normal    [3]float64 `toml:"normal"`
	Width     float64    `toml:"width"`
	Height    float64    `toml:"height"`
	Intensity float64    `toml:"intensity"`
	Opacity   float64    `toml:"opacity"`
	Color     string     `toml:"color"`
}

// Default returns the built-in configuration.
func Default() Config {
	c := layout.DefaultConstraints()
	cfg := Config{
		Layout: Layout{
			XMin:              c.XMin,
			XMax:              c.XMax,
			CollisionDistance: c.CollisionDistance,
			MaxSlots:          c.MaxSlots,
			Initial:           c.Initial,
			Candidates:        c.Candidates,
		},
		Models: Models{
			Body:     "assets/gltf/module/S.gltf",
			BodyNode: "S",
			Back:     "assets/gltf/module/L.gltf",
			BackNode: "L",
			Hole:     "assets/gltf/module/Hole.gltf",
			HoleNode: "hole",
			Room:     "assets/gltf/room.glb",
			Scale:    10,
		},
		Render: Render{
			FPS:         30,
			Projection:  ProjectionOrtho,
			View:        ViewModule,
			Reflections: true,
		},
	}
	for _, rf := range render.DefaultReflectors() {
		cfg.Reflectors = append(cfg.Reflectors, Reflector{
			Name:      rf.Name,
			Center:    [3]float64{rf.Center.X, rf.Center.Y, rf.Center.Z},
			Normal:    [3]float64{rf.Normal.X, rf.Normal.Y, rf.Normal.Z},
			Width:     rf.Width,
			Height:    rf.Height,
			Intensity: rf.Intensity,
			Opacity:   rf.Opacity,
			Color:     render.Hex(rf.Color),
		})
	}
	return cfg
}

// Load reads path over the defaults and validates the result. Lists in the
// file replace the default lists rather than merging into them. Unknown
// keys are rejected so typos do not pass silently.
func Load(path string) (Config, error) {
	cfg := Default()
	candidates, reflectors := cfg.Layout.Candidates, cfg.Reflectors
	cfg.Layout.Candidates, cfg.Reflectors = nil, nil

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if !md.IsDefined("layout", "candidates") {
		cfg.Layout.Candidates = candidates
	}
	if !md.IsDefined("reflector") {
		cfg.Reflectors = reflectors
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%w: unknown keys %s", ErrInvalidConfig, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Constraints().Validate(); err != nil {
		return fmt.Errorf("%w: layout: %w", ErrInvalidConfig, err)
	}
	if c.Models.Scale <= 0 {
		return fmt.Errorf("%w: models: scale must be positive, got %v", ErrInvalidConfig, c.Models.Scale)
	}
	if c.Render.FPS < 1 || c.Render.FPS > 240 {
		return fmt.Errorf("%w: render: fps must be in [1, 240], got %d", ErrInvalidConfig, c.Render.FPS)
	}
	switch c.Render.Projection {
	case ProjectionPerspective, ProjectionOrtho:
	default:
		return fmt.Errorf("%w: render: unknown projection %q", ErrInvalidConfig, c.Render.Projection)
	}
	switch c.Render.View {
	case ViewRoom, ViewModule:
	default:
		return fmt.Errorf("%w: render: unknown view %q", ErrInvalidConfig, c.Render.View)
	}
	if c.Render.Background != "" {
		if _, err := render.ParseHex(c.Render.Background); err != nil {
			return fmt.Errorf("%w: render: background: %w", ErrInvalidConfig, err)
		}
	}
	if _, err := c.RenderReflectors(); err != nil {
		return err
	}
	return nil
}

// Constraints converts the layout section.
func (c Config) Constraints() layout.Constraints {
	return layout.Constraints{
		XMin:              c.Layout.XMin,
		XMax:              c.Layout.XMax,
		CollisionDistance: c.Layout.CollisionDistance,
		MaxSlots:          c.Layout.MaxSlots,
		Initial:           c.Layout.Initial,
		Candidates:        append([]float64(nil), c.Layout.Candidates...),
	}
}

// Projection returns the configured camera projection.
func (c Config) Projection() render.Projection {
	if c.Render.Projection == ProjectionOrtho {
		return render.Orthographic
	}
	return render.Perspective
}

// BackgroundColor returns the background override, if one is set.
func (c Config) BackgroundColor() (render.Color, bool) {
	if c.Render.Background == "" {
		return render.Color{}, false
	}
	col, err := render.ParseHex(c.Render.Background)
	return col, err == nil
}

// RenderReflectors converts and validates the reflector planes.
func (c Config) RenderReflectors() ([]render.Reflector, error) {
	out := make([]render.Reflector, 0, len(c.Reflectors))
	for i, r := range c.Reflectors {
		name := r.Name
		if name == "" {
			name = fmt.Sprintf("#%d", i)
		}
		normal := math3d.V3(r.Normal[0], r.Normal[1], r.Normal[2])
		if !(normal.Len() > 0) {
			return nil, fmt.Errorf("%w: reflector %s: normal must be non-zero", ErrInvalidConfig, name)
		}
		if !(r.Width > 0 && r.Height > 0) {
			return nil, fmt.Errorf("%w: reflector %s: size must be positive", ErrInvalidConfig, name)
		}
		if !unit(r.Intensity) || !unit(r.Opacity) {
			return nil, fmt.Errorf("%w: reflector %s: intensity and opacity must be in [0, 1]", ErrInvalidConfig, name)
		}
		col, err := render.ParseHex(r.Color)
		if err != nil {
			return nil, fmt.Errorf("%w: reflector %s: %w", ErrInvalidConfig, name, err)
		}
		out = append(out, render.Reflector{
			Name:      name,
			Center:    math3d.V3(r.Center[0], r.Center[1], r.Center[2]),
			Normal:    normal,
			Width:     r.Width,
			Height:    r.Height,
			Intensity: r.Intensity,
			Opacity:   r.Opacity,
			Color:     col,
		})
	}
	return out, nil
}

func unit(x float64) bool {
	return !math.IsNaN(x) && x >= 0 && x <= 1
}

// Write encodes c as TOML.
func (c Config) Write(w io.Writer) error {
	if err := toml.NewEncoder(w).Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}
