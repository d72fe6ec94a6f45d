package render

import (
	"fmt"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is the framebuffer pixel type.
type Color = color.RGBA

var (
	ColorBlack = color.RGBA{0, 0, 0, 255}
	ColorWhite = color.RGBA{255, 255, 255, 255}
	ColorGray  = color.RGBA{128, 128, 128, 255}
)

// RGB creates an opaque color.
func RGB(r, g, b uint8) Color {
	return Color{r, g, b, 255}
}

// ParseHex parses "#rrggbb" or "#rgb".
func ParseHex(s string) (Color, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return RGB(r, g, b), nil
}

// Hex formats c as "#rrggbb".
func Hex(c Color) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Mix blends a toward b by t in CIE L*a*b* space.
func Mix(a, b Color, t float64) Color {
	switch {
	case t <= 0:
		return a
	case t >= 1:
		return b
	}
	ca, _ := colorful.MakeColor(a)
	cb, _ := colorful.MakeColor(b)
	r, g, bl := ca.BlendLab(cb, t).Clamped().RGB255()
	return RGB(r, g, bl)
}

// lerpColor linearly interpolates between two colors.
func lerpColor(a, b Color, t float64) Color {
	return Color{
		R: uint8(float64(a.R) + (float64(b.R)-float64(a.R))*t),
		G: uint8(float64(a.G) + (float64(b.G)-float64(a.G))*t),
		B: uint8(float64(a.B) + (float64(b.B)-float64(a.B))*t),
		A: uint8(float64(a.A) + (float64(b.A)-float64(a.A))*t),
	}
}

// MultiplyColor scales a color by a lighting intensity, saturating at white.
func MultiplyColor(c Color, intensity float64) Color {
	return Color{
		R: uint8(math.Min(255, float64(c.R)*intensity)),
		G: uint8(math.Min(255, float64(c.G)*intensity)),
		B: uint8(math.Min(255, float64(c.B)*intensity)),
		A: c.A,
	}
}

// ModulateColor multiplies two colors channel by channel.
func ModulateColor(a, b Color) Color {
	return Color{
		R: uint8((int(a.R) * int(b.R)) / 255),
		G: uint8((int(a.G) * int(b.G)) / 255),
		B: uint8((int(a.B) * int(b.B)) / 255),
		A: uint8((int(a.A) * int(b.A)) / 255),
	}
}
