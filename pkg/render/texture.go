package render

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
)

// WrapMode determines how texture coordinates outside [0,1] are handled.
type WrapMode int

const (
	WrapRepeat WrapMode = iota
	WrapClamp
)

// Texture is a nearest-sampled RGBA image. At half-block resolution a
// filtered lookup is indistinguishable from a nearest one.
type Texture struct {
	Width  int
	Height int
	Pixels []Color
	Wrap   WrapMode
}

// NewTexture creates an empty texture with the given dimensions.
func NewTexture(width, height int) *Texture {
	return &Texture{
		Width:  width,
		Height: height,
		Pixels: make([]Color, width*height),
	}
}

// LoadTexture decodes a PNG or JPEG file.
func LoadTexture(path string) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open texture: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode texture %s: %w", path, err)
	}
	return TextureFromImage(img), nil
}

// TextureFromImage copies img into a texture.
func TextureFromImage(img image.Image) *Texture {
	b := img.Bounds()
	tex := NewTexture(b.Dx(), b.Dy())
	for y := range tex.Height {
		for x := range tex.Width {
			r, g, bl, a := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			tex.Pixels[y*tex.Width+x] = Color{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(bl >> 8), A: uint8(a >> 8)}
		}
	}
	return tex
}

// NewCheckerTexture creates a procedural checkerboard texture.
func NewCheckerTexture(width, height, checkSize int, c1, c2 Color) *Texture {
	tex := NewTexture(width, height)
	for y := range height {
		for x := range width {
			c := c2
			if (x/checkSize+y/checkSize)%2 == 0 {
				c = c1
			}
			tex.Pixels[y*width+x] = c
		}
	}
	return tex
}

// Sample returns the texel at (u, v). V runs bottom to top.
func (t *Texture) Sample(u, v float64) Color {
	if t.Width == 0 || t.Height == 0 {
		return ColorWhite
	}
	u, v = t.wrap(u), 1-t.wrap(v)

	x := min(int(u*float64(t.Width)), t.Width-1)
	y := min(int(v*float64(t.Height)), t.Height-1)
	return t.Pixels[y*t.Width+x]
}

func (t *Texture) wrap(c float64) float64 {
	if t.Wrap == WrapClamp {
		return math.Max(0, math.Min(1, c))
	}
	return c - math.Floor(c)
}
