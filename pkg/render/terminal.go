package render

import (
	"image/color"
	"strings"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/charmbracelet/x/ansi"
)

// Screen is a cell surface that can be flushed to the terminal.
type Screen interface {
	uv.Screen
	Display() error
}

// TerminalRenderer draws framebuffers to a terminal using half-block cells,
// two framebuffer rows per terminal row.
type TerminalRenderer struct {
	scr        Screen
	cols, rows int
}

// NewTerminalRenderer creates a renderer for a cols×rows terminal.
func NewTerminalRenderer(scr Screen, cols, rows int) *TerminalRenderer {
	return &TerminalRenderer{scr: scr, cols: cols, rows: rows}
}

// FramebufferSize returns the framebuffer dimensions that fill the terminal.
func (t *TerminalRenderer) FramebufferSize() (width, height int) {
	return t.cols, t.rows * 2
}

// Render draws fb over the whole terminal.
func (t *TerminalRenderer) Render(fb *Framebuffer) {
	fb.Draw(t.scr, uv.Rect(0, 0, t.cols, t.rows))
}

// Overlay draws a styled, possibly multi-line string with its top-left
// corner at (col, row). A negative col right-aligns the block that many
// columns from the right edge, so -1 touches it.
func (t *TerminalRenderer) Overlay(s string, col, row int) {
	if s == "" {
		return
	}
	lines := strings.Split(s, "\n")
	w := 0
	for _, l := range lines {
		w = max(w, ansi.StringWidth(l))
	}
	if col < 0 {
		col = max(t.cols+col-w+1, 0)
	}
	uv.NewStyledString(s).Draw(t.scr, uv.Rect(col, row, w, len(lines)))
}

// Flush writes the pending frame to the terminal.
func (t *TerminalRenderer) Flush() error {
	return t.scr.Display()
}

// Draw writes the framebuffer into area of scr. Each cell is an upper half
// block whose foreground is the top pixel and background the bottom one.
func (fb *Framebuffer) Draw(scr uv.Screen, area uv.Rectangle) {
	for row := area.Min.Y; row < area.Max.Y; row++ {
		topY := row * 2
		botY := topY + 1

		for col := area.Min.X; col < area.Max.X && col < fb.Width; col++ {
			cell := &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: opaque(fb.GetPixel(col, topY)),
					Bg: opaque(fb.GetPixel(col, botY)),
				},
			}
			scr.SetCell(col, row, cell)
		}
	}
}

// opaque maps fully transparent pixels to the terminal default color.
func opaque(c color.RGBA) color.Color {
	if c.A == 0 {
		return nil
	}
	return c
}
