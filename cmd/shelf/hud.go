package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/taigrr/shelf/pkg/render"
	"github.com/taigrr/shelf/pkg/scene"
)

var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorWhite  = lipgloss.Color("255")
	colorDim    = lipgloss.Color("240")
	colorPanel  = lipgloss.Color("235")
)

var (
	stylePanel   = lipgloss.NewStyle().Background(colorPanel).Padding(0, 1)
	styleFPS     = stylePanel.Foreground(colorGreen)
	styleTitle   = stylePanel.Foreground(colorWhite).Bold(true)
	styleCount   = stylePanel.Foreground(colorCyan).Bold(true)
	styleOn      = lipgloss.NewStyle().Background(colorPanel).Foreground(colorWhite)
	styleOff     = lipgloss.NewStyle().Background(colorPanel).Foreground(colorDim)
	styleWarning = stylePanel.Foreground(colorYellow).Bold(true)
	styleHint    = stylePanel.Foreground(colorYellow).Faint(true)
)

const aimMessage = "◉ light: move to aim, click to set, esc to cancel"

// warningTTL is how long a warning stays on screen.
const warningTTL = 2 * time.Second

// Status is what the HUD reports about the app each frame.
type Status struct {
	View        scene.View
	Count       int
	MaxSlots    int
	CanAdd      bool
	CanRemove   bool
	Dragging    bool
	Aiming      bool
	Night       bool
	Projection  render.Projection
	Reflections bool
	Wireframe   bool
	Textured    bool
}

// HUD renders the overlay: FPS and view at the top, toggles at the
// bottom, and the latest warning above them.
type HUD struct {
	fps       float64
	fpsFrames int
	fpsTime   time.Time

	warning   string
	warningAt time.Time
}

// NewHUD creates a HUD whose FPS window starts at now.
func NewHUD(now time.Time) *HUD {
	return &HUD{fpsTime: now}
}

// UpdateFPS counts a frame. The rate is recomputed once per second.
func (h *HUD) UpdateFPS(now time.Time) {
	h.fpsFrames++
	elapsed := now.Sub(h.fpsTime)
	if elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = now
	}
}

// FPS returns the last measured frame rate.
func (h *HUD) FPS() float64 { return h.fps }

// Warn shows msg for a short while.
func (h *HUD) Warn(msg string, now time.Time) {
	h.warning, h.warningAt = msg, now
}

// Warning returns the warning still on screen at now.
func (h *HUD) Warning(now time.Time) (string, bool) {
	if h.warning == "" || now.Sub(h.warningAt) > warningTTL {
		return "", false
	}
	return h.warning, true
}

func check(label string, on bool) string {
	if on {
		return styleOn.Render("[✓] " + label)
	}
	return styleOff.Render("[ ] " + label)
}

// Top returns the left and right halves of the first line.
func (h *HUD) Top(s Status) (left, right string) {
	left = lipgloss.JoinHorizontal(lipgloss.Top,
		styleFPS.Render(fmt.Sprintf("%.0f FPS", h.fps)),
		styleTitle.Render(s.View.String()),
	)
	if s.View != scene.ViewModule {
		return left, ""
	}
	count := fmt.Sprintf("%d/%d slots", s.Count, s.MaxSlots)
	if s.Dragging {
		count += " · dragging"
	}
	return left, styleCount.Render(count)
}

// Bottom returns the toggle line.
func (h *HUD) Bottom(s Status) string {
	light := "day"
	if s.Night {
		light = "night"
	}
	parts := []string{
		stylePanel.Render(light),
		stylePanel.Render(s.Projection.String()),
		check("mirrors", s.Reflections),
		check("x-ray", s.Wireframe),
	}
	if s.View == scene.ViewRoom {
		parts = append(parts, check("texture", s.Textured))
	} else {
		parts = append(parts, check("a: add", s.CanAdd), check("r: remove", s.CanRemove))
	}
	parts = append(parts, styleHint.Render("l: light"))
	return strings.Join(parts, styleOff.Render(" "))
}

// Render overlays the HUD on a cols×rows terminal. A warning and the light
// positioning prompt are shown even when the HUD is hidden.
func (h *HUD) Render(t *render.TerminalRenderer, rows int, s Status, show bool, now time.Time) {
	if msg, ok := h.Warning(now); ok {
		t.Overlay(styleWarning.Render(msg), 0, max(rows-2, 0))
	}
	if s.Aiming {
		t.Overlay(styleWarning.Render(aimMessage), 0, max(rows-1, 0))
	}
	if !show {
		return
	}
	left, right := h.Top(s)
	t.Overlay(left, 0, 0)
	t.Overlay(right, -1, 0)
	if !s.Aiming {
		t.Overlay(h.Bottom(s), 0, max(rows-1, 0))
	}
}
