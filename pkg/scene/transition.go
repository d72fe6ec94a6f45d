package scene

import (
	"math"

	"github.com/charmbracelet/harmonica"
)

// Transition fades the screen out, swaps the view, and fades back in.
// Opacity is driven by a critically damped spring.
type Transition struct {
	spring  harmonica.Spring
	opacity float64
	vel     float64
	target  float64
	current View
	next    View
}

const fadeSnap = 0.02

// NewTransition starts fully visible on v.
func NewTransition(fps int, v View) *Transition {
	return &Transition{
		spring:  harmonica.NewSpring(harmonica.FPS(fps), 8.0, 1.0),
		opacity: 1,
		target:  1,
		current: v,
		next:    v,
	}
}

// Switch starts a transition to v. Switching back mid-fade reverses it.
func (t *Transition) Switch(v View) {
	t.next = v
	if v == t.current {
		t.target = 1
		return
	}
	t.target = 0
}

// Toggle switches to the view that is not the destination.
func (t *Transition) Toggle() {
	t.Switch(t.next.Other())
}

// Update advances one frame. It reports whether the view swapped.
func (t *Transition) Update() (swapped bool) {
	if !t.Active() {
		return false
	}
	t.opacity, t.vel = t.spring.Update(t.opacity, t.vel, t.target)

	switch {
	case t.target == 0 && t.opacity < fadeSnap:
		t.opacity, t.vel = 0, 0
		t.current = t.next
		t.target = 1
		swapped = true
	case t.target == 1 && math.Abs(1-t.opacity) < fadeSnap/10:
		t.opacity, t.vel = 1, 0
	}
	return swapped
}

// Active reports whether a fade is in progress.
func (t *Transition) Active() bool {
	return t.opacity != t.target || t.vel != 0 || t.current != t.next
}

// Opacity returns the visibility of the current view in [0, 1].
func (t *Transition) Opacity() float64 {
	return math.Max(0, math.Min(1, t.opacity))
}

// View returns the view on screen.
func (t *Transition) View() View {
	return t.current
}

// Target returns the view being switched to.
func (t *Transition) Target() View {
	return t.next
}
