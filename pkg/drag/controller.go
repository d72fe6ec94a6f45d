// Package drag turns pointer input into constrained slot moves.
//
// A Controller is a two-state machine (Idle, Dragging). The presentation
// layer translates its pointer events into Input messages and hands them to
// Handle; the controller never sees screen coordinates, only positions
// already projected onto the layout axis.
//
// While Dragging, the controller holds a subscription on a Bus so that a
// pointer released anywhere ends the drag. The subscription is acquired on
// entry to Dragging and released on exit.
package drag

import (
	"math"
)

// State is the controller state.
type State int

const (
	Idle State = iota
	Dragging
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	default:
		return "unknown"
	}
}

// Input is a pointer event already projected onto the layout axis.
type Input interface {
	isInput()
}

// PointerDown is a press on the hit region of slot SlotID at axis position X.
type PointerDown struct {
	SlotID int
	X      float64
}

// PointerMove is a pointer motion at axis position X.
type PointerMove struct {
	X float64
}

// PointerUp is a release over the dragged slot.
type PointerUp struct{}

// GlobalPointerUp is a release anywhere on screen.
type GlobalPointerUp struct{}

// PointerMissed is a release over empty space.
type PointerMissed struct{}

func (PointerDown) isInput()     {}
func (PointerMove) isInput()     {}
func (PointerUp) isInput()       {}
func (GlobalPointerUp) isInput() {}
func (PointerMissed) isInput()   {}

// Mover is the layout the controller drives.
type Mover interface {
	Position(id int) (float64, bool)
	UpdateSlotPosition(id int, proposedX float64) (float64, bool)
}

// Session is the state captured at pointer-down.
type Session struct {
	SlotID        int
	PointerStartX float64
	SlotStartX    float64
}

// Controller runs drag sessions against a Mover.
type Controller struct {
	layout    Mover
	bus       *Bus
	state     State
	session   Session
	release   Handle
	observers []func(dragging bool)
}

// NewController creates an idle controller. bus may be nil, in which case
// only PointerUp and PointerMissed end a drag.
func NewController(layout Mover, bus *Bus) *Controller {
	return &Controller{
		layout: layout,
		bus:    bus,
	}
}

// OnChange registers fn to be called with true when a drag starts and false
// when it ends.
func (c *Controller) OnChange(fn func(dragging bool)) {
	c.observers = append(c.observers, fn)
}

// State returns the current state.
func (c *Controller) State() State {
	return c.state
}

// Dragging reports whether a drag is active.
func (c *Controller) Dragging() bool {
	return c.state == Dragging
}

// Session returns the active session.
func (c *Controller) Session() (Session, bool) {
	if c.state != Dragging {
		return Session{}, false
	}
	return c.session, true
}

// Handle applies one input. It reports whether the input was accepted;
// rejected inputs leave both the controller and the layout unchanged.
func (c *Controller) Handle(in Input) bool {
	switch in := in.(type) {
	case PointerDown:
		return c.begin(in)
	case PointerMove:
		return c.move(in)
	case PointerUp, GlobalPointerUp, PointerMissed:
		return c.end()
	default:
		return false
	}
}

func (c *Controller) begin(in PointerDown) bool {
	if c.state == Dragging || !finite(in.X) {
		return false
	}
	x, ok := c.layout.Position(in.SlotID)
	if !ok {
		return false
	}

	c.state = Dragging
	c.session = Session{
		SlotID:        in.SlotID,
		PointerStartX: in.X,
		SlotStartX:    x,
	}
	if c.bus != nil {
		c.release = c.bus.Subscribe(func() { c.end() })
	}
	c.notify(true)
	return true
}

func (c *Controller) move(in PointerMove) bool {
	if c.state != Dragging || !finite(in.X) {
		return false
	}
	proposed := c.session.SlotStartX + (in.X - c.session.PointerStartX)
	_, moved := c.layout.UpdateSlotPosition(c.session.SlotID, proposed)
	return moved
}

// end is the single exit from Dragging shared by every release path.
func (c *Controller) end() bool {
	if c.state != Dragging {
		return false
	}
	c.release.Remove()
	c.release = Handle{}
	c.state = Idle
	c.session = Session{}
	c.notify(false)
	return true
}

// Cancel ends any active drag, as if the pointer had been released.
func (c *Controller) Cancel() {
	c.end()
}

func (c *Controller) notify(dragging bool) {
	for _, fn := range c.observers {
		fn(dragging)
	}
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
