// Package layout places holes (slots) along a single axis of a modular piece.
//
// An Engine owns the ordered set of slots and keeps three invariants at all
// times: every slot lies inside [XMin, XMax], any two slots are at least
// CollisionDistance apart, and the slot count stays within [1, MaxSlots].
// Every failed mutation leaves the layout untouched.
package layout

import (
	"fmt"
	"math"

	"github.com/charmbracelet/log"
)

// Design constants for the module configurator.
const (
	HoleRadius        = 0.12
	CollisionDistance = HoleRadius * 2
	XMin              = -1.4 // model center -0.4, 1.0 to the left
	XMax              = 0.0
	MaxSlots          = 5
	InitialX          = -0.4
)

// epsilon absorbs float rounding when a slot is committed exactly
// CollisionDistance away from a neighbour.
const epsilon = 1e-12

// DefaultCandidates is the insertion priority list used by AddSlot. It starts
// at the visual center of the piece and alternates outward.
var DefaultCandidates = []float64{-0.4, -0.7, -0.1, -1.0, -1.3, -0.55, -0.25, -0.85, -1.15}

// Slot is a placed hole.
type Slot struct {
	ID int
	X  float64
}

// Constraints configures an Engine.
type Constraints struct {
	XMin              float64
	XMax              float64
	CollisionDistance float64
	MaxSlots          int
	Initial           float64
	Candidates        []float64
}

// DefaultConstraints returns the constraints of the stock module piece.
func DefaultConstraints() Constraints {
	return Constraints{
		XMin:              XMin,
		XMax:              XMax,
		CollisionDistance: CollisionDistance,
		MaxSlots:          MaxSlots,
		Initial:           InitialX,
		Candidates:        append([]float64(nil), DefaultCandidates...),
	}
}

// Validate reports whether c can seed a layout that satisfies its own
// invariants.
func (c Constraints) Validate() error {
	if math.IsNaN(c.XMin) || math.IsNaN(c.XMax) || c.XMin > c.XMax {
		return fmt.Errorf("invalid range [%v, %v]", c.XMin, c.XMax)
	}
	if !(c.CollisionDistance > 0) {
		return fmt.Errorf("collision distance must be positive, got %v", c.CollisionDistance)
	}
	if c.MaxSlots < 1 {
		return fmt.Errorf("max slots must be at least 1, got %d", c.MaxSlots)
	}
	if !c.inRange(c.Initial) {
		return fmt.Errorf("initial position %v outside [%v, %v]", c.Initial, c.XMin, c.XMax)
	}
	for i, x := range c.Candidates {
		if !c.inRange(x) {
			return fmt.Errorf("candidate %d (%v) outside [%v, %v]", i, x, c.XMin, c.XMax)
		}
	}
	return nil
}

func (c Constraints) inRange(x float64) bool {
	return x >= c.XMin && x <= c.XMax
}

// Clamp limits x to [XMin, XMax].
func (c Constraints) Clamp(x float64) float64 {
	return math.Max(c.XMin, math.Min(c.XMax, x))
}

// Engine holds the current layout.
type Engine struct {
	c      Constraints
	slots  []Slot
	nextID int
	logger *log.Logger
}

// New creates an engine holding a single slot at c.Initial.
// A nil logger falls back to log.Default().
func New(c Constraints, logger *log.Logger) (*Engine, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("layout constraints: %w", err)
	}
	if logger == nil {
		logger = log.Default()
	}
	e := &Engine{
		c:      c,
		logger: logger,
	}
	e.c.Candidates = append([]float64(nil), c.Candidates...)
	e.insert(c.Initial)
	return e, nil
}

// Constraints returns the engine's constraints.
func (e *Engine) Constraints() Constraints {
	c := e.c
	c.Candidates = append([]float64(nil), e.c.Candidates...)
	return c
}

// Count returns the number of slots.
func (e *Engine) Count() int {
	return len(e.slots)
}

// Snapshot returns the slots in insertion order.
func (e *Engine) Snapshot() []Slot {
	return append([]Slot(nil), e.slots...)
}

// Position returns the x of slot id.
func (e *Engine) Position(id int) (float64, bool) {
	i := e.index(id)
	if i < 0 {
		return 0, false
	}
	return e.slots[i].X, true
}

// Has reports whether slot id exists.
func (e *Engine) Has(id int) bool {
	return e.index(id) >= 0
}

// AddSlot places a new slot at the first free candidate position.
// When the layout is full or no candidate is free it logs a warning and
// returns false without touching the layout.
func (e *Engine) AddSlot() (Slot, bool) {
	if len(e.slots) >= e.c.MaxSlots {
		e.logger.Warn("no space available", "reason", "max slots", "count", len(e.slots), "max", e.c.MaxSlots)
		return Slot{}, false
	}
	x, ok := e.freeCandidate()
	if !ok {
		e.logger.Warn("no space available", "reason", "no free candidate", "count", len(e.slots))
		return Slot{}, false
	}
	s := e.insert(x)
	e.logger.Debug("slot added", "id", s.ID, "x", s.X, "count", len(e.slots))
	return s, true
}

// RemoveSlot removes the most recently added slot. The last remaining slot
// is never removed.
func (e *Engine) RemoveSlot() (Slot, bool) {
	if len(e.slots) <= 1 {
		e.logger.Debug("remove ignored", "reason", "last slot")
		return Slot{}, false
	}
	last := e.slots[len(e.slots)-1]
	e.slots = e.slots[:len(e.slots)-1]
	e.logger.Debug("slot removed", "id", last.ID, "count", len(e.slots))
	return last, true
}

// HasAvailableSpace reports whether some candidate position is free. It does
// not consider the slot count.
func (e *Engine) HasAvailableSpace() bool {
	_, ok := e.freeCandidate()
	return ok
}

// CanAdd reports whether AddSlot would succeed.
func (e *Engine) CanAdd() bool {
	return len(e.slots) < e.c.MaxSlots && e.HasAvailableSpace()
}

// CanRemove reports whether RemoveSlot would succeed.
func (e *Engine) CanRemove() bool {
	return len(e.slots) > 1
}

// UpdateSlotPosition moves slot id toward proposedX and returns the committed
// position. The proposal is clamped to the range; if it would collide, the
// slot stops CollisionDistance short of the nearest neighbour in the
// direction of travel. With no such neighbour the slot stays put.
func (e *Engine) UpdateSlotPosition(id int, proposedX float64) (float64, bool) {
	i := e.index(id)
	if i < 0 {
		return 0, false
	}
	current := e.slots[i].X
	if math.IsNaN(proposedX) || math.IsInf(proposedX, 0) {
		return current, false
	}

	target := e.c.Clamp(proposedX)
	if !e.collides(id, target) {
		return e.commit(i, target)
	}

	if target > current {
		right, ok := e.nearestRight(id, current)
		if !ok {
			return current, false
		}
		return e.commit(i, math.Min(target, right-e.c.CollisionDistance))
	}

	left, ok := e.nearestLeft(id, current)
	if !ok {
		return current, false
	}
	return e.commit(i, math.Max(target, left+e.c.CollisionDistance))
}

func (e *Engine) commit(i int, x float64) (float64, bool) {
	moved := x != e.slots[i].X
	e.slots[i].X = x
	return x, moved
}

func (e *Engine) insert(x float64) Slot {
	s := Slot{ID: e.nextID, X: x}
	e.nextID++
	e.slots = append(e.slots, s)
	return s
}

func (e *Engine) index(id int) int {
	for i, s := range e.slots {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// freeCandidate returns the first candidate clear of every slot.
func (e *Engine) freeCandidate() (float64, bool) {
	for _, x := range e.c.Candidates {
		if !e.collides(-1, x) {
			return x, true
		}
	}
	return 0, false
}

// collides reports whether x is too close to any slot other than id.
func (e *Engine) collides(id int, x float64) bool {
	for _, s := range e.slots {
		if s.ID == id {
			continue
		}
		if math.Abs(x-s.X) < e.c.CollisionDistance-epsilon {
			return true
		}
	}
	return false
}

func (e *Engine) nearestRight(id int, from float64) (float64, bool) {
	best, found := math.Inf(1), false
	for _, s := range e.slots {
		if s.ID != id && s.X > from && s.X < best {
			best, found = s.X, true
		}
	}
	return best, found
}

func (e *Engine) nearestLeft(id int, from float64) (float64, bool) {
	best, found := math.Inf(-1), false
	for _, s := range e.slots {
		if s.ID != id && s.X < from && s.X > best {
			best, found = s.X, true
		}
	}
	return best, found
}
