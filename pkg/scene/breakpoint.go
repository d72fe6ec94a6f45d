package scene

import "github.com/taigrr/shelf/pkg/math3d"

// Breakpoint scales and lifts the scenes for narrow terminals so the
// model stays clear of the HUD.
type Breakpoint struct {
	Name        string
	MinCols     int
	RoomScale   float64
	RoomLift    float64
	ModuleScale float64
	ModuleLift  float64
}

// Breakpoints are ordered by MinCols.
var Breakpoints = []Breakpoint{
	{Name: "compact", MinCols: 0, RoomScale: 0.6, RoomLift: 0.6, ModuleScale: 0.5, ModuleLift: 0.08},
	{Name: "medium", MinCols: 80, RoomScale: 0.8, RoomLift: 0.3, ModuleScale: 0.75, ModuleLift: 0.04},
	{Name: "wide", MinCols: 120, RoomScale: 1, RoomLift: 0, ModuleScale: 1, ModuleLift: 0},
}

// BreakpointFor returns the breakpoint for a terminal cols wide.
func BreakpointFor(cols int) Breakpoint {
	bp := Breakpoints[0]
	for _, b := range Breakpoints[1:] {
		if cols >= b.MinCols {
			bp = b
		}
	}
	return bp
}

func group(scale, lift float64) math3d.Mat4 {
	return math3d.Translate(math3d.V3(0, lift, 0)).Mul(math3d.ScaleUniform(scale))
}
