// Package camera detects meaningful camera movement.
//
// Mask rebuilds are the most expensive thing the compositor does, and the
// Tracker is the only thing that triggers them on camera motion: a frame
// whose snapped matrix matches the previous one within epsilon costs nothing.
package camera

import (
	"math"

	"github.com/gogpu/ggfx/geom"
)

// DefaultEpsilon is the per-component tolerance used to compare snapshots.
const DefaultEpsilon = 1e-4

// linearGrid is the rounding step applied to the scale/rotation terms.
const linearGrid = 1e-6

// Snapshot is a camera matrix snapped to the device-pixel grid.
type Snapshot struct {
	A, B, C, D float64
	TX, TY     float64
}

// Snap converts a world transform into a Snapshot. The translation is
// rounded to whole device pixels at the given resolution (device pixels
// per CSS pixel); the linear terms are rounded to 1e-6 so float noise in
// zoom and rotation never reaches the comparison.
func Snap(m geom.Matrix, resolution float64) Snapshot {
	if resolution <= 0 {
		resolution = 1
	}
	return Snapshot{
		A:  roundTo(m.A, linearGrid),
		B:  roundTo(m.B, linearGrid),
		C:  roundTo(m.C, linearGrid),
		D:  roundTo(m.D, linearGrid),
		TX: math.Round(m.TX*resolution) / resolution,
		TY: math.Round(m.TY*resolution) / resolution,
	}
}

// Matrix returns the snapshot as a geom.Matrix.
func (s Snapshot) Matrix() geom.Matrix {
	return geom.Matrix{A: s.A, B: s.B, C: s.C, D: s.D, TX: s.TX, TY: s.TY}
}

// Differs reports whether any component of s and o differs by more than eps.
func (s Snapshot) Differs(o Snapshot, eps float64) bool {
	return math.Abs(s.A-o.A) > eps ||
		math.Abs(s.B-o.B) > eps ||
		math.Abs(s.C-o.C) > eps ||
		math.Abs(s.D-o.D) > eps ||
		math.Abs(s.TX-o.TX) > eps ||
		math.Abs(s.TY-o.TY) > eps
}

func roundTo(v, step float64) float64 {
	return math.Round(v/step) * step
}
