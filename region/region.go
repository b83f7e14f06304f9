// Package region binds effects to polygonal scene regions.
//
// Each region behavior gets a Binding holding its own reconcilers; the
// effects of every binding of a region are clipped by the region's mask,
// painted from the region shapes against the current view. Gates decide
// each frame whether a binding is shown, without destroying anything.
package region

import (
	"math"
	"slices"

	"github.com/gogpu/ggfx/effect"
	"github.com/gogpu/ggfx/geom"
)

// GateMode selects how observer elevation gates a behavior.
type GateMode uint8

const (
	// GateNone never hides the behavior for elevation.
	GateNone GateMode = iota

	// GateObserverPOV shows the behavior while one of the viewer's points
	// of view is inside the region's elevation range.
	GateObserverPOV

	// GateNamedTargets shows the behavior while one of the named moving
	// objects is inside the region's elevation range.
	GateNamedTargets
)

// String returns the mode name.
func (g GateMode) String() string {
	switch g {
	case GateNone:
		return "none"
	case GateObserverPOV:
		return "observerPOV"
	case GateNamedTargets:
		return "namedTargets"
	default:
		return "unknown"
	}
}

// Event is a region trigger fired by a tracked moving object.
type Event uint8

const (
	EventEnter Event = iota
	EventExit
)

// String returns the event name.
func (e Event) String() string {
	if e == EventExit {
		return "exit"
	}
	return "enter"
}

// Range is an elevation interval, bounds inclusive. The zero Range
// contains every elevation.
type Range struct {
	Bottom, Top float64
}

// Contains reports whether z is inside r.
func (r Range) Contains(z float64) bool {
	if r == (Range{}) {
		return true
	}
	return z >= r.Bottom && z <= r.Top
}

// Behavior binds effects to a region.
type Behavior struct {
	// Effects maps an effect type to its options. The type is resolved
	// against the registry as a particle effect first, then as a filter.
	Effects map[effect.Type]effect.Options

	ElevationGate GateMode

	// NamedTargets lists the moving objects consulted by GateNamedTargets.
	NamedTargets []string

	// AlwaysVisibleForPrivileged bypasses the elevation gate for a
	// privileged viewer.
	AlwaysVisibleForPrivileged bool

	// Events subscribes the behavior to region triggers. With EventEnter
	// the behavior shows once an object entered; with both it shows while
	// an object is inside; with EventExit alone it shows until an object
	// left.
	Events []Event

	Disabled bool
}

func (b Behavior) subscribes(ev Event) bool {
	return slices.Contains(b.Events, ev)
}

// Region is a scene area with its shapes and behaviors.
type Region struct {
	ID        string
	Shapes    []geom.Shape
	Elevation Range
	Behaviors []Behavior
}

// bounds returns the world rectangle covered by the non-hole shapes.
func (r Region) bounds() geom.Rect {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, s := range r.Shapes {
		if s == nil || s.IsHole() || s.Degenerate() {
			continue
		}
		for _, p := range s.Outline(1) {
			minX, maxX = min(minX, p.X), max(maxX, p.X)
			minY, maxY = min(minY, p.Y), max(maxY, p.Y)
		}
	}
	if minX > maxX || minY > maxY {
		return geom.Rect{}
	}
	return geom.Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// Observer is a moving object with its elevation.
type Observer struct {
	ID        string
	Elevation float64
}

// Viewer is the local viewer's state as seen by the gates.
type Viewer struct {
	Privileged bool

	// POV lists the objects the viewer currently sees through.
	POV []Observer

	// Tracked lists every moving object the gates may name.
	Tracked []Observer
}

// ViewerSource reports the viewer once per frame.
type ViewerSource interface {
	Viewer() Viewer
}

// ViewerFunc adapts a function to ViewerSource.
type ViewerFunc func() Viewer

// Viewer calls f.
func (f ViewerFunc) Viewer() Viewer { return f() }
