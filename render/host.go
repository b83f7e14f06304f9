package render

import (
	"time"

	"github.com/gogpu/ggfx/geom"
)

// StaticCamera is a Camera with fixed, directly assignable values.
// Headless hosts and tests move it by writing Transform.
type StaticCamera struct {
	Transform geom.Matrix
	Width     float64
	Height    float64
	DPR       float64
}

// WorldTransform returns Transform.
func (c *StaticCamera) WorldTransform() geom.Matrix { return c.Transform }

// ViewSize returns Width and Height.
func (c *StaticCamera) ViewSize() (float64, float64) { return c.Width, c.Height }

// Resolution returns DPR, defaulting to 1.
func (c *StaticCamera) Resolution() float64 {
	if c.DPR <= 0 {
		return 1
	}
	return c.DPR
}

// ManualTicker is a Ticker driven by explicit Tick calls.
type ManualTicker struct {
	next      int
	callbacks map[int]func(time.Duration)
	order     []int
}

// NewManualTicker creates an empty ManualTicker.
func NewManualTicker() *ManualTicker {
	return &ManualTicker{callbacks: make(map[int]func(time.Duration))}
}

// Register adds fn to the tick list.
func (t *ManualTicker) Register(fn func(time.Duration)) func() {
	id := t.next
	t.next++
	t.callbacks[id] = fn
	t.order = append(t.order, id)
	return func() {
		delete(t.callbacks, id)
	}
}

// Tick invokes every registered callback in registration order.
// Callbacks registered during a Tick run from the next Tick on.
func (t *ManualTicker) Tick(dt time.Duration) {
	ids := append([]int(nil), t.order...)
	for _, id := range ids {
		if fn, ok := t.callbacks[id]; ok {
			fn(dt)
		}
	}
	live := t.order[:0]
	for _, id := range t.order {
		if _, ok := t.callbacks[id]; ok {
			live = append(live, id)
		}
	}
	t.order = live
}

// Len returns the number of registered callbacks.
func (t *ManualTicker) Len() int {
	return len(t.callbacks)
}

// StaticScene is a SceneSource with fixed values.
type StaticScene struct {
	Rect    geom.Rect
	Regions []Suppression
}

// SceneRect returns Rect.
func (s *StaticScene) SceneRect() geom.Rect { return s.Rect }

// SuppressionRegions returns Regions.
func (s *StaticScene) SuppressionRegions() []Suppression { return s.Regions }

// StaticObjects is a MovingObjectSource over a fixed slice.
type StaticObjects []MovingObject

// VisibleObjects returns the slice.
func (o StaticObjects) VisibleObjects() []MovingObject { return o }
