package camera

import (
	"time"

	"github.com/gogpu/ggfx/internal/logging"
	"github.com/gogpu/ggfx/render"
)

// Option configures a Tracker.
type Option func(*Tracker)

// WithEpsilon sets the per-component comparison tolerance.
func WithEpsilon(eps float64) Option {
	return func(t *Tracker) {
		if eps > 0 {
			t.epsilon = eps
		}
	}
}

// WithRefresh forces a change report every interval even when the camera
// is still, so masks pick up host changes that emit no camera events.
// Zero disables the periodic refresh.
func WithRefresh(interval time.Duration) Option {
	return func(t *Tracker) {
		t.refresh = interval
	}
}

// Tracker compares the snapped camera matrix against the last observed one
// and notifies listeners when it moved.
//
// Tracker is NOT safe for concurrent use.
type Tracker struct {
	epsilon    float64
	last       Snapshot
	observed   bool
	generation uint64
	listeners  []func(Snapshot)

	refresh time.Duration
	elapsed time.Duration
	forced  bool
}

// NewTracker creates a Tracker with DefaultEpsilon and no periodic refresh.
func NewTracker(opts ...Option) *Tracker {
	t := &Tracker{epsilon: DefaultEpsilon}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// OnChange registers fn to be called with the new snapshot on every change.
func (t *Tracker) OnChange(fn func(Snapshot)) {
	t.listeners = append(t.listeners, fn)
}

// Observe records s and reports whether it counts as a camera change.
// The first observation always does.
func (t *Tracker) Observe(s Snapshot) bool {
	changed := !t.observed || t.forced || s.Differs(t.last, t.epsilon)
	if !changed {
		return false
	}
	t.last = s
	t.observed = true
	t.forced = false
	t.generation++
	logging.With("camera").Debug("camera changed", "generation", t.generation, "tx", s.TX, "ty", s.TY, "scale", s.A)
	for _, fn := range t.listeners {
		fn(s)
	}
	return true
}

// Tick advances the periodic refresh cadence by dt.
func (t *Tracker) Tick(dt time.Duration) {
	if t.refresh <= 0 {
		return
	}
	t.elapsed += dt
	if t.elapsed >= t.refresh {
		t.elapsed = 0
		t.forced = true
	}
}

// Update is the per-frame entry point: it advances the refresh cadence and
// observes the camera's current snapped matrix.
func (t *Tracker) Update(cam render.Camera, dt time.Duration) bool {
	t.Tick(dt)
	return t.Observe(Snap(cam.WorldTransform(), cam.Resolution()))
}

// Last returns the last accepted snapshot.
func (t *Tracker) Last() (Snapshot, bool) {
	return t.last, t.observed
}

// Generation returns how many changes have been reported.
func (t *Tracker) Generation() uint64 {
	return t.generation
}

// Reset forgets the last snapshot so the next Observe reports a change.
func (t *Tracker) Reset() {
	t.observed = false
	t.elapsed = 0
}

// Refresh sets the periodic forced-refresh interval. Zero disables it.
func (t *Tracker) Refresh(every time.Duration) {
	t.refresh = every
	t.elapsed = 0
}
