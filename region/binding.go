package region

import (
	"slices"
	"sort"
	"time"

	"github.com/gogpu/ggfx/effect"
	"github.com/gogpu/ggfx/reconcile"
	"github.com/gogpu/ggfx/render"
)

// Binding is one region behavior together with the effects it runs.
type Binding struct {
	RegionID string
	Index    int
	Behavior Behavior

	// Mask is the region mask every effect of the binding is clipped by.
	// It is shared by the bindings of a region and owned by the Manager.
	Mask *render.RenderTarget

	// Cutout is Mask minus the moving-object footprints. It is nil unless
	// an effect of the region renders beneath moving objects.
	Cutout *render.RenderTarget

	Particles *reconcile.Reconciler
	Filters   *reconcile.Reconciler

	// Visible is the gate outcome of the last frame.
	Visible bool

	inside map[string]struct{}
	exited bool
	state  *regionState
}

// PaintOrder returns the live instances of the binding in drawing order.
func (b *Binding) PaintOrder() []*reconcile.Instance {
	out := append(b.Particles.Live(), b.Filters.Live()...)
	sort.SliceStable(out, func(i, j int) bool {
		return !out[i].Effect.BelowTokens() && out[j].Effect.BelowTokens()
	})
	return out
}

// Len returns the number of live instances.
func (b *Binding) Len() int {
	return b.Particles.Len() + b.Filters.Len()
}

func (b *Binding) idle() bool {
	return b.Len() == 0 && b.Particles.Pending() == 0 && b.Filters.Pending() == 0
}

func (b *Binding) apply(particles, filters effect.Desired) {
	b.Particles.Apply(particles)
	b.Filters.Apply(filters)
}

func (b *Binding) step(dt time.Duration) {
	b.Particles.Step(dt)
	b.Filters.Step(dt)
}

func (b *Binding) shutdown() {
	b.Particles.Shutdown()
	b.Filters.Shutdown()
}

// notify records a trigger and reports whether the behavior listens to it.
func (b *Binding) notify(ev Event, objectID string) bool {
	enter, exit := b.Behavior.subscribes(EventEnter), b.Behavior.subscribes(EventExit)
	switch {
	case ev == EventEnter && enter:
		b.inside[objectID] = struct{}{}
	case ev == EventExit && exit && enter:
		delete(b.inside, objectID)
	case ev == EventExit && exit:
		b.exited = true
	default:
		return false
	}
	return true
}

func (b *Binding) eventOpen() bool {
	enter, exit := b.Behavior.subscribes(EventEnter), b.Behavior.subscribes(EventExit)
	switch {
	case enter:
		return len(b.inside) > 0
	case exit:
		return !b.exited
	default:
		return true
	}
}

func (b *Binding) elevationOpen(v Viewer, r Range) bool {
	if b.Behavior.AlwaysVisibleForPrivileged && v.Privileged {
		return true
	}
	switch b.Behavior.ElevationGate {
	case GateObserverPOV:
		if len(v.POV) == 0 {
			return v.Privileged
		}
		for _, o := range v.POV {
			if r.Contains(o.Elevation) {
				return true
			}
		}
		return false
	case GateNamedTargets:
		for _, o := range v.Tracked {
			if slices.Contains(b.Behavior.NamedTargets, o.ID) && r.Contains(o.Elevation) {
				return true
			}
		}
		return false
	default:
		return true
	}
}

// gate evaluates the gates and toggles the live instances. It only flips
// flags, so calling it every frame is cheap.
func (b *Binding) gate(v Viewer, r Range) {
	open := !b.Behavior.Disabled && b.eventOpen() && b.elevationOpen(v, r)
	b.Visible = open
	for _, rec := range []*reconcile.Reconciler{b.Particles, b.Filters} {
		for _, inst := range rec.Live() {
			inst.Effect.SetVisible(open)
			inst.Effect.SetEnabled(open)
		}
	}
}
