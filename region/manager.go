package region

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"github.com/gogpu/ggfx/effect"
	"github.com/gogpu/ggfx/geom"
	"github.com/gogpu/ggfx/internal/logging"
	"github.com/gogpu/ggfx/mask"
	"github.com/gogpu/ggfx/reconcile"
	"github.com/gogpu/ggfx/render"
)

// ErrDuplicateRegion is returned by Sync when two regions share an id.
var ErrDuplicateRegion = errors.New("region: duplicate region id")

type regionState struct {
	region   Region
	bounds   geom.Rect
	mask     *render.RenderTarget
	cutout   *render.RenderTarget
	dirty    bool
	stale    bool // cutout predates mask
	removed  bool
	bindings []*Binding
}

// Stats reports manager activity.
type Stats struct {
	Regions  int
	Bindings int
	Retiring int // bindings fading out after their region or behavior vanished
	Frames   int
	Rebuilds int // region masks painted
	Cutouts  int // region cutouts painted
}

// Manager keeps one Binding per effect-carrying region behavior.
//
// Mask rebuilds are coalesced: Sync, Invalidate and view changes only mark
// masks dirty, and Frame paints each dirty mask once.
//
// Manager is NOT safe for concurrent use.
type Manager struct {
	builder  *mask.Builder
	registry *effect.Registry
	cfg      config

	regions  map[string]*regionState
	gone     []*regionState
	retiring []*Binding

	view    mask.View
	hasView bool
	dirty   bool
	closed  bool
	stats   Stats
}

// NewManager creates a Manager painting masks with builder and creating
// effects from registry.
func NewManager(builder *mask.Builder, registry *effect.Registry, opts ...Option) *Manager {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Manager{
		builder:  builder,
		registry: registry,
		cfg:      cfg,
		regions:  make(map[string]*regionState),
	}
}

func (m *Manager) log() *slog.Logger {
	return logging.With("region")
}

// Sync makes the bindings match regions. Regions without effects get no
// binding. Changed shapes invalidate the region mask; effects of vanished
// regions and behaviors fade out within the fade timeout.
func (m *Manager) Sync(regions []Region) error {
	if m.closed {
		return nil
	}
	seen := make(map[string]struct{}, len(regions))
	for _, r := range regions {
		if _, dup := seen[r.ID]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateRegion, r.ID)
		}
		seen[r.ID] = struct{}{}
	}

	for _, r := range regions {
		if !hasEffects(r) {
			delete(seen, r.ID)
			continue
		}
		st, ok := m.regions[r.ID]
		if !ok {
			st = &regionState{dirty: true}
			m.regions[r.ID] = st
			m.log().Debug("region bound", "region", r.ID, "behaviors", len(r.Behaviors))
		} else if !geom.ShapesEqual(st.region.Shapes, r.Shapes) {
			st.dirty = true
		}
		st.region = r
		st.bounds = r.bounds()
		m.syncBindings(st)
	}

	for id, st := range m.regions {
		if _, ok := seen[id]; ok {
			continue
		}
		for _, b := range st.bindings {
			m.retire(b)
		}
		st.bindings = nil
		st.removed = true
		delete(m.regions, id)
		m.gone = append(m.gone, st)
		m.log().Debug("region unbound", "region", id)
	}
	m.releaseGone()
	return nil
}

func hasEffects(r Region) bool {
	for _, b := range r.Behaviors {
		if len(b.Effects) > 0 {
			return true
		}
	}
	return false
}

func (m *Manager) syncBindings(st *regionState) {
	behaviors := st.region.Behaviors
	for i, beh := range behaviors {
		var b *Binding
		if i < len(st.bindings) {
			b = st.bindings[i]
		} else {
			b = m.newBinding(st, i)
			st.bindings = append(st.bindings, b)
		}
		b.Behavior = beh
		particles, filters := m.desired(st.region.ID, beh)
		b.apply(particles, filters)
		m.bound(b)
	}
	for _, b := range st.bindings[min(len(behaviors), len(st.bindings)):] {
		m.retire(b)
	}
	st.bindings = st.bindings[:min(len(behaviors), len(st.bindings))]
}

func (m *Manager) newBinding(st *regionState, index int) *Binding {
	label := st.region.ID + "#" + strconv.Itoa(index)
	opts := []reconcile.Option{
		reconcile.WithSoftTransition(m.cfg.soft),
		reconcile.WithPrewarm(m.cfg.prewarm),
		reconcile.WithCrossfade(m.cfg.crossfade),
		reconcile.WithFadeDuration(m.cfg.fadeTimeout),
		reconcile.WithFadeTimeout(m.cfg.fadeTimeout),
	}
	return &Binding{
		RegionID:  st.region.ID,
		Index:     index,
		Mask:      st.mask,
		Cutout:    st.cutout,
		Particles: reconcile.New(m.registry, effect.KindParticle, append(opts, reconcile.WithLabel(label+"/particles"))...),
		Filters:   reconcile.New(m.registry, effect.KindFilter, append(opts, reconcile.WithLabel(label+"/filters"))...),
		inside:    make(map[string]struct{}),
		state:     st,
	}
}

// desired splits a behavior's effects by kind. Effect ids are the folded
// type tags, so a binding runs at most one instance per type.
func (m *Manager) desired(regionID string, beh Behavior) (particles, filters effect.Desired) {
	particles, filters = effect.Desired{}, effect.Desired{}
	for typ, opts := range beh.Effects {
		id := string(typ.Fold())
		spec := effect.Spec{Type: typ, Options: opts}
		switch {
		case m.has(effect.KindParticle, typ):
			particles[id] = spec
		case m.has(effect.KindFilter, typ):
			filters[id] = spec
		default:
			m.log().Warn("unknown region effect type", "region", regionID, "type", string(typ))
		}
	}
	return particles, filters
}

func (m *Manager) has(kind effect.Kind, typ effect.Type) bool {
	_, ok := m.registry.Lookup(kind, typ)
	return ok
}

// bound passes the region bounds to effects that spawn across an area.
func (m *Manager) bound(b *Binding) {
	r := b.state.bounds
	if r.Empty() {
		return
	}
	for _, inst := range b.PaintOrder() {
		if eb, ok := inst.Effect.(effect.Bounded); ok {
			eb.SetBounds(r)
		}
	}
}

func (m *Manager) retire(b *Binding) {
	b.apply(nil, nil)
	m.retiring = append(m.retiring, b)
}

// Notify delivers a region trigger fired by objectID and reports whether
// a behavior of the region listens to it.
func (m *Manager) Notify(regionID string, ev Event, objectID string) bool {
	st, ok := m.regions[regionID]
	if !ok {
		return false
	}
	handled := false
	for _, b := range st.bindings {
		if b.notify(ev, objectID) {
			handled = true
		}
	}
	if handled {
		m.log().Debug("region trigger", "region", regionID, "event", ev.String(), "object", objectID)
	}
	return handled
}

// Invalidate marks every region mask dirty. The masks are repainted by the
// next Frame, once, however often Invalidate was called.
func (m *Manager) Invalidate() {
	m.dirty = true
}

// Frame repaints dirty masks for view, evaluates the gates and steps
// every bound effect by dt. A view change invalidates every mask.
//
// Regions running effects beneath moving objects also get a cutout: the
// region mask minus the footprints of the visible objects.
//
// Allocation failures are returned; the affected masks stay dirty.
func (m *Manager) Frame(view mask.View, dt time.Duration) error {
	if m.closed {
		return nil
	}
	m.stats.Frames++
	if !m.hasView || view != m.view {
		m.view, m.hasView = view, true
		m.dirty = true
	}

	for _, id := range m.ids() {
		st := m.regions[id]
		if !st.dirty && !m.dirty {
			continue
		}
		t, err := m.builder.BuildRegionMask(view, st.region.Shapes, st.mask)
		if err != nil {
			m.builder.Pool().Release(t)
			st.mask = nil
			st.dirty = true
			m.setMask(st)
			return fmt.Errorf("region %s: %w", id, err)
		}
		st.mask = t
		st.dirty = false
		st.stale = true
		m.setMask(st)
		m.stats.Rebuilds++
	}
	m.dirty = false
	if err := m.cutouts(view); err != nil {
		return err
	}

	var v Viewer
	if m.cfg.viewer != nil {
		v = m.cfg.viewer.Viewer()
	}
	for _, id := range m.ids() {
		st := m.regions[id]
		for _, b := range st.bindings {
			b.gate(v, st.region.Elevation)
			b.step(dt)
		}
	}
	m.stepRetiring(dt)
	return nil
}

// cutouts paints the cutout of every region whose live effects render
// beneath moving objects and releases the cutouts no longer needed.
func (m *Manager) cutouts(view mask.View) error {
	var objects []render.MovingObject
	if m.cfg.objects != nil {
		objects = m.cfg.objects.VisibleObjects()
	}
	for _, id := range m.ids() {
		st := m.regions[id]
		if !m.needsCutout(st) {
			if st.cutout != nil {
				m.builder.Pool().Release(st.cutout)
				st.cutout = nil
				m.setMask(st)
			}
			continue
		}
		if !st.stale && st.cutout.Valid() {
			continue
		}
		t, err := m.builder.BuildRegionCutout(view, st.mask, objects, st.cutout)
		if err != nil {
			m.builder.Pool().Release(t)
			st.cutout = nil
			m.setMask(st)
			return fmt.Errorf("region %s: %w", id, err)
		}
		st.cutout = t
		st.stale = false
		m.setMask(st)
		m.stats.Cutouts++
	}
	return nil
}

func (m *Manager) needsCutout(st *regionState) bool {
	for _, b := range m.Live() {
		if b.state == st && (b.Particles.NeedsCutout() || b.Filters.NeedsCutout()) {
			return true
		}
	}
	return false
}

func (m *Manager) setMask(st *regionState) {
	for _, b := range st.bindings {
		b.Mask, b.Cutout = st.mask, st.cutout
	}
	for _, b := range m.retiring {
		if b.state == st {
			b.Mask, b.Cutout = st.mask, st.cutout
		}
	}
}

func (m *Manager) stepRetiring(dt time.Duration) {
	kept := m.retiring[:0]
	for _, b := range m.retiring {
		b.step(dt)
		if b.idle() {
			b.shutdown()
			continue
		}
		kept = append(kept, b)
	}
	clear(m.retiring[len(kept):])
	m.retiring = kept
	m.releaseGone()
}

// releaseGone returns the masks of vanished regions once none of their
// bindings is still fading.
func (m *Manager) releaseGone() {
	kept := m.gone[:0]
	for _, st := range m.gone {
		busy := false
		for _, b := range m.retiring {
			if b.state == st {
				busy = true
				break
			}
		}
		if busy {
			kept = append(kept, st)
			continue
		}
		m.builder.Pool().Release(st.mask)
		m.builder.Pool().Release(st.cutout)
		st.mask, st.cutout = nil, nil
	}
	clear(m.gone[len(kept):])
	m.gone = kept
}

func (m *Manager) ids() []string {
	ids := make([]string, 0, len(m.regions))
	for id := range m.regions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Bindings returns every current binding ordered by region id and
// behavior index. Retiring bindings are not included.
func (m *Manager) Bindings() []*Binding {
	var out []*Binding
	for _, id := range m.ids() {
		out = append(out, m.regions[id].bindings...)
	}
	return out
}

// Live returns the current bindings followed by the retiring ones, which
// keep their region mask until their effects faded out.
func (m *Manager) Live() []*Binding {
	return append(m.Bindings(), m.retiring...)
}

// Binding returns the binding of a region behavior.
func (m *Manager) Binding(regionID string, index int) (*Binding, bool) {
	st, ok := m.regions[regionID]
	if !ok || index < 0 || index >= len(st.bindings) {
		return nil, false
	}
	return st.bindings[index], true
}

// Retiring returns the bindings still fading out.
func (m *Manager) Retiring() []*Binding {
	return append([]*Binding(nil), m.retiring...)
}

// Stats returns a snapshot of manager activity.
func (m *Manager) Stats() Stats {
	s := m.stats
	s.Regions = len(m.regions)
	s.Retiring = len(m.retiring)
	for _, st := range m.regions {
		s.Bindings += len(st.bindings)
	}
	return s
}

// Shutdown stops every binding, cancels pending fades, destroys every
// effect and returns the region masks to the pool. It is idempotent.
func (m *Manager) Shutdown() {
	if m.closed {
		return
	}
	m.closed = true
	for _, b := range m.retiring {
		b.shutdown()
	}
	for _, st := range m.regions {
		for _, b := range st.bindings {
			b.shutdown()
		}
		m.gone = append(m.gone, st)
	}
	m.retiring = nil
	clear(m.regions)
	m.releaseGone()
}
