package ggfx

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/gogpu/ggfx/camera"
	"github.com/gogpu/ggfx/compositor"
	"github.com/gogpu/ggfx/effect"
	"github.com/gogpu/ggfx/internal/logging"
	"github.com/gogpu/ggfx/mask"
	"github.com/gogpu/ggfx/reconcile"
	"github.com/gogpu/ggfx/region"
	"github.com/gogpu/ggfx/render"
)

// ErrClosed is returned by operations on a session after Shutdown.
var ErrClosed = errors.New("ggfx: session is shut down")

// Stats reports session activity.
type Stats struct {
	Ticks      int
	MaskBuilds int // scene mask sets painted
	Particles  int // live particle instances
	Filters    int // live filter instances
	Pool       render.PoolStats
	Regions    region.Stats
	Binder     compositor.Stats
}

// Layer is one entry of the paint order.
type Layer struct {
	ID     string
	Kind   effect.Kind
	Effect effect.Effect

	// RegionID is empty for scene effects.
	RegionID string
}

// Session owns every compositor service for one scene: the render target
// pool, camera tracker, mask builder, scene reconcilers, region manager and
// uniform binder.
//
// A Session is driven from one goroutine, through the host Ticker or by
// calling Tick directly. It is NOT safe for concurrent use.
type Session struct {
	rc  render.RenderContext
	cfg config

	pool      *render.Pool
	tracker   *camera.Tracker
	builder   *mask.Builder
	particles *reconcile.Reconciler
	filters   *reconcile.Reconciler
	regions   *region.Manager
	binder    *compositor.Binder
	events    *events

	particleSet effect.Desired
	filterSet   effect.Desired

	view       mask.View
	hasView    bool
	dirty      bool
	recheck    bool
	regional   bool // region effects were live at the last rebuild
	cutout     bool
	silhouette bool

	untick func()
	closed bool
	err    error
	stats  Stats
}

// NewSession creates a session over the host collaborators in rc and
// registers its tick with rc.Ticker when one is given.
func NewSession(rc render.RenderContext, opts ...Option) (*Session, error) {
	if err := rc.Validate(); err != nil {
		return nil, err
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger != nil {
		SetLogger(cfg.logger)
	}
	reg := cfg.registry
	if reg == nil {
		reg = DefaultRegistry()
	}

	s := &Session{
		rc:          rc,
		cfg:         cfg,
		pool:        render.NewPool(rc.Allocator),
		particleSet: effect.Desired{},
		filterSet:   effect.Desired{},
		dirty:       true,
	}
	s.tracker = camera.NewTracker(camera.WithEpsilon(cfg.epsilon), camera.WithRefresh(cfg.refresh))
	s.tracker.OnChange(func(camera.Snapshot) { s.InvalidateMasks() })
	s.builder = mask.NewBuilder(s.pool, mask.WithTolerance(cfg.tolerance))

	scene := s.sceneRegistry(reg)
	recOpts := func(label string) []reconcile.Option {
		return []reconcile.Option{
			reconcile.WithSoftTransition(cfg.soft),
			reconcile.WithCrossfade(cfg.crossfade),
			reconcile.WithFadeTimeout(cfg.sceneTimeout),
			reconcile.WithPrewarm(cfg.prewarm),
			reconcile.WithOnChange(func() { s.recheck = true }),
			reconcile.WithLabel(label),
		}
	}
	s.particles = reconcile.New(scene, effect.KindParticle, recOpts("particles")...)
	s.filters = reconcile.New(scene, effect.KindFilter, recOpts("filters")...)
	s.regions = region.NewManager(s.builder, reg,
		region.WithViewer(cfg.viewer),
		region.WithObjects(rc),
		region.WithSoftTransition(cfg.soft),
		region.WithCrossfade(cfg.crossfade),
		region.WithFadeTimeout(cfg.regionTimeout),
		region.WithPrewarm(cfg.prewarm),
	)
	s.binder = compositor.NewBinder(s.pool)
	s.events = newEvents()

	if cfg.warmup > 0 {
		key := mask.ViewFromCamera(rc.Camera).Key()
		if err := s.pool.Warmup(key, cfg.warmup); err != nil {
			return nil, fmt.Errorf("ggfx: warmup: %w", err)
		}
	}
	if rc.Ticker != nil {
		s.untick = rc.Ticker.Register(s.onTick)
	}
	s.log().Info("session started", "soft", cfg.soft, "prewarm", cfg.prewarm)
	return s, nil
}

// sceneRegistry wraps every factory of reg so effects covering an area
// start with the scene rectangle as their bounds, before they are played.
// Types registered into reg after this call are not seen.
func (s *Session) sceneRegistry(reg *effect.Registry) *effect.Registry {
	out := effect.NewRegistry()
	for _, kind := range []effect.Kind{effect.KindParticle, effect.KindFilter} {
		for _, typ := range reg.Types(kind) {
			f, _ := reg.Lookup(kind, typ)
			out.Register(kind, typ, func(d effect.Descriptor) (effect.Effect, error) {
				e, err := f(d)
				if err != nil {
					return nil, err
				}
				if b, ok := e.(effect.Bounded); ok {
					b.SetBounds(s.rc.Scene.SceneRect())
				}
				return e, nil
			})
		}
	}
	return out
}

func (s *Session) onTick(dt time.Duration) {
	if err := s.Tick(dt); err != nil {
		s.log().Error("tick failed", "err", err)
	}
}

// Tick advances the session by one frame: the camera is observed, every
// effect is stepped, dirty masks are repainted once, region gates are
// evaluated and every live effect is bound to its masks.
//
// A mask allocation failure is returned and also reported by Err.
func (s *Session) Tick(dt time.Duration) error {
	if s.closed {
		return nil
	}
	s.stats.Ticks++

	s.tracker.Update(s.rc.Camera, dt)
	view := s.currentView()
	if !s.hasView || !view.SameSize(s.view) {
		s.dirty = true
	}
	s.view, s.hasView = view, true

	s.particles.Step(dt)
	s.filters.Step(dt)

	if err := s.rebuild(); err != nil {
		s.err = err
		return err
	}
	if err := s.regions.Frame(view, dt); err != nil {
		s.err = fmt.Errorf("ggfx: %w", err)
		return s.err
	}
	if err := s.bind(); err != nil {
		s.err = err
		return err
	}
	s.err = nil
	return nil
}

func (s *Session) log() *slog.Logger {
	return logging.With("session")
}

// currentView returns the view at the tracker's last snapped matrix, so
// camera noise below the epsilon does not reach the masks.
func (s *Session) currentView() mask.View {
	view := mask.ViewFromCamera(s.rc.Camera)
	if snap, ok := s.tracker.Last(); ok {
		view.Matrix = snap.Matrix()
	}
	return view
}

// rebuild repaints the scene mask set when the camera moved, a
// suppression region or moving object changed, or the live effects start
// or stop needing the cutout or silhouette. Region effects beneath moving
// objects, fading ones included, share the scene silhouette.
func (s *Session) rebuild() error {
	bindings := s.regions.Live()
	if s.recheck || len(bindings) > 0 || s.regional {
		s.recheck = false
		s.regional = len(bindings) > 0
		cut := s.particles.NeedsCutout() || s.filters.NeedsCutout()
		sil := s.particles.NeedsSilhouette() || s.filters.NeedsSilhouette()
		for _, b := range bindings {
			sil = sil || b.Particles.NeedsSilhouette() || b.Filters.NeedsSilhouette()
		}
		if cut != s.cutout || sil != s.silhouette {
			s.cutout, s.silhouette = cut, sil
			s.dirty = true
		}
	}
	if !s.dirty && s.builder.Set().Ready() {
		return nil
	}
	scene := s.rc.Scene
	set, err := s.builder.Build(s.view, scene.SceneRect(), scene.SuppressionRegions(), s.rc.VisibleObjects(), s.cutout, s.silhouette)
	if err != nil {
		return fmt.Errorf("ggfx: masks: %w", err)
	}
	set.Generation = s.tracker.Generation()
	s.dirty = false
	s.stats.MaskBuilds++
	return nil
}

func (s *Session) bind() error {
	vp := compositor.ViewportOf(s.view)
	set := s.builder.Set()
	scene := compositor.SceneMasks(set)
	for _, l := range s.sceneLayers() {
		if err := s.binder.Bind(l.Effect, scene, vp); err != nil {
			return fmt.Errorf("ggfx: bind %s: %w", l.ID, err)
		}
	}
	for _, b := range s.regions.Live() {
		masks := compositor.RegionMasks(b.Mask, b.Cutout, set.Silhouette)
		for _, inst := range b.PaintOrder() {
			if err := s.binder.Bind(inst.Effect, masks, vp); err != nil {
				return fmt.Errorf("ggfx: bind %s/%s: %w", b.RegionID, inst.ID, err)
			}
		}
	}
	return nil
}

// InvalidateMasks requests a repaint of every mask on the next Tick. Hosts
// call it when moving objects or suppression regions change. Repeated
// calls within one frame cause a single repaint.
func (s *Session) InvalidateMasks() {
	s.dirty = true
	s.regions.Invalidate()
}

// SetParticles replaces the desired scene particle effects.
func (s *Session) SetParticles(d effect.Desired) *reconcile.Pass {
	return s.applyParticles(d.Clone())
}

// SetFilters replaces the desired scene filters.
func (s *Session) SetFilters(d effect.Desired) *reconcile.Pass {
	return s.applyFilters(d.Clone())
}

// PatchParticles merges p into the desired particle effects. Tombstone
// keys remove ids.
func (s *Session) PatchParticles(p effect.Patch) *reconcile.Pass {
	return s.applyParticles(effect.ApplyPatch(s.particleSet, p))
}

// PatchFilters merges p into the desired filters.
func (s *Session) PatchFilters(p effect.Patch) *reconcile.Pass {
	return s.applyFilters(effect.ApplyPatch(s.filterSet, p))
}

func (s *Session) applyParticles(d effect.Desired) *reconcile.Pass {
	s.particleSet = d
	return s.particles.Apply(d)
}

func (s *Session) applyFilters(d effect.Desired) *reconcile.Pass {
	s.filterSet = d
	return s.filters.Apply(d)
}

// Particles returns a copy of the desired particle effects.
func (s *Session) Particles() effect.Desired { return s.particleSet.Clone() }

// Filters returns a copy of the desired filters.
func (s *Session) Filters() effect.Desired { return s.filterSet.Clone() }

// SetRegions replaces the regions carrying effects.
func (s *Session) SetRegions(regions []region.Region) error {
	if s.closed {
		return ErrClosed
	}
	return s.regions.Sync(regions)
}

// NotifyRegion forwards a region trigger fired by a moving object.
func (s *Session) NotifyRegion(regionID string, ev region.Event, objectID string) bool {
	return s.regions.Notify(regionID, ev, objectID)
}

func (s *Session) sceneLayers() []Layer {
	var out []Layer
	for _, inst := range s.particles.Live() {
		out = append(out, Layer{ID: inst.ID, Kind: effect.KindParticle, Effect: inst.Effect})
	}
	for _, inst := range s.filters.Live() {
		out = append(out, Layer{ID: inst.ID, Kind: effect.KindFilter, Effect: inst.Effect})
	}
	return out
}

// PaintOrder returns every live effect in drawing order. Effects rendered
// beneath moving objects come after all others; within a tier scene
// particles precede scene filters, which precede region effects.
func (s *Session) PaintOrder() []Layer {
	out := s.sceneLayers()
	for _, b := range s.regions.Live() {
		for _, inst := range b.Particles.Live() {
			out = append(out, Layer{ID: inst.ID, Kind: effect.KindParticle, Effect: inst.Effect, RegionID: b.RegionID})
		}
		for _, inst := range b.Filters.Live() {
			out = append(out, Layer{ID: inst.ID, Kind: effect.KindFilter, Effect: inst.Effect, RegionID: b.RegionID})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return !out[i].Effect.BelowTokens() && out[j].Effect.BelowTokens()
	})
	return out
}

// Masks returns the scene mask set of the last Tick.
func (s *Session) Masks() *mask.Set {
	return s.builder.Set()
}

// Regions returns the region manager.
func (s *Session) Regions() *region.Manager {
	return s.regions
}

// Reconciler returns the scene reconciler of kind.
func (s *Session) Reconciler(kind effect.Kind) *reconcile.Reconciler {
	if kind == effect.KindFilter {
		return s.filters
	}
	return s.particles
}

// Err returns the error of the last Tick, nil when it succeeded.
func (s *Session) Err() error {
	return s.err
}

// Stats returns a snapshot of session activity.
func (s *Session) Stats() Stats {
	st := s.stats
	st.Particles = s.particles.Len()
	st.Filters = s.filters.Len()
	st.Pool = s.pool.Stats()
	st.Regions = s.regions.Stats()
	st.Binder = s.binder.Stats()
	return st
}

// Shutdown tears the session down in a fixed order: the tick is stopped,
// pending fades and crossfades are canceled, every effect is destroyed,
// and only then are the pooled targets released and drained. It is
// idempotent.
func (s *Session) Shutdown() {
	if s.closed {
		return
	}
	s.closed = true
	if s.untick != nil {
		s.untick()
		s.untick = nil
	}
	s.particles.Shutdown()
	s.filters.Shutdown()
	s.regions.Shutdown()
	s.builder.Release()
	s.binder.Release()
	s.pool.Drain()
	s.log().Info("session shut down", "ticks", s.stats.Ticks)
}

// Closed reports whether Shutdown was called.
func (s *Session) Closed() bool {
	return s.closed
}
