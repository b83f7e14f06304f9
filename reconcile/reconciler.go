package reconcile

import (
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/gogpu/ggfx/anim"
	"github.com/gogpu/ggfx/effect"
	"github.com/gogpu/ggfx/internal/logging"
	"github.com/gogpu/ggfx/shader"
)

// Reconciler diffs Desired mappings against the running instances of one
// effect kind.
type Reconciler struct {
	registry *effect.Registry
	kind     effect.Kind
	cfg      config
	label    string

	active   map[string]*Instance
	dying    map[*Instance]struct{}
	skipped  map[string]effect.Spec
	timeline anim.Timeline
	seq      uint64
	closed   bool
}

// New creates a Reconciler creating effects of kind from registry.
func New(registry *effect.Registry, kind effect.Kind, opts ...Option) *Reconciler {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	label := cfg.label
	if label == "" {
		label = kind.String()
	}
	return &Reconciler{
		registry: registry,
		kind:     kind,
		cfg:      cfg,
		label:    label,
		active:   make(map[string]*Instance),
		dying:    make(map[*Instance]struct{}),
		skipped:  make(map[string]effect.Spec),
	}
}

func (r *Reconciler) log() *slog.Logger {
	return logging.With("reconcile").With(slog.String("reconciler", r.label))
}

// Kind returns the effect kind the reconciler manages.
func (r *Reconciler) Kind() effect.Kind { return r.kind }

// Plan computes the work Apply(desired) would do. Ids whose last create
// failed with the same spec are not planned again.
func (r *Reconciler) Plan(desired effect.Desired) Plan {
	var p Plan
	for id, spec := range desired {
		if effect.IsTombstone(id) {
			continue
		}
		inst, ok := r.active[id]
		if !ok {
			if prev, failed := r.skipped[id]; failed && prev.Equal(spec) {
				continue
			}
			p.Create = append(p.Create, id)
			continue
		}
		if inst.Type != spec.Type.Fold() || !inst.OptionsCache.Equal(spec.Options) {
			p.Update = append(p.Update, id)
		}
	}
	for id := range r.active {
		if _, ok := desired[id]; !ok {
			p.Remove = append(p.Remove, id)
		}
	}
	p.sort()
	return p
}

// Apply moves the active set to desired. A failing id is logged and
// skipped without affecting the others.
func (r *Reconciler) Apply(desired effect.Desired) *Pass {
	pass := &Pass{}
	if r.closed {
		pass.group = anim.Join()
		return pass
	}
	for id := range r.skipped {
		if spec, ok := desired[id]; !ok || !spec.Equal(r.skipped[id]) {
			delete(r.skipped, id)
		}
	}

	plan := r.Plan(desired)
	pass.Plan = plan
	var ops []*anim.Op

	for _, id := range plan.Remove {
		ops = append(ops, r.remove(id))
		pass.Removed++
	}
	for _, id := range plan.Create {
		if _, err := r.create(id, desired[id]); err != nil {
			pass.skip(id, err)
			continue
		}
		pass.Created++
	}
	for _, id := range plan.Update {
		op, replaced, err := r.update(id, desired[id])
		switch {
		case err != nil:
			pass.skip(id, err)
		case replaced:
			pass.Replaced++
		default:
			pass.Updated++
		}
		if op != nil {
			ops = append(ops, op)
		}
	}

	pass.group = anim.Join(ops...)
	if !plan.Empty() {
		r.log().Debug("reconciled",
			"created", pass.Created, "updated", pass.Updated, "replaced", pass.Replaced,
			"removed", pass.Removed, "skipped", pass.Skipped)
		r.changed()
	}
	return pass
}

// instantiate creates and plays an instance without registering it.
func (r *Reconciler) instantiate(id string, spec effect.Spec, alpha float64) (*Instance, error) {
	e, err := r.registry.New(effect.Descriptor{
		ID:      id,
		Kind:    r.kind,
		Type:    spec.Type,
		Options: spec.Options,
	})
	if err != nil {
		r.skipped[id] = effect.Spec{Type: spec.Type, Options: spec.Options.Clone()}
		r.log().Warn("skipping effect", "id", id, "type", string(spec.Type), "err", err)
		return nil, err
	}
	r.seq++
	inst := &Instance{
		ID:           id,
		Type:         spec.Type.Fold(),
		Effect:       e,
		State:        StateCreated,
		OptionsCache: spec.Options.Clone(),
		Seq:          r.seq,
	}
	e.SetAlpha(alpha)
	e.Play(r.cfg.prewarm)
	inst.State = StateActive
	return inst, nil
}

func (r *Reconciler) create(id string, spec effect.Spec) (*Instance, error) {
	inst, err := r.instantiate(id, spec, 1)
	if err != nil {
		return nil, err
	}
	r.active[id] = inst
	return inst, nil
}

// update reconfigures id in place or replaces it. It returns the crossfade
// operation when one was started.
func (r *Reconciler) update(id string, spec effect.Spec) (*anim.Op, bool, error) {
	inst := r.active[id]
	if !r.cfg.soft && inst.Type == spec.Type.Fold() {
		err := inst.Effect.Configure(spec.Options.Clone())
		if err == nil {
			inst.OptionsCache = spec.Options.Clone()
			return nil, false, nil
		}
		if !errors.Is(err, effect.ErrReconfigure) {
			r.log().Warn("configure failed", "id", id, "err", err)
			return nil, false, err
		}
	}
	op, err := r.replace(inst, spec)
	return op, err == nil, err
}

// replace swaps inst for a fresh instance of spec. In soft mode the two
// crossfade; otherwise the old instance is destroyed at once. When the
// replacement cannot be created the old instance fades out.
func (r *Reconciler) replace(old *Instance, spec effect.Spec) (*anim.Op, error) {
	old.settle()
	alpha := 1.0
	if r.cfg.soft {
		alpha = 0
	}
	next, err := r.instantiate(old.ID, spec, alpha)
	if err != nil {
		delete(r.active, old.ID)
		return r.fadeOut(old), err
	}
	r.active[old.ID] = next
	if !r.cfg.soft {
		r.destroy(old)
		return nil, nil
	}

	old.State = StateFading
	r.dying[old] = struct{}{}
	from := old.Effect.Alpha()
	op := anim.NewOp(r.cfg.crossfade, func(p float64) {
		next.Effect.SetAlpha(p)
		old.Effect.SetAlpha(from * (1 - p))
	})
	op.OnResolve(func(reason anim.Reason) {
		if reason == anim.Elapsed || reason == anim.Completed {
			next.Effect.SetAlpha(1)
		}
		r.destroy(old)
	})
	old.pending = op
	next.pending = op
	r.timeline.Add(op)
	r.log().Debug("crossfade started", "id", old.ID, "duration", r.cfg.crossfade)
	return op, nil
}

func (r *Reconciler) remove(id string) *anim.Op {
	inst := r.active[id]
	delete(r.active, id)
	return r.fadeOut(inst)
}

// fadeOut moves inst to the dying set and destroys it when its fade
// resolves or the fade timeout elapses.
func (r *Reconciler) fadeOut(inst *Instance) *anim.Op {
	inst.settle()
	inst.State = StateFading
	r.dying[inst] = struct{}{}

	fade, err := inst.Effect.FadeOut(r.cfg.fadeDuration)
	if err != nil {
		r.log().Debug("fade failed, treating as complete", "id", inst.ID, "err", err)
		fade = anim.Resolved(anim.TargetDestroyed)
	}
	op := anim.Race(fade, r.cfg.fadeTimeout)
	op.OnResolve(func(reason anim.Reason) {
		if reason == anim.Elapsed && !fade.Resolved() {
			r.log().Debug("fade timed out", "id", inst.ID, "timeout", r.cfg.fadeTimeout)
		}
		r.destroy(inst)
	})
	inst.pending = op
	return r.timeline.Add(op)
}

func (r *Reconciler) destroy(inst *Instance) {
	if inst.State == StateDestroyed {
		return
	}
	inst.State = StateDestroyed
	delete(r.dying, inst)
	inst.Effect.Destroy()
	r.changed()
}

func (r *Reconciler) changed() {
	if r.cfg.onChange != nil {
		r.cfg.onChange()
	}
}

// Step advances every enabled live effect and every pending operation.
func (r *Reconciler) Step(dt time.Duration) {
	if r.closed {
		return
	}
	for _, inst := range r.Live() {
		if inst.State != StateDestroyed && inst.Effect.Enabled() {
			inst.Effect.Step(dt)
		}
	}
	r.timeline.Advance(dt)
}

// Active returns the active instance of id.
func (r *Reconciler) Active(id string) (*Instance, bool) {
	inst, ok := r.active[id]
	return inst, ok
}

// ActiveIDs returns the ids of the active instances, sorted.
func (r *Reconciler) ActiveIDs() []string {
	ids := make([]string, 0, len(r.active))
	for id := range r.active {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Dying returns the fading instances in creation order.
func (r *Reconciler) Dying() []*Instance {
	out := make([]*Instance, 0, len(r.dying))
	for inst := range r.dying {
		out = append(out, inst)
	}
	sortBySeq(out)
	return out
}

// Live returns active and dying instances in creation order.
func (r *Reconciler) Live() []*Instance {
	out := make([]*Instance, 0, len(r.active)+len(r.dying))
	for _, inst := range r.active {
		out = append(out, inst)
	}
	for inst := range r.dying {
		out = append(out, inst)
	}
	sortBySeq(out)
	return out
}

// Len returns the number of live instances.
func (r *Reconciler) Len() int {
	return len(r.active) + len(r.dying)
}

// PaintOrder returns the live instances in drawing order: ordinary effects
// first, then effects rendered beneath moving objects, each tier in
// creation order.
func (r *Reconciler) PaintOrder() []*Instance {
	out := r.Live()
	sort.SliceStable(out, func(i, j int) bool {
		return !out[i].Effect.BelowTokens() && out[j].Effect.BelowTokens()
	})
	return out
}

// NeedsCutout reports whether a visible live effect renders beneath
// moving objects.
func (r *Reconciler) NeedsCutout() bool {
	for _, inst := range r.Live() {
		if inst.Effect.Visible() && inst.Effect.BelowTokens() {
			return true
		}
	}
	return false
}

// NeedsSilhouette reports whether a visible below-objects effect samples
// the moving-object silhouette.
func (r *Reconciler) NeedsSilhouette() bool {
	for _, inst := range r.Live() {
		e := inst.Effect
		if e.Visible() && e.BelowTokens() && e.Program() != nil && e.Program().Declares(shader.TokenSampler) {
			return true
		}
	}
	return false
}

// Pending returns the number of operations in flight.
func (r *Reconciler) Pending() int {
	return r.timeline.Len()
}

// Shutdown stops stepping, cancels every pending operation, then destroys
// every instance. It is idempotent.
func (r *Reconciler) Shutdown() {
	if r.closed {
		return
	}
	r.closed = true
	r.timeline.CancelAll()
	for _, inst := range r.Live() {
		r.destroy(inst)
	}
	clear(r.active)
	clear(r.skipped)
	r.log().Debug("reconciler shut down")
}

func sortBySeq(s []*Instance) {
	sort.Slice(s, func(i, j int) bool { return s[i].Seq < s[j].Seq })
}
