package reconcile

import (
	"errors"
	"testing"
	"time"

	"github.com/gogpu/ggfx/effect"
	"github.com/gogpu/ggfx/effect/effecttest"
)

func newTestReconciler(opts ...Option) (*Reconciler, *effecttest.Recorder) {
	rec := &effecttest.Recorder{}
	reg := effect.NewRegistry()
	rec.Register(reg, effect.KindParticle, "rain", "snow")
	return New(reg, effect.KindParticle, opts...), rec
}

func rain(density float64) effect.Spec {
	return effect.Spec{Type: "rain", Options: effect.Options{"density": density}}
}

func stepFor(r *Reconciler, total, dt time.Duration) {
	for elapsed := time.Duration(0); elapsed < total; elapsed += dt {
		r.Step(dt)
	}
}

func TestApplyIdempotent(t *testing.T) {
	r, rec := newTestReconciler()
	desired := effect.Desired{"a": rain(0.5), "b": {Type: "snow"}}

	first := r.Apply(desired)
	if first.Created != 2 {
		t.Fatalf("first Apply() Created = %d, want 2", first.Created)
	}
	second := r.Apply(desired.Clone())
	if !second.Plan.Empty() || second.Created+second.Updated+second.Removed != 0 {
		t.Errorf("second Apply() = %+v, want no work", second.Plan)
	}
	if len(rec.Created) != 2 {
		t.Errorf("factory calls = %d, want 2", len(rec.Created))
	}
	for _, s := range rec.Created {
		if s.Configures != 0 {
			t.Errorf("%s configured %d times, want 0", s.Desc.ID, s.Configures)
		}
	}
}

func TestPlan(t *testing.T) {
	r, _ := newTestReconciler()
	r.Apply(effect.Desired{"a": rain(0.5), "b": rain(0.5), "c": rain(0.5)})

	p := r.Plan(effect.Desired{
		"a": rain(0.5),
		"b": rain(0.9),
		"d": {Type: "snow"},
	})
	if len(p.Create) != 1 || p.Create[0] != "d" {
		t.Errorf("Create = %v, want [d]", p.Create)
	}
	if len(p.Update) != 1 || p.Update[0] != "b" {
		t.Errorf("Update = %v, want [b]", p.Update)
	}
	if len(p.Remove) != 1 || p.Remove[0] != "c" {
		t.Errorf("Remove = %v, want [c]", p.Remove)
	}
}

func TestEndToEndFadeTimeout(t *testing.T) {
	r, rec := newTestReconciler(WithFadeDuration(time.Hour))

	r.Apply(effect.Desired{"a": rain(0.5)})
	inst, ok := r.Active("a")
	if !ok {
		t.Fatal("Active(a) missing after Apply")
	}
	if inst.State != StateActive {
		t.Errorf("State = %v, want %v", inst.State, StateActive)
	}

	pass := r.Apply(effect.Desired{})
	if _, ok := r.Active("a"); ok {
		t.Fatal("a still active after removal")
	}
	if d := r.Dying(); len(d) != 1 || d[0].ID != "a" {
		t.Fatalf("Dying() = %v, want [a]", d)
	}

	stepFor(r, DefaultSceneFadeTimeout-100*time.Millisecond, 100*time.Millisecond)
	if len(r.Dying()) != 1 {
		t.Fatal("instance destroyed before the fade timeout")
	}
	r.Step(100 * time.Millisecond)

	if len(r.ActiveIDs()) != 0 || len(r.Dying()) != 0 {
		t.Errorf("after timeout active=%v dying=%d, want both empty", r.ActiveIDs(), len(r.Dying()))
	}
	if !rec.Created[0].Destroyed() {
		t.Error("faded effect not destroyed")
	}
	if !pass.Resolved() {
		t.Error("removal pass not resolved after timeout")
	}
}

func TestFadeCompletesBeforeTimeout(t *testing.T) {
	r, rec := newTestReconciler(WithFadeDuration(time.Second))
	r.Apply(effect.Desired{"a": rain(0.5)})
	r.Apply(effect.Desired{})

	stepFor(r, time.Second, 100*time.Millisecond)
	if len(r.Dying()) != 0 {
		t.Errorf("Dying() = %d after the fade, want 0", len(r.Dying()))
	}
	if got := rec.Created[0].Alpha(); got != 0 {
		t.Errorf("faded Alpha() = %v, want 0", got)
	}
}

func TestCrossfade(t *testing.T) {
	r, rec := newTestReconciler(WithSoftTransition(true))
	r.Apply(effect.Desired{"a": rain(0.5)})

	pass := r.Apply(effect.Desired{"a": rain(0.9)})
	if pass.Replaced != 1 {
		t.Fatalf("Replaced = %d, want 1", pass.Replaced)
	}
	if len(rec.Created) != 2 {
		t.Fatalf("factory calls = %d, want 2", len(rec.Created))
	}
	old, next := rec.Created[0], rec.Created[1]
	if next.Alpha() != 0 {
		t.Errorf("replacement starts at alpha %v, want 0", next.Alpha())
	}
	if len(r.Dying()) != 1 {
		t.Fatalf("Dying() = %d during crossfade, want 1", len(r.Dying()))
	}

	stepFor(r, DefaultCrossfade/2, 50*time.Millisecond)
	if got := old.Alpha(); got < 0.45 || got > 0.55 {
		t.Errorf("old Alpha() at half time = %v, want ~0.5", got)
	}
	if got := next.Alpha(); got < 0.45 || got > 0.55 {
		t.Errorf("new Alpha() at half time = %v, want ~0.5", got)
	}

	stepFor(r, DefaultCrossfade/2, 50*time.Millisecond)
	if !old.Destroyed() {
		t.Error("old instance alive after crossfade")
	}
	if next.Alpha() != 1 {
		t.Errorf("new Alpha() after crossfade = %v, want 1", next.Alpha())
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want exactly one instance", r.Len())
	}
	inst, _ := r.Active("a")
	if !inst.OptionsCache.Equal(effect.Options{"density": 0.9}) {
		t.Errorf("OptionsCache = %v, want density 0.9", inst.OptionsCache)
	}
	if !pass.Resolved() {
		t.Error("crossfade pass not resolved")
	}
}

func TestTombstoneReAdd(t *testing.T) {
	r, rec := newTestReconciler()
	desired := effect.Desired{"X": rain(0.5)}
	r.Apply(desired)

	desired = effect.ApplyPatch(desired, effect.Patch{effect.Tombstone("X"): {}})
	r.Apply(desired)
	desired = effect.ApplyPatch(desired, effect.Patch{"X": rain(0.8)})
	r.Apply(desired)

	if ids := r.ActiveIDs(); len(ids) != 1 || ids[0] != "X" {
		t.Fatalf("ActiveIDs() = %v, want [X]", ids)
	}
	inst, _ := r.Active("X")
	if inst.Effect == effect.Effect(rec.Created[0]) {
		t.Error("re-added id reused the removed instance")
	}
	if got := inst.OptionsCache.Float("density", 0); got != 0.8 {
		t.Errorf("OptionsCache density = %v, want 0.8", got)
	}
	if got := rec.Created[1].Options.Float("density", 0); got != 0.8 {
		t.Errorf("new effect density = %v, want 0.8", got)
	}
}

func TestAtMostOneActive(t *testing.T) {
	r, _ := newTestReconciler(WithSoftTransition(true), WithCrossfade(time.Second))
	steps := []effect.Desired{
		{"a": rain(0.1)},
		{"a": rain(0.2)},
		{"a": rain(0.3), "b": rain(0.1)},
		{"a": {Type: "snow"}},
		{},
		{"a": rain(0.4), "b": rain(0.2)},
		{"a": rain(0.5), "b": rain(0.2)},
	}
	for i, d := range steps {
		r.Apply(d)
		r.Step(300 * time.Millisecond)

		active := make(map[string]int)
		for _, inst := range r.Live() {
			if inst.State == StateActive {
				active[inst.ID]++
			}
		}
		for id, n := range active {
			if n > 1 {
				t.Errorf("step %d: %d active instances for %q", i, n, id)
			}
		}
	}
}

func TestPaintOrderBelowTokensLast(t *testing.T) {
	r, _ := newTestReconciler()
	r.Apply(effect.Desired{"under": {Type: "rain", Options: effect.Options{"belowTokens": true}}})
	r.Apply(effect.Desired{
		"under": {Type: "rain", Options: effect.Options{"belowTokens": true}},
		"over":  {Type: "snow"},
		"also":  {Type: "snow"},
	})

	order := r.PaintOrder()
	if len(order) != 3 {
		t.Fatalf("PaintOrder() len = %d, want 3", len(order))
	}
	if order[2].ID != "under" {
		t.Errorf("last painted = %q, want %q", order[2].ID, "under")
	}
	if order[0].Seq > order[1].Seq {
		t.Error("ordinary tier not in creation order")
	}
	if !r.NeedsCutout() {
		t.Error("NeedsCutout() = false with a below-objects effect")
	}
}

func TestUnknownTypeIsolated(t *testing.T) {
	r, _ := newTestReconciler()
	desired := effect.Desired{"a": rain(0.5), "b": {Type: "meteor"}}

	pass := r.Apply(desired)
	if pass.Created != 1 || pass.Skipped != 1 {
		t.Fatalf("Apply() created=%d skipped=%d, want 1 and 1", pass.Created, pass.Skipped)
	}
	var ute *effect.UnknownTypeError
	if !errors.As(pass.Errors["b"], &ute) {
		t.Errorf("Errors[b] = %v, want *effect.UnknownTypeError", pass.Errors["b"])
	}
	if again := r.Apply(desired); !again.Plan.Empty() {
		t.Errorf("re-apply planned %+v, want nothing for a known-bad id", again.Plan)
	}
	if fixed := r.Apply(effect.Desired{"a": rain(0.5), "b": {Type: "snow"}}); fixed.Created != 1 {
		t.Errorf("fixed descriptor Created = %d, want 1", fixed.Created)
	}
}

func TestFadeFailureCountsAsComplete(t *testing.T) {
	rec := &effecttest.Recorder{FadeErr: effect.ErrDestroyed}
	reg := effect.NewRegistry()
	rec.Register(reg, effect.KindFilter, "bloom", "color")
	r := New(reg, effect.KindFilter)

	r.Apply(effect.Desired{"a": {Type: "bloom"}, "b": {Type: "color"}})
	pass := r.Apply(effect.Desired{})

	if !pass.Resolved() {
		t.Error("pass with failed fades not resolved")
	}
	if r.Len() != 0 {
		t.Errorf("Len() = %d, want 0", r.Len())
	}
}

func TestUpdateInPlace(t *testing.T) {
	r, rec := newTestReconciler()
	r.Apply(effect.Desired{"a": rain(0.5)})
	pass := r.Apply(effect.Desired{"a": rain(0.7)})

	if pass.Updated != 1 || len(rec.Created) != 1 {
		t.Fatalf("updated=%d created=%d, want in-place update", pass.Updated, len(rec.Created))
	}
	if rec.Created[0].Configures != 1 {
		t.Errorf("Configures = %d, want 1", rec.Created[0].Configures)
	}
}

func TestSynchronousReplace(t *testing.T) {
	tests := []struct {
		name   string
		before effect.Spec
		after  effect.Spec
	}{
		{
			"reconfigure refused",
			effect.Spec{Type: "rain", Options: effect.Options{"replace": true}},
			effect.Spec{Type: "rain", Options: effect.Options{"replace": true, "density": 1}},
		},
		{"type change", rain(0.5), effect.Spec{Type: "snow"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, rec := newTestReconciler()
			r.Apply(effect.Desired{"a": tt.before})
			pass := r.Apply(effect.Desired{"a": tt.after})

			if pass.Replaced != 1 {
				t.Fatalf("Replaced = %d, want 1", pass.Replaced)
			}
			if !rec.Created[0].Destroyed() {
				t.Error("old instance not destroyed synchronously")
			}
			if len(r.Dying()) != 0 {
				t.Error("synchronous replace left a dying instance")
			}
		})
	}
}

func TestPrewarm(t *testing.T) {
	r, rec := newTestReconciler(WithPrewarm(true))
	r.Apply(effect.Desired{"a": rain(0.5)})
	if !rec.Created[0].Played || !rec.Created[0].Prewarmed {
		t.Error("effect not played prewarmed")
	}
}

func TestStepSkipsDisabled(t *testing.T) {
	r, rec := newTestReconciler()
	r.Apply(effect.Desired{"a": rain(0.5), "b": rain(0.5)})
	rec.Created[0].SetEnabled(false)

	r.Step(time.Second)
	if rec.Created[0].Steps != 0 || rec.Created[1].Steps != 1 {
		t.Errorf("steps = %d, %d, want 0, 1", rec.Created[0].Steps, rec.Created[1].Steps)
	}
}

func TestOnChange(t *testing.T) {
	var changes int
	r, _ := newTestReconciler(WithOnChange(func() { changes++ }))
	r.Apply(effect.Desired{"a": rain(0.5)})
	if changes == 0 {
		t.Error("OnChange not called on create")
	}
	before := changes
	r.Apply(effect.Desired{"a": rain(0.5)})
	if changes != before {
		t.Error("OnChange called for a no-op pass")
	}
}

func TestShutdown(t *testing.T) {
	r, rec := newTestReconciler(WithFadeDuration(time.Hour))
	r.Apply(effect.Desired{"a": rain(0.5), "b": rain(0.5)})
	pass := r.Apply(effect.Desired{"a": rain(0.5)})

	r.Shutdown()
	if !pass.Resolved() {
		t.Error("pending fade survived Shutdown")
	}
	for _, s := range rec.Created {
		if !s.Destroyed() {
			t.Errorf("%s not destroyed by Shutdown", s.Desc.ID)
		}
	}
	if r.Len() != 0 || r.Pending() != 0 {
		t.Errorf("Len()=%d Pending()=%d after Shutdown, want 0", r.Len(), r.Pending())
	}

	r.Shutdown()
	if p := r.Apply(effect.Desired{"c": rain(1)}); p.Created != 0 {
		t.Error("Apply after Shutdown created effects")
	}
}
