package particle

import (
	"errors"
	"testing"
	"time"

	"github.com/gogpu/ggfx/anim"
	"github.com/gogpu/ggfx/effect"
	"github.com/gogpu/ggfx/geom"
	"github.com/gogpu/ggfx/shader"
)

func newRain(t *testing.T, opts effect.Options) *Emitter {
	t.Helper()
	e, err := New(effect.Descriptor{ID: "a", Kind: effect.KindParticle, Type: "rain", Options: opts})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return e
}

func stepFor(e *Emitter, total, dt time.Duration) {
	for elapsed := time.Duration(0); elapsed < total; elapsed += dt {
		e.Step(dt)
	}
}

func TestNewUnknownPreset(t *testing.T) {
	_, err := New(effect.Descriptor{ID: "x", Type: "meteor"})
	var ute *effect.UnknownTypeError
	if !errors.As(err, &ute) {
		t.Errorf("New() error = %v, want *effect.UnknownTypeError", err)
	}
}

func TestEmitterDensity(t *testing.T) {
	low := newRain(t, effect.Options{"density": 0.2, "seed": 1})
	high := newRain(t, effect.Options{"density": 1, "seed": 1})
	for _, e := range []*Emitter{low, high} {
		e.Play(false)
		stepFor(e, 500*time.Millisecond, 50*time.Millisecond)
	}
	if low.Len() == 0 {
		t.Fatal("low density spawned nothing")
	}
	if low.Len() >= high.Len() {
		t.Errorf("Len() low=%d high=%d, want low < high", low.Len(), high.Len())
	}
}

func TestEmitterPrewarm(t *testing.T) {
	cold := newRain(t, effect.Options{"seed": 7})
	warm := newRain(t, effect.Options{"seed": 7})
	cold.Play(false)
	warm.Play(true)

	if cold.Len() != 0 {
		t.Errorf("cold Len() = %d, want 0 before any step", cold.Len())
	}
	if warm.Len() == 0 {
		t.Error("prewarmed emitter has no particles")
	}
}

func TestEmitterSpawnsInsideBounds(t *testing.T) {
	e := newRain(t, nil)
	bounds := geom.Rect{X: 100, Y: 200, W: 300, H: 300}
	e.SetBounds(bounds)
	e.Play(false)
	e.Step(100 * time.Millisecond)

	for i, p := range e.Particles() {
		if p.Age > 0 {
			continue
		}
		if !bounds.Contains(p.Pos) {
			t.Errorf("particle %d spawned at %v outside %v", i, p.Pos, bounds)
		}
	}
}

func TestEmitterMaxParticles(t *testing.T) {
	e := newRain(t, effect.Options{"maxParticles": 10, "density": 50})
	e.Play(false)
	stepFor(e, 500*time.Millisecond, 50*time.Millisecond)
	if e.Len() > 10 {
		t.Errorf("Len() = %d, want at most 10", e.Len())
	}
}

func TestEmitterFadeOut(t *testing.T) {
	e := newRain(t, nil)
	e.Play(true)

	op, err := e.FadeOut(time.Hour)
	if err != nil {
		t.Fatalf("FadeOut() error = %v", err)
	}
	if e.Emitting() {
		t.Error("still emitting after FadeOut")
	}
	again, _ := e.FadeOut(time.Hour)
	if again != op {
		t.Error("second FadeOut started another fade")
	}

	stepFor(e, 2*time.Second, 50*time.Millisecond)
	if e.Len() != 0 {
		t.Fatalf("Len() = %d after particles expired", e.Len())
	}
	if op.Reason() != anim.Completed {
		t.Errorf("fade Reason() = %v, want %v once empty", op.Reason(), anim.Completed)
	}
}

func TestEmitterDestroy(t *testing.T) {
	e := newRain(t, nil)
	e.Play(true)
	op, _ := e.FadeOut(time.Hour)
	e.Destroy()

	if op.Reason() != anim.TargetDestroyed {
		t.Errorf("fade Reason() = %v, want %v", op.Reason(), anim.TargetDestroyed)
	}
	if _, err := e.FadeOut(time.Second); !errors.Is(err, effect.ErrDestroyed) {
		t.Errorf("FadeOut() after Destroy = %v, want ErrDestroyed", err)
	}
	if e.Len() != 0 {
		t.Error("particles survived Destroy")
	}
}

func TestEmitterConfigure(t *testing.T) {
	e := newRain(t, effect.Options{"density": 0.5})

	if err := e.Configure(effect.Options{"density": 0.9}); err != nil {
		t.Fatalf("Configure() error = %v", err)
	}
	if e.Config().Density != 0.9 {
		t.Errorf("Density = %v, want 0.9", e.Config().Density)
	}
	if err := e.Configure(effect.Options{"belowTokens": true}); !errors.Is(err, effect.ErrReconfigure) {
		t.Errorf("Configure(belowTokens) = %v, want ErrReconfigure", err)
	}
	if err := e.Configure(effect.Options{"tint": "not-a-color"}); err == nil {
		t.Error("Configure(bad tint) error = nil")
	}
}

func TestTint(t *testing.T) {
	e := newRain(t, effect.Options{"tint": "#ff0000"})
	if got := e.Config().Tint; got.R != 0xff || got.G != 0 || got.B != 0 {
		t.Errorf("Tint = %+v, want red", got)
	}
}

func TestInstancesCarryAlpha(t *testing.T) {
	e := newRain(t, effect.Options{"seed": 3})
	e.Play(true)
	e.SetAlpha(0)
	for i, in := range e.Instances() {
		if in.Color[3] != 0 {
			t.Fatalf("Instances()[%d] alpha = %v with emitter alpha 0", i, in.Color[3])
		}
	}
}

func TestEmitterProgram(t *testing.T) {
	e := newRain(t, nil)
	p := e.Program()
	if p == nil {
		t.Fatal("Program() = nil")
	}
	for _, name := range []string{shader.MaskSampler, shader.HasMask, shader.ViewSize, shader.DeviceToCSS, shader.TokenSampler} {
		if !p.Declares(name) {
			t.Errorf("particle program does not declare %q", name)
		}
	}
	e.SetAlpha(0.25)
	if got := p.Float(shader.Alpha); got != 0.25 {
		t.Errorf("alpha uniform = %v, want 0.25", got)
	}
}

func TestRegisterDefaults(t *testing.T) {
	reg := effect.NewRegistry()
	RegisterDefaults(reg)
	for _, typ := range []effect.Type{"rain", "snow", "embers", "leaves", "bubbles", "stars", "fog"} {
		if _, ok := reg.Lookup(effect.KindParticle, typ); !ok {
			t.Errorf("preset %q not registered", typ)
		}
	}
	if len(Presets()) != 7 {
		t.Errorf("Presets() = %d, want 7", len(Presets()))
	}
}
