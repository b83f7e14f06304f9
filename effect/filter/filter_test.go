package filter

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/gogpu/ggfx/anim"
	"github.com/gogpu/ggfx/effect"
	"github.com/gogpu/ggfx/shader"
)

func newFilter(t *testing.T, typ effect.Type, opts effect.Options) *Filter {
	t.Helper()
	f, err := New(effect.Descriptor{ID: "f", Kind: effect.KindFilter, Type: typ, Options: opts})
	if err != nil {
		t.Fatalf("New(%q) error = %v", typ, err)
	}
	return f
}

func TestPresetsCompile(t *testing.T) {
	for _, typ := range Presets() {
		t.Run(string(typ), func(t *testing.T) {
			f := newFilter(t, typ, nil)
			prog := f.Program()
			for _, name := range []string{shader.Alpha, shader.Time, shader.HasMask, shader.MaskReady, shader.MaskSampler, shader.ViewSize, shader.DeviceToCSS} {
				if !prog.Declares(name) {
					t.Errorf("%s does not declare %q", typ, name)
				}
			}
			if got := prog.Float(shader.Alpha); got != 1 {
				t.Errorf("alpha uniform = %v, want 1", got)
			}
		})
	}
}

func TestNewUnknownType(t *testing.T) {
	_, err := New(effect.Descriptor{ID: "x", Kind: effect.KindFilter, Type: "sepia"})
	if !errors.Is(err, effect.ErrUnknownType) {
		t.Errorf("New() error = %v, want ErrUnknownType", err)
	}
}

func TestOptionsBecomeUniforms(t *testing.T) {
	f := newFilter(t, "Color", effect.Options{"saturation": 0.25, "unused": 3, "tint": "#ff0000"})
	prog := f.Program()

	if got := prog.Float("saturation"); got != 0.25 {
		t.Errorf("saturation = %v, want 0.25", got)
	}
	if got := prog.Float("contrast"); got != 1 {
		t.Errorf("contrast = %v, want default 1", got)
	}
	if _, ok := prog.Value("unused"); ok {
		t.Error("undeclared option bound as uniform")
	}
	tint, _ := prog.Value("tint")
	if tint != [3]float32{1, 0, 0} {
		t.Errorf("tint = %v, want [1 0 0]", tint)
	}
	if f.Type() != "color" {
		t.Errorf("Type() = %q, want color", f.Type())
	}
}

func TestInvalidTint(t *testing.T) {
	_, err := New(effect.Descriptor{ID: "x", Type: "fog", Options: effect.Options{"tint": "not-a-color"}})
	if err == nil {
		t.Fatal("New() with bad tint succeeded")
	}

	f := newFilter(t, "fog", nil)
	if err := f.Configure(effect.Options{"density": 0.9, "tint": "nope"}); err == nil {
		t.Fatal("Configure() with bad tint succeeded")
	}
	if got := f.Program().Float("density"); got != 0.5 {
		t.Errorf("density after failed Configure = %v, want 0.5", got)
	}
}

func TestConfigure(t *testing.T) {
	f := newFilter(t, "bloom", nil)
	if err := f.Configure(effect.Options{"strength": 2}); err != nil {
		t.Fatalf("Configure() error = %v", err)
	}
	if got := f.Program().Float("strength"); got != 2 {
		t.Errorf("strength = %v, want 2", got)
	}
	if got := f.Options().Float("threshold", 0); got != 0.5 {
		t.Errorf("threshold option = %v, want default 0.5", got)
	}
	if err := f.Configure(effect.Options{"belowTokens": true}); !errors.Is(err, effect.ErrReconfigure) {
		t.Errorf("Configure(belowTokens) error = %v, want ErrReconfigure", err)
	}
	f.Destroy()
	if err := f.Configure(nil); !errors.Is(err, effect.ErrDestroyed) {
		t.Errorf("Configure() after Destroy error = %v, want ErrDestroyed", err)
	}
}

func TestUnderwaterBelowTokens(t *testing.T) {
	f := newFilter(t, "underwater", nil)
	if !f.BelowTokens() {
		t.Error("underwater BelowTokens() = false")
	}
	for _, name := range []string{shader.TokenSampler, shader.HasTokenMask} {
		if !f.Program().Declares(name) {
			t.Errorf("underwater does not declare %q", name)
		}
	}
	if newFilter(t, "color", nil).BelowTokens() {
		t.Error("color BelowTokens() = true")
	}
}

func TestStepAdvancesTime(t *testing.T) {
	f := newFilter(t, "fog", nil)
	for i := 0; i < 5; i++ {
		f.Step(100 * time.Millisecond)
	}
	if got := f.Program().Float(shader.Time); math.Abs(got-0.5) > 1e-6 {
		t.Errorf("time = %v, want 0.5", got)
	}
}

func TestLightningFlash(t *testing.T) {
	f := newFilter(t, "lightning", effect.Options{"interval": 1})
	tests := []struct {
		after time.Duration
		want  float64
	}{
		{500 * time.Millisecond, 0},
		{1000 * time.Millisecond, 1},
		{1100 * time.Millisecond, 0.6},
		{1500 * time.Millisecond, 0},
	}
	var clock time.Duration
	for _, tt := range tests {
		for clock < tt.after {
			f.Step(100 * time.Millisecond)
			clock += 100 * time.Millisecond
		}
		if got := f.Program().Float("flash"); math.Abs(got-tt.want) > 1e-6 {
			t.Errorf("flash at %v = %v, want %v", tt.after, got, tt.want)
		}
	}
}

func TestFadeOut(t *testing.T) {
	f := newFilter(t, "color", nil)
	op, err := f.FadeOut(time.Second)
	if err != nil {
		t.Fatalf("FadeOut() error = %v", err)
	}
	again, _ := f.FadeOut(time.Second)
	if again != op {
		t.Error("second FadeOut() started a new fade")
	}
	for i := 0; i < 5; i++ {
		f.Step(100 * time.Millisecond)
	}
	if got := f.Alpha(); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("Alpha() half way = %v, want 0.5", got)
	}
	for i := 0; i < 5; i++ {
		f.Step(100 * time.Millisecond)
	}
	if op.Reason() != anim.Elapsed {
		t.Errorf("fade reason = %v, want %v", op.Reason(), anim.Elapsed)
	}
	if got := f.Program().Float(shader.Alpha); got != 0 {
		t.Errorf("alpha uniform = %v, want 0", got)
	}
}

func TestDestroyResolvesFade(t *testing.T) {
	f := newFilter(t, "bloom", nil)
	op, _ := f.FadeOut(time.Hour)
	f.Destroy()
	if op.Reason() != anim.TargetDestroyed {
		t.Errorf("fade reason = %v, want %v", op.Reason(), anim.TargetDestroyed)
	}
	if _, err := f.FadeOut(time.Second); !errors.Is(err, effect.ErrDestroyed) {
		t.Errorf("FadeOut() after Destroy error = %v, want ErrDestroyed", err)
	}
}

func TestRegisterDefaults(t *testing.T) {
	reg := effect.NewRegistry()
	RegisterDefaults(reg)
	types := reg.Types(effect.KindFilter)
	if len(types) != len(presets) {
		t.Fatalf("Types() = %v, want %d filters", types, len(presets))
	}
	e, err := reg.New(effect.Descriptor{ID: "u", Kind: effect.KindFilter, Type: " UnderWater "})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if !e.BelowTokens() {
		t.Error("registry-built underwater filter is not below tokens")
	}
}
