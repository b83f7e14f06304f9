// Package filter implements full-screen post-processing filters.
//
// A Filter owns a WGSL program from the embedded presets. Options are
// pushed into the program as uniforms; the compositor binds masks and
// draws it.
package filter

import (
	"fmt"
	"math"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/gogpu/ggfx/anim"
	"github.com/gogpu/ggfx/effect"
	"github.com/gogpu/ggfx/shader"
)

// flashDecay is how long a lightning flash takes to fade.
const flashDecay = 250 * time.Millisecond

// Filter is a post-processing Effect.
type Filter struct {
	effect.Base

	id     string
	preset Preset
	opts   effect.Options
	below  bool
	clock  time.Duration
	fade   *anim.Op
}

// New creates a filter from the preset named by desc.Type.
func New(desc effect.Descriptor) (*Filter, error) {
	p, ok := Lookup(desc.Type)
	if !ok {
		return nil, &effect.UnknownTypeError{ID: desc.ID, Kind: effect.KindFilter, Type: desc.Type}
	}
	prog, err := template(p)
	if err != nil {
		return nil, err
	}
	f := &Filter{id: desc.ID, preset: p}
	f.Init(prog)
	if err := f.apply(desc.Options); err != nil {
		return nil, err
	}
	return f, nil
}

// Type returns the preset type.
func (f *Filter) Type() effect.Type { return f.preset.Type }

// Options returns the options currently applied, defaults included.
func (f *Filter) Options() effect.Options { return f.opts.Clone() }

// Play is a no-op: filters have no warm-up state.
func (f *Filter) Play(bool) {}

// Configure applies opts in place. Moving between paint tiers needs a
// replacement.
func (f *Filter) Configure(opts effect.Options) error {
	if f.Destroyed() {
		return effect.ErrDestroyed
	}
	if opts.Bool("belowTokens", f.preset.BelowTokens) != f.below {
		return effect.ErrReconfigure
	}
	return f.apply(opts)
}

// apply merges opts over the preset defaults and pushes them to the
// program. Nothing changes when an option is invalid.
func (f *Filter) apply(opts effect.Options) error {
	merged := f.preset.Defaults.Clone()
	if merged == nil {
		merged = effect.Options{}
	}
	for k, v := range opts {
		merged[k] = v
	}
	values := make(map[string]any, len(merged))
	for k, v := range merged {
		switch k {
		case "tint":
			s, _ := v.(string)
			c, err := colorful.Hex(s)
			if err != nil {
				return fmt.Errorf("filter: %s: tint %q: %w", f.preset.Type, s, err)
			}
			c = c.Clamped()
			values[k] = [3]float32{float32(c.R), float32(c.G), float32(c.B)}
		case "belowTokens", "interval":
		default:
			if x := merged.Float(k, math.NaN()); !math.IsNaN(x) {
				values[k] = float32(x)
			}
		}
	}
	prog := f.Program()
	for k, v := range values {
		prog.Set(k, v)
	}
	f.opts = merged
	f.below = merged.Bool("belowTokens", f.preset.BelowTokens)
	return nil
}

// Step advances the time uniform and any pending fade.
func (f *Filter) Step(dt time.Duration) {
	if f.Destroyed() {
		return
	}
	f.clock += dt
	prog := f.Program()
	prog.Set(shader.Time, float32(f.clock.Seconds()))
	if prog.Declares("flash") {
		prog.Set("flash", float32(f.flash()))
	}
	f.StepFades(dt)
}

// flash returns the lightning intensity at the current clock: a spike at
// every interval decaying linearly over flashDecay.
func (f *Filter) flash() float64 {
	interval := time.Duration(f.opts.Float("interval", 5) * float64(time.Second))
	if interval <= 0 {
		return 0
	}
	phase := f.clock % interval
	if f.clock < interval || phase >= flashDecay {
		return 0
	}
	return 1 - float64(phase)/float64(flashDecay)
}

// FadeOut ramps the filter alpha to zero over d.
func (f *Filter) FadeOut(d time.Duration) (*anim.Op, error) {
	if f.Destroyed() {
		return nil, effect.ErrDestroyed
	}
	if f.fade != nil && !f.fade.Resolved() {
		return f.fade, nil
	}
	op, err := f.FadeAlpha(d)
	if err != nil {
		return nil, err
	}
	f.fade = op
	return op, nil
}

// BelowTokens reports whether the filter leaves moving objects untouched.
func (f *Filter) BelowTokens() bool { return f.below }
