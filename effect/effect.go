package effect

import (
	"time"

	"github.com/gogpu/ggfx/anim"
	"github.com/gogpu/ggfx/geom"
	"github.com/gogpu/ggfx/shader"
)

// Effect is a running effect instance.
//
// Effects are driven from the frame tick: Step advances the simulation and
// any fade started by FadeOut. An Effect is NOT safe for concurrent use.
type Effect interface {
	// Play starts the effect. With prewarm set the simulation is advanced
	// by one full lifetime before the first visible frame.
	Play(prewarm bool)

	// Configure applies new options in place. It returns ErrReconfigure
	// when the effect must be replaced instead.
	Configure(opts Options) error

	// Step advances the effect by dt.
	Step(dt time.Duration)

	// FadeOut starts the fade-out sequence. The returned Op resolves when
	// the effect finished fading or was destroyed. A destroyed effect
	// returns ErrDestroyed.
	FadeOut(d time.Duration) (*anim.Op, error)

	// Destroy releases the effect. Pending fades resolve immediately.
	Destroy()

	// Destroyed reports whether Destroy was called.
	Destroyed() bool

	Alpha() float64
	SetAlpha(a float64)
	Visible() bool
	SetVisible(v bool)
	Enabled() bool
	SetEnabled(e bool)

	// BelowTokens reports whether the effect renders beneath moving
	// objects and therefore needs the cutout mask.
	BelowTokens() bool

	// Program returns the effect's program, nil when the effect is not
	// masked.
	Program() *shader.Program
}

// Base implements the bookkeeping part of Effect. Concrete effects embed
// it, call Init, and call Base.Destroy from their own Destroy.
type Base struct {
	alpha     float64
	visible   bool
	enabled   bool
	destroyed bool
	program   *shader.Program
	fades     anim.Timeline
}

// Init sets the defaults: fully opaque, visible and enabled.
func (b *Base) Init(program *shader.Program) {
	b.alpha = 1
	b.visible = true
	b.enabled = true
	b.program = program
	b.syncAlpha()
}

// Alpha returns the opacity in [0, 1].
func (b *Base) Alpha() float64 { return b.alpha }

// SetAlpha sets the opacity, clamped to [0, 1].
func (b *Base) SetAlpha(a float64) {
	b.alpha = min(max(a, 0), 1)
	b.syncAlpha()
}

func (b *Base) syncAlpha() {
	if b.program != nil {
		b.program.Set(shader.Alpha, float32(b.alpha))
	}
}

// Visible reports whether the effect is drawn.
func (b *Base) Visible() bool { return b.visible }

// SetVisible shows or hides the effect.
func (b *Base) SetVisible(v bool) { b.visible = v }

// Enabled reports whether the effect is simulated.
func (b *Base) Enabled() bool { return b.enabled }

// SetEnabled enables or disables the effect.
func (b *Base) SetEnabled(e bool) { b.enabled = e }

// Program returns the program passed to Init.
func (b *Base) Program() *shader.Program { return b.program }

// Destroyed reports whether Destroy was called.
func (b *Base) Destroyed() bool { return b.destroyed }

// Destroy marks the effect destroyed and resolves pending fades with
// anim.TargetDestroyed.
func (b *Base) Destroy() {
	if b.destroyed {
		return
	}
	b.destroyed = true
	b.fades.CancelAllWith((*anim.Op).TargetGone)
}

// FadeAlpha starts ramping the opacity from its current value to zero
// over d and returns the Op. The Op advances from StepFades.
func (b *Base) FadeAlpha(d time.Duration) (*anim.Op, error) {
	if b.destroyed {
		return nil, ErrDestroyed
	}
	from := b.alpha
	return b.fades.Add(anim.NewOp(d, func(p float64) {
		b.SetAlpha(from * (1 - p))
	})), nil
}

// Track adds an externally created Op to the effect's fades so it
// resolves on Destroy and advances from StepFades.
func (b *Base) Track(op *anim.Op) *anim.Op {
	return b.fades.Add(op)
}

// StepFades advances pending fades by dt.
func (b *Base) StepFades(dt time.Duration) {
	b.fades.Advance(dt)
}

// Fading reports whether a fade is pending.
func (b *Base) Fading() bool {
	return b.fades.Len() > 0
}

// Bounded is implemented by effects that need the world rectangle they
// cover, such as emitters spawning across the scene or a region.
type Bounded interface {
	SetBounds(r geom.Rect)
}
