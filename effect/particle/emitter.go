// Package particle implements CPU-simulated particle emitters.
//
// An Emitter spawns particles across its bounds at a rate proportional to
// the bounds area and its density. The GPU side only draws the instances
// returned by Instances through the embedded particle program.
package particle

import (
	_ "embed"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/gogpu/ggfx/anim"
	"github.com/gogpu/ggfx/effect"
	"github.com/gogpu/ggfx/geom"
	"github.com/gogpu/ggfx/shader"
)

//go:embed particle.wgsl
var programSource string

var programTemplate = sync.OnceValues(func() (*shader.Program, error) {
	return shader.Compile("particle", programSource)
})

// prewarmStep is the simulation step used while prewarming.
const prewarmStep = 50 * time.Millisecond

// defaultBounds is used until SetBounds is called.
var defaultBounds = geom.Rect{W: 1000, H: 1000}

// Particle is one simulated particle in world coordinates.
type Particle struct {
	Pos, Vel geom.Point
	Age      time.Duration
	Life     time.Duration
	Scale    float64
	Rotation float64
	Spin     float64
}

// Instance is the per-particle vertex data drawn by the particle program.
type Instance struct {
	Pos   [2]float32
	Size  float32
	Color [4]float32
}

// Emitter is a particle Effect.
type Emitter struct {
	effect.Base

	id       string
	typ      effect.Type
	cfg      Config
	rng      *rand.Rand
	bounds   geom.Rect
	parts    []Particle
	pending  float64
	emitting bool
	fade     *anim.Op
	clock    time.Duration
}

// New creates an emitter from the preset named by desc.Type with
// desc.Options applied.
func New(desc effect.Descriptor) (*Emitter, error) {
	base, ok := Preset(desc.Type)
	if !ok {
		return nil, &effect.UnknownTypeError{ID: desc.ID, Kind: effect.KindParticle, Type: desc.Type}
	}
	cfg, err := configFrom(base, desc.Options)
	if err != nil {
		return nil, err
	}
	tmpl, err := programTemplate()
	if err != nil {
		return nil, fmt.Errorf("particle: %w", err)
	}
	e := &Emitter{
		id:     desc.ID,
		typ:    desc.Type.Fold(),
		cfg:    cfg,
		rng:    rand.New(rand.NewPCG(seedFor(desc.ID, cfg.Seed))),
		bounds: defaultBounds,
	}
	e.Init(tmpl.Clone())
	return e, nil
}

func seedFor(id string, seed uint64) (uint64, uint64) {
	if seed != 0 {
		return seed, seed ^ 0x9e3779b97f4a7c15
	}
	h := fnv.New64a()
	h.Write([]byte(id))
	s := h.Sum64()
	return s, s ^ 0x9e3779b97f4a7c15
}

// Config returns the emitter configuration.
func (e *Emitter) Config() Config { return e.cfg }

// SetBounds sets the world rectangle particles spawn in.
func (e *Emitter) SetBounds(r geom.Rect) {
	if !r.Empty() {
		e.bounds = r
	}
}

// Bounds returns the spawn rectangle.
func (e *Emitter) Bounds() geom.Rect { return e.bounds }

// Play starts emitting. With prewarm the simulation first runs for one
// full particle lifetime so density starts at steady state.
func (e *Emitter) Play(prewarm bool) {
	e.emitting = true
	if !prewarm {
		return
	}
	for t := time.Duration(0); t < e.cfg.LifeMax; t += prewarmStep {
		e.simulate(prewarmStep)
	}
}

// Configure applies options in place. A change of BelowTokens moves the
// effect to another paint tier and needs a replacement.
func (e *Emitter) Configure(opts effect.Options) error {
	if e.Destroyed() {
		return effect.ErrDestroyed
	}
	base, _ := Preset(e.typ)
	cfg, err := configFrom(base, opts)
	if err != nil {
		return err
	}
	if cfg.BelowTokens != e.cfg.BelowTokens || cfg.Seed != e.cfg.Seed {
		return effect.ErrReconfigure
	}
	e.cfg = cfg
	if len(e.parts) > cfg.MaxParticles {
		e.parts = e.parts[:cfg.MaxParticles]
	}
	return nil
}

// Step advances the simulation and any pending fade.
func (e *Emitter) Step(dt time.Duration) {
	if e.Destroyed() {
		return
	}
	e.simulate(dt)
	e.StepFades(dt)
	if e.fade != nil && len(e.parts) == 0 {
		e.fade.Finish()
	}
}

// FadeOut stops spawning and fades the emitter out over d. The Op also
// completes as soon as the last particle has died.
func (e *Emitter) FadeOut(d time.Duration) (*anim.Op, error) {
	if e.Destroyed() {
		return nil, effect.ErrDestroyed
	}
	if e.fade != nil && !e.fade.Resolved() {
		return e.fade, nil
	}
	op, err := e.FadeAlpha(d)
	if err != nil {
		return nil, err
	}
	e.emitting = false
	e.fade = op
	if len(e.parts) == 0 {
		op.Finish()
	}
	return op, nil
}

// Destroy drops every particle and resolves pending fades.
func (e *Emitter) Destroy() {
	e.parts = nil
	e.emitting = false
	e.Base.Destroy()
}

// BelowTokens reports whether the emitter renders beneath moving objects.
func (e *Emitter) BelowTokens() bool { return e.cfg.BelowTokens }

// Emitting reports whether new particles are spawned.
func (e *Emitter) Emitting() bool { return e.emitting }

// Len returns the number of live particles.
func (e *Emitter) Len() int { return len(e.parts) }

// Particles returns a copy of the live particles.
func (e *Emitter) Particles() []Particle {
	return append([]Particle(nil), e.parts...)
}

// Instances returns the draw data of the live particles with the
// emitter alpha applied.
func (e *Emitter) Instances() []Instance {
	out := make([]Instance, len(e.parts))
	tint := e.cfg.Tint
	for i, p := range e.parts {
		a := e.cfg.Alpha * e.Alpha() * envelope(p)
		out[i] = Instance{
			Pos:  [2]float32{float32(p.Pos.X), float32(p.Pos.Y)},
			Size: float32(p.Scale),
			Color: [4]float32{
				float32(tint.R) / 255 * float32(a),
				float32(tint.G) / 255 * float32(a),
				float32(tint.B) / 255 * float32(a),
				float32(a),
			},
		}
	}
	return out
}

// envelope fades a particle in and out over its life.
func envelope(p Particle) float64 {
	if p.Life <= 0 {
		return 0
	}
	return math.Sin(math.Pi * min(float64(p.Age)/float64(p.Life), 1))
}

func (e *Emitter) simulate(dt time.Duration) {
	sec := dt.Seconds()
	e.clock += dt
	e.Program().Set(shader.Time, float32(e.clock.Seconds()))

	live := e.parts[:0]
	for _, p := range e.parts {
		p.Age += dt
		if p.Age >= p.Life {
			continue
		}
		p.Vel.Y += e.cfg.Gravity * sec
		p.Pos = p.Pos.Add(geom.Pt(p.Vel.X*sec, p.Vel.Y*sec))
		p.Rotation += p.Spin * sec
		live = append(live, p)
	}
	clear(e.parts[len(live):])
	e.parts = live

	if !e.emitting {
		return
	}
	area := e.bounds.W * e.bounds.H / 1e6
	e.pending += e.cfg.Rate * e.cfg.Density * area * sec
	for e.pending >= 1 {
		e.pending--
		if len(e.parts) >= e.cfg.MaxParticles {
			e.pending = 0
			break
		}
		e.parts = append(e.parts, e.spawn())
	}
}

func (e *Emitter) spawn() Particle {
	c := e.cfg
	dir := (c.Direction + (e.rng.Float64()*2-1)*c.Spread) * math.Pi / 180
	speed := lerp(c.SpeedMin, c.SpeedMax, e.rng.Float64())
	sin, cos := math.Sincos(dir)
	life := c.LifeMin + time.Duration(e.rng.Float64()*float64(c.LifeMax-c.LifeMin))
	return Particle{
		Pos: geom.Pt(
			e.bounds.X+e.rng.Float64()*e.bounds.W,
			e.bounds.Y+e.rng.Float64()*e.bounds.H,
		),
		Vel:      geom.Pt(cos*speed, sin*speed),
		Life:     max(life, time.Millisecond),
		Scale:    lerp(c.ScaleMin, c.ScaleMax, e.rng.Float64()),
		Rotation: e.rng.Float64() * 2 * math.Pi,
		Spin:     (e.rng.Float64()*2 - 1) * c.Spin * math.Pi / 180,
	}
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
