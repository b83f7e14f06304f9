// Package effecttest provides a recording Effect for tests of code that
// drives effects.
package effecttest

import (
	"time"

	"github.com/gogpu/ggfx/anim"
	"github.com/gogpu/ggfx/effect"
	"github.com/gogpu/ggfx/shader"
)

// MaskedSource declares every well-known uniform.
const MaskedSource = `
struct Params {
  alpha: f32,
  time: f32,
  hasMask: f32,
  maskReady: f32,
  deviceToCss: f32,
  hasTokenMask: f32,
  viewSize: vec2<f32>,
}

@group(0) @binding(0) var<uniform> params: Params;
@group(0) @binding(1) var maskSampler: texture_2d<f32>;
@group(0) @binding(2) var tokenSampler: texture_2d<f32>;
@group(0) @binding(3) var linearFilter: sampler;

@fragment
fn main(@builtin(position) pos: vec4<f32>) -> @location(0) vec4<f32> {
  let uv = pos.xy / params.viewSize;
  let m = textureSample(maskSampler, linearFilter, uv).r;
  let s = textureSample(tokenSampler, linearFilter, uv).r;
  return vec4<f32>(1.0, 1.0, 1.0, 1.0) * params.alpha * m * (1.0 - s * params.hasTokenMask);
}
`

// Stub is an Effect that records what was done to it.
//
// The option "belowTokens" sets BelowTokens. The option "replace" makes
// every later Configure return effect.ErrReconfigure.
type Stub struct {
	effect.Base

	Desc       effect.Descriptor
	Options    effect.Options
	Played     bool
	Prewarmed  bool
	Steps      int
	Elapsed    time.Duration
	Configures int

	// FadeErr is returned by FadeOut when set.
	FadeErr error
}

// Play records the call.
func (s *Stub) Play(prewarm bool) {
	s.Played = true
	s.Prewarmed = prewarm
}

// Configure stores opts.
func (s *Stub) Configure(opts effect.Options) error {
	if s.Destroyed() {
		return effect.ErrDestroyed
	}
	if s.Options.Bool("replace", false) {
		return effect.ErrReconfigure
	}
	s.Configures++
	s.Options = opts.Clone()
	return nil
}

// Step advances fades and records dt.
func (s *Stub) Step(dt time.Duration) {
	s.Steps++
	s.Elapsed += dt
	s.StepFades(dt)
}

// FadeOut fades the alpha to zero over d.
func (s *Stub) FadeOut(d time.Duration) (*anim.Op, error) {
	if s.FadeErr != nil {
		return nil, s.FadeErr
	}
	return s.FadeAlpha(d)
}

// BelowTokens reports the "belowTokens" option.
func (s *Stub) BelowTokens() bool {
	return s.Options.Bool("belowTokens", false)
}

// Recorder is a Factory source that remembers every Stub it created.
type Recorder struct {
	Created []*Stub

	// Masked gives every Stub a program compiled from MaskedSource.
	Masked bool

	// FadeErr is copied into every created Stub.
	FadeErr error

	program *shader.Program
}

// Factory creates a Stub for desc.
func (r *Recorder) Factory(desc effect.Descriptor) (effect.Effect, error) {
	s := &Stub{Desc: desc, Options: desc.Options.Clone(), FadeErr: r.FadeErr}
	var p *shader.Program
	if r.Masked {
		if r.program == nil {
			r.program = shader.MustCompile("stub", MaskedSource)
		}
		p = r.program.Clone()
	}
	s.Init(p)
	r.Created = append(r.Created, s)
	return s, nil
}

// Register registers the recorder's factory for every type of kind.
func (r *Recorder) Register(reg *effect.Registry, kind effect.Kind, types ...effect.Type) {
	for _, t := range types {
		reg.Register(kind, t, r.Factory)
	}
}

// Live returns the created stubs not yet destroyed.
func (r *Recorder) Live() []*Stub {
	var out []*Stub
	for _, s := range r.Created {
		if !s.Destroyed() {
			out = append(out, s)
		}
	}
	return out
}
