// Package compositor binds masks and viewport metrics onto effect
// programs.
//
// Every masked effect samples maskSampler in screen space. Ordinary effects
// get the allow mask, effects drawn beneath moving objects get the cutout
// and, when their program asks for it, the moving-object silhouette as
// tokenSampler. Missing masks are replaced by a neutral texture with
// hasMask set to zero, so a program never samples an unbound slot.
package compositor

import (
	"fmt"

	"github.com/gogpu/ggfx/effect"
	"github.com/gogpu/ggfx/mask"
	"github.com/gogpu/ggfx/render"
	"github.com/gogpu/ggfx/shader"
)

// Viewport carries the metrics shaders need to map fragment positions to
// mask coordinates.
type Viewport struct {
	// Width and Height are in CSS pixels.
	Width, Height float64

	// Resolution is the number of device pixels per CSS pixel.
	Resolution float64
}

// ViewportOf returns the viewport masks for v were painted at.
func ViewportOf(v mask.View) Viewport {
	return Viewport{Width: v.Width, Height: v.Height, Resolution: v.Key().Resolution}
}

// DeviceToCSS returns the CSS size of one device pixel.
func (v Viewport) DeviceToCSS() float64 {
	if v.Resolution <= 0 {
		return 1
	}
	return 1 / v.Resolution
}

// Masks are the targets an effect can be bound to. Any of them may be nil.
type Masks struct {
	Base       *render.RenderTarget
	Cutout     *render.RenderTarget
	Silhouette *render.RenderTarget
}

// SceneMasks returns the masks of a scene-level set.
func SceneMasks(s *mask.Set) Masks {
	if s == nil {
		return Masks{}
	}
	return Masks{Base: s.Base, Cutout: s.Cutout, Silhouette: s.Silhouette}
}

// RegionMasks returns the masks of a region binding. cutout is the region
// mask minus the moving objects; when it is nil, effects beneath moving
// objects fall back to the bare region mask. Any argument may be nil.
func RegionMasks(region, cutout, silhouette *render.RenderTarget) Masks {
	return Masks{Base: region, Cutout: cutout, Silhouette: silhouette}
}

// Stats reports binder activity.
type Stats struct {
	Binds   int // programs bound
	Neutral int // mask slots bound to the neutral texture
}

// Binder pushes mask textures and viewport uniforms into effect programs.
//
// Binder is NOT safe for concurrent use.
type Binder struct {
	pool    *render.Pool
	neutral *render.RenderTarget
	stats   Stats
}

// NewBinder creates a Binder. The neutral texture is borrowed from pool on
// first use.
func NewBinder(pool *render.Pool) *Binder {
	return &Binder{pool: pool}
}

// Bind updates the program of e. Effects without a program are skipped.
func (b *Binder) Bind(e effect.Effect, masks Masks, vp Viewport) error {
	prog := e.Program()
	if prog == nil {
		return nil
	}
	prog.Set(shader.ViewSize, [2]float32{float32(vp.Width), float32(vp.Height)})
	prog.Set(shader.DeviceToCSS, float32(vp.DeviceToCSS()))
	prog.Set(shader.Alpha, float32(e.Alpha()))

	m := masks.Base
	if e.BelowTokens() && masks.Cutout != nil {
		m = masks.Cutout
	}
	if err := b.bindSlot(prog, shader.MaskSampler, shader.HasMask, m); err != nil {
		return err
	}
	ready := m.Valid() && !m.Dirty()
	prog.Set(shader.MaskReady, flag(ready))

	if prog.Declares(shader.TokenSampler) {
		var token *render.RenderTarget
		if e.BelowTokens() {
			token = masks.Silhouette
		}
		if err := b.bindSlot(prog, shader.TokenSampler, shader.HasTokenMask, token); err != nil {
			return err
		}
	}
	b.stats.Binds++
	return nil
}

// BindAll binds every effect and stops at the first error.
func (b *Binder) BindAll(effects []effect.Effect, masks Masks, vp Viewport) error {
	for _, e := range effects {
		if err := b.Bind(e, masks, vp); err != nil {
			return err
		}
	}
	return nil
}

func (b *Binder) bindSlot(prog *shader.Program, sampler, has string, t *render.RenderTarget) error {
	if t.Valid() {
		prog.Set(sampler, t.Texture())
		prog.Set(has, flag(true))
		return nil
	}
	n, err := b.neutralTarget()
	if err != nil {
		return err
	}
	prog.Set(sampler, n.Texture())
	prog.Set(has, flag(false))
	b.stats.Neutral++
	return nil
}

// neutralTarget returns the 1x1 empty target bound in place of missing
// masks.
func (b *Binder) neutralTarget() (*render.RenderTarget, error) {
	if b.neutral.Valid() {
		return b.neutral, nil
	}
	t, err := b.pool.Acquire(1, 1, 1)
	if err != nil {
		return nil, fmt.Errorf("compositor: neutral mask: %w", err)
	}
	t.Clear()
	if err := b.pool.Upload(t); err != nil {
		b.pool.Release(t)
		return nil, fmt.Errorf("compositor: neutral mask: %w", err)
	}
	b.neutral = t
	return t, nil
}

// Neutral returns the neutral target, nil before the first missing mask.
func (b *Binder) Neutral() *render.RenderTarget {
	return b.neutral
}

// Stats returns a snapshot of binder activity.
func (b *Binder) Stats() Stats {
	return b.stats
}

// Release returns the neutral target to the pool.
func (b *Binder) Release() {
	b.pool.Release(b.neutral)
	b.neutral = nil
}

func flag(v bool) float32 {
	if v {
		return 1
	}
	return 0
}
