// Package ggfx composites animated visual effects over a 2D scene.
//
// # Overview
//
// ggfx overlays independently configured effects, particle emitters and
// full-scene filters, onto a shared scene surface. Effects are masked out
// inside suppression regions, can be bound to their own regions, and
// follow a moving and zooming camera given as an affine matrix.
//
// # Quick Start
//
//	rc := render.RenderContext{
//	    Camera:    camera,
//	    Allocator: render.NewMemoryAllocator(),
//	    Ticker:    ticker,
//	    Scene:     scene,
//	}
//	s, err := ggfx.NewSession(rc, ggfx.WithSoftTransition(true))
//	if err != nil {
//	    return err
//	}
//	defer s.Shutdown()
//
//	s.AddParticles("weather", "rain", effect.Options{"density": 0.5})
//	s.AddFilter("mood", "color", effect.Options{"saturation": 0.6})
//
// # Declarative Effects
//
// SetParticles and SetFilters take the full desired mapping from effect id
// to type and options. The session diffs it against the running instances:
// new ids are created, changed ids are reconfigured or crossfaded, and
// vanished ids fade out within a timeout. PatchParticles and PatchFilters
// merge partial updates in which a key "-=id" removes id.
//
// # Frame Loop
//
// Every Tick observes the camera, steps all effects, repaints masks only
// when the snapped camera matrix, the view size, the suppression regions
// or the moving objects changed, evaluates region gates and binds the
// masks into each effect program.
//
// # Architecture
//
// The library is organized into:
//   - render: host collaborators, textures and the render target Pool
//   - camera: matrix snapping and change tracking
//   - mask: coverage rasterization and the mask Builder
//   - anim: cancelable timed operations
//   - effect, effect/particle, effect/filter: effects and their registry
//   - reconcile: the desired-versus-running reconciler
//   - region: region bindings and gating
//   - compositor: the uniform binder
package ggfx
