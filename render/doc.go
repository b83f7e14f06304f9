// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render provides the integration layer between ggfx and the host
// rendering engine.
//
// # Key Principle
//
// ggfx RECEIVES its collaborators from the host, it does NOT reach for them.
// Camera, texture allocation, the frame tick, moving objects and the scene
// rectangle are all handed over once through a RenderContext, so every
// component can be exercised without a live host.
//
// # Core Types
//
//   - RenderContext: the bundle of host collaborators
//   - TextureAllocator: creates, uploads and destroys GPU textures
//   - RenderTarget: a pooled texture plus its CPU-side coverage plane
//   - Pool: lends RenderTargets keyed by (width, height, resolution)
//
// # Allocators
//
//   - CreatorAllocator: adapts a gpucontext.TextureCreator from the host
//   - MemoryAllocator: CPU-only textures for headless runs and tests
//   - backend/wgpu.Allocator: textures on a gogpu/wgpu device
//
// # Usage
//
//	pool := render.NewPool(render.NewMemoryAllocator())
//	rt, err := pool.Acquire(800, 600, 2)
//	if err != nil {
//	    return err // allocation failures are fatal
//	}
//	defer pool.Release(rt)
package render
