// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"
	"image"

	"github.com/gogpu/ggfx/internal/logging"
)

// AllocationError is returned when the allocator could not provide a
// texture. It is fatal for the caller: masks cannot silently degrade.
type AllocationError struct {
	Key TargetKey
	Err error
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("render: allocate target %v: %v", e.Key, e.Err)
}

func (e *AllocationError) Unwrap() error { return e.Err }

// PoolStats reports pool activity.
type PoolStats struct {
	Allocations int // textures created
	Reuses      int // acquisitions served from the idle set
	Releases    int // targets returned
	Destroyed   int // textures destroyed
	Idle        int // targets currently idle
	Lent        int // targets currently borrowed
}

// Pool lends render targets keyed by (width, height, resolution) and takes
// them back without destroying GPU storage.
//
// Pool is NOT safe for concurrent use; it lives on the frame tick.
type Pool struct {
	alloc  TextureAllocator
	idle   map[TargetKey][]*RenderTarget
	lent   map[*RenderTarget]struct{}
	serial uint64
	stats  PoolStats
}

// NewPool creates an empty pool drawing textures from alloc.
func NewPool(alloc TextureAllocator) *Pool {
	return &Pool{
		alloc: alloc,
		idle:  make(map[TargetKey][]*RenderTarget),
		lent:  make(map[*RenderTarget]struct{}),
	}
}

// Acquire returns an idle target matching the request, or allocates one.
// The returned target's plane content is unspecified; callers clear it.
//
// Allocation failures are returned as *AllocationError and never retried.
func (p *Pool) Acquire(width, height int, resolution float64) (*RenderTarget, error) {
	key := TargetKey{Width: width, Height: height, Resolution: resolution}

	if list := p.idle[key]; len(list) > 0 {
		t := list[len(list)-1]
		list[len(list)-1] = nil
		p.idle[key] = list[:len(list)-1]
		t.state = targetLent
		p.lent[t] = struct{}{}
		p.stats.Reuses++
		return t, nil
	}

	tex, err := p.alloc.Allocate(key)
	if err != nil {
		return nil, &AllocationError{Key: key, Err: err}
	}
	w, h := key.DeviceSize()
	p.serial++
	t := &RenderTarget{
		key:    key,
		tex:    tex,
		plane:  image.NewAlpha(image.Rect(0, 0, w, h)),
		serial: p.serial,
		state:  targetLent,
		dirty:  true,
	}
	p.lent[t] = struct{}{}
	p.stats.Allocations++
	logging.With("pool").Debug("allocated render target", "key", key.String(), "serial", t.serial)
	return t, nil
}

// Release returns t to the idle set. Releasing nil, an idle target or a
// foreign target is a no-op.
func (p *Pool) Release(t *RenderTarget) {
	if t == nil {
		return
	}
	switch t.state {
	case targetOrphaned:
		p.destroy(t)
		return
	case targetLent:
	default:
		logging.With("pool").Warn("release of idle or destroyed render target", "key", t.key.String(), "serial", t.serial)
		return
	}
	if _, ok := p.lent[t]; !ok {
		logging.With("pool").Warn("release of foreign render target", "key", t.key.String())
		return
	}
	delete(p.lent, t)
	t.state = targetIdle
	p.idle[t.key] = append(p.idle[t.key], t)
	p.stats.Releases++
}

// Upload copies the target's plane to its texture if it changed.
func (p *Pool) Upload(t *RenderTarget) error {
	if !t.Valid() {
		return ErrTextureDestroyed
	}
	if !t.dirty {
		return nil
	}
	if err := p.alloc.Upload(t.tex, t.plane); err != nil {
		return fmt.Errorf("render: upload %v: %w", t.key, err)
	}
	t.dirty = false
	return nil
}

// Warmup pre-allocates n idle targets for key so the first frames do not
// allocate.
func (p *Pool) Warmup(key TargetKey, n int) error {
	targets := make([]*RenderTarget, 0, n)
	for i := 0; i < n; i++ {
		t, err := p.Acquire(key.Width, key.Height, key.Resolution)
		if err != nil {
			for _, t := range targets {
				p.Release(t)
			}
			return err
		}
		targets = append(targets, t)
	}
	for _, t := range targets {
		p.Release(t)
	}
	return nil
}

// Drain destroys every idle target. Targets still lent are orphaned: they
// are destroyed when released, never while referenced.
func (p *Pool) Drain() {
	for key, list := range p.idle {
		for _, t := range list {
			p.destroy(t)
		}
		delete(p.idle, key)
	}
	for t := range p.lent {
		t.state = targetOrphaned
		delete(p.lent, t)
	}
}

func (p *Pool) destroy(t *RenderTarget) {
	p.alloc.Destroy(t.tex)
	t.state = targetDestroyed
	t.tex = nil
	p.stats.Destroyed++
}

// Stats returns a snapshot of pool activity.
func (p *Pool) Stats() PoolStats {
	s := p.stats
	s.Lent = len(p.lent)
	for _, list := range p.idle {
		s.Idle += len(list)
	}
	return s
}
