// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"
	"image"
	"math"

	"github.com/gogpu/gputypes"
)

// TargetKey identifies interchangeable render targets.
//
// Width and Height are in CSS pixels; the backing texture has
// DeviceSize() device pixels.
type TargetKey struct {
	Width      int
	Height     int
	Resolution float64
}

// DeviceSize returns the texture size in device pixels (at least 1x1).
func (k TargetKey) DeviceSize() (width, height int) {
	res := k.Resolution
	if res <= 0 {
		res = 1
	}
	width = int(math.Ceil(float64(k.Width) * res))
	height = int(math.Ceil(float64(k.Height) * res))
	return max(width, 1), max(height, 1)
}

// Format returns the texture format requested for the key.
func (k TargetKey) Format() gputypes.TextureFormat {
	return MaskFormat
}

// String returns a compact representation for logs.
func (k TargetKey) String() string {
	return fmt.Sprintf("%dx%d@%g", k.Width, k.Height, k.Resolution)
}

// targetState tracks who owns a RenderTarget.
type targetState uint8

const (
	targetIdle targetState = iota
	targetLent
	targetOrphaned // lent while the pool was drained; destroyed on Release
	targetDestroyed
)

// RenderTarget is a pooled GPU texture together with the CPU-side coverage
// plane it is painted from.
//
// Painting happens on the plane; Pool.Upload copies it to the texture.
type RenderTarget struct {
	key    TargetKey
	tex    Texture
	plane  *image.Alpha
	serial uint64
	state  targetState
	dirty  bool
}

// Key returns the target's pool key.
func (t *RenderTarget) Key() TargetKey { return t.key }

// Texture returns the GPU texture.
func (t *RenderTarget) Texture() Texture { return t.tex }

// Plane returns the coverage plane in device pixels.
func (t *RenderTarget) Plane() *image.Alpha { return t.plane }

// Serial returns the allocation serial number. Two targets with the same
// serial are the same underlying allocation.
func (t *RenderTarget) Serial() uint64 { return t.serial }

// Bounds returns the plane bounds in device pixels.
func (t *RenderTarget) Bounds() image.Rectangle { return t.plane.Bounds() }

// Valid reports whether the target is usable (lent and not destroyed).
func (t *RenderTarget) Valid() bool {
	return t != nil && t.state == targetLent
}

// Clear zeroes the coverage plane.
func (t *RenderTarget) Clear() {
	clear(t.plane.Pix)
	t.dirty = true
}

// Fill sets every coverage value to v.
func (t *RenderTarget) Fill(v uint8) {
	for i := range t.plane.Pix {
		t.plane.Pix[i] = v
	}
	t.dirty = true
}

// CopyFrom replaces the plane with the plane of src. Both targets must
// share a key.
func (t *RenderTarget) CopyFrom(src *RenderTarget) error {
	if src.key != t.key {
		return fmt.Errorf("%w: copy %v into %v", ErrSizeMismatch, src.key, t.key)
	}
	copy(t.plane.Pix, src.plane.Pix)
	t.dirty = true
	return nil
}

// MarkDirty flags the plane for upload.
func (t *RenderTarget) MarkDirty() { t.dirty = true }

// Dirty reports whether the plane changed since the last upload.
func (t *RenderTarget) Dirty() bool { return t.dirty }

// At returns the coverage at device pixel (x, y); 0 outside the plane.
func (t *RenderTarget) At(x, y int) uint8 {
	if !(image.Point{X: x, Y: y}.In(t.plane.Rect)) {
		return 0
	}
	return t.plane.Pix[t.plane.PixOffset(x, y)]
}
