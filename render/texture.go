// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// MaskFormat is the texture format mask targets are created with by
// allocators that support single-channel textures.
const MaskFormat = gputypes.TextureFormatR8Unorm

// Texture is a GPU texture handed out by a TextureAllocator.
type Texture = gpucontext.Texture

// TextureAllocator creates, fills and destroys the GPU textures behind
// pooled render targets.
//
// Allocate must not retry: an out-of-memory condition is returned to the
// caller, which treats it as fatal.
type TextureAllocator interface {
	// Allocate creates a texture of key.DeviceSize() device pixels.
	Allocate(key TargetKey) (Texture, error)

	// Upload replaces the texture content with the coverage plane.
	Upload(tex Texture, plane *image.Alpha) error

	// Destroy releases the GPU storage of tex.
	Destroy(tex Texture)
}

// Allocator errors.
var (
	// ErrTextureDestroyed is returned when uploading to a destroyed texture.
	ErrTextureDestroyed = errors.New("render: texture destroyed")

	// ErrNotUpdatable is returned when a host texture cannot be updated.
	ErrNotUpdatable = errors.New("render: texture does not implement gpucontext.TextureUpdater")

	// ErrSizeMismatch is returned when a plane does not match its texture.
	ErrSizeMismatch = errors.New("render: plane size does not match texture")
)

// textureDestroyer matches the Destroy method of host textures.
type textureDestroyer interface {
	Destroy()
}

// CreatorAllocator allocates textures through the host's
// gpucontext.TextureCreator and uploads through gpucontext.TextureUpdater.
//
// Host creators only accept RGBA data, so coverage planes are expanded to
// premultiplied white on upload.
type CreatorAllocator struct {
	creator gpucontext.TextureCreator
	scratch []byte
}

// NewCreatorAllocator wraps a host texture creator.
func NewCreatorAllocator(creator gpucontext.TextureCreator) *CreatorAllocator {
	return &CreatorAllocator{creator: creator}
}

// Allocate creates a transparent RGBA texture of the key's device size.
func (a *CreatorAllocator) Allocate(key TargetKey) (Texture, error) {
	w, h := key.DeviceSize()
	tex, err := a.creator.NewTextureFromRGBA(w, h, make([]byte, w*h*4))
	if err != nil {
		return nil, fmt.Errorf("render: NewTextureFromRGBA(%d, %d): %w", w, h, err)
	}
	if pt, ok := tex.(interface{ SetPremultiplied(bool) }); ok {
		pt.SetPremultiplied(true)
	}
	return tex, nil
}

// Upload expands the plane to RGBA and updates the texture.
func (a *CreatorAllocator) Upload(tex Texture, plane *image.Alpha) error {
	updater, ok := tex.(gpucontext.TextureUpdater)
	if !ok {
		return ErrNotUpdatable
	}
	b := plane.Bounds()
	if b.Dx() != tex.Width() || b.Dy() != tex.Height() {
		return fmt.Errorf("%w: plane %dx%d, texture %dx%d", ErrSizeMismatch, b.Dx(), b.Dy(), tex.Width(), tex.Height())
	}
	a.scratch = ExpandAlpha(plane, a.scratch)
	return updater.UpdateData(a.scratch)
}

// Destroy destroys tex if the host texture supports it.
func (a *CreatorAllocator) Destroy(tex Texture) {
	if d, ok := tex.(textureDestroyer); ok {
		d.Destroy()
	}
}

// ExpandAlpha converts a coverage plane into tightly packed premultiplied
// RGBA (white scaled by coverage), reusing dst when it is large enough.
func ExpandAlpha(plane *image.Alpha, dst []byte) []byte {
	b := plane.Bounds()
	w, h := b.Dx(), b.Dy()
	n := w * h * 4
	if cap(dst) < n {
		dst = make([]byte, n)
	}
	dst = dst[:n]
	for y := 0; y < h; y++ {
		row := plane.Pix[y*plane.Stride : y*plane.Stride+w]
		out := dst[y*w*4 : (y+1)*w*4]
		for x, a := range row {
			out[4*x+0] = a
			out[4*x+1] = a
			out[4*x+2] = a
			out[4*x+3] = a
		}
	}
	return dst
}

// Ensure CreatorAllocator implements TextureAllocator.
var _ TextureAllocator = (*CreatorAllocator)(nil)
