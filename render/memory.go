package render

import (
	"errors"
	"fmt"
	"image"
)

var (
	// ErrOutOfMemory is returned by MemoryAllocator once its budget is exhausted.
	ErrOutOfMemory = errors.New("render: out of texture memory")

	// ErrUploadFailed is returned by MemoryAllocator uploads while
	// FailUploads is set.
	ErrUploadFailed = errors.New("render: texture upload failed")
)

// MemoryTexture is a CPU-resident texture created by MemoryAllocator.
type MemoryTexture struct {
	ID        int
	Pix       []byte
	width     int
	height    int
	uploads   int
	destroyed bool
}

// Width returns the texture width in pixels.
func (t *MemoryTexture) Width() int { return t.width }

// Height returns the texture height in pixels.
func (t *MemoryTexture) Height() int { return t.height }

// Uploads returns how many times the texture content was replaced.
func (t *MemoryTexture) Uploads() int { return t.uploads }

// Destroyed reports whether the texture was destroyed.
func (t *MemoryTexture) Destroyed() bool { return t.destroyed }

// AlphaAt returns the stored coverage at (x, y).
func (t *MemoryTexture) AlphaAt(x, y int) uint8 {
	if x < 0 || y < 0 || x >= t.width || y >= t.height {
		return 0
	}
	return t.Pix[y*t.width+x]
}

// MemoryAllocator is a TextureAllocator keeping single-channel textures in
// main memory. It records every call so tests can assert on allocation
// behaviour, and can be told to fail after a number of allocations or to
// fail uploads.
type MemoryAllocator struct {
	allocations int
	uploads     int
	destroyed   int
	live        map[*MemoryTexture]struct{}
	failAfter   int
	failUploads bool
}

// NewMemoryAllocator creates an allocator with an unlimited budget.
func NewMemoryAllocator() *MemoryAllocator {
	return &MemoryAllocator{
		live:      make(map[*MemoryTexture]struct{}),
		failAfter: -1,
	}
}

// FailAfter makes every allocation beyond the first n fail with
// ErrOutOfMemory. A negative n removes the limit.
func (a *MemoryAllocator) FailAfter(n int) {
	a.failAfter = n
}

// FailUploads makes every following Upload fail with ErrUploadFailed
// until it is called with false.
func (a *MemoryAllocator) FailUploads(fail bool) {
	a.failUploads = fail
}

// Allocate creates a zeroed texture of the key's device size.
func (a *MemoryAllocator) Allocate(key TargetKey) (Texture, error) {
	if a.failAfter >= 0 && a.allocations >= a.failAfter {
		return nil, ErrOutOfMemory
	}
	w, h := key.DeviceSize()
	a.allocations++
	tex := &MemoryTexture{
		ID:     a.allocations,
		Pix:    make([]byte, w*h),
		width:  w,
		height: h,
	}
	a.live[tex] = struct{}{}
	return tex, nil
}

// Upload copies the plane into the texture.
func (a *MemoryAllocator) Upload(tex Texture, plane *image.Alpha) error {
	mt, ok := tex.(*MemoryTexture)
	if !ok {
		return fmt.Errorf("render: MemoryAllocator cannot upload to %T", tex)
	}
	if mt.destroyed {
		return ErrTextureDestroyed
	}
	if a.failUploads {
		return ErrUploadFailed
	}
	b := plane.Bounds()
	if b.Dx() != mt.width || b.Dy() != mt.height {
		return fmt.Errorf("%w: plane %dx%d, texture %dx%d", ErrSizeMismatch, b.Dx(), b.Dy(), mt.width, mt.height)
	}
	for y := 0; y < mt.height; y++ {
		copy(mt.Pix[y*mt.width:(y+1)*mt.width], plane.Pix[y*plane.Stride:])
	}
	mt.uploads++
	a.uploads++
	return nil
}

// Destroy marks the texture destroyed and drops it from the live set.
func (a *MemoryAllocator) Destroy(tex Texture) {
	mt, ok := tex.(*MemoryTexture)
	if !ok || mt.destroyed {
		return
	}
	mt.destroyed = true
	mt.Pix = nil
	delete(a.live, mt)
	a.destroyed++
}

// Allocations returns the number of successful Allocate calls.
func (a *MemoryAllocator) Allocations() int { return a.allocations }

// Uploads returns the number of successful Upload calls.
func (a *MemoryAllocator) Uploads() int { return a.uploads }

// Destroyed returns the number of destroyed textures.
func (a *MemoryAllocator) Destroyed() int { return a.destroyed }

// Live returns the number of textures not yet destroyed.
func (a *MemoryAllocator) Live() int { return len(a.live) }

// Ensure MemoryAllocator implements TextureAllocator.
var _ TextureAllocator = (*MemoryAllocator)(nil)
