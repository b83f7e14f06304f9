package wgpu

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/ggfx/internal/logging"
	"github.com/gogpu/ggfx/render"
)

// Texture is a mask texture owned by an Allocator.
type Texture struct {
	tex       hal.Texture
	width     int
	height    int
	uploads   int
	destroyed bool
}

// Width returns the texture width in device pixels.
func (t *Texture) Width() int { return t.width }

// Height returns the texture height in device pixels.
func (t *Texture) Height() int { return t.height }

// HAL returns the underlying HAL texture, for building bind groups.
func (t *Texture) HAL() hal.Texture { return t.tex }

// Uploads returns how many times the texture content was written.
func (t *Texture) Uploads() int { return t.uploads }

// Allocator is a render.TextureAllocator backed by a HAL device and queue.
//
// Allocator is NOT safe for concurrent use.
type Allocator struct {
	device hal.Device
	queue  hal.Queue
	label  string
	live   map[*Texture]struct{}
}

// Option configures an Allocator.
type Option func(*Allocator)

// WithLabel sets the debug label given to created textures.
func WithLabel(label string) Option {
	return func(a *Allocator) {
		a.label = label
	}
}

// NewAllocator creates an Allocator creating textures on device and
// writing them through queue.
func NewAllocator(device hal.Device, queue hal.Queue, opts ...Option) *Allocator {
	a := &Allocator{
		device: device,
		queue:  queue,
		label:  "ggfx mask",
		live:   make(map[*Texture]struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Allocator) log() *slog.Logger {
	return logging.With("wgpu")
}

// Allocate creates a sampled R8Unorm texture of the key's device size.
// Device errors are returned as they are; Allocate never retries.
func (a *Allocator) Allocate(key render.TargetKey) (render.Texture, error) {
	w, h := key.DeviceSize()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("wgpu: invalid texture size %dx%d", w, h)
	}
	tex, err := a.device.CreateTexture(&hal.TextureDescriptor{
		Label: a.label,
		Size: hal.Extent3D{
			Width:              uint32(w),
			Height:             uint32(h),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        key.Format(),
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create %s texture: %w", key, err)
	}
	t := &Texture{tex: tex, width: w, height: h}
	a.live[t] = struct{}{}
	a.log().Debug("texture created", "key", key.String(), "live", len(a.live))
	return t, nil
}

// Upload writes the coverage plane into tex.
func (a *Allocator) Upload(tex render.Texture, plane *image.Alpha) error {
	t, err := a.own(tex)
	if err != nil {
		return err
	}
	if t.destroyed {
		return render.ErrTextureDestroyed
	}
	b := plane.Bounds()
	if b.Dx() != t.width || b.Dy() != t.height {
		return fmt.Errorf("%w: plane %dx%d, texture %dx%d", render.ErrSizeMismatch, b.Dx(), b.Dy(), t.width, t.height)
	}
	err = a.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: t.tex, Aspect: gputypes.TextureAspectAll},
		rows(plane),
		&hal.ImageDataLayout{BytesPerRow: uint32(t.width), RowsPerImage: uint32(t.height)},
		&hal.Extent3D{Width: uint32(t.width), Height: uint32(t.height), DepthOrArrayLayers: 1},
	)
	if err != nil {
		return fmt.Errorf("wgpu: write texture: %w", err)
	}
	t.uploads++
	return nil
}

// Destroy releases the GPU storage of tex. Destroying twice is a no-op.
func (a *Allocator) Destroy(tex render.Texture) {
	t, err := a.own(tex)
	if err != nil || t.destroyed {
		return
	}
	t.destroyed = true
	delete(a.live, t)
	a.device.DestroyTexture(t.tex)
}

// Live returns the number of textures created and not yet destroyed.
func (a *Allocator) Live() int {
	return len(a.live)
}

func (a *Allocator) own(tex render.Texture) (*Texture, error) {
	t, ok := tex.(*Texture)
	if !ok {
		return nil, fmt.Errorf("wgpu: foreign texture %T", tex)
	}
	return t, nil
}

// rows returns the plane pixels tightly packed, one byte per pixel.
func rows(plane *image.Alpha) []byte {
	b := plane.Bounds()
	w, h := b.Dx(), b.Dy()
	if plane.Stride == w && len(plane.Pix) >= w*h {
		return plane.Pix[:w*h]
	}
	out := make([]byte, 0, w*h)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		i := plane.PixOffset(b.Min.X, y)
		out = append(out, plane.Pix[i:i+w]...)
	}
	return out
}
