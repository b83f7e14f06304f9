package mask

import (
	"fmt"
	"log/slog"

	"github.com/gogpu/ggfx/geom"
	"github.com/gogpu/ggfx/internal/logging"
	"github.com/gogpu/ggfx/render"
)

// DefaultTolerance is the curve flattening tolerance in device pixels.
const DefaultTolerance = 0.25

// Option configures a Builder.
type Option func(*Builder)

// WithTolerance sets the curve flattening tolerance in device pixels.
func WithTolerance(px float64) Option {
	return func(b *Builder) {
		if px > 0 {
			b.tolerance = px
		}
	}
}

// Builder paints masks into targets borrowed from a render.Pool.
//
// The scene-level Set is owned by the Builder: each Build call reuses the
// previous target of the same role when the view size and resolution are
// unchanged and swaps it for a fresh one otherwise. Region masks are owned
// by the caller, who passes the previous target back in.
//
// Builder is NOT safe for concurrent use.
type Builder struct {
	pool      *render.Pool
	raster    *Raster
	tolerance float64
	set       Set
	paints    int
}

// NewBuilder creates a Builder drawing targets from pool.
func NewBuilder(pool *render.Pool, opts ...Option) *Builder {
	b := &Builder{
		pool:      pool,
		raster:    NewRaster(),
		tolerance: DefaultTolerance,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Pool returns the pool targets are drawn from.
func (b *Builder) Pool() *render.Pool {
	return b.pool
}

// Paints returns how many masks have been painted so far.
func (b *Builder) Paints() int {
	return b.paints
}

// Set returns the scene-level mask set. The set stays owned by the Builder.
func (b *Builder) Set() *Set {
	return &b.set
}

// Release returns the scene-level targets to the pool.
func (b *Builder) Release() {
	b.set.Release(b.pool)
}

// Build paints the whole scene-level set for view. The cutout and
// silhouette are painted only when requested and released otherwise.
func (b *Builder) Build(view View, scene geom.Rect, regions []render.Suppression, objects []render.MovingObject, cutout, silhouette bool) (*Set, error) {
	base, err := b.BuildAllowMask(view, scene, regions)
	if err != nil {
		return nil, err
	}
	if cutout {
		if _, err := b.BuildCutout(view, base, objects); err != nil {
			return nil, err
		}
	} else if b.set.Cutout != nil {
		b.pool.Release(b.set.Cutout)
		b.set.Cutout = nil
	}
	if silhouette {
		if _, err := b.BuildSilhouette(view, objects); err != nil {
			return nil, err
		}
	} else if b.set.Silhouette != nil {
		b.pool.Release(b.set.Silhouette)
		b.set.Silhouette = nil
	}
	return &b.set, nil
}

// BuildAllowMask paints the scene rectangle minus every suppression region
// into the scene base target.
func (b *Builder) BuildAllowMask(view View, scene geom.Rect, regions []render.Suppression) (*render.RenderTarget, error) {
	t, err := b.acquire(b.set.Base, view.Key())
	b.set.Base = t
	if err != nil {
		return nil, fmt.Errorf("mask: base: %w", err)
	}
	dev := view.Device()
	plane := t.Plane()
	if !scene.Empty() {
		corners := scene.Corners()
		b.raster.FillPolygon(plane, transform(corners[:], dev), Union)
	}
	for _, r := range regions {
		b.raster.EraseShapes(plane, r.Shapes, dev, b.tolerance)
	}
	return t, b.finish(t, "base", len(regions))
}

// BuildCutout copies base into the scene cutout target and erases the
// footprint of every visible object from it.
func (b *Builder) BuildCutout(view View, base *render.RenderTarget, objects []render.MovingObject) (*render.RenderTarget, error) {
	if !base.Valid() {
		return nil, fmt.Errorf("mask: cutout: %w", render.ErrTextureDestroyed)
	}
	t, err := b.acquire(b.set.Cutout, base.Key())
	b.set.Cutout = t
	if err != nil {
		return nil, fmt.Errorf("mask: cutout: %w", err)
	}
	if err := t.CopyFrom(base); err != nil {
		return nil, fmt.Errorf("mask: cutout: %w", err)
	}
	n := b.paintObjects(t, view, objects, Subtract)
	return t, b.finish(t, "cutout", n)
}

// BuildSilhouette paints the footprints of the visible objects alone.
func (b *Builder) BuildSilhouette(view View, objects []render.MovingObject) (*render.RenderTarget, error) {
	t, err := b.acquire(b.set.Silhouette, view.Key())
	b.set.Silhouette = t
	if err != nil {
		return nil, fmt.Errorf("mask: silhouette: %w", err)
	}
	n := b.paintObjects(t, view, objects, Union)
	return t, b.finish(t, "silhouette", n)
}

// BuildRegionMask paints shapes into a region target. prev is the region's
// previous mask; it is reused when its key matches view and released
// otherwise. Degenerate shapes contribute nothing, so a region made only
// of degenerate shapes yields an empty mask.
func (b *Builder) BuildRegionMask(view View, shapes []geom.Shape, prev *render.RenderTarget) (*render.RenderTarget, error) {
	t, err := b.acquire(prev, view.Key())
	if err != nil {
		return nil, fmt.Errorf("mask: region: %w", err)
	}
	b.raster.FillShapes(t.Plane(), shapes, view.Device(), b.tolerance)
	return t, b.finish(t, "region", len(shapes))
}

// BuildRegionCutout copies a region mask into a cutout target and erases
// the footprint of every visible object from it. prev is the region's
// previous cutout, reused like the prev of BuildRegionMask.
func (b *Builder) BuildRegionCutout(view View, region *render.RenderTarget, objects []render.MovingObject, prev *render.RenderTarget) (*render.RenderTarget, error) {
	if !region.Valid() {
		b.pool.Release(prev)
		return nil, fmt.Errorf("mask: region cutout: %w", render.ErrTextureDestroyed)
	}
	t, err := b.acquire(prev, region.Key())
	if err != nil {
		return nil, fmt.Errorf("mask: region cutout: %w", err)
	}
	if err := t.CopyFrom(region); err != nil {
		return t, fmt.Errorf("mask: region cutout: %w", err)
	}
	n := b.paintObjects(t, view, objects, Subtract)
	return t, b.finish(t, "region cutout", n)
}

func (b *Builder) log() *slog.Logger {
	return logging.With("mask")
}

// acquire returns a cleared target for key, reusing prev when possible.
// A resized view gets a fresh target rather than a resized one.
func (b *Builder) acquire(prev *render.RenderTarget, key render.TargetKey) (*render.RenderTarget, error) {
	if prev.Valid() && prev.Key() == key {
		prev.Clear()
		return prev, nil
	}
	b.pool.Release(prev)
	t, err := b.pool.Acquire(key.Width, key.Height, key.Resolution)
	if err != nil {
		return nil, err
	}
	t.Clear()
	return t, nil
}

func (b *Builder) finish(t *render.RenderTarget, role string, items int) error {
	b.paints++
	if err := b.pool.Upload(t); err != nil {
		return fmt.Errorf("mask: %s: %w", role, err)
	}
	b.log().Debug("mask painted", "role", role, "key", t.Key().String(), "items", items, "paints", b.paints)
	return nil
}

// paintObjects combines the footprint of each visible object with t and
// returns how many were painted.
func (b *Builder) paintObjects(t *render.RenderTarget, view View, objects []render.MovingObject, mode Mode) int {
	dev := view.Device()
	n := 0
	for _, obj := range objects {
		if !obj.Visible || obj.Bounds.Empty() {
			continue
		}
		b.paintObject(t, obj, dev, mode)
		n++
	}
	return n
}

func (b *Builder) paintObject(t *render.RenderTarget, obj render.MovingObject, dev geom.Matrix, mode Mode) {
	if obj.Alpha == nil {
		footprint := geom.Rectangle{Rect: obj.Bounds, Rotation: obj.Rotation}
		b.raster.FillPolygon(t.Plane(), transform(footprint.Outline(0), dev), mode)
		return
	}
	b.raster.FillImage(t.Plane(), obj.Alpha, objectToDevice(obj, dev), mode)
}

// objectToDevice maps pixels of obj.Alpha onto the device plane: the image
// is stretched over obj.Bounds, rotated about the bounds center, then
// projected by dev.
func objectToDevice(obj render.MovingObject, dev geom.Matrix) geom.Matrix {
	sr := obj.Alpha.Bounds()
	c := obj.Bounds.Center()
	m := dev.
		Multiply(geom.Translate(c.X, c.Y)).
		Multiply(geom.Rotate(obj.Rotation)).
		Multiply(geom.Translate(-c.X, -c.Y)).
		Multiply(geom.Translate(obj.Bounds.X, obj.Bounds.Y)).
		Multiply(geom.Scale(obj.Bounds.W/float64(sr.Dx()), obj.Bounds.H/float64(sr.Dy()))).
		Multiply(geom.Translate(-float64(sr.Min.X), -float64(sr.Min.Y)))
	return m
}
