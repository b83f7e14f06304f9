package mask

import (
	"image"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/vector"

	"github.com/gogpu/ggfx/geom"
)

// Mode selects how shape coverage is combined with the destination plane.
type Mode uint8

const (
	// Union paints coverage over the destination (source-over).
	Union Mode = iota

	// Subtract erases coverage from the destination (destination-out).
	Subtract
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case Union:
		return "union"
	case Subtract:
		return "subtract"
	default:
		return "unknown"
	}
}

// Raster paints shapes into 8-bit coverage planes.
//
// Every shape is first rasterized alone into a scratch plane with
// non-zero winding, then combined with the destination using the
// requested Mode. The scratch planes are reused across calls.
//
// Raster is NOT safe for concurrent use.
type Raster struct {
	z       *vector.Rasterizer
	cov     *image.Alpha
	region  *image.Alpha
	quality draw.Interpolator
}

// NewRaster creates a Raster. Scratch planes are sized lazily.
func NewRaster() *Raster {
	return &Raster{
		z:       vector.NewRasterizer(1, 1),
		quality: draw.ApproxBiLinear,
	}
}

// scratch returns a zeroed plane matching bounds, reusing *buf.
func scratch(buf **image.Alpha, bounds image.Rectangle) *image.Alpha {
	if *buf == nil || (*buf).Rect != bounds {
		*buf = image.NewAlpha(bounds)
		return *buf
	}
	clear((*buf).Pix)
	return *buf
}

// FillPolygon combines the polygon pts (already in device pixels) with dst.
// Polygons with fewer than three points are ignored.
func (r *Raster) FillPolygon(dst *image.Alpha, pts []geom.Point, mode Mode) {
	if len(pts) < 3 {
		return
	}
	area := deviceBounds(pts).Intersect(dst.Rect)
	if area.Empty() {
		return
	}
	cov := scratch(&r.cov, dst.Rect)
	r.coverage(cov, pts)
	combine(dst, cov, area, mode)
}

// coverage rasterizes pts into cov, which must be zeroed.
func (r *Raster) coverage(cov *image.Alpha, pts []geom.Point) {
	b := cov.Rect
	r.z.Reset(b.Dx(), b.Dy())
	ox, oy := float64(b.Min.X), float64(b.Min.Y)
	r.z.MoveTo(float32(pts[0].X-ox), float32(pts[0].Y-oy))
	for _, p := range pts[1:] {
		r.z.LineTo(float32(p.X-ox), float32(p.Y-oy))
	}
	r.z.ClosePath()
	r.z.Draw(cov, b, image.Opaque, image.Point{})
}

// FillShapes paints shapes onto dst through the world-to-device matrix m.
// Non-hole shapes are added and holes subtracted, in list order.
// tolerance is the curve flattening tolerance in device pixels.
func (r *Raster) FillShapes(dst *image.Alpha, shapes []geom.Shape, m geom.Matrix, tolerance float64) {
	worldTol := tolerance
	if s := m.ScaleFactor(); s > 0 {
		worldTol = tolerance / s
	}
	for _, sh := range shapes {
		if sh == nil || sh.Degenerate() {
			continue
		}
		mode := Union
		if sh.IsHole() {
			mode = Subtract
		}
		r.FillPolygon(dst, transform(sh.Outline(worldTol), m), mode)
	}
}

// EraseShapes removes the area described by shapes from dst. The shape
// list is resolved on its own first, so a hole inside a suppression area
// keeps whatever dst already had there.
func (r *Raster) EraseShapes(dst *image.Alpha, shapes []geom.Shape, m geom.Matrix, tolerance float64) {
	region := scratch(&r.region, dst.Rect)
	r.FillShapes(region, shapes, m, tolerance)
	combine(dst, region, dst.Rect, Subtract)
}

// FillImage combines the alpha channel of src, mapped into device space by
// s2d (source pixel to device pixel), with dst.
func (r *Raster) FillImage(dst *image.Alpha, src image.Image, s2d geom.Matrix, mode Mode) {
	sr := src.Bounds()
	if sr.Empty() {
		return
	}
	corners := geom.Rect{
		X: float64(sr.Min.X), Y: float64(sr.Min.Y),
		W: float64(sr.Dx()), H: float64(sr.Dy()),
	}.Corners()
	area := deviceBounds(transform(corners[:], s2d)).Intersect(dst.Rect)
	if area.Empty() {
		return
	}
	cov := scratch(&r.cov, dst.Rect)
	aff := f64.Aff3{s2d.A, s2d.C, s2d.TX, s2d.B, s2d.D, s2d.TY}
	r.quality.Transform(cov, aff, src, sr, draw.Over, nil)
	combine(dst, cov, area, mode)
}

// combine merges cov into dst inside area.
func combine(dst, cov *image.Alpha, area image.Rectangle, mode Mode) {
	for y := area.Min.Y; y < area.Max.Y; y++ {
		di := dst.PixOffset(area.Min.X, y)
		ci := cov.PixOffset(area.Min.X, y)
		for x := area.Min.X; x < area.Max.X; x, di, ci = x+1, di+1, ci+1 {
			c := uint32(cov.Pix[ci])
			if c == 0 {
				continue
			}
			d := uint32(dst.Pix[di])
			switch mode {
			case Union:
				dst.Pix[di] = uint8(c + (d*(255-c)+127)/255)
			case Subtract:
				dst.Pix[di] = uint8((d*(255-c) + 127) / 255)
			}
		}
	}
}

func transform(pts []geom.Point, m geom.Matrix) []geom.Point {
	out := make([]geom.Point, len(pts))
	for i, p := range pts {
		out[i] = m.ApplyPoint(p)
	}
	return out
}

// deviceBounds returns the integer pixel rectangle covering pts.
func deviceBounds(pts []geom.Point) image.Rectangle {
	if len(pts) == 0 {
		return image.Rectangle{}
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	return image.Rect(
		clampInt(math.Floor(minX)), clampInt(math.Floor(minY)),
		clampInt(math.Ceil(maxX)), clampInt(math.Ceil(maxY)),
	)
}

func clampInt(v float64) int {
	const limit = 1 << 24
	switch {
	case math.IsNaN(v):
		return 0
	case v < -limit:
		return -limit
	case v > limit:
		return limit
	}
	return int(v)
}
