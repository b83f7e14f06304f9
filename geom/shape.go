package geom

import "math"

// Shape is one entry of a region's shape list.
//
// Shapes are painted in order. A hole shape toggles the painter into
// subtractive mode for its own footprint, which is how nested cut-outs
// are honored.
type Shape interface {
	// Outline returns the closed outline in world coordinates. tolerance is
	// the maximum allowed deviation in world units for curved shapes.
	Outline(tolerance float64) []Point

	// IsHole reports whether the shape subtracts from the area painted so far.
	IsHole() bool

	// Degenerate reports whether the shape encloses no area.
	Degenerate() bool
}

// Polygon is a closed polygon given by its vertices.
type Polygon struct {
	Points []Point
	Hole   bool
}

// Outline returns the polygon vertices.
func (p Polygon) Outline(float64) []Point {
	return p.Points
}

// IsHole reports whether the polygon is a hole.
func (p Polygon) IsHole() bool { return p.Hole }

// Degenerate reports whether the polygon has fewer than three vertices or
// zero signed area.
func (p Polygon) Degenerate() bool {
	if len(p.Points) < 3 {
		return true
	}
	return math.Abs(SignedArea(p.Points)) < 1e-9
}

// Ellipse is an ellipse centered at Center with radii RX and RY, rotated by
// Rotation radians around its center.
type Ellipse struct {
	Center   Point
	RX, RY   float64
	Rotation float64
	Hole     bool
}

// Outline flattens the ellipse into a polygon whose chords deviate from the
// true curve by at most tolerance.
func (e Ellipse) Outline(tolerance float64) []Point {
	if e.Degenerate() {
		return nil
	}
	n := ellipseSegments(math.Max(e.RX, e.RY), tolerance)
	pts := make([]Point, n)
	for i := 0; i < n; i++ {
		theta := 2 * math.Pi * float64(i) / float64(n)
		sin, cos := math.Sincos(theta)
		p := Point{X: e.Center.X + e.RX*cos, Y: e.Center.Y + e.RY*sin}
		pts[i] = p.Rotate(e.Center, e.Rotation)
	}
	return pts
}

// IsHole reports whether the ellipse is a hole.
func (e Ellipse) IsHole() bool { return e.Hole }

// Degenerate reports whether either radius is non-positive.
func (e Ellipse) Degenerate() bool { return e.RX <= 0 || e.RY <= 0 }

// Rectangle is an axis-aligned rectangle rotated by Rotation radians around
// its center.
type Rectangle struct {
	Rect     Rect
	Rotation float64
	Hole     bool
}

// Outline returns the four (possibly rotated) corners.
func (r Rectangle) Outline(float64) []Point {
	if r.Degenerate() {
		return nil
	}
	c := r.Rect.Center()
	corners := r.Rect.Corners()
	pts := make([]Point, 0, 4)
	for _, p := range corners {
		pts = append(pts, p.Rotate(c, r.Rotation))
	}
	return pts
}

// IsHole reports whether the rectangle is a hole.
func (r Rectangle) IsHole() bool { return r.Hole }

// Degenerate reports whether the rectangle has no area.
func (r Rectangle) Degenerate() bool { return r.Rect.Empty() }

// SignedArea returns the shoelace area of a closed polyline. The sign
// follows the winding direction.
func SignedArea(pts []Point) float64 {
	var sum float64
	for i := range pts {
		j := (i + 1) % len(pts)
		sum += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	return sum / 2
}

// ellipseSegments picks a segment count for flattening a circle of radius r
// so that the sagitta stays below tolerance.
func ellipseSegments(r, tolerance float64) int {
	const minSegments, maxSegments = 8, 256
	if tolerance <= 0 || tolerance >= r {
		return minSegments
	}
	// sagitta = r(1 - cos(pi/n)) <= tol  =>  n >= pi / acos(1 - tol/r)
	n := int(math.Ceil(math.Pi / math.Acos(1-tolerance/r)))
	if n < minSegments {
		return minSegments
	}
	if n > maxSegments {
		return maxSegments
	}
	return n
}

// ShapesEqual reports whether two shape lists describe the same geometry.
// Region bindings use it to decide whether a mask must be re-rasterized.
func ShapesEqual(a, b []Shape) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !shapeEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

func shapeEqual(a, b Shape) bool {
	switch sa := a.(type) {
	case Polygon:
		sb, ok := b.(Polygon)
		if !ok || sa.Hole != sb.Hole || len(sa.Points) != len(sb.Points) {
			return false
		}
		for i := range sa.Points {
			if sa.Points[i] != sb.Points[i] {
				return false
			}
		}
		return true
	case Ellipse:
		sb, ok := b.(Ellipse)
		return ok && sa == sb
	case Rectangle:
		sb, ok := b.(Rectangle)
		return ok && sa == sb
	default:
		return false
	}
}
