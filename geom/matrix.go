package geom

import "math"

// Matrix is a 2D affine transformation in the canvas convention:
//
//	| A  C  TX |
//	| B  D  TY |
//
// which maps a point as
//
//	x' = A*x + C*y + TX
//	y' = B*x + D*y + TY
//
// The camera hands the compositor its world transform in this form.
type Matrix struct {
	A, B, C, D float64
	TX, TY     float64
}

// Identity returns the identity transformation matrix.
func Identity() Matrix {
	return Matrix{A: 1, D: 1}
}

// Translate creates a translation matrix.
func Translate(x, y float64) Matrix {
	return Matrix{A: 1, D: 1, TX: x, TY: y}
}

// Scale creates a scaling matrix.
func Scale(x, y float64) Matrix {
	return Matrix{A: x, D: y}
}

// Rotate creates a rotation matrix (angle in radians).
func Rotate(angle float64) Matrix {
	sin, cos := math.Sincos(angle)
	return Matrix{A: cos, B: sin, C: -sin, D: cos}
}

// Multiply returns m * other: other is applied first, then m.
func (m Matrix) Multiply(other Matrix) Matrix {
	return Matrix{
		A:  m.A*other.A + m.C*other.B,
		B:  m.B*other.A + m.D*other.B,
		C:  m.A*other.C + m.C*other.D,
		D:  m.B*other.C + m.D*other.D,
		TX: m.A*other.TX + m.C*other.TY + m.TX,
		TY: m.B*other.TX + m.D*other.TY + m.TY,
	}
}

// Apply transforms the point (x, y).
func (m Matrix) Apply(x, y float64) (float64, float64) {
	return m.A*x + m.C*y + m.TX, m.B*x + m.D*y + m.TY
}

// ApplyPoint transforms p.
func (m Matrix) ApplyPoint(p Point) Point {
	x, y := m.Apply(p.X, p.Y)
	return Point{X: x, Y: y}
}

// Determinant returns the determinant of the linear part.
func (m Matrix) Determinant() float64 {
	return m.A*m.D - m.B*m.C
}

// Invert returns the inverse matrix and whether it exists.
func (m Matrix) Invert() (Matrix, bool) {
	det := m.Determinant()
	if math.Abs(det) < 1e-12 {
		return Matrix{}, false
	}
	inv := 1 / det
	return Matrix{
		A:  m.D * inv,
		B:  -m.B * inv,
		C:  -m.C * inv,
		D:  m.A * inv,
		TX: (m.C*m.TY - m.D*m.TX) * inv,
		TY: (m.B*m.TX - m.A*m.TY) * inv,
	}, true
}

// IsIdentity reports whether m is exactly the identity.
func (m Matrix) IsIdentity() bool {
	return m == Identity()
}

// ScaleFactor returns the average linear scale of the matrix, used to pick
// curve flattening tolerances in device space.
func (m Matrix) ScaleFactor() float64 {
	return math.Sqrt(math.Abs(m.Determinant()))
}
