package mask

import (
	"math"

	"github.com/gogpu/ggfx/geom"
	"github.com/gogpu/ggfx/render"
)

// View describes the viewport masks are painted for.
type View struct {
	// Matrix maps world coordinates to CSS pixels.
	Matrix geom.Matrix

	// Width and Height are the viewport size in CSS pixels.
	Width, Height float64

	// Resolution is the number of device pixels per CSS pixel.
	Resolution float64
}

// ViewFromCamera captures the current state of cam.
func ViewFromCamera(cam render.Camera) View {
	w, h := cam.ViewSize()
	return View{
		Matrix:     cam.WorldTransform(),
		Width:      w,
		Height:     h,
		Resolution: cam.Resolution(),
	}
}

// Key returns the pool key of targets painted for v.
func (v View) Key() render.TargetKey {
	res := v.Resolution
	if res <= 0 {
		res = 1
	}
	return render.TargetKey{
		Width:      max(int(math.Ceil(v.Width)), 1),
		Height:     max(int(math.Ceil(v.Height)), 1),
		Resolution: res,
	}
}

// Device returns the world-to-device-pixel matrix.
func (v View) Device() geom.Matrix {
	res := v.Key().Resolution
	return geom.Scale(res, res).Multiply(v.Matrix)
}

// SameSize reports whether v and o produce interchangeable targets.
func (v View) SameSize(o View) bool {
	return v.Key() == o.Key()
}
