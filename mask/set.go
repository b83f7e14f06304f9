package mask

import "github.com/gogpu/ggfx/render"

// Set is the mask set of one camera generation.
//
// Base is always present once built. Cutout and Silhouette are nil unless
// some live effect needs them.
type Set struct {
	Base       *render.RenderTarget
	Cutout     *render.RenderTarget
	Silhouette *render.RenderTarget

	// Generation is the camera generation the set was painted for.
	Generation uint64
}

// Ready reports whether the base mask is usable.
func (s *Set) Ready() bool {
	return s != nil && s.Base.Valid()
}

// Release returns every target to pool and clears the set.
func (s *Set) Release(pool *render.Pool) {
	if s == nil {
		return
	}
	pool.Release(s.Base)
	pool.Release(s.Cutout)
	pool.Release(s.Silhouette)
	*s = Set{}
}
