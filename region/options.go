package region

import (
	"time"

	"github.com/gogpu/ggfx/reconcile"
	"github.com/gogpu/ggfx/render"
)

type config struct {
	viewer      ViewerSource
	objects     render.MovingObjectSource
	soft        bool
	prewarm     bool
	crossfade   time.Duration
	fadeTimeout time.Duration
}

func defaultConfig() config {
	return config{
		crossfade:   reconcile.DefaultCrossfade,
		fadeTimeout: reconcile.DefaultRegionFadeTimeout,
	}
}

// Option configures a Manager.
type Option func(*config)

// WithViewer sets the source consulted by the elevation gates. Without
// one the viewer is unprivileged and has no point of view.
func WithViewer(v ViewerSource) Option {
	return func(c *config) {
		c.viewer = v
	}
}

// WithObjects sets the moving objects erased from region cutouts.
func WithObjects(src render.MovingObjectSource) Option {
	return func(c *config) {
		c.objects = src
	}
}

// WithSoftTransition crossfades option changes of region effects.
func WithSoftTransition(soft bool) Option {
	return func(c *config) {
		c.soft = soft
	}
}

// WithPrewarm plays new region effects prewarmed.
func WithPrewarm(prewarm bool) Option {
	return func(c *config) {
		c.prewarm = prewarm
	}
}

// WithCrossfade sets the soft-transition duration.
func WithCrossfade(d time.Duration) Option {
	return func(c *config) {
		if d >= 0 {
			c.crossfade = d
		}
	}
}

// WithFadeTimeout bounds the fade-out of removed region effects.
func WithFadeTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.fadeTimeout = d
		}
	}
}
