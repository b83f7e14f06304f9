package ggfx

import (
	"log/slog"
	"time"

	"github.com/gogpu/ggfx/camera"
	"github.com/gogpu/ggfx/effect"
	"github.com/gogpu/ggfx/mask"
	"github.com/gogpu/ggfx/reconcile"
	"github.com/gogpu/ggfx/region"
)

// Option configures a Session during creation.
//
// Example:
//
//	s, err := ggfx.NewSession(rc,
//	    ggfx.WithSoftTransition(true),
//	    ggfx.WithPrewarm(true),
//	)
type Option func(*config)

type config struct {
	soft          bool
	crossfade     time.Duration
	sceneTimeout  time.Duration
	regionTimeout time.Duration
	prewarm       bool
	epsilon       float64
	refresh       time.Duration
	tolerance     float64
	warmup        int
	registry      *effect.Registry
	viewer        region.ViewerSource
	logger        *slog.Logger
}

func defaultConfig() config {
	return config{
		crossfade:     reconcile.DefaultCrossfade,
		sceneTimeout:  reconcile.DefaultSceneFadeTimeout,
		regionTimeout: reconcile.DefaultRegionFadeTimeout,
		epsilon:       camera.DefaultEpsilon,
		tolerance:     mask.DefaultTolerance,
	}
}

// WithSoftTransition makes option changes crossfade to a replacement
// instance instead of reconfiguring the running one.
func WithSoftTransition(soft bool) Option {
	return func(c *config) {
		c.soft = soft
	}
}

// WithCrossfadeDuration sets the soft-transition duration (2.5s by default).
func WithCrossfadeDuration(d time.Duration) Option {
	return func(c *config) {
		if d >= 0 {
			c.crossfade = d
		}
	}
}

// WithSceneFadeTimeout bounds fade-outs of scene effects (20s by default).
func WithSceneFadeTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.sceneTimeout = d
		}
	}
}

// WithRegionFadeTimeout bounds fade-outs of region effects (2s by default).
func WithRegionFadeTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.regionTimeout = d
		}
	}
}

// WithPrewarm starts new effects at steady-state density.
func WithPrewarm(prewarm bool) Option {
	return func(c *config) {
		c.prewarm = prewarm
	}
}

// WithCameraEpsilon sets the tolerance under which camera matrices are
// considered unchanged.
func WithCameraEpsilon(eps float64) Option {
	return func(c *config) {
		c.epsilon = eps
	}
}

// WithCameraRefresh forces a mask rebuild every interval even when the
// camera is still. Zero disables it.
func WithCameraRefresh(interval time.Duration) Option {
	return func(c *config) {
		c.refresh = interval
	}
}

// WithTolerance sets the curve flattening tolerance of masks in device
// pixels.
func WithTolerance(px float64) Option {
	return func(c *config) {
		c.tolerance = px
	}
}

// WithWarmup pre-allocates n mask targets for the initial view.
func WithWarmup(n int) Option {
	return func(c *config) {
		c.warmup = n
	}
}

// WithRegistry replaces the effect registry. The default is
// DefaultRegistry.
func WithRegistry(reg *effect.Registry) Option {
	return func(c *config) {
		c.registry = reg
	}
}

// WithViewer sets the source of the viewer state consulted by region
// gates.
func WithViewer(v region.ViewerSource) Option {
	return func(c *config) {
		c.viewer = v
	}
}

// WithLogger installs l as the ggfx logger, as SetLogger does.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}
