package reconcile

import "time"

const (
	// DefaultCrossfade is the soft-transition duration.
	DefaultCrossfade = 2500 * time.Millisecond

	// DefaultSceneFadeTimeout bounds fade-outs of scene-level effects.
	DefaultSceneFadeTimeout = 20 * time.Second

	// DefaultRegionFadeTimeout bounds fade-outs of region-bound effects.
	DefaultRegionFadeTimeout = 2 * time.Second
)

type config struct {
	soft         bool
	crossfade    time.Duration
	fadeDuration time.Duration
	fadeTimeout  time.Duration
	prewarm      bool
	onChange     func()
	label        string
}

func defaultConfig() config {
	return config{
		crossfade:    DefaultCrossfade,
		fadeDuration: DefaultCrossfade,
		fadeTimeout:  DefaultSceneFadeTimeout,
	}
}

// Option configures a Reconciler.
type Option func(*config)

// WithSoftTransition makes option changes crossfade to a replacement
// instance instead of reconfiguring in place.
func WithSoftTransition(soft bool) Option {
	return func(c *config) {
		c.soft = soft
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

// WithFadeDuration sets the duration requested from FadeOut.
func WithFadeDuration(d time.Duration) Option {
	return func(c *config) {
		if d >= 0 {
			c.fadeDuration = d
		}
	}
}

// WithFadeTimeout bounds every fade-out: a dying instance is destroyed
// when its fade resolves or the timeout elapses, whichever comes first.
func WithFadeTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.fadeTimeout = d
		}
	}
}

// WithPrewarm plays new instances prewarmed.
func WithPrewarm(prewarm bool) Option {
	return func(c *config) {
		c.prewarm = prewarm
	}
}

// WithOnChange registers fn to run whenever the live instance set changes.
func WithOnChange(fn func()) Option {
	return func(c *config) {
		c.onChange = fn
	}
}

// WithLabel names the reconciler in log records.
func WithLabel(label string) Option {
	return func(c *config) {
		c.label = label
	}
}
