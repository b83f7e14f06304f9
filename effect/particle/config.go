package particle

import (
	"fmt"
	"image/color"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/gogpu/ggfx/effect"
)

// configFrom overlays opts on base.
func configFrom(base Config, opts effect.Options) (Config, error) {
	c := base
	c.Density = opts.Float("density", c.Density)
	if c.Density < 0 {
		return c, fmt.Errorf("particle: density %v is negative", c.Density)
	}
	c.Rate = opts.Float("rate", c.Rate)
	c.SpeedMin = opts.Float("speed", c.SpeedMin)
	c.SpeedMax = opts.Float("speed", c.SpeedMax)
	c.SpeedMin = opts.Float("speedMin", c.SpeedMin)
	c.SpeedMax = opts.Float("speedMax", c.SpeedMax)
	c.Direction = opts.Float("direction", c.Direction)
	c.Spread = opts.Float("spread", c.Spread)
	if s := opts.Float("scale", 0); s > 0 {
		c.ScaleMin *= s
		c.ScaleMax *= s
	}
	c.Spin = opts.Float("spin", c.Spin)
	c.Gravity = opts.Float("gravity", c.Gravity)
	c.Alpha = opts.Float("alpha", c.Alpha)
	if life := opts.Float("lifetime", 0); life > 0 {
		c.LifeMin = time.Duration(life * float64(time.Second))
		c.LifeMax = c.LifeMin
	}
	c.BelowTokens = opts.Bool("belowTokens", c.BelowTokens)
	c.MaxParticles = int(opts.Float("maxParticles", float64(c.MaxParticles)))
	c.Seed = uint64(opts.Float("seed", float64(c.Seed)))

	if hex := opts.Text("tint", ""); hex != "" {
		tint, err := parseTint(hex)
		if err != nil {
			return c, err
		}
		c.Tint = tint
	}
	if c.LifeMax < c.LifeMin {
		c.LifeMax = c.LifeMin
	}
	if c.SpeedMax < c.SpeedMin {
		c.SpeedMax = c.SpeedMin
	}
	return c, nil
}

func parseTint(hex string) (color.NRGBA, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("particle: tint %q: %w", hex, err)
	}
	r, g, b := c.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 0xff}, nil
}
