package particle

import (
	"image/color"
	"time"

	"github.com/gogpu/ggfx/effect"
)

// Config drives an Emitter. Options of a descriptor override the preset
// values field by field.
type Config struct {
	// Rate is the number of particles spawned per second for every
	// million square world units of spawn area, before Density.
	Rate    float64
	Density float64

	LifeMin, LifeMax time.Duration

	// Speed is in world units per second.
	SpeedMin, SpeedMax float64

	// Direction is the travel direction in degrees, 90 pointing down.
	Direction float64
	Spread    float64

	ScaleMin, ScaleMax float64
	Spin               float64
	Gravity            float64

	Tint  color.NRGBA
	Alpha float64

	BelowTokens  bool
	MaxParticles int
	Seed         uint64
}

var presets = map[effect.Type]Config{
	"rain": {
		Rate: 900, Density: 1,
		LifeMin: 600 * time.Millisecond, LifeMax: 900 * time.Millisecond,
		SpeedMin: 1600, SpeedMax: 2200,
		Direction: 75, Spread: 2,
		ScaleMin: 0.6, ScaleMax: 1,
		Tint: color.NRGBA{R: 0xa8, G: 0xc8, B: 0xff, A: 0xff}, Alpha: 0.6,
		MaxParticles: 4000,
	},
	"snow": {
		Rate: 240, Density: 1,
		LifeMin: 4 * time.Second, LifeMax: 7 * time.Second,
		SpeedMin: 60, SpeedMax: 120,
		Direction: 90, Spread: 25,
		ScaleMin: 0.3, ScaleMax: 0.9, Spin: 40,
		Tint: color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, Alpha: 0.9,
		MaxParticles: 3000,
	},
	"embers": {
		Rate: 60, Density: 1,
		LifeMin: 2 * time.Second, LifeMax: 4 * time.Second,
		SpeedMin: 20, SpeedMax: 60,
		Direction: 270, Spread: 40,
		ScaleMin: 0.2, ScaleMax: 0.5, Gravity: -10,
		Tint: color.NRGBA{R: 0xff, G: 0x8a, B: 0x2a, A: 0xff}, Alpha: 1,
		MaxParticles: 800,
	},
	"leaves": {
		Rate: 20, Density: 1,
		LifeMin: 5 * time.Second, LifeMax: 9 * time.Second,
		SpeedMin: 40, SpeedMax: 90,
		Direction: 60, Spread: 30,
		ScaleMin: 0.4, ScaleMax: 0.8, Spin: 90,
		Tint: color.NRGBA{R: 0xb5, G: 0x7a, B: 0x2c, A: 0xff}, Alpha: 1,
		MaxParticles: 400,
	},
	"bubbles": {
		Rate: 30, Density: 1,
		LifeMin: 3 * time.Second, LifeMax: 6 * time.Second,
		SpeedMin: 30, SpeedMax: 70,
		Direction: 270, Spread: 15,
		ScaleMin: 0.2, ScaleMax: 0.6,
		Tint: color.NRGBA{R: 0xcc, G: 0xf4, B: 0xff, A: 0xff}, Alpha: 0.7,
		BelowTokens: true, MaxParticles: 600,
	},
	"stars": {
		Rate: 15, Density: 1,
		LifeMin: 3 * time.Second, LifeMax: 8 * time.Second,
		ScaleMin: 0.1, ScaleMax: 0.3,
		Tint: color.NRGBA{R: 0xff, G: 0xf6, B: 0xd5, A: 0xff}, Alpha: 0.8,
		MaxParticles: 500,
	},
	"fog": {
		Rate: 4, Density: 1,
		LifeMin: 12 * time.Second, LifeMax: 20 * time.Second,
		SpeedMin: 5, SpeedMax: 15,
		Direction: 0, Spread: 180,
		ScaleMin: 4, ScaleMax: 8,
		Tint: color.NRGBA{R: 0xdd, G: 0xdd, B: 0xdd, A: 0xff}, Alpha: 0.25,
		BelowTokens: true, MaxParticles: 120,
	},
}

// Presets returns the preset type names.
func Presets() []effect.Type {
	out := make([]effect.Type, 0, len(presets))
	for t := range presets {
		out = append(out, t)
	}
	return out
}

// Preset returns the configuration of typ.
func Preset(typ effect.Type) (Config, bool) {
	c, ok := presets[typ.Fold()]
	return c, ok
}

// RegisterDefaults registers every preset as a particle effect.
func RegisterDefaults(reg *effect.Registry) {
	for typ := range presets {
		reg.Register(effect.KindParticle, typ, func(desc effect.Descriptor) (effect.Effect, error) {
			return New(desc)
		})
	}
}
