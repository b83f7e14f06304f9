package filter

import (
	"embed"
	"fmt"
	"sort"

	"github.com/gogpu/ggfx/effect"
	"github.com/gogpu/ggfx/internal/cache"
	"github.com/gogpu/ggfx/shader"
)

//go:embed shaders/*.wgsl
var shaders embed.FS

// Preset describes a built-in filter.
type Preset struct {
	Type   effect.Type
	Source string // file under shaders/

	// BelowTokens filters sample the cutout mask and leave moving objects
	// untouched.
	BelowTokens bool

	// Defaults are applied before descriptor options.
	Defaults effect.Options
}

var presets = map[effect.Type]Preset{
	"color": {
		Type: "color", Source: "color.wgsl",
		Defaults: effect.Options{"saturation": 1.0, "contrast": 1.0, "brightness": 1.0, "tint": "#ffffff"},
	},
	"bloom": {
		Type: "bloom", Source: "bloom.wgsl",
		Defaults: effect.Options{"threshold": 0.5, "strength": 1.0, "radius": 2.0},
	},
	"underwater": {
		Type: "underwater", Source: "underwater.wgsl", BelowTokens: true,
		Defaults: effect.Options{"speed": 0.3, "scale": 20.0, "amplitude": 0.004, "tint": "#3399cc"},
	},
	"lightning": {
		Type: "lightning", Source: "lightning.wgsl",
		Defaults: effect.Options{"brightness": 1.5, "interval": 5.0},
	},
	"fog": {
		Type: "fog", Source: "fog.wgsl",
		Defaults: effect.Options{"density": 0.5, "speed": 0.2, "tint": "#c8c8d2"},
	},
}

// Lookup returns the preset registered for typ.
func Lookup(typ effect.Type) (Preset, bool) {
	p, ok := presets[typ.Fold()]
	return p, ok
}

// Presets returns the built-in filter types in sorted order.
func Presets() []effect.Type {
	out := make([]effect.Type, 0, len(presets))
	for t := range presets {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// RegisterDefaults registers every built-in filter with reg.
func RegisterDefaults(reg *effect.Registry) {
	for _, t := range Presets() {
		reg.Register(effect.KindFilter, t, func(desc effect.Descriptor) (effect.Effect, error) {
			return New(desc)
		})
	}
}

// templates holds one compiled program per preset.
var templates = cache.New[effect.Type, *shader.Program](0)

// template compiles the preset program once and returns a fresh clone.
func template(p Preset) (*shader.Program, error) {
	prog, err := templates.GetOrCreate(p.Type, func() (*shader.Program, error) {
		src, err := shaders.ReadFile("shaders/" + p.Source)
		if err != nil {
			return nil, fmt.Errorf("filter: %s: %w", p.Type, err)
		}
		prog, err := shader.Compile(string(p.Type), string(src))
		if err != nil {
			return nil, fmt.Errorf("filter: %w", err)
		}
		return prog, nil
	})
	if err != nil {
		return nil, err
	}
	return prog.Clone(), nil
}
