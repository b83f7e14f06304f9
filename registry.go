package ggfx

import (
	"sync"

	"github.com/gogpu/ggfx/effect"
	"github.com/gogpu/ggfx/effect/filter"
	"github.com/gogpu/ggfx/effect/particle"
)

var defaultRegistry = sync.OnceValue(func() *effect.Registry {
	reg := effect.NewRegistry()
	particle.RegisterDefaults(reg)
	filter.RegisterDefaults(reg)
	return reg
})

// DefaultRegistry returns the registry holding every built-in particle
// preset and filter. Hosts may register their own types into it.
func DefaultRegistry() *effect.Registry {
	return defaultRegistry()
}
