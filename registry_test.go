package ggfx

import (
	"testing"

	"github.com/gogpu/ggfx/effect"
)

func TestDefaultRegistry(t *testing.T) {
	reg := DefaultRegistry()
	if DefaultRegistry() != reg {
		t.Fatal("DefaultRegistry() built twice")
	}
	tests := []struct {
		kind effect.Kind
		typ  effect.Type
	}{
		{effect.KindParticle, "rain"},
		{effect.KindParticle, "Snow"},
		{effect.KindFilter, "bloom"},
		{effect.KindFilter, "underwater"},
	}
	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			if _, ok := reg.Lookup(tt.kind, tt.typ); !ok {
				t.Errorf("Lookup(%v, %q) found nothing", tt.kind, tt.typ)
			}
		})
	}
}
