package ggfx

import (
	"github.com/gogpu/ggfx/effect"
	"github.com/gogpu/ggfx/reconcile"
)

// The control surface edits the desired scene effects by id. Every call
// except the switches is idempotent: repeating it starts no further work.

// AddFilter runs filter id with typ and opts. Adding an id that is already
// desired updates it in place.
func (s *Session) AddFilter(id string, typ effect.Type, opts effect.Options) *reconcile.Pass {
	return s.add(effect.KindFilter, id, typ, opts)
}

// RemoveFilter fades filter id out.
func (s *Session) RemoveFilter(id string) *reconcile.Pass {
	return s.PatchFilters(effect.Patch{effect.Tombstone(id): {}})
}

// SwitchFilter removes filter id when it already runs typ and adds it with
// opts otherwise. An id running another type is switched to typ.
func (s *Session) SwitchFilter(id string, typ effect.Type, opts effect.Options) *reconcile.Pass {
	return s.toggle(effect.KindFilter, id, typ, opts)
}

// SetFilterList replaces every desired filter with list.
func (s *Session) SetFilterList(list []effect.Descriptor) *reconcile.Pass {
	return s.SetFilters(desiredOf(list))
}

// AddParticles runs particle effect id with typ and opts, updating it when
// it is already desired.
func (s *Session) AddParticles(id string, typ effect.Type, opts effect.Options) *reconcile.Pass {
	return s.add(effect.KindParticle, id, typ, opts)
}

// RemoveParticles fades particle effect id out.
func (s *Session) RemoveParticles(id string) *reconcile.Pass {
	return s.PatchParticles(effect.Patch{effect.Tombstone(id): {}})
}

// SwitchParticles removes particle effect id when it already runs typ and
// adds it with opts otherwise.
func (s *Session) SwitchParticles(id string, typ effect.Type, opts effect.Options) *reconcile.Pass {
	return s.toggle(effect.KindParticle, id, typ, opts)
}

// SetParticleList replaces every desired particle effect with list.
func (s *Session) SetParticleList(list []effect.Descriptor) *reconcile.Pass {
	return s.SetParticles(desiredOf(list))
}

func (s *Session) desired(kind effect.Kind) effect.Desired {
	if kind == effect.KindFilter {
		return s.filterSet
	}
	return s.particleSet
}

func (s *Session) patch(kind effect.Kind, p effect.Patch) *reconcile.Pass {
	if kind == effect.KindFilter {
		return s.PatchFilters(p)
	}
	return s.PatchParticles(p)
}

func (s *Session) add(kind effect.Kind, id string, typ effect.Type, opts effect.Options) *reconcile.Pass {
	return s.patch(kind, effect.Patch{id: {Type: typ, Options: opts}})
}

func (s *Session) toggle(kind effect.Kind, id string, typ effect.Type, opts effect.Options) *reconcile.Pass {
	if cur, ok := s.desired(kind)[id]; ok && cur.Type.Fold() == typ.Fold() {
		return s.patch(kind, effect.Patch{effect.Tombstone(id): {}})
	}
	return s.patch(kind, effect.Patch{id: {Type: typ, Options: opts}})
}

func desiredOf(list []effect.Descriptor) effect.Desired {
	d := make(effect.Desired, len(list))
	for _, desc := range list {
		d[desc.ID] = effect.Spec{Type: desc.Type, Options: desc.Options}
	}
	return d
}
