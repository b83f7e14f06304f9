package effect

import (
	"sort"
	"strings"
)

// TombstonePrefix marks a removal key in a Patch: "-=rain" removes "rain".
const TombstonePrefix = "-="

// Descriptor is the full identity and configuration of one effect.
type Descriptor struct {
	ID      string
	Kind    Kind
	Type    Type
	Options Options
}

// Spec is the value side of a Desired entry.
type Spec struct {
	Type    Type
	Options Options
}

// Equal reports whether s and o describe the same effect configuration.
func (s Spec) Equal(o Spec) bool {
	return s.Type.Fold() == o.Type.Fold() && s.Options.Equal(o.Options)
}

// Desired maps effect ids to the effect that should be running.
type Desired map[string]Spec

// IDs returns the ids sorted.
func (d Desired) IDs() []string {
	ids := make([]string, 0, len(d))
	for id := range d {
		if !IsTombstone(id) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Clone returns a deep copy of d.
func (d Desired) Clone() Desired {
	out := make(Desired, len(d))
	for id, s := range d {
		out[id] = Spec{Type: s.Type, Options: s.Options.Clone()}
	}
	return out
}

// Descriptor returns the descriptor of id for kind.
func (d Desired) Descriptor(id string, kind Kind) (Descriptor, bool) {
	s, ok := d[id]
	if !ok {
		return Descriptor{}, false
	}
	return Descriptor{ID: id, Kind: kind, Type: s.Type, Options: s.Options}, true
}

// Patch is a partial update of a Desired mapping. A key of the form
// TombstonePrefix+id deletes id; every other key sets its entry.
type Patch map[string]Spec

// Tombstone returns the removal key for id.
func Tombstone(id string) string {
	return TombstonePrefix + id
}

// IsTombstone reports whether key is a removal key.
func IsTombstone(key string) bool {
	return strings.HasPrefix(key, TombstonePrefix)
}

// ApplyPatch returns a copy of d with p merged in. Removals are applied
// before additions, so a patch holding both "-=x" and "x" replaces x.
func ApplyPatch(d Desired, p Patch) Desired {
	out := d.Clone()
	for key := range p {
		if IsTombstone(key) {
			delete(out, strings.TrimPrefix(key, TombstonePrefix))
		}
	}
	for key, s := range p {
		if !IsTombstone(key) {
			out[key] = Spec{Type: s.Type, Options: s.Options.Clone()}
		}
	}
	return out
}
