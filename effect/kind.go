package effect

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// Kind separates particle effects from full-scene filters.
type Kind uint8

const (
	// KindParticle is a particle emitter effect.
	KindParticle Kind = iota

	// KindFilter is a full-scene shader filter.
	KindFilter
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindParticle:
		return "particle"
	case KindFilter:
		return "filter"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// ParseKind parses "particle" or "filter", ignoring case.
func ParseKind(s string) (Kind, error) {
	switch Type(s).Fold() {
	case "particle", "particles":
		return KindParticle, nil
	case "filter", "filters":
		return KindFilter, nil
	}
	return 0, fmt.Errorf("effect: unknown kind %q", s)
}

// Type is an effect type tag such as "rain" or "bloom". Tags compare
// case-insensitively through Fold.
type Type string

var folder = cases.Fold()

// Fold returns the canonical form of the tag.
func (t Type) Fold() Type {
	return Type(folder.String(strings.TrimSpace(string(t))))
}
