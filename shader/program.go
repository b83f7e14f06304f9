package shader

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"
)

// ErrEmptySource is returned by Compile for blank sources.
var ErrEmptySource = errors.New("shader: empty source")

// Class tells where a declared name lives.
type Class uint8

const (
	// ClassUniform is a member of a var<uniform> struct, or a uniform
	// global of scalar or vector type.
	ClassUniform Class = iota

	// ClassResource is a texture or sampler binding.
	ClassResource
)

// Declaration describes one name a program declares.
type Declaration struct {
	Name    string
	Class   Class
	Group   uint32
	Binding uint32

	// Block is the uniform global holding the member, empty for globals.
	Block string
}

// Program is a reflected WGSL program together with the values bound to
// its declared names.
type Program struct {
	label    string
	source   string
	declared map[string]Declaration
	values   map[string]any
	spirv    []byte
}

// Compile parses and lowers source and records its declarations.
func Compile(label, source string) (*Program, error) {
	if strings.TrimSpace(source) == "" {
		return nil, fmt.Errorf("%w: %s", ErrEmptySource, label)
	}
	ast, err := naga.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("shader: %s: %w", label, err)
	}
	module, err := naga.LowerWithSource(ast, source)
	if err != nil {
		return nil, fmt.Errorf("shader: %s: %w", label, err)
	}
	return &Program{
		label:    label,
		source:   source,
		declared: collect(module),
		values:   make(map[string]any),
	}, nil
}

// MustCompile is like Compile but panics on error. It is meant for
// embedded sources known to be valid.
func MustCompile(label, source string) *Program {
	p, err := Compile(label, source)
	if err != nil {
		panic(err)
	}
	return p
}

func collect(m *ir.Module) map[string]Declaration {
	out := make(map[string]Declaration)
	for _, gv := range m.GlobalVariables {
		var group, binding uint32
		if gv.Binding != nil {
			group, binding = gv.Binding.Group, gv.Binding.Binding
		}
		switch gv.Space {
		case ir.SpaceHandle:
			out[gv.Name] = Declaration{Name: gv.Name, Class: ClassResource, Group: group, Binding: binding}
		case ir.SpaceUniform:
			if int(gv.Type) < len(m.Types) {
				if st, ok := m.Types[gv.Type].Inner.(ir.StructType); ok {
					for _, member := range st.Members {
						out[member.Name] = Declaration{
							Name: member.Name, Class: ClassUniform,
							Group: group, Binding: binding, Block: gv.Name,
						}
					}
					continue
				}
			}
			out[gv.Name] = Declaration{Name: gv.Name, Class: ClassUniform, Group: group, Binding: binding}
		}
	}
	return out
}

// Label returns the program label.
func (p *Program) Label() string { return p.label }

// Declares reports whether the program declares name.
func (p *Program) Declares(name string) bool {
	_, ok := p.declared[name]
	return ok
}

// Declaration returns the declaration of name.
func (p *Program) Declaration(name string) (Declaration, bool) {
	d, ok := p.declared[name]
	return d, ok
}

// Declarations returns every declaration sorted by name.
func (p *Program) Declarations() []Declaration {
	out := make([]Declaration, 0, len(p.declared))
	for _, d := range p.declared {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Set binds v to name and reports whether name is declared. Undeclared
// names are left untouched.
func (p *Program) Set(name string, v any) bool {
	if !p.Declares(name) {
		return false
	}
	p.values[name] = v
	return true
}

// Value returns the value bound to name.
func (p *Program) Value(name string) (any, bool) {
	v, ok := p.values[name]
	return v, ok
}

// Float returns the value bound to name as a float64, or 0.
func (p *Program) Float(name string) float64 {
	switch v := p.values[name].(type) {
	case float32:
		return float64(v)
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}

// Uniforms returns a copy of every bound value.
func (p *Program) Uniforms() map[string]any {
	out := make(map[string]any, len(p.values))
	for k, v := range p.values {
		out[k] = v
	}
	return out
}

// Clone returns a program sharing the reflection of p with no values bound.
func (p *Program) Clone() *Program {
	return &Program{
		label:    p.label,
		source:   p.source,
		declared: p.declared,
		values:   make(map[string]any),
		spirv:    p.spirv,
	}
}

// SPIRV compiles the program to SPIR-V. The result is cached.
func (p *Program) SPIRV() ([]byte, error) {
	if p.spirv != nil {
		return p.spirv, nil
	}
	code, err := naga.Compile(p.source)
	if err != nil {
		return nil, fmt.Errorf("shader: %s: %w", p.label, err)
	}
	p.spirv = code
	return code, nil
}
