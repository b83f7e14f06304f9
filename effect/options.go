package effect

import (
	"math"
	"reflect"
	"sort"
)

// Options is the free-form option map of one effect.
type Options map[string]any

// Clone returns a deep copy of o. Nested maps and slices are copied.
func (o Options) Clone() Options {
	if o == nil {
		return nil
	}
	out := make(Options, len(o))
	for k, v := range o {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch v := v.(type) {
	case Options:
		return v.Clone()
	case map[string]any:
		return map[string]any(Options(v).Clone())
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = cloneValue(e)
		}
		return out
	case []float64:
		return append([]float64(nil), v...)
	case []string:
		return append([]string(nil), v...)
	default:
		return v
	}
}

// Equal reports whether o and other hold structurally equal values.
// Numbers compare by value across int and float types, and a nil map
// equals an empty one.
func (o Options) Equal(other Options) bool {
	return len(Diff(o, other)) == 0
}

// Diff returns the keys whose value differs between old and updated,
// mapped to their value in updated. Keys missing from updated map to nil.
func Diff(old, updated Options) Options {
	var out Options
	for k, nv := range updated {
		ov, ok := old[k]
		if ok && valuesEqual(ov, nv) {
			continue
		}
		if out == nil {
			out = make(Options)
		}
		out[k] = nv
	}
	for k := range old {
		if _, ok := updated[k]; ok {
			continue
		}
		if out == nil {
			out = make(Options)
		}
		out[k] = nil
	}
	return out
}

// Keys returns the option keys sorted.
func (o Options) Keys() []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Float returns the numeric option key, or def when absent or not numeric.
func (o Options) Float(key string, def float64) float64 {
	if f, ok := toFloat(o[key]); ok {
		return f
	}
	return def
}

// Bool returns the boolean option key, or def.
func (o Options) Bool(key string, def bool) bool {
	if b, ok := o[key].(bool); ok {
		return b
	}
	return def
}

// Text returns the string option key, or def.
func (o Options) Text(key, def string) string {
	if s, ok := o[key].(string); ok {
		return s
	}
	return def
}

func valuesEqual(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		return ok && (fa == fb || math.IsNaN(fa) && math.IsNaN(fb))
	}
	if ma, ok := asMap(a); ok {
		mb, ok := asMap(b)
		return ok && len(Diff(ma, mb)) == 0
	}
	if sa, ok := a.([]any); ok {
		sb, ok := b.([]any)
		if !ok || len(sa) != len(sb) {
			return false
		}
		for i := range sa {
			if !valuesEqual(sa[i], sb[i]) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(a, b)
}

func asMap(v any) (Options, bool) {
	switch v := v.(type) {
	case Options:
		return v, true
	case map[string]any:
		return Options(v), true
	}
	return nil, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}
