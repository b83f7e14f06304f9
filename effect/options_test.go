package effect

import "testing"

func TestOptionsEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Options
		want bool
	}{
		{"both nil", nil, nil, true},
		{"nil and empty", nil, Options{}, true},
		{"int and float", Options{"density": 1}, Options{"density": 1.0}, true},
		{"float32 and float64", Options{"speed": float32(0.5)}, Options{"speed": 0.5}, true},
		{"changed number", Options{"density": 0.5}, Options{"density": 0.9}, false},
		{"added key", Options{}, Options{"tint": "#fff"}, false},
		{"removed key", Options{"tint": "#fff"}, Options{}, false},
		{"nested equal", Options{"wind": map[string]any{"x": 1}}, Options{"wind": Options{"x": 1.0}}, true},
		{"nested differs", Options{"wind": map[string]any{"x": 1}}, Options{"wind": map[string]any{"x": 2}}, false},
		{"slices", Options{"tints": []any{"a", 1}}, Options{"tints": []any{"a", 1.0}}, true},
		{"slice length", Options{"tints": []any{"a"}}, Options{"tints": []any{"a", "b"}}, false},
		{"type mismatch", Options{"x": "1"}, Options{"x": 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDiff(t *testing.T) {
	old := Options{"density": 0.5, "speed": 2, "tint": "#fff"}
	updated := Options{"density": 0.9, "speed": 2.0, "scale": 1}

	d := Diff(old, updated)
	want := map[string]any{"density": 0.9, "scale": 1, "tint": nil}
	if len(d) != len(want) {
		t.Fatalf("Diff() = %v, want keys %v", d, want)
	}
	for k, v := range want {
		got, ok := d[k]
		if !ok || got != v {
			t.Errorf("Diff()[%q] = %v, want %v", k, got, v)
		}
	}
	if Diff(old, old.Clone()) != nil {
		t.Error("Diff() of equal options is not nil")
	}
}

func TestOptionsCloneIsDeep(t *testing.T) {
	o := Options{"wind": map[string]any{"x": 1}, "tints": []any{"a"}}
	c := o.Clone()
	c["wind"].(map[string]any)["x"] = 5
	c["tints"].([]any)[0] = "b"

	if o["wind"].(map[string]any)["x"] != 1 {
		t.Error("Clone() shares nested maps")
	}
	if o["tints"].([]any)[0] != "a" {
		t.Error("Clone() shares nested slices")
	}
}

func TestOptionsAccessors(t *testing.T) {
	o := Options{"density": 2, "below": true, "tint": "#abc", "bad": "x"}
	if got := o.Float("density", 0); got != 2 {
		t.Errorf("Float(density) = %v, want 2", got)
	}
	if got := o.Float("bad", 7); got != 7 {
		t.Errorf("Float(bad) = %v, want default 7", got)
	}
	if !o.Bool("below", false) {
		t.Error("Bool(below) = false, want true")
	}
	if got := o.Text("tint", ""); got != "#abc" {
		t.Errorf("Text(tint) = %q, want %q", got, "#abc")
	}
	if got := o.Keys(); len(got) != 4 || got[0] != "bad" {
		t.Errorf("Keys() = %v, want sorted 4 keys", got)
	}
}
