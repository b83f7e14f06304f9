package effect

import "testing"

func TestApplyPatchTombstone(t *testing.T) {
	d := Desired{
		"a": {Type: "rain", Options: Options{"density": 0.5}},
		"b": {Type: "snow"},
	}

	removed := ApplyPatch(d, Patch{Tombstone("a"): {}})
	if _, ok := removed["a"]; ok {
		t.Fatal("tombstone did not remove a")
	}
	if _, ok := removed["b"]; !ok {
		t.Fatal("tombstone removed an unrelated id")
	}
	if _, ok := d["a"]; !ok {
		t.Fatal("ApplyPatch mutated its input")
	}

	readded := ApplyPatch(removed, Patch{"a": {Type: "rain", Options: Options{"density": 0.9}}})
	if got := readded["a"].Options.Float("density", 0); got != 0.9 {
		t.Errorf("re-added density = %v, want 0.9", got)
	}
}

func TestApplyPatchRemovalBeforeAddition(t *testing.T) {
	d := Desired{"a": {Type: "rain", Options: Options{"density": 0.5}}}
	out := ApplyPatch(d, Patch{
		Tombstone("a"): {},
		"a":            {Type: "snow"},
	})
	if got := out["a"].Type; got != "snow" {
		t.Errorf("a.Type = %q, want %q", got, "snow")
	}
	if len(out["a"].Options) != 0 {
		t.Errorf("a.Options = %v, want none carried over", out["a"].Options)
	}
}

func TestDesiredIDsSkipTombstones(t *testing.T) {
	d := Desired{"b": {}, "a": {}, "-=c": {}}
	ids := d.IDs()
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Errorf("IDs() = %v, want [a b]", ids)
	}
}

func TestSpecEqual(t *testing.T) {
	a := Spec{Type: "Rain", Options: Options{"density": 1}}
	b := Spec{Type: "rain", Options: Options{"density": 1.0}}
	if !a.Equal(b) {
		t.Error("Spec.Equal() ignores case folding or numeric normalisation")
	}
	b.Type = "snow"
	if a.Equal(b) {
		t.Error("Spec.Equal() = true for different types")
	}
}

func TestIsTombstone(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"-=rain", true},
		{"rain", false},
		{"=-rain", false},
		{"-", false},
	}
	for _, tt := range tests {
		if got := IsTombstone(tt.key); got != tt.want {
			t.Errorf("IsTombstone(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}
