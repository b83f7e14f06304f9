package camera

import (
	"testing"
	"time"

	"github.com/gogpu/ggfx/geom"
	"github.com/gogpu/ggfx/render"
)

func TestSnapTranslationToDevicePixels(t *testing.T) {
	m := geom.Matrix{A: 1, D: 1, TX: 10.2, TY: -3.74}
	tests := []struct {
		res    float64
		tx, ty float64
	}{
		{1, 10, -4},
		{2, 10, -3.5},
		{0, 10, -4},
	}
	for _, tt := range tests {
		s := Snap(m, tt.res)
		if s.TX != tt.tx || s.TY != tt.ty {
			t.Errorf("Snap(res=%v) translation = (%v, %v), want (%v, %v)", tt.res, s.TX, s.TY, tt.tx, tt.ty)
		}
	}
}

func TestSnapAbsorbsLinearNoise(t *testing.T) {
	a := Snap(geom.Matrix{A: 1.0000000001, D: 0.9999999999}, 1)
	b := Snap(geom.Identity(), 1)
	if a != b {
		t.Errorf("Snap() = %+v, want %+v", a, b)
	}
}

func TestTrackerFirstObservationChanges(t *testing.T) {
	tr := NewTracker()
	if !tr.Observe(Snap(geom.Identity(), 1)) {
		t.Error("first Observe() = false, want true")
	}
	if _, ok := tr.Last(); !ok {
		t.Error("Last() ok = false after Observe")
	}
}

func TestTrackerEpsilon(t *testing.T) {
	tests := []struct {
		name string
		next Snapshot
		want bool
	}{
		{"identical", Snapshot{A: 1, D: 1}, false},
		{"below epsilon", Snapshot{A: 1 + 5e-5, D: 1}, false},
		{"zoom", Snapshot{A: 1.01, D: 1.01}, true},
		{"pan", Snapshot{A: 1, D: 1, TX: 1}, true},
		{"rotation", Snapshot{A: 1, B: 0.01, C: -0.01, D: 1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTracker()
			tr.Observe(Snapshot{A: 1, D: 1})
			if got := tr.Observe(tt.next); got != tt.want {
				t.Errorf("Observe(%+v) = %v, want %v", tt.next, got, tt.want)
			}
		})
	}
}

func TestTrackerListenersFireOncePerChange(t *testing.T) {
	tr := NewTracker()
	var calls int
	tr.OnChange(func(Snapshot) { calls++ })

	cam := &render.StaticCamera{Transform: geom.Identity(), Width: 100, Height: 100}
	for i := 0; i < 10; i++ {
		tr.Update(cam, 16*time.Millisecond)
	}
	if calls != 1 {
		t.Errorf("listener calls over 10 still frames = %d, want 1", calls)
	}

	cam.Transform = geom.Translate(25, 0)
	tr.Update(cam, 16*time.Millisecond)
	if calls != 2 {
		t.Errorf("listener calls after pan = %d, want 2", calls)
	}
	if tr.Generation() != 2 {
		t.Errorf("Generation() = %d, want 2", tr.Generation())
	}
}

func TestTrackerPeriodicRefresh(t *testing.T) {
	tr := NewTracker(WithRefresh(time.Second))
	cam := &render.StaticCamera{Transform: geom.Identity()}

	tr.Update(cam, 0)
	changes := 0
	for i := 0; i < 10; i++ {
		if tr.Update(cam, 250*time.Millisecond) {
			changes++
		}
	}
	if changes != 2 {
		t.Errorf("forced refreshes over 2.5s = %d, want 2", changes)
	}
}

func TestTrackerReset(t *testing.T) {
	tr := NewTracker()
	s := Snapshot{A: 1, D: 1}
	tr.Observe(s)
	tr.Reset()
	if !tr.Observe(s) {
		t.Error("Observe() after Reset = false, want true")
	}
}
