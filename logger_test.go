package ggfx

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/gogpu/ggfx/effect"
	"github.com/gogpu/ggfx/geom"
	"github.com/gogpu/ggfx/region"
)

func TestLoggerDefaultSilent(t *testing.T) {
	l := Logger()
	if l == nil {
		t.Fatal("Logger() returned nil")
	}
	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn} {
		if l.Enabled(context.Background(), level) {
			t.Errorf("default logger should not be enabled for %v", level)
		}
	}
}

func TestSetLogger(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var buf bytes.Buffer
	custom := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	SetLogger(custom)
	if Logger() != custom {
		t.Error("Logger() did not return the custom logger set via SetLogger")
	}

	SetLogger(nil)
	if Logger().Enabled(context.Background(), slog.LevelWarn) {
		t.Error("SetLogger(nil) did not restore the silent logger")
	}
}

func TestUnknownTypeIsLogged(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})))

	h := newHarness(t)
	h.s.SetParticles(effect.Desired{"x": {Type: "meteor"}})
	h.tick(16 * time.Millisecond)

	out := buf.String()
	if !strings.Contains(out, "meteor") || !strings.Contains(out, "id=x") {
		t.Errorf("warning does not name the id and type: %q", out)
	}
}

func TestLateSetLoggerReachesSession(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	h := newHarness(t)
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})))

	pass := h.s.SetFilters(effect.Desired{"x": {Type: "nope"}})
	if pass.Skipped != 1 {
		t.Fatalf("SetFilters() Skipped = %d, want 1", pass.Skipped)
	}
	err := h.s.SetRegions([]region.Region{{
		ID:        "marsh",
		Shapes:    []geom.Shape{geom.Rectangle{Rect: geom.Rect{W: 10, H: 10}}},
		Behaviors: []region.Behavior{{Effects: map[effect.Type]effect.Options{"comet": nil}}},
	}})
	if err != nil {
		t.Fatalf("SetRegions() error = %v", err)
	}

	out := buf.String()
	tests := []struct {
		name string
		want string
	}{
		{"scene type", "nope"},
		{"scene id", "id=x"},
		{"reconciler label", "reconciler=filters"},
		{"region type", "comet"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.Contains(out, tt.want) {
				t.Errorf("log output %q does not contain %q", out, tt.want)
			}
		})
	}
}
