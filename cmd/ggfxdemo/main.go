// Command ggfxdemo runs a headless ggfx session over a small scene and
// writes the resulting masks as PNG files.
package main

import (
	"flag"
	"fmt"
	"image/png"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gogpu/ggfx"
	"github.com/gogpu/ggfx/effect"
	"github.com/gogpu/ggfx/geom"
	"github.com/gogpu/ggfx/region"
	"github.com/gogpu/ggfx/render"
)

func main() {
	var (
		width   = flag.Int("width", 800, "viewport width in CSS pixels")
		height  = flag.Int("height", 600, "viewport height in CSS pixels")
		dpr     = flag.Float64("dpr", 1, "device pixels per CSS pixel")
		frames  = flag.Int("frames", 120, "frames to simulate at 60 fps")
		output  = flag.String("output", ".", "directory the masks are written to")
		verbose = flag.Bool("v", false, "log session activity")
	)
	flag.Parse()

	var opts []ggfx.Option
	if *verbose {
		opts = append(opts, ggfx.WithLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))))
	}

	w, h := float64(*width), float64(*height)
	cam := &render.StaticCamera{Transform: geom.Identity(), Width: w, Height: h, DPR: *dpr}
	ticker := render.NewManualTicker()
	alloc := render.NewMemoryAllocator()
	scene := &render.StaticScene{
		Rect: geom.Rect{W: w, H: h},
		Regions: []render.Suppression{{
			ID:     "roof",
			Shapes: []geom.Shape{geom.Ellipse{Center: geom.Point{X: w * 0.25, Y: h * 0.3}, RX: w * 0.12, RY: h * 0.1}},
		}},
	}
	objects := render.StaticObjects{
		{ID: "hero", Bounds: geom.Rect{X: w*0.5 - 25, Y: h*0.5 - 25, W: 50, H: 50}, Rotation: 0.3, Visible: true},
		{ID: "scout", Bounds: geom.Rect{X: w * 0.7, Y: h * 0.6, W: 40, H: 40}, Visible: true},
	}

	s, err := ggfx.NewSession(render.RenderContext{
		Camera:    cam,
		Allocator: alloc,
		Ticker:    ticker,
		Scene:     scene,
		Objects:   objects,
	}, opts...)
	if err != nil {
		log.Fatalf("Failed to create session: %v", err)
	}
	defer s.Shutdown()

	s.SetParticles(effect.Desired{
		"rain": {Type: "rain", Options: effect.Options{"density": 0.6, "belowTokens": true}},
	})
	s.SetFilters(effect.Desired{
		"grade": {Type: "color", Options: effect.Options{"saturation": 0.8, "tint": "#b0c4de"}},
	})
	err = s.SetRegions([]region.Region{{
		ID: "pond",
		Shapes: []geom.Shape{
			geom.Rectangle{Rect: geom.Rect{X: w * 0.55, Y: h * 0.15, W: w * 0.3, H: h * 0.25}, Rotation: 0.2},
			geom.Ellipse{Center: geom.Point{X: w * 0.7, Y: h * 0.27}, RX: w * 0.05, RY: h * 0.05, Hole: true},
		},
		Behaviors: []region.Behavior{{
			Effects: map[effect.Type]effect.Options{"underwater": {"speed": 0.5}},
		}},
	}})
	if err != nil {
		log.Fatalf("Failed to set regions: %v", err)
	}

	for range *frames {
		ticker.Tick(time.Second / 60)
		if err := s.Err(); err != nil {
			log.Fatalf("Frame failed: %v", err)
		}
	}

	if err := os.MkdirAll(*output, 0o755); err != nil {
		log.Fatalf("Failed to create %s: %v", *output, err)
	}
	masks := s.Masks()
	targets := map[string]*render.RenderTarget{
		"base":       masks.Base,
		"cutout":     masks.Cutout,
		"silhouette": masks.Silhouette,
	}
	for _, b := range s.Regions().Bindings() {
		targets[fmt.Sprintf("region-%s-%d", b.RegionID, b.Index)] = b.Mask
		targets[fmt.Sprintf("region-%s-%d-cutout", b.RegionID, b.Index)] = b.Cutout
	}
	for name, t := range targets {
		if !t.Valid() {
			continue
		}
		path := filepath.Join(*output, name+".png")
		if err := writePNG(path, t); err != nil {
			log.Fatalf("Failed to save %s: %v", path, err)
		}
		log.Printf("Saved %s (%s)", path, t.Key())
	}

	st := s.Stats()
	log.Printf("%d frames, %d mask builds, %d layers, %d textures live",
		st.Ticks, st.MaskBuilds, len(s.PaintOrder()), alloc.Live())
}

func writePNG(path string, t *render.RenderTarget) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, t.Plane()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
