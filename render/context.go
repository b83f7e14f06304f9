// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"image"
	"time"

	"github.com/gogpu/ggfx/geom"
)

// Camera gives access to the host camera.
type Camera interface {
	// WorldTransform returns the matrix mapping world coordinates to CSS
	// pixels of the viewport.
	WorldTransform() geom.Matrix

	// ViewSize returns the viewport size in CSS pixels.
	ViewSize() (width, height float64)

	// Resolution returns the number of device pixels per CSS pixel.
	Resolution() float64
}

// Ticker registers per-frame callbacks with the host.
type Ticker interface {
	// Register adds fn to the frame loop. The returned function removes it.
	Register(fn func(dt time.Duration)) (cancel func())
}

// MovingObject is a foreground object (a token) that below-object effects
// are cut around.
type MovingObject struct {
	ID string

	// Bounds is the object's world-space rectangle before rotation.
	Bounds geom.Rect

	// Rotation is the rotation around the bounds center in radians.
	Rotation float64

	// Alpha is the object's texture. Only its alpha channel is used. When
	// nil the whole (rotated) bounds are treated as opaque.
	Alpha image.Image

	// Visible reports whether the object is currently rendered.
	Visible bool
}

// MovingObjectSource enumerates the moving objects in view.
type MovingObjectSource interface {
	VisibleObjects() []MovingObject
}

// Suppression is a region inside which scene-level effects are masked out.
type Suppression struct {
	ID     string
	Shapes []geom.Shape
}

// SceneSource describes the static scene.
type SceneSource interface {
	// SceneRect returns the world rectangle effects are allowed to cover.
	SceneRect() geom.Rect

	// SuppressionRegions returns the regions currently suppressing effects.
	SuppressionRegions() []Suppression
}

// RenderContext is the explicit bundle of host collaborators passed into
// every component. Camera, Allocator and Scene are required.
type RenderContext struct {
	Camera    Camera
	Allocator TextureAllocator
	Ticker    Ticker
	Scene     SceneSource
	Objects   MovingObjectSource
}

// Errors returned by Validate.
var (
	ErrNoCamera    = errors.New("render: context has no camera")
	ErrNoAllocator = errors.New("render: context has no texture allocator")
	ErrNoScene     = errors.New("render: context has no scene source")
)

// Validate reports the first missing required collaborator.
func (rc RenderContext) Validate() error {
	switch {
	case rc.Camera == nil:
		return ErrNoCamera
	case rc.Allocator == nil:
		return ErrNoAllocator
	case rc.Scene == nil:
		return ErrNoScene
	}
	return nil
}

// VisibleObjects returns the visible moving objects, or nil when the host
// supplied no source.
func (rc RenderContext) VisibleObjects() []MovingObject {
	if rc.Objects == nil {
		return nil
	}
	all := rc.Objects.VisibleObjects()
	out := all[:0:0]
	for _, o := range all {
		if o.Visible {
			out = append(out, o)
		}
	}
	return out
}
