// Package geom holds the 2D geometry shared by the compositor: points,
// rectangles, the camera affine Matrix, and the region shape types
// (polygon, ellipse, rectangle) that masks are rasterized from.
//
// # Coordinate System
//
// World coordinates follow the scene: origin top-left, X right, Y down.
// Matrix maps world coordinates to CSS pixels of the viewport; the mask
// package multiplies by the device resolution afterwards.
package geom
