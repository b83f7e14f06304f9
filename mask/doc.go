// Package mask paints the coverage masks that clip effects.
//
// Three masks are built per camera generation:
//
//   - base: the scene rectangle minus every suppression region
//   - cutout: base minus the footprint of visible moving objects, built
//     only when a live effect renders beneath moving objects
//   - silhouette: the moving-object footprints alone, for shaders that
//     must exempt those pixels from displacement
//
// Regions bound to effects get a mask of their own, painted from the
// region's shape list by BuildRegionMask.
//
// Masks are painted on the CPU into the coverage plane of a pooled
// render.RenderTarget and uploaded once per build. Coordinates follow the
// camera: a world point p lands on device pixel
// Scale(res, res) * view.Matrix * p.
package mask
