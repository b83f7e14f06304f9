// Package reconcile keeps a set of running effects in line with a
// declarative Desired mapping.
//
// A Reconciler owns its instances by id. Every Apply computes a Plan
// (create, update, remove), executes it with per-id error isolation, and
// returns a Pass that resolves once every fade or crossfade it started has
// resolved. Removed instances move to a separate dying set, so an id can
// have one dying and one active instance during a crossfade but never two
// active ones.
//
// Everything runs on the caller's frame tick: Step advances the effects
// and every pending fade. Nothing in this package is safe for concurrent
// use.
package reconcile
