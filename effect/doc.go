// Package effect defines the effect model shared by the reconcilers.
//
// An effect is identified by a string id and created from a Descriptor by a
// Factory looked up in a Registry under its Kind and Type. The declarative
// input is a Desired mapping from id to Spec; removal is a tombstone key
// ("-=" + id) in a Patch, never plain absence.
package effect
