// Package shader reflects the uniform surface of WGSL effect programs.
//
// An effect program may declare any of the well-known names below. The
// compositor binds only what a program declares; Set on an undeclared
// name is ignored, so a program that never samples a mask degrades to
// "no suppression" instead of failing.
//
// Declared names are the module-scope variables of the program plus the
// members of every var<uniform> struct, found by parsing and lowering the
// source with naga.
package shader

// Well-known uniform names.
const (
	MaskSampler  = "maskSampler"
	HasMask      = "hasMask"
	ViewSize     = "viewSize"
	MaskReady    = "maskReady"
	DeviceToCSS  = "deviceToCss"
	TokenSampler = "tokenSampler"
	HasTokenMask = "hasTokenMask"

	Alpha = "alpha"
	Time  = "time"
)
