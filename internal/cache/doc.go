// Package cache provides a small keyed cache for values that are costly
// to build, such as compiled shader programs.
package cache
