package reconcile

import (
	"github.com/gogpu/ggfx/anim"
	"github.com/gogpu/ggfx/effect"
)

// State is the lifecycle state of an Instance.
type State uint8

const (
	StateCreated State = iota
	StateActive
	StateFading
	StateDestroyed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateActive:
		return "active"
	case StateFading:
		return "fading"
	case StateDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// Instance is one running effect bound to an id.
type Instance struct {
	ID     string
	Type   effect.Type
	Effect effect.Effect
	State  State

	// OptionsCache holds the options the effect was last configured with.
	OptionsCache effect.Options

	// Seq orders instances by creation.
	Seq uint64

	// pending is the one operation in flight for this instance.
	pending *anim.Op
}

// Pending reports whether a fade or crossfade is in flight.
func (i *Instance) Pending() bool {
	return i.pending != nil && !i.pending.Resolved()
}

// settle completes the pending operation, if any.
func (i *Instance) settle() {
	if i.Pending() {
		i.pending.Finish()
	}
	i.pending = nil
}
