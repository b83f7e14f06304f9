// Package anim provides cancelable timed operations driven by frame ticks.
//
// Fades and crossfades are Ops. An Op resolves exactly once, for one of four
// reasons: its duration elapsed, it was canceled, its target was destroyed
// first, or it was completed early. Nothing in this package starts a
// goroutine or a timer; time only moves when Advance is called.
package anim

import (
	"context"
	"time"
)

// Reason tells why an Op resolved.
type Reason uint8

const (
	// Pending means the Op has not resolved yet.
	Pending Reason = iota

	// Elapsed means the full duration passed.
	Elapsed

	// Canceled means Cancel was called.
	Canceled

	// TargetDestroyed means the animated object went away first.
	TargetDestroyed

	// Completed means Finish jumped to the end.
	Completed
)

// String returns the reason name.
func (r Reason) String() string {
	switch r {
	case Pending:
		return "pending"
	case Elapsed:
		return "elapsed"
	case Canceled:
		return "canceled"
	case TargetDestroyed:
		return "target-destroyed"
	case Completed:
		return "completed"
	default:
		return "unknown"
	}
}

// Op is a timed operation. apply receives the progress in [0, 1] on every
// Advance until the Op resolves.
//
// Op is NOT safe for concurrent use, except for Done which may be waited on
// from any goroutine.
type Op struct {
	duration  time.Duration
	elapsed   time.Duration
	apply     func(progress float64)
	reason    Reason
	done      chan struct{}
	listeners []func(Reason)
}

// NewOp creates a pending Op lasting d. apply may be nil.
func NewOp(d time.Duration, apply func(progress float64)) *Op {
	return &Op{
		duration: max(d, 0),
		apply:    apply,
		done:     make(chan struct{}),
	}
}

// Resolved returns an Op that has already resolved with reason.
func Resolved(reason Reason) *Op {
	o := NewOp(0, nil)
	o.resolve(reason)
	return o
}

// Advance moves the Op forward by dt and reports whether it is resolved.
func (o *Op) Advance(dt time.Duration) bool {
	if o.reason != Pending {
		return true
	}
	o.elapsed += max(dt, 0)
	p := o.Progress()
	if o.apply != nil {
		o.apply(p)
	}
	if p >= 1 {
		o.resolve(Elapsed)
	}
	return o.reason != Pending
}

// Progress returns the elapsed fraction in [0, 1].
func (o *Op) Progress() float64 {
	if o.duration <= 0 {
		if o.elapsed > 0 || o.reason != Pending {
			return 1
		}
		return 0
	}
	return min(float64(o.elapsed)/float64(o.duration), 1)
}

// Duration returns the Op's full duration.
func (o *Op) Duration() time.Duration {
	return o.duration
}

// Cancel resolves the Op without applying further progress.
func (o *Op) Cancel() {
	o.resolve(Canceled)
}

// Finish applies full progress and resolves the Op.
func (o *Op) Finish() {
	if o.reason != Pending {
		return
	}
	if o.apply != nil {
		o.apply(1)
	}
	o.resolve(Completed)
}

// TargetGone resolves the Op because the object it animates was destroyed.
func (o *Op) TargetGone() {
	o.resolve(TargetDestroyed)
}

// Done returns a channel closed when the Op resolves.
func (o *Op) Done() <-chan struct{} {
	return o.done
}

// Resolved reports whether the Op has resolved.
func (o *Op) Resolved() bool {
	return o.reason != Pending
}

// Reason returns why the Op resolved, or Pending.
func (o *Op) Reason() Reason {
	return o.reason
}

// OnResolve registers fn to run when the Op resolves. If it already has,
// fn runs immediately.
func (o *Op) OnResolve(fn func(Reason)) {
	if o.reason != Pending {
		fn(o.reason)
		return
	}
	o.listeners = append(o.listeners, fn)
}

// Wait blocks until the Op resolves or ctx is done.
func (o *Op) Wait(ctx context.Context) error {
	select {
	case <-o.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (o *Op) resolve(reason Reason) {
	if o.reason != Pending {
		return
	}
	o.reason = reason
	close(o.done)
	listeners := o.listeners
	o.listeners = nil
	for _, fn := range listeners {
		fn(reason)
	}
}
