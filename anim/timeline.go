package anim

import (
	"context"
	"time"
)

// Timeline owns running Ops and advances them together.
type Timeline struct {
	ops []*Op
}

// Add schedules op. Resolved Ops are dropped on the next Advance.
func (t *Timeline) Add(op *Op) *Op {
	if op != nil && !op.Resolved() {
		t.ops = append(t.ops, op)
	}
	return op
}

// Advance advances every pending Op by dt. Ops added by resolve callbacks
// start advancing on the next call.
func (t *Timeline) Advance(dt time.Duration) {
	ops := t.ops
	t.ops = nil
	live := ops[:0]
	for _, op := range ops {
		if !op.Advance(dt) {
			live = append(live, op)
		}
	}
	t.ops = append(live, t.ops...)
}

// CancelAll cancels every pending Op.
func (t *Timeline) CancelAll() {
	t.CancelAllWith((*Op).Cancel)
}

// CancelAllWith resolves every pending Op through resolve, which is
// usually (*Op).Cancel or (*Op).TargetGone. Ops added while resolving are
// resolved too.
func (t *Timeline) CancelAllWith(resolve func(*Op)) {
	for len(t.ops) > 0 {
		ops := t.ops
		t.ops = nil
		for _, op := range ops {
			resolve(op)
		}
	}
}

// Len returns the number of pending Ops.
func (t *Timeline) Len() int {
	n := 0
	for _, op := range t.ops {
		if !op.Resolved() {
			n++
		}
	}
	return n
}

// Group resolves once all of its Ops have resolved.
type Group struct {
	pending int
	total   int
	done    chan struct{}
	reasons map[Reason]int
}

// Join groups ops. A Group of zero Ops is already resolved.
func Join(ops ...*Op) *Group {
	g := &Group{done: make(chan struct{}), reasons: make(map[Reason]int)}
	for _, op := range ops {
		if op == nil {
			continue
		}
		g.total++
		g.pending++
		op.OnResolve(g.settle)
	}
	if g.pending == 0 {
		close(g.done)
	}
	return g
}

func (g *Group) settle(r Reason) {
	g.reasons[r]++
	g.pending--
	if g.pending == 0 {
		close(g.done)
	}
}

// Done returns a channel closed when every Op resolved.
func (g *Group) Done() <-chan struct{} {
	return g.done
}

// Resolved reports whether every Op resolved.
func (g *Group) Resolved() bool {
	return g.pending == 0
}

// Len returns the number of Ops in the group.
func (g *Group) Len() int {
	return g.total
}

// Count returns how many Ops resolved with reason r.
func (g *Group) Count(r Reason) int {
	return g.reasons[r]
}

// Wait blocks until the group resolves or ctx is done.
func (g *Group) Wait(ctx context.Context) error {
	select {
	case <-g.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Race returns an Op that resolves with op's reason when op resolves, or
// with Elapsed after timeout, whichever comes first. The returned Op must
// be advanced (usually by adding it to a Timeline); op is left untouched
// when the timeout wins.
func Race(op *Op, timeout time.Duration) *Op {
	r := NewOp(timeout, nil)
	op.OnResolve(r.resolve)
	return r
}
