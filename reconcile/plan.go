package reconcile

import (
	"context"
	"sort"

	"github.com/gogpu/ggfx/anim"
)

// Plan is the work needed to move the active set to a Desired mapping.
// Every list is sorted.
type Plan struct {
	Create []string
	Update []string
	Remove []string
}

// Empty reports whether the plan changes nothing.
func (p Plan) Empty() bool {
	return len(p.Create) == 0 && len(p.Update) == 0 && len(p.Remove) == 0
}

func (p *Plan) sort() {
	sort.Strings(p.Create)
	sort.Strings(p.Update)
	sort.Strings(p.Remove)
}

// Pass is the outcome of one Apply.
type Pass struct {
	Plan Plan

	Created  int
	Updated  int
	Replaced int
	Removed  int
	Skipped  int

	// Errors holds one error per skipped id.
	Errors map[string]error

	group *anim.Group
}

// Done returns a channel closed once every operation the pass started
// has resolved.
func (p *Pass) Done() <-chan struct{} {
	return p.group.Done()
}

// Resolved reports whether every operation of the pass resolved.
func (p *Pass) Resolved() bool {
	return p.group.Resolved()
}

// Ops returns the number of operations the pass started.
func (p *Pass) Ops() int {
	return p.group.Len()
}

// Wait blocks until the pass resolves or ctx is done. Resolution needs
// Step to be called, so Wait is only useful when the frame tick runs on
// another goroutine.
func (p *Pass) Wait(ctx context.Context) error {
	return p.group.Wait(ctx)
}

func (p *Pass) skip(id string, err error) {
	if p.Errors == nil {
		p.Errors = make(map[string]error)
	}
	p.Errors[id] = err
	p.Skipped++
}
