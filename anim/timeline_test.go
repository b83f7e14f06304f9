package anim

import (
	"context"
	"testing"
	"time"
)

func TestTimelineAdvance(t *testing.T) {
	var tl Timeline
	short := tl.Add(NewOp(100*time.Millisecond, nil))
	long := tl.Add(NewOp(time.Second, nil))

	tl.Advance(200 * time.Millisecond)
	if !short.Resolved() || long.Resolved() {
		t.Fatalf("after 200ms short=%v long=%v, want true false", short.Resolved(), long.Resolved())
	}
	if got := tl.Len(); got != 1 {
		t.Errorf("Len() = %d, want 1", got)
	}
}

func TestTimelineAddFromCallback(t *testing.T) {
	var tl Timeline
	var second *Op
	first := tl.Add(NewOp(10*time.Millisecond, nil))
	first.OnResolve(func(Reason) {
		second = tl.Add(NewOp(10*time.Millisecond, nil))
	})

	tl.Advance(20 * time.Millisecond)
	if second == nil || second.Resolved() {
		t.Fatal("op added from resolve callback advanced in the same tick")
	}
	tl.Advance(20 * time.Millisecond)
	if !second.Resolved() {
		t.Error("op added from callback never advanced")
	}
}

func TestTimelineCancelAll(t *testing.T) {
	var tl Timeline
	ops := []*Op{
		tl.Add(NewOp(time.Second, nil)),
		tl.Add(NewOp(time.Minute, nil)),
	}
	tl.CancelAll()
	for i, op := range ops {
		if op.Reason() != Canceled {
			t.Errorf("ops[%d].Reason() = %v, want %v", i, op.Reason(), Canceled)
		}
	}
	if tl.Len() != 0 {
		t.Errorf("Len() = %d, want 0", tl.Len())
	}
}

func TestJoin(t *testing.T) {
	a := NewOp(time.Second, nil)
	b := NewOp(2*time.Second, nil)
	g := Join(a, b, nil)

	if g.Len() != 2 {
		t.Errorf("Len() = %d, want 2", g.Len())
	}
	a.Finish()
	if g.Resolved() {
		t.Fatal("group resolved with one op pending")
	}
	b.TargetGone()
	if !g.Resolved() {
		t.Fatal("group not resolved after all ops resolved")
	}
	if g.Count(Completed) != 1 || g.Count(TargetDestroyed) != 1 {
		t.Errorf("Count() = completed %d, destroyed %d, want 1 and 1", g.Count(Completed), g.Count(TargetDestroyed))
	}
	if err := g.Wait(context.Background()); err != nil {
		t.Errorf("Wait() = %v, want nil", err)
	}
}

func TestJoinEmpty(t *testing.T) {
	if !Join().Resolved() {
		t.Error("Join() of nothing not resolved")
	}
}

func TestRace(t *testing.T) {
	t.Run("op wins", func(t *testing.T) {
		fade := NewOp(time.Second, nil)
		r := Race(fade, 20*time.Second)
		fade.Advance(time.Second)
		if r.Reason() != Elapsed || !r.Resolved() {
			t.Errorf("Race reason = %v, want %v", r.Reason(), Elapsed)
		}
	})
	t.Run("timeout wins", func(t *testing.T) {
		fade := NewOp(time.Hour, nil)
		r := Race(fade, 2*time.Second)
		r.Advance(2 * time.Second)
		if !r.Resolved() || fade.Resolved() {
			t.Errorf("race=%v fade=%v, want race resolved and fade pending", r.Resolved(), fade.Resolved())
		}
	})
	t.Run("destroyed target", func(t *testing.T) {
		fade := NewOp(time.Hour, nil)
		r := Race(fade, time.Hour)
		fade.TargetGone()
		if r.Reason() != TargetDestroyed {
			t.Errorf("Race reason = %v, want %v", r.Reason(), TargetDestroyed)
		}
	})
}

func TestTimelineCancelAllWith(t *testing.T) {
	var tl Timeline
	op := tl.Add(NewOp(time.Second, nil))
	tl.CancelAllWith((*Op).TargetGone)
	if op.Reason() != TargetDestroyed {
		t.Errorf("Reason() = %v, want %v", op.Reason(), TargetDestroyed)
	}
}
