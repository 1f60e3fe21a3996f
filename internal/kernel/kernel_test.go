package kernel

import (
	"testing"
)

// TestStepOrdersByTimestamp verifies the core scheduling contract: timers
// fire in increasing time order, and timers sharing a timestamp fire in
// insertion (FIFO) order, never skipped (§4.1, §5).
func TestStepOrdersByTimestamp(t *testing.T) {
	k := New()
	var order []string

	k.Spawn(func(p *Proc) {
		p.Timeout(5)
		order = append(order, "a@5")
	})
	k.Spawn(func(p *Proc) {
		p.Timeout(1)
		order = append(order, "b@1")
	})
	k.Spawn(func(p *Proc) {
		p.Timeout(1)
		order = append(order, "c@1-second")
	})

	k.Run(100)

	want := []string{"b@1", "c@1-second", "a@5"}
	if len(order) != len(want) {
		t.Fatalf("got %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("got %v, want %v", order, want)
		}
	}
}

// TestZeroDelayChainFiresWithinSameStep verifies that a process scheduling a
// zero-delay follow-up timeout during a Step is drained in that same Step,
// not deferred to the next one (§4.1: "never skips events with equal
// timestamps without firing them all").
func TestZeroDelayChainFiresWithinSameStep(t *testing.T) {
	k := New()
	var fired []int64

	k.Spawn(func(p *Proc) {
		p.Timeout(3)
		fired = append(fired, k.Now())
		p.Timeout(0)
		fired = append(fired, k.Now())
		p.Timeout(0)
		fired = append(fired, k.Now())
	})

	steps := 0
	for k.Step() {
		steps++
		if steps > 10 {
			t.Fatal("too many steps; zero-delay chain should drain within one Step")
		}
	}

	if len(fired) != 3 || fired[0] != 3 || fired[1] != 3 || fired[2] != 3 {
		t.Fatalf("expected three resumptions all at t=3, got %v", fired)
	}
	// One Step starts the spawned process at t=0; the whole zero-delay
	// chain at t=3 must then drain within a single further Step call.
	if steps != 2 {
		t.Fatalf("expected one Step to start the process and one to drain the t=3 chain, took %d", steps)
	}
}

// TestWaitAndNotify verifies that a process parked on Wait resumes at the
// instant Notify is called, matching the driver-parked-for-ready-order
// suspension point in §5.
func TestWaitAndNotify(t *testing.T) {
	k := New()
	resumedAt := int64(-1)

	k.Spawn(func(p *Proc) {
		p.Wait("order-1-ready")
		resumedAt = k.Now()
	})

	k.Spawn(func(p *Proc) {
		p.Timeout(7)
		k.Notify("order-1-ready")
	})

	k.Run(100)

	if resumedAt != 7 {
		t.Fatalf("expected waiter resumed at t=7, got %d", resumedAt)
	}
}

// TestCoreEventQueueIsFIFO exercises the push/pop/has contract used by the
// agent adapter's advance-until-event loop.
func TestCoreEventQueueIsFIFO(t *testing.T) {
	k := New()
	if k.HasCoreEvent() {
		t.Fatal("expected no core events initially")
	}

	k.PushCoreEvent(CoreEvent{OrderID: "order-1"})
	k.PushCoreEvent(CoreEvent{OrderID: "order-2"})

	e, ok := k.PopCoreEvent()
	if !ok || e.OrderID != "order-1" {
		t.Fatalf("expected order-1 first, got %+v ok=%v", e, ok)
	}
	e, ok = k.PopCoreEvent()
	if !ok || e.OrderID != "order-2" {
		t.Fatalf("expected order-2 second, got %+v ok=%v", e, ok)
	}
	if _, ok := k.PopCoreEvent(); ok {
		t.Fatal("expected queue to be empty")
	}
}

// TestRunStopsAtUntil verifies Run advances only up to the requested bound
// even when timers remain pending beyond it.
func TestRunStopsAtUntil(t *testing.T) {
	k := New()
	k.Spawn(func(p *Proc) {
		p.Timeout(50)
	})

	k.Run(10)
	if k.Now() != 0 {
		t.Fatalf("expected clock to stay at 0 before the timer fires, got %d", k.Now())
	}
	if !k.Pending() {
		t.Fatal("expected the t=50 timer to remain pending")
	}

	k.Run(100)
	if k.Now() != 50 {
		t.Fatalf("expected clock to reach 50, got %d", k.Now())
	}
}
