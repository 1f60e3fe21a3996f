package establishment

import (
	"context"
	"testing"

	"deliverysim/internal/eventlog"
	"deliverysim/internal/kernel"
	"deliverysim/internal/modules/order"
	"deliverysim/internal/simrand"
	"deliverysim/internal/types"
)

func newOrder(id types.ID) *order.Order {
	return &order.Order{ID: id, Status: order.StatusPlaced}
}

func TestReceiveOrderRequestsPreparesAndReady(t *testing.T) {
	k := kernel.New()
	log := eventlog.New()
	orderStore := order.NewStore()
	orderSvc := order.NewService(orderStore, log)
	rng := simrand.New(7)
	svc := NewService(k, orderSvc, log, rng)

	est := New("est-1", types.Point{X: 0, Y: 0}, Catalog{{Name: "a"}}, 2, 5, 2, 10, 5, 0)

	ctx := context.Background()
	oid := types.ID("order-1")
	if err := orderSvc.Place(ctx, order.PlaceCommand{ID: oid, CustomerRef: "c1", EstablishmentRef: est.ID, Now: 0}); err != nil {
		t.Fatalf("place: %v", err)
	}

	var assigned []types.ID
	k.Spawn(func(p *kernel.Proc) {
		svc.ReceiveOrderRequests(ctx, est, []*order.Order{newOrder(oid)}, func(id types.ID) {
			assigned = append(assigned, id)
		})
	})

	k.Run(1000)

	o, err := orderSvc.Get(ctx, oid)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if o.Status != order.StatusReady {
		t.Fatalf("expected order to reach READY, got %s", o.Status)
	}
	if len(assigned) != 1 || assigned[0] != oid {
		t.Fatalf("expected order to be reported assignable exactly once, got %v", assigned)
	}
}

func TestPercentageAllocationDriverGatesEarlyAssignment(t *testing.T) {
	k := kernel.New()
	log := eventlog.New()
	orderStore := order.NewStore()
	orderSvc := order.NewService(orderStore, log)
	rng := simrand.New(1)
	svc := NewService(k, orderSvc, log, rng)

	// p=1 means every order should be reported assignable immediately on
	// acceptance, before preparation completes.
	est := New("est-2", types.Point{X: 0, Y: 0}, Catalog{{Name: "a"}}, 1, 5, 5, 5, 5, 1)

	ctx := context.Background()
	oid := types.ID("order-2")
	if err := orderSvc.Place(ctx, order.PlaceCommand{ID: oid, CustomerRef: "c1", EstablishmentRef: est.ID, Now: 0}); err != nil {
		t.Fatalf("place: %v", err)
	}

	assignedAt := int64(-1)
	k.Spawn(func(p *kernel.Proc) {
		svc.ReceiveOrderRequests(ctx, est, []*order.Order{newOrder(oid)}, func(id types.ID) {
			assignedAt = k.Now()
		})
	})
	k.Run(1000)

	if assignedAt != 0 {
		t.Fatalf("expected immediate assignment at t=0 with p=1, got t=%d", assignedAt)
	}
}

func TestProductionCapacitySerializesPrep(t *testing.T) {
	k := kernel.New()
	log := eventlog.New()
	orderStore := order.NewStore()
	orderSvc := order.NewService(orderStore, log)
	rng := simrand.New(3)
	svc := NewService(k, orderSvc, log, rng)

	est := New("est-3", types.Point{X: 0, Y: 0}, Catalog{{Name: "a"}}, 1, 5, 10, 10, 10, 0)

	ctx := context.Background()
	ids := []types.ID{"o1", "o2"}
	var reqOrders []*order.Order
	for _, id := range ids {
		if err := orderSvc.Place(ctx, order.PlaceCommand{ID: id, CustomerRef: "c1", EstablishmentRef: est.ID, Now: 0}); err != nil {
			t.Fatalf("place: %v", err)
		}
		reqOrders = append(reqOrders, newOrder(id))
	}

	k.Spawn(func(p *kernel.Proc) {
		svc.ReceiveOrderRequests(ctx, est, reqOrders, nil)
	})
	k.Run(1000)

	for _, id := range ids {
		o, err := orderSvc.Get(ctx, id)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if o.Status != order.StatusReady {
			t.Fatalf("order %s expected READY, got %s", id, o.Status)
		}
	}

	// With one slot and a fixed 10-tick prep, o2 cannot start until o1
	// frees the slot at t=10, so it becomes ready at t=20, not t=10.
	first, _ := orderSvc.Get(ctx, "o1")
	second, _ := orderSvc.Get(ctx, "o2")
	if first.Timing.TimeOrderBecameReady != 10 || second.Timing.TimeOrderBecameReady != 20 {
		t.Fatalf("expected ready times 10 and 20, got %d and %d", first.Timing.TimeOrderBecameReady, second.Timing.TimeOrderBecameReady)
	}
}
