// README: Order state machine and service tests.
package order

import (
	"context"
	"testing"

	"deliverysim/internal/eventlog"
	"deliverysim/internal/types"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusCreated, StatusPlaced, true},
		{StatusPlaced, StatusEstablishmentAccepted, true},
		{StatusEstablishmentAccepted, StatusPreparing, true},
		{StatusPreparing, StatusReady, true},
		{StatusReady, StatusDriverAccepted, true},
		{StatusDriverAccepted, StatusPickingUp, true},
		{StatusPickingUp, StatusPickedUp, true},
		{StatusPickedUp, StatusDelivering, true},
		{StatusDelivering, StatusReceived, true},
		{StatusReceived, StatusDelivered, true},
		// no backward transitions
		{StatusReady, StatusPlaced, false},
		{StatusDelivered, StatusCreated, false},
		// no skipping states
		{StatusPlaced, StatusReady, false},
		{StatusCreated, StatusDelivered, false},
		// terminal state has no outgoing transitions
		{StatusDelivered, StatusDelivered, false},
	}
	for _, tc := range cases {
		got := CanTransition(tc.from, tc.to)
		if got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestCompositeStatus(t *testing.T) {
	o := &Order{Status: StatusPreparing}
	c := o.Composite()
	if c.PrepDone || c.DriverAssigned {
		t.Fatalf("preparing order should have neither composite flag set, got %+v", c)
	}

	o.Status = StatusReady
	c = o.Composite()
	if !c.PrepDone || c.DriverAssigned {
		t.Fatalf("ready order should have PrepDone only, got %+v", c)
	}

	o.Status = StatusDriverAccepted
	c = o.Composite()
	if !c.PrepDone || !c.DriverAssigned {
		t.Fatalf("driver-accepted order should have both flags, got %+v", c)
	}
}

func newTestService() *Service {
	return NewService(NewStore(), eventlog.New())
}

func placeOrder(t *testing.T, svc *Service, id types.ID) {
	t.Helper()
	err := svc.Place(context.Background(), PlaceCommand{
		ID:               id,
		CustomerRef:      "cust-1",
		EstablishmentRef: "est-1",
		Now:              0,
		Items:            []Item{{Name: "burger", Capacity: 1}},
		RequiredCapacity: 1,
	})
	if err != nil {
		t.Fatalf("place: %v", err)
	}
}

func TestHappyPathFiresEvents(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	id := types.ID("order-1")

	placeOrder(t, svc, id)
	assertStatus(t, svc, id, StatusPlaced)

	if err := svc.EstablishmentAccept(ctx, EstablishmentAcceptCommand{OrderID: id, Now: 1, EstimatedPreparationDuration: 10}); err != nil {
		t.Fatalf("establishment accept: %v", err)
	}
	assertStatus(t, svc, id, StatusEstablishmentAccepted)

	if err := svc.PreparationStarted(ctx, PreparationStartedCommand{OrderID: id, Now: 2}); err != nil {
		t.Fatalf("preparation started: %v", err)
	}
	assertStatus(t, svc, id, StatusPreparing)

	if err := svc.Ready(ctx, ReadyCommand{OrderID: id, Now: 11}); err != nil {
		t.Fatalf("ready: %v", err)
	}
	assertStatus(t, svc, id, StatusReady)

	if err := svc.DriverAllocated(ctx, DriverAllocatedCommand{OrderID: id, DriverID: "d1", Now: 12}); err != nil {
		t.Fatalf("driver allocated: %v", err)
	}
	assertStatus(t, svc, id, StatusDriverAccepted)

	if err := svc.PickingUp(ctx, PickingUpCommand{OrderID: id, Now: 13}); err != nil {
		t.Fatalf("picking up: %v", err)
	}
	if err := svc.PickedUp(ctx, PickedUpCommand{OrderID: id, DriverID: "d1", Now: 15}); err != nil {
		t.Fatalf("picked up: %v", err)
	}
	assertStatus(t, svc, id, StatusPickedUp)

	if err := svc.Delivering(ctx, DeliveringCommand{OrderID: id, Now: 16}); err != nil {
		t.Fatalf("delivering: %v", err)
	}
	if err := svc.ArrivedDelivery(ctx, ArrivedDeliveryCommand{OrderID: id, Now: 20}); err != nil {
		t.Fatalf("arrived delivery: %v", err)
	}
	if err := svc.Receive(ctx, ReceiveCommand{OrderID: id, Now: 21}); err != nil {
		t.Fatalf("receive: %v", err)
	}
	assertStatus(t, svc, id, StatusDelivered)

	log := svc.log.All()
	if svc.log.CountKind(eventlog.CustomerPlacedOrder) != 1 {
		t.Fatalf("expected exactly one CustomerPlacedOrder event, log=%v", log)
	}
	if svc.log.CountKind(eventlog.DriverDeliveredOrder) != 1 {
		t.Fatalf("expected exactly one DriverDeliveredOrder event, log=%v", log)
	}
}

func TestPickedUpBeforeReadyPanics(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	id := types.ID("order-2")
	placeOrder(t, svc, id)

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic for picked-up-before-ready invariant violation")
		}
	}()
	_ = svc.PickedUp(ctx, PickedUpCommand{OrderID: id, DriverID: "d1", Now: 1})
}

func TestInvalidTransitionReturnsError(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	id := types.ID("order-3")
	placeOrder(t, svc, id)

	if err := svc.Ready(ctx, ReadyCommand{OrderID: id, Now: 1}); err != ErrInvalidState {
		t.Fatalf("expected ErrInvalidState skipping straight to ready, got %v", err)
	}
}

func assertStatus(t *testing.T, svc *Service, id types.ID, want Status) {
	t.Helper()
	o, err := svc.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if o.Status != want {
		t.Fatalf("expected status %s, got %s", want, o.Status)
	}
}
