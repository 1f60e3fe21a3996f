package pricing

import (
	"math"
	"testing"

	"deliverysim/internal/modules/driver"
	"deliverysim/internal/modules/location"
	"deliverysim/internal/modules/order"
	"deliverysim/internal/types"
)

func TestCostPenalizesPickupAfterPickedUp(t *testing.T) {
	m := location.NewMap(20)
	c := NewCoster(m, TimeMinimizing)
	d := driver.New("d1", types.Point{}, 1, 5, 0)
	o := &order.Order{Status: order.StatusPickedUp}

	cost := c.Cost(d, types.Point{X: 5, Y: 5}, true, o, 1)
	if !math.IsInf(cost, 1) {
		t.Fatalf("expected +Inf penalty for a pickup segment on an already-picked-up order, got %v", cost)
	}
}

func TestCostPenalizesDeliveryBeforePickup(t *testing.T) {
	m := location.NewMap(20)
	c := NewCoster(m, TimeMinimizing)
	d := driver.New("d1", types.Point{}, 1, 5, 0)
	o := &order.Order{Status: order.StatusReady}

	cost := c.Cost(d, types.Point{X: 5, Y: 5}, false, o, 1)
	if !math.IsInf(cost, 1) {
		t.Fatalf("expected +Inf penalty for a delivery segment before pickup, got %v", cost)
	}
}

func TestCostUsesTailOfCurrentRoute(t *testing.T) {
	m := location.NewMap(20)
	c := NewCoster(m, DistanceMinimizing)
	d := driver.New("d1", types.Point{X: 0, Y: 0}, 1, 5, 0)
	d.CurrentRoute = &driver.Route{Segments: []driver.RouteSegment{
		{Type: driver.SegmentDelivery, Coordinate: types.Point{X: 10, Y: 0}},
	}}
	o := &order.Order{Status: order.StatusPreparing}

	cost := c.Cost(d, types.Point{X: 10, Y: 3}, true, o, 1)
	if cost != 3 {
		t.Fatalf("expected distance-only cost of 3 from the route tail, got %v", cost)
	}
}
