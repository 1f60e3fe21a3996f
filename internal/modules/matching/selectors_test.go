package matching

import (
	"context"
	"testing"

	"deliverysim/internal/modules/driver"
	"deliverysim/internal/modules/location"
	"deliverysim/internal/modules/order"
	"deliverysim/internal/modules/pricing"
	"deliverysim/internal/simrand"
	"deliverysim/internal/types"
)

func idSet(ids []types.ID) map[types.ID]bool {
	s := make(map[types.ID]bool, len(ids))
	for _, id := range ids {
		s[id] = true
	}
	return s
}

func TestPickRandomDriversReturnsDistinctSubset(t *testing.T) {
	rng := simrand.New(1)
	pool := []types.ID{"a", "b", "c", "d", "e"}

	picked := PickRandomDrivers(pool, 3, rng)
	if len(picked) != 3 {
		t.Fatalf("expected 3 drivers, got %d", len(picked))
	}
	set := idSet(picked)
	if len(set) != 3 {
		t.Fatalf("expected 3 distinct drivers, got %d", len(set))
	}
	for id := range set {
		if !idSet(pool)[id] {
			t.Fatalf("picked driver %s not in pool", id)
		}
	}
}

func TestPickRandomDriversClampsToPoolSize(t *testing.T) {
	rng := simrand.New(1)
	pool := []types.ID{"a", "b"}

	picked := PickRandomDrivers(pool, 10, rng)
	if len(picked) != 2 {
		t.Fatalf("expected pool size 2, got %d", len(picked))
	}
}

func TestPickRandomDriversZeroAndEmpty(t *testing.T) {
	rng := simrand.New(1)

	if got := PickRandomDrivers([]types.ID{"a", "b"}, 0, rng); got != nil {
		t.Fatalf("expected nil for n=0, got %v", got)
	}
	if got := PickRandomDrivers(nil, 3, rng); got != nil {
		t.Fatalf("expected nil for empty pool, got %v", got)
	}
}

func TestFirstSelector(t *testing.T) {
	if _, ok := FirstSelector(nil); ok {
		t.Fatal("expected no selection from an empty pool")
	}
	got, ok := FirstSelector([]types.ID{"x", "y"})
	if !ok || got != "x" {
		t.Fatalf("expected x, got %v (ok=%v)", got, ok)
	}
}

func TestNearestSelectorPicksClosest(t *testing.T) {
	m := location.NewMap(50)
	positions := map[types.ID]types.Point{
		"far":   {X: 40, Y: 40},
		"near":  {X: 2, Y: 1},
		"mid":   {X: 10, Y: 10},
	}
	got, ok := NearestSelector(context.Background(), nil, m, positions, types.Point{X: 0, Y: 0})
	if !ok || got != "near" {
		t.Fatalf("expected near, got %v (ok=%v)", got, ok)
	}
}

func TestNearestSelectorEmptyPool(t *testing.T) {
	m := location.NewMap(50)
	if _, ok := NearestSelector(context.Background(), nil, m, map[types.ID]types.Point{}, types.Point{}); ok {
		t.Fatal("expected no selection from an empty position set")
	}
}

func TestLowestCostSelectorPicksClosestFeasibleDriver(t *testing.T) {
	m := location.NewMap(50)
	coster := pricing.NewCoster(m, pricing.DistanceMinimizing)

	drivers := map[types.ID]*driver.Driver{
		"d1": driver.New("d1", types.Point{X: 0, Y: 0}, 1, 5, 0),
		"d2": driver.New("d2", types.Point{X: 20, Y: 20}, 1, 5, 0),
	}
	o := &order.Order{Status: order.StatusPreparing}

	got, ok := LowestCostSelector(coster, drivers, types.Point{X: 1, Y: 1}, true, o, 1)
	if !ok || got != "d1" {
		t.Fatalf("expected d1 (closest feasible pickup), got %v (ok=%v)", got, ok)
	}
}

func TestLowestCostSelectorAllInfeasibleReturnsFalse(t *testing.T) {
	m := location.NewMap(50)
	coster := pricing.NewCoster(m, pricing.DistanceMinimizing)

	drivers := map[types.ID]*driver.Driver{
		"d1": driver.New("d1", types.Point{X: 0, Y: 0}, 1, 5, 0),
	}
	o := &order.Order{Status: order.StatusPickedUp}

	if _, ok := LowestCostSelector(coster, drivers, types.Point{X: 1, Y: 1}, true, o, 1); ok {
		t.Fatal("expected no feasible driver for a pickup segment on an already-picked-up order")
	}
}
