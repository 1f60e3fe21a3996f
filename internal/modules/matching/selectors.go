// README: Heuristic driver selectors (component 12) — reference baseline
// dispatchers used for evaluation and as a fallback when no RL policy is
// driving the episode. Grounded on the teacher's matching_test.go, which
// exercises a PickRandomDrivers(pool, n) pure function with exactly the
// subset/uniqueness/zero/oversized-n properties this package implements
// (the function itself was referenced by the teacher's test suite but
// never actually defined in the module — reconstructed here from the test
// contract alone).
package matching

import (
	"context"
	"math"

	"deliverysim/internal/modules/driver"
	"deliverysim/internal/modules/location"
	"deliverysim/internal/modules/order"
	"deliverysim/internal/modules/pricing"
	"deliverysim/internal/simrand"
	"deliverysim/internal/types"
)

// PickRandomDrivers returns n distinct ids drawn uniformly from pool
// without replacement. n is clamped to len(pool); a nil or empty pool
// returns nil.
func PickRandomDrivers(pool []types.ID, n int, rng *simrand.Source) []types.ID {
	if len(pool) == 0 || n <= 0 {
		return nil
	}
	if n > len(pool) {
		n = len(pool)
	}
	shuffled := make([]types.ID, len(pool))
	copy(shuffled, pool)
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	return shuffled[:n]
}

// RandomSelector picks one uniformly at random from the available drivers.
func RandomSelector(available []types.ID, rng *simrand.Source) (types.ID, bool) {
	picked := PickRandomDrivers(available, 1, rng)
	if len(picked) == 0 {
		return "", false
	}
	return picked[0], true
}

// FirstSelector always returns the first available driver (by the order
// the caller lists them in — typically driver id ascending), the simplest
// reference baseline named in §2 component 12.
func FirstSelector(available []types.ID) (types.ID, bool) {
	if len(available) == 0 {
		return "", false
	}
	return available[0], true
}

// NearestSelector returns the driver whose current position is closest to
// target. If store is non-nil it queries the Redis GEO index first and
// returns its nearest hit directly (store.NearestTo already orders results
// ascending by distance); otherwise, or if the GEO query errors or turns
// up nothing, it falls back to an in-memory linear scan over positions —
// either path satisfies §4.12, store is an optional acceleration, not a
// behavioural change.
func NearestSelector(ctx context.Context, store *Store, m *location.Map, positions map[types.ID]types.Point, target types.Point) (types.ID, bool) {
	if store != nil {
		if ids, err := store.NearestTo(ctx, target, float64(m.MaxDistance())); err == nil && len(ids) > 0 {
			return ids[0], true
		}
	}

	var best types.ID
	bestDist := math.MaxInt64
	found := false
	for id, pos := range positions {
		d := m.Distance(pos, target)
		if !found || d < bestDist {
			best, bestDist, found = id, d, true
		}
	}
	return best, found
}

// LowestCostSelector picks the driver with the lowest §4.7 dispatch cost
// for the given candidate segment.
func LowestCostSelector(coster *pricing.Coster, drivers map[types.ID]*driver.Driver, candidateCoord types.Point, candidateIsPickup bool, o *order.Order, movementRate float64) (types.ID, bool) {
	var best types.ID
	bestCost := math.Inf(1)
	found := false
	for id, d := range drivers {
		cost := coster.Cost(d, candidateCoord, candidateIsPickup, o, movementRate)
		if cost < bestCost {
			best, bestCost, found = id, cost, true
		}
	}
	if math.IsInf(bestCost, 1) {
		return "", false
	}
	return best, found
}
