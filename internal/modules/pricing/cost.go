// README: Cost function for the heuristic dispatcher (component 12, §4.7).
// Grounded on the teacher's pricing.Service.Estimate shape — a single pure
// function taking a request struct and returning a value — but the
// computation itself is a dispatch cost, not a fare: no money changes
// hands in this domain (§1 Non-goals has no pricing concept to keep).
package pricing

import (
	"math"

	"deliverysim/internal/modules/driver"
	"deliverysim/internal/modules/location"
	"deliverysim/internal/modules/order"
	"deliverysim/internal/types"
)

// Weights holds the linear combination coefficients of §4.7.
type Weights struct {
	Delay    float64
	Distance float64
}

// TimeMinimizing and DistanceMinimizing are the two canonical
// objective-based variants named in §4.7.
var (
	TimeMinimizing     = Weights{Delay: 1, Distance: 0}
	DistanceMinimizing = Weights{Delay: 0, Distance: 1}
)

// Coster evaluates candidate segments for a driver against a Map.
type Coster struct {
	m       *location.Map
	weights Weights
}

func NewCoster(m *location.Map, w Weights) *Coster {
	return &Coster{m: m, weights: w}
}

// Cost implements §4.7: cost = w_delay*delay + w_distance*distance +
// penalty(segment). penalty is +Inf unless (a) segment is a pickup and its
// order has not yet been picked up, or (b) segment is a delivery and its
// order has already been picked up — enforcing pickup-before-delivery
// without explicit ordering code.
func (c *Coster) Cost(d *driver.Driver, candidateCoord types.Point, candidateIsPickup bool, o *order.Order, movementRate float64) float64 {
	penalty := c.penalty(candidateIsPickup, o)
	if math.IsInf(penalty, 1) {
		return penalty
	}

	from := c.tailPosition(d)
	delay := float64(c.m.EstimatedTime(from, candidateCoord, movementRate))
	distance := float64(c.m.Distance(from, candidateCoord))
	return c.weights.Delay*delay + c.weights.Distance*distance + penalty
}

func (c *Coster) penalty(isPickup bool, o *order.Order) float64 {
	if isPickup {
		if o.Status < order.StatusPickedUp {
			return 0
		}
		return math.Inf(1)
	}
	if o.Status >= order.StatusPickedUp {
		return 0
	}
	return math.Inf(1)
}

// tailPosition returns the coordinate of the tail of the driver's current
// route if it has one, else the driver's present position (§4.7: "compare
// travelling from driver's current position vs. the tail of its current
// route").
func (c *Coster) tailPosition(d *driver.Driver) types.Point {
	if d.CurrentRoute != nil && len(d.CurrentRoute.Segments) > 0 {
		last := d.CurrentRoute.Segments[len(d.CurrentRoute.Segments)-1]
		return last.Coordinate
	}
	return d.Position
}
