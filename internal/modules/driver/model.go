// README: Driver, Route, and RouteSegment entities (component 5/8, §3).
// Grounded on the original_source's capacity_driver.py/route.py shapes
// (orders_list, current_route, route_requests, capacity-as-sum-of-segments)
// translated into plain Go structs, and on the teacher's model-file style
// (small value objects, no behaviour beyond simple helpers).
package driver

import (
	"deliverysim/internal/modules/order"
	"deliverysim/internal/types"
)

// Status mirrors §3's Driver status enum.
type Status int

const (
	StatusAvailable Status = iota
	StatusProcessingPreviousOrders
	StatusPickingUp
	StatusPickingUpWaiting
	StatusDelivering
	StatusDeliveringWaiting
)

func (s Status) String() string {
	switch s {
	case StatusAvailable:
		return "AVAILABLE"
	case StatusProcessingPreviousOrders:
		return "PROCESSING_PREVIOUS_ORDERS"
	case StatusPickingUp:
		return "PICKING_UP"
	case StatusPickingUpWaiting:
		return "PICKING_UP_WAITING"
	case StatusDelivering:
		return "DELIVERING"
	case StatusDeliveringWaiting:
		return "DELIVERING_WAITING"
	default:
		return "UNKNOWN"
	}
}

// SegmentType distinguishes a pickup stop from a delivery stop (§3 Route).
type SegmentType int

const (
	SegmentPickup SegmentType = iota
	SegmentDelivery
)

func (t SegmentType) String() string {
	if t == SegmentPickup {
		return "PICKUP"
	}
	return "DELIVERY"
}

// RouteSegment is one stop in a Route: a type, the order it belongs to, and
// a derived coordinate (establishment for pickup, customer for delivery).
type RouteSegment struct {
	ID          types.ID
	Type        SegmentType
	OrderID     types.ID
	Coordinate  types.Point
	Capacity    types.Capacity
}

// Route is a fresh-ID ordered sequence of segments (§3 Route). Required
// capacity is the sum over remaining (not-yet-executed) segments.
type Route struct {
	ID       types.ID
	Segments []RouteSegment
}

// RemainingCapacity sums the capacity still carried by segments that have
// not yet been executed — pickups add load, deliveries release it, and a
// segment at index >= from is "remaining" (§3 invariant: driver never
// exceeds capacity at any point along its route).
func (r *Route) RemainingCapacity(from int) types.Capacity {
	var total types.Capacity
	for i := from; i < len(r.Segments); i++ {
		s := r.Segments[i]
		if s.Type == SegmentPickup {
			total += s.Capacity
		}
	}
	return total
}

// Window is the per-order tolerance window created at pickup time (§4.6).
type Window struct {
	NormalDeliveryTime int64
	EarliestDelivery   int64
	LatestDelivery     int64
}

// Driver is mutated only by its own sequential processor or by the
// agent-facing acceptance methods called on the scheduling thread (§5).
type Driver struct {
	ID             types.ID
	Position       types.Point
	MovementRate   float64
	Status         Status
	Capacity       types.Capacity
	CurrentLoad    types.Capacity
	CurrentRoute   *Route
	RouteRequests  []*Route
	OrdersList     []types.ID
	Windows        map[types.ID]Window
	CollectedOrder map[types.ID]bool

	// accumulated counters (§3 Driver)
	DistanceTravelled   float64
	IdleTime            int64
	TimeWaitingForOrder int64
	TimeSpentOnDelivery int64
	OrdersDelivered     int

	// constants used by the timing/window model (§4.6)
	TimeBetweenAcceptAndStartPickingUp     int64
	TimeBetweenPickedUpAndStartDelivery    int64
	ToleranceFraction                      float64
}

func New(id types.ID, pos types.Point, rate float64, capacity types.Capacity, tolerance float64) *Driver {
	return &Driver{
		ID:                                  id,
		Position:                            pos,
		MovementRate:                        rate,
		Status:                              StatusAvailable,
		Capacity:                            capacity,
		Windows:                             make(map[types.ID]Window),
		CollectedOrder:                      make(map[types.ID]bool),
		TimeBetweenAcceptAndStartPickingUp:  1,
		TimeBetweenPickedUpAndStartDelivery: 1,
		ToleranceFraction:                   tolerance,
	}
}

// Fits reports whether accepting a route of the given required capacity
// would exceed the driver's capacity alongside its current load.
func (d *Driver) Fits(required types.Capacity) bool {
	return d.CurrentLoad+required <= d.Capacity
}

// IsAlreadyCaught reports whether orderID has already been picked up by
// this driver (§4.6 step 1: "collected = orders already caught").
func (d *Driver) IsAlreadyCaught(orderID types.ID) bool {
	return d.CollectedOrder[orderID]
}

// OrderItem is the minimal order view the driver engine needs; kept
// separate from order.Order so the driver package doesn't reach back into
// order internals beyond what it actually uses.
type OrderItem = order.Order
