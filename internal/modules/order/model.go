// README: Order aggregate, status enum, and the transition table (component
// 6). Grounded on the teacher's order/model.go AllowedTransitions pattern —
// a map of legal successor statuses plus a CanTransition lookup — but the
// flow itself comes from §3/§4.3: a strictly forward food-delivery lifecycle
// instead of a ride-hailing one, with a handful of in-place retry loops
// removed (no re-match / re-open concept in this domain).
package order

import (
	"deliverysim/internal/types"
)

// Status is a strictly ordered enumeration; transitions only move forward
// (§3 OrderStatus). The numeric ordering backs composite-status derivation
// and the monotonicity invariant, so iota order must track the table in §3.
type Status int

const (
	StatusCreated Status = iota
	StatusPlaced
	StatusEstablishmentAccepted
	StatusPreparing
	StatusReady
	StatusDriverAccepted
	StatusPickingUp
	StatusPickedUp
	StatusDelivering
	StatusReceived
	StatusDelivered
)

func (s Status) String() string {
	switch s {
	case StatusCreated:
		return "CREATED"
	case StatusPlaced:
		return "PLACED"
	case StatusEstablishmentAccepted:
		return "ESTABLISHMENT_ACCEPTED"
	case StatusPreparing:
		return "PREPARING"
	case StatusReady:
		return "READY"
	case StatusDriverAccepted:
		return "DRIVER_ACCEPTED"
	case StatusPickingUp:
		return "PICKING_UP"
	case StatusPickedUp:
		return "PICKED_UP"
	case StatusDelivering:
		return "DELIVERING"
	case StatusReceived:
		return "RECEIVED"
	case StatusDelivered:
		return "DELIVERED"
	default:
		return "UNKNOWN"
	}
}

// AllowedTransitions is the order state flow of §3 as code: every status
// maps only to its immediate successor. Unlike the teacher's ride-hailing
// table, there are no self-loops or backward edges — §3 is explicit that
// status only moves forward.
var AllowedTransitions = map[Status][]Status{
	StatusCreated:               {StatusPlaced},
	StatusPlaced:                {StatusEstablishmentAccepted},
	StatusEstablishmentAccepted: {StatusPreparing},
	StatusPreparing:             {StatusReady},
	StatusReady:                 {StatusDriverAccepted},
	StatusDriverAccepted:        {StatusPickingUp},
	StatusPickingUp:             {StatusPickedUp},
	StatusPickedUp:              {StatusDelivering},
	StatusDelivering:            {StatusReceived},
	StatusReceived:              {StatusDelivered},
}

var allowedTransitionSet = buildTransitionSet(AllowedTransitions)

func buildTransitionSet(transitions map[Status][]Status) map[Status]map[Status]struct{} {
	set := make(map[Status]map[Status]struct{}, len(transitions))
	for from, tos := range transitions {
		next := make(map[Status]struct{}, len(tos))
		for _, to := range tos {
			next[to] = struct{}{}
		}
		set[from] = next
	}
	return set
}

// CanTransition reports whether moving from to is a legal single step.
func CanTransition(from, to Status) bool {
	next, ok := allowedTransitionSet[from]
	if !ok {
		return false
	}
	_, ok = next[to]
	return ok
}

// Item is a catalog entry attached to an order (§3 Order.items).
type Item struct {
	Name     string
	Capacity types.Capacity
}

// Timing holds every per-transition timestamp/estimate recorded as the
// order progresses (§4.3: "every transition records both a wall-clock stamp
// and an estimated duration for the next phase").
type Timing struct {
	RequestTime                  int64
	EstablishmentAcceptedAt      int64
	EstimatedPreparationDuration int64
	EstimatedReadyTime           int64
	PreparationStartedAt         int64
	TimeOrderBecameReady         int64
	DriverAllocatedAt            int64
	EstimatedPickupApproach      int64
	EstimatedPickupTravel        int64
	EstimatedDeliveryApproach    int64
	EstimatedDeliveryTravel      int64
	EstimatedCustomerReceiveGap  int64
	PickedUpAt                   int64
	DeliveringStartedAt          int64
	ArrivedDeliveryAt            int64
	DeliveredAt                  int64
}

// Order is the aggregate described in §3: created by a generator,
// referenced by exactly one customer and establishment, at most one driver
// at a time, destroyed only at simulation end (here: dropped from the
// arena at episode Close, never mid-episode).
type Order struct {
	ID               types.ID
	CustomerRef      types.ID
	EstablishmentRef types.ID
	RequestTime      int64
	Items            []Item
	RequiredCapacity types.Capacity

	Status             Status
	PickupSegmentID    types.ID
	DeliverySegmentID  types.ID
	AssignedDriverRef  types.ID
	Timing             Timing
}

// CompositeStatus expresses the concurrency-overlap labels of §3/§4.3:
// these are not extra graph nodes, just derived booleans computed on
// demand from the current Status.
type CompositeStatus struct {
	PrepDone      bool
	DriverAssigned bool
}

// Composite derives the (prep_done, driver_assigned) pair the cost
// function in §4.7 reads to decide whether a pickup candidate is
// penalised.
func (o *Order) Composite() CompositeStatus {
	return CompositeStatus{
		PrepDone:       o.Status >= StatusReady,
		DriverAssigned: o.Status >= StatusDriverAccepted,
	}
}
