// README: Order service — transition methods and invariant enforcement
// (component 6, §4.3). Grounded on the teacher's order/service.go command
// methods (Create/Match/Accept/...), each of which re-checks CanTransition
// before writing and records an Event; the commands themselves are renamed
// to the food-delivery lifecycle and the persistence layer swapped for the
// in-memory Store.
package order

import (
	"context"
	"errors"
	"fmt"

	"deliverysim/internal/eventlog"
	"deliverysim/internal/types"
)

// ErrInvalidState signals an attempted transition the state machine does
// not allow — a configuration/usage bug, not a transient condition.
var ErrInvalidState = errors.New("invalid order state transition")

type Service struct {
	store *Store
	log   *eventlog.Log
}

func NewService(store *Store, log *eventlog.Log) *Service {
	return &Service{store: store, log: log}
}

type PlaceCommand struct {
	ID               types.ID
	CustomerRef      types.ID
	EstablishmentRef types.ID
	Now              int64
	Items            []Item
	RequiredCapacity types.Capacity
}

// Place fires CREATED -> PLACED (§4.3 item 1, "place_order").
func (s *Service) Place(ctx context.Context, cmd PlaceCommand) error {
	o := &Order{
		ID:               cmd.ID,
		CustomerRef:      cmd.CustomerRef,
		EstablishmentRef: cmd.EstablishmentRef,
		RequestTime:      cmd.Now,
		Items:            cmd.Items,
		RequiredCapacity: cmd.RequiredCapacity,
		Status:           StatusPlaced,
	}
	o.Timing.RequestTime = cmd.Now
	if err := s.store.Create(ctx, o); err != nil {
		return err
	}
	s.log.Append(cmd.Now, eventlog.CustomerPlacedOrder, cmd.ID, "", nil)
	return nil
}

type EstablishmentAcceptCommand struct {
	OrderID                      types.ID
	Now                          int64
	EstimatedPreparationDuration int64
}

// EstablishmentAccept fires PLACED -> ESTABLISHMENT_ACCEPTED (§4.3 item 2).
func (s *Service) EstablishmentAccept(ctx context.Context, cmd EstablishmentAcceptCommand) error {
	return s.transition(ctx, cmd.OrderID, StatusPlaced, StatusEstablishmentAccepted, func(o *Order) {
		o.Timing.EstablishmentAcceptedAt = cmd.Now
		o.Timing.EstimatedPreparationDuration = cmd.EstimatedPreparationDuration
		o.Timing.EstimatedReadyTime = cmd.Now + cmd.EstimatedPreparationDuration
	}, eventlog.EstablishmentAcceptedOrder, cmd.Now)
}

type PreparationStartedCommand struct {
	OrderID            types.ID
	Now                int64
	EstimatedReadyTime int64
}

// PreparationStarted fires ESTABLISHMENT_ACCEPTED -> PREPARING (§4.3 item 3).
func (s *Service) PreparationStarted(ctx context.Context, cmd PreparationStartedCommand) error {
	return s.transition(ctx, cmd.OrderID, StatusEstablishmentAccepted, StatusPreparing, func(o *Order) {
		o.Timing.PreparationStartedAt = cmd.Now
		if cmd.EstimatedReadyTime > 0 {
			o.Timing.EstimatedReadyTime = cmd.EstimatedReadyTime
		}
	}, eventlog.EstablishmentPreparing, cmd.Now)
}

type ReadyCommand struct {
	OrderID types.ID
	Now     int64
}

// Ready fires PREPARING -> READY (§4.3 item 4).
func (s *Service) Ready(ctx context.Context, cmd ReadyCommand) error {
	return s.transition(ctx, cmd.OrderID, StatusPreparing, StatusReady, func(o *Order) {
		o.Timing.TimeOrderBecameReady = cmd.Now
	}, eventlog.OrderReady, cmd.Now)
}

type DriverAllocatedCommand struct {
	OrderID                     types.ID
	DriverID                    types.ID
	Now                         int64
	PickupSegmentID             types.ID
	DeliverySegmentID           types.ID
	EstimatedPickupApproach     int64
	EstimatedPickupTravel       int64
	EstimatedDeliveryApproach   int64
	EstimatedDeliveryTravel     int64
	EstimatedCustomerReceiveGap int64
}

// DriverAllocated records the pickup/delivery estimates of §4.3 item 5 and
// moves the order READY -> DRIVER_ACCEPTED in this same call: orders have
// no intermediate "assigned but not accepted" status — that split sits on
// the driver side's receive_route_requests/accept_route pair, §4.5.
func (s *Service) DriverAllocated(ctx context.Context, cmd DriverAllocatedCommand) error {
	from := StatusReady
	return s.transition(ctx, cmd.OrderID, from, StatusDriverAccepted, func(o *Order) {
		o.AssignedDriverRef = cmd.DriverID
		o.PickupSegmentID = cmd.PickupSegmentID
		o.DeliverySegmentID = cmd.DeliverySegmentID
		o.Timing.DriverAllocatedAt = cmd.Now
		o.Timing.EstimatedPickupApproach = cmd.EstimatedPickupApproach
		o.Timing.EstimatedPickupTravel = cmd.EstimatedPickupTravel
		o.Timing.EstimatedDeliveryApproach = cmd.EstimatedDeliveryApproach
		o.Timing.EstimatedDeliveryTravel = cmd.EstimatedDeliveryTravel
		o.Timing.EstimatedCustomerReceiveGap = cmd.EstimatedCustomerReceiveGap
	}, eventlog.DriverAcceptedRoute, cmd.Now)
}

type PickingUpCommand struct {
	OrderID types.ID
	Now     int64
}

// PickingUp fires DRIVER_ACCEPTED -> PICKING_UP, marking the driver as
// travelling to the establishment.
func (s *Service) PickingUp(ctx context.Context, cmd PickingUpCommand) error {
	return s.transition(ctx, cmd.OrderID, StatusDriverAccepted, StatusPickingUp, func(o *Order) {}, "", cmd.Now)
}

type PickedUpCommand struct {
	OrderID  types.ID
	DriverID types.ID
	Now      int64
}

// PickedUp fires PICKING_UP -> PICKED_UP (§4.3 item 6): only legal once the
// order is READY, enforced by the caller (the driver's sequential
// processor parks on Wait until READY before calling this).
func (s *Service) PickedUp(ctx context.Context, cmd PickedUpCommand) error {
	o, err := s.store.Get(ctx, cmd.OrderID)
	if err != nil {
		return err
	}
	if o.Status < StatusReady {
		panic(fmt.Sprintf("invariant violation: order %s picked up before READY (status=%s)", cmd.OrderID, o.Status))
	}
	return s.transition(ctx, cmd.OrderID, StatusPickingUp, StatusPickedUp, func(o *Order) {
		o.Timing.PickedUpAt = cmd.Now
	}, eventlog.DriverPickedUpOrder, cmd.Now)
}

type DeliveringCommand struct {
	OrderID types.ID
	Now     int64
}

// Delivering fires PICKED_UP -> DELIVERING (§4.3 item 7).
func (s *Service) Delivering(ctx context.Context, cmd DeliveringCommand) error {
	return s.transition(ctx, cmd.OrderID, StatusPickedUp, StatusDelivering, func(o *Order) {
		o.Timing.DeliveringStartedAt = cmd.Now
	}, "", cmd.Now)
}

type ArrivedDeliveryCommand struct {
	OrderID types.ID
	Now     int64
}

// ArrivedDelivery records arrival at the customer's coordinate without yet
// moving status past DELIVERING; DELIVERING -> RECEIVED only fires once the
// customer process accepts the handover (Receive).
func (s *Service) ArrivedDelivery(ctx context.Context, cmd ArrivedDeliveryCommand) error {
	o, err := s.store.Get(ctx, cmd.OrderID)
	if err != nil {
		return err
	}
	if o.Status != StatusDelivering {
		return ErrInvalidState
	}
	ok, err := s.store.UpdateStatus(ctx, cmd.OrderID, StatusDelivering, StatusDelivering, func(o *Order) {
		o.Timing.ArrivedDeliveryAt = cmd.Now
	})
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}
	s.log.Append(cmd.Now, eventlog.DriverArrivedDelivery, cmd.OrderID, o.AssignedDriverRef, nil)
	return nil
}

type ReceiveCommand struct {
	OrderID types.ID
	Now     int64
}

// Receive fires DELIVERING -> RECEIVED -> DELIVERED in one customer action
// (§4.3 item 8, "customer.receive_order"): the spec names RECEIVED as a
// one-instant pass-through to DELIVERED, so both moves happen here as two
// back-to-back transitions (each its own store lock acquisition) with no
// kernel yield between them.
func (s *Service) Receive(ctx context.Context, cmd ReceiveCommand) error {
	if err := s.transition(ctx, cmd.OrderID, StatusDelivering, StatusReceived, func(o *Order) {}, "", cmd.Now); err != nil {
		return err
	}
	return s.transition(ctx, cmd.OrderID, StatusReceived, StatusDelivered, func(o *Order) {
		o.Timing.DeliveredAt = cmd.Now
	}, eventlog.DriverDeliveredOrder, cmd.Now)
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Order, error) {
	return s.store.Get(ctx, id)
}

// transition is the shared CAS-and-log path every lifecycle method above
// funnels through: verify the move is legal per the table, apply it
// optimistically, and append an event on success. A false CAS result means
// another caller already moved the order past expectedFrom — reported as
// ErrConflict rather than retried, matching §7's no-retry-logic policy.
func (s *Service) transition(ctx context.Context, id types.ID, from, to Status, mutate func(*Order), kind eventlog.Kind, now int64) error {
	if !CanTransition(from, to) {
		panic(fmt.Sprintf("invariant violation: illegal order transition %s -> %s", from, to))
	}
	o, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if o.Status != from {
		return ErrInvalidState
	}
	ok, err := s.store.UpdateStatus(ctx, id, from, to, mutate)
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}
	if kind != "" {
		driverID := o.AssignedDriverRef
		s.log.Append(now, kind, id, driverID, nil)
	}
	return nil
}
