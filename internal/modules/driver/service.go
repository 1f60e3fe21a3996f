// README: Driver engine (component 8, §4.5). Grounded on the
// original_source's CapacityDriver.receive_route_requests/accept_route
// shape (record tentative estimates without committing capacity, then
// commit on accept) translated to Go, with the sequential processor
// modelled as one kernel.Proc per driver that never runs concurrently with
// itself — segments execute strictly in route order (§5).
package driver

import (
	"context"
	"sync"

	"deliverysim/internal/eventlog"
	"deliverysim/internal/kernel"
	"deliverysim/internal/modules/establishment"
	"deliverysim/internal/modules/location"
	"deliverysim/internal/modules/order"
	"deliverysim/internal/types"
)

// OrderService is the subset of order.Service the driver engine drives
// orders through.
type OrderService interface {
	Get(ctx context.Context, id types.ID) (*order.Order, error)
	DriverAllocated(ctx context.Context, cmd order.DriverAllocatedCommand) error
	PickingUp(ctx context.Context, cmd order.PickingUpCommand) error
	PickedUp(ctx context.Context, cmd order.PickedUpCommand) error
	Delivering(ctx context.Context, cmd order.DeliveringCommand) error
	ArrivedDelivery(ctx context.Context, cmd order.ArrivedDeliveryCommand) error
	Receive(ctx context.Context, cmd order.ReceiveCommand) error
}

// OrderLookup resolves establishment/customer coordinates for a route
// segment; kept as a narrow interface so the driver engine doesn't import
// the generator/entity packages directly.
type OrderLookup interface {
	EstablishmentPosition(orderID types.ID) types.Point
	CustomerPosition(orderID types.ID) types.Point
	RequiredCapacity(orderID types.ID) types.Capacity
	EstimatedReadyTime(orderID types.ID) int64
}

type Service struct {
	k      *kernel.Kernel
	orders OrderService
	lookup OrderLookup
	m      *location.Map
	log    *eventlog.Log

	mu      sync.Mutex
	drivers map[types.ID]*Driver
	cursor  map[types.ID]int // index of the next segment to execute per driver

	recordReorders bool
	reorderMu      sync.Mutex
	reorderRecords []ReorderRecord
}

// Route IDs are minted by the caller (the agent adapter, component 11),
// which already owns a types.Counter for routes; the driver engine itself
// has no need to mint identifiers.

func NewService(k *kernel.Kernel, orders OrderService, lookup OrderLookup, m *location.Map, log *eventlog.Log) *Service {
	return &Service{
		k:       k,
		orders:  orders,
		lookup:  lookup,
		m:       m,
		log:     log,
		drivers: make(map[types.ID]*Driver),
		cursor:  make(map[types.ID]int),
	}
}

func (s *Service) Register(d *Driver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drivers[d.ID] = d
}

func (s *Service) Get(id types.ID) *Driver {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drivers[id]
}

func (s *Service) All() []*Driver {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Driver, 0, len(s.drivers))
	for _, d := range s.drivers {
		out = append(out, d)
	}
	return out
}

// RemainingRouteEstimate sums estimated travel time and distance over the
// segments a driver has not yet executed, starting from its current
// position (§4.8 observation field "estimated remaining busy time" and the
// reward objectives built on driver.estimate_total_busy_time /
// total_remaining_distance). This is a movement-only estimate: it does not
// model prep-readiness waits, matching the "estimate" framing in the spec
// rather than an exact completion time.
func (s *Service) RemainingRouteEstimate(driverID types.ID) (time int64, distance float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.drivers[driverID]
	if d == nil || d.CurrentRoute == nil {
		return 0, 0
	}
	from := d.Position
	for i := s.cursor[driverID]; i < len(d.CurrentRoute.Segments); i++ {
		to := d.CurrentRoute.Segments[i].Coordinate
		time += s.m.EstimatedTime(from, to, d.MovementRate)
		distance += float64(s.m.Distance(from, to))
		from = to
	}
	return time, distance
}

// QueueSize returns the number of segments a driver has not yet executed
// (§4.8 observation field "queue size").
func (s *Service) QueueSize(driverID types.ID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.drivers[driverID]
	if d == nil || d.CurrentRoute == nil {
		return 0
	}
	return len(d.CurrentRoute.Segments) - s.cursor[driverID]
}

// ReceiveRouteRequests proposes a route without any capacity check or
// acceptance commitment (§4.5): it records the tentative allocation
// estimates onto the order and enqueues the route.
func (s *Service) ReceiveRouteRequests(ctx context.Context, driverID types.ID, route *Route) error {
	d := s.Get(driverID)
	orderID := route.Segments[0].OrderID

	now := s.k.Now()
	estPickupApproach := s.m.EstimatedTime(d.Position, route.Segments[0].Coordinate, d.MovementRate)
	estPickupTravel := d.TimeBetweenAcceptAndStartPickingUp
	establishmentPos := s.lookup.EstablishmentPosition(orderID)
	customerPos := s.lookup.CustomerPosition(orderID)
	estDeliveryTravel := s.m.EstimatedTime(establishmentPos, customerPos, d.MovementRate)
	estDeliveryApproach := d.TimeBetweenPickedUpAndStartDelivery

	if err := s.orders.DriverAllocated(ctx, order.DriverAllocatedCommand{
		OrderID:                     orderID,
		DriverID:                    driverID,
		Now:                         now,
		PickupSegmentID:             route.Segments[0].ID,
		DeliverySegmentID:           route.Segments[1].ID,
		EstimatedPickupApproach:     estPickupApproach,
		EstimatedPickupTravel:       estPickupTravel,
		EstimatedDeliveryApproach:   estDeliveryApproach,
		EstimatedDeliveryTravel:     estDeliveryTravel,
		EstimatedCustomerReceiveGap: 1,
	}); err != nil {
		return err
	}

	s.mu.Lock()
	d.RouteRequests = append(d.RouteRequests, route)
	s.mu.Unlock()
	return nil
}

// AcceptRoute commits a previously-requested route (§4.5). If the driver
// had no current route, it becomes the current route and a fresh
// sequential processor is spawned; otherwise its segments are appended to
// the existing route (extension), preserving pickup-before-delivery per
// order.
func (s *Service) AcceptRoute(ctx context.Context, driverID types.ID, route *Route) {
	d := s.Get(driverID)
	orderID := route.Segments[0].OrderID

	s.mu.Lock()
	d.OrdersList = append(d.OrdersList, orderID)
	now := s.k.Now()

	if d.CurrentRoute == nil {
		d.CurrentRoute = route
		s.cursor[driverID] = 0
		s.mu.Unlock()
		s.log.Append(now, eventlog.DriverAcceptedRoute, orderID, driverID, nil)
		s.k.Spawn(func(p *kernel.Proc) {
			s.sequentialProcessor(ctx, p, driverID)
		})
		return
	}

	d.CurrentRoute.Segments = append(d.CurrentRoute.Segments, route.Segments...)
	s.mu.Unlock()
	s.log.Append(now, eventlog.DriverAcceptedRouteExt, orderID, driverID, nil)
}

// sequentialProcessor is the one-goroutine-per-driver cooperative process
// (§4.5): while the current route has segments, pop the next, travel to
// its coordinate, then run the pickup or delivery sub-process.
func (s *Service) sequentialProcessor(ctx context.Context, p *kernel.Proc, driverID types.ID) {
	d := s.Get(driverID)
	for {
		s.mu.Lock()
		idx := s.cursor[driverID]
		if d.CurrentRoute == nil || idx >= len(d.CurrentRoute.Segments) {
			d.CurrentRoute = nil
			s.mu.Unlock()
			return
		}
		seg := d.CurrentRoute.Segments[idx]
		s.mu.Unlock()

		legStart := s.k.Now()
		s.travel(p, d, seg.Coordinate)

		if seg.Type == SegmentPickup {
			s.pickup(ctx, p, d, seg)
		} else {
			s.delivery(ctx, p, d, seg)
			d.TimeSpentOnDelivery += s.k.Now() - legStart
		}

		s.mu.Lock()
		s.cursor[driverID]++
		s.mu.Unlock()

		s.maybeReorder(ctx, d)
	}
}

func (s *Service) travel(p *kernel.Proc, d *Driver, to types.Point) {
	eta := s.m.EstimatedTime(d.Position, to, d.MovementRate)
	dist := s.m.Distance(d.Position, to)
	if eta > 0 {
		d.Status = StatusProcessingPreviousOrders
		p.Timeout(eta)
	}
	d.DistanceTravelled += float64(dist)
	d.Position = to
}

func (s *Service) pickup(ctx context.Context, p *kernel.Proc, d *Driver, seg RouteSegment) {
	d.Status = StatusPickingUp
	_ = s.orders.PickingUp(ctx, order.PickingUpCommand{OrderID: seg.OrderID, Now: s.k.Now()})

	o, err := s.orders.Get(ctx, seg.OrderID)
	if err == nil && o.Status < order.StatusReady {
		d.Status = StatusPickingUpWaiting
		waitStart := s.k.Now()
		p.Wait(establishment.ReadyKey(seg.OrderID))
		d.TimeWaitingForOrder += s.k.Now() - waitStart
	}

	_ = s.orders.PickedUp(ctx, order.PickedUpCommand{OrderID: seg.OrderID, DriverID: d.ID, Now: s.k.Now()})
	d.CurrentLoad += seg.Capacity
	d.CollectedOrder[seg.OrderID] = true

	normalDeliveryTime := d.TimeBetweenPickedUpAndStartDelivery + s.m.EstimatedTime(seg.Coordinate, s.lookup.CustomerPosition(seg.OrderID), d.MovementRate)
	now := s.k.Now()
	d.Windows[seg.OrderID] = Window{
		NormalDeliveryTime: normalDeliveryTime,
		EarliestDelivery:   now + normalDeliveryTime,
		LatestDelivery:     now + int64(float64(normalDeliveryTime)*(1+d.ToleranceFraction)),
	}
}

func (s *Service) delivery(ctx context.Context, p *kernel.Proc, d *Driver, seg RouteSegment) {
	d.Status = StatusDelivering
	_ = s.orders.Delivering(ctx, order.DeliveringCommand{OrderID: seg.OrderID, Now: s.k.Now()})
	p.Timeout(1) // handover
	_ = s.orders.ArrivedDelivery(ctx, order.ArrivedDeliveryCommand{OrderID: seg.OrderID, Now: s.k.Now()})
	_ = s.orders.Receive(ctx, order.ReceiveCommand{OrderID: seg.OrderID, Now: s.k.Now()})
	d.CurrentLoad -= seg.Capacity
	d.OrdersDelivered++
	delete(d.CollectedOrder, seg.OrderID)
	delete(d.Windows, seg.OrderID)
	d.Status = StatusAvailable
}
