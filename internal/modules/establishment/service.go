// README: Establishment engine (component 7, §4.4). Grounded on the
// teacher's matching/service.go shape (a Service wrapping a store plus
// collaborator interfaces, exposing one method per lifecycle action) but
// driven by kernel cooperative processes instead of a ticker: one
// kernel.Proc is spawned per order in preparation (an establishment has no
// process of its own), gated by a kernel-mediated counting semaphore
// (acquireSlot/releaseSlot, parking on Proc.Wait rather than blocking the
// goroutine directly) standing in for §4.4's "semaphore of
// production_capacity concurrent prep slots".
package establishment

import (
	"context"
	"sync"

	"deliverysim/internal/eventlog"
	"deliverysim/internal/kernel"
	"deliverysim/internal/modules/order"
	"deliverysim/internal/simrand"
	"deliverysim/internal/types"
)

// OrderService is the subset of order.Service the establishment engine
// drives orders through.
type OrderService interface {
	EstablishmentAccept(ctx context.Context, cmd order.EstablishmentAcceptCommand) error
	PreparationStarted(ctx context.Context, cmd order.PreparationStartedCommand) error
	Ready(ctx context.Context, cmd order.ReadyCommand) error
}

// Service runs every establishment's prep pipeline against the shared
// kernel clock.
type Service struct {
	k       *kernel.Kernel
	orders  OrderService
	log     *eventlog.Log
	rng     *simrand.Source

	mu       sync.Mutex
	free     map[types.ID]int
	prepEnds map[types.ID]map[types.ID]int64 // establishment -> order -> estimated ready time, while preparing
}

func NewService(k *kernel.Kernel, orders OrderService, log *eventlog.Log, rng *simrand.Source) *Service {
	return &Service{
		k:        k,
		orders:   orders,
		log:      log,
		rng:      rng,
		free:     make(map[types.ID]int),
		prepEnds: make(map[types.ID]map[types.ID]int64),
	}
}

// acquireSlot reserves a production slot at est, parking the calling process
// on slotKey(est.ID) via the kernel (not a raw channel send) whenever
// capacity is exhausted — the kernel is single-threaded cooperative (see
// kernel.Kernel), so acquisition must be a real suspension point or the
// C+1-th prep proc would block the scheduler itself and no in-flight
// Timeout could ever fire to free a slot (§4.4).
func (s *Service) acquireSlot(p *kernel.Proc, est *Establishment) {
	for {
		s.mu.Lock()
		n, ok := s.free[est.ID]
		if !ok {
			n = est.ProductionCapacity
			s.prepEnds[est.ID] = make(map[types.ID]int64)
		}
		if n > 0 {
			s.free[est.ID] = n - 1
			s.mu.Unlock()
			return
		}
		s.free[est.ID] = 0
		s.mu.Unlock()
		p.Wait(slotKey(est.ID))
	}
}

// releaseSlot frees a production slot at est and wakes any proc parked in
// acquireSlot waiting for one.
func (s *Service) releaseSlot(est *Establishment) {
	s.mu.Lock()
	s.free[est.ID]++
	s.mu.Unlock()
	s.k.Notify(slotKey(est.ID))
}

// slotKey is the kernel wait-key a prep proc parks on while waiting for a
// production slot to free up at est (§4.4: "the C+1-th order waits for a
// slot").
func slotKey(estID types.ID) string {
	return "prep-slot:" + string(estID)
}

// ReceiveOrderRequests accepts a batch of newly-placed orders (§4.4:
// "on receive_order_requests(orders): for each order, emit
// EstablishmentAcceptedOrder, record estimates, spawn a prep process").
// onAssignable is called once an order becomes eligible for driver
// assignment, at a moment gated by est.PercentageAllocationDriver: with
// probability p the order is handed off immediately on acceptance (the
// driver can head to pickup while food is cooking); otherwise only once
// the order is READY.
func (s *Service) ReceiveOrderRequests(ctx context.Context, est *Establishment, orders []*order.Order, onAssignable func(types.ID)) {
	for _, o := range orders {
		o := o
		prepDuration := s.samplePrepTime(est)
		now := s.k.Now()
		if err := s.orders.EstablishmentAccept(ctx, order.EstablishmentAcceptCommand{
			OrderID:                      o.ID,
			Now:                          now,
			EstimatedPreparationDuration: prepDuration,
		}); err != nil {
			continue
		}

		allocateEarly := s.rng.Float64() < est.PercentageAllocationDriver
		if allocateEarly && onAssignable != nil {
			onAssignable(o.ID)
		}

		s.k.Spawn(func(p *kernel.Proc) {
			s.prep(ctx, p, est, o.ID, prepDuration, !allocateEarly, onAssignable)
		})
	}
}

func (s *Service) prep(ctx context.Context, p *kernel.Proc, est *Establishment, orderID types.ID, prepDuration int64, notifyOnReady bool, onAssignable func(types.ID)) {
	s.acquireSlot(p, est)
	defer s.releaseSlot(est)

	startedAt := s.k.Now()
	readyAt := startedAt + prepDuration
	if err := s.orders.PreparationStarted(ctx, order.PreparationStartedCommand{OrderID: orderID, Now: startedAt, EstimatedReadyTime: readyAt}); err != nil {
		return
	}

	s.mu.Lock()
	s.prepEnds[est.ID][orderID] = readyAt
	s.mu.Unlock()

	p.Timeout(prepDuration)

	s.mu.Lock()
	delete(s.prepEnds[est.ID], orderID)
	s.mu.Unlock()

	if err := s.orders.Ready(ctx, order.ReadyCommand{OrderID: orderID, Now: s.k.Now()}); err != nil {
		return
	}
	s.k.Notify(readyKey(orderID))
	if notifyOnReady && onAssignable != nil {
		onAssignable(orderID)
	}
}

// samplePrepTime draws from a Beta distribution on [MinPrepTime,
// MaxPrepTime] centred near PrepTimeRate (§4.4: "sampled from a Beta
// distribution on [min_prep, max_prep] centred near
// order_production_time_rate"). alpha/beta are derived so the distribution
// mode sits at the configured rate, clamped into the valid range; the mean,
// (6t+1)/8 of the span for target fraction t, is pulled toward mid-range.
func (s *Service) samplePrepTime(est *Establishment) int64 {
	span := est.MaxPrepTime - est.MinPrepTime
	if span <= 0 {
		return est.MinPrepTime
	}
	target := (est.PrepTimeRate - float64(est.MinPrepTime)) / float64(span)
	if target < 0 {
		target = 0
	}
	if target > 1 {
		target = 1
	}
	const concentration = 6.0
	alpha := target*concentration + 1
	beta := (1-target)*concentration + 1
	frac := s.rng.Beta(alpha, beta)
	return est.MinPrepTime + int64(frac*float64(span))
}

// CalculateMeanOverloadTime returns the mean residual prep time over
// currently-preparing orders at this establishment (§4.4: "expose
// calculate_mean_overload_time ... used for observations").
func (s *Service) CalculateMeanOverloadTime(est *Establishment) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	ends, ok := s.prepEnds[est.ID]
	if !ok || len(ends) == 0 {
		return 0
	}
	now := s.k.Now()
	var total float64
	for _, readyAt := range ends {
		remaining := readyAt - now
		if remaining < 0 {
			remaining = 0
		}
		total += float64(remaining)
	}
	return total / float64(len(ends))
}

// readyKey is the kernel wait-key a driver parks on while waiting for a
// specific order to become READY (§4.5 Pickup: "enter PICKING_UP_WAITING
// and park until READY").
func readyKey(orderID types.ID) string {
	return "order-ready:" + string(orderID)
}

// ReadyKey exposes readyKey to other packages (driver engine) so both
// sides address the same kernel wait-channel.
func ReadyKey(orderID types.ID) string { return readyKey(orderID) }
