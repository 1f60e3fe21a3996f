// README: Agent step adapter (component 11, §4.8): the reset/step/close
// protocol that wraps the kernel, generators and engines into the
// language-neutral RL interface named in §6. Grounded on the teacher's
// Service-over-collaborators shape, here gluing together every other
// module's Service instead of a persistence Store.
package agentenv

import (
	"context"
	"errors"

	"deliverysim/internal/eventlog"
	"deliverysim/internal/generators"
	"deliverysim/internal/kernel"
	"deliverysim/internal/modules/driver"
	"deliverysim/internal/modules/establishment"
	"deliverysim/internal/modules/location"
	"deliverysim/internal/modules/order"
	"deliverysim/internal/simrand"
	"deliverysim/internal/types"
)

// ErrInvalidAction signals an action outside [0, num_drivers) at Step time
// (§7 "Invalid action").
var ErrInvalidAction = errors.New("agentenv: action outside [0, num_drivers)")

// ErrEpisodeOver signals a Step call after the episode already terminated
// or truncated.
var ErrEpisodeOver = errors.New("agentenv: step called after episode end")

var bgCtx = context.Background()

// Env is the in-process binding of the reset/step/close contract (§6); the
// HTTP control API (component 14/§4.10) wraps this type, it does not
// reimplement it.
type Env struct {
	cfg Config
	rng *simrand.Source

	k   *kernel.Kernel
	m   *location.Map
	log *eventlog.Log

	orderStore *order.Store
	orderSvc   *order.Service
	estSvc     *establishment.Service
	drvSvc     *driver.Service

	establishments   map[types.ID]*establishment.Establishment
	establishmentsOf []*establishment.Establishment
	drivers          []*driver.Driver

	customerPositions map[types.ID]types.Point
	routeIDs          *types.Counter
	segmentIDs        *types.Counter

	totalOrders     int
	currentOrderID  types.ID
	episodeOver     bool
	lastDistanceSum float64 // Σ driver.DistanceTravelled at the start of the most recent step, for the distance-delta objective
}

// New constructs an Env; Reset must be called before Step.
func New() *Env {
	return &Env{}
}

// Reset builds a fresh simulation from cfg and advances it until the first
// core event or termination, returning the initial observation (§4.8
// "reset(seed, options)").
func (e *Env) Reset(cfg Config) (Observation, map[string]any, error) {
	e.cfg = cfg
	e.rng = simrand.New(cfg.Seed)
	e.k = kernel.New()
	e.m = location.NewMap(cfg.GridSize)
	e.log = eventlog.New()
	e.orderStore = order.NewStore()
	e.orderSvc = order.NewService(e.orderStore, e.log)
	e.estSvc = establishment.NewService(e.k, e.orderSvc, e.log, e.rng)
	e.drvSvc = driver.NewService(e.k, e.orderSvc, e, e.m, e.log)

	e.customerPositions = make(map[types.ID]types.Point)
	e.routeIDs = types.NewCounter("route")
	e.segmentIDs = types.NewCounter("segment")
	e.episodeOver = false
	e.lastDistanceSum = 0

	ests := generators.SpawnEstablishments(e.m, e.rng, cfg.Establishments)
	e.establishments = make(map[types.ID]*establishment.Establishment, len(ests))
	for _, est := range ests {
		e.establishments[est.ID] = est
	}
	e.establishmentsOf = ests
	e.drivers = generators.SpawnDrivers(e.m, e.rng, e.drvSvc, cfg.Drivers)

	e.totalOrders = cfg.Arrivals.TotalOrders
	generators.SpawnOrderArrivals(e.k, e.m, e.rng, e.orderSvc, ests, cfg.Arrivals, e.onArrival)

	terminated, truncated := e.advanceUntilEvent()
	e.pullCurrentOrder()
	e.episodeOver = terminated || truncated

	info := map[string]any{"terminated": terminated, "truncated": truncated}
	return e.observation(), info, nil
}

// onArrival is the generator's per-order callback (§4.2 -> §4.4 hand-off):
// it registers the customer's position for OrderLookup and forwards the
// order to the establishment engine, whose percentage_allocation_driver
// gate decides when the order becomes a core event.
func (e *Env) onArrival(a generators.Arrival) {
	e.customerPositions[a.OrderID] = a.CustomerPos
	o, err := e.orderSvc.Get(bgCtx, a.OrderID)
	if err != nil {
		return
	}
	e.estSvc.ReceiveOrderRequests(bgCtx, a.Establishment, []*order.Order{o}, func(orderID types.ID) {
		e.k.PushCoreEvent(kernel.CoreEvent{OrderID: orderID})
	})
}

// Step validates the action, builds the two-segment route for the current
// order, commits it to the chosen driver, advances the simulation to the
// next decision point, and returns the usual five-tuple (§4.8 "step").
func (e *Env) Step(action int) (Observation, float64, bool, bool, map[string]any, error) {
	if e.episodeOver {
		return Observation{}, 0, true, false, nil, ErrEpisodeOver
	}
	if action < 0 || action >= len(e.drivers) {
		return Observation{}, 0, false, false, nil, ErrInvalidAction
	}

	driverID := e.drivers[action].ID
	orderID := e.currentOrderID

	o, err := e.orderSvc.Get(bgCtx, orderID)
	if err != nil {
		return Observation{}, 0, false, false, nil, err
	}
	est := e.establishments[o.EstablishmentRef]

	route := &driver.Route{
		ID: e.routeIDs.Next(),
		Segments: []driver.RouteSegment{
			{ID: e.segmentIDs.Next(), Type: driver.SegmentPickup, OrderID: orderID, Coordinate: est.Position, Capacity: o.RequiredCapacity},
			{ID: e.segmentIDs.Next(), Type: driver.SegmentDelivery, OrderID: orderID, Coordinate: e.customerPositions[orderID], Capacity: o.RequiredCapacity},
		},
	}

	if err := e.drvSvc.ReceiveRouteRequests(bgCtx, driverID, route); err != nil {
		return Observation{}, 0, false, false, nil, err
	}
	e.drvSvc.AcceptRoute(bgCtx, driverID, route)

	stepStartDistance := e.sumDriverDistance()
	e.lastDistanceSum = stepStartDistance
	terminated, truncated := e.advanceUntilEvent()
	reward := e.computeReward(terminated, truncated, stepStartDistance)

	e.pullCurrentOrder()
	e.episodeOver = terminated || truncated

	info := map[string]any{"now": e.k.Now()}
	return e.observation(), reward, terminated, truncated, info, nil
}

// Close releases the episode's kernel resources. The in-memory simulation
// has nothing to flush; this exists to satisfy §6's close() contract and
// to give the HTTP layer (component 14) a place to release its episode
// registry entry.
func (e *Env) Close() {
	e.k = nil
}

// DriverMetric is one driver's summary at episode end, the raw samples the
// control API persists via the metrics store (§4.11).
type DriverMetric struct {
	ID                  types.ID
	DistanceTravelled   float64
	TimeSpentOnDelivery int64
	OrdersDelivered     int
}

// Summary reports the per-driver totals and overall delivered-order count
// for the episode so far, for persistence at episode close.
func (e *Env) Summary() (drivers []DriverMetric, ordersDelivered int) {
	drivers = make([]DriverMetric, len(e.drivers))
	for i, d := range e.drivers {
		drivers[i] = DriverMetric{
			ID:                  d.ID,
			DistanceTravelled:   d.DistanceTravelled,
			TimeSpentOnDelivery: d.TimeSpentOnDelivery,
			OrdersDelivered:     d.OrdersDelivered,
		}
	}
	ordersDelivered = e.orderStore.CountStatus(order.StatusDelivered)
	return drivers, ordersDelivered
}

// advanceUntilEvent single-steps the kernel until a core event is pending,
// the episode terminates (every order delivered), or truncates (time
// budget exhausted) — §4.8.
func (e *Env) advanceUntilEvent() (terminated, truncated bool) {
	for {
		if e.k.HasCoreEvent() {
			return false, false
		}
		if e.orderStore.CountStatus(order.StatusDelivered) >= e.totalOrders {
			return true, false
		}
		if e.k.Now() >= e.cfg.MaxTimeStep-1 {
			return false, true
		}
		if !e.k.Step() {
			if e.orderStore.CountStatus(order.StatusDelivered) >= e.totalOrders {
				return true, false
			}
			return false, true
		}
	}
}

func (e *Env) pullCurrentOrder() {
	if ce, ok := e.k.PopCoreEvent(); ok {
		e.currentOrderID = ce.OrderID
	} else {
		e.currentOrderID = ""
	}
}

func (e *Env) sumDriverDistance() float64 {
	var total float64
	for _, d := range e.drivers {
		total += d.DistanceTravelled
	}
	return total
}

// --- driver.OrderLookup ---

func (e *Env) EstablishmentPosition(orderID types.ID) types.Point {
	o, err := e.orderSvc.Get(bgCtx, orderID)
	if err != nil {
		return types.Point{}
	}
	est := e.establishments[o.EstablishmentRef]
	if est == nil {
		return types.Point{}
	}
	return est.Position
}

func (e *Env) CustomerPosition(orderID types.ID) types.Point {
	return e.customerPositions[orderID]
}

func (e *Env) RequiredCapacity(orderID types.ID) types.Capacity {
	o, err := e.orderSvc.Get(bgCtx, orderID)
	if err != nil {
		return 0
	}
	return o.RequiredCapacity
}

func (e *Env) EstimatedReadyTime(orderID types.ID) int64 {
	o, err := e.orderSvc.Get(bgCtx, orderID)
	if err != nil {
		return 0
	}
	return o.Timing.EstimatedReadyTime
}
