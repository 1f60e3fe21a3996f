// README: Order arrival generator (component 10, §4.2 "Order arrival
// generator"): non-homogeneous Poisson thinning (Lewis & Shedler). Grounded
// on the teacher's kernel-process idiom reused from the establishment
// engine (one kernel.Proc advancing virtual time via Timeout), with the
// thinning algorithm itself following original_source's
// `generate_orders`/`non_homogeneous_poisson_process` (no pack example
// implements arrival-process sampling, so the algorithm is taken straight
// from the distilled original rather than from the teacher's domain,
// while the process-as-goroutine shape stays the teacher's).
package generators

import (
	"context"
	"math"

	"deliverysim/internal/kernel"
	"deliverysim/internal/modules/establishment"
	"deliverysim/internal/modules/location"
	"deliverysim/internal/modules/order"
	"deliverysim/internal/simrand"
	"deliverysim/internal/types"
)

// RateFunc is the arrival-intensity function λ(t) named in §4.2 and §6's
// `rate_function` scenario key (component 13 builds one from scenario JSON;
// tests and the homogeneous variant construct one directly).
type RateFunc func(t float64) float64

// ConstantRate returns the homogeneous variant λ(t) = totalOrders/window
// named in §4.2.
func ConstantRate(totalOrders int, window float64) RateFunc {
	rate := float64(totalOrders) / window
	return func(t float64) float64 { return rate }
}

// EstimateLambdaMax estimates λ_max as 1.1·max(λ(t_i)) over a 1000-point
// sample of [0,W], used when the scenario does not supply one explicitly
// (§4.2).
func EstimateLambdaMax(rate RateFunc, window float64) float64 {
	const samples = 1000
	max := 0.0
	for i := 0; i < samples; i++ {
		t := window * float64(i) / float64(samples-1)
		if v := rate(t); v > max {
			max = v
		}
	}
	if max <= 0 {
		return 1
	}
	return 1.1 * max
}

// ArrivalSpec carries everything the order-arrival generator needs to
// place orders against the establishment engine (§4.2/§6 order_generator).
type ArrivalSpec struct {
	TotalOrders   int
	Window        float64
	Rate          RateFunc
	LambdaMax     float64 // 0 means "estimate via EstimateLambdaMax"
	ItemsPerOrder int
}

// OrderPlacer is the subset of order.Service the arrival generator drives.
type OrderPlacer interface {
	Place(ctx context.Context, cmd order.PlaceCommand) error
}

// Arrival describes one accepted order, handed to the caller so it can
// register the customer's position (needed by driver.OrderLookup) and
// forward the order to the establishment engine's ReceiveOrderRequests —
// both of those live above this package, in the agent adapter (component
// 11), which owns the wiring between generators, engines and the kernel's
// core-event queue.
type Arrival struct {
	Establishment *establishment.Establishment
	OrderID       types.ID
	CustomerRef   types.ID
	CustomerPos   types.Point
	Items         []order.Item
	RequiredCap   types.Capacity
	Now           int64
}

// SpawnOrderArrivals schedules the order-arrival generator as a kernel
// process. Each accepted arrival picks an establishment uniformly, samples
// a customer position in a Gaussian-in-disk around it (§4.2), builds an
// order from ItemsPerOrder random catalog items, places it, and invokes
// onArrival with the result.
func SpawnOrderArrivals(k *kernel.Kernel, m *location.Map, rng *simrand.Source, placer OrderPlacer, establishments []*establishment.Establishment, spec ArrivalSpec, onArrival func(Arrival)) {
	if spec.ItemsPerOrder <= 0 {
		spec.ItemsPerOrder = 2
	}
	lambdaMax := spec.LambdaMax
	if lambdaMax <= 0 {
		lambdaMax = EstimateLambdaMax(spec.Rate, spec.Window)
	}

	k.Spawn(func(p *kernel.Proc) {
		orderIDs := types.NewCounter("order")
		customerIDs := types.NewCounter("customer")

		var tFloat float64
		var lastTick int64
		accepted := 0

		for accepted < spec.TotalOrders {
			delta := rng.ExpFloat64() / lambdaMax
			tFloat += delta
			if tFloat > spec.Window {
				return
			}

			targetTick := int64(math.Round(tFloat))
			if targetTick > lastTick {
				p.Timeout(targetTick - lastTick)
				lastTick = targetTick
			}

			lambdaT := spec.Rate(tFloat)
			if lambdaT > lambdaMax {
				lambdaMax = lambdaT
			}
			if lambdaMax <= 0 || rng.Float64() >= lambdaT/lambdaMax {
				continue
			}

			est := establishments[rng.Intn(len(establishments))]
			customerPos := m.RandomPointNear(rng, est.Position, est.OperatingRadius)
			items := RandomCatalogItems(est.Catalog, spec.ItemsPerOrder, rng)
			var required types.Capacity
			for _, it := range items {
				required += it.Capacity
			}

			id := orderIDs.Next()
			customerRef := customerIDs.Next()
			now := k.Now()
			if err := placer.Place(context.Background(), order.PlaceCommand{
				ID:               id,
				CustomerRef:      customerRef,
				EstablishmentRef: est.ID,
				Now:              now,
				Items:            items,
				RequiredCapacity: required,
			}); err != nil {
				continue
			}

			accepted++
			if onArrival != nil {
				onArrival(Arrival{
					Establishment: est,
					OrderID:       id,
					CustomerRef:   customerRef,
					CustomerPos:   customerPos,
					Items:         items,
					RequiredCap:   required,
					Now:           now,
				})
			}
		}
	})
}
