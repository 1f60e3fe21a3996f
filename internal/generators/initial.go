// README: Initial generators (component 10, §4.2 "Initial generators"):
// create N establishments and M drivers synchronously at t=0. Grounded on
// the teacher's seed-data helpers (e.g. test fixtures building an Order via
// a constructor loop) generalized into a constructor-style generator rather
// than a kernel process, since §4.2 specifies these run synchronously
// before the kernel starts stepping.
package generators

import (
	"fmt"
	"math"

	"deliverysim/internal/modules/driver"
	"deliverysim/internal/modules/establishment"
	"deliverysim/internal/modules/location"
	"deliverysim/internal/modules/order"
	"deliverysim/internal/simrand"
	"deliverysim/internal/types"
)

// Range is an inclusive [Min, Max] sampling interval.
type Range struct {
	Min float64
	Max float64
}

func (r Range) sample(rng *simrand.Source) float64 {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + rng.Float64()*(r.Max-r.Min)
}

// EstablishmentSpec carries the scenario's per-establishment ranges (§6
// "establishments" scenario key).
type EstablishmentSpec struct {
	Count                      int
	PrepareTime                Range // Min/Max truncated to whole ticks; the rate is sampled as a float between them
	OperatingRadius            Range
	ProductionCapacity         Range // whole-number range, sampled then rounded
	PercentageAllocationDriver float64
	Catalog                    []order.Item
}

// DriverSpec carries the scenario's per-driver ranges (§6 "drivers"
// scenario key).
type DriverSpec struct {
	Count               int
	Velocity            Range
	MaxDelayPercentage  float64 // §4.6 tolerance fraction τ
	MaxCapacity         types.Capacity
}

// SpawnEstablishments creates Count establishments with randomised
// positions and per-establishment ranges sampled independently (§4.2:
// "randomised positions ... and persistent catalogs").
func SpawnEstablishments(m *location.Map, rng *simrand.Source, spec EstablishmentSpec) []*establishment.Establishment {
	ids := types.NewCounter("est")
	out := make([]*establishment.Establishment, 0, spec.Count)
	for i := 0; i < spec.Count; i++ {
		pos := m.RandomPoint(rng)
		minPrep := int64(spec.PrepareTime.Min)
		maxPrep := int64(spec.PrepareTime.Max)
		if maxPrep < minPrep {
			maxPrep = minPrep
		}
		prepRate := spec.PrepareTime.sample(rng)
		radius := spec.OperatingRadius.sample(rng)
		capacity := int(math.Round(spec.ProductionCapacity.sample(rng)))
		if capacity < 1 {
			capacity = 1
		}
		out = append(out, establishment.New(
			ids.Next(),
			pos,
			establishment.Catalog(spec.Catalog),
			capacity,
			radius,
			minPrep,
			maxPrep,
			prepRate,
			spec.PercentageAllocationDriver,
		))
	}
	return out
}

// SpawnDrivers creates Count drivers with randomised positions and
// movement rates, registering each with the driver engine (§4.2:
// "randomised positions, per-driver random ... movement rate"). A
// per-driver cosmetic color is explicitly not modeled: nothing in §4.8's
// observation fields or any other downstream consumer reads it.
func SpawnDrivers(m *location.Map, rng *simrand.Source, svc *driver.Service, spec DriverSpec) []*driver.Driver {
	ids := types.NewCounter("drv")
	out := make([]*driver.Driver, 0, spec.Count)
	for i := 0; i < spec.Count; i++ {
		pos := m.RandomPoint(rng)
		rate := spec.Velocity.sample(rng)
		d := driver.New(ids.Next(), pos, rate, spec.MaxCapacity, spec.MaxDelayPercentage)
		svc.Register(d)
		out = append(out, d)
	}
	return out
}

// RandomCatalogItems picks n distinct items uniformly from catalog without
// replacement (§4.2: "two randomly chosen catalog items"). Panics if n
// exceeds len(catalog); scenario validation (component 13) is expected to
// guarantee catalogs are never smaller than the items-per-order count.
func RandomCatalogItems(catalog []order.Item, n int, rng *simrand.Source) []order.Item {
	if n > len(catalog) {
		panic(fmt.Sprintf("generators: requested %d catalog items from a catalog of %d", n, len(catalog)))
	}
	idx := rng.Perm(len(catalog))
	items := make([]order.Item, n)
	for i := 0; i < n; i++ {
		items[i] = catalog[idx[i]]
	}
	return items
}
