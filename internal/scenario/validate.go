package scenario

import (
	"fmt"

	"deliverysim/internal/agentenv"
	"deliverysim/internal/generators"
	"deliverysim/internal/modules/order"
	"deliverysim/internal/types"
)

// ValidationError names the offending scenario field (§4.9), mirroring the
// teacher's fail-fast config philosophy but as a returned error rather than
// a panic, since scenario files are untrusted input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("scenario: %s", e.Reason)
	}
	return fmt.Sprintf("scenario: field %q: %s", e.Field, e.Reason)
}

// defaultCatalogSize is the number of synthetic catalog items generated per
// establishment when a scenario is silent on menu contents (§6's scenario
// schema names no catalog key at all — catalog composition is left to the
// generator, not the scenario author).
const defaultCatalogSize = 8

// Validate decodes raw into a runnable agentenv.Config, returning a
// *ValidationError naming the first invalid field encountered.
func Validate(raw Raw) (agentenv.Config, error) {
	if raw.OrderGenerator.Type != "poisson" && raw.OrderGenerator.Type != "non_homogeneous_poisson" {
		return agentenv.Config{}, &ValidationError{"order_generator.type", `must be "poisson" or "non_homogeneous_poisson"`}
	}
	if raw.OrderGenerator.TotalOrders <= 0 {
		return agentenv.Config{}, &ValidationError{"order_generator.total_orders", "must be > 0"}
	}
	if raw.OrderGenerator.TimeWindow <= 0 {
		return agentenv.Config{}, &ValidationError{"order_generator.time_window", "must be > 0"}
	}

	var rate generators.RateFunc
	switch raw.OrderGenerator.Type {
	case "poisson":
		if raw.OrderGenerator.LambdaRate <= 0 {
			return agentenv.Config{}, &ValidationError{"order_generator.lambda_rate", "must be > 0 for a poisson generator"}
		}
		rate = func(float64) float64 { return raw.OrderGenerator.LambdaRate }
	case "non_homogeneous_poisson":
		if len(raw.OrderGenerator.RateFunction) == 0 {
			return agentenv.Config{}, &ValidationError{"order_generator.rate_function", "required for a non_homogeneous_poisson generator"}
		}
		fn, err := ParseRateFunction(raw.OrderGenerator.RateFunction)
		if err != nil {
			return agentenv.Config{}, &ValidationError{"order_generator.rate_function", err.Error()}
		}
		rate = fn
	}

	lambdaMax := raw.OrderGenerator.MaxRate
	if lambdaMax <= 0 {
		lambdaMax = generators.EstimateLambdaMax(rate, raw.OrderGenerator.TimeWindow)
	}

	if raw.SimpyEnv.MaxTimeStep <= 0 {
		return agentenv.Config{}, &ValidationError{"simpy_env.max_time_step", "must be > 0"}
	}
	if raw.GridMap.Size <= 0 {
		return agentenv.Config{}, &ValidationError{"grid_map.size", "must be > 0"}
	}

	if raw.Drivers.Num <= 0 {
		return agentenv.Config{}, &ValidationError{"drivers.num", "must be > 0"}
	}
	if raw.Drivers.Vel[0] <= 0 || raw.Drivers.Vel[1] < raw.Drivers.Vel[0] {
		return agentenv.Config{}, &ValidationError{"drivers.vel", "must be [min,max] with 0 < min <= max"}
	}
	if raw.Drivers.MaxDelayPercentage < 0 {
		return agentenv.Config{}, &ValidationError{"drivers.max_delay_percentage", "must be >= 0"}
	}
	if raw.Drivers.MaxCapacity <= 0 {
		return agentenv.Config{}, &ValidationError{"drivers.max_capacity", "must be > 0"}
	}

	if raw.Establishments.Num <= 0 {
		return agentenv.Config{}, &ValidationError{"establishments.num", "must be > 0"}
	}
	if raw.Establishments.PrepareTime[0] <= 0 || raw.Establishments.PrepareTime[1] < raw.Establishments.PrepareTime[0] {
		return agentenv.Config{}, &ValidationError{"establishments.prepare_time", "must be [min,max] with 0 < min <= max"}
	}
	if raw.Establishments.OperatingRadius[0] <= 0 || raw.Establishments.OperatingRadius[1] < raw.Establishments.OperatingRadius[0] {
		return agentenv.Config{}, &ValidationError{"establishments.operating_radius", "must be [min,max] with 0 < min <= max"}
	}
	if raw.Establishments.ProductionCapacity[0] <= 0 || raw.Establishments.ProductionCapacity[1] < raw.Establishments.ProductionCapacity[0] {
		return agentenv.Config{}, &ValidationError{"establishments.production_capacity", "must be [min,max] with 0 < min <= max"}
	}
	if raw.Establishments.PercentageAllocationDriver < 0 || raw.Establishments.PercentageAllocationDriver > 1 {
		return agentenv.Config{}, &ValidationError{"establishments.percentage_allocation_driver", "must be in [0,1]"}
	}

	obj := agentenv.Objective(raw.RewardObjective)
	if raw.RewardObjective < 1 || raw.RewardObjective > 10 {
		return agentenv.Config{}, &ValidationError{"reward_objective", "must be an integer in [1,10]"}
	}

	return agentenv.Config{
		Seed:        0,
		GridSize:    raw.GridMap.Size,
		MaxTimeStep: int64(raw.SimpyEnv.MaxTimeStep),
		Establishments: generators.EstablishmentSpec{
			Count:                      raw.Establishments.Num,
			PrepareTime:                generators.Range{Min: raw.Establishments.PrepareTime[0], Max: raw.Establishments.PrepareTime[1]},
			OperatingRadius:            generators.Range{Min: raw.Establishments.OperatingRadius[0], Max: raw.Establishments.OperatingRadius[1]},
			ProductionCapacity:         generators.Range{Min: raw.Establishments.ProductionCapacity[0], Max: raw.Establishments.ProductionCapacity[1]},
			PercentageAllocationDriver: raw.Establishments.PercentageAllocationDriver,
			Catalog:                    syntheticCatalog(defaultCatalogSize),
		},
		Drivers: generators.DriverSpec{
			Count:              raw.Drivers.Num,
			Velocity:           generators.Range{Min: raw.Drivers.Vel[0], Max: raw.Drivers.Vel[1]},
			MaxDelayPercentage: raw.Drivers.MaxDelayPercentage,
			MaxCapacity:        types.Capacity(raw.Drivers.MaxCapacity),
		},
		Arrivals: generators.ArrivalSpec{
			TotalOrders:   raw.OrderGenerator.TotalOrders,
			Window:        raw.OrderGenerator.TimeWindow,
			Rate:          rate,
			LambdaMax:     lambdaMax,
			ItemsPerOrder: 2,
		},
		Objective: obj,
	}, nil
}

// syntheticCatalog fabricates n generically-capacitied menu items. The
// scenario schema names no catalog key (§6): item identity does not matter
// to any invariant or reward term, only each item's capacity contribution
// to an order's RequiredCapacity.
func syntheticCatalog(n int) []order.Item {
	items := make([]order.Item, n)
	for i := range items {
		items[i] = order.Item{Name: fmt.Sprintf("item-%d", i+1), Capacity: types.Capacity(1 + i%3)}
	}
	return items
}
