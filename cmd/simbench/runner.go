// README: Episode runner for each heuristic baseline, grounded on
// cmd/bench/cases.go's Runner-holds-clients-and-iterates-test-cases shape;
// here "test cases" are reference dispatch selectors (component 12) run
// against real episodes instead of HTTP/DB probes.
package main

import (
	"context"
	"fmt"

	"deliverysim/internal/agentenv"
	"deliverysim/internal/infra"
	"deliverysim/internal/modules/location"
	"deliverysim/internal/modules/matching"
	"deliverysim/internal/scenario"
	"deliverysim/internal/simrand"
	"deliverysim/internal/types"
)

type Result struct {
	Selector     string
	Episodes     int
	AvgReward    float64
	AvgDelivered float64
	AvgDistance  float64
}

type Runner struct {
	cfg   Config
	store *matching.Store
	rng   *simrand.Source
}

func NewRunner(cfg Config) *Runner {
	r := &Runner{cfg: cfg, rng: simrand.New(1)}
	if cfg.RedisAddr != "" {
		r.store = matching.NewStore(infra.NewRedis(cfg.RedisAddr))
	}
	return r
}

func (r *Runner) RunAll(ctx context.Context) []Result {
	simCfg, err := scenario.Load(r.cfg.ScenarioPath)
	if err != nil {
		fmt.Printf("scenario load failed: %v\n", err)
		return nil
	}

	results := make([]Result, 0, len(r.cfg.Selectors))
	for _, selector := range r.cfg.Selectors {
		var sumReward, sumDistance float64
		var sumDelivered int
		ok := 0
		for i := 0; i < r.cfg.Episodes; i++ {
			reward, delivered, distance, err := r.runEpisode(ctx, selector, simCfg)
			if err != nil {
				fmt.Printf("%s episode %d failed: %v\n", selector, i, err)
				continue
			}
			sumReward += reward
			sumDistance += distance
			sumDelivered += delivered
			ok++
		}
		if ok == 0 {
			continue
		}
		results = append(results, Result{
			Selector:     selector,
			Episodes:     ok,
			AvgReward:    sumReward / float64(ok),
			AvgDelivered: float64(sumDelivered) / float64(ok),
			AvgDistance:  sumDistance / float64(ok),
		})
	}
	return results
}

func (r *Runner) runEpisode(ctx context.Context, selector string, cfg agentenv.Config) (reward float64, delivered int, distance float64, err error) {
	m := location.NewMap(cfg.GridSize)
	env := agentenv.New()

	obs, info, err := env.Reset(cfg)
	if err != nil {
		return 0, 0, 0, err
	}
	terminated, _ := info["terminated"].(bool)
	truncated, _ := info["truncated"].(bool)

	for !terminated && !truncated {
		if r.store != nil {
			for _, d := range obs.Drivers {
				_ = r.store.UpdatePosition(ctx, d.ID, d.Position)
			}
		}

		action, ok := r.choose(ctx, selector, m, obs)
		if !ok {
			break
		}

		var stepReward float64
		obs, stepReward, terminated, truncated, _, err = env.Step(action)
		if err != nil {
			return 0, 0, 0, err
		}
		reward += stepReward
	}

	drivers, delivered := env.Summary()
	for _, d := range drivers {
		distance += d.DistanceTravelled
	}
	return reward, delivered, distance, nil
}

// choose maps a selector name to an action index into the current
// observation's driver slice (§4.8's action space is `[0, num_drivers)`).
func (r *Runner) choose(ctx context.Context, selector string, m *location.Map, obs agentenv.Observation) (int, bool) {
	if len(obs.Drivers) == 0 {
		return 0, false
	}

	ids := make([]types.ID, len(obs.Drivers))
	for i, d := range obs.Drivers {
		ids[i] = d.ID
	}
	indexOf := func(id types.ID) (int, bool) {
		for i, d := range obs.Drivers {
			if d.ID == id {
				return i, true
			}
		}
		return 0, false
	}

	switch selector {
	case "first":
		id, ok := matching.FirstSelector(ids)
		if !ok {
			return 0, false
		}
		return indexOf(id)

	case "random":
		id, ok := matching.RandomSelector(ids, r.rng)
		if !ok {
			return 0, false
		}
		return indexOf(id)

	case "nearest":
		positions := make(map[types.ID]types.Point, len(obs.Drivers))
		for _, d := range obs.Drivers {
			positions[d.ID] = d.Position
		}
		id, ok := matching.NearestSelector(ctx, r.store, m, positions, obs.CurrentOrder.EstablishmentPosition)
		if !ok {
			return 0, false
		}
		return indexOf(id)

	case "lowest_cost":
		// Uses the per-driver estimated-completion field the observation
		// already computes for this order (§4.8), rather than
		// reconstructing driver/order internals the bench has no access
		// to. This differs from matching.LowestCostSelector, which ranks
		// by the pricing cost from each driver's route tail to the target.
		best := 0
		for i, d := range obs.Drivers {
			if d.EstimatedCompletion < obs.Drivers[best].EstimatedCompletion {
				best = i
			}
		}
		return best, true

	default:
		return 0, false
	}
}
