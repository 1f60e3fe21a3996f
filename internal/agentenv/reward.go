// README: Reward computation for the ten objectives of §4.8. Grounded on
// original_source's FoodDeliveryGymEnv.calculate_reward (the per-objective
// dispatch and the truncation-penalty shape), reimplemented against this
// package's driver/order services rather than the original's in-process
// object graph. The original's exact helper method bodies
// (estimate_total_busy_time, calculate_total_distance_to_travel, ...) were
// not present in the retrieved source pack, so each quantity below is
// computed directly from §4.8's literal definitions instead of being
// ported line-for-line; decisions are recorded in DESIGN.md.
package agentenv

import "deliverysim/internal/modules/order"

func (e *Env) computeReward(terminated, truncated bool, stepStartDistance float64) float64 {
	var reward float64

	if !e.cfg.Objective.episodic() || terminated || truncated {
		reward = e.baseReward(e.cfg.Objective, stepStartDistance)
	}

	if truncated {
		undelivered := e.totalOrders - e.orderStore.CountStatus(order.StatusDelivered)
		if undelivered > 0 {
			reward -= 10000 * float64(undelivered)
			if e.cfg.Objective.distanceBased() {
				reward -= 2 * float64(e.m.MaxDistance()) * float64(undelivered)
			}
			if e.cfg.Objective == ObjTimeSpentOnDeliveryPerStepWithPenalty || e.cfg.Objective == ObjTimeSpentOnDeliveryEpisodicWithPenalty {
				uncollected := e.uncollectedCount()
				reward -= 5 * float64(uncollected)
			}
		}
	}

	return reward
}

// baseReward computes the objective's per-step (or, on a terminal step,
// episodic) value per §4.8's table, sans the truncation penalty which is
// layered on separately by computeReward.
func (e *Env) baseReward(obj Objective, stepStartDistance float64) float64 {
	switch obj {
	case ObjBusyTimePerStep, ObjBusyTimeEpisodic:
		return -e.sumBusyTime()
	case ObjRemainingDistancePerStep, ObjRemainingDistanceEpisodic:
		return -e.sumRemainingDistance()
	case ObjTimeSpentOnDeliveryPerStep, ObjTimeSpentOnDeliveryEpisodic, ObjTimeSpentOnDeliveryPerStepWithPenalty, ObjTimeSpentOnDeliveryEpisodicWithPenalty:
		return -e.sumTimeSpentOnDelivery()
	case ObjDistanceDeltaPerStep, ObjDistanceDeltaEpisodic:
		return -(e.sumDriverDistance() - stepStartDistance)
	default:
		return 0
	}
}

func (e *Env) sumBusyTime() float64 {
	var total int64
	for _, d := range e.drivers {
		t, _ := e.drvSvc.RemainingRouteEstimate(d.ID)
		total += t
	}
	return float64(total)
}

func (e *Env) sumRemainingDistance() float64 {
	var total float64
	for _, d := range e.drivers {
		_, dist := e.drvSvc.RemainingRouteEstimate(d.ID)
		total += dist
	}
	return total
}

func (e *Env) sumTimeSpentOnDelivery() float64 {
	var total int64
	for _, d := range e.drivers {
		total += d.TimeSpentOnDelivery
	}
	return float64(total)
}

// uncollectedCount is the number of orders not yet picked up by any driver
// (§4.6 "is_already_caught"), used by the extra truncation penalty of
// objectives 9/10 ("still uncollected at truncation").
func (e *Env) uncollectedCount() int {
	count := 0
	for _, o := range e.orderStore.All() {
		if o.Status < order.StatusPickedUp {
			count++
		}
	}
	return count
}
