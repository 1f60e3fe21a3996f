// README: Agent step adapter configuration (component 11, §4.8). Grounded
// on the teacher's NewService(store, ...)/NewStore(db, redis) dependency
// injection idiom, generalized here into one Config value consumed by
// Reset rather than a package of constructor arguments — every engine
// still takes its collaborators as constructor arguments, never as
// package-level globals (§5, §9 "SimContext").
package agentenv

import "deliverysim/internal/generators"

// Objective selects one of the ten reward signals named in §4.8's table.
type Objective int

const (
	ObjBusyTimePerStep Objective = iota + 1
	ObjRemainingDistancePerStep
	ObjTimeSpentOnDeliveryPerStep
	ObjDistanceDeltaPerStep
	ObjBusyTimeEpisodic
	ObjRemainingDistanceEpisodic
	ObjTimeSpentOnDeliveryEpisodic
	ObjDistanceDeltaEpisodic
	ObjTimeSpentOnDeliveryPerStepWithPenalty
	ObjTimeSpentOnDeliveryEpisodicWithPenalty
)

// distanceBased reports whether an objective's truncation penalty includes
// the extra "-2*max_distance*undelivered" term (§4.8: "for distance-based
// objectives").
func (o Objective) distanceBased() bool {
	switch o {
	case ObjRemainingDistancePerStep, ObjDistanceDeltaPerStep, ObjRemainingDistanceEpisodic, ObjDistanceDeltaEpisodic:
		return true
	default:
		return false
	}
}

// episodic reports whether an objective only produces a non-zero value on
// the terminal (terminated or truncated) step.
func (o Objective) episodic() bool {
	switch o {
	case ObjBusyTimeEpisodic, ObjRemainingDistanceEpisodic, ObjTimeSpentOnDeliveryEpisodic, ObjDistanceDeltaEpisodic, ObjTimeSpentOnDeliveryEpisodicWithPenalty:
		return true
	default:
		return false
	}
}

// Config is everything Reset needs to build a fresh simulation. The
// scenario loader (component 13) is responsible for turning a JSON scenario
// file into one of these; tests and the CLI bench tool can also build one
// directly.
type Config struct {
	Seed int64

	GridSize    int
	MaxTimeStep int64

	Establishments generators.EstablishmentSpec
	Drivers        generators.DriverSpec
	Arrivals       generators.ArrivalSpec

	Objective Objective
}
