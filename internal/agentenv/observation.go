// README: Observation assembly (§4.8). Grounded on the original's
// get_observation dict-of-arrays shape, expressed here as a typed struct
// instead of a normalized float array — normalization to [-1,1] is left to
// the HTTP/ML-framework boundary (component 14), which knows the
// per-field min/max the spec requires ("all normalisable ... via known
// min/max").
package agentenv

import (
	"deliverysim/internal/modules/driver"
	"deliverysim/internal/types"
)

// DriverObservation is the per-driver slice of §4.8's observation: "per
// driver: coordinate, estimated remaining busy time, status, queue size,
// velocity".
type DriverObservation struct {
	ID                  types.ID
	Position            types.Point
	EstimatedBusyTime   int64
	Status              driver.Status
	QueueSize           int
	MovementRate        float64
	EstimatedCompletion int64 // if the current order were assigned to this driver
}

// CurrentOrderObservation is §4.8's "current order" fields.
type CurrentOrderObservation struct {
	OrderID               types.ID
	EstablishmentPosition types.Point
	CustomerPosition      types.Point
	EstimatedReadyTime    int64
}

// Observation is the full structured dictionary returned by Reset/Step
// (§4.8).
type Observation struct {
	Drivers      []DriverObservation
	CurrentOrder CurrentOrderObservation
	Now          int64
}

func (e *Env) observation() Observation {
	obs := Observation{Now: e.k.Now()}

	var curEst, curCust types.Point
	var readyTime int64
	if e.currentOrderID != "" {
		curEst = e.EstablishmentPosition(e.currentOrderID)
		curCust = e.CustomerPosition(e.currentOrderID)
		readyTime = e.EstimatedReadyTime(e.currentOrderID)
	}
	obs.CurrentOrder = CurrentOrderObservation{
		OrderID:               e.currentOrderID,
		EstablishmentPosition: curEst,
		CustomerPosition:      curCust,
		EstimatedReadyTime:    readyTime,
	}

	obs.Drivers = make([]DriverObservation, len(e.drivers))
	for i, d := range e.drivers {
		busy, _ := e.drvSvc.RemainingRouteEstimate(d.ID)
		completion := int64(0)
		if e.currentOrderID != "" {
			completion = e.estimatedCompletionIfAssigned(d, curEst, curCust)
		}
		obs.Drivers[i] = DriverObservation{
			ID:                  d.ID,
			Position:            d.Position,
			EstimatedBusyTime:   busy,
			Status:              d.Status,
			QueueSize:           e.drvSvc.QueueSize(d.ID),
			MovementRate:        d.MovementRate,
			EstimatedCompletion: completion,
		}
	}
	return obs
}

// estimatedCompletionIfAssigned estimates how long driver d would take to
// deliver the current order if chosen, on top of its existing remaining
// route: tail -> establishment -> customer (§4.8's per-driver estimated
// completion time field, used by observations and by simbench's lowest_cost
// ranking; the pricing cost function does not use it).
func (e *Env) estimatedCompletionIfAssigned(d *driver.Driver, estPos, custPos types.Point) int64 {
	busy, _ := e.drvSvc.RemainingRouteEstimate(d.ID)
	from := d.Position
	if d.CurrentRoute != nil && len(d.CurrentRoute.Segments) > 0 {
		from = d.CurrentRoute.Segments[len(d.CurrentRoute.Segments)-1].Coordinate
	}
	toPickup := e.m.EstimatedTime(from, estPos, d.MovementRate)
	toDelivery := e.m.EstimatedTime(estPos, custPos, d.MovementRate)
	return busy + toPickup + toDelivery
}
