// README: Establishment entity (component 5/7, §3 "Establishment"). Grounded
// on the teacher's small value-object model files (e.g. order/model.go's
// Order struct) — a plain struct plus a constructor, no behaviour.
package establishment

import (
	"deliverysim/internal/modules/order"
	"deliverysim/internal/types"
)

// Catalog is the fixed list of items an establishment can produce. Orders
// draw two random items from it (§4.2).
type Catalog []order.Item

// Establishment is immutable after construction; its free prep slots and
// in-preparation orders are tracked by establishment.Service, not here.
type Establishment struct {
	ID                         types.ID
	Position                   types.Point
	Catalog                    Catalog
	ProductionCapacity         int
	OperatingRadius            float64
	MinPrepTime                int64
	MaxPrepTime                int64
	PrepTimeRate               float64
	PercentageAllocationDriver float64
}

func New(id types.ID, pos types.Point, catalog Catalog, productionCapacity int, operatingRadius float64, minPrep, maxPrep int64, prepRate, pctAllocationDriver float64) *Establishment {
	return &Establishment{
		ID:                         id,
		Position:                   pos,
		Catalog:                    catalog,
		ProductionCapacity:         productionCapacity,
		OperatingRadius:            operatingRadius,
		MinPrepTime:                minPrep,
		MaxPrepTime:                maxPrep,
		PrepTimeRate:               prepRate,
		PercentageAllocationDriver: pctAllocationDriver,
	}
}
