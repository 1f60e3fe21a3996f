// README: Dynamic route reordering (component 9, §4.6 — "the hardest
// subcomponent"). Grounded on the original_source's
// DynamicRouteDriver.should_collect_next_before_delivery (a percentage-
// delay-based feasibility gate invoked from picked_up), generalised to the
// spec's window-based feasibility test: instead of one percentage check
// against the *current* order's delivery time, every already-picked-up
// order gets its own tolerance window at pickup time, and a candidate
// insertion must respect every one of them, not just the most recent.
package driver

import (
	"context"

	"deliverysim/internal/eventlog"
	"deliverysim/internal/types"
)

// ReorderRecord is an evaluation-mode log entry (§4.6: "Reordering records
// ... each reorder logs (time, order_id, estimated_time_saved,
// estimated_distance_saved, segment_type)").
type ReorderRecord struct {
	Time                   int64
	OrderID                types.ID
	EstimatedTimeSaved     int64
	EstimatedDistanceSaved int64
	SegmentType            SegmentType
	Successful             bool
}

// ReorderStats aggregates the counters described in §4.6.
type ReorderStats struct {
	Total        int
	Successful   int
	Failed       int
	TotalSaved   int64
	TotalLost    int64
}

func (s *Service) EnableReorderRecording() { s.recordReorders = true }

// maybeReorder is invoked after completing a pickup or a delivery (§4.6
// trigger points): if the driver still has spare capacity and at least one
// order in its list has not been picked up yet, it attempts an
// opportunistic insertion of that next order's pickup ahead of the
// in-progress delivery tail.
func (s *Service) maybeReorder(ctx context.Context, d *Driver) {
	if d.CurrentLoad >= d.Capacity {
		return
	}
	next, nextIdx := s.firstUncollected(d)
	if next == "" {
		return
	}

	collected := s.collectedInOrder(d)
	feasible, estTimeSaved, estDistSaved := s.canCollectNextRespectingWindows(d, next, collected)

	if s.recordReorders {
		s.reorderMu.Lock()
		s.reorderRecords = append(s.reorderRecords, ReorderRecord{
			Time:                   s.k.Now(),
			OrderID:                next,
			EstimatedTimeSaved:     estTimeSaved,
			EstimatedDistanceSaved: estDistSaved,
			SegmentType:            SegmentPickup,
			Successful:             feasible,
		})
		s.reorderMu.Unlock()
	}

	if !feasible {
		return
	}
	s.spliceNextPickupToFront(d, next, nextIdx)
	s.log.Append(s.k.Now(), eventlog.RouteReordered, next, d.ID, nil)
}

// firstUncollected returns the first order in the driver's order list that
// has not yet been picked up, and its index within CurrentRoute.Segments
// (the pickup segment for that order).
func (s *Service) firstUncollected(d *Driver) (types.ID, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, oid := range d.OrdersList {
		if d.CollectedOrder[oid] {
			continue
		}
		for i := s.cursor[d.ID]; i < len(d.CurrentRoute.Segments); i++ {
			seg := d.CurrentRoute.Segments[i]
			if seg.Type == SegmentPickup && seg.OrderID == oid {
				return oid, i
			}
		}
	}
	return "", -1
}

// collectedInOrder returns already-picked-up orders in their current
// delivery sequence within the route (§4.6 step 1).
func (s *Service) collectedInOrder(d *Driver) []types.ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []types.ID
	for _, seg := range d.CurrentRoute.Segments {
		if seg.Type == SegmentDelivery && d.CollectedOrder[seg.OrderID] {
			out = append(out, seg.OrderID)
		}
	}
	return out
}

// canCollectNextRespectingWindows simulates moving to next's establishment
// and then delivering every collected order in sequence, requiring every
// one's would-be delivery time to stay within its stored LatestDelivery
// (§4.6 step 3).
func (s *Service) canCollectNextRespectingWindows(d *Driver, next types.ID, collected []types.ID) (bool, int64, int64) {
	now := s.k.Now()
	nextPos := s.lookup.EstablishmentPosition(next)

	travelToNext := s.m.EstimatedTime(d.Position, nextPos, d.MovementRate)
	waitAtPickup := int64(0)
	if readyAt := s.lookup.EstimatedReadyTime(next); readyAt > now+travelToNext {
		waitAtPickup = readyAt - (now + travelToNext)
	}
	cursor := now + travelToNext + waitAtPickup + d.TimeBetweenAcceptAndStartPickingUp

	pos := nextPos
	var totalDetourDistance int64
	for _, oid := range collected {
		custPos := s.lookup.CustomerPosition(oid)
		leg := s.m.EstimatedTime(pos, custPos, d.MovementRate)
		cursor += d.TimeBetweenPickedUpAndStartDelivery + leg
		totalDetourDistance += int64(s.m.Distance(pos, custPos))

		w, ok := d.Windows[oid]
		if ok && cursor > w.LatestDelivery {
			return false, 0, 0
		}
		pos = custPos
	}

	// Compare against the counterfactual of delivering first, then
	// picking up `next` (§4.6: "comparing two counterfactual sequences").
	var directDeliveryTime int64
	directPos := d.Position
	for _, oid := range collected {
		custPos := s.lookup.CustomerPosition(oid)
		directDeliveryTime += d.TimeBetweenPickedUpAndStartDelivery + s.m.EstimatedTime(directPos, custPos, d.MovementRate)
		directPos = custPos
	}
	directDeliveryTime += s.m.EstimatedTime(directPos, nextPos, d.MovementRate)

	reorderedTime := cursor - now
	timeSaved := directDeliveryTime - reorderedTime
	return true, timeSaved, 0 - totalDetourDistance
}

// spliceNextPickupToFront moves next's pickup segment to the front of the
// route, ahead of whatever delivery segment the driver is currently
// heading to; next's delivery segment stays at its existing tail position
// (§4.6 step 4).
func (s *Service) spliceNextPickupToFront(d *Driver, next types.ID, nextIdx int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	segs := d.CurrentRoute.Segments
	if nextIdx < 0 || nextIdx >= len(segs) {
		return
	}
	pickupSeg := segs[nextIdx]

	withoutPickup := make([]RouteSegment, 0, len(segs)-1)
	withoutPickup = append(withoutPickup, segs[:nextIdx]...)
	withoutPickup = append(withoutPickup, segs[nextIdx+1:]...)

	cursor := s.cursorFor(d)
	insertAt := cursor
	if insertAt > len(withoutPickup) {
		insertAt = len(withoutPickup)
	}
	reordered := make([]RouteSegment, 0, len(segs))
	reordered = append(reordered, withoutPickup[:insertAt]...)
	reordered = append(reordered, pickupSeg)
	reordered = append(reordered, withoutPickup[insertAt:]...)
	d.CurrentRoute.Segments = reordered
}

func (s *Service) cursorFor(d *Driver) int {
	for id, dr := range s.drivers {
		if dr == d {
			return s.cursor[id]
		}
	}
	return 0
}

// ReorderRecords returns a snapshot of recorded reorder attempts
// (evaluation mode only, §4.6).
func (s *Service) ReorderRecords() []ReorderRecord {
	s.reorderMu.Lock()
	defer s.reorderMu.Unlock()
	out := make([]ReorderRecord, len(s.reorderRecords))
	copy(out, s.reorderRecords)
	return out
}

// Stats aggregates the reorder counters described in §4.6.
func (s *Service) Stats() ReorderStats {
	s.reorderMu.Lock()
	defer s.reorderMu.Unlock()
	var st ReorderStats
	for _, r := range s.reorderRecords {
		st.Total++
		if r.Successful && r.EstimatedTimeSaved > 0 {
			st.Successful++
			st.TotalSaved += r.EstimatedTimeSaved
		} else {
			st.Failed++
			st.TotalLost += r.EstimatedTimeSaved
		}
	}
	return st
}
