// README: Append-only typed event record (component 3).
package eventlog

import (
	"sync"

	"deliverysim/internal/types"
)

// Kind names an event type. Kept as a string enum (rather than an int) so
// that persisted/exported logs stay self-describing.
type Kind string

const (
	CustomerPlacedOrder        Kind = "CustomerPlacedOrder"
	EstablishmentAcceptedOrder Kind = "EstablishmentAcceptedOrder"
	EstablishmentPreparing     Kind = "EstablishmentPreparingOrder"
	OrderReady                 Kind = "OrderReady"
	DriverAcceptedRoute        Kind = "DriverAcceptedRoute"
	DriverAcceptedRouteExt     Kind = "DriverAcceptedRouteExtension"
	DriverPickedUpOrder        Kind = "DriverPickedUpOrder"
	DriverArrivedDelivery      Kind = "DriverArrivedDeliveryLocation"
	DriverDeliveredOrder       Kind = "DriverDeliveredOrder"
	RouteReordered             Kind = "RouteReordered"
)

// Event is one immutable, timestamped record. Fields is a small bag of
// named values specific to the Kind (order id, driver id, estimate...);
// kept generic so new event kinds don't require touching the log itself.
type Event struct {
	Seq      int64
	Time     int64
	Kind     Kind
	OrderID  types.ID
	DriverID types.ID
	Fields   map[string]any
}

// Log is an append-only store of Events, safe for concurrent appends (the
// kernel's cooperative processes run as goroutines and may log from more
// than one at a time during setup/teardown).
type Log struct {
	mu     sync.Mutex
	seq    int64
	events []Event
}

// New returns an empty Log.
func New() *Log {
	return &Log{}
}

// Append records an event at virtual time t and returns the stored copy.
func (l *Log) Append(t int64, kind Kind, orderID, driverID types.ID, fields map[string]any) Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	e := Event{Seq: l.seq, Time: t, Kind: kind, OrderID: orderID, DriverID: driverID, Fields: fields}
	l.events = append(l.events, e)
	return e
}

// All returns a snapshot copy of every recorded event, in append order.
func (l *Log) All() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

// CountKind returns how many events of the given kind were recorded.
func (l *Log) CountKind(kind Kind) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}
