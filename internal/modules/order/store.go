// README: In-memory order arena. Grounded on the teacher's order/store.go
// shape (Create/Get/UpdateStatus/AppendEvent) but backed by a mutex-guarded
// map instead of pgxpool: the simulator is a single in-process run with no
// durable state (§1 Non-goals: "no multi-tenant persistence"), and orders
// are referenced by ID everywhere (arena pattern) rather than by pointer,
// so no module holds a direct *Order across a concurrency boundary.
package order

import (
	"context"
	"errors"
	"sync"

	"deliverysim/internal/types"
)

// ErrNotFound is returned when an order id is not present in the arena.
var ErrNotFound = errors.New("order not found")

// ErrConflict is returned by Service transitions when UpdateStatus's
// compare-and-swap finds the order's status changed between read and write (optimistic concurrency, §5: driver state is
// mutated only by its own process or the scheduling thread, but two
// drivers racing to accept the same READY order must still be rejected
// down to exactly one winner).
var ErrConflict = errors.New("order state conflict")

type Store struct {
	mu     sync.Mutex
	orders map[types.ID]*Order
}

func NewStore() *Store {
	return &Store{orders: make(map[types.ID]*Order)}
}

func (s *Store) Create(ctx context.Context, o *Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *o
	s.orders[o.ID] = &cp
	return nil
}

// Get returns a copy of the order so callers can't mutate arena state
// outside of UpdateStatus.
func (s *Store) Get(ctx context.Context, id types.ID) (*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *o
	return &cp, nil
}

// UpdateStatus performs a compare-and-swap on status: it only applies if
// the order's current status still equals expectedFrom, mirroring the
// teacher's status_version CAS but keyed on the status itself since this
// state machine has no independent revision counter.
func (s *Store) UpdateStatus(ctx context.Context, id types.ID, expectedFrom, to Status, mutate func(*Order)) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return false, ErrNotFound
	}
	if o.Status != expectedFrom {
		return false, nil
	}
	o.Status = to
	if mutate != nil {
		mutate(o)
	}
	return true, nil
}

// All returns a snapshot of every order in the arena, for observation
// assembly and termination checks.
func (s *Store) All() []*Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Order, 0, len(s.orders))
	for _, o := range s.orders {
		cp := *o
		out = append(out, &cp)
	}
	return out
}

// CountStatus returns how many orders currently hold the given status.
func (s *Store) CountStatus(status Status) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, o := range s.orders {
		if o.Status == status {
			n++
		}
	}
	return n
}

// CountAtLeast returns how many orders have reached at least the given
// status. No code in the module calls it; the reward and termination
// checks count delivered orders with CountStatus.
func (s *Store) CountAtLeast(status Status) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, o := range s.orders {
		if o.Status >= status {
			n++
		}
	}
	return n
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}
