// README: Opaque identifiers shared across simulation modules.
package types

import (
	"fmt"
	"sync/atomic"
)

// ID identifies any simulation entity (order, driver, establishment, customer,
// route, segment). IDs are opaque strings so that arenas can key maps on them
// without entities holding pointers into each other.
type ID string

// Counter issues deterministic, monotonically increasing IDs for one entity
// kind. Using a counter instead of crypto/rand keeps replay under a fixed
// seed reproducible without threading the RNG through ID generation.
type Counter struct {
	prefix string
	next   int64
}

// NewCounter returns a Counter that mints IDs shaped "<prefix>-<n>".
func NewCounter(prefix string) *Counter {
	return &Counter{prefix: prefix}
}

// Next returns the next ID for this counter's entity kind.
func (c *Counter) Next() ID {
	n := atomic.AddInt64(&c.next, 1)
	return ID(fmt.Sprintf("%s-%d", c.prefix, n))
}
