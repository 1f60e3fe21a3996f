// README: The abstract square grid the whole simulation moves on (component 2).
// Grounded on the teacher's geo_utils.go (a pure-function distance helper
// module sitting beside a stateful service) but the metric changes: no real
// geographic data exists here (§1 Non-goals), so distance is plain grid
// Chebyshev rather than haversine.
package location

import (
	"math"

	"deliverysim/internal/simrand"
	"deliverysim/internal/types"
)

// Map is immutable after construction (§5 shared-resource policy: "Map is
// read-only after construction").
type Map struct {
	size int
}

// NewMap returns a Map over a size x size grid, coordinates in [0, size).
func NewMap(size int) *Map {
	return &Map{size: size}
}

// Size returns the grid's edge length.
func (m *Map) Size() int { return m.size }

// Distance returns the Chebyshev distance between a and b: the number of
// grid steps a diagonally-capable mover needs, matching per-step movement on
// the grid (§3 Map).
func (m *Map) Distance(a, b types.Point) int {
	dx := abs(a.X - b.X)
	dy := abs(a.Y - b.Y)
	if dx > dy {
		return dx
	}
	return dy
}

// EstimatedTime returns ceil(distance(a,b)/rate), the travel-time estimate
// used throughout §4.3 and §4.6. rate must be positive.
func (m *Map) EstimatedTime(a, b types.Point, rate float64) int64 {
	d := m.Distance(a, b)
	if d == 0 {
		return 0
	}
	return int64(math.Ceil(float64(d) / rate))
}

// MaxDistance returns the greatest possible Chebyshev distance on this grid,
// used to scale the truncation penalty in §4.8's reward objectives.
func (m *Map) MaxDistance() int {
	if m.size == 0 {
		return 0
	}
	return m.size - 1
}

// RandomPoint returns a uniformly sampled coordinate on the grid.
func (m *Map) RandomPoint(rng *simrand.Source) types.Point {
	return types.Point{X: rng.Intn(m.size), Y: rng.Intn(m.size)}
}

// RandomPointNear samples a customer position inside a Gaussian-in-disk
// around centre, truncated to the grid (§4.2 order arrival generator): a
// random bearing and a normally-distributed radius capped at maxRadius.
func (m *Map) RandomPointNear(rng *simrand.Source, centre types.Point, maxRadius float64) types.Point {
	if maxRadius <= 0 {
		return m.clamp(centre)
	}
	r := math.Abs(rng.NormFloat64()) * maxRadius / 3
	if r > maxRadius {
		r = maxRadius
	}
	theta := rng.Float64() * 2 * math.Pi
	p := types.Point{
		X: centre.X + int(math.Round(r*math.Cos(theta))),
		Y: centre.Y + int(math.Round(r*math.Sin(theta))),
	}
	return m.clamp(p)
}

func (m *Map) clamp(p types.Point) types.Point {
	if p.X < 0 {
		p.X = 0
	}
	if p.Y < 0 {
		p.Y = 0
	}
	if p.X >= m.size {
		p.X = m.size - 1
	}
	if p.Y >= m.size {
		p.Y = m.size - 1
	}
	return p
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
