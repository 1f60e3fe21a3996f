package location

import (
	"testing"

	"deliverysim/internal/simrand"
	"deliverysim/internal/types"
)

func TestDistanceIsChebyshev(t *testing.T) {
	m := NewMap(50)
	cases := []struct {
		a, b types.Point
		want int
	}{
		{types.Point{X: 0, Y: 0}, types.Point{X: 3, Y: 4}, 4},
		{types.Point{X: 0, Y: 0}, types.Point{X: 5, Y: 0}, 5},
		{types.Point{X: 2, Y: 2}, types.Point{X: 2, Y: 2}, 0},
		{types.Point{X: -1, Y: -1}, types.Point{X: 2, Y: 2}, 3},
	}
	for _, tc := range cases {
		got := m.Distance(tc.a, tc.b)
		if got != tc.want {
			t.Errorf("Distance(%v,%v) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestEstimatedTimeRoundsUp(t *testing.T) {
	m := NewMap(50)
	a := types.Point{X: 0, Y: 0}
	b := types.Point{X: 5, Y: 0}
	got := m.EstimatedTime(a, b, 2.0)
	if got != 3 {
		t.Fatalf("EstimatedTime = %d, want 3 (ceil(5/2))", got)
	}
	if m.EstimatedTime(a, a, 2.0) != 0 {
		t.Fatalf("EstimatedTime for identical points should be 0")
	}
}

func TestMaxDistance(t *testing.T) {
	m := NewMap(20)
	if m.MaxDistance() != 19 {
		t.Fatalf("MaxDistance = %d, want 19", m.MaxDistance())
	}
}

func TestRandomPointWithinBounds(t *testing.T) {
	m := NewMap(10)
	rng := simrand.New(1)
	for i := 0; i < 200; i++ {
		p := m.RandomPoint(rng)
		if p.X < 0 || p.X >= 10 || p.Y < 0 || p.Y >= 10 {
			t.Fatalf("RandomPoint out of bounds: %v", p)
		}
	}
}

func TestRandomPointNearClampsToGrid(t *testing.T) {
	m := NewMap(10)
	rng := simrand.New(2)
	centre := types.Point{X: 0, Y: 0}
	for i := 0; i < 200; i++ {
		p := m.RandomPointNear(rng, centre, 5)
		if p.X < 0 || p.X >= 10 || p.Y < 0 || p.Y >= 10 {
			t.Fatalf("RandomPointNear out of bounds: %v", p)
		}
	}
}
