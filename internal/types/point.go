package types

// Point is an integer coordinate on the abstract square grid (§3 Coordinate).
// The simulation never touches real-world geographic data; only grid
// indices flow through this type.
type Point struct {
	X, Y int
}

// Capacity is the unit the spec calls "required_capacity": how much of a
// driver's capacity an order's items occupy.
type Capacity int
