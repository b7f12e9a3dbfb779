// Package location holds pure grid geometry helpers.
package location

import (
	"math/rand"

	"sharetaxi/internal/types"
)

// Distance returns the Manhattan distance between two grid points.
func Distance(p, q types.Point) int {
	return abs(p.X-q.X) + abs(p.Y-q.Y)
}

// PathLength sums the distances between consecutive points. Empty and
// single-point paths have length 0.
func PathLength(points []types.Point) int {
	total := 0
	for i := 1; i < len(points); i++ {
		total += Distance(points[i-1], points[i])
	}
	return total
}

// StepToward moves p one unit closer to dest along exactly one axis, x first
// while it is misaligned. It returns p unchanged when p == dest.
func StepToward(p, dest types.Point) types.Point {
	switch {
	case p.X < dest.X:
		p.X++
	case p.X > dest.X:
		p.X--
	case p.Y < dest.Y:
		p.Y++
	case p.Y > dest.Y:
		p.Y--
	}
	return p
}

// Bounds is the inclusive grid extent [0, MaxX] x [0, MaxY].
type Bounds struct {
	MaxX int
	MaxY int
}

func (b Bounds) Contains(p types.Point) bool {
	return p.X >= 0 && p.X <= b.MaxX && p.Y >= 0 && p.Y <= b.MaxY
}

// RandomPoint draws a uniformly distributed point inside b.
func RandomPoint(rng *rand.Rand, b Bounds) types.Point {
	return types.Point{X: rng.Intn(b.MaxX + 1), Y: rng.Intn(b.MaxY + 1)}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
