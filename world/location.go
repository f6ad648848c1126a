// Package world describes where things are: locations on a tiled map,
// directions between them, and the map and pathfinding contracts a host
// provides.
package world

import "fmt"

// Location is a tile coordinate. Z is the floor.
type Location struct {
	X, Y int
	Z    int8
}

func (l Location) String() string {
	return fmt.Sprintf("[%d, %d, %d]", l.X, l.Y, l.Z)
}

// LocationDiff is the component-wise difference between two locations.
type LocationDiff struct {
	X, Y, Z int
}

// Sub returns l-other.
func (l Location) Sub(other Location) LocationDiff {
	return LocationDiff{
		X: l.X - other.X,
		Y: l.Y - other.Y,
		Z: int(l.Z) - int(other.Z),
	}
}

// MaxValueIn2D returns the larger of the absolute X and Y differences.
func (d LocationDiff) MaxValueIn2D() int {
	return max(abs(d.X), abs(d.Y))
}

// Translate returns the location one tile away in direction dir.
func (l Location) Translate(dir Direction) Location {
	dx, dy := dir.Delta()
	return Location{X: l.X + dx, Y: l.Y + dy, Z: l.Z}
}

// IsAdjacentTo tells if other is one of the eight neighbours of l on the same
// floor.
func (l Location) IsAdjacentTo(other Location) bool {
	d := other.Sub(l)
	return d.Z == 0 && d.MaxValueIn2D() == 1
}

// DirectionTo returns the direction from l toward other. It returns false
// when both share the same X and Y.
func (l Location) DirectionTo(other Location) (Direction, bool) {
	d := other.Sub(l)
	dx, dy := sign(d.X), sign(d.Y)

	for dir, delta := range directionDeltas {
		if delta[0] == dx && delta[1] == dy {
			return Direction(dir), true
		}
	}

	return North, false
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	default:
		return 0
	}
}
