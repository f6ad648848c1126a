package world

// Direction is one of the eight compass directions.
type Direction int

// Directions. The first four are the straight ones.
const (
	North Direction = iota
	East
	South
	West
	NorthEast
	SouthEast
	SouthWest
	NorthWest
)

var directionDeltas = [...][2]int{
	North:     {0, -1},
	East:      {1, 0},
	South:     {0, 1},
	West:      {-1, 0},
	NorthEast: {1, -1},
	SouthEast: {1, 1},
	SouthWest: {-1, 1},
	NorthWest: {-1, -1},
}

var directionNames = [...]string{
	North:     "North",
	East:      "East",
	South:     "South",
	West:      "West",
	NorthEast: "NorthEast",
	SouthEast: "SouthEast",
	SouthWest: "SouthWest",
	NorthWest: "NorthWest",
}

// Delta returns the X and Y step of the direction.
func (d Direction) Delta() (int, int) {
	if d < North || d > NorthWest {
		return 0, 0
	}

	delta := directionDeltas[d]
	return delta[0], delta[1]
}

// IsDiagonal tells if the direction moves along both axes.
func (d Direction) IsDiagonal() bool {
	return d >= NorthEast && d <= NorthWest
}

func (d Direction) String() string {
	if d < North || d > NorthWest {
		return "Unknown"
	}

	return directionNames[d]
}
