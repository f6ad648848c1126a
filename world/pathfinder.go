package world

// A PathFinder plans walks.
type PathFinder interface {
	// FindPath returns the waypoints leading from one location to another,
	// excluding the start. The second result is false when the goal cannot be
	// reached within maxSteps.
	FindPath(from, to Location, maxSteps int) ([]Location, bool)
}

// GreedyPathFinder steps toward the goal, trying the direct direction first
// and then the ones next to it. It never revisits a tile, so it gives up in
// dead ends instead of looping.
type GreedyPathFinder struct {
	Map Map
}

// NewGreedyPathFinder creates a GreedyPathFinder over m.
func NewGreedyPathFinder(m Map) *GreedyPathFinder {
	return &GreedyPathFinder{Map: m}
}

// FindPath implements PathFinder.
func (f *GreedyPathFinder) FindPath(
	from, to Location,
	maxSteps int,
) ([]Location, bool) {
	if from.Z != to.Z {
		return nil, false
	}

	path := make([]Location, 0)
	visited := map[Location]bool{from: true}
	current := from

	for step := 0; step < maxSteps; step++ {
		if current == to {
			return path, true
		}

		next, ok := f.nextStep(current, to, visited)
		if !ok {
			return nil, false
		}

		visited[next] = true
		path = append(path, next)
		current = next
	}

	if current == to {
		return path, true
	}

	return nil, false
}

func (f *GreedyPathFinder) nextStep(
	current, goal Location,
	visited map[Location]bool,
) (Location, bool) {
	dir, _ := current.DirectionTo(goal)

	best := Location{}
	bestDist := -1
	for _, candidate := range candidatesAround(dir) {
		loc := current.Translate(candidate)
		if visited[loc] || !f.walkable(loc) {
			continue
		}

		dist := goal.Sub(loc).MaxValueIn2D()
		if bestDist < 0 || dist < bestDist {
			best, bestDist = loc, dist
		}
	}

	return best, bestDist >= 0
}

func (f *GreedyPathFinder) walkable(loc Location) bool {
	tile, ok := f.Map.TileAt(loc)
	return ok && tile.IsWalkable()
}

// candidatesAround lists every direction, dir first, so that ties prefer
// heading straight at the goal.
func candidatesAround(dir Direction) []Direction {
	order := []Direction{dir}
	for _, d := range []Direction{
		North, East, South, West, NorthEast, SouthEast, SouthWest, NorthWest,
	} {
		if d != dir {
			order = append(order, d)
		}
	}

	return order
}
