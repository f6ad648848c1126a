package world

import "sync"

// DefaultGroundSpeed is the ground speed of tiles added without one.
const DefaultGroundSpeed = 150

// A Tile is one square of the map.
type Tile interface {
	Location() Location

	// GroundSpeed is the walking cost of the tile. Higher is slower.
	GroundSpeed() int

	IsWalkable() bool
}

// A Map answers spatial queries.
type Map interface {
	TileAt(loc Location) (Tile, bool)
}

type gridTile struct {
	location    Location
	groundSpeed int
	walkable    bool
}

func (t gridTile) Location() Location { return t.location }
func (t gridTile) GroundSpeed() int   { return t.groundSpeed }
func (t gridTile) IsWalkable() bool   { return t.walkable }

// GridMap is an in-memory Map.
type GridMap struct {
	lock  sync.RWMutex
	tiles map[Location]gridTile
}

// NewGridMap creates an empty GridMap.
func NewGridMap() *GridMap {
	return &GridMap{tiles: make(map[Location]gridTile)}
}

// NewFlatGridMap creates a walkable rectangle of default tiles on floor z,
// spanning [0, width) x [0, height).
func NewFlatGridMap(width, height int, z int8) *GridMap {
	m := NewGridMap()
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			m.SetTile(Location{X: x, Y: y, Z: z}, DefaultGroundSpeed, true)
		}
	}

	return m
}

// SetTile adds or replaces the tile at loc.
func (m *GridMap) SetTile(loc Location, groundSpeed int, walkable bool) {
	if groundSpeed <= 0 {
		groundSpeed = DefaultGroundSpeed
	}

	m.lock.Lock()
	defer m.lock.Unlock()

	m.tiles[loc] = gridTile{
		location:    loc,
		groundSpeed: groundSpeed,
		walkable:    walkable,
	}
}

// TileAt returns the tile at loc.
func (m *GridMap) TileAt(loc Location) (Tile, bool) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	t, ok := m.tiles[loc]
	if !ok {
		return nil, false
	}

	return t, true
}

// NumTiles returns the number of tiles in the map.
func (m *GridMap) NumTiles() int {
	m.lock.RLock()
	defer m.lock.RUnlock()

	return len(m.tiles)
}
