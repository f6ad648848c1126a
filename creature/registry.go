package creature

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/fibula-mmo/fibula/world"
)

// How far a player sees from where it stands.
const (
	ViewRangeX = 8
	ViewRangeY = 6
)

// A Registry keeps the entities of a world by id.
type Registry struct {
	lock     sync.RWMutex
	entities map[uint32]Entity
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{entities: make(map[uint32]Entity)}
}

// Add registers an entity. Ids must be unique.
func (r *Registry) Add(e Entity) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, taken := r.entities[e.ID()]; taken {
		return fmt.Errorf("creature %d is already registered", e.ID())
	}

	r.entities[e.ID()] = e

	return nil
}

// Remove unregisters an entity and tells if it was registered.
func (r *Registry) Remove(id uint32) bool {
	r.lock.Lock()
	defer r.lock.Unlock()

	_, found := r.entities[id]
	delete(r.entities, id)

	return found
}

// FindCreature returns the entity with the given id.
func (r *Registry) FindCreature(id uint32) (Entity, bool) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	e, found := r.entities[id]

	return e, found
}

// FindCombatant returns the combatant with the given id.
func (r *Registry) FindCombatant(id uint32) (*Combatant, bool) {
	e, found := r.FindCreature(id)
	if !found {
		return nil, false
	}

	c, ok := e.(*Combatant)

	return c, ok
}

// All returns every entity, ordered by id.
func (r *Registry) All() []Entity {
	r.lock.RLock()
	defer r.lock.RUnlock()

	ids := slices.Sorted(maps.Keys(r.entities))
	all := make([]Entity, 0, len(ids))
	for _, id := range ids {
		all = append(all, r.entities[id])
	}

	return all
}

// PlayersThatCanSee returns the players whose view covers loc, ordered by
// id.
func (r *Registry) PlayersThatCanSee(loc world.Location) []Entity {
	players := make([]Entity, 0)
	for _, e := range r.All() {
		if e.Kind() != KindPlayer {
			continue
		}

		d := loc.Sub(e.Location())
		if d.Z == 0 && abs(d.X) <= ViewRangeX && abs(d.Y) <= ViewRangeY {
			players = append(players, e)
		}
	}

	return players
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
