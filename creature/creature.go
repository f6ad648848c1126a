// Package creature models the entities living in the world: walkers that
// follow walk plans and combatants that pace their attacks with cooldowns
// and credits.
package creature

import (
	"sync"
	"time"

	"github.com/fibula-mmo/fibula/combat"
	"github.com/fibula-mmo/fibula/sched"
	"github.com/fibula-mmo/fibula/world"
)

// Kind tells players and monsters apart.
type Kind int

// Kinds of creatures.
const (
	KindMonster Kind = iota
	KindPlayer
)

func (k Kind) String() string {
	if k == KindPlayer {
		return "Player"
	}

	return "Monster"
}

// MinimumSpeed is the lowest movement speed a creature can have.
const MinimumSpeed = 1

// An Entity is anything the registry can find.
type Entity interface {
	ID() uint32
	Name() string
	Kind() Kind
	Location() world.Location

	// AsCreature returns the underlying creature.
	AsCreature() *Creature
}

// WithExhaustion is implemented by entities that keep a cooldown ledger.
type WithExhaustion interface {
	RemainingCooldown(t combat.ExhaustionType, now sched.VTime) time.Duration
	AddExhaustion(t combat.ExhaustionType, from sched.VTime, d time.Duration)
}

// A Creature is a walking entity.
type Creature struct {
	id   uint32
	name string
	kind Kind

	lock     sync.RWMutex
	location world.Location
	facing   world.Direction
	speed    int
	walkPlan *WalkPlan

	ledger *combat.ExhaustionLedger
}

// NewCreature creates a creature standing at loc, facing south.
func NewCreature(
	id uint32,
	name string,
	kind Kind,
	loc world.Location,
	speed int,
) *Creature {
	return &Creature{
		id:       id,
		name:     name,
		kind:     kind,
		location: loc,
		facing:   world.South,
		speed:    max(speed, MinimumSpeed),
		ledger:   combat.NewExhaustionLedger(),
	}
}

// ID returns the id of the creature.
func (c *Creature) ID() uint32 {
	return c.id
}

// Name returns the name of the creature.
func (c *Creature) Name() string {
	return c.name
}

// Kind returns whether the creature is a player or a monster.
func (c *Creature) Kind() Kind {
	return c.kind
}

// IsPlayer tells if the creature is controlled by a player.
func (c *Creature) IsPlayer() bool {
	return c.kind == KindPlayer
}

// AsCreature returns c.
func (c *Creature) AsCreature() *Creature {
	return c
}

// Location returns where the creature stands.
func (c *Creature) Location() world.Location {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return c.location
}

// MoveTo places the creature at loc and returns where it was.
func (c *Creature) MoveTo(loc world.Location) world.Location {
	c.lock.Lock()
	defer c.lock.Unlock()

	from := c.location
	c.location = loc

	return from
}

// Facing returns the direction the creature looks at.
func (c *Creature) Facing() world.Direction {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return c.facing
}

// TurnToDirection changes the facing and tells if it changed.
func (c *Creature) TurnToDirection(dir world.Direction) bool {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.facing == dir {
		return false
	}

	c.facing = dir

	return true
}

// Speed returns the movement speed.
func (c *Creature) Speed() int {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return c.speed
}

// SetSpeed changes the movement speed. Walks in progress pick up the new
// speed on their next step.
func (c *Creature) SetSpeed(speed int) {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.speed = max(speed, MinimumSpeed)
}

// StepDuration returns how long one step in dir takes over ground of the
// given speed. Diagonal steps take three times as long.
func (c *Creature) StepDuration(dir world.Direction, groundSpeed int) time.Duration {
	speed := c.Speed()
	ms := int64(1000*groundSpeed) / int64(speed)

	if dir.IsDiagonal() {
		ms *= 3
	}

	return time.Duration(ms) * time.Millisecond
}

// RemainingCooldown returns how long until the creature is ready for t.
func (c *Creature) RemainingCooldown(
	t combat.ExhaustionType,
	now sched.VTime,
) time.Duration {
	return c.ledger.RemainingCooldown(t, now)
}

// AddExhaustion charges d to the cooldown bucket t.
func (c *Creature) AddExhaustion(
	t combat.ExhaustionType,
	from sched.VTime,
	d time.Duration,
) {
	c.ledger.AddExhaustion(t, from, d)
}

// Ledger returns the cooldown ledger of the creature.
func (c *Creature) Ledger() *combat.ExhaustionLedger {
	return c.ledger
}

var (
	_ Entity         = (*Creature)(nil)
	_ WithExhaustion = (*Creature)(nil)
)
