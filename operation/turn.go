package operation

import (
	"github.com/fibula-mmo/fibula/combat"
	"github.com/fibula-mmo/fibula/creature"
	"github.com/fibula-mmo/fibula/notification"
	"github.com/fibula-mmo/fibula/sched"
	"github.com/fibula-mmo/fibula/world"
)

// Turn makes a creature face a direction. It costs nothing.
type Turn struct {
	*Base

	creature  *creature.Creature
	direction world.Direction
}

// NewTurn creates a Turn of c toward dir.
func NewTurn(c *creature.Creature, dir world.Direction) *Turn {
	return &Turn{
		Base:      NewBase(c.ID(), true, combat.ExhaustionNone, 0),
		creature:  c,
		direction: dir,
	}
}

// Direction returns the direction to face.
func (op *Turn) Direction() world.Direction {
	return op.direction
}

// Execute turns the creature.
func (op *Turn) Execute(ctx sched.EventContext) error {
	return execute(ctx, op, op.perform)
}

func (op *Turn) perform(ctx Context) error {
	if !op.creature.TurnToDirection(op.direction) {
		return nil
	}

	loc := op.creature.Location()
	finder := ctx.CreatureFinder()
	scheduleNotification(ctx, notification.CreatureTurned{
		CreatureID: op.creature.ID(),
		Direction:  op.direction,
	}, func() []uint32 {
		return entityIDs(finder.PlayersThatCanSee(loc))
	})

	return nil
}
