package operation

import (
	"github.com/fibula-mmo/fibula/combat"
	"github.com/fibula-mmo/fibula/creature"
	"github.com/fibula-mmo/fibula/notification"
	"github.com/fibula-mmo/fibula/sched"
	"github.com/fibula-mmo/fibula/world"
)

// Movement is a single step of a creature onto an adjacent tile. Its cost is
// the time the step takes.
type Movement struct {
	*Base

	creature *creature.Creature
	to       world.Location
}

// NewMovement creates a Movement of c onto to.
func NewMovement(c *creature.Creature, to world.Location) *Movement {
	return &Movement{
		Base:     NewBase(c.ID(), true, combat.ExhaustionMovement, 0),
		creature: c,
		to:       to,
	}
}

// Destination returns the tile the step leads to.
func (op *Movement) Destination() world.Location {
	return op.to
}

// Execute performs the step.
func (op *Movement) Execute(ctx sched.EventContext) error {
	return execute(ctx, op, op.perform)
}

func (op *Movement) perform(ctx Context) error {
	from := op.creature.Location()
	tile, found := ctx.Map().TileAt(op.to)
	if !found || !tile.IsWalkable() || !from.IsAdjacentTo(op.to) {
		op.creature.AbortWalkPlan()
		op.SetExhaustionCost(0)
		return nil
	}

	dir, _ := from.DirectionTo(op.to)
	op.SetExhaustionCost(op.creature.StepDuration(dir, groundSpeedAt(ctx, from)))

	op.creature.MoveTo(op.to)
	op.creature.TurnToDirection(dir)
	op.creature.AdvanceWalkPlan(op.to)

	finder := ctx.CreatureFinder()
	scheduleNotification(ctx, notification.CreatureMoved{
		CreatureID: op.creature.ID(),
		From:       from,
		To:         op.to,
	}, func() []uint32 {
		return mergeIDs(
			entityIDs(finder.PlayersThatCanSee(from)),
			entityIDs(finder.PlayersThatCanSee(op.to)))
	})

	op.expediteAttacksInRange(ctx)

	return nil
}

// expediteAttacksInRange brings forward the pending attacks that the step
// put in range, both the mover's and those aimed at the mover.
func (op *Movement) expediteAttacksInRange(ctx Context) {
	entity, found := ctx.CreatureFinder().FindCreature(op.creature.ID())
	if !found {
		return
	}

	mover, ok := entity.(*creature.Combatant)
	if !ok {
		return
	}

	requestors := append([]uint32{mover.ID()}, mover.AttackedBy()...)
	for _, requestorID := range requestors {
		pending := ctx.Scheduler().Find(
			sched.RequestedBy(requestorID, AutoAttackKind))

		for _, entry := range pending {
			attack := entry.Event.(*AutoAttack)
			if attack.attacker == nil || attack.target == nil {
				continue
			}

			if ctx.CombatRules().InRange(attack.attacker, attack.target) {
				ctx.Scheduler().Expedite(attack.ID())
			}
		}
	}
}

func mergeIDs(a, b []uint32) []uint32 {
	seen := make(map[uint32]bool, len(a)+len(b))
	merged := make([]uint32, 0, len(a)+len(b))
	for _, id := range append(a, b...) {
		if !seen[id] {
			seen[id] = true
			merged = append(merged, id)
		}
	}

	return merged
}
