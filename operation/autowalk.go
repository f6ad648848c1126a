package operation

import (
	"github.com/fibula-mmo/fibula/combat"
	"github.com/fibula-mmo/fibula/creature"
	"github.com/fibula-mmo/fibula/sched"
	"github.com/fibula-mmo/fibula/world"
)

// AutoWalkOrchestrator keeps a walk plan going. Every cycle it schedules the
// next step and repeats after the time that step takes. It stops repeating
// once the plan is finished, aborted or derailed.
type AutoWalkOrchestrator struct {
	*Base

	creature *creature.Creature
}

// NewAutoWalkOrchestrator creates an AutoWalkOrchestrator for c.
func NewAutoWalkOrchestrator(c *creature.Creature) *AutoWalkOrchestrator {
	return &AutoWalkOrchestrator{
		Base:     NewBase(c.ID(), true, combat.ExhaustionNone, 0),
		creature: c,
	}
}

// Execute schedules the next step.
func (op *AutoWalkOrchestrator) Execute(ctx sched.EventContext) error {
	return execute(ctx, op, op.perform)
}

func (op *AutoWalkOrchestrator) perform(ctx Context) error {
	op.SetRepeatAfter(0)

	current := op.creature.Location()
	plan, ok := op.creature.WalkPlan()
	if !ok || !plan.GoingAsIntended(current) || len(plan.Waypoints) == 0 {
		return nil
	}

	next := plan.Waypoints[0]
	step := ctx.OperationFactory().NewMovement(op.creature, next)
	delay := op.creature.RemainingCooldown(
		step.ExhaustionType(), ctx.Scheduler().CurrentTime())

	if _, err := ctx.Scheduler().Schedule(step, delay); err != nil {
		return err
	}

	dir, _ := current.DirectionTo(next)
	op.SetRepeatAfter(op.creature.StepDuration(dir, groundSpeedAt(ctx, current)))

	return nil
}

func groundSpeedAt(ctx Context, loc world.Location) int {
	tile, ok := ctx.Map().TileAt(loc)
	if !ok {
		return world.DefaultGroundSpeed
	}

	return tile.GroundSpeed()
}
