package operation

import (
	"github.com/fibula-mmo/fibula/creature"
	"github.com/fibula-mmo/fibula/sched"
	"github.com/fibula-mmo/fibula/world"
)

// StopAllActions cancels every pending cancellable event requested by
// requestorID and returns how many were cancelled. Credit regeneration is
// not cancellable and keeps running.
func StopAllActions(s sched.Scheduler, requestorID uint32) int {
	return s.Cancel(sched.RequestedBy(requestorID))
}

// CancelAutoWalk aborts the walk plan of c and cancels its pending steps and
// orchestrators.
func CancelAutoWalk(s sched.Scheduler, c *creature.Creature) int {
	c.AbortWalkPlan()

	return s.Cancel(sched.RequestedBy(c.ID(), MovementKind, AutoWalkKind))
}

// StartAutoWalk gives c a new walk plan toward goal and schedules its
// orchestrator. Pending steps of a previous walk are cancelled first. It
// returns false if no path was found.
func StartAutoWalk(
	ctx Context,
	c *creature.Creature,
	goal world.Location,
	maxSteps int,
) bool {
	path, found := ctx.PathFinder().FindPath(c.Location(), goal, maxSteps)
	if !found {
		return false
	}

	CancelAutoWalk(ctx.Scheduler(), c)
	c.SetWalkPlan(path)

	orchestrator := ctx.OperationFactory().NewAutoWalk(c)
	if _, err := ctx.Scheduler().Schedule(orchestrator, 0); err != nil {
		ctx.Logger().Printf("scheduling walk of %d: %v", c.ID(), err)
		return false
	}

	return true
}
