package creature

import (
	"slices"

	"github.com/fibula-mmo/fibula/world"
)

// WalkPlanState is the progress of a walk plan.
type WalkPlanState int

// Walk plan states.
const (
	WalkPlanInProgress WalkPlanState = iota
	WalkPlanCompleted
	WalkPlanAborted
)

func (s WalkPlanState) String() string {
	switch s {
	case WalkPlanInProgress:
		return "InProgress"
	case WalkPlanCompleted:
		return "Completed"
	case WalkPlanAborted:
		return "Aborted"
	default:
		return "Unknown"
	}
}

// A WalkPlan is the remaining route of a creature.
type WalkPlan struct {
	State WalkPlanState

	// Waypoints lists the tiles still to step on, next first.
	Waypoints []world.Location

	// Expected is where the creature should be standing if nothing moved it
	// off the route.
	Expected world.Location
}

// GoingAsIntended tells if a creature at current is still on the route.
func (p WalkPlan) GoingAsIntended(current world.Location) bool {
	return p.State == WalkPlanInProgress && current == p.Expected
}

// SetWalkPlan starts a new walk along waypoints, replacing any previous one.
func (c *Creature) SetWalkPlan(waypoints []world.Location) {
	c.lock.Lock()
	defer c.lock.Unlock()

	state := WalkPlanInProgress
	if len(waypoints) == 0 {
		state = WalkPlanCompleted
	}

	c.walkPlan = &WalkPlan{
		State:     state,
		Waypoints: slices.Clone(waypoints),
		Expected:  c.location,
	}
}

// WalkPlan returns a copy of the current walk plan.
func (c *Creature) WalkPlan() (WalkPlan, bool) {
	c.lock.RLock()
	defer c.lock.RUnlock()

	if c.walkPlan == nil {
		return WalkPlan{}, false
	}

	plan := *c.walkPlan
	plan.Waypoints = slices.Clone(plan.Waypoints)

	return plan, true
}

// AbortWalkPlan stops the current walk plan, if any is in progress.
func (c *Creature) AbortWalkPlan() {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.walkPlan != nil && c.walkPlan.State == WalkPlanInProgress {
		c.walkPlan.State = WalkPlanAborted
	}
}

// AdvanceWalkPlan records that the creature reached the next waypoint. It
// returns false if reached is not the next waypoint.
func (c *Creature) AdvanceWalkPlan(reached world.Location) bool {
	c.lock.Lock()
	defer c.lock.Unlock()

	plan := c.walkPlan
	if plan == nil || plan.State != WalkPlanInProgress ||
		len(plan.Waypoints) == 0 || plan.Waypoints[0] != reached {
		return false
	}

	plan.Waypoints = plan.Waypoints[1:]
	plan.Expected = reached

	if len(plan.Waypoints) == 0 {
		plan.State = WalkPlanCompleted
	}

	return true
}
