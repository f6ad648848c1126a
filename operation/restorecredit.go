package operation

import (
	"github.com/fibula-mmo/fibula/combat"
	"github.com/fibula-mmo/fibula/creature"
	"github.com/fibula-mmo/fibula/sched"
)

// RestoreCredit regenerates one credit. While the pool is not full it
// schedules the next restoration, with a delay derived from the speed the
// combatant has at that moment.
type RestoreCredit struct {
	*Base

	combatant  *creature.Combatant
	creditType combat.CreditType
}

// NewRestoreCredit creates a RestoreCredit. Regeneration is not an action
// of the combatant, so stopping its actions does not cancel it.
func NewRestoreCredit(
	c *creature.Combatant,
	t combat.CreditType,
) *RestoreCredit {
	return &RestoreCredit{
		Base:       NewBase(c.ID(), false, combat.ExhaustionNone, 0),
		combatant:  c,
		creditType: t,
	}
}

// CreditType returns the type of credit restored.
func (op *RestoreCredit) CreditType() combat.CreditType {
	return op.creditType
}

// Execute restores the credit.
func (op *RestoreCredit) Execute(ctx sched.EventContext) error {
	return execute(ctx, op, op.perform)
}

func (op *RestoreCredit) perform(ctx Context) error {
	pool := op.combatant.Credits()

	continued := false
	defer func() {
		if !continued {
			pool.EndRestoration(op.creditType)
		}
	}()

	pool.Restore(op.creditType, 1)

	if pool.Credits(op.creditType) >= pool.Max(op.creditType) {
		return nil
	}

	continued = scheduleNextRestoration(ctx, op.combatant, op.creditType)

	return nil
}

// scheduleRestoration starts the restoration chain of t unless one is
// already running.
func scheduleRestoration(
	ctx Context,
	c *creature.Combatant,
	t combat.CreditType,
) {
	if !c.Credits().BeginRestoration(t) {
		return
	}

	scheduleNextRestoration(ctx, c, t)
}

// scheduleNextRestoration reports whether the chain goes on. The chain is
// ended when it does not.
func scheduleNextRestoration(
	ctx Context,
	c *creature.Combatant,
	t combat.CreditType,
) (continued bool) {
	defer func() {
		if !continued {
			c.Credits().EndRestoration(t)
		}
	}()

	delay := combat.RestoreDelay(ctx.CombatRules().RoundTime(), c.CreditSpeed(t))
	next := ctx.OperationFactory().NewRestoreCredit(c, t)

	if _, err := ctx.Scheduler().Schedule(next, delay); err != nil {
		ctx.Logger().Printf("scheduling %s credit restoration of %d: %v",
			t, c.ID(), err)

		return false
	}

	return true
}
