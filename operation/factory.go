package operation

import (
	"time"

	"github.com/fibula-mmo/fibula/combat"
	"github.com/fibula-mmo/fibula/creature"
	"github.com/fibula-mmo/fibula/world"
)

// A Factory creates operations.
type Factory interface {
	NewAutoAttack(attacker, target *creature.Combatant) *AutoAttack
	NewRestoreCredit(c *creature.Combatant, t combat.CreditType) *RestoreCredit
	NewAutoWalk(c *creature.Creature) *AutoWalkOrchestrator
	NewMovement(c *creature.Creature, to world.Location) *Movement
	NewTurn(c *creature.Creature, dir world.Direction) *Turn
}

// DefaultFactory creates operations with the default costs. An attack costs
// one combat round.
type DefaultFactory struct {
	// RoundTime is the length of a combat round. Zero means
	// combat.DefaultRoundTime.
	RoundTime time.Duration
}

// NewAutoAttack implements Factory.
func (f DefaultFactory) NewAutoAttack(
	attacker, target *creature.Combatant,
) *AutoAttack {
	round := f.RoundTime
	if round <= 0 {
		round = combat.DefaultRoundTime
	}

	return NewAutoAttack(attacker, target, round)
}

// NewRestoreCredit implements Factory.
func (DefaultFactory) NewRestoreCredit(
	c *creature.Combatant,
	t combat.CreditType,
) *RestoreCredit {
	return NewRestoreCredit(c, t)
}

// NewAutoWalk implements Factory.
func (DefaultFactory) NewAutoWalk(c *creature.Creature) *AutoWalkOrchestrator {
	return NewAutoWalkOrchestrator(c)
}

// NewMovement implements Factory.
func (DefaultFactory) NewMovement(
	c *creature.Creature,
	to world.Location,
) *Movement {
	return NewMovement(c, to)
}

// NewTurn implements Factory.
func (DefaultFactory) NewTurn(c *creature.Creature, dir world.Direction) *Turn {
	return NewTurn(c, dir)
}
