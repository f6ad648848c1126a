package creature

import (
	"fmt"

	"github.com/fibula-mmo/fibula/combat"
)

// CombatantBuilder can build combatants.
type CombatantBuilder struct {
	hitpoints         int
	attackSpeed       float64
	defenseSpeed      float64
	attackRange       int
	maxAttackCredits  int
	maxDefenseCredits int
}

// MakeCombatantBuilder creates a CombatantBuilder with default parameters.
func MakeCombatantBuilder() CombatantBuilder {
	return CombatantBuilder{
		hitpoints:         100,
		attackSpeed:       combat.DefaultAttackSpeed,
		defenseSpeed:      combat.DefaultDefenseSpeed,
		attackRange:       1,
		maxAttackCredits:  combat.DefaultMaximumAttackCredits,
		maxDefenseCredits: combat.DefaultMaximumDefenseCredits,
	}
}

// WithHitpoints sets the maximum hitpoints. Combatants start healthy.
func (b CombatantBuilder) WithHitpoints(hitpoints int) CombatantBuilder {
	b.hitpoints = hitpoints
	return b
}

// WithAttackSpeed sets the base attack speed.
func (b CombatantBuilder) WithAttackSpeed(speed float64) CombatantBuilder {
	b.attackSpeed = speed
	return b
}

// WithDefenseSpeed sets the base defense speed.
func (b CombatantBuilder) WithDefenseSpeed(speed float64) CombatantBuilder {
	b.defenseSpeed = speed
	return b
}

// WithAttackRange sets the attack range in tiles.
func (b CombatantBuilder) WithAttackRange(tiles int) CombatantBuilder {
	b.attackRange = tiles
	return b
}

// WithMaxCredits sets the maximum attack and defense credits.
func (b CombatantBuilder) WithMaxCredits(attack, defense int) CombatantBuilder {
	b.maxAttackCredits = attack
	b.maxDefenseCredits = defense
	return b
}

// Build makes c a combatant.
func (b CombatantBuilder) Build(c *Creature) *Combatant {
	b.parametersMustBeValid(c)

	return &Combatant{
		Creature:         c,
		credits:          combat.NewCreditPool(b.maxAttackCredits, b.maxDefenseCredits),
		session:          combat.NewSession(),
		hitpoints:        b.hitpoints,
		maxHitpoints:     b.hitpoints,
		baseAttackSpeed:  combat.NormalizeSpeed(b.attackSpeed),
		baseDefenseSpeed: combat.NormalizeSpeed(b.defenseSpeed),
		attackRange:      b.attackRange,
	}
}

func (b CombatantBuilder) parametersMustBeValid(c *Creature) {
	if c == nil {
		panic("a combatant needs a creature")
	}

	if b.hitpoints <= 0 {
		panic(fmt.Sprintf("hitpoints must be positive, got %d", b.hitpoints))
	}

	if b.attackRange < 0 {
		panic(fmt.Sprintf("attack range cannot be negative, got %d",
			b.attackRange))
	}

	if b.maxAttackCredits < 0 || b.maxDefenseCredits < 0 {
		panic("maximum credits cannot be negative")
	}
}
