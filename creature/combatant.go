package creature

import (
	"sync"

	"github.com/fibula-mmo/fibula/combat"
)

// A Combatant is a creature that can fight.
type Combatant struct {
	*Creature

	credits *combat.CreditPool
	session *combat.Session

	lock             sync.RWMutex
	target           *Combatant
	hitpoints        int
	maxHitpoints     int
	baseAttackSpeed  float64
	baseDefenseSpeed float64
	attackSpeedBuff  float64
	defenseSpeedBuff float64
	attackRange      int
}

// Credits returns the attack and defense credits.
func (c *Combatant) Credits() *combat.CreditPool {
	return c.credits
}

// Session returns the aggregates of the current encounter.
func (c *Combatant) Session() *combat.Session {
	return c.session
}

// AttackTarget returns who the combatant is attacking, or nil.
func (c *Combatant) AttackTarget() *Combatant {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return c.target
}

// SetAttackTarget changes who the combatant attacks. Passing nil clears the
// target. It returns false if the target did not change.
func (c *Combatant) SetAttackTarget(other *Combatant) bool {
	c.lock.Lock()
	old := c.target
	if old == other {
		c.lock.Unlock()
		return false
	}
	c.target = other
	c.lock.Unlock()

	if old != nil {
		old.session.RemoveAttacker(c.ID())
	}

	if other != nil {
		other.session.AddAttacker(c.ID())
	}

	return true
}

// AttackedBy returns the ids of the combatants targeting this one.
func (c *Combatant) AttackedBy() []uint32 {
	return c.session.AttackedBy()
}

// Hitpoints returns the current hitpoints.
func (c *Combatant) Hitpoints() int {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return c.hitpoints
}

// MaxHitpoints returns the maximum hitpoints.
func (c *Combatant) MaxHitpoints() int {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return c.maxHitpoints
}

// IsDead tells if the combatant has no hitpoints left.
func (c *Combatant) IsDead() bool {
	return c.Hitpoints() == 0
}

// ApplyDamage removes hitpoints, or restores them if damage is negative,
// and returns the amount actually applied. Damage from a non-zero attacker
// is added to the session.
func (c *Combatant) ApplyDamage(damage int, fromID uint32) int {
	c.lock.Lock()
	switch {
	case damage < 0:
		damage = max(damage, c.hitpoints-c.maxHitpoints)
	case damage > 0:
		damage = min(damage, c.hitpoints)
	}
	c.hitpoints -= damage
	c.lock.Unlock()

	if fromID != 0 {
		c.session.RecordDamage(fromID, damage)
	}

	return damage
}

// AttackSpeed returns the base attack speed plus buffs.
func (c *Combatant) AttackSpeed() float64 {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return c.baseAttackSpeed + c.attackSpeedBuff
}

// DefenseSpeed returns the base defense speed plus buffs.
func (c *Combatant) DefenseSpeed() float64 {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return c.baseDefenseSpeed + c.defenseSpeedBuff
}

// CreditSpeed returns the speed that regenerates credits of type t.
func (c *Combatant) CreditSpeed(t combat.CreditType) float64 {
	if t == combat.CreditDefense {
		return c.DefenseSpeed()
	}

	return c.AttackSpeed()
}

// IncreaseAttackSpeed buffs the attack speed, up to the maximum speed.
func (c *Combatant) IncreaseAttackSpeed(amount float64) {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.attackSpeedBuff = min(
		combat.MaximumCombatSpeed-c.baseAttackSpeed,
		c.attackSpeedBuff+amount)
}

// DecreaseAttackSpeed removes attack speed buffs.
func (c *Combatant) DecreaseAttackSpeed(amount float64) {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.attackSpeedBuff = max(0, c.attackSpeedBuff-amount)
}

// IncreaseDefenseSpeed buffs the defense speed, up to the maximum speed.
func (c *Combatant) IncreaseDefenseSpeed(amount float64) {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.defenseSpeedBuff = min(
		combat.MaximumCombatSpeed-c.baseDefenseSpeed,
		c.defenseSpeedBuff+amount)
}

// DecreaseDefenseSpeed removes defense speed buffs.
func (c *Combatant) DecreaseDefenseSpeed(amount float64) {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.defenseSpeedBuff = max(0, c.defenseSpeedBuff-amount)
}

// AttackRange returns how far, in tiles, the combatant reaches.
func (c *Combatant) AttackRange() int {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return c.attackRange
}
