package operation

import (
	"math/rand"
	"sync"
	"time"

	"github.com/fibula-mmo/fibula/creature"
)

// DefaultCombatRules hit three times out of four for 1 to 10 damage; the
// fourth blow hits armor.
type DefaultCombatRules struct {
	roundTime time.Duration

	lock sync.Mutex
	rng  *rand.Rand
}

// NewDefaultCombatRules creates DefaultCombatRules with a seeded random
// source, so that fights replay identically.
func NewDefaultCombatRules(
	roundTime time.Duration,
	seed int64,
) *DefaultCombatRules {
	return &DefaultCombatRules{
		roundTime: roundTime,
		rng:       rand.New(rand.NewSource(seed)),
	}
}

// RoundTime implements CombatRules.
func (r *DefaultCombatRules) RoundTime() time.Duration {
	return r.roundTime
}

// InRange implements CombatRules.
func (r *DefaultCombatRules) InRange(attacker, target *creature.Combatant) bool {
	d := target.Location().Sub(attacker.Location())
	return d.Z == 0 && d.MaxValueIn2D() <= attacker.AttackRange()
}

// RollDamage implements CombatRules.
func (r *DefaultCombatRules) RollDamage(
	_, _ *creature.Combatant,
) (int, bool) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.rng.Intn(4) > 0 {
		return r.rng.Intn(10) + 1, false
	}

	return 0, true
}
