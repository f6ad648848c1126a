package combat

import (
	"maps"
	"slices"
	"sync"
)

// A Session aggregates what happened to a combatant during the current
// hostile encounter. Callers decide when an encounter ends and call Reset.
type Session struct {
	lock          sync.Mutex
	damageTakenBy map[uint32]int
	attackedBy    map[uint32]struct{}
}

// NewSession creates an empty session.
func NewSession() *Session {
	return &Session{
		damageTakenBy: make(map[uint32]int),
		attackedBy:    make(map[uint32]struct{}),
	}
}

// RecordDamage adds damage dealt by attackerID.
func (s *Session) RecordDamage(attackerID uint32, damage int) {
	if damage <= 0 {
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	s.damageTakenBy[attackerID] += damage
}

// DamageTakenBy returns a copy of the cumulative damage per attacker.
func (s *Session) DamageTakenBy() map[uint32]int {
	s.lock.Lock()
	defer s.lock.Unlock()

	return maps.Clone(s.damageTakenBy)
}

// AddAttacker records that attackerID targets the owner.
func (s *Session) AddAttacker(attackerID uint32) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.attackedBy[attackerID] = struct{}{}
}

// RemoveAttacker records that attackerID no longer targets the owner.
func (s *Session) RemoveAttacker(attackerID uint32) {
	s.lock.Lock()
	defer s.lock.Unlock()

	delete(s.attackedBy, attackerID)
}

// AttackedBy returns the ids of the current attackers in ascending order.
func (s *Session) AttackedBy() []uint32 {
	s.lock.Lock()
	defer s.lock.Unlock()

	return slices.Sorted(maps.Keys(s.attackedBy))
}

// Reset clears the session.
func (s *Session) Reset() {
	s.lock.Lock()
	defer s.lock.Unlock()

	clear(s.damageTakenBy)
	clear(s.attackedBy)
}
