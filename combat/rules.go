package combat

import "time"

// Pacing defaults.
const (
	DefaultRoundTime    = 2 * time.Second
	DefaultAttackSpeed  = 1.0
	DefaultDefenseSpeed = 2.0

	MinimumCombatSpeed = 0.1
	MaximumCombatSpeed = 5.0

	DefaultMaximumAttackCredits  = 1
	DefaultMaximumDefenseCredits = 2
)

// NormalizeSpeed clamps a combat speed into the allowed range.
func NormalizeSpeed(speed float64) float64 {
	return min(max(speed, MinimumCombatSpeed), MaximumCombatSpeed)
}

// RestoreDelay returns how long it takes to regenerate one credit for a
// combatant of the given speed: the round time divided by the speed, in whole
// milliseconds rounded down.
func RestoreDelay(roundTime time.Duration, speed float64) time.Duration {
	speed = NormalizeSpeed(speed)
	ms := float64(roundTime.Milliseconds()) / speed

	return time.Duration(int64(ms)) * time.Millisecond
}
