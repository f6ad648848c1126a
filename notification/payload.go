package notification

import "github.com/fibula-mmo/fibula/world"

// A Payload is the content of a notification.
type Payload interface {
	Kind() string
}

// CreatureTurned tells that a creature now faces another direction.
type CreatureTurned struct {
	CreatureID uint32
	Direction  world.Direction
}

// Kind implements Payload.
func (CreatureTurned) Kind() string { return "CreatureTurned" }

// CreatureMoved tells that a creature stepped from one tile to another.
type CreatureMoved struct {
	CreatureID uint32
	From, To   world.Location
}

// Kind implements Payload.
func (CreatureMoved) Kind() string { return "CreatureMoved" }

// AttackResolved tells the outcome of one attack.
type AttackResolved struct {
	AttackerID uint32
	TargetID   uint32
	Damage     int

	// Shielded is set when the target still had defense credits and blocked
	// the blow entirely.
	Shielded bool
}

// Kind implements Payload.
func (AttackResolved) Kind() string { return "AttackResolved" }

// TargetSquare asks a player's client to mark who is attacking it.
type TargetSquare struct {
	PlayerID   uint32
	AttackerID uint32
}

// Kind implements Payload.
func (TargetSquare) Kind() string { return "TargetSquare" }
