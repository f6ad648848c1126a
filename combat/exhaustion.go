// Package combat holds the per-combatant bookkeeping that paces combat:
// cooldown ledgers, regenerating attack and defense credits, and the
// aggregates of the current hostile encounter.
package combat

import (
	"sort"
	"sync"
	"time"

	"github.com/fibula-mmo/fibula/sched"
)

// ExhaustionType selects the cooldown bucket an action debits.
type ExhaustionType int

// Exhaustion types.
const (
	ExhaustionNone ExhaustionType = iota
	ExhaustionPhysicalCombat
	ExhaustionMovement
	ExhaustionAction
)

func (t ExhaustionType) String() string {
	switch t {
	case ExhaustionNone:
		return "None"
	case ExhaustionPhysicalCombat:
		return "PhysicalCombat"
	case ExhaustionMovement:
		return "Movement"
	case ExhaustionAction:
		return "Action"
	default:
		return "Unknown"
	}
}

// LedgerEntry is the exported form of one ledger bucket.
type LedgerEntry struct {
	Type    ExhaustionType
	ReadyAt sched.VTime
}

// An ExhaustionLedger records, per exhaustion type, when the owner is ready
// to act again. It is safe for concurrent use.
type ExhaustionLedger struct {
	lock    sync.Mutex
	readyAt map[ExhaustionType]sched.VTime
}

// NewExhaustionLedger creates an empty ledger.
func NewExhaustionLedger() *ExhaustionLedger {
	return &ExhaustionLedger{
		readyAt: make(map[ExhaustionType]sched.VTime),
	}
}

// RestoreExhaustionLedger creates a ledger from exported entries. Entries
// that have already passed are kept and pruned by the first read.
func RestoreExhaustionLedger(entries []LedgerEntry) *ExhaustionLedger {
	l := NewExhaustionLedger()
	for _, e := range entries {
		if e.ReadyAt > l.readyAt[e.Type] {
			l.readyAt[e.Type] = e.ReadyAt
		}
	}

	return l
}

// RemainingCooldown returns how long until the owner is ready for t. An
// entry that has passed is removed.
func (l *ExhaustionLedger) RemainingCooldown(
	t ExhaustionType,
	now sched.VTime,
) time.Duration {
	l.lock.Lock()
	defer l.lock.Unlock()

	readyAt, ok := l.readyAt[t]
	if !ok {
		return 0
	}

	if readyAt <= now {
		delete(l.readyAt, t)
		return 0
	}

	return readyAt.Sub(now)
}

// AddExhaustion charges d to bucket t starting at from. A bucket that is
// still cooling down past from is extended from its ready-at time instead, so
// costs stack.
func (l *ExhaustionLedger) AddExhaustion(
	t ExhaustionType,
	from sched.VTime,
	d time.Duration,
) {
	if d <= 0 {
		return
	}

	l.lock.Lock()
	defer l.lock.Unlock()

	start := from
	if readyAt, ok := l.readyAt[t]; ok && readyAt > from {
		start = readyAt
	}

	l.readyAt[t] = start.Add(d)
}

// Entries exports the ledger, ordered by type.
func (l *ExhaustionLedger) Entries() []LedgerEntry {
	l.lock.Lock()
	defer l.lock.Unlock()

	entries := make([]LedgerEntry, 0, len(l.readyAt))
	for t, readyAt := range l.readyAt {
		entries = append(entries, LedgerEntry{Type: t, ReadyAt: readyAt})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Type < entries[j].Type
	})

	return entries
}
