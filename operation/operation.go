// Package operation implements the gameplay actions that run on the
// scheduler: attacks, credit regeneration, walking and turning.
//
// An operation is an event that debits a cooldown bucket of the creature
// that requested it. Operations reach the world only through the Context
// they are executed with.
package operation

import (
	"errors"
	"fmt"
	"reflect"
	"sync/atomic"
	"time"

	"github.com/fibula-mmo/fibula/combat"
	"github.com/fibula-mmo/fibula/creature"
	"github.com/fibula-mmo/fibula/sched"
)

// ErrContextNotSupported is returned when an operation runs in a context
// that is not an operation Context.
var ErrContextNotSupported = errors.New(
	"operation: context is not an operation context")

// An Operation is an event that costs its requestor exhaustion.
type Operation interface {
	sched.Event

	// ExhaustionType selects the cooldown bucket the operation debits.
	ExhaustionType() combat.ExhaustionType

	// ExhaustionCost is charged to the requestor after a successful run.
	// Operations reset it to zero when their effect did not happen.
	ExhaustionCost() time.Duration
}

// Base provides the exhaustion bookkeeping of operations.
type Base struct {
	*sched.EventBase

	exhaustionType combat.ExhaustionType
	cost           atomic.Int64
}

// NewBase creates a new Base.
func NewBase(
	requestorID uint32,
	cancellable bool,
	exhaustionType combat.ExhaustionType,
	cost time.Duration,
) *Base {
	b := &Base{
		EventBase:      sched.NewEventBase(requestorID, cancellable),
		exhaustionType: exhaustionType,
	}
	b.cost.Store(int64(cost))

	return b
}

// ExhaustionType returns the cooldown bucket of the operation.
func (b *Base) ExhaustionType() combat.ExhaustionType {
	return b.exhaustionType
}

// ExhaustionCost returns the cost of the operation.
func (b *Base) ExhaustionCost() time.Duration {
	return time.Duration(b.cost.Load())
}

// SetExhaustionCost changes the cost of the operation.
func (b *Base) SetExhaustionCost(d time.Duration) {
	b.cost.Store(int64(d))
}

// Kinds of operations, for use with sched.RequestedBy and sched.OfKind.
var (
	AutoAttackKind    = reflect.TypeOf(AutoAttack{})
	RestoreCreditKind = reflect.TypeOf(RestoreCredit{})
	AutoWalkKind      = reflect.TypeOf(AutoWalkOrchestrator{})
	MovementKind      = reflect.TypeOf(Movement{})
	TurnKind          = reflect.TypeOf(Turn{})
)

// execute runs perform with the operation context and, if it succeeded,
// charges the exhaustion cost to the requestor.
func execute(
	ctx sched.EventContext,
	op Operation,
	perform func(ctx Context) error,
) error {
	octx, ok := ctx.(Context)
	if !ok {
		return fmt.Errorf("%w: %T", ErrContextNotSupported, ctx)
	}

	if err := perform(octx); err != nil {
		return err
	}

	chargeRequestor(octx, op)

	return nil
}

func chargeRequestor(ctx Context, op Operation) {
	cost := op.ExhaustionCost()
	if cost <= 0 || op.ExhaustionType() == combat.ExhaustionNone {
		return
	}

	entity, found := ctx.CreatureFinder().FindCreature(op.RequestorID())
	if !found {
		return
	}

	exhaustible, ok := entity.(creature.WithExhaustion)
	if !ok {
		return
	}

	exhaustible.AddExhaustion(
		op.ExhaustionType(), ctx.Scheduler().CurrentTime(), cost)
}
