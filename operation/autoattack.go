package operation

import (
	"time"

	"github.com/fibula-mmo/fibula/combat"
	"github.com/fibula-mmo/fibula/creature"
	"github.com/fibula-mmo/fibula/notification"
	"github.com/fibula-mmo/fibula/sched"
)

// AutoAttack is one blow of an attacker against the target it had when the
// blow was scheduled. A nil attacker stands for the environment.
type AutoAttack struct {
	*Base

	attacker *creature.Combatant
	target   *creature.Combatant
}

// NewAutoAttack creates an AutoAttack costing cost of physical combat
// exhaustion.
func NewAutoAttack(
	attacker, target *creature.Combatant,
	cost time.Duration,
) *AutoAttack {
	requestorID := uint32(0)
	if attacker != nil {
		requestorID = attacker.ID()
	}

	op := &AutoAttack{
		Base: NewBase(requestorID, true,
			combat.ExhaustionPhysicalCombat, cost),
		attacker: attacker,
		target:   target,
	}
	op.OnExpedited(func(sched.Event) bool {
		return op.isCorrectTarget()
	})

	return op
}

// Attacker returns the attacker, or nil.
func (op *AutoAttack) Attacker() *creature.Combatant {
	return op.attacker
}

// Target returns the target captured at creation.
func (op *AutoAttack) Target() *creature.Combatant {
	return op.target
}

func (op *AutoAttack) isCorrectTarget() bool {
	if op.attacker == nil {
		return true
	}

	current := op.attacker.AttackTarget()

	return current != nil && current.ID() == op.target.ID()
}

// Execute resolves the attack.
func (op *AutoAttack) Execute(ctx sched.EventContext) error {
	return execute(ctx, op, op.perform)
}

func (op *AutoAttack) perform(ctx Context) error {
	performed := false
	defer func() {
		if !performed {
			op.SetExhaustionCost(0)
		}
	}()

	if op.target == nil || op.target.IsDead() || !op.isCorrectTarget() {
		return nil
	}

	if op.attacker != nil {
		enoughCredits := op.attacker.Credits().Credits(combat.CreditAttack) >= 1
		if !enoughCredits || !ctx.CombatRules().InRange(op.attacker, op.target) {
			return nil
		}
	}

	op.resolve(ctx)
	performed = true

	return nil
}

func (op *AutoAttack) resolve(ctx Context) {
	attackerID := uint32(0)
	if op.attacker != nil {
		attackerID = op.attacker.ID()
	}

	shielded := op.target.Credits().Credits(combat.CreditDefense) > 0
	damage := 0
	if !shielded {
		damage, _ = ctx.CombatRules().RollDamage(op.attacker, op.target)
	}
	applied := op.target.ApplyDamage(damage, attackerID)

	op.target.Credits().Consume(combat.CreditDefense, 1)
	scheduleRestoration(ctx, op.target, combat.CreditDefense)

	if op.attacker != nil {
		op.attacker.Credits().Consume(combat.CreditAttack, 1)
		scheduleRestoration(ctx, op.attacker, combat.CreditAttack)
		op.faceTarget(ctx)
	}

	op.notify(ctx, notification.AttackResolved{
		AttackerID: attackerID,
		TargetID:   op.target.ID(),
		Damage:     applied,
		Shielded:   shielded,
	})
}

func (op *AutoAttack) faceTarget(ctx Context) {
	if op.attacker.ID() == op.target.ID() {
		return
	}

	dir, ok := op.attacker.Location().DirectionTo(op.target.Location())
	if !ok {
		return
	}

	turn := ctx.OperationFactory().NewTurn(op.attacker.Creature, dir)
	if _, err := ctx.Scheduler().Schedule(turn, 0); err != nil {
		ctx.Logger().Printf("scheduling turn of %d: %v", op.attacker.ID(), err)
	}
}

func (op *AutoAttack) notify(ctx Context, resolved notification.AttackResolved) {
	loc := op.target.Location()
	finder := ctx.CreatureFinder()

	scheduleNotification(ctx, resolved, func() []uint32 {
		return entityIDs(finder.PlayersThatCanSee(loc))
	})

	if op.target.IsPlayer() && op.attacker != nil {
		scheduleNotification(ctx, notification.TargetSquare{
			PlayerID:   op.target.ID(),
			AttackerID: op.attacker.ID(),
		}, notification.Players(op.target.ID()))
	}
}

func scheduleNotification(
	ctx Context,
	payload notification.Payload,
	targets notification.TargetResolver,
) {
	n := ctx.NotificationFactory().Create(payload, targets)
	if _, err := ctx.Scheduler().Schedule(n, 0); err != nil {
		ctx.Logger().Printf("scheduling %s notification: %v", payload.Kind(), err)
	}
}

func entityIDs(entities []creature.Entity) []uint32 {
	ids := make([]uint32, 0, len(entities))
	for _, e := range entities {
		ids = append(ids, e.ID())
	}

	return ids
}
