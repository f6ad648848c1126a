package operation_test

import (
	"log"
	"reflect"
	"time"

	"github.com/fibula-mmo/fibula/combat"
	"github.com/fibula-mmo/fibula/creature"
	"github.com/fibula-mmo/fibula/notification"
	"github.com/fibula-mmo/fibula/operation"
	"github.com/fibula-mmo/fibula/sched"
	"github.com/fibula-mmo/fibula/world"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

type bareContext struct{}

func (bareContext) Scheduler() sched.Scheduler { return nil }
func (bareContext) Logger() *log.Logger        { return log.Default() }

type brokenRestoreFactory struct {
	operation.DefaultFactory

	broken *bool
}

func (f brokenRestoreFactory) NewRestoreCredit(
	c *creature.Combatant,
	t combat.CreditType,
) *operation.RestoreCredit {
	if *f.broken {
		panic("no more restorations")
	}

	return f.DefaultFactory.NewRestoreCredit(c, t)
}

func at(d time.Duration) sched.VTime {
	return sched.VTime(d)
}

var _ = Describe("Operations", func() {
	var (
		mockCtrl   *gomock.Controller
		clock      *sched.ManualClock
		scheduler  *sched.SerialScheduler
		registry   *creature.Registry
		gameMap    *world.GridMap
		rules      *MockCombatRules
		dispatcher *MockDispatcher
		ctx        *operation.ExecutionContext
		payloads   []notification.Payload

		knight *creature.Combatant
		orc    *creature.Combatant
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		clock = sched.NewManualClock()
		scheduler = sched.NewSerialScheduler(clock)
		registry = creature.NewRegistry()
		gameMap = world.NewFlatGridMap(20, 20, 7)
		rules = NewMockCombatRules(mockCtrl)
		dispatcher = NewMockDispatcher(mockCtrl)

		ctx = operation.MakeContextBuilder().
			WithScheduler(scheduler).
			WithDispatcher(dispatcher).
			WithMap(gameMap).
			WithCreatureFinder(registry).
			WithCombatRules(rules).
			Build()
		scheduler.UseContext(ctx)

		realRules := operation.NewDefaultCombatRules(combat.DefaultRoundTime, 1)
		rules.EXPECT().RoundTime().Return(combat.DefaultRoundTime).AnyTimes()
		rules.EXPECT().InRange(gomock.Any(), gomock.Any()).
			DoAndReturn(realRules.InRange).AnyTimes()

		payloads = nil
		dispatcher.EXPECT().Dispatch(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ uint32, p notification.Payload) error {
				payloads = append(payloads, p)
				return nil
			}).AnyTimes()

		knight = creature.MakeCombatantBuilder().
			Build(creature.NewCreature(1, "knight", creature.KindPlayer,
				world.Location{X: 5, Y: 5, Z: 7}, 150))
		orc = creature.MakeCombatantBuilder().
			Build(creature.NewCreature(2, "orc", creature.KindMonster,
				world.Location{X: 6, Y: 5, Z: 7}, 150))
		Expect(registry.Add(knight)).To(Succeed())
		Expect(registry.Add(orc)).To(Succeed())
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	mustSchedule := func(evt sched.Event, delay time.Duration) {
		_, err := scheduler.Schedule(evt, delay)
		Expect(err).NotTo(HaveOccurred())
	}

	pendingOf := func(
		requestorID uint32,
		kind reflect.Type,
	) []sched.ScheduledEntry {
		return scheduler.Find(sched.RequestedBy(requestorID, kind))
	}

	kindsOf := func(ps []notification.Payload) []string {
		kinds := []string{}
		for _, p := range ps {
			kinds = append(kinds, p.Kind())
		}
		return kinds
	}

	It("should refuse foreign contexts", func() {
		op := operation.NewTurn(knight.Creature, world.North)

		Expect(op.Execute(bareContext{})).
			To(MatchError(operation.ErrContextNotSupported))
	})

	It("should refuse to build an incomplete context", func() {
		Expect(func() { operation.MakeContextBuilder().Build() }).To(Panic())
	})

	Context("auto attack", func() {
		var attack *operation.AutoAttack

		BeforeEach(func() {
			knight.SetAttackTarget(orc)
			attack = operation.NewAutoAttack(knight, orc, combat.DefaultRoundTime)
		})

		It("should hit an unshielded target in range", func() {
			orc.Credits().Consume(combat.CreditDefense, 2)
			rules.EXPECT().RollDamage(knight, orc).Return(7, false)

			mustSchedule(attack, 0)
			scheduler.Tick()

			Expect(orc.Hitpoints()).To(Equal(93))
			Expect(orc.Session().DamageTakenBy()).
				To(Equal(map[uint32]int{1: 7}))
			Expect(knight.Credits().Credits(combat.CreditAttack)).To(BeZero())
			Expect(knight.RemainingCooldown(
				combat.ExhaustionPhysicalCombat, scheduler.CurrentTime())).
				To(Equal(combat.DefaultRoundTime))

			restores := pendingOf(knight.ID(), operation.RestoreCreditKind)
			Expect(restores).To(HaveLen(1))
			Expect(restores[0].FireTime).To(Equal(at(2000 * time.Millisecond)))
			Expect(restores[0].Event.(*operation.RestoreCredit).CreditType()).
				To(Equal(combat.CreditAttack))

			Expect(knight.Facing()).To(Equal(world.East))
			Expect(kindsOf(payloads)).
				To(ConsistOf("AttackResolved", "CreatureTurned"))
		})

		It("should be absorbed by defense credits", func() {
			mustSchedule(attack, 0)
			scheduler.Tick()

			Expect(orc.Hitpoints()).To(Equal(100))
			Expect(orc.Credits().Credits(combat.CreditDefense)).To(Equal(1))
			Expect(payloads).To(ContainElement(notification.AttackResolved{
				AttackerID: 1,
				TargetID:   2,
				Shielded:   true,
			}))

			restores := pendingOf(orc.ID(), operation.RestoreCreditKind)
			Expect(restores).To(HaveLen(1))
			Expect(restores[0].FireTime).To(Equal(at(1000 * time.Millisecond)))
		})

		It("should do nothing when the target stepped out of range", func() {
			mustSchedule(attack, time.Second)
			orc.MoveTo(world.Location{X: 9, Y: 5, Z: 7})

			clock.Advance(time.Second)
			scheduler.Tick()

			Expect(attack.State()).To(Equal(sched.EventStateCompleted))
			Expect(attack.ExhaustionCost()).To(BeZero())
			Expect(orc.Hitpoints()).To(Equal(100))
			Expect(knight.Credits().Credits(combat.CreditAttack)).To(Equal(1))
			Expect(knight.RemainingCooldown(
				combat.ExhaustionPhysicalCombat, scheduler.CurrentTime())).
				To(BeZero())
			Expect(scheduler.Len()).To(BeZero())
		})

		It("should do nothing without attack credits", func() {
			knight.Credits().Consume(combat.CreditAttack, 1)

			mustSchedule(attack, 0)
			scheduler.Tick()

			Expect(attack.ExhaustionCost()).To(BeZero())
			Expect(orc.Credits().Credits(combat.CreditDefense)).To(Equal(2))
		})

		It("should do nothing once the target changed", func() {
			mustSchedule(attack, time.Second)
			knight.SetAttackTarget(nil)

			Expect(scheduler.Expedite(attack.ID())).To(BeFalse())

			clock.Advance(time.Second)
			scheduler.Tick()

			Expect(attack.ExhaustionCost()).To(BeZero())
			Expect(orc.Credits().Credits(combat.CreditDefense)).To(Equal(2))
		})

		It("should mark the attacker on a player's screen", func() {
			orc.SetAttackTarget(knight)
			knight.Credits().Consume(combat.CreditDefense, 2)
			rules.EXPECT().RollDamage(orc, knight).Return(0, true)

			mustSchedule(
				operation.NewAutoAttack(orc, knight, combat.DefaultRoundTime), 0)
			scheduler.Tick()

			Expect(payloads).To(ContainElement(notification.TargetSquare{
				PlayerID:   1,
				AttackerID: 2,
			}))
		})

		It("should be cancelled by stopping all actions", func() {
			mustSchedule(attack, time.Second)
			mustSchedule(operation.NewTurn(knight.Creature, world.North), time.Second)
			knight.Credits().Consume(combat.CreditAttack, 1)
			operation.ScheduleRestoration(ctx, knight, combat.CreditAttack)

			Expect(operation.StopAllActions(scheduler, knight.ID())).To(Equal(2))
			Expect(attack.State()).To(Equal(sched.EventStateCancelled))
			Expect(pendingOf(knight.ID(), operation.RestoreCreditKind)).
				To(HaveLen(1))
		})
	})

	Context("credit restoration", func() {
		var mage *creature.Combatant

		BeforeEach(func() {
			mage = creature.MakeCombatantBuilder().
				WithMaxCredits(1, 3).
				Build(creature.NewCreature(3, "mage", creature.KindMonster,
					world.Location{X: 1, Y: 1, Z: 7}, 100))
			Expect(registry.Add(mage)).To(Succeed())
			mage.Credits().Consume(combat.CreditDefense, 3)
		})

		It("should run a single chain per credit type", func() {
			operation.ScheduleRestoration(ctx, mage, combat.CreditDefense)
			operation.ScheduleRestoration(ctx, mage, combat.CreditDefense)

			Expect(pendingOf(mage.ID(), operation.RestoreCreditKind)).To(HaveLen(1))
		})

		It("should follow the live speed", func() {
			operation.ScheduleRestoration(ctx, mage, combat.CreditDefense)

			clock.Advance(time.Second)
			scheduler.Tick()
			Expect(mage.Credits().Credits(combat.CreditDefense)).To(Equal(1))

			mage.IncreaseDefenseSpeed(2)

			clock.Advance(time.Second)
			scheduler.Tick()
			Expect(mage.Credits().Credits(combat.CreditDefense)).To(Equal(2))

			restores := pendingOf(mage.ID(), operation.RestoreCreditKind)
			Expect(restores).To(HaveLen(1))
			Expect(restores[0].FireTime).To(Equal(at(2500 * time.Millisecond)))

			clock.Advance(500 * time.Millisecond)
			scheduler.Tick()

			Expect(mage.Credits().Credits(combat.CreditDefense)).To(Equal(3))
			Expect(mage.Credits().IsRestoring(combat.CreditDefense)).To(BeFalse())
			Expect(scheduler.Len()).To(BeZero())
		})

		It("should end the chain when a restoration faults", func() {
			broken := false
			scheduler.UseContext(operation.MakeContextBuilder().
				WithScheduler(scheduler).
				WithDispatcher(dispatcher).
				WithMap(gameMap).
				WithCreatureFinder(registry).
				WithCombatRules(rules).
				WithOperationFactory(brokenRestoreFactory{broken: &broken}).
				Build())

			operation.ScheduleRestoration(ctx, mage, combat.CreditDefense)
			Expect(mage.Credits().IsRestoring(combat.CreditDefense)).To(BeTrue())

			broken = true
			clock.Advance(time.Second)
			scheduler.Tick()

			Expect(mage.Credits().Credits(combat.CreditDefense)).To(Equal(1))
			Expect(mage.Credits().IsRestoring(combat.CreditDefense)).To(BeFalse())
			Expect(scheduler.Len()).To(BeZero())

			broken = false
			operation.ScheduleRestoration(ctx, mage, combat.CreditDefense)

			Expect(pendingOf(mage.ID(), operation.RestoreCreditKind)).
				To(HaveLen(1))
		})
	})

	Context("walking", func() {
		var walker *creature.Creature

		BeforeEach(func() {
			walker = knight.Creature
			walker.MoveTo(world.Location{X: 1, Y: 1, Z: 7})
		})

		It("should walk the whole plan and stop", func() {
			Expect(operation.StartAutoWalk(ctx, walker,
				world.Location{X: 4, Y: 1, Z: 7}, 10)).To(BeTrue())

			scheduler.Tick()
			Expect(walker.Location()).To(Equal(world.Location{X: 2, Y: 1, Z: 7}))
			orchestrators := pendingOf(walker.ID(), operation.AutoWalkKind)
			Expect(orchestrators).To(HaveLen(1))
			Expect(orchestrators[0].FireTime).To(Equal(at(time.Second)))

			clock.Advance(time.Second)
			scheduler.Tick()
			Expect(walker.Location()).To(Equal(world.Location{X: 3, Y: 1, Z: 7}))

			clock.Advance(time.Second)
			scheduler.Tick()
			Expect(walker.Location()).To(Equal(world.Location{X: 4, Y: 1, Z: 7}))

			plan, _ := walker.WalkPlan()
			Expect(plan.State).To(Equal(creature.WalkPlanCompleted))

			clock.Advance(time.Second)
			scheduler.Tick()
			Expect(scheduler.Len()).To(BeZero())
			Expect(kindsOf(payloads)).To(ContainElement("CreatureMoved"))
		})

		It("should wait for the remaining movement cooldown", func() {
			walker.AddExhaustion(combat.ExhaustionMovement, 0,
				500*time.Millisecond)
			walker.SetWalkPlan([]world.Location{{X: 2, Y: 1, Z: 7}})

			mustSchedule(operation.NewAutoWalkOrchestrator(walker), 0)
			scheduler.Tick()

			steps := pendingOf(walker.ID(), operation.MovementKind)
			Expect(steps).To(HaveLen(1))
			Expect(steps[0].FireTime).To(Equal(at(500 * time.Millisecond)))
			Expect(walker.Location()).To(Equal(world.Location{X: 1, Y: 1, Z: 7}))
		})

		It("should not continue a cancelled plan", func() {
			walker.SetWalkPlan([]world.Location{{X: 2, Y: 1, Z: 7}})
			walker.AbortWalkPlan()
			orchestrator := operation.NewAutoWalkOrchestrator(walker)
			orchestrator.SetRepeatAfter(time.Second)

			mustSchedule(orchestrator, 0)
			scheduler.Tick()

			Expect(orchestrator.State()).To(Equal(sched.EventStateCompleted))
			Expect(scheduler.Len()).To(BeZero())
			Expect(walker.Location()).To(Equal(world.Location{X: 1, Y: 1, Z: 7}))
		})

		It("should cancel a walk in flight", func() {
			Expect(operation.StartAutoWalk(ctx, walker,
				world.Location{X: 4, Y: 1, Z: 7}, 10)).To(BeTrue())
			scheduler.Tick()

			Expect(operation.CancelAutoWalk(scheduler, walker)).To(Equal(1))
			Expect(scheduler.Len()).To(BeZero())

			plan, _ := walker.WalkPlan()
			Expect(plan.State).To(Equal(creature.WalkPlanAborted))
		})

		It("should abort the plan on a blocked step", func() {
			blocked := world.Location{X: 2, Y: 1, Z: 7}
			gameMap.SetTile(blocked, 0, false)
			walker.SetWalkPlan([]world.Location{blocked})

			step := operation.NewMovement(walker, blocked)
			mustSchedule(step, 0)
			scheduler.Tick()

			Expect(step.ExhaustionCost()).To(BeZero())
			Expect(walker.Location()).To(Equal(world.Location{X: 1, Y: 1, Z: 7}))
			Expect(walker.RemainingCooldown(combat.ExhaustionMovement, 0)).
				To(BeZero())

			plan, _ := walker.WalkPlan()
			Expect(plan.State).To(Equal(creature.WalkPlanAborted))
		})

		It("should not report a failed path", func() {
			Expect(operation.StartAutoWalk(ctx, walker,
				world.Location{X: 1, Y: 1, Z: 8}, 10)).To(BeFalse())
			Expect(scheduler.Len()).To(BeZero())
		})

		It("should expedite attacks brought in range", func() {
			orc.MoveTo(world.Location{X: 4, Y: 1, Z: 7})
			orc.Credits().Consume(combat.CreditDefense, 2)
			knight.SetAttackTarget(orc)
			attack := operation.NewAutoAttack(knight, orc, combat.DefaultRoundTime)
			mustSchedule(attack, 2*time.Second)

			mustSchedule(
				operation.NewMovement(walker, world.Location{X: 2, Y: 1, Z: 7}), 0)
			scheduler.Tick()
			Expect(attack.State()).To(Equal(sched.EventStateScheduled))

			rules.EXPECT().RollDamage(knight, orc).Return(3, false)
			mustSchedule(
				operation.NewMovement(walker, world.Location{X: 3, Y: 1, Z: 7}), 0)
			scheduler.Tick()

			Expect(attack.State()).To(Equal(sched.EventStateCompleted))
			Expect(orc.Hitpoints()).To(Equal(97))
			Expect(scheduler.CurrentTime()).To(BeZero())
		})
	})

	Context("turning", func() {
		It("should turn and notify once", func() {
			mustSchedule(operation.NewTurn(knight.Creature, world.North), 0)
			mustSchedule(operation.NewTurn(knight.Creature, world.North), 0)
			scheduler.Tick()

			Expect(knight.Facing()).To(Equal(world.North))
			Expect(payloads).To(Equal([]notification.Payload{
				notification.CreatureTurned{
					CreatureID: 1,
					Direction:  world.North,
				},
			}))
		})
	})
})
