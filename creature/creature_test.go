package creature

import (
	"time"

	"github.com/fibula-mmo/fibula/combat"
	"github.com/fibula-mmo/fibula/sched"
	"github.com/fibula-mmo/fibula/world"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Creature", func() {
	var (
		c     *Creature
		start world.Location
	)

	BeforeEach(func() {
		start = world.Location{X: 10, Y: 10, Z: 7}
		c = NewCreature(1, "rat", KindMonster, start, 200)
	})

	It("should compute step durations", func() {
		Expect(c.StepDuration(world.East, 150)).To(Equal(750 * time.Millisecond))
		Expect(c.StepDuration(world.NorthEast, 150)).
			To(Equal(2250 * time.Millisecond))

		c.SetSpeed(0)
		Expect(c.Speed()).To(Equal(MinimumSpeed))
	})

	It("should turn only when the direction changes", func() {
		Expect(c.Facing()).To(Equal(world.South))
		Expect(c.TurnToDirection(world.South)).To(BeFalse())
		Expect(c.TurnToDirection(world.West)).To(BeTrue())
		Expect(c.Facing()).To(Equal(world.West))
	})

	It("should move", func() {
		to := start.Translate(world.North)

		Expect(c.MoveTo(to)).To(Equal(start))
		Expect(c.Location()).To(Equal(to))
	})

	It("should keep a cooldown ledger", func() {
		c.AddExhaustion(combat.ExhaustionMovement, 0, time.Second)

		Expect(c.RemainingCooldown(combat.ExhaustionMovement, 0)).
			To(Equal(time.Second))
		Expect(c.RemainingCooldown(combat.ExhaustionMovement,
			sched.VTime(time.Second))).To(BeZero())
	})

	Context("walk plans", func() {
		var waypoints []world.Location

		BeforeEach(func() {
			waypoints = []world.Location{
				start.Translate(world.East),
				start.Translate(world.East).Translate(world.East),
			}
			c.SetWalkPlan(waypoints)
		})

		It("should start on track", func() {
			plan, ok := c.WalkPlan()

			Expect(ok).To(BeTrue())
			Expect(plan.State).To(Equal(WalkPlanInProgress))
			Expect(plan.Waypoints).To(Equal(waypoints))
			Expect(plan.GoingAsIntended(c.Location())).To(BeTrue())
		})

		It("should advance and complete", func() {
			Expect(c.AdvanceWalkPlan(waypoints[1])).To(BeFalse())

			c.MoveTo(waypoints[0])
			Expect(c.AdvanceWalkPlan(waypoints[0])).To(BeTrue())

			plan, _ := c.WalkPlan()
			Expect(plan.Waypoints).To(HaveLen(1))
			Expect(plan.GoingAsIntended(c.Location())).To(BeTrue())

			c.MoveTo(waypoints[1])
			Expect(c.AdvanceWalkPlan(waypoints[1])).To(BeTrue())

			plan, _ = c.WalkPlan()
			Expect(plan.State).To(Equal(WalkPlanCompleted))
		})

		It("should notice being pushed off the route", func() {
			c.MoveTo(start.Translate(world.South))

			plan, _ := c.WalkPlan()
			Expect(plan.GoingAsIntended(c.Location())).To(BeFalse())
		})

		It("should abort", func() {
			c.AbortWalkPlan()

			plan, _ := c.WalkPlan()
			Expect(plan.State).To(Equal(WalkPlanAborted))
			Expect(c.AdvanceWalkPlan(waypoints[0])).To(BeFalse())
		})

		It("should hand out copies", func() {
			plan, _ := c.WalkPlan()
			plan.Waypoints[0] = world.Location{}

			again, _ := c.WalkPlan()
			Expect(again.Waypoints[0]).To(Equal(waypoints[0]))
		})
	})
})

var _ = Describe("Combatant", func() {
	var (
		knight, orc *Combatant
	)

	BeforeEach(func() {
		knight = MakeCombatantBuilder().
			WithHitpoints(50).
			Build(NewCreature(1, "knight", KindPlayer, world.Location{}, 220))
		orc = MakeCombatantBuilder().
			WithAttackSpeed(1.5).
			Build(NewCreature(2, "orc", KindMonster, world.Location{X: 1}, 180))
	})

	It("should start with full credits and hitpoints", func() {
		Expect(knight.Hitpoints()).To(Equal(50))
		Expect(knight.Credits().Credits(combat.CreditAttack)).
			To(Equal(combat.DefaultMaximumAttackCredits))
		Expect(knight.Credits().Credits(combat.CreditDefense)).
			To(Equal(combat.DefaultMaximumDefenseCredits))
		Expect(knight.AttackRange()).To(Equal(1))
	})

	It("should track who attacks whom", func() {
		third := MakeCombatantBuilder().
			Build(NewCreature(3, "troll", KindMonster, world.Location{}, 100))

		Expect(knight.SetAttackTarget(orc)).To(BeTrue())
		Expect(knight.SetAttackTarget(orc)).To(BeFalse())
		Expect(orc.AttackedBy()).To(Equal([]uint32{1}))

		Expect(knight.SetAttackTarget(third)).To(BeTrue())
		Expect(orc.AttackedBy()).To(BeEmpty())
		Expect(third.AttackedBy()).To(Equal([]uint32{1}))

		Expect(knight.SetAttackTarget(nil)).To(BeTrue())
		Expect(knight.AttackTarget()).To(BeNil())
		Expect(third.AttackedBy()).To(BeEmpty())
	})

	It("should clamp damage and healing", func() {
		Expect(knight.ApplyDamage(20, orc.ID())).To(Equal(20))
		Expect(knight.ApplyDamage(-50, 0)).To(Equal(-20))
		Expect(knight.Hitpoints()).To(Equal(50))
		Expect(knight.ApplyDamage(80, orc.ID())).To(Equal(50))
		Expect(knight.IsDead()).To(BeTrue())
		Expect(knight.Session().DamageTakenBy()).
			To(Equal(map[uint32]int{2: 70}))
	})

	It("should buff and debuff speeds within bounds", func() {
		Expect(orc.AttackSpeed()).To(Equal(1.5))

		orc.IncreaseAttackSpeed(10)
		Expect(orc.AttackSpeed()).To(Equal(combat.MaximumCombatSpeed))

		orc.DecreaseAttackSpeed(10)
		Expect(orc.AttackSpeed()).To(Equal(1.5))

		orc.IncreaseDefenseSpeed(1)
		Expect(orc.CreditSpeed(combat.CreditDefense)).
			To(Equal(combat.DefaultDefenseSpeed + 1))
	})

	It("should refuse invalid parameters", func() {
		Expect(func() {
			MakeCombatantBuilder().WithHitpoints(0).
				Build(NewCreature(9, "ghost", KindMonster, world.Location{}, 1))
		}).To(Panic())
	})
})

var _ = Describe("Registry", func() {
	var registry *Registry

	BeforeEach(func() {
		registry = NewRegistry()
	})

	It("should find creatures and combatants", func() {
		walker := NewCreature(1, "sheep", KindMonster, world.Location{}, 100)
		fighter := MakeCombatantBuilder().
			Build(NewCreature(2, "wolf", KindMonster, world.Location{}, 100))
		Expect(registry.Add(walker)).To(Succeed())
		Expect(registry.Add(fighter)).To(Succeed())
		Expect(registry.Add(walker)).NotTo(Succeed())

		found, ok := registry.FindCreature(1)
		Expect(ok).To(BeTrue())
		Expect(found.AsCreature()).To(BeIdenticalTo(walker))

		_, ok = registry.FindCombatant(1)
		Expect(ok).To(BeFalse())

		c, ok := registry.FindCombatant(2)
		Expect(ok).To(BeTrue())
		Expect(c).To(BeIdenticalTo(fighter))

		Expect(registry.Remove(1)).To(BeTrue())
		Expect(registry.Remove(1)).To(BeFalse())
		Expect(registry.All()).To(HaveLen(1))
	})

	It("should find the players that can see a location", func() {
		origin := world.Location{X: 100, Y: 100, Z: 7}
		near := NewCreature(1, "near", KindPlayer, world.Location{X: 108, Y: 94, Z: 7}, 100)
		far := NewCreature(2, "far", KindPlayer, world.Location{X: 109, Y: 100, Z: 7}, 100)
		below := NewCreature(3, "below", KindPlayer, world.Location{X: 100, Y: 100, Z: 8}, 100)
		monster := NewCreature(4, "monster", KindMonster, origin, 100)

		for _, e := range []Entity{near, far, below, monster} {
			Expect(registry.Add(e)).To(Succeed())
		}

		seeing := registry.PlayersThatCanSee(origin)

		Expect(seeing).To(HaveLen(1))
		Expect(seeing[0].ID()).To(Equal(uint32(1)))
	})
})
