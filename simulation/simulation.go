// Package simulation assembles a runnable world: a scheduler, the creatures
// and the map they live on, and the operations that drive them.
package simulation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fibula-mmo/fibula/combat"
	"github.com/fibula-mmo/fibula/creature"
	"github.com/fibula-mmo/fibula/datarecording"
	"github.com/fibula-mmo/fibula/monitoring"
	"github.com/fibula-mmo/fibula/operation"
	"github.com/fibula-mmo/fibula/sched"
	"github.com/fibula-mmo/fibula/tracing"
	"github.com/fibula-mmo/fibula/world"
)

var (
	// ErrNoSuchCreature is returned when an id does not name a creature
	// that can do what was asked.
	ErrNoSuchCreature = errors.New("no such creature")

	// ErrNoPath is returned when a walk cannot reach its goal.
	ErrNoPath = errors.New("no path")
)

// DefaultMaxWalkSteps bounds the paths searched by WalkTo.
const DefaultMaxWalkSteps = 64

// A World owns everything needed to run creatures on a map.
type World struct {
	id        string
	roundTime time.Duration

	scheduler *sched.SerialScheduler
	registry  *creature.Registry
	gameMap   *world.GridMap
	ctx       *operation.ExecutionContext

	kindStats *tracing.KindCountTracer
	lifetime  *tracing.AverageTimeTracer

	dataRecorder datarecording.DataRecorder
	tracer       *tracing.DBTracer
	monitor      *monitoring.Monitor
}

// ID returns the unique id of the world.
func (w *World) ID() string {
	return w.id
}

// Scheduler returns the scheduler that drives the world.
func (w *World) Scheduler() *sched.SerialScheduler {
	return w.scheduler
}

// Registry returns the creatures of the world.
func (w *World) Registry() *creature.Registry {
	return w.registry
}

// Map returns the map of the world.
func (w *World) Map() *world.GridMap {
	return w.gameMap
}

// Context returns the context operations execute with.
func (w *World) Context() *operation.ExecutionContext {
	return w.ctx
}

// Monitor returns the monitor, or nil if monitoring is off.
func (w *World) Monitor() *monitoring.Monitor {
	return w.monitor
}

// DataRecorder returns the recorder, or nil if recording is off.
func (w *World) DataRecorder() datarecording.DataRecorder {
	return w.dataRecorder
}

// Stats returns the per-kind event counters.
func (w *World) Stats() []tracing.KindStats {
	return w.kindStats.Stats()
}

// Spawn adds a creature to the world.
func (w *World) Spawn(e creature.Entity) error {
	return w.registry.Add(e)
}

func (w *World) combatant(id uint32) (*creature.Combatant, error) {
	c, ok := w.registry.FindCombatant(id)
	if !ok {
		return nil, fmt.Errorf("%w: combatant %d", ErrNoSuchCreature, id)
	}

	return c, nil
}

// Engage makes the attacker attack the target until either dies, the
// attacker changes target, or its actions are stopped.
func (w *World) Engage(attackerID, targetID uint32) error {
	attacker, err := w.combatant(attackerID)
	if err != nil {
		return err
	}

	target, err := w.combatant(targetID)
	if err != nil {
		return err
	}

	attacker.SetAttackTarget(target)
	w.cancelAttacks(attacker)

	return w.scheduleAttack(attacker, target, 0)
}

// Disengage clears the target of the attacker and drops its pending attacks.
func (w *World) Disengage(attackerID uint32) error {
	attacker, err := w.combatant(attackerID)
	if err != nil {
		return err
	}

	attacker.SetAttackTarget(nil)
	w.cancelAttacks(attacker)

	return nil
}

func (w *World) cancelAttacks(attacker *creature.Combatant) int {
	return w.scheduler.Cancel(
		sched.RequestedBy(attacker.ID(), operation.AutoAttackKind))
}

func (w *World) scheduleAttack(
	attacker, target *creature.Combatant,
	delay time.Duration,
) error {
	attack := w.ctx.OperationFactory().NewAutoAttack(attacker, target)
	attack.OnCompleted(func(sched.Event) {
		w.continueAttack(attacker, target)
	})

	_, err := w.scheduler.Schedule(attack, delay)

	return err
}

func (w *World) continueAttack(attacker, target *creature.Combatant) {
	if attacker.AttackTarget() != target {
		return
	}

	if target.IsDead() || attacker.IsDead() {
		attacker.SetAttackTarget(nil)
		return
	}

	err := w.scheduleAttack(attacker, target, w.nextAttackDelay(attacker))
	if err != nil {
		w.ctx.Logger().Printf("continuing attack of %d: %v", attacker.ID(), err)
	}
}

func (w *World) nextAttackDelay(attacker *creature.Combatant) time.Duration {
	cooldown := attacker.RemainingCooldown(
		combat.ExhaustionPhysicalCombat, w.scheduler.CurrentTime())
	restore := combat.RestoreDelay(w.roundTime,
		attacker.CreditSpeed(combat.CreditAttack))

	return max(cooldown, restore)
}

// WalkTo sends a creature walking toward goal.
func (w *World) WalkTo(id uint32, goal world.Location) error {
	e, ok := w.registry.FindCreature(id)
	if !ok {
		return fmt.Errorf("%w: %d", ErrNoSuchCreature, id)
	}

	if !operation.StartAutoWalk(w.ctx, e.AsCreature(), goal,
		DefaultMaxWalkSteps) {
		return fmt.Errorf("%w: from %s to %s", ErrNoPath, e.Location(), goal)
	}

	return nil
}

// StopActions cancels everything a creature is doing and returns how many
// pending events were dropped.
func (w *World) StopActions(id uint32) (int, error) {
	e, ok := w.registry.FindCreature(id)
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrNoSuchCreature, id)
	}

	if c, ok := e.(*creature.Combatant); ok {
		c.SetAttackTarget(nil)
	}

	e.AsCreature().AbortWalkPlan()

	return operation.StopAllActions(w.scheduler, id), nil
}

// Tick runs the events that are due and returns how many ran.
func (w *World) Tick() int {
	return w.scheduler.Tick()
}

// Run drives the world until ctx ends.
func (w *World) Run(ctx context.Context) error {
	return w.scheduler.Run(ctx)
}

// Terminate stops the monitor and writes out the recording.
func (w *World) Terminate() {
	if w.monitor != nil {
		w.monitor.StopServer()
	}

	if w.tracer != nil {
		w.tracer.Terminate()
	}

	if w.dataRecorder != nil {
		if err := w.dataRecorder.Close(); err != nil {
			w.ctx.Logger().Printf("closing recording: %v", err)
		}
	}
}
