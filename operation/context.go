package operation

import (
	"log"
	"time"

	"github.com/fibula-mmo/fibula/creature"
	"github.com/fibula-mmo/fibula/notification"
	"github.com/fibula-mmo/fibula/sched"
	"github.com/fibula-mmo/fibula/world"
)

// A CreatureFinder looks entities up.
type CreatureFinder interface {
	FindCreature(id uint32) (creature.Entity, bool)
	PlayersThatCanSee(loc world.Location) []creature.Entity
}

// CombatRules decide the outcome of attacks.
type CombatRules interface {
	// RoundTime is the base duration credit regeneration is derived from.
	RoundTime() time.Duration

	// InRange tells if attacker can reach target from where both stand.
	InRange(attacker, target *creature.Combatant) bool

	// RollDamage returns the damage of an unshielded hit and whether the
	// target's armor absorbed it.
	RollDamage(attacker, target *creature.Combatant) (damage int, armorBlock bool)
}

// Context is what operations are executed with.
type Context interface {
	notification.Context

	Map() world.Map
	CreatureFinder() CreatureFinder
	OperationFactory() Factory
	NotificationFactory() notification.Factory
	CombatRules() CombatRules
	PathFinder() world.PathFinder
}

// ExecutionContext is the Context a host builds once and installs on its
// scheduler.
type ExecutionContext struct {
	scheduler           sched.Scheduler
	logger              *log.Logger
	dispatcher          notification.Dispatcher
	gameMap             world.Map
	creatureFinder      CreatureFinder
	operationFactory    Factory
	notificationFactory notification.Factory
	combatRules         CombatRules
	pathFinder          world.PathFinder
}

// Scheduler returns the scheduler running the operations.
func (c *ExecutionContext) Scheduler() sched.Scheduler { return c.scheduler }

// Logger returns the logger of the host.
func (c *ExecutionContext) Logger() *log.Logger { return c.logger }

// Dispatcher returns where notifications are delivered.
func (c *ExecutionContext) Dispatcher() notification.Dispatcher {
	return c.dispatcher
}

// Map returns the map of the world.
func (c *ExecutionContext) Map() world.Map { return c.gameMap }

// CreatureFinder returns the entity lookup.
func (c *ExecutionContext) CreatureFinder() CreatureFinder {
	return c.creatureFinder
}

// OperationFactory returns the factory of follow-up operations.
func (c *ExecutionContext) OperationFactory() Factory {
	return c.operationFactory
}

// NotificationFactory returns the factory of notifications.
func (c *ExecutionContext) NotificationFactory() notification.Factory {
	return c.notificationFactory
}

// CombatRules returns the combat rules.
func (c *ExecutionContext) CombatRules() CombatRules { return c.combatRules }

// PathFinder returns the path finder.
func (c *ExecutionContext) PathFinder() world.PathFinder { return c.pathFinder }

// ContextBuilder can build ExecutionContexts.
type ContextBuilder struct {
	scheduler           sched.Scheduler
	logger              *log.Logger
	dispatcher          notification.Dispatcher
	gameMap             world.Map
	creatureFinder      CreatureFinder
	operationFactory    Factory
	notificationFactory notification.Factory
	combatRules         CombatRules
	pathFinder          world.PathFinder
}

// MakeContextBuilder creates a ContextBuilder. The logger and the factories
// have defaults; everything else must be provided.
func MakeContextBuilder() ContextBuilder {
	return ContextBuilder{
		logger:              log.Default(),
		operationFactory:    DefaultFactory{},
		notificationFactory: notification.DefaultFactory{},
	}
}

// WithScheduler sets the scheduler.
func (b ContextBuilder) WithScheduler(s sched.Scheduler) ContextBuilder {
	b.scheduler = s
	return b
}

// WithLogger sets the logger.
func (b ContextBuilder) WithLogger(logger *log.Logger) ContextBuilder {
	b.logger = logger
	return b
}

// WithDispatcher sets the notification dispatcher.
func (b ContextBuilder) WithDispatcher(
	d notification.Dispatcher,
) ContextBuilder {
	b.dispatcher = d
	return b
}

// WithMap sets the map. Unless a path finder is given, a greedy one over
// this map is used.
func (b ContextBuilder) WithMap(m world.Map) ContextBuilder {
	b.gameMap = m
	return b
}

// WithCreatureFinder sets the entity lookup.
func (b ContextBuilder) WithCreatureFinder(f CreatureFinder) ContextBuilder {
	b.creatureFinder = f
	return b
}

// WithOperationFactory sets the operation factory.
func (b ContextBuilder) WithOperationFactory(f Factory) ContextBuilder {
	b.operationFactory = f
	return b
}

// WithNotificationFactory sets the notification factory.
func (b ContextBuilder) WithNotificationFactory(
	f notification.Factory,
) ContextBuilder {
	b.notificationFactory = f
	return b
}

// WithCombatRules sets the combat rules.
func (b ContextBuilder) WithCombatRules(r CombatRules) ContextBuilder {
	b.combatRules = r
	return b
}

// WithPathFinder sets the path finder.
func (b ContextBuilder) WithPathFinder(p world.PathFinder) ContextBuilder {
	b.pathFinder = p
	return b
}

// Build creates the ExecutionContext.
func (b ContextBuilder) Build() *ExecutionContext {
	b.parametersMustBeValid()

	pathFinder := b.pathFinder
	if pathFinder == nil {
		pathFinder = world.NewGreedyPathFinder(b.gameMap)
	}

	return &ExecutionContext{
		scheduler:           b.scheduler,
		logger:              b.logger,
		dispatcher:          b.dispatcher,
		gameMap:             b.gameMap,
		creatureFinder:      b.creatureFinder,
		operationFactory:    b.operationFactory,
		notificationFactory: b.notificationFactory,
		combatRules:         b.combatRules,
		pathFinder:          pathFinder,
	}
}

func (b ContextBuilder) parametersMustBeValid() {
	if b.scheduler == nil {
		panic("scheduler is not set")
	}

	if b.logger == nil {
		panic("logger is not set")
	}

	if b.dispatcher == nil {
		panic("dispatcher is not set")
	}

	if b.gameMap == nil {
		panic("map is not set")
	}

	if b.creatureFinder == nil {
		panic("creature finder is not set")
	}

	if b.operationFactory == nil || b.notificationFactory == nil {
		panic("factories are not set")
	}

	if b.combatRules == nil {
		panic("combat rules are not set")
	}
}

var _ Context = (*ExecutionContext)(nil)
