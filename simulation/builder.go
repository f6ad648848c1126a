package simulation

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/fibula-mmo/fibula/combat"
	"github.com/fibula-mmo/fibula/creature"
	"github.com/fibula-mmo/fibula/datarecording"
	"github.com/fibula-mmo/fibula/monitoring"
	"github.com/fibula-mmo/fibula/notification"
	"github.com/fibula-mmo/fibula/operation"
	"github.com/fibula-mmo/fibula/sched"
	"github.com/fibula-mmo/fibula/tracing"
	"github.com/fibula-mmo/fibula/world"
	"github.com/rs/xid"
)

// Builder can be used to build a World.
type Builder struct {
	clock      sched.Clock
	logger     *log.Logger
	dispatcher notification.Dispatcher

	roundTime time.Duration
	seed      int64

	mapWidth, mapHeight int
	floor               int8

	recordingOn   bool
	recordingPath string

	monitorOn   bool
	monitorPort int
	browser     bool

	logEvents bool
}

// MakeBuilder creates a new builder.
func MakeBuilder() Builder {
	return Builder{
		roundTime:   combat.DefaultRoundTime,
		seed:        1,
		mapWidth:    64,
		mapHeight:   64,
		floor:       7,
		recordingOn: true,
		monitorOn:   true,
	}
}

// WithClock sets the clock the scheduler reads. The wall clock is used by
// default.
func (b Builder) WithClock(clock sched.Clock) Builder {
	b.clock = clock
	return b
}

// WithLogger sets the logger of the world.
func (b Builder) WithLogger(logger *log.Logger) Builder {
	b.logger = logger
	return b
}

// WithDispatcher sets where notifications go. They are logged by default.
func (b Builder) WithDispatcher(d notification.Dispatcher) Builder {
	b.dispatcher = d
	return b
}

// WithRoundTime sets the length of a combat round.
func (b Builder) WithRoundTime(d time.Duration) Builder {
	b.roundTime = d
	return b
}

// WithSeed sets the seed of the damage rolls.
func (b Builder) WithSeed(seed int64) Builder {
	b.seed = seed
	return b
}

// WithMapSize sets the size of the flat map the world is played on.
func (b Builder) WithMapSize(width, height int, floor int8) Builder {
	b.mapWidth = width
	b.mapHeight = height
	b.floor = floor

	return b
}

// WithRecordingPath sets the path, without extension, of the SQLite file
// the event trace is written to.
func (b Builder) WithRecordingPath(path string) Builder {
	b.recordingPath = path
	return b
}

// WithoutRecording disables the event trace database.
func (b Builder) WithoutRecording() Builder {
	b.recordingOn = false
	return b
}

// WithoutMonitoring sets the world to not start the monitoring server.
func (b Builder) WithoutMonitoring() Builder {
	b.monitorOn = false
	return b
}

// WithMonitorPort sets the port number for the monitoring server.
func (b Builder) WithMonitorPort(port int) Builder {
	b.monitorPort = port
	return b
}

// WithBrowser opens the monitor in a browser once the server is up.
func (b Builder) WithBrowser() Builder {
	b.browser = true
	return b
}

// WithEventLogging prints every executed event.
func (b Builder) WithEventLogging() Builder {
	b.logEvents = true
	return b
}

func (b Builder) parametersMustBeValid() {
	if !b.monitorOn && b.monitorPort != 0 {
		panic("monitor port cannot be set when monitoring is disabled")
	}

	if !b.recordingOn && b.recordingPath != "" {
		panic("recording path cannot be set when recording is disabled")
	}

	if b.roundTime <= 0 {
		panic(fmt.Sprintf("round time must be positive, got %s", b.roundTime))
	}

	if b.mapWidth <= 0 || b.mapHeight <= 0 {
		panic(fmt.Sprintf("map size must be positive, got %dx%d",
			b.mapWidth, b.mapHeight))
	}
}

// Build builds the world.
func (b Builder) Build() *World {
	b.parametersMustBeValid()

	w := &World{
		id:        xid.New().String(),
		roundTime: b.roundTime,
	}

	logger := b.logger
	if logger == nil {
		logger = log.New(os.Stderr, "", log.LstdFlags)
	}

	dispatcher := b.dispatcher
	if dispatcher == nil {
		dispatcher = notification.NewLogDispatcher(logger)
	}

	w.scheduler = sched.NewSerialScheduler(b.clock)
	w.scheduler.UseLogger(logger)

	w.registry = creature.NewRegistry()
	w.gameMap = world.NewFlatGridMap(b.mapWidth, b.mapHeight, b.floor)

	w.ctx = operation.MakeContextBuilder().
		WithScheduler(w.scheduler).
		WithLogger(logger).
		WithDispatcher(dispatcher).
		WithMap(w.gameMap).
		WithCreatureFinder(w.registry).
		WithCombatRules(operation.NewDefaultCombatRules(b.roundTime, b.seed)).
		WithOperationFactory(operation.DefaultFactory{RoundTime: b.roundTime}).
		Build()
	w.scheduler.UseContext(w.ctx)

	if b.logEvents {
		w.scheduler.AcceptHook(sched.NewEventLogger(logger))
	}

	w.kindStats = tracing.NewKindCountTracer()
	w.lifetime = tracing.NewAverageTimeTracer(w.scheduler, tracing.AllTasks)
	tracing.CollectTrace(w.scheduler, w.kindStats)
	tracing.CollectTrace(w.scheduler, w.lifetime)

	if b.recordingOn {
		b.buildRecording(w)
	}

	if b.monitorOn {
		b.buildMonitor(w)
	}

	return w
}

func (b Builder) buildRecording(w *World) {
	path := b.recordingPath
	if path == "" {
		path = "fibula_sim_" + w.id
	}

	w.dataRecorder = datarecording.New(path)
	w.tracer = tracing.NewDBTracer(w.scheduler, w.dataRecorder)
	tracing.CollectTrace(w.scheduler, w.tracer)
}

func (b Builder) buildMonitor(w *World) {
	w.monitor = monitoring.NewMonitor()
	if b.monitorPort > 0 {
		w.monitor.WithPortNumber(b.monitorPort)
	}

	if b.browser {
		w.monitor.WithBrowser()
	}

	w.monitor.RegisterEngine(w.scheduler)
	w.monitor.RegisterCreatures(w.registry)
	w.monitor.RegisterTracers(w.kindStats, w.lifetime)
	w.monitor.StartServer()
}
