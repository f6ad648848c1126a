package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"github.com/fibula-mmo/fibula/creature"
	"github.com/fibula-mmo/fibula/notification"
	"github.com/fibula-mmo/fibula/simulation"
	"github.com/fibula-mmo/fibula/world"
	"github.com/spf13/cobra"
)

type arenaOptions struct {
	duration    time.Duration
	roundTime   time.Duration
	seed        int64
	monitor     bool
	monitorPort int
	browser     bool
	record      string
	noRecord    bool
	logEvents   bool
	quiet       bool
}

var arenaOpts arenaOptions

var arenaCmd = &cobra.Command{
	Use:   "arena",
	Short: "Run a knight against a pack of rats.",
	Long: `Run a knight against a pack of rats. The knight walks to the ` +
		`pack and attacks the closest rat while the rats fight back. ` +
		`The run stops after the given duration.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runArena(cmd.Context(), arenaOpts)
	},
}

func init() {
	defaults, err := loadEnvDefaults()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ignoring environment: %v\n", err)
	}

	f := arenaCmd.Flags()
	f.DurationVar(&arenaOpts.duration, "duration", 30*time.Second,
		"how long the arena runs")
	f.DurationVar(&arenaOpts.roundTime, "round-time", defaults.RoundTime,
		"length of a combat round")
	f.Int64Var(&arenaOpts.seed, "seed", defaults.Seed,
		"seed of the damage rolls")
	f.BoolVar(&arenaOpts.monitor, "monitor", defaults.MonitorPort != 0,
		"start the monitoring server")
	f.IntVar(&arenaOpts.monitorPort, "monitor-port", defaults.MonitorPort,
		"port of the monitoring server, random if 0")
	f.BoolVar(&arenaOpts.browser, "browser", false,
		"open the monitor in a browser")
	f.StringVar(&arenaOpts.record, "record", defaults.Record,
		"path of the trace database, without extension")
	f.BoolVar(&arenaOpts.noRecord, "no-record", false,
		"do not write a trace database")
	f.BoolVar(&arenaOpts.logEvents, "log-events", false,
		"print every executed event")
	f.BoolVarP(&arenaOpts.quiet, "quiet", "q", false,
		"do not print notifications")

	rootCmd.AddCommand(arenaCmd)
}

func (o arenaOptions) builder() simulation.Builder {
	b := simulation.MakeBuilder().
		WithRoundTime(o.roundTime).
		WithSeed(o.seed).
		WithMapSize(32, 32, 7)

	if o.quiet {
		b = b.WithDispatcher(
			notification.NewLogDispatcher(log.New(io.Discard, "", 0)))
	}

	if o.noRecord {
		b = b.WithoutRecording()
	} else if o.record != "" {
		b = b.WithRecordingPath(o.record)
	}

	if !o.monitor {
		b = b.WithoutMonitoring()
	} else {
		b = b.WithMonitorPort(o.monitorPort)
		if o.browser {
			b = b.WithBrowser()
		}
	}

	if o.logEvents {
		b = b.WithEventLogging()
	}

	return b
}

func runArena(ctx context.Context, o arenaOptions) error {
	w := o.builder().Build()
	defer w.Terminate()

	if err := populateArena(w); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, o.duration)
	defer cancel()

	if err := w.Run(ctx); err != nil {
		return err
	}

	printArenaSummary(w)

	return nil
}

const knightID = 1

func populateArena(w *simulation.World) error {
	knight := creature.MakeCombatantBuilder().
		WithHitpoints(150).
		Build(creature.NewCreature(knightID, "knight", creature.KindPlayer,
			world.Location{X: 4, Y: 4, Z: 7}, 220))
	if err := w.Spawn(knight); err != nil {
		return err
	}

	rats := []world.Location{
		{X: 12, Y: 10, Z: 7},
		{X: 13, Y: 10, Z: 7},
		{X: 12, Y: 11, Z: 7},
	}

	for i, loc := range rats {
		rat := creature.MakeCombatantBuilder().
			WithHitpoints(20).
			WithMaxCredits(1, 1).
			Build(creature.NewCreature(uint32(100+i), "rat",
				creature.KindMonster, loc, 90))
		if err := w.Spawn(rat); err != nil {
			return err
		}

		if err := w.Engage(rat.ID(), knightID); err != nil {
			return err
		}
	}

	if err := w.WalkTo(knightID, world.Location{X: 11, Y: 10, Z: 7}); err != nil {
		return err
	}

	return w.Engage(knightID, 100)
}

func printArenaSummary(w *simulation.World) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "CREATURE\tLOCATION\tHITPOINTS")
	for _, e := range w.Registry().All() {
		hp := "-"
		if c, ok := e.(*creature.Combatant); ok {
			hp = fmt.Sprintf("%d/%d", c.Hitpoints(), c.MaxHitpoints())
		}

		fmt.Fprintf(tw, "%s %d\t%s\t%s\n", e.Name(), e.ID(), e.Location(), hp)
	}

	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "KIND\tSCHEDULED\tEXECUTED\tCANCELLED\tEXPEDITED\tFAULTED")
	for _, s := range w.Stats() {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\n", s.Kind, s.Scheduled,
			s.Executed, s.Cancelled, s.Expedited, s.Faulted)
	}
}
