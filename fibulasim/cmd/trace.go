package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fibula-mmo/fibula/datarecording"
	"github.com/fibula-mmo/fibula/tracing"
	"github.com/spf13/cobra"
)

var traceKinds []string

var traceCmd = &cobra.Command{
	Use:   "trace <recording>",
	Short: "Summarize the events of a recorded run.",
	Long: `Summarize the events of a recorded run. The recording is the ` +
		`database written by arena, with or without the .sqlite3 extension.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTrace(cmd.Context(), cmd.OutOrStdout(), args[0], traceKinds)
	},
}

func init() {
	traceCmd.Flags().StringSliceVar(&traceKinds, "kind", nil,
		"only summarize these event kinds")

	rootCmd.AddCommand(traceCmd)
}

func runTrace(
	ctx context.Context,
	out io.Writer,
	recording string,
	kinds []string,
) error {
	if !strings.HasSuffix(recording, ".sqlite3") {
		recording += ".sqlite3"
	}

	reader, err := datarecording.NewReader(recording)
	if err != nil {
		return err
	}
	defer reader.Close()

	summary, err := tracing.SummarizeTrace(ctx, reader, kinds...)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw,
		"KIND\tTOTAL\tCOMPLETED\tCANCELLED\tFAULTED\tUNFINISHED\tAVG LIFETIME")
	for _, s := range summary {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\t%s\n", s.Kind, s.Total(),
			s.Completed, s.Cancelled, s.Faulted, s.Unfinished,
			s.AverageLifetime)
	}

	return nil
}
