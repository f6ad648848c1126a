// Package cmd provides the command-line interface of fibulasim.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fibulasim",
	Short: "fibulasim runs creatures on a map with the fibula scheduler.",
	Long: `fibulasim runs creatures on a map with the fibula scheduler. ` +
		`Defaults can be set in a .env file with FIBULA_ROUND_TIME, ` +
		`FIBULA_MONITOR_PORT, FIBULA_RECORD and FIBULA_SEED.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
