package main

import (
	"fmt"
	"os"

	"github.com/PolarWolf314/conf/cmd"
	"github.com/PolarWolf314/conf/internal/ui"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "conf",
	Short: "conf - persistent key/value configuration for applications",
	Long: `conf reads and writes the single-file configuration stores applications
keep in their per-user config directory.

Usage:
  conf <command> [flags]

Available Commands:
  store    Read and change a configuration store

Run 'conf help <command>' for more details on a specific command.
`,
	SilenceErrors: true,
	SilenceUsage:  true,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Run 'conf --help' to see available commands.")
	},
}

func init() {
	rootCmd.AddCommand(cmd.StoreCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprint(os.Stderr, ui.EnsureNewline(cmd.FormatError(err)))
		os.Exit(1)
	}
}
