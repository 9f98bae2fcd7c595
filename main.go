package main

import (
	"fmt"
	"os"

	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"

	"github.com/virtualxperience/n8nsync/cmd"
)

var rootCmd = &cobra.Command{
	Use:   "n8nsync",
	Short: "n8nsync - Synchronize n8n workflows and credentials with a repository.",
	Long: `n8nsync moves workflow and credential definitions between a live n8n
instance and a repository-tracked set of JSON files, in both directions,
without creating duplicates.

Features:
  - Idempotent import: records are created or updated by id, never duplicated
  - Export with optional pruning of files that no longer exist remotely
  - Dry-run plans, readiness waiting, and safety thresholds for imports

Usage:
  n8nsync <command> [flags]

Available Commands:
  data    Import, export, and inspect workflow and credential data

Run 'n8nsync help <command>' for more details on a specific command.
`,
	Run: func(cmd *cobra.Command, args []string) {
		figure.NewColorFigure("n8nsync", "alligator2", "green", true).Print()
		fmt.Println()
		fmt.Println("Run 'n8nsync --help' to see available commands.")
	},
}

func main() {
	rootCmd.AddCommand(cmd.DataCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
