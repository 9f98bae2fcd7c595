package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/virtualxperience/n8nsync/internal/audit"
	"github.com/virtualxperience/n8nsync/internal/ui"
)

var (
	logLimitFlag     int
	logReverseFlag   bool
	logOperationFlag string
	logJSONFlag      bool
)

func init() {
	logCmd.Flags().IntVarP(&logLimitFlag, "number", "n", 0, "limit number of entries shown")
	logCmd.Flags().BoolVar(&logReverseFlag, "reverse", false, "show most recent entries first")
	logCmd.Flags().StringVar(&logOperationFlag, "operation", "", "filter by operation (comma-separated: import,export,decrypt,split)")
	logCmd.Flags().BoolVar(&logJSONFlag, "json", false, "output as JSON array")

	DataCmd.AddCommand(logCmd)
}

// resetLogCommandState resets the log command's global state for testing.
func resetLogCommandState() {
	logLimitFlag = 0
	logReverseFlag = false
	logOperationFlag = ""
	logJSONFlag = false
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "View the audit trail of sync runs",
	Long: `Displays the audit log of import and export runs recorded under the
data root.

Examples:
  n8nsync data log                     # View full log
  n8nsync data log -n 10               # Last 10 entries
  n8nsync data log --reverse           # Most recent first
  n8nsync data log --operation import  # Imports only
  n8nsync data log --json              # JSON output`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting log command")

		entries, err := audit.ReadEntries(dataRoot)
		if err != nil {
			return Logger.ErrorfAndReturn("failed to read audit log: %v", err)
		}

		entries = filterEntries(entries)
		if logReverseFlag {
			for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
				entries[i], entries[j] = entries[j], entries[i]
			}
		}
		if logLimitFlag > 0 && len(entries) > logLimitFlag {
			entries = entries[:logLimitFlag]
		}

		if logJSONFlag {
			data, err := json.MarshalIndent(entries, "", "  ")
			if err != nil {
				return err
			}
			cmd.Println(string(data))
			return nil
		}

		if len(entries) == 0 {
			cmd.Println(ui.Muted.Sprint("no audit entries"))
			return nil
		}
		for _, e := range entries {
			cmd.Println(formatLogEntry(e))
		}
		return nil
	},
}

func filterEntries(entries []audit.Entry) []audit.Entry {
	if logOperationFlag == "" {
		return entries
	}
	wanted := make(map[string]bool)
	for _, op := range strings.Split(logOperationFlag, ",") {
		wanted[strings.TrimSpace(op)] = true
	}
	var filtered []audit.Entry
	for _, e := range entries {
		if wanted[e.Operation] {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

func formatLogEntry(e audit.Entry) string {
	var counts []string
	appendCount := func(label string, n int) {
		if n > 0 {
			counts = append(counts, fmt.Sprintf("%s %d", label, n))
		}
	}
	appendCount("created", e.Created)
	appendCount("updated", e.Updated)
	appendCount("written", e.Written)
	appendCount("pruned", e.Pruned)
	appendCount("failed", e.Failed)

	line := ui.Muted.Sprint(e.Timestamp) + " " + ui.Highlight.Sprint(e.Operation)
	if e.Target != "" {
		line += " " + ui.Path.Sprint(e.Target)
	}
	if len(counts) > 0 {
		line += "  " + strings.Join(counts, ", ")
	}
	return line
}
