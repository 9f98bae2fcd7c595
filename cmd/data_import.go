package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/virtualxperience/n8nsync/internal/audit"
	"github.com/virtualxperience/n8nsync/internal/n8n"
	"github.com/virtualxperience/n8nsync/internal/syncer"
	"github.com/virtualxperience/n8nsync/internal/ui"
)

var (
	importDryRunFlag        bool
	importWaitReadyFlag     int
	importReadyIntervalFlag int
	importMinWorkflowsFlag  int
	importMinCredsFlag      int
	importSkipWorkflowsFlag bool
	importSkipCredsFlag     bool
)

func init() {
	importCmd.Flags().BoolVar(&importDryRunFlag, "dry-run", false, "classify records and print the plan without modifying the instance")
	importCmd.Flags().IntVar(&importWaitReadyFlag, "wait-ready", 0, "wait up to this many seconds for the instance to become responsive before importing")
	importCmd.Flags().IntVar(&importReadyIntervalFlag, "ready-interval", 2, "polling interval in seconds while waiting for readiness")
	importCmd.Flags().IntVar(&importMinWorkflowsFlag, "min-workflows", 0, "abort if fewer than this many workflow records are about to be imported")
	importCmd.Flags().IntVar(&importMinCredsFlag, "min-credentials", 0, "abort if fewer than this many credential records are about to be imported")
	importCmd.Flags().BoolVar(&importSkipWorkflowsFlag, "skip-workflows", false, "do not import workflows")
	importCmd.Flags().BoolVar(&importSkipCredsFlag, "skip-credentials", false, "do not import credentials")

	DataCmd.AddCommand(importCmd)
}

// resetImportCommandState resets the import command's global state for testing.
func resetImportCommandState() {
	importDryRunFlag = false
	importWaitReadyFlag = 0
	importReadyIntervalFlag = 2
	importMinWorkflowsFlag = 0
	importMinCredsFlag = 0
	importSkipWorkflowsFlag = false
	importSkipCredsFlag = false
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import local workflow and credential files into an n8n instance",
	Long: `Pushes the JSON files under the data root to the target instance.

Records are matched by id: an id the instance does not know is created,
a known id is updated in place with the local payload. Running the same
import twice never duplicates records. Credential files must carry data
encrypted with the same encryption key as the target instance.

Safety thresholds guard against importing from an empty or truncated
directory: if fewer records than --min-workflows or --min-credentials
are about to be imported, the run aborts before any change is made.

Examples:
  # Import both kinds from the default data root
  n8nsync data import

  # Preview the plan without modifying the instance
  n8nsync data import --dry-run

  # Wait up to two minutes for a freshly deployed instance
  n8nsync data import --wait-ready 120

  # Refuse to run against a suspiciously small local directory
  n8nsync data import --min-workflows 5 --min-credentials 2`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting import command")
		spinner, cleanup := startSpinner("Importing data...", verbose)
		defer cleanup()

		cfg, fileCfg, err := resolveConfig()
		if err != nil {
			return Logger.ErrorfAndReturn("failed to load configuration: %v", err)
		}
		if err := cfg.ValidateTarget(); err != nil {
			spinner.FinalMSG = ui.Error.Sprint("✗") + " " + err.Error() + "\n" +
				ui.Info.Sprint("→") + " Set " + ui.Code.Sprint("N8N_BASE_URL") + ", " +
				ui.Code.Sprint("N8N_BASIC_AUTH_USER") + " and " + ui.Code.Sprint("N8N_BASIC_AUTH_PASSWORD") +
				", or pass " + ui.Flag.Sprint("--base-url") + ", " + ui.Flag.Sprint("--user") + ", " + ui.Flag.Sprint("--password")
			return err
		}

		client, err := n8n.NewClient(cfg, Logger)
		if err != nil {
			return Logger.ErrorfAndReturn("failed to build API client: %v", err)
		}

		opts := syncer.ImportOptions{
			Root:          dataRoot,
			DryRun:        importDryRunFlag,
			WaitReady:     time.Duration(importWaitReadyFlag) * time.Second,
			ReadyInterval: time.Duration(importReadyIntervalFlag) * time.Second,
			Thresholds: syncer.Thresholds{
				MinWorkflows:   importMinWorkflowsFlag,
				MinCredentials: importMinCredsFlag,
			},
			SkipWorkflows:   importSkipWorkflowsFlag || cfg.SkipWorkflows,
			SkipCredentials: importSkipCredsFlag || cfg.SkipCredentials,
		}

		// File config fills in anything the flags left at their defaults.
		if !cmd.Flags().Changed("wait-ready") && fileCfg.Import.WaitReadySeconds > 0 {
			opts.WaitReady = time.Duration(fileCfg.Import.WaitReadySeconds) * time.Second
		}
		if !cmd.Flags().Changed("ready-interval") && fileCfg.Import.ReadyIntervalSecs > 0 {
			opts.ReadyInterval = time.Duration(fileCfg.Import.ReadyIntervalSecs) * time.Second
		}
		if !cmd.Flags().Changed("min-workflows") {
			opts.Thresholds.MinWorkflows = fileCfg.Import.MinWorkflows
		}
		if !cmd.Flags().Changed("min-credentials") {
			opts.Thresholds.MinCredentials = fileCfg.Import.MinCredentials
		}

		importer := &syncer.Importer{API: client, Log: Logger}
		report, runErr := importer.Run(cmd.Context(), opts)

		if report == nil {
			spinner.FinalMSG = ui.Error.Sprint("✗") + " Import failed\n" +
				ui.Info.Sprint("→") + " " + runErr.Error()
			return runErr
		}

		spinner.FinalMSG = formatImportReport(report, runErr)

		if !report.DryRun && !report.Aborted {
			audit.Log(dataRoot, audit.Entry{
				Operation: "import",
				Target:    cfg.BaseURL,
				Created:   report.Workflows.Created + report.Credentials.Created,
				Updated:   report.Workflows.Updated + report.Credentials.Updated,
				Failed:    report.TotalFailed(),
			})
		}
		return runErr
	},
}
