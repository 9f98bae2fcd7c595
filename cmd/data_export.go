package cmd

import (
	"github.com/spf13/cobra"

	"github.com/virtualxperience/n8nsync/internal/audit"
	"github.com/virtualxperience/n8nsync/internal/n8n"
	"github.com/virtualxperience/n8nsync/internal/syncer"
	"github.com/virtualxperience/n8nsync/internal/ui"
)

var (
	exportPruneFlag       bool
	exportDryRunFlag      bool
	exportWorkflowsFlag   bool
	exportCredentialsFlag bool
)

func init() {
	exportCmd.Flags().BoolVar(&exportPruneFlag, "prune", false, "delete local files whose records no longer exist remotely")
	exportCmd.Flags().BoolVar(&exportDryRunFlag, "dry-run", false, "report what would be written and pruned without touching disk")
	exportCmd.Flags().BoolVar(&exportWorkflowsFlag, "workflows", false, "export workflows only (default is both kinds)")
	exportCmd.Flags().BoolVar(&exportCredentialsFlag, "credentials", false, "export credentials only (default is both kinds)")

	DataCmd.AddCommand(exportCmd)
}

// resetExportCommandState resets the export command's global state for testing.
func resetExportCommandState() {
	exportPruneFlag = false
	exportDryRunFlag = false
	exportWorkflowsFlag = false
	exportCredentialsFlag = false
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export workflows and credentials from an n8n instance to local files",
	Long: `Downloads every workflow and credential from the target instance and
writes one JSON file per record under the data root, named
{id}-{slug(name)}.json. Existing files are overwritten; export is the
authoritative pull direction.

With --prune, local files whose records no longer exist remotely are
deleted, so the tracked mirror matches the instance exactly.

Credential exports include the encrypted data blob. The blob is only
portable to instances sharing the same encryption key.

Examples:
  # Export both kinds into the default data root
  n8nsync data export

  # Export and remove files for deleted records
  n8nsync data export --prune

  # Export workflows only
  n8nsync data export --workflows`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting export command")
		spinner, cleanup := startSpinner("Exporting data...", verbose)
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

		opts := syncer.ExportOptions{
			Root:        dataRoot,
			Prune:       exportPruneFlag,
			DryRun:      exportDryRunFlag,
			Workflows:   exportWorkflowsFlag || !(exportWorkflowsFlag || exportCredentialsFlag),
			Credentials: exportCredentialsFlag || !(exportWorkflowsFlag || exportCredentialsFlag),
		}
		if !cmd.Flags().Changed("prune") {
			opts.Prune = fileCfg.Export.Prune
		}

		exporter := &syncer.Exporter{API: client, Log: Logger}
		report, runErr := exporter.Run(cmd.Context(), opts)

		if report == nil {
			spinner.FinalMSG = ui.Error.Sprint("✗") + " Export failed\n" +
				ui.Info.Sprint("→") + " " + runErr.Error()
			return runErr
		}

		spinner.FinalMSG = formatExportReport(report, opts.Prune)

		if !report.DryRun {
			audit.Log(dataRoot, audit.Entry{
				Operation: "export",
				Target:    cfg.BaseURL,
				Written:   report.Workflows.Written + report.Credentials.Written,
				Pruned:    report.Workflows.Pruned + report.Credentials.Pruned,
			})
		}
		return runErr
	},
}
