package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/virtualxperience/n8nsync/internal/config"
	"github.com/virtualxperience/n8nsync/internal/record"
	"github.com/virtualxperience/n8nsync/internal/ui"
)

func init() {
	DataCmd.AddCommand(initCmd)
}

// resetInitCommandState resets the init command's global state for testing.
func resetInitCommandState() {}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Scaffold a data root for tracked workflow and credential files",
	Long: `Creates the data root directory with workflows/ and credentials/
subdirectories and a starter n8nsync.toml holding non-secret defaults.

Secrets (basic auth, the encryption key) are never written to the config
file; they stay in the environment.

Examples:
  # Scaffold the default data root
  n8nsync data init

  # Scaffold a custom location
  n8nsync data init --root n8n/demo-data`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting init command")
		spinner, cleanup := startSpinner("Initializing data root...", verbose)
		defer cleanup()

		configPath := filepath.Join(dataRoot, config.FileName)
		if _, err := os.Stat(configPath); err == nil {
			spinner.FinalMSG = ui.Error.Sprint("✗") + " " + ui.Path.Sprint(configPath) + " already exists\n" +
				ui.Info.Sprint("→") + " Edit it directly, or remove it and run " + ui.Code.Sprint("n8nsync data init") + " again"
			return nil
		}

		for _, kind := range []record.Kind{record.KindWorkflow, record.KindCredential} {
			dir := filepath.Join(dataRoot, kind.Dir())
			if err := os.MkdirAll(dir, 0755); err != nil {
				return Logger.ErrorfAndReturn("failed to create %s: %v", dir, err)
			}
			Logger.Debugf("Created %s", dir)
		}

		cfg, _, err := resolveConfig()
		if err != nil {
			return Logger.ErrorfAndReturn("failed to load configuration: %v", err)
		}

		fileCfg := &config.FileConfig{}
		fileCfg.Target.BaseURL = cfg.BaseURL
		if err := config.SaveFile(dataRoot, fileCfg); err != nil {
			return Logger.ErrorfAndReturn("failed to write %s: %v", configPath, err)
		}

		spinner.FinalMSG = ui.Success.Sprint("✓") + " Initialized data root at " + ui.Path.Sprint(dataRoot) + "\n" +
			ui.Info.Sprint("→") + " Run " + ui.Code.Sprint("n8nsync data export") + " to pull the current instance state"
		return nil
	},
}
