package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/virtualxperience/n8nsync/internal/config"
	logger "github.com/virtualxperience/n8nsync/internal/logging"
)

var (
	verbose    bool
	debug      bool
	baseURL    string
	authUser   string
	authPass   string
	dataRoot   string
	configPath string
	Logger     logger.Logger

	DataCmd = &cobra.Command{
		Use:   "data",
		Short: "Synchronize workflow and credential data with an n8n instance",
		Long: `Provides import, export, decryption, splitting, and audit of workflow
and credential JSON files against a live n8n instance.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			Logger = logger.Logger{
				Verbose: verbose,
				Debug:   debug,
			}
			Logger.Debugf("Initializing data command with verbose=%t, debug=%t", verbose, debug)
		},
	}
)

func init() {
	DataCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	DataCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug output")
	DataCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "base URL of the target n8n instance (default: $N8N_BASE_URL)")
	DataCmd.PersistentFlags().StringVar(&authUser, "user", "", "basic auth username (default: $N8N_BASIC_AUTH_USER)")
	DataCmd.PersistentFlags().StringVar(&authPass, "password", "", "basic auth password (default: $N8N_BASIC_AUTH_PASSWORD)")
	DataCmd.PersistentFlags().StringVar(&dataRoot, "root", "n8n/demo-data", "data root directory containing workflows/ and credentials/")
	DataCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to an n8nsync.toml (default: <root>/n8nsync.toml)")
}

// resolveConfig merges flag, environment, and file configuration.
// Precedence: flags > environment > n8nsync.toml in the data root.
func resolveConfig() (config.Config, *config.FileConfig, error) {
	cfg := config.FromEnv()

	var fileCfg *config.FileConfig
	var err error
	if configPath != "" {
		fileCfg = &config.FileConfig{}
		err = config.LoadTOML(configPath, fileCfg)
	} else {
		fileCfg, err = config.LoadFile(dataRoot)
	}
	if err != nil {
		return cfg, nil, fmt.Errorf("loading %s: %w", config.FileName, err)
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = fileCfg.Target.BaseURL
	}
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if authUser != "" {
		cfg.User = authUser
	}
	if authPass != "" {
		cfg.Password = authPass
	}
	return cfg, fileCfg, nil
}

// Helper functions for testing

// GetDataCmd returns the DataCmd for testing.
func GetDataCmd() *cobra.Command {
	return DataCmd
}

// ResetGlobalState resets all global variables to their default values for testing.
func ResetGlobalState() {
	verbose = false
	debug = false
	baseURL = ""
	authUser = ""
	authPass = ""
	dataRoot = "n8n/demo-data"
	configPath = ""
	resetImportCommandState()
	resetImportCredsCommandState()
	resetExportCommandState()
	resetInitCommandState()
	resetDecryptCommandState()
	resetSplitCommandState()
	resetLogCommandState()

	// Cobra remembers which flags were set on previous executions of the
	// same command object; clear that too so runs stay independent.
	resetFlags(DataCmd.PersistentFlags())
	for _, sub := range DataCmd.Commands() {
		resetFlags(sub.Flags())
	}
}

func resetFlags(flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		f.Changed = false
		_ = f.Value.Set(f.DefValue)
	})
}

// SetLogger sets the logger for testing.
func SetLogger(l logger.Logger) {
	Logger = l
}
