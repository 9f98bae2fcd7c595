package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/virtualxperience/n8nsync/internal/audit"
	"github.com/virtualxperience/n8nsync/internal/creds"
	syncerrors "github.com/virtualxperience/n8nsync/internal/errors"
	"github.com/virtualxperience/n8nsync/internal/n8n"
	"github.com/virtualxperience/n8nsync/internal/record"
	"github.com/virtualxperience/n8nsync/internal/ui"
)

var (
	importCredsInputFlag  string
	importCredsAPIKeyFlag string
	importCredsDryRunFlag bool
)

func init() {
	importCredsCmd.Flags().StringVar(&importCredsInputFlag, "input", "", "decrypted credential array to import (default: <root>/credentials/decrypted_credentials_for_import.json)")
	importCredsCmd.Flags().StringVar(&importCredsAPIKeyFlag, "api-key", "", "public API key (default: $N8N_API_KEY)")
	importCredsCmd.Flags().BoolVar(&importCredsDryRunFlag, "dry-run", false, "validate and print the plan without creating anything")

	DataCmd.AddCommand(importCredsCmd)
}

// resetImportCredsCommandState resets the import-credentials command's global state for testing.
func resetImportCredsCommandState() {
	importCredsInputFlag = ""
	importCredsAPIKeyFlag = ""
	importCredsDryRunFlag = false
}

// importEntry is one element of the decrypted credential array, restricted to
// the fields the public API accepts. Anything else in the input (ids,
// timestamps) is dropped before posting.
type importEntry struct {
	Name        string                     `json:"name"`
	Type        string                     `json:"type"`
	Data        map[string]json.RawMessage `json:"data"`
	NodesAccess json.RawMessage            `json:"nodesAccess,omitempty"`
	Tags        json.RawMessage            `json:"tags,omitempty"`
	IsManaged   bool                       `json:"isManaged"`
}

var importCredsCmd = &cobra.Command{
	Use:   "import-credentials",
	Short: "Import decrypted credentials through the public API",
	Long: `Creates credentials on the target instance from the plaintext array the
decrypt command writes, using the public /api/v1 API with an API key
(N8N_API_KEY) instead of basic auth. The target validates each payload
against its credential type schema and re-encrypts the data with its own
encryption key, so this is the way to move credentials between instances
with different keys.

Credential data is sanitized against the type schema before posting:
fields the schema does not declare are dropped, schema defaults fill in
omitted fields, and credentials missing a required field are skipped.

The public API has no update route. Re-running this command creates
duplicates; it is meant for seeding a fresh instance.

Examples:
  # Import the decrypt command's default output
  N8N_API_KEY=... n8nsync data import-credentials

  # Validate the payloads without creating anything
  n8nsync data import-credentials --dry-run`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting import-credentials command")
		spinner, cleanup := startSpinner("Importing credentials...", verbose)
		defer cleanup()

		cfg, _, err := resolveConfig()
		if err != nil {
			return Logger.ErrorfAndReturn("failed to load configuration: %v", err)
		}
		if importCredsAPIKeyFlag != "" {
			cfg.APIKey = importCredsAPIKeyFlag
		}
		if cfg.BaseURL == "" {
			spinner.FinalMSG = ui.Error.Sprint("✗") + " " + syncerrors.ErrMissingBaseURL.Error() + "\n" +
				ui.Info.Sprint("→") + " Set " + ui.Code.Sprint("N8N_BASE_URL") + " or pass " + ui.Flag.Sprint("--base-url")
			return syncerrors.ErrMissingBaseURL
		}
		if cfg.APIKey == "" {
			spinner.FinalMSG = ui.Error.Sprint("✗") + " " + syncerrors.ErrMissingAPIKey.Error() + "\n" +
				ui.Info.Sprint("→") + " Set " + ui.Code.Sprint("N8N_API_KEY") + " or pass " + ui.Flag.Sprint("--api-key")
			return syncerrors.ErrMissingAPIKey
		}

		input := importCredsInputFlag
		if input == "" {
			input = filepath.Join(dataRoot, record.KindCredential.Dir(), "decrypted_credentials_for_import.json")
		}
		entries, err := readImportEntries(input)
		if err != nil {
			return Logger.ErrorfAndReturn("failed to read %s: %v", input, err)
		}

		client, err := n8n.NewPublicClient(cfg, Logger)
		if err != nil {
			return Logger.ErrorfAndReturn("failed to build API client: %v", err)
		}

		ctx := cmd.Context()
		schemas := map[string]*creds.Schema{}
		var imported int
		var skipped, failed []string

		for _, entry := range entries {
			schema, ok := schemas[entry.Type]
			if !ok {
				schema, err = client.CredentialSchema(ctx, entry.Type)
				if err != nil {
					Logger.Warnf("No schema for type %q, importing data as-is: %v", entry.Type, err)
					schema = nil
				}
				schemas[entry.Type] = schema
			}

			if schema != nil && len(schema.Required) > 0 {
				entry.Data = schema.Sanitize(entry.Data)
				if missing := schema.MissingRequired(entry.Data); len(missing) > 0 {
					Logger.Warnf("Skipping credential %q: missing required field(s) %v", entry.Name, missing)
					skipped = append(skipped, entry.Name)
					continue
				}
			}

			if importCredsDryRunFlag {
				Logger.Infof("Would import credential %q (%s)", entry.Name, entry.Type)
				imported++
				continue
			}

			payload, err := json.Marshal(entry)
			if err != nil {
				return Logger.ErrorfAndReturn("failed to encode credential %q: %v", entry.Name, err)
			}
			if err := client.CreateCredential(ctx, payload); err != nil {
				Logger.Warnf("Failed to import credential %q: %v", entry.Name, err)
				failed = append(failed, entry.Name)
				continue
			}
			Logger.Infof("Imported credential %q (%s)", entry.Name, entry.Type)
			imported++
		}

		verb := "Imported"
		if importCredsDryRunFlag {
			verb = "Would import"
		}
		msg := ui.Success.Sprint("✓") + " " + verb + " " + ui.Highlight.Sprintf("%d", imported) +
			" credential(s) into " + ui.Path.Sprint(cfg.BaseURL)
		if len(skipped) > 0 {
			msg += "\n" + ui.Warning.Sprint("⚠") + " Skipped (missing required fields):" + ui.List(skipped, ui.Warning)
		}
		if len(failed) > 0 {
			msg += "\n" + ui.Warning.Sprint("⚠") + " Failed to import:" + ui.List(failed, ui.Error)
		}
		spinner.FinalMSG = msg

		if !importCredsDryRunFlag {
			audit.Log(dataRoot, audit.Entry{
				Operation: "import-credentials",
				Target:    cfg.BaseURL,
				Created:   imported,
				Failed:    len(failed),
			})
		}
		if len(failed) > 0 {
			return syncerrors.ErrRecordsFailed
		}
		return nil
	},
}

// readImportEntries loads the decrypted credential array written by the
// decrypt command.
func readImportEntries(input string) ([]importEntry, error) {
	data, err := os.ReadFile(input)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s (run `n8nsync data decrypt` first)", syncerrors.ErrDataRootNotFound, input)
	}
	if err != nil {
		return nil, err
	}

	var entries []importEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", syncerrors.ErrMalformedRecord, err)
	}
	return entries, nil
}
