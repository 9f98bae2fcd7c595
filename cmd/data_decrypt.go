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
	"github.com/virtualxperience/n8nsync/internal/record"
	"github.com/virtualxperience/n8nsync/internal/ui"
)

var (
	decryptInputFlag  string
	decryptOutputFlag string
)

func init() {
	decryptCmd.Flags().StringVar(&decryptInputFlag, "input", "", "credential file or directory to decrypt (default: <root>/credentials)")
	decryptCmd.Flags().StringVarP(&decryptOutputFlag, "output", "o", "", "output path for the decrypted array (default: <root>/credentials/decrypted_credentials_for_import.json)")

	DataCmd.AddCommand(decryptCmd)
}

// resetDecryptCommandState resets the decrypt command's global state for testing.
func resetDecryptCommandState() {
	decryptInputFlag = ""
	decryptOutputFlag = ""
}

var decryptCmd = &cobra.Command{
	Use:   "decrypt",
	Short: "Decrypt exported credential data blobs",
	Long: `Decrypts the encrypted data field of exported credentials using the
instance's encryption key (N8N_ENCRYPTION_KEY) and writes a single JSON
array with plaintext data objects. The import-credentials command feeds
that array into an instance with a different encryption key.

The output contains plaintext secrets. Do not commit it.

Examples:
  # Decrypt every tracked credential file
  N8N_ENCRYPTION_KEY=... n8nsync data decrypt

  # Decrypt one legacy array file
  n8nsync data decrypt --input credentials1.json -o decrypted.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting decrypt command")
		spinner, cleanup := startSpinner("Decrypting credentials...", verbose)
		defer cleanup()

		cfg, _, err := resolveConfig()
		if err != nil {
			return Logger.ErrorfAndReturn("failed to load configuration: %v", err)
		}
		if cfg.EncryptionKey == "" {
			spinner.FinalMSG = ui.Error.Sprint("✗") + " " + syncerrors.ErrMissingEncryptionKey.Error() + "\n" +
				ui.Info.Sprint("→") + " Set " + ui.Code.Sprint("N8N_ENCRYPTION_KEY") + " to the source instance's key"
			return syncerrors.ErrMissingEncryptionKey
		}

		input := decryptInputFlag
		if input == "" {
			input = filepath.Join(dataRoot, record.KindCredential.Dir())
		}

		records, err := readCredentialInput(input)
		if err != nil {
			return Logger.ErrorfAndReturn("failed to read %s: %v", input, err)
		}

		var decrypted []creds.PlainCredential
		var failed []string
		for _, rec := range records {
			plain, err := creds.DecryptRecord(rec, cfg.EncryptionKey)
			if err != nil {
				Logger.Warnf("Failed to decrypt credential %q: %v", rec.Name, err)
				failed = append(failed, rec.Name)
				continue
			}
			decrypted = append(decrypted, plain)
		}

		output := decryptOutputFlag
		if output == "" {
			output = filepath.Join(dataRoot, record.KindCredential.Dir(), "decrypted_credentials_for_import.json")
		}
		data, err := json.MarshalIndent(decrypted, "", "  ")
		if err != nil {
			return Logger.ErrorfAndReturn("failed to encode output: %v", err)
		}
		if err := os.WriteFile(output, append(data, '\n'), 0600); err != nil {
			return Logger.ErrorfAndReturn("failed to write %s: %v", output, err)
		}

		msg := ui.Success.Sprint("✓") + " Decrypted " + ui.Highlight.Sprintf("%d", len(decrypted)) +
			" credential(s) to " + ui.Path.Sprint(output)
		if len(failed) > 0 {
			msg += "\n" + ui.Warning.Sprint("⚠") + " Failed to decrypt:" + ui.List(failed, ui.Error)
		}
		spinner.FinalMSG = msg

		audit.Log(dataRoot, audit.Entry{Operation: "decrypt", Written: len(decrypted), Failed: len(failed)})
		if len(failed) > 0 {
			return syncerrors.ErrDecryptFailed
		}
		return nil
	},
}

// readCredentialInput loads credential records from a file or directory.
func readCredentialInput(input string) ([]record.Record, error) {
	info, err := os.Stat(input)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", syncerrors.ErrDataRootNotFound, input)
	}
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		records, malformed, err := record.DecodeDir(input)
		if err != nil {
			return nil, err
		}
		for _, fe := range malformed {
			Logger.Warnf("Skipping %s: %v", fe.Path, fe.Err)
		}
		return records, nil
	}
	f, err := record.DecodeFile(input)
	if err != nil {
		return nil, err
	}
	return f.Records, nil
}
