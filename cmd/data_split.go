package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/virtualxperience/n8nsync/internal/audit"
	"github.com/virtualxperience/n8nsync/internal/record"
	"github.com/virtualxperience/n8nsync/internal/ui"
)

var splitOutputDirFlag string

func init() {
	splitCmd.Flags().StringVarP(&splitOutputDirFlag, "output-dir", "o", "", "directory for the per-record files (default: the input file's directory)")

	DataCmd.AddCommand(splitCmd)
}

// resetSplitCommandState resets the split command's global state for testing.
func resetSplitCommandState() {
	splitOutputDirFlag = ""
}

var splitCmd = &cobra.Command{
	Use:   "split <file>",
	Short: "Split a legacy array-format file into one file per record",
	Long: `Older exports stored many records in a single JSON array file. Split
rewrites such a file as one {id}-{slug(name)}.json file per record, the
current convention. The input file is left in place.

Records without an id cannot be named deterministically and fail the
split; import the array file directly instead, so the instance assigns
ids first.

Examples:
  n8nsync data split n8n/demo-data/workflows/workflows1.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting split command")
		spinner, cleanup := startSpinner("Splitting records...", verbose)
		defer cleanup()

		input := args[0]
		f, err := record.DecodeFile(input)
		if err != nil {
			return Logger.ErrorfAndReturn("failed to decode %s: %v", input, err)
		}
		if f.Shape != record.ShapeArray {
			spinner.FinalMSG = ui.Error.Sprint("✗") + " " + ui.Path.Sprint(input) + " is not an array-format file\n" +
				ui.Info.Sprint("→") + " Single-record files are already in the current convention"
			return nil
		}

		outDir := splitOutputDirFlag
		if outDir == "" {
			outDir = filepath.Dir(input)
		}

		var written []string
		for _, rec := range f.Records {
			path, err := record.Write(outDir, rec)
			if err != nil {
				return Logger.ErrorfAndReturn("failed to write record from %s: %v", rec.Source, err)
			}
			written = append(written, filepath.Base(path))
		}

		spinner.FinalMSG = ui.Success.Sprint("✓") + " Split " + ui.Highlight.Sprintf("%d", len(written)) +
			" record(s) into " + ui.Path.Sprint(outDir) + ui.List(written, ui.Path)

		audit.Log(dataRoot, audit.Entry{Operation: "split", Written: len(written)})
		return nil
	},
}
