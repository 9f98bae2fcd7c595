package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"

	"github.com/virtualxperience/n8nsync/internal/syncer"
	"github.com/virtualxperience/n8nsync/internal/ui"
)

// startSpinner creates and starts a spinner with the given message when not in verbose or debug mode.
// Returns the spinner and a function that should be deferred to clean up.
//
// IMPORTANT: spinner.FinalMSG values do NOT need trailing newlines. The cleanup function
// automatically calls ui.EnsureNewline() on the final message before printing it.
func startSpinner(message string, verbose bool) (*spinner.Spinner, func()) {
	Logger.Debugf("Starting spinner with message: %s", message)
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message

	if err := s.Color("cyan"); err != nil {
		// If we can't set spinner color, just continue without it.
		Logger.Warnf("Failed to set spinner color: %v", err)
	}

	if !verbose && !debug {
		s.Start()
		// Ensure log output is discarded unless in verbose mode.
		log.SetOutput(io.Discard)
	} else {
		Logger.Infof("Running in verbose or debug mode: %s", message)
	}

	cleanup := func() {
		if !verbose && !debug {
			log.SetOutput(os.Stdout)
		}

		finalMsg := ""
		if s.FinalMSG != "" {
			finalMsg = ui.EnsureNewline(s.FinalMSG)
			// Clear FinalMSG so s.Stop() doesn't print it.
			s.FinalMSG = ""
		}

		if !verbose && !debug {
			s.Stop()
		}

		if finalMsg != "" {
			fmt.Print(finalMsg)
		}
	}

	return s, cleanup
}

// formatImportReport renders the import summary shown to the user. It is
// printed even on abort, so the user always sees what did or would have
// happened.
func formatImportReport(rep *syncer.ImportReport, runErr error) string {
	var b strings.Builder

	switch {
	case runErr != nil:
		b.WriteString(ui.Error.Sprint("✗") + " Import failed\n")
	case rep.DryRun:
		b.WriteString(ui.Success.Sprint("✓") + " Dry-run complete; no API calls were made to modify data\n")
	default:
		b.WriteString(ui.Success.Sprint("✓") + " Import complete\n")
	}

	for _, kind := range []syncer.KindReport{rep.Workflows, rep.Credentials} {
		if kind.Skipped {
			b.WriteString(fmt.Sprintf("  %ss: %s\n", kind.Kind, ui.Muted.Sprint("skipped")))
			continue
		}
		if rep.DryRun || rep.Aborted {
			b.WriteString(fmt.Sprintf("  %ss: %d to create, %d to update\n",
				kind.Kind, len(kind.Plan.ToCreate), len(kind.Plan.ToUpdate)))
			if len(kind.Plan.ToCreate) > 0 {
				b.WriteString("    create:" + ui.List(syncer.Labels(kind.Plan.ToCreate), ui.Highlight))
			}
			if len(kind.Plan.ToUpdate) > 0 {
				b.WriteString("    update:" + ui.List(syncer.Labels(kind.Plan.ToUpdate), ui.Highlight))
			}
		} else {
			b.WriteString(fmt.Sprintf("  %ss: created %d, updated %d, failed %d\n",
				kind.Kind, kind.Created, kind.Updated, len(kind.Failed)))
		}
		for _, fe := range kind.Malformed {
			b.WriteString("  " + ui.Warning.Sprint("⚠") + " excluded " + ui.Path.Sprint(fe.Path) +
				" " + ui.Muted.Sprint(fe.Err.Error()) + "\n")
		}
	}

	if failed := rep.FailedLabels(); len(failed) > 0 {
		b.WriteString("  failed:" + ui.List(failed, ui.Error))
	}
	if runErr != nil {
		b.WriteString(ui.Info.Sprint("→") + " " + runErr.Error())
	}
	return b.String()
}

// formatExportReport renders the export summary.
func formatExportReport(rep *syncer.ExportReport, pruned bool) string {
	var b strings.Builder

	if rep.DryRun {
		b.WriteString(ui.Success.Sprint("✓") + " Dry-run complete; nothing was written\n")
	} else {
		b.WriteString(ui.Success.Sprint("✓") + " Export complete\n")
	}

	for _, kind := range []syncer.ExportKindReport{rep.Workflows, rep.Credentials} {
		if kind.Written == 0 && kind.Pruned == 0 {
			continue
		}
		line := fmt.Sprintf("  %ss: %d written", kind.Kind, kind.Written)
		if pruned {
			line += fmt.Sprintf(", %d pruned", kind.Pruned)
		}
		b.WriteString(line + "\n")
		if len(kind.PrunedFiles) > 0 {
			b.WriteString("    pruned:" + ui.List(kind.PrunedFiles, ui.Path))
		}
	}
	return b.String()
}
