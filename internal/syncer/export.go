package syncer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	logger "github.com/virtualxperience/n8nsync/internal/logging"
	"github.com/virtualxperience/n8nsync/internal/record"
)

// ExportOptions configures one export run.
type ExportOptions struct {
	// Root is the destination directory; each kind gets its own subdirectory.
	Root string

	// Prune deletes local files whose ids no longer exist remotely, keeping
	// the tracked mirror exactly representative of remote state.
	Prune bool

	// DryRun reports what would be written and pruned without touching disk.
	DryRun bool

	// Workflows and Credentials select the kinds to export.
	Workflows   bool
	Credentials bool
}

// ExportKindReport is the export outcome for one record kind.
type ExportKindReport struct {
	Kind    record.Kind
	Written int
	Pruned  int

	// PrunedFiles enumerates the files removed (or, on dry-run, the files
	// that would be removed).
	PrunedFiles []string
}

// ExportReport is the outcome of one export run.
type ExportReport struct {
	DryRun      bool
	Workflows   ExportKindReport
	Credentials ExportKindReport
}

// Exporter pulls every remote record into the destination directory. Export
// is the authoritative pull direction: files are overwritten unconditionally
// and local state is never consulted as a source of truth.
type Exporter struct {
	API API
	Log logger.Logger
}

// Run exports the selected kinds. The remote listing is fetched fresh; any
// read failure is fatal (no partial mirror against an unknown catalog).
func (e *Exporter) Run(ctx context.Context, opts ExportOptions) (*ExportReport, error) {
	report := &ExportReport{
		DryRun:      opts.DryRun,
		Workflows:   ExportKindReport{Kind: record.KindWorkflow},
		Credentials: ExportKindReport{Kind: record.KindCredential},
	}

	if opts.Workflows {
		if err := e.exportKind(ctx, opts, &report.Workflows); err != nil {
			return nil, err
		}
	}
	if opts.Credentials {
		if err := e.exportKind(ctx, opts, &report.Credentials); err != nil {
			return nil, err
		}
	}
	return report, nil
}

func (e *Exporter) exportKind(ctx context.Context, opts ExportOptions, rep *ExportKindReport) error {
	dir := filepath.Join(opts.Root, rep.Kind.Dir())

	summaries, err := e.API.List(ctx, rep.Kind)
	if err != nil {
		return err
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].ID < summaries[j].ID })

	remoteIDs := make(map[string]bool, len(summaries))
	for _, s := range summaries {
		remoteIDs[s.ID] = true
	}

	if opts.DryRun {
		rep.Written = len(summaries)
	} else {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
		for _, s := range summaries {
			if err := ctx.Err(); err != nil {
				return err
			}
			rec, err := e.API.Get(ctx, rep.Kind, s.ID)
			if err != nil {
				return err
			}
			path, err := record.Write(dir, rec)
			if err != nil {
				return fmt.Errorf("writing %s %s: %w", rep.Kind, s.ID, err)
			}
			rep.Written++
			e.Log.Infof("Wrote %s", path)
		}
	}

	if opts.Prune {
		if err := e.prune(dir, remoteIDs, opts.DryRun, rep); err != nil {
			return err
		}
	}
	return nil
}

// prune removes local files whose records no longer exist remotely. A legacy
// array file is removed only when every record it holds is gone. Files that
// fail to decode are kept and warned about; deleting something we cannot
// identify is worse than leaving it.
func (e *Exporter) prune(dir string, remoteIDs map[string]bool, dryRun bool, rep *ExportKindReport) error {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return err
	}
	sort.Strings(paths)

	for _, path := range paths {
		f, err := record.DecodeFile(path)
		if err != nil {
			e.Log.Warnf("Not pruning %s: %v", path, err)
			continue
		}

		stale := len(f.Records) > 0
		for _, rec := range f.Records {
			if remoteIDs[rec.ID] {
				stale = false
				break
			}
		}
		if !stale {
			continue
		}

		if !dryRun {
			if err := os.Remove(path); err != nil {
				return err
			}
			e.Log.Infof("Pruned %s", path)
		}
		rep.Pruned++
		rep.PrunedFiles = append(rep.PrunedFiles, filepath.Base(path))
	}
	return nil
}
