package syncer

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	syncerrors "github.com/virtualxperience/n8nsync/internal/errors"
	logger "github.com/virtualxperience/n8nsync/internal/logging"
	"github.com/virtualxperience/n8nsync/internal/record"
)

// ImportOptions configures one import run.
type ImportOptions struct {
	// Root is the directory holding workflows/ and credentials/ subdirectories.
	Root string

	// DryRun builds and reports the plan but issues no mutating call.
	DryRun bool

	// WaitReady, when positive, polls the target's health route for up to
	// this long before the first catalog read.
	WaitReady time.Duration

	// ReadyInterval is the pause between health probes.
	ReadyInterval time.Duration

	// Thresholds aborts the import when the plan is suspiciously small.
	Thresholds Thresholds

	// SkipWorkflows and SkipCredentials exclude a kind from the run.
	SkipWorkflows   bool
	SkipCredentials bool
}

// RecordFailure describes one record whose create or update call failed.
// Failures are aggregated, never silently dropped: the batch continues, but
// the run as a whole is reported as failed.
type RecordFailure struct {
	ID     string
	Name   string
	Source string
	Err    error
}

// Label returns the most useful identifier for the failed record.
func (f RecordFailure) Label() string {
	if f.ID != "" {
		return f.ID
	}
	return f.Source
}

// KindReport is the import outcome for one record kind.
type KindReport struct {
	Kind      record.Kind
	Skipped   bool
	Plan      Plan
	Created   int
	Updated   int
	Failed    []RecordFailure
	Malformed []record.FileError
}

// ImportReport is the outcome of one import run. It is always produced,
// even on abort, so the user sees what would have happened or did happen.
type ImportReport struct {
	DryRun      bool
	Aborted     bool
	Workflows   KindReport
	Credentials KindReport
}

// TotalFailed is the number of records whose API call failed.
func (r *ImportReport) TotalFailed() int {
	return len(r.Workflows.Failed) + len(r.Credentials.Failed)
}

// TotalMalformed is the number of local files excluded from the plan.
func (r *ImportReport) TotalMalformed() int {
	return len(r.Workflows.Malformed) + len(r.Credentials.Malformed)
}

// FailedLabels enumerates the identifiers of all failed records.
func (r *ImportReport) FailedLabels() []string {
	var labels []string
	for _, f := range r.Workflows.Failed {
		labels = append(labels, f.Label())
	}
	for _, f := range r.Credentials.Failed {
		labels = append(labels, f.Label())
	}
	return labels
}

// Importer pushes local records to the target instance, creating records
// whose id is unknown remotely and updating the rest. Local is authoritative
// on import; payloads replace the remote state wholesale.
type Importer struct {
	API API
	Log logger.Logger
}

// Run executes the import flow: optional readiness wait, local decode,
// catalog read, safety gate, then the upserts (or the dry-run report).
// Records are processed one at a time in ascending-id order; a single
// record's failure does not abort the batch. The returned report is non-nil
// whenever the flow got far enough to build one.
func (imp *Importer) Run(ctx context.Context, opts ImportOptions) (*ImportReport, error) {
	if opts.WaitReady > 0 {
		if err := WaitForReady(ctx, imp.API, opts.WaitReady, opts.ReadyInterval, imp.Log); err != nil {
			return nil, err
		}
	}

	report := &ImportReport{
		DryRun:      opts.DryRun,
		Workflows:   KindReport{Kind: record.KindWorkflow, Skipped: opts.SkipWorkflows},
		Credentials: KindReport{Kind: record.KindCredential, Skipped: opts.SkipCredentials},
	}

	// The catalog is read fresh per invocation; the plan is the single
	// classification path shared by dry-run and real runs.
	if err := imp.prepare(ctx, opts.Root, &report.Workflows); err != nil {
		return nil, err
	}
	if err := imp.prepare(ctx, opts.Root, &report.Credentials); err != nil {
		return nil, err
	}

	if err := opts.Thresholds.Check(report.Workflows.Plan, report.Credentials.Plan); err != nil {
		report.Aborted = true
		return report, err
	}

	if opts.DryRun {
		return report, nil
	}

	if err := imp.apply(ctx, &report.Workflows); err != nil {
		return report, err
	}
	if err := imp.apply(ctx, &report.Credentials); err != nil {
		return report, err
	}

	if failed := report.TotalFailed(); failed > 0 {
		return report, fmt.Errorf("%d of %d record(s): %w",
			failed, report.Workflows.Plan.Size()+report.Credentials.Plan.Size(),
			syncerrors.ErrRecordsFailed)
	}
	return report, nil
}

// prepare decodes the local directory for one kind and classifies it against
// the remote catalog. Malformed files are reported and excluded; a failed
// catalog read is fatal for the whole run.
func (imp *Importer) prepare(ctx context.Context, root string, rep *KindReport) error {
	if rep.Skipped {
		rep.Plan = Plan{Kind: rep.Kind}
		return nil
	}

	dir := filepath.Join(root, rep.Kind.Dir())
	local, malformed, err := record.DecodeDir(dir)
	if err != nil {
		return fmt.Errorf("reading %s: %w", dir, err)
	}
	rep.Malformed = malformed
	for _, fe := range malformed {
		imp.Log.Warnf("Skipping %s: %v", fe.Path, fe.Err)
	}

	remote, err := imp.API.List(ctx, rep.Kind)
	if err != nil {
		return err
	}

	rep.Plan = BuildPlan(rep.Kind, local, remote)
	imp.Log.Infof("Prepared %d %s record(s): %d to create, %d to update",
		rep.Plan.Size(), rep.Kind, len(rep.Plan.ToCreate), len(rep.Plan.ToUpdate))
	return nil
}

// apply executes one kind's plan sequentially. Per-record failures are
// recorded and the batch continues; only context cancellation stops it.
func (imp *Importer) apply(ctx context.Context, rep *KindReport) error {
	if rep.Skipped {
		imp.Log.Infof("Skipping %ss", rep.Kind)
		return nil
	}

	for _, rec := range rep.Plan.ToCreate {
		if err := ctx.Err(); err != nil {
			return err
		}
		created, err := imp.API.Create(ctx, rep.Kind, rec.Payload)
		if err != nil {
			imp.Log.Warnf("Failed to create %s from %s: %v", rep.Kind, rec.Source, err)
			rep.Failed = append(rep.Failed, RecordFailure{ID: rec.ID, Name: rec.Name, Source: rec.Source, Err: err})
			continue
		}
		rep.Created++
		imp.Log.Infof("Created %s %s (%s)", rep.Kind, created.ID, rec.Name)
	}

	for _, rec := range rep.Plan.ToUpdate {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := imp.API.Update(ctx, rep.Kind, rec.ID, rec.Payload); err != nil {
			imp.Log.Warnf("Failed to update %s %s: %v", rep.Kind, rec.ID, err)
			rep.Failed = append(rep.Failed, RecordFailure{ID: rec.ID, Name: rec.Name, Source: rec.Source, Err: err})
			continue
		}
		rep.Updated++
		imp.Log.Infof("Updated %s %s (%s)", rep.Kind, rec.ID, rec.Name)
	}

	return nil
}
